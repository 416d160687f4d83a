package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/Superlee-Agent/radutverse-betatest-v2/internal/assets"
	"github.com/Superlee-Agent/radutverse-betatest-v2/internal/chain"
	"github.com/Superlee-Agent/radutverse-betatest-v2/internal/config"
	"github.com/Superlee-Agent/radutverse-betatest-v2/internal/storyapi"
)

// Measure RPC and Story API latency for one wallet on every configured network.
func main() {
	address := flag.String("address", "", "wallet address to probe")
	pages := flag.Int("pages", 1, "number of asset pages to request")
	flag.Parse()

	if !assets.ValidAddress(*address) {
		fmt.Fprintln(os.Stderr, "usage: bench_rpc -address 0x... [-pages N]")
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx := context.Background()
	chainClient := chain.NewClient(cfg.Networks, nil)
	defer chainClient.Close()

	for _, n := range cfg.Networks {
		fmt.Printf("\n========== %s (rpc=%s api=%s) ==========\n", n.Label, n.RPC, n.APIBase)
		runTest(ctx, chainClient, storyapi.NewClient(n.APIBase, cfg.StoryAPIKey), n.Label, *address, *pages)
	}
}

func runTest(ctx context.Context, chainClient *chain.Client, registry *storyapi.Client, network, address string, pages int) {
	// 1. eth_getBalance
	t0 := time.Now()
	bal, err := chainClient.Balance(ctx, network, address)
	d1 := time.Since(t0)
	if err != nil {
		fmt.Printf("  eth_getBalance: FAIL (%v) [%v]\n", err, d1)
	} else {
		fmt.Printf("  eth_getBalance: OK [%v] balance=%s\n", d1, chain.FormatEther(bal))
	}

	if !registry.Configured() {
		fmt.Println("  assets: SKIP (STORY_API_KEY not set)")
		return
	}

	// 2. Owner listing, page by page
	var firstIPID string
	total := time.Duration(0)
	for i := 0; i < pages; i++ {
		t := time.Now()
		page, err := registry.ListAssets(ctx, address, assets.DefaultPageSize, i*assets.DefaultPageSize)
		d := time.Since(t)
		total += d
		if err != nil {
			fmt.Printf("  ListAssets[%d]: FAIL (%v) [%v]\n", i, err, d)
			return
		}
		fmt.Printf("  ListAssets[%d]: OK [%v] assets=%d dropped=%d hasMore=%v\n",
			i, d, len(page.Assets), page.Dropped, page.HasMore)
		if firstIPID == "" && len(page.Assets) > 0 {
			firstIPID = page.Assets[0].String("ipId")
		}
		if !page.HasMore {
			break
		}
	}
	fmt.Printf("  ListAssets total: [%v]\n", total)

	// 3. Detail lookup for the first asset
	if firstIPID == "" {
		return
	}
	t0 = time.Now()
	detail, err := registry.GetAsset(ctx, firstIPID)
	d3 := time.Since(t0)
	switch {
	case err != nil:
		fmt.Printf("  GetAsset(%s): FAIL (%v) [%v]\n", firstIPID, err, d3)
	case detail == nil:
		fmt.Printf("  GetAsset(%s): MISS [%v]\n", firstIPID, d3)
	default:
		fmt.Printf("  GetAsset(%s): OK [%v] fields=%d\n", firstIPID, d3, len(detail))
	}
}

// Package portfolio builds the combined testnet and mainnet view of a wallet.
package portfolio

import (
	"context"
	"fmt"
	"math/big"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Superlee-Agent/radutverse-betatest-v2/internal/assets"
	"github.com/Superlee-Agent/radutverse-betatest-v2/internal/chain"
	"github.com/Superlee-Agent/radutverse-betatest-v2/internal/config"
	"github.com/Superlee-Agent/radutverse-betatest-v2/internal/models"
)

const bothFailed = "Failed to fetch data from both networks"

type AssetChecker interface {
	Check(ctx context.Context, address, network string) (*models.CheckResult, error)
}

type BalanceReader interface {
	Balance(ctx context.Context, network, address string) (*big.Int, error)
}

type Service struct {
	assets   AssetChecker
	balances BalanceReader
	networks []config.Network
	log      *zap.Logger
}

// NewService covers the testnet and mainnet entries of networks, in that order.
func NewService(checker AssetChecker, balances BalanceReader, networks []config.Network, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	var pair []config.Network
	for _, label := range []string{config.Testnet, config.Mainnet} {
		for _, n := range networks {
			if n.Label == label {
				pair = append(pair, n)
			}
		}
	}
	return &Service{assets: checker, balances: balances, networks: pair, log: log}
}

type networkResult struct {
	assets  []models.Asset
	balance string
	err     string
	failed  bool
}

// Fetch loads both networks in parallel. A network that fails contributes
// no assets and a zero balance; the failure is reported in Portfolio.Error.
func (s *Service) Fetch(ctx context.Context, address string) (*models.Portfolio, error) {
	if !assets.ValidAddress(address) {
		return nil, fmt.Errorf("%w: %q", assets.ErrInvalidAddress, address)
	}

	results := make([]networkResult, len(s.networks))
	var g errgroup.Group
	for i, n := range s.networks {
		g.Go(func() error {
			results[i] = s.fetchNetwork(ctx, address, n)
			return nil
		})
	}
	_ = g.Wait()

	p := &models.Portfolio{
		OK:             true,
		Address:        address,
		TestnetAssets:  []models.Asset{},
		MainnetAssets:  []models.Asset{},
		AllAssets:      []models.Asset{},
		BalanceTestnet: "0",
		BalanceMainnet: "0",
	}

	var failed []string
	var firstErr string
	for i, n := range s.networks {
		r := results[i]
		if r.failed {
			if firstErr == "" {
				firstErr = fmt.Sprintf("Failed to fetch %s data: %s", n.Label, r.err)
			}
			failed = append(failed, n.Label)
			continue
		}
		if r.assets == nil {
			r.assets = []models.Asset{}
		}
		switch n.Label {
		case config.Testnet:
			p.TestnetAssets = r.assets
			p.BalanceTestnet = r.balance
		case config.Mainnet:
			p.MainnetAssets = r.assets
			p.BalanceMainnet = r.balance
		}
		for _, a := range r.assets {
			tagged := make(models.Asset, len(a)+1)
			for k, v := range a {
				tagged[k] = v
			}
			tagged["network"] = n.Label
			p.AllAssets = append(p.AllAssets, tagged)
		}
	}
	p.TotalAssets = len(p.AllAssets)

	switch {
	case len(failed) > 1:
		msg := bothFailed
		p.Error = &msg
	case len(failed) == 1:
		p.Error = &firstErr
	}
	return p, nil
}

func (s *Service) fetchNetwork(ctx context.Context, address string, n config.Network) networkResult {
	log := s.log.With(zap.String("network", n.Label), zap.String("address", address))

	balance := "0"
	if wei, err := s.balances.Balance(ctx, n.Label, address); err != nil {
		log.Warn("failed to fetch balance", zap.Error(err))
	} else {
		balance = chain.FormatEther(wei)
	}

	res, err := s.assets.Check(ctx, address, n.Label)
	if err != nil {
		log.Warn("failed to fetch IP assets", zap.Error(err))
		details := assets.Details(err)
		if details == "" {
			details = "Failed to fetch IP assets from " + n.DisplayName()
		}
		return networkResult{balance: "0", err: details, failed: true}
	}
	return networkResult{assets: res.Assets, balance: balance}
}

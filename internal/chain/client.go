// Package chain reads native token balances from the Story EVM networks.
package chain

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/params"
	"go.uber.org/zap"

	"github.com/Superlee-Agent/radutverse-betatest-v2/internal/config"
)

var (
	ErrUnknownNetwork = errors.New("unknown network")
	ErrInvalidAddress = errors.New("invalid address")
)

type dialFunc func(ctx context.Context, rawurl string) (*ethclient.Client, error)

// Client holds one RPC connection per configured network. Connections are
// dialed on first use.
type Client struct {
	networks map[string]config.Network
	dial     dialFunc
	log      *zap.Logger

	mu    sync.Mutex
	conns map[string]*ethclient.Client
}

func NewClient(networks []config.Network, log *zap.Logger) *Client {
	if log == nil {
		log = zap.NewNop()
	}
	byLabel := make(map[string]config.Network, len(networks))
	for _, n := range networks {
		byLabel[n.Label] = n
	}
	return &Client{
		networks: byLabel,
		dial:     ethclient.DialContext,
		log:      log,
		conns:    make(map[string]*ethclient.Client),
	}
}

func (c *Client) conn(ctx context.Context, network string) (*ethclient.Client, error) {
	n, ok := c.networks[network]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownNetwork, network)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if ec, ok := c.conns[network]; ok {
		return ec, nil
	}

	ec, err := c.dial(ctx, n.RPC)
	if err != nil {
		return nil, fmt.Errorf("failed to dial %s rpc: %w", network, err)
	}
	c.log.Info("dialed rpc", zap.String("network", network), zap.String("rpc", n.RPC))
	c.conns[network] = ec
	return ec, nil
}

// Balance returns the latest native balance of address in wei.
func (c *Client) Balance(ctx context.Context, network, address string) (*big.Int, error) {
	if !common.IsHexAddress(address) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidAddress, address)
	}
	ec, err := c.conn(ctx, network)
	if err != nil {
		return nil, err
	}
	bal, err := ec.BalanceAt(ctx, common.HexToAddress(address), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get balance on %s: %w", network, err)
	}
	return bal, nil
}

func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for label, ec := range c.conns {
		ec.Close()
		delete(c.conns, label)
	}
}

// FormatEther renders wei as a decimal token amount without trailing zeros.
func FormatEther(wei *big.Int) string {
	if wei == nil || wei.Sign() == 0 {
		return "0"
	}
	s := new(big.Rat).SetFrac(wei, big.NewInt(params.Ether)).FloatString(18)
	if strings.Contains(s, ".") {
		s = strings.TrimRight(s, "0")
		s = strings.TrimSuffix(s, ".")
	}
	return s
}

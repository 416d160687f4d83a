package chain

import (
	"context"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Superlee-Agent/radutverse-betatest-v2/internal/config"
)

type rpcRequest struct {
	ID     json.RawMessage `json:"id"`
	Method string          `json:"method"`
	Params []any           `json:"params"`
}

func newRPCServer(t *testing.T, result string, calls *int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(calls, 1)
		var req rpcRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if req.Method != "eth_getBalance" {
			json.NewEncoder(w).Encode(map[string]any{
				"jsonrpc": "2.0",
				"id":      req.ID,
				"error":   map[string]any{"code": -32601, "message": "method not found"},
			})
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"jsonrpc": "2.0",
			"id":      req.ID,
			"result":  result,
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestBalance(t *testing.T) {
	var calls int32
	srv := newRPCServer(t, "0xde0b6b3a7640000", &calls) // 1e18

	c := NewClient([]config.Network{{Label: config.Testnet, RPC: srv.URL}}, nil)
	defer c.Close()

	addr := "0x1234567890abcdef1234567890abcdef12345678"
	bal, err := c.Balance(context.Background(), config.Testnet, addr)
	require.NoError(t, err)
	assert.Equal(t, "1000000000000000000", bal.String())
	assert.Equal(t, "1", FormatEther(bal))

	_, err = c.Balance(context.Background(), config.Testnet, addr)
	require.NoError(t, err)
	assert.EqualValues(t, 2, atomic.LoadInt32(&calls))
	assert.Len(t, c.conns, 1)
}

func TestBalanceErrors(t *testing.T) {
	c := NewClient([]config.Network{{Label: config.Testnet, RPC: "http://127.0.0.1:1"}}, nil)
	defer c.Close()

	_, err := c.Balance(context.Background(), "devnet", "0x1234567890abcdef1234567890abcdef12345678")
	assert.ErrorIs(t, err, ErrUnknownNetwork)

	_, err = c.Balance(context.Background(), config.Testnet, "0x123")
	assert.ErrorIs(t, err, ErrInvalidAddress)

	_, err = c.Balance(context.Background(), config.Testnet, "0x1234567890abcdef1234567890abcdef12345678")
	assert.Error(t, err)
}

func TestFormatEther(t *testing.T) {
	tests := []struct {
		wei  *big.Int
		want string
	}{
		{nil, "0"},
		{big.NewInt(0), "0"},
		{big.NewInt(1), "0.000000000000000001"},
		{big.NewInt(1_500_000_000_000_000_000), "1.5"},
		{new(big.Int).Mul(big.NewInt(42), big.NewInt(1_000_000_000_000_000_000)), "42"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatEther(tt.wei))
	}
}

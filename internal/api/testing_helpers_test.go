package api

import (
	"bytes"
	"context"
	"math/big"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Superlee-Agent/radutverse-betatest-v2/internal/config"
	"github.com/Superlee-Agent/radutverse-betatest-v2/internal/models"
)

const testWallet = "0x1234567890abcdef1234567890abcdef12345678"

func testConfig() *config.Config {
	return &config.Config{
		Port:           "0",
		Env:            "test",
		StoryAPIKey:    "key",
		IdempotencyTTL: time.Minute,
		CORSOrigins:    []string{"*"},
		Networks:       config.DefaultNetworks(),
		DefaultNetwork: config.Mainnet,
	}
}

type fakeChecker struct {
	calls atomic.Int32
	fn    func(address, network string) (*models.CheckResult, error)
}

func (f *fakeChecker) Check(_ context.Context, address, network string) (*models.CheckResult, error) {
	f.calls.Add(1)
	if f.fn != nil {
		return f.fn(address, network)
	}
	return &models.CheckResult{
		OK:            true,
		Address:       address,
		Network:       network,
		TotalCount:    1,
		OriginalCount: 1,
		Assets:        []models.Asset{{"ipId": "0xip", "title": "Song"}},
	}, nil
}

type fakePortfolio struct {
	fn func(address string) (*models.Portfolio, error)
}

func (f *fakePortfolio) Fetch(_ context.Context, address string) (*models.Portfolio, error) {
	if f.fn != nil {
		return f.fn(address)
	}
	return &models.Portfolio{OK: true, Address: address, AllAssets: []models.Asset{}, BalanceTestnet: "0", BalanceMainnet: "0"}, nil
}

type fakeBalances struct {
	wei *big.Int
	err error
}

func (f *fakeBalances) Balance(_ context.Context, _, _ string) (*big.Int, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.wei, nil
}

func newTestServer(t *testing.T, cfg *config.Config, checker *fakeChecker, opts ...func(*Server)) *Server {
	t.Helper()
	if cfg == nil {
		cfg = testConfig()
	}
	if checker == nil {
		checker = &fakeChecker{}
	}
	return NewServer(cfg, checker, &fakePortfolio{}, &fakeBalances{wei: big.NewInt(0)}, opts...)
}

func do(s *Server, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rr := httptest.NewRecorder()
	s.Handler().ServeHTTP(rr, req)
	return rr
}

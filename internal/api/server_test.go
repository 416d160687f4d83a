package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Superlee-Agent/radutverse-betatest-v2/internal/metrics"
)

func TestRoutesRegistered(t *testing.T) {
	s := newTestServer(t, nil, nil)

	routes := []struct{ method, path string }{
		{"GET", "/health"},
		{"GET", "/metrics"},
		{"GET", "/api/networks"},
		{"POST", "/api/check-ip-assets"},
		{"GET", "/api/balance/" + testWallet},
		{"POST", "/api/portfolio"},
		{"OPTIONS", "/api/check-ip-assets"},
		{"OPTIONS", "/api/portfolio"},
	}
	for _, rt := range routes {
		req := httptest.NewRequest(rt.method, rt.path, nil)
		var match mux.RouteMatch
		assert.True(t, s.router.Match(req, &match), "missing route: %s %s", rt.method, rt.path)
	}
}

func TestHealth(t *testing.T) {
	rr := do(newTestServer(t, nil, nil), "GET", "/health", "", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rr.Body.String())
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
}

func TestNetworks(t *testing.T) {
	rr := do(newTestServer(t, nil, nil), "GET", "/api/networks", "", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	var body struct {
		OK             bool   `json:"ok"`
		DefaultNetwork string `json:"defaultNetwork"`
		Networks       []struct {
			Label   string `json:"label"`
			ChainID int64  `json:"chainId"`
		} `json:"networks"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.True(t, body.OK)
	assert.Equal(t, "mainnet", body.DefaultNetwork)
	require.Len(t, body.Networks, 2)
	assert.Equal(t, "testnet", body.Networks[0].Label)
	assert.EqualValues(t, 1315, body.Networks[0].ChainID)
	assert.EqualValues(t, 1514, body.Networks[1].ChainID)
}

func TestMetricsEndpoint(t *testing.T) {
	m := metrics.NewCollector("portfolio")
	s := newTestServer(t, nil, nil, WithMetrics(m))

	do(s, "GET", "/health", "", nil)
	rr := do(s, "GET", "/metrics", "", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `portfolio_http_requests_total{method="GET",route="/health",status="200"} 1`)
	assert.True(t, strings.HasPrefix(rr.Header().Get("Content-Type"), "text/plain"))
}

func TestRequestID(t *testing.T) {
	s := newTestServer(t, nil, nil)

	rr := do(s, "GET", "/health", "", nil)
	_, err := uuid.Parse(rr.Header().Get("X-Request-ID"))
	assert.NoError(t, err)

	id := uuid.NewString()
	rr = do(s, "GET", "/health", "", map[string]string{"X-Request-ID": id})
	assert.Equal(t, id, rr.Header().Get("X-Request-ID"))

	rr = do(s, "GET", "/health", "", map[string]string{"X-Request-ID": "not-a-uuid"})
	assert.NotEqual(t, "not-a-uuid", rr.Header().Get("X-Request-ID"))
}

func TestCORSPreflight(t *testing.T) {
	rr := do(newTestServer(t, nil, nil), "OPTIONS", "/api/check-ip-assets", "", map[string]string{
		"Origin":                         "https://app.example",
		"Access-Control-Request-Method":  "POST",
		"Access-Control-Request-Headers": "Content-Type, Idempotency-Key",
	})
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "*", rr.Header().Get("Access-Control-Allow-Origin"))
}

func TestPlainOptions(t *testing.T) {
	checker := &fakeChecker{}
	rr := do(newTestServer(t, nil, checker), "OPTIONS", "/api/check-ip-assets", "", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.EqualValues(t, 0, checker.calls.Load())
}

func TestRateLimit(t *testing.T) {
	cfg := testConfig()
	cfg.RateLimitRPS = 1
	cfg.RateLimitBurst = 2
	s := newTestServer(t, cfg, nil)

	hdr := map[string]string{"X-Forwarded-For": "203.0.113.7, 10.0.0.1"}
	assert.Equal(t, http.StatusOK, do(s, "GET", "/api/networks", "", hdr).Code)
	assert.Equal(t, http.StatusOK, do(s, "GET", "/api/networks", "", hdr).Code)

	rr := do(s, "GET", "/api/networks", "", hdr)
	require.Equal(t, http.StatusTooManyRequests, rr.Code)
	assert.JSONEq(t, `{"ok":false,"error":"rate_limited","message":"too many requests"}`, rr.Body.String())

	assert.Equal(t, http.StatusOK, do(s, "GET", "/health", "", hdr).Code, "health is exempt")
	assert.Equal(t, http.StatusOK, do(s, "GET", "/api/networks", "", map[string]string{"X-Forwarded-For": "198.51.100.1"}).Code)
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	req.RemoteAddr = "192.0.2.1:4567"
	assert.Equal(t, "192.0.2.1", clientIP(req))

	req.Header.Set("X-Real-IP", "192.0.2.2")
	assert.Equal(t, "192.0.2.2", clientIP(req))

	req.Header.Set("X-Forwarded-For", "192.0.2.3, 10.0.0.1")
	assert.Equal(t, "192.0.2.3", clientIP(req))
}

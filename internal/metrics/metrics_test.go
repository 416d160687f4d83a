package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectorCounters(t *testing.T) {
	c := NewCollector("portfolio")

	c.Upstream("v4", "transport_error")
	c.Upstream("v3", "ok")
	c.Enrich("ipfs", "ok")
	c.Idempotency(true)
	c.Idempotency(false)
	c.Idempotency(false)
	c.ObserveHTTP("POST", "/api/check-ip-assets", 200, 30*time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(c.UpstreamRequests.WithLabelValues("v4", "transport_error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.EnrichFetches.WithLabelValues("ipfs", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.IdempotencyHits))
	assert.Equal(t, 2.0, testutil.ToFloat64(c.IdempotencyMisses))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.HTTPRequests.WithLabelValues("POST", "/api/check-ip-assets", "200")))
}

func TestNilCollectorIsSafe(t *testing.T) {
	var c *Collector
	c.Upstream("v4", "ok")
	c.Enrich("detail", "error")
	c.Collected(3)
	c.Idempotency(true)
	c.ObserveHTTP("GET", "/health", 200, time.Millisecond)
}

func TestHandlerExposesMetrics(t *testing.T) {
	c := NewCollector("portfolio")
	c.Collected(12)

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	require.Equal(t, 200, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "portfolio_assets_collected_count 1"))
}

// Package metrics holds the Prometheus collectors for the portfolio API.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector groups all metrics on a private registry so tests can build as
// many as they like without duplicate-registration panics.
type Collector struct {
	registry *prometheus.Registry

	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	UpstreamRequests *prometheus.CounterVec
	EnrichFetches    *prometheus.CounterVec
	AssetsCollected  prometheus.Histogram

	IdempotencyHits   prometheus.Counter
	IdempotencyMisses prometheus.Counter
}

func NewCollector(namespace string) *Collector {
	registry := prometheus.NewRegistry()

	c := &Collector{
		registry: registry,
		HTTPRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		HTTPDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		UpstreamRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "story_api_requests_total",
				Help:      "Requests sent to the Story API by endpoint version and outcome",
			},
			[]string{"version", "outcome"},
		),
		EnrichFetches: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "enrich_fetches_total",
				Help:      "Best-effort enrichment fetches by kind and outcome",
			},
			[]string{"kind", "outcome"},
		),
		AssetsCollected: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "assets_collected",
				Help:      "Assets collected per aggregation",
				Buckets:   []float64{0, 1, 10, 50, 100, 250, 500, 1000},
			},
		),
		IdempotencyHits: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "idempotency_hits_total",
				Help:      "Responses replayed from the idempotency store",
			},
		),
		IdempotencyMisses: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "idempotency_misses_total",
				Help:      "Idempotency keys that had no live entry",
			},
		),
	}

	registry.MustRegister(
		c.HTTPRequests,
		c.HTTPDuration,
		c.UpstreamRequests,
		c.EnrichFetches,
		c.AssetsCollected,
		c.IdempotencyHits,
		c.IdempotencyMisses,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return c
}

// Handler serves the registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// The helpers below are nil-safe so packages can run without metrics wired.

func (c *Collector) ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	if c == nil {
		return
	}
	c.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	c.HTTPDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

func (c *Collector) Upstream(version, outcome string) {
	if c == nil {
		return
	}
	c.UpstreamRequests.WithLabelValues(version, outcome).Inc()
}

func (c *Collector) Enrich(kind, outcome string) {
	if c == nil {
		return
	}
	c.EnrichFetches.WithLabelValues(kind, outcome).Inc()
}

func (c *Collector) Collected(n int) {
	if c == nil {
		return
	}
	c.AssetsCollected.Observe(float64(n))
}

func (c *Collector) Idempotency(hit bool) {
	if c == nil {
		return
	}
	if hit {
		c.IdempotencyHits.Inc()
	} else {
		c.IdempotencyMisses.Inc()
	}
}

// Package storyapi is a client for the Story registry REST API.
package storyapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Superlee-Agent/radutverse-betatest-v2/internal/metrics"

	"github.com/sony/gobreaker"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

const (
	PrimaryVersion  = "v4"
	FallbackVersion = "v3"

	DefaultDetailTimeout = 5 * time.Second

	maxBodySize = 32 << 20
)

// Page is one page of an owner listing.
type Page struct {
	Assets []Asset
	// Dropped counts entries that were not JSON objects.
	Dropped int
	HasMore bool
	// Empty is set when the registry answered with a null body.
	Empty bool
	// Malformed is set when "data" is present but is not an array.
	Malformed bool
}

// Client talks to <base>/v4/assets, falling back to <base>/v3/assets when
// the primary version cannot be reached.
type Client struct {
	baseURL       string
	apiKey        string
	httpClient    *http.Client
	detailTimeout time.Duration
	breaker       *gobreaker.CircuitBreaker
	log           *zap.Logger
	metrics       *metrics.Collector
}

type Option func(*Client)

func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) { cl.httpClient = c }
}

func WithDetailTimeout(d time.Duration) Option {
	return func(cl *Client) { cl.detailTimeout = d }
}

func WithLogger(l *zap.Logger) Option {
	return func(cl *Client) { cl.log = l }
}

func WithMetrics(m *metrics.Collector) Option {
	return func(cl *Client) { cl.metrics = m }
}

func NewClient(baseURL, apiKey string, opts ...Option) *Client {
	c := &Client{
		baseURL:       strings.TrimRight(baseURL, "/"),
		apiKey:        apiKey,
		httpClient:    &http.Client{},
		detailTimeout: DefaultDetailTimeout,
		log:           zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.breaker = newBreaker(c.baseURL+"/"+PrimaryVersion, c.log)
	return c
}

// Configured is false when no API key is set; the registry rejects such calls.
func (c *Client) Configured() bool {
	return c.apiKey != ""
}

type whereOptions struct {
	Options struct {
		Where      map[string]string `json:"where"`
		Pagination *pagination       `json:"pagination,omitempty"`
	} `json:"options"`
}

type pagination struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

// ListAssets requests one page of assets owned by owner.
func (c *Client) ListAssets(ctx context.Context, owner string, limit, offset int) (*Page, error) {
	var q whereOptions
	q.Options.Where = map[string]string{"ipAccountOwner": owner}
	q.Options.Pagination = &pagination{Limit: limit, Offset: offset}
	payload, err := json.Marshal(q)
	if err != nil {
		return nil, err
	}

	resp, err := c.postWithFallback(ctx, payload)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, &TransportError{Err: fmt.Errorf("read assets page: %w", err)}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &StatusError{Status: resp.StatusCode, Message: errorMessage(body)}
	}
	return parsePage(body)
}

// GetAsset fetches the detail record for a single IP. It returns (nil, nil)
// when the registry has no record or answers with a non-2xx status.
func (c *Client) GetAsset(ctx context.Context, ipID string) (Asset, error) {
	var q whereOptions
	q.Options.Where = map[string]string{"ipId": ipID}
	payload, err := json.Marshal(q)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, c.detailTimeout)
	defer cancel()

	resp, err := c.post(ctx, PrimaryVersion, payload)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, nil
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, err
	}
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("decode asset detail: invalid JSON")
	}

	res := gjson.ParseBytes(body)
	var first gjson.Result
	if res.IsArray() {
		first = res.Get("0")
	} else {
		first = res.Get("data.0")
	}
	if !first.IsObject() {
		return nil, nil
	}

	var a Asset
	if err := json.Unmarshal([]byte(first.Raw), &a); err != nil {
		return nil, fmt.Errorf("decode asset detail: %w", err)
	}
	return a, nil
}

func (c *Client) postWithFallback(ctx context.Context, payload []byte) (*http.Response, error) {
	out, err := c.breaker.Execute(func() (interface{}, error) {
		return c.post(ctx, PrimaryVersion, payload)
	})
	if err == nil {
		c.metrics.Upstream(PrimaryVersion, "ok")
		return out.(*http.Response), nil
	}
	c.metrics.Upstream(PrimaryVersion, "transport_error")
	c.log.Warn("primary assets endpoint failed, falling back",
		zap.String("version", PrimaryVersion),
		zap.String("fallback", FallbackVersion),
		zap.Error(err))

	resp, ferr := c.post(ctx, FallbackVersion, payload)
	if ferr != nil {
		c.metrics.Upstream(FallbackVersion, "transport_error")
		return nil, &TransportError{Err: ferr}
	}
	c.metrics.Upstream(FallbackVersion, "ok")
	return resp, nil
}

func (c *Client) post(ctx context.Context, version string, payload []byte) (*http.Response, error) {
	url := c.baseURL + "/" + version + "/assets"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-Api-Key", c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	return c.httpClient.Do(req)
}

func parsePage(body []byte) (*Page, error) {
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("decode assets page: invalid JSON")
	}

	page := &Page{}
	res := gjson.ParseBytes(body)

	var entries []gjson.Result
	switch {
	case res.Type == gjson.Null:
		page.Empty = true
		return page, nil
	case res.IsArray():
		entries = res.Array()
	case res.IsObject():
		data := res.Get("data")
		if data.Exists() && data.Type != gjson.Null {
			if !data.IsArray() {
				page.Malformed = true
				return page, nil
			}
			entries = data.Array()
		}
		page.HasMore = res.Get("pagination.hasMore").Type == gjson.True
	}

	for _, e := range entries {
		if !e.IsObject() {
			page.Dropped++
			continue
		}
		var a Asset
		if err := json.Unmarshal([]byte(e.Raw), &a); err != nil {
			page.Dropped++
			continue
		}
		page.Assets = append(page.Assets, a)
	}
	return page, nil
}

func newBreaker(name string, log *zap.Logger) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    30 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		IsSuccessful: func(err error) bool {
			// Caller cancellation is not an endpoint failure.
			return err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	})
}

// Package ipfs resolves IPFS-style URIs to HTTP gateways and fetches the
// off-chain JSON documents that IP assets point at.
package ipfs

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Superlee-Agent/radutverse-betatest-v2/internal/metrics"
	"github.com/Superlee-Agent/radutverse-betatest-v2/internal/storyapi"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

const (
	// PublicGateway serves media links handed to browsers.
	PublicGateway = "dweb.link"
	// FallbackGateway is used for server-side metadata fetches when no
	// dedicated gateway is configured.
	FallbackGateway = "ipfs.io"

	DefaultFetchTimeout = 5 * time.Second

	schemePrefix  = "ipfs://"
	maxDocumentSz = 4 << 20
)

// ToGatewayURL rewrites an IPFS reference to the public HTTP gateway.
// Dedicated Pinata gateways and non-IPFS URLs are returned unchanged.
func ToGatewayURL(uri string) string {
	if uri == "" {
		return uri
	}

	if strings.HasPrefix(uri, schemePrefix) {
		return "https://" + PublicGateway + "/ipfs/" + strings.TrimPrefix(uri, schemePrefix)
	}
	if strings.Contains(uri, "ipfs.io/ipfs/") {
		return "https://" + PublicGateway + "/ipfs/" + pathAfterIPFS(uri)
	}
	if strings.Contains(uri, "mypinata.cloud") {
		return uri
	}
	if strings.Contains(uri, "/ipfs/") && !strings.Contains(uri, PublicGateway) {
		return "https://" + PublicGateway + "/ipfs/" + pathAfterIPFS(uri)
	}
	return uri
}

// FetchURL maps an ipfs:// URI to the gateway used for server-side fetches.
// gateway is a bare host such as "example.mypinata.cloud"; empty selects ipfs.io.
func FetchURL(uri, gateway string) string {
	if !strings.HasPrefix(uri, schemePrefix) {
		return uri
	}
	if gateway == "" {
		gateway = FallbackGateway
	}
	return "https://" + gateway + "/ipfs/" + strings.TrimPrefix(uri, schemePrefix)
}

// pathAfterIPFS returns the segment between the first and second "/ipfs/".
func pathAfterIPFS(uri string) string {
	parts := strings.Split(uri, "/ipfs/")
	if len(parts) < 2 {
		return ""
	}
	return parts[1]
}

// Fetcher downloads JSON metadata documents. Every failure is logged and
// swallowed: callers only ever see a document or nil.
type Fetcher struct {
	client  *http.Client
	gateway string
	timeout time.Duration
	log     *zap.Logger
	metrics *metrics.Collector
}

type Option func(*Fetcher)

func WithHTTPClient(c *http.Client) Option {
	return func(f *Fetcher) { f.client = c }
}

func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) { f.timeout = d }
}

func WithLogger(l *zap.Logger) Option {
	return func(f *Fetcher) { f.log = l }
}

func WithMetrics(m *metrics.Collector) Option {
	return func(f *Fetcher) { f.metrics = m }
}

func NewFetcher(gateway string, opts ...Option) *Fetcher {
	f := &Fetcher{
		client:  &http.Client{},
		gateway: strings.TrimSpace(gateway),
		timeout: DefaultFetchTimeout,
		log:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// FetchJSON returns the JSON document behind uri, or nil when the URI is
// empty, the fetch fails, times out, or the body is not JSON.
func (f *Fetcher) FetchJSON(ctx context.Context, uri string) json.RawMessage {
	if uri == "" {
		return nil
	}

	doc, err := f.fetch(ctx, FetchURL(uri, f.gateway))
	if err != nil {
		f.log.Warn("failed to fetch IPA metadata", zap.String("uri", uri), zap.Error(err))
		f.metrics.Enrich("ipfs", "error")
		return nil
	}
	f.metrics.Enrich("ipfs", "ok")
	return doc
}

func (f *Fetcher) fetch(ctx context.Context, url string) (json.RawMessage, error) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("gateway status: %s", resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxDocumentSz))
	if err != nil {
		return nil, fmt.Errorf("read metadata: %w", err)
	}
	if !json.Valid(body) {
		return nil, fmt.Errorf("metadata is not valid JSON")
	}
	if !storyapi.Truthy(gjson.ParseBytes(body)) {
		return nil, fmt.Errorf("metadata document is empty: %s", strings.TrimSpace(string(body)))
	}
	return json.RawMessage(body), nil
}

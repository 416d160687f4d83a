// Package assets collects, enriches and shapes the IP assets owned by a wallet.
package assets

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Superlee-Agent/radutverse-betatest-v2/internal/metrics"
	"github.com/Superlee-Agent/radutverse-betatest-v2/internal/models"
	"github.com/Superlee-Agent/radutverse-betatest-v2/internal/storyapi"
)

const (
	DefaultPageSize = 100
	DefaultMaxPages = 10
	// DefaultDeadline bounds the paginated listing of one check.
	DefaultDeadline = 20 * time.Second
)

var (
	ErrInvalidAddress = errors.New("invalid address")
	ErrUnknownNetwork = errors.New("unknown network")
	ErrNotConfigured  = errors.New("story api key is not configured")
	// ErrTimeout means the listing deadline fired before the last page arrived.
	ErrTimeout = errors.New("story api timed out")
)

// TimeoutDetails is shown to users when the registry is too slow.
const TimeoutDetails = "The Story API is responding slowly. Please try again in a moment."

var addressPattern = regexp.MustCompile(`^0x[a-fA-F0-9]{40}$`)

// ValidAddress reports whether s is a 0x-prefixed 20-byte hex address.
func ValidAddress(s string) bool {
	return addressPattern.MatchString(s)
}

// Registry is the subset of the Story API client the service needs.
type Registry interface {
	Configured() bool
	ListAssets(ctx context.Context, owner string, limit, offset int) (*storyapi.Page, error)
	GetAsset(ctx context.Context, ipID string) (storyapi.Asset, error)
}

// MetadataFetcher resolves an ipaMetadataUri to its JSON document, or nil.
type MetadataFetcher interface {
	FetchJSON(ctx context.Context, uri string) json.RawMessage
}

type Service struct {
	registries  map[string]Registry
	metadata    MetadataFetcher
	log         *zap.Logger
	metrics     *metrics.Collector
	pageSize    int
	maxPages    int
	deadline    time.Duration
	enrichLimit int
}

type Option func(*Service)

func WithLogger(l *zap.Logger) Option {
	return func(s *Service) { s.log = l }
}

func WithMetrics(m *metrics.Collector) Option {
	return func(s *Service) { s.metrics = m }
}

func WithPageSize(n int) Option {
	return func(s *Service) { s.pageSize = n }
}

func WithMaxPages(n int) Option {
	return func(s *Service) { s.maxPages = n }
}

func WithDeadline(d time.Duration) Option {
	return func(s *Service) { s.deadline = d }
}

// WithEnrichLimit caps concurrent enrichment lookups. Zero, the default,
// enriches every asset at once.
func WithEnrichLimit(n int) Option {
	return func(s *Service) { s.enrichLimit = n }
}

// NewService builds a service over one registry client per network label.
func NewService(registries map[string]Registry, metadata MetadataFetcher, opts ...Option) *Service {
	s := &Service{
		registries: registries,
		metadata:   metadata,
		log:        zap.NewNop(),
		pageSize:   DefaultPageSize,
		maxPages:   DefaultMaxPages,
		deadline:   DefaultDeadline,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Check collects every asset owned by address on network, enriches each one
// with its off-chain metadata and detail record, and shapes the result.
//
// Errors are ErrInvalidAddress, ErrUnknownNetwork, ErrNotConfigured,
// ErrTimeout, or a wrapped *storyapi.StatusError / *storyapi.TransportError.
func (s *Service) Check(ctx context.Context, address, network string) (*models.CheckResult, error) {
	if !ValidAddress(address) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidAddress, address)
	}
	reg, ok := s.registries[network]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownNetwork, network)
	}
	if !reg.Configured() {
		return nil, ErrNotConfigured
	}

	// The deadline bounds pagination only. Enrichment lookups carry their own
	// timeouts and never fail the check.
	pageCtx, cancel := context.WithTimeout(ctx, s.deadline)
	defer cancel()

	log := s.log.With(zap.String("address", address), zap.String("network", network))

	collected, err := s.collect(pageCtx, reg, address, log)
	if err != nil {
		return nil, s.classify(pageCtx, err)
	}
	cancel()
	s.metrics.Collected(len(collected))

	res := &models.CheckResult{
		OK:         true,
		Address:    address,
		Network:    network,
		TotalCount: len(collected),
		Assets:     make([]models.Asset, len(collected)),
	}
	for _, a := range collected {
		switch parentKind(a) {
		case kindOriginal:
			res.OriginalCount++
		case kindRemix:
			res.RemixCount++
		}
	}

	enriched := s.enrichAll(ctx, reg, collected, log)
	for i, a := range enriched {
		res.Assets[i] = Shape(a)
	}
	return res, nil
}

func (s *Service) collect(ctx context.Context, reg Registry, address string, log *zap.Logger) ([]storyapi.Asset, error) {
	var (
		all     []storyapi.Asset
		offset  int
		pages   int
		hasMore = true
	)

	for hasMore && pages < s.maxPages {
		pages++

		page, err := reg.ListAssets(ctx, address, s.pageSize, offset)
		if err != nil {
			log.Error("failed to fetch IP assets page",
				zap.Int("offset", offset), zap.Int("page", pages), zap.Error(err))
			return nil, fmt.Errorf("assets page %d: %w", pages, err)
		}
		if page.Empty {
			log.Error("empty response from Story API", zap.Int("offset", offset), zap.Int("page", pages))
			break
		}
		if page.Malformed {
			log.Warn("unexpected response format from Story API", zap.Int("offset", offset), zap.Int("page", pages))
			break
		}
		if page.Dropped > 0 {
			log.Warn("dropped invalid asset entries", zap.Int("dropped", page.Dropped), zap.Int("page", pages))
		}

		all = append(all, page.Assets...)
		offset += s.pageSize
		hasMore = page.HasMore && len(page.Assets) > 0
	}

	if hasMore {
		log.Warn("max pages reached when fetching IP assets",
			zap.Int("maxPages", s.maxPages), zap.Int("assetsCollected", len(all)))
	}
	return all, nil
}

// Details returns the user-facing explanation for a Check error, or "" when
// the error carries none.
func Details(err error) string {
	var se *storyapi.StatusError
	var te *storyapi.TransportError
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrTimeout):
		return TimeoutDetails
	case errors.As(err, &se):
		return se.Message
	case errors.As(err, &te):
		return te.Err.Error()
	}
	return ""
}

type parentCountKind int

const (
	kindUncounted parentCountKind = iota
	kindOriginal
	kindRemix
)

// parentKind classifies an asset by parentsCount. Missing, null or zero is an
// original; a positive number, or a string holding one, is a remix. Anything
// else (negative, non-numeric) is counted as neither.
func parentKind(a storyapi.Asset) parentCountKind {
	r := a.Get("parentsCount")
	if !storyapi.Truthy(r) {
		return kindOriginal
	}

	var n float64
	switch r.Type {
	case gjson.Number:
		n = r.Num
	case gjson.True:
		n = 1
	case gjson.String:
		v, err := strconv.ParseFloat(strings.TrimSpace(r.Str), 64)
		if err != nil {
			return kindUncounted
		}
		n = v
	default:
		return kindUncounted
	}
	if n > 0 {
		return kindRemix
	}
	return kindUncounted
}

func (s *Service) classify(ctx context.Context, err error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	return err
}

func (s *Service) enrichAll(ctx context.Context, reg Registry, collected []storyapi.Asset, log *zap.Logger) []storyapi.Asset {
	out := make([]storyapi.Asset, len(collected))

	var g errgroup.Group
	if s.enrichLimit > 0 {
		g.SetLimit(s.enrichLimit)
	}
	for i, a := range collected {
		g.Go(func() error {
			out[i] = s.enrich(ctx, reg, a, log)
			return nil
		})
	}
	_ = g.Wait()
	return out
}

// enrich never fails: both lookups are best effort and the asset is returned
// as collected when neither yields anything.
func (s *Service) enrich(ctx context.Context, reg Registry, a storyapi.Asset, log *zap.Logger) storyapi.Asset {
	out := a.Clone()

	var doc json.RawMessage
	if uri := a.String("ipaMetadataUri"); uri != "" {
		doc = s.metadata.FetchJSON(ctx, uri)
	}

	if ipID := a.String("ipId"); ipID != "" && !a.Has("metadata") {
		detail, err := reg.GetAsset(ctx, ipID)
		switch {
		case err != nil:
			log.Debug("asset detail fetch failed", zap.String("ipId", ipID), zap.Error(err))
			s.metrics.Enrich("detail", "error")
		case detail == nil:
			s.metrics.Enrich("detail", "miss")
		default:
			s.metrics.Enrich("detail", "ok")
			merge(out, a, detail)
		}
	}

	if doc != nil {
		out["ipaMetadata"] = doc
	}
	return out
}

// merge lays detail over dst. metadata and nftMetadata fall back to the
// collected record when the detail record has no usable value.
func merge(dst, collected, detail storyapi.Asset) {
	for k, v := range detail {
		dst[k] = v
	}
	for _, k := range []string{"metadata", "nftMetadata"} {
		if detail.Has(k) {
			continue
		}
		if v, ok := collected[k]; ok {
			dst[k] = v
		} else {
			delete(dst, k)
		}
	}
}

package api

import (
	"context"
	"math/big"
	"net/http"
	"time"

	"github.com/go-chi/cors"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/Superlee-Agent/radutverse-betatest-v2/internal/config"
	"github.com/Superlee-Agent/radutverse-betatest-v2/internal/idempotency"
	"github.com/Superlee-Agent/radutverse-betatest-v2/internal/metrics"
	"github.com/Superlee-Agent/radutverse-betatest-v2/internal/models"
)

type AssetChecker interface {
	Check(ctx context.Context, address, network string) (*models.CheckResult, error)
}

type PortfolioFetcher interface {
	Fetch(ctx context.Context, address string) (*models.Portfolio, error)
}

type BalanceReader interface {
	Balance(ctx context.Context, network, address string) (*big.Int, error)
}

type Server struct {
	cfg        *config.Config
	assets     AssetChecker
	portfolio  PortfolioFetcher
	balances   BalanceReader
	idem       idempotency.Store
	idemTTL    time.Duration
	limiter    *ipLimiter
	metrics    *metrics.Collector
	log        *zap.Logger
	router     *mux.Router
	httpServer *http.Server
}

func WithLogger(l *zap.Logger) func(*Server) {
	return func(s *Server) { s.log = l }
}

func WithMetrics(m *metrics.Collector) func(*Server) {
	return func(s *Server) { s.metrics = m }
}

func WithIdempotencyStore(store idempotency.Store) func(*Server) {
	return func(s *Server) { s.idem = store }
}

func NewServer(cfg *config.Config, checker AssetChecker, pf PortfolioFetcher, balances BalanceReader, opts ...func(*Server)) *Server {
	r := mux.NewRouter()

	s := &Server{
		cfg:       cfg,
		assets:    checker,
		portfolio: pf,
		balances:  balances,
		idemTTL:   cfg.IdempotencyTTL,
		limiter:   newIPLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst, cfg.RateLimitTTL),
		log:       zap.NewNop(),
		router:    r,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.idem == nil {
		s.idem = idempotency.NewMemoryStore()
	}
	if s.idemTTL <= 0 {
		s.idemTTL = idempotency.DefaultTTL
	}

	r.Use(s.requestMiddleware)
	r.Use(commonMiddleware)
	r.Use(s.rateLimitMiddleware)

	registerBaseRoutes(r, s)
	registerAPIRoutes(r, s)

	s.httpServer = &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	return s
}

// Handler is the full middleware chain, CORS included.
func (s *Server) Handler() http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins:   s.cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization", "Idempotency-Key", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID", "X-Cache"},
		AllowCredentials: false,
		MaxAge:           300,
	})(s.router)
}

func (s *Server) Start() error {
	s.log.Info("api listening", zap.String("addr", s.httpServer.Addr))
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func commonMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

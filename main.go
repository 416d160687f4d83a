package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/Superlee-Agent/radutverse-betatest-v2/internal/api"
	"github.com/Superlee-Agent/radutverse-betatest-v2/internal/assets"
	"github.com/Superlee-Agent/radutverse-betatest-v2/internal/chain"
	"github.com/Superlee-Agent/radutverse-betatest-v2/internal/config"
	"github.com/Superlee-Agent/radutverse-betatest-v2/internal/idempotency"
	"github.com/Superlee-Agent/radutverse-betatest-v2/internal/ipfs"
	"github.com/Superlee-Agent/radutverse-betatest-v2/internal/logging"
	"github.com/Superlee-Agent/radutverse-betatest-v2/internal/metrics"
	"github.com/Superlee-Agent/radutverse-betatest-v2/internal/portfolio"
	"github.com/Superlee-Agent/radutverse-betatest-v2/internal/storyapi"
)

// BuildCommit is set at build time via -ldflags.
var BuildCommit = "dev"

const shutdownTimeout = 10 * time.Second

func main() {
	// 1. Config
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg.IsProduction())
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("starting portfolio api",
		zap.String("commit", BuildCommit),
		zap.String("env", cfg.Env),
		zap.String("port", cfg.Port),
		zap.String("story_api", cfg.StoryAPIBase),
		zap.Bool("story_api_key", cfg.StoryAPIKey != ""),
		zap.String("default_network", cfg.DefaultNetwork))
	if cfg.StoryAPIKey == "" {
		logger.Warn("STORY_API_KEY is not set; asset checks will fail with server_config_missing")
	}

	// 2. Dependencies
	m := metrics.NewCollector("portfolio")

	registries := make(map[string]assets.Registry, len(cfg.Networks))
	for _, n := range cfg.Networks {
		registries[n.Label] = storyapi.NewClient(n.APIBase, cfg.StoryAPIKey,
			storyapi.WithLogger(logging.Component(logger, "storyapi").With(zap.String("network", n.Label))),
			storyapi.WithMetrics(m))
	}

	fetcher := ipfs.NewFetcher(cfg.PinataGateway,
		ipfs.WithLogger(logging.Component(logger, "ipfs")),
		ipfs.WithMetrics(m))

	assetService := assets.NewService(registries, fetcher,
		assets.WithLogger(logging.Component(logger, "assets")),
		assets.WithMetrics(m))

	chainClient := chain.NewClient(cfg.Networks, logging.Component(logger, "chain"))
	defer chainClient.Close()

	portfolioService := portfolio.NewService(assetService, chainClient, cfg.Networks,
		logging.Component(logger, "portfolio"))

	var store idempotency.Store = idempotency.NewMemoryStore()
	if cfg.RedisURL != "" {
		rs, err := idempotency.NewRedisStore(cfg.RedisURL)
		if err != nil {
			logger.Fatal("failed to connect to redis", zap.String("url", redactURL(cfg.RedisURL)), zap.Error(err))
		}
		defer rs.Close()
		store = rs
		logger.Info("idempotency store: redis", zap.String("url", redactURL(cfg.RedisURL)))
	} else {
		logger.Info("idempotency store: memory")
	}

	apiServer := api.NewServer(cfg, assetService, portfolioService, chainClient,
		api.WithLogger(logging.Component(logger, "api")),
		api.WithMetrics(m),
		api.WithIdempotencyStore(store))

	// Handle SIGINT/SIGTERM
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	errChan := make(chan error, 1)
	go func() {
		if err := apiServer.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	select {
	case sig := <-sigChan:
		logger.Info("shutting down", zap.String("signal", sig.String()))
	case err := <-errChan:
		logger.Error("api server failed", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := apiServer.Shutdown(ctx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}

// redactURL hides credentials embedded in a connection URL.
func redactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" {
		return "****"
	}
	if u.User != nil {
		user := u.User.Username()
		if user == "" {
			user = "user"
		}
		u.User = url.UserPassword(user, "redacted")
	}
	u.RawQuery = ""
	return u.String()
}

package app

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/gokatarajesh/survey-builder/internal/config"
	"github.com/gokatarajesh/survey-builder/internal/logging"
	"github.com/gokatarajesh/survey-builder/internal/metrics"
	"github.com/gokatarajesh/survey-builder/internal/server"
	"github.com/gokatarajesh/survey-builder/internal/session"
	"github.com/gokatarajesh/survey-builder/internal/survey"
	ws "github.com/gokatarajesh/survey-builder/pkg/http/ws"
)

// Application aggregates shared infrastructure (session registry, cache, HTTP server).
type Application struct {
	cfg    *config.App
	logger zerolog.Logger

	redis *redis.Client
	http  *http.Server

	sweeper   *session.Sweeper
	bgCancels []context.CancelFunc
}

// New bootstraps logger, metrics, the optional Redis snapshot cache and the HTTP server.
func New(ctx context.Context, cfg *config.App) (*Application, error) {
	logger := logging.New(cfg.Name, cfg.Env)
	logger.Info().Msg("starting application bootstrap")

	if cfg.Security.SessionSecret == "" {
		return nil, fmt.Errorf("SESSION_SECRET must be configured")
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	appMetrics := metrics.New(registry)

	var redisClient *redis.Client
	var cache session.SnapshotCache
	if cfg.SnapshotsEnabled() {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			DB:       cfg.Redis.DB,
			PoolSize: cfg.Redis.PoolSize,
		})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.Warn().Err(err).Msg("redis unreachable at startup; snapshots will retry per command")
		}
		cache = session.NewRedisSnapshotCache(redisClient, cfg.Session.SnapshotTTL)
		logger.Info().Str("addr", cfg.Redis.Addr).Msg("session snapshot cache enabled")
	} else {
		logger.Warn().Msg("REDIS_ADDR not set; evicted sessions cannot be restored")
	}

	manager := session.NewManager(logger, session.ManagerOptions{
		IdleTimeout: cfg.Session.IdleTimeout,
		Factory:     survey.Factory{},
		Cache:       cache,
		Metrics:     appMetrics,
	})
	tokens := session.NewTokenManager(session.TokenConfig{
		Secret: []byte(cfg.Security.SessionSecret),
		TTL:    cfg.Session.TokenTTL,
		Issuer: cfg.Name,
	})
	hub := ws.NewHub(logger)
	handlers := session.NewHTTPHandlers(manager, tokens, hub, logger)

	apiServer := server.NewHTTPServer(cfg, logger, registry, redisClient, handlers)

	return &Application{
		cfg:       cfg,
		logger:    logger,
		redis:     redisClient,
		http:      apiServer,
		sweeper:   session.NewSweeper(manager, cfg.Session.SweepInterval, logger),
		bgCancels: make([]context.CancelFunc, 0, 1),
	}, nil
}

// Run starts the HTTP server and waits for termination signals.
func (a *Application) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	a.startBackgroundWorkers(ctx)

	go func() {
		a.logger.Info().Str("addr", a.cfg.HTTPAddr).Msg("http server listening")
		if err := a.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		a.logger.Info().Str("signal", sig.String()).Msg("shutdown signal received")
	case err := <-errCh:
		return fmt.Errorf("http server error: %w", err)
	case <-ctx.Done():
		a.logger.Warn().Msg("context canceled")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.GracefulShutdownTimeout)
	defer cancel()

	if err := a.http.Shutdown(shutdownCtx); err != nil {
		a.logger.Error().Err(err).Msg("http shutdown error")
	}

	for _, cancel := range a.bgCancels {
		cancel()
	}

	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.logger.Error().Err(err).Msg("redis shutdown error")
		}
	}

	a.logger.Info().Msg("shutdown complete")
	return nil
}

func (a *Application) startBackgroundWorkers(ctx context.Context) {
	if a.sweeper == nil {
		return
	}
	bgCtx, cancel := context.WithCancel(ctx)
	a.bgCancels = append(a.bgCancels, cancel)
	go func() {
		if err := a.sweeper.Run(bgCtx); err != nil && err != context.Canceled {
			a.logger.Warn().Err(err).Msg("session sweeper stopped")
		}
	}()
}

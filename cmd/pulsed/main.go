package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/robfig/cron/v3"

	"github.com/openlitera/pulse/pkg/analytics"
	"github.com/openlitera/pulse/pkg/config"
	"github.com/openlitera/pulse/pkg/middleware"
	"github.com/openlitera/pulse/pkg/observability"
	"github.com/openlitera/pulse/pkg/storage"
)

var version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "pulsed: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}

	logger := observability.NewLogger(cfg.Observability.LogLevel, os.Stdout).
		WithField("instance_id", uuid.NewString())
	logger.Infof("starting pulsed %s", version)

	ctx := context.Background()

	tp, err := observability.InitTracing(ctx, observability.TracingConfig{
		Enabled:        cfg.Observability.TracingEnabled,
		Endpoint:       cfg.Observability.TracingEndpoint,
		ServiceName:    cfg.Observability.ServiceName,
		ServiceVersion: cfg.Observability.ServiceVersion,
		Insecure:       cfg.Observability.TracingInsecure,
	}, logger)
	if err != nil {
		return fmt.Errorf("tracing init failed: %w", err)
	}

	store, err := storage.NewClient(cfg.Store, logger)
	if err != nil {
		return fmt.Errorf("store init failed: %w", err)
	}

	metrics := observability.NewMetrics(nil)
	engine := analytics.NewService(store, logger, metrics, analytics.Options{
		Workers:         cfg.Engine.Workers,
		QueueSize:       cfg.Engine.QueueSize,
		DispatchTimeout: cfg.Engine.DispatchTimeout,
	})

	// Periodic gauge refresh and snapshot warmup for the current hot items.
	jobs := cron.New()
	_, err = jobs.AddFunc(fmt.Sprintf("@every %s", cfg.Engine.WarmInterval), func() {
		jobCtx, cancel := context.WithTimeout(context.Background(), cfg.Engine.WarmInterval)
		defer cancel()

		metrics.HotLeaderboardSize.Set(float64(engine.LeaderboardSize(jobCtx)))
		metrics.EventStreamLength.Set(float64(engine.StreamLength(jobCtx)))

		hot := engine.GetHotBlogs(jobCtx, analytics.DefaultHotLimit)
		engine.WarmSnapshots(jobCtx, hot)
	})
	if err != nil {
		return fmt.Errorf("cron setup failed: %w", err)
	}
	jobs.Start()

	checker := observability.NewHealthChecker(store.Redis(), version)
	router := mux.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.AccessLog(logger))
	if cfg.Server.RateLimitPerMinute > 0 {
		limiter := middleware.NewRateLimiter(store.Redis(), &middleware.RateLimitConfig{
			RequestsPerWindow: cfg.Server.RateLimitPerMinute,
			WindowDuration:    time.Minute,
		}, "ratelimit:ops")
		router.Use(limiter.Handler)
	}
	router.HandleFunc("/healthz", checker.Liveness).Methods(http.MethodGet)
	router.HandleFunc("/readyz", checker.Readiness).Methods(http.MethodGet)
	if cfg.Observability.MetricsEnabled {
		router.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)
	}

	server := &http.Server{
		Addr:         cfg.Server.Host + ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		logger.Infof("ops server listening on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Error("ops server failed")
		}
	}()

	shutdown := observability.NewShutdownManager(logger, server, cfg.Server.ShutdownTimeout)
	shutdown.Register(func(ctx context.Context) error {
		cronCtx := jobs.Stop()
		select {
		case <-cronCtx.Done():
		case <-ctx.Done():
		}
		return nil
	})
	shutdown.Register(func(context.Context) error { return engine.Close() })
	shutdown.Register(func(context.Context) error { return store.Close() })
	if tp != nil {
		shutdown.Register(func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			defer cancel()
			return tp.Shutdown(shutdownCtx)
		})
	}

	return shutdown.Wait()
}

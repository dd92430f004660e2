package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/numreach/internal/config"
	dbRedis "github.com/kailas-cloud/numreach/internal/db/redis"
	logpkg "github.com/kailas-cloud/numreach/internal/logger"
	"github.com/kailas-cloud/numreach/internal/metrics"
	"github.com/kailas-cloud/numreach/internal/repository/resultcache"
	"github.com/kailas-cloud/numreach/internal/solver"
	chiTransport "github.com/kailas-cloud/numreach/internal/transport/chi"
	"github.com/kailas-cloud/numreach/internal/transport/ws"
	batchuc "github.com/kailas-cloud/numreach/internal/usecase/batch"
	healthuc "github.com/kailas-cloud/numreach/internal/usecase/health"
	solveuc "github.com/kailas-cloud/numreach/internal/usecase/solve"
	"github.com/kailas-cloud/numreach/internal/version"
)

var (
	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP and WebSocket API",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}
	serveConfigPath string
)

func runServe(_ *cobra.Command, _ []string) error {
	// Load configuration based on ENV
	env := config.GetEnv()

	var (
		cfg config.Config
		err error
	)
	if serveConfigPath != "" {
		cfg, err = config.LoadFile(serveConfigPath)
	} else {
		cfg, err = config.Load(env)
	}
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting numreach API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Bool("cache_enabled", cfg.Cache.Enabled),
		zap.Int("step_limit", cfg.Solver.StepLimit),
	)

	// Register solver metrics explicitly (no init())
	metrics.RegisterSolverMetrics()

	engine := buildEngine(cfg.Solver, logger)
	solveSvc := solveuc.New(engine, logger).WithMaxSolutions(cfg.Solver.MaxSolutions)

	// Pass nil interface (not typed nil pointer!) when the cache is off.
	var pinger healthuc.CachePinger
	if cfg.Cache.Enabled {
		store, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Cache.Addrs,
			Password: cfg.Cache.Password,
		})
		if err != nil {
			return fmt.Errorf("failed to create cache store (%s): %w", cfg.Cache.Driver, err)
		}
		defer store.Close()

		readiness := time.Duration(cfg.Cache.ReadinessTimeout) * time.Second
		if err := store.WaitForReady(context.Background(), readiness); err != nil {
			return fmt.Errorf("cache not ready: %w", err)
		}
		logger.Info("Connected to cache",
			zap.String("driver", cfg.Cache.Driver),
			zap.Strings("addrs", cfg.Cache.Addrs),
		)

		cache := resultcache.New(store, time.Duration(cfg.Cache.TTLSec)*time.Second, metrics.ResultCacheTotal, logger).
			WithScope(cacheScope(cfg.Solver))
		solveSvc = solveSvc.WithCache(cache)
		pinger = store
	}

	batchSvc := batchuc.New(solveSvc).
		WithMaxBatchSize(cfg.Batch.MaxSize).
		WithConcurrency(cfg.Batch.Concurrency).
		WithMaxNumbers(cfg.Solver.MaxNumbers)
	healthSvc := healthuc.New(pinger, version.Version)

	server := chiTransport.NewServer(solveSvc, batchSvc, healthSvc, logger).
		WithMaxNumbers(cfg.Solver.MaxNumbers).
		WithBatchDeadline(solveWindow(cfg.Solver), cfg.Batch.Concurrency)
	stream := ws.NewHandler(solveSvc, logger).WithMaxNumbers(cfg.Solver.MaxNumbers)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(chiTransport.BearerAuthMiddleware(cfg.Auth.APIKeys))
	r.Use(metrics.Middleware())
	server.Routes(r)
	r.Method(http.MethodGet, "/v1/ws/solve", stream)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		ReadTimeout:       time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout:      time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	select {
	case <-quit:
		logger.Info("Received shutdown signal")
	case err := <-serveErr:
		return fmt.Errorf("HTTP server error: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
	return nil
}

// solveWindow is the wall-clock bound of one solve: every phase running to
// its budget.
func solveWindow(cfg config.SolverConfig) time.Duration {
	basic, advanced, exhaustive := cfg.PhaseTimeouts()
	return basic + advanced + exhaustive
}

// buildEngine turns solver config into an engine. A positive step limit
// replaces the wall-clock budgets.
func buildEngine(cfg config.SolverConfig, logger *zap.Logger) *solver.Engine {
	basic, advanced, exhaustive := cfg.PhaseTimeouts()
	timeouts := map[string]time.Duration{
		"basic":      basic,
		"advanced":   advanced,
		"exhaustive": exhaustive,
	}

	phases := solver.DefaultPhases()
	for i := range phases {
		if d, ok := timeouts[phases[i].Name]; ok && d > 0 {
			phases[i].Timeout = d
		}
	}

	opts := []solver.Option{solver.WithPhases(phases), solver.WithLogger(logger)}
	if cfg.StepLimit > 0 {
		opts = append(opts, solver.WithBudget(solver.Steps(cfg.StepLimit)))
	}
	return solver.New(opts...)
}

// cacheScope identifies the engine settings a cached result was produced
// under. Results from a different build or budget never mix.
func cacheScope(cfg config.SolverConfig) string {
	return fmt.Sprintf("%s|steps=%d|ms=%d/%d/%d", version.Version, cfg.StepLimit,
		cfg.PhaseTimeoutsMS.Basic, cfg.PhaseTimeoutsMS.Advanced, cfg.PhaseTimeoutsMS.Exhaustive)
}

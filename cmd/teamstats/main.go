package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/Sternrassler/teamstats/internal/api"
	"github.com/Sternrassler/teamstats/pkg/bulk"
	"github.com/Sternrassler/teamstats/pkg/cache"
	"github.com/Sternrassler/teamstats/pkg/client"
	"github.com/Sternrassler/teamstats/pkg/config"
	"github.com/Sternrassler/teamstats/pkg/logging"
	"github.com/Sternrassler/teamstats/pkg/metrics"
	"github.com/Sternrassler/teamstats/pkg/pipeline"
	"github.com/Sternrassler/teamstats/pkg/queue"
	"github.com/Sternrassler/teamstats/pkg/teams"
	"github.com/Sternrassler/teamstats/pkg/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logging.Setup(cfg.LoggingConfig())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		log.Fatal().Err(err).Msg("Server failed")
	}
}

// app holds the wired components of one running service.
type app struct {
	queue   *queue.Queue
	workers *worker.Service
	service *teams.Service
	handler http.Handler

	// closers run in order on shutdown
	closers []func() error
}

// newApp wires configuration into components. Background work starts in run.
func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	source, err := client.New(cfg.ClientConfig())
	if err != nil {
		return nil, fmt.Errorf("create source client: %w", err)
	}

	a := &app{}

	store, ready, err := a.newStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	results := cache.NewResultCache(store, cfg.Cache.TTL)

	bulkProcessor, err := bulk.NewProcessor(source, cfg.BulkProcessorConfig())
	if err != nil {
		return nil, fmt.Errorf("create bulk processor: %w", err)
	}

	a.queue = queue.New(logging.NewLogger("queue"))
	a.service = teams.NewService(a.queue, results, bulkProcessor, logging.NewLogger("teams"))

	processor := pipeline.NewProcessor(source, results, logging.NewLogger("pipeline"))
	a.workers = worker.NewService(a.queue, a.service.Track(processor.Handle), cfg.WorkerConfig(), logging.NewLogger("worker"))

	router := api.NewRouter(api.NewHandler(a.service, logging.NewLogger("api")), metrics.Handler(), logging.NewLogger("http"))
	router.Get("/ready", readyHandler(ready))
	a.handler = router

	return a, nil
}

// newStore builds the configured cache backend and its readiness check.
func (a *app) newStore(ctx context.Context, cfg *config.Config) (cache.Store, func(context.Context) error, error) {
	switch cfg.Cache.Backend {
	case "redis":
		opts, err := redis.ParseURL(cfg.Cache.RedisURL)
		if err != nil {
			return nil, nil, fmt.Errorf("parse redis url: %w", err)
		}
		redisClient := redis.NewClient(opts)
		if err := redisClient.Ping(ctx).Err(); err != nil {
			redisClient.Close()
			return nil, nil, fmt.Errorf("connect to redis: %w", err)
		}
		log.Info().Str("addr", opts.Addr).Msg("Connected to Redis")

		a.closers = append(a.closers, redisClient.Close)
		manager := cache.NewManager(redisClient)
		return manager, manager.Ping, nil

	default:
		store := cache.NewMemoryStore()
		sweepCtx, cancel := context.WithCancel(context.Background())
		go store.RunSweeper(sweepCtx, cfg.Cache.SweepInterval)
		a.closers = append(a.closers, func() error {
			cancel()
			return nil
		})
		return store, func(context.Context) error { return nil }, nil
	}
}

func (a *app) close() {
	for _, c := range a.closers {
		if err := c(); err != nil {
			log.Warn().Err(err).Msg("Error during shutdown")
		}
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.close()

	a.workers.Start(ctx)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: a.handler,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info().
			Str("addr", srv.Addr).
			Str("cache_backend", cfg.Cache.Backend).
			Int("workers", cfg.Queue.Workers).
			Msg("Starting teamstats server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			a.workers.Stop()
			return fmt.Errorf("http server: %w", err)
		}
	case <-ctx.Done():
	}

	log.Info().Msg("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("HTTP server shutdown incomplete")
	}

	a.queue.Close()
	a.workers.Stop()

	log.Info().Int("abandoned_tasks", a.queue.Len()).Msg("Shutdown complete")
	return nil
}

func readyHandler(check func(context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := check(r.Context()); err != nil {
			log.Warn().Err(err).Msg("Readiness check failed")
			http.Error(w, "cache unavailable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "OK")
	}
}

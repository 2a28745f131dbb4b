// Package worker runs the long-lived consumers that drain the task queue.
package worker

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"

	"github.com/Sternrassler/teamstats/pkg/logging"
	"github.com/Sternrassler/teamstats/pkg/queue"
)

var (
	// ActiveWorkers is the number of running consumer goroutines.
	ActiveWorkers = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "teamstats_workers_active",
		Help: "Number of running queue consumers",
	})

	// TaskDuration tracks how long one task takes inside the handler.
	TaskDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "teamstats_task_duration_seconds",
		Help:    "Time spent processing one queued task",
		Buckets: prometheus.DefBuckets,
	}, []string{"result"}) // "success", "failure"
)

// Config holds worker service configuration.
type Config struct {
	// Workers is the number of concurrent consumers (default: 1)
	Workers int
}

// DefaultConfig returns a single sequential consumer.
func DefaultConfig() Config {
	return Config{Workers: 1}
}

// Service binds N consumers to one queue and one handler.
type Service struct {
	queue   *queue.Queue
	handler queue.Handler
	workers int
	logger  zerolog.Logger

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// NewService creates a stopped service. A non-positive worker count falls
// back to 1.
func NewService(q *queue.Queue, handler queue.Handler, cfg Config, logger zerolog.Logger) *Service {
	if q == nil {
		panic("task queue cannot be nil")
	}
	if handler == nil {
		panic("task handler cannot be nil")
	}

	workers := cfg.Workers
	if workers <= 0 {
		logger.Warn().
			Int("specified_count", cfg.Workers).
			Int("default_count", 1).
			Msg("Invalid worker count, using default")
		workers = 1
	}

	return &Service{
		queue:   q,
		handler: handler,
		workers: workers,
		logger:  logger,
	}
}

// Workers returns the number of consumers Start launches.
func (s *Service) Workers() int {
	return s.workers
}

// Start launches the consumers. They run until ctx is cancelled, Stop is
// called, or the queue is closed and empty. Calling Start twice is a no-op.
func (s *Service) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return
	}
	s.running = true

	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.logger.Info().Int("workers", s.workers).Msg("Starting worker service")

	for i := 0; i < s.workers; i++ {
		s.wg.Add(1)
		go s.run(runCtx, i)
	}
}

// Stop signals the consumers to exit and waits for them. A task already in
// progress finishes first.
func (s *Service) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	cancel := s.cancel
	s.mu.Unlock()

	s.logger.Info().Msg("Stopping worker service")
	cancel()
	s.wg.Wait()
	s.logger.Info().Msg("Worker service stopped")
}

// Wait blocks until every consumer has exited.
func (s *Service) Wait() {
	s.wg.Wait()
}

func (s *Service) run(ctx context.Context, id int) {
	defer s.wg.Done()

	ActiveWorkers.Inc()
	defer ActiveWorkers.Dec()

	logger := s.logger.With().Int("worker_id", id).Logger()
	logger.Debug().Msg("Worker started")

	err := s.queue.Drain(ctx, func(ctx context.Context, task queue.Task) error {
		return s.process(ctx, logger, task)
	})

	switch {
	case err == nil:
		logger.Debug().Msg("Worker exiting: queue closed")
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		logger.Debug().Msg("Worker exiting: cancelled")
	default:
		logger.Error().Err(err).Msg("Worker exited with error")
	}
}

// process logs around one handler call. The returned error is reported
// again by the queue loop, which keeps going.
func (s *Service) process(ctx context.Context, logger zerolog.Logger, task queue.Task) error {
	start := time.Now()
	logger = logging.WithTask(logger, task.CorrelationID, task.TeamNumber)

	logger.Info().Msg("Processing team request")

	err := s.handler(ctx, task)
	duration := time.Since(start)

	if err != nil {
		TaskDuration.WithLabelValues("failure").Observe(duration.Seconds())
		logger.Warn().Err(err).Dur("duration", duration).Msg("Team request failed")
		return err
	}

	TaskDuration.WithLabelValues("success").Observe(duration.Seconds())
	logger.Info().Dur("duration", duration).Msg("Team request processed")
	return nil
}

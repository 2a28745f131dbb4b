// Package queue provides the unbounded, ordered hand-off between request
// handlers and the background workers.
//
// Enqueue never blocks and never fails for capacity reasons. Drain removes
// items one at a time and hands them to a Handler; a failing or panicking
// handler is logged and the loop moves on to the next item. Items are
// delivered at most once: there is no redelivery and no retry.
package queue

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"

	"github.com/Sternrassler/teamstats/pkg/logging"
)

// ErrQueueClosed is returned by Enqueue after Close.
var ErrQueueClosed = errors.New("task queue is closed")

var (
	queueDepth = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "teamstats_queue_depth",
		Help: "Number of tasks waiting in the queue",
	})

	queueEnqueuedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "teamstats_queue_enqueued_total",
		Help: "Total number of tasks enqueued",
	})

	queueProcessedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "teamstats_queue_processed_total",
		Help: "Total number of tasks handed to a handler, by result",
	}, []string{"result"}) // "ok", "error", "panic"
)

// Task is a request to process one team, identified by its correlation token.
type Task struct {
	TeamNumber    int       `json:"team_number"`
	CorrelationID string    `json:"correlation_id"`
	EnqueuedAt    time.Time `json:"enqueued_at"`
}

// Handler processes one task. A returned error is logged by Drain and does
// not stop the loop.
type Handler func(ctx context.Context, task Task) error

// Queue is an unbounded FIFO of tasks, safe for many producers and consumers.
type Queue struct {
	mu     sync.Mutex
	items  []Task
	closed bool

	// notify carries at most one pending wake-up for consumers
	notify chan struct{}

	// done is closed by Close
	done chan struct{}

	logger zerolog.Logger
}

// New creates an empty queue.
func New(logger zerolog.Logger) *Queue {
	return &Queue{
		notify: make(chan struct{}, 1),
		done:   make(chan struct{}),
		logger: logger,
	}
}

// Enqueue appends task to the queue. It only fails once the queue is closed.
func (q *Queue) Enqueue(task Task) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return ErrQueueClosed
	}
	q.items = append(q.items, task)
	n := len(q.items)
	q.mu.Unlock()

	queueEnqueuedTotal.Inc()
	queueDepth.Set(float64(n))
	q.wake()

	q.logger.Debug().
		Str("correlation_id", task.CorrelationID).
		Int("team", task.TeamNumber).
		Int("queue_len", n).
		Msg("Item enqueued")

	return nil
}

// Len returns the number of tasks waiting.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Close stops the queue from accepting tasks. Tasks already queued are still
// delivered; Drain returns once they are gone. Close is idempotent.
func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}
	q.closed = true
	close(q.done)
	q.logger.Info().Int("queue_len", len(q.items)).Msg("Task queue closed")
}

// Drain hands queued tasks to handler until ctx is cancelled or the queue is
// closed and empty. Cancellation is cooperative: a task already handed to
// handler runs to completion before Drain returns ctx.Err().
// Drain returns nil when it stops because the queue was closed.
func (q *Queue) Drain(ctx context.Context, handler Handler) error {
	if handler == nil {
		return fmt.Errorf("handler cannot be nil")
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		task, ok, closed := q.pop()
		if ok {
			q.handle(ctx, handler, task)
			continue
		}
		if closed {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-q.notify:
		case <-q.done:
		}
	}
}

// pop removes the head of the queue.
func (q *Queue) pop() (task Task, ok bool, closed bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.items) == 0 {
		return Task{}, false, q.closed
	}

	task = q.items[0]
	q.items[0] = Task{}
	q.items = q.items[1:]
	remaining := len(q.items)

	queueDepth.Set(float64(remaining))
	if remaining > 0 {
		// hand the wake-up on so an idle consumer picks up the next item
		q.wake()
	}

	return task, true, q.closed
}

func (q *Queue) wake() {
	select {
	case q.notify <- struct{}{}:
	default:
	}
}

// handle runs handler for one task; errors and panics stop here.
func (q *Queue) handle(ctx context.Context, handler Handler, task Task) {
	logger := logging.WithTask(q.logger, task.CorrelationID, task.TeamNumber)

	logger.Debug().Msg("Processing item")

	err := safeCall(ctx, handler, task)
	switch {
	case err == nil:
		queueProcessedTotal.WithLabelValues("ok").Inc()
	case errors.Is(err, errHandlerPanic):
		queueProcessedTotal.WithLabelValues("panic").Inc()
		logger.Error().Err(err).Msg("Error processing item")
	default:
		queueProcessedTotal.WithLabelValues("error").Inc()
		logger.Error().Err(err).Msg("Error processing item")
	}
}

var errHandlerPanic = errors.New("handler panic")

func safeCall(ctx context.Context, handler Handler, task Task) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", errHandlerPanic, r)
		}
	}()
	return handler(ctx, task)
}

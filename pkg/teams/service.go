// Package teams exposes the caller-facing operations: enqueue a team
// request, poll its result by correlation token and run the synchronous
// all-teams fetch.
package teams

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Sternrassler/teamstats/pkg/cache"
	"github.com/Sternrassler/teamstats/pkg/pipeline"
	"github.com/Sternrassler/teamstats/pkg/queue"
	"github.com/Sternrassler/teamstats/pkg/stats"
)

var (
	// ErrNotFound means no readable result exists for a token: it was never
	// issued, is still being processed, or has expired.
	ErrNotFound = errors.New("result not found")

	// ErrPending means this process accepted the token and has not stored a
	// result yet. It wraps ErrNotFound.
	ErrPending = fmt.Errorf("%w: still processing", ErrNotFound)

	// ErrInvalidTeam is returned for a non-positive team number.
	ErrInvalidTeam = errors.New("team number must be positive")
)

// Enqueuer accepts tasks for background processing.
type Enqueuer interface {
	Enqueue(task queue.Task) error
}

// ResultReader reads a stored result by correlation token.
type ResultReader interface {
	Get(ctx context.Context, token string, dst any) error
}

// BulkRunner returns the merged records of every configured team.
type BulkRunner interface {
	ProcessAll(ctx context.Context) ([]stats.StatRecord, error)
}

// Service implements the enqueue, poll and bulk operations.
type Service struct {
	queue   Enqueuer
	results ResultReader
	bulk    BulkRunner
	newID   func() string
	logger  zerolog.Logger

	// pending holds tokens accepted by this process that are queued or running
	mu      sync.Mutex
	pending map[string]struct{}
}

// NewService wires the operations to their collaborators.
func NewService(q Enqueuer, results ResultReader, bulk BulkRunner, logger zerolog.Logger) *Service {
	return &Service{
		queue:   q,
		results: results,
		bulk:    bulk,
		newID:   uuid.NewString,
		logger:  logger,
		pending: make(map[string]struct{}),
	}
}

// Enqueue mints a fresh correlation token, queues the team and returns the
// token immediately. Every call yields a distinct token, even for the same team.
func (s *Service) Enqueue(ctx context.Context, teamNumber int) (string, error) {
	if teamNumber <= 0 {
		return "", fmt.Errorf("%w (got %d)", ErrInvalidTeam, teamNumber)
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	token := s.newID()

	s.mu.Lock()
	s.pending[token] = struct{}{}
	s.mu.Unlock()

	if err := s.queue.Enqueue(queue.Task{TeamNumber: teamNumber, CorrelationID: token, EnqueuedAt: time.Now()}); err != nil {
		s.mu.Lock()
		delete(s.pending, token)
		s.mu.Unlock()
		return "", fmt.Errorf("enqueue team %d: %w", teamNumber, err)
	}

	s.logger.Info().
		Str("correlation_id", token).
		Int("team", teamNumber).
		Msg("Team request accepted")

	return token, nil
}

// Poll returns the stored result for token. It returns ErrPending while
// the request is still queued or running, and ErrNotFound for unknown or
// expired tokens.
// The pending set is read before the cache so a task completing between the
// two reads shows up as pending, never as not found.
func (s *Service) Poll(ctx context.Context, token string) (*pipeline.Result, error) {
	s.mu.Lock()
	_, inFlight := s.pending[token]
	s.mu.Unlock()

	var res pipeline.Result
	err := s.results.Get(ctx, token, &res)
	switch {
	case err == nil:
		return &res, nil
	case errors.Is(err, cache.ErrCacheMiss):
		if inFlight {
			return nil, ErrPending
		}
		return nil, ErrNotFound
	default:
		return nil, fmt.Errorf("read result %s: %w", token, err)
	}
}

// Summary returns the per-team season summary of a completed request.
func (s *Service) Summary(ctx context.Context, token string) ([]stats.SeasonSummary, error) {
	res, err := s.Poll(ctx, token)
	if err != nil {
		return nil, err
	}
	return stats.Summarize(res.Records), nil
}

// AllTeams runs the bulk fetch synchronously.
func (s *Service) AllTeams(ctx context.Context) ([]stats.StatRecord, error) {
	records, err := s.bulk.ProcessAll(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("All-teams fetch failed")
		return nil, err
	}
	return records, nil
}

// AllTeamsSummary runs the bulk fetch and summarizes it per team.
func (s *Service) AllTeamsSummary(ctx context.Context) ([]stats.SeasonSummary, error) {
	records, err := s.AllTeams(ctx)
	if err != nil {
		return nil, err
	}
	return stats.Summarize(records), nil
}

// Track wraps the task handler so a token leaves the pending set once its
// task has been handled, whatever the outcome.
func (s *Service) Track(next queue.Handler) queue.Handler {
	return func(ctx context.Context, task queue.Task) error {
		defer s.done(task.CorrelationID)
		return next(ctx, task)
	}
}

// Pending returns the number of accepted tokens not yet handled.
func (s *Service) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

func (s *Service) done(token string) {
	s.mu.Lock()
	delete(s.pending, token)
	s.mu.Unlock()
}

package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"

	"github.com/Sternrassler/teamstats/pkg/client"
	"github.com/Sternrassler/teamstats/pkg/logging"
	"github.com/Sternrassler/teamstats/pkg/queue"
	"github.com/Sternrassler/teamstats/pkg/stats"
)

// Outcomes counts processed requests by outcome.
var Outcomes = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "teamstats_pipeline_outcomes_total",
	Help: "Total number of processed team requests by outcome",
}, []string{"outcome"})

// Fetcher returns the raw payload for one team.
type Fetcher interface {
	FetchTeamData(ctx context.Context, teamNumber int) ([]byte, error)
}

// ResultWriter stores a value under a correlation token with the standard TTL.
type ResultWriter interface {
	Put(ctx context.Context, token string, value any) error
}

// Processor runs the single-team pipeline.
type Processor struct {
	fetcher Fetcher
	results ResultWriter
	now     func() time.Time
	logger  zerolog.Logger
}

// NewProcessor creates a processor that fetches with fetcher and writes to results.
func NewProcessor(fetcher Fetcher, results ResultWriter, logger zerolog.Logger) *Processor {
	if fetcher == nil {
		panic("fetcher cannot be nil")
	}
	if results == nil {
		panic("result writer cannot be nil")
	}
	return &Processor{
		fetcher: fetcher,
		results: results,
		now:     time.Now,
		logger:  logger,
	}
}

// Handle adapts Process to queue.Handler. The only error it returns is a
// failed cache write; fetch and parse failures are part of the Result.
// The write is detached from ctx cancellation so an aborted fetch still
// leaves a definite answer under the token.
func (p *Processor) Handle(ctx context.Context, task queue.Task) error {
	logger := logging.WithTask(p.logger, task.CorrelationID, task.TeamNumber)

	res := p.Process(ctx, task.TeamNumber, task.CorrelationID)
	if err := p.results.Put(context.WithoutCancel(ctx), task.CorrelationID, res); err != nil {
		logger.Error().Err(err).Msg("Failed to cache result")
		return fmt.Errorf("cache result for team %d: %w", task.TeamNumber, err)
	}

	event := logger.Debug()
	if res.Failed() {
		event = logger.Info()
	}
	event.
		Str("outcome", string(res.Outcome)).
		Int("records", len(res.Records)).
		Msg("Result cached")

	return nil
}

// Process fetches and extracts one team's records. It never fails: fetch
// and parse problems yield an empty record list with the matching Outcome.
// No year filter and no deduplication are applied.
func (p *Processor) Process(ctx context.Context, teamNumber int, correlationID string) Result {
	logger := logging.WithTask(p.logger, correlationID, teamNumber)

	res := Result{
		CorrelationID: correlationID,
		TeamNumber:    teamNumber,
		Records:       []stats.StatRecord{},
	}
	defer func() {
		Outcomes.WithLabelValues(string(res.Outcome)).Inc()
	}()

	data, err := p.fetcher.FetchTeamData(ctx, teamNumber)
	if err != nil {
		logger.Warn().
			Err(err).
			Str("error_class", string(client.ClassOf(err))).
			Msg("Fetch failed, caching empty result")
		res.Outcome = OutcomeFetchFailed
		res.Reason = err.Error()
		res.CompletedAt = p.now()
		return res
	}

	ext, err := stats.Extract(data, stats.ExtractOptions{})
	if err != nil {
		logger.Warn().Err(err).Msg("Payload could not be parsed, caching empty result")
		res.Outcome = OutcomeParseFailed
		res.Reason = err.Error()
		res.CompletedAt = p.now()
		return res
	}

	res.Records = ext.Records
	res.CompletedAt = p.now()
	if len(ext.Records) == 0 {
		res.Outcome = OutcomeNoData
		res.Reason = fmt.Sprintf("%d matches, %d skipped", ext.Matches, ext.Skipped)
	} else {
		res.Outcome = OutcomeOK
	}

	logger.Debug().
		Int("matches", ext.Matches).
		Int("skipped", ext.Skipped).
		Int("records", len(res.Records)).
		Str("outcome", string(res.Outcome)).
		Msg("Extracted team records")

	return res
}

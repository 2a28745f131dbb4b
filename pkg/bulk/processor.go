package bulk

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/Sternrassler/teamstats/pkg/client"
	"github.com/Sternrassler/teamstats/pkg/stats"
)

// ErrInvalidRange is returned for an empty or non-positive team range.
var ErrInvalidRange = errors.New("invalid team range")

var (
	runDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "teamstats_bulk_run_duration_seconds",
		Help:    "Duration of a full bulk run over all configured teams",
		Buckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
	})

	teamResults = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "teamstats_bulk_team_results_total",
		Help: "Per-team branch results of bulk runs",
	}, []string{"outcome"}) // "ok", "fetch_failed", "parse_failed"
)

// Config holds bulk processor configuration.
type Config struct {
	// FirstTeam and LastTeam bound the processed team numbers (inclusive)
	FirstTeam int
	LastTeam  int

	// TargetYear keeps only matches played in this year (0 = all years)
	TargetYear int

	// MaxConcurrency bounds parallel branches (0 = one goroutine per team)
	MaxConcurrency int
}

// DefaultConfig returns the 32-team, 2020 season configuration.
func DefaultConfig() Config {
	return Config{
		FirstTeam:      1,
		LastTeam:       32,
		TargetYear:     2020,
		MaxConcurrency: 0,
	}
}

// Fetcher returns the raw payload for one team.
type Fetcher interface {
	FetchTeamData(ctx context.Context, teamNumber int) ([]byte, error)
}

// TeamResult is the local outcome of one branch.
type TeamResult struct {
	TeamNumber int
	Records    []stats.StatRecord
	Err        error
}

// Report describes one bulk run.
type Report struct {
	// Records is the merged, deduplicated list
	Records []stats.StatRecord

	// Teams holds every branch result in ascending team order
	Teams []TeamResult

	// Duplicates is the number of records dropped by deduplication
	Duplicates int

	Duration time.Duration
}

// FailedTeams returns the team numbers whose branch produced no payload.
func (r *Report) FailedTeams() []int {
	var failed []int
	for _, t := range r.Teams {
		if t.Err != nil {
			failed = append(failed, t.TeamNumber)
		}
	}
	return failed
}

// Processor runs bulk fetches.
type Processor struct {
	fetcher Fetcher
	config  Config
}

// NewProcessor creates a processor over config's team range.
func NewProcessor(fetcher Fetcher, config Config) (*Processor, error) {
	if fetcher == nil {
		return nil, fmt.Errorf("fetcher cannot be nil")
	}
	if config.FirstTeam <= 0 || config.LastTeam < config.FirstTeam {
		return nil, fmt.Errorf("%w: %d..%d", ErrInvalidRange, config.FirstTeam, config.LastTeam)
	}
	if config.MaxConcurrency < 0 {
		config.MaxConcurrency = 0
	}

	return &Processor{
		fetcher: fetcher,
		config:  config,
	}, nil
}

// Config returns the processor configuration.
func (p *Processor) Config() Config {
	return p.config
}

// ProcessAll returns the merged, deduplicated records of every team.
// Per-team failures are logged and skipped; an error means the run itself
// could not complete.
func (p *Processor) ProcessAll(ctx context.Context) ([]stats.StatRecord, error) {
	report, err := p.Run(ctx)
	if err != nil {
		return nil, err
	}
	return report.Records, nil
}

// Run performs one bulk run and returns the full report.
func (p *Processor) Run(ctx context.Context) (*Report, error) {
	start := time.Now()
	teamCount := p.config.LastTeam - p.config.FirstTeam + 1

	log.Info().
		Int("first_team", p.config.FirstTeam).
		Int("last_team", p.config.LastTeam).
		Int("target_year", p.config.TargetYear).
		Int("max_concurrency", p.config.MaxConcurrency).
		Msg("Starting bulk fetch")

	// each branch owns exactly one slot
	slots := make([]TeamResult, teamCount)

	var g errgroup.Group
	if p.config.MaxConcurrency > 0 {
		g.SetLimit(p.config.MaxConcurrency)
	}

	for i := 0; i < teamCount; i++ {
		i := i
		team := p.config.FirstTeam + i
		g.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = fmt.Errorf("team %d: panic: %v", team, r)
				}
			}()
			slots[i] = p.processTeam(ctx, team)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("Bulk fetch aborted")
		return nil, fmt.Errorf("bulk fetch: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("bulk fetch: %w", err)
	}

	merged := make([]stats.StatRecord, 0)
	for _, slot := range slots {
		merged = append(merged, slot.Records...)
	}
	records := stats.Dedupe(merged)

	report := &Report{
		Records:    records,
		Teams:      slots,
		Duplicates: len(merged) - len(records),
		Duration:   time.Since(start),
	}
	runDuration.Observe(report.Duration.Seconds())

	log.Info().
		Int("teams", teamCount).
		Int("failed_teams", len(report.FailedTeams())).
		Int("records", len(records)).
		Int("duplicates", report.Duplicates).
		Dur("duration", report.Duration).
		Msg("Bulk fetch complete")

	return report, nil
}

// processTeam fetches and extracts one team. Failures stay local to the
// returned TeamResult.
func (p *Processor) processTeam(ctx context.Context, team int) TeamResult {
	res := TeamResult{TeamNumber: team}

	data, err := p.fetcher.FetchTeamData(ctx, team)
	if err != nil {
		teamResults.WithLabelValues("fetch_failed").Inc()
		log.Warn().
			Err(err).
			Int("team", team).
			Str("error_class", string(client.ClassOf(err))).
			Msg("Team fetch failed")
		res.Err = err
		return res
	}

	ext, err := stats.Extract(data, stats.ExtractOptions{Year: p.config.TargetYear})
	if err != nil {
		teamResults.WithLabelValues("parse_failed").Inc()
		log.Warn().Err(err).Int("team", team).Msg("Team payload could not be parsed")
		res.Err = err
		return res
	}

	teamResults.WithLabelValues("ok").Inc()
	log.Debug().
		Int("team", team).
		Int("records", len(ext.Records)).
		Int("skipped", ext.Skipped).
		Int("filtered", ext.Filtered).
		Msg("Team processed")

	res.Records = ext.Records
	return res
}

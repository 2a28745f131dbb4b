// Package client provides the HTTP client for the sports statistics data
// source. It fetches the raw per-team payload and classifies failures.
package client

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Prometheus metrics for data source requests.
var (
	sourceRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "teamstats_source_requests_total",
		Help: "Total data source requests by status",
	}, []string{"status"})

	sourceRequestDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "teamstats_source_request_duration_seconds",
		Help:    "Data source request duration in seconds",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30},
	})

	sourceErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "teamstats_source_errors_total",
		Help: "Total data source errors by class",
	}, []string{"class"})
)

// ErrorClass represents a classification of fetch failures.
type ErrorClass string

const (
	// ErrorClassClient represents 4xx client errors.
	ErrorClassClient ErrorClass = "client"

	// ErrorClassServer represents 5xx server errors.
	ErrorClassServer ErrorClass = "server"

	// ErrorClassNetwork represents network/timeout errors.
	ErrorClassNetwork ErrorClass = "network"

	// ErrorClassUnexpected represents non-2xx statuses outside 4xx/5xx.
	ErrorClassUnexpected ErrorClass = "unexpected"
)

// DefaultBaseURL is the public search handler of the sports data source.
const DefaultBaseURL = "https://sports.snoozle.net/search/nfl/searchHandler"

// Client fetches team payloads from the data source.
type Client struct {
	httpClient *http.Client
	config     Config
	logger     zerolog.Logger
}

// Config holds the client configuration.
type Config struct {
	// BaseURL of the search handler
	BaseURL string

	// Season requested from the source
	Season int

	// StatType requested from the source (e.g. "teamStats")
	StatType string

	// User-Agent header sent with each request
	UserAgent string

	// Timeout of the underlying HTTP client (0 = no timeout)
	Timeout time.Duration
}

// DefaultConfig returns the configuration used against the public source.
func DefaultConfig() Config {
	return Config{
		BaseURL:   DefaultBaseURL,
		Season:    2020,
		StatType:  "teamStats",
		UserAgent: "teamstats/0.1.0",
		Timeout:   30 * time.Second,
	}
}

// New creates a new data source client.
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("base url is required")
	}
	if _, err := url.Parse(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("invalid base url: %w", err)
	}

	if cfg.UserAgent == "" {
		return nil, fmt.Errorf("user-agent is required")
	}

	if cfg.Season <= 0 {
		return nil, fmt.Errorf("season must be positive (got %d)", cfg.Season)
	}

	if cfg.StatType == "" {
		cfg.StatType = "teamStats"
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		config: cfg,
		logger: log.With().Str("component", "source-client").Logger(),
	}, nil
}

// FetchTeamData returns the raw payload for one team.
// Any non-2xx response is returned as a *FetchError.
func (c *Client) FetchTeamData(ctx context.Context, teamNumber int) ([]byte, error) {
	startTime := time.Now()
	defer func() {
		sourceRequestDuration.Observe(time.Since(startTime).Seconds())
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.teamURL(teamNumber), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.config.UserAgent)
	req.Header.Set("Accept", "application/json")

	c.logger.Debug().Int("team", teamNumber).Msg("Fetching team data")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		errClass := classifyError(nil, err)
		sourceErrorsTotal.WithLabelValues(string(errClass)).Inc()
		sourceRequestsTotal.WithLabelValues("network_error").Inc()
		c.logger.Warn().Err(err).Int("team", teamNumber).Msg("Team data request failed")
		return nil, &FetchError{
			ErrorClass: errClass,
			Message:    "request failed",
			Err:        err,
		}
	}
	defer resp.Body.Close()

	sourceRequestsTotal.WithLabelValues(strconv.Itoa(resp.StatusCode)).Inc()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		errClass := classifyError(resp, nil)
		sourceErrorsTotal.WithLabelValues(string(errClass)).Inc()
		c.logger.Warn().
			Int("team", teamNumber).
			Int("status_code", resp.StatusCode).
			Str("error_class", string(errClass)).
			Msg("Data source returned non-success status")
		return nil, &FetchError{
			StatusCode: resp.StatusCode,
			ErrorClass: errClass,
			Message:    resp.Status,
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		sourceErrorsTotal.WithLabelValues(string(ErrorClassNetwork)).Inc()
		return nil, &FetchError{
			StatusCode: resp.StatusCode,
			ErrorClass: ErrorClassNetwork,
			Message:    "read response body",
			Err:        err,
		}
	}

	c.logger.Info().
		Int("team", teamNumber).
		Int("bytes", len(body)).
		Dur("duration", time.Since(startTime)).
		Msg("Fetched team data")

	return body, nil
}

// teamURL builds the search handler URL for one team.
func (c *Client) teamURL(teamNumber int) string {
	q := url.Values{}
	q.Set("fileType", "inline")
	q.Set("statType", c.config.StatType)
	q.Set("season", strconv.Itoa(c.config.Season))
	q.Set("teamName", strconv.Itoa(teamNumber))
	return c.config.BaseURL + "?" + q.Encode()
}

// classifyError categorizes a failure for observability.
func classifyError(resp *http.Response, err error) ErrorClass {
	if err != nil {
		return ErrorClassNetwork
	}

	switch {
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		return ErrorClassClient
	case resp.StatusCode >= 500:
		return ErrorClassServer
	default:
		return ErrorClassUnexpected
	}
}

// SetHTTPClient sets a custom HTTP client (for testing).
func (c *Client) SetHTTPClient(client *http.Client) {
	c.httpClient = client
}

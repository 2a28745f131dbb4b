// Package pipeline processes one queued team request end to end: fetch the
// team payload, extract stat records and store the outcome under the
// request's correlation token.
package pipeline

import (
	"time"

	"github.com/Sternrassler/teamstats/pkg/stats"
)

// Outcome says how processing of one request ended.
type Outcome string

const (
	// OutcomeOK means the payload was fetched and parsed.
	OutcomeOK Outcome = "ok"

	// OutcomeNoData means the payload parsed but held no usable matches.
	OutcomeNoData Outcome = "no_data"

	// OutcomeFetchFailed means the data source could not produce a payload.
	OutcomeFetchFailed Outcome = "fetch_failed"

	// OutcomeParseFailed means the payload had no match array or was not JSON.
	OutcomeParseFailed Outcome = "parse_failed"
)

// Result is what pollers read back for a correlation token. Records is
// never nil so an empty result encodes as [].
type Result struct {
	CorrelationID string             `json:"correlation_id"`
	TeamNumber    int                `json:"team"`
	Outcome       Outcome            `json:"outcome"`
	Reason        string             `json:"reason,omitempty"`
	Records       []stats.StatRecord `json:"records"`
	CompletedAt   time.Time          `json:"completed_at"`
}

// Failed reports whether processing ended without a payload to read.
func (r Result) Failed() bool {
	return r.Outcome == OutcomeFetchFailed || r.Outcome == OutcomeParseFailed
}

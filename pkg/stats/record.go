package stats

import (
	"fmt"
	"time"
)

// StatRecord is one side's line for a single match.
type StatRecord struct {
	// Name is the team name as reported by the source
	Name string `json:"name"`

	// Code is the source's team code in textual form
	Code string `json:"code"`

	// Score is the points scored by this side
	Score string `json:"score"`

	// Date is the game date, normalized to UTC
	Date time.Time `json:"date"`
}

// key identifies the (team code, game date) pair used for deduplication.
func (r StatRecord) key() string {
	return r.Code + "|" + r.Date.UTC().Format(time.RFC3339Nano)
}

func (r StatRecord) String() string {
	return fmt.Sprintf("%s (%s) %s on %s", r.Name, r.Code, r.Score, r.Date.Format("2006-01-02"))
}

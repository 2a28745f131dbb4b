package stats

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrMalformedPayload indicates the payload is not JSON or has no match array.
var ErrMalformedPayload = errors.New("malformed payload")

// dateLayouts are tried in order when parsing a match date.
var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"1/2/2006",
	"01/02/2006",
	"1/2/2006 3:04:05 PM",
}

// ExtractOptions controls record extraction.
type ExtractOptions struct {
	// Year keeps only matches played in this calendar year (0 = all years)
	Year int
}

// Extraction is the result of extracting one payload.
type Extraction struct {
	Records  []StatRecord
	Matches  int // entries in the match array
	Skipped  int // entries dropped as malformed
	Filtered int // entries dropped by the year filter
}

type payload struct {
	MatchUpStats *[]json.RawMessage `json:"matchUpStats"`
}

type match struct {
	Date         string          `json:"date"`
	VisTeamName  *string         `json:"visTeamName"`
	HomeTeamName *string         `json:"homeTeamName"`
	VisStats     *matchSideStats `json:"visStats"`
	HomeStats    *matchSideStats `json:"homeStats"`
}

type matchSideStats struct {
	TeamCode json.RawMessage `json:"teamCode"`
	Score    json.RawMessage `json:"score"`
}

// Extract parses a raw team payload into stat records.
// It returns ErrMalformedPayload when the payload cannot be decoded or
// carries no match array; single bad matches are skipped instead.
func Extract(data []byte, opts ExtractOptions) (*Extraction, error) {
	var p payload
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	if p.MatchUpStats == nil {
		return nil, fmt.Errorf("%w: missing matchUpStats", ErrMalformedPayload)
	}

	ext := &Extraction{
		Records: make([]StatRecord, 0, 2*len(*p.MatchUpStats)),
		Matches: len(*p.MatchUpStats),
	}

	for _, raw := range *p.MatchUpStats {
		vis, home, ok := parseMatch(raw)
		if !ok {
			ext.Skipped++
			continue
		}
		if opts.Year != 0 && vis.Date.Year() != opts.Year {
			ext.Filtered++
			continue
		}
		ext.Records = append(ext.Records, vis, home)
	}

	return ext, nil
}

// parseMatch converts one match entry into its visitor and home records.
func parseMatch(raw json.RawMessage) (StatRecord, StatRecord, bool) {
	var m match
	if err := json.Unmarshal(raw, &m); err != nil {
		return StatRecord{}, StatRecord{}, false
	}

	date, err := ParseDate(m.Date)
	if err != nil {
		return StatRecord{}, StatRecord{}, false
	}

	vis, ok := sideRecord(m.VisTeamName, m.VisStats, date)
	if !ok {
		return StatRecord{}, StatRecord{}, false
	}
	home, ok := sideRecord(m.HomeTeamName, m.HomeStats, date)
	if !ok {
		return StatRecord{}, StatRecord{}, false
	}

	return vis, home, true
}

func sideRecord(name *string, side *matchSideStats, date time.Time) (StatRecord, bool) {
	if name == nil || side == nil {
		return StatRecord{}, false
	}

	code, ok := codeText(side.TeamCode)
	if !ok {
		return StatRecord{}, false
	}

	rawScore := bytes.TrimSpace(side.Score)
	if len(rawScore) == 0 || bytes.Equal(rawScore, []byte("null")) {
		return StatRecord{}, false
	}
	var score int64
	if err := json.Unmarshal(rawScore, &score); err != nil {
		return StatRecord{}, false
	}

	return StatRecord{
		Name:  *name,
		Code:  code,
		Score: strconv.FormatInt(score, 10),
		Date:  date,
	}, true
}

// codeText renders a team code that may arrive as a JSON string or number.
func codeText(raw json.RawMessage) (string, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", false
	}

	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", false
		}
		return s, true
	}

	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return "", false
	}
	return n.String(), true
}

// ParseDate parses a match date using the layouts the source is known to emit.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}

	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t.UTC(), nil
		}
	}

	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}

package stats

import (
	"cmp"
	"fmt"
	"slices"
	"strconv"
)

// SeasonSummary aggregates one team's records over a season.
type SeasonSummary struct {
	TeamName     string  `json:"team_name"`
	TeamCode     string  `json:"team_code"`
	TotalScore   int     `json:"total_score"`
	AverageScore float64 `json:"average_score"`
	TotalGames   int     `json:"total_games"`
}

func (s SeasonSummary) String() string {
	return fmt.Sprintf("%s (Team #%s) - Total Points: %d, Average Points/Game: %.2f, Games Played: %d",
		s.TeamName, s.TeamCode, s.TotalScore, s.AverageScore, s.TotalGames)
}

// Summarize groups records by team code and totals their scores.
// Records whose score is not an integer count as games but add no points.
// The result is ordered by team code, numerically when both codes are numbers.
func Summarize(records []StatRecord) []SeasonSummary {
	byCode := make(map[string]*SeasonSummary)

	for _, r := range records {
		s, ok := byCode[r.Code]
		if !ok {
			s = &SeasonSummary{TeamName: r.Name, TeamCode: r.Code}
			byCode[r.Code] = s
		}
		s.TotalGames++
		if score, err := strconv.Atoi(r.Score); err == nil {
			s.TotalScore += score
		}
	}

	out := make([]SeasonSummary, 0, len(byCode))
	for _, s := range byCode {
		s.AverageScore = float64(s.TotalScore) / float64(s.TotalGames)
		out = append(out, *s)
	}

	slices.SortFunc(out, func(a, b SeasonSummary) int {
		return compareCodes(a.TeamCode, b.TeamCode)
	})

	return out
}

func compareCodes(a, b string) int {
	ai, aErr := strconv.Atoi(a)
	bi, bErr := strconv.Atoi(b)
	if aErr == nil && bErr == nil {
		return cmp.Compare(ai, bi)
	}
	return cmp.Compare(a, b)
}

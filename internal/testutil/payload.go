package testutil

import (
	"encoding/json"
	"fmt"
)

// Match describes one game in a mocked team payload.
type Match struct {
	Date      string
	VisName   string
	VisCode   int
	VisScore  int
	HomeName  string
	HomeCode  int
	HomeScore int
}

type sideJSON struct {
	TeamCode int `json:"teamCode"`
	Score    int `json:"score"`
	Rushyds  int `json:"rushyds"`
	Passyds  int `json:"passyds"`
}

type matchJSON struct {
	Date         string   `json:"date"`
	VisTeamName  string   `json:"visTeamName"`
	HomeTeamName string   `json:"homeTeamName"`
	VisStats     sideJSON `json:"visStats"`
	HomeStats    sideJSON `json:"homeStats"`
}

// Payload renders matches in the data source's JSON shape.
func Payload(matches ...Match) string {
	out := struct {
		MatchUpStats []matchJSON `json:"matchUpStats"`
	}{MatchUpStats: make([]matchJSON, 0, len(matches))}

	for _, m := range matches {
		out.MatchUpStats = append(out.MatchUpStats, matchJSON{
			Date:         m.Date,
			VisTeamName:  m.VisName,
			HomeTeamName: m.HomeName,
			VisStats:     sideJSON{TeamCode: m.VisCode, Score: m.VisScore, Rushyds: 100, Passyds: 200},
			HomeStats:    sideJSON{TeamCode: m.HomeCode, Score: m.HomeScore, Rushyds: 90, Passyds: 250},
		})
	}

	data, err := json.Marshal(out)
	if err != nil {
		panic(fmt.Sprintf("marshal payload: %v", err))
	}
	return string(data)
}

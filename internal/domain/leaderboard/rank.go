package leaderboard

import (
	"sort"

	"github.com/riskibarqy/party-leaderboard/internal/domain/roster"
)

// Standing is one ranked row of the leaderboard.
type Standing struct {
	Position int
	Team     roster.Team
	Total    float64
}

// TotalScore sums the scores of the filled slots of a team.
func TotalScore(team roster.Team) float64 {
	var total float64
	for _, p := range team.Players {
		if p.IsEmpty() {
			continue
		}
		total += p.Score
	}
	return roster.Round2(total)
}

// Rank orders teams by descending total. Equal totals keep their input order,
// and when every total is zero the input order is returned unchanged.
func Rank(teams []roster.Team) []Standing {
	out := make([]Standing, len(teams))
	started := false
	for i, t := range teams {
		total := TotalScore(t)
		if total != 0 {
			started = true
		}
		out[i] = Standing{Team: t, Total: total}
	}

	if started {
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].Total > out[j].Total
		})
	}
	for i := range out {
		out[i].Position = i + 1
	}
	return out
}

// Totals indexes team totals by store id.
func Totals(teams []roster.Team) map[string]float64 {
	out := make(map[string]float64, len(teams))
	for _, t := range teams {
		out[t.StoreID] = TotalScore(t)
	}
	return out
}

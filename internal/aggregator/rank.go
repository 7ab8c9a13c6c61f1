package aggregator

import (
	"sort"

	"wls-leaderboard/internal/domain"
)

func rowStats(r domain.Row) statLine {
	return statLine{
		points:   r.Points,
		wins:     r.Wins,
		elims:    r.Elims,
		avgPlace: r.AvgPlace,
		teamName: r.TeamName,
	}
}

// SortByPoints orders rows by points desc, wins desc, elims desc, avg place
// asc, team name asc, then reassigns Place as a 1-based dense rank. Rows tying
// on every stat share a rank.
func SortByPoints(rows []domain.Row) {
	sort.SliceStable(rows, func(i, j int) bool {
		return rowStats(rows[i]).less(rowStats(rows[j]))
	})

	rank := 0
	for i := range rows {
		if i == 0 || !rowStats(rows[i-1]).sameStats(rowStats(rows[i])) {
			rank++
		}
		rows[i].Place = rank
	}
}

// SortAsReported orders rows by the API-reported place, secondary by points
// desc. Place is left as reported.
func SortAsReported(rows []domain.Row) {
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Place != rows[j].Place {
			return rows[i].Place < rows[j].Place
		}
		return rows[i].Points > rows[j].Points
	})
}

// AllDead reports whether the leaderboard is non-empty and no team is still
// in play.
func AllDead(rows []domain.Row) bool {
	if len(rows) == 0 {
		return false
	}
	for _, r := range rows {
		if r.Alive {
			return false
		}
	}
	return true
}

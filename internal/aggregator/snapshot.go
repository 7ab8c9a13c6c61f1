package aggregator

import (
	"math"

	"wls-leaderboard/internal/constants"
	"wls-leaderboard/internal/domain"
)

// EnrichWithPrevious diffs a freshly computed leaderboard against the
// previously displayed one, matched by team key, and flags each row whose
// displayed fields differ so the caller can animate it. Returns the enriched
// rows and the changed-row count. A team absent from the previous cycle
// counts as changed.
func EnrichWithPrevious(current, previous []domain.Row) ([]domain.Row, int) {
	prev := make(map[string]domain.Row, len(previous))
	for _, r := range previous {
		prev[r.TeamKey] = r
	}

	out := make([]domain.Row, len(current))
	changed := 0
	for i, r := range current {
		p, ok := prev[r.TeamKey]
		r.HasPositionChanged = !ok || rowChanged(r, p)
		if r.HasPositionChanged {
			changed++
		}
		out[i] = r
	}
	return out, changed
}

func rowChanged(cur, prev domain.Row) bool {
	if cur.Place != prev.Place ||
		cur.Points != prev.Points ||
		cur.Elims != prev.Elims ||
		cur.Wins != prev.Wins ||
		cur.Games != prev.Games {
		return true
	}
	if math.Abs(cur.AvgPlace-prev.AvgPlace) > constants.AvgPlaceTolerance {
		return true
	}
	return !samePositionChange(cur.PositionChange, prev.PositionChange)
}

func samePositionChange(a, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

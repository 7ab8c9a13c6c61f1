package aggregator

import (
	"wls-leaderboard/internal/domain"
	"wls-leaderboard/internal/identity"
)

// Options configure one aggregation pass.
type Options struct {
	// ExcludedSessionIDs are raw user-specified ids; they are normalized here
	// before matching.
	ExcludedSessionIDs []string

	// ForceRankByPoints selects the deterministic points comparator with dense
	// re-ranking. An active exclusion set implies it regardless.
	ForceRankByPoints bool

	// IndicatorsOnlyWhenAllDead suppresses position indicators while any team
	// is still in play. Rank-change badges mid-round are transient noise.
	IndicatorsOnlyWhenAllDead bool
}

// BuildUnified runs the full reconciliation pipeline over already-fetched
// team inputs: session reconciliation and exclusion filtering, row
// aggregation, ranking, and position-change computation. Pure over its
// inputs; every cycle recomputes from scratch.
func BuildUnified(teams []TeamInput, totalPages int, opts Options) domain.Unified {
	excluded := NormalizeExclusions(opts.ExcludedSessionIDs)
	exclusionsActive := len(excluded) > 0

	recs := make([]ReconcileResult, len(teams))
	matchedExcluded := make(map[string]struct{})
	for i, t := range teams {
		recs[i] = ReconcileSessions(t, excluded)
		for _, id := range recs[i].ExcludedIDs {
			matchedExcluded[id] = struct{}{}
		}
	}

	// A session is a game every team played, so the games column shrinks by
	// the count of distinct excluded sessions across the whole fetch.
	gamesRemoved := len(matchedExcluded)

	var rows []domain.Row
	for i, t := range teams {
		if row, ok := BuildRow(t, recs[i], gamesRemoved, exclusionsActive); ok {
			rows = append(rows, row)
		}
	}

	if opts.ForceRankByPoints || exclusionsActive {
		SortByPoints(rows)
	} else {
		SortAsReported(rows)
	}

	allDead := AllDead(rows)
	showIndicators := allDead || !opts.IndicatorsOnlyWhenAllDead
	if showIndicators {
		changes := PositionChangesFromSessions(rows)
		for i := range rows {
			rows[i].PositionChange = changes[rows[i].TeamKey]
		}
	}

	details := make(map[string]domain.TeamDetail, len(rows))
	hasMultipleGames := false
	for _, r := range rows {
		details[r.TeamKey] = domain.TeamDetail{
			TeamName: r.TeamName,
			Members:  r.Members,
			Sessions: r.Sessions,
		}
		if r.Games > 1 {
			hasMultipleGames = true
		}
	}

	return domain.Unified{
		Leaderboard:            rows,
		TeamDetails:            details,
		HasMultipleGames:       hasMultipleGames,
		TotalPages:             totalPages,
		AllDead:                allDead,
		ShowPositionIndicators: showIndicators,
	}
}

// NormalizeExclusions canonicalizes user-specified exclusion ids into a
// lookup set, dropping entries that normalize to nothing.
func NormalizeExclusions(ids []string) map[string]struct{} {
	out := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if n := identity.NormalizeSessionID(id); n != "" {
			out[n] = struct{}{}
		}
	}
	return out
}

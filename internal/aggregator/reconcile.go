package aggregator

import (
	"math"

	"wls-leaderboard/internal/domain"
	"wls-leaderboard/internal/identity"
)

// ReconcileResult is the per-team outcome of session reconciliation.
type ReconcileResult struct {
	// Included holds the canonical sessions that survived exclusion filtering,
	// in chronological order.
	Included []domain.Session

	// ExcludedIDs are the canonical ids of sessions dropped by the exclusion
	// set, one entry per dropped session.
	ExcludedIDs []string

	// ExcludedPointsFromV7 accumulates the v7 point values of excluded
	// sessions, when resolvable.
	ExcludedPointsFromV7 float64

	// OriginalGames is the session count before filtering.
	OriginalGames int

	// Points is the team's exclusion-adjusted point total.
	Points float64
}

// ReconcileSessions aligns a team's primary sessions with its v7 sessions by
// ordinal position, resolves canonical ids and per-session points, applies the
// exclusion set, and computes the adjusted team point total. The exclusion set
// must already be normalized.
//
// Positional alignment is deliberate: the two sources are not guaranteed to
// share id encodings, but do list a team's sessions in the same order.
func ReconcileSessions(team TeamInput, excluded map[string]struct{}) ReconcileResult {
	res := ReconcileResult{OriginalGames: len(team.Sessions)}

	allHavePrimaryPoints := len(team.Sessions) > 0
	for i, p := range team.Sessions {
		if p.Points == nil {
			allHavePrimaryPoints = false
		}

		rawID := identity.NormalizeSessionID(p.ID)
		canonical := rawID
		var auxID string
		var auxPoints *float64
		if team.V7 != nil && i < len(team.V7.Sessions) {
			aux := team.V7.Sessions[i]
			auxID = identity.NormalizeSessionID(aux.ID)
			if auxID != "" {
				canonical = auxID
			}
			auxPoints = aux.Points
		}

		var points float64
		switch {
		case p.Points != nil:
			points = *p.Points
		case auxPoints != nil:
			points = *auxPoints
		}

		if matchesExclusion(excluded, canonical, auxID, rawID) {
			res.ExcludedIDs = append(res.ExcludedIDs, canonical)
			if auxPoints != nil {
				res.ExcludedPointsFromV7 += *auxPoints
			}
			continue
		}

		res.Included = append(res.Included, domain.Session{
			ID:     canonical,
			Kills:  p.Kills,
			Place:  p.Place,
			Points: points,
		})
	}

	res.Points = adjustedPoints(team.APIPoints, res, allHavePrimaryPoints)
	return res
}

func matchesExclusion(excluded map[string]struct{}, ids ...string) bool {
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := excluded[id]; ok {
			return true
		}
	}
	return false
}

// adjustedPoints implements the three-tier fallback for point totals under
// exclusions:
//
//  1. v7 gave point values for the excluded sessions: subtract them from the
//     API total, floored at 0.
//  2. every original session carried an explicit primary point value: resum
//     over the included sessions only.
//  3. no reliable per-session points anywhere: proportional estimate
//     round(apiPoints * included / original).
func adjustedPoints(apiPoints float64, res ReconcileResult, allHavePrimaryPoints bool) float64 {
	if len(res.ExcludedIDs) == 0 {
		return apiPoints
	}

	if res.ExcludedPointsFromV7 > 0 {
		if adjusted := apiPoints - res.ExcludedPointsFromV7; adjusted > 0 {
			return adjusted
		}
		return 0
	}

	if allHavePrimaryPoints {
		var sum float64
		for _, s := range res.Included {
			sum += s.Points
		}
		return sum
	}

	if res.OriginalGames == 0 {
		return apiPoints
	}
	return math.Round(apiPoints * float64(len(res.Included)) / float64(res.OriginalGames))
}

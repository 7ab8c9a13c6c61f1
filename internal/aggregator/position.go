package aggregator

import (
	"sort"

	"wls-leaderboard/internal/domain"
)

// PositionChangesFromSessions reconstructs, from full session history, the
// rank every team held after each successive game count and returns the delta
// between each team's last two counts, keyed by team key. Positive means the
// team moved up with its latest game.
//
// For each distinct game count g observed anywhere, the contender set is every
// team with at least g sessions, ranked on its cumulative stats as of exactly
// g games (not its current totals) with the same comparator as SortByPoints.
// Teams with fewer than two games map to nil; teams with no sessions are
// omitted. Recomputed in full on every cycle.
func PositionChangesFromSessions(rows []domain.Row) map[string]*int {
	cumulative := make(map[string][]statLine, len(rows))
	maxGames := 0
	for _, r := range rows {
		if len(r.Sessions) == 0 {
			continue
		}
		var points, placeSum float64
		var wins, elims int
		snaps := make([]statLine, 0, len(r.Sessions))
		for g, s := range r.Sessions {
			points += s.Points
			if s.Place == 1 {
				wins++
			}
			elims += s.Kills
			placeSum += float64(s.Place)
			snaps = append(snaps, statLine{
				points:   points,
				wins:     wins,
				elims:    elims,
				avgPlace: placeSum / float64(g+1),
				teamName: r.TeamName,
			})
		}
		cumulative[r.TeamKey] = snaps
		if len(snaps) > maxGames {
			maxGames = len(snaps)
		}
	}

	type contender struct {
		key   string
		stats statLine
	}

	rankAt := make(map[string]map[int]int, len(cumulative))
	for g := 1; g <= maxGames; g++ {
		var contenders []contender
		for _, r := range rows {
			snaps := cumulative[r.TeamKey]
			if len(snaps) >= g {
				contenders = append(contenders, contender{key: r.TeamKey, stats: snaps[g-1]})
			}
		}
		sort.SliceStable(contenders, func(i, j int) bool {
			return contenders[i].stats.less(contenders[j].stats)
		})

		rank := 0
		for i, c := range contenders {
			if i == 0 || !contenders[i-1].stats.sameStats(c.stats) {
				rank++
			}
			if rankAt[c.key] == nil {
				rankAt[c.key] = make(map[int]int)
			}
			rankAt[c.key][g] = rank
		}
	}

	out := make(map[string]*int, len(cumulative))
	for _, r := range rows {
		snaps, ok := cumulative[r.TeamKey]
		if !ok {
			continue
		}
		games := len(snaps)
		if games < 2 {
			out[r.TeamKey] = nil
			continue
		}
		prev, okPrev := rankAt[r.TeamKey][games-1]
		cur, okCur := rankAt[r.TeamKey][games]
		if !okPrev || !okCur {
			out[r.TeamKey] = nil
			continue
		}
		delta := prev - cur
		out[r.TeamKey] = &delta
	}
	return out
}

package aggregator

import (
	"wls-leaderboard/internal/domain"
)

// BuildRow folds a team's reconciled sessions into one aggregated row. The
// second return value is false when the team must not enter the leaderboard:
// no derivable name, or every session excluded while an exclusion set is
// active.
//
// gamesRemoved is the cross-team count of distinct excluded sessions; with an
// active exclusion set the games column is the originally reported count minus
// that, so the "does any team have more than one game" signal stays consistent
// even when exclusions removed different session counts per team.
func BuildRow(team TeamInput, rec ReconcileResult, gamesRemoved int, exclusionsActive bool) (domain.Row, bool) {
	if team.TeamName == "" {
		return domain.Row{}, false
	}
	if exclusionsActive && len(rec.Included) == 0 {
		return domain.Row{}, false
	}

	var elims, wins int
	var placeSum float64
	for _, s := range rec.Included {
		elims += s.Kills
		if s.Place == 1 {
			wins++
		}
		placeSum += float64(s.Place)
	}

	var avgPlace float64
	if len(rec.Included) > 0 {
		avgPlace = placeSum / float64(len(rec.Included))
	}

	games := len(rec.Included)
	if exclusionsActive {
		games = rec.OriginalGames - gamesRemoved
		if games < 0 {
			games = 0
		}
	}

	return domain.Row{
		TeamKey:  team.TeamKey,
		TeamName: team.TeamName,
		Elims:    elims,
		AvgPlace: avgPlace,
		Wins:     wins,
		Games:    games,
		Points:   rec.Points,
		Place:    team.APIPlace,
		Alive:    team.V7 != nil && team.V7.Alive,
		Members:  team.Members,
		Sessions: rec.Included,
	}, true
}

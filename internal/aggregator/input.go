package aggregator

import (
	"wls-leaderboard/internal/domain"
)

// TeamInput is one team's worth of fetched data, already restored to ordered
// form: primary sessions sorted by their numeric index key and the matching v7
// entry (if any) resolved by team key.
type TeamInput struct {
	TeamKey   string
	TeamName  string
	APIPlace  int
	APIPoints float64
	Members   []domain.Member
	Sessions  []PrimarySession
	V7        *V7TeamData
}

// PrimarySession is a raw session from the paged leaderboard payload. Points
// is nil when the payload carried no per-session point value.
type PrimarySession struct {
	ID     string
	Kills  int
	Place  int
	Points *float64
}

// V7TeamData is the auxiliary enrichment for one team. Sessions are listed in
// the same chronological order as the primary payload, which is what makes
// positional alignment sound.
type V7TeamData struct {
	Alive    bool
	Sessions []V7SessionData
}

// V7SessionData carries the auxiliary id and resolved point metric for one
// session. Points is nil when the metrics map held no point key.
type V7SessionData struct {
	ID     string
	Points *float64
}

// statLine is the tuple the deterministic comparator runs over. The team name
// is the final tie-break so ordering never depends on input order.
type statLine struct {
	points   float64
	wins     int
	elims    int
	avgPlace float64
	teamName string
}

func (a statLine) less(b statLine) bool {
	if a.points != b.points {
		return a.points > b.points
	}
	if a.wins != b.wins {
		return a.wins > b.wins
	}
	if a.elims != b.elims {
		return a.elims > b.elims
	}
	if a.avgPlace != b.avgPlace {
		return a.avgPlace < b.avgPlace
	}
	return a.teamName < b.teamName
}

// sameStats ignores the team name: rows tying on every stat share a dense rank.
func (a statLine) sameStats(b statLine) bool {
	return a.points == b.points && a.wins == b.wins && a.elims == b.elims && a.avgPlace == b.avgPlace
}

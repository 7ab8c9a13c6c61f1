package domain

import (
	"time"
)

// Member is one roster member as reported by the WLS API. Display name
// resolution falls back through the alternate in-game name fields.
type Member struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	IngameName string `json:"ingame_name,omitempty"`
	Ingame     string `json:"ingame,omitempty"`
	IngameID   string `json:"ingame_id,omitempty"`
	Country    string `json:"country,omitempty"`
}

// Session is the reconciled unit used downstream of the session reconciler.
// ID is canonicalized; Points prefers the explicit primary value, else the
// positionally aligned v7 metric value.
type Session struct {
	ID     string  `json:"id"`
	Kills  int     `json:"kills"`
	Place  int     `json:"place"`
	Points float64 `json:"points"`
}

// Row is one aggregated leaderboard row. Place is reassigned by the ranking
// sorter; everything else is derived once per fetch cycle.
type Row struct {
	TeamKey            string    `json:"team_key"`
	TeamName           string    `json:"teamname"`
	Elims              int       `json:"elims"`
	AvgPlace           float64   `json:"avg_place"`
	Wins               int       `json:"wins"`
	Games              int       `json:"games"`
	Points             float64   `json:"points"`
	Place              int       `json:"place"`
	Alive              bool      `json:"alive"`
	Members            []Member  `json:"member_data"`
	Sessions           []Session `json:"sessions"`
	PositionChange     *int      `json:"position_change"`
	HasPositionChanged bool      `json:"has_position_changed"`
}

// TeamDetail carries the per-team data the presentation layer shows in
// expanded views (roster + full session list).
type TeamDetail struct {
	TeamName string    `json:"teamname"`
	Members  []Member  `json:"member_data"`
	Sessions []Session `json:"sessions"`
}

// Unified is the result of one full aggregation cycle.
type Unified struct {
	Leaderboard            []Row                 `json:"leaderboard"`
	TeamDetails            map[string]TeamDetail `json:"team_details"`
	HasMultipleGames       bool                  `json:"has_multiple_games"`
	TotalPages             int                   `json:"total_pages"`
	AllDead                bool                  `json:"all_dead"`
	ShowPositionIndicators bool                  `json:"show_position_indicators"`
}

// Snapshot is one persisted poll cycle.
type Snapshot struct {
	ID            string    `json:"id"`
	LeaderboardID string    `json:"leaderboard_id"`
	CycleSeq      uint64    `json:"cycle_seq"`
	ChangedRows   int       `json:"changed_rows"`
	Leaderboard   []Row     `json:"leaderboard"`
	FetchedAt     time.Time `json:"fetched_at"`
	CreatedAt     time.Time `json:"created_at"`
}

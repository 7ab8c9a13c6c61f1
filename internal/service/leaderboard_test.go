package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wls-leaderboard/internal/api"
	"wls-leaderboard/internal/domain"
)

func nptr(v float64) *domain.Number {
	n := domain.Number(v)
	return &n
}

func pageTeam(place, points float64, members map[string]domain.Member, sessions map[string]api.PageSession) api.PageTeam {
	return api.PageTeam{
		Place:    domain.Number(place),
		Points:   domain.Number(points),
		Members:  members,
		Sessions: sessions,
	}
}

func duoMembers() map[string]domain.Member {
	return map[string]domain.Member{
		"m2": {ID: "m2", Name: "Bravo"},
		"m1": {ID: "m1", Name: "Alpha"},
	}
}

func TestBuildTeamInputsSessionKeyOrderIsNumeric(t *testing.T) {
	sessions := map[string]api.PageSession{
		"10": {ID: "s-ten", Kills: 1, Place: 4},
		"2":  {ID: "s-two", Kills: 2, Place: 3},
		"0":  {ID: "s-zero", Kills: 3, Place: 2},
		"1":  {ID: "s-one", Kills: 4, Place: 1},
	}
	pages := []*api.PageResponse{{
		TotalPages: 1,
		Teams:      map[string]api.PageTeam{"0": pageTeam(1, 100, duoMembers(), sessions)},
	}}

	teams := buildTeamInputs(pages, nil, nil)

	require.Len(t, teams, 1)
	got := make([]string, 0, 4)
	for _, s := range teams[0].Sessions {
		got = append(got, s.ID)
	}
	assert.Equal(t, []string{"s-zero", "s-one", "s-two", "s-ten"}, got)
}

func TestBuildTeamInputsIdentity(t *testing.T) {
	members := map[string]domain.Member{
		// map key must backfill the missing id
		"m9": {Name: "Charlie"},
		"m1": {IngameName: "alpha_ign"},
	}
	pages := []*api.PageResponse{{
		TotalPages: 1,
		Teams:      map[string]api.PageTeam{"0": pageTeam(2, 50, members, nil)},
	}}

	teams := buildTeamInputs(pages, nil, nil)

	require.Len(t, teams, 1)
	assert.Equal(t, "m1|m9", teams[0].TeamKey)
	assert.Equal(t, "alpha_ign - Charlie", teams[0].TeamName)
	assert.Equal(t, 2, teams[0].APIPlace)
	assert.Equal(t, 50.0, teams[0].APIPoints)
	require.Len(t, teams[0].Members, 2)
	assert.Equal(t, "m1", teams[0].Members[0].ID)
	assert.Equal(t, "m9", teams[0].Members[1].ID)
}

func TestBuildTeamInputsDeduplicatesAcrossPages(t *testing.T) {
	page0 := &api.PageResponse{
		TotalPages: 3,
		Teams:      map[string]api.PageTeam{"0": pageTeam(1, 100, duoMembers(), nil)},
	}
	page2 := &api.PageResponse{
		TotalPages: 3,
		Teams: map[string]api.PageTeam{
			"0": pageTeam(1, 100, duoMembers(), nil),
			"1": pageTeam(7, 20, map[string]domain.Member{"m3": {ID: "m3", Name: "Solo"}}, nil),
		},
	}

	// page 1 failed to decode upstream; a nil slot must be skipped, not panic.
	teams := buildTeamInputs([]*api.PageResponse{page0, nil, page2}, nil, nil)

	require.Len(t, teams, 2)
	assert.Equal(t, "Alpha - Bravo", teams[0].TeamName)
	assert.Equal(t, "Solo", teams[1].TeamName)
}

func TestBuildTeamInputsSkipsNamelessTeams(t *testing.T) {
	pages := []*api.PageResponse{{
		TotalPages: 1,
		Teams: map[string]api.PageTeam{
			"0": pageTeam(1, 10, map[string]domain.Member{"m1": {ID: "m1"}}, nil),
		},
	}}

	assert.Empty(t, buildTeamInputs(pages, nil, nil))
}

func TestBuildTeamInputsCountryEnrichment(t *testing.T) {
	members := map[string]domain.Member{
		"m1": {ID: "m1", Name: "Alpha", IngameID: "ig-1"},
		"m2": {ID: "m2", Name: "Bravo"},
	}
	pages := []*api.PageResponse{{
		TotalPages: 1,
		Teams:      map[string]api.PageTeam{"0": pageTeam(1, 10, members, nil)},
	}}
	countries := map[string]string{
		"ig-1": "Sweden",
		"m1":   "WRONG", // ingame id must win over the account id
		"m2":   "Japan",
	}

	teams := buildTeamInputs(pages, nil, countries)

	require.Len(t, teams, 1)
	assert.Equal(t, "Sweden", teams[0].Members[0].Country)
	assert.Equal(t, "Japan", teams[0].Members[1].Country)
}

func TestBuildTeamInputsMatchesV7ByTeamKey(t *testing.T) {
	pages := []*api.PageResponse{{
		TotalPages: 1,
		Teams:      map[string]api.PageTeam{"0": pageTeam(1, 100, duoMembers(), nil)},
	}}

	// v7 lists the same roster in a different order with different display
	// names; the sorted-id key still lines them up.
	v7 := &api.V7QueryResponse{Queries: []api.V7QueryResult{{
		Entries: []api.V7Entry{{
			Members: []domain.Member{
				{ID: "m2", IngameName: "bravo_ign"},
				{ID: "m1", IngameName: "alpha_ign"},
			},
			Flags: 1 << 2,
			Sessions: []api.V7Session{
				{ID: "s1", Metrics: map[string]domain.Number{"1": 42}},
				{ID: "s2", Metrics: map[string]domain.Number{"-1000": 7}},
				{ID: "s3"},
			},
		}},
	}}}

	teams := buildTeamInputs(pages, v7, nil)

	require.Len(t, teams, 1)
	require.NotNil(t, teams[0].V7)
	assert.True(t, teams[0].V7.Alive)
	require.Len(t, teams[0].V7.Sessions, 3)
	require.NotNil(t, teams[0].V7.Sessions[0].Points)
	assert.Equal(t, 42.0, *teams[0].V7.Sessions[0].Points)
	require.NotNil(t, teams[0].V7.Sessions[1].Points)
	assert.Equal(t, 7.0, *teams[0].V7.Sessions[1].Points)
	assert.Nil(t, teams[0].V7.Sessions[2].Points, "missing metrics carry no point value")
}

func TestBuildTeamInputsExplicitSessionPoints(t *testing.T) {
	sessions := map[string]api.PageSession{
		"0": {ID: "s1", Kills: 2, Place: 1, Points: nptr(30)},
		"1": {ID: "s2", Kills: 1, Place: 5},
	}
	pages := []*api.PageResponse{{
		TotalPages: 1,
		Teams:      map[string]api.PageTeam{"0": pageTeam(1, 30, duoMembers(), sessions)},
	}}

	teams := buildTeamInputs(pages, nil, nil)

	require.Len(t, teams, 1)
	require.Len(t, teams[0].Sessions, 2)
	require.NotNil(t, teams[0].Sessions[0].Points)
	assert.Equal(t, 30.0, *teams[0].Sessions[0].Points)
	assert.Nil(t, teams[0].Sessions[1].Points)
}

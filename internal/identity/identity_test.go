package identity

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"wls-leaderboard/internal/domain"
)

func TestNormalizeSessionID(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"AB-12_34", "ab1234"},
		{"ab1234", "ab1234"},
		{"  Session 42  ", "session42"},
		{"", ""},
		{"___---", ""},
		{"MiXeD.Case:ID", "mixedcaseid"},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, NormalizeSessionID(c.in), "input %q", c.in)
	}
}

func TestNormalizeSessionIDIdempotent(t *testing.T) {
	inputs := []string{"AB-12_34", "already", "  spaced out  ", "", "42!"}
	for _, in := range inputs {
		once := NormalizeSessionID(in)
		assert.Equal(t, once, NormalizeSessionID(once), "input %q", in)
	}
}

func TestDisplayNameFallbackChain(t *testing.T) {
	assert.Equal(t, "Primary", DisplayName(domain.Member{Name: "Primary", IngameName: "IG", Ingame: "Old"}))
	assert.Equal(t, "IG", DisplayName(domain.Member{IngameName: "IG", Ingame: "Old"}))
	assert.Equal(t, "Old", DisplayName(domain.Member{Ingame: "Old"}))
	assert.Equal(t, "", DisplayName(domain.Member{}))
}

func TestBuildTeamNameOrderIndependent(t *testing.T) {
	a := domain.Member{ID: "a1", Name: "Alpha"}
	b := domain.Member{ID: "b2", Name: "Bravo"}
	c := domain.Member{ID: "c3", Name: "Charlie"}

	perms := [][]domain.Member{
		{a, b, c},
		{a, c, b},
		{b, a, c},
		{b, c, a},
		{c, a, b},
		{c, b, a},
	}
	for _, perm := range perms {
		assert.Equal(t, "Alpha - Bravo - Charlie", BuildTeamName(perm))
	}
}

func TestBuildTeamNameSkipsNameless(t *testing.T) {
	members := []domain.Member{
		{ID: "a1"},
		{ID: "b2", Name: "Bravo"},
	}
	assert.Equal(t, "Bravo", BuildTeamName(members))

	assert.Equal(t, "", BuildTeamName([]domain.Member{{ID: "a1"}, {ID: "b2"}}))
	assert.Equal(t, "", BuildTeamName(nil))
}

func TestTeamKeyOrderIndependent(t *testing.T) {
	forward := []domain.Member{{ID: "b2", Name: "B"}, {ID: "a1", Name: "A"}}
	reverse := []domain.Member{{ID: "a1", Name: "A"}, {ID: "b2", Name: "B"}}

	assert.Equal(t, "a1|b2", TeamKey(forward))
	assert.Equal(t, TeamKey(forward), TeamKey(reverse))
}

func TestTeamKeySurvivesRename(t *testing.T) {
	before := []domain.Member{{ID: "a1", Name: "OldName"}}
	after := []domain.Member{{ID: "a1", Name: "NewName"}}

	assert.Equal(t, TeamKey(before), TeamKey(after))
	assert.NotEqual(t, BuildTeamName(before), BuildTeamName(after))
}

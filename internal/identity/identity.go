package identity

import (
	"sort"
	"strings"

	"wls-leaderboard/internal/domain"
)

// NormalizeSessionID canonicalizes a session id for comparison: lower-case,
// trimmed, every non-alphanumeric character stripped. Total over any input;
// an empty result is permitted.
func NormalizeSessionID(raw string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(raw)) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// DisplayName resolves a member's display name through the fallback chain
// name -> ingame_name -> ingame.
func DisplayName(m domain.Member) string {
	if m.Name != "" {
		return m.Name
	}
	if m.IngameName != "" {
		return m.IngameName
	}
	return m.Ingame
}

func sortedByID(members []domain.Member) []domain.Member {
	out := make([]domain.Member, len(members))
	copy(out, members)
	sort.SliceStable(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// BuildTeamName derives the display name for a roster: members sorted by id,
// mapped through DisplayName, empties dropped, joined with " - ". The sort
// makes the result identical under any permutation of the member list.
// An empty result means the team has no identifiable member and must be
// skipped by the caller.
func BuildTeamName(members []domain.Member) string {
	var names []string
	for _, m := range sortedByID(members) {
		if name := DisplayName(m); name != "" {
			names = append(names, name)
		}
	}
	return strings.Join(names, " - ")
}

// TeamKey derives the canonical cross-cycle identity for a roster: the sorted
// member ids joined with "|". Unlike the display name it survives member
// renames between polls.
func TeamKey(members []domain.Member) string {
	var ids []string
	for _, m := range sortedByID(members) {
		if m.ID != "" {
			ids = append(ids, m.ID)
		}
	}
	return strings.Join(ids, "|")
}

package aggregator

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wls-leaderboard/internal/domain"
)

func displayedRow(key string, place int, points float64) domain.Row {
	return domain.Row{
		TeamKey:  key,
		TeamName: key,
		Place:    place,
		Points:   points,
		Elims:    10,
		Wins:     1,
		Games:    3,
		AvgPlace: 4.5,
	}
}

func TestEnrichWithPreviousNoPrior(t *testing.T) {
	current := []domain.Row{displayedRow("A", 1, 100), displayedRow("B", 2, 90)}

	enriched, changed := EnrichWithPrevious(current, nil)

	assert.Equal(t, 2, changed)
	for _, r := range enriched {
		assert.True(t, r.HasPositionChanged, "new team %s must be flagged", r.TeamKey)
	}
}

func TestEnrichWithPreviousUnchanged(t *testing.T) {
	previous := []domain.Row{displayedRow("A", 1, 100), displayedRow("B", 2, 90)}
	current := []domain.Row{displayedRow("A", 1, 100), displayedRow("B", 2, 90)}

	enriched, changed := EnrichWithPrevious(current, previous)

	assert.Equal(t, 0, changed)

	want := []domain.Row{displayedRow("A", 1, 100), displayedRow("B", 2, 90)}
	if diff := cmp.Diff(want, enriched); diff != "" {
		t.Errorf("enriched rows mismatch (-want +got):\n%s", diff)
	}
}

func TestEnrichWithPreviousFieldChanges(t *testing.T) {
	base := displayedRow("A", 1, 100)

	mutate := []struct {
		name string
		fn   func(*domain.Row)
	}{
		{"place", func(r *domain.Row) { r.Place = 2 }},
		{"points", func(r *domain.Row) { r.Points = 101 }},
		{"elims", func(r *domain.Row) { r.Elims++ }},
		{"wins", func(r *domain.Row) { r.Wins++ }},
		{"games", func(r *domain.Row) { r.Games++ }},
		{"avg place beyond tolerance", func(r *domain.Row) { r.AvgPlace += 0.02 }},
	}
	for _, m := range mutate {
		t.Run(m.name, func(t *testing.T) {
			cur := base
			m.fn(&cur)

			enriched, changed := EnrichWithPrevious([]domain.Row{cur}, []domain.Row{base})
			assert.Equal(t, 1, changed)
			assert.True(t, enriched[0].HasPositionChanged)
		})
	}
}

func TestEnrichWithPreviousAvgPlaceTolerance(t *testing.T) {
	prev := displayedRow("A", 1, 100)
	cur := prev
	cur.AvgPlace += 0.005

	_, changed := EnrichWithPrevious([]domain.Row{cur}, []domain.Row{prev})
	assert.Equal(t, 0, changed, "avg place drift within tolerance is not a change")
}

func TestEnrichWithPreviousPositionChangeTransition(t *testing.T) {
	prev := displayedRow("A", 1, 100)
	cur := prev
	delta := 2
	cur.PositionChange = &delta

	_, changed := EnrichWithPrevious([]domain.Row{cur}, []domain.Row{prev})
	assert.Equal(t, 1, changed, "nil -> value transition counts as change")

	prev.PositionChange = &delta
	_, changed = EnrichWithPrevious([]domain.Row{cur}, []domain.Row{prev})
	assert.Equal(t, 0, changed)
}

func TestEnrichWithPreviousMatchesByTeamKeyNotName(t *testing.T) {
	prev := displayedRow("key-1", 1, 100)
	prev.TeamName = "Old Name"

	cur := displayedRow("key-1", 1, 100)
	cur.TeamName = "New Name"

	_, changed := EnrichWithPrevious([]domain.Row{cur}, []domain.Row{prev})
	require.Equal(t, 0, changed, "rename alone must not break continuity")
}

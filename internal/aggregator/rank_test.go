package aggregator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wls-leaderboard/internal/domain"
)

func row(name string, points float64, wins, elims int, avgPlace float64) domain.Row {
	return domain.Row{
		TeamKey:  name,
		TeamName: name,
		Points:   points,
		Wins:     wins,
		Elims:    elims,
		AvgPlace: avgPlace,
	}
}

func names(rows []domain.Row) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.TeamName
	}
	return out
}

func TestSortByPointsWinsBreakTie(t *testing.T) {
	rows := []domain.Row{
		row("A", 100, 2, 10, 5),
		row("B", 100, 3, 8, 6),
		row("C", 90, 5, 20, 2),
	}

	SortByPoints(rows)

	assert.Equal(t, []string{"B", "A", "C"}, names(rows))
	assert.Equal(t, 1, rows[0].Place)
	assert.Equal(t, 2, rows[1].Place)
	assert.Equal(t, 3, rows[2].Place)
}

func TestSortByPointsFullTieBreakChain(t *testing.T) {
	rows := []domain.Row{
		row("D", 50, 1, 5, 4.0),
		row("C", 50, 1, 5, 3.0),
		row("B", 50, 1, 6, 9.0),
		row("A", 50, 2, 1, 9.0),
	}

	SortByPoints(rows)

	// wins, then elims, then avg place.
	assert.Equal(t, []string{"A", "B", "C", "D"}, names(rows))
}

func TestSortByPointsDeterministicAcrossInputOrders(t *testing.T) {
	build := func(order ...string) []domain.Row {
		byName := map[string]domain.Row{
			"A": row("A", 100, 2, 10, 5),
			"B": row("B", 100, 2, 10, 5),
			"C": row("C", 90, 1, 3, 7),
		}
		out := make([]domain.Row, 0, len(order))
		for _, n := range order {
			out = append(out, byName[n])
		}
		return out
	}

	first := build("A", "B", "C")
	second := build("C", "B", "A")
	SortByPoints(first)
	SortByPoints(second)

	assert.Equal(t, names(first), names(second))
	// A and B tie on every stat: name breaks ordering, dense rank is shared.
	assert.Equal(t, []string{"A", "B", "C"}, names(first))
	assert.Equal(t, 1, first[0].Place)
	assert.Equal(t, 1, first[1].Place)
	assert.Equal(t, 2, first[2].Place)
}

func TestSortAsReportedKeepsAPIPlace(t *testing.T) {
	a := row("A", 50, 0, 0, 0)
	a.Place = 3
	b := row("B", 80, 0, 0, 0)
	b.Place = 1
	c := row("C", 70, 0, 0, 0)
	c.Place = 3

	rows := []domain.Row{a, c, b}
	SortAsReported(rows)

	require.Equal(t, []string{"B", "C", "A"}, names(rows))
	assert.Equal(t, 1, rows[0].Place)
	assert.Equal(t, 3, rows[1].Place)
	assert.Equal(t, 3, rows[2].Place)
}

func TestAllDead(t *testing.T) {
	assert.False(t, AllDead(nil), "empty leaderboard is not all dead")

	dead := []domain.Row{row("A", 0, 0, 0, 0), row("B", 0, 0, 0, 0)}
	assert.True(t, AllDead(dead))

	alive := row("C", 0, 0, 0, 0)
	alive.Alive = true
	assert.False(t, AllDead(append(dead, alive)))
}

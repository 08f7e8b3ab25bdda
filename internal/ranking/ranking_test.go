package ranking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestEvaluate(t *testing.T) {
	table := []struct {
		current  Rank
		previous Rank
		expected Direction
	}{
		{current: 42, previous: 0, expected: Unknown},
		{current: 1, previous: 0, expected: Unknown},
		{current: 40, previous: 50, expected: Improved},
		{current: 12, previous: 10, expected: Worsened},
		{current: 100, previous: 100, expected: Unchanged},
		{current: 1, previous: 2, expected: Improved},
		{current: 2, previous: 1, expected: Worsened},
	}

	for _, row := range table {
		require.Equal(t, row.expected, Evaluate(row.current, row.previous), "%d vs %d", row.current, row.previous)
	}
}

func TestEvaluateGrid(t *testing.T) {
	for previous := Rank(1); previous <= 30; previous++ {
		for current := Rank(1); current <= 30; current++ {
			direction := Evaluate(current, previous)
			require.Equal(t, current > previous, direction == Worsened)
			require.Equal(t, current < previous, direction == Improved)
			require.Equal(t, current == previous, direction == Unchanged)
		}
		require.Equal(t, Unknown, Evaluate(previous, 0))
	}
}

func TestCompare(t *testing.T) {
	t.Run("no previous observation", func(t *testing.T) {
		change := Compare(Observation{World: 42, Region: 7}, Observation{})
		require.Equal(t, Change{World: Unknown, Region: Unknown}, change)
	})
	t.Run("mixed", func(t *testing.T) {
		change := Compare(
			Observation{World: 40, Region: 12},
			Observation{World: 50, Region: 10},
		)
		require.Equal(t, Change{World: Improved, Region: Worsened}, change)
	})
	t.Run("world unchanged", func(t *testing.T) {
		change := Compare(
			Observation{World: 100, Region: 3},
			Observation{World: 100, Region: 4},
		)
		require.Equal(t, Change{World: Unchanged, Region: Improved}, change)
	})
}

func TestRankString(t *testing.T) {
	require.Equal(t, "NO_DATA", Rank(0).String())
	require.Equal(t, "7", Rank(7).String())
	require.False(t, Rank(-3).Known())
}

func TestDirectionIndicator(t *testing.T) {
	require.Equal(t, ":x:", Unknown.Indicator())
	require.Equal(t, ":arrow_up:", Improved.Indicator())
	require.Equal(t, ":arrow_down:", Worsened.Indicator())
	require.Equal(t, ":arrow_right:", Unchanged.Indicator())
	require.Equal(t, "worsened", Worsened.String())
}

func TestObservation(t *testing.T) {
	require.ErrorIs(t, Observation{World: 1}.Validate(), ErrIncompleteObservation)
	require.NoError(t, Observation{World: 1, Region: 1}.Validate())

	require.Equal(t, NoData, Observation{}.Timestamp())

	oslo, err := time.LoadLocation("Europe/Oslo")
	require.NoError(t, err)
	obs := Observation{ObservedAt: time.Date(2024, time.June, 1, 9, 15, 30, 500, oslo)}
	require.Equal(t, "2024-06-01T09:15:30+02:00", obs.Timestamp())
}

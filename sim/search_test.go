package sim

import (
	"math/rand"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xsbench/xsbench-go/sim/internal/testutil"
)

func TestGridSearch_Brackets(t *testing.T) {
	a := []float64{0.1, 0.2, 0.4, 0.8}
	tests := []struct {
		name   string
		quarry float64
		want   int
	}{
		{"below first", 0.05, 0},
		{"on first", 0.1, 0},
		{"interior", 0.3, 1},
		{"on interior point", 0.4, 2},
		{"just below last", 0.79, 2},
		{"on last", 0.8, 2},
		{"above last", 0.95, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GridSearch(a, tt.quarry))
		})
	}
}

func TestGridSearch_MatchesSearchTreeFloor(t *testing.T) {
	// GIVEN a random sorted grid and a search tree holding the same keys
	rng := rand.New(rand.NewSource(3))
	a := make([]float64, 500)
	var tree testutil.SearchTree
	for i := range a {
		a[i] = rng.Float64()
		tree.Insert(a[i])
	}
	slices.Sort(a)
	require.Equal(t, len(a), tree.Len())
	require.True(t, tree.Contains(a[0]))
	require.False(t, tree.Contains(-1))

	// WHEN quarries inside the grid are searched
	for i := 0; i < 5000; i++ {
		q := a[0] + rng.Float64()*(a[len(a)-1]-a[0])
		got := GridSearch(a, q)

		// THEN the bracket's lower edge is the tree's floor of the quarry
		floor, ok := tree.Floor(q)
		require.True(t, ok)
		want := min(slices.Index(a, floor), len(a)-2)
		require.Equal(t, want, got, "quarry %v", q)
		require.LessOrEqual(t, a[got], q)
		if got < len(a)-2 {
			require.Less(t, q, a[got+1])
		}
	}
}

func TestGridSearchNuclide_RestrictedRange(t *testing.T) {
	grid := make([]NuclideGridPoint[float64], 10)
	for i := range grid {
		grid[i].Energy = float64(i) / 10
	}
	// within [2, 6] the answer stays in [2, 5]
	assert.Equal(t, 4, GridSearchNuclide(grid, 0.45, 2, 6))
	assert.Equal(t, 2, GridSearchNuclide(grid, 0.05, 2, 6))
	assert.Equal(t, 5, GridSearchNuclide(grid, 0.95, 2, 6))
	assert.Equal(t, GridSearchNuclide(grid, 0.45, 0, 9), GridSearch([]float64{0, .1, .2, .3, .4, .5, .6, .7, .8, .9}, 0.45))
}

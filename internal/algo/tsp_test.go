package algo

import (
	"fmt"
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elektrokombinacija/pickplace/internal/core"
)

func stationNames(loc map[string]core.Coord) []string {
	names := make([]string, 0, len(loc))
	for n := range loc {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func assertPermutation(t *testing.T, order []int, n int) {
	t.Helper()
	require.Len(t, order, n)
	seen := make([]bool, n)
	for _, i := range order {
		require.False(t, seen[i], "index %d visited twice", i)
		seen[i] = true
	}
}

func TestTSPOrderTrivial(t *testing.T) {
	assert.Empty(t, TSPOrder(nil, nil, core.Coord{}))

	loc := map[string]core.Coord{"A": {Row: 3, Col: 3}}
	assert.Equal(t, []string{"A"}, TSPOrder([]string{"A"}, loc, core.Coord{}))
}

func TestTSPOrderBruteForce(t *testing.T) {
	loc := map[string]core.Coord{
		"far":  {Row: 0, Col: 9},
		"near": {Row: 0, Col: 1},
		"mid":  {Row: 0, Col: 5},
	}
	got := TSPOrder([]string{"far", "near", "mid"}, loc, core.Coord{})
	assert.Equal(t, []string{"near", "mid", "far"}, got)
	assert.InDelta(t, 9.0, TourLength(got, loc, core.Coord{}), 1e-9)
}

func TestDPMatchesBruteForce(t *testing.T) {
	start := core.Coord{Row: 10, Col: 10}
	for n := 4; n <= 8; n++ {
		for seed := int64(1); seed <= 5; seed++ {
			loc := createStations(n, seed*int64(n))
			names := stationNames(loc)
			pts := make([]core.Coord, n)
			for i, s := range names {
				pts[i] = loc[s]
			}

			dp := dpOrder(pts, start, euclidean)
			brute := bruteForceOrder(pts, start, euclidean)
			assertPermutation(t, dp, n)

			dpLen := tourLength(dp, pts, start, euclidean)
			bruteLen := tourLength(brute, pts, start, euclidean)
			assert.LessOrEqual(t, dpLen, bruteLen+1e-9, "n=%d seed=%d", n, seed)
			assert.InDelta(t, bruteLen, dpLen, 1e-9, "n=%d seed=%d", n, seed)

			// The public entry point uses the DP in this range.
			ordered := TSPOrder(names, loc, start)
			assert.InDelta(t, bruteLen, TourLength(ordered, loc, start), 1e-9)
		}
	}
}

func TestTSPOrderHeuristicLargeInstance(t *testing.T) {
	// 4x4 lattice without the start cell: 15 stations.
	loc := make(map[string]core.Coord)
	var names []string
	for r := 0; r < 4; r++ {
		for c := 0; c < 4; c++ {
			if r == 0 && c == 0 {
				continue
			}
			name := fmt.Sprintf("L%d_%d", r, c)
			loc[name] = core.Coord{Row: r, Col: c}
			names = append(names, name)
		}
	}
	rand.New(rand.NewSource(3)).Shuffle(len(names), func(i, j int) { names[i], names[j] = names[j], names[i] })

	start := core.Coord{}
	order := TSPOrder(names, loc, start)
	require.Len(t, order, 15)
	seen := make(map[string]bool)
	for _, s := range order {
		assert.False(t, seen[s], "station %s visited twice", s)
		seen[s] = true
	}
	heuristic := TourLength(order, loc, start)

	// Control: exact DP on a 12-station subset of the same lattice.
	subset := make([]string, 0, 12)
	for _, s := range names {
		if len(subset) == 12 {
			break
		}
		subset = append(subset, s)
	}
	exact := TourLength(TSPOrder(subset, loc, start), loc, start)

	// Every visit on a unit lattice costs at least 1, so per-station cost is >= 1.
	assert.GreaterOrEqual(t, exact, 12.0-1e-9)
	assert.LessOrEqual(t, heuristic/15, 1.25*exact/12)
}

func TestTwoOptNeverWorsens(t *testing.T) {
	loc := createStations(14, 21)
	names := stationNames(loc)
	pts := make([]core.Coord, len(names))
	for i, s := range names {
		pts[i] = loc[s]
	}
	start := core.Coord{}

	nn := nearestNeighbor(pts, start, euclidean)
	assertPermutation(t, nn, len(pts))
	improved := twoOpt(nn, pts, start, DefaultTwoOptRounds, euclidean)
	assertPermutation(t, improved, len(pts))
	assert.LessOrEqual(t, tourLength(improved, pts, start, euclidean), tourLength(nn, pts, start, euclidean))
}

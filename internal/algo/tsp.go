package algo

import (
	"math"

	"github.com/elektrokombinacija/pickplace/internal/core"
)

// Size thresholds for the hybrid visiting-order solver.
const (
	BruteForceMax       = 3
	ExactDPMax          = 12
	DefaultTwoOptRounds = 2
	twoOptEpsilon       = 1e-6
)

// MaxRandomBatchCap bounds the random sequencer's capacity, since each of its
// batches is ordered by exhaustive permutation.
const MaxRandomBatchCap = 8

// distFunc measures travel between two cells for ordering purposes.
type distFunc func(a, b core.Coord) float64

func euclidean(a, b core.Coord) float64 { return a.Euclidean(b) }

func manhattan(a, b core.Coord) float64 { return float64(a.Manhattan(b)) }

// TSPOrder returns the stations in a near-optimal open-path visiting order
// starting from start. Distances are straight-line between station cells.
// Station names must all be present in loc.
func TSPOrder(stations []string, loc map[string]core.Coord, start core.Coord) []string {
	pts := make([]core.Coord, len(stations))
	for i, s := range stations {
		pts[i] = loc[s]
	}
	order := TSPOrderIndex(pts, start)
	out := make([]string, len(order))
	for i, idx := range order {
		out[i] = stations[idx]
	}
	return out
}

// TSPOrderIndex orders points and returns a permutation of their indices.
//
//   - n <= 3: brute-force permutations (exact)
//   - n <= 12: bitmask dynamic program, O(2^n * n^2) (exact)
//   - n > 12: nearest neighbour followed by capped 2-opt (heuristic)
func TSPOrderIndex(pts []core.Coord, start core.Coord) []int {
	n := len(pts)
	switch {
	case n <= 1:
		return identity(n)
	case n <= BruteForceMax:
		return bruteForceOrder(pts, start, euclidean)
	case n <= ExactDPMax:
		return dpOrder(pts, start, euclidean)
	default:
		return twoOpt(nearestNeighbor(pts, start, euclidean), pts, start, DefaultTwoOptRounds, euclidean)
	}
}

// TourLength sums the open path start -> order[0] -> ... -> order[n-1].
func TourLength(order []string, loc map[string]core.Coord, start core.Coord) float64 {
	pts := make([]core.Coord, len(order))
	for i, s := range order {
		pts[i] = loc[s]
	}
	return tourLength(identity(len(pts)), pts, start, euclidean)
}

func tourLength(order []int, pts []core.Coord, start core.Coord, dist distFunc) float64 {
	if len(order) == 0 {
		return 0
	}
	total := dist(start, pts[order[0]])
	for i := 1; i < len(order); i++ {
		total += dist(pts[order[i-1]], pts[order[i]])
	}
	return total
}

func identity(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}

// bruteForceOrder tries every permutation; the first minimum wins.
func bruteForceOrder(pts []core.Coord, start core.Coord, dist distFunc) []int {
	perm := identity(len(pts))
	best := append([]int(nil), perm...)
	bestCost := math.Inf(1)

	var permute func(k int)
	permute = func(k int) {
		if k == len(perm) {
			if c := tourLength(perm, pts, start, dist); c < bestCost {
				bestCost = c
				copy(best, perm)
			}
			return
		}
		for i := k; i < len(perm); i++ {
			perm[k], perm[i] = perm[i], perm[k]
			permute(k + 1)
			perm[k], perm[i] = perm[i], perm[k]
		}
	}
	permute(0)
	return best
}

// dpOrder solves the open-path problem exactly over bitmasked visited sets.
// cost[mask][j] is the cheapest start -> ... -> j visiting exactly mask.
func dpOrder(pts []core.Coord, start core.Coord, dist distFunc) []int {
	n := len(pts)
	full := 1<<n - 1

	d := make([][]float64, n)
	for i := range d {
		d[i] = make([]float64, n)
		for j := range d[i] {
			d[i][j] = dist(pts[i], pts[j])
		}
	}

	cost := make([][]float64, full+1)
	parent := make([][]int, full+1)
	for mask := range cost {
		cost[mask] = make([]float64, n)
		parent[mask] = make([]int, n)
		for j := range cost[mask] {
			cost[mask][j] = math.Inf(1)
			parent[mask][j] = -1
		}
	}
	for j := 0; j < n; j++ {
		cost[1<<j][j] = dist(start, pts[j])
	}

	for mask := 1; mask <= full; mask++ {
		for last := 0; last < n; last++ {
			if mask&(1<<last) == 0 || math.IsInf(cost[mask][last], 1) {
				continue
			}
			for next := 0; next < n; next++ {
				if mask&(1<<next) != 0 {
					continue
				}
				nm := mask | 1<<next
				if c := cost[mask][last] + d[last][next]; c < cost[nm][next] {
					cost[nm][next] = c
					parent[nm][next] = last
				}
			}
		}
	}

	last := 0
	for j := 1; j < n; j++ {
		if cost[full][j] < cost[full][last] {
			last = j
		}
	}

	order := make([]int, n)
	mask := full
	for i := n - 1; i >= 0; i-- {
		order[i] = last
		prev := parent[mask][last]
		mask &^= 1 << last
		last = prev
	}
	return order
}

// nearestNeighbor greedily visits the closest unvisited point.
func nearestNeighbor(pts []core.Coord, start core.Coord, dist distFunc) []int {
	n := len(pts)
	visited := make([]bool, n)
	order := make([]int, 0, n)
	cur := start
	for len(order) < n {
		best := -1
		bestD := math.Inf(1)
		for i, p := range pts {
			if visited[i] {
				continue
			}
			if dd := dist(cur, p); dd < bestD {
				best, bestD = i, dd
			}
		}
		visited[best] = true
		order = append(order, best)
		cur = pts[best]
	}
	return order
}

// twoOpt reverses segments of the open path while that shortens it, for at
// most rounds passes.
func twoOpt(order []int, pts []core.Coord, start core.Coord, rounds int, dist distFunc) []int {
	best := append([]int(nil), order...)
	bestLen := tourLength(best, pts, start, dist)
	n := len(best)
	cand := make([]int, n)

	for r := 0; r < rounds; r++ {
		improved := false
		for i := 0; i < n-1; i++ {
			for j := i + 2; j <= n; j++ {
				copy(cand, best)
				reverse(cand[i:j])
				if l := tourLength(cand, pts, start, dist); l < bestLen-twoOptEpsilon {
					copy(best, cand)
					bestLen = l
					improved = true
				}
			}
		}
		if !improved {
			break
		}
	}
	return best
}

func reverse(s []int) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}

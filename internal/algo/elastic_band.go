package algo

import (
	"sort"

	"github.com/elektrokombinacija/pickplace/internal/core"
)

// BandParams tunes elastic-band smoothing.
type BandParams struct {
	Iterations int     `yaml:"iterations"`
	Spring     float64 `yaml:"spring"`          // Pull toward the neighbour midpoint
	Repel      float64 `yaml:"repel"`           // Obstacle repulsion gain
	Radius     float64 `yaml:"obstacle_radius"` // Obstacles farther than this are ignored
}

// DefaultBandParams returns the standard smoothing parameters.
func DefaultBandParams() BandParams {
	return BandParams{
		Iterations: 200,
		Spring:     0.3,
		Repel:      2.0,
		Radius:     1.5,
	}
}

// minDistSq avoids division by zero when a point sits on an obstacle centre.
const minDistSq = 1e-6

// ElasticBand relaxes a grid path into a smoother trajectory. The first and
// last points are pinned; interior points are pulled toward the midpoint of
// their neighbours and pushed away from nearby obstacles. Points are updated
// in place, so later points in an iteration see earlier updates.
// The output has the same length as the input. No collision check is made.
func ElasticBand(path []core.Coord, obstacles map[core.Coord]struct{}, params BandParams) []core.Point {
	pts := make([]core.Point, len(path))
	for i, c := range path {
		pts[i] = c.Point()
	}
	if len(pts) < 3 || params.Iterations <= 0 {
		return pts
	}

	// Fixed obstacle order keeps floating-point sums reproducible.
	obs := make([]core.Coord, 0, len(obstacles))
	for c := range obstacles {
		obs = append(obs, c)
	}
	sort.Slice(obs, func(i, j int) bool { return obs[i].Less(obs[j]) })

	rSq := params.Radius * params.Radius

	for it := 0; it < params.Iterations; it++ {
		for i := 1; i < len(pts)-1; i++ {
			prev, next := pts[i-1], pts[i+1]
			cur := &pts[i]

			// Spring force
			cur.Row += params.Spring * ((prev.Row+next.Row)/2 - cur.Row)
			cur.Col += params.Spring * ((prev.Col+next.Col)/2 - cur.Col)

			// Obstacle repulsion
			var fr, fc float64
			for _, o := range obs {
				dr := cur.Row - float64(o.Row)
				dc := cur.Col - float64(o.Col)
				dSq := dr*dr + dc*dc
				if dSq >= rSq {
					continue
				}
				if dSq < minDistSq {
					dSq = minDistSq
				}
				fac := 1.0/dSq - 1.0/rSq
				if fac <= 0 {
					continue
				}
				fr += dr * fac
				fc += dc * fac
			}
			cur.Row += params.Repel * fr
			cur.Col += params.Repel * fc
		}
	}

	return pts
}

package algo

import (
	"github.com/elektrokombinacija/pickplace/internal/core"
)

// Plan runs A* and optionally smooths the result. Without smoothing the grid
// path is returned cast to float points.
func Plan(rows, cols int, start, goal core.Coord, obstacles map[core.Coord]struct{}, smooth bool, params BandParams) ([]core.Point, error) {
	gridPath, err := AStar(rows, cols, start, goal, obstacles)
	if err != nil {
		return nil, err
	}
	if smooth {
		return ElasticBand(gridPath, obstacles, params), nil
	}
	pts := make([]core.Point, len(gridPath))
	for i, c := range gridPath {
		pts[i] = c.Point()
	}
	return pts, nil
}

// Planner binds a grid to smoothing settings.
type Planner struct {
	Grid   *core.GridMap
	Smooth bool
	Band   BandParams

	obstacles map[core.Coord]struct{}
}

// NewPlanner snapshots the grid's obstacles. The grid must not change while
// the planner is in use.
func NewPlanner(grid *core.GridMap, smooth bool, band BandParams) *Planner {
	return &Planner{
		Grid:      grid,
		Smooth:    smooth,
		Band:      band,
		obstacles: grid.ObstacleSet(),
	}
}

// Plan plans a leg between two cells on the bound grid.
func (p *Planner) Plan(start, goal core.Coord) ([]core.Point, error) {
	return Plan(p.Grid.Rows(), p.Grid.Cols(), start, goal, p.obstacles, p.Smooth, p.Band)
}

package core

import (
	"fmt"
	"math/rand"
	"sort"
)

// GridMap is the static occupancy model of the factory floor.
// Workstations and obstacles are disjoint and always in bounds.
type GridMap struct {
	rows, cols   int
	workstations map[Coord]struct{}
	obstacles    map[Coord]struct{}
}

// NewGridMap creates an empty grid.
func NewGridMap(rows, cols int) (*GridMap, error) {
	if rows <= 0 || cols <= 0 {
		return nil, fmt.Errorf("%w: grid dimensions must be positive, got %dx%d", ErrConfiguration, rows, cols)
	}
	return &GridMap{
		rows:         rows,
		cols:         cols,
		workstations: make(map[Coord]struct{}),
		obstacles:    make(map[Coord]struct{}),
	}, nil
}

// Rows returns the grid height.
func (g *GridMap) Rows() int { return g.rows }

// Cols returns the grid width.
func (g *GridMap) Cols() int { return g.cols }

// InBounds reports whether c lies on the grid.
func (g *GridMap) InBounds(c Coord) bool {
	return c.Row >= 0 && c.Row < g.rows && c.Col >= 0 && c.Col < g.cols
}

// AddWorkstation marks c as a workstation.
func (g *GridMap) AddWorkstation(c Coord) error {
	if !g.InBounds(c) {
		return fmt.Errorf("workstation %v: %w", c, ErrOutOfBounds)
	}
	if _, ok := g.obstacles[c]; ok {
		return fmt.Errorf("workstation %v is an obstacle: %w", c, ErrCellOccupied)
	}
	g.workstations[c] = struct{}{}
	return nil
}

// AddObstacle marks c as blocked.
func (g *GridMap) AddObstacle(c Coord) error {
	if !g.InBounds(c) {
		return fmt.Errorf("obstacle %v: %w", c, ErrOutOfBounds)
	}
	if _, ok := g.workstations[c]; ok {
		return fmt.Errorf("obstacle %v is a workstation: %w", c, ErrCellOccupied)
	}
	g.obstacles[c] = struct{}{}
	return nil
}

// IsWorkstation reports whether c is a workstation.
func (g *GridMap) IsWorkstation(c Coord) bool {
	_, ok := g.workstations[c]
	return ok
}

// IsObstacle reports whether c is blocked.
func (g *GridMap) IsObstacle(c Coord) bool {
	_, ok := g.obstacles[c]
	return ok
}

// Workstations returns the workstation cells in row-major order.
func (g *GridMap) Workstations() []Coord {
	return sortedCells(g.workstations)
}

// Obstacles returns the obstacle cells in row-major order.
func (g *GridMap) Obstacles() []Coord {
	return sortedCells(g.obstacles)
}

// ObstacleSet returns a copy of the blocked set for planning.
func (g *GridMap) ObstacleSet() map[Coord]struct{} {
	out := make(map[Coord]struct{}, len(g.obstacles))
	for c := range g.obstacles {
		out[c] = struct{}{}
	}
	return out
}

// GenerateRandomObstacles adds obstacles until the grid holds count of them.
// Cells that are workstations, already blocked, or listed in forbid are never
// chosen. The same rng seed always yields the same layout.
func (g *GridMap) GenerateRandomObstacles(count int, forbid []Coord, rng *rand.Rand) error {
	need := count - len(g.obstacles)
	if need <= 0 {
		return nil
	}

	skip := make(map[Coord]struct{}, len(forbid))
	for _, c := range forbid {
		skip[c] = struct{}{}
	}

	// Row-major candidate list keeps sampling independent of map iteration order.
	var free []Coord
	for r := 0; r < g.rows; r++ {
		for c := 0; c < g.cols; c++ {
			cell := Coord{Row: r, Col: c}
			if g.IsWorkstation(cell) || g.IsObstacle(cell) {
				continue
			}
			if _, ok := skip[cell]; ok {
				continue
			}
			free = append(free, cell)
		}
	}
	if len(free) < need {
		return fmt.Errorf("%w: need %d free cells, have %d", ErrInsufficientFreeSpace, need, len(free))
	}

	// Partial Fisher-Yates: the first need entries are a uniform sample.
	for i := 0; i < need; i++ {
		j := i + rng.Intn(len(free)-i)
		free[i], free[j] = free[j], free[i]
		g.obstacles[free[i]] = struct{}{}
	}
	return nil
}

func sortedCells(m map[Coord]struct{}) []Coord {
	out := make([]Coord, 0, len(m))
	for c := range m {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Less(out[j]) })
	return out
}

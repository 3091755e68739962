package core

import "fmt"

// Instance is a complete scenario: grid, station lookup, tasks and endpoints.
type Instance struct {
	Grid     *GridMap
	Stations map[string]Coord
	Tasks    []*Task
	Start    Coord
	End      *Coord // Optional final position
}

// NewInstance creates an instance on the given grid.
func NewInstance(grid *GridMap, start Coord) *Instance {
	return &Instance{
		Grid:     grid,
		Stations: make(map[string]Coord),
		Start:    start,
	}
}

// AddStation registers a named station and marks its cell as a workstation.
func (inst *Instance) AddStation(name string, c Coord) error {
	if err := inst.Grid.AddWorkstation(c); err != nil {
		return fmt.Errorf("station %q: %w", name, err)
	}
	inst.Stations[name] = c
	return nil
}

// Validate checks the endpoints and task point values.
// Unknown stations are reported when a task is executed, not here.
func (inst *Instance) Validate() error {
	if inst.Grid == nil {
		return fmt.Errorf("%w: instance has no grid", ErrConfiguration)
	}
	if !inst.Grid.InBounds(inst.Start) {
		return fmt.Errorf("%w: start %v outside %dx%d grid", ErrConfiguration, inst.Start, inst.Grid.Rows(), inst.Grid.Cols())
	}
	if inst.End != nil && !inst.Grid.InBounds(*inst.End) {
		return fmt.Errorf("%w: end %v outside %dx%d grid", ErrConfiguration, *inst.End, inst.Grid.Rows(), inst.Grid.Cols())
	}
	for name, c := range inst.Stations {
		if !inst.Grid.InBounds(c) {
			return fmt.Errorf("station %q at %v: %w", name, c, ErrOutOfBounds)
		}
	}
	for _, t := range inst.Tasks {
		if t.Points < 0 {
			return fmt.Errorf("%v: %w", t, ErrInvalidPoints)
		}
	}
	return nil
}

// StationCoord resolves a station id.
func (inst *Instance) StationCoord(name string) (Coord, error) {
	c, ok := inst.Stations[name]
	if !ok {
		return Coord{}, fmt.Errorf("%w: %q", ErrUnknownStation, name)
	}
	return c, nil
}

// Package core defines domain models for the pick/place simulator.
package core

import (
	"fmt"
	"math"
)

// Coord is an integer grid cell address.
type Coord struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// Point is a continuous position on the grid (used for smoothed trajectories).
type Point struct {
	Row float64 `json:"row"`
	Col float64 `json:"col"`
}

func (c Coord) String() string {
	return fmt.Sprintf("(%d,%d)", c.Row, c.Col)
}

// Point casts the cell to a float position.
func (c Coord) Point() Point {
	return Point{Row: float64(c.Row), Col: float64(c.Col)}
}

// Less orders cells row-major.
func (c Coord) Less(o Coord) bool {
	if c.Row != o.Row {
		return c.Row < o.Row
	}
	return c.Col < o.Col
}

// Manhattan returns the 4-connected grid distance between two cells.
func (c Coord) Manhattan(o Coord) int {
	return absInt(c.Row-o.Row) + absInt(c.Col-o.Col)
}

// Euclidean returns the straight-line distance between two cells.
func (c Coord) Euclidean(o Coord) float64 {
	return math.Hypot(float64(c.Row-o.Row), float64(c.Col-o.Col))
}

// Round snaps a point to the nearest grid cell.
func (p Point) Round() Coord {
	return Coord{Row: int(math.Round(p.Row)), Col: int(math.Round(p.Col))}
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// Kind classifies a task as pick or place.
type Kind int

const (
	KindPlace Kind = iota // Default for any name without "pick"
	KindPick
)

func (k Kind) String() string {
	return [...]string{"Place", "Pick"}[k]
}

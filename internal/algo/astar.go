// Package algo implements path planning and task sequencing.
package algo

import (
	"container/heap"
	"fmt"

	"github.com/elektrokombinacija/pickplace/internal/core"
)

// astarNode for priority queue.
type astarNode struct {
	cell   core.Coord
	g      int // Cost so far
	f      int // g + h
	parent *astarNode
	index  int // heap index
}

// astarHeap implements heap.Interface ordered by (f, g, cell).
type astarHeap []*astarNode

func (h astarHeap) Len() int { return len(h) }
func (h astarHeap) Less(i, j int) bool {
	if h[i].f != h[j].f {
		return h[i].f < h[j].f
	}
	if h[i].g != h[j].g {
		return h[i].g < h[j].g
	}
	return h[i].cell.Less(h[j].cell)
}
func (h astarHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}
func (h *astarHeap) Push(x any) {
	n := x.(*astarNode)
	n.index = len(*h)
	*h = append(*h, n)
}
func (h *astarHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	old[n-1] = nil
	*h = old[0 : n-1]
	return x
}

// neighborOffsets is the fixed 4-connected expansion order (up, down, left, right).
var neighborOffsets = [4]core.Coord{{Row: -1}, {Row: 1}, {Col: -1}, {Col: 1}}

// AStar finds a shortest 4-connected path from start to goal with unit step
// cost. The returned path includes both endpoints. Ties between equally short
// paths are broken deterministically, so identical input gives identical output.
func AStar(rows, cols int, start, goal core.Coord, obstacles map[core.Coord]struct{}) ([]core.Coord, error) {
	inBounds := func(c core.Coord) bool {
		return c.Row >= 0 && c.Row < rows && c.Col >= 0 && c.Col < cols
	}
	if !inBounds(start) || !inBounds(goal) {
		return nil, fmt.Errorf("%w: start %v or goal %v outside %dx%d grid", core.ErrConfiguration, start, goal, rows, cols)
	}
	if _, blocked := obstacles[goal]; blocked {
		return nil, fmt.Errorf("%w: goal %v is an obstacle", core.ErrConfiguration, goal)
	}

	// Heuristic: Manhattan distance, admissible and consistent on a unit 4-grid.
	heuristic := func(c core.Coord) int {
		return c.Manhattan(goal)
	}

	open := &astarHeap{}
	heap.Init(open)
	heap.Push(open, &astarNode{cell: start, g: 0, f: heuristic(start)})

	best := map[core.Coord]int{start: 0}
	closed := make(map[core.Coord]bool)

	for open.Len() > 0 {
		current := heap.Pop(open).(*astarNode)

		if current.cell == goal {
			return reconstructPath(current), nil
		}

		if closed[current.cell] {
			continue
		}
		closed[current.cell] = true

		for _, off := range neighborOffsets {
			next := core.Coord{Row: current.cell.Row + off.Row, Col: current.cell.Col + off.Col}
			if !inBounds(next) || closed[next] {
				continue
			}
			if _, blocked := obstacles[next]; blocked {
				continue
			}

			g := current.g + 1
			if old, seen := best[next]; seen && g >= old {
				continue
			}
			best[next] = g
			heap.Push(open, &astarNode{
				cell:   next,
				g:      g,
				f:      g + heuristic(next),
				parent: current,
			})
		}
	}

	return nil, fmt.Errorf("%w: %v -> %v", core.ErrNoPathFound, start, goal)
}

func reconstructPath(node *astarNode) []core.Coord {
	var path []core.Coord
	for n := node; n != nil; n = n.parent {
		path = append(path, n.cell)
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

package scenario

import (
	"fmt"
	"math/rand"
	"strconv"

	"github.com/elektrokombinacija/pickplace/internal/core"
)

// GenerateStations places n stations on distinct random cells, avoiding
// forbid. Stations are named "1".."n" in row-major cell order.
func GenerateStations(rows, cols, n int, forbid []core.Coord, seed int64) ([]Station, error) {
	if rows <= 0 || cols <= 0 {
		return nil, fmt.Errorf("%w: grid must be positive, got %dx%d", core.ErrConfiguration, rows, cols)
	}
	if n < 0 {
		return nil, fmt.Errorf("%w: station count %d", core.ErrConfiguration, n)
	}
	skip := make(map[core.Coord]struct{}, len(forbid))
	for _, c := range forbid {
		skip[c] = struct{}{}
	}

	free := make([]core.Coord, 0, rows*cols)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			cell := core.Coord{Row: r, Col: c}
			if _, ok := skip[cell]; !ok {
				free = append(free, cell)
			}
		}
	}
	if len(free) < n {
		return nil, fmt.Errorf("%w: need %d station cells, %d free", core.ErrInsufficientFreeSpace, n, len(free))
	}

	rng := rand.New(rand.NewSource(seed))
	chosen := make(map[core.Coord]struct{}, n)
	for i := 0; i < n; i++ {
		j := i + rng.Intn(len(free)-i)
		free[i], free[j] = free[j], free[i]
		chosen[free[i]] = struct{}{}
	}

	out := make([]Station, 0, n)
	for r := 0; r < rows && len(out) < n; r++ {
		for c := 0; c < cols && len(out) < n; c++ {
			cell := core.Coord{Row: r, Col: c}
			if _, ok := chosen[cell]; ok {
				out = append(out, Station{Name: strconv.Itoa(len(out) + 1), Coord: cell})
			}
		}
	}
	return out, nil
}

// GenerateTasks builds jobs pick/place pairs, each moving one object between
// two different stations. Object ids cycle through objects; repeats get a
// numeric suffix so every pair has its own id.
func GenerateTasks(jobs int, stations []Station, objects []string, seed int64) ([]*core.Task, error) {
	if jobs < 0 {
		return nil, fmt.Errorf("%w: job count %d", core.ErrConfiguration, jobs)
	}
	if jobs == 0 {
		return nil, nil
	}
	if len(stations) < 2 {
		return nil, fmt.Errorf("%w: need at least 2 stations, got %d", core.ErrConfiguration, len(stations))
	}
	if len(objects) == 0 {
		return nil, fmt.Errorf("%w: no objects to move", core.ErrConfiguration)
	}

	rng := rand.New(rand.NewSource(seed))
	tasks := make([]*core.Task, 0, 2*jobs)
	for i := 0; i < jobs; i++ {
		obj := objects[i%len(objects)]
		if round := i / len(objects); round > 0 {
			obj += strconv.Itoa(round + 1)
		}
		src := rng.Intn(len(stations))
		dst := rng.Intn(len(stations) - 1)
		if dst >= src {
			dst++
		}
		tasks = append(tasks,
			&core.Task{Station: stations[src].Name, Objects: []string{obj}, Name: "Pick " + obj, Points: 10},
			&core.Task{Station: stations[dst].Name, Objects: []string{obj}, Name: "Place " + obj, Points: 10},
		)
	}
	return tasks, nil
}

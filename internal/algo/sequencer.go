package algo

import (
	"fmt"
	"math/rand"
	"sort"

	"github.com/elektrokombinacija/pickplace/internal/core"
)

// DefaultCap is the default number of objects the agent may carry at once.
const DefaultCap = 3

// Strategy names accepted by NewSequencer.
const (
	StrategyHybrid = "hybrid"
	StrategyRandom = "random"
)

// NewSequencer returns the sequencer for a strategy name. seed only affects
// the random strategy.
func NewSequencer(strategy string, capacity int, seed int64) (Sequencer, error) {
	switch strategy {
	case StrategyHybrid:
		return NewHybridSequencer(capacity), nil
	case StrategyRandom:
		return NewRandomBatchSequencer(capacity, seed), nil
	default:
		return nil, fmt.Errorf("%w: unknown strategy %q", core.ErrConfiguration, strategy)
	}
}

// Sequencer orders raw tasks into an executable queue.
type Sequencer interface {
	// Sequence returns the tasks to execute, in order. Tasks that do not form
	// a complete pick/place pair are dropped.
	Sequence(tasks []*core.Task, loc map[string]core.Coord, start core.Coord) ([]*core.Task, error)

	// Name returns the strategy name.
	Name() string
}

// PairTasks groups tasks by their first object id. A group survives only if it
// has exactly one pick and exactly one place task. Pairs are returned in the
// order their key was first seen.
func PairTasks(tasks []*core.Task) []core.TaskPair {
	type group struct {
		picks, places []*core.Task
	}
	groups := make(map[string]*group)
	var keys []string

	for _, t := range tasks {
		key := t.Key()
		if key == "" {
			continue
		}
		g, ok := groups[key]
		if !ok {
			g = &group{}
			groups[key] = g
			keys = append(keys, key)
		}
		if t.IsPick() {
			g.picks = append(g.picks, t)
		} else {
			g.places = append(g.places, t)
		}
	}

	pairs := make([]core.TaskPair, 0, len(keys))
	for _, k := range keys {
		g := groups[k]
		if len(g.picks) != 1 || len(g.places) != 1 {
			continue
		}
		pairs = append(pairs, core.TaskPair{Object: k, Pick: g.picks[0], Place: g.places[0]})
	}
	return pairs
}

// SelectBatch picks the cheapest pairs by estimated cost
// dist(current, pick) + dist(pick, place) whose picked objects fit in
// capacity together. Pairs that would overflow are skipped in favour of
// cheaper-fitting ones further down; the cheapest pair is always taken so the
// pool drains. Ties keep pool order. The returned indices refer to pairs and
// are in ascending cost order.
func SelectBatch(pairs []core.TaskPair, loc map[string]core.Coord, current core.Coord, capacity int) []int {
	idx := identity(len(pairs))
	if batchLoad(pairs, idx) <= capacity {
		return idx
	}

	cost := make([]float64, len(pairs))
	for i, p := range pairs {
		pick, place := loc[p.Pick.Station], loc[p.Place.Station]
		cost[i] = current.Euclidean(pick) + pick.Euclidean(place)
	}
	sort.SliceStable(idx, func(a, b int) bool { return cost[idx[a]] < cost[idx[b]] })
	return fillBatch(pairs, idx, capacity)
}

// fillBatch walks candidates in order and keeps each pair whose objects still
// fit. The first candidate is always kept.
func fillBatch(pairs []core.TaskPair, candidates []int, capacity int) []int {
	var chosen []int
	load := 0
	for _, i := range candidates {
		n := len(pairs[i].Pick.Objects)
		if len(chosen) > 0 && load+n > capacity {
			continue
		}
		chosen = append(chosen, i)
		load += n
		if load >= capacity {
			break
		}
	}
	return chosen
}

// batchLoad counts the objects picked up by the given pairs.
func batchLoad(pairs []core.TaskPair, idx []int) int {
	n := 0
	for _, i := range idx {
		n += len(pairs[i].Pick.Objects)
	}
	return n
}

// checkStations verifies every paired task references a known station.
func checkStations(pairs []core.TaskPair, loc map[string]core.Coord) error {
	for _, p := range pairs {
		for _, t := range []*core.Task{p.Pick, p.Place} {
			if _, ok := loc[t.Station]; !ok {
				return fmt.Errorf("%w: %q referenced by %q", core.ErrUnknownStation, t.Station, t.Name)
			}
		}
	}
	return nil
}

// removeIndices drops the given indices from pairs, preserving order.
func removeIndices(pairs []core.TaskPair, drop []int) []core.TaskPair {
	gone := make(map[int]bool, len(drop))
	for _, i := range drop {
		gone[i] = true
	}
	out := pairs[:0:0]
	for i, p := range pairs {
		if !gone[i] {
			out = append(out, p)
		}
	}
	return out
}

// HybridSequencer is the canonical cost-greedy batching sequencer. Each batch
// holds at most Cap objects and is ordered as a pick phase then a place
// phase, each by TSPOrderIndex.
type HybridSequencer struct {
	Cap int
}

// NewHybridSequencer creates a sequencer with the given carrying capacity.
func NewHybridSequencer(capacity int) *HybridSequencer {
	return &HybridSequencer{Cap: capacity}
}

// Name returns the strategy name.
func (s *HybridSequencer) Name() string { return StrategyHybrid }

// Sequence orders tasks in capacity-bounded batches.
func (s *HybridSequencer) Sequence(tasks []*core.Task, loc map[string]core.Coord, start core.Coord) ([]*core.Task, error) {
	if s.Cap < 1 {
		return nil, fmt.Errorf("%w: capacity must be >= 1, got %d", core.ErrConfiguration, s.Cap)
	}
	remaining := PairTasks(tasks)
	if err := checkStations(remaining, loc); err != nil {
		return nil, err
	}

	plan := make([]*core.Task, 0, 2*len(remaining))
	current := start

	for len(remaining) > 0 {
		chosen := SelectBatch(remaining, loc, current, s.Cap)
		batch := make([]core.TaskPair, len(chosen))
		for i, idx := range chosen {
			batch[i] = remaining[idx]
		}

		plan, current = appendPhase(plan, batch, loc, current, func(p core.TaskPair) *core.Task { return p.Pick }, TSPOrderIndex)
		plan, current = appendPhase(plan, batch, loc, current, func(p core.TaskPair) *core.Task { return p.Place }, TSPOrderIndex)

		remaining = removeIndices(remaining, chosen)
	}
	return plan, nil
}

// appendPhase orders one half of every pair in the batch and appends it to the
// plan, returning the position after the last visit.
func appendPhase(
	plan []*core.Task,
	batch []core.TaskPair,
	loc map[string]core.Coord,
	current core.Coord,
	half func(core.TaskPair) *core.Task,
	order func([]core.Coord, core.Coord) []int,
) ([]*core.Task, core.Coord) {
	pts := make([]core.Coord, len(batch))
	for i, p := range batch {
		pts[i] = loc[half(p).Station]
	}
	for _, i := range order(pts, current) {
		plan = append(plan, half(batch[i]))
		current = pts[i]
	}
	return plan, current
}

// SortTasks orders tasks with the canonical hybrid sequencer. end is where the
// agent finishes after the plan; it does not influence the order.
func SortTasks(tasks []*core.Task, loc map[string]core.Coord, start core.Coord, end *core.Coord, capacity int) ([]*core.Task, error) {
	return NewHybridSequencer(capacity).Sequence(tasks, loc, start)
}

// RandomBatchSequencer draws each batch uniformly at random, up to Cap
// objects, and orders it by Manhattan distance. It is an alternate, non-canonical strategy kept for
// comparison runs; results depend on the seed.
type RandomBatchSequencer struct {
	Cap  int
	Rand *rand.Rand
}

// NewRandomBatchSequencer creates a seeded random batch sequencer.
func NewRandomBatchSequencer(capacity int, seed int64) *RandomBatchSequencer {
	return &RandomBatchSequencer{Cap: capacity, Rand: rand.New(rand.NewSource(seed))}
}

// Name returns the strategy name.
func (s *RandomBatchSequencer) Name() string { return StrategyRandom }

// Sequence orders tasks in randomly composed batches.
func (s *RandomBatchSequencer) Sequence(tasks []*core.Task, loc map[string]core.Coord, start core.Coord) ([]*core.Task, error) {
	if s.Cap < 1 || s.Cap > MaxRandomBatchCap {
		return nil, fmt.Errorf("%w: random batching needs 1 <= capacity <= %d, got %d", core.ErrConfiguration, MaxRandomBatchCap, s.Cap)
	}
	remaining := PairTasks(tasks)
	if err := checkStations(remaining, loc); err != nil {
		return nil, err
	}

	byManhattan := func(pts []core.Coord, from core.Coord) []int {
		return bruteForceOrder(pts, from, manhattan)
	}

	plan := make([]*core.Task, 0, 2*len(remaining))
	current := start

	for len(remaining) > 0 {
		chosen := fillBatch(remaining, s.Rand.Perm(len(remaining)), s.Cap)
		batch := make([]core.TaskPair, len(chosen))
		for i, idx := range chosen {
			batch[i] = remaining[idx]
		}

		plan, current = appendPhase(plan, batch, loc, current, func(p core.TaskPair) *core.Task { return p.Pick }, byManhattan)
		plan, current = appendPhase(plan, batch, loc, current, func(p core.TaskPair) *core.Task { return p.Place }, byManhattan)

		remaining = removeIndices(remaining, chosen)
	}
	return plan, nil
}

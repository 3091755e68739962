package algo

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elektrokombinacija/pickplace/internal/core"
)

// pairTasks builds a pick and a place task for one object.
func pairTasks(obj, from, to string) []*core.Task {
	return []*core.Task{
		{Station: from, Objects: []string{obj}, Name: "Pick " + obj, Points: 10},
		{Station: to, Objects: []string{obj}, Name: "Place " + obj, Points: 10},
	}
}

// createStations lays out n stations S0..S(n-1) with seeded coordinates.
func createStations(n int, seed int64) map[string]core.Coord {
	rng := rand.New(rand.NewSource(seed))
	loc := make(map[string]core.Coord, n)
	for i := 0; i < n; i++ {
		loc[fmt.Sprintf("S%d", i)] = core.Coord{Row: rng.Intn(20), Col: rng.Intn(20)}
	}
	return loc
}

// bundleTasks builds a pick and a place task moving several objects at once.
func bundleTasks(objs []string, from, to string) []*core.Task {
	name := objs[0]
	return []*core.Task{
		{Station: from, Objects: objs, Name: "Pick " + name, Points: 10},
		{Station: to, Objects: objs, Name: "Place " + name, Points: 10},
	}
}

// assertPlanInvariants checks that carried objects never exceed capacity and
// that every pick comes before its place.
func assertPlanInvariants(t *testing.T, plan []*core.Task, capacity int) {
	t.Helper()
	pickAt := make(map[string]int)
	held := make(map[string]int)
	load := 0
	for i, task := range plan {
		if task.IsPick() {
			pickAt[task.Key()] = i
			held[task.Key()] = len(task.Objects)
			load += len(task.Objects)
			assert.LessOrEqual(t, load, capacity, "load exceeds capacity at step %d", i)
			continue
		}
		pi, ok := pickAt[task.Key()]
		require.True(t, ok, "place for %s before its pick", task.Key())
		assert.Less(t, pi, i)
		load -= held[task.Key()]
	}
	assert.Equal(t, 0, load)
}

func TestPairTasks(t *testing.T) {
	var tasks []*core.Task
	tasks = append(tasks, pairTasks("A", "S1", "S2")...)
	tasks = append(tasks, &core.Task{Station: "S3", Objects: []string{"B"}, Name: "Pick B"}) // no place
	tasks = append(tasks, &core.Task{Station: "S4", Objects: []string{"C"}, Name: "Place C"}) // no pick
	tasks = append(tasks, &core.Task{Station: "S4", Name: "Pick nothing"})                   // no objects
	tasks = append(tasks, pairTasks("D", "S2", "S1")...)
	tasks = append(tasks, &core.Task{Station: "S3", Objects: []string{"D"}, Name: "Pick D again"})

	pairs := PairTasks(tasks)
	require.Len(t, pairs, 1)
	assert.Equal(t, "A", pairs[0].Object)
	assert.Equal(t, "Pick A", pairs[0].Pick.Name)
	assert.Equal(t, "Place A", pairs[0].Place.Name)
}

func TestPairTasksKeepsFirstSeenOrder(t *testing.T) {
	tasks := []*core.Task{
		{Station: "S1", Objects: []string{"Y"}, Name: "Place Y"},
		{Station: "S1", Objects: []string{"X"}, Name: "Pick X"},
		{Station: "S2", Objects: []string{"Y"}, Name: "Pick Y"},
		{Station: "S2", Objects: []string{"X", "Z"}, Name: "Place X"},
	}
	pairs := PairTasks(tasks)
	require.Len(t, pairs, 2)
	assert.Equal(t, "Y", pairs[0].Object)
	assert.Equal(t, "X", pairs[1].Object)
}

func TestSelectBatchSmallestCost(t *testing.T) {
	loc := map[string]core.Coord{
		"near": {Row: 0, Col: 1},
		"mid":  {Row: 0, Col: 5},
		"far":  {Row: 0, Col: 9},
	}
	var tasks []*core.Task
	tasks = append(tasks, pairTasks("far1", "far", "far")...)
	tasks = append(tasks, pairTasks("near1", "near", "near")...)
	tasks = append(tasks, pairTasks("mid1", "mid", "mid")...)
	tasks = append(tasks, pairTasks("near2", "near", "near")...)
	pairs := PairTasks(tasks)

	got := SelectBatch(pairs, loc, core.Coord{}, 3)
	assert.Equal(t, []int{1, 3, 2}, got, "ties keep pool order")

	all := SelectBatch(pairs, loc, core.Coord{}, 10)
	assert.Equal(t, []int{0, 1, 2, 3}, all)
}

func TestSelectBatchCountsObjects(t *testing.T) {
	loc := map[string]core.Coord{
		"near": {Row: 0, Col: 1},
		"mid":  {Row: 0, Col: 5},
		"far":  {Row: 0, Col: 9},
	}
	var tasks []*core.Task
	tasks = append(tasks, bundleTasks([]string{"A", "A2"}, "near", "near")...)
	tasks = append(tasks, bundleTasks([]string{"B", "B2"}, "mid", "mid")...)
	tasks = append(tasks, pairTasks("C", "far", "far")...)
	pairs := PairTasks(tasks)

	// Two pairs of two do not fit in 3; the single-object pair does.
	assert.Equal(t, []int{0, 2}, SelectBatch(pairs, loc, core.Coord{}, 3))
	assert.Equal(t, []int{0, 1}, SelectBatch(pairs, loc, core.Coord{}, 4))
	assert.Equal(t, []int{0, 1, 2}, SelectBatch(pairs, loc, core.Coord{}, 5))

	// An oversized pair is still taken alone so the pool drains.
	assert.Equal(t, []int{0}, SelectBatch(pairs, loc, core.Coord{}, 1))
}

func TestSequencersRespectObjectCapacity(t *testing.T) {
	loc := createStations(8, 21)
	rng := rand.New(rand.NewSource(4))

	var tasks []*core.Task
	for i := 0; i < 9; i++ {
		from := fmt.Sprintf("S%d", rng.Intn(8))
		to := fmt.Sprintf("S%d", rng.Intn(8))
		objs := []string{fmt.Sprintf("o%d", i)}
		if i%2 == 0 {
			objs = append(objs, fmt.Sprintf("o%d_b", i))
		}
		tasks = append(tasks, bundleTasks(objs, from, to)...)
	}

	for _, capacity := range []int{2, 3, 4} {
		plan, err := NewHybridSequencer(capacity).Sequence(tasks, loc, core.Coord{})
		require.NoError(t, err)
		assert.Len(t, plan, len(tasks))
		assertPlanInvariants(t, plan, capacity)

		plan, err = NewRandomBatchSequencer(capacity, 7).Sequence(tasks, loc, core.Coord{})
		require.NoError(t, err)
		assert.Len(t, plan, len(tasks))
		assertPlanInvariants(t, plan, capacity)
	}
}

func TestHybridSequencerTwoTasks(t *testing.T) {
	loc := map[string]core.Coord{"StationA": {Row: 1, Col: 1}, "StationB": {Row: 3, Col: 3}}
	tasks := []*core.Task{
		{Station: "StationB", Objects: []string{"W1"}, Name: "Place W1", Points: 10},
		{Station: "StationA", Objects: []string{"W1"}, Name: "Pick W1", Points: 10},
	}

	plan, err := NewHybridSequencer(3).Sequence(tasks, loc, core.Coord{})
	require.NoError(t, err)
	require.Len(t, plan, 2)
	assert.Equal(t, "Pick W1", plan[0].Name)
	assert.Equal(t, "Place W1", plan[1].Name)
}

func TestHybridSequencerInvariants(t *testing.T) {
	loc := createStations(10, 3)
	rng := rand.New(rand.NewSource(11))

	var tasks []*core.Task
	for i := 0; i < 11; i++ {
		from := fmt.Sprintf("S%d", rng.Intn(10))
		to := fmt.Sprintf("S%d", rng.Intn(10))
		tasks = append(tasks, pairTasks(fmt.Sprintf("obj%d", i), from, to)...)
	}

	for _, capacity := range []int{1, 2, 3, 5} {
		plan, err := NewHybridSequencer(capacity).Sequence(tasks, loc, core.Coord{})
		require.NoError(t, err)
		assert.Len(t, plan, len(tasks), "capacity=%d", capacity)
		assertPlanInvariants(t, plan, capacity)
	}
}

func TestHybridSequencerBatchPhases(t *testing.T) {
	loc := map[string]core.Coord{
		"P1": {Row: 0, Col: 1}, "P2": {Row: 0, Col: 2},
		"D1": {Row: 5, Col: 1}, "D2": {Row: 5, Col: 2},
	}
	var tasks []*core.Task
	tasks = append(tasks, pairTasks("a", "P1", "D1")...)
	tasks = append(tasks, pairTasks("b", "P2", "D2")...)

	plan, err := NewHybridSequencer(2).Sequence(tasks, loc, core.Coord{})
	require.NoError(t, err)
	require.Len(t, plan, 4)
	// Both picks come before any place within a batch.
	assert.True(t, plan[0].IsPick())
	assert.True(t, plan[1].IsPick())
	assert.False(t, plan[2].IsPick())
	assert.False(t, plan[3].IsPick())
	assert.Equal(t, []string{"P1", "P2", "D2", "D1"}, []string{plan[0].Station, plan[1].Station, plan[2].Station, plan[3].Station})
}

func TestHybridSequencerDropsIncompletePairs(t *testing.T) {
	loc := map[string]core.Coord{"A": {Row: 0, Col: 0}, "B": {Row: 1, Col: 1}}
	tasks := pairTasks("x", "A", "B")
	tasks = append(tasks, &core.Task{Station: "A", Objects: []string{"y"}, Name: "Pick y"})

	plan, err := SortTasks(tasks, loc, core.Coord{}, nil, DefaultCap)
	require.NoError(t, err)
	assert.Len(t, plan, 2)
}

func TestHybridSequencerErrors(t *testing.T) {
	loc := map[string]core.Coord{"A": {Row: 0, Col: 0}}

	_, err := NewHybridSequencer(3).Sequence(pairTasks("x", "A", "missing"), loc, core.Coord{})
	assert.ErrorIs(t, err, core.ErrUnknownStation)

	_, err = NewHybridSequencer(0).Sequence(pairTasks("x", "A", "A"), loc, core.Coord{})
	assert.ErrorIs(t, err, core.ErrConfiguration)

	plan, err := NewHybridSequencer(3).Sequence(nil, loc, core.Coord{})
	require.NoError(t, err)
	assert.Empty(t, plan)
}

func TestRandomBatchSequencer(t *testing.T) {
	loc := createStations(6, 5)
	var tasks []*core.Task
	for i := 0; i < 7; i++ {
		tasks = append(tasks, pairTasks(fmt.Sprintf("o%d", i), fmt.Sprintf("S%d", i%6), fmt.Sprintf("S%d", (i+1)%6))...)
	}

	a, err := NewRandomBatchSequencer(3, 99).Sequence(tasks, loc, core.Coord{})
	require.NoError(t, err)
	b, err := NewRandomBatchSequencer(3, 99).Sequence(tasks, loc, core.Coord{})
	require.NoError(t, err)

	assert.Equal(t, a, b, "same seed gives same plan")
	assert.Len(t, a, len(tasks))
	assertPlanInvariants(t, a, 3)
	assert.Equal(t, "random", NewRandomBatchSequencer(1, 1).Name())

	_, err = NewRandomBatchSequencer(9, 1).Sequence(tasks, loc, core.Coord{})
	assert.ErrorIs(t, err, core.ErrConfiguration)
}

func TestNewSequencer(t *testing.T) {
	tests := []struct {
		strategy string
		want     string
		wantErr  bool
	}{
		{strategy: StrategyHybrid, want: "hybrid"},
		{strategy: StrategyRandom, want: "random"},
		{strategy: "greedy", wantErr: true},
		{strategy: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.strategy, func(t *testing.T) {
			seq, err := NewSequencer(tt.strategy, 2, 1)
			if tt.wantErr {
				assert.ErrorIs(t, err, core.ErrConfiguration)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, seq.Name())
		})
	}
}

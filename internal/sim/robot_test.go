package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elektrokombinacija/pickplace/internal/algo"
	"github.com/elektrokombinacija/pickplace/internal/core"
)

// succeed and fail force action outcomes at the default failure probability.
const (
	succeed = FixedSource(0.99)
	fail    = FixedSource(0)
)

// createTestInstance builds a 5x5 grid with StationA at (0,4) and StationB at (4,0).
func createTestInstance(t *testing.T) *core.Instance {
	t.Helper()
	grid, err := core.NewGridMap(5, 5)
	require.NoError(t, err)
	inst := core.NewInstance(grid, core.Coord{Row: 0, Col: 0})
	require.NoError(t, inst.AddStation("StationA", core.Coord{Row: 0, Col: 4}))
	require.NoError(t, inst.AddStation("StationB", core.Coord{Row: 4, Col: 0}))
	return inst
}

func newTestRobot(t *testing.T, inst *core.Instance, opts ...Option) *Robot {
	t.Helper()
	opts = append([]Option{WithSmoothing(false, algo.DefaultBandParams())}, opts...)
	r, err := NewRobot(inst.Grid, inst.Start, opts...)
	require.NoError(t, err)
	return r
}

func pick(obj, station string, points int) *core.Task {
	return &core.Task{Station: station, Objects: []string{obj}, Name: "Pick " + obj, Points: points}
}

func place(obj, station string, points int) *core.Task {
	return &core.Task{Station: station, Objects: []string{obj}, Name: "Place " + obj, Points: points}
}

func TestPickPlaceScenario(t *testing.T) {
	inst := createTestInstance(t)
	r := newTestRobot(t, inst, WithRand(succeed), WithCap(3))

	ok, err := r.ExecuteTask(pick("W1", "StationA", 10), inst.Stations)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []string{"W1"}, r.Carrying())
	assert.Equal(t, StateIdle, r.State())

	ok, err = r.ExecuteTask(place("W1", "StationB", 10), inst.Stations)
	require.NoError(t, err)
	assert.True(t, ok)

	assert.Equal(t, 20, r.Score())
	assert.Empty(t, r.Carrying())
	assert.Equal(t, core.Coord{Row: 4, Col: 0}, r.Position())

	// 1 start cell + 4 steps to A + 8 steps to B.
	path := r.Path()
	loaded := r.LoadedLog()
	require.Len(t, path, 13)
	require.Len(t, loaded, 13)
	assert.Equal(t, core.Point{Row: 0, Col: 0}, path[0])
	for i, l := range loaded {
		want := i >= 4 && i <= 11
		assert.Equal(t, want, l, "loaded_log[%d]", i)
	}
	assert.Equal(t, 12+2*ActionSteps, r.Steps())
}

func TestPlaceWithoutObjectFails(t *testing.T) {
	for _, src := range []FixedSource{succeed, fail} {
		inst := createTestInstance(t)
		r := newTestRobot(t, inst, WithRand(src))

		ok, err := r.ExecuteTask(place("X", "StationB", 50), inst.Stations)
		require.NoError(t, err)
		assert.False(t, ok, "source %v", src)
		assert.Equal(t, 0, r.Score())
		assert.Equal(t, core.Coord{Row: 4, Col: 0}, r.Position(), "robot still moves before acting")
	}
}

func TestPickFailsStochastically(t *testing.T) {
	inst := createTestInstance(t)
	r := newTestRobot(t, inst, WithRand(FixedSource(0.05)))

	ok, err := r.ExecuteTask(pick("W1", "StationA", 10), inst.Stations)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, r.Carrying())
	assert.Equal(t, 0, r.Score())
	assert.False(t, r.LoadedLog()[len(r.LoadedLog())-1])

	// Same draw succeeds when failures are disabled.
	r = newTestRobot(t, inst, WithRand(FixedSource(0.05)), WithFailProb(0))
	ok, err = r.ExecuteTask(pick("W1", "StationA", 10), inst.Stations)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestPlaceFailsStochastically(t *testing.T) {
	inst := createTestInstance(t)
	r := newTestRobot(t, inst, WithRand(succeed))
	ok, err := r.ExecuteTask(pick("W1", "StationA", 10), inst.Stations)
	require.NoError(t, err)
	require.True(t, ok)

	r.rng = fail
	ok, err = r.ExecuteTask(place("W1", "StationB", 10), inst.Stations)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, []string{"W1"}, r.Carrying())
	assert.Equal(t, 10, r.Score())
	assert.True(t, r.LoadedLog()[len(r.LoadedLog())-1])
}

func TestExecuteTaskUnknownStation(t *testing.T) {
	inst := createTestInstance(t)
	r := newTestRobot(t, inst)

	ok, err := r.ExecuteTask(pick("W1", "Nowhere", 10), inst.Stations)
	assert.ErrorIs(t, err, core.ErrUnknownStation)
	assert.False(t, ok)
	assert.Len(t, r.Path(), 1)
	assert.Equal(t, 0, r.Steps())
	assert.Equal(t, StateIdle, r.State())
}

func TestExecuteTaskNoPath(t *testing.T) {
	inst := createTestInstance(t)
	// Wall off StationA at (0,4).
	require.NoError(t, inst.Grid.AddObstacle(core.Coord{Row: 0, Col: 3}))
	require.NoError(t, inst.Grid.AddObstacle(core.Coord{Row: 1, Col: 4}))
	r := newTestRobot(t, inst, WithRand(succeed))

	ok, err := r.ExecuteTask(pick("W1", "StationA", 10), inst.Stations)
	assert.ErrorIs(t, err, core.ErrNoPathFound)
	assert.False(t, ok)
	assert.Equal(t, inst.Start, r.Position())
	assert.Empty(t, r.Carrying())
	assert.Equal(t, StateIdle, r.State())
}

func TestCapGuard(t *testing.T) {
	inst := createTestInstance(t)
	r := newTestRobot(t, inst, WithRand(succeed), WithCap(1))

	ok, err := r.ExecuteTask(pick("W1", "StationA", 10), inst.Stations)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = r.ExecuteTask(pick("W2", "StationB", 10), inst.Stations)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 1, r.Load())
	assert.Equal(t, 10, r.Score())
}

func TestMoveToHasNoScoreEffect(t *testing.T) {
	inst := createTestInstance(t)
	r := newTestRobot(t, inst)

	require.NoError(t, r.MoveTo(core.Coord{Row: 2, Col: 3}))
	assert.Equal(t, core.Coord{Row: 2, Col: 3}, r.Position())
	assert.Equal(t, 0, r.Score())
	assert.Len(t, r.Path(), 6)
	assert.Equal(t, StateIdle, r.State())

	// Moving to the current cell adds nothing.
	require.NoError(t, r.MoveTo(core.Coord{Row: 2, Col: 3}))
	assert.Len(t, r.Path(), 6)
}

func TestSmoothedPathIsRounded(t *testing.T) {
	inst := createTestInstance(t)
	require.NoError(t, inst.Grid.AddObstacle(core.Coord{Row: 2, Col: 2}))
	r, err := NewRobot(inst.Grid, inst.Start, WithSmoothing(true, algo.DefaultBandParams()))
	require.NoError(t, err)

	require.NoError(t, r.MoveTo(core.Coord{Row: 4, Col: 4}))
	path := r.Path()
	traj := r.Trajectory()
	require.Len(t, traj, len(path))
	assert.Equal(t, core.Point{Row: 4, Col: 4}, path[len(path)-1])
	for i, p := range path {
		assert.Equal(t, traj[i].Round().Point(), p)
	}
}

func TestNewRobotRejectsBadConfig(t *testing.T) {
	inst := createTestInstance(t)

	_, err := NewRobot(inst.Grid, core.Coord{Row: 5, Col: 0})
	assert.ErrorIs(t, err, core.ErrConfiguration)

	_, err = NewRobot(inst.Grid, inst.Start, WithFailProb(1.5))
	assert.ErrorIs(t, err, core.ErrConfiguration)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "Idle", StateIdle.String())
	assert.Equal(t, "Moving", StateMoving.String())
	assert.Equal(t, "Acting", StateActing.String())
}

package sim

import (
	"bytes"
	"context"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elektrokombinacija/pickplace/internal/algo"
	"github.com/elektrokombinacija/pickplace/internal/core"
)

func createTestConfig(inst *core.Instance) Config {
	cfg := DefaultConfig()
	cfg.Instance = inst
	cfg.Smooth = false
	return cfg
}

// createRandomInstance lays out stations on an open 12x12 grid and adds
// nPairs pick/place pairs between random stations.
func createRandomInstance(t *testing.T, seed int64, nStations, nPairs int) *core.Instance {
	t.Helper()
	rng := rand.New(rand.NewSource(seed))
	grid, err := core.NewGridMap(12, 12)
	require.NoError(t, err)
	inst := core.NewInstance(grid, core.Coord{Row: 0, Col: 0})
	names := make([]string, nStations)
	for i := range names {
		names[i] = fmt.Sprintf("S%d", i)
		c := core.Coord{Row: rng.Intn(12), Col: rng.Intn(12)}
		require.NoError(t, inst.AddStation(names[i], c))
	}
	for i := 0; i < nPairs; i++ {
		obj := fmt.Sprintf("O%d", i)
		inst.Tasks = append(inst.Tasks,
			pick(obj, names[rng.Intn(nStations)], 10+rng.Intn(50)),
			place(obj, names[rng.Intn(nStations)], 10+rng.Intn(50)),
		)
	}
	return inst
}

func TestRunSimulationScenario(t *testing.T) {
	inst := createTestInstance(t)
	inst.Tasks = []*core.Task{
		pick("W1", "StationA", 10),
		place("W1", "StationB", 10),
	}
	cfg := createTestConfig(inst)
	cfg.Rand = succeed

	res, err := RunSimulation(context.Background(), cfg)
	require.NoError(t, err)

	assert.Equal(t, 20, res.Score)
	assert.NotEmpty(t, res.RunID)
	assert.Equal(t, "hybrid", res.Strategy)
	require.Len(t, res.Outcomes, 2)
	assert.Empty(t, res.Outcomes[1].Carrying)
	assert.Equal(t, 2, res.Metrics.TasksSucceeded)
	assert.Equal(t, 0, res.Metrics.TasksFailed)
	assert.Equal(t, 13, res.Metrics.Distance)
	assert.Equal(t, 8, res.Metrics.LoadedSteps)
	assert.InDelta(t, 8.0/13*100, res.Metrics.Utilization, 1e-9)
	assert.Equal(t, 1, res.Metrics.MaxLoad)
}

func TestScoreMonotonic(t *testing.T) {
	for seed := int64(1); seed <= 5; seed++ {
		inst := createRandomInstance(t, seed, 6, 10)
		cfg := createTestConfig(inst)
		cfg.Seed = seed
		cfg.FailProb = 0.3

		prev := 0
		cfg.OnTask = func(out TaskOutcome) {
			assert.GreaterOrEqual(t, out.Score, 0)
			if out.Success {
				assert.Equal(t, prev+out.Points, out.Score, "task %s", out.Name)
			} else {
				assert.Equal(t, prev, out.Score, "task %s", out.Name)
			}
			prev = out.Score
		}

		res, err := RunSimulation(context.Background(), cfg)
		require.NoError(t, err)
		assert.Equal(t, prev, res.Score)
		assert.Equal(t, res.Metrics.TasksPlanned, res.Metrics.TasksSucceeded+res.Metrics.TasksFailed)
	}
}

func TestSimulatorNeverExceedsCap(t *testing.T) {
	for _, capacity := range []int{1, 2, 3} {
		inst := createRandomInstance(t, int64(capacity), 8, 12)
		cfg := createTestConfig(inst)
		cfg.Cap = capacity
		cfg.Rand = succeed

		cfg.OnTask = func(out TaskOutcome) {
			assert.LessOrEqual(t, len(out.Carrying), capacity)
		}
		res, err := RunSimulation(context.Background(), cfg)
		require.NoError(t, err)
		assert.LessOrEqual(t, res.Metrics.MaxLoad, capacity)
		// With forced success every pair completes.
		assert.Equal(t, 24, res.Metrics.TasksSucceeded)
		assert.Empty(t, res.Outcomes[len(res.Outcomes)-1].Carrying)
	}
}

func TestSimulatorMultiObjectPicksFitCapacity(t *testing.T) {
	inst := createTestInstance(t)
	bundle := func(name, from, to string, objs ...string) []*core.Task {
		return []*core.Task{
			{Station: from, Objects: objs, Name: "Pick " + name, Points: 10},
			{Station: to, Objects: objs, Name: "Place " + name, Points: 10},
		}
	}
	inst.Tasks = append(inst.Tasks, bundle("A", "StationA", "StationB", "A", "A2")...)
	inst.Tasks = append(inst.Tasks, bundle("B", "StationB", "StationA", "B", "B2")...)
	inst.Tasks = append(inst.Tasks, bundle("C", "StationA", "StationB", "C")...)

	cfg := createTestConfig(inst)
	cfg.Cap = 3
	cfg.FailProb = 0
	cfg.OnTask = func(out TaskOutcome) {
		assert.True(t, out.Success, "%s failed", out.Name)
		assert.LessOrEqual(t, len(out.Carrying), 3)
	}

	res, err := RunSimulation(context.Background(), cfg)
	require.NoError(t, err)
	assert.Equal(t, 6, res.Metrics.TasksSucceeded)
	assert.Equal(t, 0, res.Metrics.TasksFailed)
	assert.Equal(t, 60, res.Score)
	assert.LessOrEqual(t, res.Metrics.MaxLoad, 3)
}

func TestSimulatorDeterministic(t *testing.T) {
	run := func() *Result {
		inst := createRandomInstance(t, 7, 6, 8)
		cfg := createTestConfig(inst)
		cfg.Smooth = true
		cfg.Seed = 99
		res, err := RunSimulation(context.Background(), cfg)
		require.NoError(t, err)
		return res
	}
	a, b := run(), run()
	assert.Equal(t, a.Path, b.Path)
	assert.Equal(t, a.LoadedLog, b.LoadedLog)
	assert.Equal(t, a.Score, b.Score)
	assert.NotEqual(t, a.RunID, b.RunID)
}

func TestSimulatorMovesToEnd(t *testing.T) {
	inst := createTestInstance(t)
	inst.Tasks = []*core.Task{pick("W1", "StationA", 10), place("W1", "StationB", 10)}
	end := core.Coord{Row: 4, Col: 4}
	inst.End = &end

	res, err := RunSimulation(context.Background(), createTestConfig(inst))
	require.NoError(t, err)
	assert.Equal(t, end, res.Final)
	assert.Equal(t, end.Point(), res.Path[len(res.Path)-1])
}

func TestSimulatorUnreachableStation(t *testing.T) {
	inst := createTestInstance(t)
	require.NoError(t, inst.AddStation("Walled", core.Coord{Row: 4, Col: 4}))
	require.NoError(t, inst.Grid.AddObstacle(core.Coord{Row: 3, Col: 4}))
	require.NoError(t, inst.Grid.AddObstacle(core.Coord{Row: 4, Col: 3}))
	inst.Tasks = []*core.Task{
		pick("W1", "StationA", 10), place("W1", "StationB", 10),
		pick("W2", "Walled", 10), place("W2", "StationA", 10),
	}

	cfg := createTestConfig(inst)
	cfg.Rand = succeed
	_, err := RunSimulation(context.Background(), cfg)
	assert.ErrorIs(t, err, core.ErrNoPathFound)

	cfg.SkipUnreachable = true
	res, err := RunSimulation(context.Background(), cfg)
	require.NoError(t, err)
	// The skipped pick also makes its place fail on the missing object.
	assert.Equal(t, 2, res.Metrics.TasksFailed)
	var skipped []string
	for _, out := range res.Outcomes {
		if out.Error != "" {
			skipped = append(skipped, out.Name)
		}
	}
	assert.Equal(t, []string{"Pick W2"}, skipped)
}

func TestSimulatorUnknownStationAborts(t *testing.T) {
	inst := createTestInstance(t)
	inst.Tasks = []*core.Task{pick("W1", "Missing", 10), place("W1", "StationB", 10)}

	cfg := createTestConfig(inst)
	cfg.SkipUnreachable = true
	_, err := RunSimulation(context.Background(), cfg)
	assert.ErrorIs(t, err, core.ErrUnknownStation)
}

func TestSimulatorCancelled(t *testing.T) {
	inst := createRandomInstance(t, 3, 4, 3)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := RunSimulation(ctx, createTestConfig(inst))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewSimulatorRejectsBadConfig(t *testing.T) {
	_, err := NewSimulator(Config{})
	assert.ErrorIs(t, err, core.ErrConfiguration)

	inst := createTestInstance(t)
	cfg := createTestConfig(inst)
	cfg.Cap = 0
	_, err = NewSimulator(cfg)
	assert.ErrorIs(t, err, core.ErrConfiguration)

	inst.Start = core.Coord{Row: -1, Col: 0}
	_, err = NewSimulator(createTestConfig(inst))
	assert.ErrorIs(t, err, core.ErrConfiguration)
}

func TestRandomStrategy(t *testing.T) {
	inst := createRandomInstance(t, 11, 6, 6)
	cfg := createTestConfig(inst)
	cfg.Sequencer = algo.NewRandomBatchSequencer(3, 5)
	cfg.Rand = succeed

	res, err := RunSimulation(context.Background(), cfg)
	require.NoError(t, err)
	assert.Equal(t, "random", res.Strategy)
	assert.Equal(t, 12, res.Metrics.TasksSucceeded)
}

func TestTraceRoundTrip(t *testing.T) {
	inst := createTestInstance(t)
	inst.Tasks = []*core.Task{pick("W1", "StationA", 10), place("W1", "StationB", 10)}

	var buf bytes.Buffer
	tw, err := NewTraceWriter(&buf)
	require.NoError(t, err)

	cfg := createTestConfig(inst)
	cfg.Rand = succeed
	cfg.Trace = tw
	res, err := RunSimulation(context.Background(), cfg)
	require.NoError(t, err)
	require.NoError(t, tw.Close())
	require.NoError(t, tw.Close(), "close is idempotent")

	recs, err := ReadTrace(&buf)
	require.NoError(t, err)
	require.Len(t, recs, 3)
	assert.Equal(t, "task", recs[0]["type"])
	assert.Equal(t, "Pick W1", recs[0]["name"])
	assert.Equal(t, true, recs[1]["success"])
	assert.Equal(t, "summary", recs[2]["type"])
	assert.Equal(t, res.RunID, recs[2]["run_id"])
	assert.EqualValues(t, 20, recs[2]["score"])

	assert.Error(t, tw.Write(map[string]string{"late": "record"}))
}

func TestCreateTraceFileAndExport(t *testing.T) {
	dir := t.TempDir()
	inst := createTestInstance(t)
	inst.Tasks = []*core.Task{pick("W1", "StationA", 10), place("W1", "StationB", 10)}

	tw, err := CreateTraceFile(filepath.Join(dir, "traces", "run.jsonl.zst"))
	require.NoError(t, err)
	cfg := createTestConfig(inst)
	cfg.Trace = tw
	res, err := RunSimulation(context.Background(), cfg)
	require.NoError(t, err)
	require.NoError(t, tw.Close())

	f, err := os.Open(filepath.Join(dir, "traces", "run.jsonl.zst"))
	require.NoError(t, err)
	defer f.Close()
	recs, err := ReadTrace(f)
	require.NoError(t, err)
	assert.Len(t, recs, 3)

	out := filepath.Join(dir, "result.json")
	require.NoError(t, ExportResult(res, out))
	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"run_id": "`+res.RunID+`"`)
	assert.Contains(t, string(data), `"loaded_log"`)
}

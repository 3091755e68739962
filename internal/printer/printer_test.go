package printer

import (
	"bytes"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elektrokombinacija/pickplace/internal/bench"
	"github.com/elektrokombinacija/pickplace/internal/core"
	"github.com/elektrokombinacija/pickplace/internal/sim"
)

func plain(t *testing.T) {
	t.Helper()
	prev := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = prev })
}

func TestError(t *testing.T) {
	plain(t)

	t.Run("returns error with title", func(t *testing.T) {
		var buf bytes.Buffer
		err := errorTo(&buf, "Test Error", "This is a test error", nil)
		require.Error(t, err)
		require.Equal(t, "Test Error", err.Error())
		assert.Equal(t, "Test Error\n\nThis is a test error\n", buf.String())
	})

	t.Run("lists multiple suggestions", func(t *testing.T) {
		var buf bytes.Buffer
		err := errorTo(&buf, "Test Error", "Explanation", []string{"First option", "Second option"})
		require.Equal(t, "Test Error", err.Error())
		assert.Contains(t, buf.String(), "Either:\n  1. First option\n  2. Second option\n")
	})
}

func TestRunStart(t *testing.T) {
	plain(t)
	var buf bytes.Buffer
	RunStart(&buf, sim.RunInfo{RunID: "abc", Strategy: "hybrid", Supplied: 5, Planned: 4})
	assert.Equal(t, "=== RUN START === id=abc strategy=hybrid tasks=4 (dropped 1 unpaired)\n", buf.String())
}

func TestTaskLog(t *testing.T) {
	plain(t)
	var buf bytes.Buffer
	log := TaskLog(&buf)

	log(sim.TaskOutcome{Name: "Pick W1", Station: "A", Success: true, PathLen: 5,
		Position: core.Coord{Row: 0, Col: 4}, Carrying: []string{"W1"}, Score: 10})
	log(sim.TaskOutcome{Name: "Place W1", Station: "B", Success: false, PathLen: 13,
		Position: core.Coord{Row: 4, Col: 0}, Carrying: []string{"W1"}, Score: 10})
	log(sim.TaskOutcome{Name: "Pick W2", Station: "C", Error: "no path", PathLen: 13,
		Position: core.Coord{Row: 4, Col: 0}, Score: 10})

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 3)
	assert.Equal(t, "[   5] + 4  Pick W1              @ A    pos=(0,4)  load=1  score=10  result=success", string(lines[0]))
	assert.Contains(t, string(lines[1]), "[  13] + 8  Place W1")
	assert.Contains(t, string(lines[1]), "result=failure")
	assert.Contains(t, string(lines[2]), "+ 0")
	assert.Contains(t, string(lines[2]), "result=skipped (no path)")
}

func TestSummary(t *testing.T) {
	plain(t)
	res := &sim.Result{
		Outcomes: []sim.TaskOutcome{{PathLen: 13}},
		Final:    core.Coord{Row: 4, Col: 4},
		Score:    20,
		Metrics: sim.Metrics{
			TasksPlanned:   2,
			TasksSucceeded: 2,
			Distance:       17,
			LoadedSteps:    8,
			Utilization:    8.0 / 17 * 100,
			MaxLoad:        1,
			LogicalSteps:   18,
		},
	}

	var buf bytes.Buffer
	Summary(&buf, res, 1500*time.Microsecond)
	out := buf.String()
	assert.Contains(t, out, "[  17] + 4  Drive -> END         pos=(4,4)\n")
	assert.Contains(t, out, "Total dist 17 | Makespan 18 | Loaded 8 (47.1%) | Idle 9 | Tasks 2 | Score 20 | CPU wall 1.5 ms")
	assert.Contains(t, out, "succeeded=2 failed=0 (100.0%) max_load=1")
}

func TestBenchSummary(t *testing.T) {
	plain(t)

	var buf bytes.Buffer
	BenchSummary(&buf, []bench.StrategyMetrics{
		{Name: "hybrid", Runs: 5, Successes: 4, AvgRuntimeMs: 1.25, AvgScore: 210, AvgDistance: 88.5, AvgUtilization: 41.2},
	})
	out := buf.String()
	assert.Contains(t, out, "=== BENCHMARK SUMMARY ===")
	assert.Contains(t, out, "hybrid            5        4         1.25      210.0       88.5    41.2%")
}

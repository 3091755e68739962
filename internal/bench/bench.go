// Package bench runs one scenario across strategies and seeds and collects
// per-run metrics for comparison.
package bench

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strconv"
	"time"

	"github.com/elektrokombinacija/pickplace/internal/algo"
	"github.com/elektrokombinacija/pickplace/internal/sim"
)

// Options selects the runs to perform. Every strategy is run once per seed;
// the seed drives both the robot's failure rolls and random batching.
type Options struct {
	Strategies []string
	Seeds      []int64
}

// Result stores metrics from a single run.
type Result struct {
	Timestamp      string
	GoVersion      string
	OS             string
	Arch           string
	Strategy       string
	Seed           int64
	RunID          string
	RuntimeMs      float64
	Success        bool
	Error          string
	Score          int
	Distance       int
	LoadedSteps    int
	Utilization    float64
	TasksPlanned   int
	TasksSucceeded int
	MaxLoad        int
}

// Run executes base once per strategy and seed. Observers and trace output
// in base are ignored. A failed run is recorded, not returned; only context
// cancellation and bad strategy names abort the sweep. progress, if non-nil,
// is called after each run.
func Run(ctx context.Context, base sim.Config, opts Options, progress func(done, total int, r *Result)) ([]*Result, error) {
	base.OnStart = nil
	base.OnTask = nil
	base.Trace = nil
	base.Rand = nil

	total := len(opts.Strategies) * len(opts.Seeds)
	results := make([]*Result, 0, total)
	for _, strategy := range opts.Strategies {
		for _, seed := range opts.Seeds {
			seq, err := algo.NewSequencer(strategy, base.Cap, seed)
			if err != nil {
				return results, err
			}
			cfg := base
			cfg.Sequencer = seq
			cfg.Seed = seed

			r := runOne(ctx, cfg, strategy, seed)
			if err := ctx.Err(); err != nil {
				return results, err
			}
			results = append(results, r)
			if progress != nil {
				progress(len(results), total, r)
			}
		}
	}
	return results, nil
}

func runOne(ctx context.Context, cfg sim.Config, strategy string, seed int64) *Result {
	r := &Result{
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		GoVersion: runtime.Version(),
		OS:        runtime.GOOS,
		Arch:      runtime.GOARCH,
		Strategy:  strategy,
		Seed:      seed,
	}

	startTime := time.Now()
	res, err := sim.RunSimulation(ctx, cfg)
	r.RuntimeMs = float64(time.Since(startTime).Microseconds()) / 1000.0
	if err != nil {
		r.Error = err.Error()
		return r
	}

	m := res.Metrics
	r.Success = true
	r.RunID = res.RunID
	r.Score = res.Score
	r.Distance = m.Distance
	r.LoadedSteps = m.LoadedSteps
	r.Utilization = m.Utilization
	r.TasksPlanned = m.TasksPlanned
	r.TasksSucceeded = m.TasksSucceeded
	r.MaxLoad = m.MaxLoad
	return r
}

var csvHeader = []string{
	"timestamp", "go_version", "os", "arch",
	"strategy", "seed", "run_id", "runtime_ms", "success", "error",
	"score", "distance", "loaded_steps", "utilization",
	"tasks_planned", "tasks_succeeded", "max_load",
}

// WriteCSV writes one row per result.
func WriteCSV(w io.Writer, results []*Result) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(csvHeader); err != nil {
		return err
	}
	for _, r := range results {
		row := []string{
			r.Timestamp, r.GoVersion, r.OS, r.Arch,
			r.Strategy, strconv.FormatInt(r.Seed, 10), r.RunID,
			fmt.Sprintf("%.3f", r.RuntimeMs), strconv.FormatBool(r.Success), r.Error,
			strconv.Itoa(r.Score), strconv.Itoa(r.Distance), strconv.Itoa(r.LoadedSteps),
			fmt.Sprintf("%.1f", r.Utilization),
			strconv.Itoa(r.TasksPlanned), strconv.Itoa(r.TasksSucceeded), strconv.Itoa(r.MaxLoad),
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// SaveCSV writes results to path, creating parent directories.
func SaveCSV(path string, results []*Result) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create results: %w", err)
	}
	if err := WriteCSV(f, results); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// StrategyMetrics holds per-strategy aggregated metrics. Averages cover
// successful runs only.
type StrategyMetrics struct {
	Name           string
	Runs           int
	Successes      int
	AvgRuntimeMs   float64
	AvgScore       float64
	AvgDistance    float64
	AvgUtilization float64
}

// Summarize aggregates results by strategy, sorted by name.
func Summarize(results []*Result) []StrategyMetrics {
	byName := make(map[string]*StrategyMetrics)
	for _, r := range results {
		m, ok := byName[r.Strategy]
		if !ok {
			m = &StrategyMetrics{Name: r.Strategy}
			byName[r.Strategy] = m
		}
		m.Runs++
		if !r.Success {
			continue
		}
		m.Successes++
		m.AvgRuntimeMs += r.RuntimeMs
		m.AvgScore += float64(r.Score)
		m.AvgDistance += float64(r.Distance)
		m.AvgUtilization += r.Utilization
	}

	out := make([]StrategyMetrics, 0, len(byName))
	for _, m := range byName {
		if n := float64(m.Successes); n > 0 {
			m.AvgRuntimeMs /= n
			m.AvgScore /= n
			m.AvgDistance /= n
			m.AvgUtilization /= n
		}
		out = append(out, *m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

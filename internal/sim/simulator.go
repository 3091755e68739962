// Package sim runs the pick/place robot over a sequenced task list.
//
// A run builds one Robot, orders the instance's tasks with a Sequencer,
// executes them in order and optionally drives to a terminal cell. Time is
// logical: there is no clock and no wall-time delay.
package sim

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/google/uuid"

	"github.com/elektrokombinacija/pickplace/internal/algo"
	"github.com/elektrokombinacija/pickplace/internal/core"
)

// Config configures a simulation run.
type Config struct {
	// Instance to simulate
	Instance *core.Instance

	// Sequencer orders the tasks. Nil means a hybrid sequencer with Cap.
	Sequencer algo.Sequencer

	// Carrying capacity
	Cap int

	// Per-action failure probability
	FailProb float64

	// Elastic-band smoothing
	Smooth bool
	Band   algo.BandParams

	// Seed for action outcomes
	Seed int64

	// Rand overrides the seeded source when set.
	Rand Source

	// SkipUnreachable records unplannable legs as failed tasks instead of
	// aborting the run.
	SkipUnreachable bool

	Logger *slog.Logger

	// Trace receives one record per task outcome and a final summary.
	Trace *TraceWriter

	// OnStart is called once the task order is known.
	OnStart func(RunInfo)

	// OnTask is called after every task.
	OnTask func(TaskOutcome)
}

// RunInfo describes a run before execution starts.
type RunInfo struct {
	RunID    string
	Strategy string
	Supplied int
	Planned  int
}

// DefaultConfig returns default simulation configuration
func DefaultConfig() Config {
	return Config{
		Cap:      algo.DefaultCap,
		FailProb: DefaultFailProb,
		Smooth:   true,
		Band:     algo.DefaultBandParams(),
		Seed:     DefaultSeed,
	}
}

// TaskOutcome records the result of one executed task.
type TaskOutcome struct {
	Index    int        `json:"index"`
	Name     string     `json:"name"`
	Station  string     `json:"station"`
	Kind     string     `json:"kind"`
	Objects  []string   `json:"objects"`
	Points   int        `json:"points"`
	Success  bool       `json:"success"`
	Error    string     `json:"error,omitempty"`
	Steps    int        `json:"steps"`    // Logical steps spent on this task
	PathLen  int        `json:"path_len"` // Path length after the task
	Position core.Coord `json:"position"`
	Carrying []string   `json:"carrying"`
	Score    int        `json:"score"`
}

// Metrics summarises a run.
type Metrics struct {
	TasksSupplied  int     `json:"tasks_supplied"`
	TasksPlanned   int     `json:"tasks_planned"`
	TasksSucceeded int     `json:"tasks_succeeded"`
	TasksFailed    int     `json:"tasks_failed"`
	Distance       int     `json:"distance"`
	LoadedSteps    int     `json:"loaded_steps"`
	Utilization    float64 `json:"utilization"`
	MaxLoad        int     `json:"max_load"`
	LogicalSteps   int     `json:"logical_steps"`
}

// Result is the final output of a simulation run
type Result struct {
	RunID      string        `json:"run_id"`
	Strategy   string        `json:"strategy"`
	Outcomes   []TaskOutcome `json:"outcomes"`
	Path       []core.Point  `json:"path"`
	Trajectory []core.Point  `json:"trajectory"`
	LoadedLog  []bool        `json:"loaded_log"`
	Final      core.Coord    `json:"final"`
	Score      int           `json:"score"`
	Metrics    Metrics       `json:"metrics"`
}

// Simulator executes one run. It is single use.
type Simulator struct {
	runID  string
	config Config
	logger *slog.Logger
	robot  *Robot

	outcomes []TaskOutcome
	metrics  Metrics
}

// NewSimulator creates a new simulation instance
func NewSimulator(config Config) (*Simulator, error) {
	if config.Instance == nil {
		return nil, fmt.Errorf("%w: no instance", core.ErrConfiguration)
	}
	if err := config.Instance.Validate(); err != nil {
		return nil, err
	}
	if config.Sequencer == nil {
		if config.Cap < 1 {
			return nil, fmt.Errorf("%w: cap must be at least 1, got %d", core.ErrConfiguration, config.Cap)
		}
		config.Sequencer = algo.NewHybridSequencer(config.Cap)
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	src := config.Rand
	if src == nil {
		src = newSeededSource(config.Seed)
	}

	inst := config.Instance
	robot, err := NewRobot(inst.Grid, inst.Start,
		WithRand(src),
		WithFailProb(config.FailProb),
		WithSmoothing(config.Smooth, config.Band),
		WithCap(config.Cap),
		WithLogger(logger),
	)
	if err != nil {
		return nil, err
	}
	return &Simulator{runID: uuid.NewString(), config: config, logger: logger, robot: robot}, nil
}

// RunID identifies this run in logs, traces and exported results.
func (s *Simulator) RunID() string { return s.runID }

// Robot exposes the engine for inspection.
func (s *Simulator) Robot() *Robot { return s.robot }

// Run executes the simulation
func (s *Simulator) Run(ctx context.Context) (*Result, error) {
	inst := s.config.Instance
	plan, err := s.config.Sequencer.Sequence(inst.Tasks, inst.Stations, inst.Start)
	if err != nil {
		return nil, fmt.Errorf("sequencing failed: %w", err)
	}
	s.metrics.TasksSupplied = len(inst.Tasks)
	s.metrics.TasksPlanned = len(plan)
	s.logger.Info("plan ready",
		"run_id", s.runID,
		"strategy", s.config.Sequencer.Name(),
		"supplied", len(inst.Tasks),
		"planned", len(plan),
	)
	if s.config.OnStart != nil {
		s.config.OnStart(RunInfo{
			RunID:    s.runID,
			Strategy: s.config.Sequencer.Name(),
			Supplied: len(inst.Tasks),
			Planned:  len(plan),
		})
	}

	for i, task := range plan {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		out, err := s.execute(i, task)
		if err != nil {
			return nil, err
		}
		s.record(out)
	}

	if inst.End != nil {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := s.robot.MoveTo(*inst.End); err != nil {
			return nil, fmt.Errorf("moving to end %v: %w", *inst.End, err)
		}
	}

	res := s.result()
	if s.config.Trace != nil {
		if err := s.config.Trace.Write(traceSummary{Type: "summary", RunID: res.RunID, Score: res.Score, Metrics: res.Metrics}); err != nil {
			return nil, err
		}
	}
	return res, nil
}

func (s *Simulator) execute(i int, task *core.Task) (TaskOutcome, error) {
	before := s.robot.Steps()
	ok, err := s.robot.ExecuteTask(task, s.config.Instance.Stations)
	out := TaskOutcome{
		Index:   i,
		Name:    task.Name,
		Station: task.Station,
		Kind:    task.Kind().String(),
		Objects: append([]string(nil), task.Objects...),
		Points:  task.Points,
		Success: ok,
	}
	if err != nil {
		if !s.config.SkipUnreachable || !errors.Is(err, core.ErrNoPathFound) {
			return out, err
		}
		s.logger.Warn("skipping unreachable task", "task", task.Name, "station", task.Station, "error", err)
		out.Error = err.Error()
	}
	out.Steps = s.robot.Steps() - before
	out.PathLen = len(s.robot.path)
	out.Position = s.robot.Position()
	out.Carrying = s.robot.Carrying()
	out.Score = s.robot.Score()
	return out, nil
}

func (s *Simulator) record(out TaskOutcome) {
	if out.Success {
		s.metrics.TasksSucceeded++
	} else {
		s.metrics.TasksFailed++
	}
	if l := len(out.Carrying); l > s.metrics.MaxLoad {
		s.metrics.MaxLoad = l
	}
	s.outcomes = append(s.outcomes, out)

	if s.config.Trace != nil {
		if err := s.config.Trace.Write(traceTask{Type: "task", TaskOutcome: out}); err != nil {
			s.logger.Warn("trace write failed", "error", err)
		}
	}
	if s.config.OnTask != nil {
		s.config.OnTask(out)
	}
}

func (s *Simulator) result() *Result {
	loaded := s.robot.LoadedLog()
	m := s.metrics
	m.Distance = len(loaded)
	for _, l := range loaded {
		if l {
			m.LoadedSteps++
		}
	}
	if m.Distance > 0 {
		m.Utilization = float64(m.LoadedSteps) / float64(m.Distance) * 100
	}
	m.LogicalSteps = s.robot.Steps()

	return &Result{
		RunID:      s.runID,
		Strategy:   s.config.Sequencer.Name(),
		Outcomes:   s.outcomes,
		Path:       s.robot.Path(),
		Trajectory: s.robot.Trajectory(),
		LoadedLog:  loaded,
		Final:      s.robot.Position(),
		Score:      s.robot.Score(),
		Metrics:    m,
	}
}

// ExportResult writes the result to a JSON file
func ExportResult(res *Result, path string) error {
	data, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// RunSimulation is a convenience function to run a complete simulation
func RunSimulation(ctx context.Context, config Config) (*Result, error) {
	sim, err := NewSimulator(config)
	if err != nil {
		return nil, err
	}
	return sim.Run(ctx)
}

package sim

import (
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"sort"

	bt "github.com/joeycumines/go-behaviortree"

	"github.com/elektrokombinacija/pickplace/internal/algo"
	"github.com/elektrokombinacija/pickplace/internal/core"
)

// Robot defaults.
const (
	DefaultFailProb = 0.10
	DefaultSeed     = 42
	// ActionSteps is the logical time charged for a pick or place.
	ActionSteps = 1
)

// State is the per-task execution state.
type State int

const (
	StateIdle State = iota
	StateMoving
	StateActing
)

func (s State) String() string {
	return [...]string{"Idle", "Moving", "Acting"}[s]
}

// Source supplies uniform random numbers in [0, 1). *rand.Rand satisfies it.
type Source interface {
	Float64() float64
}

// FixedSource always returns the same value. Handy for forcing outcomes.
type FixedSource float64

// Float64 returns the fixed value.
func (f FixedSource) Float64() float64 { return float64(f) }

func newSeededSource(seed int64) Source {
	return rand.New(rand.NewSource(seed))
}

// Option configures a Robot.
type Option func(*Robot)

// WithRand sets the random source for action outcomes.
func WithRand(src Source) Option {
	return func(r *Robot) { r.rng = src }
}

// WithFailProb sets the probability that an otherwise valid action fails.
func WithFailProb(p float64) Option {
	return func(r *Robot) { r.failProb = p }
}

// WithSmoothing enables or disables elastic-band smoothing of each leg.
func WithSmoothing(smooth bool, band algo.BandParams) Option {
	return func(r *Robot) {
		r.smooth = smooth
		r.band = band
	}
}

// WithCap limits how many objects may be carried; a pick that would exceed it
// fails. Sequencer plans stay within the limit, so this only trips on objects
// left over from failed places or on a single task larger than the limit.
// Zero means unlimited.
func WithCap(capacity int) Option {
	return func(r *Robot) { r.capacity = capacity }
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(r *Robot) { r.logger = l }
}

// Robot is the single mobile agent. It owns its state and is not safe for
// concurrent use.
type Robot struct {
	grid     *core.GridMap
	planner  *algo.Planner
	rng      Source
	failProb float64
	smooth   bool
	band     algo.BandParams
	capacity int
	logger   *slog.Logger

	pos        core.Coord
	carrying   map[string]struct{}
	path       []core.Point // Rounded cells, one per step
	trajectory []core.Point // Planner output before rounding
	loadedLog  []bool       // Parallel to path
	score      int
	state      State
	steps      int
}

// NewRobot places a robot at start. The grid must not change afterwards.
func NewRobot(grid *core.GridMap, start core.Coord, opts ...Option) (*Robot, error) {
	if !grid.InBounds(start) {
		return nil, fmt.Errorf("%w: robot start %v outside grid", core.ErrConfiguration, start)
	}
	r := &Robot{
		grid:     grid,
		rng:      newSeededSource(DefaultSeed),
		failProb: DefaultFailProb,
		smooth:   true,
		band:     algo.DefaultBandParams(),
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),

		pos:        start,
		carrying:   make(map[string]struct{}),
		path:       []core.Point{start.Point()},
		trajectory: []core.Point{start.Point()},
		loadedLog:  []bool{false},
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.failProb < 0 || r.failProb > 1 {
		return nil, fmt.Errorf("%w: failure probability %v not in [0, 1]", core.ErrConfiguration, r.failProb)
	}
	r.planner = algo.NewPlanner(grid, r.smooth, r.band)
	return r, nil
}

// ExecuteTask moves to the task's station and performs its action.
// The returned bool is the action outcome; an error means the movement leg
// could not be planned and the robot has not moved.
func (r *Robot) ExecuteTask(task *core.Task, stations map[string]core.Coord) (bool, error) {
	goal, ok := stations[task.Station]
	if !ok {
		return false, fmt.Errorf("%w: %q", core.ErrUnknownStation, task.Station)
	}

	move := bt.New(func([]bt.Node) (bt.Status, error) {
		r.state = StateMoving
		if err := r.travel(goal); err != nil {
			return bt.Failure, err
		}
		return bt.Success, nil
	})
	act := bt.New(func([]bt.Node) (bt.Status, error) {
		r.state = StateActing
		if r.act(task) {
			return bt.Success, nil
		}
		return bt.Failure, nil
	})

	status, err := bt.New(bt.Sequence, move, act).Tick()
	r.state = StateIdle
	if err != nil {
		return false, fmt.Errorf("task %q: %w", task.Name, err)
	}
	return status == bt.Success, nil
}

// MoveTo drives to goal with no action and no score effect.
func (r *Robot) MoveTo(goal core.Coord) error {
	r.state = StateMoving
	defer func() { r.state = StateIdle }()
	return r.travel(goal)
}

func (r *Robot) travel(goal core.Coord) error {
	pts, err := r.planner.Plan(r.pos, goal)
	if err != nil {
		return err
	}

	loaded := len(r.carrying) > 0
	for _, p := range pts[1:] {
		r.trajectory = append(r.trajectory, p)
		r.path = append(r.path, p.Round().Point())
		r.loadedLog = append(r.loadedLog, loaded)
	}
	r.steps += len(pts) - 1
	r.logger.Debug("moved", "from", r.pos, "to", goal, "steps", len(pts)-1)
	r.pos = goal
	return nil
}

// act applies the pick or place and updates score and the load log.
func (r *Robot) act(task *core.Task) bool {
	r.steps += ActionSteps

	var ok bool
	var reason string
	if task.IsPick() {
		ok, reason = r.pick(task)
	} else {
		ok, reason = r.place(task)
	}

	r.loadedLog[len(r.loadedLog)-1] = len(r.carrying) > 0
	if ok {
		r.score += task.Points
	}
	r.logger.Info("action",
		"task", task.Name,
		"station", task.Station,
		"kind", task.Kind().String(),
		"success", ok,
		"reason", reason,
		"load", len(r.carrying),
		"score", r.score,
	)
	return ok
}

func (r *Robot) pick(task *core.Task) (bool, string) {
	added := 0
	for _, o := range task.Objects {
		if _, held := r.carrying[o]; !held {
			added++
		}
	}
	if r.capacity > 0 && len(r.carrying)+added > r.capacity {
		return false, "capacity"
	}
	if r.rng.Float64() < r.failProb {
		return false, "random"
	}
	for _, o := range task.Objects {
		r.carrying[o] = struct{}{}
	}
	return true, ""
}

func (r *Robot) place(task *core.Task) (bool, string) {
	for _, o := range task.Objects {
		if _, held := r.carrying[o]; !held {
			return false, "not carrying " + o
		}
	}
	if r.rng.Float64() < r.failProb {
		return false, "random"
	}
	for _, o := range task.Objects {
		delete(r.carrying, o)
	}
	return true, ""
}

// Position returns the current cell.
func (r *Robot) Position() core.Coord { return r.pos }

// Score returns the accumulated points.
func (r *Robot) Score() int { return r.score }

// State returns the execution state; Idle between tasks.
func (r *Robot) State() State { return r.state }

// Steps returns the logical step counter (moves plus actions).
func (r *Robot) Steps() int { return r.steps }

// Load returns how many objects are carried.
func (r *Robot) Load() int { return len(r.carrying) }

// IsCarrying reports whether the object is held.
func (r *Robot) IsCarrying(obj string) bool {
	_, ok := r.carrying[obj]
	return ok
}

// Carrying returns the held object ids in sorted order.
func (r *Robot) Carrying() []string {
	out := make([]string, 0, len(r.carrying))
	for o := range r.carrying {
		out = append(out, o)
	}
	sort.Strings(out)
	return out
}

// Path returns a copy of the rounded path log.
func (r *Robot) Path() []core.Point {
	return append([]core.Point(nil), r.path...)
}

// Trajectory returns a copy of the unrounded planner output, parallel to Path.
func (r *Robot) Trajectory() []core.Point {
	return append([]core.Point(nil), r.trajectory...)
}

// LoadedLog returns a copy of the per-step loaded flags, parallel to Path.
func (r *Robot) LoadedLog() []bool {
	return append([]bool(nil), r.loadedLog...)
}

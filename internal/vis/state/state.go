// Package state manages the visualization state.
package state

import (
	"math"

	"github.com/elektrokombinacija/pickplace/internal/core"
	"github.com/elektrokombinacija/pickplace/internal/sim"
)

// State holds all visualization state. Playback time is measured in path
// steps: at time t the robot is between path[floor(t)] and path[floor(t)+1].
type State struct {
	Instance *core.Instance
	Result   *sim.Result
	Playback *PlaybackState

	// ShowTrajectory draws the smoothed planner output instead of the
	// rounded cell path.
	ShowTrajectory bool
}

// NewState creates a new visualization state.
func NewState(inst *core.Instance, res *sim.Result) *State {
	maxTime := 0.0
	if res != nil && len(res.Path) > 1 {
		maxTime = float64(len(res.Path) - 1)
	}

	return &State{
		Instance: inst,
		Result:   res,
		Playback: NewPlaybackState(maxTime),
	}
}

// Points returns the path being displayed.
func (s *State) Points() []core.Point {
	if s.Result == nil {
		return nil
	}
	if s.ShowTrajectory && len(s.Result.Trajectory) == len(s.Result.Path) {
		return s.Result.Trajectory
	}
	return s.Result.Path
}

// CurrentPosition returns the interpolated robot position at playback time.
func (s *State) CurrentPosition() core.Point {
	pts := s.Points()
	if len(pts) == 0 {
		if s.Instance != nil {
			return s.Instance.Start.Point()
		}
		return core.Point{}
	}
	return interpolate(pts, s.Playback.CurrentTime)
}

// Loaded reports whether the robot carries anything at playback time.
func (s *State) Loaded() bool {
	if s.Result == nil || len(s.Result.LoadedLog) == 0 {
		return false
	}
	i := s.StepIndex()
	if i >= len(s.Result.LoadedLog) {
		i = len(s.Result.LoadedLog) - 1
	}
	return s.Result.LoadedLog[i]
}

// StepIndex returns the index of the last path entry reached.
func (s *State) StepIndex() int {
	return int(math.Floor(s.Playback.CurrentTime))
}

// Completed returns how many task outcomes happened at or before playback
// time.
func (s *State) Completed() int {
	if s.Result == nil {
		return 0
	}
	step := s.StepIndex()
	n := 0
	for _, out := range s.Result.Outcomes {
		if out.PathLen-1 > step {
			break
		}
		n++
	}
	return n
}

// Score returns the score at playback time.
func (s *State) Score() int {
	n := s.Completed()
	if n == 0 {
		return 0
	}
	return s.Result.Outcomes[n-1].Score
}

// PathHistory returns the path up to the current position for trails.
func (s *State) PathHistory() []core.Point {
	pts := s.Points()
	if len(pts) == 0 {
		return nil
	}
	i := s.StepIndex()
	if i >= len(pts) {
		i = len(pts) - 1
	}
	history := append([]core.Point(nil), pts[:i+1]...)
	return append(history, s.CurrentPosition())
}

// interpolate computes position along pts at step time t.
func interpolate(pts []core.Point, t float64) core.Point {
	if t <= 0 {
		return pts[0]
	}
	i := int(math.Floor(t))
	if i >= len(pts)-1 {
		return pts[len(pts)-1]
	}
	alpha := t - float64(i)
	a, b := pts[i], pts[i+1]
	return core.Point{
		Row: a.Row + alpha*(b.Row-a.Row),
		Col: a.Col + alpha*(b.Col-a.Col),
	}
}

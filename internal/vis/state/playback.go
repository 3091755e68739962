package state

import (
	"math"
	"time"
)

// DefaultStepsPerSecond is the playback rate at speed 1.
const DefaultStepsPerSecond = 4.0

// PlaybackState manages path playback timing.
type PlaybackState struct {
	CurrentTime float64 // Current playback position in path steps
	MaxTime     float64 // Last path index
	Speed       float64 // Multiplier on DefaultStepsPerSecond
	Playing     bool    // Whether playback is active
	lastUpdate  time.Time
	now         func() time.Time
}

// NewPlaybackState creates a new playback state.
func NewPlaybackState(maxTime float64) *PlaybackState {
	return &PlaybackState{
		CurrentTime: 0,
		MaxTime:     maxTime,
		Speed:       1.0,
		Playing:     false,
		now:         time.Now,
	}
}

// TogglePlay toggles playback on/off.
func (p *PlaybackState) TogglePlay() {
	p.Playing = !p.Playing
	if p.Playing {
		p.lastUpdate = p.now()
		// Reset to start if at end
		if p.CurrentTime >= p.MaxTime {
			p.CurrentTime = 0
		}
	}
}

// Play starts playback.
func (p *PlaybackState) Play() {
	p.Playing = true
	p.lastUpdate = p.now()
}

// Pause stops playback.
func (p *PlaybackState) Pause() {
	p.Playing = false
}

// Reset resets to beginning.
func (p *PlaybackState) Reset() {
	p.CurrentTime = 0
	p.Playing = false
}

// Advance advances playback by elapsed time since last update.
func (p *PlaybackState) Advance() {
	if !p.Playing {
		return
	}

	now := p.now()
	elapsed := now.Sub(p.lastUpdate).Seconds()
	p.lastUpdate = now

	p.CurrentTime += elapsed * p.Speed * DefaultStepsPerSecond

	if p.CurrentTime >= p.MaxTime {
		p.CurrentTime = p.MaxTime
		p.Playing = false
	}
}

// SetTime sets the current playback time.
func (p *PlaybackState) SetTime(t float64) {
	if t < 0 {
		t = 0
	}
	if t > p.MaxTime {
		t = p.MaxTime
	}
	p.CurrentTime = t
}

// StepForward pauses and moves to the next whole path step.
func (p *PlaybackState) StepForward() {
	p.Pause()
	p.SetTime(math.Floor(p.CurrentTime) + 1)
}

// StepBack pauses and moves to the previous whole path step.
func (p *PlaybackState) StepBack() {
	p.Pause()
	p.SetTime(math.Ceil(p.CurrentTime) - 1)
}

// SeekStep jumps to a path index.
func (p *PlaybackState) SeekStep(i int) {
	p.Pause()
	p.SetTime(float64(i))
}

// SetSpeed sets the playback speed multiplier.
func (p *PlaybackState) SetSpeed(speed float64) {
	if speed < 0.1 {
		speed = 0.1
	}
	if speed > 10 {
		speed = 10
	}
	p.Speed = speed
}

// Progress returns current progress as 0-1.
func (p *PlaybackState) Progress() float64 {
	if p.MaxTime <= 0 {
		return 0
	}
	return p.CurrentTime / p.MaxTime
}

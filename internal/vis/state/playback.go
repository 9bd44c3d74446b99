package state

import (
	"math"
	"time"
)

const (
	minSpeed = 0.1
	maxSpeed = 10
)

// PlaybackState converts wall-clock time into fixed simulation steps.
type PlaybackState struct {
	Playing  bool    // whether the simulation advances on its own
	Speed    float64 // playback speed multiplier (1.0 = real-time)
	TimeStep float64 // simulated seconds per step
	MaxSteps int     // cap on steps per Advance so a stall cannot snowball

	now        func() time.Time
	lastUpdate time.Time
	accum      float64
	single     int
}

// NewPlaybackState creates a playing state for the given step size.
func NewPlaybackState(timeStep float64) *PlaybackState {
	p := &PlaybackState{
		Playing:  true,
		Speed:    1.0,
		TimeStep: timeStep,
		MaxSteps: 10,
		now:      time.Now,
	}
	p.lastUpdate = p.now()
	return p
}

// TogglePlay toggles playback on/off.
func (p *PlaybackState) TogglePlay() {
	if p.Playing {
		p.Pause()
		return
	}
	p.Play()
}

// Play resumes playback.
func (p *PlaybackState) Play() {
	p.Playing = true
	p.lastUpdate = p.now()
	p.accum = 0
}

// Pause stops playback.
func (p *PlaybackState) Pause() {
	p.Playing = false
}

// StepForward queues a single step; it only takes effect while paused.
func (p *PlaybackState) StepForward() {
	if !p.Playing {
		p.single++
	}
}

// SetSpeed sets the playback speed multiplier.
func (p *PlaybackState) SetSpeed(speed float64) {
	if speed < minSpeed {
		speed = minSpeed
	}
	if speed > maxSpeed {
		speed = maxSpeed
	}
	p.Speed = speed
}

// Advance returns how many simulation steps are due since the last call.
func (p *PlaybackState) Advance() int {
	now := p.now()
	elapsed := now.Sub(p.lastUpdate).Seconds()
	p.lastUpdate = now

	if !p.Playing {
		n := p.single
		p.single = 0
		return n
	}
	if p.TimeStep <= 0 {
		return 0
	}

	p.accum += elapsed * p.Speed
	n := int(math.Floor(p.accum / p.TimeStep))
	if n > p.MaxSteps {
		n = p.MaxSteps
		p.accum = 0
		return n
	}
	p.accum -= float64(n) * p.TimeStep
	return n
}

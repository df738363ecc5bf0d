// Package pacing validates that the display really presents at the target
// rate before synchronized playback starts.
package pacing

import (
	"fmt"
	"time"
)

const (
	// DefaultWarmupFrames is how many frames are measured before trusting the
	// output rate.
	DefaultWarmupFrames = 60
	DefaultRate         = 60
)

type Phase int

const (
	Warmup Phase = iota
	Running
)

func (p Phase) String() string {
	switch p {
	case Warmup:
		return "warmup"
	case Running:
		return "running"
	default:
		return fmt.Sprintf("Phase(%d)", int(p))
	}
}

// State is Warmup(Count) or Running.
type State struct {
	Phase Phase
	Count int
}

func (s State) String() string {
	if s.Phase == Warmup {
		return fmt.Sprintf("warmup(%d)", s.Count)
	}
	return s.Phase.String()
}

// RateError reports a last warmup frame outside the accepted window. It is
// fatal: the display is not honoring the requested refresh rate.
type RateError struct {
	Measured time.Duration
	Min, Max time.Duration
}

func (e *RateError) Error() string {
	return fmt.Sprintf("pacing: frame took %v during warmup, want %v..%v; the display is not running at the requested rate",
		e.Measured, e.Min, e.Max)
}

type Options struct {
	// Frames is the number of warmup frames, DefaultWarmupFrames if zero.
	Frames int
	// Rate is the target frame rate in Hz, DefaultRate if zero.
	Rate int
	// OnRunning is called once, on the transition to Running.
	OnRunning func() error
}

// Pacer is the frame-pacing state machine. It is advanced once per presented
// frame from the render loop.
type Pacer struct {
	state     State
	frames    int
	min, max  time.Duration
	onRunning func() error
	last      time.Time
	failed    error
}

func New(opts Options) *Pacer {
	if opts.Frames <= 0 {
		opts.Frames = DefaultWarmupFrames
	}
	if opts.Rate <= 0 {
		opts.Rate = DefaultRate
	}
	lo, hi := Window(opts.Rate)
	return &Pacer{frames: opts.Frames, min: lo, max: hi, onRunning: opts.OnRunning}
}

// Window returns the closed interval a frame at rate Hz must fall in, in
// whole milliseconds: 16ms..17ms for 60Hz.
func Window(rate int) (time.Duration, time.Duration) {
	period := time.Second / time.Duration(rate)
	lo := period.Truncate(time.Millisecond)
	return lo, lo + time.Millisecond
}

func (p *Pacer) State() State {
	return p.state
}

func (p *Pacer) Running() bool {
	return p.state.Phase == Running
}

// Step measures the time since the previous Step and advances. The first
// call only records the instant.
func (p *Pacer) Step(now time.Time) (State, error) {
	if p.last.IsZero() {
		p.last = now
		return p.state, p.failed
	}
	d := now.Sub(p.last)
	p.last = now
	return p.Advance(d)
}

// Advance moves the machine one frame forward given how long that frame
// took. Once an error was returned the machine stays failed.
func (p *Pacer) Advance(frame time.Duration) (State, error) {
	if p.failed != nil {
		return p.state, p.failed
	}
	if p.state.Phase == Running {
		return p.state, nil
	}
	if p.state.Count < p.frames-1 {
		p.state.Count++
		return p.state, nil
	}
	if frame < p.min || frame > p.max {
		p.failed = &RateError{Measured: frame, Min: p.min, Max: p.max}
		return p.state, p.failed
	}
	if p.onRunning != nil {
		if err := p.onRunning(); err != nil {
			p.failed = fmt.Errorf("pacing: start playback: %w", err)
			return p.state, p.failed
		}
	}
	p.state = State{Phase: Running}
	return p.state, nil
}

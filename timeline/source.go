package timeline

import "time"

// Source is a pausable, seekable time source backed by a Clock.
//
// A Source belongs to the playback driver and is only touched from the render
// goroutine. Editors receive it for the duration of their update call.
type Source struct {
	clock  Clock
	ref    time.Time
	offset time.Duration
	paused bool
}

// NewSource starts an unpaused source at zero.
func NewSource(clock Clock) *Source {
	if clock == nil {
		clock = SystemClock{}
	}
	return &Source{clock: clock, ref: clock.Now()}
}

// Elapsed returns the current playback position.
func (s *Source) Elapsed() time.Duration {
	if s.paused {
		return s.offset
	}
	return s.clock.Now().Sub(s.ref) + s.offset
}

// Now returns the current position quantized to ticks.
func (s *Source) Now() Time {
	return FromDuration(s.Elapsed())
}

// Seek moves playback to pos. Subsequent Elapsed calls measure forward from
// the moment of the call.
func (s *Source) Seek(pos time.Duration) {
	if pos < 0 {
		pos = 0
	}
	s.ref = s.clock.Now()
	s.offset = pos
}

// SetPaused freezes or resumes the source. The elapsed value is folded into
// the offset before the state flips.
func (s *Source) SetPaused(paused bool) {
	if paused == s.paused {
		return
	}
	s.offset = s.Elapsed()
	s.ref = s.clock.Now()
	s.paused = paused
}

func (s *Source) Paused() bool {
	return s.paused
}

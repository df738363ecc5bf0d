package editor

import (
	"time"

	"github.com/milk9111/usch/timeline"
	"github.com/milk9111/usch/tracker"
	"github.com/rs/zerolog/log"
)

type Action int

const (
	TogglePause Action = iota
	StepBack
	StepForward
	PageBack
	PageForward
	Rewind
	PrevTrack
	NextTrack
	Increase
	Decrease
	StoreKey
)

const (
	// PageRows is how far PageUp and PageDown move.
	PageRows = 16
	// NudgeStep is added or subtracted by Increase and Decrease.
	NudgeStep = 0.1
)

// state is what the editor remembers between frames.
type state struct {
	selected int
}

// apply runs one action against the borrowed time source and reports whether
// the playback position or pause state changed.
func (s *state) apply(a Action, src *timeline.Source, tr *tracker.Tracker) bool {
	switch a {
	case TogglePause:
		src.SetPaused(!src.Paused())
		return true
	case Rewind:
		src.Seek(0)
		return true
	case StepBack:
		return s.step(src, tr, -1)
	case StepForward:
		return s.step(src, tr, 1)
	case PageBack:
		return s.step(src, tr, -PageRows)
	case PageForward:
		return s.step(src, tr, PageRows)
	case PrevTrack:
		s.selectTrack(tr, -1)
	case NextTrack:
		s.selectTrack(tr, 1)
	case Increase:
		s.nudge(tr, NudgeStep)
	case Decrease:
		s.nudge(tr, -NudgeStep)
	case StoreKey:
		s.nudge(tr, 0)
	}
	return false
}

// step moves by whole rows, or by seconds when there is no tracker.
func (s *state) step(src *timeline.Source, tr *tracker.Tracker, n int) bool {
	if tr == nil {
		src.Seek(src.Elapsed() + time.Duration(n)*time.Second)
		return true
	}
	row := int64(tr.CurrentRow()) + int64(n)
	if row < 0 {
		row = 0
	}
	src.Seek(tr.RowToTime(uint32(row)))
	return true
}

func (s *state) selectTrack(tr *tracker.Tracker, delta int) {
	if tr == nil {
		return
	}
	n := len(tr.Names())
	if n == 0 {
		return
	}
	s.selected = ((s.selected+delta)%n + n) % n
}

// track returns the selected track name, or "" without a tracker.
func (s *state) track(tr *tracker.Tracker) string {
	if tr == nil {
		return ""
	}
	names := tr.Names()
	if len(names) == 0 {
		return ""
	}
	if s.selected >= len(names) {
		s.selected = 0
	}
	return names[s.selected]
}

// nudge stores the held value at the current row plus delta as a key there.
func (s *state) nudge(tr *tracker.Tracker, delta float32) {
	name := s.track(tr)
	if name == "" {
		return
	}
	row := tr.CurrentRow()
	held, _, err := tr.Held(name, row)
	if err != nil {
		log.Error().Err(err).Str("track", name).Msg("store key")
		return
	}
	if err := tr.SetValue(name, row, held+delta); err != nil {
		log.Error().Err(err).Str("track", name).Uint32("row", row).Msg("store key")
	}
}

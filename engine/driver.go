// Package engine runs a production: it paces frames, samples the timeline,
// picks the active scene and keeps the music in step.
package engine

import (
	"errors"
	"fmt"
	"time"

	"github.com/milk9111/usch/pacing"
	"github.com/milk9111/usch/scene"
	"github.com/milk9111/usch/timeline"
	"github.com/milk9111/usch/tracker"
	"github.com/rs/zerolog/log"
)

// ErrFinished is returned by Driver.Frame once the last scene has ended.
var ErrFinished = errors.New("engine: production finished")

// Audio is the music output the driver starts and resyncs.
type Audio interface {
	Start() error
	Sync(pos time.Duration, paused bool) error
}

// Editor changes the playback position from user input. It may only use the
// time source during the call.
type Editor interface {
	Update(src *timeline.Source, tr *tracker.Tracker) bool
}

// Frame is the sampled playback state for one presented frame.
type Frame struct {
	Time  timeline.Time
	Scene int
	Local timeline.Time
	Row   uint32
	// Warmup is true until pacing has been validated and playback started.
	Warmup bool
}

type DriverOptions struct {
	Sequence scene.Sequence
	// Tracker, when set, owns the time source.
	Tracker *tracker.Tracker
	// Clock backs the time source when there is no tracker.
	Clock        timeline.Clock
	Audio        Audio
	WarmupFrames int
	FrameRate    int
}

type Driver struct {
	pacer    *pacing.Pacer
	source   *timeline.Source
	tracker  *tracker.Tracker
	sequence scene.Sequence
	audio    Audio
}

func NewDriver(opts DriverOptions) *Driver {
	d := &Driver{
		tracker:  opts.Tracker,
		sequence: opts.Sequence,
		audio:    opts.Audio,
	}
	if d.tracker != nil {
		d.source = d.tracker.Time()
	} else {
		d.source = timeline.NewSource(opts.Clock)
	}
	d.pacer = pacing.New(pacing.Options{
		Frames:    opts.WarmupFrames,
		Rate:      opts.FrameRate,
		OnRunning: d.start,
	})
	return d
}

// start rewinds the timeline and starts the music on the first running frame.
func (d *Driver) start() error {
	d.source.Seek(0)
	if d.audio == nil {
		log.Info().Msg("playback started without music")
		return nil
	}
	if err := d.audio.Sync(0, d.source.Paused()); err != nil {
		return err
	}
	if err := d.audio.Start(); err != nil {
		return err
	}
	log.Info().Msg("playback started")
	return nil
}

func (d *Driver) Source() *timeline.Source {
	return d.source
}

func (d *Driver) Tracker() *tracker.Tracker {
	return d.tracker
}

func (d *Driver) Sequence() scene.Sequence {
	return d.sequence
}

// Frame advances pacing with the present instant and samples the timeline
// once. During warmup it reports the first scene at time zero.
func (d *Driver) Frame(now time.Time) (Frame, error) {
	if _, err := d.pacer.Step(now); err != nil {
		return Frame{}, err
	}
	if !d.pacer.Running() {
		idx, _, ok := d.sequence.Active(timeline.Time{})
		if !ok {
			return Frame{}, ErrFinished
		}
		return Frame{Scene: idx, Warmup: true}, nil
	}

	elapsed := d.source.Elapsed()
	t := timeline.FromDuration(elapsed)
	idx, local, ok := d.sequence.Active(t)
	if !ok {
		return Frame{Time: t}, ErrFinished
	}
	f := Frame{Time: t, Scene: idx, Local: local}
	if d.tracker != nil {
		f.Row = d.tracker.RowAt(elapsed)
	}
	return f, nil
}

// Edit lends the time source to ed for one update and resyncs the music if
// the position or pause state changed.
func (d *Driver) Edit(ed Editor) error {
	if !ed.Update(d.source, d.tracker) {
		return nil
	}
	if d.audio == nil || !d.pacer.Running() {
		return nil
	}
	pos := d.source.Elapsed()
	if err := d.audio.Sync(pos, d.source.Paused()); err != nil {
		return fmt.Errorf("engine: resync music at %v: %w", pos, err)
	}
	return nil
}

// Params returns the tracker values held at row for uniform producers.
func (d *Driver) Params(row uint32) scene.Params {
	if d.tracker == nil {
		return nil
	}
	return trackParams{tracker: d.tracker, row: row}
}

type trackParams struct {
	tracker *tracker.Tracker
	row     uint32
}

func (p trackParams) Param(name string) (float32, bool, error) {
	return p.tracker.Held(name, p.row)
}

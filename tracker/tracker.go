// Package tracker stores keyframe tracks for demo parameters, measured in
// rows of a sixteenth note at the production's tempo.
package tracker

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/milk9111/usch/timeline"
)

// RowsPerBeat is the row resolution of every track.
const RowsPerBeat = 4

var (
	ErrUnknownTrack   = errors.New("tracker: unknown track")
	ErrDuplicateTrack = errors.New("tracker: duplicate track name")
)

// Tracker owns a fixed set of named tracks, the tempo that maps rows to time
// and the time source rows are measured from.
type Tracker struct {
	bpm    int
	tracks []Track
	index  map[string]int
	path   string
	time   *timeline.Source
}

// New creates one empty track per name, in order. If path names an existing
// file its keys are loaded. A nil src gets a fresh system-clock source.
func New(bpm int, path string, names []string, src *timeline.Source) (*Tracker, error) {
	if bpm <= 0 {
		return nil, fmt.Errorf("tracker: bpm must be > 0, got %d", bpm)
	}
	if src == nil {
		src = timeline.NewSource(timeline.SystemClock{})
	}
	t := &Tracker{
		bpm:    bpm,
		tracks: make([]Track, 0, len(names)),
		index:  make(map[string]int, len(names)),
		path:   path,
		time:   src,
	}
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			return nil, errors.New("tracker: empty track name")
		}
		if _, ok := t.index[name]; ok {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateTrack, name)
		}
		t.index[name] = len(t.tracks)
		t.tracks = append(t.tracks, Track{Name: name})
	}
	if path != "" {
		if err := t.load(); err != nil {
			return nil, err
		}
	}
	return t, nil
}

func (t *Tracker) BPM() int {
	return t.bpm
}

// Time returns the source the tracker reads its row from.
func (t *Tracker) Time() *timeline.Source {
	return t.time
}

// Tracks returns a copy of every track.
func (t *Tracker) Tracks() []Track {
	out := make([]Track, len(t.tracks))
	for i := range t.tracks {
		out[i] = t.tracks[i].clone()
	}
	return out
}

// Names lists the track names in construction order.
func (t *Tracker) Names() []string {
	names := make([]string, len(t.tracks))
	for i := range t.tracks {
		names[i] = t.tracks[i].Name
	}
	return names
}

// Track returns a copy of the named track.
func (t *Tracker) Track(name string) (Track, bool) {
	tr, ok := t.track(name)
	if !ok {
		return Track{}, false
	}
	return tr.clone(), true
}

func (t *Tracker) track(name string) (*Track, bool) {
	i, ok := t.index[name]
	if !ok {
		return nil, false
	}
	return &t.tracks[i], true
}

func (t *Tracker) rowsPerSecond() float64 {
	return float64(t.bpm) / 60 * RowsPerBeat
}

// CurrentRow rounds the elapsed time to the nearest row.
func (t *Tracker) CurrentRow() uint32 {
	return t.RowAt(t.time.Elapsed())
}

// RowAt rounds d to the nearest row.
func (t *Tracker) RowAt(d time.Duration) uint32 {
	row := math.Floor(d.Seconds()*t.rowsPerSecond() + 0.5)
	if row <= 0 {
		return 0
	}
	if row >= math.MaxUint32 {
		return math.MaxUint32
	}
	return uint32(row)
}

// RowToTime is the inverse of RowAt, used for scrubbing.
func (t *Tracker) RowToTime(row uint32) time.Duration {
	return time.Duration(float64(row) / t.rowsPerSecond() * float64(time.Second))
}

// Value looks up the key exactly at row; there is no interpolation.
func (t *Tracker) Value(track string, row uint32) (float32, bool) {
	tr, ok := t.track(track)
	if !ok {
		return 0, false
	}
	return tr.Value(row)
}

// Held returns the value of the last key at or before row on the named track.
// ok is false while the track has no key yet.
func (t *Tracker) Held(track string, row uint32) (float32, bool, error) {
	tr, ok := t.track(track)
	if !ok {
		return 0, false, fmt.Errorf("%w: %q", ErrUnknownTrack, track)
	}
	v, ok := tr.Held(row)
	return v, ok, nil
}

// SetValue inserts or overwrites the key at row and saves every track.
func (t *Tracker) SetValue(track string, row uint32, value float32) error {
	tr, ok := t.track(track)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownTrack, track)
	}
	tr.set(row, value)
	return t.Save()
}

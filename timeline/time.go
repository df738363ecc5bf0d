// Package timeline holds the quantized playback clock and the seekable time
// source that drives rendering and music.
package timeline

import (
	"fmt"
	"math"
	"time"
)

// TicksPerSecond is the fixed rate of the quantized clock.
const TicksPerSecond = 60

// Time is a playback position counted in ticks of 1/TicksPerSecond seconds.
type Time struct {
	ticks uint32
}

// FromTicks returns the Time of n ticks.
func FromTicks(n uint32) Time {
	return Time{ticks: n}
}

// FromDuration converts a wall-clock duration to ticks, rounding toward zero.
// Negative durations map to zero and overlong ones saturate.
func FromDuration(d time.Duration) Time {
	if d <= 0 {
		return Time{}
	}
	ns := d.Nanoseconds()
	secs := ns / int64(time.Second)
	rem := ns % int64(time.Second)
	ticks := secs*TicksPerSecond + rem*TicksPerSecond/int64(time.Second)
	if ticks >= math.MaxUint32 {
		return Time{ticks: math.MaxUint32}
	}
	return Time{ticks: uint32(ticks)}
}

// Ticks returns the raw tick count.
func (t Time) Ticks() uint32 {
	return t.ticks
}

// Duration converts back to wall-clock time. The result is rounded up to the
// next nanosecond so FromDuration(t.Duration()) == t for every t.
func (t Time) Duration() time.Duration {
	ns := (int64(t.ticks)*int64(time.Second) + TicksPerSecond - 1) / TicksPerSecond
	return time.Duration(ns)
}

// Seconds is the position in seconds, as fed to shaders.
func (t Time) Seconds() float64 {
	return float64(t.ticks) / TicksPerSecond
}

func (t Time) Add(o Time) Time {
	return Time{ticks: t.ticks + o.ticks}
}

// Sub panics if o is after t.
func (t Time) Sub(o Time) Time {
	if o.ticks > t.ticks {
		panic(fmt.Sprintf("timeline: %v - %v underflows", t, o))
	}
	return Time{ticks: t.ticks - o.ticks}
}

func (t Time) Before(o Time) bool {
	return t.ticks < o.ticks
}

func (t Time) String() string {
	return fmt.Sprintf("%dt(%.3fs)", t.ticks, t.Seconds())
}

package pacing

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestWindow(t *testing.T) {
	cases := []struct {
		rate     int
		min, max time.Duration
	}{
		{60, 16 * time.Millisecond, 17 * time.Millisecond},
		{50, 20 * time.Millisecond, 21 * time.Millisecond},
		{144, 6 * time.Millisecond, 7 * time.Millisecond},
	}
	for _, c := range cases {
		lo, hi := Window(c.rate)
		require.Equal(t, c.min, lo, "rate %d", c.rate)
		require.Equal(t, c.max, hi, "rate %d", c.rate)
	}
}

func TestWarmupToRunning(t *testing.T) {
	starts := 0
	p := New(Options{OnRunning: func() error { starts++; return nil }})
	require.Equal(t, State{Phase: Warmup}, p.State())

	frames := []time.Duration{16 * time.Millisecond, 16666 * time.Microsecond, 17 * time.Millisecond}
	for i := 1; i < 60; i++ {
		st, err := p.Advance(frames[i%len(frames)])
		require.NoError(t, err)
		require.Equal(t, State{Phase: Warmup, Count: i}, st)
		require.Equal(t, 0, starts)
	}

	st, err := p.Advance(16666 * time.Microsecond)
	require.NoError(t, err)
	require.Equal(t, Running, st.Phase)
	require.True(t, p.Running())
	require.Equal(t, 1, starts)

	for i := 0; i < 100; i++ {
		st, err = p.Advance(time.Second)
		require.NoError(t, err)
		require.Equal(t, Running, st.Phase)
	}
	require.Equal(t, 1, starts, "audio starts exactly once")
}

func TestWarmupOnlyChecksLastFrame(t *testing.T) {
	p := New(Options{})
	for i := 1; i < 60; i++ {
		_, err := p.Advance(100 * time.Millisecond)
		require.NoError(t, err)
	}
	st, err := p.Advance(16 * time.Millisecond)
	require.NoError(t, err)
	require.Equal(t, Running, st.Phase)
}

func TestWarmupRateError(t *testing.T) {
	for _, bad := range []time.Duration{7 * time.Millisecond, 15999 * time.Microsecond, 17001 * time.Microsecond, 33 * time.Millisecond} {
		t.Run(bad.String(), func(t *testing.T) {
			starts := 0
			p := New(Options{OnRunning: func() error { starts++; return nil }})
			for i := 1; i < 60; i++ {
				_, err := p.Advance(16 * time.Millisecond)
				require.NoError(t, err)
			}
			_, err := p.Advance(bad)
			var rateErr *RateError
			require.ErrorAs(t, err, &rateErr)
			require.Equal(t, bad, rateErr.Measured)

			_, err = p.Advance(16 * time.Millisecond)
			require.Error(t, err, "a failed pacer never reaches running")
			require.False(t, p.Running())
			require.Equal(t, 0, starts)
		})
	}
}

func TestStartFailure(t *testing.T) {
	boom := errors.New("no device")
	p := New(Options{Frames: 2, OnRunning: func() error { return boom }})
	_, err := p.Advance(16 * time.Millisecond)
	require.NoError(t, err)
	_, err = p.Advance(16 * time.Millisecond)
	require.ErrorIs(t, err, boom)
	require.False(t, p.Running())
}

func TestStep(t *testing.T) {
	p := New(Options{Frames: 3})
	now := time.Unix(10, 0)

	st, err := p.Step(now)
	require.NoError(t, err)
	require.Equal(t, State{Phase: Warmup}, st, "first step only anchors")

	for i := 0; i < 2; i++ {
		now = now.Add(16500 * time.Microsecond)
		_, err = p.Step(now)
		require.NoError(t, err)
	}
	now = now.Add(16500 * time.Microsecond)
	st, err = p.Step(now)
	require.NoError(t, err)
	require.Equal(t, Running, st.Phase)
}

func TestStateString(t *testing.T) {
	require.Equal(t, "warmup(3)", State{Phase: Warmup, Count: 3}.String())
	require.Equal(t, "running", State{Phase: Running}.String())
}

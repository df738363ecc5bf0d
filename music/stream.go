// Package music decodes the soundtrack and plays it in sync with the timeline.
package music

import (
	"errors"
	"io"
	"sync"
	"time"
)

const (
	SampleRate = 48000
	Channels   = 2
	// BytesPerFrame is one interleaved stereo frame of signed 16-bit samples.
	BytesPerFrame = Channels * 2
)

// Stream is decoded PCM with a play cursor. The audio device reads it from
// its own goroutine while the render loop seeks and pauses it, so every
// access goes through mu.
type Stream struct {
	mu     sync.Mutex
	pcm    []byte
	pos    int64
	paused bool
	// skew is how far into a frame the silence handed out while paused ended.
	skew int
}

// NewStream wraps interleaved 48 kHz stereo s16le samples. A trailing
// partial frame is dropped.
func NewStream(pcm []byte) *Stream {
	n := len(pcm) - len(pcm)%BytesPerFrame
	return &Stream{pcm: pcm[:n]}
}

// Read copies samples at the cursor. While paused it fills p with silence
// without moving the cursor. After a pause that ended mid-frame, the frame is
// finished with silence before samples resume.
func (s *Stream) Read(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.paused {
		clear(p)
		s.skew = (s.skew + len(p)) % BytesPerFrame
		return len(p), nil
	}
	if s.skew > 0 {
		n := min(len(p), BytesPerFrame-s.skew)
		clear(p[:n])
		s.skew = (s.skew + n) % BytesPerFrame
		return n, nil
	}
	if s.pos >= int64(len(s.pcm)) {
		return 0, io.EOF
	}
	n := copy(p, s.pcm[s.pos:])
	s.pos += int64(n)
	return n, nil
}

// Seek implements io.Seeker. Offsets are in bytes and snapped to a frame
// boundary inside the stream.
func (s *Stream) Seek(offset int64, whence int) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch whence {
	case io.SeekStart:
	case io.SeekCurrent:
		offset += s.pos
	case io.SeekEnd:
		offset += int64(len(s.pcm))
	default:
		return 0, errors.New("music: invalid whence")
	}
	s.pos = s.clamp(offset)
	s.skew = 0
	return s.pos, nil
}

func (s *Stream) clamp(offset int64) int64 {
	offset -= offset % BytesPerFrame
	if offset < 0 {
		return 0
	}
	if offset > int64(len(s.pcm)) {
		return int64(len(s.pcm))
	}
	return offset
}

func (s *Stream) SetPosition(d time.Duration) {
	s.mu.Lock()
	s.pos = s.clamp(ByteOffset(d))
	s.mu.Unlock()
}

func (s *Stream) Position() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return frameDuration(s.pos / BytesPerFrame)
}

func (s *Stream) SetPaused(paused bool) {
	s.mu.Lock()
	s.paused = paused
	s.mu.Unlock()
}

func (s *Stream) Paused() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.paused
}

// Duration is the length of the whole track.
func (s *Stream) Duration() time.Duration {
	return frameDuration(int64(len(s.pcm)) / BytesPerFrame)
}

// ByteOffset converts a playback position to a frame-aligned byte offset.
func ByteOffset(d time.Duration) int64 {
	if d <= 0 {
		return 0
	}
	secs := int64(d / time.Second)
	rem := int64(d % time.Second)
	frames := secs*SampleRate + rem*SampleRate/int64(time.Second)
	return frames * BytesPerFrame
}

func frameDuration(frames int64) time.Duration {
	secs := frames / SampleRate
	rem := frames % SampleRate
	return time.Duration(secs)*time.Second + time.Duration(rem*int64(time.Second)/SampleRate)
}

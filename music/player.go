package music

import (
	"fmt"
	"io"
	"time"

	"github.com/ebitengine/oto/v3"
	"github.com/rs/zerolog/log"
)

// DeviceError means no audio output could be opened.
type DeviceError struct {
	Err error
}

func (e *DeviceError) Error() string {
	return fmt.Sprintf("music: no audio output device: %v", e.Err)
}

func (e *DeviceError) Unwrap() error {
	return e.Err
}

const bufferSize = 50 * time.Millisecond

// output is the part of *oto.Player the Player drives.
type output interface {
	Play()
	Seek(offset int64, whence int) (int64, error)
	Close() error
	Err() error
}

// Player plays a Stream on the default output device.
type Player struct {
	ctx    *oto.Context
	out    output
	stream *Stream
}

// NewPlayer opens the output device. Only one Player may exist per process.
func NewPlayer(stream *Stream) (*Player, error) {
	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   SampleRate,
		ChannelCount: Channels,
		Format:       oto.FormatSignedInt16LE,
		BufferSize:   bufferSize,
	})
	if err != nil {
		return nil, &DeviceError{Err: err}
	}
	<-ready
	if err := ctx.Err(); err != nil {
		return nil, &DeviceError{Err: err}
	}
	return &Player{ctx: ctx, out: ctx.NewPlayer(stream), stream: stream}, nil
}

// Start begins output from the stream's current position.
func (p *Player) Start() error {
	p.out.Play()
	if err := p.out.Err(); err != nil {
		return &DeviceError{Err: err}
	}
	log.Debug().Dur("position", p.stream.Position()).Msg("music started")
	return nil
}

// Sync moves playback to pos and applies the pause state. Samples already
// queued on the device are dropped. Output that stopped at the end of the
// stream is restarted unless paused.
func (p *Player) Sync(pos time.Duration, paused bool) error {
	p.stream.SetPaused(paused)
	if _, err := p.out.Seek(ByteOffset(pos), io.SeekStart); err != nil {
		return fmt.Errorf("music: seek to %v: %w", pos, err)
	}
	if paused {
		return nil
	}
	p.out.Play()
	if err := p.out.Err(); err != nil {
		return &DeviceError{Err: err}
	}
	return nil
}

func (p *Player) Close() error {
	if err := p.out.Close(); err != nil {
		return fmt.Errorf("music: close player: %w", err)
	}
	return nil
}

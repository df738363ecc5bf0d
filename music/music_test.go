package music

import (
	"encoding/binary"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func wavFile(channels, rate int, pcm []byte) []byte {
	b := make([]byte, 0, 44+len(pcm))
	b = append(b, "RIFF"...)
	b = binary.LittleEndian.AppendUint32(b, uint32(36+len(pcm)))
	b = append(b, "WAVE"...)
	b = append(b, "fmt "...)
	b = binary.LittleEndian.AppendUint32(b, 16)
	b = binary.LittleEndian.AppendUint16(b, 1)
	b = binary.LittleEndian.AppendUint16(b, uint16(channels))
	b = binary.LittleEndian.AppendUint32(b, uint32(rate))
	b = binary.LittleEndian.AppendUint32(b, uint32(rate*channels*2))
	b = binary.LittleEndian.AppendUint16(b, uint16(channels*2))
	b = binary.LittleEndian.AppendUint16(b, 16)
	b = append(b, "data"...)
	b = binary.LittleEndian.AppendUint32(b, uint32(len(pcm)))
	return append(b, pcm...)
}

func oggIdent(channels byte, rate uint32) []byte {
	b := make([]byte, 27)
	copy(b, "OggS")
	b[26] = 1
	b = append(b, 30)
	b = append(b, 1)
	b = append(b, "vorbis"...)
	b = binary.LittleEndian.AppendUint32(b, 0)
	b = append(b, channels)
	return binary.LittleEndian.AppendUint32(b, rate)
}

func ramp(frames int) []byte {
	pcm := make([]byte, frames*BytesPerFrame)
	for i := range pcm {
		pcm[i] = byte(i)
	}
	return pcm
}

func TestStreamRead(t *testing.T) {
	s := NewStream(append(ramp(4), 0xff))
	require.Equal(t, 4*time.Second/SampleRate, s.Duration())

	buf := make([]byte, 8)
	n, err := s.Read(buf)
	require.NoError(t, err)
	require.Equal(t, 8, n)
	require.Equal(t, ramp(2), buf)
	require.Equal(t, 2*time.Second/SampleRate, s.Position())

	s.SetPaused(true)
	n, err = s.Read(buf)
	require.NoError(t, err)
	require.Equal(t, 8, n)
	require.Equal(t, make([]byte, 8), buf, "paused reads are silent")
	require.Equal(t, 2*time.Second/SampleRate, s.Position(), "paused reads keep the cursor")

	s.SetPaused(false)
	n, err = s.Read(make([]byte, 64))
	require.NoError(t, err)
	require.Equal(t, 8, n)
	_, err = s.Read(buf)
	require.ErrorIs(t, err, io.EOF)
}

func TestStreamPausedShortRead(t *testing.T) {
	s := NewStream(ramp(2))
	s.SetPaused(true)

	buf := []byte{9, 9}
	n, err := s.Read(buf)
	require.NoError(t, err)
	require.Equal(t, 2, n, "a paused read never returns 0, nil")
	require.Equal(t, []byte{0, 0}, buf)

	s.SetPaused(false)
	buf = make([]byte, 16)
	n, err = s.Read(buf)
	require.NoError(t, err)
	require.Equal(t, 2, n, "the half-played frame is finished with silence")
	require.Equal(t, []byte{0, 0}, buf[:n])

	n, err = s.Read(buf)
	require.NoError(t, err)
	require.Equal(t, 8, n)
	require.Equal(t, ramp(2), buf[:n])
}

func TestStreamSeek(t *testing.T) {
	s := NewStream(ramp(SampleRate * 2))

	s.SetPosition(1500 * time.Millisecond)
	require.Equal(t, 1500*time.Millisecond, s.Position())

	s.SetPosition(-time.Second)
	require.Equal(t, time.Duration(0), s.Position())

	s.SetPosition(time.Minute)
	require.Equal(t, 2*time.Second, s.Position())

	off, err := s.Seek(7, io.SeekStart)
	require.NoError(t, err)
	require.Equal(t, int64(4), off, "offsets snap to frames")

	off, err = s.Seek(-8, io.SeekEnd)
	require.NoError(t, err)
	require.Equal(t, int64(SampleRate*2*BytesPerFrame-8), off)

	_, err = s.Seek(0, 42)
	require.Error(t, err)
}

func TestByteOffset(t *testing.T) {
	require.Equal(t, int64(0), ByteOffset(-time.Second))
	require.Equal(t, int64(SampleRate*BytesPerFrame), ByteOffset(time.Second))
	require.Equal(t, int64(BytesPerFrame), ByteOffset(time.Second/SampleRate+1))
}

func TestDecodeWAV(t *testing.T) {
	pcm := ramp(64)
	s, err := Decode("track.WAV", wavFile(2, SampleRate, pcm))
	require.NoError(t, err)
	require.Equal(t, 64*time.Second/SampleRate, s.Duration())

	got, err := io.ReadAll(s)
	require.NoError(t, err)
	require.Equal(t, pcm, got)
}

func TestDecodeRejectsFormat(t *testing.T) {
	tests := []struct {
		name     string
		data     []byte
		channels int
		rate     int
	}{
		{"mono.wav", wavFile(1, SampleRate, ramp(4)), 1, SampleRate},
		{"cd.wav", wavFile(2, 44100, ramp(4)), 2, 44100},
		{"mono.ogg", oggIdent(1, 48000), 1, 48000},
		{"low.ogg", oggIdent(2, 22050), 2, 22050},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(tt.name, tt.data)
			var fe *FormatError
			require.ErrorAs(t, err, &fe)
			require.Equal(t, tt.channels, fe.Channels)
			require.Equal(t, tt.rate, fe.SampleRate)
		})
	}
}

func TestDecodeErrors(t *testing.T) {
	var fe *FormatError
	_, err := Decode("song.mp3", nil)
	require.ErrorAs(t, err, &fe)

	_, err = Decode("song.wav", []byte("RIFF"))
	require.ErrorAs(t, err, &fe)

	_, err = Decode("song.ogg", []byte("OggS but short"))
	require.ErrorAs(t, err, &fe)
}

func TestOggHeader(t *testing.T) {
	h, err := oggHeader(oggIdent(2, 48000))
	require.NoError(t, err)
	require.Equal(t, header{channels: 2, sampleRate: 48000}, h)
}

func TestLoadRaw(t *testing.T) {
	path := filepath.Join(t.TempDir(), "track.raw")
	require.NoError(t, os.WriteFile(path, ramp(SampleRate), 0644))
	s, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, time.Second, s.Duration())

	_, err = Load(filepath.Join(t.TempDir(), "missing.raw"))
	require.True(t, errors.Is(err, os.ErrNotExist))
}

// fakeOutput stands in for an oto player reading a Stream.
type fakeOutput struct {
	stream  *Stream
	playing bool
	plays   int
	err     error
}

func (o *fakeOutput) Play() {
	o.playing = true
	o.plays++
}

func (o *fakeOutput) Seek(offset int64, whence int) (int64, error) {
	return o.stream.Seek(offset, whence)
}

func (o *fakeOutput) Close() error { return nil }

func (o *fakeOutput) Err() error { return o.err }

func TestPlayerSyncResumesAfterEnd(t *testing.T) {
	s := NewStream(ramp(SampleRate))
	out := &fakeOutput{stream: s}
	p := &Player{out: out, stream: s}

	require.NoError(t, p.Start())
	require.True(t, out.playing)

	// the device stops on its own once the stream is drained
	_, err := s.Seek(0, io.SeekEnd)
	require.NoError(t, err)
	out.playing = false

	require.NoError(t, p.Sync(250*time.Millisecond, false))
	require.True(t, out.playing, "seeking back restarts output")
	require.Equal(t, 250*time.Millisecond, s.Position())
	require.False(t, s.Paused())

	plays := out.plays
	require.NoError(t, p.Sync(500*time.Millisecond, true))
	require.Equal(t, plays, out.plays, "a paused sync leaves the device alone")
	require.True(t, s.Paused())
	require.Equal(t, 500*time.Millisecond, s.Position())
}

func TestPlayerSyncDeviceError(t *testing.T) {
	s := NewStream(ramp(4))
	out := &fakeOutput{stream: s, err: errors.New("device lost")}
	p := &Player{out: out, stream: s}

	var de *DeviceError
	require.ErrorAs(t, p.Sync(0, false), &de)
}

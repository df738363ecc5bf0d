package music

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/hajimehoshi/ebiten/v2/audio/vorbis"
	"github.com/hajimehoshi/ebiten/v2/audio/wav"
)

// FormatError reports an audio file that is not 48 kHz stereo, or that could
// not be decoded at all.
type FormatError struct {
	Name       string
	Channels   int
	SampleRate int
	Err        error
}

func (e *FormatError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("music: %s: %v", e.Name, e.Err)
	}
	return fmt.Sprintf("music: %s: need %d Hz with %d channels, got %d Hz with %d channels",
		e.Name, SampleRate, Channels, e.SampleRate, e.Channels)
}

func (e *FormatError) Unwrap() error {
	return e.Err
}

// Load reads and decodes the audio file at path.
func Load(path string) (*Stream, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read music %q: %w", path, err)
	}
	return Decode(filepath.Base(path), b)
}

// Decode turns an ogg vorbis, wav or raw s16le file into a Stream. The name's
// extension selects the decoder.
func Decode(name string, data []byte) (*Stream, error) {
	ext := strings.ToLower(filepath.Ext(name))
	switch ext {
	case ".pcm", ".raw":
		return NewStream(data), nil
	case ".ogg", ".wav":
	default:
		return nil, &FormatError{Name: name, Err: fmt.Errorf("unsupported extension %q", ext)}
	}

	h, err := readHeader(ext, data)
	if err != nil {
		return nil, &FormatError{Name: name, Err: err}
	}
	if h.channels != Channels || h.sampleRate != SampleRate {
		return nil, &FormatError{Name: name, Channels: h.channels, SampleRate: h.sampleRate}
	}

	var src io.Reader
	if ext == ".ogg" {
		src, err = vorbis.DecodeWithoutResampling(bytes.NewReader(data))
	} else {
		src, err = wav.DecodeWithoutResampling(bytes.NewReader(data))
	}
	if err != nil {
		return nil, &FormatError{Name: name, Err: err}
	}
	pcm, err := io.ReadAll(src)
	if err != nil {
		return nil, &FormatError{Name: name, Err: err}
	}
	return NewStream(pcm), nil
}

package tracker

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

// Save rewrites the whole track file. A tracker without a path does nothing.
// The write is not crash-safe: an interrupted save can leave a truncated file.
func (t *Tracker) Save() error {
	if t.path == "" {
		return nil
	}
	var data []byte
	if isBinaryPath(t.path) {
		var buf bytes.Buffer
		if err := EncodeBinary(&buf, t.tracks); err != nil {
			return fmt.Errorf("tracker: encode %s: %w", t.path, err)
		}
		data = buf.Bytes()
	} else {
		b, err := MarshalYAML(t.tracks)
		if err != nil {
			return fmt.Errorf("tracker: encode %s: %w", t.path, err)
		}
		data = b
	}
	if dir := filepath.Dir(t.path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("tracker: save %s: %w", t.path, err)
		}
	}
	if err := os.WriteFile(t.path, data, 0644); err != nil {
		return fmt.Errorf("tracker: save %s: %w", t.path, err)
	}
	return nil
}

func (t *Tracker) load() error {
	data, err := os.ReadFile(t.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("tracker: load %s: %w", t.path, err)
	}

	var stored []Track
	if isBinaryPath(t.path) {
		stored, err = DecodeBinary(bytes.NewReader(data))
	} else {
		stored, err = UnmarshalYAML(data)
	}
	if err != nil {
		return fmt.Errorf("tracker: load %s: %w", t.path, err)
	}

	for _, s := range stored {
		tr, ok := t.track(s.Name)
		if !ok {
			log.Warn().Str("track", s.Name).Str("path", t.path).Msg("ignoring track not configured for this production")
			continue
		}
		for _, k := range s.Keys {
			tr.set(k.Row, k.Value)
		}
	}
	return nil
}

// MarshalYAML encodes tracks in the canonical track file format.
func MarshalYAML(tracks []Track) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(tracks); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// UnmarshalYAML decodes the canonical track file format.
func UnmarshalYAML(data []byte) ([]Track, error) {
	var tracks []Track
	if err := yaml.Unmarshal(data, &tracks); err != nil {
		return nil, err
	}
	return tracks, nil
}

func isBinaryPath(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".bin")
}

// Package config loads the YAML description of a production.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

type Fullscreen string

const (
	Windowed   Fullscreen = "no"
	Borderless Fullscreen = "borderless"
	Exclusive  Fullscreen = "exclusive"
)

type Demo struct {
	Name         string       `yaml:"name"`
	Resolution   [2]int       `yaml:"resolution"`
	Fullscreen   Fullscreen   `yaml:"fullscreen"`
	FrameRate    int          `yaml:"frame_rate"`
	WarmupFrames int          `yaml:"warmup_frames"`
	Music        string       `yaml:"music"`
	Tracker      *TrackerSpec `yaml:"tracker"`
	Editor       bool         `yaml:"editor"`
	Scenes       []SceneSpec  `yaml:"scenes"`
}

type TrackerSpec struct {
	BPM    int      `yaml:"bpm"`
	File   string   `yaml:"file"`
	Tracks []string `yaml:"tracks"`
}

type SceneSpec struct {
	Name     string        `yaml:"name"`
	Duration time.Duration `yaml:"duration"`
	Shader   string        `yaml:"shader"`
	Script   string        `yaml:"script"`
	Watch    bool          `yaml:"watch"`
}

// Load reads a production file. Relative asset paths in it are resolved
// against the file's directory.
func Load(path string) (*Demo, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: load %s: %w", path, err)
	}
	d, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	d.resolve(filepath.Dir(path))
	return d, nil
}

// Parse decodes and validates a production, filling in defaults.
func Parse(data []byte) (*Demo, error) {
	d := Demo{
		Resolution:   [2]int{1280, 720},
		Fullscreen:   Windowed,
		FrameRate:    60,
		WarmupFrames: 60,
	}
	if err := yaml.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("unmarshal: %w", err)
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return &d, nil
}

func (d *Demo) Validate() error {
	var errs []error
	if d.Resolution[0] <= 0 || d.Resolution[1] <= 0 {
		errs = append(errs, fmt.Errorf("resolution %dx%d must be positive", d.Resolution[0], d.Resolution[1]))
	}
	switch d.Fullscreen {
	case Windowed, Borderless, Exclusive:
	default:
		errs = append(errs, fmt.Errorf("fullscreen %q must be one of no, borderless, exclusive", d.Fullscreen))
	}
	if d.FrameRate <= 0 {
		errs = append(errs, fmt.Errorf("frame_rate %d must be positive", d.FrameRate))
	}
	if d.WarmupFrames <= 0 {
		errs = append(errs, fmt.Errorf("warmup_frames %d must be positive", d.WarmupFrames))
	}
	if t := d.Tracker; t != nil {
		if t.BPM <= 0 {
			errs = append(errs, fmt.Errorf("tracker bpm %d must be positive", t.BPM))
		}
		if len(t.Tracks) == 0 {
			errs = append(errs, errors.New("tracker needs at least one track"))
		}
	}
	if len(d.Scenes) == 0 {
		errs = append(errs, errors.New("no scenes"))
	}
	for i, s := range d.Scenes {
		if s.Name == "" {
			errs = append(errs, fmt.Errorf("scene %d has no name", i))
		}
		if s.Duration < 0 {
			errs = append(errs, fmt.Errorf("scene %q has negative duration", s.Name))
		}
		if s.Shader == "" {
			errs = append(errs, fmt.Errorf("scene %q has no shader", s.Name))
		}
	}
	return errors.Join(errs...)
}

func (d *Demo) resolve(dir string) {
	abs := func(p string) string {
		if p == "" || filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(dir, p)
	}
	d.Music = abs(d.Music)
	if d.Tracker != nil {
		d.Tracker.File = abs(d.Tracker.File)
	}
	for i := range d.Scenes {
		d.Scenes[i].Shader = abs(d.Scenes[i].Shader)
		d.Scenes[i].Script = abs(d.Scenes[i].Script)
	}
}

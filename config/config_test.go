package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const demoYAML = `
name: raymarch
resolution: [1920, 1080]
fullscreen: borderless
music: music/track.ogg
tracker:
  bpm: 120
  file: tracks.yaml
  tracks: [fade, zoom]
editor: true
scenes:
  - name: intro
    duration: 10s
    shader: intro.kage
    script: /abs/intro.tengo
    watch: true
  - name: outro
    duration: 1m30s
    shader: shaders/outro.kage
`

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "demo.yaml")
	require.NoError(t, os.WriteFile(path, []byte(demoYAML), 0644))

	d, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "raymarch", d.Name)
	require.Equal(t, [2]int{1920, 1080}, d.Resolution)
	require.Equal(t, Borderless, d.Fullscreen)
	require.Equal(t, 60, d.FrameRate, "defaults survive")
	require.Equal(t, 60, d.WarmupFrames)
	require.True(t, d.Editor)
	require.Equal(t, filepath.Join(dir, "music", "track.ogg"), d.Music)

	require.NotNil(t, d.Tracker)
	require.Equal(t, 120, d.Tracker.BPM)
	require.Equal(t, filepath.Join(dir, "tracks.yaml"), d.Tracker.File)
	require.Equal(t, []string{"fade", "zoom"}, d.Tracker.Tracks)

	require.Len(t, d.Scenes, 2)
	require.Equal(t, SceneSpec{
		Name:     "intro",
		Duration: 10 * time.Second,
		Shader:   filepath.Join(dir, "intro.kage"),
		Script:   "/abs/intro.tengo",
		Watch:    true,
	}, d.Scenes[0])
	require.Equal(t, 90*time.Second, d.Scenes[1].Duration)
	require.Equal(t, filepath.Join(dir, "shaders", "outro.kage"), d.Scenes[1].Shader)
	require.Empty(t, d.Scenes[1].Script)
}

func TestParseMinimal(t *testing.T) {
	d, err := Parse([]byte("scenes: [{name: a, duration: 1s, shader: a.kage}]"))
	require.NoError(t, err)
	require.Nil(t, d.Tracker)
	require.Equal(t, Windowed, d.Fullscreen)
	require.Equal(t, [2]int{1280, 720}, d.Resolution)
}

func TestParseInvalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"no scenes", "name: x", "no scenes"},
		{"fullscreen", "fullscreen: maybe\nscenes: [{name: a, shader: a.kage}]", "fullscreen"},
		{"frame rate", "frame_rate: 0\nscenes: [{name: a, shader: a.kage}]", "frame_rate"},
		{"bpm", "tracker: {bpm: 0, tracks: [a]}\nscenes: [{name: a, shader: a.kage}]", "bpm"},
		{"tracks", "tracker: {bpm: 120}\nscenes: [{name: a, shader: a.kage}]", "at least one track"},
		{"shader", "scenes: [{name: a, duration: 1s}]", "no shader"},
		{"duration", "scenes: [{name: a, duration: soon, shader: a.kage}]", "unmarshal"},
		{"resolution", "resolution: [0, 720]\nscenes: [{name: a, shader: a.kage}]", "resolution"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			require.ErrorContains(t, err, tt.want)
		})
	}
}

func TestLoadMissing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "demo.yaml"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestExampleProduction(t *testing.T) {
	d, err := Load(filepath.Join("..", "examples", "plasma", "demo.yaml"))
	require.NoError(t, err)
	require.Equal(t, "plasma", d.Name)
	require.Empty(t, d.Music)
	require.Len(t, d.Scenes, 2)
	for _, s := range d.Scenes {
		require.FileExists(t, s.Shader)
	}
	require.FileExists(t, d.Scenes[0].Script)
	require.FileExists(t, d.Tracker.File)
}

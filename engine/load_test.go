package engine

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/milk9111/usch/config"
	"github.com/milk9111/usch/hotreload"
	"github.com/milk9111/usch/music"
	"github.com/milk9111/usch/scene"
	"github.com/milk9111/usch/tracker"
	"github.com/stretchr/testify/require"
)

func demo(dir string) *config.Demo {
	return &config.Demo{
		Name:         "test",
		Resolution:   [2]int{320, 200},
		FrameRate:    60,
		WarmupFrames: 60,
		Scenes: []config.SceneSpec{
			{Name: "intro", Duration: time.Second, Shader: filepath.Join(dir, "intro.kage"), Script: filepath.Join(dir, "intro.tengo")},
		},
	}
}

func TestLoadMissingShader(t *testing.T) {
	_, err := Load(context.Background(), demo(t.TempDir()), LoadOptions{NoWatch: true, Mute: true})
	require.ErrorIs(t, err, os.ErrNotExist)
	require.ErrorContains(t, err, `scene "intro"`)
}

func TestLoadBadScript(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "intro.kage"), []byte("package main"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "intro.tengo"), []byte("uniforms := "), 0644))

	_, err := Load(context.Background(), demo(dir), LoadOptions{NoWatch: true, Mute: true})
	require.ErrorContains(t, err, "script")
}

func TestLoadUnknownTrack(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "intro.kage"), []byte("package main"), 0644))
	src := "uniforms := {}\nuniforms.Zoom = param(\"zoom\", 1)\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "intro.tengo"), []byte(src), 0644))
	d := demo(dir)
	d.Tracker = &config.TrackerSpec{BPM: 120, Tracks: []string{"fade"}}

	_, err := Load(context.Background(), d, LoadOptions{NoWatch: true, Mute: true})
	require.ErrorIs(t, err, tracker.ErrUnknownTrack)
	require.ErrorContains(t, err, `scene "intro"`)
}

func TestReloadRejectsUnknownTrack(t *testing.T) {
	tr, err := tracker.New(120, "", []string{"fade"}, nil)
	require.NoError(t, err)
	first, err := scene.CompileScript([]byte(`uniforms := {Fade: param("fade", 1)}`))
	require.NoError(t, err)
	q := &scriptQueue{next: []byte(`uniforms := {Zoom: param("zoom", 1)}`)}
	c := hotreload.NewCoordinator("intro.tengo", first, q, scene.ScriptCompiler{Params: trackParams{tracker: tr}})

	swapped, err := c.Poll()
	require.ErrorIs(t, err, tracker.ErrUnknownTrack)
	require.False(t, swapped)
	require.Same(t, first, c.Active())
}

func TestLoadBadMusic(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "intro.kage"), []byte("package main"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "song.mp3"), []byte("ID3"), 0644))
	d := demo(dir)
	d.Scenes[0].Script = ""
	d.Music = filepath.Join(dir, "song.mp3")

	_, err := Load(context.Background(), d, LoadOptions{NoWatch: true, Mute: true})
	var fe *music.FormatError
	require.ErrorAs(t, err, &fe)
}

type scriptQueue struct {
	next []byte
}

func (q *scriptQueue) Poll() ([]byte, bool) {
	if q.next == nil {
		return nil, false
	}
	b := q.next
	q.next = nil
	return b, true
}

func TestReloadingScript(t *testing.T) {
	first, err := scene.CompileScript([]byte("uniforms := {Fade: 1}"))
	require.NoError(t, err)
	q := &scriptQueue{}
	c := hotreload.NewCoordinator("intro.tengo", first, q, scene.ScriptCompiler{})
	producer := reloadingScript{c}

	u, err := producer.Uniforms(scene.Context{})
	require.NoError(t, err)
	require.Equal(t, int64(1), u["Fade"])

	q.next = []byte("uniforms := {Fade: 2}")
	swapped, err := c.Poll()
	require.NoError(t, err)
	require.True(t, swapped)

	u, err = producer.Uniforms(scene.Context{})
	require.NoError(t, err)
	require.Equal(t, int64(2), u["Fade"])
}

func TestReportUniformsOnce(t *testing.T) {
	g := &Game{
		scenes:    []*sceneState{{scene: scene.Scene{Name: "intro"}}},
		lastError: make(map[int]string),
	}
	err := errors.New("division by zero")
	g.reportUniforms(0, err)
	require.Equal(t, "division by zero", g.lastError[0])
	g.reportUniforms(0, err)
	require.Len(t, g.lastError, 1)
	g.reportUniforms(0, nil)
	require.Empty(t, g.lastError)
	require.NoError(t, g.fatal)

	g.reportUniforms(0, fmt.Errorf("runtime: %w", tracker.ErrUnknownTrack))
	require.ErrorIs(t, g.Update(), tracker.ErrUnknownTrack)
}

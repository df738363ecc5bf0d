package engine

import (
	"errors"
	"fmt"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/milk9111/usch/editor"
	"github.com/milk9111/usch/hotreload"
	"github.com/milk9111/usch/music"
	"github.com/milk9111/usch/render"
	"github.com/milk9111/usch/scene"
	"github.com/milk9111/usch/timeline"
	"github.com/milk9111/usch/tracker"
	"github.com/rs/zerolog/log"
)

type sceneState struct {
	scene  scene.Scene
	shader *hotreload.Coordinator[*render.Pipeline]
	script *hotreload.Coordinator[*scene.Script]
}

// Game adapts a Driver to ebiten's Update/Draw loop.
type Game struct {
	driver   *Driver
	editor   *editor.Editor
	scenes   []*sceneState
	watchers []*hotreload.Watcher
	player   *music.Player
	clock    timeline.Clock

	width, height int
	frame         Frame
	// lastError remembers the last uniform error per scene so it is logged
	// once rather than every frame.
	lastError map[int]string
	// fatal is a configuration error found while drawing, returned by the
	// next Update.
	fatal error
	// ShowFPS draws ebiten's frame counters in the corner.
	ShowFPS bool
}

func (g *Game) Update() error {
	if g.fatal != nil {
		return g.fatal
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		log.Info().Msg("escape pressed")
		return ebiten.Termination
	}

	for _, s := range g.scenes {
		s.shader.Poll()
		s.script.Poll()
	}

	if g.editor != nil {
		if err := g.driver.Edit(g.editor); err != nil {
			return err
		}
	}

	f, err := g.driver.Frame(g.clock.Now())
	if errors.Is(err, ErrFinished) {
		log.Info().Stringer("time", f.Time).Msg("production finished")
		return ebiten.Termination
	}
	if err != nil {
		return err
	}
	g.frame = f
	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	s := g.scenes[g.frame.Scene]
	ctx := scene.Context{
		Time:       g.frame.Time,
		Local:      g.frame.Local,
		Resolution: [2]float32{float32(g.width), float32(g.height)},
		Params:     g.driver.Params(g.frame.Row),
	}
	uniforms, err := s.scene.Uniforms.Uniforms(ctx)
	g.reportUniforms(g.frame.Scene, err)
	s.shader.Active().Draw(screen, uniforms)

	if g.editor != nil {
		g.editor.Draw(screen)
	}
	if g.ShowFPS {
		ebitenutil.DebugPrint(screen, fmt.Sprintf("TPS: %.2f  FPS: %.2f  %s", ebiten.ActualTPS(), ebiten.ActualFPS(), g.frame.Time))
	}
}

func (g *Game) reportUniforms(idx int, err error) {
	if err == nil {
		delete(g.lastError, idx)
		return
	}
	if errors.Is(err, tracker.ErrUnknownTrack) {
		g.fatal = fmt.Errorf("engine: scene %q: %w", g.scenes[idx].scene.Name, err)
		return
	}
	msg := err.Error()
	if g.lastError[idx] == msg {
		return
	}
	g.lastError[idx] = msg
	log.Warn().Str("scene", g.scenes[idx].scene.Name).Err(err).Msg("uniforms failed, reusing previous values")
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return g.width, g.height
}

// Close stops the music and the file watchers. It is called after the loop
// has exited.
func (g *Game) Close() error {
	var errs []error
	for _, w := range g.watchers {
		errs = append(errs, w.Close())
	}
	g.watchers = nil
	if g.player != nil {
		errs = append(errs, g.player.Close())
		g.player = nil
	}
	return errors.Join(errs...)
}

func (g *Game) EditorEnabled() bool {
	return g.editor != nil
}

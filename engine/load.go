package engine

import (
	"context"
	"fmt"
	"os"

	"github.com/milk9111/usch/config"
	"github.com/milk9111/usch/editor"
	"github.com/milk9111/usch/hotreload"
	"github.com/milk9111/usch/music"
	"github.com/milk9111/usch/render"
	"github.com/milk9111/usch/scene"
	"github.com/milk9111/usch/timeline"
	"github.com/milk9111/usch/tracker"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

type LoadOptions struct {
	// Editor overrides the production's editor flag when set.
	Editor *bool
	// NoWatch disables hot reloading for every scene.
	NoWatch bool
	// Mute skips opening the audio device.
	Mute bool
}

// sceneAssets is what gets read from disk for one scene.
type sceneAssets struct {
	fragment []byte
	script   *scene.Script
}

// Load reads every asset of a production concurrently and builds a Game
// ready for ebiten.RunGame.
func Load(ctx context.Context, demo *config.Demo, opts LoadOptions) (*Game, error) {
	clock := timeline.SystemClock{}
	assets := make([]sceneAssets, len(demo.Scenes))
	var (
		stream *music.Stream
		tr     *tracker.Tracker
	)

	g, ctx := errgroup.WithContext(ctx)
	if demo.Music != "" {
		g.Go(func() error {
			s, err := music.Load(demo.Music)
			if err != nil {
				return err
			}
			stream = s
			log.Info().Str("path", demo.Music).Dur("duration", s.Duration()).Msg("music loaded")
			return nil
		})
	}
	if spec := demo.Tracker; spec != nil {
		g.Go(func() error {
			t, err := tracker.New(spec.BPM, spec.File, spec.Tracks, timeline.NewSource(clock))
			if err != nil {
				return fmt.Errorf("engine: tracker: %w", err)
			}
			tr = t
			return nil
		})
	}
	for i, sc := range demo.Scenes {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			b, err := os.ReadFile(sc.Shader)
			if err != nil {
				return fmt.Errorf("engine: scene %q: %w", sc.Name, err)
			}
			assets[i].fragment = b
			if sc.Script == "" {
				return nil
			}
			src, err := os.ReadFile(sc.Script)
			if err != nil {
				return fmt.Errorf("engine: scene %q: %w", sc.Name, err)
			}
			s, err := scene.CompileScript(src)
			if err != nil {
				return fmt.Errorf("engine: scene %q: script %s: %w", sc.Name, sc.Script, err)
			}
			assets[i].script = s
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var params scene.Params
	if tr != nil {
		params = trackParams{tracker: tr}
		for i, sc := range demo.Scenes {
			if assets[i].script == nil {
				continue
			}
			if _, err := assets[i].script.Uniforms(scene.Context{Params: params}); err != nil {
				return nil, fmt.Errorf("engine: scene %q: script %s: %w", sc.Name, sc.Script, err)
			}
		}
	}

	game := &Game{
		width:     demo.Resolution[0],
		height:    demo.Resolution[1],
		clock:     clock,
		lastError: make(map[int]string),
	}
	if err := game.buildScenes(demo, assets, params, !opts.NoWatch); err != nil {
		game.Close()
		return nil, err
	}

	var audio Audio
	if stream != nil && !opts.Mute {
		p, err := music.NewPlayer(stream)
		if err != nil {
			game.Close()
			return nil, err
		}
		game.player = p
		audio = p
	}

	seq := make(scene.Sequence, len(game.scenes))
	for i, s := range game.scenes {
		seq[i] = s.scene
	}
	game.driver = NewDriver(DriverOptions{
		Sequence:     seq,
		Tracker:      tr,
		Clock:        clock,
		Audio:        audio,
		WarmupFrames: demo.WarmupFrames,
		FrameRate:    demo.FrameRate,
	})

	editorOn := demo.Editor
	if opts.Editor != nil {
		editorOn = *opts.Editor
	}
	if editorOn {
		game.editor = editor.New()
	}

	log.Info().
		Str("demo", demo.Name).
		Int("scenes", len(seq)).
		Stringer("length", seq.Duration()).
		Bool("tracker", tr != nil).
		Bool("editor", editorOn).
		Msg("production loaded")
	return game, nil
}

func (g *Game) buildScenes(demo *config.Demo, assets []sceneAssets, params scene.Params, watch bool) error {
	var compiler render.Compiler
	for i, sc := range demo.Scenes {
		pipeline, err := compiler.Compile(assets[i].fragment)
		if err != nil {
			return fmt.Errorf("engine: scene %q: shader %s: %w", sc.Name, sc.Shader, err)
		}

		st := &sceneState{}
		var shaderSrc, scriptSrc hotreload.Source
		if watch && sc.Watch {
			w, err := hotreload.NewWatcher(sc.Shader, hotreload.DefaultDebounce)
			if err != nil {
				return fmt.Errorf("engine: watch %s: %w", sc.Shader, err)
			}
			g.watchers = append(g.watchers, w)
			shaderSrc = w
			if sc.Script != "" {
				w, err := hotreload.NewWatcher(sc.Script, hotreload.DefaultDebounce)
				if err != nil {
					return fmt.Errorf("engine: watch %s: %w", sc.Script, err)
				}
				g.watchers = append(g.watchers, w)
				scriptSrc = w
			}
		}
		st.shader = hotreload.NewCoordinator(sc.Shader, pipeline, shaderSrc, render.Compiler{})

		var producer scene.UniformProducer = scene.Builtin{}
		if assets[i].script != nil {
			st.script = hotreload.NewCoordinator(sc.Script, assets[i].script, scriptSrc, scene.ScriptCompiler{Params: params})
			producer = reloadingScript{st.script}
		}
		st.scene = scene.Scene{
			Name:         sc.Name,
			Duration:     timeline.FromDuration(sc.Duration),
			Fragment:     assets[i].fragment,
			FragmentPath: sc.Shader,
			Uniforms:     producer,
		}
		g.scenes = append(g.scenes, st)
	}
	return nil
}

// reloadingScript evaluates whichever script version is currently active.
type reloadingScript struct {
	c *hotreload.Coordinator[*scene.Script]
}

func (r reloadingScript) Uniforms(ctx scene.Context) (map[string]any, error) {
	return r.c.Active().Uniforms(ctx)
}

// Command shaderview previews a single Kage scene shader without music or a
// production file, reloading it on save.
package main

import (
	"os"
	"time"

	"github.com/alecthomas/kong"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/milk9111/usch/hotreload"
	"github.com/milk9111/usch/render"
	"github.com/milk9111/usch/scene"
	"github.com/milk9111/usch/timeline"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type Game struct {
	width, height int
	source        *timeline.Source
	shader        *hotreload.Coordinator[*render.Pipeline]
	script        *hotreload.Coordinator[*scene.Script]
	status        string
}

func (g *Game) Update() error {
	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeyEscape):
		return ebiten.Termination
	case inpututil.IsKeyJustPressed(ebiten.KeySpace):
		g.source.SetPaused(!g.source.Paused())
	case inpututil.IsKeyJustPressed(ebiten.KeyHome):
		g.source.Seek(0)
	}

	if _, err := g.shader.Poll(); err != nil {
		g.status = err.Error()
	} else if g.shader.Reloads() > 0 {
		g.status = ""
	}
	if _, err := g.script.Poll(); err != nil {
		g.status = err.Error()
	}
	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	t := g.source.Now()
	ctx := scene.Context{Time: t, Local: t, Resolution: [2]float32{float32(g.width), float32(g.height)}}

	var producer scene.UniformProducer = scene.Builtin{}
	if g.script != nil {
		producer = g.script.Active()
	}
	uniforms, err := producer.Uniforms(ctx)
	if err != nil {
		g.status = err.Error()
	}
	g.shader.Active().Draw(screen, uniforms)
	ebitenutil.DebugPrint(screen, t.String()+"\n"+g.status)
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return g.width, g.height
}

type cli struct {
	Shader string `arg:"" type:"existingfile" help:"Kage shader to preview."`
	Script string `type:"existingfile" help:"Optional tengo uniform script."`
	Width  int    `default:"1280"`
	Height int    `default:"720"`
}

func run(args cli) error {
	src, err := os.ReadFile(args.Shader)
	if err != nil {
		return err
	}
	pipeline, err := render.Compiler{}.Compile(src)
	if err != nil {
		return err
	}
	sw, err := hotreload.NewWatcher(args.Shader, hotreload.DefaultDebounce)
	if err != nil {
		return err
	}
	defer sw.Close()

	g := &Game{
		width:  args.Width,
		height: args.Height,
		source: timeline.NewSource(nil),
		shader: hotreload.NewCoordinator(args.Shader, pipeline, hotreload.Source(sw), render.Compiler{}),
	}

	if args.Script != "" {
		b, err := os.ReadFile(args.Script)
		if err != nil {
			return err
		}
		s, err := scene.CompileScript(b)
		if err != nil {
			return err
		}
		w, err := hotreload.NewWatcher(args.Script, hotreload.DefaultDebounce)
		if err != nil {
			return err
		}
		defer w.Close()
		g.script = hotreload.NewCoordinator(args.Script, s, hotreload.Source(w), scene.ScriptCompiler{})
	}

	ebiten.SetWindowSize(args.Width, args.Height)
	ebiten.SetWindowTitle("shaderview - " + args.Shader)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	return ebiten.RunGame(g)
}

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})

	var args cli
	kong.Parse(&args, kong.Name("shaderview"), kong.UsageOnError())
	if err := run(args); err != nil {
		log.Fatal().Err(err).Msg("shaderview")
	}
}

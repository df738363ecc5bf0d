package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/alecthomas/kong"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/milk9111/usch/config"
	"github.com/milk9111/usch/engine"
	"github.com/milk9111/usch/tracker"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type cli struct {
	Debug bool `help:"Enable debug logging."`

	Play         playCmd         `cmd:"" help:"Play a production."`
	ExportTracks exportTracksCmd `cmd:"" help:"Write a production's tracks in the compact binary format."`
}

type playCmd struct {
	Config  string `arg:"" type:"existingfile" help:"Production file (YAML)."`
	Editor  string `enum:"auto,on,off" default:"auto" help:"Show the editor panel (auto uses the production setting)."`
	NoWatch bool   `help:"Do not reload shaders and scripts when they change."`
	Mute    bool   `help:"Play without opening the audio device."`
	FPS     bool   `help:"Show frame counters."`
	Monitor int    `default:"-1" help:"Index of the monitor to open on, -1 for the primary one."`
}

func (c *playCmd) Run() error {
	demo, err := config.Load(c.Config)
	if err != nil {
		return err
	}

	opts := engine.LoadOptions{NoWatch: c.NoWatch, Mute: c.Mute}
	switch c.Editor {
	case "on", "off":
		on := c.Editor == "on"
		opts.Editor = &on
	}

	game, err := engine.Load(context.Background(), demo, opts)
	if err != nil {
		return err
	}
	defer func() {
		if err := game.Close(); err != nil {
			log.Error().Err(err).Msg("shutdown")
		}
	}()
	game.ShowFPS = c.FPS

	if c.Monitor >= 0 {
		monitors := ebiten.AppendMonitors(nil)
		if c.Monitor >= len(monitors) {
			return fmt.Errorf("monitor %d not found, %d available", c.Monitor, len(monitors))
		}
		ebiten.SetMonitor(monitors[c.Monitor])
	}
	setupWindow(demo, game.EditorEnabled())

	return ebiten.RunGame(game)
}

func setupWindow(demo *config.Demo, editor bool) {
	title := "usch"
	if demo.Name != "" {
		title = demo.Name
	}
	ebiten.SetWindowTitle(title)
	ebiten.SetWindowSize(demo.Resolution[0], demo.Resolution[1])
	ebiten.SetVsyncEnabled(true)
	// pacing and the timeline are sampled once per presented frame
	ebiten.SetTPS(ebiten.SyncWithFPS)

	switch demo.Fullscreen {
	case config.Borderless:
		w, h := ebiten.Monitor().Size()
		ebiten.SetWindowDecorated(false)
		ebiten.SetWindowPosition(0, 0)
		ebiten.SetWindowSize(w, h)
	case config.Exclusive:
		ebiten.SetFullscreen(true)
	}

	if !editor {
		ebiten.SetCursorMode(ebiten.CursorModeHidden)
	}
}

type exportTracksCmd struct {
	Config string `arg:"" type:"existingfile" help:"Production file (YAML)."`
	Out    string `arg:"" help:"Output file."`
}

func (c *exportTracksCmd) Run() error {
	demo, err := config.Load(c.Config)
	if err != nil {
		return err
	}
	spec := demo.Tracker
	if spec == nil {
		return fmt.Errorf("%s has no tracker", c.Config)
	}
	tr, err := tracker.New(spec.BPM, spec.File, spec.Tracks, nil)
	if err != nil {
		return err
	}

	f, err := os.Create(c.Out)
	if err != nil {
		return err
	}
	if err := tracker.EncodeBinary(f, tr.Tracks()); err != nil {
		f.Close()
		return fmt.Errorf("export %s: %w", c.Out, err)
	}
	if err := f.Close(); err != nil {
		return err
	}
	log.Info().Str("out", c.Out).Int("tracks", len(spec.Tracks)).Msg("tracks exported")
	return nil
}

func main() {
	var args cli
	ctx := kong.Parse(&args,
		kong.Name("usch"),
		kong.Description("Timeline and synchronization engine for demos."),
		kong.UsageOnError(),
	)

	zerolog.TimeFieldFormat = time.RFC3339
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if args.Debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})

	if err := ctx.Run(); err != nil {
		log.Fatal().Err(err).Msg("usch")
	}
}

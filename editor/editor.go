// Package editor is the on-screen panel used to scrub playback and edit
// tracker keys while a production runs.
package editor

import (
	"fmt"
	"image/color"

	"github.com/ebitenui/ebitenui"
	imageui "github.com/ebitenui/ebitenui/image"
	"github.com/ebitenui/ebitenui/widget"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	ebtext "github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/milk9111/usch/timeline"
	"github.com/milk9111/usch/tracker"
	"golang.org/x/image/colornames"
	"golang.org/x/image/font/basicfont"
)

var keyActions = []struct {
	key    ebiten.Key
	action Action
}{
	{ebiten.KeySpace, TogglePause},
	{ebiten.KeyLeft, StepBack},
	{ebiten.KeyRight, StepForward},
	{ebiten.KeyPageUp, PageBack},
	{ebiten.KeyPageDown, PageForward},
	{ebiten.KeyHome, Rewind},
	{ebiten.KeyUp, PrevTrack},
	{ebiten.KeyDown, NextTrack},
	{ebiten.KeyEqual, Increase},
	{ebiten.KeyMinus, Decrease},
	{ebiten.KeyEnter, StoreKey},
}

// Editor draws a status line and transport buttons over the scene.
type Editor struct {
	ui       *ebitenui.UI
	status   *widget.Text
	pauseBtn *widget.Button
	pending  []Action
	state    state
}

func New() *Editor {
	e := &Editor{}
	e.ui = e.build()
	return e
}

func (e *Editor) build() *ebitenui.UI {
	panelImg := imageui.NewNineSliceColor(color.NRGBA{A: 180})
	btnImg := imageui.NewNineSliceColor(color.NRGBA{R: 0x33, G: 0x33, B: 0x33, A: 255})
	btnPressed := imageui.NewNineSliceColor(color.NRGBA{R: 0x55, G: 0x55, B: 0x55, A: 255})

	var face ebtext.Face = ebtext.NewGoXFace(basicfont.Face7x13)
	btnTextColor := &widget.ButtonTextColor{Idle: colornames.White}

	e.status = widget.NewText(
		widget.TextOpts.Text("", &face, colornames.Lightgreen),
		widget.TextOpts.WidgetOpts(widget.WidgetOpts.LayoutData(widget.RowLayoutData{Position: widget.RowLayoutPositionCenter})),
	)

	button := func(label string, a Action) *widget.Button {
		return widget.NewButton(
			widget.ButtonOpts.Image(&widget.ButtonImage{Idle: btnImg, Pressed: btnPressed}),
			widget.ButtonOpts.Text(label, &face, btnTextColor),
			widget.ButtonOpts.ClickedHandler(func(args *widget.ButtonClickedEventArgs) {
				e.pending = append(e.pending, a)
			}),
		)
	}

	panel := widget.NewContainer(
		widget.ContainerOpts.BackgroundImage(panelImg),
		widget.ContainerOpts.Layout(widget.NewRowLayout(
			widget.RowLayoutOpts.Direction(widget.DirectionHorizontal),
			widget.RowLayoutOpts.Spacing(6),
			widget.RowLayoutOpts.Padding(&widget.Insets{Top: 6, Bottom: 6, Left: 10, Right: 10}),
		)),
		widget.ContainerOpts.WidgetOpts(
			widget.WidgetOpts.LayoutData(widget.AnchorLayoutData{
				HorizontalPosition: widget.AnchorLayoutPositionCenter,
				VerticalPosition:   widget.AnchorLayoutPositionEnd,
			}),
		),
	)
	e.pauseBtn = button("Pause", TogglePause)
	panel.AddChild(button("|<", Rewind))
	panel.AddChild(button("<<", PageBack))
	panel.AddChild(button("<", StepBack))
	panel.AddChild(e.pauseBtn)
	panel.AddChild(button(">", StepForward))
	panel.AddChild(button(">>", PageForward))
	panel.AddChild(button("Key", StoreKey))
	panel.AddChild(e.status)

	root := widget.NewContainer(
		widget.ContainerOpts.Layout(widget.NewAnchorLayout()),
	)
	root.AddChild(panel)
	return &ebitenui.UI{Container: root}
}

// Update handles input for one frame. The time source is only borrowed for
// the duration of the call. It reports whether the position or pause state
// changed so the caller can resync audio.
func (e *Editor) Update(src *timeline.Source, tr *tracker.Tracker) bool {
	e.ui.Update()
	for _, ka := range keyActions {
		if inpututil.IsKeyJustPressed(ka.key) {
			e.pending = append(e.pending, ka.action)
		}
	}

	changed := false
	for _, a := range e.pending {
		if e.state.apply(a, src, tr) {
			changed = true
		}
	}
	e.pending = e.pending[:0]

	e.refresh(src, tr)
	return changed
}

func (e *Editor) refresh(src *timeline.Source, tr *tracker.Tracker) {
	if text := e.pauseBtn.Text(); text != nil {
		text.Label = "Pause"
		if src.Paused() {
			text.Label = "Play"
		}
	}
	e.status.Label = e.state.status(src, tr)
}

func (e *Editor) Draw(screen *ebiten.Image) {
	e.ui.Draw(screen)
}

func (s *state) status(src *timeline.Source, tr *tracker.Tracker) string {
	line := fmt.Sprintf("t=%.3fs", src.Elapsed().Seconds())
	if tr == nil {
		return line
	}
	row := tr.CurrentRow()
	name := s.track(tr)
	held := "-"
	if v, ok, err := tr.Held(name, row); err == nil && ok {
		held = fmt.Sprintf("%.3f", v)
	}
	return fmt.Sprintf("%s  row %d  %s=%s", line, row, name, held)
}

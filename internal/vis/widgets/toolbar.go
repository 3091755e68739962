package widgets

import (
	"fmt"
	"image"
	"image/color"

	"gioui.org/layout"
	"gioui.org/op/clip"
	"gioui.org/op/paint"
	"gioui.org/unit"
	"gioui.org/widget"
	"gioui.org/widget/material"

	"github.com/elektrokombinacija/pickplace/internal/vis/state"
)

const speedStep = 1.5

// tool is one toolbar button. label and active are read every frame.
type tool struct {
	click  widget.Clickable
	label  func() string
	active func() bool
	run    func()
}

// Toolbar provides playback and view controls.
type Toolbar struct {
	state  *state.State
	groups [][]*tool

	// OnFit is called when the fit button is clicked.
	OnFit func()
}

// NewToolbar creates a new toolbar.
func NewToolbar(st *state.State) *Toolbar {
	t := &Toolbar{state: st}
	pb := st.Playback

	fixed := func(s string) func() string { return func() string { return s } }
	t.groups = [][]*tool{
		{
			{label: fixed("|<"), run: pb.StepBack},
			{label: func() string {
				if pb.Playing {
					return "||"
				}
				return ">"
			}, run: pb.TogglePlay},
			{label: fixed(">|"), run: pb.StepForward},
			{label: fixed("[]"), run: pb.Reset},
		},
		{
			{label: fixed("-"), run: func() { pb.SetSpeed(pb.Speed / speedStep) }},
			{label: func() string { return fmt.Sprintf("%.1fx", pb.Speed) }},
			{label: fixed("+"), run: func() { pb.SetSpeed(pb.Speed * speedStep) }},
		},
		{
			{
				label:  fixed("Smooth"),
				active: func() bool { return st.ShowTrajectory },
				run:    func() { st.ShowTrajectory = !st.ShowTrajectory },
			},
			{label: fixed("Fit"), run: func() {
				if t.OnFit != nil {
					t.OnFit()
				}
			}},
		},
	}
	return t
}

// Layout renders the toolbar.
func (t *Toolbar) Layout(gtx layout.Context, th *material.Theme) layout.Dimensions {
	height := 48

	rect := image.Rect(0, 0, gtx.Constraints.Max.X, height)
	paint.FillShape(gtx.Ops, color.NRGBA{R: 40, G: 43, B: 48, A: 255}, clip.Rect(rect).Op())

	for _, g := range t.groups {
		for _, b := range g {
			for b.run != nil && b.click.Clicked(gtx) {
				b.run()
			}
		}
	}

	var children []layout.FlexChild
	for i, g := range t.groups {
		if i > 0 {
			children = append(children, layout.Rigid(separator))
		}
		for j, b := range g {
			if j > 0 {
				children = append(children, layout.Rigid(layout.Spacer{Width: unit.Dp(4)}.Layout))
			}
			b := b
			children = append(children, layout.Rigid(func(gtx layout.Context) layout.Dimensions {
				return b.layout(gtx, th)
			}))
		}
	}

	return layout.Inset{Left: unit.Dp(10), Right: unit.Dp(10), Top: unit.Dp(8), Bottom: unit.Dp(8)}.Layout(gtx, func(gtx layout.Context) layout.Dimensions {
		return layout.Flex{Axis: layout.Horizontal, Alignment: layout.Middle}.Layout(gtx, children...)
	})
}

func separator(gtx layout.Context) layout.Dimensions {
	return layout.Inset{Left: unit.Dp(8), Right: unit.Dp(8)}.Layout(gtx, func(gtx layout.Context) layout.Dimensions {
		rect := image.Rect(0, 0, 1, 24)
		paint.FillShape(gtx.Ops, color.NRGBA{R: 60, G: 65, B: 70, A: 255}, clip.Rect(rect).Op())
		return layout.Dimensions{Size: image.Point{X: 1, Y: 24}}
	})
}

func (b *tool) layout(gtx layout.Context, th *material.Theme) layout.Dimensions {
	text := b.label()
	size := image.Point{X: max(32, 9*len(text)), Y: 28}

	// Read-only entries render as plain labels
	if b.run == nil {
		gtx.Constraints.Min = size
		return layout.Center.Layout(gtx, func(gtx layout.Context) layout.Dimensions {
			label := material.Label(th, 12, text)
			label.Color = color.NRGBA{R: 150, G: 180, B: 200, A: 255}
			return label.Layout(gtx)
		})
	}

	bg := color.NRGBA{R: 55, G: 58, B: 65, A: 255}
	if b.active != nil && b.active() {
		bg = color.NRGBA{R: 80, G: 130, B: 180, A: 255}
	}
	if b.click.Hovered() {
		bg.R = lighten(bg.R, 15)
		bg.G = lighten(bg.G, 15)
		bg.B = lighten(bg.B, 15)
	}

	return b.click.Layout(gtx, func(gtx layout.Context) layout.Dimensions {
		return layout.Background{}.Layout(gtx,
			func(gtx layout.Context) layout.Dimensions {
				paint.FillShape(gtx.Ops, bg, clip.Rect(image.Rectangle{Max: size}).Op())
				return layout.Dimensions{Size: size}
			},
			func(gtx layout.Context) layout.Dimensions {
				gtx.Constraints.Min = size
				return layout.Center.Layout(gtx, func(gtx layout.Context) layout.Dimensions {
					label := material.Label(th, 12, text)
					label.Color = color.NRGBA{R: 220, G: 220, B: 220, A: 255}
					return label.Layout(gtx)
				})
			},
		)
	})
}

func lighten(c, d uint8) uint8 {
	if c > 255-d {
		return 255
	}
	return c + d
}

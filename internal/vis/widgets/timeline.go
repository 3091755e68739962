package widgets

import (
	"fmt"
	"image"
	"image/color"

	"gioui.org/io/event"
	"gioui.org/io/pointer"
	"gioui.org/layout"
	"gioui.org/op/clip"
	"gioui.org/op/paint"
	"gioui.org/text"
	"gioui.org/unit"
	"gioui.org/widget/material"

	"github.com/elektrokombinacija/pickplace/internal/vis/state"
)

const (
	timelineHeight = 60
	trackMargin    = 20
	trackThickness = 6
)

// Timeline is a path-step scrubber. Each task outcome is marked with a tick
// at the path index where it completed.
type Timeline struct {
	state    *state.State
	dragging bool
}

// track is the scrubber geometry for one frame.
type track struct {
	x0, width, y int
}

func (tr track) xAt(progress float64) int {
	return tr.x0 + int(float64(tr.width)*progress)
}

func (tr track) progressAt(x float32) float64 {
	p := (float64(x) - float64(tr.x0)) / float64(tr.width)
	switch {
	case p < 0:
		return 0
	case p > 1:
		return 1
	}
	return p
}

// NewTimeline creates a new timeline widget.
func NewTimeline(st *state.State) *Timeline {
	return &Timeline{state: st}
}

// Layout renders the timeline.
func (t *Timeline) Layout(gtx layout.Context, th *material.Theme) layout.Dimensions {
	tr := track{x0: trackMargin, width: gtx.Constraints.Max.X - 2*trackMargin, y: timelineHeight / 2}
	pb := t.state.Playback

	paint.FillShape(gtx.Ops, color.NRGBA{R: 35, G: 38, B: 42, A: 255},
		clip.Rect(image.Rect(0, 0, gtx.Constraints.Max.X, timelineHeight)).Op())

	t.handlePointerEvents(gtx, tr)

	half := trackThickness / 2
	paint.FillShape(gtx.Ops, color.NRGBA{R: 60, G: 65, B: 70, A: 255},
		clip.Rect(image.Rect(tr.x0, tr.y-half, tr.x0+tr.width, tr.y+half)).Op())

	head := tr.xAt(pb.Progress())
	if head > tr.x0 {
		paint.FillShape(gtx.Ops, color.NRGBA{R: 100, G: 180, B: 255, A: 255},
			clip.Rect(image.Rect(tr.x0, tr.y-half, head, tr.y+half)).Op())
	}

	if res := t.state.Result; res != nil && pb.MaxTime > 0 {
		for _, out := range res.Outcomes {
			x := tr.xAt(float64(out.PathLen-1) / pb.MaxTime)
			col := infoFail
			if out.Success {
				col = infoOK
			}
			paint.FillShape(gtx.Ops, col, clip.Rect(image.Rect(x-1, tr.y-9, x+1, tr.y+9)).Op())
		}
	}

	paint.FillShape(gtx.Ops, color.NRGBA{R: 255, G: 255, B: 255, A: 255},
		clip.Rect(image.Rect(head-6, tr.y-6, head+6, tr.y+6)).Op())

	t.drawLabels(gtx, th)

	return layout.Dimensions{Size: image.Point{X: gtx.Constraints.Max.X, Y: timelineHeight}}
}

func (t *Timeline) drawLabels(gtx layout.Context, th *material.Theme) {
	label := func(s string, col color.NRGBA, align text.Alignment) material.LabelStyle {
		l := material.Label(th, 12, s)
		l.Color = col
		l.Alignment = align
		return l
	}
	current := label(fmt.Sprintf("step %d", t.state.StepIndex()), color.NRGBA{R: 200, G: 200, B: 200, A: 255}, text.Start)
	total := label(fmt.Sprintf("%d steps", int(t.state.Playback.MaxTime)), color.NRGBA{R: 150, G: 150, B: 150, A: 255}, text.End)

	layout.Inset{Top: unit.Dp(4), Left: unit.Dp(trackMargin), Right: unit.Dp(trackMargin)}.Layout(gtx, func(gtx layout.Context) layout.Dimensions {
		return layout.Flex{Axis: layout.Horizontal, Spacing: layout.SpaceBetween}.Layout(gtx,
			layout.Rigid(current.Layout),
			layout.Rigid(total.Layout),
		)
	})
}

func (t *Timeline) handlePointerEvents(gtx layout.Context, tr track) {
	area := clip.Rect(image.Rect(0, 0, gtx.Constraints.Max.X, timelineHeight)).Push(gtx.Ops)
	event.Op(gtx.Ops, t)
	area.Pop()

	for {
		ev, ok := gtx.Event(pointer.Filter{
			Target: t,
			Kinds:  pointer.Press | pointer.Drag | pointer.Release,
		})
		if !ok {
			break
		}
		pe, ok := ev.(pointer.Event)
		if !ok {
			continue
		}
		switch pe.Kind {
		case pointer.Press:
			t.dragging = true
		case pointer.Release:
			t.dragging = false
			continue
		}
		if t.dragging {
			t.state.Playback.SetTime(tr.progressAt(pe.Position.X) * t.state.Playback.MaxTime)
		}
	}
}

package widgets

import (
	"fmt"
	"image"
	"image/color"

	"gioui.org/layout"
	"gioui.org/op/clip"
	"gioui.org/op/paint"
	"gioui.org/unit"
	"gioui.org/widget/material"

	"github.com/elektrokombinacija/pickplace/internal/vis/state"
)

const infoWidth = 280

var (
	infoText  = color.NRGBA{R: 210, G: 210, B: 210, A: 255}
	infoMuted = color.NRGBA{R: 140, G: 145, B: 150, A: 255}
	infoOK    = color.NRGBA{R: 90, G: 200, B: 110, A: 255}
	infoFail  = color.NRGBA{R: 220, G: 90, B: 80, A: 255}
)

// Info is the side panel showing run metadata and the task log up to the
// playhead.
type Info struct {
	state *state.State
	list  layout.List
}

// NewInfo creates a new info panel.
func NewInfo(st *state.State) *Info {
	in := &Info{state: st}
	in.list.Axis = layout.Vertical
	in.list.ScrollToEnd = true
	return in
}

// Layout renders the panel.
func (in *Info) Layout(gtx layout.Context, th *material.Theme) layout.Dimensions {
	gtx.Constraints.Max.X = infoWidth
	gtx.Constraints.Min.X = infoWidth
	rect := image.Rect(0, 0, infoWidth, gtx.Constraints.Max.Y)
	paint.FillShape(gtx.Ops, color.NRGBA{R: 40, G: 40, B: 45, A: 255}, clip.Rect(rect).Op())

	res := in.state.Result
	if res == nil {
		return layout.Dimensions{Size: rect.Max}
	}

	done := in.state.Completed()
	header := []string{
		fmt.Sprintf("run %.8s  %s", res.RunID, res.Strategy),
		fmt.Sprintf("score %d / %d", in.state.Score(), res.Score),
		fmt.Sprintf("tasks %d / %d", done, len(res.Outcomes)),
		fmt.Sprintf("step %d / %d", in.state.StepIndex(), res.Metrics.Distance-1),
		fmt.Sprintf("loaded %v", in.state.Loaded()),
		fmt.Sprintf("utilization %.1f%%  max load %d", res.Metrics.Utilization, res.Metrics.MaxLoad),
	}

	layout.Inset{Top: unit.Dp(8), Left: unit.Dp(10), Right: unit.Dp(10), Bottom: unit.Dp(8)}.Layout(gtx, func(gtx layout.Context) layout.Dimensions {
		return layout.Flex{Axis: layout.Vertical}.Layout(gtx,
			layout.Rigid(func(gtx layout.Context) layout.Dimensions {
				return in.layoutLines(gtx, th, header)
			}),
			layout.Rigid(layout.Spacer{Height: unit.Dp(10)}.Layout),
			layout.Flexed(1, func(gtx layout.Context) layout.Dimensions {
				return in.list.Layout(gtx, done, func(gtx layout.Context, i int) layout.Dimensions {
					out := res.Outcomes[i]
					status, col := "ok", infoOK
					if !out.Success {
						status, col = "fail", infoFail
					}
					lbl := material.Label(th, 12, fmt.Sprintf("%3d %-18s %s", out.Index+1, out.Name, status))
					lbl.Color = col
					return lbl.Layout(gtx)
				})
			}),
		)
	})

	return layout.Dimensions{Size: rect.Max}
}

func (in *Info) layoutLines(gtx layout.Context, th *material.Theme, lines []string) layout.Dimensions {
	children := make([]layout.FlexChild, 0, len(lines))
	for i, line := range lines {
		lbl := material.Label(th, 13, line)
		lbl.Color = infoText
		if i == 0 {
			lbl.Color = infoMuted
		}
		children = append(children, layout.Rigid(lbl.Layout))
	}
	return layout.Flex{Axis: layout.Vertical}.Layout(gtx, children...)
}

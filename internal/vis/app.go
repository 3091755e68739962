// Package vis implements a Gio-based replay viewer for pick/place runs.
package vis

import (
	"image/color"

	"gioui.org/app"
	"gioui.org/io/event"
	"gioui.org/io/key"
	"gioui.org/layout"
	"gioui.org/op"
	"gioui.org/op/paint"
	"gioui.org/widget/material"

	"github.com/elektrokombinacija/pickplace/internal/core"
	"github.com/elektrokombinacija/pickplace/internal/sim"
	"github.com/elektrokombinacija/pickplace/internal/vis/interact"
	"github.com/elektrokombinacija/pickplace/internal/vis/state"
	"github.com/elektrokombinacija/pickplace/internal/vis/widgets"
)

// App is the main visualization application.
type App struct {
	state     *state.State
	theme     *material.Theme
	workspace *widgets.Workspace
	timeline  *widgets.Timeline
	toolbar   *widgets.Toolbar
	info      *widgets.Info
	keys      map[key.Name]func()
}

// NewApp creates a viewer replaying res over inst.
func NewApp(inst *core.Instance, res *sim.Result) *App {
	st := state.NewState(inst, res)
	camera := interact.NewCamera()

	a := &App{
		state:     st,
		theme:     material.NewTheme(),
		workspace: widgets.NewWorkspace(st, camera),
		timeline:  widgets.NewTimeline(st),
		toolbar:   widgets.NewToolbar(st),
		info:      widgets.NewInfo(st),
	}
	a.toolbar.OnFit = a.workspace.Refit

	pb := st.Playback
	a.keys = map[key.Name]func(){
		key.NameSpace:      pb.TogglePlay,
		key.NameLeftArrow:  pb.StepBack,
		key.NameRightArrow: pb.StepForward,
		key.NameHome:       pb.Reset,
		key.NameEnd:        func() { pb.SeekStep(int(pb.MaxTime)) },
		"R":                a.workspace.Refit,
		"T":                func() { st.ShowTrajectory = !st.ShowTrajectory },
	}
	return a
}

// Run starts the application event loop.
func (a *App) Run(w *app.Window) error {
	var ops op.Ops

	// Event filters for keyboard input
	tag := new(int)
	focused := false

	for {
		switch e := w.Event().(type) {
		case app.DestroyEvent:
			return e.Err

		case app.FrameEvent:
			gtx := app.NewContext(&ops, e)

			for {
				ev, ok := gtx.Event(key.Filter{Focus: tag, Optional: key.ModShift})
				if !ok {
					break
				}
				if ke, ok := ev.(key.Event); ok && ke.State == key.Press {
					if fn, ok := a.keys[ke.Name]; ok {
						fn()
					}
				}
			}

			// Request focus for keyboard input
			event.Op(gtx.Ops, tag)
			if !focused {
				gtx.Execute(key.FocusCmd{Tag: tag})
				focused = true
			}

			a.layout(gtx)
			e.Frame(gtx.Ops)

			// Request continuous redraws during playback
			if a.state.Playback.Playing {
				a.state.Playback.Advance()
				w.Invalidate()
			}
		}
	}
}

func (a *App) layout(gtx layout.Context) layout.Dimensions {
	paint.Fill(gtx.Ops, color.NRGBA{R: 30, G: 30, B: 35, A: 255})

	return layout.Flex{Axis: layout.Vertical}.Layout(gtx,
		layout.Rigid(func(gtx layout.Context) layout.Dimensions {
			return a.toolbar.Layout(gtx, a.theme)
		}),
		layout.Flexed(1, func(gtx layout.Context) layout.Dimensions {
			return layout.Flex{Axis: layout.Horizontal}.Layout(gtx,
				layout.Flexed(1, func(gtx layout.Context) layout.Dimensions {
					return a.workspace.Layout(gtx, a.theme)
				}),
				layout.Rigid(func(gtx layout.Context) layout.Dimensions {
					return a.info.Layout(gtx, a.theme)
				}),
			)
		}),
		layout.Rigid(func(gtx layout.Context) layout.Dimensions {
			return a.timeline.Layout(gtx, a.theme)
		}),
	)
}

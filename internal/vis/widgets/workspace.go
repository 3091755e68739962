// Package widgets provides Gio UI widgets for the visualizer.
package widgets

import (
	"image"
	"image/color"

	"gioui.org/io/event"
	"gioui.org/io/pointer"
	"gioui.org/layout"
	"gioui.org/op"
	"gioui.org/op/clip"
	"gioui.org/op/paint"
	"gioui.org/widget/material"

	"github.com/elektrokombinacija/pickplace/internal/core"
	"github.com/elektrokombinacija/pickplace/internal/vis/draw"
	"github.com/elektrokombinacija/pickplace/internal/vis/interact"
	"github.com/elektrokombinacija/pickplace/internal/vis/state"
)

// Workspace is the main 2D grid view.
type Workspace struct {
	state  *state.State
	camera *interact.Camera

	fitted  bool
	hovered core.Coord
	hover   bool
}

// NewWorkspace creates a new workspace widget.
func NewWorkspace(st *state.State, camera *interact.Camera) *Workspace {
	return &Workspace{
		state:  st,
		camera: camera,
	}
}

// Refit fits the grid to the view on the next frame.
func (w *Workspace) Refit() { w.fitted = false }

// Layout renders the workspace.
func (w *Workspace) Layout(gtx layout.Context, th *material.Theme) layout.Dimensions {
	bounds := gtx.Constraints.Max
	defer clip.Rect(image.Rect(0, 0, bounds.X, bounds.Y)).Push(gtx.Ops).Pop()

	paint.Fill(gtx.Ops, color.NRGBA{R: 25, G: 28, B: 32, A: 255})

	inst := w.state.Instance
	if inst == nil {
		return layout.Dimensions{Size: bounds}
	}
	if !w.fitted && bounds.X > 0 && bounds.Y > 0 {
		w.camera.FitGrid(inst.Grid.Rows(), inst.Grid.Cols(), float32(bounds.X), float32(bounds.Y), 24)
		w.fitted = true
	}

	w.handlePointerEvents(gtx)

	draw.DrawGrid(gtx, inst.Grid.Rows(), inst.Grid.Cols(), w.camera)
	draw.DrawObstacles(gtx, inst.Grid.Obstacles(), w.camera)
	draw.DrawStations(gtx, inst.Grid.Workstations(), w.camera)
	w.drawStationLabels(gtx, th)
	draw.DrawStartEnd(gtx, inst.Start, inst.End, w.camera)

	if res := w.state.Result; res != nil {
		pts := w.state.Points()
		if w.state.ShowTrajectory {
			// Cell path underneath for comparison
			draw.DrawPathWithArrows(gtx, res.Path, w.camera, color.NRGBA{R: 150, G: 155, B: 165, A: 120})
		}
		draw.DrawLoadedPath(gtx, pts, res.LoadedLog, w.camera, 0.08)
		draw.DrawPathTrail(gtx, w.state.PathHistory(), w.camera, draw.RobotColor(w.state.Loaded()), 0.2)
	}

	draw.DrawRobot(gtx, w.state.CurrentPosition(), w.state.Loaded(), w.camera)

	if w.hover {
		w.drawHover(gtx, th)
	}

	return layout.Dimensions{Size: bounds}
}

func (w *Workspace) drawStationLabels(gtx layout.Context, th *material.Theme) {
	if w.camera.Zoom < 14 {
		return
	}
	for name, c := range w.state.Instance.Stations {
		x, y := w.camera.WorldToScreen(float64(c.Col), float64(c.Row))
		stack := op.Offset(image.Pt(int(x)+2, int(y))).Push(gtx.Ops)
		label := material.Label(th, 10, name)
		label.Color = color.NRGBA{R: 235, G: 240, B: 245, A: 255}
		label.Layout(gtx)
		stack.Pop()
	}
}

func (w *Workspace) drawHover(gtx layout.Context, th *material.Theme) {
	c := w.hovered
	grid := w.state.Instance.Grid
	if !grid.InBounds(c) {
		return
	}
	text := c.String()
	switch {
	case grid.IsObstacle(c):
		text += " obstacle"
	case grid.IsWorkstation(c):
		for name, sc := range w.state.Instance.Stations {
			if sc == c {
				text += " " + name
			}
		}
	}
	stack := op.Offset(image.Pt(8, 8)).Push(gtx.Ops)
	label := material.Label(th, 12, text)
	label.Color = color.NRGBA{R: 200, G: 200, B: 200, A: 255}
	label.Layout(gtx)
	stack.Pop()
}

func (w *Workspace) handlePointerEvents(gtx layout.Context) {
	// Register for pointer events
	area := clip.Rect(image.Rect(0, 0, gtx.Constraints.Max.X, gtx.Constraints.Max.Y)).Push(gtx.Ops)
	event.Op(gtx.Ops, w)
	area.Pop()

	for {
		ev, ok := gtx.Event(pointer.Filter{
			Target:  w,
			Kinds:   pointer.Press | pointer.Drag | pointer.Release | pointer.Scroll | pointer.Move | pointer.Leave,
			ScrollY: pointer.ScrollRange{Min: -100, Max: 100},
		})
		if !ok {
			break
		}
		pe, ok := ev.(pointer.Event)
		if !ok {
			continue
		}
		w.camera.HandleEvent(pe)
		switch pe.Kind {
		case pointer.Move, pointer.Drag:
			w.hovered = w.camera.CellAt(pe.Position.X, pe.Position.Y)
			w.hover = true
		case pointer.Leave:
			w.hover = false
		}
	}
}

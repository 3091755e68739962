package draw

import (
	"image/color"
	"math"

	"gioui.org/f32"
	"gioui.org/layout"
	"gioui.org/op/clip"
	"gioui.org/op/paint"

	"github.com/elektrokombinacija/pickplace/internal/core"
	"github.com/elektrokombinacija/pickplace/internal/vis/interact"
)

// Robot colors by carry state
var (
	ColorRobotEmpty  = color.NRGBA{R: 100, G: 200, B: 255, A: 255}
	ColorRobotLoaded = color.NRGBA{R: 255, G: 170, B: 60, A: 255}
)

// RobotColor returns the robot color for a carry state.
func RobotColor(loaded bool) color.NRGBA {
	if loaded {
		return ColorRobotLoaded
	}
	return ColorRobotEmpty
}

// DrawRobot draws the robot at a cell-centre position. A loaded robot gets
// a square payload marker on top.
func DrawRobot(gtx layout.Context, pos core.Point, loaded bool, camera *interact.Camera) {
	screenX, screenY := camera.PointToScreen(pos)
	size := float32(0.7) * camera.Zoom

	drawFilledCircle(gtx, screenX, screenY, size/2, RobotColor(loaded))
	if loaded {
		drawSquare(gtx, screenX, screenY, size*0.4, color.NRGBA{R: 60, G: 40, B: 20, A: 255})
	}
}

func drawSquare(gtx layout.Context, cx, cy, size float32, col color.NRGBA) {
	halfSize := size / 2
	var path clip.Path
	path.Begin(gtx.Ops)
	path.MoveTo(f32.Pt(cx-halfSize, cy-halfSize))
	path.LineTo(f32.Pt(cx+halfSize, cy-halfSize))
	path.LineTo(f32.Pt(cx+halfSize, cy+halfSize))
	path.LineTo(f32.Pt(cx-halfSize, cy+halfSize))
	path.Close()

	paint.FillShape(gtx.Ops, col, clip.Outline{Path: path.End()}.Op())
}

func drawDiamond(gtx layout.Context, cx, cy, r float32, col color.NRGBA) {
	var path clip.Path
	path.Begin(gtx.Ops)
	path.MoveTo(f32.Pt(cx, cy-r))
	path.LineTo(f32.Pt(cx+r, cy))
	path.LineTo(f32.Pt(cx, cy+r))
	path.LineTo(f32.Pt(cx-r, cy))
	path.Close()

	paint.FillShape(gtx.Ops, col, clip.Outline{Path: path.End()}.Op())
}

func drawFilledCircle(gtx layout.Context, cx, cy, radius float32, col color.NRGBA) {
	var path clip.Path
	path.Begin(gtx.Ops)
	path.Move(f32.Pt(cx+radius, cy))

	segments := 16
	for i := 1; i <= segments; i++ {
		angle := float64(i) * 2 * math.Pi / float64(segments)
		x := cx + radius*float32(math.Cos(angle))
		y := cy + radius*float32(math.Sin(angle))
		path.Line(f32.Pt(x-path.Pos().X, y-path.Pos().Y))
	}
	path.Close()

	paint.FillShape(gtx.Ops, col, clip.Outline{Path: path.End()}.Op())
}

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

// Path colors
var (
	ColorPathEmpty  = color.NRGBA{R: 220, G: 80, B: 70, A: 200}
	ColorPathLoaded = color.NRGBA{R: 250, G: 190, B: 60, A: 230}
)

// DrawPath draws a complete path as a line. Width is in cells.
func DrawPath(gtx layout.Context, path []core.Point, camera *interact.Camera, col color.NRGBA, width float32) {
	if len(path) < 2 {
		return
	}

	w := width * camera.Zoom

	for i := 0; i < len(path)-1; i++ {
		x1, y1 := camera.PointToScreen(path[i])
		x2, y2 := camera.PointToScreen(path[i+1])

		drawPathSegment(gtx, x1, y1, x2, y2, w, col)
	}
}

// DrawLoadedPath draws the path coloured by carry state. Segment i uses
// loaded[i+1], the state while travelling into path[i+1].
func DrawLoadedPath(gtx layout.Context, path []core.Point, loaded []bool, camera *interact.Camera, width float32) {
	w := width * camera.Zoom
	for i := 0; i < len(path)-1; i++ {
		col := ColorPathEmpty
		if i+1 < len(loaded) && loaded[i+1] {
			col = ColorPathLoaded
		}
		x1, y1 := camera.PointToScreen(path[i])
		x2, y2 := camera.PointToScreen(path[i+1])
		drawPathSegment(gtx, x1, y1, x2, y2, w, col)
	}
}

// DrawPathTrail draws a fading trail behind the robot.
func DrawPathTrail(gtx layout.Context, history []core.Point, camera *interact.Camera, baseColor color.NRGBA, maxWidth float32) {
	if len(history) < 2 {
		return
	}

	n := len(history)
	for i := 0; i < n-1; i++ {
		// Fade alpha from start to end
		col := baseColor
		col.A = uint8(50 + float64(i)/float64(n)*150)

		w := maxWidth * camera.Zoom * (0.3 + 0.7*float32(i)/float32(n))

		x1, y1 := camera.PointToScreen(history[i])
		x2, y2 := camera.PointToScreen(history[i+1])

		drawPathSegment(gtx, x1, y1, x2, y2, w, col)
	}
}

func drawPathSegment(gtx layout.Context, x1, y1, x2, y2, width float32, col color.NRGBA) {
	dx := x2 - x1
	dy := y2 - y1
	length := float32(math.Sqrt(float64(dx*dx + dy*dy)))
	if length < 0.1 {
		return
	}

	dx /= length
	dy /= length
	px := -dy * width / 2
	py := dx * width / 2

	var path clip.Path
	path.Begin(gtx.Ops)
	path.MoveTo(f32.Pt(x1+px, y1+py))
	path.LineTo(f32.Pt(x2+px, y2+py))
	path.LineTo(f32.Pt(x2-px, y2-py))
	path.LineTo(f32.Pt(x1-px, y1-py))
	path.Close()

	paint.FillShape(gtx.Ops, col, clip.Outline{Path: path.End()}.Op())
}

// DrawPathWithArrows draws a path with direction arrows at segment midpoints.
func DrawPathWithArrows(gtx layout.Context, positions []core.Point, camera *interact.Camera, col color.NRGBA) {
	if len(positions) < 2 {
		return
	}

	DrawPath(gtx, positions, camera, col, 0.06)

	for i := 0; i < len(positions)-1; i++ {
		a, b := positions[i], positions[i+1]
		dx := b.Col - a.Col
		dy := b.Row - a.Row
		length := math.Hypot(dx, dy)
		if length < 0.5 {
			continue
		}
		mid := core.Point{Row: (a.Row + b.Row) / 2, Col: (a.Col + b.Col) / 2}
		drawArrow(gtx, mid, dx/length, dy/length, camera, col)
	}
}

func drawArrow(gtx layout.Context, at core.Point, dirX, dirY float64, camera *interact.Camera, col color.NRGBA) {
	screenX, screenY := camera.PointToScreen(at)
	size := float32(0.18) * camera.Zoom

	tipX := screenX + float32(dirX)*size
	tipY := screenY + float32(dirY)*size

	perpX := -float32(dirY) * size * 0.5
	perpY := float32(dirX) * size * 0.5

	baseX := screenX - float32(dirX)*size*0.3
	baseY := screenY - float32(dirY)*size*0.3

	var path clip.Path
	path.Begin(gtx.Ops)
	path.MoveTo(f32.Pt(tipX, tipY))
	path.LineTo(f32.Pt(baseX+perpX, baseY+perpY))
	path.LineTo(f32.Pt(baseX-perpX, baseY-perpY))
	path.Close()

	paint.FillShape(gtx.Ops, col, clip.Outline{Path: path.End()}.Op())
}

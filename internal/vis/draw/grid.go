// Package draw provides rendering functions for visualization.
package draw

import (
	"image"
	"image/color"

	"gioui.org/layout"
	"gioui.org/op/clip"
	"gioui.org/op/paint"

	"github.com/elektrokombinacija/pickplace/internal/core"
	"github.com/elektrokombinacija/pickplace/internal/vis/interact"
)

// Grid colors
var (
	ColorCell     = color.NRGBA{R: 34, G: 38, B: 44, A: 255}
	ColorGridLine = color.NRGBA{R: 55, G: 60, B: 68, A: 255}
	ColorObstacle = color.NRGBA{R: 120, G: 125, B: 135, A: 255}
	ColorStation  = color.NRGBA{R: 80, G: 160, B: 230, A: 255}
	ColorStart    = color.NRGBA{R: 80, G: 200, B: 100, A: 255}
	ColorEnd      = color.NRGBA{R: 0, G: 190, B: 255, A: 255}
)

// cellRect returns the screen rectangle of a cell, inset by pad cells.
func cellRect(c core.Coord, camera *interact.Camera, pad float64) image.Rectangle {
	x0, y0 := camera.WorldToScreen(float64(c.Col)+pad, float64(c.Row)+pad)
	x1, y1 := camera.WorldToScreen(float64(c.Col+1)-pad, float64(c.Row+1)-pad)
	return image.Rect(int(x0), int(y0), int(x1), int(y1))
}

// DrawGrid fills the grid area and draws cell borders.
func DrawGrid(gtx layout.Context, rows, cols int, camera *interact.Camera) {
	x0, y0 := camera.WorldToScreen(0, 0)
	x1, y1 := camera.WorldToScreen(float64(cols), float64(rows))
	paint.FillShape(gtx.Ops, ColorCell, clip.Rect(image.Rect(int(x0), int(y0), int(x1), int(y1))).Op())

	// Skip lines when cells get too small to read
	if camera.Zoom < 6 {
		return
	}
	for c := 0; c <= cols; c++ {
		sx, _ := camera.WorldToScreen(float64(c), 0)
		paint.FillShape(gtx.Ops, ColorGridLine, clip.Rect(image.Rect(int(sx), int(y0), int(sx)+1, int(y1))).Op())
	}
	for r := 0; r <= rows; r++ {
		_, sy := camera.WorldToScreen(0, float64(r))
		paint.FillShape(gtx.Ops, ColorGridLine, clip.Rect(image.Rect(int(x0), int(sy), int(x1), int(sy)+1)).Op())
	}
}

// DrawObstacles fills obstacle cells.
func DrawObstacles(gtx layout.Context, cells []core.Coord, camera *interact.Camera) {
	for _, c := range cells {
		paint.FillShape(gtx.Ops, ColorObstacle, clip.Rect(cellRect(c, camera, 0.05)).Op())
	}
}

// DrawStations draws workstation cells as inset squares.
func DrawStations(gtx layout.Context, cells []core.Coord, camera *interact.Camera) {
	for _, c := range cells {
		paint.FillShape(gtx.Ops, ColorStation, clip.Rect(cellRect(c, camera, 0.18)).Op())
	}
}

// DrawStartEnd marks the start cell and, if set, the end cell.
func DrawStartEnd(gtx layout.Context, start core.Coord, end *core.Coord, camera *interact.Camera) {
	x, y := camera.PointToScreen(start.Point())
	drawFilledCircle(gtx, x, y, 0.3*camera.Zoom, ColorStart)
	if end != nil {
		x, y = camera.PointToScreen(end.Point())
		drawDiamond(gtx, x, y, 0.35*camera.Zoom, ColorEnd)
	}
}

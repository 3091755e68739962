// Package interact handles pan and zoom over the grid view.
package interact

import (
	"math"

	"gioui.org/io/pointer"

	"github.com/elektrokombinacija/pickplace/internal/core"
)

// World units are grid cells: x is the column, y is the row, and a cell
// spans [c, c+1) x [r, r+1).
const (
	MinZoom     = 2   // Pixels per cell
	MaxZoom     = 200 // Pixels per cell
	DefaultZoom = 32
	zoomStep    = 1.1
)

// Camera manages view transformation (pan and zoom).
type Camera struct {
	OffsetX float32 // Pan offset in screen pixels
	OffsetY float32
	Zoom    float32 // Pixels per cell

	dragging bool
	lastX    float32
	lastY    float32
}

// NewCamera creates a new camera with default settings.
func NewCamera() *Camera {
	c := &Camera{}
	c.Reset()
	return c
}

// Reset resets camera to default view.
func (c *Camera) Reset() {
	c.OffsetX = 40
	c.OffsetY = 40
	c.Zoom = DefaultZoom
}

// WorldToScreen converts world coordinates to screen coordinates.
func (c *Camera) WorldToScreen(worldX, worldY float64) (screenX, screenY float32) {
	screenX = float32(worldX)*c.Zoom + c.OffsetX
	screenY = float32(worldY)*c.Zoom + c.OffsetY
	return
}

// ScreenToWorld converts screen coordinates to world coordinates.
func (c *Camera) ScreenToWorld(screenX, screenY float32) (worldX, worldY float64) {
	worldX = float64((screenX - c.OffsetX) / c.Zoom)
	worldY = float64((screenY - c.OffsetY) / c.Zoom)
	return
}

// PointToScreen returns the screen position of a cell-centre point.
func (c *Camera) PointToScreen(p core.Point) (float32, float32) {
	return c.WorldToScreen(p.Col+0.5, p.Row+0.5)
}

// CellAt returns the grid cell under a screen position.
func (c *Camera) CellAt(screenX, screenY float32) core.Coord {
	x, y := c.ScreenToWorld(screenX, screenY)
	return core.Coord{Row: int(math.Floor(y)), Col: int(math.Floor(x))}
}

// HandleEvent processes pointer events for pan and zoom.
func (c *Camera) HandleEvent(ev pointer.Event) {
	switch ev.Kind {
	case pointer.Press:
		if ev.Buttons.Contain(pointer.ButtonSecondary) || ev.Buttons.Contain(pointer.ButtonTertiary) {
			c.dragging = true
		}
		c.lastX = ev.Position.X
		c.lastY = ev.Position.Y

	case pointer.Drag:
		if c.dragging {
			c.Pan(ev.Position.X-c.lastX, ev.Position.Y-c.lastY)
		}
		c.lastX = ev.Position.X
		c.lastY = ev.Position.Y

	case pointer.Release:
		c.dragging = false

	case pointer.Scroll:
		// Zoom centered on mouse position
		switch {
		case ev.Scroll.Y > 0:
			c.ZoomBy(1/zoomStep, ev.Position.X, ev.Position.Y)
		case ev.Scroll.Y < 0:
			c.ZoomBy(zoomStep, ev.Position.X, ev.Position.Y)
		}
	}
}

// Pan pans the camera by the given screen delta.
func (c *Camera) Pan(dx, dy float32) {
	c.OffsetX += dx
	c.OffsetY += dy
}

// ZoomBy zooms by a factor, centered on screen point.
func (c *Camera) ZoomBy(factor float32, centerX, centerY float32) {
	worldX, worldY := c.ScreenToWorld(centerX, centerY)
	c.Zoom = clampZoom(c.Zoom * factor)

	newScreenX, newScreenY := c.WorldToScreen(worldX, worldY)
	c.OffsetX += centerX - newScreenX
	c.OffsetY += centerY - newScreenY
}

// CenterOn centers the camera on a world position.
func (c *Camera) CenterOn(worldX, worldY float64, screenWidth, screenHeight float32) {
	c.OffsetX = screenWidth/2 - float32(worldX)*c.Zoom
	c.OffsetY = screenHeight/2 - float32(worldY)*c.Zoom
}

// FitGrid zooms and centres so a rows x cols grid fills the screen.
func (c *Camera) FitGrid(rows, cols int, screenWidth, screenHeight, margin float32) {
	if rows <= 0 || cols <= 0 {
		return
	}
	zoomX := (screenWidth - 2*margin) / float32(cols)
	zoomY := (screenHeight - 2*margin) / float32(rows)
	c.Zoom = clampZoom(float32(math.Min(float64(zoomX), float64(zoomY))))
	c.CenterOn(float64(cols)/2, float64(rows)/2, screenWidth, screenHeight)
}

func clampZoom(z float32) float32 {
	if z < MinZoom {
		return MinZoom
	}
	if z > MaxZoom {
		return MaxZoom
	}
	return z
}

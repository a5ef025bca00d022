// Package viewport maps between screen and board coordinates for a camera.
// Every function is pure.
package viewport

import (
	"math"

	"github.com/weiawesome/wes-io-canvas/internal/domain"
)

// Zoom bounds.
const (
	MinZoom = 0.1
	MaxZoom = 4.0
)

// Camera is one client's view onto a board. Offset is a board-space
// translation.
type Camera struct {
	OffsetX float64 `json:"offsetX"`
	OffsetY float64 `json:"offsetY"`
	Zoom    float64 `json:"zoom"`
}

// Default returns the identity camera.
func Default() Camera {
	return Camera{Zoom: 1}
}

// ClampZoom bounds z to [MinZoom, MaxZoom]. NaN and non-positive values
// fall back to MinZoom.
func ClampZoom(z float64) float64 {
	if math.IsNaN(z) || z < MinZoom {
		return MinZoom
	}
	if z > MaxZoom {
		return MaxZoom
	}
	return z
}

func (c Camera) zoom() float64 {
	return ClampZoom(c.Zoom)
}

// ScreenToBoard maps a screen point to board space.
func ScreenToBoard(c Camera, p domain.Point) domain.Point {
	z := c.zoom()
	return domain.Point{X: p.X/z - c.OffsetX, Y: p.Y/z - c.OffsetY}
}

// BoardToScreen maps a board point to screen space.
func BoardToScreen(c Camera, p domain.Point) domain.Point {
	z := c.zoom()
	return domain.Point{X: (p.X + c.OffsetX) * z, Y: (p.Y + c.OffsetY) * z}
}

// ZoomAt sets the zoom to z (clamped) keeping the board point under the
// screen anchor fixed.
func ZoomAt(c Camera, anchor domain.Point, z float64) Camera {
	under := ScreenToBoard(c, anchor)
	nz := ClampZoom(z)
	return Camera{
		OffsetX: anchor.X/nz - under.X,
		OffsetY: anchor.Y/nz - under.Y,
		Zoom:    nz,
	}
}

// ZoomBy multiplies the zoom by factor about the screen anchor.
func ZoomBy(c Camera, anchor domain.Point, factor float64) Camera {
	return ZoomAt(c, anchor, c.zoom()*factor)
}

// Pan shifts the view by a screen-space delta. Zoom is unchanged.
func Pan(c Camera, screenDelta domain.Point) Camera {
	z := c.zoom()
	c.OffsetX += screenDelta.X / z
	c.OffsetY += screenDelta.Y / z
	return c
}

// ScreenDistance converts a board-space length to screen pixels.
func ScreenDistance(c Camera, boardLen float64) float64 {
	return boardLen * c.zoom()
}

// VisibleRect returns the board rectangle covered by a screen of the given
// size.
func VisibleRect(c Camera, width, height float64) domain.Rect {
	return domain.RectFromPoints(
		ScreenToBoard(c, domain.Point{}),
		ScreenToBoard(c, domain.Point{X: width, Y: height}),
	)
}

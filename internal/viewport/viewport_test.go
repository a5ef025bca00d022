package viewport

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/weiawesome/wes-io-canvas/internal/domain"
)

const eps = 1e-6

func assertPointNear(t *testing.T, want, got domain.Point) {
	t.Helper()
	assert.InDelta(t, want.X, got.X, eps)
	assert.InDelta(t, want.Y, got.Y, eps)
}

func TestScreenToBoardIdentity(t *testing.T) {
	got := ScreenToBoard(Camera{Zoom: 1}, domain.Point{X: 50, Y: 50})
	assert.Equal(t, domain.Point{X: 50, Y: 50}, got)
}

func TestRoundTrip(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	for i := 0; i < 1000; i++ {
		c := Camera{
			OffsetX: r.Float64()*2000 - 1000,
			OffsetY: r.Float64()*2000 - 1000,
			Zoom:    MinZoom + r.Float64()*(MaxZoom-MinZoom),
		}
		p := domain.Point{X: r.Float64() * 1920, Y: r.Float64() * 1080}
		assertPointNear(t, p, BoardToScreen(c, ScreenToBoard(c, p)))
	}
}

func TestZoomAboutPointKeepsAnchor(t *testing.T) {
	r := rand.New(rand.NewSource(2))
	for i := 0; i < 1000; i++ {
		c := Camera{OffsetX: r.Float64()*400 - 200, OffsetY: r.Float64()*400 - 200, Zoom: 0.5 + r.Float64()}
		anchor := domain.Point{X: r.Float64() * 800, Y: r.Float64() * 600}
		before := ScreenToBoard(c, anchor)

		zoomed := ZoomBy(c, anchor, 0.5+r.Float64()*2)
		assertPointNear(t, before, ScreenToBoard(zoomed, anchor))
	}
}

func TestZoomClamped(t *testing.T) {
	anchor := domain.Point{X: 10, Y: 10}
	assert.Equal(t, MaxZoom, ZoomAt(Default(), anchor, 100).Zoom)
	assert.Equal(t, MinZoom, ZoomAt(Default(), anchor, 0).Zoom)
	assert.Equal(t, MinZoom, ClampZoom(-3))

	before := ScreenToBoard(Default(), anchor)
	assertPointNear(t, before, ScreenToBoard(ZoomAt(Default(), anchor, 100), anchor))
}

func TestPanKeepsZoom(t *testing.T) {
	c := Camera{Zoom: 2}
	p := Pan(c, domain.Point{X: 20, Y: -10})
	assert.Equal(t, 2.0, p.Zoom)
	assert.InDelta(t, 10, p.OffsetX, eps)
	assert.InDelta(t, -5, p.OffsetY, eps)

	// A board point moves on screen by exactly the pan delta.
	bp := domain.Point{X: 7, Y: 9}
	delta := BoardToScreen(p, bp).Sub(BoardToScreen(c, bp))
	assertPointNear(t, domain.Point{X: 20, Y: -10}, delta)
}

func TestVisibleRect(t *testing.T) {
	r := VisibleRect(Camera{OffsetX: -100, OffsetY: 0, Zoom: 2}, 800, 600)
	assert.InDelta(t, 100, r.MinX, eps)
	assert.InDelta(t, 500, r.MaxX, eps)
	assert.InDelta(t, 300, r.MaxY, eps)
}

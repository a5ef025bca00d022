package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestElementBounds(t *testing.T) {
	note := Element{ID: "n", Type: ElementNote, X: 10, Y: 20}
	assert.Equal(t, Rect{MinX: 10, MinY: 20, MaxX: 130, MaxY: 140}, note.Bounds())

	shape := Element{ID: "s", Type: ElementShape, X: 0, Y: 0, Size: 50}
	assert.Equal(t, Rect{MaxX: 50, MaxY: 50}, shape.Bounds())

	text := Element{ID: "t", Type: ElementText, X: 0, Y: 0, Text: "hello", FontSize: 10}
	b := text.Bounds()
	assert.InDelta(t, 30, b.MaxX, 1e-9)
	assert.InDelta(t, 12, b.MaxY, 1e-9)
}

func TestElementValidate(t *testing.T) {
	tests := []struct {
		name string
		el   Element
		ok   bool
	}{
		{"valid note", Element{ID: "a", Type: ElementNote}, true},
		{"missing id", Element{Type: ElementNote}, false},
		{"unknown type", Element{ID: "a", Type: "sticker"}, false},
		{"negative size", Element{ID: "a", Type: ElementShape, Size: -1}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.el.Validate()
			if tt.ok {
				assert.NoError(t, err)
				return
			}
			assert.True(t, errors.Is(err, ErrInvalidElement))
		})
	}
}

func TestElementCloneCopiesStyle(t *testing.T) {
	el := Element{ID: "a", Type: ElementNote, Style: map[string]string{"border": "dashed"}}
	c := el.Clone()
	c.Style["border"] = "solid"
	assert.Equal(t, "dashed", el.Style["border"])
}

func TestRectFromPointsNormalizes(t *testing.T) {
	r := RectFromPoints(Point{X: 300, Y: 0}, Point{X: 0, Y: 300})
	assert.Equal(t, Rect{MinX: 0, MinY: 0, MaxX: 300, MaxY: 300}, r)
	assert.True(t, r.Contains(Point{X: 300, Y: 300}))
	assert.False(t, r.Intersects(Rect{MinX: 400, MinY: 400, MaxX: 420, MaxY: 420}))
	assert.True(t, r.Intersects(Rect{MinX: 290, MinY: 290, MaxX: 420, MaxY: 420}))
}

func TestSessionJoinAndStrikes(t *testing.T) {
	s := NewSession("c1")
	assert.False(t, s.Joined())
	assert.Equal(t, 1, s.Strike())
	assert.Equal(t, 2, s.Strike())

	prev := s.Join("b1", &Identity{Npub: "npub1"})
	assert.Empty(t, prev)
	require.True(t, s.Joined())
	assert.Equal(t, "npub1", s.User().Npub)
	assert.Equal(t, 1, s.Strike())

	assert.Equal(t, "b1", s.Join("b2", nil))
	assert.Equal(t, "b2", s.Leave())
	assert.False(t, s.Joined())
}

package domain

import "fmt"

// ElementType discriminates the element kinds a board can hold.
type ElementType string

const (
	ElementNote  ElementType = "note"
	ElementText  ElementType = "text"
	ElementShape ElementType = "shape"
)

// Defaults applied when an element omits its size attributes.
const (
	DefaultElementSize = 120.0
	DefaultFontSize    = 16.0
)

// Valid reports whether t is a known element type.
func (t ElementType) Valid() bool {
	switch t {
	case ElementNote, ElementText, ElementShape:
		return true
	}
	return false
}

// Element is a positioned canvas object. X and Y are board-space
// coordinates of its top-left corner.
type Element struct {
	ID       string            `json:"id"`
	Type     ElementType       `json:"type"`
	X        float64           `json:"x"`
	Y        float64           `json:"y"`
	Text     string            `json:"text,omitempty"`
	Size     float64           `json:"size,omitempty"`
	FontSize float64           `json:"fontSize,omitempty"`
	Color    string            `json:"color,omitempty"`
	Style    map[string]string `json:"style,omitempty"`
}

// Validate checks the fields every element must carry.
func (e Element) Validate() error {
	if e.ID == "" {
		return fmt.Errorf("%w: missing id", ErrInvalidElement)
	}
	if !e.Type.Valid() {
		return fmt.Errorf("%w: unknown type %q", ErrInvalidElement, e.Type)
	}
	if e.Size < 0 || e.FontSize < 0 {
		return fmt.Errorf("%w: negative size", ErrInvalidElement)
	}
	return nil
}

// Sizable reports whether the element can be resized through its corner
// handles.
func (e Element) Sizable() bool {
	return e.Type == ElementNote || e.Type == ElementShape
}

// EffectiveSize returns Size, or the default when unset.
func (e Element) EffectiveSize() float64 {
	if e.Size > 0 {
		return e.Size
	}
	return DefaultElementSize
}

// EffectiveFontSize returns FontSize, or the default when unset.
func (e Element) EffectiveFontSize() float64 {
	if e.FontSize > 0 {
		return e.FontSize
	}
	return DefaultFontSize
}

// Bounds returns the board-space rectangle the element covers. Notes and
// shapes are squares of their size anchored at (X, Y); text is measured
// from its font size and character count.
func (e Element) Bounds() Rect {
	switch e.Type {
	case ElementText:
		fs := e.EffectiveFontSize()
		n := len([]rune(e.Text))
		if n == 0 {
			n = 1
		}
		return Rect{MinX: e.X, MinY: e.Y, MaxX: e.X + fs*0.6*float64(n), MaxY: e.Y + fs*1.2}
	default:
		s := e.EffectiveSize()
		return Rect{MinX: e.X, MinY: e.Y, MaxX: e.X + s, MaxY: e.Y + s}
	}
}

// Clone returns a copy that shares no mutable state with e.
func (e Element) Clone() Element {
	if e.Style != nil {
		style := make(map[string]string, len(e.Style))
		for k, v := range e.Style {
			style[k] = v
		}
		e.Style = style
	}
	return e
}

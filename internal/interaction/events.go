package interaction

import "github.com/weiawesome/wes-io-canvas/internal/domain"

// State is a gesture state of the controller.
type State int

const (
	Idle State = iota
	Panning
	ElementDragging
	Resizing
	MarqueeCandidate
	MarqueeActive
	Editing
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Panning:
		return "panning"
	case ElementDragging:
		return "element_dragging"
	case Resizing:
		return "resizing"
	case MarqueeCandidate:
		return "marquee_candidate"
	case MarqueeActive:
		return "marquee_active"
	case Editing:
		return "editing"
	default:
		return "unknown"
	}
}

// Button identifies a pointer button.
type Button int

const (
	ButtonLeft Button = iota
	ButtonMiddle
	ButtonRight
)

// Modifiers is the modifier key state at the time of an event.
type Modifiers struct {
	Shift bool
	Ctrl  bool
	Meta  bool
	Alt   bool
}

// PointerEvent is a press, move or release in screen coordinates.
type PointerEvent struct {
	PointerID int
	Button    Button
	Screen    domain.Point
	Mods      Modifiers
}

// WheelEvent is a scroll in screen pixels.
type WheelEvent struct {
	Screen domain.Point
	DeltaX float64
	DeltaY float64
	Mods   Modifiers
}

// Key names the controller reacts to.
const (
	KeySpace     = "Space"
	KeyDelete    = "Delete"
	KeyBackspace = "Backspace"
	KeyEnter     = "Enter"
	KeyEscape    = "Escape"
)

// KeyEvent is a key press or release.
type KeyEvent struct {
	Key  string
	Mods Modifiers
}

// Handle is a corner resize handle of a selected element.
type Handle int

const (
	HandleNW Handle = iota
	HandleNE
	HandleSW
	HandleSE
)

func (h Handle) String() string {
	return [...]string{"nw", "ne", "sw", "se"}[h]
}

// corner returns the board position of handle h on bounds b.
func (h Handle) corner(b domain.Rect) domain.Point {
	switch h {
	case HandleNW:
		return domain.Point{X: b.MinX, Y: b.MinY}
	case HandleNE:
		return domain.Point{X: b.MaxX, Y: b.MinY}
	case HandleSW:
		return domain.Point{X: b.MinX, Y: b.MaxY}
	default:
		return domain.Point{X: b.MaxX, Y: b.MaxY}
	}
}

// opposite returns the handle diagonally across from h.
func (h Handle) opposite() Handle {
	switch h {
	case HandleNW:
		return HandleSE
	case HandleNE:
		return HandleSW
	case HandleSW:
		return HandleNE
	default:
		return HandleNW
	}
}

// topLeft places a square of the given size so that the corner opposite h
// stays on anchor.
func (h Handle) topLeft(anchor domain.Point, size float64) domain.Point {
	switch h {
	case HandleNW:
		return domain.Point{X: anchor.X - size, Y: anchor.Y - size}
	case HandleNE:
		return domain.Point{X: anchor.X, Y: anchor.Y - size}
	case HandleSW:
		return domain.Point{X: anchor.X - size, Y: anchor.Y}
	default:
		return anchor
	}
}

// Capturer grants exclusive delivery of a pointer's events to the
// controller for the duration of a gesture.
type Capturer interface {
	Capture(pointerID int)
	Release(pointerID int)
}

type noopCapturer struct{}

func (noopCapturer) Capture(int) {}
func (noopCapturer) Release(int) {}

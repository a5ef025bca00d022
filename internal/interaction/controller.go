// Package interaction turns pointer, wheel and keyboard input into element
// mutations through an explicit gesture state machine.
package interaction

import (
	"math"

	"github.com/weiawesome/wes-io-canvas/internal/domain"
	"github.com/weiawesome/wes-io-canvas/internal/store"
	"github.com/weiawesome/wes-io-canvas/internal/viewport"
)

const noPointer = -1

// Controller is the gesture state machine of one client view. It is not
// safe for concurrent use: handlers run on the caller's event loop and
// leave the machine in a well-defined state before returning.
type Controller struct {
	cfg     Config
	store   *store.ElementStore
	emitter Emitter
	capture Capturer
	newID   func() string

	state     State
	camera    viewport.Camera
	selection selection
	panHeld   bool

	// active gesture
	pointerID    int
	pressScreen  domain.Point
	lastScreen   domain.Point
	pressBoard   domain.Point
	moved        bool
	shiftAtPress bool

	dragStarts map[string]domain.Point
	dragOrder  []string

	resizeID     string
	resizeHandle Handle
	resizeAnchor domain.Point

	marquee    domain.Rect
	hasMarquee bool

	editingID string
	draft     string

	suppressClick bool
}

// Option configures a Controller.
type Option func(*Controller)

// WithCapturer sets the pointer capture provider.
func WithCapturer(c Capturer) Option {
	return func(ctl *Controller) { ctl.capture = c }
}

// WithCamera sets the initial camera.
func WithCamera(c viewport.Camera) Option {
	return func(ctl *Controller) { ctl.camera = c }
}

// New creates a controller. newID produces ids for created elements.
func New(cfg Config, s *store.ElementStore, emitter Emitter, newID func() string, opts ...Option) *Controller {
	c := &Controller{
		cfg:       cfg.withDefaults(),
		store:     s,
		emitter:   emitter,
		capture:   noopCapturer{},
		newID:     newID,
		camera:    viewport.Default(),
		pointerID: noPointer,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// State returns the current gesture state.
func (c *Controller) State() State { return c.state }

// Camera returns the current camera.
func (c *Controller) Camera() viewport.Camera { return c.camera }

// SetCamera replaces the camera, clamping its zoom.
func (c *Controller) SetCamera(cam viewport.Camera) {
	cam.Zoom = viewport.ClampZoom(cam.Zoom)
	c.camera = cam
}

// Selection returns the selected ids in selection order.
func (c *Controller) Selection() []string { return c.selection.list() }

// Select replaces the selection.
func (c *Controller) Select(ids ...string) { c.selection.set(ids...) }

// Marquee returns the marquee rectangle while a marquee is active.
func (c *Controller) Marquee() (domain.Rect, bool) {
	return c.marquee, c.hasMarquee
}

// Editing returns the element being edited and its draft text.
func (c *Controller) Editing() (id, draft string, ok bool) {
	if c.state != Editing {
		return "", "", false
	}
	return c.editingID, c.draft, true
}

// BoardPoint maps a screen point through the current camera.
func (c *Controller) BoardPoint(screen domain.Point) domain.Point {
	return viewport.ScreenToBoard(c.camera, screen)
}

// PointerDown starts a gesture. It is ignored while another gesture is in
// flight or while editing.
func (c *Controller) PointerDown(ev PointerEvent) {
	if c.state != Idle {
		return
	}

	c.pointerID = ev.PointerID
	c.pressScreen = ev.Screen
	c.lastScreen = ev.Screen
	c.pressBoard = c.BoardPoint(ev.Screen)
	c.moved = false
	c.shiftAtPress = ev.Mods.Shift
	c.suppressClick = false

	switch {
	case ev.Button == ButtonMiddle, ev.Button == ButtonLeft && c.panHeld:
		c.begin(Panning)
		return
	case ev.Button != ButtonLeft:
		c.pointerID = noPointer
		return
	}

	if c.tryBeginResize(ev.Screen) {
		return
	}

	if hit, ok := c.store.HitTest(c.pressBoard); ok {
		c.applySelectionRule(hit.ID, ev.Mods.Shift)
		c.beginDrag()
		return
	}

	c.marquee = domain.RectFromPoints(c.pressBoard, c.pressBoard)
	c.begin(MarqueeCandidate)
}

func (c *Controller) begin(s State) {
	c.state = s
	c.capture.Capture(c.pointerID)
}

func (c *Controller) tryBeginResize(screen domain.Point) bool {
	if c.selection.len() != 1 {
		return false
	}
	el, ok := c.store.Get(c.selection.ids[0])
	if !ok || !el.Sizable() {
		return false
	}

	b := el.Bounds()
	for _, h := range []Handle{HandleNW, HandleNE, HandleSW, HandleSE} {
		corner := viewport.BoardToScreen(c.camera, h.corner(b))
		if distance(corner, screen) <= c.cfg.HandleRadiusPx {
			c.resizeID = el.ID
			c.resizeHandle = h
			c.resizeAnchor = h.opposite().corner(b)
			c.begin(Resizing)
			return true
		}
	}
	return false
}

func (c *Controller) applySelectionRule(id string, shift bool) {
	if !shift {
		if c.selection.len() == 1 && c.selection.has(id) {
			return
		}
		c.selection.set(id)
		return
	}
	if c.selection.has(id) && c.selection.len() == 1 {
		return
	}
	c.selection.toggle(id)
}

func (c *Controller) beginDrag() {
	c.dragStarts = make(map[string]domain.Point, c.selection.len())
	c.dragOrder = c.dragOrder[:0]
	for _, id := range c.selection.ids {
		el, ok := c.store.Get(id)
		if !ok {
			continue
		}
		c.dragStarts[id] = domain.Point{X: el.X, Y: el.Y}
		c.dragOrder = append(c.dragOrder, id)
	}
	c.begin(ElementDragging)
}

// PointerMove advances the active gesture.
func (c *Controller) PointerMove(ev PointerEvent) {
	if !c.owns(ev.PointerID) {
		return
	}
	if !c.moved && distance(ev.Screen, c.pressScreen) > c.cfg.DragThresholdPx {
		c.moved = true
	}

	switch c.state {
	case Panning:
		c.camera = viewport.Pan(c.camera, ev.Screen.Sub(c.lastScreen))
	case ElementDragging:
		if c.moved {
			if els := c.dragTo(c.BoardPoint(ev.Screen)); len(els) > 0 {
				c.emit(Mutation{Kind: MutationUpdate, Elements: els})
			}
		}
	case Resizing:
		if c.moved {
			if el, ok := c.resizeTo(c.BoardPoint(ev.Screen)); ok {
				c.emit(Mutation{Kind: MutationUpdate, Elements: []domain.Element{el}})
			}
		}
	case MarqueeCandidate:
		if c.moved {
			c.state = MarqueeActive
			c.hasMarquee = true
			c.marquee = domain.RectFromPoints(c.pressBoard, c.BoardPoint(ev.Screen))
		}
	case MarqueeActive:
		c.marquee = domain.RectFromPoints(c.pressBoard, c.BoardPoint(ev.Screen))
	}
	c.lastScreen = ev.Screen
}

func (c *Controller) owns(pointerID int) bool {
	switch c.state {
	case Idle, Editing:
		return false
	}
	return pointerID == c.pointerID
}

// dragTo moves every dragged element to its start position plus the
// pointer delta and returns the moved elements.
func (c *Controller) dragTo(cur domain.Point) []domain.Element {
	delta := cur.Sub(c.pressBoard)
	els := make([]domain.Element, 0, len(c.dragOrder))
	for _, id := range c.dragOrder {
		el, ok := c.store.Get(id)
		if !ok {
			continue
		}
		start := c.dragStarts[id]
		el.X = start.X + delta.X
		el.Y = start.Y + delta.Y
		c.store.Upsert(el)
		els = append(els, el)
	}
	return els
}

// resizeTo applies a uniform resize keeping the anchor corner fixed.
func (c *Controller) resizeTo(cur domain.Point) (domain.Element, bool) {
	el, ok := c.store.Get(c.resizeID)
	if !ok {
		return domain.Element{}, false
	}
	dx := math.Abs(cur.X - c.resizeAnchor.X)
	dy := math.Abs(cur.Y - c.resizeAnchor.Y)
	size := math.Max(c.cfg.MinElementSize, math.Max(dx, dy))

	tl := c.resizeHandle.topLeft(c.resizeAnchor, size)
	el.X, el.Y, el.Size = tl.X, tl.Y, size
	c.store.Upsert(el)
	return el, true
}

// PointerUp finishes the active gesture.
func (c *Controller) PointerUp(ev PointerEvent) {
	if !c.owns(ev.PointerID) {
		return
	}
	cur := c.BoardPoint(ev.Screen)

	switch c.state {
	case Panning:
		c.suppressClick = true
	case ElementDragging:
		if c.moved {
			if els := c.dragTo(cur); len(els) > 0 {
				c.emit(Mutation{Kind: MutationUpdate, Elements: els, Final: true})
			}
			c.suppressClick = true
		}
	case Resizing:
		if c.moved {
			if el, ok := c.resizeTo(cur); ok {
				c.emit(Mutation{Kind: MutationUpdate, Elements: []domain.Element{el}, Final: true})
			}
			c.suppressClick = true
		}
	case MarqueeCandidate:
		c.createAt(cur)
		c.suppressClick = true
	case MarqueeActive:
		c.finishMarquee(domain.RectFromPoints(c.pressBoard, cur))
		c.suppressClick = true
	}
	c.reset()
}

func (c *Controller) finishMarquee(r domain.Rect) {
	ids := c.store.Intersecting(r)
	switch {
	case c.shiftAtPress:
		for _, id := range ids {
			c.selection.toggle(id)
		}
	case len(ids) == 0:
		c.selection.clear()
	default:
		c.selection.set(ids...)
	}
}

func (c *Controller) createAt(p domain.Point) {
	el := domain.Element{
		ID:   c.newID(),
		Type: domain.ElementNote,
		X:    p.X,
		Y:    p.Y,
		Size: c.cfg.DefaultElementSize,
	}
	c.store.Upsert(el)
	c.selection.clear()
	c.emit(Mutation{Kind: MutationCreate, Elements: []domain.Element{el}, Final: true})
}

// PointerCancel aborts the active gesture. Partial state is discarded and
// nothing is emitted, except that a drag or resize which already moved
// elements commits their current state as final.
func (c *Controller) PointerCancel(ev PointerEvent) {
	if !c.owns(ev.PointerID) {
		return
	}
	if c.moved {
		switch c.state {
		case ElementDragging:
			c.flushCurrent(c.dragOrder...)
		case Resizing:
			c.flushCurrent(c.resizeID)
		}
	}
	c.reset()
}

func (c *Controller) flushCurrent(ids ...string) {
	els := make([]domain.Element, 0, len(ids))
	for _, id := range ids {
		if el, ok := c.store.Get(id); ok {
			els = append(els, el)
		}
	}
	if len(els) > 0 {
		c.emit(Mutation{Kind: MutationUpdate, Elements: els, Final: true})
	}
}

// LostCapture is treated as a cancel.
func (c *Controller) LostCapture(pointerID int) {
	c.PointerCancel(PointerEvent{PointerID: pointerID})
}

// PointerLeave is treated as a cancel.
func (c *Controller) PointerLeave(ev PointerEvent) {
	c.PointerCancel(ev)
}

// reset releases capture and returns to Idle.
func (c *Controller) reset() {
	if c.pointerID != noPointer {
		c.capture.Release(c.pointerID)
	}
	c.state = Idle
	c.pointerID = noPointer
	c.moved = false
	c.shiftAtPress = false
	c.dragStarts = nil
	c.dragOrder = c.dragOrder[:0]
	c.resizeID = ""
	c.hasMarquee = false
	c.marquee = domain.Rect{}
}

// Click handles the synthetic click that follows a release. It returns
// true when the click created an element.
func (c *Controller) Click(ev PointerEvent) bool {
	if c.suppressClick {
		c.suppressClick = false
		return false
	}
	if c.state != Idle || ev.Button != ButtonLeft {
		return false
	}
	p := c.BoardPoint(ev.Screen)
	if _, hit := c.store.HitTest(p); hit {
		return false
	}
	c.createAt(p)
	return true
}

// DoubleClick enters Editing when it hits an element.
func (c *Controller) DoubleClick(ev PointerEvent) {
	if c.state != Idle {
		return
	}
	hit, ok := c.store.HitTest(c.BoardPoint(ev.Screen))
	if !ok {
		return
	}
	c.suppressClick = false
	c.state = Editing
	c.editingID = hit.ID
	c.draft = hit.Text
	c.selection.set(hit.ID)
}

// SetDraft replaces the draft text while editing.
func (c *Controller) SetDraft(text string) {
	if c.state == Editing {
		c.draft = text
	}
}

// Blur commits the edit in progress.
func (c *Controller) Blur() {
	if c.state == Editing {
		c.commitEdit()
	}
}

func (c *Controller) commitEdit() {
	id, draft := c.editingID, c.draft
	c.endEdit()

	el, ok := c.store.Get(id)
	if !ok || el.Text == draft {
		return
	}
	el.Text = draft
	c.store.Upsert(el)
	c.emit(Mutation{Kind: MutationUpdate, Elements: []domain.Element{el}, Final: true})
}

func (c *Controller) endEdit() {
	c.state = Idle
	c.editingID = ""
	c.draft = ""
}

// KeyDown handles shortcuts and editing keys.
func (c *Controller) KeyDown(ev KeyEvent) {
	if c.state == Editing {
		switch {
		case ev.Key == KeyEnter && !ev.Mods.Shift:
			c.commitEdit()
		case ev.Key == KeyEnter:
			c.draft += "\n"
		case ev.Key == KeyEscape:
			c.endEdit()
		}
		return
	}

	switch ev.Key {
	case KeySpace:
		c.panHeld = true
	case KeyDelete, KeyBackspace:
		if c.state == Idle {
			c.deleteSelection()
		}
	case KeyEscape:
		if c.state == Idle {
			c.selection.clear()
		}
	}
}

// KeyUp releases the pan modifier.
func (c *Controller) KeyUp(ev KeyEvent) {
	if ev.Key == KeySpace {
		c.panHeld = false
	}
}

func (c *Controller) deleteSelection() {
	if c.selection.len() == 0 {
		return
	}
	ids := c.selection.list()
	c.store.RemoveMany(ids)
	c.selection.clear()
	c.emit(Mutation{Kind: MutationDelete, IDs: ids, Final: true})
}

// Wheel zooms about the pointer with ctrl or meta held and pans otherwise.
func (c *Controller) Wheel(ev WheelEvent) {
	if c.state == Editing {
		return
	}
	if ev.Mods.Ctrl || ev.Mods.Meta {
		switch {
		case ev.DeltaY < 0:
			c.camera = viewport.ZoomBy(c.camera, ev.Screen, c.cfg.ZoomStep)
		case ev.DeltaY > 0:
			c.camera = viewport.ZoomBy(c.camera, ev.Screen, 1/c.cfg.ZoomStep)
		}
		return
	}
	c.camera = viewport.Pan(c.camera, domain.Point{X: -ev.DeltaX, Y: -ev.DeltaY})
}

// Forget drops ids removed by a remote peer from the selection and ends an
// edit of a removed element.
func (c *Controller) Forget(ids []string) {
	for _, id := range ids {
		c.selection.remove(id)
		if c.state == Editing && c.editingID == id {
			c.endEdit()
		}
	}
}

func (c *Controller) emit(m Mutation) {
	if c.emitter != nil {
		c.emitter.Emit(m)
	}
}

func distance(a, b domain.Point) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}

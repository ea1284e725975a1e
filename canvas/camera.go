package canvas

import (
	"errors"
	"fmt"
	"math"

	"github.com/rs/zerolog"
)

// DefaultZoomSensitivity is the wheel delta that would zoom all the way to
// zero. Bigger values zoom less per scroll tick.
const DefaultZoomSensitivity = 500.0

// ErrZoomFactor is returned when a wheel delta would produce a zoom factor
// that is not a positive finite number.
var ErrZoomFactor = errors.New("canvas: zoom factor must be positive and finite")

// State is a snapshot of what a host needs to redraw.
type State struct {
	Surface         Surface
	Scale           float64
	Offset          Point
	ViewportTopLeft Point
	PointerPos      Point
	Panning         bool
}

// Option configures a Camera.
type Option func(*Camera)

// WithPixelRatio sets the device pixel ratio. Values that are not positive
// fall back to 1.
func WithPixelRatio(r float64) Option {
	return func(c *Camera) {
		if r > 0 && !math.IsInf(r, 0) {
			c.ratio = r
		}
	}
}

// WithZoomSensitivity overrides DefaultZoomSensitivity.
func WithZoomSensitivity(s float64) Option {
	return func(c *Camera) {
		if s > 0 && !math.IsInf(s, 0) {
			c.sensitivity = s
		}
	}
}

// WithLogger attaches a logger. The default discards everything.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Camera) {
		c.log = l
	}
}

type subscriber struct {
	id int
	fn func(State)
}

// Camera keeps a surface's scale and pan translation in step with the
// world-space point shown at the surface origin (the viewport top-left).
//
// All methods must be called from one goroutine, normally the host's event
// loop. Surfaces are compared by identity, so implementations should be
// pointer types.
type Camera struct {
	width, height float64
	ratio         float64
	sensitivity   float64
	log           zerolog.Logger

	surface         Surface
	scale           float64
	offset          Point
	lastOffset      Point
	viewportTopLeft Point
	pointerPos      Point

	// Drag tracking, in page coordinates.
	panning        bool
	lastPointerPos Point

	freshlyReset bool

	revision    uint64
	nextSubID   int
	subscribers []subscriber
}

// NewCamera creates a camera for a surface declared as width x height
// logical pixels. It stays uninitialized until the first Reset.
func NewCamera(width, height float64, opts ...Option) *Camera {
	c := &Camera{
		width:       width,
		height:      height,
		ratio:       1,
		sensitivity: DefaultZoomSensitivity,
		log:         zerolog.Nop(),
		scale:       1,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Reset acquires s and puts the camera back to identity scale and zero pan.
// The backing store is resized to the declared size times the pixel ratio,
// which clears it, and the ratio is applied once as a uniform scale.
//
// Calling Reset again with the same surface before any pan or zoom is a
// no-op.
func (c *Camera) Reset(s Surface) {
	if s == nil {
		return
	}
	if c.freshlyReset && s == c.surface {
		c.log.Debug().Msg("camera already reset")
		return
	}

	w := int(c.width * c.ratio)
	h := int(c.height * c.ratio)
	s.SetSize(w, h)
	s.Scale(c.ratio, c.ratio)

	c.surface = s
	c.scale = 1
	c.offset = Origin
	c.lastOffset = Origin
	c.pointerPos = Origin
	c.viewportTopLeft = Origin
	c.lastPointerPos = Origin
	c.panning = false
	c.freshlyReset = true

	c.log.Debug().
		Int("width", w).
		Int("height", h).
		Float64("ratio", c.ratio).
		Msg("camera reset")
	c.changed()
}

// Resize changes the declared surface size. An acquired surface is reset
// even if nothing has moved since the last reset.
func (c *Camera) Resize(width, height float64) {
	if width == c.width && height == c.height {
		return
	}
	c.width, c.height = width, height
	if c.surface == nil {
		return
	}
	c.freshlyReset = false
	c.Reset(c.surface)
}

// StartPan begins a drag at page, given in page (document) coordinates, so
// the drag keeps working after the pointer leaves the surface.
func (c *Camera) StartPan(page Point) {
	c.lastPointerPos = page
	c.panning = true
}

// PanMove advances the offset by the pointer movement since the previous
// sample and moves the viewport to match.
func (c *Camera) PanMove(page Point) {
	if !c.panning || c.surface == nil {
		return
	}
	delta := Diff(page, c.lastPointerPos)
	c.lastPointerPos = page
	c.offset = Add(c.offset, delta)

	c.recomputeViewport()
	c.lastOffset = c.offset
	c.changed()
}

// EndPan stops tracking the drag. Offset keeps whatever the moves applied.
func (c *Camera) EndPan() {
	c.panning = false
}

// recomputeViewport turns the screen-pixel pan since the last recompute into
// world units at the current scale, translates the surface by it and keeps
// the viewport top-left on the world point at the surface origin.
func (c *Camera) recomputeViewport() {
	if c.surface == nil {
		return
	}
	inc := ScaleDown(Diff(c.offset, c.lastOffset), c.scale)
	c.surface.Translate(inc.X, inc.Y)
	c.viewportTopLeft = Diff(c.viewportTopLeft, inc)
	c.freshlyReset = false
}

// Wheel zooms by a wheel delta, keeping the world point under the tracked
// pointer where it is on screen. Negative deltas zoom in.
func (c *Camera) Wheel(deltaY float64) error {
	return c.ZoomAt(c.pointerPos, deltaY)
}

// ZoomAt is Wheel anchored at an explicit surface-relative point.
func (c *Camera) ZoomAt(anchor Point, deltaY float64) error {
	if c.surface == nil {
		return nil
	}
	zoom := 1 - deltaY/c.sensitivity
	if !(zoom > 0) || math.IsInf(zoom, 0) {
		c.log.Warn().
			Float64("deltaY", deltaY).
			Float64("factor", zoom).
			Msg("zoom rejected")
		return fmt.Errorf("%w: got %v for delta %v", ErrZoomFactor, zoom, deltaY)
	}

	k := 1 - 1/zoom
	delta := Point{
		X: anchor.X / c.scale * k,
		Y: anchor.Y / c.scale * k,
	}
	next := Add(c.viewportTopLeft, delta)

	// Undo the old top-left, zoom, then apply the corrected top-left.
	c.surface.Translate(c.viewportTopLeft.X, c.viewportTopLeft.Y)
	c.surface.Scale(zoom, zoom)
	c.surface.Translate(-next.X, -next.Y)

	c.viewportTopLeft = next
	c.scale *= zoom
	c.freshlyReset = false

	// Scale changed, so the viewport is recomputed; the pending pan delta is
	// always zero here.
	c.recomputeViewport()
	c.lastOffset = c.offset
	c.changed()
	return nil
}

// TrackPointer stores the pointer position relative to the surface's
// top-left corner. It must run before Wheel reads the anchor.
func (c *Camera) TrackPointer(client, surfaceTopLeft Point) {
	c.pointerPos = Diff(client, surfaceTopLeft)
}

// TransformedPoint subtracts the surface translation from (x, y). Scale is
// not divided out, so the result is only a true world coordinate at scale 1
// and pixel ratio 1; use ScreenToWorld for the exact inverse.
func (c *Camera) TransformedPoint(x, y float64) Point {
	if c.surface == nil {
		return Origin
	}
	t := c.surface.GetTransform()
	return Point{X: x - t.E, Y: y - t.F}
}

// ScreenToWorld maps a surface-relative logical pixel to world space through
// the full inverse transform.
func (c *Camera) ScreenToWorld(p Point) Point {
	if c.surface == nil {
		return Origin
	}
	inv, ok := c.surface.GetTransform().Invert()
	if !ok {
		return Origin
	}
	return inv.Apply(Point{X: p.X * c.ratio, Y: p.Y * c.ratio})
}

// WorldToScreen maps a world point to a surface-relative logical pixel.
func (c *Camera) WorldToScreen(p Point) Point {
	if c.surface == nil {
		return Origin
	}
	return ScaleDown(c.surface.GetTransform().Apply(p), c.ratio)
}

// Subscribe registers fn to run after every change that needs a redraw.
// The returned func removes it.
func (c *Camera) Subscribe(fn func(State)) (cancel func()) {
	c.nextSubID++
	id := c.nextSubID
	c.subscribers = append(c.subscribers, subscriber{id: id, fn: fn})
	return func() {
		for i, s := range c.subscribers {
			if s.id == id {
				c.subscribers = append(c.subscribers[:i], c.subscribers[i+1:]...)
				return
			}
		}
	}
}

// Revision increases on every change that needs a redraw. Hosts that poll
// compare it against the revision they last drew.
func (c *Camera) Revision() uint64 {
	return c.revision
}

func (c *Camera) changed() {
	c.revision++
	if len(c.subscribers) == 0 {
		return
	}
	st := c.State()
	subs := append([]subscriber(nil), c.subscribers...)
	for _, s := range subs {
		s.fn(st)
	}
}

// State returns the current snapshot.
func (c *Camera) State() State {
	return State{
		Surface:         c.surface,
		Scale:           c.scale,
		Offset:          c.offset,
		ViewportTopLeft: c.viewportTopLeft,
		PointerPos:      c.pointerPos,
		Panning:         c.panning,
	}
}

func (c *Camera) Surface() Surface { return c.surface }
func (c *Camera) Scale() float64 { return c.scale }
func (c *Camera) Offset() Point { return c.offset }
func (c *Camera) ViewportTopLeft() Point { return c.viewportTopLeft }
func (c *Camera) PointerPos() Point { return c.pointerPos }
func (c *Camera) Panning() bool { return c.panning }
func (c *Camera) FreshlyReset() bool { return c.freshlyReset }
func (c *Camera) PixelRatio() float64 { return c.ratio }
func (c *Camera) ZoomSensitivity() float64 { return c.sensitivity }

// DeclaredSize returns the logical surface size.
func (c *Camera) DeclaredSize() (width, height float64) {
	return c.width, c.height
}

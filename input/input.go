package input

import (
	"image"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/rs/zerolog"

	"canvas-camera/canvas"
)

// Camera is the part of canvas.Camera the input system drives.
type Camera interface {
	StartPan(page canvas.Point)
	PanMove(page canvas.Point)
	EndPan()
	Panning() bool
	TrackPointer(client, surfaceTopLeft canvas.Point)
	Wheel(deltaY float64) error
}

// Host defines the callbacks the input system needs from the main game.
type Host interface {
	// CanvasBounds is where the surface sits on screen, in logical pixels.
	CanvasBounds() image.Rectangle
	IsMouseOver(mx, my int) bool
	RequestScreenshot()
	ResetCamera()
}

// Frame is one tick of raw input.
type Frame struct {
	Cursor         image.Point
	WheelY         float64 // ebiten convention: positive scrolls up
	PanPressed     bool
	PanJustPressed bool
	ZoomIn         bool
	ZoomOut        bool
	Reset          bool
	Screenshot     bool
}

type InputSystem struct {
	host Host
	cam  Camera
	log  zerolog.Logger

	wheelDelta float64
	keyDelta   float64

	lastCursor image.Point
	hasCursor  bool
}

// NewInputSystem wires h and cam together. wheelDelta is the browser-style
// deltaY of one wheel notch; keyDelta is applied each frame +/- is held.
func NewInputSystem(h Host, cam Camera, wheelDelta, keyDelta float64, log zerolog.Logger) *InputSystem {
	return &InputSystem{
		host:       h,
		cam:        cam,
		log:        log,
		wheelDelta: wheelDelta,
		keyDelta:   keyDelta,
	}
}

// Update polls ebiten and applies the result.
func (is *InputSystem) Update() {
	is.Apply(Poll())
}

// Poll reads the current ebiten input state.
func Poll() Frame {
	mx, my := ebiten.CursorPosition()
	_, wy := ebiten.Wheel()
	return Frame{
		Cursor: image.Pt(mx, my),
		WheelY: wy,
		PanPressed: ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft) ||
			ebiten.IsMouseButtonPressed(ebiten.MouseButtonMiddle),
		PanJustPressed: inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) ||
			inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonMiddle),
		ZoomIn:     ebiten.IsKeyPressed(ebiten.KeyEqual) || ebiten.IsKeyPressed(ebiten.KeyKPAdd),
		ZoomOut:    ebiten.IsKeyPressed(ebiten.KeyMinus) || ebiten.IsKeyPressed(ebiten.KeyKPSubtract),
		Reset:      inpututil.IsKeyJustPressed(ebiten.KeyR),
		Screenshot: inpututil.IsKeyJustPressed(ebiten.KeyF12),
	}
}

// Apply turns one frame of input into camera gestures.
func (is *InputSystem) Apply(f Frame) {
	is.handleControlKeys(f)

	bounds := is.host.CanvasBounds()
	overCanvas := f.Cursor.In(bounds)
	overUI := is.host.IsMouseOver(f.Cursor.X, f.Cursor.Y)
	pos := canvas.Pt(float64(f.Cursor.X), float64(f.Cursor.Y))

	moved := !is.hasCursor || f.Cursor != is.lastCursor
	is.lastCursor, is.hasCursor = f.Cursor, true

	// The zoom anchor has to be current before any zoom reads it.
	if overCanvas && (moved || f.WheelY != 0) {
		is.cam.TrackPointer(pos, canvas.Pt(float64(bounds.Min.X), float64(bounds.Min.Y)))
	}

	is.handleZoom(f, overCanvas && !overUI)
	is.handlePanning(f, pos, moved, overCanvas && !overUI)
}

func (is *InputSystem) handleControlKeys(f Frame) {
	if f.Screenshot {
		is.host.RequestScreenshot()
	}
	if f.Reset {
		is.host.ResetCamera()
	}
}

func (is *InputSystem) handleZoom(f Frame, overCanvas bool) {
	// Browser deltaY is positive when scrolling down (zoom out); ebiten's
	// wheel is positive when scrolling up.
	var deltaY float64
	if overCanvas {
		deltaY = -f.WheelY * is.wheelDelta
	}
	if f.ZoomIn {
		deltaY -= is.keyDelta
	}
	if f.ZoomOut {
		deltaY += is.keyDelta
	}
	if deltaY == 0 {
		return
	}
	if err := is.cam.Wheel(deltaY); err != nil {
		is.log.Warn().Err(err).Msg("wheel ignored")
	}
}

// handlePanning starts a drag only on the canvas but follows it anywhere
// in the window until the button is released.
func (is *InputSystem) handlePanning(f Frame, pos canvas.Point, moved, overCanvas bool) {
	if is.cam.Panning() {
		if !f.PanPressed {
			is.cam.EndPan()
			return
		}
		if moved {
			is.cam.PanMove(pos)
		}
		return
	}
	if f.PanJustPressed && overCanvas {
		is.cam.StartPan(pos)
	}
}

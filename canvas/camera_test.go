package canvas

import (
	"errors"
	"math"
	"testing"
)

// fakeSurface records size changes and keeps the transform like a browser
// canvas does.
type fakeSurface struct {
	w, h    int
	t       Transform
	resizes int
}

func (f *fakeSurface) SetSize(w, h int) {
	f.w, f.h = w, h
	f.t = Identity()
	f.resizes++
}
func (f *fakeSurface) Size() (int, int) { return f.w, f.h }
func (f *fakeSurface) Scale(sx, sy float64) { f.t = f.t.Multiply(ScaleBy(sx, sy)) }
func (f *fakeSurface) Translate(dx, dy float64) { f.t = f.t.Multiply(TranslateBy(dx, dy)) }
func (f *fakeSurface) GetTransform() Transform { return f.t }
func (f *fakeSurface) SetTransform(t Transform) { f.t = t }

const eps = 1e-9

func near(a, b float64) bool {
	return math.Abs(a-b) < eps
}

func nearPt(a, b Point) bool {
	return near(a.X, b.X) && near(a.Y, b.Y)
}

func newReadyCamera(t *testing.T, opts ...Option) (*Camera, *fakeSurface) {
	t.Helper()
	cam := NewCamera(400, 400, opts...)
	s := &fakeSurface{}
	cam.Reset(s)
	return cam, s
}

// pan drags the camera by d in one move.
func pan(cam *Camera, from Point, d Point) {
	cam.StartPan(from)
	cam.PanMove(Add(from, d))
	cam.EndPan()
}

func TestResetInitializesState(t *testing.T) {
	cam, s := newReadyCamera(t, WithPixelRatio(2))

	if s.w != 800 || s.h != 800 {
		t.Errorf("Expected backing size 800x800, got %dx%d", s.w, s.h)
	}
	if want := ScaleBy(2, 2); s.t != want {
		t.Errorf("Expected transform %+v, got %+v", want, s.t)
	}
	if cam.Scale() != 1 {
		t.Errorf("Expected scale 1, got %v", cam.Scale())
	}
	if cam.Offset() != Origin || cam.ViewportTopLeft() != Origin || cam.PointerPos() != Origin {
		t.Errorf("Expected origin offset/viewport/pointer, got %+v", cam.State())
	}
	if !cam.FreshlyReset() {
		t.Errorf("Expected camera to be freshly reset")
	}
	if cam.Surface() != Surface(s) {
		t.Errorf("Expected surface to be acquired")
	}
}

func TestResetIsIdempotentWithoutGestures(t *testing.T) {
	cam, s := newReadyCamera(t)
	first := cam.State()
	rev := cam.Revision()

	cam.Reset(s)

	if s.resizes != 1 {
		t.Errorf("Expected one resize, got %d", s.resizes)
	}
	if cam.State() != first {
		t.Errorf("Second reset changed state: %+v -> %+v", first, cam.State())
	}
	if cam.Revision() != rev {
		t.Errorf("Second reset should not notify")
	}
}

func TestResetAfterGestureReinitializes(t *testing.T) {
	cam, s := newReadyCamera(t)
	pan(cam, Origin, Pt(10, 20))
	if err := cam.Wheel(-50); err != nil {
		t.Fatalf("Wheel: %v", err)
	}

	cam.Reset(s)

	if s.resizes != 2 {
		t.Errorf("Expected 2 resizes, got %d", s.resizes)
	}
	if cam.Scale() != 1 || cam.Offset() != Origin || cam.ViewportTopLeft() != Origin {
		t.Errorf("Reset did not clear state: %+v", cam.State())
	}
	if !s.t.IsIdentity() {
		t.Errorf("Expected identity transform after reset at ratio 1, got %+v", s.t)
	}
}

func TestResetWithNewSurfaceWhileFresh(t *testing.T) {
	cam, _ := newReadyCamera(t)
	other := &fakeSurface{}

	cam.Reset(other)

	if other.resizes != 1 {
		t.Errorf("Expected new surface to be sized")
	}
	if cam.Surface() != Surface(other) {
		t.Errorf("Expected camera to switch surfaces")
	}
}

func TestOperationsBeforeReset(t *testing.T) {
	cam := NewCamera(400, 400)
	cam.Reset(nil)

	cam.StartPan(Origin)
	cam.PanMove(Pt(10, 10))
	cam.EndPan()
	if err := cam.Wheel(-100); err != nil {
		t.Errorf("Wheel without surface should be a no-op, got %v", err)
	}

	if cam.Offset() != Origin || cam.Scale() != 1 {
		t.Errorf("Expected untouched state, got %+v", cam.State())
	}
	if p := cam.TransformedPoint(5, 7); p != Origin {
		t.Errorf("Expected origin without surface, got %+v", p)
	}
	if cam.Revision() != 0 {
		t.Errorf("Expected no notifications, got revision %d", cam.Revision())
	}
}

func TestPanAccumulatesIncrementalDeltas(t *testing.T) {
	tests := []struct {
		name    string
		samples []Point
		want    Point
	}{
		{"single", []Point{Pt(60, 0)}, Pt(50, -10)},
		{"several", []Point{Pt(12, 12), Pt(15, 20), Pt(40, 5)}, Pt(30, -5)},
		{"back and forth", []Point{Pt(110, 10), Pt(10, 10)}, Pt(0, 0)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cam, _ := newReadyCamera(t)
			cam.StartPan(Pt(10, 10))
			for _, p := range tt.samples {
				cam.PanMove(p)
			}
			cam.EndPan()
			if !nearPt(cam.Offset(), tt.want) {
				t.Errorf("Expected offset %+v, got %+v", tt.want, cam.Offset())
			}
		})
	}
}

func TestPanRoundTrip(t *testing.T) {
	cam, _ := newReadyCamera(t, WithPixelRatio(1.5))
	if err := cam.Wheel(-75); err != nil {
		t.Fatalf("Wheel: %v", err)
	}
	offset := cam.Offset()
	vtl := cam.ViewportTopLeft()

	d := Pt(37, -14)
	pan(cam, Pt(100, 100), d)
	pan(cam, Pt(300, 50), Pt(-d.X, -d.Y))

	if !nearPt(cam.Offset(), offset) {
		t.Errorf("Expected offset %+v, got %+v", offset, cam.Offset())
	}
	if !nearPt(cam.ViewportTopLeft(), vtl) {
		t.Errorf("Expected viewport top-left %+v, got %+v", vtl, cam.ViewportTopLeft())
	}
}

func TestPanMoveIgnoredWithoutStart(t *testing.T) {
	cam, _ := newReadyCamera(t)
	cam.PanMove(Pt(50, 50))
	if cam.Offset() != Origin {
		t.Errorf("Move without a drag changed offset to %+v", cam.Offset())
	}

	pan(cam, Origin, Pt(5, 5))
	cam.PanMove(Pt(500, 500))
	if cam.Offset() != Pt(5, 5) {
		t.Errorf("Move after EndPan changed offset to %+v", cam.Offset())
	}
}

func TestPanAtScaleMovesViewportInWorldUnits(t *testing.T) {
	cam, _ := newReadyCamera(t)
	if err := cam.ZoomAt(Origin, -500); err != nil { // factor 2
		t.Fatalf("ZoomAt: %v", err)
	}
	pan(cam, Origin, Pt(40, 0))

	if want := Pt(-20, 0); !nearPt(cam.ViewportTopLeft(), want) {
		t.Errorf("Expected viewport top-left %+v, got %+v", want, cam.ViewportTopLeft())
	}
}

func TestWheelScenario(t *testing.T) {
	cam, s := newReadyCamera(t)

	pan(cam, Pt(100, 100), Pt(50, 0))
	if cam.Offset() != Pt(50, 0) {
		t.Fatalf("Expected offset (50,0), got %+v", cam.Offset())
	}
	if cam.ViewportTopLeft() != Pt(-50, 0) {
		t.Fatalf("Expected viewport top-left (-50,0), got %+v", cam.ViewportTopLeft())
	}

	cam.TrackPointer(Pt(208, 215), Pt(8, 15))
	if err := cam.Wheel(-100); err != nil {
		t.Fatalf("Wheel: %v", err)
	}

	if !near(cam.Scale(), 1.2) {
		t.Errorf("Expected scale 1.2, got %v", cam.Scale())
	}
	shift := 200 * (1 - 1/1.2)
	want := Pt(-50+shift, shift)
	if !nearPt(cam.ViewportTopLeft(), want) {
		t.Errorf("Expected viewport top-left %+v, got %+v", want, cam.ViewportTopLeft())
	}
	if !near(cam.ViewportTopLeft().X, -50.0/3) {
		t.Errorf("Expected x ~ -16.67, got %v", cam.ViewportTopLeft().X)
	}
	if !near(s.t.E, 20) || !near(s.t.F, -40) {
		t.Errorf("Expected translation (20,-40), got (%v,%v)", s.t.E, s.t.F)
	}
	if cam.FreshlyReset() {
		t.Errorf("Expected fresh flag cleared")
	}
}

func TestZoomKeepsAnchorFixed(t *testing.T) {
	for _, ratio := range []float64{1, 2, 1.25} {
		cam, _ := newReadyCamera(t, WithPixelRatio(ratio))
		pan(cam, Origin, Pt(30, -10))
		cam.TrackPointer(Pt(130, 90), Pt(10, 10))

		for _, dy := range []float64{-120, 60, -300, 250} {
			before := cam.ScreenToWorld(cam.PointerPos())
			if err := cam.Wheel(dy); err != nil {
				t.Fatalf("Wheel(%v): %v", dy, err)
			}
			after := cam.ScreenToWorld(cam.PointerPos())
			if !nearPt(before, after) {
				t.Errorf("ratio %v delta %v: anchor moved from %+v to %+v", ratio, dy, before, after)
			}
			if back := cam.WorldToScreen(before); !nearPt(back, cam.PointerPos()) {
				t.Errorf("ratio %v delta %v: anchor projects to %+v", ratio, dy, back)
			}
		}
	}
}

func TestViewportTopLeftTracksTransform(t *testing.T) {
	cam, _ := newReadyCamera(t, WithPixelRatio(2))
	cam.TrackPointer(Pt(77, 140), Origin)
	steps := []func(){
		func() { pan(cam, Origin, Pt(15, 25)) },
		func() { _ = cam.Wheel(-90) },
		func() { pan(cam, Pt(5, 5), Pt(-40, 12)) },
		func() { _ = cam.ZoomAt(Pt(200, 200), 140) },
		func() { _ = cam.Wheel(-33) },
	}
	for i, step := range steps {
		step()
		if got := cam.ScreenToWorld(Origin); !nearPt(got, cam.ViewportTopLeft()) {
			t.Errorf("step %d: surface origin maps to %+v, viewport top-left is %+v", i, got, cam.ViewportTopLeft())
		}
	}
}

func TestScaleComposition(t *testing.T) {
	cam, _ := newReadyCamera(t)
	cam.TrackPointer(Pt(50, 60), Origin)

	want := 1.0
	for _, dy := range []float64{-100, -50, 200, 25, -400} {
		if err := cam.Wheel(dy); err != nil {
			t.Fatalf("Wheel(%v): %v", dy, err)
		}
		want *= 1 - dy/DefaultZoomSensitivity
	}
	if !near(cam.Scale(), want) {
		t.Errorf("Expected scale %v, got %v", want, cam.Scale())
	}
}

func TestZoomSensitivityOption(t *testing.T) {
	cam, _ := newReadyCamera(t, WithZoomSensitivity(100))
	if err := cam.Wheel(-100); err != nil {
		t.Fatalf("Wheel: %v", err)
	}
	if !near(cam.Scale(), 2) {
		t.Errorf("Expected scale 2, got %v", cam.Scale())
	}
}

func TestWheelRejectsNonPositiveFactor(t *testing.T) {
	for _, dy := range []float64{500, 1000, math.Inf(-1), math.NaN()} {
		cam, s := newReadyCamera(t)
		pan(cam, Origin, Pt(3, 4))
		before := cam.State()
		tr := s.t

		err := cam.Wheel(dy)
		if !errors.Is(err, ErrZoomFactor) {
			t.Errorf("delta %v: expected ErrZoomFactor, got %v", dy, err)
		}
		if cam.State() != before || s.t != tr {
			t.Errorf("delta %v: rejected zoom changed state", dy)
		}
	}
}

// TransformedPoint only removes translation; at scale 1.2 it disagrees with
// the true inverse used by ScreenToWorld.
func TestTransformedPointSubtractsTranslationOnly(t *testing.T) {
	cam, _ := newReadyCamera(t)
	pan(cam, Origin, Pt(50, 0))

	if got := cam.TransformedPoint(200, 200); got != Pt(150, 200) {
		t.Errorf("Expected (150,200) at scale 1, got %+v", got)
	}

	cam.TrackPointer(Pt(200, 200), Origin)
	if err := cam.Wheel(-100); err != nil {
		t.Fatalf("Wheel: %v", err)
	}
	got := cam.TransformedPoint(200, 200)
	if !nearPt(got, Pt(180, 240)) {
		t.Errorf("Expected (180,240), got %+v", got)
	}
	if exact := cam.ScreenToWorld(Pt(200, 200)); !nearPt(exact, Pt(150, 200)) {
		t.Errorf("Expected exact world point (150,200), got %+v", exact)
	}
}

func TestResizeForcesReset(t *testing.T) {
	cam, s := newReadyCamera(t)

	cam.Resize(300, 200)

	if s.resizes != 2 {
		t.Errorf("Expected resize to reset the surface, got %d resizes", s.resizes)
	}
	if s.w != 300 || s.h != 200 {
		t.Errorf("Expected 300x200, got %dx%d", s.w, s.h)
	}
	cam.Resize(300, 200)
	if s.resizes != 2 {
		t.Errorf("Same size should not reset again")
	}
}

func TestSubscribeAndRevision(t *testing.T) {
	cam := NewCamera(100, 100)
	var got []State
	cancel := cam.Subscribe(func(st State) { got = append(got, st) })

	s := &fakeSurface{}
	cam.Reset(s)
	pan(cam, Origin, Pt(4, 0))
	cam.TrackPointer(Pt(1, 1), Origin)

	if len(got) != 2 {
		t.Fatalf("Expected 2 notifications, got %d", len(got))
	}
	if got[1].Offset != Pt(4, 0) {
		t.Errorf("Expected notified offset (4,0), got %+v", got[1].Offset)
	}
	if cam.Revision() != 2 {
		t.Errorf("Expected revision 2, got %d", cam.Revision())
	}

	cancel()
	_ = cam.Wheel(-10)
	if len(got) != 2 {
		t.Errorf("Cancelled subscriber was still called")
	}
	if cam.Revision() != 3 {
		t.Errorf("Expected revision 3, got %d", cam.Revision())
	}
}

func TestPixelRatioFallback(t *testing.T) {
	for _, r := range []float64{0, -1, math.Inf(1)} {
		if got := NewCamera(10, 10, WithPixelRatio(r)).PixelRatio(); got != 1 {
			t.Errorf("ratio %v: expected fallback 1, got %v", r, got)
		}
	}
}

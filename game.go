package main

import (
	"fmt"
	"image"
	"image/png"
	"math"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/rs/zerolog/log"
	"golang.org/x/image/font"

	"canvas-camera/canvas"
	"canvas-camera/input"
	"canvas-camera/ui"
)

type Game struct {
	cfg     Config
	camera  *canvas.Camera
	surface *canvas.ContextSurface

	// Sub-systems
	input *input.InputSystem
	ui    *ui.UISystem
	face  font.Face

	// The surface pixels as last uploaded to the GPU.
	canvasImg     *ebiten.Image
	drawnRevision uint64
	drawn         bool

	screenWidth  int
	screenHeight int

	screenshotRequested bool
}

func NewGame(cfg Config, ratio float64) *Game {
	g := &Game{
		cfg:          cfg,
		screenWidth:  cfg.WindowWidth,
		screenHeight: cfg.WindowHeight,
	}

	g.camera = canvas.NewCamera(cfg.CanvasWidth, cfg.CanvasHeight,
		canvas.WithPixelRatio(ratio),
		canvas.WithZoomSensitivity(cfg.ZoomSensitivity),
		canvas.WithLogger(log.With().Str("component", "camera").Logger()),
	)
	g.surface = canvas.NewContextSurface(1, 1)
	g.surface.SetLogger(log.With().Str("component", "surface").Logger())
	g.camera.Reset(g.surface)

	g.input = input.NewInputSystem(g, g.camera, cfg.WheelDelta, cfg.KeyZoomDelta,
		log.With().Str("component", "input").Logger())
	g.ui = ui.NewUISystem(g.fontFace, g.screenSize, ui.Actions{
		ZoomIn:  func() { g.zoomAtCentre(-cfg.ButtonZoomDelta) },
		ZoomOut: func() { g.zoomAtCentre(cfg.ButtonZoomDelta) },
		Reset:   g.ResetCamera,
	}, DrawTextLines)

	return g
}

// --- input.Host ---

func (g *Game) CanvasBounds() image.Rectangle {
	x, y := g.cfg.CanvasX, g.cfg.CanvasY
	w, h := g.camera.DeclaredSize()
	return image.Rect(x, y, x+int(w), y+int(h))
}

func (g *Game) IsMouseOver(mx, my int) bool {
	return g.ui.IsMouseOver(mx, my)
}

func (g *Game) RequestScreenshot() {
	g.screenshotRequested = true
}

func (g *Game) ResetCamera() {
	g.camera.Reset(g.surface)
	g.ui.Debug.Clear()
}

func (g *Game) zoomAtCentre(deltaY float64) {
	w, h := g.camera.DeclaredSize()
	if err := g.camera.ZoomAt(canvas.Pt(w/2, h/2), deltaY); err != nil {
		log.Warn().Err(err).Msg("zoom button ignored")
		g.ui.Debug.SetError(err.Error())
	}
}

func (g *Game) fontFace() font.Face {
	if g.face == nil {
		g.face = LoadUIFont(g.cfg.FontPath)
	}
	return g.face
}

func (g *Game) screenSize() (int, int) {
	return g.screenWidth, g.screenHeight
}

func (g *Game) Update() error {
	// Buttons first, so a click on one never reaches the canvas.
	g.ui.Update()
	g.input.Update()
	g.ui.Debug.SetStatus(g.statusText())
	return nil
}

func (g *Game) statusText() string {
	st := g.camera.State()
	return fmt.Sprintf(
		"Scale: %.3f\n"+
			"Offset: (%.0f, %.0f)\n"+
			"Viewport top-left: (%.1f, %.1f)\n"+
			"Pointer: (%.0f, %.0f)\n"+
			"Pan: drag canvas  Zoom: wheel, +/-  Reset: R",
		st.Scale,
		st.Offset.X, st.Offset.Y,
		st.ViewportTopLeft.X, st.ViewportTopLeft.Y,
		st.PointerPos.X, st.PointerPos.Y,
	)
}

// renderCanvas repaints the surface and uploads it, but only when the camera
// changed since the last upload.
func (g *Game) renderCanvas() error {
	rev := g.camera.Revision()
	if g.drawn && rev == g.drawnRevision {
		return nil
	}
	if err := drawScene(g.camera, g.surface, g.cfg.GridSize); err != nil {
		return err
	}

	pix, err := g.surface.RGBA()
	if err != nil {
		return err
	}
	size := pix.Bounds().Size()
	if g.canvasImg == nil || g.canvasImg.Bounds().Size() != size {
		if g.canvasImg != nil {
			g.canvasImg.Deallocate()
		}
		g.canvasImg = ebiten.NewImage(size.X, size.Y)
	}
	g.canvasImg.WritePixels(pix.Pix)
	g.drawn, g.drawnRevision = true, rev
	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(ColorBackground)

	if err := g.renderCanvas(); err != nil {
		log.Error().Err(err).Msg("render canvas")
		g.ui.Debug.SetError(err.Error())
	}

	bounds := g.CanvasBounds()
	if g.canvasImg != nil {
		// The backing store is in device pixels; the screen is logical.
		r := g.camera.PixelRatio()
		op := &ebiten.DrawImageOptions{}
		op.GeoM.Scale(1/r, 1/r)
		op.GeoM.Translate(float64(bounds.Min.X), float64(bounds.Min.Y))
		op.Filter = ebiten.FilterLinear
		screen.DrawImage(g.canvasImg, op)
	}
	vector.StrokeRect(screen, float32(bounds.Min.X), float32(bounds.Min.Y),
		float32(bounds.Dx()), float32(bounds.Dy()), 1, ColorCanvasFrame, false)

	g.ui.Draw(screen)

	// --- Save Screenshot ---
	if g.screenshotRequested {
		g.screenshotRequested = false
		if err := saveScreenshot(screen, ScreenshotPNG); err != nil {
			log.Error().Err(err).Msg("screenshot")
		} else {
			log.Info().Str("path", ScreenshotPNG).Msg("screenshot saved")
		}
	}
}

func saveScreenshot(img image.Image, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return png.Encode(f, img)
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	g.screenWidth = outsideWidth
	g.screenHeight = outsideHeight
	g.fitCanvas(outsideWidth, outsideHeight)
	return outsideWidth, outsideHeight
}

// fitCanvas shrinks the canvas to fit a window smaller than the configured
// size and grows it back, up to the configured size, as the window grows.
// A size change resets the camera.
func (g *Game) fitCanvas(screenWidth, screenHeight int) {
	w := fitDimension(g.cfg.CanvasWidth, screenWidth-g.cfg.CanvasX-CanvasMargin)
	h := fitDimension(g.cfg.CanvasHeight, screenHeight-g.cfg.CanvasY-CanvasMargin)
	if cw, ch := g.camera.DeclaredSize(); cw == w && ch == h {
		return
	}
	log.Debug().Float64("width", w).Float64("height", h).Msg("canvas resized to fit window")
	g.camera.Resize(w, h)
}

func fitDimension(configured float64, available int) float64 {
	return math.Max(MinCanvasSize, math.Min(configured, float64(available)))
}

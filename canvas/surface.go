package canvas

import (
	"fmt"
	"image"
	"image/draw"

	"github.com/gogpu/gg"
	"github.com/rs/zerolog"
)

// Surface is a drawing target that holds a live affine transform. Only the
// Camera should change the transform; anything else breaks the
// viewport-top-left bookkeeping.
type Surface interface {
	// SetSize reallocates the backing store. Existing content is lost and
	// the transform goes back to identity.
	SetSize(width, height int)
	Size() (width, height int)
	// Scale and Translate post-multiply the current transform.
	Scale(sx, sy float64)
	Translate(dx, dy float64)
	GetTransform() Transform
	SetTransform(t Transform)
}

// ContextSurface adapts a gg drawing context to Surface.
type ContextSurface struct {
	dc  *gg.Context
	log zerolog.Logger
}

var _ Surface = (*ContextSurface)(nil)

// NewContextSurface creates a gg context of the given backing size and wraps it.
func NewContextSurface(width, height int) *ContextSurface {
	return WrapContext(gg.NewContext(width, height))
}

// WrapContext wraps an existing gg context.
func WrapContext(dc *gg.Context) *ContextSurface {
	return &ContextSurface{dc: dc, log: zerolog.Nop()}
}

// SetLogger attaches a logger for errors SetSize cannot return.
func (s *ContextSurface) SetLogger(l zerolog.Logger) {
	s.log = l
}

// Context exposes the underlying gg context for drawing.
func (s *ContextSurface) Context() *gg.Context {
	return s.dc
}

func (s *ContextSurface) SetSize(width, height int) {
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	// gg keeps the matrix and, for an unchanged size, the pixels too.
	if err := s.dc.Resize(width, height); err != nil {
		s.log.Error().Err(err).Int("width", width).Int("height", height).Msg("surface resize failed")
	}
	s.dc.Identity()
	s.dc.Clear()
}

func (s *ContextSurface) Size() (int, int) {
	return s.dc.Width(), s.dc.Height()
}

func (s *ContextSurface) Scale(sx, sy float64) {
	s.dc.Scale(sx, sy)
}

func (s *ContextSurface) Translate(dx, dy float64) {
	s.dc.Translate(dx, dy)
}

func (s *ContextSurface) GetTransform() Transform {
	m := s.dc.GetTransform()
	return Transform{A: m.A, B: m.D, C: m.B, D: m.E, E: m.C, F: m.F}
}

func (s *ContextSurface) SetTransform(t Transform) {
	s.dc.SetTransform(gg.Matrix{A: t.A, B: t.C, C: t.E, D: t.B, E: t.D, F: t.F})
}

// RGBA returns the current backing pixels, flushing pending GPU work first.
func (s *ContextSurface) RGBA() (*image.RGBA, error) {
	if err := s.dc.FlushGPU(); err != nil {
		return nil, fmt.Errorf("flush surface: %w", err)
	}
	img := s.dc.Image()
	if rgba, ok := img.(*image.RGBA); ok {
		return rgba, nil
	}
	out := image.NewRGBA(img.Bounds())
	draw.Draw(out, out.Bounds(), img, img.Bounds().Min, draw.Src)
	return out, nil
}

// SavePNG writes the backing pixels to path.
func (s *ContextSurface) SavePNG(path string) error {
	return s.dc.SavePNG(path)
}

package main

import (
	"fmt"

	"github.com/gogpu/gg"

	"canvas-camera/canvas"
)

// drawScene repaints the surface in place, keeping its transform: the world
// grid, a square in the middle of the canvas and a dot on the viewport
// top-left.
func drawScene(cam *canvas.Camera, s *canvas.ContextSurface, gridSize float64) error {
	dc := s.Context()
	dc.ClearWithColor(gg.FromColor(ColorCanvas))

	if err := canvas.DrawBackgroundGrid(cam, dc, gridSize, ColorGrid, ColorOriginCross); err != nil {
		return fmt.Errorf("draw grid: %w", err)
	}

	w, h := cam.DeclaredSize()
	dc.SetColor(ColorSquare)
	dc.DrawRectangle(w/2-SquareSize/2, h/2-SquareSize/2, SquareSize, SquareSize)
	if err := dc.Fill(); err != nil {
		return fmt.Errorf("draw square: %w", err)
	}

	vtl := cam.ViewportTopLeft()
	dc.SetColor(ColorMarker)
	dc.DrawCircle(vtl.X, vtl.Y, MarkerRadius)
	if err := dc.Fill(); err != nil {
		return fmt.Errorf("draw marker: %w", err)
	}
	return nil
}

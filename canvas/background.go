package canvas

import (
	"image/color"
	"math"

	"github.com/gogpu/gg"
)

// DrawBackgroundGrid renders the infinite world grid onto dc. Lines are laid
// out in world units and go through the surface transform, so they pan and
// zoom with the content.
func DrawBackgroundGrid(cam *Camera, dc *gg.Context, gridSize float64, gridColor, originCross color.Color) error {
	if cam.Surface() == nil || gridSize <= 0 {
		return nil
	}
	w, h := cam.DeclaredSize()
	topLeft := cam.ScreenToWorld(Origin)
	bottomRight := cam.ScreenToWorld(Pt(w, h))

	step := gridStep(math.Max(bottomRight.X-topLeft.X, bottomRight.Y-topLeft.Y), gridSize)
	if step == 0 {
		return nil
	}

	// Keep lines one logical pixel wide at any zoom.
	lineWidth := 1 / cam.Scale()

	dc.SetColor(gridColor)
	dc.SetLineWidth(lineWidth)
	for _, wx := range gridLines(topLeft.X, bottomRight.X, step) {
		dc.DrawLine(wx, topLeft.Y, wx, bottomRight.Y)
	}
	for _, wy := range gridLines(topLeft.Y, bottomRight.Y, step) {
		dc.DrawLine(topLeft.X, wy, bottomRight.X, wy)
	}
	if err := dc.Stroke(); err != nil {
		return err
	}

	arm := 15 * lineWidth
	dc.SetColor(originCross)
	dc.SetLineWidth(2 * lineWidth)
	dc.DrawLine(-arm, 0, arm, 0)
	dc.DrawLine(0, -arm, 0, arm)
	return dc.Stroke()
}

// maxGridLines caps the lines drawn per axis.
const maxGridLines = 1000

// gridStep returns gridSize scaled up by powers of ten until span needs at
// most maxGridLines lines, or 0 if no usable step exists.
func gridStep(span, gridSize float64) float64 {
	if !isFinite(span) || span < 0 {
		return 0
	}
	step := gridSize
	for span/step > maxGridLines {
		step *= 10
		if math.IsInf(step, 0) {
			return 0
		}
	}
	return step
}

// gridLines lists the multiples of step in [from, to]. It stops early once
// float64 can no longer tell neighbouring lines apart.
func gridLines(from, to, step float64) []float64 {
	if !isFinite(from) || !isFinite(to) || step <= 0 {
		return nil
	}
	var lines []float64
	for v := math.Floor(from/step) * step; v <= to && len(lines) <= maxGridLines; {
		lines = append(lines, v)
		next := v + step
		if next == v {
			break
		}
		v = next
	}
	return lines
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

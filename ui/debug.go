package ui

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"golang.org/x/image/font"
)

var (
	panelColor = color.RGBA{40, 40, 40, 220}
	errorColor = color.RGBA{255, 200, 50, 255}
	textColor  = color.RGBA{220, 220, 220, 255}
)

// DebugPanel shows camera status in the top-left corner and the last error
// in the bottom-right one.
type DebugPanel struct {
	Status string
	Error  string
}

func (d *DebugPanel) SetStatus(s string) {
	d.Status = s
}

func (d *DebugPanel) SetError(msg string) {
	d.Error = msg
}

func (d *DebugPanel) Clear() {
	d.Error = ""
}

func (d *DebugPanel) Draw(screen *ebiten.Image, getScreenSize func() (int, int), getFace func() font.Face, drawText DrawTextFunc) {
	if d == nil || getFace == nil || drawText == nil {
		return
	}
	face := getFace()
	if face == nil {
		return
	}
	if d.Status != "" {
		drawText(screen, face, d.Status, 10, 10, textColor)
	}
	if d.Error == "" {
		return
	}
	w, h := getScreenSize()
	pw, ph := 300, 40
	x := w - pw - 10
	y := h - ph - 10
	vector.DrawFilledRect(screen, float32(x), float32(y), float32(pw), float32(ph), panelColor, false)
	drawText(screen, face, d.Error, x+8, y+8, errorColor)
}

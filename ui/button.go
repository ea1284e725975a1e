package ui

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"golang.org/x/image/font"
)

var buttonColor = color.RGBA{60, 60, 70, 200}

type Button struct {
	Label   string
	X, Y    float32
	W, H    float32
	OnClick func()
}

func (b *Button) IsMouseOver(mx, my int) bool {
	return float32(mx) >= b.X && float32(mx) <= b.X+b.W &&
		float32(my) >= b.Y && float32(my) <= b.Y+b.H
}

// Draw renders the button. It uses the provided font.Face via getter.
func (b *Button) Draw(screen *ebiten.Image, getFace func() font.Face, drawText DrawTextFunc) {
	vector.DrawFilledRect(screen, b.X, b.Y, b.W, b.H, buttonColor, false)
	if getFace == nil || drawText == nil {
		return
	}
	face := getFace()
	if face == nil {
		return
	}
	x, y := b.labelOrigin(face)
	drawText(screen, face, b.Label, x, y, color.White)
}

// labelOrigin centres the label's advance box inside the button and returns
// its top-left corner.
func (b *Button) labelOrigin(face font.Face) (x, y int) {
	m := face.Metrics()
	textW := font.MeasureString(face, b.Label).Ceil()
	textH := m.Ascent.Ceil() + m.Descent.Ceil()
	x = int(b.X) + (int(b.W)-textW)/2
	y = int(b.Y) + (int(b.H)-textH)/2
	return x, y
}

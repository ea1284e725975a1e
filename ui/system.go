package ui

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"golang.org/x/image/font"
)

// DrawTextFunc draws s with its top-left corner at (x, y).
type DrawTextFunc func(screen *ebiten.Image, face font.Face, s string, x, y int, clr color.Color)

// Actions are the camera commands the buttons trigger.
type Actions struct {
	ZoomIn  func()
	ZoomOut func()
	Reset   func()
}

const (
	buttonSize   = 30
	resetWidth   = 60
	buttonMargin = 10
)

type UISystem struct {
	buttons       []*Button
	getFontFace   func() font.Face
	getScreenSize func() (int, int)
	drawText      DrawTextFunc
	Debug         *DebugPanel
}

func NewUISystem(getFontFace func() font.Face, getScreenSize func() (int, int), actions Actions, drawText DrawTextFunc) *UISystem {
	ui := &UISystem{
		getFontFace:   getFontFace,
		getScreenSize: getScreenSize,
		drawText:      drawText,
		Debug:         &DebugPanel{},
	}
	ui.buttons = []*Button{
		{Label: "+", W: buttonSize, H: buttonSize, OnClick: actions.ZoomIn},
		{Label: "-", W: buttonSize, H: buttonSize, OnClick: actions.ZoomOut},
		{Label: "reset", W: resetWidth, H: buttonSize, OnClick: actions.Reset},
	}
	ui.updateButtonPositions()
	return ui
}

// updateButtonPositions lays the buttons out right to left along the top
// edge of the screen.
func (ui *UISystem) updateButtonPositions() {
	w, _ := ui.getScreenSize()
	x := float32(w)
	for _, b := range ui.buttons {
		x -= b.W + buttonMargin
		b.X = x
		b.Y = buttonMargin
	}
}

func (ui *UISystem) IsMouseOver(mx, my int) bool {
	ui.updateButtonPositions()
	for _, b := range ui.buttons {
		if b.IsMouseOver(mx, my) {
			return true
		}
	}
	return false
}

func (ui *UISystem) Update() {
	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		mx, my := ebiten.CursorPosition()
		ui.Click(mx, my)
	}
}

// Click runs the action of the button under (mx, my), if any.
func (ui *UISystem) Click(mx, my int) bool {
	ui.updateButtonPositions()
	for _, b := range ui.buttons {
		if b.IsMouseOver(mx, my) {
			if b.OnClick != nil {
				b.OnClick()
			}
			return true
		}
	}
	return false
}

func (ui *UISystem) Draw(screen *ebiten.Image) {
	ui.updateButtonPositions()
	for _, b := range ui.buttons {
		b.Draw(screen, ui.getFontFace, ui.drawText)
	}
	if ui.Debug != nil {
		ui.Debug.Draw(screen, ui.getScreenSize, ui.getFontFace, ui.drawText)
	}
}

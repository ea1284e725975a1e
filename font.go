package main

import (
	"image/color"
	"os"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text"
	"github.com/rs/zerolog/log"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/opentype"
)

// LoadUIFont loads the TrueType font at path. On any failure it falls back to
// basicfont.Face7x13.
func LoadUIFont(path string) font.Face {
	data, err := os.ReadFile(path)
	if err != nil {
		log.Debug().Err(err).Str("path", path).Msg("ui font not found, using basic font")
		return basicfont.Face7x13
	}
	f, err := opentype.Parse(data)
	if err != nil {
		log.Warn().Err(err).Str("path", path).Msg("ui font parse error, using basic font")
		return basicfont.Face7x13
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{Size: 14, DPI: 72, Hinting: font.HintingFull})
	if err != nil {
		log.Warn().Err(err).Str("path", path).Msg("ui font face error, using basic font")
		return basicfont.Face7x13
	}
	return face
}

// DrawTextLines draws multiline text with (x, y) as the top-left corner of
// the first line.
func DrawTextLines(screen *ebiten.Image, face font.Face, s string, x, y int, clr color.Color) {
	if face == nil {
		face = basicfont.Face7x13
	}
	ascent, lineHeight := lineMetrics(face)
	for i, line := range strings.Split(s, "\n") {
		text.Draw(screen, line, face, x, y+ascent+i*lineHeight, clr)
	}
}

// lineMetrics returns the baseline offset and line advance in pixels.
func lineMetrics(face font.Face) (ascent, lineHeight int) {
	m := face.Metrics()
	ascent = m.Ascent.Ceil()
	lineHeight = ascent + m.Descent.Ceil()
	if lineHeight <= 0 {
		return 12, 16
	}
	return ascent, lineHeight
}

// Package glyph rasterizes a bitmap font into a texture atlas and lays out
// overlay text.
package glyph

import (
	"image"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Printable ASCII is rasterized; anything else draws as fallbackGlyph.
const (
	firstGlyph    = 32
	lastGlyph     = 126
	fallbackGlyph = '?'
	atlasCols     = 16
)

// Atlas is a monospace glyph sheet. Glyphs sit in a grid of equal cells,
// row-major from firstGlyph.
type Atlas struct {
	Image  *image.Alpha
	glyphW int
	glyphH int
}

// NewAtlas rasterizes the printable ASCII range of face.
func NewAtlas(face font.Face) *Atlas {
	m := face.Metrics()
	adv, _ := face.GlyphAdvance('M')
	glyphW := adv.Ceil()
	glyphH := (m.Ascent + m.Descent).Ceil()

	n := lastGlyph - firstGlyph + 1
	rows := (n + atlasCols - 1) / atlasCols
	img := image.NewAlpha(image.Rect(0, 0, atlasCols*glyphW, rows*glyphH))

	d := &font.Drawer{Dst: img, Src: image.Opaque, Face: face}
	for c := firstGlyph; c <= lastGlyph; c++ {
		i := c - firstGlyph
		x := (i % atlasCols) * glyphW
		y := (i / atlasCols) * glyphH
		d.Dot = fixed.P(x, y+m.Ascent.Ceil())
		d.DrawString(string(rune(c)))
	}
	return &Atlas{Image: img, glyphW: glyphW, glyphH: glyphH}
}

// DefaultAtlas uses the built-in 7x13 bitmap face.
func DefaultAtlas() *Atlas {
	return NewAtlas(basicfont.Face7x13)
}

// GlyphSize returns the cell size in pixels.
func (a *Atlas) GlyphSize() (int, int) {
	return a.glyphW, a.glyphH
}

// GlyphUV returns the texture rectangle of r.
func (a *Atlas) GlyphUV(r rune) (u0, v0, u1, v1 float32) {
	if r < firstGlyph || r > lastGlyph {
		r = fallbackGlyph
	}
	i := int(r) - firstGlyph
	b := a.Image.Bounds()
	w, h := float32(b.Dx()), float32(b.Dy())
	x := float32((i % atlasCols) * a.glyphW)
	y := float32((i / atlasCols) * a.glyphH)
	return x / w, y / h, (x + float32(a.glyphW)) / w, (y + float32(a.glyphH)) / h
}

// MeasureText returns the width and height of text drawn at scale.
// Lines break on '\n'.
func (a *Atlas) MeasureText(text string, scale float32) (float32, float32) {
	lines := strings.Split(text, "\n")
	longest := 0
	for _, l := range lines {
		longest = max(longest, len([]rune(l)))
	}
	return float32(longest*a.glyphW) * scale, float32(len(lines)*a.glyphH) * scale
}

package overlay

import "github.com/Faultbox/phoneview/internal/engine/glyph"

// DrawCard queues a card at (x, y). The first line is the title, the
// second the description.
func (r *Renderer) DrawCard(x, y float32, lines []string) {
	if len(lines) == 0 {
		return
	}
	w, h := glyph.CardLayout(r.atlas, lines)
	r.DrawPanel(x, y, w, h, ColorPanelBg, ColorPanelBorder)
	r.DrawRect(x, y, 3, h, ColorHighlight)

	cy := y + glyph.CardPadding
	for i, l := range lines {
		scale := glyph.LineScale(i)
		c := ColorText
		switch i {
		case 0:
			c = ColorTitle
		case 1:
			c = ColorTextDim
		}
		r.DrawText(x+glyph.CardPadding, cy, l, scale, c)
		_, lh := r.atlas.MeasureText(l, scale)
		cy += lh + glyph.LineGap
	}
}

// DrawStatus queues a one-line status bar along the bottom edge.
func (r *Renderer) DrawStatus(text string) {
	if text == "" {
		return
	}
	_, gh := r.atlas.GlyphSize()
	h := float32(gh) + 2*glyph.LineGap
	y := float32(r.screenHeight) - h
	r.DrawRect(0, y, float32(r.screenWidth), h, ColorPanelBg.WithAlpha(0.7))
	r.DrawText(glyph.CardPadding, y+glyph.LineGap, text, glyph.BodyScale, ColorTextDim.Darken(0.2))
}

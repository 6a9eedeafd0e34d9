package glyph

// Card text layout in pixels.
const (
	CardPadding = 12
	LineGap     = 4
	TitleScale  = 1.5
	BodyScale   = 1.0
)

// LineScale returns the text scale of card line i; the first is the title.
func LineScale(i int) float32 {
	if i == 0 {
		return TitleScale
	}
	return BodyScale
}

// CardLayout measures a card whose first line is the title.
func CardLayout(a *Atlas, lines []string) (width, height float32) {
	for i, l := range lines {
		w, h := a.MeasureText(l, LineScale(i))
		width = max(width, w)
		height += h
		if i > 0 {
			height += LineGap
		}
	}
	return width + 2*CardPadding, height + 2*CardPadding
}

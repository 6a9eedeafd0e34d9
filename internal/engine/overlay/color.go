package overlay

// Color represents an RGBA color with float components (0.0 to 1.0).
type Color struct {
	R, G, B, A float32
}

// Card and status line theme, matching the light viewer background.
var (
	ColorPanelBg     = Color{1, 1, 1, 0.92}
	ColorPanelBorder = Color{0.8, 0.8, 0.8, 1}
	ColorTitle       = Color{0.1, 0.1, 0.1, 1}
	ColorText        = Color{0.2, 0.2, 0.2, 1}
	ColorTextDim     = Color{0.45, 0.45, 0.5, 1}
	ColorHighlight   = Color{0, 0.6, 0, 1}
)

// RGB creates a color from 8-bit RGB values with full alpha.
func RGB(r, g, b uint8) Color {
	return Color{
		R: float32(r) / 255.0,
		G: float32(g) / 255.0,
		B: float32(b) / 255.0,
		A: 1.0,
	}
}

// WithAlpha returns a copy of the color with a different alpha value.
func (c Color) WithAlpha(a float32) Color {
	return Color{c.R, c.G, c.B, a}
}

// Darken returns a darker version of the color.
func (c Color) Darken(factor float32) Color {
	return Color{
		R: c.R * (1 - factor),
		G: c.G * (1 - factor),
		B: c.B * (1 - factor),
		A: c.A,
	}
}

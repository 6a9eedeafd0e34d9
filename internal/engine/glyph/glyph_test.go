package glyph

import (
	"testing"
)

func TestAtlasGlyphs(t *testing.T) {
	a := DefaultAtlas()
	gw, gh := a.GlyphSize()
	if gw != 7 || gh != 13 {
		t.Fatalf("GlyphSize() = %d, %d, want 7, 13", gw, gh)
	}

	b := a.Image.Bounds()
	if b.Dx() != atlasCols*gw || b.Dy() != 6*gh {
		t.Errorf("atlas bounds = %v", b)
	}

	// 'A' must have ink inside its cell.
	u0, v0, _, _ := a.GlyphUV('A')
	x0, y0 := int(u0*float32(b.Dx())+0.5), int(v0*float32(b.Dy())+0.5)
	ink := 0
	for y := y0; y < y0+gh; y++ {
		for x := x0; x < x0+gw; x++ {
			if a.Image.AlphaAt(x, y).A > 0 {
				ink++
			}
		}
	}
	if ink == 0 {
		t.Error("glyph 'A' is blank")
	}
}

func TestGlyphUV(t *testing.T) {
	a := DefaultAtlas()
	tests := []struct {
		name string
		r    rune
		want rune
	}{
		{"space", ' ', ' '},
		{"tilde", '~', '~'},
		{"non-ascii", 'é', '?'},
		{"control", '\t', '?'},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u0, v0, u1, v1 := a.GlyphUV(tt.r)
			w0, x0, w1, x1 := a.GlyphUV(tt.want)
			if u0 != w0 || v0 != x0 || u1 != w1 || v1 != x1 {
				t.Errorf("GlyphUV(%q) = %v,%v,%v,%v", tt.r, u0, v0, u1, v1)
			}
			if u0 < 0 || v0 < 0 || u1 > 1 || v1 > 1 || u1 <= u0 || v1 <= v0 {
				t.Errorf("GlyphUV(%q) out of range: %v,%v,%v,%v", tt.r, u0, v0, u1, v1)
			}
		})
	}
}

func TestMeasureText(t *testing.T) {
	a := DefaultAtlas()
	w, h := a.MeasureText("abc\nde", 2)
	if w != 42 || h != 52 {
		t.Errorf("MeasureText = %v, %v, want 42, 52", w, h)
	}
}

func TestCardLayout(t *testing.T) {
	a := DefaultAtlas()
	w, h := CardLayout(a, []string{"Screen", "OLED panel", "size: 1 x 2 x 3"})

	// Widest line is the 15 character detail line at body scale.
	if want := float32(15*7 + 2*CardPadding); w != want {
		t.Errorf("width = %v, want %v", w, want)
	}
	if want := float32(13*1.5 + 2*(13+LineGap) + 2*CardPadding); h != want {
		t.Errorf("height = %v, want %v", h, want)
	}

	if w, h := CardLayout(a, nil); w != 2*CardPadding || h != 2*CardPadding {
		t.Errorf("empty card = %v, %v", w, h)
	}
}

package debug

import (
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Faultbox/phoneview/pkg/math"
)

func TestBoxWireframe(t *testing.T) {
	v := BoxWireframe(math.Box3{Min: math.Vec3{X: -1, Y: -2, Z: -3}, Max: math.Vec3{X: 1, Y: 2, Z: 3}})
	if len(v) != BBoxWireframeVertexCount*3 {
		t.Fatalf("got %d floats, want %d", len(v), BBoxWireframeVertexCount*3)
	}
	for i := 0; i < len(v); i += 3 {
		if (v[i] != -1 && v[i] != 1) || (v[i+1] != -2 && v[i+1] != 2) || (v[i+2] != -3 && v[i+2] != 3) {
			t.Errorf("vertex %d = %v, not a box corner", i/3, v[i:i+3])
		}
	}
}

func TestPaddedBox(t *testing.T) {
	b := PaddedBox(math.Box3{Max: math.Vec3{X: 10, Y: 2, Z: 1}}, 0.1)
	want := math.Box3{Min: math.Vec3{X: -1, Y: -1, Z: -1}, Max: math.Vec3{X: 11, Y: 3, Z: 2}}
	if b != want {
		t.Errorf("PaddedBox = %v, want %v", b, want)
	}

	if e := PaddedBox(math.EmptyBox(), 0.1); !e.IsEmpty() {
		t.Errorf("empty box should stay empty, got %v", e)
	}
}

func TestCaptureFromPixels(t *testing.T) {
	dir := t.TempDir()
	sc := NewScreenshotCapture(filepath.Join(dir, "shots"), "phoneview", nil)
	sc.now = func() time.Time { return time.Date(2024, 5, 1, 12, 30, 0, 0, time.UTC) }

	// 1x2 image: bottom row red, top row blue in GL order.
	pixels := []byte{
		255, 0, 0, 255,
		0, 0, 255, 255,
	}
	path, err := sc.CaptureFromPixels(pixels, 1, 2, "model1")
	if err != nil {
		t.Fatalf("CaptureFromPixels: %v", err)
	}
	if want := filepath.Join(dir, "shots", "phoneview_model1_2024-05-01_12-30-00.000.png"); path != want {
		t.Errorf("path = %q, want %q", path, want)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatal(err)
	}
	top := color.RGBAModel.Convert(img.At(0, 0)).(color.RGBA)
	if top != (color.RGBA{B: 255, A: 255}) {
		t.Errorf("top pixel = %v, want blue (rows flipped)", top)
	}
}

func TestCaptureFilenameTags(t *testing.T) {
	sc := NewScreenshotCapture("", "shot", nil)
	sc.now = func() time.Time { return time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC) }

	tests := []struct {
		tag  string
		want string
	}{
		{"", "shot_2024-05-01_00-00-00.000.png"},
		{"model2", "shot_model2_2024-05-01_00-00-00.000.png"},
		{"/tmp/my phone.glb", "shot_my-phone_2024-05-01_00-00-00.000.png"},
	}
	for _, tt := range tests {
		if got := sc.filename(tt.tag); got != tt.want {
			t.Errorf("filename(%q) = %q, want %q", tt.tag, got, tt.want)
		}
	}
}

func TestCaptureFromPixelsSizeMismatch(t *testing.T) {
	sc := NewScreenshotCapture(t.TempDir(), "x", nil)
	if _, err := sc.CaptureFromPixels(make([]byte, 3), 1, 1, ""); err == nil {
		t.Error("expected size mismatch error")
	}
}

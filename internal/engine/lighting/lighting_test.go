package lighting

import (
	gomath "math"
	"testing"

	"github.com/Faultbox/phoneview/pkg/math"
)

func TestDefaultRig(t *testing.T) {
	r := DefaultRig()

	if got := r.Ambient(); got != [3]float32{0.5, 0.5, 0.5} {
		t.Errorf("Ambient() = %v, want 0.5 gray", got)
	}
	if got := r.Diffuse(); got != [3]float32{0.8, 0.8, 0.8} {
		t.Errorf("Diffuse() = %v, want 0.8 gray", got)
	}

	k := float32(1 / gomath.Sqrt(3))
	if d := r.Direction(); !d.ApproxEqual(math.Vec3{X: k, Y: k, Z: k}, 1e-6) {
		t.Errorf("Direction() = %v, want normalized (1,1,1)", d)
	}
}

func TestSunDirection(t *testing.T) {
	tests := []struct {
		name     string
		lon, lat float32
		want     math.Vec3
	}{
		{"horizon front", 0, 0, math.Vec3{Z: 1}},
		{"horizon right", 90, 0, math.Vec3{X: 1}},
		{"zenith", 0, 90, math.Vec3{Y: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SunDirection(tt.lon, tt.lat); !got.ApproxEqual(tt.want, 1e-6) {
				t.Errorf("SunDirection(%v, %v) = %v, want %v", tt.lon, tt.lat, got, tt.want)
			}
		})
	}
}

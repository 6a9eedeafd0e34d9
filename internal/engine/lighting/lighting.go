// Package lighting provides the light setup the viewer shades models with.
package lighting

import (
	gomath "math"

	"github.com/Faultbox/phoneview/pkg/math"
)

// Rig is an ambient term plus one directional light.
type Rig struct {
	AmbientColor     [3]float32
	AmbientIntensity float32

	DirectionalColor     [3]float32
	DirectionalIntensity float32
	Position             math.Vec3 // the light shines from here towards the origin
}

// DefaultRig returns white ambient 0.5 and a white directional light 0.8
// from (1, 1, 1).
func DefaultRig() Rig {
	return Rig{
		AmbientColor:         [3]float32{1, 1, 1},
		AmbientIntensity:     0.5,
		DirectionalColor:     [3]float32{1, 1, 1},
		DirectionalIntensity: 0.8,
		Position:             math.Vec3{X: 1, Y: 1, Z: 1},
	}
}

// Direction returns the normalized vector pointing towards the light.
func (r Rig) Direction() math.Vec3 {
	return r.Position.Normalize()
}

// Ambient returns the ambient color scaled by its intensity.
func (r Rig) Ambient() [3]float32 {
	return scale(r.AmbientColor, r.AmbientIntensity)
}

// Diffuse returns the directional color scaled by its intensity.
func (r Rig) Diffuse() [3]float32 {
	return scale(r.DirectionalColor, r.DirectionalIntensity)
}

// SunDirection converts longitude/latitude angles in degrees to a light
// direction. Longitude turns around Y, latitude is elevation from the
// horizon.
func SunDirection(longitude, latitude float32) math.Vec3 {
	lonRad := float64(longitude) * gomath.Pi / 180.0
	latRad := float64(latitude) * gomath.Pi / 180.0

	return math.Vec3{
		X: float32(gomath.Cos(latRad) * gomath.Sin(lonRad)),
		Y: float32(gomath.Sin(latRad)),
		Z: float32(gomath.Cos(latRad) * gomath.Cos(lonRad)),
	}
}

func scale(c [3]float32, k float32) [3]float32 {
	return [3]float32{c[0] * k, c[1] * k, c[2] * k}
}

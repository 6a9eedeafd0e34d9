// Package camera provides the orbit camera the viewer looks through.
package camera

import (
	gomath "math"
	"time"

	"github.com/charmbracelet/harmonica"

	"github.com/Faultbox/phoneview/pkg/math"
)

// Projection defaults.
const (
	DefaultFOV  = 45 // degrees
	DefaultNear = 0.1
	DefaultFar  = 1000
)

// ZoomStep is the distance factor of one ZoomIn/ZoomOut step.
const ZoomStep = 0.95

// polarEpsilon keeps the camera off the poles where LookAt degenerates.
const polarEpsilon = 1e-6

// stillVelocity is the angular speed below which damping stops.
const stillVelocity = 1e-5

// axis is one spherical angle with a damped velocity.
type axis struct {
	velocity float64
	accel    float64 // spring velocity for animating velocity toward 0
	spring   harmonica.Spring
}

func newAxis(fps int, factor float32) axis {
	// Factor 0.1 maps to frequency 4, critically damped.
	return axis{spring: harmonica.NewSpring(harmonica.FPS(fps), 40*float64(factor), 1.0)}
}

// step returns the angle delta for this frame and decays the velocity.
func (a *axis) step(damping bool) float64 {
	d := a.velocity
	if !damping {
		a.velocity, a.accel = 0, 0
		return d
	}
	a.velocity, a.accel = a.spring.Update(a.velocity, a.accel, 0)
	if gomath.Abs(a.velocity) < stillVelocity && gomath.Abs(a.accel) < stillVelocity {
		a.velocity, a.accel = 0, 0
	}
	return d
}

func (a *axis) moving() bool {
	return a.velocity != 0
}

// state is what SaveState records and Reset restores.
type state struct {
	target   math.Vec3
	distance float32
	azimuth  float32
	polar    float32
}

// Config holds the orbit constraints and feel.
type Config struct {
	FPS             int
	Damping         bool
	DampingFactor   float32
	MinDistance     float32
	MaxDistance     float32
	MaxPolarAngle   float32 // radians from +Y
	Pan             bool
	RotateSpeed     float32
	AutoRotateSpeed float32
}

// DefaultConfig returns the stock orbit settings.
func DefaultConfig() Config {
	return Config{
		FPS:             60,
		Damping:         true,
		DampingFactor:   0.1,
		MinDistance:     2,
		MaxDistance:     20,
		MaxPolarAngle:   float32(gomath.Pi / 1.5),
		Pan:             true,
		RotateSpeed:     1,
		AutoRotateSpeed: 1,
	}
}

// OrbitCamera orbits around a target point.
type OrbitCamera struct {
	cfg Config

	// Target point to orbit around
	Target math.Vec3

	// Spherical coordinates
	Distance float32 // Distance from target
	Azimuth  float32 // Angle around +Y, 0 looks down -Z (radians)
	Polar    float32 // Angle from +Y (radians)

	FOV        float32 // vertical, degrees
	Near, Far  float32
	viewHeight float32

	azimuthAxis axis
	polarAxis   axis

	autoRotate bool
	saved      state
}

// NewOrbitCamera creates a camera at (0, 0, 10) looking at the origin.
func NewOrbitCamera(cfg Config) *OrbitCamera {
	if cfg.FPS <= 0 {
		cfg.FPS = 60
	}
	c := &OrbitCamera{
		cfg:         cfg,
		Distance:    10,
		Polar:       gomath.Pi / 2,
		FOV:         DefaultFOV,
		Near:        DefaultNear,
		Far:         DefaultFar,
		viewHeight:  720,
		azimuthAxis: newAxis(cfg.FPS, cfg.DampingFactor),
		polarAxis:   newAxis(cfg.FPS, cfg.DampingFactor),
	}
	c.clamp()
	c.SaveState()
	return c
}

// SetViewport sets the drawable height drag distances are measured against.
func (c *OrbitCamera) SetViewport(width, height int) {
	if height > 0 {
		c.viewHeight = float32(height)
	}
}

// Position returns the camera position in world space.
func (c *OrbitCamera) Position() math.Vec3 {
	sinP, cosP := gomath.Sincos(float64(c.Polar))
	sinA, cosA := gomath.Sincos(float64(c.Azimuth))
	offset := math.Vec3{
		X: c.Distance * float32(sinP*sinA),
		Y: c.Distance * float32(cosP),
		Z: c.Distance * float32(sinP*cosA),
	}
	return c.Target.Add(offset)
}

// ViewMatrix returns the view matrix for this camera.
func (c *OrbitCamera) ViewMatrix() math.Mat4 {
	up := math.Vec3{X: 0, Y: 1, Z: 0}
	return math.LookAt(c.Position(), c.Target, up)
}

// Projection returns the perspective projection for aspect.
func (c *OrbitCamera) Projection(aspect float32) math.Mat4 {
	return math.Perspective(math.Radians(c.FOV), aspect, c.Near, c.Far)
}

// Rotate orbits by a pointer drag of (dx, dy) pixels. A drag across the
// full view height is one turn.
func (c *OrbitCamera) Rotate(dx, dy float32) {
	k := 2 * gomath.Pi * float64(c.cfg.RotateSpeed) / float64(c.viewHeight)
	c.azimuthAxis.velocity -= float64(dx) * k
	c.polarAxis.velocity -= float64(dy) * k
	if !c.cfg.Damping {
		c.integrate()
	}
}

// ZoomIn moves the camera one step closer.
func (c *OrbitCamera) ZoomIn() {
	c.dolly(ZoomStep)
}

// ZoomOut moves the camera one step away.
func (c *OrbitCamera) ZoomOut() {
	c.dolly(1 / ZoomStep)
}

// Zoom applies a wheel delta; positive values zoom in.
func (c *OrbitCamera) Zoom(delta float32) {
	if delta == 0 {
		return
	}
	c.dolly(float32(gomath.Pow(ZoomStep, float64(delta))))
}

func (c *OrbitCamera) dolly(scale float32) {
	c.Distance *= scale
	c.clamp()
}

// Pan moves the target by a drag of (dx, dy) pixels in screen space.
func (c *OrbitCamera) Pan(dx, dy float32) {
	if !c.cfg.Pan {
		return
	}
	// World units per pixel at the target distance.
	unit := 2 * c.Distance * float32(gomath.Tan(float64(math.Radians(c.FOV))/2)) / c.viewHeight

	forward := c.Target.Sub(c.Position()).Normalize()
	right := forward.Cross(math.Vec3{Y: 1}).Normalize()
	up := right.Cross(forward)

	c.Target = c.Target.Add(right.Scale(-dx * unit)).Add(up.Scale(dy * unit))
}

// Update advances damping and auto-rotation by dt and reports whether the
// camera moved.
func (c *OrbitCamera) Update(dt time.Duration) bool {
	moved := c.azimuthAxis.moving() || c.polarAxis.moving()
	if c.autoRotate {
		c.Azimuth -= autoRotateAngle(c.cfg.AutoRotateSpeed, dt)
		moved = true
	}
	if moved {
		c.integrate()
	}
	return moved
}

func (c *OrbitCamera) integrate() {
	c.Azimuth += float32(c.azimuthAxis.step(c.cfg.Damping))
	c.Polar += float32(c.polarAxis.step(c.cfg.Damping))
	c.clamp()
}

// Moving reports whether damping is still carrying the camera.
func (c *OrbitCamera) Moving() bool {
	return c.azimuthAxis.moving() || c.polarAxis.moving()
}

func (c *OrbitCamera) clamp() {
	c.Distance = math.Clamp(c.Distance, c.cfg.MinDistance, c.cfg.MaxDistance)
	maxPolar := c.cfg.MaxPolarAngle
	if maxPolar <= 0 || maxPolar > gomath.Pi {
		maxPolar = gomath.Pi
	}
	c.Polar = math.Clamp(c.Polar, polarEpsilon, maxPolar-polarEpsilon)
}

// SaveState records the current view as the one Reset returns to.
func (c *OrbitCamera) SaveState() {
	c.saved = state{target: c.Target, distance: c.Distance, azimuth: c.Azimuth, polar: c.Polar}
}

// Reset returns to the saved view and stops any damping motion.
func (c *OrbitCamera) Reset() {
	c.Target = c.saved.target
	c.Distance = c.saved.distance
	c.Azimuth = c.saved.azimuth
	c.Polar = c.saved.polar
	c.azimuthAxis.velocity, c.azimuthAxis.accel = 0, 0
	c.polarAxis.velocity, c.polarAxis.accel = 0, 0
}

// FitToBounds centres the view on box from the front at a distance that
// shows all of it, and saves that view.
func (c *OrbitCamera) FitToBounds(box math.Box3) {
	if box.IsEmpty() {
		return
	}
	c.Target = box.Center()

	size := box.Size()
	maxSize := max(size.X, size.Y, size.Z)
	halfFOV := float64(math.Radians(c.FOV)) / 2
	c.Distance = maxSize / float32(2*gomath.Tan(halfFOV)) * 1.5

	c.Azimuth = 0
	c.Polar = gomath.Pi / 2
	c.clamp()
	c.SaveState()
}

// AutoRotating reports whether the camera is turning by itself.
func (c *OrbitCamera) AutoRotating() bool {
	return c.autoRotate
}

func (c *OrbitCamera) setAutoRotate(on bool) {
	c.autoRotate = on
}

func (c *OrbitCamera) setAutoRotateSpeed(speed float32) {
	c.cfg.AutoRotateSpeed = speed
}

// autoRotateAngle is one turn per 60 seconds at speed 1.
func autoRotateAngle(speed float32, dt time.Duration) float32 {
	return float32(2 * gomath.Pi / 60 * float64(speed) * dt.Seconds())
}

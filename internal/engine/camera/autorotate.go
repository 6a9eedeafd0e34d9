package camera

// AutoRotate turns the camera around its target while enabled. Pause and
// Resume suspend it around user interaction without changing Enabled.
type AutoRotate struct {
	camera  *OrbitCamera
	enabled bool
	paused  bool
	speed   float32
}

// NewAutoRotate returns a disabled auto-rotator for camera.
func NewAutoRotate(camera *OrbitCamera) *AutoRotate {
	return &AutoRotate{camera: camera, speed: camera.cfg.AutoRotateSpeed}
}

// Toggle flips the enabled state and returns the new one.
func (a *AutoRotate) Toggle() bool {
	a.SetEnabled(!a.enabled)
	return a.enabled
}

// SetEnabled turns auto-rotation on or off.
func (a *AutoRotate) SetEnabled(on bool) {
	a.enabled = on
	a.paused = false
	a.camera.setAutoRotate(on)
}

// SetSpeed sets the rotation speed; 1 is one turn per minute.
func (a *AutoRotate) SetSpeed(speed float32) {
	a.speed = speed
	a.camera.setAutoRotateSpeed(speed)
}

// Speed returns the rotation speed.
func (a *AutoRotate) Speed() float32 {
	return a.speed
}

// Pause stops the camera turning while keeping the enabled state.
func (a *AutoRotate) Pause() {
	if a.enabled {
		a.paused = true
		a.camera.setAutoRotate(false)
	}
}

// Resume restarts a paused rotation.
func (a *AutoRotate) Resume() {
	if a.enabled {
		a.paused = false
		a.camera.setAutoRotate(true)
	}
}

// Enabled reports whether auto-rotation is switched on.
func (a *AutoRotate) Enabled() bool {
	return a.enabled
}

// Paused reports whether an enabled rotation is suspended.
func (a *AutoRotate) Paused() bool {
	return a.paused
}

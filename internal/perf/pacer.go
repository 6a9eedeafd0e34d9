package perf

import "time"

// Pacer picks the delay before the next frame.
type Pacer struct {
	Live time.Duration // frame interval while anything is moving
	Idle time.Duration // frame interval for a static scene
}

// NewPacer returns a pacer for the given live frame rate and idle interval.
func NewPacer(fps int, idle time.Duration) Pacer {
	live := time.Second / 60
	if fps > 0 {
		live = time.Second / time.Duration(fps)
	}
	return Pacer{Live: live, Idle: idle}
}

// Delay drops to the idle interval only when the monitor says the scene is
// static and nothing is animating or auto-rotating.
func (p Pacer) Delay(needsHighFrequency, animating, autoRotating bool) time.Duration {
	if !needsHighFrequency && !animating && !autoRotating {
		return p.Idle
	}
	return p.Live
}

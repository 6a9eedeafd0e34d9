package gesture

import "github.com/Faultbox/phoneview/pkg/math"

// State is the recognizer's current gesture. It is one of Idle, Rotating or
// Pinching.
type State interface {
	isState()
	String() string
}

// Idle means no gesture is in progress.
type Idle struct{}

// Rotating tracks a single-contact drag.
type Rotating struct {
	Start math.Vec2 // contact position at down
	Last  math.Vec2 // position of the last applied move
}

// Pinching tracks a two-contact pinch by contact separation.
type Pinching struct {
	StartDistance float32
	LastDistance  float32
}

func (Idle) isState()     {}
func (Rotating) isState() {}
func (Pinching) isState() {}

func (Idle) String() string     { return "idle" }
func (Rotating) String() string { return "rotating" }
func (Pinching) String() string { return "pinching" }

// classify picks the state for a fresh set of contacts. ok is false when the
// contact count has no gesture.
func classify(points []math.Vec2) (s State, ok bool) {
	switch len(points) {
	case 1:
		return Rotating{Start: points[0], Last: points[0]}, true
	case 2:
		d := points[0].Distance(points[1])
		return Pinching{StartDistance: d, LastDistance: d}, true
	default:
		return Idle{}, false
	}
}

package animation

import (
	"fmt"
	"time"
)

// Kind selects how a definition is driven.
type Kind int

const (
	// KindTween interpolates numeric properties over wall-clock time.
	KindTween Kind = iota + 1
	// KindKeyframe plays an authored clip through a mixer.
	KindKeyframe
)

func (k Kind) String() string {
	switch k {
	case KindTween:
		return "tween"
	case KindKeyframe:
		return "keyframe"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Target is a flat set of numeric properties a tween writes to.
type Target interface {
	Get(key string) (float64, bool)
	Set(key string, v float64)
}

// Values is a map-backed Target.
type Values map[string]float64

// Get implements Target.
func (v Values) Get(key string) (float64, bool) {
	x, ok := v[key]
	return x, ok
}

// Set implements Target.
func (v Values) Set(key string, x float64) {
	v[key] = x
}

// Definition is a named, replayable animation recipe.
type Definition struct {
	Kind Kind

	// Tween fields. Properties in To are animated; each starts from From
	// when present there, otherwise from the target's value at play time.
	Target   Target
	From     Values
	To       Values
	Duration time.Duration
	Easing   string
	OnUpdate func(Target)

	// Keyframe fields.
	Clip   *Clip
	Object ClipTarget
}

// Options adjust a single playback.
type Options struct {
	Duration          time.Duration // overrides the definition when positive
	Easing            string        // overrides the definition when set
	Loop              LoopMode
	ClampWhenFinished bool
	OnComplete        func() // natural completion only
	OnStop            func() // explicit Stop or StopAll only
}

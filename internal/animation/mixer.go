package animation

import (
	"math"
	"time"
)

// LoopMode controls what a keyframe action does at the end of its clip.
type LoopMode int

const (
	// LoopRepeat wraps around to the start. It is the default.
	LoopRepeat LoopMode = iota
	// LoopOnce plays the clip a single time.
	LoopOnce
)

// Mixer advances clip actions bound to one object.
type Mixer interface {
	ClipAction(clip *Clip) Action
	Update(dt time.Duration)
}

// Action is one clip playing on a mixer.
type Action interface {
	SetLoop(mode LoopMode)
	SetClampWhenFinished(clamp bool)
	Play()
	Stop()
	Finished() bool
}

// MixerFactory creates a mixer for an object.
type MixerFactory func(object ClipTarget) Mixer

// NewMixer is the default MixerFactory.
func NewMixer(object ClipTarget) Mixer {
	return &clipMixer{object: object}
}

type clipMixer struct {
	object  ClipTarget
	actions []*clipAction
}

func (m *clipMixer) ClipAction(clip *Clip) Action {
	for _, a := range m.actions {
		if a.clip == clip {
			return a
		}
	}
	a := &clipAction{mixer: m, clip: clip}
	m.actions = append(m.actions, a)
	return a
}

func (m *clipMixer) Update(dt time.Duration) {
	step := float32(dt.Seconds())
	for _, a := range m.actions {
		if a.running {
			a.advance(step)
		}
	}
}

type clipAction struct {
	mixer    *clipMixer
	clip     *Clip
	loop     LoopMode
	clamp    bool
	time     float32
	running  bool
	finished bool
}

func (a *clipAction) SetLoop(mode LoopMode)           { a.loop = mode }
func (a *clipAction) SetClampWhenFinished(clamp bool) { a.clamp = clamp }
func (a *clipAction) Finished() bool                  { return a.finished }

func (a *clipAction) Play() {
	a.time = 0
	a.running = true
	a.finished = false
	a.clip.Apply(a.mixer.object, 0)
}

func (a *clipAction) Stop() {
	a.running = false
	a.time = 0
}

func (a *clipAction) advance(dt float32) {
	d := a.clip.Duration
	a.time += dt

	if d <= 0 {
		a.clip.Apply(a.mixer.object, 0)
		if a.loop == LoopOnce {
			a.finish()
		}
		return
	}

	if a.time >= d {
		if a.loop == LoopRepeat {
			a.time = float32(math.Mod(float64(a.time), float64(d)))
		} else {
			a.time = d
			a.finish()
			return
		}
	}
	a.clip.Apply(a.mixer.object, a.time)
}

// finish ends a play-once action, holding the last pose when clamped and
// returning to the first pose otherwise.
func (a *clipAction) finish() {
	a.running = false
	a.finished = true
	if a.clamp {
		a.clip.Apply(a.mixer.object, a.clip.Duration)
	} else {
		a.clip.Apply(a.mixer.object, 0)
	}
}

package animation

import (
	"slices"
	"time"
)

type tween struct {
	target   Target
	keys     []string
	from     map[string]float64
	to       map[string]float64
	start    time.Time
	duration time.Duration
	ease     Easing
	onUpdate func(Target)
}

func newTween(def Definition, target Target, duration time.Duration, ease Easing, start time.Time) *tween {
	tw := &tween{
		target:   target,
		keys:     make([]string, 0, len(def.To)),
		from:     make(map[string]float64, len(def.To)),
		to:       make(map[string]float64, len(def.To)),
		start:    start,
		duration: duration,
		ease:     ease,
		onUpdate: def.OnUpdate,
	}
	for k, end := range def.To {
		tw.keys = append(tw.keys, k)
		tw.to[k] = end
		if v, ok := def.From[k]; ok {
			tw.from[k] = v
		} else if v, ok := target.Get(k); ok {
			tw.from[k] = v
		}
	}
	slices.Sort(tw.keys)
	return tw
}

// sample writes the values for now into the target and reports whether the
// tween reached its end.
func (tw *tween) sample(now time.Time) bool {
	p := 1.0
	if tw.duration > 0 {
		p = float64(now.Sub(tw.start)) / float64(tw.duration)
		p = min(max(p, 0), 1)
	}
	e := tw.ease(p)
	if p == 1 {
		e = 1
	}
	for _, k := range tw.keys {
		from, to := tw.from[k], tw.to[k]
		tw.target.Set(k, from+(to-from)*e)
	}
	if tw.onUpdate != nil {
		tw.onUpdate(tw.target)
	}
	return p >= 1
}

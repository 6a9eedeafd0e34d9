// Package gesture turns raw pointer contacts into camera intents: one-finger
// drags rotate, two-finger pinches zoom.
package gesture

import (
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/phoneview/internal/logger"
	"github.com/Faultbox/phoneview/pkg/math"
)

// Controller receives the camera intents the recognizer produces.
type Controller interface {
	Rotate(dx, dy float32)
	ZoomIn()
	ZoomOut()
}

// ActivitySink is told about every move the recognizer applies.
type ActivitySink interface {
	MarkActivity(t time.Time)
}

const (
	DefaultThrottle      = 16 * time.Millisecond
	DefaultPinchOutRatio = 1.05
	DefaultPinchInRatio  = 0.95
)

// Stats counts move handling outcomes.
type Stats struct {
	Applied   int // moves forwarded to the controller
	Throttled int // moves dropped inside the throttle window
	Ignored   int // moves whose contact count did not match the state
}

// Recognizer is a small state machine over pointer down/move/up events.
// It is not safe for concurrent use; feed it from the frame loop.
type Recognizer struct {
	camera   Controller
	activity ActivitySink
	log      *zap.Logger
	now      func() time.Time

	throttle time.Duration
	pinchOut float32
	pinchIn  float32

	state    State
	lastMove time.Time
	stats    Stats
}

// Option configures a Recognizer.
type Option func(*Recognizer)

// WithClock sets the time source used for throttling and activity stamps.
func WithClock(now func() time.Time) Option {
	return func(r *Recognizer) { r.now = now }
}

// WithThrottle sets the minimum spacing between processed moves.
func WithThrottle(d time.Duration) Option {
	return func(r *Recognizer) { r.throttle = d }
}

// WithPinchRatios sets the separation ratios that trigger zoom steps.
func WithPinchRatios(out, in float32) Option {
	return func(r *Recognizer) {
		r.pinchOut = out
		r.pinchIn = in
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(r *Recognizer) { r.log = l }
}

// New creates a recognizer driving camera. activity may be nil.
func New(camera Controller, activity ActivitySink, opts ...Option) *Recognizer {
	r := &Recognizer{
		camera:   camera,
		activity: activity,
		now:      time.Now,
		throttle: DefaultThrottle,
		pinchOut: DefaultPinchOutRatio,
		pinchIn:  DefaultPinchInRatio,
		state:    Idle{},
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.log == nil {
		r.log = logger.Named("gesture")
	}
	return r
}

// State returns the current gesture state.
func (r *Recognizer) State() State {
	return r.state
}

// Stats returns move handling counters.
func (r *Recognizer) Stats() Stats {
	return r.stats
}

// Reset drops any gesture in progress.
func (r *Recognizer) Reset() {
	r.state = Idle{}
	r.lastMove = time.Time{}
}

// PointerDown starts a gesture from the full set of active contacts.
// Contact counts other than one or two leave the state unchanged.
func (r *Recognizer) PointerDown(points []math.Vec2) {
	s, ok := classify(points)
	if !ok {
		r.log.Debug("pointer down ignored", zap.Int("contacts", len(points)))
		return
	}
	r.transition(s)
}

// PointerMove applies a move of the active contacts. Moves arriving within
// the throttle window of the last processed move are dropped.
func (r *Recognizer) PointerMove(points []math.Vec2) {
	now := r.now()
	if !r.lastMove.IsZero() && now.Sub(r.lastMove) < r.throttle {
		r.stats.Throttled++
		return
	}
	// Stamped before the state check: an ignored move still opens a window.
	r.lastMove = now

	switch s := r.state.(type) {
	case Rotating:
		if len(points) != 1 {
			r.stats.Ignored++
			return
		}
		cur := points[0]
		d := cur.Sub(s.Last)
		r.camera.Rotate(d.X, d.Y)
		s.Last = cur
		r.state = s

	case Pinching:
		if len(points) != 2 {
			r.stats.Ignored++
			return
		}
		cur := points[0].Distance(points[1])
		if s.LastDistance > 0 {
			ratio := cur / s.LastDistance
			switch {
			case ratio > r.pinchOut:
				r.camera.ZoomOut()
			case ratio < r.pinchIn:
				r.camera.ZoomIn()
			}
		}
		s.LastDistance = cur
		r.state = s

	default:
		r.stats.Ignored++
		return
	}

	r.stats.Applied++
	if r.activity != nil {
		r.activity.MarkActivity(now)
	}
}

// PointerUp reclassifies from the contacts still down. Releasing every
// contact returns to Idle.
func (r *Recognizer) PointerUp(remaining []math.Vec2) {
	s, ok := classify(remaining)
	if !ok {
		s = Idle{}
	}
	r.transition(s)
}

func (r *Recognizer) transition(s State) {
	if r.state.String() != s.String() {
		r.log.Debug("gesture transition",
			zap.Stringer("from", r.state),
			zap.Stringer("to", s))
	}
	r.state = s
}

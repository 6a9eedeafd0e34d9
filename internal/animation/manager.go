// Package animation owns every running animation in the viewer: a registry
// of named definitions, the set of active playbacks, and the per-frame
// update that advances them.
//
// Two kinds are supported. Tweens interpolate numeric properties and are
// sampled against the manager clock, so they progress by elapsed wall time
// regardless of the frame delta. Keyframe playbacks drive authored clips
// through a Mixer and advance by the delta passed to Update.
package animation

import (
	"cmp"
	"fmt"
	"slices"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/phoneview/internal/logger"
)

// Manager is the animation lifecycle manager. It is not safe for concurrent
// use; call it from the frame loop.
type Manager struct {
	log      *zap.Logger
	now      func() time.Time
	strict   bool
	newMixer MixerFactory

	defs   map[string]Definition
	active map[HandleID]*Handle
	nextID HandleID
}

// Option configures a Manager.
type Option func(*Manager)

// WithClock sets the clock tweens are sampled against.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(m *Manager) { m.log = l }
}

// WithStrict makes Register reject names that are already registered.
func WithStrict() Option {
	return func(m *Manager) { m.strict = true }
}

// WithMixerFactory replaces the built-in clip mixer.
func WithMixerFactory(f MixerFactory) Option {
	return func(m *Manager) { m.newMixer = f }
}

// NewManager creates an empty manager.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		now:      time.Now,
		newMixer: NewMixer,
		defs:     make(map[string]Definition),
		active:   make(map[HandleID]*Handle),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.log == nil {
		m.log = logger.Named("animation")
	}
	return m
}

// Register stores def under name. A later registration under the same name
// replaces the earlier one unless the manager is strict.
func (m *Manager) Register(name string, def Definition) error {
	if name == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidDefinition)
	}
	if _, exists := m.defs[name]; exists {
		if m.strict {
			return fmt.Errorf("%w: %q", ErrDuplicateRegistration, name)
		}
		m.log.Debug("animation replaced", zap.String("name", name))
	}
	m.defs[name] = def
	return nil
}

// Unregister removes a definition. Playbacks already started keep running.
func (m *Manager) Unregister(name string) {
	delete(m.defs, name)
}

// Registered reports whether name has a definition.
func (m *Manager) Registered(name string) bool {
	_, ok := m.defs[name]
	return ok
}

// Names returns the registered names in sorted order.
func (m *Manager) Names() []string {
	names := make([]string, 0, len(m.defs))
	for name := range m.defs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Play starts the named animation. Failures are logged and yield the null
// handle; the registry and active set are left untouched.
func (m *Manager) Play(name string, opts Options) *Handle {
	h, err := m.PlayE(name, opts)
	if err != nil {
		m.log.Warn("cannot play animation", zap.String("name", name), zap.Error(err))
		return nil
	}
	return h
}

// PlayE is Play with the failure returned instead of logged.
func (m *Manager) PlayE(name string, opts Options) (*Handle, error) {
	def, ok := m.defs[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, name)
	}

	var (
		h   *Handle
		err error
	)
	switch def.Kind {
	case KindTween:
		h = m.startTween(name, def, opts)
	case KindKeyframe:
		h, err = m.startKeyframe(name, def, opts)
	default:
		err = fmt.Errorf("%w: %v", ErrUnsupportedKind, def.Kind)
	}
	if err != nil {
		return nil, fmt.Errorf("animation %q: %w", name, err)
	}

	h.onComplete = opts.OnComplete
	h.onStop = opts.OnStop
	m.active[h.id] = h
	m.log.Debug("animation started",
		zap.String("name", name),
		zap.Stringer("kind", h.kind),
		zap.Uint64("id", uint64(h.id)))
	return h, nil
}

func (m *Manager) newHandle(name string, kind Kind) *Handle {
	m.nextID++
	return &Handle{id: m.nextID, name: name, kind: kind, active: true, m: m}
}

func (m *Manager) startTween(name string, def Definition, opts Options) *Handle {
	target := def.Target
	if target == nil {
		target = Values{}
	}
	duration := def.Duration
	if opts.Duration > 0 {
		duration = opts.Duration
	}
	easeID := def.Easing
	if opts.Easing != "" {
		easeID = opts.Easing
	}
	ease, ok := LookupEasing(easeID)
	if !ok {
		m.log.Warn("unknown easing, using linear",
			zap.String("name", name),
			zap.String("easing", easeID))
		ease, _ = LookupEasing(EaseLinear)
	}

	h := m.newHandle(name, KindTween)
	h.tween = newTween(def, target, duration, ease, m.now())
	return h
}

func (m *Manager) startKeyframe(name string, def Definition, opts Options) (*Handle, error) {
	if def.Clip == nil || def.Object == nil {
		return nil, fmt.Errorf("%w: keyframe needs a clip and an object", ErrInvalidDefinition)
	}
	mixer := m.newMixer(def.Object)
	action := mixer.ClipAction(def.Clip)
	action.SetLoop(opts.Loop)
	action.SetClampWhenFinished(opts.ClampWhenFinished)
	action.Play()

	h := m.newHandle(name, KindKeyframe)
	h.mixer = mixer
	h.action = action
	return h, nil
}

// Stop removes h from the active set and fires its stop callback once.
// Nil, foreign and already stopped handles are ignored.
func (m *Manager) Stop(h *Handle) {
	if h == nil || h.m != m {
		return
	}
	if _, ok := m.active[h.id]; !ok {
		return
	}
	delete(m.active, h.id)
	h.active = false
	if h.action != nil {
		h.action.Stop()
	}
	m.call(h, "stop", h.onStop)
}

// StopAll stops every playback that was active when the call began. A
// panicking stop callback is logged and does not interrupt the pass.
// Playbacks started by callbacks during the pass are left running.
func (m *Manager) StopAll() {
	handles := m.snapshot()
	for _, h := range handles {
		m.Stop(h)
	}
	if len(handles) > 0 {
		m.log.Debug("stopped all animations", zap.Int("count", len(handles)))
	}
}

// HasActiveAnimations reports whether anything is playing.
func (m *Manager) HasActiveAnimations() bool {
	return len(m.active) > 0
}

// ActiveCount returns the number of active playbacks.
func (m *Manager) ActiveCount() int {
	return len(m.active)
}

// Update advances keyframe mixers by dt and samples tweens at the current
// clock time. Finished playbacks leave the active set before their
// completion callback runs.
func (m *Manager) Update(dt time.Duration) {
	if len(m.active) == 0 {
		return
	}
	now := m.now()
	for _, h := range m.snapshot() {
		if !h.active {
			continue
		}
		var done bool
		switch h.kind {
		case KindTween:
			done = h.tween.sample(now)
		case KindKeyframe:
			h.mixer.Update(dt)
			done = h.action.Finished()
		}
		if done {
			m.complete(h)
		}
	}
}

func (m *Manager) complete(h *Handle) {
	delete(m.active, h.id)
	h.active = false
	m.log.Debug("animation finished", zap.String("name", h.name), zap.Uint64("id", uint64(h.id)))
	m.call(h, "complete", h.onComplete)
}

// snapshot returns the active handles ordered by start.
func (m *Manager) snapshot() []*Handle {
	out := make([]*Handle, 0, len(m.active))
	for _, h := range m.active {
		out = append(out, h)
	}
	slices.SortFunc(out, func(a, b *Handle) int {
		return cmp.Compare(a.id, b.id)
	})
	return out
}

func (m *Manager) call(h *Handle, what string, fn func()) {
	if fn == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			err, ok := r.(error)
			if !ok {
				err = fmt.Errorf("%v", r)
			}
			m.log.Error("animation callback panicked",
				zap.String("name", h.name),
				zap.String("callback", what),
				zap.Error(err))
		}
	}()
	fn()
}

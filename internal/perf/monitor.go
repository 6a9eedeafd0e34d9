// Package perf decides how often the viewer needs to render. The Monitor
// counts frames for an FPS readout and tracks how long the scene has been
// quiet; the Pacer turns that verdict into a frame delay.
package perf

import (
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/phoneview/internal/logger"
)

// DefaultStaticThreshold is how long the scene must be quiet before the
// monitor reports it static.
const DefaultStaticThreshold = 5 * time.Second

// Source reports ongoing activity that does not arrive as discrete signals,
// such as running animations or auto-rotation.
type Source func() bool

// Monitor tracks frame rate and scene activity. Call Update exactly once per
// rendered frame. It never schedules frames itself.
type Monitor struct {
	log       *zap.Logger
	now       func() time.Time
	threshold time.Duration
	sources   []Source

	created      time.Time
	lastActivity time.Time
	lastSample   time.Time
	frames       int
	fps          int
	static       bool
}

// Option configures a Monitor.
type Option func(*Monitor)

// WithClock sets the time source.
func WithClock(now func() time.Time) Option {
	return func(m *Monitor) { m.now = now }
}

// WithThreshold sets the quiet time after which the scene is static.
func WithThreshold(d time.Duration) Option {
	return func(m *Monitor) { m.threshold = d }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(m *Monitor) { m.log = l }
}

// NewMonitor creates a monitor. The scene counts as active at creation.
func NewMonitor(opts ...Option) *Monitor {
	m := &Monitor{
		now:       time.Now,
		threshold: DefaultStaticThreshold,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.log == nil {
		m.log = logger.Named("perf")
	}
	now := m.now()
	m.created = now
	m.lastActivity = now
	m.lastSample = now
	return m
}

// AddSource registers a polled activity source.
func (m *Monitor) AddSource(s Source) {
	m.sources = append(m.sources, s)
}

// MarkActivity records user or scene activity at t. Earlier timestamps than
// the latest recorded one are ignored.
func (m *Monitor) MarkActivity(t time.Time) {
	if t.After(m.lastActivity) {
		m.lastActivity = t
	}
}

// Touch records activity now.
func (m *Monitor) Touch() {
	m.MarkActivity(m.now())
}

// Update counts a frame and reports whether the scene still needs
// full-rate rendering.
func (m *Monitor) Update() bool {
	now := m.now()

	m.frames++
	if now.Sub(m.lastSample) >= time.Second {
		m.fps = m.frames
		m.frames = 0
		m.lastSample = now
	}

	for _, active := range m.sources {
		if active() {
			m.MarkActivity(now)
			break
		}
	}

	static := now.Sub(m.lastActivity) > m.threshold
	if static != m.static {
		m.log.Debug("render frequency changed",
			zap.Bool("static", static),
			zap.Duration("quiet", now.Sub(m.lastActivity)))
		m.static = static
	}
	return !static
}

// FPS returns the frame count of the last full one-second window.
func (m *Monitor) FPS() int {
	return m.fps
}

// IsStatic returns the verdict of the last Update.
func (m *Monitor) IsStatic() bool {
	return m.static
}

// Elapsed returns the time since the monitor was created.
func (m *Monitor) Elapsed() time.Duration {
	return m.now().Sub(m.created)
}

// LastActivity returns the most recent activity time.
func (m *Monitor) LastActivity() time.Time {
	return m.lastActivity
}

// Package viewer ties the phone model, its camera and the animation and
// render-pacing machinery into one session driven by a frame loop. It has
// no window or GL dependency; the app package feeds it events and draws
// what it holds.
package viewer

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/phoneview/internal/animation"
	"github.com/Faultbox/phoneview/internal/config"
	"github.com/Faultbox/phoneview/internal/engine/camera"
	"github.com/Faultbox/phoneview/internal/engine/picking"
	"github.com/Faultbox/phoneview/internal/explode"
	"github.com/Faultbox/phoneview/internal/gesture"
	"github.com/Faultbox/phoneview/internal/logger"
	"github.com/Faultbox/phoneview/internal/perf"
	"github.com/Faultbox/phoneview/internal/phone"
	"github.com/Faultbox/phoneview/internal/prefs"
	"github.com/Faultbox/phoneview/internal/remote"
	"github.com/Faultbox/phoneview/internal/scene"
	"github.com/Faultbox/phoneview/pkg/math"
)

// ClipPrefix names the animations registered for a model's authored clips.
const ClipPrefix = "clip:"

// A press that stays within clickSlop pixels and clickTime is a click.
const (
	clickSlop = 5
	clickTime = 300 * time.Millisecond
)

// PointerKind is the phase of a pointer event.
type PointerKind int

const (
	PointerDown PointerKind = iota
	PointerMove
	PointerUp
)

// PointerEvent is one contact change in window pixels. Mouse buttons use a
// negative ID so they never collide with finger IDs.
type PointerEvent struct {
	Kind PointerKind
	ID   int64
	X, Y float32
}

// Effect lists the work a handled action leaves for the host.
type Effect struct {
	Load             *phone.Entry // start loading this model
	ToggleFullscreen bool
	Screenshot       bool
	Quit             bool
}

// FrameResult is the outcome of one frame update.
type FrameResult struct {
	Delay  time.Duration // wait before the next frame
	FPS    int
	Static bool
}

// Session is the viewer state driven by one frame loop. It is not safe for
// concurrent use.
type Session struct {
	log *zap.Logger
	now func() time.Time

	Camera     *camera.OrbitCamera
	AutoRotate *camera.AutoRotate
	Anims      *animation.Manager
	Monitor    *perf.Monitor
	Gestures   *gesture.Recognizer
	Explode    *explode.Choreographer
	Phone      *phone.Viewer
	Selector   *phone.Selector
	Card       *phone.InfoCard

	pacer         perf.Pacer
	tracker       *gesture.Tracker
	prefs         *prefs.Store
	explodeFactor float32
	measure       CardMeasure

	width, height int
	entry         phone.Entry
	clips         []string
	press         press
	lastFrame     FrameResult
}

type press struct {
	active bool
	pos    math.Vec2
	at     time.Time
}

// Option configures a Session.
type Option func(*sessionOptions)

type sessionOptions struct {
	now     func() time.Time
	log     *zap.Logger
	prefs   *prefs.Store
	measure CardMeasure
}

// CardMeasure returns the pixel size the info card needs for lines.
type CardMeasure func(lines []string) (width, height float32)

// WithClock sets the time source shared by every component.
func WithClock(now func() time.Time) Option {
	return func(o *sessionOptions) { o.now = now }
}

// WithLogger sets the session logger.
func WithLogger(l *zap.Logger) Option {
	return func(o *sessionOptions) { o.log = l }
}

// WithPrefs sets the preference store. Without one, preferences live in
// memory only.
func WithPrefs(s *prefs.Store) Option {
	return func(o *sessionOptions) { o.prefs = s }
}

// WithCardMeasure sizes the info card from its text before placing it.
func WithCardMeasure(m CardMeasure) Option {
	return func(o *sessionOptions) { o.measure = m }
}

// NewSession builds a session from cfg and catalog.
func NewSession(cfg *config.Config, catalog *phone.Catalog, opts ...Option) *Session {
	o := sessionOptions{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	if o.log == nil {
		o.log = logger.Named("viewer")
	}
	if o.prefs == nil {
		o.prefs = prefs.New(nil, o.log)
	}

	cam := camera.NewOrbitCamera(camera.Config{
		FPS:             cfg.Window.FPS,
		Damping:         cfg.Controls.Damping,
		DampingFactor:   cfg.Controls.DampingFactor,
		MinDistance:     cfg.Controls.MinDistance,
		MaxDistance:     cfg.Controls.MaxDistance,
		MaxPolarAngle:   cfg.Controls.MaxPolarAngle,
		Pan:             cfg.Controls.Pan,
		RotateSpeed:     cfg.Controls.RotateSpeed,
		AutoRotateSpeed: cfg.Controls.AutoRotateSpeed,
	})
	cam.SetViewport(cfg.Window.Width, cfg.Window.Height)

	animOpts := []animation.Option{animation.WithClock(o.now), animation.WithLogger(o.log.Named("animation"))}
	if cfg.Viewer.StrictAnimations {
		animOpts = append(animOpts, animation.WithStrict())
	}
	anims := animation.NewManager(animOpts...)

	monitor := perf.NewMonitor(
		perf.WithClock(o.now),
		perf.WithThreshold(cfg.Viewer.StaticThreshold),
		perf.WithLogger(o.log.Named("perf")),
	)

	s := &Session{
		log:           o.log,
		now:           o.now,
		Camera:        cam,
		AutoRotate:    camera.NewAutoRotate(cam),
		Anims:         anims,
		Monitor:       monitor,
		Explode:       explode.New(anims, explode.WithDuration(cfg.Viewer.ExplodeDuration), explode.WithLogger(o.log.Named("explode"))),
		Phone:         phone.NewViewer(o.log.Named("phone")),
		Selector:      phone.NewSelector(catalog, o.log.Named("phone")),
		Card:          phone.NewInfoCard(phone.DefaultCardWidth, phone.DefaultCardHeight),
		pacer:         perf.NewPacer(cfg.Window.FPS, cfg.Viewer.IdleFrameInterval),
		tracker:       gesture.NewTracker(),
		prefs:         o.prefs,
		explodeFactor: cfg.Viewer.ExplodeFactor,
		measure:       o.measure,
		width:         cfg.Window.Width,
		height:        cfg.Window.Height,
	}
	s.Gestures = gesture.New(cam, monitor,
		gesture.WithClock(o.now),
		gesture.WithThrottle(cfg.Controls.MoveThrottle),
		gesture.WithPinchRatios(cfg.Controls.PinchOutRatio, cfg.Controls.PinchInRatio),
		gesture.WithLogger(o.log.Named("gesture")),
	)
	s.Card.SetViewport(float32(cfg.Window.Width), float32(cfg.Window.Height))
	monitor.AddSource(anims.HasActiveAnimations)
	monitor.AddSource(s.AutoRotate.Enabled)

	p := o.prefs.Get()
	s.AutoRotate.SetSpeed(p.SpeedOr(cfg.Controls.AutoRotateSpeed))
	s.AutoRotate.SetEnabled(p.AutoRotateOr(cfg.Controls.AutoRotate))
	return s
}

// SetViewport records the window size used for picking and drag scaling.
func (s *Session) SetViewport(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	s.width, s.height = width, height
	s.Camera.SetViewport(width, height)
	s.Card.SetViewport(float32(width), float32(height))
	s.Monitor.Touch()
}

// Viewport returns the window size.
func (s *Session) Viewport() (width, height int) {
	return s.width, s.height
}

// InitialEntry picks the model to show first: arg when set, then the last
// model from preferences, then the first catalog entry. Paths outside the
// catalog are accepted for arg and the remembered model.
func (s *Session) InitialEntry(arg string) (phone.Entry, error) {
	if arg != "" {
		return s.resolve(arg)
	}
	if last := s.prefs.Get().LastModel; last != "" {
		if e, err := s.resolve(last); err == nil {
			return e, nil
		}
		s.log.Debug("remembered model unavailable", zap.String("model", last))
	}
	return s.Selector.Next()
}

func (s *Session) resolve(arg string) (phone.Entry, error) {
	e, err := s.Selector.Catalog().Resolve(arg)
	if err != nil {
		return phone.Entry{}, err
	}
	if s.Selector.Catalog().Index(e.ID) >= 0 {
		return s.Selector.Select(e.ID)
	}
	return e, nil
}

// SetModel replaces the model on display. Running animations are stopped,
// the previous model's explode table and clips are dropped, and the camera
// is fitted to the new model.
func (s *Session) SetModel(entry phone.Entry, model *scene.Model) error {
	s.Anims.StopAll()
	s.Explode.Clear()
	for _, name := range s.clips {
		s.Anims.Unregister(name)
	}
	s.clips = nil
	s.Card.Hide()

	s.entry = entry
	s.Phone.Set(model)
	if model == nil {
		return nil
	}

	var errs []error
	if err := s.Explode.Register(model.Root, s.explodeFactor); err != nil {
		errs = append(errs, err)
	}
	for _, clip := range model.Clips {
		name := ClipPrefix + clip.Name
		err := s.Anims.Register(name, animation.Definition{
			Kind:   animation.KindKeyframe,
			Clip:   clip,
			Object: model,
		})
		if err != nil {
			errs = append(errs, err)
			continue
		}
		s.clips = append(s.clips, name)
	}

	s.Camera.FitToBounds(model.Bounds())
	if entry.ID != "" {
		s.prefs.SetLastModel(entry.ID)
	}
	s.Monitor.Touch()
	s.log.Info("model ready",
		zap.String("id", entry.ID),
		zap.Int("parts", len(s.Phone.PartNames())),
		zap.Int("clips", len(s.clips)))
	return errors.Join(errs...)
}

// Entry returns the catalog entry of the model on display.
func (s *Session) Entry() phone.Entry {
	return s.entry
}

// Clips returns the animation names registered for the current model.
func (s *Session) Clips() []string {
	return append([]string(nil), s.clips...)
}

// PlayClip plays an authored clip of the current model on repeat.
func (s *Session) PlayClip(name string) (*animation.Handle, error) {
	if !strings.HasPrefix(name, ClipPrefix) {
		name = ClipPrefix + name
	}
	return s.Anims.PlayE(name, animation.Options{Loop: animation.LoopRepeat})
}

// HandlePointer feeds a contact change to the gesture recognizer. A short
// single-contact press without movement picks the part under it.
func (s *Session) HandlePointer(ev PointerEvent) {
	pos := math.Vec2{X: ev.X, Y: ev.Y}
	switch ev.Kind {
	case PointerDown:
		points := s.tracker.Down(ev.ID, pos)
		s.Gestures.PointerDown(points)
		s.AutoRotate.Pause()
		s.Monitor.Touch()
		s.press = press{active: len(points) == 1, pos: pos, at: s.now()}

	case PointerMove:
		points, ok := s.tracker.Move(ev.ID, pos)
		if !ok {
			return
		}
		s.Gestures.PointerMove(points)
		if s.press.active && pos.Distance(s.press.pos) > clickSlop {
			s.press.active = false
		}

	case PointerUp:
		remaining := s.tracker.Up(ev.ID)
		s.Gestures.PointerUp(remaining)
		if len(remaining) > 0 {
			s.press.active = false
			return
		}
		s.AutoRotate.Resume()
		s.Monitor.Touch()
		if s.press.active && s.now().Sub(s.press.at) <= clickTime {
			s.Pick(ev.X, ev.Y)
		}
		s.press.active = false
	}
}

// HandlePan moves the camera target by a drag of (dx, dy) pixels.
func (s *Session) HandlePan(dx, dy float32) {
	s.Camera.Pan(dx, dy)
	s.Monitor.Touch()
}

// HandleWheel zooms by a wheel delta; positive zooms in.
func (s *Session) HandleWheel(delta float32) {
	if delta == 0 {
		return
	}
	s.Camera.Zoom(delta)
	s.Monitor.Touch()
}

// HandleKey applies an action and reports what the host must do.
func (s *Session) HandleKey(a Action) Effect {
	s.Monitor.Touch()
	if i, ok := a.ModelIndex(); ok {
		return s.load(s.Selector.SelectIndex(i))
	}

	switch a {
	case ActionResetView:
		s.Camera.Reset()
	case ActionToggleAutoRotate:
		on := s.AutoRotate.Toggle()
		s.prefs.SetAutoRotate(on, s.AutoRotate.Speed())
		s.log.Debug("auto-rotate", zap.Bool("enabled", on))
	case ActionToggleFullscreen:
		return Effect{ToggleFullscreen: true}
	case ActionToggleExplode:
		s.Explode.Toggle()
	case ActionExplode:
		s.Explode.Explode()
	case ActionImplode:
		s.Explode.Implode()
	case ActionNextPart:
		s.highlightNext()
	case ActionToggleInfo:
		s.toggleInfo()
	case ActionEscape:
		if s.Phone.Highlighted() != nil || s.Card.Visible() {
			s.ClearSelection()
			return Effect{}
		}
		return Effect{Quit: true}
	case ActionNextModel:
		return s.load(s.Selector.Next())
	case ActionScreenshot:
		return Effect{Screenshot: true}
	default:
		s.log.Debug("unhandled action", zap.Stringer("action", a))
	}
	return Effect{}
}

func (s *Session) load(e phone.Entry, err error) Effect {
	if err != nil {
		s.log.Warn("model selection failed", zap.Error(err))
		return Effect{}
	}
	if e.ID == s.entry.ID && s.Phone.Current() != nil {
		return Effect{}
	}
	return Effect{Load: &e}
}

// HandleRemote applies a message from a remote client. Remote contacts
// arrive as whole point lists and go straight to the recognizer.
func (s *Session) HandleRemote(m remote.Message) (Effect, error) {
	points := make([]math.Vec2, len(m.Points))
	for i, p := range m.Points {
		points[i] = math.Vec2{X: p.X, Y: p.Y}
	}
	switch m.Type {
	case remote.TypeDown:
		s.Gestures.PointerDown(points)
		s.AutoRotate.Pause()
	case remote.TypeMove:
		s.Gestures.PointerMove(points)
	case remote.TypeUp:
		s.Gestures.PointerUp(points)
		if len(points) == 0 {
			s.AutoRotate.Resume()
		}
	case remote.TypeAction:
		if strings.HasPrefix(m.Action, ClipPrefix) {
			_, err := s.PlayClip(m.Action)
			return Effect{}, err
		}
		a, err := ParseAction(m.Action)
		if err != nil {
			return Effect{}, err
		}
		return s.HandleKey(a), nil
	default:
		return Effect{}, fmt.Errorf("unknown message type %q", m.Type)
	}
	s.Monitor.Touch()
	return Effect{}, nil
}

// ApplyOrientation sets the model orientation from an external sensor.
func (s *Session) ApplyOrientation(q math.Quat) {
	if s.Phone.Current() == nil {
		return
	}
	s.Phone.SetOrientation(q)
	s.Monitor.Touch()
}

// Pick highlights the part under window position (x, y) and shows its
// card. A miss clears the selection. It returns the picked part name.
func (s *Session) Pick(x, y float32) string {
	model := s.Phone.Current()
	if model == nil {
		return ""
	}
	w, h := float32(s.width), float32(s.height)
	invViewProj := s.Camera.Projection(w / h).Mul(s.Camera.ViewMatrix()).Inverse()
	ray := picking.ScreenToRay(x, y, w, h, invViewProj)

	hit, ok := picking.Pick(ray, model.Root)
	if !ok {
		s.ClearSelection()
		return ""
	}
	part := s.Phone.PartOf(hit.Node)
	if part == nil || !s.Phone.Highlight(part.Name) {
		s.ClearSelection()
		return ""
	}
	s.showCard(phone.Describe(s.entry, part), x, y)
	s.log.Debug("part picked", zap.String("part", part.Name), zap.Float32("distance", hit.Distance))
	return part.Name
}

// ClearSelection removes the highlight and hides the card.
func (s *Session) ClearSelection() {
	s.Phone.ResetHighlight()
	s.Card.Hide()
}

func (s *Session) highlightNext() {
	name := s.Phone.HighlightNext()
	if name == "" {
		s.Card.Hide()
		return
	}
	if s.Card.Visible() {
		pos := s.Card.Position()
		s.showCard(phone.Describe(s.entry, s.Phone.Part(name)), pos.X, pos.Y)
	}
}

func (s *Session) toggleInfo() {
	n := s.Phone.Highlighted()
	if n == nil {
		s.Card.Hide()
		return
	}
	if s.Card.Visible() {
		s.Card.Hide()
		return
	}
	s.showCard(phone.Describe(s.entry, n), float32(s.width)/2, float32(s.height)/2)
}

func (s *Session) showCard(info phone.PartInfo, x, y float32) {
	if s.measure != nil {
		s.Card.SetSize(s.measure(phone.CardLines(info)))
	}
	s.Card.Show(info, x, y)
}

// Frame advances the camera and animations by dt, samples the render
// monitor and returns the delay before the next frame.
func (s *Session) Frame(dt time.Duration) FrameResult {
	s.Camera.Update(dt)
	if s.Camera.Moving() {
		s.Monitor.Touch()
	}
	s.Anims.Update(dt)

	live := s.Monitor.Update()
	s.lastFrame = FrameResult{
		Delay:  s.pacer.Delay(live, s.Anims.HasActiveAnimations(), s.AutoRotate.Enabled()),
		FPS:    s.Monitor.FPS(),
		Static: s.Monitor.IsStatic(),
	}
	return s.lastFrame
}

// SavePrefs writes preferences to disk.
func (s *Session) SavePrefs() error {
	return s.prefs.Save()
}

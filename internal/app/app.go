// Package app hosts the viewer session in an SDL window: it owns the GL
// renderers, polls input, loads models in the background and runs the
// paced frame loop.
package app

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/phoneview/internal/config"
	"github.com/Faultbox/phoneview/internal/engine/debug"
	"github.com/Faultbox/phoneview/internal/engine/framebuffer"
	"github.com/Faultbox/phoneview/internal/engine/glyph"
	"github.com/Faultbox/phoneview/internal/engine/input"
	"github.com/Faultbox/phoneview/internal/engine/lighting"
	"github.com/Faultbox/phoneview/internal/engine/overlay"
	"github.com/Faultbox/phoneview/internal/engine/renderer"
	"github.com/Faultbox/phoneview/internal/engine/window"
	"github.com/Faultbox/phoneview/internal/imu"
	"github.com/Faultbox/phoneview/internal/logger"
	"github.com/Faultbox/phoneview/internal/phone"
	"github.com/Faultbox/phoneview/internal/prefs"
	"github.com/Faultbox/phoneview/internal/remote"
	"github.com/Faultbox/phoneview/internal/scene"
	"github.com/Faultbox/phoneview/internal/viewer"
	"github.com/Faultbox/phoneview/internal/worker"
)

// App is the windowed viewer.
type App struct {
	cfg     *config.Config
	log     *zap.Logger
	running bool

	window   *window.Window
	renderer *renderer.Renderer
	overlay  *overlay.Renderer
	input    *input.Input
	session  *viewer.Session
	loader   *scene.Loader
	shots    *debug.ScreenshotCapture
	keymap   Keymap

	hub *remote.Hub
	imu *imu.Reader

	loading      <-chan scene.Result
	loadingEntry phone.Entry
	cancelLoad   context.CancelFunc
	imuSamples   uint64
	capture      bool
}

// New creates the window, the GL renderers and the session.
func New(cfg *config.Config, catalog *phone.Catalog, store *prefs.Store) (*App, error) {
	log := logger.Named("app")
	log.Info("initializing viewer",
		zap.String("title", cfg.Window.Title),
		zap.Int("width", cfg.Window.Width),
		zap.Int("height", cfg.Window.Height),
	)

	a := &App{
		cfg:    cfg,
		log:    log,
		loader: scene.NewLoader(logger.Named("scene")),
		shots:  debug.NewScreenshotCapture(cfg.Viewer.ScreenshotDir, "phoneview", logger.Named("screenshot")),
		keymap: DefaultKeymap(),
		input:  input.New(),
	}

	// Create window (this also creates OpenGL context)
	var err error
	a.window, err = window.New(window.Config{
		Title:      cfg.Window.Title,
		Width:      cfg.Window.Width,
		Height:     cfg.Window.Height,
		Fullscreen: cfg.Window.Fullscreen,
		VSync:      cfg.Window.VSync,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create window: %w", err)
	}

	background, err := config.ParseColor(cfg.Viewer.Background)
	if err != nil {
		a.window.Close()
		return nil, err
	}

	// Create renderer (AFTER window, since OpenGL context must exist)
	dw, dh := a.window.DrawableSize()
	a.renderer, err = renderer.New(renderer.Config{
		Width:      dw,
		Height:     dh,
		Background: background,
		Lights:     lighting.DefaultRig(),
		Highlight:  phone.HighlightColor,
	})
	if err != nil {
		a.window.Close()
		return nil, fmt.Errorf("failed to create renderer: %w", err)
	}

	ww, wh := a.window.GetSize()
	a.overlay, err = overlay.New(ww, wh)
	if err != nil {
		a.renderer.Close()
		a.window.Close()
		return nil, fmt.Errorf("failed to create overlay: %w", err)
	}

	atlas := a.overlay.Atlas()
	a.session = viewer.NewSession(cfg, catalog,
		viewer.WithPrefs(store),
		viewer.WithLogger(logger.Named("viewer")),
		viewer.WithCardMeasure(func(lines []string) (float32, float32) {
			return glyph.CardLayout(atlas, lines)
		}),
	)
	a.session.SetViewport(ww, wh)

	if cfg.Remote.Enabled {
		a.hub = remote.NewHub(remote.WithLogger(logger.Named("remote")))
	}
	if cfg.IMU.Port != "" {
		a.imu = imu.NewReader(cfg.IMU.Port, cfg.IMU.Baud, imu.WithLogger(logger.Named("imu")))
	}

	log.Info("viewer initialized")
	return a, nil
}

// Session returns the viewer session.
func (a *App) Session() *viewer.Session {
	return a.session
}

// Run shows model (a catalog id or file path; empty picks the default)
// and runs the frame loop until the window closes or ctx is cancelled.
func (a *App) Run(ctx context.Context, model string) error {
	bg := worker.New(ctx, a.log)
	defer bg.Stop()
	ctx = bg.Context()
	a.startBackground(bg)

	entry, err := a.session.InitialEntry(model)
	if err != nil {
		return err
	}
	a.load(ctx, entry)

	a.running = true
	lastTime := time.Now()
	a.log.Info("starting frame loop")

	for a.running && ctx.Err() == nil {
		now := time.Now()
		dt := now.Sub(lastTime)
		lastTime = now

		// 1. Process input
		if a.input.Update() {
			break
		}
		a.handleEvents(ctx)
		a.drainRemote(ctx)
		a.applyIMU()
		a.pollLoad()

		// 2. Update
		res := a.session.Frame(dt)

		// 3. Render
		a.render(res)
		if a.capture {
			a.capture = false
			a.screenshot()
		}

		// 4. Present
		a.window.SwapBuffers()
		if a.hub != nil {
			if err := a.hub.Publish(a.session.Snapshot()); err != nil {
				a.log.Warn("snapshot publish failed", zap.Error(err))
			}
		}

		// 5. Pace: full rate while anything moves, slow when static.
		if wait := res.Delay - time.Since(now); wait > 0 {
			select {
			case <-ctx.Done():
			case <-time.After(wait):
			}
		}
	}

	if err := a.session.SavePrefs(); err != nil {
		a.log.Warn("failed to save preferences", zap.Error(err))
	}
	return nil
}

// startBackground runs the remote hub and the IMU feed until bg stops.
func (a *App) startBackground(bg *worker.Group) {
	if a.hub != nil {
		bg.Go("remote", func(ctx context.Context) error {
			return a.hub.Serve(ctx, a.cfg.Remote.Addr, a.cfg.Remote.BroadcastInterval)
		})
	}
	if a.imu != nil {
		bg.Go("imu", a.imu.Run)
	}
}

// Close cleans up viewer resources.
func (a *App) Close() {
	a.log.Info("closing viewer")

	if a.cancelLoad != nil {
		a.cancelLoad()
	}
	if a.overlay != nil {
		a.overlay.Close()
	}
	if a.renderer != nil {
		a.renderer.Close()
	}
	if a.window != nil {
		a.window.Close()
	}
}

func (a *App) handleEvents(ctx context.Context) {
	for _, ev := range a.input.Events() {
		switch ev.Type {
		case input.EventWindowResize:
			a.resize()

		case input.EventKeyDown:
			if action, ok := a.keymap.Lookup(ev.Key); ok {
				a.apply(ctx, a.session.HandleKey(action))
			}

		case input.EventMouseDown, input.EventMouseUp, input.EventMouseMove:
			a.handleMouse(ev)

		case input.EventMouseWheel:
			a.session.HandleWheel(ev.Wheel)

		case input.EventFingerDown, input.EventFingerMove, input.EventFingerUp:
			w, h := a.session.Viewport()
			a.session.HandlePointer(viewer.PointerEvent{
				Kind: fingerKinds[ev.Type],
				ID:   ev.FingerID,
				X:    ev.X * float32(w),
				Y:    ev.Y * float32(h),
			})
		}
	}
}

func (a *App) resize() {
	ww, wh := a.window.GetSize()
	dw, dh := a.window.DrawableSize()
	a.renderer.Resize(dw, dh)
	a.overlay.Resize(ww, wh)
	a.session.SetViewport(ww, wh)
}

func (a *App) apply(ctx context.Context, eff viewer.Effect) {
	if eff.Load != nil {
		a.load(ctx, *eff.Load)
	}
	if eff.ToggleFullscreen {
		if err := a.window.ToggleFullscreen(); err != nil {
			a.log.Warn("fullscreen toggle failed", zap.Error(err))
		} else {
			a.resize()
		}
	}
	if eff.Screenshot {
		a.capture = true
	}
	if eff.Quit {
		a.running = false
	}
}

func (a *App) drainRemote(ctx context.Context) {
	if a.hub == nil {
		return
	}
	for {
		select {
		case msg := <-a.hub.Inbound():
			eff, err := a.session.HandleRemote(msg)
			if err != nil {
				a.log.Debug("remote message rejected", zap.String("type", msg.Type), zap.Error(err))
				continue
			}
			a.apply(ctx, eff)
		default:
			return
		}
	}
}

func (a *App) applyIMU() {
	if a.imu == nil {
		return
	}
	n := a.imu.Samples()
	if n == a.imuSamples {
		return
	}
	a.imuSamples = n
	if q, ok := a.imu.Latest(); ok {
		a.session.ApplyOrientation(q)
	}
}

// load starts parsing entry in the background, abandoning any load still
// in flight.
func (a *App) load(ctx context.Context, entry phone.Entry) {
	if a.cancelLoad != nil {
		a.cancelLoad()
	}
	lctx, cancel := context.WithCancel(ctx)
	a.cancelLoad = cancel
	a.loading = a.loader.LoadAsync(lctx, entry.Path)
	a.loadingEntry = entry
	a.window.SetTitle(fmt.Sprintf("%s - loading %s", a.cfg.Window.Title, entry.Name))
	a.log.Info("loading model", zap.String("id", entry.ID), zap.String("path", entry.Path))
}

// pollLoad installs a finished model. GPU upload happens here, on the
// thread that owns the GL context.
func (a *App) pollLoad() {
	if a.loading == nil {
		return
	}
	var res scene.Result
	select {
	case res = <-a.loading:
	default:
		return
	}
	a.loading = nil
	a.cancelLoad()
	a.cancelLoad = nil

	if res.Err != nil {
		a.log.Error("failed to load model", zap.String("path", res.Path), zap.Error(res.Err))
		a.window.SetTitle(a.cfg.Window.Title)
		return
	}

	a.renderer.Release()
	a.renderer.Upload(res.Model.Root)
	if err := a.session.SetModel(a.loadingEntry, res.Model); err != nil {
		a.log.Warn("model animations incomplete", zap.Error(err))
	}
	a.window.SetTitle(fmt.Sprintf("%s - %s", a.cfg.Window.Title, a.loadingEntry.Name))
}

func (a *App) render(res viewer.FrameResult) {
	w, h := a.renderer.Size()
	a.drawScene(w, h)

	s := a.session
	a.overlay.Begin()
	if s.Card.Visible() {
		pos := s.Card.Position()
		a.overlay.DrawCard(pos.X, pos.Y, s.Card.Lines())
	}
	a.overlay.DrawStatus(a.status(res))
	a.overlay.End()
}

// drawScene draws the model alone into the bound target.
func (a *App) drawScene(w, h int) {
	s := a.session
	aspect := float32(1)
	if h > 0 {
		aspect = float32(w) / float32(h)
	}

	frame := renderer.Frame{
		View:       s.Camera.ViewMatrix(),
		Projection: s.Camera.Projection(aspect),
		Highlight:  s.Phone.Highlighted(),
	}
	if m := s.Phone.Current(); m != nil {
		frame.Root = m.Root
	}
	a.renderer.Draw(frame)
}

func (a *App) status(res viewer.FrameResult) string {
	s := a.session
	name := s.Entry().Name
	if a.loading != nil {
		name = "loading " + a.loadingEntry.Name
	}
	mode := "live"
	if res.Static {
		mode = "idle"
	}
	return fmt.Sprintf("%s | %d fps (%s) | auto-rotate %s | %s",
		name, res.FPS, mode, onOff(s.AutoRotate.Enabled()), keyHelp)
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

// screenshot renders the scene without the overlay into an offscreen
// target ScreenshotScale times the window size and saves it.
func (a *App) screenshot() {
	w, h := a.renderer.Size()
	scale := a.cfg.Viewer.ScreenshotScale
	target, err := framebuffer.New(int32(w*scale), int32(h*scale))
	if err != nil {
		a.log.Error("screenshot failed", zap.Error(err))
		return
	}
	defer target.Destroy()

	restore := target.Bind()
	tw, th := target.Size()
	a.drawScene(tw, th)
	pixels := target.ReadPixels()
	restore()

	if _, err := a.shots.CaptureFromPixels(pixels, tw, th, a.session.Entry().ID); err != nil {
		a.log.Error("screenshot failed", zap.Error(err))
	}
}

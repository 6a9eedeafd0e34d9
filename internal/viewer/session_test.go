package viewer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Faultbox/phoneview/internal/animation"
	"github.com/Faultbox/phoneview/internal/config"
	"github.com/Faultbox/phoneview/internal/phone"
	"github.com/Faultbox/phoneview/internal/prefs"
	"github.com/Faultbox/phoneview/internal/remote"
	"github.com/Faultbox/phoneview/internal/scene"
	"github.com/Faultbox/phoneview/pkg/math"
)

const liveDelay = time.Second / 60

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func box(min, max math.Vec3) *scene.Mesh {
	return &scene.Mesh{Bounds: math.Box3{Min: min, Max: max}}
}

// testModel is a flat screen at the origin with a battery off to the right.
func testModel() *scene.Model {
	root := scene.NewNode("root")
	screen := scene.NewNode("Screen")
	screen.Mesh = box(math.Vec3{X: -2, Y: -2, Z: -0.1}, math.Vec3{X: 2, Y: 2, Z: 0.1})
	battery := scene.NewNode("Battery")
	battery.Translation = math.Vec3{X: 3}
	battery.Mesh = box(math.Vec3{X: -0.5, Y: -0.5, Z: -0.5}, math.Vec3{X: 0.5, Y: 0.5, Z: 0.5})
	root.Add(screen)
	root.Add(battery)

	spin := animation.NewClip("spin", []animation.Track{{
		Node: "Battery",
		Path: animation.PathScale,
		Vec3Keys: []animation.Vec3Key{
			{Time: 0, Value: math.Vec3{X: 1, Y: 1, Z: 1}},
			{Time: 2, Value: math.Vec3{X: 2, Y: 2, Z: 2}},
		},
	}})
	return scene.NewModel("phone", root, []*animation.Clip{spin})
}

func newTestSession(t *testing.T, opts ...Option) (*Session, *fakeClock) {
	t.Helper()
	clk := &fakeClock{t: time.Unix(1_700_000_000, 0)}
	cfg := config.Default()
	base := []Option{WithClock(clk.Now), WithLogger(zap.NewNop())}
	s := NewSession(cfg, phone.DefaultCatalog(), append(base, opts...)...)
	return s, clk
}

func withModel(t *testing.T) (*Session, *fakeClock, *scene.Model) {
	t.Helper()
	s, clk := newTestSession(t)
	m := testModel()
	entry, ok := phone.DefaultCatalog().Lookup("model1")
	require.True(t, ok)
	require.NoError(t, s.SetModel(entry, m))
	return s, clk, m
}

func TestFrameDropsToIdleWhenStatic(t *testing.T) {
	s, clk := newTestSession(t)

	res := s.Frame(16 * time.Millisecond)
	assert.Equal(t, liveDelay, res.Delay)
	assert.False(t, res.Static)

	clk.Advance(6 * time.Second)
	res = s.Frame(16 * time.Millisecond)
	assert.Equal(t, 100*time.Millisecond, res.Delay)
	assert.True(t, res.Static)

	s.HandleWheel(1)
	res = s.Frame(16 * time.Millisecond)
	assert.Equal(t, liveDelay, res.Delay)
	assert.False(t, res.Static)
}

func TestAutoRotateKeepsFullRate(t *testing.T) {
	s, clk := newTestSession(t)
	s.HandleKey(ActionToggleAutoRotate)
	require.True(t, s.AutoRotate.Enabled())

	az := s.Camera.Azimuth
	clk.Advance(10 * time.Second)
	res := s.Frame(time.Second)
	assert.Equal(t, liveDelay, res.Delay)
	assert.False(t, res.Static)
	assert.NotEqual(t, az, s.Camera.Azimuth)
}

func TestAutoRotateFollowsConfigUntilSaved(t *testing.T) {
	clk := &fakeClock{t: time.Unix(1_700_000_000, 0)}
	cfg := config.Default()
	cfg.Controls.AutoRotate = true
	cfg.Controls.AutoRotateSpeed = 3

	store := prefs.New(nil, zap.NewNop())
	s := NewSession(cfg, phone.DefaultCatalog(), WithClock(clk.Now), WithLogger(zap.NewNop()), WithPrefs(store))
	assert.True(t, s.AutoRotate.Enabled())
	assert.Equal(t, float32(3), s.AutoRotate.Speed())

	s.HandleKey(ActionToggleAutoRotate)
	require.False(t, s.AutoRotate.Enabled())

	s = NewSession(cfg, phone.DefaultCatalog(), WithClock(clk.Now), WithLogger(zap.NewNop()), WithPrefs(store))
	assert.False(t, s.AutoRotate.Enabled(), "saved off wins over configured on")
	assert.Equal(t, float32(3), s.AutoRotate.Speed())
}

func TestSetModel(t *testing.T) {
	store := prefs.New(nil, zap.NewNop())
	s, _ := newTestSession(t, WithPrefs(store))
	entry, _ := phone.DefaultCatalog().Lookup("model2")
	require.NoError(t, s.SetModel(entry, testModel()))

	assert.Equal(t, 2, s.Explode.Parts())
	assert.True(t, s.Anims.Registered("explode"))
	assert.True(t, s.Anims.Registered("implode"))
	assert.Equal(t, []string{"clip:spin"}, s.Clips())
	assert.Equal(t, []string{"Battery", "Screen"}, s.Phone.PartNames())
	assert.Equal(t, "model2", store.Get().LastModel)

	// Fitted to the union of both parts: x in [-2, 3.5].
	assert.InDelta(t, 0.75, s.Camera.Target.X, 1e-5)
	assert.Greater(t, s.Camera.Distance, float32(2))
}

func TestSetModelReplacesPrevious(t *testing.T) {
	s, _, first := withModel(t)
	s.HandleKey(ActionToggleExplode)
	require.True(t, s.Anims.HasActiveAnimations())

	entry, _ := phone.DefaultCatalog().Lookup("model2")
	require.NoError(t, s.SetModel(entry, nil))

	assert.False(t, s.Anims.HasActiveAnimations())
	assert.False(t, s.Anims.Registered("clip:spin"))
	assert.Equal(t, 0, s.Explode.Parts())
	assert.Nil(t, s.Phone.Current())
	assert.Equal(t, math.Vec3{X: 3}, first.Node("Battery").Translation)
}

func TestExplodeKeyMovesParts(t *testing.T) {
	s, clk, m := withModel(t)

	s.HandleKey(ActionToggleExplode)
	assert.True(t, s.Explode.Exploded())
	s.Frame(16 * time.Millisecond)
	assert.True(t, s.Anims.HasActiveAnimations())

	clk.Advance(time.Second)
	res := s.Frame(16 * time.Millisecond)
	assert.False(t, s.Anims.HasActiveAnimations())
	assert.Equal(t, liveDelay, res.Delay)
	assert.InDelta(t, 4.5, m.Node("Battery").Translation.X, 1e-5)
	assert.Equal(t, math.Vec3{}, m.Node("Screen").Translation)

	s.HandleKey(ActionToggleExplode)
	clk.Advance(time.Second)
	s.Frame(16 * time.Millisecond)
	assert.False(t, s.Explode.Exploded())
	assert.InDelta(t, 3, m.Node("Battery").Translation.X, 1e-5)
}

func TestClickPicksPart(t *testing.T) {
	s, _, _ := withModel(t)

	s.HandlePointer(PointerEvent{Kind: PointerDown, ID: -1, X: 640, Y: 360})
	s.HandlePointer(PointerEvent{Kind: PointerUp, ID: -1, X: 640, Y: 360})

	require.NotNil(t, s.Phone.Highlighted())
	assert.Equal(t, "Screen", s.Phone.Highlighted().Name)
	assert.True(t, s.Card.Visible())
	assert.Equal(t, "Screen", s.Card.Info().Name)

	assert.Equal(t, "", s.Pick(5, 5))
	assert.Nil(t, s.Phone.Highlighted())
	assert.False(t, s.Card.Visible())
}

func TestDragRotatesWithoutPicking(t *testing.T) {
	s, clk, _ := withModel(t)
	s.HandleKey(ActionToggleAutoRotate)

	s.HandlePointer(PointerEvent{Kind: PointerDown, ID: 1, X: 640, Y: 360})
	assert.True(t, s.AutoRotate.Paused())

	clk.Advance(20 * time.Millisecond)
	s.HandlePointer(PointerEvent{Kind: PointerMove, ID: 1, X: 700, Y: 360})
	assert.True(t, s.Camera.Moving())

	s.HandlePointer(PointerEvent{Kind: PointerUp, ID: 1, X: 700, Y: 360})
	assert.Nil(t, s.Phone.Highlighted())
	assert.False(t, s.AutoRotate.Paused())
	assert.Equal(t, 1, s.Gestures.Stats().Applied)
}

func TestSlowPressDoesNotPick(t *testing.T) {
	s, clk, _ := withModel(t)

	s.HandlePointer(PointerEvent{Kind: PointerDown, ID: -1, X: 640, Y: 360})
	clk.Advance(time.Second)
	s.HandlePointer(PointerEvent{Kind: PointerUp, ID: -1, X: 640, Y: 360})
	assert.Nil(t, s.Phone.Highlighted())
}

func TestNextPartAndEscape(t *testing.T) {
	s, _, _ := withModel(t)

	s.HandleKey(ActionNextPart)
	require.NotNil(t, s.Phone.Highlighted())
	assert.Equal(t, "Battery", s.Phone.Highlighted().Name)

	s.HandleKey(ActionToggleInfo)
	assert.True(t, s.Card.Visible())

	s.HandleKey(ActionNextPart)
	assert.Equal(t, "Screen", s.Card.Info().Name)

	eff := s.HandleKey(ActionEscape)
	assert.False(t, eff.Quit)
	assert.Nil(t, s.Phone.Highlighted())
	assert.False(t, s.Card.Visible())

	eff = s.HandleKey(ActionEscape)
	assert.True(t, eff.Quit)
}

func TestModelSelection(t *testing.T) {
	s, _ := newTestSession(t)

	eff := s.HandleKey(ActionSelectModel1)
	require.NotNil(t, eff.Load)
	assert.Equal(t, "model1", eff.Load.ID)
	require.NoError(t, s.SetModel(*eff.Load, testModel()))

	eff = s.HandleKey(ActionSelectModel1)
	assert.Nil(t, eff.Load, "already on display")

	eff = s.HandleKey(ActionSelectModel9)
	assert.Nil(t, eff.Load)

	eff = s.HandleKey(ActionNextModel)
	require.NotNil(t, eff.Load)
	assert.Equal(t, "model2", eff.Load.ID)
}

func TestHostEffects(t *testing.T) {
	s, _, _ := withModel(t)
	s.Camera.Distance = 15

	assert.True(t, s.HandleKey(ActionToggleFullscreen).ToggleFullscreen)
	assert.True(t, s.HandleKey(ActionScreenshot).Screenshot)

	s.HandleKey(ActionResetView)
	assert.NotEqual(t, float32(15), s.Camera.Distance)
}

func TestHandleRemote(t *testing.T) {
	s, clk, _ := withModel(t)

	eff, err := s.HandleRemote(remote.Message{Type: remote.TypeAction, Action: "fullscreen"})
	require.NoError(t, err)
	assert.True(t, eff.ToggleFullscreen)

	_, err = s.HandleRemote(remote.Message{Type: remote.TypeAction, Action: "explode"})
	require.NoError(t, err)
	assert.True(t, s.Explode.Exploded())

	_, err = s.HandleRemote(remote.Message{Type: remote.TypeAction, Action: "clip:spin"})
	require.NoError(t, err)

	_, err = s.HandleRemote(remote.Message{Type: remote.TypeAction, Action: "dance"})
	assert.Error(t, err)
	_, err = s.HandleRemote(remote.Message{Type: "wave"})
	assert.Error(t, err)

	_, err = s.HandleRemote(remote.Message{Type: remote.TypeDown, Points: []remote.Point{{X: 100, Y: 100}}})
	require.NoError(t, err)
	clk.Advance(20 * time.Millisecond)
	_, err = s.HandleRemote(remote.Message{Type: remote.TypeMove, Points: []remote.Point{{X: 150, Y: 100}}})
	require.NoError(t, err)
	assert.True(t, s.Camera.Moving())
	_, err = s.HandleRemote(remote.Message{Type: remote.TypeUp})
	require.NoError(t, err)
}

func TestPlayClip(t *testing.T) {
	s, _, m := withModel(t)

	h, err := s.PlayClip("spin")
	require.NoError(t, err)
	assert.True(t, h.Active())

	s.Frame(time.Second)
	assert.InDelta(t, 1.5, m.Node("Battery").Scale.X, 1e-5)

	_, err = s.PlayClip("missing")
	assert.Error(t, err)
}

func TestApplyOrientation(t *testing.T) {
	s, _ := newTestSession(t)
	s.ApplyOrientation(math.Quat{W: 2})

	s, _, m := withModel(t)
	s.ApplyOrientation(math.Quat{W: 2})
	assert.InDelta(t, 1, m.Root.Rotation.W, 1e-6)
	assert.Equal(t, [4]float32{0, 0, 0, 1}, s.Snapshot().Orientation)
}

func TestInitialEntry(t *testing.T) {
	s, _ := newTestSession(t)

	e, err := s.InitialEntry("")
	require.NoError(t, err)
	assert.Equal(t, "model1", e.ID)

	e, err = s.InitialEntry("model2")
	require.NoError(t, err)
	assert.Equal(t, "model2", e.ID)

	e, err = s.InitialEntry("/tmp/pixel.glb")
	require.NoError(t, err)
	assert.Equal(t, "pixel", e.Name)

	_, err = s.InitialEntry("pixel")
	assert.ErrorIs(t, err, phone.ErrUnknownModel)

	store := prefs.New(nil, zap.NewNop())
	store.SetLastModel("model2")
	s, _ = newTestSession(t, WithPrefs(store))
	e, err = s.InitialEntry("")
	require.NoError(t, err)
	assert.Equal(t, "model2", e.ID)
}

func TestSnapshot(t *testing.T) {
	s, _, _ := withModel(t)
	s.HandleKey(ActionNextPart)
	s.HandleKey(ActionToggleInfo)
	s.Frame(16 * time.Millisecond)

	snap := s.Snapshot()
	assert.Equal(t, "model1", snap.Model)
	assert.Equal(t, "Phone Model 1", snap.ModelName)
	assert.Equal(t, []string{"Battery", "Screen"}, snap.Parts)
	assert.Equal(t, "Battery", snap.Highlighted)
	assert.True(t, snap.Card.Visible)
	assert.NotEmpty(t, snap.Card.Lines)
	assert.Equal(t, []string{"clip:spin"}, snap.Clips)
	assert.InDelta(t, s.Camera.Distance, snap.Camera.Distance, 1e-6)

	snap.Parts[0] = "changed"
	assert.Equal(t, []string{"Battery", "Screen"}, s.Phone.PartNames())
}

func TestParseAction(t *testing.T) {
	tests := []struct {
		name    string
		want    Action
		wantErr bool
	}{
		{"explode", ActionExplode, false},
		{"auto_rotate", ActionToggleAutoRotate, false},
		{"model_2", ActionSelectModel2, false},
		{"model_10", ActionNone, true},
		{"", ActionNone, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseAction(tt.name)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.name, got.String())
		})
	}
}

func TestCardMeasuredBeforePlacement(t *testing.T) {
	var measured []string
	s, _ := newTestSession(t, WithCardMeasure(func(lines []string) (float32, float32) {
		measured = lines
		return 1000, 600
	}))
	entry, _ := phone.DefaultCatalog().Lookup("model1")
	require.NoError(t, s.SetModel(entry, testModel()))

	s.HandleKey(ActionNextPart)
	s.HandleKey(ActionToggleInfo)

	require.NotEmpty(t, measured)
	assert.Equal(t, "Battery", measured[0])
	// 1280x720 window, 20px margin.
	assert.Equal(t, math.Vec2{X: 260, Y: 100}, s.Card.Position())

	s.HandleKey(ActionToggleInfo)
	assert.False(t, s.Card.Visible())
}

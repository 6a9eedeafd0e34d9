package gesture

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/phoneview/pkg/math"
)

type fakeCamera struct {
	rotations [][2]float32
	zoomIns   int
	zoomOuts  int
}

func (c *fakeCamera) Rotate(dx, dy float32) { c.rotations = append(c.rotations, [2]float32{dx, dy}) }
func (c *fakeCamera) ZoomIn()               { c.zoomIns++ }
func (c *fakeCamera) ZoomOut()              { c.zoomOuts++ }

type fakeActivity struct {
	marks []time.Time
}

func (a *fakeActivity) MarkActivity(t time.Time) { a.marks = append(a.marks, t) }

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestRecognizer() (*Recognizer, *fakeCamera, *fakeActivity, *fakeClock) {
	cam := &fakeCamera{}
	act := &fakeActivity{}
	clk := &fakeClock{t: time.Unix(1_700_000_000, 0)}
	return New(cam, act, WithClock(clk.Now)), cam, act, clk
}

func pts(xy ...float32) []math.Vec2 {
	out := make([]math.Vec2, 0, len(xy)/2)
	for i := 0; i+1 < len(xy); i += 2 {
		out = append(out, math.Vec2{X: xy[i], Y: xy[i+1]})
	}
	return out
}

func TestDragRotatesByDelta(t *testing.T) {
	r, cam, act, clk := newTestRecognizer()

	r.PointerDown(pts(100, 100))
	require.IsType(t, Rotating{}, r.State())

	clk.Advance(20 * time.Millisecond)
	r.PointerMove(pts(110, 95))
	clk.Advance(20 * time.Millisecond)
	r.PointerMove(pts(115, 95))

	assert.Equal(t, [][2]float32{{10, -5}, {5, 0}}, cam.rotations)
	assert.Len(t, act.marks, 2)
	assert.Equal(t, clk.Now(), act.marks[1])

	s := r.State().(Rotating)
	assert.Equal(t, math.Vec2{X: 100, Y: 100}, s.Start)
	assert.Equal(t, math.Vec2{X: 115, Y: 95}, s.Last)
}

func TestPinchApartZoomsOut(t *testing.T) {
	r, cam, _, clk := newTestRecognizer()

	r.PointerDown(pts(0, 0, 100, 0))
	require.Equal(t, Pinching{StartDistance: 100, LastDistance: 100}, r.State())

	clk.Advance(20 * time.Millisecond)
	r.PointerMove(pts(0, 0, 110, 0))

	assert.Equal(t, 1, cam.zoomOuts)
	assert.Equal(t, 0, cam.zoomIns)
	assert.Equal(t, float32(110), r.State().(Pinching).LastDistance)
}

func TestPinchTogetherZoomsIn(t *testing.T) {
	r, cam, _, clk := newTestRecognizer()

	r.PointerDown(pts(0, 0, 100, 0))
	clk.Advance(20 * time.Millisecond)
	r.PointerMove(pts(0, 0, 90, 0))

	assert.Equal(t, 1, cam.zoomIns)
	assert.Equal(t, 0, cam.zoomOuts)
}

func TestPinchWithinDeadZoneIsNeutral(t *testing.T) {
	r, cam, _, clk := newTestRecognizer()

	r.PointerDown(pts(0, 0, 100, 0))
	clk.Advance(20 * time.Millisecond)
	r.PointerMove(pts(0, 0, 103, 0))

	assert.Zero(t, cam.zoomIns)
	assert.Zero(t, cam.zoomOuts)
	// The reference distance still follows the contacts.
	assert.Equal(t, float32(103), r.State().(Pinching).LastDistance)
}

func TestPinchIsIncremental(t *testing.T) {
	r, cam, _, clk := newTestRecognizer()

	// Each step is +3% of the previous distance: never over the threshold,
	// although the total spread from the start is well past it.
	r.PointerDown(pts(0, 0, 100, 0))
	d := float32(100)
	for i := 0; i < 5; i++ {
		d *= 1.03
		clk.Advance(20 * time.Millisecond)
		r.PointerMove(pts(0, 0, d, 0))
	}

	assert.Zero(t, cam.zoomOuts)
	assert.Equal(t, float32(100), r.State().(Pinching).StartDistance)
}

func TestMovesInsideThrottleWindowAreDropped(t *testing.T) {
	r, cam, act, clk := newTestRecognizer()

	r.PointerDown(pts(0, 0))
	r.PointerMove(pts(5, 0))
	clk.Advance(5 * time.Millisecond)
	r.PointerMove(pts(10, 0))
	clk.Advance(5 * time.Millisecond)
	r.PointerMove(pts(15, 0))

	require.Len(t, cam.rotations, 1)
	assert.Equal(t, [2]float32{5, 0}, cam.rotations[0])
	assert.Len(t, act.marks, 1)
	assert.Equal(t, 2, r.Stats().Throttled)

	// The next move after the window uses the last applied position, so the
	// dropped moves collapse into one delta.
	clk.Advance(10 * time.Millisecond)
	r.PointerMove(pts(20, 0))
	require.Len(t, cam.rotations, 2)
	assert.Equal(t, [2]float32{15, 0}, cam.rotations[1])
}

func TestMismatchedContactCountIsIgnored(t *testing.T) {
	r, cam, act, clk := newTestRecognizer()

	r.PointerDown(pts(0, 0))
	clk.Advance(20 * time.Millisecond)
	r.PointerMove(pts(0, 0, 50, 50))

	assert.Empty(t, cam.rotations)
	assert.Empty(t, act.marks)
	assert.IsType(t, Rotating{}, r.State())
	assert.Equal(t, 1, r.Stats().Ignored)
}

func TestIgnoredMoveConsumesThrottleWindow(t *testing.T) {
	r, cam, _, clk := newTestRecognizer()

	r.PointerDown(pts(0, 0))
	clk.Advance(20 * time.Millisecond)
	r.PointerMove(pts(0, 0, 50, 50))
	clk.Advance(5 * time.Millisecond)
	r.PointerMove(pts(10, 0))

	assert.Empty(t, cam.rotations)
	assert.Equal(t, 1, r.Stats().Ignored)
	assert.Equal(t, 1, r.Stats().Throttled)

	clk.Advance(20 * time.Millisecond)
	r.PointerMove(pts(10, 0))
	assert.Equal(t, [][2]float32{{10, 0}}, cam.rotations)
}

func TestMoveWhileIdleIsIgnored(t *testing.T) {
	r, cam, act, _ := newTestRecognizer()

	r.PointerMove(pts(10, 10))

	assert.Empty(t, cam.rotations)
	assert.Empty(t, act.marks)
	assert.Equal(t, Idle{}, r.State())
}

func TestReleaseEndsIdle(t *testing.T) {
	tests := []struct {
		name string
		down []math.Vec2
	}{
		{"rotate", pts(1, 1)},
		{"pinch", pts(0, 0, 10, 10)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, _, _, clk := newTestRecognizer()
			r.PointerDown(tt.down)
			clk.Advance(20 * time.Millisecond)
			r.PointerMove(tt.down)
			r.PointerUp(nil)
			assert.Equal(t, Idle{}, r.State())
		})
	}
}

func TestLiftingOneOfTwoFingersRotates(t *testing.T) {
	r, _, _, _ := newTestRecognizer()

	r.PointerDown(pts(0, 0, 100, 0))
	r.PointerUp(pts(100, 0))

	assert.Equal(t, Rotating{Start: math.Vec2{X: 100}, Last: math.Vec2{X: 100}}, r.State())
}

func TestThreeContactsLeaveStateUnchanged(t *testing.T) {
	r, _, _, _ := newTestRecognizer()

	r.PointerDown(pts(0, 0))
	r.PointerDown(pts(0, 0, 1, 1, 2, 2))

	assert.IsType(t, Rotating{}, r.State())
}

func TestNilActivitySink(t *testing.T) {
	cam := &fakeCamera{}
	r := New(cam, nil)

	r.PointerDown(pts(0, 0))
	r.PointerMove(pts(3, 4))

	assert.Len(t, cam.rotations, 1)
}

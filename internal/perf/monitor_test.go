package perf

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestMonitor(opts ...Option) (*Monitor, *fakeClock) {
	clk := &fakeClock{t: time.Unix(1_700_000_000, 0)}
	return NewMonitor(append([]Option{WithClock(clk.Now)}, opts...)...), clk
}

func TestGoesStaticAfterThreshold(t *testing.T) {
	m, clk := newTestMonitor()

	assert.True(t, m.Update())

	clk.Advance(5 * time.Second)
	assert.True(t, m.Update(), "exactly at the threshold is still live")

	clk.Advance(time.Millisecond)
	assert.False(t, m.Update())
	assert.True(t, m.IsStatic())
}

func TestActivityWakesImmediately(t *testing.T) {
	m, clk := newTestMonitor()

	clk.Advance(6 * time.Second)
	assert.False(t, m.Update())

	m.MarkActivity(clk.Now())
	assert.True(t, m.Update())
	assert.False(t, m.IsStatic())
}

func TestStaleActivityIgnored(t *testing.T) {
	m, clk := newTestMonitor()
	start := clk.Now()

	clk.Advance(6 * time.Second)
	m.MarkActivity(start.Add(-time.Minute))

	assert.False(t, m.Update())
	assert.Equal(t, start, m.LastActivity())
}

func TestSourcesCountAsActivity(t *testing.T) {
	m, clk := newTestMonitor()
	animating := true
	m.AddSource(func() bool { return animating })

	clk.Advance(10 * time.Second)
	assert.True(t, m.Update())

	animating = false
	clk.Advance(5*time.Second + time.Millisecond)
	assert.False(t, m.Update())
}

func TestCustomThreshold(t *testing.T) {
	m, clk := newTestMonitor(WithThreshold(time.Second))

	clk.Advance(1500 * time.Millisecond)
	assert.False(t, m.Update())
}

func TestFPSCountsOneSecondWindows(t *testing.T) {
	m, clk := newTestMonitor()

	for i := 0; i < 30; i++ {
		clk.Advance(time.Second / 30)
		m.Update()
	}
	// 30 * (1s/30) truncates to just under a second.
	clk.Advance(time.Millisecond)
	m.Update()

	assert.Equal(t, 31, m.FPS())
	assert.Equal(t, time.Second/30*30+time.Millisecond, m.Elapsed())
}

func TestPacer(t *testing.T) {
	p := NewPacer(60, 100*time.Millisecond)

	tests := []struct {
		name                       string
		live, animating, autoSpins bool
		want                       time.Duration
	}{
		{"static scene throttles", false, false, false, 100 * time.Millisecond},
		{"monitor live", true, false, false, time.Second / 60},
		{"animation keeps full rate", false, true, false, time.Second / 60},
		{"auto rotate keeps full rate", false, false, true, time.Second / 60},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, p.Delay(tt.live, tt.animating, tt.autoSpins))
		})
	}
}

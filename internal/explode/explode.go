// Package explode separates a model into its parts and puts it back
// together. Each mesh part moves away from the model origin along its own
// direction, so parts at the origin stay put.
package explode

import (
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/phoneview/internal/animation"
	"github.com/Faultbox/phoneview/internal/logger"
	"github.com/Faultbox/phoneview/internal/scene"
	"github.com/Faultbox/phoneview/pkg/math"
)

// Animation names registered with the manager.
const (
	ExplodeAnimation = "explode"
	ImplodeAnimation = "implode"
)

const (
	DefaultFactor   = 1.5
	DefaultDuration = time.Second
	DefaultEasing   = animation.EaseCubicInOut

	progressKey = "progress"
)

// Offset is the pair of local positions a part moves between.
type Offset struct {
	Original math.Vec3
	Exploded math.Vec3
}

// Choreographer owns the offset table for the current model and the
// explode/implode tween definitions.
type Choreographer struct {
	anims    *animation.Manager
	log      *zap.Logger
	duration time.Duration
	easing   string

	root     *scene.Node
	table    map[*scene.Node]Offset
	order    []*scene.Node
	progress animation.Values
	exploded bool
	playing  *animation.Handle
}

// Option configures a Choreographer.
type Option func(*Choreographer)

// WithDuration sets the tween duration.
func WithDuration(d time.Duration) Option {
	return func(c *Choreographer) { c.duration = d }
}

// WithEasing sets the tween easing id.
func WithEasing(id string) Option {
	return func(c *Choreographer) { c.easing = id }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Choreographer) { c.log = l }
}

// New creates a choreographer registering its tweens with anims.
func New(anims *animation.Manager, opts ...Option) *Choreographer {
	c := &Choreographer{
		anims:    anims,
		duration: DefaultDuration,
		easing:   DefaultEasing,
		table:    make(map[*scene.Node]Offset),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.log == nil {
		c.log = logger.Named("explode")
	}
	return c
}

// ExplodedPosition returns original pushed outwards by factor along its
// own direction from the origin.
func ExplodedPosition(original math.Vec3, factor float32) math.Vec3 {
	return original.Add(original.Normalize().Scale(factor))
}

// Register builds the offset table for every mesh below root and
// (re)registers the explode and implode animations. A previous table is
// replaced; handles already playing are the caller's to stop.
func (c *Choreographer) Register(root *scene.Node, factor float32) error {
	if root == nil {
		return errors.New("explode: nil model")
	}
	table := make(map[*scene.Node]Offset)
	var order []*scene.Node
	root.Traverse(func(n *scene.Node) {
		if n == root || !n.IsMesh() {
			return
		}
		table[n] = Offset{Original: n.Translation, Exploded: ExplodedPosition(n.Translation, factor)}
		order = append(order, n)
	})

	c.root = root
	c.table = table
	c.order = order
	c.exploded = false
	c.playing = nil

	// Both tweens drive one shared progress value, so reversing half way
	// starts from where the parts are.
	c.progress = animation.Values{progressKey: 0}
	c.unregister()
	for _, d := range []struct {
		name string
		to   float64
	}{
		{ExplodeAnimation, 1},
		{ImplodeAnimation, 0},
	} {
		err := c.anims.Register(d.name, animation.Definition{
			Kind:     animation.KindTween,
			Target:   c.progress,
			To:       animation.Values{progressKey: d.to},
			Duration: c.duration,
			Easing:   c.easing,
			OnUpdate: c.apply,
		})
		if err != nil {
			return err
		}
	}

	c.log.Debug("explode registered", zap.Int("parts", len(order)), zap.Float32("factor", factor))
	return nil
}

// apply moves every tracked part to progress between its two positions.
func (c *Choreographer) apply(t animation.Target) {
	p, _ := t.Get(progressKey)
	c.SetProgress(float32(p))
}

// SetProgress places every part at progress (0 assembled, 1 exploded).
func (c *Choreographer) SetProgress(progress float32) {
	if c.progress != nil {
		c.progress[progressKey] = float64(progress)
	}
	for _, n := range c.order {
		off := c.table[n]
		n.Translation = off.Original.Lerp(off.Exploded, progress)
	}
}

// Offset returns the stored positions for a part.
func (c *Choreographer) Offset(n *scene.Node) (Offset, bool) {
	off, ok := c.table[n]
	return off, ok
}

// Parts returns the number of tracked parts.
func (c *Choreographer) Parts() int {
	return len(c.order)
}

// Exploded reports the state the last Explode, Implode or Toggle moved to.
func (c *Choreographer) Exploded() bool {
	return c.exploded
}

// Explode plays the explode animation.
func (c *Choreographer) Explode() *animation.Handle {
	return c.play(ExplodeAnimation, true)
}

// Implode plays the implode animation.
func (c *Choreographer) Implode() *animation.Handle {
	return c.play(ImplodeAnimation, false)
}

// Toggle explodes an assembled model and implodes an exploded one.
func (c *Choreographer) Toggle() *animation.Handle {
	if c.exploded {
		return c.Implode()
	}
	return c.Explode()
}

func (c *Choreographer) play(name string, exploded bool) *animation.Handle {
	if c.root == nil {
		c.log.Warn("no model registered", zap.String("animation", name))
		return nil
	}
	c.playing.Stop()
	h := c.anims.Play(name, animation.Options{})
	if h != nil {
		c.exploded = exploded
		c.playing = h
	}
	return h
}

// Clear restores every part to its original position and forgets the model.
func (c *Choreographer) Clear() {
	c.playing.Stop()
	c.SetProgress(0)
	c.root = nil
	c.table = make(map[*scene.Node]Offset)
	c.order = nil
	c.progress = nil
	c.exploded = false
	c.playing = nil
	c.unregister()
}

func (c *Choreographer) unregister() {
	c.anims.Unregister(ExplodeAnimation)
	c.anims.Unregister(ImplodeAnimation)
}

// Package worker runs the viewer's long-lived background tasks.
package worker

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"
)

// Group runs tasks until Stop. Stop cancels the shared context before
// waiting, so tasks blocked on ctx.Done always return.
type Group struct {
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	log    *zap.Logger
}

// New returns a group whose tasks end when parent ends or Stop is called.
func New(parent context.Context, log *zap.Logger) *Group {
	if log == nil {
		log = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(parent)
	return &Group{ctx: ctx, cancel: cancel, log: log}
}

// Context is the context handed to every task.
func (g *Group) Context() context.Context {
	return g.ctx
}

// Go starts fn. A returned error other than cancellation is logged under name.
func (g *Group) Go(name string, fn func(ctx context.Context) error) {
	g.wg.Add(1)
	go func() {
		defer g.wg.Done()
		if err := fn(g.ctx); err != nil && !errors.Is(err, context.Canceled) {
			g.log.Error("background task stopped", zap.String("task", name), zap.Error(err))
		}
	}()
}

// Stop cancels every task and waits for them to return.
func (g *Group) Stop() {
	g.cancel()
	g.wg.Wait()
}

package animation

// HandleID identifies a playback within its manager.
type HandleID uint64

// Handle is a running playback returned by Play. A nil *Handle is the null
// handle; its methods are safe to call.
type Handle struct {
	id     HandleID
	name   string
	kind   Kind
	active bool
	m      *Manager

	tween  *tween
	mixer  Mixer
	action Action

	onComplete func()
	onStop     func()
}

// ID returns the playback id.
func (h *Handle) ID() HandleID {
	if h == nil {
		return 0
	}
	return h.id
}

// Name returns the definition name the playback was started from.
func (h *Handle) Name() string {
	if h == nil {
		return ""
	}
	return h.name
}

// Kind returns the definition kind.
func (h *Handle) Kind() Kind {
	if h == nil {
		return 0
	}
	return h.kind
}

// Active reports whether the playback is still in its manager's active set.
func (h *Handle) Active() bool {
	return h != nil && h.active
}

// Stop stops the playback. It is a no-op on nil or stopped handles.
func (h *Handle) Stop() {
	if h == nil || h.m == nil {
		return
	}
	h.m.Stop(h)
}

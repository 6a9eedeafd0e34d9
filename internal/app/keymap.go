package app

import (
	"github.com/veandco/go-sdl2/sdl"

	"github.com/Faultbox/phoneview/internal/engine/input"
	"github.com/Faultbox/phoneview/internal/viewer"
)

const keyHelp = "R reset  A rotate  E explode  Tab part  I info  N/1-9 model  P shot  F full"

// Mouse buttons share the pointer space with fingers under this ID.
const mousePointerID = -1

// Keymap binds keys to viewer actions.
type Keymap map[sdl.Scancode]viewer.Action

// DefaultKeymap returns the stock bindings.
func DefaultKeymap() Keymap {
	km := Keymap{
		sdl.SCANCODE_R:      viewer.ActionResetView,
		sdl.SCANCODE_A:      viewer.ActionToggleAutoRotate,
		sdl.SCANCODE_F:      viewer.ActionToggleFullscreen,
		sdl.SCANCODE_E:      viewer.ActionToggleExplode,
		sdl.SCANCODE_TAB:    viewer.ActionNextPart,
		sdl.SCANCODE_I:      viewer.ActionToggleInfo,
		sdl.SCANCODE_ESCAPE: viewer.ActionEscape,
		sdl.SCANCODE_N:      viewer.ActionNextModel,
		sdl.SCANCODE_P:      viewer.ActionScreenshot,
	}
	for i := 0; i < 9; i++ {
		km[sdl.SCANCODE_1+sdl.Scancode(i)] = viewer.SelectModel(i)
	}
	return km
}

// Lookup returns the action bound to key.
func (k Keymap) Lookup(key sdl.Scancode) (viewer.Action, bool) {
	a, ok := k[key]
	return a, ok
}

var fingerKinds = map[input.EventType]viewer.PointerKind{
	input.EventFingerDown: viewer.PointerDown,
	input.EventFingerMove: viewer.PointerMove,
	input.EventFingerUp:   viewer.PointerUp,
}

// handleMouse maps the left button to a pointer and right or middle drags
// to panning.
func (a *App) handleMouse(ev input.Event) {
	x, y := float32(ev.MouseX), float32(ev.MouseY)
	switch ev.Type {
	case input.EventMouseDown:
		if ev.Button == sdl.BUTTON_LEFT {
			a.session.HandlePointer(viewer.PointerEvent{Kind: viewer.PointerDown, ID: mousePointerID, X: x, Y: y})
		}
	case input.EventMouseUp:
		if ev.Button == sdl.BUTTON_LEFT {
			a.session.HandlePointer(viewer.PointerEvent{Kind: viewer.PointerUp, ID: mousePointerID, X: x, Y: y})
		}
	case input.EventMouseMove:
		if a.input.ButtonHeld(sdl.BUTTON_LEFT) {
			a.session.HandlePointer(viewer.PointerEvent{Kind: viewer.PointerMove, ID: mousePointerID, X: x, Y: y})
		}
		if a.input.ButtonHeld(sdl.BUTTON_RIGHT) || a.input.ButtonHeld(sdl.BUTTON_MIDDLE) {
			a.session.HandlePan(float32(ev.RelX), float32(ev.RelY))
		}
	}
}

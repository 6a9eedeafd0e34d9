package viewer

import "fmt"

// Action is a user command from the keyboard or a remote client.
type Action int

const (
	ActionNone Action = iota
	ActionResetView
	ActionToggleAutoRotate
	ActionToggleFullscreen
	ActionToggleExplode
	ActionExplode
	ActionImplode
	ActionNextPart
	ActionEscape
	ActionNextModel
	ActionScreenshot
	ActionToggleInfo

	// ActionSelectModel1 through ActionSelectModel9 pick catalog entries by
	// position and must stay contiguous.
	ActionSelectModel1
	ActionSelectModel2
	ActionSelectModel3
	ActionSelectModel4
	ActionSelectModel5
	ActionSelectModel6
	ActionSelectModel7
	ActionSelectModel8
	ActionSelectModel9
)

var actionNames = map[Action]string{
	ActionResetView:        "reset",
	ActionToggleAutoRotate: "auto_rotate",
	ActionToggleFullscreen: "fullscreen",
	ActionToggleExplode:    "toggle_explode",
	ActionExplode:          "explode",
	ActionImplode:          "implode",
	ActionNextPart:         "next_part",
	ActionEscape:           "escape",
	ActionNextModel:        "next_model",
	ActionScreenshot:       "screenshot",
	ActionToggleInfo:       "info",
}

func (a Action) String() string {
	if i, ok := a.ModelIndex(); ok {
		return fmt.Sprintf("model_%d", i+1)
	}
	if name, ok := actionNames[a]; ok {
		return name
	}
	return fmt.Sprintf("action(%d)", int(a))
}

// ModelIndex returns the zero-based catalog position a select action picks.
func (a Action) ModelIndex() (int, bool) {
	if a < ActionSelectModel1 || a > ActionSelectModel9 {
		return 0, false
	}
	return int(a - ActionSelectModel1), true
}

// SelectModel returns the action selecting catalog entry i (zero based),
// or ActionNone when i is out of the 1-9 key range.
func SelectModel(i int) Action {
	if i < 0 || i > 8 {
		return ActionNone
	}
	return ActionSelectModel1 + Action(i)
}

// ParseAction maps a remote action name to an Action.
func ParseAction(name string) (Action, error) {
	for a, n := range actionNames {
		if n == name {
			return a, nil
		}
	}
	var i int
	if _, err := fmt.Sscanf(name, "model_%d", &i); err == nil {
		if a := SelectModel(i - 1); a != ActionNone {
			return a, nil
		}
	}
	return ActionNone, fmt.Errorf("unknown action %q", name)
}

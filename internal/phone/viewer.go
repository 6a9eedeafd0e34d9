package phone

import (
	"sort"

	"go.uber.org/zap"

	"github.com/Faultbox/phoneview/internal/scene"
	"github.com/Faultbox/phoneview/pkg/math"
)

// HighlightColor is the base color a highlighted part is drawn with.
var HighlightColor = [4]float32{0, 1, 0, 1}

// Viewer holds the model on display and its named parts.
type Viewer struct {
	log         *zap.Logger
	model       *scene.Model
	parts       map[string]*scene.Node
	names       []string
	highlighted *scene.Node
}

// NewViewer returns an empty viewer.
func NewViewer(log *zap.Logger) *Viewer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Viewer{log: log, parts: make(map[string]*scene.Node)}
}

// Set replaces the current model. The root is placed at the origin with
// unit scale. Named mesh nodes become parts.
func (v *Viewer) Set(model *scene.Model) {
	v.Clear()
	if model == nil {
		return
	}
	v.model = model
	model.Root.Translation = math.Vec3{}
	model.Root.Scale = math.Vec3{X: 1, Y: 1, Z: 1}
	for _, n := range model.Meshes() {
		if n.Name != "" {
			v.parts[n.Name] = n
		}
	}
	v.names = make([]string, 0, len(v.parts))
	for name := range v.parts {
		v.names = append(v.names, name)
	}
	sort.Strings(v.names)
	v.log.Info("model shown", zap.String("model", model.Name), zap.Int("parts", len(v.names)))
}

// Clear forgets the current model and its parts.
func (v *Viewer) Clear() {
	if v.model == nil {
		return
	}
	v.log.Debug("model cleared", zap.String("model", v.model.Name))
	v.model = nil
	v.parts = make(map[string]*scene.Node)
	v.names = nil
	v.highlighted = nil
}

// Current returns the model on display, or nil.
func (v *Viewer) Current() *scene.Model {
	return v.model
}

// PartNames returns the sorted part names.
func (v *Viewer) PartNames() []string {
	return append([]string(nil), v.names...)
}

// Part returns the named part, or nil.
func (v *Viewer) Part(name string) *scene.Node {
	return v.parts[name]
}

// PartOf returns the part n belongs to: n itself when it is a part,
// otherwise its nearest part ancestor.
func (v *Viewer) PartOf(n *scene.Node) *scene.Node {
	for ; n != nil; n = n.Parent {
		if n.Name != "" && v.parts[n.Name] == n {
			return n
		}
	}
	return nil
}

// Highlight marks the named part, clearing any previous highlight. It
// reports whether the part exists.
func (v *Viewer) Highlight(name string) bool {
	v.ResetHighlight()
	part := v.parts[name]
	if part == nil {
		return false
	}
	v.highlighted = part
	return true
}

// HighlightNext moves the highlight to the next part in name order and
// returns its name, or "" when the model has no parts.
func (v *Viewer) HighlightNext() string {
	if len(v.names) == 0 {
		return ""
	}
	next := 0
	if v.highlighted != nil {
		i := sort.SearchStrings(v.names, v.highlighted.Name)
		next = (i + 1) % len(v.names)
	}
	v.Highlight(v.names[next])
	return v.names[next]
}

// ResetHighlight clears the highlight.
func (v *Viewer) ResetHighlight() {
	v.highlighted = nil
}

// Highlighted returns the highlighted part, or nil.
func (v *Viewer) Highlighted() *scene.Node {
	return v.highlighted
}

// SetPosition moves the model root.
func (v *Viewer) SetPosition(p math.Vec3) {
	if v.model != nil {
		v.model.Root.Translation = p
	}
}

// SetRotation sets the model root rotation from Euler angles in radians.
func (v *Viewer) SetRotation(x, y, z float32) {
	if v.model != nil {
		v.model.Root.Rotation = math.QuatFromEuler(x, y, z)
	}
}

// SetOrientation sets the model root rotation directly.
func (v *Viewer) SetOrientation(q math.Quat) {
	if v.model != nil {
		v.model.Root.Rotation = q.Normalize()
	}
}

// SetScale scales the model root uniformly.
func (v *Viewer) SetScale(s float32) {
	if v.model != nil {
		v.model.Root.Scale = math.Vec3{X: s, Y: s, Z: s}
	}
}

package scene

import (
	"sort"

	"github.com/Faultbox/phoneview/internal/animation"
	"github.com/Faultbox/phoneview/pkg/math"
)

// Model is a loaded asset: a node tree plus its clips. Node names are unique
// within a model.
type Model struct {
	Name  string
	Path  string
	Root  *Node
	Clips []*animation.Clip

	byName map[string]*Node
}

// NewModel indexes root's subtree by name. Later duplicates shadow earlier
// ones; the glTF loader renames duplicates before this point.
func NewModel(name string, root *Node, clips []*animation.Clip) *Model {
	m := &Model{Name: name, Root: root, Clips: clips, byName: make(map[string]*Node)}
	root.Traverse(func(n *Node) {
		if n.Name != "" {
			m.byName[n.Name] = n
		}
	})
	return m
}

// Node returns the node with the given name, or nil.
func (m *Model) Node(name string) *Node {
	return m.byName[name]
}

// Meshes returns every mesh node below the root in traversal order.
func (m *Model) Meshes() []*Node {
	var out []*Node
	m.Root.Traverse(func(n *Node) {
		if n != m.Root && n.IsMesh() {
			out = append(out, n)
		}
	})
	return out
}

// MeshNames returns the sorted names of the mesh nodes.
func (m *Model) MeshNames() []string {
	meshes := m.Meshes()
	names := make([]string, 0, len(meshes))
	for _, n := range meshes {
		names = append(names, n.Name)
	}
	sort.Strings(names)
	return names
}

// Bounds returns the world-space bounds of the whole model.
func (m *Model) Bounds() math.Box3 {
	return m.Root.WorldBounds()
}

// Clip returns the clip named name, or nil.
func (m *Model) Clip(name string) *animation.Clip {
	for _, c := range m.Clips {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// SetTranslation implements animation.ClipTarget.
func (m *Model) SetTranslation(node string, v math.Vec3) bool {
	n := m.byName[node]
	if n == nil {
		return false
	}
	n.Translation = v
	return true
}

// SetRotation implements animation.ClipTarget.
func (m *Model) SetRotation(node string, q math.Quat) bool {
	n := m.byName[node]
	if n == nil {
		return false
	}
	n.Rotation = q
	return true
}

// SetScale implements animation.ClipTarget.
func (m *Model) SetScale(node string, v math.Vec3) bool {
	n := m.byName[node]
	if n == nil {
		return false
	}
	n.Scale = v
	return true
}

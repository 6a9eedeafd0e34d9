// Package scene holds the loaded model graph: nodes with local transforms,
// their meshes, and the authored animation clips.
package scene

import (
	"github.com/Faultbox/phoneview/pkg/math"
)

// Node is a transform in the model hierarchy, optionally carrying a mesh.
// Transforms are local to the parent, as authored.
type Node struct {
	Name        string
	Translation math.Vec3
	Rotation    math.Quat
	Scale       math.Vec3
	Mesh        *Mesh
	Children    []*Node
	Parent      *Node
}

// NewNode returns a node with an identity transform.
func NewNode(name string) *Node {
	return &Node{
		Name:     name,
		Rotation: math.QuatIdentity(),
		Scale:    math.Vec3{X: 1, Y: 1, Z: 1},
	}
}

// Add attaches child under n.
func (n *Node) Add(child *Node) {
	child.Parent = n
	n.Children = append(n.Children, child)
}

// hasAncestor reports whether a is n or one of its parents.
func (n *Node) hasAncestor(a *Node) bool {
	for p := n; p != nil; p = p.Parent {
		if p == a {
			return true
		}
	}
	return false
}

// IsMesh reports whether the node draws geometry.
func (n *Node) IsMesh() bool {
	return n.Mesh != nil
}

// Traverse calls fn for n and every descendant, parents before children.
func (n *Node) Traverse(fn func(*Node)) {
	fn(n)
	for _, c := range n.Children {
		c.Traverse(fn)
	}
}

// Find returns the first node named name in the subtree, or nil.
func (n *Node) Find(name string) *Node {
	if n.Name == name {
		return n
	}
	for _, c := range n.Children {
		if found := c.Find(name); found != nil {
			return found
		}
	}
	return nil
}

// LocalMatrix returns translation * rotation * scale.
func (n *Node) LocalMatrix() math.Mat4 {
	return math.Compose(n.Translation, n.Rotation, n.Scale)
}

// WorldMatrix accumulates the local matrices from the root down to n.
func (n *Node) WorldMatrix() math.Mat4 {
	m := n.LocalMatrix()
	for p := n.Parent; p != nil; p = p.Parent {
		m = p.LocalMatrix().Mul(m)
	}
	return m
}

// WorldBounds returns the world-space box around every mesh in the subtree.
func (n *Node) WorldBounds() math.Box3 {
	box := math.EmptyBox()
	n.Traverse(func(c *Node) {
		if c.Mesh != nil {
			box = box.Union(c.Mesh.Bounds.Transform(c.WorldMatrix()))
		}
	})
	return box
}

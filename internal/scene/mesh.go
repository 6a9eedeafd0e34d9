package scene

import (
	"image"

	"github.com/Faultbox/phoneview/pkg/math"
)

// VertexStride is the number of float32s per vertex: position, normal, uv.
const VertexStride = 8

// Material is the subset of glTF PBR the renderer uses.
type Material struct {
	Name      string
	BaseColor [4]float32
	Texture   image.Image // nil when untextured
}

// DefaultMaterial is applied to primitives without a material.
func DefaultMaterial() *Material {
	return &Material{Name: "default", BaseColor: [4]float32{0.8, 0.8, 0.8, 1}}
}

// Primitive is one draw call worth of indexed triangles.
type Primitive struct {
	Vertices []float32 // interleaved, VertexStride floats per vertex
	Indices  []uint32
	Material *Material
}

// VertexCount returns the number of vertices.
func (p *Primitive) VertexCount() int {
	return len(p.Vertices) / VertexStride
}

// Mesh groups the primitives of one glTF mesh.
type Mesh struct {
	Name       string
	Primitives []*Primitive
	Bounds     math.Box3 // local space
}

// computeBounds recalculates the local bounds from vertex positions.
func (m *Mesh) computeBounds() {
	box := math.EmptyBox()
	for _, p := range m.Primitives {
		for i := 0; i+2 < len(p.Vertices); i += VertexStride {
			box = box.Extend(math.Vec3{X: p.Vertices[i], Y: p.Vertices[i+1], Z: p.Vertices[i+2]})
		}
	}
	m.Bounds = box
}

// computeNormals fills smooth vertex normals from triangle faces.
func computeNormals(verts []float32, indices []uint32) {
	pos := func(i uint32) math.Vec3 {
		o := int(i) * VertexStride
		return math.Vec3{X: verts[o], Y: verts[o+1], Z: verts[o+2]}
	}
	acc := make([]math.Vec3, len(verts)/VertexStride)
	for i := 0; i+2 < len(indices); i += 3 {
		a, b, c := indices[i], indices[i+1], indices[i+2]
		n := pos(b).Sub(pos(a)).Cross(pos(c).Sub(pos(a)))
		acc[a] = acc[a].Add(n)
		acc[b] = acc[b].Add(n)
		acc[c] = acc[c].Add(n)
	}
	for i, n := range acc {
		n = n.Normalize()
		o := i*VertexStride + 3
		verts[o], verts[o+1], verts[o+2] = n.X, n.Y, n.Z
	}
}

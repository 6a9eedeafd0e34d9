// Package debug provides visual aids for the viewer: part outlines and
// screenshots.
package debug

import "github.com/Faultbox/phoneview/pkg/math"

// BBoxWireframeVertexCount is the number of vertices for a bbox wireframe (12 edges × 2).
const BBoxWireframeVertexCount = 24

// DefaultBBoxPadding is the padding around a highlighted part, as a
// fraction of its largest side.
const DefaultBBoxPadding = 0.02

// BoxWireframe creates line vertices for a wireframe bounding box.
// Returns 24 vertices (12 edges × 2 endpoints), format: [x, y, z] per vertex.
func BoxWireframe(b math.Box3) []float32 {
	minX, minY, minZ := b.Min.X, b.Min.Y, b.Min.Z
	maxX, maxY, maxZ := b.Max.X, b.Max.Y, b.Max.Z
	return []float32{
		// Bottom face (4 edges)
		minX, minY, minZ, maxX, minY, minZ,
		maxX, minY, minZ, maxX, minY, maxZ,
		maxX, minY, maxZ, minX, minY, maxZ,
		minX, minY, maxZ, minX, minY, minZ,
		// Top face (4 edges)
		minX, maxY, minZ, maxX, maxY, minZ,
		maxX, maxY, minZ, maxX, maxY, maxZ,
		maxX, maxY, maxZ, minX, maxY, maxZ,
		minX, maxY, maxZ, minX, maxY, minZ,
		// Vertical edges (4 edges)
		minX, minY, minZ, minX, maxY, minZ,
		maxX, minY, minZ, maxX, maxY, minZ,
		maxX, minY, maxZ, maxX, maxY, maxZ,
		minX, minY, maxZ, minX, maxY, maxZ,
	}
}

// PaddedBox grows b on every side by padding times its largest side.
// Empty boxes are returned unchanged.
func PaddedBox(b math.Box3, padding float32) math.Box3 {
	if b.IsEmpty() {
		return b
	}
	size := b.Size()
	pad := max(size.X, size.Y, size.Z) * padding
	d := math.Vec3{X: pad, Y: pad, Z: pad}
	return math.Box3{Min: b.Min.Sub(d), Max: b.Max.Add(d)}
}

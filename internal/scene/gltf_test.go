package scene

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Faultbox/phoneview/pkg/math"
)

func TestLoadKeepsHierarchy(t *testing.T) {
	m, err := NewLoader(zap.NewNop()).Load(context.Background(), writePhoneFixture(t))
	require.NoError(t, err)

	assert.Equal(t, "phone", m.Name)
	require.Len(t, m.Root.Children, 1)
	body := m.Root.Children[0]
	assert.Equal(t, "Phone", body.Name)
	assert.False(t, body.IsMesh())
	require.Len(t, body.Children, 3)

	screen := m.Node("Screen")
	require.NotNil(t, screen)
	assert.Same(t, body, screen.Parent)
	assert.Equal(t, math.Vec3{Z: 0.1}, screen.Translation)
	assert.Equal(t, math.Vec3{X: 1, Y: 1, Z: 1}, screen.Scale)
}

func TestLoadRenamesDuplicateNames(t *testing.T) {
	m, err := NewLoader(zap.NewNop()).Load(context.Background(), writePhoneFixture(t))
	require.NoError(t, err)

	assert.Equal(t, []string{"Battery", "Screen", "Screen_3"}, m.MeshNames())
	assert.Len(t, m.Meshes(), 3)
}

func TestLoadBuildsGeometry(t *testing.T) {
	m, err := NewLoader(zap.NewNop()).Load(context.Background(), writePhoneFixture(t))
	require.NoError(t, err)

	mesh := m.Node("Battery").Mesh
	require.NotNil(t, mesh)
	require.Len(t, mesh.Primitives, 1)
	p := mesh.Primitives[0]

	assert.Equal(t, 3, p.VertexCount())
	assert.Equal(t, []uint32{0, 1, 2}, p.Indices)
	assert.Equal(t, [4]float32{0.1, 0.2, 0.3, 1}, p.Material.BaseColor)
	assert.Equal(t, "glass", p.Material.Name)

	// Normals are generated when the file has none.
	assert.InDelta(t, 1, p.Vertices[5], 1e-6)

	assert.Equal(t, math.Vec3{}, mesh.Bounds.Min)
	assert.Equal(t, math.Vec3{X: 1, Y: 1}, mesh.Bounds.Max)

	// Nodes sharing a glTF mesh share the scene mesh.
	assert.Same(t, mesh, m.Node("Screen").Mesh)
}

func TestLoadConvertsAnimations(t *testing.T) {
	m, err := NewLoader(zap.NewNop()).Load(context.Background(), writePhoneFixture(t))
	require.NoError(t, err)

	clip := m.Clip("Slide")
	require.NotNil(t, clip)
	assert.Equal(t, float32(1), clip.Duration)
	require.Len(t, clip.Tracks, 1)
	assert.Equal(t, "Screen", clip.Tracks[0].Node)

	clip.Apply(m, 0.5)
	assert.InDelta(t, 0.3, m.Node("Screen").Translation.Z, 1e-6)
}

func TestWorldBounds(t *testing.T) {
	m, err := NewLoader(zap.NewNop()).Load(context.Background(), writePhoneFixture(t))
	require.NoError(t, err)

	b := m.Bounds()
	assert.InDelta(t, -0.2, b.Min.Z, 1e-6)
	assert.InDelta(t, 0.1, b.Max.Z, 1e-6)
	assert.InDelta(t, 1, b.Max.X, 1e-6)
}

func TestLoadRejectsUnknownExtension(t *testing.T) {
	_, err := NewLoader(zap.NewNop()).Load(context.Background(), filepath.Join(t.TempDir(), "phone.obj"))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := NewLoader(zap.NewNop()).Load(context.Background(), filepath.Join(t.TempDir(), "nope.glb"))
	assert.Error(t, err)
}

func TestLoadAsyncDeliversOnce(t *testing.T) {
	ch := NewLoader(zap.NewNop()).LoadAsync(context.Background(), writePhoneFixture(t))

	select {
	case res, ok := <-ch:
		require.True(t, ok)
		require.NoError(t, res.Err)
		assert.NotNil(t, res.Model)
	case <-time.After(5 * time.Second):
		t.Fatal("load timed out")
	}

	_, ok := <-ch
	assert.False(t, ok, "channel closes after the result")
}

func TestLoadHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewLoader(zap.NewNop()).Load(ctx, writePhoneFixture(t))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLoadTriangleFixture(t *testing.T) {
	m, err := NewLoader(zap.NewNop()).Load(context.Background(), writeTriangleFixture(t, []uint16{0, 1, 2}, 1))
	require.NoError(t, err)
	assert.Equal(t, []uint32{0, 1, 2}, m.Node("Part").Mesh.Primitives[0].Indices)
}

func TestLoadRejectsMalformedGeometry(t *testing.T) {
	tests := []struct {
		name string
		path func(t *testing.T) string
		want string
	}{
		{
			name: "index beyond vertex count",
			path: func(t *testing.T) string { return writeTriangleFixture(t, []uint16{0, 1, 7}, 1) },
			want: "exceeds vertex count",
		},
		{
			name: "indices accessor out of range",
			path: func(t *testing.T) string { return writeTriangleFixture(t, []uint16{0, 1, 2}, 9) },
			want: "accessor 9 out of range",
		},
		{
			name: "buffer view out of range",
			path: func(t *testing.T) string {
				return writeRawFixture(t, `{
  "asset": {"version": "2.0"},
  "nodes": [{"mesh": 0}],
  "meshes": [{"primitives": [{"attributes": {"POSITION": 0}}]}],
  "accessors": [{"bufferView": 4, "componentType": 5126, "count": 3, "type": "VEC3"}]
}`)
			},
			want: "buffer view 4 out of range",
		},
		{
			name: "child cycle",
			path: func(t *testing.T) string {
				return writeRawFixture(t, `{
  "asset": {"version": "2.0"},
  "nodes": [{"name": "A", "children": [1]}, {"name": "B", "children": [0]}]
}`)
			},
			want: "not a tree edge",
		},
		{
			name: "scene root out of range",
			path: func(t *testing.T) string {
				return writeRawFixture(t, `{
  "asset": {"version": "2.0"},
  "scenes": [{"nodes": [5]}],
  "nodes": [{"name": "A"}]
}`)
			},
			want: "scene root 5 out of range",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var err error
			require.NotPanics(t, func() {
				_, err = NewLoader(zap.NewNop()).Load(context.Background(), tt.path(t))
			})
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadAsyncReportsMalformedGeometry(t *testing.T) {
	res := <-NewLoader(zap.NewNop()).LoadAsync(context.Background(), writeTriangleFixture(t, []uint16{0, 1, 7}, 1))
	assert.Nil(t, res.Model)
	assert.Error(t, res.Err)
}

package phone

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/phoneview/internal/scene"
	"github.com/Faultbox/phoneview/pkg/math"
)

func meshNode(name string) *scene.Node {
	n := scene.NewNode(name)
	n.Mesh = &scene.Mesh{
		Name:   name,
		Bounds: math.Box3{Min: math.Vec3{X: -1, Y: -2, Z: -0.5}, Max: math.Vec3{X: 1, Y: 2, Z: 0.5}},
		Primitives: []*scene.Primitive{{
			Vertices: make([]float32, 3*scene.VertexStride),
			Indices:  []uint32{0, 1, 2},
			Material: &scene.Material{Name: "glass"},
		}},
	}
	return n
}

// testModel builds root -> body -> {Screen, Battery, Camera -> Lens}.
func testModel() *scene.Model {
	root := scene.NewNode("root")
	body := scene.NewNode("body")
	camera := meshNode("Camera")
	camera.Add(scene.NewNode("Lens"))
	body.Add(meshNode("Screen"))
	body.Add(meshNode("Battery"))
	body.Add(camera)
	root.Add(body)
	return scene.NewModel("phone", root, nil)
}

func TestViewerSet(t *testing.T) {
	v := NewViewer(nil)
	assert.Nil(t, v.Current())
	assert.Empty(t, v.PartNames())

	m := testModel()
	m.Root.Translation = math.Vec3{X: 3}
	v.Set(m)

	assert.Same(t, m, v.Current())
	assert.Equal(t, []string{"Battery", "Camera", "Screen"}, v.PartNames())
	assert.Equal(t, math.Vec3{}, m.Root.Translation, "model is placed at the origin")
	assert.NotNil(t, v.Part("Screen"))
	assert.Nil(t, v.Part("body"), "non-mesh nodes are not parts")
	assert.Nil(t, v.Part("missing"))
}

func TestViewerHighlight(t *testing.T) {
	v := NewViewer(nil)
	v.Set(testModel())

	assert.True(t, v.Highlight("Screen"))
	assert.Equal(t, "Screen", v.Highlighted().Name)

	assert.False(t, v.Highlight("missing"))
	assert.Nil(t, v.Highlighted(), "a failed highlight still clears the previous one")

	assert.Equal(t, "Battery", v.HighlightNext())
	assert.Equal(t, "Camera", v.HighlightNext())
	assert.Equal(t, "Screen", v.HighlightNext())
	assert.Equal(t, "Battery", v.HighlightNext())

	v.ResetHighlight()
	assert.Nil(t, v.Highlighted())
}

func TestViewerPartOf(t *testing.T) {
	m := testModel()
	v := NewViewer(nil)
	v.Set(m)

	assert.Equal(t, "Camera", v.PartOf(m.Node("Lens")).Name)
	assert.Equal(t, "Screen", v.PartOf(m.Node("Screen")).Name)
	assert.Nil(t, v.PartOf(m.Node("body")))
	assert.Nil(t, v.PartOf(nil))
}

func TestViewerClear(t *testing.T) {
	v := NewViewer(nil)
	v.Set(testModel())
	v.Highlight("Screen")

	v.Clear()
	assert.Nil(t, v.Current())
	assert.Empty(t, v.PartNames())
	assert.Nil(t, v.Highlighted())
	assert.Nil(t, v.Part("Screen"))

	// Transforms without a model are ignored.
	v.SetPosition(math.Vec3{X: 1})
	v.SetScale(2)
}

func TestViewerTransforms(t *testing.T) {
	m := testModel()
	v := NewViewer(nil)
	v.Set(m)

	v.SetPosition(math.Vec3{X: 1, Y: 2, Z: 3})
	v.SetScale(2)
	v.SetRotation(0, 0, 0)

	assert.Equal(t, math.Vec3{X: 1, Y: 2, Z: 3}, m.Root.Translation)
	assert.Equal(t, math.Vec3{X: 2, Y: 2, Z: 2}, m.Root.Scale)
	assert.Equal(t, math.QuatIdentity(), m.Root.Rotation)

	v.SetOrientation(math.Quat{W: 2})
	assert.Equal(t, math.QuatIdentity(), m.Root.Rotation)
}

func TestInfoCard(t *testing.T) {
	m := testModel()
	entry := Entry{ID: "p", Parts: map[string]string{"Screen": "OLED panel"}}

	card := NewInfoCard(200, 100)
	card.SetViewport(800, 600)
	assert.False(t, card.Visible())

	card.Show(Describe(entry, m.Node("Screen")), 780, 5)
	require.True(t, card.Visible())
	assert.Equal(t, math.Vec2{X: 580, Y: 20}, card.Position(), "the card stays inside the viewport")
	assert.Equal(t, []string{
		"Screen",
		"OLED panel",
		"material: glass",
		"size: 2.00 x 4.00 x 1.00",
		"vertices: 3",
	}, card.Lines())

	card.Toggle(PartInfo{Name: "x"}, 0, 0)
	assert.False(t, card.Visible())

	card.Show(PartInfo{Name: "Lens"}, 100, 100)
	assert.Equal(t, []string{"Lens", noDescription, noSpecs}, card.Lines())

	card.Hide()
	card.Show(PartInfo{}, 10, 10)
	assert.False(t, card.Visible(), "unnamed parts are not shown")
}

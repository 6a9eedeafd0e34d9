package phone

import (
	"fmt"
	"sort"

	"github.com/Faultbox/phoneview/internal/scene"
	"github.com/Faultbox/phoneview/pkg/math"
)

// Card placement keeps this far from the viewport edges.
const cardMargin = 20

// Default card size in pixels, until the overlay measures its text.
const (
	DefaultCardWidth  = 280
	DefaultCardHeight = 180
)

const (
	noDescription = "No description available"
	noSpecs       = "No specs available"
)

// PartInfo is what the card displays for a part.
type PartInfo struct {
	Name        string
	Description string
	Specs       map[string]string
}

// Describe builds the card content for part n of the model in entry.
func Describe(entry Entry, n *scene.Node) PartInfo {
	info := PartInfo{Name: n.Name, Description: entry.Parts[n.Name], Specs: map[string]string{}}
	if n.Mesh != nil {
		var verts int
		for _, p := range n.Mesh.Primitives {
			verts += p.VertexCount()
		}
		info.Specs["vertices"] = fmt.Sprint(verts)
		if len(n.Mesh.Primitives) > 0 && n.Mesh.Primitives[0].Material != nil && n.Mesh.Primitives[0].Material.Name != "" {
			info.Specs["material"] = n.Mesh.Primitives[0].Material.Name
		}
		size := n.WorldBounds().Size()
		info.Specs["size"] = fmt.Sprintf("%.2f x %.2f x %.2f", size.X, size.Y, size.Z)
	}
	return info
}

// InfoCard is the part detail overlay.
type InfoCard struct {
	visible  bool
	info     PartInfo
	pos      math.Vec2
	viewport math.Vec2
	size     math.Vec2
}

// NewInfoCard returns a hidden card of the given pixel size.
func NewInfoCard(width, height float32) *InfoCard {
	return &InfoCard{size: math.Vec2{X: width, Y: height}}
}

// SetSize sets the card size used for placement.
func (c *InfoCard) SetSize(width, height float32) {
	c.size = math.Vec2{X: width, Y: height}
}

// SetViewport sets the area the card is kept inside.
func (c *InfoCard) SetViewport(width, height float32) {
	c.viewport = math.Vec2{X: width, Y: height}
}

// Show displays info with its top-left corner near (x, y), kept inside
// the viewport. A part without a name is ignored.
func (c *InfoCard) Show(info PartInfo, x, y float32) {
	if info.Name == "" {
		return
	}
	c.info = info
	c.pos = math.Vec2{X: x, Y: y}
	if c.viewport.X > 0 && c.viewport.Y > 0 {
		c.pos.X = math.Clamp(x, cardMargin, max(cardMargin, c.viewport.X-c.size.X-cardMargin))
		c.pos.Y = math.Clamp(y, cardMargin, max(cardMargin, c.viewport.Y-c.size.Y-cardMargin))
	}
	c.visible = true
}

// Hide hides the card.
func (c *InfoCard) Hide() {
	c.visible = false
}

// Toggle hides a visible card or shows info.
func (c *InfoCard) Toggle(info PartInfo, x, y float32) {
	if c.visible {
		c.Hide()
		return
	}
	c.Show(info, x, y)
}

// Visible reports whether the card is shown.
func (c *InfoCard) Visible() bool {
	return c.visible
}

// Position returns the card's top-left corner.
func (c *InfoCard) Position() math.Vec2 {
	return c.pos
}

// Info returns the displayed part.
func (c *InfoCard) Info() PartInfo {
	return c.info
}

// Lines renders the card as text.
func (c *InfoCard) Lines() []string {
	return CardLines(c.info)
}

// CardLines renders info as text: the part name, its description, then
// one "key: value" line per spec in key order.
func CardLines(info PartInfo) []string {
	desc := info.Description
	if desc == "" {
		desc = noDescription
	}
	lines := []string{info.Name, desc}
	if len(info.Specs) == 0 {
		return append(lines, noSpecs)
	}
	keys := make([]string, 0, len(info.Specs))
	for k := range info.Specs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		lines = append(lines, fmt.Sprintf("%s: %s", k, info.Specs[k]))
	}
	return lines
}

package picking

import (
	"testing"

	"github.com/Faultbox/phoneview/internal/scene"
	"github.com/Faultbox/phoneview/pkg/math"
)

func unitBox() math.Box3 {
	return math.Box3{Min: math.Vec3{X: -1, Y: -1, Z: -1}, Max: math.Vec3{X: 1, Y: 1, Z: 1}}
}

func TestIntersectBox(t *testing.T) {
	tests := []struct {
		name  string
		ray   Ray
		hit   bool
		wantT float32
	}{
		{"straight on", Ray{Origin: math.Vec3{Z: 5}, Direction: math.Vec3{Z: -1}}, true, 4},
		{"miss to the side", Ray{Origin: math.Vec3{X: 3, Z: 5}, Direction: math.Vec3{Z: -1}}, false, 0},
		{"pointing away", Ray{Origin: math.Vec3{Z: 5}, Direction: math.Vec3{Z: 1}}, false, 0},
		{"from inside", Ray{Origin: math.Vec3{}, Direction: math.Vec3{X: 1}}, true, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, hit := tt.ray.IntersectBox(unitBox())
			if hit != tt.hit {
				t.Fatalf("hit = %v, want %v", hit, tt.hit)
			}
			if hit && got != tt.wantT {
				t.Errorf("t = %v, want %v", got, tt.wantT)
			}
		})
	}

	if _, hit := (Ray{Direction: math.Vec3{Z: -1}}).IntersectBox(math.EmptyBox()); hit {
		t.Error("empty box should never be hit")
	}
}

func TestScreenToRayCenter(t *testing.T) {
	view := math.LookAt(math.Vec3{Z: 10}, math.Vec3{}, math.Vec3{Y: 1})
	proj := math.Perspective(math.Radians(45), 1, 0.1, 1000)
	inv := proj.Mul(view).Inverse()

	r := ScreenToRay(400, 400, 800, 800, inv)
	if !r.Direction.ApproxEqual(math.Vec3{Z: -1}, 1e-4) {
		t.Errorf("center ray direction = %v, want (0,0,-1)", r.Direction)
	}
	if r.Origin.X > 1e-4 || r.Origin.X < -1e-4 || r.Origin.Z > 10 {
		t.Errorf("center ray origin = %v, want on the view axis in front of the eye", r.Origin)
	}

	left := ScreenToRay(0, 400, 800, 800, inv)
	if left.Direction.X >= 0 {
		t.Errorf("left edge ray should point to -X, got %v", left.Direction)
	}
}

func part(name string, pos math.Vec3) *scene.Node {
	n := scene.NewNode(name)
	n.Translation = pos
	n.Mesh = &scene.Mesh{Name: name, Bounds: unitBox()}
	return n
}

func TestPickNearest(t *testing.T) {
	root := scene.NewNode("root")
	root.Mesh = &scene.Mesh{Bounds: math.Box3{Min: math.Vec3{X: -50, Y: -50, Z: -50}, Max: math.Vec3{X: 50, Y: 50, Z: 50}}}
	back := part("back", math.Vec3{Z: -3})
	front := part("front", math.Vec3{Z: 2})
	side := part("side", math.Vec3{X: 5})
	root.Add(back)
	root.Add(front)
	root.Add(side)

	r := Ray{Origin: math.Vec3{Z: 10}, Direction: math.Vec3{Z: -1}}
	hit, ok := Pick(r, root)
	if !ok {
		t.Fatal("expected a hit")
	}
	if hit.Node != front {
		t.Errorf("picked %q, want front", hit.Node.Name)
	}
	if hit.Distance != 7 || hit.Point != (math.Vec3{Z: 3}) {
		t.Errorf("hit at t=%v point=%v, want t=7 point=(0,0,3)", hit.Distance, hit.Point)
	}

	r = Ray{Origin: math.Vec3{X: 20, Y: 20, Z: 10}, Direction: math.Vec3{Z: -1}}
	if hit, ok := Pick(r, root); ok {
		t.Errorf("ray outside every part picked %q", hit.Node.Name)
	}

	if _, ok := Pick(r, nil); ok {
		t.Error("nil root should not pick")
	}
}

package scene

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	stdmath "math"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/qmuntal/gltf"
	"go.uber.org/zap"

	"github.com/Faultbox/phoneview/internal/animation"
	"github.com/Faultbox/phoneview/internal/logger"
	"github.com/Faultbox/phoneview/pkg/math"
)

// ErrUnsupportedFormat is returned for files that are not glTF or GLB.
var ErrUnsupportedFormat = errors.New("unsupported model format")

// Loader parses glTF 2.0 assets into models.
type Loader struct {
	log *zap.Logger
}

// NewLoader creates a loader. A nil logger uses the "scene" component logger.
func NewLoader(log *zap.Logger) *Loader {
	if log == nil {
		log = logger.Named("scene")
	}
	return &Loader{log: log}
}

// Result is the outcome of an asynchronous load.
type Result struct {
	Path  string
	Model *Model
	Err   error
}

// LoadAsync parses path on a separate goroutine. The channel receives
// exactly one result and is then closed. Only parsing happens off the
// caller's goroutine; GPU upload stays with the caller.
func (l *Loader) LoadAsync(ctx context.Context, path string) <-chan Result {
	out := make(chan Result, 1)
	go func() {
		defer close(out)
		m, err := l.Load(ctx, path)
		out <- Result{Path: path, Model: m, Err: err}
	}()
	return out
}

// Load parses a .glb or .gltf file. The node hierarchy is kept with local
// transforms; animations become clips keyed by node name.
func (l *Loader) Load(ctx context.Context, path string) (*Model, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".glb", ".gltf":
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}

	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open gltf %s: %w", path, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	b := &builder{
		doc:       doc,
		path:      path,
		log:       l.log,
		nodes:     make([]*Node, len(doc.Nodes)),
		meshes:    make(map[int]*Mesh),
		materials: make(map[int]*Material),
	}
	root, err := b.buildScene(ctx)
	if err != nil {
		return nil, err
	}
	clips := b.buildClips()

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	m := NewModel(name, root, clips)
	m.Path = path

	l.log.Info("model loaded",
		zap.String("path", path),
		zap.Int("nodes", len(doc.Nodes)),
		zap.Int("parts", len(m.Meshes())),
		zap.Int("clips", len(clips)))
	return m, nil
}

type builder struct {
	doc       *gltf.Document
	path      string
	log       *zap.Logger
	nodes     []*Node
	meshes    map[int]*Mesh
	materials map[int]*Material
	names     map[string]int
}

// buildScene creates every node, then links the default scene's roots under
// a synthetic root so the model always has a single top node.
func (b *builder) buildScene(ctx context.Context) (*Node, error) {
	b.names = make(map[string]int)
	for i, gn := range b.doc.Nodes {
		n := NewNode(b.uniqueName(gn.Name, i))
		applyTransform(n, gn)
		if gn.Mesh != nil {
			mesh, err := b.mesh(*gn.Mesh)
			if err != nil {
				return nil, fmt.Errorf("node %q: %w", n.Name, err)
			}
			n.Mesh = mesh
		}
		b.nodes[i] = n
		if err := ctx.Err(); err != nil {
			return nil, err
		}
	}
	for i, gn := range b.doc.Nodes {
		for _, c := range gn.Children {
			if c < 0 || c >= len(b.nodes) {
				return nil, fmt.Errorf("node %q: child %d out of range", b.nodes[i].Name, c)
			}
			if b.nodes[c].Parent != nil || b.nodes[i].hasAncestor(b.nodes[c]) {
				return nil, fmt.Errorf("node %q: child %d is not a tree edge", b.nodes[i].Name, c)
			}
			b.nodes[i].Add(b.nodes[c])
		}
	}

	root := NewNode("root")
	for _, idx := range b.rootIndices() {
		if idx < 0 || idx >= len(b.nodes) {
			return nil, fmt.Errorf("scene root %d out of range", idx)
		}
		if b.nodes[idx].Parent == nil {
			root.Add(b.nodes[idx])
		}
	}
	return root, nil
}

func (b *builder) rootIndices() []int {
	if len(b.doc.Scenes) > 0 {
		sceneIdx := 0
		if b.doc.Scene != nil {
			sceneIdx = *b.doc.Scene
		}
		if sceneIdx >= 0 && sceneIdx < len(b.doc.Scenes) {
			return b.doc.Scenes[sceneIdx].Nodes
		}
	}
	// No scene: every parentless node is a root.
	child := make(map[int]bool)
	for _, gn := range b.doc.Nodes {
		for _, c := range gn.Children {
			child[c] = true
		}
	}
	var roots []int
	for i := range b.doc.Nodes {
		if !child[i] {
			roots = append(roots, i)
		}
	}
	return roots
}

// uniqueName keeps authored names where possible; parts are looked up by
// name so collisions get an index suffix.
func (b *builder) uniqueName(name string, idx int) string {
	if name == "" {
		name = "node_" + strconv.Itoa(idx)
	}
	if _, taken := b.names[name]; taken {
		name = name + "_" + strconv.Itoa(idx)
	}
	b.names[name] = idx
	return name
}

func applyTransform(n *Node, gn *gltf.Node) {
	identity := [16]float64{1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1}
	if gn.Matrix != identity && gn.Matrix != [16]float64{} {
		var m math.Mat4
		for i, v := range gn.Matrix {
			m[i] = float32(v)
		}
		n.Translation, n.Rotation, n.Scale = m.Decompose()
		return
	}
	n.Translation = math.Vec3{X: float32(gn.Translation[0]), Y: float32(gn.Translation[1]), Z: float32(gn.Translation[2])}
	if gn.Rotation != [4]float64{} {
		n.Rotation = math.Quat{
			X: float32(gn.Rotation[0]),
			Y: float32(gn.Rotation[1]),
			Z: float32(gn.Rotation[2]),
			W: float32(gn.Rotation[3]),
		}.Normalize()
	}
	if gn.Scale != [3]float64{} {
		n.Scale = math.Vec3{X: float32(gn.Scale[0]), Y: float32(gn.Scale[1]), Z: float32(gn.Scale[2])}
	}
}

func (b *builder) mesh(idx int) (*Mesh, error) {
	if m, ok := b.meshes[idx]; ok {
		return m, nil
	}
	if idx < 0 || idx >= len(b.doc.Meshes) {
		return nil, fmt.Errorf("mesh index %d out of range", idx)
	}
	gm := b.doc.Meshes[idx]
	mesh := &Mesh{Name: gm.Name}

	for pi, prim := range gm.Primitives {
		if prim.Mode != gltf.PrimitiveTriangles && prim.Mode != 0 {
			b.log.Debug("skipping non-triangle primitive",
				zap.String("mesh", gm.Name), zap.Int("primitive", pi))
			continue
		}
		p, err := b.primitive(prim)
		if err != nil {
			return nil, fmt.Errorf("mesh %q primitive %d: %w", gm.Name, pi, err)
		}
		if p != nil {
			mesh.Primitives = append(mesh.Primitives, p)
		}
	}
	mesh.computeBounds()
	b.meshes[idx] = mesh
	return mesh, nil
}

func (b *builder) primitive(prim *gltf.Primitive) (*Primitive, error) {
	posIdx, ok := prim.Attributes[gltf.POSITION]
	if !ok {
		return nil, nil
	}
	positions, err := b.readFloats(posIdx, 3)
	if err != nil {
		return nil, fmt.Errorf("read positions: %w", err)
	}
	count := len(positions) / 3

	var normals, uvs []float32
	if idx, ok := prim.Attributes[gltf.NORMAL]; ok {
		if normals, err = b.readFloats(idx, 3); err != nil {
			return nil, fmt.Errorf("read normals: %w", err)
		}
	}
	if idx, ok := prim.Attributes[gltf.TEXCOORD_0]; ok {
		if uvs, err = b.readFloats(idx, 2); err != nil {
			return nil, fmt.Errorf("read uvs: %w", err)
		}
	}

	verts := make([]float32, count*VertexStride)
	for i := 0; i < count; i++ {
		o := i * VertexStride
		copy(verts[o:o+3], positions[i*3:i*3+3])
		if len(normals) >= (i+1)*3 {
			copy(verts[o+3:o+6], normals[i*3:i*3+3])
		}
		if len(uvs) >= (i+1)*2 {
			verts[o+6] = uvs[i*2]
			verts[o+7] = uvs[i*2+1]
		}
	}

	var indices []uint32
	if prim.Indices != nil {
		if indices, err = b.readIndices(*prim.Indices); err != nil {
			return nil, fmt.Errorf("read indices: %w", err)
		}
	} else {
		indices = make([]uint32, count)
		for i := range indices {
			indices[i] = uint32(i)
		}
	}
	for i, v := range indices {
		if int(v) >= count {
			return nil, fmt.Errorf("index %d at position %d exceeds vertex count %d", v, i, count)
		}
	}
	if normals == nil {
		computeNormals(verts, indices)
	}

	mat := DefaultMaterial()
	if prim.Material != nil {
		mat = b.material(*prim.Material)
	}
	return &Primitive{Vertices: verts, Indices: indices, Material: mat}, nil
}

func (b *builder) material(idx int) *Material {
	if m, ok := b.materials[idx]; ok {
		return m
	}
	mat := DefaultMaterial()
	if idx >= 0 && idx < len(b.doc.Materials) {
		gm := b.doc.Materials[idx]
		mat.Name = gm.Name
		mat.BaseColor = [4]float32{1, 1, 1, 1}
		if pbr := gm.PBRMetallicRoughness; pbr != nil {
			if pbr.BaseColorFactor != nil {
				for i, v := range pbr.BaseColorFactor {
					mat.BaseColor[i] = float32(v)
				}
			}
			if pbr.BaseColorTexture != nil {
				img, err := loadTexture(b.doc, b.path, pbr.BaseColorTexture.Index)
				if err != nil {
					b.log.Warn("texture not loaded", zap.String("material", gm.Name), zap.Error(err))
				}
				mat.Texture = img
			}
		}
	}
	b.materials[idx] = mat
	return mat
}

// buildClips converts glTF animations. Morph target weights are skipped;
// cubic spline samplers keep only their values and play back linearly.
func (b *builder) buildClips() []*animation.Clip {
	var clips []*animation.Clip
	for ai, ga := range b.doc.Animations {
		name := ga.Name
		if name == "" {
			name = "animation_" + strconv.Itoa(ai)
		}
		var tracks []animation.Track
		for _, ch := range ga.Channels {
			tr, err := b.track(ga, ch)
			if err != nil {
				b.log.Warn("animation channel skipped", zap.String("clip", name), zap.Error(err))
				continue
			}
			if tr != nil {
				tracks = append(tracks, *tr)
			}
		}
		if len(tracks) > 0 {
			clips = append(clips, animation.NewClip(name, tracks))
		}
	}
	return clips
}

func (b *builder) track(ga *gltf.Animation, ch *gltf.AnimationChannel) (*animation.Track, error) {
	if ch.Target.Node == nil || *ch.Target.Node < 0 || *ch.Target.Node >= len(b.nodes) {
		return nil, errors.New("channel without target node")
	}
	if ch.Sampler < 0 || ch.Sampler >= len(ga.Samplers) {
		return nil, fmt.Errorf("sampler %d out of range", ch.Sampler)
	}
	s := ga.Samplers[ch.Sampler]

	tr := &animation.Track{Node: b.nodes[*ch.Target.Node].Name}
	comps := 3
	switch ch.Target.Path {
	case gltf.TRSTranslation:
		tr.Path = animation.PathTranslation
	case gltf.TRSScale:
		tr.Path = animation.PathScale
	case gltf.TRSRotation:
		tr.Path = animation.PathRotation
		comps = 4
	default:
		return nil, nil
	}

	times, err := b.readFloats(s.Input, 1)
	if err != nil {
		return nil, fmt.Errorf("read key times: %w", err)
	}
	values, err := b.readFloats(s.Output, comps)
	if err != nil {
		return nil, fmt.Errorf("read key values: %w", err)
	}

	cubic := s.Interpolation == gltf.InterpolationCubicSpline
	tr.Step = s.Interpolation == gltf.InterpolationStep
	for i, t := range times {
		o := i * comps
		if cubic {
			// in-tangent, value, out-tangent
			o = (i*3 + 1) * comps
		}
		if o+comps > len(values) {
			break
		}
		v := values[o : o+comps]
		if comps == 4 {
			tr.QuatKeys = append(tr.QuatKeys, animation.QuatKey{
				Time:  t,
				Value: math.Quat{X: v[0], Y: v[1], Z: v[2], W: v[3]}.Normalize(),
			})
		} else {
			tr.Vec3Keys = append(tr.Vec3Keys, animation.Vec3Key{
				Time:  t,
				Value: math.Vec3{X: v[0], Y: v[1], Z: v[2]},
			})
		}
	}
	return tr, nil
}

// readFloats reads a float accessor into a flat slice of comps values per
// element, honoring byte stride.
func (b *builder) readFloats(accessorIdx, comps int) ([]float32, error) {
	acc, data, stride, err := b.accessorBytes(accessorIdx, comps*4)
	if err != nil {
		return nil, err
	}
	if acc.ComponentType != gltf.ComponentFloat {
		return nil, fmt.Errorf("accessor %d: want float components, got %v", accessorIdx, acc.ComponentType)
	}
	out := make([]float32, 0, acc.Count*comps)
	for i := 0; i < acc.Count; i++ {
		base := i * stride
		for j := 0; j < comps; j++ {
			o := base + j*4
			if o+4 > len(data) {
				return nil, fmt.Errorf("accessor %d: data out of range", accessorIdx)
			}
			out = append(out, stdmath.Float32frombits(binary.LittleEndian.Uint32(data[o:])))
		}
	}
	return out, nil
}

func (b *builder) readIndices(accessorIdx int) ([]uint32, error) {
	if accessorIdx < 0 || accessorIdx >= len(b.doc.Accessors) {
		return nil, fmt.Errorf("accessor %d out of range", accessorIdx)
	}
	acc := b.doc.Accessors[accessorIdx]
	size := 0
	switch acc.ComponentType {
	case gltf.ComponentUbyte:
		size = 1
	case gltf.ComponentUshort:
		size = 2
	case gltf.ComponentUint:
		size = 4
	default:
		return nil, fmt.Errorf("accessor %d: unexpected index type %v", accessorIdx, acc.ComponentType)
	}
	_, data, stride, err := b.accessorBytes(accessorIdx, size)
	if err != nil {
		return nil, err
	}
	out := make([]uint32, acc.Count)
	for i := range out {
		o := i * stride
		if o+size > len(data) {
			return nil, fmt.Errorf("accessor %d: data out of range", accessorIdx)
		}
		switch size {
		case 1:
			out[i] = uint32(data[o])
		case 2:
			out[i] = uint32(binary.LittleEndian.Uint16(data[o:]))
		case 4:
			out[i] = binary.LittleEndian.Uint32(data[o:])
		}
	}
	return out, nil
}

// accessorBytes returns the accessor, the buffer slice starting at its first
// element and the element stride.
func (b *builder) accessorBytes(idx, elemSize int) (*gltf.Accessor, []byte, int, error) {
	if idx < 0 || idx >= len(b.doc.Accessors) {
		return nil, nil, 0, fmt.Errorf("accessor %d out of range", idx)
	}
	acc := b.doc.Accessors[idx]
	if acc.BufferView == nil {
		return nil, nil, 0, fmt.Errorf("accessor %d has no buffer view", idx)
	}
	bv, view, err := viewBytes(b.doc, *acc.BufferView)
	if err != nil {
		return nil, nil, 0, fmt.Errorf("accessor %d: %w", idx, err)
	}
	if acc.ByteOffset < 0 || acc.ByteOffset > len(view) {
		return nil, nil, 0, fmt.Errorf("accessor %d: offset %d outside its buffer view", idx, acc.ByteOffset)
	}
	stride := bv.ByteStride
	if stride <= 0 {
		stride = elemSize
	}
	return acc, view[acc.ByteOffset:], stride, nil
}

// viewBytes returns the bytes a buffer view covers.
func viewBytes(doc *gltf.Document, idx int) (*gltf.BufferView, []byte, error) {
	if idx < 0 || idx >= len(doc.BufferViews) {
		return nil, nil, fmt.Errorf("buffer view %d out of range", idx)
	}
	bv := doc.BufferViews[idx]
	if bv.Buffer < 0 || bv.Buffer >= len(doc.Buffers) {
		return nil, nil, fmt.Errorf("buffer view %d: buffer %d out of range", idx, bv.Buffer)
	}
	buf := doc.Buffers[bv.Buffer].Data
	start, end := bv.ByteOffset, bv.ByteOffset+bv.ByteLength
	if buf == nil || start < 0 || start > end || end > len(buf) {
		return nil, nil, fmt.Errorf("buffer view %d: buffer data missing or short", idx)
	}
	return bv, buf[start:end], nil
}

package scene

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

// writePhoneFixture writes a small .gltf with an embedded buffer: a body
// node with three triangle parts (one unnamed duplicate, one at the origin)
// and a one-second clip sliding the screen outwards.
func writePhoneFixture(t *testing.T) string {
	t.Helper()

	var buf bytes.Buffer
	le := func(v any) {
		if err := binary.Write(&buf, binary.LittleEndian, v); err != nil {
			t.Fatalf("encode fixture: %v", err)
		}
	}
	le([]float32{0, 0, 0, 1, 0, 0, 0, 1, 0}) // positions, 36 bytes
	le([]uint16{0, 1, 2, 0})                 // indices + pad, 8 bytes
	le([]float32{0, 1})                      // key times, 8 bytes
	le([]float32{0, 0, 0.1, 0, 0, 0.5})      // key translations, 24 bytes

	doc := fmt.Sprintf(`{
  "asset": {"version": "2.0"},
  "scene": 0,
  "scenes": [{"nodes": [0]}],
  "nodes": [
    {"name": "Phone", "children": [1, 2, 3]},
    {"name": "Screen", "mesh": 0, "translation": [0, 0, 0.1]},
    {"name": "Battery", "mesh": 0, "translation": [0, 0, -0.2]},
    {"name": "Screen", "mesh": 0}
  ],
  "meshes": [{"name": "tri", "primitives": [{"attributes": {"POSITION": 0}, "indices": 1, "material": 0}]}],
  "materials": [{"name": "glass", "pbrMetallicRoughness": {"baseColorFactor": [0.1, 0.2, 0.3, 1]}}],
  "accessors": [
    {"bufferView": 0, "componentType": 5126, "count": 3, "type": "VEC3", "min": [0, 0, 0], "max": [1, 1, 0]},
    {"bufferView": 1, "componentType": 5123, "count": 3, "type": "SCALAR"},
    {"bufferView": 2, "componentType": 5126, "count": 2, "type": "SCALAR", "min": [0], "max": [1]},
    {"bufferView": 3, "componentType": 5126, "count": 2, "type": "VEC3"}
  ],
  "bufferViews": [
    {"buffer": 0, "byteOffset": 0, "byteLength": 36},
    {"buffer": 0, "byteOffset": 36, "byteLength": 6},
    {"buffer": 0, "byteOffset": 44, "byteLength": 8},
    {"buffer": 0, "byteOffset": 52, "byteLength": 24}
  ],
  "buffers": [{"byteLength": %d, "uri": "data:application/octet-stream;base64,%s"}],
  "animations": [{
    "name": "Slide",
    "channels": [{"sampler": 0, "target": {"node": 1, "path": "translation"}}],
    "samplers": [{"input": 2, "output": 3, "interpolation": "LINEAR"}]
  }]
}`, buf.Len(), base64.StdEncoding.EncodeToString(buf.Bytes()))

	path := filepath.Join(t.TempDir(), "phone.gltf")
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

// writeTriangleFixture writes a single-triangle .gltf whose primitive reads
// indices from accessor indicesRef. Accessor 0 holds three positions and
// accessor 1 holds the given index values.
func writeTriangleFixture(t *testing.T, indices []uint16, indicesRef int) string {
	t.Helper()

	var buf bytes.Buffer
	le := func(v any) {
		if err := binary.Write(&buf, binary.LittleEndian, v); err != nil {
			t.Fatalf("encode fixture: %v", err)
		}
	}
	le([]float32{0, 0, 0, 1, 0, 0, 0, 1, 0})
	le(indices)
	if len(indices)%2 == 1 {
		le(uint16(0))
	}

	doc := fmt.Sprintf(`{
  "asset": {"version": "2.0"},
  "nodes": [{"name": "Part", "mesh": 0}],
  "meshes": [{"primitives": [{"attributes": {"POSITION": 0}, "indices": %d}]}],
  "accessors": [
    {"bufferView": 0, "componentType": 5126, "count": 3, "type": "VEC3"},
    {"bufferView": 1, "componentType": 5123, "count": %d, "type": "SCALAR"}
  ],
  "bufferViews": [
    {"buffer": 0, "byteOffset": 0, "byteLength": 36},
    {"buffer": 0, "byteOffset": 36, "byteLength": %d}
  ],
  "buffers": [{"byteLength": %d, "uri": "data:application/octet-stream;base64,%s"}]
}`, indicesRef, len(indices), len(indices)*2, buf.Len(), base64.StdEncoding.EncodeToString(buf.Bytes()))

	path := filepath.Join(t.TempDir(), "triangle.gltf")
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

// writeRawFixture writes doc verbatim as a .gltf file.
func writeRawFixture(t *testing.T, doc string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "raw.gltf")
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

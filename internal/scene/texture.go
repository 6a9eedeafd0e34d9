package scene

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/qmuntal/gltf"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// loadTexture decodes the image behind a glTF texture index. Embedded
// (buffer view or data URI) and external files are supported. PNG, JPEG,
// WebP and BMP decoders are registered.
func loadTexture(doc *gltf.Document, modelPath string, texIdx int) (image.Image, error) {
	if texIdx < 0 || texIdx >= len(doc.Textures) {
		return nil, fmt.Errorf("texture %d out of range", texIdx)
	}
	tex := doc.Textures[texIdx]
	if tex.Source == nil || *tex.Source < 0 || *tex.Source >= len(doc.Images) {
		return nil, fmt.Errorf("texture %d has no image source", texIdx)
	}
	img := doc.Images[*tex.Source]

	var data []byte
	switch {
	case img.BufferView != nil:
		var err error
		if _, data, err = viewBytes(doc, *img.BufferView); err != nil {
			return nil, fmt.Errorf("image %d: %w", *tex.Source, err)
		}
	case strings.HasPrefix(img.URI, "data:"):
		comma := strings.IndexByte(img.URI, ',')
		if comma < 0 {
			return nil, fmt.Errorf("image %d: malformed data uri", *tex.Source)
		}
		var err error
		if data, err = base64.StdEncoding.DecodeString(img.URI[comma+1:]); err != nil {
			return nil, fmt.Errorf("image %d: %w", *tex.Source, err)
		}
	case img.URI != "":
		var err error
		if data, err = os.ReadFile(filepath.Join(filepath.Dir(modelPath), img.URI)); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("image %d has no data", *tex.Source)
	}

	return DecodeImage(data)
}

// DecodeImage decodes any registered image format.
func DecodeImage(data []byte) (image.Image, error) {
	decoded, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return decoded, nil
}

package debug

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
)

// ScreenshotCapture writes GL captures as PNG files named
// <prefix>_<tag>_<timestamp>.png.
type ScreenshotCapture struct {
	outputDir string
	prefix    string
	now       func() time.Time
	log       *zap.Logger
}

// NewScreenshotCapture creates a capture writer for outputDir.
func NewScreenshotCapture(outputDir, prefix string, log *zap.Logger) *ScreenshotCapture {
	if log == nil {
		log = zap.NewNop()
	}
	return &ScreenshotCapture{
		outputDir: outputDir,
		prefix:    prefix,
		now:       time.Now,
		log:       log,
	}
}

// FlipRows converts bottom-up RGBA rows, as GL reads them, into an image.
func FlipRows(pixels []byte, width, height int) (*image.RGBA, error) {
	if len(pixels) != width*height*4 {
		return nil, fmt.Errorf("pixel data size mismatch: expected %d, got %d", width*height*4, len(pixels))
	}
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	row := width * 4
	for y := range height {
		src := (height - 1 - y) * row
		copy(img.Pix[y*img.Stride:y*img.Stride+row], pixels[src:src+row])
	}
	return img, nil
}

// CaptureFromPixels saves bottom-up RGBA rows. tag names what was shown,
// usually the model id, and may be empty.
func (sc *ScreenshotCapture) CaptureFromPixels(pixels []byte, width, height int, tag string) (string, error) {
	img, err := FlipRows(pixels, width, height)
	if err != nil {
		return "", err
	}

	if sc.outputDir != "" {
		if err := os.MkdirAll(sc.outputDir, 0o755); err != nil {
			return "", fmt.Errorf("creating output dir: %w", err)
		}
	}

	path := sc.filename(tag)
	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating file: %w", err)
	}
	if err := png.Encode(file, img); err != nil {
		file.Close()
		return "", fmt.Errorf("encoding PNG: %w", err)
	}
	if err := file.Close(); err != nil {
		return "", fmt.Errorf("closing %s: %w", path, err)
	}

	sc.log.Info("screenshot saved",
		zap.String("path", path),
		zap.Int("width", width),
		zap.Int("height", height))
	return path, nil
}

func (sc *ScreenshotCapture) filename(tag string) string {
	parts := []string{sc.prefix}
	if tag = sanitize(tag); tag != "" {
		parts = append(parts, tag)
	}
	parts = append(parts, sc.now().Format("2006-01-02_15-04-05.000"))
	name := strings.Join(parts, "_") + ".png"
	if sc.outputDir != "" {
		name = filepath.Join(sc.outputDir, name)
	}
	return name
}

// sanitize keeps a tag usable as a file name component.
func sanitize(tag string) string {
	if tag == "" {
		return ""
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-':
			return r
		default:
			return '-'
		}
	}, filepath.Base(strings.TrimSuffix(tag, filepath.Ext(tag))))
}

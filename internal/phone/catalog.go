// Package phone manages the phone models the viewer can show: the catalog
// of available models, the currently displayed one with its parts, and the
// info card shown for a picked part.
package phone

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

var (
	// ErrUnknownModel is returned when an id matches no catalog entry.
	ErrUnknownModel = errors.New("unknown model")

	// ErrEmptyCatalog is returned when there is nothing to select.
	ErrEmptyCatalog = errors.New("empty catalog")
)

// Info holds the hardware details shown for a model.
type Info struct {
	ScreenSize string `yaml:"screen_size" json:"screen_size"`
	Processor  string `yaml:"processor" json:"processor"`
	RAM        string `yaml:"ram" json:"ram"`
	Camera     string `yaml:"camera" json:"camera"`
}

// Entry is one selectable model.
type Entry struct {
	ID    string            `yaml:"id" json:"id"`
	Name  string            `yaml:"name" json:"name"`
	Path  string            `yaml:"path" json:"path"`
	Image string            `yaml:"image" json:"image,omitempty"`
	Info  Info              `yaml:"info" json:"info"`
	Parts map[string]string `yaml:"parts" json:"parts,omitempty"` // part name -> description
}

// Catalog is the ordered list of models.
type Catalog struct {
	Models []Entry `yaml:"models"`
}

// DefaultCatalog returns the built-in catalog.
func DefaultCatalog() *Catalog {
	return &Catalog{Models: []Entry{
		{
			ID:    "model1",
			Name:  "Phone Model 1",
			Path:  "assets/models/iphone_16_pro_max.glb",
			Image: "assets/textures/phone-texture-1.webp",
			Info: Info{
				ScreenSize: "6.1 in",
				Processor:  "Snapdragon 8 Gen 2",
				RAM:        "8GB",
				Camera:     "50MP",
			},
		},
		{
			ID:    "model2",
			Name:  "Phone Model 2",
			Path:  "assets/models/samsung_galaxy_s22_ultra.glb",
			Image: "assets/textures/phone-texture-2.png",
			Info: Info{
				ScreenSize: "6.7 in",
				Processor:  "A17 Pro",
				RAM:        "12GB",
				Camera:     "48MP",
			},
		},
	}}
}

// LoadCatalog reads a catalog file. An empty path yields the built-in
// catalog. Relative model and image paths resolve against the file's
// directory.
func LoadCatalog(path string) (*Catalog, error) {
	if path == "" {
		return DefaultCatalog(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	c, err := ParseCatalog(data)
	if err != nil {
		return nil, fmt.Errorf("catalog %s: %w", path, err)
	}
	dir := filepath.Dir(path)
	for i := range c.Models {
		c.Models[i].Path = resolve(dir, c.Models[i].Path)
		if c.Models[i].Image != "" {
			c.Models[i].Image = resolve(dir, c.Models[i].Image)
		}
	}
	return c, nil
}

// ParseCatalog decodes and validates catalog YAML.
func ParseCatalog(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate checks that ids are present and unique and every entry has a path.
func (c *Catalog) Validate() error {
	var errs []error
	seen := make(map[string]bool, len(c.Models))
	for i, m := range c.Models {
		switch {
		case m.ID == "":
			errs = append(errs, fmt.Errorf("model %d: missing id", i))
		case seen[m.ID]:
			errs = append(errs, fmt.Errorf("model %d: duplicate id %q", i, m.ID))
		}
		seen[m.ID] = true
		if m.Path == "" {
			errs = append(errs, fmt.Errorf("model %q: missing path", m.ID))
		}
	}
	return errors.Join(errs...)
}

// Len returns the number of entries.
func (c *Catalog) Len() int {
	return len(c.Models)
}

// Lookup returns the entry with the given id.
func (c *Catalog) Lookup(id string) (Entry, bool) {
	for _, m := range c.Models {
		if m.ID == id {
			return m, true
		}
	}
	return Entry{}, false
}

// Index returns the position of id, or -1.
func (c *Catalog) Index(id string) int {
	for i, m := range c.Models {
		if m.ID == id {
			return i
		}
	}
	return -1
}

// Resolve turns a command-line argument into an entry: a catalog id, or a
// path to a .glb/.gltf file outside the catalog.
func (c *Catalog) Resolve(arg string) (Entry, error) {
	if e, ok := c.Lookup(arg); ok {
		return e, nil
	}
	switch strings.ToLower(filepath.Ext(arg)) {
	case ".glb", ".gltf":
		name := strings.TrimSuffix(filepath.Base(arg), filepath.Ext(arg))
		return Entry{ID: arg, Name: name, Path: arg}, nil
	}
	return Entry{}, fmt.Errorf("%w: %q", ErrUnknownModel, arg)
}

func resolve(dir, p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(dir, p)
}

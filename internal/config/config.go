// Package config handles viewer configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// Config holds all viewer settings.
type Config struct {
	Window   WindowConfig   `yaml:"window"`
	Viewer   ViewerConfig   `yaml:"viewer"`
	Controls ControlsConfig `yaml:"controls"`
	Remote   RemoteConfig   `yaml:"remote"`
	IMU      IMUConfig      `yaml:"imu"`
	Catalog  CatalogConfig  `yaml:"catalog"`
	Storage  StorageConfig  `yaml:"storage"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// WindowConfig holds display settings.
type WindowConfig struct {
	Title      string `yaml:"title"`
	Width      int    `yaml:"width"`
	Height     int    `yaml:"height"`
	Fullscreen bool   `yaml:"fullscreen"`
	VSync      bool   `yaml:"vsync"`
	FPS        int    `yaml:"fps"` // target frame rate while the scene is live
}

// ViewerConfig holds scene and render-pacing settings.
type ViewerConfig struct {
	StaticThreshold   time.Duration `yaml:"static_threshold"`    // quiet time before throttling
	IdleFrameInterval time.Duration `yaml:"idle_frame_interval"` // frame delay while throttled
	ExplodeFactor     float32       `yaml:"explode_factor"`
	ExplodeDuration   time.Duration `yaml:"explode_duration"`
	InitialModel      string        `yaml:"initial_model"` // catalog id or file path
	Background        string        `yaml:"background"`    // #rrggbb
	StrictAnimations  bool          `yaml:"strict_animations"`
	ScreenshotDir     string        `yaml:"screenshot_dir"`
	ScreenshotScale   int           `yaml:"screenshot_scale"` // capture size as a multiple of the window
}

// ControlsConfig holds camera and gesture settings.
type ControlsConfig struct {
	Damping         bool          `yaml:"damping"`
	DampingFactor   float32       `yaml:"damping_factor"`
	MinDistance     float32       `yaml:"min_distance"`
	MaxDistance     float32       `yaml:"max_distance"`
	MaxPolarAngle   float32       `yaml:"max_polar_angle"` // radians
	Pan             bool          `yaml:"pan"`
	RotateSpeed     float32       `yaml:"rotate_speed"`
	MoveThrottle    time.Duration `yaml:"move_throttle"`
	PinchOutRatio   float32       `yaml:"pinch_out_ratio"`
	PinchInRatio    float32       `yaml:"pinch_in_ratio"`
	AutoRotate      bool          `yaml:"auto_rotate"`
	AutoRotateSpeed float32       `yaml:"auto_rotate_speed"`
}

// RemoteConfig holds the websocket bridge settings.
type RemoteConfig struct {
	Enabled           bool          `yaml:"enabled"`
	Addr              string        `yaml:"addr"`
	BroadcastInterval time.Duration `yaml:"broadcast_interval"`
}

// IMUConfig holds the serial orientation feed settings. An empty port
// disables the feed.
type IMUConfig struct {
	Port string `yaml:"port"`
	Baud int    `yaml:"baud"`
}

// CatalogConfig points at a YAML model catalog. Empty uses the built-in one.
type CatalogConfig struct {
	Path string `yaml:"path"`
}

// StorageConfig holds preference persistence settings.
type StorageConfig struct {
	AppName  string `yaml:"app_name"`
	Disabled bool   `yaml:"disabled"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Window: WindowConfig{
			Title:  "Phone Viewer",
			Width:  1280,
			Height: 720,
			VSync:  true,
			FPS:    60,
		},
		Viewer: ViewerConfig{
			StaticThreshold:   5 * time.Second,
			IdleFrameInterval: 100 * time.Millisecond,
			ExplodeFactor:     1.5,
			ExplodeDuration:   time.Second,
			Background:        "#f0f0f0",
			ScreenshotDir:     "screenshots",
			ScreenshotScale:   2,
		},
		Controls: ControlsConfig{
			Damping:         true,
			DampingFactor:   0.1,
			MinDistance:     2,
			MaxDistance:     20,
			MaxPolarAngle:   float32(math.Pi / 1.5),
			Pan:             true,
			RotateSpeed:     1,
			MoveThrottle:    16 * time.Millisecond,
			PinchOutRatio:   1.05,
			PinchInRatio:    0.95,
			AutoRotateSpeed: 1,
		},
		Remote: RemoteConfig{
			Addr:              "127.0.0.1:8089",
			BroadcastInterval: 100 * time.Millisecond,
		},
		IMU: IMUConfig{
			Baud: 115200,
		},
		Storage: StorageConfig{
			AppName: "phoneview",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Validate reports settings that cannot work together.
func (c *Config) Validate() error {
	var errs []error
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		errs = append(errs, fmt.Errorf("window size %dx%d must be positive", c.Window.Width, c.Window.Height))
	}
	if c.Window.FPS <= 0 {
		errs = append(errs, fmt.Errorf("window fps %d must be positive", c.Window.FPS))
	}
	if c.Controls.MinDistance <= 0 || c.Controls.MinDistance >= c.Controls.MaxDistance {
		errs = append(errs, fmt.Errorf("controls distance range [%g, %g] is invalid",
			c.Controls.MinDistance, c.Controls.MaxDistance))
	}
	if c.Controls.PinchInRatio >= 1 || c.Controls.PinchOutRatio <= 1 {
		errs = append(errs, fmt.Errorf("pinch ratios in=%g out=%g must straddle 1",
			c.Controls.PinchInRatio, c.Controls.PinchOutRatio))
	}
	if c.Controls.DampingFactor < 0 || c.Controls.DampingFactor > 1 {
		errs = append(errs, fmt.Errorf("damping factor %g must be within [0, 1]", c.Controls.DampingFactor))
	}
	if c.Viewer.StaticThreshold <= 0 {
		errs = append(errs, errors.New("viewer static_threshold must be positive"))
	}
	if c.Viewer.IdleFrameInterval <= 0 {
		errs = append(errs, errors.New("viewer idle_frame_interval must be positive"))
	}
	if c.Viewer.ScreenshotScale < 1 || c.Viewer.ScreenshotScale > 4 {
		errs = append(errs, fmt.Errorf("viewer screenshot_scale %d must be within [1, 4]", c.Viewer.ScreenshotScale))
	}
	if _, err := ParseColor(c.Viewer.Background); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// FrameInterval is the delay between frames while the scene is live.
func (c *Config) FrameInterval() time.Duration {
	return time.Second / time.Duration(c.Window.FPS)
}

// ParseColor parses a #rrggbb color into normalized RGB components.
func ParseColor(s string) ([3]float32, error) {
	var r, g, b uint8
	if len(s) != 7 || s[0] != '#' {
		return [3]float32{}, fmt.Errorf("color %q: want #rrggbb", s)
	}
	if _, err := fmt.Sscanf(s, "#%02x%02x%02x", &r, &g, &b); err != nil {
		return [3]float32{}, fmt.Errorf("color %q: %w", s, err)
	}
	return [3]float32{float32(r) / 255, float32(g) / 255, float32(b) / 255}, nil
}

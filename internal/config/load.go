package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"
)

// Overrides carries command-line values. Zero values leave the loaded
// configuration untouched.
type Overrides struct {
	ConfigPath string
	Debug      bool
	Width      int
	Height     int
	Fullscreen bool
	Remote     string
	IMUPort    string
	LogFile    string
	Model      string
}

// Load loads configuration with priority: defaults < file < overrides.
func Load(ov Overrides) (*Config, error) {
	cfg := Default()

	configPath := ov.ConfigPath
	if configPath == "" {
		configPath = findConfigFile()
	}

	if configPath != "" {
		if err := loadFromFile(cfg, configPath); err != nil {
			return nil, fmt.Errorf("loading config from %s: %w", configPath, err)
		}
	}

	ov.apply(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func (ov Overrides) apply(cfg *Config) {
	if ov.Debug {
		cfg.Logging.Level = "debug"
	}
	if ov.Width > 0 {
		cfg.Window.Width = ov.Width
	}
	if ov.Height > 0 {
		cfg.Window.Height = ov.Height
	}
	if ov.Fullscreen {
		cfg.Window.Fullscreen = true
	}
	if ov.Remote != "" {
		cfg.Remote.Enabled = true
		cfg.Remote.Addr = ov.Remote
	}
	if ov.IMUPort != "" {
		cfg.IMU.Port = ov.IMUPort
	}
	if ov.LogFile != "" {
		cfg.Logging.LogFile = ov.LogFile
	}
	if ov.Model != "" {
		cfg.Viewer.InitialModel = ov.Model
	}
}

// findConfigFile looks for config in standard locations.
func findConfigFile() string {
	candidates := []string{
		"./phoneview.yaml",
		DefaultPath(),
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// ConfigDir returns the OS-appropriate config directory.
func ConfigDir() string {
	switch runtime.GOOS {
	case "darwin":
		home, _ := os.UserHomeDir()
		return filepath.Join(home, "Library", "Application Support", "PhoneView")
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "PhoneView")
	default:
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, "phoneview")
		}
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "phoneview")
	}
}

// loadFromFile merges a YAML file over the values already in cfg.
func loadFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// Package prefs persists viewer preferences between runs.
package prefs

import (
	"fmt"

	"github.com/quasilyte/gdata/v2"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

const (
	prefsObject   = "prefs"
	prefsProperty = "viewer"
)

// Preferences are the settings remembered across runs. Nil fields were
// never saved and leave the configured value in charge.
type Preferences struct {
	AutoRotate      *bool    `yaml:"auto_rotate,omitempty"`
	AutoRotateSpeed *float32 `yaml:"auto_rotate_speed,omitempty"`
	LastModel       string   `yaml:"last_model,omitempty"`
}

// Defaults returns the preferences used before anything is saved.
func Defaults() Preferences {
	return Preferences{}
}

// AutoRotateOr returns the saved auto-rotate state, or def when none was saved.
func (p Preferences) AutoRotateOr(def bool) bool {
	if p.AutoRotate == nil {
		return def
	}
	return *p.AutoRotate
}

// SpeedOr returns the saved auto-rotate speed, or def when none was saved.
func (p Preferences) SpeedOr(def float32) float32 {
	if p.AutoRotateSpeed == nil || *p.AutoRotateSpeed <= 0 {
		return def
	}
	return *p.AutoRotateSpeed
}

// Store keeps preferences in memory and, when backed by a gdata manager,
// on disk. A nil manager gives a memory-only store.
type Store struct {
	data  *gdata.Manager
	prefs Preferences
	log   *zap.Logger
}

// Open creates a gdata-backed store for appName. If the platform storage
// cannot be opened the store falls back to memory only.
func Open(appName string, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	m, err := gdata.Open(gdata.Config{AppName: appName})
	if err != nil {
		log.Warn("preferences storage unavailable, using memory only", zap.Error(err))
		m = nil
	}
	return New(m, log)
}

// New creates a store on top of m and loads what it holds. Load failures
// are logged and leave the defaults in place.
func New(m *gdata.Manager, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Store{data: m, prefs: Defaults(), log: log}
	if err := s.Load(); err != nil {
		log.Warn("failed to load preferences, using defaults", zap.Error(err))
	}
	return s
}

// Persistent reports whether saves reach disk.
func (s *Store) Persistent() bool {
	return s.data != nil
}

// Load reads the saved preferences. Missing data keeps the defaults.
func (s *Store) Load() error {
	if s.data == nil || !s.data.ObjectPropExists(prefsObject, prefsProperty) {
		s.prefs = Defaults()
		return nil
	}
	raw, err := s.data.LoadObjectProp(prefsObject, prefsProperty)
	if err != nil {
		s.prefs = Defaults()
		return fmt.Errorf("load preferences: %w", err)
	}
	p := Defaults()
	if err := yaml.Unmarshal(raw, &p); err != nil {
		s.prefs = Defaults()
		return fmt.Errorf("unmarshal preferences: %w", err)
	}
	s.prefs = p
	s.log.Debug("preferences loaded", zap.Bool("auto_rotate", p.AutoRotateOr(false)), zap.String("last_model", p.LastModel))
	return nil
}

// Save writes the preferences. It is a no-op for memory-only stores.
func (s *Store) Save() error {
	if s.data == nil {
		return nil
	}
	raw, err := yaml.Marshal(s.prefs)
	if err != nil {
		return fmt.Errorf("marshal preferences: %w", err)
	}
	if err := s.data.SaveObjectProp(prefsObject, prefsProperty, raw); err != nil {
		return fmt.Errorf("save preferences: %w", err)
	}
	return nil
}

// Get returns the current preferences.
func (s *Store) Get() Preferences {
	return s.prefs
}

// SetAutoRotate records the auto-rotate state and speed.
func (s *Store) SetAutoRotate(on bool, speed float32) {
	s.prefs.AutoRotate = &on
	if speed > 0 {
		s.prefs.AutoRotateSpeed = &speed
	}
}

// SetLastModel records the model shown last.
func (s *Store) SetLastModel(id string) {
	s.prefs.LastModel = id
}

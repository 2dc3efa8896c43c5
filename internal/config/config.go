// Package config loads and saves the simulation's YAML configuration.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/talgya/city-events/internal/events"
)

// Config is the top-level simulation configuration.
type Config struct {
	// Seed drives city generation, population and the event engine's rolls.
	// Zero seeds the event rolls from crypto/rand.
	Seed int64 `yaml:"seed"`

	// CatalogDir holds the event template YAML files.
	CatalogDir string `yaml:"catalog_dir"`
	DBPath     string `yaml:"db_path"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`

	Population int `yaml:"population"`
	CityRadius int `yaml:"city_radius"`

	// Speed multiplies the tick rate; 0 pauses.
	Speed        float64       `yaml:"speed"`
	TickInterval time.Duration `yaml:"tick_interval"`

	// Epoch is the game time of tick zero.
	Epoch time.Time `yaml:"epoch"`

	// HostEventsPerDay is how many host matches are scheduled each game day.
	HostEventsPerDay int `yaml:"host_events_per_day"`

	Events events.Config `yaml:"events"`
}

var defaultEpoch = time.Date(2024, time.January, 1, 8, 0, 0, 0, time.UTC)

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		Seed:             42,
		CatalogDir:       "data/events",
		DBPath:           "data/citysim.db",
		LogLevel:         "info",
		Population:       2000,
		CityRadius:       12,
		Speed:            1,
		TickInterval:     time.Second,
		Epoch:            defaultEpoch,
		HostEventsPerDay: 1,
		Events:           events.DefaultConfig(),
	}
}

// Normalize fills in missing or out-of-range values with defaults.
func (c *Config) Normalize() {
	d := DefaultConfig()
	if c.CatalogDir == "" {
		c.CatalogDir = d.CatalogDir
	}
	if c.DBPath == "" {
		c.DBPath = d.DBPath
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
		c.LogLevel = strings.ToLower(c.LogLevel)
	default:
		c.LogLevel = d.LogLevel
	}
	if c.Population < 0 {
		c.Population = d.Population
	}
	if c.CityRadius <= 0 {
		c.CityRadius = d.CityRadius
	}
	if c.Speed < 0 {
		c.Speed = d.Speed
	}
	if c.TickInterval <= 0 {
		c.TickInterval = d.TickInterval
	}
	if c.Epoch.IsZero() {
		c.Epoch = d.Epoch
	}
	if c.HostEventsPerDay < 0 {
		c.HostEventsPerDay = 0
	}
	c.Events.Normalize()
}

// SlogLevel maps LogLevel to a slog level.
func (c *Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

// Load reads configuration from a YAML file. A missing file is created with
// defaults and 0600 permissions. Keys absent from the file keep their default
// values.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				return cfg, err
			}
			slog.Info("wrote default config", "path", path)
			return cfg, nil
		}
		return nil, err
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	cfg.Normalize()
	return cfg, nil
}

// Save writes cfg to path atomically via a temp file and rename.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}
	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".citysim-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}

// Save delegates to the package-level Save.
func (c *Config) Save(path string) error {
	return Save(path, c)
}

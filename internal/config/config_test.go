package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/city-events/internal/events"
)

func TestLoad_CreatesDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "citysim.yaml")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	again, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, again)
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "citysim.yaml")
	doc := `
seed: 7
log_level: DEBUG
events:
  max_upcoming: 3
  process_interval: 30m
  weekday_window:
    earliest: 17
    latest: 21
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, int64(7), cfg.Seed)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, slog.LevelDebug, cfg.SlogLevel())
	assert.Equal(t, "data/events", cfg.CatalogDir)
	assert.Equal(t, 3, cfg.Events.MaxUpcoming)
	assert.Equal(t, 30*time.Minute, cfg.Events.ProcessInterval)
	assert.Equal(t, events.Window{Earliest: 17, Latest: 21}, cfg.Events.WeekdayWindow)
	assert.Equal(t, 3*time.Hour, cfg.Events.MinGap)
	assert.True(t, cfg.Events.ProceduralEnabled)
}

func TestLoad_Invalid(t *testing.T) {
	_, err := Load("")
	require.Error(t, err)

	path := filepath.Join(t.TempDir(), "citysim.yaml")
	require.NoError(t, os.WriteFile(path, []byte("seed: [unterminated"), 0o600))
	_, err = Load(path)
	require.Error(t, err)
}

func TestNormalize(t *testing.T) {
	cfg := &Config{
		LogLevel:     "loud",
		CityRadius:   -1,
		TickInterval: 0,
		Events: events.Config{
			WeekdayWindow: events.Window{Earliest: 20, Latest: 16},
		},
	}
	cfg.Normalize()

	d := DefaultConfig()
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, d.CityRadius, cfg.CityRadius)
	assert.Equal(t, d.TickInterval, cfg.TickInterval)
	assert.Equal(t, d.Epoch, cfg.Epoch)
	assert.Equal(t, d.Events.WeekdayWindow, cfg.Events.WeekdayWindow)
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "citysim.yaml")
	cfg := DefaultConfig()
	cfg.Population = 50
	cfg.Events.ProceduralEnabled = false
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 50, loaded.Population)
	assert.False(t, loaded.Events.ProceduralEnabled)
}

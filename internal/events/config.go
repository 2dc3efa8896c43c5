package events

import "time"

// Window is the range of hours of day [Earliest, Latest) in which events may start.
type Window struct {
	Earliest float64 `yaml:"earliest"`
	Latest   float64 `yaml:"latest"`
}

func (w Window) valid() bool {
	return w.Earliest >= 0 && w.Latest <= 24 && w.Earliest < w.Latest
}

// Config holds the tunables of the event engine. Durations are game time.
type Config struct {
	// ProceduralEnabled turns generation of the engine's own events on or off.
	// Turning it off also cancels every procedural event on the next sweep.
	ProceduralEnabled bool `yaml:"procedural_enabled"`
	WeekendEnabled    bool `yaml:"weekend_enabled"`

	WeekdayWindow Window `yaml:"weekday_window"`
	WeekendWindow Window `yaml:"weekend_window"`

	// MaxUpcoming caps the upcoming queue; no procedural event is created beyond it.
	MaxUpcoming int `yaml:"max_upcoming"`

	ProcessInterval  time.Duration `yaml:"process_interval"`
	MinGap           time.Duration `yaml:"min_gap"`
	DedupThreshold   time.Duration `yaml:"dedup_threshold"`
	StartGranularity time.Duration `yaml:"start_granularity"`

	// IntervalVarianceHours bounds the random delay added to the
	// earliest-next-event watermark after each creation.
	IntervalVarianceHours int `yaml:"interval_variance_hours"`

	AttendingMarginHours float64 `yaml:"attending_margin_hours"`
	FinishedCacheSize    int     `yaml:"finished_cache_size"`
}

// DefaultConfig returns the stock engine settings.
func DefaultConfig() Config {
	return Config{
		ProceduralEnabled:     true,
		WeekendEnabled:        true,
		WeekdayWindow:         Window{Earliest: 16, Latest: 20},
		WeekendWindow:         Window{Earliest: 8, Latest: 22},
		MaxUpcoming:           5,
		ProcessInterval:       15 * time.Minute,
		MinGap:                3 * time.Hour,
		DedupThreshold:        5 * time.Minute,
		StartGranularity:      30 * time.Minute,
		IntervalVarianceHours: 48,
		AttendingMarginHours:  2,
		FinishedCacheSize:     10,
	}
}

// Normalize replaces missing or out-of-range values with defaults.
func (c *Config) Normalize() {
	d := DefaultConfig()
	if !c.WeekdayWindow.valid() {
		c.WeekdayWindow = d.WeekdayWindow
	}
	if !c.WeekendWindow.valid() {
		c.WeekendWindow = d.WeekendWindow
	}
	if c.MaxUpcoming <= 0 {
		c.MaxUpcoming = d.MaxUpcoming
	}
	if c.ProcessInterval <= 0 {
		c.ProcessInterval = d.ProcessInterval
	}
	if c.MinGap < 0 {
		c.MinGap = d.MinGap
	}
	if c.DedupThreshold < 0 {
		c.DedupThreshold = d.DedupThreshold
	}
	if c.StartGranularity <= 0 {
		c.StartGranularity = d.StartGranularity
	}
	if c.IntervalVarianceHours < 0 {
		c.IntervalVarianceHours = d.IntervalVarianceHours
	}
	if c.AttendingMarginHours < 0 {
		c.AttendingMarginHours = d.AttendingMarginHours
	}
	if c.FinishedCacheSize <= 0 {
		c.FinishedCacheSize = d.FinishedCacheSize
	}
}

func (c *Config) attendingMargin() time.Duration {
	return hours(c.AttendingMarginHours)
}

func hours(h float64) time.Duration {
	return time.Duration(h * float64(time.Hour))
}

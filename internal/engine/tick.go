// Package engine provides the tick-based simulation loop.
package engine

import (
	"log/slog"
	"sync/atomic"
	"time"
)

// TickSchedule defines when each system runs relative to the tick counter.
const (
	TicksPerSimHour = 60    // 60 ticks = 1 sim-hour
	TicksPerSimDay  = 1440  // 24 hours × 60
	TicksPerSimWeek = 10080 // 7 days × 1440
)

// Engine drives the simulation forward. One tick is one minute of game time.
type Engine struct {
	Tick     uint64        // Current tick counter (monotonic, never resets)
	Speed    float64       // Multiplier: 1.0 = real-time, 0 = paused
	Interval time.Duration // Base tick interval (default 1 second)
	Epoch    time.Time     // Game time at tick zero

	running atomic.Bool

	// Callbacks for each tick layer, populated during setup.
	OnTick func(tick uint64) // Every tick (sim-minute)
	OnHour func(tick uint64) // Every 60 ticks
	OnDay  func(tick uint64) // Every 1440 ticks
	OnWeek func(tick uint64) // Every 10080 ticks
}

// NewEngine creates a simulation engine with default settings.
func NewEngine(epoch time.Time) *Engine {
	return &Engine{
		Speed:    1.0,
		Interval: time.Second,
		Epoch:    epoch,
	}
}

// Now returns the game time of the current tick.
func (e *Engine) Now() time.Time {
	return TimeAt(e.Epoch, e.Tick)
}

// Running reports whether Run is looping.
func (e *Engine) Running() bool {
	return e.running.Load()
}

// Run starts the simulation loop. Blocks until Stop() is called.
func (e *Engine) Run() {
	e.running.Store(true)
	slog.Info("simulation engine started", "tick", e.Tick, "time", SimTime(e.Now()), "speed", e.Speed)

	for e.running.Load() {
		if e.Speed <= 0 {
			// Paused; check again shortly.
			time.Sleep(100 * time.Millisecond)
			continue
		}

		start := time.Now()

		e.step()

		elapsed := time.Since(start)
		target := time.Duration(float64(e.Interval) / e.Speed)
		if elapsed < target {
			time.Sleep(target - elapsed)
		}
	}

	slog.Info("simulation engine stopped", "tick", e.Tick, "time", SimTime(e.Now()))
}

// Stop halts the simulation loop. Safe to call from another goroutine.
func (e *Engine) Stop() {
	e.running.Store(false)
}

// step advances the simulation by one tick.
func (e *Engine) step() {
	e.Tick++

	// Every tick: host scheduler and event engine.
	if e.OnTick != nil {
		e.OnTick(e.Tick)
	}

	// Every sim-hour: citizens head out to events.
	if e.Tick%TicksPerSimHour == 0 && e.OnHour != nil {
		e.OnHour(e.Tick)
	}

	// Every sim-day: host fixtures, daily report, save.
	if e.Tick%TicksPerSimDay == 0 && e.OnDay != nil {
		e.OnDay(e.Tick)
	}

	if e.Tick%TicksPerSimWeek == 0 && e.OnWeek != nil {
		e.OnWeek(e.Tick)
	}
}

// TimeAt returns the game time of a tick.
func TimeAt(epoch time.Time, tick uint64) time.Time {
	return epoch.Add(time.Duration(tick) * time.Minute)
}

// SimTime returns a human-readable game time.
func SimTime(t time.Time) string {
	return t.Format("Mon Jan 2 2006, 15:04")
}

package events

import (
	"log/slog"
	"time"

	"github.com/talgya/city-events/internal/agents"
	"github.com/talgya/city-events/internal/catalog"
	"github.com/talgya/city-events/internal/hostsched"
	"github.com/talgya/city-events/internal/world"
)

// BuildingDirectory answers questions about the city's buildings.
type BuildingDirectory interface {
	// HasFlags reports whether a building has any of flags; invalid ids report includeZero.
	HasFlags(id world.BuildingID, flags world.Flags, includeZero bool) bool
	RandomBuilding(services ...world.Service) world.BuildingID
	Name(id world.BuildingID) string
	ClassName(id world.BuildingID) string
	// EventID returns the host event attached to a building, or 0.
	EventID(id world.BuildingID) world.EventID
}

// HostScheduler is the host's authoritative event system.
type HostScheduler interface {
	Flags(id world.EventID) hostsched.Flags
	Upcoming(from, to time.Time) []world.EventID
	Info(id world.EventID) (hostsched.Info, bool)
	SetStartTime(id world.EventID, start time.Time)
}

// TemplateSource resolves event templates.
type TemplateSource interface {
	Lookup(name, buildingClass string) (*catalog.Template, bool)
	RandomFor(buildingClass string, p catalog.Picker) (*catalog.Template, bool)
}

// Clock supplies the current game time.
type Clock interface {
	Now() time.Time
}

// Services whose buildings can host procedural events.
var eventServices = []world.Service{
	world.ServiceMonument,
	world.ServiceBeautification,
	world.ServiceMuseums,
}

// hostCancelFlags mark a host event that no longer exists for the city.
const hostCancelFlags = hostsched.FlagCancelled | hostsched.FlagDeleted | hostsched.FlagExpired

// Snapshot is a copy of the timeline handed to change listeners.
type Snapshot struct {
	Upcoming []Event
	Active   []Event
	Finished []Event

	// Ended holds the events that finished during the call that produced
	// this notification. They may already be evicted from Finished when a
	// new event took their building in the same call.
	Ended []Event
}

// Listener is notified whenever the visible event set changes.
type Listener func(Snapshot)

// Manager owns the timeline and drives it forward. One manager serves one
// running simulation; it is not safe for concurrent use.
type Manager struct {
	cfg       Config
	templates TemplateSource
	buildings BuildingDirectory
	host      HostScheduler
	clock     Clock
	rng       Randomizer

	timeline *Timeline

	earliestEvent time.Time // No procedural event may start before this
	lastProcessed time.Time // Start of the current throttle window

	listeners []Listener
	ended     []*Event // Finished during the current ProcessEvents call
}

// NewManager creates a manager. host may be nil when there is no host scheduler.
func NewManager(cfg Config, templates TemplateSource, buildings BuildingDirectory, host HostScheduler, clock Clock, rng Randomizer) *Manager {
	cfg.Normalize()
	return &Manager{
		cfg:       cfg,
		templates: templates,
		buildings: buildings,
		host:      host,
		clock:     clock,
		rng:       rng,
		timeline:  NewTimeline(cfg.FinishedCacheSize),
	}
}

// Config returns the active configuration.
func (m *Manager) Config() Config {
	return m.cfg
}

// SetProceduralEnabled switches procedural events on or off. Disabling takes
// effect on the next ProcessEvents, which cancels them all.
func (m *Manager) SetProceduralEnabled(enabled bool) {
	m.cfg.ProceduralEnabled = enabled
}

// OnEventsChanged registers a listener for timeline changes.
func (m *Manager) OnEventsChanged(l Listener) {
	m.listeners = append(m.listeners, l)
}

// EarliestEvent returns the watermark before which no procedural event is created.
func (m *Manager) EarliestEvent() time.Time {
	return m.earliestEvent
}

// Close detaches listeners and drops every event.
func (m *Manager) Close() {
	m.listeners = nil
	m.timeline.Clear()
}

// ProcessEvents runs once per simulation tick. The cancellation sweep runs
// every call; promotion, host synchronization and creation run at most once
// per process interval of game time.
func (m *Manager) ProcessEvents() {
	now := m.clock.Now()
	m.ended = nil

	changed := m.cancelEvents()

	if m.due(now) {
		m.lastProcessed = now
		if m.advance(now) {
			changed = true
		}
		if m.syncExternal(now) {
			changed = true
		}
		if m.createProcedural(now) {
			changed = true
		}
	}

	if changed {
		m.notify()
	}
}

// due reports whether the throttled part of ProcessEvents may run. A clock that
// went backwards (a load) counts as due.
func (m *Manager) due(now time.Time) bool {
	if m.lastProcessed.IsZero() || now.Before(m.lastProcessed) {
		return true
	}
	return now.Sub(m.lastProcessed) >= m.cfg.ProcessInterval
}

// cancelEvents removes every event that can no longer take place.
func (m *Manager) cancelEvents() bool {
	removed := m.timeline.RemoveIf(func(e *Event) bool {
		reason := m.cancelReason(e)
		if reason == "" {
			return false
		}
		slog.Info("city event cancelled",
			"kind", e.Kind,
			"event", e.Title(),
			"building", e.BuildingName,
			"building_id", e.BuildingID,
			"reason", reason,
		)
		return true
	})
	return len(removed) > 0
}

func (m *Manager) cancelReason(e *Event) string {
	if m.buildings.HasFlags(e.BuildingID, world.FlagsUnusable, true) {
		return "building unusable"
	}
	switch e.Kind {
	case KindProcedural:
		if !m.cfg.ProceduralEnabled {
			return "procedural events disabled"
		}
	case KindExternal:
		if m.host == nil {
			return "no host scheduler"
		}
		flags := m.host.Flags(e.ForeignID)
		if flags == 0 {
			return "host event gone"
		}
		if flags&hostCancelFlags != 0 {
			return "host event cancelled"
		}
	}
	return ""
}

// advance promotes started events to active and ended ones to finished.
func (m *Manager) advance(now time.Time) bool {
	started := m.timeline.PromoteStarted(now)
	for _, e := range started {
		slog.Debug("city event started", "event", e.Title(), "building", e.BuildingName)
	}
	ended := m.timeline.FinishEnded(now)
	m.ended = ended
	for _, e := range ended {
		slog.Debug("city event finished", "event", e.Title(), "building", e.BuildingName, "attendees", e.Attendees)
	}
	return len(started) > 0 || len(ended) > 0
}

// createProcedural tries to schedule one new engine-owned event.
func (m *Manager) createProcedural(now time.Time) bool {
	if !m.cfg.ProceduralEnabled || len(m.timeline.Upcoming()) >= m.cfg.MaxUpcoming {
		return false
	}

	b := m.buildings.RandomBuilding(eventServices...)
	if b == 0 || !m.buildings.HasFlags(b, world.FlagActive, false) {
		return false
	}
	if m.buildings.HasFlags(b, world.FlagsUnusable, true) {
		return false
	}
	if m.timeline.Occupied(b) || m.buildings.EventID(b) != 0 {
		return false
	}

	class := m.buildings.ClassName(b)
	tpl, ok := m.templates.RandomFor(class, m.rng)
	if !ok {
		return false
	}

	start := now
	if last := m.timeline.LastUpcoming(); last != nil {
		start = last.End().Add(m.cfg.MinGap)
	}
	start = m.adjustStartTime(start, true)
	if start.Before(m.earliestEvent) {
		return false
	}

	variance := m.rng.Below(m.cfg.IntervalVarianceHours + 1)
	m.earliestEvent = start.Add(time.Duration(variance) * time.Hour)

	e := NewProcedural(tpl, b, m.buildings.Name(b), start, 0)
	if !m.timeline.Add(e) {
		return false
	}

	slog.Info("city event created",
		"event", e.Title(),
		"template", tpl.Name,
		"building", e.BuildingName,
		"building_id", b,
		"start", start.Format(time.DateTime),
		"end", e.End().Format(time.DateTime),
	)
	return true
}

// syncExternal mirrors the host's events for today into the timeline.
func (m *Manager) syncExternal(now time.Time) bool {
	if m.host == nil {
		return false
	}

	changed := false
	today := midnight(now)
	for _, id := range m.host.Upcoming(today, today.AddDate(0, 0, 1)) {
		info, ok := m.host.Info(id)
		if !ok || info.BuildingID == 0 || info.Duration <= 0 {
			continue
		}
		if info.End().Before(now) {
			continue
		}

		existing, _ := m.timeline.Find(func(e *Event) bool {
			return e.Kind == KindExternal && e.ForeignID == id && e.BuildingID == info.BuildingID
		})
		if existing != nil && absDuration(existing.Start.Sub(info.Start)) <= m.cfg.DedupThreshold {
			continue
		}

		// Drop any stale mirror of this host event, even one at another building.
		stale := m.timeline.RemoveIf(func(e *Event) bool {
			return e.Kind == KindExternal && e.ForeignID == id
		})
		if len(stale) > 0 {
			changed = true
		}

		start := m.adjustStartTime(info.Start, false)
		if !start.Equal(info.Start) {
			m.host.SetStartTime(id, start)
		}

		// The host owns the building; a procedural event there gives way.
		displaced := m.timeline.RemoveIf(func(e *Event) bool {
			return e.BuildingID == info.BuildingID && e.Kind == KindProcedural
		})
		for _, d := range displaced {
			changed = true
			slog.Info("city event displaced by host event", "event", d.Title(), "building", d.BuildingName, "host_event", id)
		}

		e := NewExternal(id, info.BuildingID, m.buildings.Name(info.BuildingID), start, info.Duration, info.TicketPrice)
		if !m.timeline.Add(e) {
			continue
		}
		changed = true

		slog.Info("host event mirrored",
			"host_event", id,
			"building", e.BuildingName,
			"start", start.Format(time.DateTime),
			"ticket_price", info.TicketPrice,
		)
	}
	return changed
}

// TryAdmit lets a citizen attempt to attend the live event in a building.
func (m *Manager) TryAdmit(b world.BuildingID, p agents.Profile) bool {
	e := m.liveEvent(b)
	if e == nil {
		return false
	}
	return e.TryAdmit(p, m.rng)
}

func (m *Manager) notify() {
	if len(m.listeners) == 0 {
		return
	}
	snap := m.Snapshot()
	if len(m.ended) > 0 {
		snap.Ended = copyEvents(m.ended)
	}
	m.ended = nil
	for _, l := range m.listeners {
		l(snap)
	}
}

// Snapshot copies the current timeline.
func (m *Manager) Snapshot() Snapshot {
	return Snapshot{
		Upcoming: copyEvents(m.timeline.Upcoming()),
		Active:   copyEvents(m.timeline.Active()),
		Finished: copyEvents(m.timeline.Finished()),
	}
}

func copyEvents(list []*Event) []Event {
	out := make([]Event, len(list))
	for i, e := range list {
		out[i] = *e
	}
	return out
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}

// Simulation ties together the city, the host scheduler and the event engine.
package engine

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/talgya/city-events/internal/agents"
	"github.com/talgya/city-events/internal/entropy"
	"github.com/talgya/city-events/internal/events"
	"github.com/talgya/city-events/internal/hostsched"
	"github.com/talgya/city-events/internal/world"
)

// Clock supplies the current game time.
type Clock interface {
	Now() time.Time
}

// Simulation holds the complete city state and wires systems together.
type Simulation struct {
	City     *world.City
	Host     *hostsched.Scheduler
	Events   *events.Manager
	Citizens []*agents.Citizen
	Journal  []JournalEntry // Recent entries, trimmed weekly
	LastTick uint64         // Most recent tick processed

	// HostEventsPerDay is how many host matches TickDay schedules.
	HostEventsPerDay int

	// Statistics tracked per day.
	Stats SimStats

	clock   Clock
	rng     *entropy.Source
	pending []JournalEntry // Not yet persisted
	known   map[eventKey]events.State
}

// JournalEntry is a notable change in the city's event calendar.
type JournalEntry struct {
	Tick        uint64 `json:"tick" db:"tick"`
	Description string `json:"description" db:"description"`
	Category    string `json:"category" db:"category"` // "scheduled", "started", "finished", "cancelled"
}

// SimStats tracks attendance since the last daily report.
type SimStats struct {
	Admitted       int `json:"admitted"`
	Rejected       int `json:"rejected"`
	HostScheduled  int `json:"host_scheduled"`
	TotalAttended  int `json:"total_attended"`
	CitizensActive int `json:"citizens_active"`
}

type eventKey struct {
	building world.BuildingID
	start    int64
	kind     events.Kind
}

// Citizens sampled per hour to try an event.
const attendeesPerHour = 40

// NewSimulation creates a Simulation from generated components and subscribes
// to the event manager's change notifications.
func NewSimulation(city *world.City, host *hostsched.Scheduler, mgr *events.Manager, citizens []*agents.Citizen, clock Clock, rng *entropy.Source) *Simulation {
	sim := &Simulation{
		City:             city,
		Host:             host,
		Events:           mgr,
		Citizens:         citizens,
		HostEventsPerDay: 1,
		clock:            clock,
		rng:              rng,
		known:            make(map[eventKey]events.State),
	}
	mgr.OnEventsChanged(sim.recordChanges)
	return sim
}

// CurrentTick returns the most recently processed tick number.
func (s *Simulation) CurrentTick() uint64 {
	return s.LastTick
}

// TickMinute runs every tick (1 sim-minute): host lifecycle then the event engine.
func (s *Simulation) TickMinute(tick uint64) {
	s.LastTick = tick
	now := s.clock.Now()
	if s.Host != nil {
		s.Host.Advance(now)
	}
	s.Events.ProcessEvents()
}

// TickHour runs every sim-hour: a sample of citizens tries to attend events.
func (s *Simulation) TickHour(tick uint64) {
	candidates := s.Events.EventsToAttend()
	if len(candidates) == 0 || len(s.Citizens) == 0 {
		return
	}

	n := min(attendeesPerHour, len(s.Citizens))
	for range n {
		c := s.Citizens[s.rng.Below(len(s.Citizens))]
		e := candidates[s.rng.Below(len(candidates))]
		if s.Events.TryAdmit(e.BuildingID, c.Profile) {
			c.Attended++
			s.Stats.Admitted++
		} else {
			s.Stats.Rejected++
		}
	}
}

// TickDay runs every sim-day: host fixtures and the daily report.
func (s *Simulation) TickDay(tick uint64) {
	s.scheduleHostEvents()
	s.updateStats()

	snap := s.Events.Snapshot()
	counts := make(map[string]int)
	for _, e := range s.Journal {
		if e.Tick+TicksPerSimDay > tick {
			counts[e.Category]++
		}
	}

	slog.Info("daily report",
		"tick", tick,
		"time", SimTime(s.clock.Now()),
		"upcoming", len(snap.Upcoming),
		"active", len(snap.Active),
		"finished", len(snap.Finished),
		"admitted", s.Stats.Admitted,
		"rejected", s.Stats.Rejected,
		"host_scheduled", s.Stats.HostScheduled,
		"citizens_attending", s.Stats.CitizensActive,
		"events_scheduled", counts["scheduled"],
		"events_cancelled", counts["cancelled"],
	)
	for _, e := range snap.Active {
		slog.Info("event attendance", "event", e.Title(), "building", e.BuildingName, "attendees", e.Attendees)
	}
	for _, e := range snap.Upcoming {
		slog.Debug("upcoming event", "event", e.String())
	}

	s.Stats.Admitted, s.Stats.Rejected, s.Stats.HostScheduled = 0, 0, 0
}

// TickWeek runs every sim-week: journal trimming.
func (s *Simulation) TickWeek(tick uint64) {
	slog.Info("weekly summary",
		"tick", tick,
		"time", SimTime(s.clock.Now()),
		"journal_entries", len(s.Journal),
		"attended_total", humanize.Comma(int64(s.Stats.TotalAttended)),
	)
	// Keep the last 1000 entries.
	if len(s.Journal) > 1000 {
		s.Journal = s.Journal[len(s.Journal)-1000:]
	}
}

// TakePending returns journal entries recorded since the last call.
func (s *Simulation) TakePending() []JournalEntry {
	out := s.pending
	s.pending = nil
	return out
}

// scheduleHostEvents books the day's matches a few hours ahead.
func (s *Simulation) scheduleHostEvents() {
	if s.Host == nil {
		return
	}
	now := s.clock.Now()
	for range s.HostEventsPerDay {
		start := now.Add(time.Duration(4+s.rng.Below(8))*time.Hour + time.Duration(s.rng.Below(60))*time.Minute)
		if s.Host.ScheduleMatch(start) != 0 {
			s.Stats.HostScheduled++
		}
	}
}

// recordChanges journals the difference between the last seen timeline and snap.
// Finished events come from snap.Ended, since a new event in the same building
// can evict one from Finished before any listener sees it.
func (s *Simulation) recordChanges(snap events.Snapshot) {
	next := make(map[eventKey]events.State)
	titles := make(map[eventKey]events.Event)
	for _, list := range []struct {
		events []events.Event
		state  events.State
	}{
		{snap.Upcoming, events.StateUpcoming},
		{snap.Active, events.StateOngoing},
		{snap.Finished, events.StateFinished},
	} {
		for _, e := range list.events {
			k := keyOf(e)
			next[k] = list.state
			titles[k] = e
		}
	}

	for k, state := range next {
		prev, seen := s.known[k]
		if seen && prev == state {
			continue
		}
		e := titles[k]
		switch state {
		case events.StateUpcoming:
			s.record("scheduled", fmt.Sprintf("%s at %s, %s", e.Title(), e.BuildingName, SimTime(e.Start)))
		case events.StateOngoing:
			s.record("started", fmt.Sprintf("%s at %s", e.Title(), e.BuildingName))
		}
	}

	ended := make(map[eventKey]bool, len(snap.Ended))
	for _, e := range snap.Ended {
		ended[keyOf(e)] = true
		s.record("finished", fmt.Sprintf("%s at %s drew %d", e.Title(), e.BuildingName, e.Attendees))
	}

	for k, prev := range s.known {
		if _, ok := next[k]; ok || ended[k] || prev == events.StateFinished {
			continue
		}
		s.record("cancelled", fmt.Sprintf("event at %s on %s", s.City.Name(k.building), SimTime(time.Unix(k.start, 0).UTC())))
	}
	s.known = next
}

func keyOf(e events.Event) eventKey {
	return eventKey{building: e.BuildingID, start: e.Start.Unix(), kind: e.Kind}
}

func (s *Simulation) record(category, desc string) {
	e := JournalEntry{Tick: s.LastTick, Description: desc, Category: category}
	s.Journal = append(s.Journal, e)
	s.pending = append(s.pending, e)
}

func (s *Simulation) updateStats() {
	total, active := 0, 0
	for _, c := range s.Citizens {
		total += c.Attended
		if c.Attended > 0 {
			active++
		}
	}
	s.Stats.TotalAttended = total
	s.Stats.CitizensActive = active
}

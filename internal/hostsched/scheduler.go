// Package hostsched is the host environment's own event system: it creates
// matches and concerts at sports venues and advances them through its own
// lifecycle, independently of the city event engine that mirrors them.
package hostsched

import (
	"log/slog"
	"math/rand"
	"sort"
	"time"

	"github.com/talgya/city-events/internal/world"
)

// Flags describe the host-side state of an event.
type Flags uint16

const (
	FlagCreated Flags = 1 << iota
	FlagPreparing
	FlagReady
	FlagActive
	FlagCompleted
	FlagDisorganizing
	FlagCancelled
	FlagExpired
	FlagDeleted
)

// FlagsLive covers host events that have not started or are in progress.
const FlagsLive = FlagPreparing | FlagReady | FlagActive

// Info is what the host reports about one of its events.
type Info struct {
	BuildingID  world.BuildingID
	Start       time.Time
	Duration    time.Duration
	TicketPrice float64
}

// End returns the reported end time.
func (i Info) End() time.Time {
	return i.Start.Add(i.Duration)
}

type hostEvent struct {
	id    world.EventID
	info  Info
	flags Flags
}

// Lifecycle timings applied by Advance.
const (
	PrepareLead  = 4 * time.Hour  // Preparing → Ready this long before start
	ExpireAfter  = 24 * time.Hour // Completed → Expired this long after end
	matchHours   = 2.5
	matchMinCost = 40
)

// Scheduler holds every host-owned event. Not safe for concurrent use.
type Scheduler struct {
	city   *world.City
	rng    *rand.Rand
	events map[world.EventID]*hostEvent
	nextID world.EventID
}

// NewScheduler creates a host scheduler bound to a city.
func NewScheduler(city *world.City, seed int64) *Scheduler {
	return &Scheduler{
		city:   city,
		rng:    rand.New(rand.NewSource(seed + 700)),
		events: make(map[world.EventID]*hostEvent),
		nextID: 1,
	}
}

// Create registers a new host event at a building and attaches it to the building.
func (s *Scheduler) Create(info Info) world.EventID {
	id := s.nextID
	s.nextID++
	s.events[id] = &hostEvent{id: id, info: info, flags: FlagCreated | FlagPreparing}
	s.city.SetEventID(info.BuildingID, id)
	return id
}

// Flags returns the current flags of an event, or 0 if unknown.
func (s *Scheduler) Flags(id world.EventID) Flags {
	if e, ok := s.events[id]; ok {
		return e.flags
	}
	return 0
}

// Upcoming returns the live events starting in [from, to), ordered by start time.
func (s *Scheduler) Upcoming(from, to time.Time) []world.EventID {
	var ids []world.EventID
	for id, e := range s.events {
		if e.flags&FlagsLive == 0 || e.flags&(FlagCancelled|FlagDeleted) != 0 {
			continue
		}
		if e.info.Start.Before(from) || !e.info.Start.Before(to) {
			continue
		}
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		a, b := s.events[ids[i]], s.events[ids[j]]
		if a.info.Start.Equal(b.info.Start) {
			return a.id < b.id
		}
		return a.info.Start.Before(b.info.Start)
	})
	return ids
}

// Info returns what the host knows about an event.
func (s *Scheduler) Info(id world.EventID) (Info, bool) {
	e, ok := s.events[id]
	if !ok {
		return Info{}, false
	}
	return e.info, true
}

// SetStartTime moves an event's start.
func (s *Scheduler) SetStartTime(id world.EventID, start time.Time) {
	if e, ok := s.events[id]; ok {
		e.info.Start = start
	}
}

// Cancel marks an event cancelled and detaches it from its building.
func (s *Scheduler) Cancel(id world.EventID) {
	e, ok := s.events[id]
	if !ok {
		return
	}
	e.flags = (e.flags &^ FlagsLive) | FlagCancelled
	s.detach(e)
}

// Delete removes an event entirely.
func (s *Scheduler) Delete(id world.EventID) {
	e, ok := s.events[id]
	if !ok {
		return
	}
	s.detach(e)
	delete(s.events, id)
}

func (s *Scheduler) detach(e *hostEvent) {
	if s.city.EventID(e.info.BuildingID) == e.id {
		s.city.SetEventID(e.info.BuildingID, 0)
	}
}

// Advance moves every host event along its lifecycle as of now, and cancels
// events whose venue can no longer be used.
func (s *Scheduler) Advance(now time.Time) {
	for id, e := range s.events {
		if e.flags&(FlagCancelled|FlagDeleted|FlagExpired) != 0 {
			if e.flags&FlagExpired != 0 && now.Sub(e.info.End()) >= 2*ExpireAfter {
				delete(s.events, id)
			}
			continue
		}

		if e.flags&FlagsLive != 0 && s.city.HasFlags(e.info.BuildingID, world.FlagsUnusable, true) {
			slog.Info("host event cancelled", "event_id", id, "building", e.info.BuildingID)
			s.Cancel(id)
			continue
		}

		switch {
		case !now.Before(e.info.End().Add(ExpireAfter)):
			e.flags = (e.flags &^ (FlagsLive | FlagCompleted)) | FlagExpired
			s.detach(e)
		case !now.Before(e.info.End()):
			e.flags = (e.flags &^ FlagsLive) | FlagCompleted
		case !now.Before(e.info.Start):
			e.flags = (e.flags &^ (FlagPreparing | FlagReady)) | FlagActive
		case !now.Before(e.info.Start.Add(-PrepareLead)):
			e.flags = (e.flags &^ FlagPreparing) | FlagReady
		}
	}
}

// ScheduleMatch books a match at a random free sports venue starting at start.
// Returns 0 when no venue is available.
func (s *Scheduler) ScheduleMatch(start time.Time) world.EventID {
	b := s.city.RandomBuilding(world.ServiceSports)
	if b == 0 || !s.city.HasFlags(b, world.FlagActive, false) || s.city.EventID(b) != 0 {
		return 0
	}

	id := s.Create(Info{
		BuildingID:  b,
		Start:       start,
		Duration:    time.Duration(matchHours * float64(time.Hour)),
		TicketPrice: float64(matchMinCost + s.rng.Intn(60)),
	})
	slog.Info("host event scheduled", "event_id", id, "building", s.city.Name(b), "start", start.Format(time.DateTime))
	return id
}

// Len returns the number of events the host tracks.
func (s *Scheduler) Len() int {
	return len(s.events)
}

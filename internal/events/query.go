package events

import (
	"time"

	"github.com/talgya/city-events/internal/hostsched"
	"github.com/talgya/city-events/internal/world"
)

// GetEventState reports the event state of a building. Host-reported flags win
// when a host event occupies the building. Otherwise active wins over finished,
// and an upcoming event counts only when it starts no later than latestStart.
func (m *Manager) GetEventState(b world.BuildingID, latestStart time.Time) State {
	if b == 0 {
		return StateNone
	}

	if id := m.buildings.EventID(b); id != 0 && m.host != nil {
		flags := m.host.Flags(id)
		switch {
		case flags&(hostsched.FlagPreparing|hostsched.FlagReady) != 0:
			return StateUpcoming
		case flags&hostsched.FlagActive != 0:
			return StateOngoing
		case flags&hostsched.FlagCompleted != 0:
			return StateFinished
		}
	}

	if indexOfBuilding(m.timeline.Active(), b) >= 0 {
		return StateOngoing
	}
	if indexOfBuilding(m.timeline.Finished(), b) >= 0 {
		return StateFinished
	}
	for _, e := range m.timeline.Upcoming() {
		if e.BuildingID == b && !e.Start.After(latestStart) {
			return StateUpcoming
		}
	}
	return StateNone
}

// GetCityEvent returns the active or upcoming event in a building.
func (m *Manager) GetCityEvent(b world.BuildingID) (Event, bool) {
	e := m.liveEvent(b)
	if e == nil {
		return Event{}, false
	}
	return *e, true
}

func (m *Manager) liveEvent(b world.BuildingID) *Event {
	if b == 0 {
		return nil
	}
	if i := indexOfBuilding(m.timeline.Active(), b); i >= 0 {
		return m.timeline.Active()[i]
	}
	if i := indexOfBuilding(m.timeline.Upcoming(), b); i >= 0 {
		return m.timeline.Upcoming()[i]
	}
	return nil
}

// EventsToAttend returns the events a citizen can still make it to: active
// events not ending within the attending margin, and upcoming events starting
// within it. Computed fresh on every call.
func (m *Manager) EventsToAttend() []Event {
	horizon := m.clock.Now().Add(m.cfg.attendingMargin())

	var out []Event
	for _, e := range m.timeline.Active() {
		if e.End().After(horizon) {
			out = append(out, *e)
		}
	}
	for _, e := range m.timeline.Upcoming() {
		if e.Start.After(horizon) {
			break
		}
		out = append(out, *e)
	}
	return out
}

// Upcoming returns copies of the upcoming events in start order.
func (m *Manager) Upcoming() []Event {
	return copyEvents(m.timeline.Upcoming())
}

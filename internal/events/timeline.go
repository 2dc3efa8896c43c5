package events

import (
	"time"

	"github.com/talgya/city-events/internal/world"
)

// State is the lifecycle state of an event as seen by queries.
type State uint8

const (
	StateNone State = iota
	StateUpcoming
	StateOngoing
	StateFinished
)

func (s State) String() string {
	switch s {
	case StateUpcoming:
		return "upcoming"
	case StateOngoing:
		return "ongoing"
	case StateFinished:
		return "finished"
	default:
		return "none"
	}
}

// Timeline holds the three disjoint event collections.
//
// upcoming is kept sorted by start time, ties in insertion order. A building
// appears at most once across all three collections.
type Timeline struct {
	upcoming []*Event
	active   []*Event
	finished []*Event

	finishedCap int
}

// NewTimeline creates an empty timeline keeping at most finishedCap finished events.
func NewTimeline(finishedCap int) *Timeline {
	if finishedCap <= 0 {
		finishedCap = 1
	}
	return &Timeline{finishedCap: finishedCap}
}

// Upcoming returns the upcoming events in start order. The slice must not be modified.
func (t *Timeline) Upcoming() []*Event { return t.upcoming }

// Active returns the events in progress. The slice must not be modified.
func (t *Timeline) Active() []*Event { return t.active }

// Finished returns the recently ended events. The slice must not be modified.
func (t *Timeline) Finished() []*Event { return t.finished }

// Occupied reports whether a building has an upcoming or active event.
func (t *Timeline) Occupied(b world.BuildingID) bool {
	return indexOfBuilding(t.upcoming, b) >= 0 || indexOfBuilding(t.active, b) >= 0
}

// Add inserts an event into upcoming at its sorted position. It fails when the
// building already has an upcoming or active event; a finished entry for the
// building is dropped.
func (t *Timeline) Add(e *Event) bool {
	if e == nil || e.BuildingID == 0 || t.Occupied(e.BuildingID) {
		return false
	}
	t.evictFinished(e.BuildingID)

	i := len(t.upcoming)
	for i > 0 && t.upcoming[i-1].Start.After(e.Start) {
		i--
	}
	t.upcoming = append(t.upcoming, nil)
	copy(t.upcoming[i+1:], t.upcoming[i:])
	t.upcoming[i] = e
	return true
}

// AddFinished places an already ended event straight into the finished cache.
func (t *Timeline) AddFinished(e *Event) bool {
	if e == nil || e.BuildingID == 0 || t.Occupied(e.BuildingID) {
		return false
	}
	t.evictFinished(e.BuildingID)
	t.pushFinished(e)
	return true
}

// LastUpcoming returns the upcoming event starting last, or nil.
func (t *Timeline) LastUpcoming() *Event {
	if len(t.upcoming) == 0 {
		return nil
	}
	return t.upcoming[len(t.upcoming)-1]
}

// PromoteStarted moves upcoming events whose start has been reached to active.
func (t *Timeline) PromoteStarted(now time.Time) []*Event {
	n := 0
	for n < len(t.upcoming) && !now.Before(t.upcoming[n].Start) {
		n++
	}
	if n == 0 {
		return nil
	}
	started := append([]*Event(nil), t.upcoming[:n]...)
	t.active = append(t.active, started...)
	rest := copy(t.upcoming, t.upcoming[n:])
	clearTail(t.upcoming, rest)
	t.upcoming = t.upcoming[:rest]
	return started
}

// FinishEnded moves active events whose end has been reached to finished.
func (t *Timeline) FinishEnded(now time.Time) []*Event {
	var ended []*Event
	kept := t.active[:0]
	for _, e := range t.active {
		if !now.Before(e.End()) {
			ended = append(ended, e)
			continue
		}
		kept = append(kept, e)
	}
	clearTail(t.active, len(kept))
	t.active = kept
	for _, e := range ended {
		t.pushFinished(e)
	}
	return ended
}

// RemoveIf drops every event matching pred from all collections.
func (t *Timeline) RemoveIf(pred func(*Event) bool) []*Event {
	var removed []*Event
	t.upcoming, removed = filterOut(t.upcoming, pred, removed)
	t.active, removed = filterOut(t.active, pred, removed)
	t.finished, removed = filterOut(t.finished, pred, removed)
	return removed
}

// Remove drops one event, wherever it is.
func (t *Timeline) Remove(e *Event) bool {
	return len(t.RemoveIf(func(x *Event) bool { return x == e })) > 0
}

// Find returns the first event matching pred, looking at active, then
// upcoming, then finished.
func (t *Timeline) Find(pred func(*Event) bool) (*Event, State) {
	for _, e := range t.active {
		if pred(e) {
			return e, StateOngoing
		}
	}
	for _, e := range t.upcoming {
		if pred(e) {
			return e, StateUpcoming
		}
	}
	for _, e := range t.finished {
		if pred(e) {
			return e, StateFinished
		}
	}
	return nil, StateNone
}

// Len returns the total number of events held.
func (t *Timeline) Len() int {
	return len(t.upcoming) + len(t.active) + len(t.finished)
}

// Clear drops every event.
func (t *Timeline) Clear() {
	t.upcoming, t.active, t.finished = nil, nil, nil
}

func (t *Timeline) evictFinished(b world.BuildingID) {
	t.finished, _ = filterOut(t.finished, func(e *Event) bool { return e.BuildingID == b }, nil)
}

// pushFinished appends to finished, dropping the earliest-ending entries over capacity.
func (t *Timeline) pushFinished(e *Event) {
	t.finished = append(t.finished, e)
	for len(t.finished) > t.finishedCap {
		oldest := 0
		for i, f := range t.finished {
			if f.End().Before(t.finished[oldest].End()) {
				oldest = i
			}
		}
		t.finished = append(t.finished[:oldest], t.finished[oldest+1:]...)
	}
}

func indexOfBuilding(list []*Event, b world.BuildingID) int {
	for i, e := range list {
		if e.BuildingID == b {
			return i
		}
	}
	return -1
}

// filterOut removes matching events in place, appending them to removed.
func filterOut(list []*Event, pred func(*Event) bool, removed []*Event) ([]*Event, []*Event) {
	kept := list[:0]
	for _, e := range list {
		if pred(e) {
			removed = append(removed, e)
			continue
		}
		kept = append(kept, e)
	}
	clearTail(list, len(kept))
	return kept, removed
}

func clearTail(list []*Event, from int) {
	for i := from; i < len(list); i++ {
		list[i] = nil
	}
}

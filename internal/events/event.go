// Package events is the city event lifecycle and scheduling engine: it creates,
// advances, mirrors, cancels and persists time-bounded events in buildings, and
// decides who gets in.
package events

import (
	"fmt"
	"time"

	"github.com/talgya/city-events/internal/catalog"
	"github.com/talgya/city-events/internal/world"
)

// Kind tells the two event variants apart.
type Kind uint8

const (
	// KindProcedural events are created and fully owned by this engine.
	KindProcedural Kind = iota
	// KindExternal events mirror an event owned by the host scheduler.
	KindExternal
)

func (k Kind) String() string {
	switch k {
	case KindProcedural:
		return "procedural"
	case KindExternal:
		return "external"
	default:
		return "unknown"
	}
}

// Event is one scheduled occurrence in a building.
type Event struct {
	Kind         Kind             `json:"kind"`
	BuildingID   world.BuildingID `json:"building_id"`
	BuildingName string           `json:"building_name"` // Snapshot taken at creation
	Start        time.Time        `json:"start"`

	// Procedural only.
	Template  *catalog.Template `json:"-"`
	Attendees int               `json:"attendees"`

	// External only.
	ForeignID    world.EventID `json:"foreign_id,omitempty"`
	HostDuration time.Duration `json:"host_duration,omitempty"`
	TicketPrice  float64       `json:"ticket_price,omitempty"`
}

// NewProcedural creates an engine-owned event from a template.
func NewProcedural(tpl *catalog.Template, building world.BuildingID, name string, start time.Time, attendees int) *Event {
	if attendees < 0 {
		attendees = 0
	}
	return &Event{
		Kind:         KindProcedural,
		BuildingID:   building,
		BuildingName: name,
		Start:        start,
		Template:     tpl,
		Attendees:    attendees,
	}
}

// NewExternal creates a mirror of a host-owned event.
func NewExternal(id world.EventID, building world.BuildingID, name string, start time.Time, duration time.Duration, ticketPrice float64) *Event {
	return &Event{
		Kind:         KindExternal,
		BuildingID:   building,
		BuildingName: name,
		Start:        start,
		ForeignID:    id,
		HostDuration: duration,
		TicketPrice:  ticketPrice,
	}
}

// Duration returns the event length.
func (e *Event) Duration() time.Duration {
	switch e.Kind {
	case KindProcedural:
		if e.Template == nil {
			return 0
		}
		return e.Template.Duration()
	case KindExternal:
		return e.HostDuration
	}
	return 0
}

// End returns the end time, always Start + Duration.
func (e *Event) End() time.Time {
	return e.Start.Add(e.Duration())
}

// Title returns a display name for the event.
func (e *Event) Title() string {
	switch e.Kind {
	case KindProcedural:
		if e.Template == nil {
			return ""
		}
		if e.Template.DisplayName != "" {
			return e.Template.DisplayName
		}
		return e.Template.Name
	case KindExternal:
		return fmt.Sprintf("host event #%d", e.ForeignID)
	}
	return ""
}

// Persistent reports whether this engine saves the event.
func (e *Event) Persistent() bool {
	return e.Kind == KindProcedural
}

func (e *Event) String() string {
	return fmt.Sprintf("%s %q at %q (%s → %s)", e.Kind, e.Title(), e.BuildingName,
		e.Start.Format(time.DateTime), e.End().Format(time.DateTime))
}

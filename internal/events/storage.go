package events

import (
	"encoding/xml"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/talgya/city-events/internal/world"
)

// StorageVersion is the version written by Serialize.
const StorageVersion = 1

// ErrUnsupportedVersion is returned for containers written by a newer version.
var ErrUnsupportedVersion = errors.New("unsupported event storage version")

type storageContainer struct {
	XMLName       xml.Name       `xml:"RealTimeEventStorage"`
	Version       int            `xml:"Version,attr"`
	EarliestEvent int64          `xml:"EarliestEvent"`
	Events        []storageEvent `xml:"Events>RealTimeEvent"`
}

type storageEvent struct {
	EventName         string `xml:"EventName"`
	BuildingClassName string `xml:"BuildingClassName"`
	StartTime         int64  `xml:"StartTime"`
	BuildingID        uint16 `xml:"BuildingId"`
	BuildingName      string `xml:"BuildingName"`
	AttendeesCount    int32  `xml:"AttendeesCount"`
}

// Serialize encodes every procedural event and the creation watermark.
// Host-mirrored events are owned by the host and are not written.
func (m *Manager) Serialize() ([]byte, error) {
	c := storageContainer{
		Version:       StorageVersion,
		EarliestEvent: Ticks(m.earliestEvent),
	}

	for _, list := range [][]*Event{m.timeline.Finished(), m.timeline.Active(), m.timeline.Upcoming()} {
		for _, e := range list {
			if !e.Persistent() || e.Template == nil {
				continue
			}
			c.Events = append(c.Events, storageEvent{
				EventName:         e.Template.Name,
				BuildingClassName: e.Template.BuildingClass,
				StartTime:         Ticks(e.Start),
				BuildingID:        uint16(e.BuildingID),
				BuildingName:      e.BuildingName,
				AttendeesCount:    int32(e.Attendees),
			})
		}
	}

	data, err := xml.MarshalIndent(c, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode event storage: %w", err)
	}
	return append([]byte(xml.Header), data...), nil
}

// Deserialize replaces the timeline with the stored procedural events. Records
// that cannot be resolved are dropped. Ended events go to finished, the rest to
// upcoming; the next ProcessEvents promotes them as needed.
func (m *Manager) Deserialize(data []byte) error {
	var c storageContainer
	if err := xml.Unmarshal(data, &c); err != nil {
		return fmt.Errorf("decode event storage: %w", err)
	}
	if c.Version > StorageVersion {
		return fmt.Errorf("%w: %d", ErrUnsupportedVersion, c.Version)
	}

	m.timeline.Clear()
	m.lastProcessed = time.Time{}
	m.earliestEvent = time.Time{}
	if c.EarliestEvent != 0 {
		m.earliestEvent = FromTicks(c.EarliestEvent)
	}

	now := m.clock.Now()
	restored, dropped := 0, 0
	for _, r := range c.Events {
		if r.EventName == "" || r.BuildingClassName == "" {
			dropped++
			continue
		}
		if r.BuildingID == 0 {
			slog.Warn("stored city event has no building", "event", r.EventName)
			dropped++
			continue
		}
		tpl, ok := m.templates.Lookup(r.EventName, r.BuildingClassName)
		if !ok {
			slog.Warn("stored city event has no template", "event", r.EventName, "class", r.BuildingClassName)
			dropped++
			continue
		}

		e := NewProcedural(tpl, world.BuildingID(r.BuildingID), r.BuildingName, FromTicks(r.StartTime), int(r.AttendeesCount))
		var added bool
		if e.End().After(now) {
			added = m.timeline.Add(e)
		} else {
			added = m.timeline.AddFinished(e)
		}
		if !added {
			slog.Warn("stored city event conflicts with another", "event", r.EventName, "building_id", r.BuildingID)
			dropped++
			continue
		}
		restored++
	}

	slog.Info("city events restored", "restored", restored, "dropped", dropped, "version", c.Version)
	m.notify()
	return nil
}

// .NET-style ticks: 100ns intervals since 0001-01-01 UTC.
const (
	ticksPerSecond = 10_000_000
	unixEpochTicks = 621_355_968_000_000_000
)

// Ticks converts a time to an absolute tick count.
func Ticks(t time.Time) int64 {
	return t.Unix()*ticksPerSecond + int64(t.Nanosecond()/100) + unixEpochTicks
}

// FromTicks converts an absolute tick count to a UTC time.
func FromTicks(n int64) time.Time {
	rel := n - unixEpochTicks
	return time.Unix(rel/ticksPerSecond, (rel%ticksPerSecond)*100).UTC()
}

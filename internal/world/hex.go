// Package world provides the city grid, buildings, and the building directory
// consumed by the event engine. Uses axial coordinates (q, r) for the hex grid.
package world

// HexCoord represents a position on the hex grid using axial coordinates.
// The third cube coordinate s is derived: s = -q - r.
type HexCoord struct {
	Q int `json:"q"`
	R int `json:"r"`
}

// S returns the implicit third cube coordinate.
func (h HexCoord) S() int {
	return -h.Q - h.R
}

// Distance returns the hex distance between two coordinates.
func (h HexCoord) Distance(o HexCoord) int {
	dq := abs(h.Q - o.Q)
	dr := abs(h.R - o.R)
	ds := abs(h.S() - o.S())
	max := dq
	if dr > max {
		max = dr
	}
	if ds > max {
		max = ds
	}
	return max
}

// BuildingID identifies a building. Zero is never a valid building.
type BuildingID uint16

// EventID identifies an event owned by the host scheduler. Zero means none.
type EventID uint16

// Service is the service category of a building.
type Service uint8

const (
	ServiceNone Service = iota
	ServiceResidential
	ServiceCommercial
	ServiceIndustrial
	ServiceOffice
	ServiceBeautification
	ServiceMonument
	ServiceMuseums
	ServiceSports
)

// SubService refines a service category.
type SubService uint8

const (
	SubServiceNone SubService = iota
	SubServiceResidentialLow
	SubServiceResidentialHigh
	SubServiceCommercialLow
	SubServiceCommercialHigh
	SubServiceCommercialLeisure
)

// Flags describe the current condition of a building.
type Flags uint32

const (
	FlagCreated Flags = 1 << iota
	FlagActive
	FlagAbandoned
	FlagBurnedDown
	FlagCollapsed
	FlagDeleted
	FlagDemolishing
	FlagEvacuating
	FlagFlooded
)

// FlagsUnusable is the set of conditions under which a building cannot host anything.
const FlagsUnusable = FlagAbandoned | FlagBurnedDown | FlagCollapsed | FlagDeleted |
	FlagDemolishing | FlagEvacuating | FlagFlooded

// Building is a single structure in the city.
type Building struct {
	ID         BuildingID `json:"id"`
	Name       string     `json:"name"`
	Class      string     `json:"class"` // Building class name, keys event templates
	Service    Service    `json:"service"`
	SubService SubService `json:"sub_service"`
	Coord      HexCoord   `json:"coord"`
	Flags      Flags      `json:"flags"`

	// Host event currently attached to this building, if any.
	EventID EventID `json:"event_id,omitempty"`
}

// ServiceName returns a human-readable name for a service category.
func ServiceName(s Service) string {
	switch s {
	case ServiceResidential:
		return "Residential"
	case ServiceCommercial:
		return "Commercial"
	case ServiceIndustrial:
		return "Industrial"
	case ServiceOffice:
		return "Office"
	case ServiceBeautification:
		return "Beautification"
	case ServiceMonument:
		return "Monument"
	case ServiceMuseums:
		return "Museums"
	case ServiceSports:
		return "Sports"
	default:
		return "None"
	}
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

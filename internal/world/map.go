package world

import (
	"fmt"
	"math/rand"
)

// City holds every building and answers directory queries about them.
// Not safe for concurrent use; the simulation loop owns it.
type City struct {
	Buildings map[BuildingID]*Building `json:"-"`
	Radius    int                      `json:"radius"`

	order  []BuildingID // Insertion order, for deterministic random picks
	nextID BuildingID
	rng    *rand.Rand
}

// NewCity creates an empty city with the given radius.
func NewCity(radius int, seed int64) *City {
	return &City{
		Buildings: make(map[BuildingID]*Building),
		Radius:    radius,
		nextID:    1,
		rng:       rand.New(rand.NewSource(seed + 500)),
	}
}

// Add places a building in the city and returns its assigned ID.
func (c *City) Add(b Building) BuildingID {
	id := c.nextID
	c.nextID++
	b.ID = id
	if b.Flags == 0 {
		b.Flags = FlagCreated | FlagActive
	}
	c.Buildings[id] = &b
	c.order = append(c.order, id)
	return id
}

// Get returns the building with the given ID, or nil.
func (c *City) Get(id BuildingID) *Building {
	if id == 0 {
		return nil
	}
	return c.Buildings[id]
}

// HasFlags reports whether the building carries any of the given flags.
// An unknown or zero ID reports includeZero.
func (c *City) HasFlags(id BuildingID, flags Flags, includeZero bool) bool {
	b := c.Get(id)
	if b == nil {
		return includeZero
	}
	return b.Flags&flags != 0
}

// SetFlags adds flags to a building. Unusable buildings also lose FlagActive.
func (c *City) SetFlags(id BuildingID, flags Flags) {
	b := c.Get(id)
	if b == nil {
		return
	}
	b.Flags |= flags
	if b.Flags&FlagsUnusable != 0 {
		b.Flags &^= FlagActive
	}
}

// ClearFlags removes flags from a building.
func (c *City) ClearFlags(id BuildingID, flags Flags) {
	if b := c.Get(id); b != nil {
		b.Flags &^= flags
	}
}

// RandomBuilding returns a random building in one of the given services, or 0.
func (c *City) RandomBuilding(services ...Service) BuildingID {
	var candidates []BuildingID
	for _, id := range c.order {
		b := c.Buildings[id]
		if b.Flags&FlagDeleted != 0 {
			continue
		}
		for _, s := range services {
			if b.Service == s {
				candidates = append(candidates, id)
				break
			}
		}
	}
	if len(candidates) == 0 {
		return 0
	}
	return candidates[c.rng.Intn(len(candidates))]
}

// Name returns the display name of a building, or "".
func (c *City) Name(id BuildingID) string {
	if b := c.Get(id); b != nil {
		return b.Name
	}
	return ""
}

// ClassName returns the building class name, or "".
func (c *City) ClassName(id BuildingID) string {
	if b := c.Get(id); b != nil {
		return b.Class
	}
	return ""
}

// Service returns the service category of a building.
func (c *City) Service(id BuildingID) Service {
	if b := c.Get(id); b != nil {
		return b.Service
	}
	return ServiceNone
}

// SubService returns the sub-service of a building.
func (c *City) SubService(id BuildingID) SubService {
	if b := c.Get(id); b != nil {
		return b.SubService
	}
	return SubServiceNone
}

// EventID returns the host event attached to a building, or 0.
func (c *City) EventID(id BuildingID) EventID {
	if b := c.Get(id); b != nil {
		return b.EventID
	}
	return 0
}

// SetEventID attaches a host event to a building. Pass 0 to detach.
func (c *City) SetEventID(id BuildingID, eventID EventID) {
	if b := c.Get(id); b != nil {
		b.EventID = eventID
	}
}

// BuildingCount returns the total number of buildings in the city.
func (c *City) BuildingCount() int {
	return len(c.Buildings)
}

// ServiceCounts returns a summary of buildings per service.
func (c *City) ServiceCounts() map[Service]int {
	counts := make(map[Service]int)
	for _, b := range c.Buildings {
		counts[b.Service]++
	}
	return counts
}

// String returns a summary of the city.
func (c *City) String() string {
	return fmt.Sprintf("City(radius=%d, buildings=%d)", c.Radius, c.BuildingCount())
}

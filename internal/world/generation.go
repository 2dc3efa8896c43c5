// City generation using layered simplex noise.
// Land value and greenery fields decide where landmarks, parks and zones go.
package world

import (
	"fmt"
	"math"
	"math/rand"
	"sort"

	opensimplex "github.com/ojrac/opensimplex-go"
)

// GenConfig holds city generation parameters.
type GenConfig struct {
	Radius    int   // Hex grid radius
	Seed      int64 // Random seed (0 = random)
	Monuments int   // Landmark venues on the highest land value
	Museums   int
	Parks     int // Beautification on the greenest hexes
	Stadiums  int // Sports venues on the outskirts
}

// DefaultGenConfig returns a reasonable starting configuration.
func DefaultGenConfig() GenConfig {
	return GenConfig{
		Radius:    12,
		Seed:      0,
		Monuments: 3,
		Museums:   3,
		Parks:     6,
		Stadiums:  2,
	}
}

// SmallTestConfig returns a tiny city for rapid iteration.
func SmallTestConfig() GenConfig {
	return GenConfig{
		Radius:    4,
		Seed:      42,
		Monuments: 1,
		Museums:   1,
		Parks:     2,
		Stadiums:  1,
	}
}

// Building classes per venue service. Event templates are keyed by these names.
var (
	MonumentClasses       = []string{"Expo Center", "Opera House", "Grand Monument"}
	MuseumClasses         = []string{"Modern Art Museum", "Science Museum"}
	BeautificationClasses = []string{"City Park", "Botanical Garden", "Plaza"}
	SportsClasses         = []string{"Football Stadium"}
)

var districtNames = []string{
	"Harbor", "Old Town", "Riverside", "Northgate", "Hillcrest", "Eastbrook",
}

type cell struct {
	coord HexCoord
	value float64
	green float64
	dist  float64
}

// Generate creates a complete city with zoned buildings and venues.
func Generate(cfg GenConfig) *City {
	seed := cfg.Seed
	if seed == 0 {
		seed = rand.Int63()
	}

	valueNoise := opensimplex.NewNormalized(seed)
	greenNoise := opensimplex.NewNormalized(seed + 1)
	rng := rand.New(rand.NewSource(seed + 2))

	var cells []cell
	for q := -cfg.Radius; q <= cfg.Radius; q++ {
		for r := -cfg.Radius; r <= cfg.Radius; r++ {
			coord := HexCoord{Q: q, R: r}
			if coord.Distance(HexCoord{}) > cfg.Radius {
				continue
			}

			// Hex axial → cartesian: x = q + r*0.5, y = r * sqrt(3)/2
			x := float64(q) + float64(r)*0.5
			y := float64(r) * math.Sqrt(3.0) / 2.0

			dist := math.Sqrt(x*x+y*y) / float64(cfg.Radius+1)
			value := octaveNoise(valueNoise, x, y, 3, 0.12, 0.5)
			// Land value peaks downtown.
			value = value*0.5 + (1.0-dist)*0.5

			cells = append(cells, cell{
				coord: coord,
				value: value,
				green: octaveNoise(greenNoise, x, y, 2, 0.15, 0.5),
				dist:  dist,
			})
		}
	}

	c := NewCity(cfg.Radius, seed)

	take := func(n int, less func(a, b cell) bool) []cell {
		sort.SliceStable(cells, func(i, j int) bool { return less(cells[i], cells[j]) })
		if n > len(cells) {
			n = len(cells)
		}
		picked := append([]cell(nil), cells[:n]...)
		cells = cells[n:]
		return picked
	}
	byValue := func(a, b cell) bool { return a.value > b.value }
	byGreen := func(a, b cell) bool { return a.green > b.green }
	byDist := func(a, b cell) bool { return a.dist > b.dist }

	for _, p := range take(cfg.Monuments, byValue) {
		c.addVenue(p.coord, ServiceMonument, MonumentClasses, rng)
	}
	for _, p := range take(cfg.Museums, byValue) {
		c.addVenue(p.coord, ServiceMuseums, MuseumClasses, rng)
	}
	for _, p := range take(cfg.Parks, byGreen) {
		c.addVenue(p.coord, ServiceBeautification, BeautificationClasses, rng)
	}
	for _, p := range take(cfg.Stadiums, byDist) {
		c.addVenue(p.coord, ServiceSports, SportsClasses, rng)
	}

	for _, p := range cells {
		service, sub, class := zoneFor(p.value)
		c.Add(Building{
			Name:       fmt.Sprintf("%s %s", districtName(p.coord), class),
			Class:      class,
			Service:    service,
			SubService: sub,
			Coord:      p.coord,
		})
	}

	return c
}

func (c *City) addVenue(coord HexCoord, service Service, classes []string, rng *rand.Rand) {
	class := classes[rng.Intn(len(classes))]
	c.Add(Building{
		Name:    fmt.Sprintf("%s %s", districtName(coord), class),
		Class:   class,
		Service: service,
		Coord:   coord,
	})
}

// zoneFor derives the zone of an ordinary hex from its land value.
func zoneFor(value float64) (Service, SubService, string) {
	switch {
	case value > 0.75:
		return ServiceOffice, SubServiceNone, "Office Tower"
	case value > 0.6:
		return ServiceCommercial, SubServiceCommercialHigh, "Department Store"
	case value > 0.5:
		return ServiceCommercial, SubServiceCommercialLeisure, "Night Club"
	case value > 0.35:
		return ServiceResidential, SubServiceResidentialHigh, "Apartment Block"
	case value > 0.2:
		return ServiceResidential, SubServiceResidentialLow, "Family House"
	default:
		return ServiceIndustrial, SubServiceNone, "Warehouse"
	}
}

// districtName names the sixth of the city a coordinate falls in.
func districtName(coord HexCoord) string {
	x := float64(coord.Q) + float64(coord.R)*0.5
	y := float64(coord.R) * math.Sqrt(3.0) / 2.0
	angle := math.Atan2(y, x) + math.Pi // 0..2π
	sector := int(angle/(2*math.Pi)*float64(len(districtNames))) % len(districtNames)
	return districtNames[sector]
}

// octaveNoise generates fractal noise by layering multiple frequencies.
func octaveNoise(noise opensimplex.Noise, x, y float64, octaves int, frequency, persistence float64) float64 {
	total := 0.0
	amplitude := 1.0
	maxVal := 0.0

	for i := 0; i < octaves; i++ {
		total += noise.Eval2(x*frequency, y*frequency) * amplitude
		maxVal += amplitude
		amplitude *= persistence
		frequency *= 2
	}

	return total / maxVal
}

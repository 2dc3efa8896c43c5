package events

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/talgya/city-events/internal/catalog"
	"github.com/talgya/city-events/internal/hostsched"
	"github.com/talgya/city-events/internal/world"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) advance(d time.Duration) { c.now = c.now.Add(d) }

// scriptedRng returns queued values first, then the defaults.
type scriptedRng struct {
	percents []int
	belows   []int

	defaultPercent int
	defaultBelow   int

	percentCalls int
	belowCalls   int
}

func (r *scriptedRng) Percent() int {
	r.percentCalls++
	if len(r.percents) > 0 {
		v := r.percents[0]
		r.percents = r.percents[1:]
		return v
	}
	return r.defaultPercent
}

func (r *scriptedRng) Below(n int) int {
	r.belowCalls++
	v := r.defaultBelow
	if len(r.belows) > 0 {
		v = r.belows[0]
		r.belows = r.belows[1:]
	}
	if v >= n {
		v = n - 1
	}
	if v < 0 {
		v = 0
	}
	return v
}

// pickDirectory is a real city whose random building picks are scripted.
type pickDirectory struct {
	*world.City
	picks []world.BuildingID
}

func (d *pickDirectory) RandomBuilding(services ...world.Service) world.BuildingID {
	if len(d.picks) == 0 {
		return 0
	}
	b := d.picks[0]
	d.picks = d.picks[1:]
	return b
}

func (d *pickDirectory) pick(b ...world.BuildingID) {
	d.picks = append(d.picks, b...)
}

// Wednesday noon.
var noon = time.Date(2024, time.May, 15, 12, 0, 0, 0, time.UTC)

func testTemplates(t *testing.T) *catalog.Catalog {
	t.Helper()
	all := func(a *catalog.Attendees, p int) {
		a.Age.Children, a.Age.Teens, a.Age.YoungAdults, a.Age.Adults, a.Age.Seniors = p, p, p, p, p
		a.Gender.Males, a.Gender.Females = p, p
		a.Education.Uneducated, a.Education.OneSchool, a.Education.TwoSchools, a.Education.ThreeSchools = p, p, p, p
		a.Wealth.Low, a.Wealth.Medium, a.Wealth.High = p, p, p
		a.Wellbeing.VeryUnhappy, a.Wellbeing.Unhappy, a.Wellbeing.Satisfied, a.Wellbeing.Happy, a.Wellbeing.VeryHappy = p, p, p, p, p
		a.Happiness.Bad, a.Happiness.Poor, a.Happiness.Good, a.Happiness.Excellent, a.Happiness.Superb = p, p, p, p, p
	}

	art := catalog.Template{Name: "art_exhibition", BuildingClass: "Modern Art Museum", DisplayName: "Art Exhibition",
		SupportsRandomEvents: true, Capacity: 100, DurationHours: 2, Costs: &catalog.Costs{Entry: 35}}
	all(&art.Attendees, 50)
	concert := catalog.Template{Name: "open_air_concert", BuildingClass: "City Park",
		SupportsRandomEvents: true, Capacity: 500, DurationHours: 4}
	all(&concert.Attendees, 80)
	expo := catalog.Template{Name: "trade_expo", BuildingClass: "Expo Center",
		SupportsRandomEvents: true, Capacity: 800, DurationHours: 6}
	all(&expo.Attendees, 70)

	c, err := catalog.New(art, concert, expo)
	require.NoError(t, err)
	return c
}

type testEnv struct {
	m     *Manager
	dir   *pickDirectory
	city  *world.City
	host  *hostsched.Scheduler
	clock *fakeClock
	rng   *scriptedRng

	museum  world.BuildingID
	park    world.BuildingID
	expo    world.BuildingID
	stadium world.BuildingID

	changes []Snapshot
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	city := world.NewCity(2, 1)
	env := &testEnv{
		city:  city,
		dir:   &pickDirectory{City: city},
		host:  hostsched.NewScheduler(city, 1),
		clock: &fakeClock{now: noon},
		rng:   &scriptedRng{},
	}
	env.museum = city.Add(world.Building{Name: "Old Town Modern Art Museum", Class: "Modern Art Museum", Service: world.ServiceMuseums})
	env.park = city.Add(world.Building{Name: "Riverside City Park", Class: "City Park", Service: world.ServiceBeautification})
	env.expo = city.Add(world.Building{Name: "Harbor Expo Center", Class: "Expo Center", Service: world.ServiceMonument})
	env.stadium = city.Add(world.Building{Name: "Northgate Football Stadium", Class: "Football Stadium", Service: world.ServiceSports})

	env.m = NewManager(DefaultConfig(), testTemplates(t), env.dir, env.host, env.clock, env.rng)
	env.m.OnEventsChanged(func(s Snapshot) { env.changes = append(env.changes, s) })
	return env
}

func buildingsOf(list []Event) []world.BuildingID {
	var ids []world.BuildingID
	for _, e := range list {
		ids = append(ids, e.BuildingID)
	}
	return ids
}

// requireInvariants checks ordering and disjointness of the timeline.
func requireInvariants(t *testing.T, tl *Timeline) {
	t.Helper()
	up := tl.Upcoming()
	for i := 1; i < len(up); i++ {
		require.False(t, up[i].Start.Before(up[i-1].Start), "upcoming out of order at %d", i)
	}
	seen := make(map[world.BuildingID]bool)
	for _, list := range [][]*Event{tl.Upcoming(), tl.Active(), tl.Finished()} {
		for _, e := range list {
			require.False(t, seen[e.BuildingID], "building %d held twice", e.BuildingID)
			seen[e.BuildingID] = true
		}
	}
}

package persistence

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/city-events/internal/agents"
	"github.com/talgya/city-events/internal/catalog"
	"github.com/talgya/city-events/internal/engine"
	"github.com/talgya/city-events/internal/entropy"
	"github.com/talgya/city-events/internal/events"
	"github.com/talgya/city-events/internal/hostsched"
	"github.com/talgya/city-events/internal/world"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "citysim.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestEventSnapshots(t *testing.T) {
	db := openTestDB(t)

	snap, err := db.LatestEventSnapshot()
	require.NoError(t, err)
	assert.Nil(t, snap)

	var lastID string
	for tick := uint64(1); tick <= 7; tick++ {
		lastID, err = db.SaveEventSnapshot(tick*100, []byte{byte(tick)})
		require.NoError(t, err)
	}

	snap, err = db.LatestEventSnapshot()
	require.NoError(t, err)
	require.NotNil(t, snap)
	assert.Equal(t, lastID, snap.ID)
	assert.Equal(t, uint64(700), snap.SavedTick)
	assert.Equal(t, events.StorageVersion, snap.Version)
	assert.Equal(t, []byte{7}, snap.Payload)

	var count int
	require.NoError(t, db.conn.Get(&count, "SELECT COUNT(*) FROM event_snapshots"))
	assert.Equal(t, keepSnapshots, count)
}

func TestCitizens(t *testing.T) {
	db := openTestDB(t)
	citizens := agents.NewSpawner(3).SpawnPopulation(25)
	citizens[4].Attended = 6

	require.NoError(t, db.SaveCitizens(citizens))
	require.NoError(t, db.SaveCitizens(citizens), "full replace")

	loaded, err := db.LoadCitizens()
	require.NoError(t, err)
	require.Len(t, loaded, len(citizens))
	for i := range citizens {
		assert.Equal(t, *citizens[i], *loaded[i])
	}
}

func TestJournal(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, db.SaveJournal(nil))
	require.NoError(t, db.SaveJournal([]engine.JournalEntry{
		{Tick: 1, Description: "Art Exhibition scheduled", Category: "scheduled"},
		{Tick: 900, Description: "Art Exhibition started", Category: "started"},
		{Tick: 1020, Description: "Art Exhibition drew 40", Category: "finished"},
	}))

	recent, err := db.RecentJournal(2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "finished", recent[0].Category)
	assert.Equal(t, uint64(900), recent[1].Tick)
}

func TestMeta(t *testing.T) {
	db := openTestDB(t)
	assert.False(t, db.HasWorldState())
	assert.Zero(t, db.LastTick())

	_, err := db.GetMeta("missing")
	require.Error(t, err)

	require.NoError(t, db.SaveMeta("last_tick", "4321"))
	require.NoError(t, db.SaveMeta("last_tick", "4322"))
	assert.True(t, db.HasWorldState())
	assert.Equal(t, uint64(4322), db.LastTick())
}

func newTestSim(t *testing.T, eng *engine.Engine) (*engine.Simulation, world.BuildingID) {
	t.Helper()
	city := world.NewCity(3, 1)
	museum := city.Add(world.Building{Name: "Harbor Modern Art Museum", Class: "Modern Art Museum", Service: world.ServiceMuseums})

	art := catalog.Template{Name: "art_exhibition", BuildingClass: "Modern Art Museum",
		SupportsRandomEvents: true, Capacity: 100, DurationHours: 2}
	templates, err := catalog.New(art)
	require.NoError(t, err)

	rng := entropy.New(1)
	host := hostsched.NewScheduler(city, 1)
	mgr := events.NewManager(events.DefaultConfig(), templates, city, host, eng, rng)
	return engine.NewSimulation(city, host, mgr, agents.NewSpawner(1).SpawnPopulation(10), eng, rng), museum
}

func TestSaveAndRestoreWorldState(t *testing.T) {
	db := openTestDB(t)
	epoch := time.Date(2024, time.May, 15, 8, 0, 0, 0, time.UTC)

	eng := engine.NewEngine(epoch)
	eng.Tick = 1
	sim, museum := newTestSim(t, eng)
	sim.TickMinute(eng.Tick)
	require.Len(t, sim.Events.Upcoming(), 1)

	require.NoError(t, db.SaveWorldState(sim))
	assert.Equal(t, uint64(1), db.LastTick())
	recent, err := db.RecentJournal(10)
	require.NoError(t, err)
	assert.Len(t, recent, 1)

	eng2 := engine.NewEngine(epoch)
	eng2.Tick = db.LastTick()
	restored, _ := newTestSim(t, eng2)
	ok, err := db.RestoreEvents(restored.Events)
	require.NoError(t, err)
	assert.True(t, ok)

	up := restored.Events.Upcoming()
	require.Len(t, up, 1)
	assert.Equal(t, museum, up[0].BuildingID)
	assert.Equal(t, sim.Events.Upcoming()[0].Start, up[0].Start)
	assert.Equal(t, sim.Events.EarliestEvent(), restored.Events.EarliestEvent())
}

func TestRestoreEvents_Empty(t *testing.T) {
	db := openTestDB(t)
	sim, _ := newTestSim(t, engine.NewEngine(time.Now()))
	ok, err := db.RestoreEvents(sim.Events)
	require.NoError(t, err)
	assert.False(t, ok)
}

package events

import (
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/city-events/internal/world"
)

func addProcedural(t *testing.T, env *testEnv, name, class string, b world.BuildingID, start time.Time, attendees int) {
	t.Helper()
	tpl, ok := env.m.templates.Lookup(name, class)
	require.True(t, ok)
	require.True(t, env.m.timeline.Add(NewProcedural(tpl, b, env.city.Name(b), start, attendees)))
}

func TestStorage_RoundTrip(t *testing.T) {
	src := newTestEnv(t)
	addProcedural(t, src, "art_exhibition", "Modern Art Museum", src.museum, at(weekday, 10, 0), 40)
	addProcedural(t, src, "open_air_concert", "City Park", src.park, at(weekday, 16, 0), 7)
	addProcedural(t, src, "trade_expo", "Expo Center", src.expo, at(weekday.AddDate(0, 0, 1), 17, 0), 0)
	require.True(t, src.m.timeline.Add(NewExternal(3, src.stadium, "Northgate Football Stadium", at(weekday, 18, 0), 2*time.Hour, 50)))
	src.m.earliestEvent = at(weekday.AddDate(0, 0, 2), 16, 0)

	data, err := src.m.Serialize()
	require.NoError(t, err)
	assert.Contains(t, string(data), `<RealTimeEventStorage Version="1">`)
	assert.NotContains(t, string(data), "Northgate", "host events are not persisted")

	dst := newTestEnv(t)
	require.NoError(t, dst.m.Deserialize(data))

	snap := dst.m.Snapshot()
	assert.Empty(t, snap.Active)
	assert.Equal(t, []world.BuildingID{dst.museum}, buildingsOf(snap.Finished), "ended at load time")
	assert.Equal(t, []world.BuildingID{dst.park, dst.expo}, buildingsOf(snap.Upcoming))

	park := snap.Upcoming[0]
	assert.Equal(t, "open_air_concert", park.Template.Name)
	assert.Equal(t, "Riverside City Park", park.BuildingName)
	assert.Equal(t, at(weekday, 16, 0), park.Start)
	assert.Equal(t, 7, park.Attendees)
	assert.Equal(t, 40, snap.Finished[0].Attendees)

	assert.Equal(t, at(weekday.AddDate(0, 0, 2), 16, 0), dst.m.EarliestEvent())
	require.Len(t, dst.changes, 1, "load notifies listeners")
	requireInvariants(t, dst.m.timeline)

	again, err := dst.m.Serialize()
	require.NoError(t, err)
	assert.Equal(t, string(data), string(again))
}

func TestStorage_LoadResetsThrottle(t *testing.T) {
	env := newTestEnv(t)
	env.m.ProcessEvents()
	data, err := env.m.Serialize()
	require.NoError(t, err)

	env.clock.advance(time.Minute)
	require.NoError(t, env.m.Deserialize(data))
	env.dir.pick(env.museum)
	env.m.ProcessEvents()
	assert.Len(t, env.m.Upcoming(), 1, "first pass after load is due")
}

func TestStorage_DropsUnresolvableRecords(t *testing.T) {
	start := Ticks(at(weekday, 17, 0))
	record := func(name, class string, b int) string {
		return "<RealTimeEvent>" +
			"<EventName>" + name + "</EventName>" +
			"<BuildingClassName>" + class + "</BuildingClassName>" +
			"<StartTime>" + strconv.FormatInt(start, 10) + "</StartTime>" +
			"<BuildingId>" + strconv.Itoa(b) + "</BuildingId>" +
			"<BuildingName>venue</BuildingName>" +
			"<AttendeesCount>3</AttendeesCount>" +
			"</RealTimeEvent>"
	}

	env := newTestEnv(t)
	doc := `<?xml version="1.0"?><RealTimeEventStorage Version="1"><EarliestEvent>0</EarliestEvent><Events>` +
		record("", "City Park", int(env.park)) +
		record("open_air_concert", "", int(env.park)) +
		record("open_air_concert", "City Park", 0) +
		record("unknown_event", "City Park", int(env.park)) +
		record("art_exhibition", "Modern Art Museum", int(env.museum)) +
		record("art_exhibition", "Modern Art Museum", int(env.museum)) +
		`</Events></RealTimeEventStorage>`

	require.NoError(t, env.m.Deserialize([]byte(doc)))
	up := env.m.Upcoming()
	require.Len(t, up, 1, "only the first museum record survives")
	assert.Equal(t, env.museum, up[0].BuildingID)
	assert.Equal(t, 3, up[0].Attendees)
	assert.True(t, env.m.EarliestEvent().IsZero())
}

func TestStorage_Errors(t *testing.T) {
	env := newTestEnv(t)
	env.dir.pick(env.museum)
	env.m.ProcessEvents()

	err := env.m.Deserialize([]byte(`<RealTimeEventStorage Version="2"><Events></Events></RealTimeEventStorage>`))
	require.ErrorIs(t, err, ErrUnsupportedVersion)
	assert.Len(t, env.m.Upcoming(), 1, "timeline untouched on error")

	err = env.m.Deserialize([]byte(`<RealTimeEventStorage Version="1"><Events>`))
	require.Error(t, err)
	assert.Len(t, env.m.Upcoming(), 1)
}

func TestTicks(t *testing.T) {
	assert.Equal(t, int64(0), Ticks(time.Time{}))
	assert.True(t, FromTicks(0).IsZero())
	assert.Equal(t, int64(621_355_968_000_000_000), Ticks(time.Unix(0, 0)))

	ts := time.Date(2024, time.May, 15, 17, 30, 12, 345_678_900, time.UTC)
	assert.True(t, ts.Equal(FromTicks(Ticks(ts))))
	assert.Equal(t, time.UTC, FromTicks(Ticks(ts)).Location())
}

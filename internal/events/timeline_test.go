package events

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/city-events/internal/world"
)

func ext(b world.BuildingID, start time.Time, d time.Duration) *Event {
	return NewExternal(world.EventID(b), b, "venue", start, d, 0)
}

func TestTimeline_AddKeepsOrder(t *testing.T) {
	tl := NewTimeline(10)
	rng := rand.New(rand.NewSource(3))

	for b := 1; b <= 50; b++ {
		start := noon.Add(time.Duration(rng.Intn(48)) * time.Hour)
		require.True(t, tl.Add(ext(world.BuildingID(b), start, time.Hour)))
		requireInvariants(t, tl)
	}
	assert.Len(t, tl.Upcoming(), 50)
}

func TestTimeline_AddStableTies(t *testing.T) {
	tl := NewTimeline(10)
	first := ext(1, noon, time.Hour)
	second := ext(2, noon, time.Hour)
	earlier := ext(3, noon.Add(-time.Hour), time.Hour)

	tl.Add(first)
	tl.Add(second)
	tl.Add(earlier)

	assert.Equal(t, []*Event{earlier, first, second}, tl.Upcoming())
}

func TestTimeline_Disjoint(t *testing.T) {
	tl := NewTimeline(10)
	e := ext(1, noon, time.Hour)
	require.True(t, tl.Add(e))

	assert.False(t, tl.Add(ext(1, noon.Add(5*time.Hour), time.Hour)), "same building upcoming")
	assert.False(t, tl.Add(ext(0, noon, time.Hour)), "zero building")
	assert.False(t, tl.Add(nil))

	tl.PromoteStarted(noon)
	assert.False(t, tl.Add(ext(1, noon.Add(5*time.Hour), time.Hour)), "same building active")

	tl.FinishEnded(noon.Add(time.Hour))
	require.Len(t, tl.Finished(), 1)

	// A new event in the building replaces its finished entry.
	next := ext(1, noon.Add(5*time.Hour), time.Hour)
	require.True(t, tl.Add(next))
	assert.Empty(t, tl.Finished())
	requireInvariants(t, tl)
}

func TestTimeline_PromoteAndFinish(t *testing.T) {
	tl := NewTimeline(10)
	a := ext(1, noon, time.Hour)
	b := ext(2, noon.Add(30*time.Minute), 2*time.Hour)
	c := ext(3, noon.Add(3*time.Hour), time.Hour)
	tl.Add(c)
	tl.Add(a)
	tl.Add(b)

	assert.Nil(t, tl.PromoteStarted(noon.Add(-time.Minute)))

	started := tl.PromoteStarted(noon.Add(45 * time.Minute))
	assert.Equal(t, []*Event{a, b}, started)
	assert.Equal(t, []*Event{c}, tl.Upcoming())
	assert.ElementsMatch(t, []*Event{a, b}, tl.Active())

	ended := tl.FinishEnded(noon.Add(time.Hour))
	assert.Equal(t, []*Event{a}, ended)
	assert.Equal(t, []*Event{b}, tl.Active())
	assert.Equal(t, []*Event{a}, tl.Finished())
	requireInvariants(t, tl)
	assert.Equal(t, 3, tl.Len())
}

func TestTimeline_FinishedCap(t *testing.T) {
	tl := NewTimeline(2)
	for b := 1; b <= 4; b++ {
		e := ext(world.BuildingID(b), noon.Add(time.Duration(b)*time.Hour), time.Hour)
		require.True(t, tl.AddFinished(e))
	}

	require.Len(t, tl.Finished(), 2)
	assert.ElementsMatch(t, []world.BuildingID{3, 4}, []world.BuildingID{tl.Finished()[0].BuildingID, tl.Finished()[1].BuildingID})
}

func TestTimeline_RemoveAndFind(t *testing.T) {
	tl := NewTimeline(10)
	a := ext(1, noon, time.Hour)
	b := ext(2, noon.Add(2*time.Hour), time.Hour)
	tl.Add(a)
	tl.Add(b)
	tl.PromoteStarted(noon)

	e, st := tl.Find(func(e *Event) bool { return e.BuildingID == 2 })
	assert.Equal(t, b, e)
	assert.Equal(t, StateUpcoming, st)

	e, st = tl.Find(func(e *Event) bool { return e.BuildingID == 1 })
	assert.Equal(t, a, e)
	assert.Equal(t, StateOngoing, st)

	assert.True(t, tl.Remove(a))
	assert.False(t, tl.Remove(a))
	e, st = tl.Find(func(e *Event) bool { return e.BuildingID == 1 })
	assert.Nil(t, e)
	assert.Equal(t, StateNone, st)

	removed := tl.RemoveIf(func(e *Event) bool { return true })
	assert.Equal(t, []*Event{b}, removed)
	assert.Equal(t, 0, tl.Len())
	assert.Nil(t, tl.LastUpcoming())
}

func TestTimeline_PromoteClearsTail(t *testing.T) {
	tl := NewTimeline(10)
	for i := 1; i <= 4; i++ {
		require.True(t, tl.Add(ext(world.BuildingID(i), noon.Add(time.Duration(i)*time.Hour), time.Hour)))
	}

	started := tl.PromoteStarted(noon.Add(2 * time.Hour))
	require.Len(t, started, 2)
	require.Len(t, tl.Upcoming(), 2)

	full := tl.upcoming[:cap(tl.upcoming)]
	for i := len(tl.upcoming); i < len(full); i++ {
		assert.Nil(t, full[i], "slot %d still holds an event", i)
	}
}

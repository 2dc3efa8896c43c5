package events

import (
	"github.com/talgya/city-events/internal/agents"
)

// Randomizer supplies bounded random integers.
type Randomizer interface {
	// Percent returns a uniform integer in [0, 100).
	Percent() int
	// Below returns a uniform integer in [0, n).
	Below(n int) int
}

// Budget draws what a citizen of the given wealth tier is willing to pay for a ticket.
// A fresh draw is made on every call.
func Budget(w agents.Wealth, rng Randomizer) float64 {
	switch w {
	case agents.WealthLow:
		return float64(30 + rng.Below(60))
	case agents.WealthMedium:
		return float64(80 + rng.Below(80))
	case agents.WealthHigh:
		return float64(120 + rng.Below(320))
	}
	return 0
}

// Admit decides whether a prospective attendee gets into the event. It does not
// mutate the event; on acceptance it returns the new attendee count.
func Admit(e Event, p agents.Profile, rng Randomizer) (bool, int) {
	switch e.Kind {
	case KindProcedural:
		return admitProcedural(e, p, rng)
	case KindExternal:
		// The host enforces its own demographics.
		return e.TicketPrice <= Budget(p.Wealth, rng), e.Attendees
	}
	return false, e.Attendees
}

func admitProcedural(e Event, p agents.Profile, rng Randomizer) (bool, int) {
	tpl := e.Template
	if tpl == nil {
		return false, e.Attendees
	}

	// Strictly greater: the attendee arriving at exactly capacity is still let in.
	if e.Attendees > tpl.Capacity {
		return false, e.Attendees
	}

	if cost, ok := tpl.TicketCost(); ok && cost > Budget(p.Wealth, rng) {
		return false, e.Attendees
	}

	a := &tpl.Attendees
	pass := func(percent int) bool { return rng.Percent() < percent }
	if !pass(a.ForAge(p.Age)) ||
		!pass(a.ForGender(p.Gender)) ||
		!pass(a.ForEducation(p.Education)) ||
		!pass(a.ForWealth(p.Wealth)) ||
		!pass(a.ForWellbeing(p.Wellbeing)) ||
		!pass(a.ForHappiness(p.Happiness)) {
		return false, e.Attendees
	}

	return true, e.Attendees + 1
}

// TryAdmit runs Admit and records the attendee on success.
func (e *Event) TryAdmit(p agents.Profile, rng Randomizer) bool {
	ok, n := Admit(*e, p, rng)
	if ok {
		e.Attendees = n
	}
	return ok
}

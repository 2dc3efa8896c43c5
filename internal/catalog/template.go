// Package catalog holds the immutable event template definitions loaded at startup.
package catalog

import (
	"errors"
	"fmt"
	"time"

	"github.com/talgya/city-events/internal/agents"
)

// Template defines one kind of event that can take place in a building class.
type Template struct {
	// Name is the event kind, unique together with BuildingClass.
	Name          string `yaml:"name"`
	BuildingClass string `yaml:"building_class"`
	DisplayName   string `yaml:"display_name,omitempty"`
	Description   string `yaml:"description,omitempty"`

	SupportsRandomEvents bool `yaml:"supports_random_events"`
	SupportsUserEvents   bool `yaml:"supports_user_events"`

	// Capacity is the maximum number of simultaneous attendees.
	Capacity      int     `yaml:"capacity"`
	DurationHours float64 `yaml:"duration_hours"`

	Attendees Attendees `yaml:"attendees"`

	// Costs is optional; without it the event is free to attend.
	Costs *Costs `yaml:"costs,omitempty"`
}

// Costs of running and attending an event.
type Costs struct {
	Creation         float64 `yaml:"creation"`
	PerHead          float64 `yaml:"per_head"`
	AdvertisingSigns float64 `yaml:"advertising_signs"`
	AdvertisingTV    float64 `yaml:"advertising_tv"`
	Entry            float64 `yaml:"entry"` // Ticket price
}

// Attendees holds admission percentages (0..100) per demographic bucket.
type Attendees struct {
	Age struct {
		Children    int `yaml:"children"`
		Teens       int `yaml:"teens"`
		YoungAdults int `yaml:"young_adults"`
		Adults      int `yaml:"adults"`
		Seniors     int `yaml:"seniors"`
	} `yaml:"age"`
	Gender struct {
		Males   int `yaml:"males"`
		Females int `yaml:"females"`
	} `yaml:"gender"`
	Education struct {
		Uneducated   int `yaml:"uneducated"`
		OneSchool    int `yaml:"one_school"`
		TwoSchools   int `yaml:"two_schools"`
		ThreeSchools int `yaml:"three_schools"`
	} `yaml:"education"`
	Wealth struct {
		Low    int `yaml:"low"`
		Medium int `yaml:"medium"`
		High   int `yaml:"high"`
	} `yaml:"wealth"`
	Wellbeing struct {
		VeryUnhappy int `yaml:"very_unhappy"`
		Unhappy     int `yaml:"unhappy"`
		Satisfied   int `yaml:"satisfied"`
		Happy       int `yaml:"happy"`
		VeryHappy   int `yaml:"very_happy"`
	} `yaml:"wellbeing"`
	Happiness struct {
		Bad       int `yaml:"bad"`
		Poor      int `yaml:"poor"`
		Good      int `yaml:"good"`
		Excellent int `yaml:"excellent"`
		Superb    int `yaml:"superb"`
	} `yaml:"happiness"`
}

// Duration returns the template's event length.
func (t *Template) Duration() time.Duration {
	return time.Duration(t.DurationHours * float64(time.Hour))
}

// TicketCost returns the entry price and whether one is configured.
func (t *Template) TicketCost() (float64, bool) {
	if t.Costs == nil {
		return 0, false
	}
	return t.Costs.Entry, true
}

// ForAge returns the admission percentage for an age group.
func (a *Attendees) ForAge(g agents.AgeGroup) int {
	switch g {
	case agents.AgeChild:
		return a.Age.Children
	case agents.AgeTeen:
		return a.Age.Teens
	case agents.AgeYoungAdult:
		return a.Age.YoungAdults
	case agents.AgeAdult:
		return a.Age.Adults
	case agents.AgeSenior:
		return a.Age.Seniors
	}
	return 0
}

// ForGender returns the admission percentage for a gender.
func (a *Attendees) ForGender(g agents.Gender) int {
	switch g {
	case agents.GenderMale:
		return a.Gender.Males
	case agents.GenderFemale:
		return a.Gender.Females
	}
	return 0
}

// ForEducation returns the admission percentage for an education level.
func (a *Attendees) ForEducation(e agents.Education) int {
	switch e {
	case agents.EducationUneducated:
		return a.Education.Uneducated
	case agents.EducationOneSchool:
		return a.Education.OneSchool
	case agents.EducationTwoSchools:
		return a.Education.TwoSchools
	case agents.EducationThreeSchools:
		return a.Education.ThreeSchools
	}
	return 0
}

// ForWealth returns the admission percentage for a wealth tier.
func (a *Attendees) ForWealth(w agents.Wealth) int {
	switch w {
	case agents.WealthLow:
		return a.Wealth.Low
	case agents.WealthMedium:
		return a.Wealth.Medium
	case agents.WealthHigh:
		return a.Wealth.High
	}
	return 0
}

// ForWellbeing returns the admission percentage for a wellbeing tier.
func (a *Attendees) ForWellbeing(w agents.Wellbeing) int {
	switch w {
	case agents.WellbeingVeryUnhappy:
		return a.Wellbeing.VeryUnhappy
	case agents.WellbeingUnhappy:
		return a.Wellbeing.Unhappy
	case agents.WellbeingSatisfied:
		return a.Wellbeing.Satisfied
	case agents.WellbeingHappy:
		return a.Wellbeing.Happy
	case agents.WellbeingVeryHappy:
		return a.Wellbeing.VeryHappy
	}
	return 0
}

// ForHappiness returns the admission percentage for a happiness tier.
func (a *Attendees) ForHappiness(h agents.Happiness) int {
	switch h {
	case agents.HappinessBad:
		return a.Happiness.Bad
	case agents.HappinessPoor:
		return a.Happiness.Poor
	case agents.HappinessGood:
		return a.Happiness.Good
	case agents.HappinessExcellent:
		return a.Happiness.Excellent
	case agents.HappinessSuperb:
		return a.Happiness.Superb
	}
	return 0
}

// Validate checks that a template can be instantiated.
func (t *Template) Validate() error {
	if t.Name == "" {
		return errors.New("template name is empty")
	}
	if t.BuildingClass == "" {
		return fmt.Errorf("template %q: building class is empty", t.Name)
	}
	if t.Capacity <= 0 {
		return fmt.Errorf("template %q: capacity must be positive, got %d", t.Name, t.Capacity)
	}
	if t.DurationHours <= 0 {
		return fmt.Errorf("template %q: duration must be positive, got %g", t.Name, t.DurationHours)
	}
	if t.Costs != nil && t.Costs.Entry < 0 {
		return fmt.Errorf("template %q: negative entry cost", t.Name)
	}
	for _, p := range t.Attendees.all() {
		if p < 0 || p > 100 {
			return fmt.Errorf("template %q: attendee percentage %d out of range", t.Name, p)
		}
	}
	return nil
}

func (a *Attendees) all() []int {
	return []int{
		a.Age.Children, a.Age.Teens, a.Age.YoungAdults, a.Age.Adults, a.Age.Seniors,
		a.Gender.Males, a.Gender.Females,
		a.Education.Uneducated, a.Education.OneSchool, a.Education.TwoSchools, a.Education.ThreeSchools,
		a.Wealth.Low, a.Wealth.Medium, a.Wealth.High,
		a.Wellbeing.VeryUnhappy, a.Wellbeing.Unhappy, a.Wellbeing.Satisfied, a.Wellbeing.Happy, a.Wellbeing.VeryHappy,
		a.Happiness.Bad, a.Happiness.Poor, a.Happiness.Good, a.Happiness.Excellent, a.Happiness.Superb,
	}
}

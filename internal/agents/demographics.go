// Package agents provides the citizen demographic model used by event admission,
// and a seeded spawner for the simulated population.
package agents

// CitizenID is a unique identifier for a citizen.
type CitizenID uint32

// AgeGroup buckets a citizen's age.
type AgeGroup uint8

const (
	AgeChild AgeGroup = iota
	AgeTeen
	AgeYoungAdult
	AgeAdult
	AgeSenior
)

// Gender of a citizen.
type Gender uint8

const (
	GenderMale Gender = iota
	GenderFemale
)

// Education is the number of schools a citizen has finished.
type Education uint8

const (
	EducationUneducated Education = iota
	EducationOneSchool
	EducationTwoSchools
	EducationThreeSchools
)

// Wealth tier of a citizen's household.
type Wealth uint8

const (
	WealthLow Wealth = iota
	WealthMedium
	WealthHigh
)

// Wellbeing tier.
type Wellbeing uint8

const (
	WellbeingVeryUnhappy Wellbeing = iota
	WellbeingUnhappy
	WellbeingSatisfied
	WellbeingHappy
	WellbeingVeryHappy
)

// Happiness tier.
type Happiness uint8

const (
	HappinessBad Happiness = iota
	HappinessPoor
	HappinessGood
	HappinessExcellent
	HappinessSuperb
)

// Profile is the demographic view of a prospective attendee.
type Profile struct {
	Age       AgeGroup  `json:"age"`
	Gender    Gender    `json:"gender"`
	Education Education `json:"education"`
	Wealth    Wealth    `json:"wealth"`
	Wellbeing Wellbeing `json:"wellbeing"`
	Happiness Happiness `json:"happiness"`
}

// Citizen is a resident of the simulated city.
type Citizen struct {
	ID      CitizenID `json:"id"`
	Name    string    `json:"name"`
	Age     uint16    `json:"age"` // Years
	Profile Profile   `json:"profile"`

	// Events attended so far.
	Attended int `json:"attended"`
}

// AgeGroupFor maps an age in years to its bucket.
func AgeGroupFor(age uint16) AgeGroup {
	switch {
	case age < 13:
		return AgeChild
	case age < 20:
		return AgeTeen
	case age < 30:
		return AgeYoungAdult
	case age < 65:
		return AgeAdult
	default:
		return AgeSenior
	}
}

func (a AgeGroup) String() string {
	switch a {
	case AgeChild:
		return "child"
	case AgeTeen:
		return "teen"
	case AgeYoungAdult:
		return "young_adult"
	case AgeAdult:
		return "adult"
	case AgeSenior:
		return "senior"
	default:
		return "unknown"
	}
}

func (w Wealth) String() string {
	switch w {
	case WealthLow:
		return "low"
	case WealthMedium:
		return "medium"
	case WealthHigh:
		return "high"
	default:
		return "unknown"
	}
}

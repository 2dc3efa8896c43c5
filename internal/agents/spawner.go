// Citizen spawning: creates the initial population with demographics.
package agents

import (
	"math/rand"
)

// Spawner creates citizens for the simulation.
type Spawner struct {
	rng    *rand.Rand
	nextID CitizenID
}

// NewSpawner creates a citizen spawner with the given seed.
func NewSpawner(seed int64) *Spawner {
	return &Spawner{
		rng:    rand.New(rand.NewSource(seed + 300)),
		nextID: 1,
	}
}

// SetNextID sets the next citizen ID to be issued.
func (s *Spawner) SetNextID(id CitizenID) {
	s.nextID = id
}

// SpawnPopulation creates a batch of citizens.
func (s *Spawner) SpawnPopulation(count int) []*Citizen {
	citizens := make([]*Citizen, 0, count)
	for i := 0; i < count; i++ {
		citizens = append(citizens, s.spawnOne())
	}
	return citizens
}

func (s *Spawner) spawnOne() *Citizen {
	id := s.nextID
	s.nextID++

	gender := GenderMale
	if s.rng.Float32() < 0.5 {
		gender = GenderFemale
	}

	age := s.weightedAge()
	group := AgeGroupFor(age)

	return &Citizen{
		ID:   id,
		Name: s.generateName(gender),
		Age:  age,
		Profile: Profile{
			Age:       group,
			Gender:    gender,
			Education: s.educationForAge(group),
			Wealth:    s.wealthTier(),
			Wellbeing: Wellbeing(s.tier(5)),
			Happiness: Happiness(s.tier(5)),
		},
	}
}

func (s *Spawner) weightedAge() uint16 {
	// Bell curve centered around 35, range 3–90.
	age := 35.0 + s.rng.NormFloat64()*18.0
	if age < 3 {
		age = 3
	}
	if age > 90 {
		age = 90
	}
	return uint16(age)
}

// educationForAge caps schooling by age: children can only have finished elementary.
func (s *Spawner) educationForAge(group AgeGroup) Education {
	maxLevel := EducationThreeSchools
	switch group {
	case AgeChild:
		maxLevel = EducationOneSchool
	case AgeTeen:
		maxLevel = EducationTwoSchools
	}
	e := Education(s.rng.Intn(int(maxLevel) + 1))
	return e
}

func (s *Spawner) wealthTier() Wealth {
	r := s.rng.Float32()
	switch {
	case r < 0.45:
		return WealthLow
	case r < 0.85:
		return WealthMedium
	default:
		return WealthHigh
	}
}

// tier draws a bucket in [0, n) skewed toward the middle.
func (s *Spawner) tier(n int) uint8 {
	v := (s.rng.Intn(n) + s.rng.Intn(n) + 1) / 2
	if v >= n {
		v = n - 1
	}
	return uint8(v)
}

var maleNames = []string{
	"Aaron", "Bruno", "Carlos", "Dmitri", "Elias", "Felix", "Gustav", "Hugo",
	"Ivan", "Jonas", "Karl", "Leon", "Marco", "Nils", "Oscar", "Pavel",
}

var femaleNames = []string{
	"Ada", "Bianca", "Clara", "Dana", "Elena", "Freya", "Greta", "Hanna",
	"Ines", "Julia", "Katya", "Lena", "Mira", "Nora", "Olga", "Paula",
}

var lastNames = []string{
	"Adler", "Becker", "Costa", "Dvorak", "Engel", "Fischer", "Garcia", "Horvath",
	"Ivanov", "Jensen", "Keller", "Lindqvist", "Moreau", "Novak", "Ortega", "Petrov",
}

func (s *Spawner) generateName(g Gender) string {
	var firsts []string
	if g == GenderMale {
		firsts = maleNames
	} else {
		firsts = femaleNames
	}
	first := firsts[s.rng.Intn(len(firsts))]
	last := lastNames[s.rng.Intn(len(lastNames))]
	return first + " " + last
}

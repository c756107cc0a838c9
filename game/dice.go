package game

import (
	"sort"

	"golang.org/x/exp/rand"
)

// Roller produces dice rolls and shuffles from one seeded source. Every game
// owns a single Roller seeded at creation, so a game is fully reproducible
// from its seed plus its action sequence.
type Roller struct {
	rng *rand.Rand
}

// NewRoller returns a roller seeded with seed.
func NewRoller(seed uint64) *Roller {
	return &Roller{rng: rand.New(rand.NewSource(seed))}
}

// Roll returns n uniform dice values in [1,6], sorted descending.
func (r *Roller) Roll(n int) []int {
	rolls := make([]int, n)
	for i := range rolls {
		rolls[i] = r.rng.Intn(6) + 1
	}
	sort.Sort(sort.Reverse(sort.IntSlice(rolls)))
	return rolls
}

// Intn returns a uniform value in [0,n).
func (r *Roller) Intn(n int) int {
	return r.rng.Intn(n)
}

// Shuffle shuffles n elements using swap.
func (r *Roller) Shuffle(n int, swap func(i, j int)) {
	r.rng.Shuffle(n, swap)
}

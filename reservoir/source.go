package reservoir

import (
	"math/rand"
	"sync"
)

// RandomSource supplies the uniform draws used to assign sample priorities.
// Implementations must return values in the open interval (0, 1). The
// reservoir takes this as an explicit dependency so sampling tests can be
// fully deterministic instead of depending on ambient generator state.
type RandomSource interface {
	Float64() float64
}

// NewRandomSource returns a mutex-guarded source seeded from seed. Each
// reservoir gets its own so concurrent reservoirs don't contend on one
// generator.
func NewRandomSource(seed int64) RandomSource {
	return &lockedSource{rnd: rand.New(rand.NewSource(seed))}
}

type lockedSource struct {
	mut sync.Mutex
	rnd *rand.Rand
}

func (s *lockedSource) Float64() float64 {
	s.mut.Lock()
	defer s.mut.Unlock()
	// rand.Float64 is in [0,1); zero would make a priority of +Inf
	for {
		if v := s.rnd.Float64(); v > 0 {
			return v
		}
	}
}

package sampling

import (
	"math/rand"
)

// Choice returns an element of xs chosen uniformly at random.
// It panics if xs is empty.
func Choice[T any](rng *rand.Rand, xs []T) T {
	if len(xs) == 0 {
		panic("sampling: choice from empty slice")
	}

	return xs[rng.Intn(len(xs))]
}

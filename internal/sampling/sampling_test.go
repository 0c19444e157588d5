package sampling

import (
	"math/rand"
	"testing"
)

func TestChoice_Uniform(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	xs := []int{3, 5, 7}
	counts := make(map[int]int)
	n := 30000
	for i := 0; i < n; i++ {
		counts[Choice(rng, xs)]++
	}

	for _, x := range xs {
		if c := counts[x]; c < 9000 || c > 11000 {
			t.Errorf("expected ~%d draws of %d, got %d", n/len(xs), x, c)
		}
	}
}

func TestChoice_Empty(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic")
		}
	}()

	Choice(rand.New(rand.NewSource(1)), []int(nil))
}

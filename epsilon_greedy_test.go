package qlearn

import (
	"math/rand"
	"testing"

	"github.com/timpalpant/go-qlearn/tictactoe"
)

func TestEpsilonGreedy_Decay(t *testing.T) {
	p := NewEpsilonGreedy(1.0, 0.9, 0.1, rand.New(rand.NewSource(1)))
	prev := p.Rate()
	for i := 0; i < 100; i++ {
		p.Decay()
		if p.Rate() > prev {
			t.Fatalf("exploration rate increased from %v to %v", prev, p.Rate())
		}

		if p.Rate() < 0.1 {
			t.Fatalf("exploration rate %v fell below floor", p.Rate())
		}
		prev = p.Rate()
	}

	if p.Rate() != 0.1 {
		t.Errorf("expected rate to reach the floor, got %v", p.Rate())
	}
}

func TestEpsilonGreedy_ExploreUniform(t *testing.T) {
	p := NewEpsilonGreedy(1.0, 1.0, 1.0, rand.New(rand.NewSource(1)))
	values := [tictactoe.NumActions]float64{10, 0, 0, 0, 0, 0, 0, 0, 0}
	var counts [tictactoe.NumActions]int
	n := 90000
	for i := 0; i < n; i++ {
		counts[p.Choose(values)]++
	}

	for a, c := range counts {
		if c < 9000 || c > 11000 {
			t.Errorf("expected ~%d choices of action %d, got %d", n/tictactoe.NumActions, a, c)
		}
	}
}

func TestEpsilonGreedy_Greedy(t *testing.T) {
	p := NewEpsilonGreedy(0, 1.0, 0, rand.New(rand.NewSource(1)))
	values := [tictactoe.NumActions]float64{0, -1, 0.5, 0, 0.3, 0, 0, 0, -10}
	for i := 0; i < 1000; i++ {
		if a := p.Choose(values); a != 2 {
			t.Fatalf("expected maximal action 2, got %d", a)
		}
	}
}

func TestEpsilonGreedy_Ties(t *testing.T) {
	p := NewEpsilonGreedy(0, 1.0, 0, rand.New(rand.NewSource(1)))
	values := [tictactoe.NumActions]float64{0, 1, 0, 0, 1, 0, 0, 1, 0}
	counts := make(map[tictactoe.Action]int)
	n := 30000
	for i := 0; i < n; i++ {
		counts[p.Choose(values)]++
	}

	if len(counts) != 3 {
		t.Fatalf("expected only maximal actions 1, 4, 7, got %v", counts)
	}

	for _, a := range []tictactoe.Action{1, 4, 7} {
		if c := counts[a]; c < 9000 || c > 11000 {
			t.Errorf("expected ~%d choices of action %d, got %d", n/3, a, c)
		}
	}
}

func TestEpsilonGreedy_ExploitExplore(t *testing.T) {
	p := NewEpsilonGreedy(0.5, 0.99, 0.1, rand.New(rand.NewSource(1)))
	p.Exploit()
	if !p.Exploiting() || p.Rate() != 0 {
		t.Fatalf("expected rate 0 while exploiting, got %v", p.Rate())
	}

	p.Decay()
	if p.Rate() != 0 {
		t.Errorf("expected decay to keep rate at 0 while exploiting, got %v", p.Rate())
	}

	// Exploiting twice must not lose the saved schedule.
	p.Exploit()
	p.Explore()
	if p.Exploiting() {
		t.Error("expected Explore to end exploitation")
	}

	if p.Rate() != 0.5 {
		t.Errorf("expected rate to be restored to 0.5, got %v", p.Rate())
	}

	p.Decay()
	if p.Rate() != 0.5*0.99 {
		t.Errorf("expected decay to be restored, got rate %v", p.Rate())
	}
}

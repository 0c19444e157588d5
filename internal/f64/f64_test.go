package f64

import (
	"testing"
)

func TestMax(t *testing.T) {
	if m := Max([]float64{-3, 2, 1.5, 2}); m != 2 {
		t.Errorf("expected %v, got %v", 2.0, m)
	}
}

func TestArgMaxes(t *testing.T) {
	got := ArgMaxes(nil, []float64{0, 1, -1, 1, 0.5})
	if len(got) != 2 || got[0] != 1 || got[1] != 3 {
		t.Errorf("expected [1 3], got %v", got)
	}
}

func TestArgMaxesOf(t *testing.T) {
	x := []float64{9, 1, -1, 1, 0.5}
	got := ArgMaxesOf(nil, x, []int{1, 2, 3})
	if len(got) != 2 || got[0] != 1 || got[1] != 3 {
		t.Errorf("expected [1 3], got %v", got)
	}

	if got := ArgMaxesOf(nil, x, nil); len(got) != 0 {
		t.Errorf("expected no indices, got %v", got)
	}
}

package fairness

import (
	"math"
	"testing"
)

func TestJainIndex_EdgeCases(t *testing.T) {
	if got := JainIndex(nil); got != 1.0 {
		t.Fatalf("empty set: expected 1.0, got %v", got)
	}
	if got := JainIndex([]float64{0, 0, 0}); got != 1.0 {
		t.Fatalf("all zero: expected 1.0, got %v", got)
	}
}

func TestJainIndex_Constant(t *testing.T) {
	for _, x := range []float64{0.1, 1, 3.7, 1e6} {
		vals := []float64{x, x, x, x, x}
		if got := JainIndex(vals); math.Abs(got-1.0) > 1e-12 {
			t.Errorf("constant %v: expected 1.0, got %v", x, got)
		}
	}
}

func TestJainIndex_Bounds(t *testing.T) {
	sets := [][]float64{
		{1, 0, 0, 0},
		{5, 1},
		{0.2, 0.4, 0.9, 0.1},
		{-3, 2, 2},
	}
	for _, s := range sets {
		got := JainIndex(s)
		if got < 0 || got > 1 {
			t.Errorf("JainIndex(%v) = %v out of [0,1]", s, got)
		}
	}
	// one active node out of four: 1/n
	if got := JainIndex([]float64{1, 0, 0, 0}); math.Abs(got-0.25) > 1e-12 {
		t.Fatalf("expected 0.25, got %v", got)
	}
}

func TestCHUsagePenalty(t *testing.T) {
	usage := map[int]int{1: 0, 2: 10, 3: 55, 4: 100}
	cases := []struct {
		id   int
		want float64
	}{
		{1, 0},
		{2, 0},
		{3, 0.5},
		{4, 1},
		{99, 0},
	}
	for _, c := range cases {
		got := CHUsagePenalty(usage, c.id, 100, DefaultTargetRatio)
		if math.Abs(got-c.want) > 1e-12 {
			t.Errorf("penalty for %d: got %v, want %v", c.id, got, c.want)
		}
	}
	if got := CHUsagePenalty(usage, 4, 0, DefaultTargetRatio); got != 0 {
		t.Fatalf("expected 0 with no rounds, got %v", got)
	}
}

func TestCHUsagePenalty_Monotonic(t *testing.T) {
	prev := -1.0
	for n := 0; n <= 60; n++ {
		got := CHUsagePenalty(map[int]int{7: n}, 7, 50, 0.2)
		if got < prev {
			t.Fatalf("penalty decreased at usage %d: %v < %v", n, got, prev)
		}
		if got < 0 || got > 1 {
			t.Fatalf("penalty %v out of range", got)
		}
		prev = got
	}
}

package systems

import (
	"math/rand"
	"slices"
	"testing"
)

func TestTargetGridMatchesBruteForce(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	grid := walledGrid(t)
	w, h := float32(grid.Cols())*grid.CellSize(), float32(grid.Rows())*grid.CellSize()
	tg := NewTargetGrid(w, h, 30)

	for trial := 0; trial < 50; trial++ {
		candidates := make([]TargetCandidate, 1+rng.Intn(20))
		for i := range candidates {
			candidates[i] = TargetCandidate{X: rng.Float32() * w, Y: rng.Float32() * h, Index: i}
		}
		tg.Rebuild(candidates)

		tx, ty := rng.Float32()*w, rng.Float32()*h
		rangeR := 10 + rng.Float32()*80
		want := NearestTarget(grid, tx, ty, rangeR, candidates)
		if got := tg.Nearest(grid, tx, ty, rangeR); got != want {
			t.Fatalf("trial %d: grid nearest = %d, brute force = %d", trial, got, want)
		}
	}
}

func TestTargetGridSkipsDown(t *testing.T) {
	tg := NewTargetGrid(200, 200, 20)
	candidates := []TargetCandidate{
		{X: 105, Y: 100, Index: 0},
		{X: 120, Y: 100, Index: 1},
	}
	tg.Rebuild(candidates)

	if got := tg.Nearest(nil, 100, 100, 50); got != 0 {
		t.Fatalf("nearest = %d, want 0", got)
	}
	candidates[0].Down = true
	if got := tg.Nearest(nil, 100, 100, 50); got != 1 {
		t.Errorf("nearest after kill = %d, want 1", got)
	}
	if got := NearestTarget(nil, 100, 100, 50, candidates); got != 1 {
		t.Errorf("brute force after kill = %d, want 1", got)
	}
}

func TestTargetGridQueryRadius(t *testing.T) {
	tg := NewTargetGrid(100, 100, 10)
	candidates := []TargetCandidate{
		{X: 50, Y: 50},
		{X: 55, Y: 50},
		{X: 90, Y: 90},
		{X: -5, Y: 50}, // Off canvas, clamped into the edge cell
	}
	tg.Rebuild(candidates)

	got := tg.QueryRadiusInto(nil, 50, 50, 10)
	slices.Sort(got)
	if !slices.Equal(got, []int{0, 1}) {
		t.Errorf("query = %v, want [0 1]", got)
	}
	if got := tg.QueryRadiusInto(nil, 0, 50, 6); !slices.Equal(got, []int{3}) {
		t.Errorf("edge query = %v, want [3]", got)
	}
}

func TestTargetGridQueryCap(t *testing.T) {
	tg := NewTargetGrid(100, 100, 10)
	candidates := make([]TargetCandidate, MaxQueryResults+10)
	for i := range candidates {
		candidates[i] = TargetCandidate{X: 50, Y: 50, Index: i}
	}
	tg.Rebuild(candidates)
	if got := tg.QueryRadiusInto(nil, 50, 50, 5); len(got) != MaxQueryResults {
		t.Errorf("query returned %d, want cap %d", len(got), MaxQueryResults)
	}
}

package evolution

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/pthm-cable/outpost/config"
)

func testTable() TraitTable {
	return NewTraitTable(config.Defaults().Traits)
}

func TestTraitTableFromConfig(t *testing.T) {
	tt := testTable()
	if tt[TraitSpeed].Min != 0.1 || tt[TraitSpeed].Max != 4 {
		t.Errorf("speed range = [%v, %v]", tt[TraitSpeed].Min, tt[TraitSpeed].Max)
	}
	if !tt[TraitSpawnSide].Discrete || tt[TraitHealth].Discrete {
		t.Error("only spawn_side should be discrete")
	}
	if got := tt.Clamp(TraitSpawnSide, 2.6); got != 3 {
		t.Errorf("Clamp(spawn_side, 2.6) = %v, want 3", got)
	}
	if got := tt.Clamp(TraitArmor, -4); got != 0 {
		t.Errorf("Clamp(armor, -4) = %v, want 0", got)
	}
}

func TestMutateRespectsBounds(t *testing.T) {
	tt := testTable()
	ids := NewIDGenerator()
	rng := rand.New(rand.NewSource(7))

	g := RandomGenome(&tt, ids, rng)
	for i := 0; i < 1000; i++ {
		g = Mutate(g, 1, 50, &tt, ids, rng)
		for tr := Trait(0); tr < NumTraits; tr++ {
			v := g.Traits[tr]
			if v < tt[tr].Min || v > tt[tr].Max {
				t.Fatalf("iteration %d: %s = %v out of range", i, tr, v)
			}
		}
		if s := g.Traits[TraitSpawnSide]; s != math.Round(s) {
			t.Fatalf("spawn_side = %v not integral", s)
		}
	}
}

func TestMutateZeroRateCopiesTraits(t *testing.T) {
	tt := testTable()
	ids := NewIDGenerator()
	rng := rand.New(rand.NewSource(1))

	parent := RandomGenome(&tt, ids, rng)
	child := Mutate(parent, 0, 1, &tt, ids, rng)
	if child.Traits != parent.Traits {
		t.Errorf("traits changed at rate 0")
	}
	if child.ID == parent.ID {
		t.Error("child reused parent ID")
	}
}

func TestCrossoverModes(t *testing.T) {
	tt := testTable()
	ids := NewIDGenerator()
	rng := rand.New(rand.NewSource(3))

	a := RandomGenome(&tt, ids, rng)
	b := RandomGenome(&tt, ids, rng)

	t.Run("uniform", func(t *testing.T) {
		for i := 0; i < 50; i++ {
			c := Crossover(a, b, CrossoverUniform, &tt, ids, rng)
			for tr := Trait(0); tr < NumTraits; tr++ {
				if c.Traits[tr] != a.Traits[tr] && c.Traits[tr] != b.Traits[tr] {
					t.Fatalf("%s = %v from neither parent", tr, c.Traits[tr])
				}
			}
		}
	})

	t.Run("blend", func(t *testing.T) {
		c := Crossover(a, b, CrossoverBlend, &tt, ids, rng)
		for tr := Trait(0); tr < NumTraits; tr++ {
			if tt[tr].Discrete {
				if c.Traits[tr] != a.Traits[tr] && c.Traits[tr] != b.Traits[tr] {
					t.Errorf("discrete %s = %v from neither parent", tr, c.Traits[tr])
				}
				continue
			}
			want := (a.Traits[tr] + b.Traits[tr]) / 2
			if math.Abs(c.Traits[tr]-want) > 1e-9 {
				t.Errorf("%s = %v, want %v", tr, c.Traits[tr], want)
			}
		}
	})
}

func TestParseModes(t *testing.T) {
	if m, err := ParseCrossoverMode("blend"); err != nil || m != CrossoverBlend {
		t.Errorf("ParseCrossoverMode(blend) = %v, %v", m, err)
	}
	if p, err := ParsePolicy("mean_drift"); err != nil || p != PolicyMeanDrift {
		t.Errorf("ParsePolicy(mean_drift) = %v, %v", p, err)
	}
	if _, err := ParsePolicy("tournament"); err == nil {
		t.Error("expected error for unknown policy")
	}
	for s := SideTop; s < NumSides; s++ {
		if got, err := ParseSide(s.String()); err != nil || got != s {
			t.Errorf("ParseSide(%q) = %v, %v", s, got, err)
		}
	}
	if _, err := ParseSide("middle"); !errors.Is(err, ErrUnknownSide) {
		t.Errorf("ParseSide(middle) error = %v, want ErrUnknownSide", err)
	}
	if c, err := ParseCause("reached_goal"); err != nil || c != CauseReachedGoal {
		t.Errorf("ParseCause(reached_goal) = %v, %v", c, err)
	}
	if _, err := ParseCause("eaten"); !errors.Is(err, ErrUnknownCause) {
		t.Errorf("ParseCause(eaten) error = %v, want ErrUnknownCause", err)
	}
}

func TestDecodeSpawnSide(t *testing.T) {
	tests := []struct {
		raw  float64
		want Side
	}{
		{0, SideTop},
		{1, SideRight},
		{1.6, SideBottom},
		{3, SideLeft},
		{7, SideTop},
	}
	for _, tt := range tests {
		var g Genome
		g.Traits[TraitSpawnSide] = tt.raw
		if got := g.Decode().SpawnSide; got != tt.want {
			t.Errorf("Decode(%v).SpawnSide = %v, want %v", tt.raw, got, tt.want)
		}
	}
}

func TestFitnessWeightsScore(t *testing.T) {
	w := WeightsFromConfig(config.Defaults().Fitness)

	tests := []struct {
		name string
		o    Outcome
		want float64
	}{
		{"killed early", Outcome{Distance: 100, TimeAlive: 1, Cause: CauseKilled}, 106},
		{"territory", Outcome{Distance: 10, Territory: 0.05}, 15},
		{"reached goal", Outcome{Distance: 400, TimeAlive: 10, ReachedGoal: true, Cause: CauseReachedGoal}, 1460},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := w.Score(tt.o); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Score = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestScoreIndependentOfTickRate(t *testing.T) {
	w := WeightsFromConfig(config.Defaults().Fitness)

	// Three seconds alive at different tick rates
	want := w.Score(Outcome{Distance: 50, TimeAlive: 3})
	for _, tc := range []struct {
		ticks int
		dt    float64
	}{
		{180, 1.0 / 60},
		{90, 1.0 / 30},
		{360, 1.0 / 120},
	} {
		o := Outcome{Distance: 50, TimeAlive: SecondsAlive(tc.ticks, tc.dt)}
		if got := w.Score(o); math.Abs(got-want) > 1e-9 {
			t.Errorf("%d ticks at dt %v: Score = %v, want %v", tc.ticks, tc.dt, got, want)
		}
	}
}

func TestLedger(t *testing.T) {
	l := NewLedger()
	l.Spawned(1)
	l.Spawned(1)
	l.Record(1, 10)
	l.Record(1, 30)
	l.Record(2, 5)

	e, ok := l.Entry(1)
	if !ok {
		t.Fatal("missing entry 1")
	}
	if e.Spawns != 2 || e.Outcomes != 2 || e.BestFitness != 30 || e.MeanFitness() != 20 {
		t.Errorf("entry = %+v", e)
	}

	l.Retain([]Genome{{ID: 2}})
	if _, ok := l.Entry(1); ok {
		t.Error("entry 1 should be dropped")
	}
	if l.Len() != 1 {
		t.Errorf("len = %d, want 1", l.Len())
	}
}

func TestComputeFitnessStats(t *testing.T) {
	s := ComputeFitnessStats([]float64{4, 1, 3, 2})
	if s.Count != 4 || s.Mean != 2.5 || s.Median != 2 || s.Max != 4 || s.Min != 1 {
		t.Errorf("stats = %+v", s)
	}
	if math.Abs(s.StdDev-math.Sqrt(5.0/3.0)) > 1e-9 {
		t.Errorf("std = %v", s.StdDev)
	}

	one := ComputeFitnessStats([]float64{7})
	if one.StdDev != 0 || one.Median != 7 {
		t.Errorf("single value stats = %+v", one)
	}
	if empty := ComputeFitnessStats(nil); empty.Count != 0 {
		t.Errorf("empty stats = %+v", empty)
	}
}

func TestTraitMeans(t *testing.T) {
	var a, b Genome
	a.Traits[TraitHealth], b.Traits[TraitHealth] = 40, 60
	mean, std := TraitMeans([]Genome{a, b})
	if mean[TraitHealth] != 50 {
		t.Errorf("mean health = %v, want 50", mean[TraitHealth])
	}
	if math.Abs(std[TraitHealth]-math.Sqrt(200)) > 1e-9 {
		t.Errorf("std health = %v", std[TraitHealth])
	}
}

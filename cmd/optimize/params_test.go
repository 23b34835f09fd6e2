package main

import (
	"math"
	"testing"

	"github.com/pthm-cable/outpost/config"
	"github.com/pthm-cable/outpost/telemetry"
)

func TestParamVectorRoundTrip(t *testing.T) {
	pv := NewParamVector()
	cfg := config.Defaults()

	got := pv.ExtractFromConfig(cfg)
	if len(got) != pv.Dim() {
		t.Fatalf("extracted %d values, want %d", len(got), pv.Dim())
	}
	for i, spec := range pv.Specs {
		if got[i] != spec.Default {
			t.Errorf("%s: config default %v, spec default %v", spec.Name, got[i], spec.Default)
		}
	}

	want := make([]float64, pv.Dim())
	for i, spec := range pv.Specs {
		want[i] = spec.Min + 0.25*(spec.Max-spec.Min)
	}
	pv.ApplyToConfig(cfg, want)
	back := pv.ExtractFromConfig(cfg)
	for i, spec := range pv.Specs {
		if math.Abs(back[i]-want[i]) > 1e-12 {
			t.Errorf("%s: applied %v, extracted %v", spec.Name, want[i], back[i])
		}
	}
	if err := cfg.Refresh(); err != nil {
		t.Errorf("tuned config invalid: %v", err)
	}
}

func TestParamVectorClampAndNormalize(t *testing.T) {
	pv := NewParamVector()

	low := make([]float64, pv.Dim())
	high := make([]float64, pv.Dim())
	for i := range low {
		low[i] = math.Inf(-1)
		high[i] = math.Inf(1)
	}
	lo, hi := pv.Clamp(low), pv.Clamp(high)
	for i, spec := range pv.Specs {
		if lo[i] != spec.Min || hi[i] != spec.Max {
			t.Errorf("%s: clamp gave [%v, %v], want [%v, %v]", spec.Name, lo[i], hi[i], spec.Min, spec.Max)
		}
	}

	def := pv.DefaultVector()
	back := pv.Denormalize(pv.Normalize(def))
	for i, spec := range pv.Specs {
		if math.Abs(back[i]-def[i]) > 1e-9 {
			t.Errorf("%s: normalize round trip %v -> %v", spec.Name, def[i], back[i])
		}
	}
}

func TestRunScoreLoss(t *testing.T) {
	balanced := runScore{Survived: 1, LivesLeft: targetLivesLeft, KillFrac: targetKillFrac}
	if l := balanced.loss(); l != 0 {
		t.Errorf("balanced loss = %v, want 0", l)
	}

	tests := []struct {
		name  string
		score runScore
	}{
		{"base fell early", runScore{Survived: 0.2, LivesLeft: 0, KillFrac: 0.5}},
		{"defense too strong", runScore{Survived: 1, LivesLeft: 1, KillFrac: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if l := tt.score.loss(); l <= 0 {
				t.Errorf("loss = %v, want > 0", l)
			}
		})
	}
}

func TestScoreCountsOnlySurvivedWaves(t *testing.T) {
	fe := &FitnessEvaluator{waves: 10}

	lost := fe.score(&runResult{waves: make([]telemetry.WaveStats, 4)})
	if lost.Survived != 0.3 {
		t.Errorf("lost on wave 4: survived = %v, want 0.3", lost.Survived)
	}

	won := fe.score(&runResult{won: true, livesLeft: 0.5})
	if won.Survived != 1 || won.LivesLeft != 0.5 {
		t.Errorf("won: %+v", won)
	}
}

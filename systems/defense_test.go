package systems

import (
	"math/rand"
	"testing"

	"github.com/pthm-cable/outpost/components"
	"github.com/pthm-cable/outpost/config"
)

func TestTurretTableFromConfig(t *testing.T) {
	table := NewTurretTable(config.Defaults().Defense)
	if table[components.TurretLaser].Count != 3 || table[components.TurretQuantum].Damage != 60 {
		t.Errorf("table = %+v", table)
	}
}

func TestApplyDamage(t *testing.T) {
	tests := []struct {
		name     string
		health   float32
		armor    float32
		damage   float32
		want     float32
		wantKill bool
	}{
		{"unarmored", 100, 0, 25, 75, false},
		{"armored", 100, 10, 25, 85, false},
		{"armor exceeds damage", 100, 30, 25, 99, false},
		{"lethal", 20, 0, 25, -5, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := components.Vitals{Health: tt.health, MaxHealth: tt.health, Armor: tt.armor}
			killed := ApplyDamage(&v, tt.damage)
			if v.Health != tt.want || killed != tt.wantKill {
				t.Errorf("health = %v killed = %v, want %v %v", v.Health, killed, tt.want, tt.wantKill)
			}
		})
	}
}

func TestNearestTarget(t *testing.T) {
	grid := walledGrid(t) // Rock column at x 40..60, rows 0..3

	candidates := []TargetCandidate{
		{X: 10, Y: 50, Index: 0}, // 40 away
		{X: 30, Y: 70, Index: 1}, // ~28 away
		{X: 90, Y: 10, Index: 2}, // Behind the wall
	}

	if got := NearestTarget(grid, 10, 90, 60, candidates); got != 1 {
		t.Errorf("nearest = %d, want 1", got)
	}
	if got := NearestTarget(grid, 10, 90, 20, candidates); got != -1 {
		t.Errorf("out of range nearest = %d, want -1", got)
	}
	if got := NearestTarget(grid, 10, 10, 200, candidates[2:]); got != -1 {
		t.Errorf("target behind wall = %d, want -1", got)
	}
	if got := NearestTarget(nil, 10, 10, 200, candidates[2:]); got != 0 {
		t.Errorf("without terrain = %d, want 0", got)
	}
}

func TestTickCooldown(t *testing.T) {
	tur := components.Turret{Cooldown: 0.2}
	if TickCooldown(&tur, 0.1) {
		t.Error("should not be ready after 0.1s")
	}
	if !TickCooldown(&tur, 0.1) {
		t.Error("should be ready after 0.2s")
	}
}

func TestPlaceTurrets(t *testing.T) {
	grid := openGrid(t, 40, 30, Cell{Col: 21, Row: 15})
	table := NewTurretTable(config.Defaults().Defense)

	placements := PlaceTurrets(grid, table, 200, 150, 60, rand.New(rand.NewSource(1)))
	if len(placements) != 6 {
		t.Fatalf("placements = %d, want 6", len(placements))
	}

	seen := make(map[components.Position]bool)
	counts := make(map[components.TurretKind]int)
	for _, p := range placements {
		if seen[p.Pos] {
			t.Errorf("duplicate turret cell %v", p.Pos)
		}
		seen[p.Pos] = true
		counts[p.Kind]++
		if grid.IsSolid(p.Pos.X, p.Pos.Y) {
			t.Errorf("turret on rock at %v", p.Pos)
		}
		if !WithinRadius(p.Pos.X, p.Pos.Y, 200, 150, 60) {
			t.Errorf("turret %v outside ring", p.Pos)
		}
	}
	if counts[components.TurretLaser] != 3 || counts[components.TurretPlasma] != 2 || counts[components.TurretQuantum] != 1 {
		t.Errorf("counts = %v", counts)
	}
}

func TestTerritoryCaptureAndDecay(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	tm := NewTerritoryMap(10, 10)

	if !tm.TryCapture(3, 3, 1, rng) {
		t.Fatal("capture with chance 1 failed")
	}
	if tm.TryCapture(3, 3, 1, rng) {
		t.Error("recapturing an owned cell should report false")
	}
	if tm.TryCapture(-1, 3, 1, rng) || tm.TryCapture(4, 4, 0, rng) {
		t.Error("out of bounds or zero chance captured")
	}
	if tm.CapturedCount() != 1 || tm.Fraction() != 0.01 {
		t.Errorf("count = %d fraction = %v", tm.CapturedCount(), tm.Fraction())
	}

	if got := tm.Decay(4, 5, 1, rng); got != 0 {
		t.Errorf("decayed %d before interval", got)
	}
	if got := tm.Decay(1, 5, 1, rng); got != 1 {
		t.Errorf("decayed %d, want 1", got)
	}
	if tm.Captured(3, 3) || tm.CapturedCount() != 0 {
		t.Error("cell should be neutral after decay")
	}
}

func TestOverrun(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	tm := NewTerritoryMap(10, 10)
	tm.TryCapture(4, 4, 1, rng)
	tm.TryCapture(5, 4, 1, rng)

	if Overrun(tm, 5, 5, 0.3) {
		t.Error("2/9 should not overrun at 0.3")
	}
	tm.TryCapture(6, 4, 1, rng)
	if !Overrun(tm, 5, 5, 0.3) {
		t.Error("3/9 should overrun at 0.3")
	}
	if Overrun(tm, 5, 5, 0) {
		t.Error("zero fraction disables overrun")
	}
	// Corner cells only count in-bounds neighbours.
	tm.TryCapture(0, 0, 1, rng)
	if got := tm.Share3x3(0, 0); got != 0.25 {
		t.Errorf("corner share = %v, want 0.25", got)
	}
}

func TestStepAlienFollowsRoute(t *testing.T) {
	pos := components.Position{X: 0, Y: 0}
	mot := components.Motion{Speed: 60}
	route := components.Route{Waypoints: []components.Position{{X: 30, Y: 0}, {X: 30, Y: 40}}}

	total := float32(0)
	for i := 0; i < 120; i++ {
		total += StepAlien(&pos, &mot, &route, 0.01, 1.0/60)
	}

	if pos.X < 29.99 || pos.X > 30.01 || pos.Y < 39.99 || pos.Y > 40.01 {
		t.Errorf("final position = %+v, want (30,40)", pos)
	}
	if total < 69.9 || total > 70.1 {
		t.Errorf("distance = %v, want 70", total)
	}
}

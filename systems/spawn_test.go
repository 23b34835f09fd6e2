package systems

import (
	"math/rand"
	"testing"

	"github.com/pthm-cable/outpost/config"
	"github.com/pthm-cable/outpost/evolution"
)

func TestSpawnPlacerUsesGenomeSide(t *testing.T) {
	grid := openGrid(t, 40, 30)
	placer := NewSpawnPlacer(grid, config.Defaults().Alien, rand.New(rand.NewSource(1)))

	tests := []struct {
		side  evolution.Side
		check func(x, y float32) bool
	}{
		{evolution.SideTop, func(x, y float32) bool { return y == 20 }},
		{evolution.SideRight, func(x, y float32) bool { return x == 380 }},
		{evolution.SideBottom, func(x, y float32) bool { return y == 280 }},
		{evolution.SideLeft, func(x, y float32) bool { return x == 20 }},
	}
	for _, tt := range tests {
		t.Run(tt.side.String(), func(t *testing.T) {
			for i := 0; i < 20; i++ {
				x, y, ok := placer.Place(tt.side)
				if !ok {
					t.Fatal("open grid should always have a clear spawn")
				}
				if !tt.check(x, y) {
					t.Fatalf("spawn (%v,%v) not on %v edge", x, y, tt.side)
				}
			}
		})
	}
}

func TestSpawnPlacerAvoidsRock(t *testing.T) {
	// Rock everywhere along the top rows except a 3-cell gap.
	var rocks []Cell
	for col := 0; col < 40; col++ {
		if col >= 20 && col <= 22 {
			continue
		}
		rocks = append(rocks, Cell{Col: col, Row: 0}, Cell{Col: col, Row: 1}, Cell{Col: col, Row: 2}, Cell{Col: col, Row: 3})
	}
	grid := openGrid(t, 40, 30, rocks...)
	cfg := config.Defaults().Alien
	cfg.SpawnAttempts = 1000
	placer := NewSpawnPlacer(grid, cfg, rand.New(rand.NewSource(2)))

	for i := 0; i < 20; i++ {
		x, y, ok := placer.Place(evolution.SideTop)
		if !ok {
			t.Fatal("expected the gap to be found")
		}
		if !grid.AreaClear(x, y, spawnClearance, spawnProbeStep) {
			t.Fatalf("spawn (%v,%v) overlaps rock", x, y)
		}
	}
}

func TestSpawnPlacerFallsBackToCentre(t *testing.T) {
	var rocks []Cell
	for col := 0; col < 40; col++ {
		for row := 0; row < 4; row++ {
			rocks = append(rocks, Cell{Col: col, Row: row})
		}
	}
	rocks = append(rocks, Cell{Col: 20, Row: 15})
	grid := openGrid(t, 40, 30, rocks...)
	placer := NewSpawnPlacer(grid, config.Defaults().Alien, rand.New(rand.NewSource(3)))

	x, y, ok := placer.Place(evolution.SideTop)
	if ok {
		t.Fatal("expected fallback with a blocked edge")
	}
	if grid.IsSolid(x, y) {
		t.Errorf("fallback (%v,%v) is solid", x, y)
	}
	col, row := grid.CellAt(x, y)
	if abs(col-20) > 1 || abs(row-15) > 1 {
		t.Errorf("fallback cell (%d,%d) not next to the centre", col, row)
	}
}

func TestGuidePointsFollowGenome(t *testing.T) {
	p := evolution.Phenotype{PathVariation: 1.2, PathAmplitude: 100}
	pts := GuidePoints(0, 150, 200, 150, p, 5, 400, 300, 20)
	if len(pts) != 4 {
		t.Fatalf("points = %d, want 4", len(pts))
	}
	for i, pt := range pts {
		if pt.X < 20 || pt.X > 380 || pt.Y < 20 || pt.Y > 280 {
			t.Errorf("point %d (%v,%v) outside inset bounds", i, pt.X, pt.Y)
		}
	}

	flat := GuidePoints(0, 150, 200, 150, evolution.Phenotype{}, 5, 400, 300, 20)
	for i, pt := range flat {
		if pt.Y != 150 {
			t.Errorf("zero amplitude point %d has y=%v", i, pt.Y)
		}
	}
}

func TestPlanRouteEndsAtBaseAndAvoidsRock(t *testing.T) {
	var rocks []Cell
	for row := 5; row < 25; row++ {
		rocks = append(rocks, Cell{Col: 10, Row: row})
	}
	grid := openGrid(t, 40, 30, rocks...)
	planner := NewAStarPlanner(grid)

	p := evolution.Phenotype{PathVariation: 2, PathAmplitude: 60}
	route := planner.PlanRoute(20, 150, 200, 150, p, 5)
	if len(route) < 2 {
		t.Fatalf("route too short: %v", route)
	}
	last := route[len(route)-1]
	if last.X != 200 || last.Y != 150 {
		t.Errorf("route ends at %v, want base", last)
	}
	for i, wp := range route {
		if grid.IsSolid(wp.X, wp.Y) {
			t.Errorf("waypoint %d (%v,%v) on rock", i, wp.X, wp.Y)
		}
	}
}

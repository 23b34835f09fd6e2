package systems

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/pthm-cable/outpost/config"
)

func defaultRuleset(t *testing.T) *Ruleset {
	t.Helper()
	rules, err := NewRuleset(config.Defaults().Terrain)
	if err != nil {
		t.Fatalf("NewRuleset: %v", err)
	}
	return rules
}

// restrictiveRuleset forbids rock next to crystal.
func restrictiveRuleset(t *testing.T) *Ruleset {
	t.Helper()
	rules, err := NewRuleset(config.TerrainConfig{
		DefaultKind: "ground",
		Kinds: []config.TerrainKindConfig{
			{Name: "ground", Weight: 6, Passable: true, Adjacent: []string{"ground", "rock", "crystal"}},
			{Name: "rock", Weight: 2, Adjacent: []string{"ground", "rock"}},
			{Name: "crystal", Weight: 2, Adjacent: []string{"ground", "crystal"}},
		},
	})
	if err != nil {
		t.Fatalf("NewRuleset: %v", err)
	}
	return rules
}

func TestNewRulesetMutualCompatibility(t *testing.T) {
	rules, err := NewRuleset(config.TerrainConfig{
		DefaultKind: "ground",
		Kinds: []config.TerrainKindConfig{
			{Name: "ground", Weight: 1, Passable: true, Adjacent: []string{"ground", "rock"}},
			{Name: "rock", Weight: 1, Adjacent: []string{"rock"}},
		},
	})
	if err != nil {
		t.Fatalf("NewRuleset: %v", err)
	}

	if rules.Compatible(TerrainGround, TerrainRock) || rules.Compatible(TerrainRock, TerrainGround) {
		t.Error("one-sided adjacency should not make kinds compatible")
	}
	if !rules.Compatible(TerrainGround, TerrainGround) || !rules.Compatible(TerrainRock, TerrainRock) {
		t.Error("self adjacency lost")
	}
	if got := rules.Weighted(); len(got) != 2 {
		t.Errorf("weighted list length = %d, want 2", len(got))
	}
}

func TestNewRulesetRejects(t *testing.T) {
	ground := config.TerrainKindConfig{Name: "ground", Weight: 9, Passable: true, Adjacent: []string{"ground"}}
	rock := config.TerrainKindConfig{Name: "rock", Weight: 1, Adjacent: []string{"rock"}}

	tests := []struct {
		name string
		cfg  config.TerrainConfig
	}{
		{"no kinds", config.TerrainConfig{DefaultKind: "ground"}},
		{"unknown kind", config.TerrainConfig{DefaultKind: "ground", Kinds: []config.TerrainKindConfig{ground, {Name: "lava", Weight: 1}}}},
		{"unknown adjacent", config.TerrainConfig{DefaultKind: "ground", Kinds: []config.TerrainKindConfig{{Name: "ground", Weight: 1, Passable: true, Adjacent: []string{"water"}}}}},
		{"default missing", config.TerrainConfig{DefaultKind: "crystal", Kinds: []config.TerrainKindConfig{ground, rock}}},
		{"default impassable", config.TerrainConfig{DefaultKind: "rock", Kinds: []config.TerrainKindConfig{ground, rock}}},
		{"zero weight", config.TerrainConfig{DefaultKind: "ground", Kinds: []config.TerrainKindConfig{ground, {Name: "rock", Weight: 0}}}},
		{"duplicate", config.TerrainConfig{DefaultKind: "ground", Kinds: []config.TerrainKindConfig{ground, ground}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRuleset(tt.cfg)
			if !errors.Is(err, ErrInvalidRuleset) {
				t.Errorf("err = %v, want ErrInvalidRuleset", err)
			}
		})
	}
}

func TestGenerateFullyCollapses(t *testing.T) {
	rules := defaultRuleset(t)
	gen := NewCollapseGenerator(rules, 2, 20, rand.New(rand.NewSource(1)))

	grid, err := gen.GenerateForCanvas(1200, 800)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if grid.Cols() != 60 || grid.Rows() != 40 {
		t.Fatalf("grid = %dx%d, want 60x40", grid.Cols(), grid.Rows())
	}

	stats := grid.Stats()
	if stats.BudgetExhausted || stats.Finalized != 0 {
		t.Errorf("stats = %+v, want full collapse within budget", stats)
	}
	if stats.Iterations > 2*60*40 {
		t.Errorf("iterations %d exceed budget", stats.Iterations)
	}

	rocks := 0
	for row := 0; row < grid.Rows(); row++ {
		for col := 0; col < grid.Cols(); col++ {
			tile := grid.At(col, row)
			if tile.Col != col || tile.Row != row {
				t.Fatalf("tile at (%d,%d) reports (%d,%d)", col, row, tile.Col, tile.Row)
			}
			switch tile.Kind {
			case TerrainGround:
			case TerrainRock:
				rocks++
			default:
				t.Fatalf("unexpected kind %v at (%d,%d)", tile.Kind, col, row)
			}
		}
	}

	obstacles := grid.Obstacles()
	if len(obstacles) != rocks {
		t.Errorf("obstacles = %d, want %d rock tiles", len(obstacles), rocks)
	}
	for _, c := range obstacles {
		if grid.IsPassable(c.Col, c.Row) {
			t.Errorf("obstacle (%d,%d) is passable", c.Col, c.Row)
		}
	}
}

func TestGenerateGroundBias(t *testing.T) {
	rules := defaultRuleset(t)

	total, ground := 0, 0
	for seed := int64(0); seed < 5; seed++ {
		gen := NewCollapseGenerator(rules, 2, 20, rand.New(rand.NewSource(seed)))
		grid, err := gen.Generate(40, 40)
		if err != nil {
			t.Fatalf("Generate: %v", err)
		}
		total += grid.Cols() * grid.Rows()
		ground += grid.CountKind(TerrainGround)
	}

	frac := float64(ground) / float64(total)
	if frac < 0.85 || frac > 0.95 {
		t.Errorf("ground fraction = %.3f, want about 0.9", frac)
	}
}

func TestGenerateAdjacencyValidity(t *testing.T) {
	rules := restrictiveRuleset(t)

	for seed := int64(0); seed < 10; seed++ {
		gen := NewCollapseGenerator(rules, 2, 20, rand.New(rand.NewSource(seed)))
		grid, err := gen.Generate(30, 20)
		if err != nil {
			t.Fatalf("seed %d: Generate: %v", seed, err)
		}

		fallbacks := 0
		for row := 0; row < grid.Rows(); row++ {
			for col := 0; col < grid.Cols(); col++ {
				a := grid.At(col, row)
				if a.Fallback {
					fallbacks++
					if a.Kind != rules.Fallback() {
						t.Errorf("seed %d: fallback tile (%d,%d) has kind %v", seed, col, row, a.Kind)
					}
				}
				for _, off := range [][2]int{{1, 0}, {0, 1}} {
					nc, nr := col+off[0], row+off[1]
					if !grid.InBounds(nc, nr) {
						continue
					}
					b := grid.At(nc, nr)
					if !rules.Compatible(a.Kind, b.Kind) && !a.Fallback && !b.Fallback {
						t.Errorf("seed %d: %v at (%d,%d) next to %v at (%d,%d)", seed, a.Kind, col, row, b.Kind, nc, nr)
					}
				}
			}
		}
		if fallbacks != grid.Stats().Contradictions {
			t.Errorf("seed %d: %d fallback tiles, %d contradictions", seed, fallbacks, grid.Stats().Contradictions)
		}
	}
}

func TestPropagateForcesFallbackOnContradiction(t *testing.T) {
	rules, err := NewRuleset(config.TerrainConfig{
		DefaultKind: "ground",
		Kinds: []config.TerrainKindConfig{
			{Name: "ground", Weight: 1, Passable: true, Adjacent: []string{"ground"}},
			{Name: "rock", Weight: 1, Adjacent: []string{"rock"}},
			{Name: "crystal", Weight: 1, Adjacent: []string{"crystal"}},
		},
	})
	if err != nil {
		t.Fatalf("NewRuleset: %v", err)
	}

	gen := NewCollapseGenerator(rules, 2, 20, rand.New(rand.NewSource(1)))
	s := &collapseState{
		cols: 3,
		rows: 1,
		cands: [][]TerrainKind{
			{TerrainCrystal},
			{TerrainGround, TerrainRock, TerrainCrystal},
			{TerrainGround},
		},
		fallback: make([]bool, 3),
	}

	gen.propagate(s, 0)

	if s.stats.Contradictions != 1 {
		t.Fatalf("contradictions = %d, want 1", s.stats.Contradictions)
	}
	if !s.fallback[1] {
		t.Error("middle cell not tagged as fallback")
	}
	if len(s.cands[1]) != 1 || s.cands[1][0] != TerrainGround {
		t.Errorf("middle cell = %v, want [ground]", s.cands[1])
	}
}

func TestGenerateSmallGrid(t *testing.T) {
	rules := defaultRuleset(t)
	gen := NewCollapseGenerator(rules, 2, 20, rand.New(rand.NewSource(42)))

	grid, err := gen.Generate(10, 10)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if c := grid.Stats().Contradictions; c != 0 {
		t.Errorf("contradictions = %d, want 0", c)
	}
	if n := len(grid.Obstacles()); n < 0 || n > 100 {
		t.Errorf("obstacles = %d, want within [0,100]", n)
	}
	if got := grid.CountKind(TerrainGround) + grid.CountKind(TerrainRock); got != 100 {
		t.Errorf("ground+rock = %d, want 100", got)
	}
}

func TestGenerateDeterministicForSeed(t *testing.T) {
	rules := defaultRuleset(t)
	a, _ := NewCollapseGenerator(rules, 2, 20, rand.New(rand.NewSource(7))).Generate(20, 15)
	b, _ := NewCollapseGenerator(rules, 2, 20, rand.New(rand.NewSource(7))).Generate(20, 15)

	for row := 0; row < 15; row++ {
		for col := 0; col < 20; col++ {
			if a.Kind(col, row) != b.Kind(col, row) {
				t.Fatalf("grids diverge at (%d,%d)", col, row)
			}
		}
	}
}

func TestGenerateInvalidSize(t *testing.T) {
	gen := NewCollapseGenerator(defaultRuleset(t), 2, 20, rand.New(rand.NewSource(1)))
	for _, dims := range [][2]int{{0, 5}, {5, 0}, {-1, 3}} {
		if _, err := gen.Generate(dims[0], dims[1]); !errors.Is(err, ErrInvalidGridSize) {
			t.Errorf("Generate(%d,%d) err = %v, want ErrInvalidGridSize", dims[0], dims[1], err)
		}
	}
}

func TestGenerateBudgetExhaustion(t *testing.T) {
	gen := NewCollapseGenerator(defaultRuleset(t), 2, 20, rand.New(rand.NewSource(3)))
	gen.Budget = 5

	grid, err := gen.Generate(10, 10)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	stats := grid.Stats()
	if stats.Iterations != 5 {
		t.Errorf("iterations = %d, want 5", stats.Iterations)
	}
	if !stats.BudgetExhausted || stats.Finalized != 95 {
		t.Errorf("stats = %+v, want 95 finalized cells", stats)
	}
	// Finalized cells take the first weighted candidate.
	if rocks := grid.CountKind(TerrainRock); rocks > 5 {
		t.Errorf("rocks = %d, want at most the 5 collapsed cells", rocks)
	}
}

func TestGridDimensions(t *testing.T) {
	tests := []struct {
		w, h, cell float32
		cols, rows int
	}{
		{1200, 800, 20, 60, 40},
		{1219, 805, 20, 60, 40},
		{15, 15, 20, 0, 0},
		{100, 100, 0, 0, 0},
	}
	for _, tt := range tests {
		cols, rows := GridDimensions(tt.w, tt.h, tt.cell)
		if cols != tt.cols || rows != tt.rows {
			t.Errorf("GridDimensions(%v,%v,%v) = %dx%d, want %dx%d", tt.w, tt.h, tt.cell, cols, rows, tt.cols, tt.rows)
		}
	}
}

// walledGrid builds a 5x5 grid with a rock column at col 2, rows 0..3.
func walledGrid(t *testing.T) *TerrainGrid {
	t.Helper()
	kinds := make([]TerrainKind, 25)
	for row := 0; row < 4; row++ {
		kinds[row*5+2] = TerrainRock
	}
	grid, err := NewTerrainGridFromKinds(5, 5, 20, defaultRuleset(t), kinds)
	if err != nil {
		t.Fatalf("NewTerrainGridFromKinds: %v", err)
	}
	return grid
}

func TestTerrainGridQueries(t *testing.T) {
	grid := walledGrid(t)

	if !grid.IsSolid(50, 10) {
		t.Error("rock cell should be solid")
	}
	if grid.IsSolid(10, 10) {
		t.Error("ground cell should not be solid")
	}
	if !grid.IsSolid(-1, 10) || !grid.IsSolid(10, 101) {
		t.Error("out of bounds should be solid")
	}
	if col, row := grid.CellAt(59, 21); col != 2 || row != 1 {
		t.Errorf("CellAt = (%d,%d), want (2,1)", col, row)
	}
	if x, y := grid.CellCenter(2, 1); x != 50 || y != 30 {
		t.Errorf("CellCenter = (%v,%v), want (50,30)", x, y)
	}
	if len(grid.Obstacles()) != 4 {
		t.Errorf("obstacles = %d, want 4", len(grid.Obstacles()))
	}
	if grid.HasLineOfSight(10, 10, 90, 10) {
		t.Error("line of sight should be blocked by the wall")
	}
	if !grid.HasLineOfSight(10, 90, 90, 90) {
		t.Error("line of sight along the open row should be clear")
	}
	if grid.AreaClear(40, 10, 10, 5) {
		t.Error("area over the wall should not be clear")
	}
	if !grid.AreaClear(10, 90, 5, 5) {
		t.Error("open corner should be clear")
	}

	col, row := grid.NearestPassable(2, 1)
	if !grid.IsPassable(col, row) {
		t.Errorf("NearestPassable = (%d,%d), not passable", col, row)
	}
	if abs(col-2) > 1 || abs(row-1) > 1 {
		t.Errorf("NearestPassable = (%d,%d), want an adjacent cell", col, row)
	}
}

func TestNewTerrainGridFromKindsRejectsMismatch(t *testing.T) {
	if _, err := NewTerrainGridFromKinds(3, 3, 20, defaultRuleset(t), make([]TerrainKind, 8)); !errors.Is(err, ErrInvalidGridSize) {
		t.Errorf("err = %v, want ErrInvalidGridSize", err)
	}
}

package systems

import (
	"math"
	"math/rand"

	"github.com/pthm-cable/outpost/components"
	"github.com/pthm-cable/outpost/config"
)

// TurretSpec holds the stats for one turret kind.
type TurretSpec struct {
	Count    int
	Range    float32
	Damage   float32
	Interval float32 // Seconds between shots
}

// TurretTable is indexed by TurretKind.
type TurretTable [components.NumTurretKinds]TurretSpec

// NewTurretTable builds the table from config.
func NewTurretTable(cfg config.DefenseConfig) TurretTable {
	spec := func(k config.TurretKindConfig) TurretSpec {
		return TurretSpec{
			Count:    k.Count,
			Range:    float32(k.Range),
			Damage:   float32(k.Damage),
			Interval: float32(k.Interval),
		}
	}
	var t TurretTable
	t[components.TurretLaser] = spec(cfg.Laser)
	t[components.TurretPlasma] = spec(cfg.Plasma)
	t[components.TurretQuantum] = spec(cfg.Quantum)
	return t
}

// TurretPlacement is a turret kind at a world position.
type TurretPlacement struct {
	Kind components.TurretKind
	Pos  components.Position
}

// PlaceTurrets scatters the table's turrets on distinct passable cells
// within ring of the base, excluding the base cell itself. Fewer turrets
// are placed if the ring runs out of free cells.
func PlaceTurrets(grid *TerrainGrid, table TurretTable, baseX, baseY, ring float32, rng *rand.Rand) []TurretPlacement {
	baseCol, baseRow := grid.CellAt(baseX, baseY)
	reach := int(math.Ceil(float64(ring / grid.CellSize())))

	var free []Cell
	for row := baseRow - reach; row <= baseRow+reach; row++ {
		for col := baseCol - reach; col <= baseCol+reach; col++ {
			if (col == baseCol && row == baseRow) || !grid.IsPassable(col, row) {
				continue
			}
			x, y := grid.CellCenter(col, row)
			if !WithinRadius(x, y, baseX, baseY, ring) {
				continue
			}
			free = append(free, Cell{Col: col, Row: row})
		}
	}
	rng.Shuffle(len(free), func(i, j int) { free[i], free[j] = free[j], free[i] })

	var out []TurretPlacement
	for kind := components.TurretKind(0); kind < components.NumTurretKinds; kind++ {
		for n := 0; n < table[kind].Count && len(free) > 0; n++ {
			c := free[len(free)-1]
			free = free[:len(free)-1]
			x, y := grid.CellCenter(c.Col, c.Row)
			out = append(out, TurretPlacement{Kind: kind, Pos: components.Position{X: x, Y: y}})
		}
	}
	return out
}

// TargetCandidate is a live alien a turret may shoot at.
type TargetCandidate struct {
	X, Y  float32
	Index int  // Caller's handle
	Down  bool // Killed earlier this tick
}

// NearestTarget returns the index into candidates of the closest alien
// within rangeR that the turret can see, or -1. Ties go to the lower index.
func NearestTarget(grid *TerrainGrid, tx, ty, rangeR float32, candidates []TargetCandidate) int {
	best := -1
	bestDist := rangeR * rangeR
	for i, c := range candidates {
		if c.Down {
			continue
		}
		dx, dy := c.X-tx, c.Y-ty
		d := dx*dx + dy*dy
		if d > bestDist || (d == bestDist && best >= 0) {
			continue
		}
		if grid != nil && !grid.HasLineOfSight(tx, ty, c.X, c.Y) {
			continue
		}
		best = i
		bestDist = d
	}
	return best
}

// ApplyDamage reduces health by max(1, damage-armor) and reports a kill.
func ApplyDamage(v *components.Vitals, damage float32) bool {
	v.Health -= max(1, damage-v.Armor)
	return v.Health <= 0
}

// TickCooldown counts a turret's cooldown down by dt and reports whether it may fire.
func TickCooldown(t *components.Turret, dt float32) bool {
	if t.Cooldown > 0 {
		t.Cooldown -= dt
	}
	return t.Cooldown <= 0
}

// Overrun reports whether enough territory around a cell is captured to destroy a turret there.
func Overrun(territory *TerritoryMap, col, row int, fraction float64) bool {
	return fraction > 0 && territory.Share3x3(col, row) >= fraction
}

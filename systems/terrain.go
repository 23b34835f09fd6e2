package systems

import (
	"errors"
	"fmt"
	"math"

	"github.com/pthm-cable/outpost/config"
)

// TerrainKind is the terrain type of a collapsed tile.
type TerrainKind uint8

const (
	TerrainGround  TerrainKind = iota // Passable
	TerrainRock                       // Solid
	TerrainCrystal                    // Solid, only in some rulesets
	NumTerrainKinds
)

var terrainKindNames = [NumTerrainKinds]string{"ground", "rock", "crystal"}

// String returns the config name of the kind.
func (k TerrainKind) String() string {
	if k < NumTerrainKinds {
		return terrainKindNames[k]
	}
	return fmt.Sprintf("TerrainKind(%d)", uint8(k))
}

// ParseTerrainKind resolves a config name to a kind.
func ParseTerrainKind(name string) (TerrainKind, error) {
	for k, n := range terrainKindNames {
		if n == name {
			return TerrainKind(k), nil
		}
	}
	return 0, fmt.Errorf("%w: unknown terrain kind %q", ErrInvalidRuleset, name)
}

var (
	// ErrInvalidRuleset is returned when the weight or adjacency tables are unusable.
	ErrInvalidRuleset = errors.New("invalid terrain ruleset")
	// ErrInvalidGridSize is returned for grids with a non-positive dimension.
	ErrInvalidGridSize = errors.New("invalid grid size")
)

// kindMask is a bit set of terrain kinds.
type kindMask uint8

func maskOf(k TerrainKind) kindMask { return 1 << k }

// Ruleset holds the weighted kind list and the adjacency table.
type Ruleset struct {
	weighted []TerrainKind // Initial candidates; duplicates encode bias
	known    kindMask
	passable [NumTerrainKinds]bool
	compat   [NumTerrainKinds]kindMask // compat[a] has b iff a and b may be 4-neighbours
	fallback TerrainKind
}

// NewRuleset builds a ruleset from the terrain config.
// Two kinds are compatible only when each lists the other as adjacent.
func NewRuleset(cfg config.TerrainConfig) (*Ruleset, error) {
	if len(cfg.Kinds) == 0 {
		return nil, fmt.Errorf("%w: no kinds", ErrInvalidRuleset)
	}

	r := &Ruleset{}
	lists := make(map[TerrainKind]kindMask, len(cfg.Kinds))
	for _, kc := range cfg.Kinds {
		k, err := ParseTerrainKind(kc.Name)
		if err != nil {
			return nil, err
		}
		if r.known&maskOf(k) != 0 {
			return nil, fmt.Errorf("%w: duplicate kind %q", ErrInvalidRuleset, kc.Name)
		}
		if kc.Weight <= 0 {
			return nil, fmt.Errorf("%w: kind %q has weight %d", ErrInvalidRuleset, kc.Name, kc.Weight)
		}
		r.known |= maskOf(k)
		r.passable[k] = kc.Passable
		for i := 0; i < kc.Weight; i++ {
			r.weighted = append(r.weighted, k)
		}

		var adj kindMask
		for _, name := range kc.Adjacent {
			a, err := ParseTerrainKind(name)
			if err != nil {
				return nil, err
			}
			adj |= maskOf(a)
		}
		lists[k] = adj
	}

	for a, adjA := range lists {
		for b, adjB := range lists {
			if adjA&maskOf(b) != 0 && adjB&maskOf(a) != 0 {
				r.compat[a] |= maskOf(b)
			}
		}
	}

	fallback, err := ParseTerrainKind(cfg.DefaultKind)
	if err != nil {
		return nil, err
	}
	if r.known&maskOf(fallback) == 0 {
		return nil, fmt.Errorf("%w: default kind %q is not in the kind table", ErrInvalidRuleset, cfg.DefaultKind)
	}
	if !r.passable[fallback] {
		return nil, fmt.Errorf("%w: default kind %q must be passable", ErrInvalidRuleset, cfg.DefaultKind)
	}
	r.fallback = fallback

	return r, nil
}

// Compatible reports whether a and b may be 4-neighbours.
func (r *Ruleset) Compatible(a, b TerrainKind) bool {
	return r.compat[a]&maskOf(b) != 0
}

// Passable reports whether the kind can be walked through.
func (r *Ruleset) Passable(k TerrainKind) bool {
	return k < NumTerrainKinds && r.passable[k]
}

// Fallback returns the default passable kind used on contradictions.
func (r *Ruleset) Fallback() TerrainKind {
	return r.fallback
}

// Weighted returns a copy of the initial candidate list.
func (r *Ruleset) Weighted() []TerrainKind {
	return append([]TerrainKind(nil), r.weighted...)
}

// Tile is one collapsed cell of the terrain grid.
type Tile struct {
	Col, Row int
	Kind     TerrainKind
	Fallback bool // Forced to the default kind after a contradiction
}

// Cell is a grid coordinate.
type Cell struct {
	Col int `csv:"col"`
	Row int `csv:"row"`
}

// CollapseStats summarises one generation run.
type CollapseStats struct {
	Iterations      int
	Contradictions  int
	Finalized       int // Cells settled by the post-budget pass
	BudgetExhausted bool
}

// TerrainGrid is a fully collapsed tile grid with collision queries.
type TerrainGrid struct {
	tiles     []Tile // Row-major
	cols      int
	rows      int
	cellSize  float32
	rules     *Ruleset
	obstacles []Cell
	stats     CollapseStats
}

// NewTerrainGridFromKinds builds a grid from explicit row-major kinds.
func NewTerrainGridFromKinds(cols, rows int, cellSize float32, rules *Ruleset, kinds []TerrainKind) (*TerrainGrid, error) {
	if cols <= 0 || rows <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidGridSize, cols, rows)
	}
	if len(kinds) != cols*rows {
		return nil, fmt.Errorf("%w: %d kinds for %dx%d grid", ErrInvalidGridSize, len(kinds), cols, rows)
	}
	t := &TerrainGrid{
		tiles:    make([]Tile, cols*rows),
		cols:     cols,
		rows:     rows,
		cellSize: cellSize,
		rules:    rules,
	}
	for i, k := range kinds {
		t.tiles[i] = Tile{Col: i % cols, Row: i / cols, Kind: k}
	}
	t.buildObstacles()
	return t, nil
}

// buildObstacles derives the impassable cell list.
func (t *TerrainGrid) buildObstacles() {
	t.obstacles = t.obstacles[:0]
	for _, tile := range t.tiles {
		if !t.rules.Passable(tile.Kind) {
			t.obstacles = append(t.obstacles, Cell{Col: tile.Col, Row: tile.Row})
		}
	}
}

// Cols returns the grid width in cells.
func (t *TerrainGrid) Cols() int { return t.cols }

// Rows returns the grid height in cells.
func (t *TerrainGrid) Rows() int { return t.rows }

// CellSize returns the size of a square cell in world units.
func (t *TerrainGrid) CellSize() float32 { return t.cellSize }

// Width returns the grid width in world units.
func (t *TerrainGrid) Width() float32 { return float32(t.cols) * t.cellSize }

// Height returns the grid height in world units.
func (t *TerrainGrid) Height() float32 { return float32(t.rows) * t.cellSize }

// Rules returns the ruleset the grid was generated with.
func (t *TerrainGrid) Rules() *Ruleset { return t.rules }

// Stats returns generation statistics.
func (t *TerrainGrid) Stats() CollapseStats { return t.stats }

// InBounds reports whether the cell lies inside the grid.
func (t *TerrainGrid) InBounds(col, row int) bool {
	return col >= 0 && col < t.cols && row >= 0 && row < t.rows
}

// At returns the tile at the given cell. The cell must be in bounds.
func (t *TerrainGrid) At(col, row int) Tile {
	return t.tiles[row*t.cols+col]
}

// Kind returns the terrain kind at the given cell. The cell must be in bounds.
func (t *TerrainGrid) Kind(col, row int) TerrainKind {
	return t.tiles[row*t.cols+col].Kind
}

// IsPassable reports whether the cell is in bounds and walkable.
func (t *TerrainGrid) IsPassable(col, row int) bool {
	if !t.InBounds(col, row) {
		return false
	}
	return t.rules.Passable(t.Kind(col, row))
}

// Obstacles returns a copy of the impassable cell list.
func (t *TerrainGrid) Obstacles() []Cell {
	return append([]Cell(nil), t.obstacles...)
}

// CountKind returns how many tiles have the given kind.
func (t *TerrainGrid) CountKind(k TerrainKind) int {
	n := 0
	for _, tile := range t.tiles {
		if tile.Kind == k {
			n++
		}
	}
	return n
}

// CellAt converts a world position to grid coordinates.
func (t *TerrainGrid) CellAt(x, y float32) (col, row int) {
	return int(math.Floor(float64(x / t.cellSize))), int(math.Floor(float64(y / t.cellSize)))
}

// CellCenter returns the world position of a cell's centre.
func (t *TerrainGrid) CellCenter(col, row int) (x, y float32) {
	return (float32(col) + 0.5) * t.cellSize, (float32(row) + 0.5) * t.cellSize
}

// IsSolid returns true if the world position is outside the map or on impassable terrain.
func (t *TerrainGrid) IsSolid(x, y float32) bool {
	col, row := t.CellAt(x, y)
	return !t.IsPassable(col, row)
}

// AreaClear reports whether every sample in a square of the given half extent,
// stepped by step world units, is off solid terrain.
func (t *TerrainGrid) AreaClear(x, y, halfExtent, step float32) bool {
	for ox := -halfExtent; ox <= halfExtent; ox += step {
		for oy := -halfExtent; oy <= halfExtent; oy += step {
			if t.IsSolid(x+ox, y+oy) {
				return false
			}
		}
	}
	return true
}

// HasLineOfSight returns true if there is no solid terrain between two points.
// Uses a simple raycast with steps smaller than cell size.
func (t *TerrainGrid) HasLineOfSight(x1, y1, x2, y2 float32) bool {
	dx := x2 - x1
	dy := y2 - y1
	dist := float32(math.Sqrt(float64(dx*dx + dy*dy)))

	if dist < 0.001 {
		return true
	}

	// Step size should be smaller than cell size to avoid missing walls
	stepSize := t.cellSize * 0.4
	steps := int(dist/stepSize) + 1

	dx /= dist
	dy /= dist

	// Skip start and end points
	for i := 1; i < steps; i++ {
		checkX := x1 + dx*float32(i)*stepSize
		checkY := y1 + dy*float32(i)*stepSize

		if t.IsSolid(checkX, checkY) {
			return false
		}
	}

	return true
}

// NearestPassable searches outward in square rings for the closest passable cell.
// Returns (-1, -1) if the grid has no passable cell.
func (t *TerrainGrid) NearestPassable(col, row int) (int, int) {
	if t.IsPassable(col, row) {
		return col, row
	}
	maxRadius := max(t.cols, t.rows)
	for r := 1; r <= maxRadius; r++ {
		for dy := -r; dy <= r; dy++ {
			for dx := -r; dx <= r; dx++ {
				if abs(dx) != r && abs(dy) != r {
					continue
				}
				if t.IsPassable(col+dx, row+dy) {
					return col + dx, row + dy
				}
			}
		}
	}
	return -1, -1
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

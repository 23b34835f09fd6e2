package systems

import "math/rand"

// TerritoryMap tracks which grid cells aliens have captured.
type TerritoryMap struct {
	cols, rows int
	owned      []bool
	captured   int
	sinceDecay float64
}

// NewTerritoryMap creates an all-neutral map.
func NewTerritoryMap(cols, rows int) *TerritoryMap {
	return &TerritoryMap{
		cols:  cols,
		rows:  rows,
		owned: make([]bool, cols*rows),
	}
}

// Reset returns every cell to neutral.
func (t *TerritoryMap) Reset() {
	clear(t.owned)
	t.captured = 0
	t.sinceDecay = 0
}

// Cells returns the total number of cells.
func (t *TerritoryMap) Cells() int { return len(t.owned) }

// CapturedCount returns the number of captured cells.
func (t *TerritoryMap) CapturedCount() int { return t.captured }

// Fraction returns the captured share of the map.
func (t *TerritoryMap) Fraction() float64 {
	if len(t.owned) == 0 {
		return 0
	}
	return float64(t.captured) / float64(len(t.owned))
}

// Captured reports whether the cell is alien territory. Out of bounds is neutral.
func (t *TerritoryMap) Captured(col, row int) bool {
	if col < 0 || col >= t.cols || row < 0 || row >= t.rows {
		return false
	}
	return t.owned[row*t.cols+col]
}

// TryCapture claims a neutral cell with the given probability.
// Returns true only when the cell changed hands.
func (t *TerritoryMap) TryCapture(col, row int, chance float64, rng *rand.Rand) bool {
	if col < 0 || col >= t.cols || row < 0 || row >= t.rows {
		return false
	}
	i := row*t.cols + col
	if t.owned[i] || rng.Float64() >= chance {
		return false
	}
	t.owned[i] = true
	t.captured++
	return true
}

// Decay accumulates dt and, every interval seconds, reverts each captured
// cell to neutral with the given probability. Returns cells released.
func (t *TerritoryMap) Decay(dt, interval, chance float64, rng *rand.Rand) int {
	if interval <= 0 {
		return 0
	}
	t.sinceDecay += dt
	released := 0
	for t.sinceDecay >= interval {
		t.sinceDecay -= interval
		for i, owned := range t.owned {
			if owned && rng.Float64() < chance {
				t.owned[i] = false
				t.captured--
				released++
			}
		}
	}
	return released
}

// Share3x3 returns the captured fraction of the in-bounds 3x3 block around a cell.
func (t *TerritoryMap) Share3x3(col, row int) float64 {
	total, owned := 0, 0
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			c, r := col+dx, row+dy
			if c < 0 || c >= t.cols || r < 0 || r >= t.rows {
				continue
			}
			total++
			if t.owned[r*t.cols+c] {
				owned++
			}
		}
	}
	if total == 0 {
		return 0
	}
	return float64(owned) / float64(total)
}

package systems

import (
	"fmt"
	"log/slog"
	"math/rand"
)

// CollapseGenerator produces terrain by constrained random collapse.
// Each cell holds a weighted candidate multiset that is narrowed until one
// kind remains, with adjacency enforced by propagation.
type CollapseGenerator struct {
	rules        *Ruleset
	rng          *rand.Rand
	budgetFactor int
	cellSize     float32

	// Budget overrides budgetFactor*cols*rows when positive.
	Budget int
}

// NewCollapseGenerator creates a generator. A budget factor below 1 is treated as 1.
func NewCollapseGenerator(rules *Ruleset, budgetFactor int, cellSize float32, rng *rand.Rand) *CollapseGenerator {
	if budgetFactor < 1 {
		budgetFactor = 1
	}
	return &CollapseGenerator{
		rules:        rules,
		rng:          rng,
		budgetFactor: budgetFactor,
		cellSize:     cellSize,
	}
}

// GridDimensions returns the grid size that fits a canvas.
func GridDimensions(width, height, cellSize float32) (cols, rows int) {
	if cellSize <= 0 {
		return 0, 0
	}
	return int(width / cellSize), int(height / cellSize)
}

// GenerateForCanvas sizes the grid to the canvas and generates it.
func (g *CollapseGenerator) GenerateForCanvas(width, height float32) (*TerrainGrid, error) {
	cols, rows := GridDimensions(width, height, g.cellSize)
	return g.Generate(cols, rows)
}

// collapseState is the working set for one Generate call.
type collapseState struct {
	cols, rows int
	cands      [][]TerrainKind
	fallback   []bool
	stack      []int
	ties       []int
	stats      CollapseStats
}

// Generate collapses a cols x rows grid. Contradictions are resolved locally
// and an exhausted budget settles remaining cells to their first candidate,
// so the only errors are for invalid input.
func (g *CollapseGenerator) Generate(cols, rows int) (*TerrainGrid, error) {
	if cols <= 0 || rows <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidGridSize, cols, rows)
	}
	if g.rules == nil || len(g.rules.weighted) == 0 {
		return nil, fmt.Errorf("%w: no weighted kinds", ErrInvalidRuleset)
	}

	n := cols * rows
	s := &collapseState{
		cols:     cols,
		rows:     rows,
		cands:    make([][]TerrainKind, n),
		fallback: make([]bool, n),
	}
	for i := range s.cands {
		s.cands[i] = g.rules.Weighted()
	}

	budget := g.Budget
	if budget <= 0 {
		budget = g.budgetFactor * n
	}

	for s.stats.Iterations < budget {
		idx := g.lowestEntropy(s)
		if idx < 0 {
			break
		}
		c := s.cands[idx]
		s.cands[idx] = append(c[:0], c[g.rng.Intn(len(c))])
		g.propagate(s, idx)
		s.stats.Iterations++
	}

	for i, c := range s.cands {
		if len(c) > 1 {
			s.cands[i] = c[:1]
			s.stats.Finalized++
		}
	}
	if s.stats.Finalized > 0 {
		s.stats.BudgetExhausted = true
		slog.Debug("terrain collapse budget exhausted",
			"cols", cols,
			"rows", rows,
			"budget", budget,
			"finalized", s.stats.Finalized,
		)
	}

	grid := &TerrainGrid{
		tiles:    make([]Tile, n),
		cols:     cols,
		rows:     rows,
		cellSize: g.cellSize,
		rules:    g.rules,
		stats:    s.stats,
	}
	for i, c := range s.cands {
		grid.tiles[i] = Tile{Col: i % cols, Row: i / cols, Kind: c[0], Fallback: s.fallback[i]}
	}
	grid.buildObstacles()

	return grid, nil
}

// lowestEntropy returns the uncollapsed cell with the fewest candidates,
// breaking ties uniformly. Returns -1 when every cell is collapsed.
func (g *CollapseGenerator) lowestEntropy(s *collapseState) int {
	best := 0
	s.ties = s.ties[:0]
	for i, c := range s.cands {
		l := len(c)
		if l <= 1 {
			continue
		}
		switch {
		case len(s.ties) == 0 || l < best:
			best = l
			s.ties = append(s.ties[:0], i)
		case l == best:
			s.ties = append(s.ties, i)
		}
	}
	if len(s.ties) == 0 {
		return -1
	}
	return s.ties[g.rng.Intn(len(s.ties))]
}

var neighbourOffsets = [4][2]int{{0, -1}, {1, 0}, {0, 1}, {-1, 0}}

// propagate narrows neighbours starting from a freshly collapsed cell.
func (g *CollapseGenerator) propagate(s *collapseState, start int) {
	s.stack = append(s.stack[:0], start)
	for len(s.stack) > 0 {
		cur := s.stack[len(s.stack)-1]
		s.stack = s.stack[:len(s.stack)-1]

		col, row := cur%s.cols, cur/s.cols
		for _, off := range neighbourOffsets {
			nc, nr := col+off[0], row+off[1]
			if nc < 0 || nc >= s.cols || nr < 0 || nr >= s.rows {
				continue
			}
			ni := nr*s.cols + nc
			if len(s.cands[ni]) <= 1 {
				continue
			}

			before := len(s.cands[ni])
			s.cands[ni] = g.constrain(s, nc, nr)
			after := len(s.cands[ni])

			switch {
			case after == 0:
				s.cands[ni] = append(s.cands[ni], g.rules.fallback)
				s.fallback[ni] = true
				s.stats.Contradictions++
			case after < before:
				s.stack = append(s.stack, ni)
			}
		}
	}
}

// constrain filters a cell's candidates in place, keeping those supported by
// every in-bounds 4-neighbour.
func (g *CollapseGenerator) constrain(s *collapseState, col, row int) []TerrainKind {
	allowed := g.rules.known
	for _, off := range neighbourOffsets {
		nc, nr := col+off[0], row+off[1]
		if nc < 0 || nc >= s.cols || nr < 0 || nr >= s.rows {
			continue
		}
		var support kindMask
		for _, k := range s.cands[nr*s.cols+nc] {
			support |= g.rules.compat[k]
		}
		allowed &= support
	}

	c := s.cands[row*s.cols+col]
	kept := c[:0]
	for _, k := range c {
		if allowed&maskOf(k) != 0 {
			kept = append(kept, k)
		}
	}
	return kept
}

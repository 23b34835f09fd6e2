package main

import (
	"fmt"
	"math/rand"

	"github.com/gdamore/tcell/v2"

	"github.com/pthm-cable/outpost/config"
	"github.com/pthm-cable/outpost/systems"
)

var (
	styleGround   = tcell.StyleDefault.Foreground(tcell.ColorGreen)
	styleRock     = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleCrystal  = tcell.StyleDefault.Foreground(tcell.ColorPurple)
	styleFallback = tcell.StyleDefault.Foreground(tcell.ColorRed).Bold(true)
	styleStatus   = tcell.StyleDefault.Foreground(tcell.ColorYellow)
	styleHint     = tcell.StyleDefault.Foreground(tcell.ColorGray)
)

// glyph returns the rune and style for a tile.
func glyph(t systems.Tile, markFallback bool) (rune, tcell.Style) {
	r, st := '?', tcell.StyleDefault
	switch t.Kind {
	case systems.TerrainGround:
		r, st = '.', styleGround
	case systems.TerrainRock:
		r, st = '#', styleRock
	case systems.TerrainCrystal:
		r, st = '*', styleCrystal
	}
	if markFallback && t.Fallback {
		st = styleFallback
	}
	return r, st
}

// viewer holds the generated grid and scroll state.
type viewer struct {
	cfg   *config.Config
	rules *systems.Ruleset
	seed  int64
	grid  *systems.TerrainGrid

	offX, offY   int
	markFallback bool
}

func newViewer(cfg *config.Config, seed int64) (*viewer, error) {
	rules, err := systems.NewRuleset(cfg.Terrain)
	if err != nil {
		return nil, fmt.Errorf("building terrain rules: %w", err)
	}
	v := &viewer{cfg: cfg, rules: rules, markFallback: true}
	if err := v.generate(seed); err != nil {
		return nil, err
	}
	return v, nil
}

// generate replaces the grid with a fresh one from seed.
func (v *viewer) generate(seed int64) error {
	gen := systems.NewCollapseGenerator(v.rules, v.cfg.Terrain.BudgetFactor, v.cfg.Derived.CellSize, rand.New(rand.NewSource(seed)))
	grid, err := gen.GenerateForCanvas(v.cfg.Derived.ScreenW, v.cfg.Derived.ScreenH)
	if err != nil {
		return fmt.Errorf("generating terrain: %w", err)
	}
	v.seed = seed
	v.grid = grid
	return nil
}

// handleKey applies a key press. Returns false to quit.
func (v *viewer) handleKey(ev *tcell.EventKey) bool {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return false
	case tcell.KeyUp:
		v.offY = max(0, v.offY-1)
	case tcell.KeyDown:
		v.offY = min(v.grid.Rows()-1, v.offY+1)
	case tcell.KeyLeft:
		v.offX = max(0, v.offX-1)
	case tcell.KeyRight:
		v.offX = min(v.grid.Cols()-1, v.offX+1)
	case tcell.KeyRune:
		switch ev.Rune() {
		case 'q', 'Q':
			return false
		case 'r', 'R':
			// A failed regeneration keeps the previous grid on screen
			_ = v.generate(v.seed + 1)
		case 'f', 'F':
			v.markFallback = !v.markFallback
		}
	}
	return true
}

// draw renders the visible part of the grid with a two-line status footer.
func (v *viewer) draw(scr tcell.Screen) {
	scr.Clear()
	sw, sh := scr.Size()
	mapH := max(0, sh-2)

	for y := 0; y < mapH && v.offY+y < v.grid.Rows(); y++ {
		for x := 0; x < sw && v.offX+x < v.grid.Cols(); x++ {
			r, st := glyph(v.grid.At(v.offX+x, v.offY+y), v.markFallback)
			scr.SetContent(x, y, r, nil, st)
		}
	}

	stats := v.grid.Stats()
	cells := v.grid.Cols() * v.grid.Rows()
	solid := len(v.grid.Obstacles())
	status := fmt.Sprintf("seed %d  %dx%d  solid %.1f%%  iterations %d  contradictions %d  finalized %d",
		v.seed, v.grid.Cols(), v.grid.Rows(), 100*float64(solid)/float64(max(1, cells)),
		stats.Iterations, stats.Contradictions, stats.Finalized)
	if stats.BudgetExhausted {
		status += "  (budget exhausted)"
	}
	putText(scr, 0, sh-2, status, styleStatus)
	putText(scr, 0, sh-1, "[r] regenerate  [f] fallback marks  [arrows] scroll  [q] quit", styleHint)
}

// putText writes s from (x, y), clipped at the right edge.
func putText(scr tcell.Screen, x, y int, s string, st tcell.Style) {
	sw, _ := scr.Size()
	for _, r := range s {
		if x >= sw {
			break
		}
		scr.SetContent(x, y, r, nil, st)
		x++
	}
}

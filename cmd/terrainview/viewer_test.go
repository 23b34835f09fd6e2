package main

import (
	"testing"

	"github.com/gdamore/tcell/v2"

	"github.com/pthm-cable/outpost/config"
	"github.com/pthm-cable/outpost/systems"
)

func newTestViewer(t *testing.T) *viewer {
	t.Helper()
	cfg := config.Defaults()
	cfg.Screen.Width = 600
	cfg.Screen.Height = 400
	if err := cfg.Refresh(); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	v, err := newViewer(cfg, 42)
	if err != nil {
		t.Fatalf("newViewer: %v", err)
	}
	return v
}

func TestGlyph(t *testing.T) {
	tests := []struct {
		tile     systems.Tile
		mark     bool
		wantRune rune
		wantSt   tcell.Style
	}{
		{systems.Tile{Kind: systems.TerrainGround}, true, '.', styleGround},
		{systems.Tile{Kind: systems.TerrainRock}, true, '#', styleRock},
		{systems.Tile{Kind: systems.TerrainCrystal}, true, '*', styleCrystal},
		{systems.Tile{Kind: systems.TerrainGround, Fallback: true}, true, '.', styleFallback},
		{systems.Tile{Kind: systems.TerrainGround, Fallback: true}, false, '.', styleGround},
	}
	for _, tt := range tests {
		r, st := glyph(tt.tile, tt.mark)
		if r != tt.wantRune || st != tt.wantSt {
			t.Errorf("glyph(%+v, %v) = %q, want %q with matching style", tt.tile, tt.mark, r, tt.wantRune)
		}
	}
}

func TestDrawMatchesGrid(t *testing.T) {
	v := newTestViewer(t)

	ss := tcell.NewSimulationScreen("UTF-8")
	ss.SetSize(80, 24)
	if err := ss.Init(); err != nil {
		t.Fatalf("SimulationScreen.Init: %v", err)
	}
	defer ss.Fini()

	v.draw(ss)
	sw, sh := ss.Size()
	for y := 0; y < min(sh-2, v.grid.Rows()); y++ {
		for x := 0; x < min(sw, v.grid.Cols()); x++ {
			want, _ := glyph(v.grid.At(x, y), v.markFallback)
			got, _, _, _ := ss.GetContent(x, y)
			if got != want {
				t.Fatalf("cell (%d,%d) = %q, want %q", x, y, got, want)
			}
		}
	}
}

func TestHandleKey(t *testing.T) {
	v := newTestViewer(t)
	first := v.grid

	if !v.handleKey(tcell.NewEventKey(tcell.KeyRune, 'r', tcell.ModNone)) {
		t.Fatal("regenerate key quit the viewer")
	}
	if v.seed != 43 || v.grid == first {
		t.Errorf("regenerate: seed %d, grid replaced %v", v.seed, v.grid != first)
	}

	v.handleKey(tcell.NewEventKey(tcell.KeyLeft, 0, tcell.ModNone))
	if v.offX != 0 {
		t.Errorf("scrolled left past the edge: offX %d", v.offX)
	}
	v.handleKey(tcell.NewEventKey(tcell.KeyRight, 0, tcell.ModNone))
	if v.offX != 1 {
		t.Errorf("offX = %d after scrolling right", v.offX)
	}

	v.handleKey(tcell.NewEventKey(tcell.KeyRune, 'f', tcell.ModNone))
	if v.markFallback {
		t.Error("f did not toggle fallback marks")
	}

	if v.handleKey(tcell.NewEventKey(tcell.KeyRune, 'q', tcell.ModNone)) {
		t.Error("q did not quit")
	}
}

package telemetry

import (
	"fmt"
	"log/slog"
)

// BookmarkType identifies the type of bookmark.
type BookmarkType string

const (
	BookmarkBaseBreach     BookmarkType = "base_breach"
	BookmarkFitnessRecord  BookmarkType = "fitness_record"
	BookmarkTerritorySurge BookmarkType = "territory_surge"
	BookmarkTurretOverrun  BookmarkType = "turret_overrun"
	BookmarkDefenseHeld    BookmarkType = "defense_held"
)

// Bookmark represents an automatically triggered bookmark.
type Bookmark struct {
	Type        BookmarkType `csv:"type"`
	Wave        int          `csv:"wave"`
	Tick        int32        `csv:"tick"`
	Description string       `csv:"description"`
}

// LogBookmark logs the bookmark using slog.
func (b Bookmark) LogBookmark() {
	slog.Info("bookmark",
		"type", string(b.Type),
		"wave", b.Wave,
		"tick", b.Tick,
		"description", b.Description,
	)
}

// heldWaves is how many consecutive waves without a breach count as held.
const heldWaves = 5

// BookmarkDetector detects notable waves.
type BookmarkDetector struct {
	// Rolling history (circular buffer)
	history     []WaveStats
	historySize int
	historyIdx  int
	historyFull bool

	bestEver   float64
	cleanWaves int
}

// NewBookmarkDetector creates a detector with the given history size.
func NewBookmarkDetector(historySize int) *BookmarkDetector {
	if historySize < 3 {
		historySize = 3
	}
	return &BookmarkDetector{
		history:     make([]WaveStats, historySize),
		historySize: historySize,
	}
}

// Check analyzes the latest wave and returns any triggered bookmarks.
func (bd *BookmarkDetector) Check(stats WaveStats) []Bookmark {
	var bookmarks []Bookmark

	if bd.historyFull || bd.historyIdx > 0 {
		// Breach: goals > 2x rolling average
		if b := bd.checkBaseBreach(stats); b != nil {
			bookmarks = append(bookmarks, *b)
		}

		// Record: best fitness improved by 10% or more
		if b := bd.checkFitnessRecord(stats); b != nil {
			bookmarks = append(bookmarks, *b)
		}

		if b := bd.checkTerritorySurge(stats); b != nil {
			bookmarks = append(bookmarks, *b)
		}
	}

	if stats.Overruns > 0 {
		bookmarks = append(bookmarks, Bookmark{
			Type:        BookmarkTurretOverrun,
			Wave:        stats.Wave,
			Tick:        stats.EndTick,
			Description: fmt.Sprintf("%d turrets overrun, %d left", stats.Overruns, stats.Turrets),
		})
	}

	if b := bd.checkDefenseHeld(stats); b != nil {
		bookmarks = append(bookmarks, *b)
	}

	bd.addToHistory(stats)
	if stats.BestEver > bd.bestEver {
		bd.bestEver = stats.BestEver
	}

	return bookmarks
}

func (bd *BookmarkDetector) addToHistory(stats WaveStats) {
	bd.history[bd.historyIdx] = stats
	bd.historyIdx = (bd.historyIdx + 1) % bd.historySize
	if bd.historyIdx == 0 {
		bd.historyFull = true
	}
}

func (bd *BookmarkDetector) getHistory() []WaveStats {
	if bd.historyFull {
		return bd.history
	}
	return bd.history[:bd.historyIdx]
}

func (bd *BookmarkDetector) checkBaseBreach(stats WaveStats) *Bookmark {
	history := bd.getHistory()
	if len(history) < 2 || stats.ReachedGoal < 3 {
		return nil
	}

	var total int
	for _, h := range history {
		total += h.ReachedGoal
	}
	avg := float64(total) / float64(len(history))

	if float64(stats.ReachedGoal) > avg*2.0 {
		return &Bookmark{
			Type:        BookmarkBaseBreach,
			Wave:        stats.Wave,
			Tick:        stats.EndTick,
			Description: fmt.Sprintf("%d aliens reached the base, average %.1f", stats.ReachedGoal, avg),
		}
	}

	return nil
}

func (bd *BookmarkDetector) checkFitnessRecord(stats WaveStats) *Bookmark {
	if bd.bestEver <= 0 {
		return nil
	}

	if stats.BestEver >= bd.bestEver*1.1 {
		return &Bookmark{
			Type:        BookmarkFitnessRecord,
			Wave:        stats.Wave,
			Tick:        stats.EndTick,
			Description: fmt.Sprintf("Best fitness %.1f up from %.1f", stats.BestEver, bd.bestEver),
		}
	}

	return nil
}

func (bd *BookmarkDetector) checkTerritorySurge(stats WaveStats) *Bookmark {
	history := bd.getHistory()
	if len(history) < 2 {
		return nil
	}

	var total float64
	for _, h := range history {
		total += h.Territory
	}
	avg := total / float64(len(history))

	if stats.Territory > 0.05 && stats.Territory > avg*2.0 {
		return &Bookmark{
			Type:        BookmarkTerritorySurge,
			Wave:        stats.Wave,
			Tick:        stats.EndTick,
			Description: fmt.Sprintf("Territory %.1f%% is %.1fx average", stats.Territory*100, stats.Territory/max(avg, 1e-9)),
		}
	}

	return nil
}

func (bd *BookmarkDetector) checkDefenseHeld(stats WaveStats) *Bookmark {
	if stats.ReachedGoal > 0 || stats.Spawned == 0 {
		bd.cleanWaves = 0
		return nil
	}

	bd.cleanWaves++
	if bd.cleanWaves == heldWaves { // trigger exactly once per streak
		return &Bookmark{
			Type:        BookmarkDefenseHeld,
			Wave:        stats.Wave,
			Tick:        stats.EndTick,
			Description: fmt.Sprintf("No breaches for %d waves", heldWaves),
		}
	}

	return nil
}

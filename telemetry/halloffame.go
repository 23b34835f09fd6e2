package telemetry

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"sort"

	"github.com/pthm-cable/outpost/evolution"
)

// HallEntry is a genome that earned a high fitness, with how it ended.
type HallEntry struct {
	Genome     evolution.Genome
	Fitness    float64
	Wave       int
	Generation int
	Cause      evolution.Cause
}

// HallOfFame keeps the fittest genomes seen across all waves,
// sorted by fitness descending.
type HallOfFame struct {
	entries []HallEntry
	maxSize int
	rng     *rand.Rand
}

// NewHallOfFame creates a new hall of fame with the given capacity.
func NewHallOfFame(maxSize int, rng *rand.Rand) *HallOfFame {
	if maxSize < 1 {
		maxSize = 1
	}
	return &HallOfFame{
		entries: make([]HallEntry, 0, maxSize),
		maxSize: maxSize,
		rng:     rng,
	}
}

// Consider offers a finished alien to the hall. A genome holds at most one
// slot, its best result. Returns true if the hall changed.
func (hof *HallOfFame) Consider(entry HallEntry) bool {
	if i := hof.indexOf(entry.Genome.ID); i >= 0 {
		if entry.Fitness <= hof.entries[i].Fitness {
			return false
		}
		hof.entries = append(hof.entries[:i], hof.entries[i+1:]...)
	} else if len(hof.entries) >= hof.maxSize && entry.Fitness <= hof.entries[len(hof.entries)-1].Fitness {
		return false
	}
	hof.entries = hof.insertEntry(hof.entries, entry)
	return true
}

// indexOf returns the slot held by a genome, or -1.
func (hof *HallOfFame) indexOf(id evolution.GenomeID) int {
	for i, e := range hof.entries {
		if e.Genome.ID == id {
			return i
		}
	}
	return -1
}

// insertEntry adds an entry to the hall, maintaining sorted order by fitness.
// If the hall is full, the lowest-fitness entry is removed.
func (hof *HallOfFame) insertEntry(hall []HallEntry, entry HallEntry) []HallEntry {
	// Find insertion point (sorted descending by fitness)
	idx := sort.Search(len(hall), func(i int) bool {
		return hall[i].Fitness < entry.Fitness
	})

	// If hall is full and entry would be last (lowest), skip it
	if len(hall) >= hof.maxSize && idx >= hof.maxSize {
		return hall
	}

	hall = append(hall, HallEntry{})
	copy(hall[idx+1:], hall[idx:])
	hall[idx] = entry

	if len(hall) > hof.maxSize {
		hall = hall[:hof.maxSize]
	}

	return hall
}

// Sample selects a genome using tournament selection.
// Returns false if the hall is empty.
func (hof *HallOfFame) Sample() (evolution.Genome, bool) {
	if len(hof.entries) == 0 {
		return evolution.Genome{}, false
	}

	// Tournament selection with k=3
	const tournamentSize = 3
	best := -1
	for i := 0; i < tournamentSize; i++ {
		idx := hof.rng.Intn(len(hof.entries))
		if best < 0 || hof.entries[idx].Fitness > hof.entries[best].Fitness {
			best = idx
		}
	}
	return hof.entries[best].Genome, true
}

// Entries returns a copy of the hall, best first.
func (hof *HallOfFame) Entries() []HallEntry {
	out := make([]HallEntry, len(hof.entries))
	copy(out, hof.entries)
	return out
}

// Size returns the number of entries.
func (hof *HallOfFame) Size() int {
	return len(hof.entries)
}

// TopFitness returns the highest fitness in the hall, or 0 if it is empty.
func (hof *HallOfFame) TopFitness() float64 {
	if len(hof.entries) == 0 {
		return 0
	}
	return hof.entries[0].Fitness
}

// hallEntryJSON is the JSON-serializable representation of a hall entry.
type hallEntryJSON struct {
	GenomeID      uint64  `json:"genome_id"`
	Fitness       float64 `json:"fitness"`
	Wave          int     `json:"wave"`
	Generation    int     `json:"generation"`
	Cause         string  `json:"cause"`
	Health        float64 `json:"health"`
	Speed         float64 `json:"speed"`
	Armor         float64 `json:"armor"`
	Size          float64 `json:"size"`
	PathVariation float64 `json:"path_variation"`
	PathAmplitude float64 `json:"path_amplitude"`
	SpawnSide     string  `json:"spawn_side"`
}

// MarshalJSON serializes the hall of fame to JSON, best first.
func (hof *HallOfFame) MarshalJSON() ([]byte, error) {
	export := make([]hallEntryJSON, len(hof.entries))
	for i, e := range hof.entries {
		p := e.Genome.Decode()
		export[i] = hallEntryJSON{
			GenomeID:      uint64(e.Genome.ID),
			Fitness:       e.Fitness,
			Wave:          e.Wave,
			Generation:    e.Generation,
			Cause:         e.Cause.String(),
			Health:        p.Health,
			Speed:         p.Speed,
			Armor:         p.Armor,
			Size:          p.Size,
			PathVariation: p.PathVariation,
			PathAmplitude: p.PathAmplitude,
			SpawnSide:     p.SpawnSide.String(),
		}
	}
	return json.MarshalIndent(export, "", "  ")
}

// LoadHallOfFameFromFile reads a hall of fame JSON file written by
// WriteHallOfFame. The hall's capacity is at least the number of entries read.
func LoadHallOfFameFromFile(path string, maxSize int, rng *rand.Rand) (*HallOfFame, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading hall of fame: %w", err)
	}

	var raw []hallEntryJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing hall of fame JSON: %w", err)
	}

	hof := NewHallOfFame(max(maxSize, len(raw)), rng)
	for _, ej := range raw {
		var g evolution.Genome
		g.ID = evolution.GenomeID(ej.GenomeID)
		g.Traits[evolution.TraitHealth] = ej.Health
		g.Traits[evolution.TraitSpeed] = ej.Speed
		g.Traits[evolution.TraitArmor] = ej.Armor
		g.Traits[evolution.TraitSize] = ej.Size
		g.Traits[evolution.TraitPathVariation] = ej.PathVariation
		g.Traits[evolution.TraitPathAmplitude] = ej.PathAmplitude
		side, err := evolution.ParseSide(ej.SpawnSide)
		if err != nil {
			return nil, fmt.Errorf("hall of fame genome %d: %w", ej.GenomeID, err)
		}
		g.Traits[evolution.TraitSpawnSide] = float64(side)

		cause, err := evolution.ParseCause(ej.Cause)
		if err != nil {
			return nil, fmt.Errorf("hall of fame genome %d: %w", ej.GenomeID, err)
		}

		hof.Consider(HallEntry{
			Genome:     g,
			Fitness:    ej.Fitness,
			Wave:       ej.Wave,
			Generation: ej.Generation,
			Cause:      cause,
		})
	}

	return hof, nil
}

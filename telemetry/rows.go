package telemetry

import (
	"github.com/pthm-cable/outpost/evolution"
	"github.com/pthm-cable/outpost/systems"
)

// PopulationRow is one genome of the population that fought a wave,
// with its ledger totals.
type PopulationRow struct {
	Wave          int     `csv:"wave"`
	Generation    int     `csv:"generation"`
	GenomeID      uint64  `csv:"genome_id"`
	Health        float64 `csv:"health"`
	Speed         float64 `csv:"speed"`
	Armor         float64 `csv:"armor"`
	Size          float64 `csv:"size"`
	PathVariation float64 `csv:"path_variation"`
	PathAmplitude float64 `csv:"path_amplitude"`
	SpawnSide     string  `csv:"spawn_side"`
	Spawns        int     `csv:"spawns"`
	Outcomes      int     `csv:"outcomes"`
	MeanFitness   float64 `csv:"mean_fitness"`
	BestFitness   float64 `csv:"best_fitness"`
}

// PopulationRows flattens a population and its ledger for population.csv.
func PopulationRows(wave, generation int, pop []evolution.Genome, ledger *evolution.Ledger) []PopulationRow {
	rows := make([]PopulationRow, len(pop))
	for i, g := range pop {
		p := g.Decode()
		rows[i] = PopulationRow{
			Wave:          wave,
			Generation:    generation,
			GenomeID:      uint64(g.ID),
			Health:        p.Health,
			Speed:         p.Speed,
			Armor:         p.Armor,
			Size:          p.Size,
			PathVariation: p.PathVariation,
			PathAmplitude: p.PathAmplitude,
			SpawnSide:     p.SpawnSide.String(),
		}
		if ledger == nil {
			continue
		}
		if e, ok := ledger.Entry(g.ID); ok {
			rows[i].Spawns = e.Spawns
			rows[i].Outcomes = e.Outcomes
			rows[i].MeanFitness = e.MeanFitness()
			rows[i].BestFitness = e.BestFitness
		}
	}
	return rows
}

// TerrainRow is one tile of a generated map.
type TerrainRow struct {
	Map      int    `csv:"map"`
	Col      int    `csv:"col"`
	Row      int    `csv:"row"`
	Kind     string `csv:"kind"`
	Fallback bool   `csv:"fallback"`
}

// TerrainRows flattens a grid in row-major order for terrain.csv.
func TerrainRows(mapIndex int, grid *systems.TerrainGrid) []TerrainRow {
	rows := make([]TerrainRow, 0, grid.Cols()*grid.Rows())
	for r := 0; r < grid.Rows(); r++ {
		for c := 0; c < grid.Cols(); c++ {
			tile := grid.At(c, r)
			rows = append(rows, TerrainRow{
				Map:      mapIndex,
				Col:      c,
				Row:      r,
				Kind:     tile.Kind.String(),
				Fallback: tile.Fallback,
			})
		}
	}
	return rows
}

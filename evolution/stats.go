package evolution

import (
	"log/slog"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// FitnessStats summarises the fitness values evolved in one generation.
type FitnessStats struct {
	Count  int
	Mean   float64
	StdDev float64
	Median float64
	Min    float64
	Max    float64
}

// ComputeFitnessStats summarises a set of fitness values.
func ComputeFitnessStats(values []float64) FitnessStats {
	if len(values) == 0 {
		return FitnessStats{}
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	s := FitnessStats{
		Count:  len(sorted),
		Mean:   stat.Mean(sorted, nil),
		Median: stat.Quantile(0.5, stat.Empirical, sorted, nil),
		Min:    floats.Min(sorted),
		Max:    floats.Max(sorted),
	}
	if len(sorted) > 1 {
		s.StdDev = stat.StdDev(sorted, nil)
	}
	return s
}

// LogValue implements slog.LogValuer.
func (s FitnessStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("count", s.Count),
		slog.Float64("mean", s.Mean),
		slog.Float64("std", s.StdDev),
		slog.Float64("median", s.Median),
		slog.Float64("max", s.Max),
	)
}

// TraitMeans returns the per-trait mean and standard deviation of a population.
func TraitMeans(pop []Genome) (mean, std [NumTraits]float64) {
	if len(pop) == 0 {
		return mean, std
	}
	col := make([]float64, len(pop))
	for t := Trait(0); t < NumTraits; t++ {
		for i, g := range pop {
			col[i] = g.Traits[t]
		}
		if len(col) > 1 {
			mean[t], std[t] = stat.MeanStdDev(col, nil)
		} else {
			mean[t] = col[0]
		}
	}
	return mean, std
}

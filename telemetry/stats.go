package telemetry

import (
	"log/slog"
	"slices"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// WaveStats holds aggregated statistics for one completed wave.
type WaveStats struct {
	Wave        int     `csv:"wave" json:"wave"`
	Generation  int     `csv:"generation" json:"generation"`
	StartTick   int32   `csv:"-" json:"start_tick"`
	EndTick     int32   `csv:"tick" json:"tick"`
	SimTimeSec  float64 `csv:"sim_time" json:"sim_time"`
	DurationSec float64 `csv:"duration" json:"duration"`

	// Alien outcomes
	Spawned     int `csv:"spawned" json:"spawned"`
	Killed      int `csv:"killed" json:"killed"`
	ReachedGoal int `csv:"reached_goal" json:"reached_goal"`
	Despawned   int `csv:"despawned" json:"despawned"`

	// Defense
	Lives    int `csv:"lives" json:"lives"`
	Turrets  int `csv:"turrets" json:"turrets"`
	Shots    int `csv:"shots" json:"shots"`
	Overruns int `csv:"overruns" json:"overruns"`

	// Fitness distribution of the wave's outcomes
	FitnessMean float64 `csv:"fitness_mean" json:"fitness_mean"`
	FitnessStd  float64 `csv:"fitness_std" json:"fitness_std"`
	FitnessP10  float64 `csv:"fitness_p10" json:"fitness_p10"`
	FitnessP50  float64 `csv:"fitness_p50" json:"fitness_p50"`
	FitnessP90  float64 `csv:"fitness_p90" json:"fitness_p90"`
	FitnessMax  float64 `csv:"fitness_max" json:"fitness_max"`
	BestEver    float64 `csv:"best_ever" json:"best_ever"`

	// Map state at wave end
	Territory float64 `csv:"territory" json:"territory"`
	Obstacles int     `csv:"obstacles" json:"obstacles"`

	// Population trait means
	MeanHealth        float64 `csv:"mean_health" json:"mean_health"`
	MeanSpeed         float64 `csv:"mean_speed" json:"mean_speed"`
	MeanArmor         float64 `csv:"mean_armor" json:"mean_armor"`
	MeanSize          float64 `csv:"mean_size" json:"mean_size"`
	MeanPathVariation float64 `csv:"mean_path_variation" json:"mean_path_variation"`
	MeanPathAmplitude float64 `csv:"mean_path_amplitude" json:"mean_path_amplitude"`
}

// Summary is the distribution of a sample.
type Summary struct {
	Count         int
	Mean, Std     float64
	P10, P50, P90 float64
	Min, Max      float64
}

// Summarize computes mean, spread and empirical percentiles of values.
// Std is the sample standard deviation and is 0 for fewer than two values.
func Summarize(values []float64) Summary {
	n := len(values)
	if n == 0 {
		return Summary{}
	}
	sorted := slices.Clone(values)
	slices.Sort(sorted)

	s := Summary{
		Count: n,
		Mean:  stat.Mean(sorted, nil),
		P10:   stat.Quantile(0.10, stat.Empirical, sorted, nil),
		P50:   stat.Quantile(0.50, stat.Empirical, sorted, nil),
		P90:   stat.Quantile(0.90, stat.Empirical, sorted, nil),
		Min:   floats.Min(sorted),
		Max:   floats.Max(sorted),
	}
	if n > 1 {
		s.Std = stat.StdDev(sorted, nil)
	}
	return s
}

// LogValue implements slog.LogValuer for structured logging.
func (s WaveStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("wave", s.Wave),
		slog.Int("generation", s.Generation),
		slog.Int("tick", int(s.EndTick)),
		slog.Float64("sim_time", s.SimTimeSec),
		slog.Float64("duration", s.DurationSec),
		slog.Int("spawned", s.Spawned),
		slog.Int("killed", s.Killed),
		slog.Int("reached_goal", s.ReachedGoal),
		slog.Int("despawned", s.Despawned),
		slog.Int("lives", s.Lives),
		slog.Int("turrets", s.Turrets),
		slog.Int("shots", s.Shots),
		slog.Int("overruns", s.Overruns),
		slog.Float64("fitness_mean", s.FitnessMean),
		slog.Float64("fitness_std", s.FitnessStd),
		slog.Float64("fitness_p50", s.FitnessP50),
		slog.Float64("fitness_max", s.FitnessMax),
		slog.Float64("best_ever", s.BestEver),
		slog.Float64("territory", s.Territory),
		slog.Int("obstacles", s.Obstacles),
		slog.Float64("mean_health", s.MeanHealth),
		slog.Float64("mean_speed", s.MeanSpeed),
		slog.Float64("mean_armor", s.MeanArmor),
		slog.Float64("mean_size", s.MeanSize),
	)
}

// LogStats logs the wave stats using slog.
func (s WaveStats) LogStats() {
	slog.Info("wave", "stats", s)
}

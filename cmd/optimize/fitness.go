package main

import (
	"log/slog"
	"math"
	"sync"

	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/outpost/config"
	"github.com/pthm-cable/outpost/game"
	"github.com/pthm-cable/outpost/telemetry"
)

// Balance targets. A well tuned defense survives every wave but loses
// most of its lives doing so, and kills most but not all aliens.
const (
	targetLivesLeft = 0.3
	targetKillFrac  = 0.8

	weightSurvival = 2.0
	weightLives    = 1.0
	weightKills    = 0.5
	weightSpread   = 0.25 // Penalises configs that only balance on some seeds
)

// FitnessEvaluator runs headless games and scores how balanced they are.
type FitnessEvaluator struct {
	params     *ParamVector
	waves      int
	maxTicks   int32
	seeds      []int64
	baseConfig *config.Config

	// Best run tracking
	mu             sync.Mutex
	bestFitness    float64
	bestHallOfFame *telemetry.HallOfFame
	lastBalance    runScore
}

// NewFitnessEvaluator creates a new evaluator.
func NewFitnessEvaluator(params *ParamVector, waves int, maxTicks int32, seeds []int64, baseCfg *config.Config) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:      params,
		waves:       waves,
		maxTicks:    maxTicks,
		seeds:       seeds,
		baseConfig:  baseCfg,
		bestFitness: math.Inf(1),
	}
}

// BestHallOfFame returns the hall of fame from the best evaluation.
func (fe *FitnessEvaluator) BestHallOfFame() *telemetry.HallOfFame {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.bestHallOfFame
}

// LastScore returns the mean per-seed score of the most recent evaluation.
func (fe *FitnessEvaluator) LastScore() runScore {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.lastBalance
}

// runResult holds the results from a single game.
type runResult struct {
	waves      []telemetry.WaveStats
	won        bool
	livesLeft  float64 // Fraction of starting lives
	hallOfFame *telemetry.HallOfFame
}

// runScore is the balance measured on one game.
type runScore struct {
	Survived  float64 // Fraction of waves survived
	LivesLeft float64
	KillFrac  float64
}

// Evaluate computes fitness for a parameter vector (lower = better).
func (fe *FitnessEvaluator) Evaluate(x []float64) float64 {
	cfg := fe.baseConfig.Clone()
	fe.params.ApplyToConfig(cfg, x)
	cfg.Waves.MaxWaves = fe.waves
	if err := cfg.Refresh(); err != nil {
		slog.Warn("rejected parameter vector", "error", err)
		return math.Inf(1)
	}

	// Seeds run in parallel, each with its own game and config copy
	results := make([]*runResult, len(fe.seeds))
	var wg sync.WaitGroup
	for i, seed := range fe.seeds {
		wg.Add(1)
		go func(idx int, s int64) {
			defer wg.Done()
			results[idx] = fe.runGame(cfg.Clone(), s)
		}(i, seed)
	}
	wg.Wait()

	losses := make([]float64, 0, len(results))
	var mean runScore
	var bestLoss = math.Inf(1)
	var bestHall *telemetry.HallOfFame
	for _, r := range results {
		if r == nil {
			return math.Inf(1)
		}
		score := fe.score(r)
		loss := score.loss()
		losses = append(losses, loss)
		mean.Survived += score.Survived
		mean.LivesLeft += score.LivesLeft
		mean.KillFrac += score.KillFrac
		if loss < bestLoss {
			bestLoss = loss
			bestHall = r.hallOfFame
		}
	}
	n := float64(len(results))
	mean.Survived /= n
	mean.LivesLeft /= n
	mean.KillFrac /= n

	fitness := stat.Mean(losses, nil)
	if len(losses) > 1 {
		fitness += weightSpread * stat.StdDev(losses, nil)
	}

	fe.mu.Lock()
	if fitness < fe.bestFitness {
		fe.bestFitness = fitness
		fe.bestHallOfFame = bestHall
	}
	fe.lastBalance = mean
	fe.mu.Unlock()

	return fitness
}

// runGame plays one headless game to victory, defeat or the tick cap.
func (fe *FitnessEvaluator) runGame(cfg *config.Config, seed int64) *runResult {
	result := &runResult{}

	g, err := game.NewGameWithOptions(game.Options{
		Seed:           seed,
		Config:         cfg,
		Headless:       true,
		StepsPerUpdate: 1,
		AutoWaves:      true,
		OnWave: func(stats telemetry.WaveStats) {
			result.waves = append(result.waves, stats)
		},
	})
	if err != nil {
		slog.Error("failed to create game", "seed", seed, "error", err)
		return nil
	}
	defer g.Unload()

	for !g.Over() && g.Tick() < fe.maxTicks {
		g.UpdateHeadless()
	}

	result.won = g.Won()
	result.livesLeft = float64(g.Lives()) / float64(cfg.Defense.Lives)
	result.hallOfFame = g.HallOfFame()
	return result
}

// score measures one game against the balance targets.
func (fe *FitnessEvaluator) score(r *runResult) runScore {
	var spawned, killed int
	for _, w := range r.waves {
		spawned += w.Spawned
		killed += w.Killed
	}

	s := runScore{LivesLeft: r.livesLeft}
	if r.won {
		s.Survived = 1
	} else if fe.waves > 0 {
		// The wave that broke the base does not count
		s.Survived = clamp01(float64(len(r.waves)-1) / float64(fe.waves))
	}
	if spawned > 0 {
		s.KillFrac = float64(killed) / float64(spawned)
	}
	return s
}

// loss is the weighted squared distance from the balance targets.
func (s runScore) loss() float64 {
	survival := 1 - s.Survived
	lives := s.LivesLeft - targetLivesLeft
	kills := s.KillFrac - targetKillFrac
	return weightSurvival*survival*survival + weightLives*lives*lives + weightKills*kills*kills
}

// clamp01 clamps x to [0, 1].
func clamp01(x float64) float64 {
	return max(0, min(1, x))
}

package telemetry

import (
	"log/slog"
	"time"
)

// Phase is a timed section of a simulation tick.
type Phase uint8

const (
	PhaseSpawn Phase = iota
	PhaseMovement
	PhaseDefense
	PhaseTerritory
	PhaseCleanup
	PhaseWaveEnd // Evolution and wave telemetry
	NumPhases
)

var phaseNames = [NumPhases]string{"spawn", "movement", "defense", "territory", "cleanup", "wave_end"}

func (p Phase) String() string {
	if p < NumPhases {
		return phaseNames[p]
	}
	return "unknown"
}

type tickSample struct {
	total  time.Duration
	phases [NumPhases]time.Duration
}

// PerfCollector times tick phases over a rolling window of ticks.
type PerfCollector struct {
	window []tickSample
	next   int
	filled int

	current    tickSample
	tickStart  time.Time
	phaseStart time.Time
	phase      Phase
	inPhase    bool
}

// NewPerfCollector creates a collector averaging over windowSize ticks.
func NewPerfCollector(windowSize int) *PerfCollector {
	if windowSize < 1 {
		windowSize = 60
	}
	return &PerfCollector{window: make([]tickSample, windowSize)}
}

// StartTick begins timing a new tick.
func (p *PerfCollector) StartTick() {
	p.tickStart = time.Now()
	p.current = tickSample{}
	p.inPhase = false
}

// StartPhase closes the running phase, if any, and starts timing phase.
func (p *PerfCollector) StartPhase(phase Phase) {
	now := time.Now()
	p.closePhase(now)
	p.phase = phase
	p.phaseStart = now
	p.inPhase = true
}

// EndTick closes the tick and stores it in the window.
func (p *PerfCollector) EndTick() {
	now := time.Now()
	p.closePhase(now)
	p.inPhase = false
	p.current.total = now.Sub(p.tickStart)

	p.window[p.next] = p.current
	p.next = (p.next + 1) % len(p.window)
	p.filled = min(p.filled+1, len(p.window))
}

func (p *PerfCollector) closePhase(now time.Time) {
	if p.inPhase && p.phase < NumPhases {
		p.current.phases[p.phase] += now.Sub(p.phaseStart)
	}
}

// PerfStats holds tick timings averaged over the window.
type PerfStats struct {
	AvgTick        time.Duration
	MaxTick        time.Duration
	TicksPerSecond float64
	PhaseAvg       [NumPhases]time.Duration
	PhasePct       [NumPhases]float64 // Share of the average tick
}

// Stats averages the ticks in the window. Zero before the first tick.
func (p *PerfCollector) Stats() PerfStats {
	var s PerfStats
	if p.filled == 0 {
		return s
	}

	var total time.Duration
	var phaseSum [NumPhases]time.Duration
	for _, sample := range p.window[:p.filled] {
		total += sample.total
		s.MaxTick = max(s.MaxTick, sample.total)
		for i, d := range sample.phases {
			phaseSum[i] += d
		}
	}

	n := time.Duration(p.filled)
	s.AvgTick = total / n
	for i := range phaseSum {
		s.PhaseAvg[i] = phaseSum[i] / n
		if s.AvgTick > 0 {
			s.PhasePct[i] = float64(s.PhaseAvg[i]) / float64(s.AvgTick) * 100
		}
	}
	if s.AvgTick > 0 {
		s.TicksPerSecond = float64(time.Second) / float64(s.AvgTick)
	}
	return s
}

// LogStats logs the averages, skipping phases under 0.1% of a tick.
func (s PerfStats) LogStats() {
	attrs := []any{
		"avg_tick_us", s.AvgTick.Microseconds(),
		"max_tick_us", s.MaxTick.Microseconds(),
		"ticks_per_sec", int(s.TicksPerSecond),
	}
	for i, pct := range s.PhasePct {
		if pct > 0.1 {
			attrs = append(attrs, Phase(i).String()+"_pct", int(pct*10)/10.0)
		}
	}
	slog.Info("perf", attrs...)
}

// PerfRow is one perf.csv record.
type PerfRow struct {
	Tick         int32   `csv:"tick"`
	AvgTickUS    int64   `csv:"avg_tick_us"`
	MaxTickUS    int64   `csv:"max_tick_us"`
	TicksPerSec  float64 `csv:"ticks_per_sec"`
	SpawnPct     float64 `csv:"spawn_pct"`
	MovementPct  float64 `csv:"movement_pct"`
	DefensePct   float64 `csv:"defense_pct"`
	TerritoryPct float64 `csv:"territory_pct"`
	CleanupPct   float64 `csv:"cleanup_pct"`
	WaveEndPct   float64 `csv:"wave_end_pct"`
}

// Row flattens the stats for perf.csv.
func (s PerfStats) Row(tick int32) PerfRow {
	return PerfRow{
		Tick:         tick,
		AvgTickUS:    s.AvgTick.Microseconds(),
		MaxTickUS:    s.MaxTick.Microseconds(),
		TicksPerSec:  s.TicksPerSecond,
		SpawnPct:     s.PhasePct[PhaseSpawn],
		MovementPct:  s.PhasePct[PhaseMovement],
		DefensePct:   s.PhasePct[PhaseDefense],
		TerritoryPct: s.PhasePct[PhaseTerritory],
		CleanupPct:   s.PhasePct[PhaseCleanup],
		WaveEndPct:   s.PhasePct[PhaseWaveEnd],
	}
}

package systems

import "github.com/pthm-cable/outpost/config"

// WavePhase is the stage of the wave lifecycle.
type WavePhase uint8

const (
	WaveIdle       WavePhase = iota // Between waves
	WaveSpawning                    // Spawns still due
	WaveAllSpawned                  // Quota reached, waiting for aliens to clear
	WaveEvolving                    // Population is being bred
)

func (p WavePhase) String() string {
	switch p {
	case WaveIdle:
		return "idle"
	case WaveSpawning:
		return "spawning"
	case WaveAllSpawned:
		return "all_spawned"
	case WaveEvolving:
		return "evolving"
	}
	return "unknown"
}

// WaveState paces spawns from accumulated simulation time.
// Idle -> Spawning -> AllSpawned -> Evolving -> Idle.
type WaveState struct {
	Number  int
	Phase   WavePhase
	Quota   int
	Spawned int

	interval      float64
	baseCount     int
	perWave       int
	liveThreshold int
	maxSeconds    float64

	sinceSpawn float64 // Seconds since the last spawn
	elapsed    float64 // Seconds since Start
}

// NewWaveState creates an idle wave state.
func NewWaveState(cfg config.WavesConfig) *WaveState {
	return &WaveState{
		interval:      cfg.SpawnInterval,
		baseCount:     cfg.BaseCount,
		perWave:       cfg.PerWave,
		liveThreshold: cfg.EvolveLiveThreshold,
		maxSeconds:    cfg.MaxWaveSeconds,
	}
}

// QuotaFor returns the spawn count for a wave number.
func (w *WaveState) QuotaFor(number int) int {
	return w.baseCount + w.perWave*number
}

// Start begins a wave. The first spawn is due on the next Advance.
func (w *WaveState) Start(number, quota int) {
	w.Number = number
	w.Quota = max(0, quota)
	w.Spawned = 0
	w.elapsed = 0
	w.sinceSpawn = w.interval
	w.Phase = WaveSpawning
	if w.Quota == 0 {
		w.Phase = WaveAllSpawned
	}
}

// Advance accumulates dt and returns how many spawns are due this tick.
func (w *WaveState) Advance(dt float64) int {
	switch w.Phase {
	case WaveSpawning:
	case WaveAllSpawned:
		w.elapsed += dt
		return 0
	default:
		return 0
	}

	w.elapsed += dt
	w.sinceSpawn += dt

	due := 0
	for w.sinceSpawn >= w.interval && w.Spawned < w.Quota {
		w.sinceSpawn -= w.interval
		w.Spawned++
		due++
	}
	if w.Spawned >= w.Quota {
		w.Phase = WaveAllSpawned
	}
	return due
}

// Remaining returns how many spawns are still pending.
func (w *WaveState) Remaining() int {
	return w.Quota - w.Spawned
}

// Elapsed returns seconds since the wave started.
func (w *WaveState) Elapsed() float64 {
	return w.elapsed
}

// Active reports whether the wave is spawning or waiting for aliens to clear.
func (w *WaveState) Active() bool {
	return w.Phase == WaveSpawning || w.Phase == WaveAllSpawned
}

// TimedOut reports whether an active wave has run past its time limit.
func (w *WaveState) TimedOut() bool {
	return w.Active() && w.maxSeconds > 0 && w.elapsed >= w.maxSeconds
}

// Expire cancels pending spawns so the wave can end.
func (w *WaveState) Expire() {
	if !w.Active() {
		return
	}
	w.Quota = w.Spawned
	w.Phase = WaveAllSpawned
}

// ReadyToEvolve reports whether every spawn is out and few enough aliens remain.
func (w *WaveState) ReadyToEvolve(live int) bool {
	return w.Phase == WaveAllSpawned && live <= w.liveThreshold
}

// BeginEvolve moves AllSpawned to Evolving.
func (w *WaveState) BeginEvolve() {
	if w.Phase == WaveAllSpawned {
		w.Phase = WaveEvolving
	}
}

// Finish returns to Idle after evolving.
func (w *WaveState) Finish() {
	if w.Phase == WaveEvolving {
		w.Phase = WaveIdle
	}
}

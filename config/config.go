// Package config provides configuration loading and access for the game core.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all game configuration parameters.
type Config struct {
	Screen    ScreenConfig    `yaml:"screen"`
	Physics   PhysicsConfig   `yaml:"physics"`
	Terrain   TerrainConfig   `yaml:"terrain"`
	Evolution EvolutionConfig `yaml:"evolution"`
	Traits    TraitsConfig    `yaml:"traits"`
	Fitness   FitnessConfig   `yaml:"fitness"`
	Waves     WavesConfig     `yaml:"waves"`
	Alien     AlienConfig     `yaml:"alien"`
	Defense   DefenseConfig   `yaml:"defense"`
	Territory TerritoryConfig `yaml:"territory"`
	Telemetry TelemetryConfig `yaml:"telemetry"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ScreenConfig holds the canvas size. The terrain grid is sized from it.
type ScreenConfig struct {
	Width     int `yaml:"width"`
	Height    int `yaml:"height"`
	TargetFPS int `yaml:"target_fps"`
}

// PhysicsConfig holds simulation step parameters.
type PhysicsConfig struct {
	DT float64 `yaml:"dt"` // Seconds per tick
}

// TerrainConfig holds the tile collapse generator parameters.
type TerrainConfig struct {
	CellSize     float64             `yaml:"cell_size"`
	BudgetFactor int                 `yaml:"budget_factor"` // Iteration budget = factor * cols * rows
	DefaultKind  string              `yaml:"default_kind"`  // Contradiction fallback, must be passable
	Kinds        []TerrainKindConfig `yaml:"kinds"`
}

// TerrainKindConfig describes one terrain kind in the weight and adjacency tables.
type TerrainKindConfig struct {
	Name     string   `yaml:"name"`
	Weight   int      `yaml:"weight"` // Duplicate entries in the initial candidate list
	Passable bool     `yaml:"passable"`
	Adjacent []string `yaml:"adjacent"` // Kinds allowed as 4-neighbours
}

// EvolutionConfig holds genetic algorithm parameters.
type EvolutionConfig struct {
	PopulationSize        int     `yaml:"population_size"`
	Policy                string  `yaml:"policy"`    // "elitism" or "mean_drift"
	Crossover             string  `yaml:"crossover"` // "uniform" or "blend"
	CrossoverChance       float64 `yaml:"crossover_chance"`
	SurvivorFraction      float64 `yaml:"survivor_fraction"`
	SurvivorThreshold     float64 `yaml:"survivor_threshold"` // 0 = rank-based selection only
	FallbackFraction      float64 `yaml:"fallback_fraction"`  // Used when nothing passes the threshold
	MutationRate          float64 `yaml:"mutation_rate"`
	CrossoverMutationRate float64 `yaml:"crossover_mutation_rate"`
	DriftMutationRate     float64 `yaml:"drift_mutation_rate"`
	DriftMagnitude        float64 `yaml:"drift_magnitude"` // Perturbation multiplier for mean drift
}

// TraitRange holds the clamp range, initial sampling range and
// mutation perturbation bound for a single heritable trait.
type TraitRange struct {
	Min     float64 `yaml:"min"`
	Max     float64 `yaml:"max"`
	InitMin float64 `yaml:"init_min"`
	InitMax float64 `yaml:"init_max"`
	Perturb float64 `yaml:"perturb"`
}

// TraitsConfig is the fixed genome schema. One entry per trait.
type TraitsConfig struct {
	Health        TraitRange `yaml:"health"`
	Speed         TraitRange `yaml:"speed"`
	Armor         TraitRange `yaml:"armor"`
	Size          TraitRange `yaml:"size"`
	PathVariation TraitRange `yaml:"path_variation"`
	PathAmplitude TraitRange `yaml:"path_amplitude"`
	SpawnSide     TraitRange `yaml:"spawn_side"`
}

// FitnessConfig holds the weights folded into a single fitness scalar.
type FitnessConfig struct {
	DistanceWeight  float64 `yaml:"distance_weight"`  // Per pixel travelled
	TimeWeight      float64 `yaml:"time_weight"`      // Per second alive
	TerritoryWeight float64 `yaml:"territory_weight"` // Per fraction of the map captured
	GoalBonus       float64 `yaml:"goal_bonus"`       // Flat bonus for reaching the base
}

// WavesConfig holds wave pacing parameters.
type WavesConfig struct {
	BaseCount           int     `yaml:"base_count"`
	PerWave             int     `yaml:"per_wave"`
	SpawnInterval       float64 `yaml:"spawn_interval"`        // Seconds between spawns
	EvolveLiveThreshold int     `yaml:"evolve_live_threshold"` // Live aliens tolerated before evolving
	MaxWaveSeconds      float64 `yaml:"max_wave_seconds"`      // Stragglers despawn after this
	BreakSeconds        float64 `yaml:"break_seconds"`         // Pause between waves when auto-starting
	MaxWaves            int     `yaml:"max_waves"`             // Surviving this many waves wins
}

// AlienConfig holds movement parameters for live alien instances.
type AlienConfig struct {
	SpeedScale     float64 `yaml:"speed_scale"` // Genome speed is px/frame; scaled to px/s
	GoalRadius     float64 `yaml:"goal_radius"`
	WaypointRadius float64 `yaml:"waypoint_radius"`
	SpawnMargin    float64 `yaml:"spawn_margin"`
	SpawnAttempts  int     `yaml:"spawn_attempts"`
	PathSegments   int     `yaml:"path_segments"`
}

// TurretKindConfig holds stats for one turret kind.
type TurretKindConfig struct {
	Count    int     `yaml:"count"`
	Range    float64 `yaml:"range"`
	Damage   float64 `yaml:"damage"`
	Interval float64 `yaml:"interval"` // Seconds between shots
}

// DefenseConfig holds the turret table and base parameters.
type DefenseConfig struct {
	Lives           int              `yaml:"lives"`
	PlacementRing   float64          `yaml:"placement_ring"`   // Turrets are placed within this radius of the base
	OverrunFraction float64          `yaml:"overrun_fraction"` // Captured share of the 3x3 around a turret that destroys it; 0 disables
	Laser           TurretKindConfig `yaml:"laser"`
	Plasma          TurretKindConfig `yaml:"plasma"`
	Quantum         TurretKindConfig `yaml:"quantum"`
}

// TerritoryConfig holds alien territory capture parameters.
type TerritoryConfig struct {
	CaptureChance float64 `yaml:"capture_chance"` // Per-tick chance an alien claims the cell it stands on
	DecayInterval float64 `yaml:"decay_interval"` // Seconds between decay passes
	DecayChance   float64 `yaml:"decay_chance"`   // Per-cell chance to revert to neutral
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	HallOfFameSize int `yaml:"hall_of_fame_size"`
	HubBuffer      int `yaml:"hub_buffer"`
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	DT32     float32 // Physics.DT as float32
	Cols     int     // floor(Screen.Width / Terrain.CellSize)
	Rows     int     // floor(Screen.Height / Terrain.CellSize)
	ScreenW  float32
	ScreenH  float32
	BaseX    float32 // Defended base, map centre
	BaseY    float32
	CellSize float32
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Defaults returns a fresh copy of the embedded defaults.
func Defaults() *Config {
	cfg, err := Load("")
	if err != nil {
		panic(fmt.Sprintf("config: embedded defaults are invalid: %v", err))
	}
	return cfg
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.Refresh(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Refresh validates the config and recomputes derived values.
// Call it after mutating a loaded Config in place.
func (c *Config) Refresh() error {
	if err := c.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	c.computeDerived()
	return nil
}

// Clone returns a deep copy of the config.
func (c *Config) Clone() *Config {
	out := *c
	out.Terrain.Kinds = make([]TerrainKindConfig, len(c.Terrain.Kinds))
	for i, k := range c.Terrain.Kinds {
		k.Adjacent = append([]string(nil), k.Adjacent...)
		out.Terrain.Kinds[i] = k
	}
	return &out
}

// Validate reports every configuration problem found.
// Degenerate sizes are programming errors and are rejected here rather than
// limped along with at runtime.
func (c *Config) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf(format, args...))
		}
	}

	check(c.Screen.Width > 0 && c.Screen.Height > 0, "screen: size must be positive, got %dx%d", c.Screen.Width, c.Screen.Height)
	check(c.Physics.DT > 0, "physics.dt must be positive, got %v", c.Physics.DT)

	check(c.Terrain.CellSize > 0, "terrain.cell_size must be positive, got %v", c.Terrain.CellSize)
	if c.Terrain.CellSize > 0 {
		cols := int(float64(c.Screen.Width) / c.Terrain.CellSize)
		rows := int(float64(c.Screen.Height) / c.Terrain.CellSize)
		check(cols >= 1 && rows >= 1, "terrain: grid would be %dx%d", cols, rows)
	}
	check(c.Terrain.BudgetFactor >= 1, "terrain.budget_factor must be >= 1, got %d", c.Terrain.BudgetFactor)
	check(len(c.Terrain.Kinds) > 0, "terrain.kinds must not be empty")
	names := make(map[string]bool, len(c.Terrain.Kinds))
	for _, k := range c.Terrain.Kinds {
		check(!names[k.Name], "terrain.kinds: duplicate kind %q", k.Name)
		names[k.Name] = true
		check(k.Weight > 0, "terrain.kinds[%s].weight must be positive, got %d", k.Name, k.Weight)
	}
	for _, k := range c.Terrain.Kinds {
		for _, adj := range k.Adjacent {
			check(names[adj], "terrain.kinds[%s].adjacent: unknown kind %q", k.Name, adj)
		}
	}
	check(names[c.Terrain.DefaultKind], "terrain.default_kind %q is not a configured kind", c.Terrain.DefaultKind)

	ev := c.Evolution
	check(ev.PopulationSize > 0, "evolution.population_size must be positive, got %d", ev.PopulationSize)
	check(ev.Policy == "elitism" || ev.Policy == "mean_drift", "evolution.policy must be elitism or mean_drift, got %q", ev.Policy)
	check(ev.Crossover == "uniform" || ev.Crossover == "blend", "evolution.crossover must be uniform or blend, got %q", ev.Crossover)
	check(inUnit(ev.CrossoverChance), "evolution.crossover_chance must be in [0,1], got %v", ev.CrossoverChance)
	check(ev.SurvivorFraction > 0 && ev.SurvivorFraction <= 1, "evolution.survivor_fraction must be in (0,1], got %v", ev.SurvivorFraction)
	check(ev.FallbackFraction > 0 && ev.FallbackFraction <= 1, "evolution.fallback_fraction must be in (0,1], got %v", ev.FallbackFraction)
	check(inUnit(ev.MutationRate), "evolution.mutation_rate must be in [0,1], got %v", ev.MutationRate)
	check(inUnit(ev.CrossoverMutationRate), "evolution.crossover_mutation_rate must be in [0,1], got %v", ev.CrossoverMutationRate)
	check(inUnit(ev.DriftMutationRate), "evolution.drift_mutation_rate must be in [0,1], got %v", ev.DriftMutationRate)
	check(ev.DriftMagnitude >= 0, "evolution.drift_magnitude must be >= 0, got %v", ev.DriftMagnitude)

	for name, tr := range c.Traits.ByName() {
		check(tr.Min <= tr.Max, "traits.%s: min %v > max %v", name, tr.Min, tr.Max)
		check(tr.InitMin <= tr.InitMax, "traits.%s: init_min %v > init_max %v", name, tr.InitMin, tr.InitMax)
		check(tr.Perturb >= 0, "traits.%s: perturb must be >= 0, got %v", name, tr.Perturb)
	}
	side := c.Traits.SpawnSide
	check(side.Min >= 0 && side.Max <= 3 && side.InitMin >= 0 && side.InitMax <= 3,
		"traits.spawn_side: ranges must lie within [0,3] (top, right, bottom, left), got [%v,%v] init [%v,%v]",
		side.Min, side.Max, side.InitMin, side.InitMax)

	check(c.Waves.BaseCount >= 0 && c.Waves.PerWave >= 0, "waves: counts must be >= 0")
	check(c.Waves.BaseCount+c.Waves.PerWave > 0, "waves: every wave would be empty")
	check(c.Waves.SpawnInterval > 0, "waves.spawn_interval must be positive, got %v", c.Waves.SpawnInterval)
	check(c.Waves.MaxWaveSeconds > 0, "waves.max_wave_seconds must be positive, got %v", c.Waves.MaxWaveSeconds)

	check(c.Alien.SpawnAttempts > 0, "alien.spawn_attempts must be positive, got %d", c.Alien.SpawnAttempts)
	check(c.Alien.PathSegments > 0, "alien.path_segments must be positive, got %d", c.Alien.PathSegments)
	check(c.Defense.Lives > 0, "defense.lives must be positive, got %d", c.Defense.Lives)
	check(inUnit(c.Defense.OverrunFraction), "defense.overrun_fraction must be in [0,1], got %v", c.Defense.OverrunFraction)
	check(inUnit(c.Territory.CaptureChance), "territory.capture_chance must be in [0,1], got %v", c.Territory.CaptureChance)
	check(inUnit(c.Territory.DecayChance), "territory.decay_chance must be in [0,1], got %v", c.Territory.DecayChance)

	return errors.Join(errs...)
}

func inUnit(v float64) bool {
	return v >= 0 && v <= 1
}

// ByName returns the trait ranges keyed by their YAML names.
func (t TraitsConfig) ByName() map[string]TraitRange {
	return map[string]TraitRange{
		"health":         t.Health,
		"speed":          t.Speed,
		"armor":          t.Armor,
		"size":           t.Size,
		"path_variation": t.PathVariation,
		"path_amplitude": t.PathAmplitude,
		"spawn_side":     t.SpawnSide,
	}
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	c.Derived.DT32 = float32(c.Physics.DT)
	c.Derived.CellSize = float32(c.Terrain.CellSize)
	c.Derived.Cols = int(float64(c.Screen.Width) / c.Terrain.CellSize)
	c.Derived.Rows = int(float64(c.Screen.Height) / c.Terrain.CellSize)
	c.Derived.ScreenW = float32(c.Screen.Width)
	c.Derived.ScreenH = float32(c.Screen.Height)
	c.Derived.BaseX = c.Derived.ScreenW / 2
	c.Derived.BaseY = c.Derived.ScreenH / 2
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

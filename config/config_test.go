package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\") failed: %v", err)
	}

	if cfg.Evolution.PopulationSize != 20 {
		t.Errorf("population_size = %d, want 20", cfg.Evolution.PopulationSize)
	}
	if cfg.Derived.Cols != 60 || cfg.Derived.Rows != 40 {
		t.Errorf("grid = %dx%d, want 60x40", cfg.Derived.Cols, cfg.Derived.Rows)
	}
	if cfg.Derived.BaseX != 600 || cfg.Derived.BaseY != 400 {
		t.Errorf("base = (%v, %v), want (600, 400)", cfg.Derived.BaseX, cfg.Derived.BaseY)
	}
	if len(cfg.Terrain.Kinds) != 2 {
		t.Errorf("expected 2 terrain kinds, got %d", len(cfg.Terrain.Kinds))
	}
}

func TestLoadOverlay(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	overlay := "evolution:\n  population_size: 50\n  policy: mean_drift\n"
	if err := os.WriteFile(path, []byte(overlay), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Evolution.PopulationSize != 50 {
		t.Errorf("population_size = %d, want 50", cfg.Evolution.PopulationSize)
	}
	if cfg.Evolution.Policy != "mean_drift" {
		t.Errorf("policy = %q, want mean_drift", cfg.Evolution.Policy)
	}
	// Untouched fields keep their defaults
	if cfg.Evolution.CrossoverChance != 0.7 {
		t.Errorf("crossover_chance = %v, want default 0.7", cfg.Evolution.CrossoverChance)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestValidateRejectsDegenerateConfig(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
		want   string
	}{
		{"zero population", func(c *Config) { c.Evolution.PopulationSize = 0 }, "population_size"},
		{"negative population", func(c *Config) { c.Evolution.PopulationSize = -3 }, "population_size"},
		{"zero cell size", func(c *Config) { c.Terrain.CellSize = 0 }, "cell_size"},
		{"cell larger than screen", func(c *Config) { c.Terrain.CellSize = 5000 }, "grid would be"},
		{"unknown policy", func(c *Config) { c.Evolution.Policy = "roulette" }, "policy"},
		{"unknown default kind", func(c *Config) { c.Terrain.DefaultKind = "lava" }, "default_kind"},
		{"unknown adjacent kind", func(c *Config) { c.Terrain.Kinds[0].Adjacent = []string{"lava"} }, "unknown kind"},
		{"zero weight", func(c *Config) { c.Terrain.Kinds[1].Weight = 0 }, "weight"},
		{"inverted trait", func(c *Config) { c.Traits.Speed.Min = 10 }, "traits.speed"},
		{"spawn side above left", func(c *Config) { c.Traits.SpawnSide.Max = 5 }, "traits.spawn_side"},
		{"negative spawn side", func(c *Config) { c.Traits.SpawnSide.Min = -1 }, "traits.spawn_side"},
		{"zero spawn interval", func(c *Config) { c.Waves.SpawnInterval = 0 }, "spawn_interval"},
		{"survivor fraction above one", func(c *Config) { c.Evolution.SurvivorFraction = 1.5 }, "survivor_fraction"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.mutate(cfg)
			err := cfg.Refresh()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestCloneIsDeep(t *testing.T) {
	cfg := Defaults()
	clone := cfg.Clone()
	clone.Terrain.Kinds[0].Adjacent[0] = "rock"
	clone.Evolution.PopulationSize = 99

	if cfg.Terrain.Kinds[0].Adjacent[0] != "ground" {
		t.Error("clone shares adjacency slice with original")
	}
	if cfg.Evolution.PopulationSize == 99 {
		t.Error("clone shares evolution config with original")
	}
}

func TestWriteYAMLRoundTrip(t *testing.T) {
	cfg := Defaults()
	cfg.Waves.MaxWaves = 7
	path := filepath.Join(t.TempDir(), "out.yaml")
	if err := cfg.WriteYAML(path); err != nil {
		t.Fatalf("WriteYAML failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.Waves.MaxWaves != 7 {
		t.Errorf("max_waves = %d, want 7", loaded.Waves.MaxWaves)
	}
}

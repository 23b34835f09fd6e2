// Package main provides CMA-ES tuning of turret and territory parameters
// so that evolving waves neither break the base early nor fail to threaten it.
package main

import (
	"github.com/pthm-cable/outpost/config"
)

// ParamSpec defines a single optimizable parameter.
type ParamSpec struct {
	Name    string  // Human-readable name
	Path    string  // Config path for logging
	Min     float64 // Lower bound
	Max     float64 // Upper bound
	Default float64 // Default value
}

// ParamVector holds the set of all optimizable parameters.
type ParamVector struct {
	Specs []ParamSpec
}

// NewParamVector creates the standard set of optimizable parameters.
func NewParamVector() *ParamVector {
	return &ParamVector{
		Specs: []ParamSpec{
			// Turrets (counts stay fixed; placement is discrete)
			{Name: "laser_range", Path: "defense.laser.range", Min: 60, Max: 200, Default: 120},
			{Name: "laser_damage", Path: "defense.laser.damage", Min: 5, Max: 60, Default: 25},
			{Name: "laser_interval", Path: "defense.laser.interval", Min: 0.05, Max: 1.0, Default: 0.2},
			{Name: "plasma_range", Path: "defense.plasma.range", Min: 50, Max: 180, Default: 100},
			{Name: "plasma_damage", Path: "defense.plasma.damage", Min: 10, Max: 100, Default: 40},
			{Name: "plasma_interval", Path: "defense.plasma.interval", Min: 0.1, Max: 1.5, Default: 0.4},
			{Name: "quantum_range", Path: "defense.quantum.range", Min: 40, Max: 160, Default: 80},
			{Name: "quantum_damage", Path: "defense.quantum.damage", Min: 20, Max: 150, Default: 60},
			{Name: "quantum_interval", Path: "defense.quantum.interval", Min: 0.2, Max: 2.0, Default: 0.6},
			{Name: "placement_ring", Path: "defense.placement_ring", Min: 60, Max: 260, Default: 160},
			{Name: "overrun_fraction", Path: "defense.overrun_fraction", Min: 0.1, Max: 1.0, Default: 0.3},
			// Territory
			{Name: "capture_chance", Path: "territory.capture_chance", Min: 0.01, Max: 0.5, Default: 0.1},
			{Name: "decay_chance", Path: "territory.decay_chance", Min: 0.0, Max: 0.5, Default: 0.1},
		},
	}
}

// Dim returns the number of parameters.
func (pv *ParamVector) Dim() int {
	return len(pv.Specs)
}

// DefaultVector returns the default parameter values as a slice.
func (pv *ParamVector) DefaultVector() []float64 {
	v := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		v[i] = spec.Default
	}
	return v
}

// Normalize converts raw parameter values to [0,1] range.
func (pv *ParamVector) Normalize(raw []float64) []float64 {
	normalized := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		normalized[i] = (raw[i] - spec.Min) / (spec.Max - spec.Min)
	}
	return normalized
}

// Denormalize converts [0,1] values back to raw parameter values.
func (pv *ParamVector) Denormalize(normalized []float64) []float64 {
	raw := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		raw[i] = spec.Min + normalized[i]*(spec.Max-spec.Min)
	}
	return raw
}

// Clamp ensures all values are within bounds.
func (pv *ParamVector) Clamp(v []float64) []float64 {
	clamped := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		clamped[i] = max(spec.Min, min(spec.Max, v[i]))
	}
	return clamped
}

// ApplyToConfig applies parameter values to a Config struct.
// Order must match Specs order.
func (pv *ParamVector) ApplyToConfig(cfg *config.Config, values []float64) {
	c := pv.Clamp(values)
	d := &cfg.Defense

	d.Laser.Range, d.Laser.Damage, d.Laser.Interval = c[0], c[1], c[2]
	d.Plasma.Range, d.Plasma.Damage, d.Plasma.Interval = c[3], c[4], c[5]
	d.Quantum.Range, d.Quantum.Damage, d.Quantum.Interval = c[6], c[7], c[8]
	d.PlacementRing = c[9]
	d.OverrunFraction = c[10]

	cfg.Territory.CaptureChance = c[11]
	cfg.Territory.DecayChance = c[12]
}

// ExtractFromConfig extracts current parameter values from a Config struct.
func (pv *ParamVector) ExtractFromConfig(cfg *config.Config) []float64 {
	d := &cfg.Defense
	return []float64{
		d.Laser.Range, d.Laser.Damage, d.Laser.Interval,
		d.Plasma.Range, d.Plasma.Damage, d.Plasma.Interval,
		d.Quantum.Range, d.Quantum.Damage, d.Quantum.Interval,
		d.PlacementRing,
		d.OverrunFraction,
		cfg.Territory.CaptureChance,
		cfg.Territory.DecayChance,
	}
}

// Package main provides CMA-ES optimization for foam physics parameters.
package main

import (
	"github.com/VirtualOrganics/Fabric-of-Space-TSL/config"
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
			// Physics (mode and radius bounds stay as configured)
			{Name: "threshold", Path: "physics.threshold", Min: 0.1, Max: 0.9, Default: 0.5},
			{Name: "damping", Path: "physics.damping", Min: 0.5, Max: 0.99, Default: 0.85},
			{Name: "centroid_pull", Path: "physics.centroid_pull", Min: 0.0, Max: 0.3, Default: 0.05},
			// Seeds
			{Name: "growth_rate", Path: "seeds.growth_rate", Min: 0.02, Max: 0.6, Default: 0.2},
			// JFA
			{Name: "radius_weight", Path: "jfa.radius_weight", Min: 0.0, Max: 1.0, Default: 0.0},
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
		clamped[i] = min(max(v[i], spec.Min), spec.Max)
	}
	return clamped
}

// ApplyToConfig applies parameter values to a Config struct.
// Order must match Specs order.
func (pv *ParamVector) ApplyToConfig(cfg *config.Config, values []float64) {
	clamped := pv.Clamp(values)

	cfg.Physics.Threshold = clamped[0]
	cfg.Physics.Damping = clamped[1]
	cfg.Physics.CentroidPull = clamped[2]
	cfg.Seeds.GrowthRate = clamped[3]
	cfg.JFA.RadiusWeight = clamped[4]
}

// ExtractFromConfig extracts current parameter values from a Config struct.
func (pv *ParamVector) ExtractFromConfig(cfg *config.Config) []float64 {
	return []float64{
		cfg.Physics.Threshold,
		cfg.Physics.Damping,
		cfg.Physics.CentroidPull,
		cfg.Seeds.GrowthRate,
		cfg.JFA.RadiusWeight,
	}
}

// Package config provides configuration loading and access for the pipeline.
package config

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all pipeline configuration parameters.
type Config struct {
	Screen    ScreenConfig    `yaml:"screen"`
	Grid      GridConfig      `yaml:"grid"`
	Seeds     SeedsConfig     `yaml:"seeds"`
	JFA       JFAConfig       `yaml:"jfa"`
	Analysis  AnalysisConfig  `yaml:"analysis"`
	Physics   PhysicsConfig   `yaml:"physics"`
	Compute   ComputeConfig   `yaml:"compute"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Viewer    ViewerConfig    `yaml:"viewer"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ScreenConfig holds display settings for the graphical viewer.
type ScreenConfig struct {
	Width     int `yaml:"width"`
	Height    int `yaml:"height"`
	TargetFPS int `yaml:"target_fps"`
}

// GridConfig holds the discretized grid resolution in cells.
type GridConfig struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
	Depth  int `yaml:"depth"`
}

// SeedsConfig controls initial seed placement.
type SeedsConfig struct {
	Count         int     `yaml:"count"`
	RNGSeed       int64   `yaml:"rng_seed"`       // 0 = time-based
	InitialRadius float64 `yaml:"initial_radius"` // in cells
	RadiusJitter  float64 `yaml:"radius_jitter"`  // uniform +/- around initial_radius
	GrowthRate    float64 `yaml:"growth_rate"`    // per-seed signal gain
	GrowthJitter  float64 `yaml:"growth_jitter"`  // uniform +/- around growth_rate
}

// JFAConfig holds jump-flood parameters.
type JFAConfig struct {
	RefinePasses int     `yaml:"refine_passes"` // extra step-1 passes after the classic sequence
	RadiusWeight float64 `yaml:"radius_weight"` // 0 = Euclidean, 1 = power diagram
}

// AnalysisConfig holds junction and accumulation parameters.
type AnalysisConfig struct {
	JunctionMinOwners int     `yaml:"junction_min_owners"` // distinct owners in a 2x2x2 block (>= 3)
	FixedPointScale   float64 `yaml:"fixed_point_scale"`   // centroid quantization: error <= 1/scale
}

// PhysicsConfig holds the growth/shrink configuration surface.
type PhysicsConfig struct {
	Mode         string  `yaml:"mode"` // balanced, growth_only, shrink_only, inverse
	Threshold    float64 `yaml:"threshold"`
	Damping      float64 `yaml:"damping"`
	MinRadius    float64 `yaml:"min_radius"`
	MaxRadius    float64 `yaml:"max_radius"`
	CentroidPull float64 `yaml:"centroid_pull"`
}

// ComputeConfig holds worker pool settings.
type ComputeConfig struct {
	Workers    int `yaml:"workers"`     // 0 = GOMAXPROCS
	BatchSize  int `yaml:"batch_size"`  // items per worker batch
	MinWorkers int `yaml:"min_workers"` // below this the parallel capability is reported unavailable
	MaxCells   int `yaml:"max_cells"`   // allocation cap for grid-sized buffers
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsInterval      int `yaml:"stats_interval"`       // frames between frame stats records
	PerfWindow         int `yaml:"perf_window"`          // frames averaged by the perf collector
	SeedSampleInterval int `yaml:"seed_sample_interval"` // frames between per-seed records (0 = off)
}

// ViewerConfig holds slice viewer parameters.
type ViewerConfig struct {
	SliceScale int `yaml:"slice_scale"` // screen pixels per cell
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	Cells int // Grid.Width * Grid.Height * Grid.Depth
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

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg, err := Defaults()
	if err != nil {
		return nil, err
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

	cfg.computeDerived()
	return cfg, nil
}

// Defaults returns a fresh copy of the embedded defaults.
func Defaults() (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}
	cfg.computeDerived()
	return cfg, nil
}

// Clone returns a deep copy of the configuration.
func (c *Config) Clone() *Config {
	out := *c
	return &out
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	c.Derived.Cells = c.Grid.Width * c.Grid.Height * c.Grid.Depth
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

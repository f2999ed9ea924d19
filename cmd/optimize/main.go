// Package main provides CMA-ES optimization for finding physics parameters
// that settle the foam into uniform cell volumes.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"time"

	"gonum.org/v1/gonum/optimize"

	"github.com/VirtualOrganics/Fabric-of-Space-TSL/config"
)

type options struct {
	configPath string
	outputDir  string
	grid       string
	frames     int
	seeds      int
	seedBase   int64
	maxEvals   int
	population int
	timeLimit  time.Duration
}

func main() {
	var opts options
	flag.StringVar(&opts.configPath, "config", "", "Base config YAML file (empty = use defaults)")
	flag.StringVar(&opts.outputDir, "output", "", "Output directory for results")
	flag.StringVar(&opts.grid, "grid", "", "Override the grid as WxHxD for tuning runs (empty = config grid)")
	flag.IntVar(&opts.frames, "frames", 200, "Frames per evaluation run")
	flag.IntVar(&opts.seeds, "seeds", 3, "Seed layouts per evaluation")
	flag.Int64Var(&opts.seedBase, "seed-base", 42, "RNG seed of the first layout; later layouts step by 1000")
	flag.IntVar(&opts.maxEvals, "max-evals", 200, "Maximum number of evaluations")
	flag.IntVar(&opts.population, "population", 0, "CMA-ES population size (0 = 4 + 3 ln(dim))")
	flag.DurationVar(&opts.timeLimit, "time-limit", 0, "Stop after this long (0 = no limit)")
	flag.Parse()

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	if err := run(opts); err != nil {
		slog.Error("optimize failed", "error", err)
		os.Exit(1)
	}
}

func run(opts options) error {
	if opts.outputDir == "" {
		return fmt.Errorf("-output is required")
	}
	if err := os.MkdirAll(opts.outputDir, 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	if err := config.Init(opts.configPath); err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	baseCfg := config.Cfg().Clone()
	if opts.grid != "" {
		if err := overrideGrid(baseCfg, opts.grid); err != nil {
			return err
		}
	}

	params := NewParamVector()
	evaluator := NewFitnessEvaluator(params, opts.frames, layoutSeeds(opts.seedBase, opts.seeds), baseCfg)

	logPath := filepath.Join(opts.outputDir, "optimize_log.csv")
	progress, err := newProgressLog(logPath, params, evaluator)
	if err != nil {
		return err
	}
	defer progress.Close()

	popSize := opts.population
	if popSize <= 0 {
		popSize = 4 + int(3*math.Log(float64(params.Dim())))
	}

	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			return evaluator.Evaluate(params.Denormalize(x))
		},
	}
	settings := &optimize.Settings{
		FuncEvaluations: opts.maxEvals,
		Runtime:         opts.timeLimit,
		Recorder:        progress,
	}
	method := &optimize.CmaEsChol{
		InitStepSize: 0.3,
		Population:   popSize,
	}
	initX := params.Normalize(params.Clamp(params.ExtractFromConfig(baseCfg)))

	slog.Info("starting CMA-ES",
		"params", params.Dim(),
		"population", popSize,
		"max_evals", opts.maxEvals,
		"layouts", opts.seeds,
		"frames", opts.frames,
		"grid", fmt.Sprintf("%dx%dx%d", baseCfg.Grid.Width, baseCfg.Grid.Height, baseCfg.Grid.Depth),
	)

	result, err := optimize.Minimize(problem, initX, settings, method)
	if err != nil {
		slog.Warn("optimization ended early", "error", err)
	}

	best, bestFitness := progress.Best()
	if best == nil {
		if result == nil {
			return fmt.Errorf("no evaluations completed")
		}
		best = params.Clamp(params.Denormalize(result.X))
		bestFitness = result.F
	}

	attrs := []any{"evals", progress.Evals(), "fitness", bestFitness}
	if result != nil {
		attrs = append(attrs, "status", result.Status.String(), "runtime", result.Runtime.Round(time.Second))
	}
	for i, spec := range params.Specs {
		attrs = append(attrs, spec.Name, best[i])
	}
	slog.Info("optimization complete", attrs...)

	return writeResults(opts.outputDir, baseCfg, params, best, evaluator)
}

// writeResults saves the best configuration and the final stats of its
// best-scoring layout.
func writeResults(dir string, baseCfg *config.Config, params *ParamVector, best []float64, evaluator *FitnessEvaluator) error {
	bestCfg := baseCfg.Clone()
	params.ApplyToConfig(bestCfg, best)

	configPath := filepath.Join(dir, "best_config.yaml")
	if err := bestCfg.WriteYAML(configPath); err != nil {
		return fmt.Errorf("write best config: %w", err)
	}
	slog.Info("best config saved", "path", configPath)

	stats := evaluator.BestStats()
	if stats == nil {
		return nil
	}
	data, err := json.MarshalIndent(stats, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal best stats: %w", err)
	}
	statsPath := filepath.Join(dir, "best_stats.json")
	if err := os.WriteFile(statsPath, data, 0644); err != nil {
		return fmt.Errorf("write best stats: %w", err)
	}
	slog.Info("best run stats saved", "path", statsPath)
	return nil
}

// layoutSeeds returns the RNG seeds of the layouts every candidate is
// scored on.
func layoutSeeds(base int64, n int) []int64 {
	seeds := make([]int64, max(n, 1))
	for i := range seeds {
		seeds[i] = base + int64(i)*1000
	}
	return seeds
}

// overrideGrid parses "WxHxD" into the config grid.
func overrideGrid(cfg *config.Config, grid string) error {
	var w, h, d int
	if _, err := fmt.Sscanf(grid, "%dx%dx%d", &w, &h, &d); err != nil {
		return fmt.Errorf("grid %q: want WxHxD: %w", grid, err)
	}
	if w <= 0 || h <= 0 || d <= 0 {
		return fmt.Errorf("grid %q: dimensions must be positive", grid)
	}
	cfg.Grid.Width, cfg.Grid.Height, cfg.Grid.Depth = w, h, d
	return nil
}

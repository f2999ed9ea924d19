package main

import (
	"context"
	"math"
	"math/rand"
	"runtime"
	"sync"

	"github.com/VirtualOrganics/Fabric-of-Space-TSL/config"
	"github.com/VirtualOrganics/Fabric-of-Space-TSL/pipeline"
	"github.com/VirtualOrganics/Fabric-of-Space-TSL/systems"
	"github.com/VirtualOrganics/Fabric-of-Space-TSL/telemetry"
)

// Fitness weights. Volume CV dominates; the penalties keep the search away
// from configurations that starve cells or leave the grid partly unowned.
const (
	occludedPenalty  = 2.0
	uncoveredPenalty = 4.0
	failedRunFitness = 1e6
)

// FitnessEvaluator runs headless pipelines and computes fitness.
type FitnessEvaluator struct {
	params     *ParamVector
	frames     int
	window     int // trailing frames averaged into the score
	seeds      []int64
	baseConfig *config.Config

	// Best run tracking
	mu          sync.Mutex
	bestFitness float64
	bestStats   *telemetry.FrameStats
	lastCV      float64 // mean volume CV from the most recent Evaluate call
}

// NewFitnessEvaluator creates a new evaluator.
func NewFitnessEvaluator(params *ParamVector, frames int, seeds []int64, baseCfg *config.Config) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:      params,
		frames:      max(frames, 1),
		window:      max(frames/4, 1),
		seeds:       seeds,
		baseConfig:  baseCfg,
		bestFitness: math.Inf(1),
	}
}

// BestStats returns the final frame stats of the best evaluation's best seed.
func (fe *FitnessEvaluator) BestStats() *telemetry.FrameStats {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.bestStats
}

// LastCV returns the mean volume CV from the most recent evaluation.
func (fe *FitnessEvaluator) LastCV() float64 {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.lastCV
}

// runResult holds the results from a single pipeline run.
type runResult struct {
	meanCV   float64 // volume CV averaged over the trailing window
	occluded float64 // fraction of seeds owning no cells at the end
	coverage float64
	final    telemetry.FrameStats
	err      error
}

// Evaluate computes fitness for a parameter vector (lower = better).
func (fe *FitnessEvaluator) Evaluate(x []float64) float64 {
	cfg := fe.baseConfig.Clone()
	fe.params.ApplyToConfig(cfg, x)

	// Run all seeds in parallel
	results := make([]runResult, len(fe.seeds))
	var wg sync.WaitGroup
	for i, seed := range fe.seeds {
		wg.Add(1)
		go func(idx int, s int64) {
			defer wg.Done()
			results[idx] = fe.runPipeline(cfg, s)
		}(i, seed)
	}
	wg.Wait()

	var totalFitness, totalCV float64
	bestSeedFitness := math.Inf(1)
	var bestSeedStats telemetry.FrameStats
	for _, r := range results {
		f := computeFitness(r)
		totalFitness += f
		totalCV += r.meanCV
		if f < bestSeedFitness {
			bestSeedFitness = f
			bestSeedStats = r.final
		}
	}

	n := float64(len(fe.seeds))
	avgFitness := totalFitness / n

	fe.mu.Lock()
	if avgFitness < fe.bestFitness {
		fe.bestFitness = avgFitness
		fe.bestStats = &bestSeedStats
	}
	fe.lastCV = totalCV / n
	fe.mu.Unlock()

	return avgFitness
}

// runPipeline executes one seeded run of fe.frames frames.
func (fe *FitnessEvaluator) runPipeline(cfg *config.Config, seed int64) runResult {
	params, err := pipeline.ParamsFromConfig(cfg)
	if err != nil {
		return runResult{err: err}
	}
	// Runs evaluate concurrently; split the cores between them.
	if params.Workers == 0 {
		params.Workers = max(runtime.GOMAXPROCS(0)/max(len(fe.seeds), 1), 1)
	}

	rng := rand.New(rand.NewSource(seed))
	seeds := systems.RandomSeeds(params.Dims, pipeline.SeedOptionsFromConfig(cfg), rng)
	p, err := pipeline.New(params, seeds)
	if err != nil {
		return runResult{err: err}
	}
	defer p.Close()

	ctx := context.Background()
	var cvSum float64
	var cvCount int
	var last pipeline.FrameResult
	for i := 0; i < fe.frames; i++ {
		if last, err = p.Step(ctx); err != nil {
			return runResult{err: err}
		}
		if fe.frames-i <= fe.window {
			cvSum += telemetry.VolumeCV(p.Stats())
			cvCount++
		}
	}

	final := telemetry.ComputeFrameStats(p.Frame(), p.Seeds(), p.Stats(), params.Dims.Cells())
	final.FrameMS = float64(last.Duration.Microseconds()) / 1000
	return runResult{
		meanCV:   cvSum / float64(max(cvCount, 1)),
		occluded: float64(final.Occluded) / float64(max(final.Seeds, 1)),
		coverage: final.Coverage,
		final:    final,
	}
}

// computeFitness calculates the scalar fitness (lower = better).
// Formula: meanCV + 2 x occludedFraction + 4 x (1 - coverage)
func computeFitness(r runResult) float64 {
	if r.err != nil {
		return failedRunFitness
	}
	return r.meanCV + occludedPenalty*r.occluded + uncoveredPenalty*(1-r.coverage)
}

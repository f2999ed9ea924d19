package main

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"math"
	"os"
	"strconv"
	"time"

	"gonum.org/v1/gonum/optimize"
)

// progressLog records the run as an optimize.Recorder: one CSV row per
// evaluation and one log line per CMA-ES generation.
//
// Columns depend on the parameter vector, so rows go through encoding/csv
// rather than a tagged struct.
type progressLog struct {
	params *ParamVector
	cv     cvSource

	file *os.File
	w    *csv.Writer

	evals       int
	generation  int
	bestFitness float64
	best        []float64 // clamped raw values
}

// cvSource reports the mean volume CV of the most recent evaluation.
type cvSource interface {
	LastCV() float64
}

var _ optimize.Recorder = (*progressLog)(nil)

func newProgressLog(path string, params *ParamVector, cv cvSource) (*progressLog, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create optimize log: %w", err)
	}
	return &progressLog{
		params:      params,
		cv:          cv,
		file:        f,
		w:           csv.NewWriter(f),
		bestFitness: math.Inf(1),
	}, nil
}

// Init writes the header.
func (p *progressLog) Init() error {
	header := []string{"eval", "generation", "fitness", "volume_cv"}
	for _, spec := range p.params.Specs {
		header = append(header, spec.Name)
	}
	if err := p.w.Write(header); err != nil {
		return err
	}
	p.w.Flush()
	return p.w.Error()
}

// Record handles evaluations and generation boundaries; other operations
// are ignored.
func (p *progressLog) Record(loc *optimize.Location, op optimize.Operation, stats *optimize.Stats) error {
	switch {
	case op&optimize.FuncEvaluation != 0:
		return p.recordEval(loc)
	case op == optimize.MajorIteration:
		p.generation = stats.MajorIterations
		slog.Info("generation",
			"n", p.generation,
			"evals", stats.FuncEvaluations,
			"generation_best", loc.F,
			"best", p.bestFitness,
			"evals_per_min", evalRate(stats.FuncEvaluations, stats.Runtime),
		)
	}
	return nil
}

func (p *progressLog) recordEval(loc *optimize.Location) error {
	p.evals++
	values := p.params.Clamp(p.params.Denormalize(loc.X))
	if loc.F < p.bestFitness {
		p.bestFitness = loc.F
		p.best = values
	}

	row := []string{
		strconv.Itoa(p.evals),
		strconv.Itoa(p.generation),
		strconv.FormatFloat(loc.F, 'f', 6, 64),
		strconv.FormatFloat(p.cv.LastCV(), 'f', 6, 64),
	}
	for _, v := range values {
		row = append(row, strconv.FormatFloat(v, 'f', 6, 64))
	}
	if err := p.w.Write(row); err != nil {
		return err
	}
	p.w.Flush()
	return p.w.Error()
}

// Best returns the best clamped parameter values seen and their fitness.
// Values are nil before the first evaluation.
func (p *progressLog) Best() ([]float64, float64) {
	return p.best, p.bestFitness
}

// Evals returns the number of evaluations recorded.
func (p *progressLog) Evals() int { return p.evals }

// Close flushes and closes the log file.
func (p *progressLog) Close() error {
	p.w.Flush()
	if err := p.w.Error(); err != nil {
		p.file.Close()
		return err
	}
	return p.file.Close()
}

func evalRate(evals int, elapsed time.Duration) float64 {
	if elapsed <= 0 {
		return 0
	}
	return float64(evals) / elapsed.Minutes()
}

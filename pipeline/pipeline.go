// Package pipeline sequences the jump-flood, analysis and physics stages
// once per frame and owns the buffers they share.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/VirtualOrganics/Fabric-of-Space-TSL/systems"
)

// Phase names passed to PhaseRecorder.StartPhase, in frame order.
const (
	PhaseJFA      = "jfa"
	PhaseAnalysis = "analysis"
	PhasePhysics  = "physics"
	PhaseCommit   = "commit"
)

// Phases returns the phase names in the order a frame runs them.
func Phases() []string {
	return []string{PhaseJFA, PhaseAnalysis, PhasePhysics, PhaseCommit}
}

// PhaseRecorder receives frame and phase boundaries.
type PhaseRecorder interface {
	StartFrame()
	StartPhase(name string)
	EndFrame()
}

type nopRecorder struct{}

func (nopRecorder) StartFrame()       {}
func (nopRecorder) StartPhase(string) {}
func (nopRecorder) EndFrame()         {}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithRecorder attaches a phase recorder.
func WithRecorder(r PhaseRecorder) Option {
	return func(p *Pipeline) {
		if r != nil {
			p.rec = r
		}
	}
}

// FrameResult summarizes one completed frame.
type FrameResult struct {
	Frame     uint64
	Duration  time.Duration
	Cells     int
	Coverage  int64 // sum of voxel counts; equals Cells once flooding has converged
	Occluded  int   // seeds that own no cells
	Junctions int64 // junction credits summed over seeds
}

// stages bundles everything that is torn down and rebuilt on reconfiguration.
type stages struct {
	params   Params
	disp     *systems.Dispatcher
	jfa      *systems.JFA
	analysis *systems.Analysis
	buf      *arena
}

func newStages(params Params, seeds []systems.Seed) (*stages, error) {
	buf, err := newArena(params.Dims, seeds, params.FixedPointScale)
	if err != nil {
		return nil, err
	}
	return &stages{
		params:   params,
		disp:     systems.NewDispatcher(params.Workers, params.BatchSize),
		jfa:      systems.NewJFA(params.Dims, params.JFA),
		analysis: systems.NewAnalysis(params.Dims, params.JunctionMinOwners, buf.acc),
		buf:      buf,
	}, nil
}

// Pipeline runs the per-frame stage sequence. Host-side orchestration is
// single-threaded: Step issues each dispatch and waits on its barrier before
// the next. Reconfigure and SetPhysics may be called from other goroutines.
type Pipeline struct {
	// mu is held for a whole frame and for reconfiguration. Published
	// buffers are only read under it, which is the frame-boundary barrier.
	mu     sync.Mutex
	st     *stages
	frame  uint64
	closed bool

	cfgMu   sync.Mutex
	pending *systems.PhysicsParams

	cancelMu sync.Mutex
	cancel   context.CancelFunc

	rec PhaseRecorder
}

// New validates params against seeds and allocates all buffers.
func New(params Params, seeds []systems.Seed, opts ...Option) (*Pipeline, error) {
	if err := params.Validate(seeds); err != nil {
		return nil, err
	}
	st, err := newStages(params, seeds)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{st: st, rec: nopRecorder{}}
	for _, opt := range opts {
		opt(p)
	}

	slog.Info("pipeline created",
		"grid", params.Dims.String(),
		"seeds", len(seeds),
		"workers", st.disp.Workers(),
		"jfa_passes", len(st.jfa.Steps()),
	)
	return p, nil
}

// Step runs one full frame: jump flooding over the current seed store,
// analysis of the resulting field, then physics writing the next seed
// store. Results are published only if every stage completes; a cancelled
// frame leaves the previously published state untouched.
func (p *Pipeline) Step(ctx context.Context) (FrameResult, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return FrameResult{}, ErrClosed
	}

	ctx, cancel := context.WithCancel(ctx)
	p.setCancel(cancel)
	defer func() {
		p.setCancel(nil)
		cancel()
	}()

	p.applyPendingPhysics()

	start := time.Now()
	p.rec.StartFrame()
	res, err := p.runFrame(ctx)
	p.rec.EndFrame()

	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			slog.Warn("frame cancelled", "frame", p.frame+1, "error", err)
			return FrameResult{}, fmt.Errorf("%w: %w", ErrFrameCancelled, err)
		}
		return FrameResult{}, err
	}

	p.frame++
	res.Frame = p.frame
	res.Duration = time.Since(start)
	return res, nil
}

func (p *Pipeline) runFrame(ctx context.Context) (FrameResult, error) {
	st := p.st
	d := st.params.Dims
	cur := st.buf.frontSeedSlice()

	p.rec.StartPhase(PhaseJFA)
	a, b := st.buf.workFields()
	field, err := st.jfa.Run(ctx, st.disp, a, b, cur)
	if err != nil {
		return FrameResult{}, fmt.Errorf("jfa: %w", err)
	}

	p.rec.StartPhase(PhaseAnalysis)
	st.buf.acc.Reset()
	kernel, err := st.analysis.Kernel(field, cur, st.buf.acc)
	if err != nil {
		return FrameResult{}, err
	}
	if err := st.disp.Dispatch(ctx, d.Cells(), kernel); err != nil {
		return FrameResult{}, fmt.Errorf("analysis: %w", err)
	}
	stats := st.buf.backStatSlice()
	st.buf.acc.Decode(stats)

	p.rec.StartPhase(PhasePhysics)
	next := st.buf.backSeedSlice()
	physics := systems.PhysicsKernel(next, cur, stats, st.params.Physics, d)
	if err := st.disp.Dispatch(ctx, len(cur), physics); err != nil {
		return FrameResult{}, fmt.Errorf("physics: %w", err)
	}

	p.rec.StartPhase(PhaseCommit)
	if err := ctx.Err(); err != nil {
		return FrameResult{}, err
	}
	st.buf.commit(field)

	res := FrameResult{Cells: d.Cells()}
	for i := range stats {
		res.Coverage += stats[i].VoxelCount
		res.Junctions += stats[i].JunctionCount
		if stats[i].Occluded() {
			res.Occluded++
		}
	}
	return res, nil
}

// Reconfigure cancels any in-flight frame, tears down every buffer and
// reallocates for the new grid and seed store. If validation or allocation
// fails, the pipeline keeps running on its previous buffers.
func (p *Pipeline) Reconfigure(params Params, seeds []systems.Seed) error {
	if err := params.Validate(seeds); err != nil {
		return fmt.Errorf("reconfigure: %w", err)
	}

	p.cancelInFlight()

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return ErrClosed
	}

	st, err := newStages(params, seeds)
	if err != nil {
		slog.Error("reconfigure failed, keeping previous buffers", "error", err)
		return fmt.Errorf("reconfigure: %w", err)
	}

	old := p.st
	old.disp.Stop()
	p.st = st
	p.frame = 0

	p.cfgMu.Lock()
	p.pending = nil
	p.cfgMu.Unlock()

	slog.Info("pipeline reconfigured",
		"old_grid", old.params.Dims.String(),
		"new_grid", params.Dims.String(),
		"old_seeds", len(old.buf.frontSeedSlice()),
		"new_seeds", len(seeds),
	)
	return nil
}

// SetPhysics stages new physics parameters. They take effect at the start
// of the next frame and never change mid-frame.
func (p *Pipeline) SetPhysics(pp systems.PhysicsParams) error {
	if err := pp.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrParamRange, err)
	}
	p.cfgMu.Lock()
	p.pending = &pp
	p.cfgMu.Unlock()
	return nil
}

func (p *Pipeline) applyPendingPhysics() {
	p.cfgMu.Lock()
	pending := p.pending
	p.pending = nil
	p.cfgMu.Unlock()

	if pending != nil {
		p.st.params.Physics = *pending
	}
}

func (p *Pipeline) setCancel(cancel context.CancelFunc) {
	p.cancelMu.Lock()
	p.cancel = cancel
	p.cancelMu.Unlock()
}

func (p *Pipeline) cancelInFlight() {
	p.cancelMu.Lock()
	if p.cancel != nil {
		p.cancel()
	}
	p.cancelMu.Unlock()
}

// Field returns the published ownership field. It is read-only and valid
// until the next Step or Reconfigure.
func (p *Pipeline) Field() *systems.Field {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.st.buf.field()
}

// Stats returns the published per-seed statistics, indexed by seed id.
// Read-only; valid until the next Step or Reconfigure.
func (p *Pipeline) Stats() []systems.CellStats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.st.buf.frontStatSlice()
}

// Seeds returns the published seed store: the input to the next frame.
// Read-only; valid until the next Step or Reconfigure.
func (p *Pipeline) Seeds() []systems.Seed {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.st.buf.frontSeedSlice()
}

// Params returns the active parameters.
func (p *Pipeline) Params() Params {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.st.params
}

// Frame returns the number of frames completed since creation or the last
// reconfiguration.
func (p *Pipeline) Frame() uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.frame
}

// Workers returns the size of the worker pool.
func (p *Pipeline) Workers() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.st.disp.Workers()
}

// Close cancels any in-flight frame and stops the worker pool.
func (p *Pipeline) Close() {
	p.cancelInFlight()

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.closed = true
	p.st.disp.Stop()
}

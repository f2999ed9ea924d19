package game

import (
	"errors"
	"log/slog"

	"github.com/VirtualOrganics/Fabric-of-Space-TSL/pipeline"
	"github.com/VirtualOrganics/Fabric-of-Space-TSL/systems"
)

// Update handles input and runs stepsPerUpdate frames unless paused.
func (g *Game) Update() error {
	g.handleInput()

	if g.paused {
		return nil
	}
	for i := 0; i < g.stepsPerUpdate; i++ {
		if err := g.step(); err != nil {
			return err
		}
	}
	return nil
}

// UpdateHeadless runs stepsPerUpdate frames without touching raylib.
func (g *Game) UpdateHeadless() error {
	for i := 0; i < g.stepsPerUpdate; i++ {
		if err := g.step(); err != nil {
			return err
		}
	}
	return nil
}

// step runs one pipeline frame and feeds telemetry. A cancelled frame is
// reported to the caller; it leaves published state untouched.
func (g *Game) step() error {
	res, err := g.pipe.Step(g.ctx)
	if err != nil {
		return err
	}
	g.lastResult = res

	frame := g.Frame()
	if g.statsInterval > 0 && frame%g.statsInterval == 0 {
		g.flushTelemetry()
	}
	if g.seedInterval > 0 && frame%g.seedInterval == 0 {
		g.writeSeeds()
	}
	return nil
}

// setPhysics stages new physics parameters for the next frame.
func (g *Game) setPhysics(pp systems.PhysicsParams) {
	if err := g.pipe.SetPhysics(pp); err != nil {
		slog.Warn("physics update rejected", "error", err)
		return
	}
	g.physics = pp
	slog.Info("physics updated",
		"mode", pp.Mode.String(),
		"threshold", pp.Threshold,
		"damping", pp.Damping,
		"centroid_pull", pp.CentroidPull,
		"min_radius", pp.MinRadius,
		"max_radius", pp.MaxRadius,
	)
}

// reseed replaces the seed store with a fresh random placement of the
// configured count. The pipeline is torn down and rebuilt with the physics
// currently shown in the controls, including edits not yet applied.
func (g *Game) reseed() {
	params := g.pipe.Params()
	params.Physics = g.physics
	seeds := systems.RandomSeeds(params.Dims, pipeline.SeedOptionsFromConfig(g.cfg), g.rng)
	if err := g.pipe.Reconfigure(params, seeds); err != nil {
		slog.Error("reseed failed", "error", err)
		return
	}
	g.frameOffset = 0
	g.selected = -1
	g.resetTelemetry()
}

// IsCancelled reports whether err came from an abandoned frame.
func IsCancelled(err error) bool {
	return errors.Is(err, pipeline.ErrFrameCancelled)
}

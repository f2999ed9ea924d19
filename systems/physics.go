package systems

import (
	"fmt"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
)

// Mode selects how the growth signal is shaped.
type Mode uint8

const (
	ModeBalanced   Mode = iota // grow when obtuse-dominated, shrink when acute-dominated
	ModeGrowthOnly             // shrink signals clamped to zero
	ModeShrinkOnly             // grow signals clamped to zero
	ModeInverse                // balanced signal with its sign flipped
)

var modeNames = [...]string{"balanced", "growth_only", "shrink_only", "inverse"}

func (m Mode) String() string {
	if int(m) < len(modeNames) {
		return modeNames[m]
	}
	return fmt.Sprintf("mode(%d)", m)
}

// ParseMode parses a mode name as written in configuration.
func ParseMode(s string) (Mode, error) {
	name := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(s), "-", "_"))
	for i, n := range modeNames {
		if n == name {
			return Mode(i), nil
		}
	}
	return 0, fmt.Errorf("unknown physics mode %q", s)
}

// Modes lists every mode in declaration order.
func Modes() []Mode {
	return []Mode{ModeBalanced, ModeGrowthOnly, ModeShrinkOnly, ModeInverse}
}

// PhysicsParams is the global configuration surface read by the physics stage.
type PhysicsParams struct {
	Mode         Mode
	Threshold    float32 // acute ratio separating growth from shrinkage, [0,1]
	Damping      float32 // momentum retention per frame, [0,1]
	MinRadius    float32
	MaxRadius    float32
	CentroidPull float32 // fraction of the way toward the cell centroid per frame, [0,1]
}

// Validate checks parameter ranges.
func (p PhysicsParams) Validate() error {
	if int(p.Mode) >= len(modeNames) {
		return fmt.Errorf("physics mode %d out of range", p.Mode)
	}
	if !in01(p.Threshold) {
		return fmt.Errorf("threshold %v outside [0,1]", p.Threshold)
	}
	if !in01(p.Damping) {
		return fmt.Errorf("damping %v outside [0,1]", p.Damping)
	}
	if !in01(p.CentroidPull) {
		return fmt.Errorf("centroid_pull %v outside [0,1]", p.CentroidPull)
	}
	if !(p.MinRadius >= 0) || !(p.MaxRadius >= p.MinRadius) {
		return fmt.Errorf("radius range [%v,%v] invalid", p.MinRadius, p.MaxRadius)
	}
	return nil
}

func in01(v float32) bool {
	return v >= 0 && v <= 1
}

// GrowthSignal returns the raw growth signal for a seed. The balanced signal
// is growthRate*(threshold-acuteRatio): positive when the local geometry is
// predominantly obtuse, negative when predominantly acute and exactly zero at
// the threshold.
func GrowthSignal(mode Mode, acuteRatio, threshold, growthRate float32) float32 {
	raw := growthRate * (threshold - acuteRatio)
	switch mode {
	case ModeGrowthOnly:
		return max(raw, 0)
	case ModeShrinkOnly:
		return min(raw, 0)
	case ModeInverse:
		return -raw
	default:
		return raw
	}
}

// Integrate advances one seed by a frame. It reads only the seed's own prior
// state and statistics. Seeds that own no cells are returned unchanged.
func Integrate(s Seed, st CellStats, p PhysicsParams, d Dims) Seed {
	if st.VoxelCount == 0 {
		return s
	}

	raw := GrowthSignal(p.Mode, st.AcuteRatio(), p.Threshold, s.GrowthRate)
	m := s.Momentum*p.Damping + raw*(1-p.Damping)
	switch p.Mode {
	case ModeGrowthOnly:
		m = max(m, 0)
	case ModeShrinkOnly:
		m = min(m, 0)
	}

	next := s
	next.Momentum = m
	next.Radius = clampFloat(s.Radius+m, p.MinRadius, p.MaxRadius)

	if p.CentroidPull > 0 {
		c := mgl32.Vec3{float32(st.Centroid.X), float32(st.Centroid.Y), float32(st.Centroid.Z)}
		pos := s.Position.Add(c.Sub(s.Position).Mul(p.CentroidPull))
		next.Position = clampToGrid(pos, d)
	}
	return next
}

// clampToGrid keeps a position inside [0, dim) on every axis.
func clampToGrid(p mgl32.Vec3, d Dims) mgl32.Vec3 {
	const inset = 1e-3
	return mgl32.Vec3{
		clampFloat(p[0], 0, float32(d.W)-inset),
		clampFloat(p[1], 0, float32(d.H)-inset),
		clampFloat(p[2], 0, float32(d.D)-inset),
	}
}

// PhysicsKernel returns the per-seed kernel writing next from cur and stats.
func PhysicsKernel(next, cur []Seed, stats []CellStats, p PhysicsParams, d Dims) Kernel {
	return func(start, end int) {
		for i := start; i < end; i++ {
			next[i] = Integrate(cur[i], stats[i], p, d)
		}
	}
}

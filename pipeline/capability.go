package pipeline

import (
	"fmt"
	"runtime"
)

// Capability describes whether the parallel compute path can run here.
// When it cannot, callers substitute a non-parallel implementation wholesale.
type Capability struct {
	Available  bool
	Workers    int
	MinWorkers int
	Reason     string
}

// DetectCapability checks the number of schedulable workers against the
// configured minimum.
func DetectCapability(minWorkers int) Capability {
	workers := runtime.GOMAXPROCS(0)
	c := Capability{
		Available:  workers >= minWorkers,
		Workers:    workers,
		MinWorkers: minWorkers,
	}
	if !c.Available {
		c.Reason = fmt.Sprintf("%d schedulable workers, %d required", workers, minWorkers)
	}
	return c
}

// Err returns ErrCapabilityUnavailable with the reason, or nil.
func (c Capability) Err() error {
	if c.Available {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrCapabilityUnavailable, c.Reason)
}

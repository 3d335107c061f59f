package sim

import (
	"errors"
	"fmt"
)

// Domain errors for simulation runs.
var (
	// ErrNonFiniteControl indicates the controller produced NaN or Inf.
	ErrNonFiniteControl = errors.New("sim: non-finite control signal")

	// ErrNonFiniteState indicates the plant state diverged (NaN or Inf).
	ErrNonFiniteState = errors.New("sim: non-finite plant state")

	// ErrConfig indicates an invalid loop configuration.
	ErrConfig = errors.New("sim: invalid configuration")
)

// Fault records where a run diverged. The partial Record up to the faulting
// step is retained by the loop for inspection.
type Fault struct {
	Step    int
	Time    float64
	Wrapped error
}

func (f *Fault) Error() string {
	return fmt.Sprintf("step %d (t=%.4f): %v", f.Step, f.Time, f.Wrapped)
}

func (f *Fault) Unwrap() error { return f.Wrapped }

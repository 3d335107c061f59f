package sim

import "math"

type State []float64

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func (s State) Norm() float64 {
	sum := 0.0
	for _, v := range s {
		sum += v * v
	}
	return math.Sqrt(sum)
}

// System is an ODE plant driven by a scalar input (voltage) whose scalar
// output is the quantity the controller tracks.
type System interface {
	Derive(x State, u float64, t float64) State
	Output(x State) float64
	StateDim() int
}

// Hamiltonian is implemented by systems that can report stored energy.
type Hamiltonian interface {
	Energy(x State) float64
}

type Integrator interface {
	Step(dyn System, x State, u float64, t float64, dt float64) State
}

// Controller maps (reference, measured output, dt) to a control signal.
// Implementations are stateful across calls; Reset returns them to their
// initial state so a controller value can be reused for a fresh run.
type Controller interface {
	Compute(reference, measured, dt float64) float64
	Reset()
}

// Configurable is implemented by plants and controllers that support live
// parameter adjustment.
type Configurable interface {
	GetParams() map[string]float64
	SetParam(name string, value float64) error
}

// Metric observes every loop step and reduces the run to a single value.
type Metric interface {
	Name() string
	Observe(reference, output, control, t float64)
	Value() float64
	Reset()
}

type Observer interface {
	OnStep(reference, output, control, t float64)
}

type Config struct {
	Dt            float64
	Horizon       float64
	ValidateState bool
}

func DefaultConfig() Config {
	return Config{
		Dt:            0.01,
		Horizon:       5.0,
		ValidateState: true,
	}
}

// Record is the append-only time series of a single run. All slices share
// indices; Fault is non-nil when the run aborted before the horizon.
type Record struct {
	Times      []float64
	References []float64
	Outputs    []float64
	Controls   []float64
	Errors     []float64
	Metrics    map[string]float64
	Fault      error
}

func newRecord(steps int) *Record {
	return &Record{
		Times:      make([]float64, 0, steps),
		References: make([]float64, 0, steps),
		Outputs:    make([]float64, 0, steps),
		Controls:   make([]float64, 0, steps),
		Errors:     make([]float64, 0, steps),
		Metrics:    make(map[string]float64),
	}
}

func (r *Record) append(t, ref, out, u float64) {
	r.Times = append(r.Times, t)
	r.References = append(r.References, ref)
	r.Outputs = append(r.Outputs, out)
	r.Controls = append(r.Controls, u)
	r.Errors = append(r.Errors, ref-out)
}

func (r *Record) Len() int { return len(r.Times) }

// Diverged reports whether the run aborted on a non-finite state or control.
func (r *Record) Diverged() bool { return r.Fault != nil }

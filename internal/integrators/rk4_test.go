package integrators

import (
	"math"
	"testing"

	"motorlab/internal/sim"
)

// Undamped oscillator: the control input enters as a force on the velocity.
type oscillator struct{}

func (o *oscillator) Derive(x sim.State, u float64, t float64) sim.State {
	return sim.State{x[1], -x[0] + u}
}

func (o *oscillator) Output(x sim.State) float64 { return x[0] }
func (o *oscillator) StateDim() int              { return 2 }

func TestRK4Accuracy(t *testing.T) {
	dyn := &oscillator{}
	integ := NewRK4()

	dt := 0.01
	steps := 100

	x := sim.State{1.0, 0.0}
	for i := 0; i < steps; i++ {
		x = integ.Step(dyn, x, 0, float64(i)*dt, dt)
	}

	expectedX := math.Cos(float64(steps) * dt)
	expectedV := -math.Sin(float64(steps) * dt)

	if math.Abs(x[0]-expectedX) > 1e-4 {
		t.Errorf("position error too large: got %.6f, expected %.6f", x[0], expectedX)
	}
	if math.Abs(x[1]-expectedV) > 1e-4 {
		t.Errorf("velocity error too large: got %.6f, expected %.6f", x[1], expectedV)
	}
}

func TestRK4DoesNotMutateInput(t *testing.T) {
	dyn := &oscillator{}
	integ := NewRK4()

	x := sim.State{1.0, 0.5}
	integ.Step(dyn, x, 0, 0, 0.01)

	if x[0] != 1.0 || x[1] != 0.5 {
		t.Errorf("input state mutated: %v", x)
	}
}

func TestRK4MoreAccurateThanEuler(t *testing.T) {
	dyn := &oscillator{}
	dt := 0.01
	steps := 500

	xe := sim.State{1.0, 0.0}
	xr := sim.State{1.0, 0.0}
	euler := NewEuler()
	rk4 := NewRK4()

	for i := 0; i < steps; i++ {
		tNow := float64(i) * dt
		xe = euler.Step(dyn, xe, 0, tNow, dt)
		xr = rk4.Step(dyn, xr, 0, tNow, dt)
	}

	exact := math.Cos(float64(steps) * dt)
	eulerErr := math.Abs(xe[0] - exact)
	rk4Err := math.Abs(xr[0] - exact)

	if rk4Err >= eulerErr {
		t.Errorf("rk4 error %.2e should beat euler error %.2e", rk4Err, eulerErr)
	}
}

func TestEulerDecay(t *testing.T) {
	decay := &decaySystem{}
	integ := NewEuler()

	dt := 0.01
	steps := 100

	x := sim.State{1.0}
	for i := 0; i < steps; i++ {
		x = integ.Step(decay, x, 0, float64(i)*dt, dt)
	}

	expected := math.Exp(-1.0)
	if math.Abs(x[0]-expected) > 1e-2 {
		t.Errorf("decay: got %.6f, expected %.6f", x[0], expected)
	}
}

type decaySystem struct{}

func (d *decaySystem) Derive(x sim.State, u float64, t float64) sim.State {
	return sim.State{-x[0]}
}

func (d *decaySystem) Output(x sim.State) float64 { return x[0] }
func (d *decaySystem) StateDim() int              { return 1 }

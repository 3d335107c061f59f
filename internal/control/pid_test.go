package control

import (
	"errors"
	"math"
	"testing"
)

func wideLimits() Limits {
	return Limits{Integral: 1e9, OutputMin: -1e9, OutputMax: 1e9}
}

func TestPIDProportional(t *testing.T) {
	p, err := NewPID(Gains{Kp: 2}, wideLimits())
	if err != nil {
		t.Fatal(err)
	}

	// First call: the derivative seeds to zero and Ki is zero, so the output
	// is purely proportional.
	u := p.Compute(1, 0, 0.01)
	if math.Abs(u-2.0) > 1e-12 {
		t.Errorf("proportional: got %f, want 2", u)
	}
}

func TestPIDIntegralAccumulation(t *testing.T) {
	p, err := NewPID(Gains{Ki: 1}, wideLimits())
	if err != nil {
		t.Fatal(err)
	}

	dt := 0.1
	var u float64
	for i := 0; i < 3; i++ {
		u = p.Compute(1, 0, dt)
	}
	// Rectangular rule: integral = 3 * 1.0 * 0.1
	if math.Abs(u-0.3) > 1e-12 {
		t.Errorf("integral: got %f, want 0.3", u)
	}
}

func TestPIDAntiWindup(t *testing.T) {
	lim := wideLimits()
	lim.Integral = 0.15
	p, err := NewPID(Gains{Ki: 1}, lim)
	if err != nil {
		t.Fatal(err)
	}

	var u float64
	for i := 0; i < 10; i++ {
		u = p.Compute(1, 0, 0.1)
	}
	if math.Abs(u-0.15) > 1e-12 {
		t.Errorf("integral must clamp at limit: got %f", u)
	}

	// Once the error flips the accumulator unwinds immediately.
	u = p.Compute(-1, 0, 0.1)
	if u >= 0.15 {
		t.Errorf("accumulator stuck after sign flip: got %f", u)
	}
}

func TestPIDDerivative(t *testing.T) {
	p, err := NewPID(Gains{Kd: 1}, wideLimits())
	if err != nil {
		t.Fatal(err)
	}

	if u := p.Compute(1, 0, 0.1); u != 0 {
		t.Errorf("first-call derivative must be zero, got %f", u)
	}
	// Error steps from 1 to 2: backward difference (2-1)/0.1.
	if u := p.Compute(2, 0, 0.1); math.Abs(u-10) > 1e-12 {
		t.Errorf("derivative: got %f, want 10", u)
	}
}

func TestPIDOutputClamp(t *testing.T) {
	lim := Limits{Integral: 1e9, OutputMin: -24, OutputMax: 24}
	p, err := NewPID(Gains{Kp: 100}, lim)
	if err != nil {
		t.Fatal(err)
	}

	if u := p.Compute(10, 0, 0.01); u != 24 {
		t.Errorf("output must clamp to max: got %f", u)
	}
	if u := p.Compute(-10, 0, 0.01); u != -24 {
		t.Errorf("output must clamp to min: got %f", u)
	}
}

func TestPIDReset(t *testing.T) {
	p, err := NewPID(Gains{Kp: 1, Ki: 1, Kd: 1}, wideLimits())
	if err != nil {
		t.Fatal(err)
	}

	first := p.Compute(1, 0, 0.1)
	p.Compute(0.5, 0, 0.1)
	p.Reset()

	if again := p.Compute(1, 0, 0.1); math.Abs(again-first) > 1e-12 {
		t.Errorf("reset must restore initial behavior: %f vs %f", again, first)
	}
}

func TestPIDValidation(t *testing.T) {
	if _, err := NewPID(Gains{Kp: -1}, wideLimits()); !errors.Is(err, ErrGains) {
		t.Errorf("negative gain: got %v", err)
	}
	if _, err := NewPID(Gains{}, Limits{Integral: 0, OutputMin: -1, OutputMax: 1}); !errors.Is(err, ErrGains) {
		t.Errorf("zero integral limit: got %v", err)
	}
	if _, err := NewPID(Gains{}, Limits{Integral: 1, OutputMin: 1, OutputMax: -1}); !errors.Is(err, ErrGains) {
		t.Errorf("inverted output limits: got %v", err)
	}
}

func TestPIDSetParam(t *testing.T) {
	p, _ := NewPID(Gains{Kp: 1}, wideLimits())

	if err := p.SetParam("kp", 5); err != nil {
		t.Fatal(err)
	}
	if p.Gains().Kp != 5 {
		t.Errorf("kp not updated: %f", p.Gains().Kp)
	}

	if err := p.SetParam("kp", -5); err == nil {
		t.Error("expected error for negative gain")
	}
	if p.Gains().Kp != 5 {
		t.Errorf("failed SetParam must not change gains: %f", p.Gains().Kp)
	}
}

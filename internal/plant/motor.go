// Package plant models the DC motor as a two-state ODE system: armature
// current and angular velocity, driven by the applied voltage.
package plant

import (
	"errors"
	"fmt"

	"motorlab/internal/sim"
)

// ErrParams indicates physically invalid motor parameters.
var ErrParams = errors.New("plant: invalid motor parameters")

// Params holds the motor constants. Immutable for a run once validated.
type Params struct {
	Resistance float64 // R, ohm
	Inductance float64 // L, henry
	BackEMF    float64 // Ke, V·s/rad
	Torque     float64 // Kt, N·m/A
	Inertia    float64 // J, kg·m^2
	Friction   float64 // B, N·m·s/rad
	LoadTorque float64 // tau_L, N·m
	MaxVoltage float64 // supply limit, volt
}

// DefaultParams is the 1 ohm / 0.5 H benchmark motor used throughout the
// tests and presets.
func DefaultParams() Params {
	return Params{
		Resistance: 1.0,
		Inductance: 0.5,
		BackEMF:    0.01,
		Torque:     0.01,
		Inertia:    0.01,
		Friction:   0.1,
		LoadTorque: 0.0,
		MaxVoltage: 24.0,
	}
}

func (p Params) Validate() error {
	check := func(name string, v float64) error {
		if v <= 0 {
			return fmt.Errorf("%w: %s must be positive, got %g", ErrParams, name, v)
		}
		return nil
	}
	for _, c := range []struct {
		name string
		v    float64
	}{
		{"resistance", p.Resistance},
		{"inductance", p.Inductance},
		{"back-emf constant", p.BackEMF},
		{"torque constant", p.Torque},
		{"inertia", p.Inertia},
		{"friction", p.Friction},
		{"max voltage", p.MaxVoltage},
	} {
		if err := check(c.name, c.v); err != nil {
			return err
		}
	}
	if p.LoadTorque < 0 {
		return fmt.Errorf("%w: load torque must be non-negative, got %g", ErrParams, p.LoadTorque)
	}
	return nil
}

// Motor implements sim.System. State layout: x[0] = armature current (A),
// x[1] = angular velocity (rad/s). Output is angular velocity.
type Motor struct {
	params Params
}

func NewMotor(p Params) (*Motor, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &Motor{params: p}, nil
}

func (m *Motor) StateDim() int { return 2 }

func (m *Motor) Params() Params { return m.params }

func (m *Motor) Derive(x sim.State, u float64, t float64) sim.State {
	i := x[0]
	omega := x[1]
	p := m.params

	di := (u - p.BackEMF*omega - p.Resistance*i) / p.Inductance
	domega := (p.Torque*i - p.Friction*omega - p.LoadTorque) / p.Inertia

	return sim.State{di, domega}
}

func (m *Motor) Output(x sim.State) float64 { return x[1] }

// Energy returns the stored electrical plus kinetic energy.
func (m *Motor) Energy(x sim.State) float64 {
	return 0.5*m.params.Inductance*x[0]*x[0] + 0.5*m.params.Inertia*x[1]*x[1]
}

// SteadyStateSpeed returns the no-controller equilibrium speed for a held
// voltage: omega = (Kt·V − R·tau_L) / (R·B + Kt·Ke).
func (m *Motor) SteadyStateSpeed(voltage float64) float64 {
	p := m.params
	return (p.Torque*voltage - p.Resistance*p.LoadTorque) / (p.Resistance*p.Friction + p.Torque*p.BackEMF)
}

// HoldVoltage returns the voltage balancing friction and load at the given
// speed: V = R·(B·omega + tau_L)/Kt + Ke·omega.
func (m *Motor) HoldVoltage(omega float64) float64 {
	p := m.params
	return p.Resistance*(p.Friction*omega+p.LoadTorque)/p.Torque + p.BackEMF*omega
}

func (m *Motor) GetParams() map[string]float64 {
	return map[string]float64{
		"resistance":  m.params.Resistance,
		"inductance":  m.params.Inductance,
		"back_emf":    m.params.BackEMF,
		"torque":      m.params.Torque,
		"inertia":     m.params.Inertia,
		"friction":    m.params.Friction,
		"load_torque": m.params.LoadTorque,
		"max_voltage": m.params.MaxVoltage,
	}
}

func (m *Motor) SetParam(name string, value float64) error {
	next := m.params
	switch name {
	case "resistance":
		next.Resistance = value
	case "inductance":
		next.Inductance = value
	case "back_emf":
		next.BackEMF = value
	case "torque":
		next.Torque = value
	case "inertia":
		next.Inertia = value
	case "friction":
		next.Friction = value
	case "load_torque":
		next.LoadTorque = value
	case "max_voltage":
		next.MaxVoltage = value
	default:
		return fmt.Errorf("unknown param: %s", name)
	}
	if err := next.Validate(); err != nil {
		return err
	}
	m.params = next
	return nil
}

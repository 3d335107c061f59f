package control

import (
	"errors"
	"fmt"
)

// ErrGains indicates negative or otherwise unusable controller gains.
var ErrGains = errors.New("control: invalid gains")

type Gains struct {
	Kp, Ki, Kd float64
}

func (g Gains) Validate() error {
	if g.Kp < 0 || g.Ki < 0 || g.Kd < 0 {
		return fmt.Errorf("%w: {%g, %g, %g} must be non-negative", ErrGains, g.Kp, g.Ki, g.Kd)
	}
	return nil
}

// Limits bounds the controller's internal and external signals. Integral is
// the anti-windup clamp on the error accumulator; OutputMin/OutputMax bound
// the control signal to the plant's physical voltage range.
type Limits struct {
	Integral  float64
	OutputMin float64
	OutputMax float64
}

func (l Limits) Validate() error {
	if l.Integral <= 0 {
		return fmt.Errorf("%w: integral limit must be positive, got %g", ErrGains, l.Integral)
	}
	if l.OutputMin >= l.OutputMax {
		return fmt.Errorf("%w: output limits [%g, %g]", ErrGains, l.OutputMin, l.OutputMax)
	}
	return nil
}

func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

// PID is the classical fixed-gain controller. Stateful across Compute calls:
// it retains the integral accumulator and the previous error for the
// backward-difference derivative.
type PID struct {
	gains  Gains
	limits Limits

	integral float64
	prevErr  float64
	first    bool
}

func NewPID(g Gains, lim Limits) (*PID, error) {
	if err := g.Validate(); err != nil {
		return nil, err
	}
	if err := lim.Validate(); err != nil {
		return nil, err
	}
	return &PID{gains: g, limits: lim, first: true}, nil
}

func (p *PID) Compute(reference, measured, dt float64) float64 {
	e := reference - measured
	if p.first {
		p.prevErr = e
		p.first = false
	}

	p.integral = clamp(p.integral+e*dt, -p.limits.Integral, p.limits.Integral)
	derivative := 0.0
	if dt > 0 {
		derivative = (e - p.prevErr) / dt
	}
	p.prevErr = e

	u := p.gains.Kp*e + p.gains.Ki*p.integral + p.gains.Kd*derivative
	return clamp(u, p.limits.OutputMin, p.limits.OutputMax)
}

// Reset clears integral and derivative state.
func (p *PID) Reset() {
	p.integral = 0
	p.prevErr = 0
	p.first = true
}

func (p *PID) Gains() Gains { return p.gains }

func (p *PID) GetParams() map[string]float64 {
	return map[string]float64{
		"kp": p.gains.Kp,
		"ki": p.gains.Ki,
		"kd": p.gains.Kd,
	}
}

func (p *PID) SetParam(name string, value float64) error {
	next := p.gains
	switch name {
	case "kp":
		next.Kp = value
	case "ki":
		next.Ki = value
	case "kd":
		next.Kd = value
	default:
		return fmt.Errorf("unknown param: %s", name)
	}
	if err := next.Validate(); err != nil {
		return err
	}
	p.gains = next
	return nil
}

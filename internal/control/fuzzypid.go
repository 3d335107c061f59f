package control

import (
	"fmt"

	"motorlab/internal/fuzzy"
)

// Bounds clamps the effective gains of a FuzzyPID after the inferred deltas
// are added to the base gains.
type Bounds struct {
	Min, Max Gains
}

func (b Bounds) Validate() error {
	if err := b.Min.Validate(); err != nil {
		return err
	}
	if b.Min.Kp > b.Max.Kp || b.Min.Ki > b.Max.Ki || b.Min.Kd > b.Max.Kd {
		return fmt.Errorf("%w: bounds min exceeds max", ErrGains)
	}
	return nil
}

func (b Bounds) clamp(g Gains) Gains {
	return Gains{
		Kp: clamp(g.Kp, b.Min.Kp, b.Max.Kp),
		Ki: clamp(g.Ki, b.Min.Ki, b.Max.Ki),
		Kd: clamp(g.Kd, b.Min.Kd, b.Max.Kd),
	}
}

// FuzzyPID runs the PID law with gains recomputed every step: effective
// gains = base gains + engine deltas, clamped to the configured bounds.
// No memoization; the engine is consulted on every Compute call.
type FuzzyPID struct {
	base   Gains
	bounds Bounds
	limits Limits
	engine *fuzzy.Engine

	effective Gains
	integral  float64
	prevErr   float64
	first     bool
}

func NewFuzzyPID(base Gains, bounds Bounds, engine *fuzzy.Engine, lim Limits) (*FuzzyPID, error) {
	if err := base.Validate(); err != nil {
		return nil, err
	}
	if err := bounds.Validate(); err != nil {
		return nil, err
	}
	if err := lim.Validate(); err != nil {
		return nil, err
	}
	if engine == nil {
		return nil, fmt.Errorf("%w: nil inference engine", ErrGains)
	}
	return &FuzzyPID{
		base:      base,
		bounds:    bounds,
		limits:    lim,
		engine:    engine,
		effective: bounds.clamp(base),
		first:     true,
	}, nil
}

func (f *FuzzyPID) Compute(reference, measured, dt float64) float64 {
	e := reference - measured
	if f.first {
		f.prevErr = e
		f.first = false
	}

	rate := 0.0
	if dt > 0 {
		rate = (e - f.prevErr) / dt
	}

	d := f.engine.Infer(e, rate)
	f.effective = f.bounds.clamp(Gains{
		Kp: f.base.Kp + d.Kp,
		Ki: f.base.Ki + d.Ki,
		Kd: f.base.Kd + d.Kd,
	})

	f.integral = clamp(f.integral+e*dt, -f.limits.Integral, f.limits.Integral)
	f.prevErr = e

	u := f.effective.Kp*e + f.effective.Ki*f.integral + f.effective.Kd*rate
	return clamp(u, f.limits.OutputMin, f.limits.OutputMax)
}

func (f *FuzzyPID) Reset() {
	f.integral = 0
	f.prevErr = 0
	f.first = true
	f.effective = f.bounds.clamp(f.base)
}

// Effective returns the gains used by the most recent Compute call.
func (f *FuzzyPID) Effective() Gains { return f.effective }

// CoverageGaps reports how many inference calls fell outside rule coverage.
func (f *FuzzyPID) CoverageGaps() int { return f.engine.CoverageGaps() }

// Package metrics reduces recorded runs to step-response figures and
// provides streaming metrics observed during a run.
package metrics

import (
	"math"

	"motorlab/internal/sim"
)

// StepMetrics summarizes a step-response run. Each figure carries a Defined
// flag: a metric the horizon could not establish is reported missing, never
// fabricated. A diverged run defines nothing.
type StepMetrics struct {
	RiseTime    float64
	RiseDefined bool

	SettlingTime    float64
	SettlingDefined bool

	OvershootPct    float64
	OvershootDefined bool

	SteadyStateError   float64
	SteadyStateDefined bool

	Diverged bool
}

// Options tunes the evaluation; the zero value selects the defaults.
type Options struct {
	// SettlingBand is the +/- fraction of the target the output must stay
	// inside for the rest of the horizon. Default 0.02.
	SettlingBand float64
}

const defaultSettlingBand = 0.02

// Evaluate derives StepMetrics from a completed record against the target
// value. The record is read-only; metrics are recomputed fresh per call.
func Evaluate(rec *sim.Record, target float64, opts Options) StepMetrics {
	var m StepMetrics
	if rec == nil || rec.Len() == 0 {
		return m
	}
	if rec.Diverged() {
		m.Diverged = true
		return m
	}

	band := opts.SettlingBand
	if band <= 0 {
		band = defaultSettlingBand
	}

	m.riseTime(rec, target)
	m.settlingTime(rec, target, band)
	m.overshoot(rec, target)

	last := rec.Outputs[rec.Len()-1]
	m.SteadyStateError = math.Abs(target - last)
	m.SteadyStateDefined = true

	return m
}

// riseTime finds the first 10% crossing followed by the first 90% crossing.
func (m *StepMetrics) riseTime(rec *sim.Record, target float64) {
	if target == 0 {
		return
	}
	tLo, tHi := math.NaN(), math.NaN()
	for i, out := range rec.Outputs {
		frac := out / target
		if math.IsNaN(tLo) && frac >= 0.1 {
			tLo = rec.Times[i]
		}
		if !math.IsNaN(tLo) && frac >= 0.9 {
			tHi = rec.Times[i]
			break
		}
	}
	if !math.IsNaN(tLo) && !math.IsNaN(tHi) {
		m.RiseTime = tHi - tLo
		m.RiseDefined = true
	}
}

// settlingTime finds the first instant after which the output never leaves
// the band again. An output still outside the band at the final sample means
// the horizon ended before settling: undefined.
func (m *StepMetrics) settlingTime(rec *sim.Record, target, band float64) {
	tol := band * math.Abs(target)
	lastViolation := -1
	for i := rec.Len() - 1; i >= 0; i-- {
		if math.Abs(rec.Outputs[i]-target) > tol {
			lastViolation = i
			break
		}
	}
	switch {
	case lastViolation == rec.Len()-1:
		// never settled
	case lastViolation < 0:
		m.SettlingTime = rec.Times[0]
		m.SettlingDefined = true
	default:
		m.SettlingTime = rec.Times[lastViolation+1]
		m.SettlingDefined = true
	}
}

func (m *StepMetrics) overshoot(rec *sim.Record, target float64) {
	if target == 0 {
		// No motion demanded: overshoot is zero by definition.
		m.OvershootPct = 0
		m.OvershootDefined = true
		return
	}
	peak := rec.Outputs[0]
	for _, out := range rec.Outputs[1:] {
		if out > peak {
			peak = out
		}
	}
	pct := (peak - target) / target * 100
	if pct < 0 {
		pct = 0
	}
	m.OvershootPct = pct
	m.OvershootDefined = true
}

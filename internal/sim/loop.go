package sim

import (
	"context"
	"fmt"
	"math"
)

// Loop couples one plant with one controller over a reference trajectory.
type Loop struct {
	dyn        System
	integrator Integrator
	controller Controller
	reference  Reference
	metrics    []Metric
	observers  []Observer
}

func NewLoop(dyn System, integrator Integrator, controller Controller, reference Reference) *Loop {
	return &Loop{
		dyn:        dyn,
		integrator: integrator,
		controller: controller,
		reference:  reference,
	}
}

func (l *Loop) AddMetric(m Metric)     { l.metrics = append(l.metrics, m) }
func (l *Loop) AddObserver(o Observer) { l.observers = append(l.observers, o) }

// Run drives discrete time from 0 to cfg.Horizon in steps of cfg.Dt. Each
// step samples the reference, computes the control signal from the measured
// output, advances the plant, and appends one record row. On divergence the
// partial record is returned together with the fault.
func (l *Loop) Run(ctx context.Context, x0 State, cfg Config) (*Record, error) {
	if err := l.validate(x0, cfg); err != nil {
		return nil, err
	}

	steps := int(cfg.Horizon/cfg.Dt + 0.5)
	rec := newRecord(steps)

	for _, m := range l.metrics {
		m.Reset()
	}
	l.controller.Reset()

	x := x0.Clone()
	t := 0.0

	for i := 0; i < steps; i++ {
		select {
		case <-ctx.Done():
			return rec, ctx.Err()
		default:
		}

		ref := l.reference(t)
		y := l.dyn.Output(x)
		u := l.controller.Compute(ref, y, cfg.Dt)

		if math.IsNaN(u) || math.IsInf(u, 0) {
			rec.Fault = &Fault{Step: i, Time: t, Wrapped: ErrNonFiniteControl}
			return rec, rec.Fault
		}

		for _, m := range l.metrics {
			m.Observe(ref, y, u, t)
		}
		for _, obs := range l.observers {
			obs.OnStep(ref, y, u, t)
		}

		rec.append(t, ref, y, u)

		x = l.integrator.Step(l.dyn, x, u, t, cfg.Dt)
		t = float64(i+1) * cfg.Dt

		if cfg.ValidateState && !x.IsValid() {
			rec.Fault = &Fault{Step: i, Time: t, Wrapped: ErrNonFiniteState}
			return rec, rec.Fault
		}
	}

	for _, m := range l.metrics {
		rec.Metrics[m.Name()] = m.Value()
	}

	return rec, nil
}

func (l *Loop) validate(x0 State, cfg Config) error {
	if cfg.Dt <= 0 {
		return fmt.Errorf("%w: dt must be positive, got %f", ErrConfig, cfg.Dt)
	}
	if cfg.Horizon <= 0 {
		return fmt.Errorf("%w: horizon must be positive, got %f", ErrConfig, cfg.Horizon)
	}
	if len(x0) != l.dyn.StateDim() {
		return fmt.Errorf("%w: initial state dim %d, plant wants %d", ErrConfig, len(x0), l.dyn.StateDim())
	}
	if !x0.IsValid() {
		return fmt.Errorf("%w: non-finite initial state", ErrConfig)
	}
	return nil
}

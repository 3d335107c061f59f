// Package experiment assembles plants, controllers, integrators and
// references from configuration, and builds comparison runs.
package experiment

import (
	"fmt"

	"motorlab/internal/config"
	"motorlab/internal/control"
	"motorlab/internal/fuzzy"
	"motorlab/internal/integrators"
	"motorlab/internal/metrics"
	"motorlab/internal/plant"
	"motorlab/internal/sim"
)

// Setup is everything a run needs, with factories so fresh state can be
// built per run.
type Setup struct {
	Plant      func() sim.System
	Integrator func() sim.Integrator
	Controller func() sim.Controller
	Reference  sim.Reference
	SimConfig  sim.Config
	Target     float64
}

// Build resolves a config into factories, validating everything up front so
// configuration errors surface before any run starts.
func Build(cfg *config.Config) (*Setup, error) {
	params := plantParams(cfg.Plant)
	if _, err := plant.NewMotor(params); err != nil {
		return nil, err
	}

	integ, err := IntegratorFactory(cfg.Integrator)
	if err != nil {
		return nil, err
	}

	ctrl, err := ControllerFactory(cfg.Controller, cfg)
	if err != nil {
		return nil, err
	}

	ref, err := BuildReference(cfg.Reference)
	if err != nil {
		return nil, err
	}

	return &Setup{
		Plant: func() sim.System {
			m, _ := plant.NewMotor(params)
			return m
		},
		Integrator: integ,
		Controller: ctrl,
		Reference:  ref,
		SimConfig:  sim.Config{Dt: cfg.Dt, Horizon: cfg.Horizon, ValidateState: true},
		Target:     cfg.Reference.Amplitude,
	}, nil
}

// Loop builds a ready-to-run loop with the default streaming metrics.
func (s *Setup) Loop() *sim.Loop {
	loop := sim.NewLoop(s.Plant(), s.Integrator(), s.Controller(), s.Reference)
	for _, m := range DefaultMetrics() {
		loop.AddMetric(m)
	}
	return loop
}

// BuildComparison pairs the classical and fuzzy controllers over the same
// plant, reference and horizon.
func BuildComparison(cfg *config.Config) (*sim.Comparison, *Setup, error) {
	setup, err := Build(cfg)
	if err != nil {
		return nil, nil, err
	}

	pidFactory, err := ControllerFactory("pid", cfg)
	if err != nil {
		return nil, nil, err
	}
	fuzzyFactory, err := ControllerFactory("fuzzy", cfg)
	if err != nil {
		return nil, nil, err
	}

	return &sim.Comparison{
		Plant:      setup.Plant,
		Integrator: setup.Integrator,
		Reference:  setup.Reference,
		Candidates: []sim.Candidate{
			{Name: "pid", Controller: pidFactory},
			{Name: "fuzzy", Controller: fuzzyFactory},
		},
	}, setup, nil
}

func DefaultMetrics() []sim.Metric {
	return []sim.Metric{
		metrics.NewControlEffort(),
		metrics.NewITAE(),
	}
}

func IntegratorFactory(name string) (func() sim.Integrator, error) {
	switch name {
	case "euler":
		return func() sim.Integrator { return integrators.NewEuler() }, nil
	case "rk4", "":
		return func() sim.Integrator { return integrators.NewRK4() }, nil
	default:
		return nil, fmt.Errorf("unknown integrator: %s", name)
	}
}

// ControllerFactory validates the controller setup once, then hands out a
// factory producing freshly-initialized controllers.
func ControllerFactory(name string, cfg *config.Config) (func() sim.Controller, error) {
	gains := control.Gains{Kp: cfg.Gains.Kp, Ki: cfg.Gains.Ki, Kd: cfg.Gains.Kd}
	limits := controlLimits(gains, cfg.Plant.MaxVoltage)

	switch name {
	case "pid", "":
		if _, err := control.NewPID(gains, limits); err != nil {
			return nil, err
		}
		return func() sim.Controller {
			c, _ := control.NewPID(gains, limits)
			return c
		}, nil

	case "fuzzy":
		engineCfg, err := fuzzy.DefaultConfig(fuzzySpans(cfg.Fuzzy))
		if err != nil {
			return nil, err
		}
		bounds := control.Bounds{
			Min: control.Gains{Kp: cfg.Fuzzy.Min.Kp, Ki: cfg.Fuzzy.Min.Ki, Kd: cfg.Fuzzy.Min.Kd},
			Max: control.Gains{Kp: cfg.Fuzzy.Max.Kp, Ki: cfg.Fuzzy.Max.Ki, Kd: cfg.Fuzzy.Max.Kd},
		}
		build := func() (sim.Controller, error) {
			engine, err := fuzzy.NewEngine(engineCfg)
			if err != nil {
				return nil, err
			}
			return control.NewFuzzyPID(gains, bounds, engine, limits)
		}
		if _, err := build(); err != nil {
			return nil, err
		}
		return func() sim.Controller {
			c, _ := build()
			return c
		}, nil

	default:
		return nil, fmt.Errorf("unknown controller: %s", name)
	}
}

func BuildReference(rc config.ReferenceConfig) (sim.Reference, error) {
	switch rc.Type {
	case "step", "":
		return sim.StepReference(rc.Amplitude), nil
	case "ramp":
		return sim.RampReference(rc.Amplitude, rc.RiseTime), nil
	case "sine":
		return sim.SineReference(rc.Amplitude, rc.Frequency), nil
	default:
		return nil, fmt.Errorf("unknown reference type: %s", rc.Type)
	}
}

func plantParams(pc config.PlantConfig) plant.Params {
	return plant.Params{
		Resistance: pc.Resistance,
		Inductance: pc.Inductance,
		BackEMF:    pc.BackEMF,
		Torque:     pc.Torque,
		Inertia:    pc.Inertia,
		Friction:   pc.Friction,
		LoadTorque: pc.LoadTorque,
		MaxVoltage: pc.MaxVoltage,
	}
}

func fuzzySpans(fc config.FuzzyConfig) fuzzy.Spans {
	return fuzzy.Spans{
		Error:   fc.ErrorSpan,
		Rate:    fc.RateSpan,
		DeltaKp: fc.DeltaKpSpan,
		DeltaKi: fc.DeltaKiSpan,
		DeltaKd: fc.DeltaKdSpan,
	}
}

// controlLimits bounds the output to the supply voltage and sizes the
// anti-windup clamp so the integral term alone cannot exceed the supply.
func controlLimits(g control.Gains, maxVoltage float64) control.Limits {
	integral := 1e9
	if g.Ki > 0 {
		integral = maxVoltage / g.Ki
	}
	return control.Limits{
		Integral:  integral,
		OutputMin: -maxVoltage,
		OutputMax: maxVoltage,
	}
}

package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

const (
	DefaultDt      = 0.01
	DefaultHorizon = 5.0
	DefaultKp      = 2.0
	DefaultKi      = 5.0
	DefaultKd      = 0.1
)

type Config struct {
	Integrator string          `yaml:"integrator"`
	Controller string          `yaml:"controller"`
	Dt         float64         `yaml:"dt"`
	Horizon    float64         `yaml:"horizon"`
	Plant      PlantConfig     `yaml:"plant"`
	Gains      GainsConfig     `yaml:"pid_gains"`
	Fuzzy      FuzzyConfig     `yaml:"fuzzy"`
	Reference  ReferenceConfig `yaml:"reference"`
}

type PlantConfig struct {
	Resistance float64 `yaml:"resistance"`
	Inductance float64 `yaml:"inductance"`
	BackEMF    float64 `yaml:"back_emf"`
	Torque     float64 `yaml:"torque"`
	Inertia    float64 `yaml:"inertia"`
	Friction   float64 `yaml:"friction"`
	LoadTorque float64 `yaml:"load_torque"`
	MaxVoltage float64 `yaml:"max_voltage"`
}

type GainsConfig struct {
	Kp float64 `yaml:"kp"`
	Ki float64 `yaml:"ki"`
	Kd float64 `yaml:"kd"`
}

// FuzzyConfig shapes the inference engine: input/output spans and per-gain
// clamps on the effective gains.
type FuzzyConfig struct {
	ErrorSpan   float64     `yaml:"error_span"`
	RateSpan    float64     `yaml:"rate_span"`
	DeltaKpSpan float64     `yaml:"delta_kp_span"`
	DeltaKiSpan float64     `yaml:"delta_ki_span"`
	DeltaKdSpan float64     `yaml:"delta_kd_span"`
	Min         GainsConfig `yaml:"gain_min"`
	Max         GainsConfig `yaml:"gain_max"`
}

type ReferenceConfig struct {
	Type      string  `yaml:"type"` // step, ramp, sine
	Amplitude float64 `yaml:"amplitude"`
	RiseTime  float64 `yaml:"rise_time"`
	Frequency float64 `yaml:"frequency"`
}

func DefaultConfig() *Config {
	return &Config{
		Integrator: "rk4",
		Controller: "pid",
		Dt:         DefaultDt,
		Horizon:    DefaultHorizon,
		Plant: PlantConfig{
			Resistance: 1.0,
			Inductance: 0.5,
			BackEMF:    0.01,
			Torque:     0.01,
			Inertia:    0.01,
			Friction:   0.1,
			MaxVoltage: 24.0,
		},
		Gains: GainsConfig{Kp: DefaultKp, Ki: DefaultKi, Kd: DefaultKd},
		Fuzzy: FuzzyConfig{
			ErrorSpan:   1.0,
			RateSpan:    10.0,
			DeltaKpSpan: 1.0,
			DeltaKiSpan: 2.0,
			DeltaKdSpan: 0.1,
			Min:         GainsConfig{Kp: 0, Ki: 0, Kd: 0},
			Max:         GainsConfig{Kp: 200, Ki: 400, Kd: 20},
		},
		Reference: ReferenceConfig{Type: "step", Amplitude: 1.0},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

package config

// Presets are named starting points for the CLI; flags still override any
// field.
var Presets = map[string]*Config{
	"nominal": {
		Integrator: "rk4", Controller: "pid", Dt: 0.01, Horizon: 5.0,
		Gains:     GainsConfig{Kp: 2, Ki: 5, Kd: 0.1},
		Reference: ReferenceConfig{Type: "step", Amplitude: 1.0},
	},
	"aggressive": {
		Integrator: "rk4", Controller: "pid", Dt: 0.01, Horizon: 5.0,
		Gains:     GainsConfig{Kp: 60, Ki: 120, Kd: 0},
		Reference: ReferenceConfig{Type: "step", Amplitude: 1.0},
	},
	"fuzzy": {
		Integrator: "rk4", Controller: "fuzzy", Dt: 0.01, Horizon: 5.0,
		Gains: GainsConfig{Kp: 60, Ki: 120, Kd: 0},
		Fuzzy: FuzzyConfig{
			ErrorSpan: 1.0, RateSpan: 10.0,
			DeltaKpSpan: 30, DeltaKiSpan: 60, DeltaKdSpan: 2,
			Max: GainsConfig{Kp: 200, Ki: 400, Kd: 20},
		},
		Reference: ReferenceConfig{Type: "step", Amplitude: 1.0},
	},
	"loaded": {
		Integrator: "rk4", Controller: "pid", Dt: 0.01, Horizon: 8.0,
		Gains:     GainsConfig{Kp: 60, Ki: 120, Kd: 0},
		Plant:     PlantConfig{LoadTorque: 0.02},
		Reference: ReferenceConfig{Type: "step", Amplitude: 1.0},
	},
	"tracking": {
		Integrator: "rk4", Controller: "fuzzy", Dt: 0.005, Horizon: 10.0,
		Gains: GainsConfig{Kp: 60, Ki: 120, Kd: 0},
		Fuzzy: FuzzyConfig{
			ErrorSpan: 1.0, RateSpan: 10.0,
			DeltaKpSpan: 30, DeltaKiSpan: 60, DeltaKdSpan: 2,
			Max: GainsConfig{Kp: 200, Ki: 400, Kd: 20},
		},
		Reference: ReferenceConfig{Type: "sine", Amplitude: 1.0, Frequency: 0.25},
	},
}

// GetPreset returns the named preset merged over the defaults, or nil.
func GetPreset(name string) *Config {
	p, ok := Presets[name]
	if !ok {
		return nil
	}
	cfg := DefaultConfig()
	cfg.Integrator = p.Integrator
	cfg.Controller = p.Controller
	cfg.Dt = p.Dt
	cfg.Horizon = p.Horizon
	cfg.Gains = p.Gains
	cfg.Reference = p.Reference
	if p.Plant != (PlantConfig{}) {
		merged := cfg.Plant
		if p.Plant.LoadTorque != 0 {
			merged.LoadTorque = p.Plant.LoadTorque
		}
		cfg.Plant = merged
	}
	if p.Fuzzy != (FuzzyConfig{}) {
		cfg.Fuzzy = p.Fuzzy
	}
	return cfg
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	return names
}

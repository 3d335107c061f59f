package fuzzy

import (
	"fmt"
	"math"
)

// Deltas is the crisp inference result: gain adjustments to add to the PID
// base gains. CoverageGap is set when at least one output had no firing rule
// and fell back to its domain midpoint.
type Deltas struct {
	Kp, Ki, Kd  float64
	CoverageGap bool
}

// Spans configures the symmetric domains of the engine's variables: inputs
// are clamped to [-Error, Error] and [-Rate, Rate]; gain deltas range over
// [-DeltaK*, DeltaK*].
type Spans struct {
	Error   float64
	Rate    float64
	DeltaKp float64
	DeltaKi float64
	DeltaKd float64
}

// Config assembles the engine's variables and rule tables. Zero-value tables
// are not usable; use DefaultConfig as the starting point.
type Config struct {
	Error   Variable
	Rate    Variable
	DeltaKp Variable
	DeltaKi Variable
	DeltaKd Variable

	KpTable RuleTable
	KiTable RuleTable
	KdTable RuleTable
}

// DefaultConfig builds standard 5-label partitions over the given spans with
// the default rule tables.
func DefaultConfig(spans Spans) (Config, error) {
	var cfg Config
	var err error

	if cfg.Error, err = StandardVariable("error", spans.Error); err != nil {
		return Config{}, err
	}
	if cfg.Rate, err = StandardVariable("error_rate", spans.Rate); err != nil {
		return Config{}, err
	}
	if cfg.DeltaKp, err = StandardVariable("delta_kp", spans.DeltaKp); err != nil {
		return Config{}, err
	}
	if cfg.DeltaKi, err = StandardVariable("delta_ki", spans.DeltaKi); err != nil {
		return Config{}, err
	}
	if cfg.DeltaKd, err = StandardVariable("delta_kd", spans.DeltaKd); err != nil {
		return Config{}, err
	}

	cfg.KpTable = DefaultKpTable
	cfg.KiTable = DefaultKiTable
	cfg.KdTable = DefaultKdTable
	return cfg, nil
}

type output struct {
	variable Variable
	table    RuleTable
}

// Engine is a Mamdani inference engine with a fixed rule base. Safe for
// concurrent Infer calls except for the coverage-gap counter, which is only
// read between runs.
type Engine struct {
	errVar  Variable
	rateVar Variable
	outputs [3]output
	gaps    int
}

func NewEngine(cfg Config) (*Engine, error) {
	for _, t := range []struct {
		name  string
		table RuleTable
	}{
		{"kp", cfg.KpTable}, {"ki", cfg.KiTable}, {"kd", cfg.KdTable},
	} {
		if err := t.table.Validate(); err != nil {
			return nil, fmt.Errorf("%s: %w", t.name, err)
		}
	}

	return &Engine{
		errVar:  cfg.Error,
		rateVar: cfg.Rate,
		outputs: [3]output{
			{variable: cfg.DeltaKp, table: cfg.KpTable},
			{variable: cfg.DeltaKi, table: cfg.KiTable},
			{variable: cfg.DeltaKd, table: cfg.KdTable},
		},
	}, nil
}

// Infer runs one fuzzification -> rule evaluation -> aggregation ->
// defuzzification pass for the given crisp inputs. Inputs outside the
// declared domains are clamped first.
func (e *Engine) Infer(trackErr, errRate float64) Deltas {
	muErr := e.errVar.Fuzzify(trackErr)
	muRate := e.rateVar.Fuzzify(errRate)

	// Firing strengths are shared by all three outputs; only the consequent
	// label differs per table.
	var firing [numLabels][numLabels]float64
	for i := 0; i < numLabels; i++ {
		for j := 0; j < numLabels; j++ {
			firing[i][j] = math.Min(muErr[i], muRate[j])
		}
	}

	var crisp [3]float64
	gap := false
	for k, out := range e.outputs {
		var agg Grades
		for i := 0; i < numLabels; i++ {
			for j := 0; j < numLabels; j++ {
				w := firing[i][j]
				if w == 0 {
					continue
				}
				lbl := out.table[i][j]
				if w > agg[lbl] {
					agg[lbl] = w
				}
			}
		}
		crisp[k], gap = e.defuzzify(out.variable, agg, gap)
	}

	return Deltas{Kp: crisp[0], Ki: crisp[1], Kd: crisp[2], CoverageGap: gap}
}

// defuzzify computes the centroid over the label representatives. An all-zero
// aggregate means the input escaped every rule's support; the variable's
// midpoint is the safe fallback and the gap is counted, not fatal.
func (e *Engine) defuzzify(v Variable, agg Grades, gap bool) (float64, bool) {
	num, den := 0.0, 0.0
	for lbl, mu := range agg {
		if mu == 0 {
			continue
		}
		num += v.Terms[lbl].Peak() * mu
		den += mu
	}
	if den == 0 {
		e.gaps++
		return v.Midpoint(), true
	}
	return num / den, gap
}

// CoverageGaps reports how many defuzzifications fell back to the midpoint
// since construction.
func (e *Engine) CoverageGaps() int { return e.gaps }

package export

import (
	"encoding/json"
	"os"

	"motorlab/internal/metrics"
	"motorlab/internal/sim"
)

// RunDump is the JSON shape written by WriteJSON: full series plus the step
// metrics computed for the run.
type RunDump struct {
	Name    string              `json:"name"`
	Times   []float64           `json:"times"`
	Refs    []float64           `json:"references"`
	Outputs []float64           `json:"outputs"`
	Ctrls   []float64           `json:"controls"`
	Errors  []float64           `json:"errors"`
	Metrics map[string]float64  `json:"metrics"`
	Step    metrics.StepMetrics `json:"step_metrics"`
}

func WriteJSON(path string, name string, rec *sim.Record, target float64) error {
	dump := RunDump{
		Name:    name,
		Times:   rec.Times,
		Refs:    rec.References,
		Outputs: rec.Outputs,
		Ctrls:   rec.Controls,
		Errors:  rec.Errors,
		Metrics: rec.Metrics,
		Step:    metrics.Evaluate(rec, target, metrics.Options{}),
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(dump)
}

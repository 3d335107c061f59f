package storage

import (
	"math"
	"testing"

	"motorlab/internal/sim"
)

func sampleRecord() *sim.Record {
	rec := &sim.Record{Metrics: map[string]float64{"itae": 0.125, "control_effort": 9.5}}
	for i := 0; i < 5; i++ {
		t := float64(i) * 0.01
		out := float64(i) * 0.2
		rec.Times = append(rec.Times, t)
		rec.References = append(rec.References, 1)
		rec.Outputs = append(rec.Outputs, out)
		rec.Controls = append(rec.Controls, 10-out)
		rec.Errors = append(rec.Errors, 1-out)
	}
	return rec
}

func TestStoreRoundTrip(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatal(err)
	}

	rec := sampleRecord()
	runID, err := st.Save("pid", "rk4", "step", 0.01, 5.0, rec)
	if err != nil {
		t.Fatal(err)
	}
	if runID == "" {
		t.Fatal("empty run id")
	}

	meta, err := st.Load(runID)
	if err != nil {
		t.Fatal(err)
	}
	if meta.Controller != "pid" || meta.Integrator != "rk4" || meta.Reference != "step" {
		t.Errorf("metadata mismatch: %+v", meta)
	}
	if meta.Dt != 0.01 || meta.Horizon != 5.0 {
		t.Errorf("metadata timing mismatch: %+v", meta)
	}
	if meta.Diverged {
		t.Error("clean run flagged diverged")
	}
	if meta.Metrics["itae"] != 0.125 {
		t.Errorf("metrics not persisted: %v", meta.Metrics)
	}

	loaded, err := st.LoadSeries(runID)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Len() != rec.Len() {
		t.Fatalf("series length: got %d, want %d", loaded.Len(), rec.Len())
	}
	for i := 0; i < rec.Len(); i++ {
		if math.Abs(loaded.Outputs[i]-rec.Outputs[i]) > 1e-6 {
			t.Errorf("output[%d]: got %f, want %f", i, loaded.Outputs[i], rec.Outputs[i])
		}
		if math.Abs(loaded.Controls[i]-rec.Controls[i]) > 1e-6 {
			t.Errorf("control[%d]: got %f, want %f", i, loaded.Controls[i], rec.Controls[i])
		}
	}
}

func TestStoreSavesDivergedFlag(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatal(err)
	}

	rec := sampleRecord()
	rec.Fault = &sim.Fault{Step: 5, Time: 0.05, Wrapped: sim.ErrNonFiniteState}

	runID, err := st.Save("fuzzy", "euler", "step", 0.01, 5.0, rec)
	if err != nil {
		t.Fatal(err)
	}

	meta, err := st.Load(runID)
	if err != nil {
		t.Fatal(err)
	}
	if !meta.Diverged {
		t.Error("diverged flag lost on save")
	}
}

func TestStoreList(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatal(err)
	}

	if _, err := st.Save("pid", "rk4", "step", 0.01, 5.0, sampleRecord()); err != nil {
		t.Fatal(err)
	}
	if _, err := st.Save("fuzzy", "rk4", "step", 0.01, 5.0, sampleRecord()); err != nil {
		t.Fatal(err)
	}

	runs, err := st.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
}

func TestStoreListEmpty(t *testing.T) {
	st := New(t.TempDir() + "/missing")

	runs, err := st.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 0 {
		t.Errorf("expected no runs, got %d", len(runs))
	}
}

func TestStoreLoadUnknown(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatal(err)
	}

	if _, err := st.Load("missing_run"); err == nil {
		t.Error("expected error for unknown run id")
	}
	if _, err := st.LoadSeries("missing_run"); err == nil {
		t.Error("expected error for unknown series")
	}
}

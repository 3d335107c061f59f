// Package storage persists runs to disk as a metadata.json plus a series.csv
// per run, under a flat base directory keyed by run ID.
package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"motorlab/internal/sim"
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID         string             `json:"id"`
	Controller string             `json:"controller"`
	Integrator string             `json:"integrator"`
	Reference  string             `json:"reference"`
	Timestamp  time.Time          `json:"timestamp"`
	Dt         float64            `json:"dt"`
	Horizon    float64            `json:"horizon"`
	Diverged   bool               `json:"diverged"`
	Metrics    map[string]float64 `json:"metrics"`
}

// Save writes one run under a fresh ID and returns it. Partial records from
// diverged runs are saved the same way, flagged in the metadata.
func (s *Store) Save(controller, integrator, reference string, dt, horizon float64, rec *sim.Record) (string, error) {
	runID := fmt.Sprintf("%s_%d", controller, time.Now().UnixNano())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:         runID,
		Controller: controller,
		Integrator: integrator,
		Reference:  reference,
		Timestamp:  time.Now(),
		Dt:         dt,
		Horizon:    horizon,
		Diverged:   rec.Diverged(),
		Metrics:    rec.Metrics,
	}

	metaPath := filepath.Join(runDir, "metadata.json")
	metaFile, err := os.Create(metaPath)
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	csvPath := filepath.Join(runDir, "series.csv")
	csvFile, err := os.Create(csvPath)
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	w := csv.NewWriter(csvFile)
	defer w.Flush()

	if err := w.Write([]string{"time", "reference", "output", "control", "error"}); err != nil {
		return "", err
	}

	for i := 0; i < rec.Len(); i++ {
		row := []string{
			strconv.FormatFloat(rec.Times[i], 'f', 6, 64),
			strconv.FormatFloat(rec.References[i], 'f', 6, 64),
			strconv.FormatFloat(rec.Outputs[i], 'f', 6, 64),
			strconv.FormatFloat(rec.Controls[i], 'f', 6, 64),
			strconv.FormatFloat(rec.Errors[i], 'f', 6, 64),
		}
		if err := w.Write(row); err != nil {
			return "", err
		}
	}

	return runID, nil
}

// List returns metadata for every run in the store, skipping entries with
// missing or unreadable metadata.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		metaPath := filepath.Join(s.baseDir, entry.Name(), "metadata.json")
		data, err := os.ReadFile(metaPath)
		if err != nil {
			continue
		}

		var meta RunMetadata
		if err := json.Unmarshal(data, &meta); err != nil {
			continue
		}

		runs = append(runs, meta)
	}

	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	metaPath := filepath.Join(s.baseDir, runID, "metadata.json")
	data, err := os.ReadFile(metaPath)
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}

	return &meta, nil
}

// LoadSeries rebuilds a record from a saved series.csv. Rows that fail to
// parse are skipped.
func (s *Store) LoadSeries(runID string) (*sim.Record, error) {
	csvPath := filepath.Join(s.baseDir, runID, "series.csv")
	file, err := os.Open(csvPath)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1

	rows, err := r.ReadAll()
	if err != nil {
		return nil, err
	}

	rec := &sim.Record{Metrics: map[string]float64{}}
	for i := 1; i < len(rows); i++ {
		row := rows[i]
		if len(row) < 5 {
			continue
		}
		vals := make([]float64, 5)
		ok := true
		for j := 0; j < 5; j++ {
			v, err := strconv.ParseFloat(row[j], 64)
			if err != nil {
				ok = false
				break
			}
			vals[j] = v
		}
		if !ok {
			continue
		}
		rec.Times = append(rec.Times, vals[0])
		rec.References = append(rec.References, vals[1])
		rec.Outputs = append(rec.Outputs, vals[2])
		rec.Controls = append(rec.Controls, vals[3])
		rec.Errors = append(rec.Errors, vals[4])
	}

	return rec, nil
}

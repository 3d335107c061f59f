package analysis

import (
	"math"
	"testing"

	"motorlab/internal/sim"
)

func TestFFTConstantSignal(t *testing.T) {
	data := []float64{1, 1, 1, 1}
	result := FFT(data)

	if math.Abs(real(result[0])-4) > 1e-9 {
		t.Errorf("DC bin: got %f, want 4", real(result[0]))
	}
	for i := 1; i < len(result); i++ {
		if math.Hypot(real(result[i]), imag(result[i])) > 1e-9 {
			t.Errorf("bin %d should be zero for a constant signal", i)
		}
	}
}

func TestPowerSpectrumFindsSine(t *testing.T) {
	const (
		dt   = 0.01
		freq = 4.0
		n    = 256
	)

	data := make([]float64, n)
	for i := range data {
		data[i] = math.Sin(2 * math.Pi * freq * float64(i) * dt)
	}

	s := PowerSpectrum(data, dt)
	if len(s.Magnitudes) != n/2 {
		t.Fatalf("one-sided spectrum length: got %d, want %d", len(s.Magnitudes), n/2)
	}

	got := s.DominantFrequency()
	if math.Abs(got-freq) > 0.5 {
		t.Errorf("dominant frequency: got %f, want %f", got, freq)
	}
}

func TestPowerSpectrumTruncatesToPowerOfTwo(t *testing.T) {
	data := make([]float64, 300) // truncates to 256
	for i := range data {
		data[i] = math.Sin(2 * math.Pi * 2.0 * float64(i) * 0.01)
	}

	s := PowerSpectrum(data, 0.01)
	if len(s.Magnitudes) != 128 {
		t.Errorf("expected 128 bins after truncation, got %d", len(s.Magnitudes))
	}
}

func TestPowerSpectrumDegenerate(t *testing.T) {
	if s := PowerSpectrum(nil, 0.01); len(s.Magnitudes) != 0 {
		t.Error("empty input must give empty spectrum")
	}
	if s := PowerSpectrum([]float64{1}, 0.01); len(s.Magnitudes) != 0 {
		t.Error("single sample must give empty spectrum")
	}
	if s := PowerSpectrum([]float64{1, 2, 3, 4}, 0); len(s.Magnitudes) != 0 {
		t.Error("zero dt must give empty spectrum")
	}
}

func TestErrorSpectrumRemovesDC(t *testing.T) {
	const dt = 0.01

	rec := &sim.Record{}
	for i := 0; i < 256; i++ {
		e := 5.0 + math.Sin(2*math.Pi*3.0*float64(i)*dt) // large offset plus 3 Hz ripple
		rec.Times = append(rec.Times, float64(i)*dt)
		rec.Errors = append(rec.Errors, e)
		rec.References = append(rec.References, 1)
		rec.Outputs = append(rec.Outputs, 1-e)
		rec.Controls = append(rec.Controls, 0)
	}

	s := ErrorSpectrum(rec, dt)

	got := s.DominantFrequency()
	if math.Abs(got-3.0) > 0.5 {
		t.Errorf("dominant frequency with DC offset: got %f, want 3", got)
	}
}

func TestErrorSpectrumEmptyRecord(t *testing.T) {
	if s := ErrorSpectrum(nil, 0.01); len(s.Magnitudes) != 0 {
		t.Error("nil record must give empty spectrum")
	}
	if s := ErrorSpectrum(&sim.Record{}, 0.01); len(s.Magnitudes) != 0 {
		t.Error("empty record must give empty spectrum")
	}
}

// Package analysis extracts frequency-domain features from recorded runs,
// mainly to spot residual oscillation in the tracking error.
package analysis

import (
	"math"
	"math/cmplx"

	"motorlab/internal/sim"
)

// FFT computes the discrete Fourier transform via radix-2 Cooley-Tukey.
// Length must be a power of two; use Spectrum for arbitrary-length series.
func FFT(data []float64) []complex128 {
	n := len(data)
	if n <= 1 {
		result := make([]complex128, n)
		for i := range data {
			result[i] = complex(data[i], 0)
		}
		return result
	}

	if n%2 != 0 {
		panic("fft requires power of 2 length")
	}

	even := make([]float64, n/2)
	odd := make([]float64, n/2)

	for i := 0; i < n/2; i++ {
		even[i] = data[2*i]
		odd[i] = data[2*i+1]
	}

	feven := FFT(even)
	fodd := FFT(odd)

	result := make([]complex128, n)
	for k := 0; k < n/2; k++ {
		w := cmplx.Exp(complex(0, -2*math.Pi*float64(k)/float64(n)))
		result[k] = feven[k] + w*fodd[k]
		result[k+n/2] = feven[k] - w*fodd[k]
	}

	return result
}

// Spectrum holds the one-sided magnitude spectrum of a uniformly sampled
// signal.
type Spectrum struct {
	Frequencies []float64
	Magnitudes  []float64
}

// PowerSpectrum truncates the series to the largest power-of-two length and
// returns one-sided magnitudes with their frequencies in Hz.
func PowerSpectrum(data []float64, dt float64) Spectrum {
	n := largestPowerOfTwo(len(data))
	if n < 2 || dt <= 0 {
		return Spectrum{}
	}

	fft := FFT(data[:n])
	half := n / 2

	s := Spectrum{
		Frequencies: make([]float64, half),
		Magnitudes:  make([]float64, half),
	}
	for i := 0; i < half; i++ {
		s.Frequencies[i] = float64(i) / (float64(n) * dt)
		s.Magnitudes[i] = cmplx.Abs(fft[i])
	}
	return s
}

// ErrorSpectrum runs PowerSpectrum over a record's tracking error with the
// mean removed, so the DC bin does not swamp oscillatory content.
func ErrorSpectrum(rec *sim.Record, dt float64) Spectrum {
	if rec == nil || rec.Len() == 0 {
		return Spectrum{}
	}
	mean := 0.0
	for _, e := range rec.Errors {
		mean += e
	}
	mean /= float64(len(rec.Errors))

	centered := make([]float64, len(rec.Errors))
	for i, e := range rec.Errors {
		centered[i] = e - mean
	}
	return PowerSpectrum(centered, dt)
}

// DominantFrequency returns the frequency of the largest non-DC bin, or 0
// when the spectrum is empty.
func (s Spectrum) DominantFrequency() float64 {
	best, bestMag := 0.0, 0.0
	for i := 1; i < len(s.Magnitudes); i++ {
		if s.Magnitudes[i] > bestMag {
			bestMag = s.Magnitudes[i]
			best = s.Frequencies[i]
		}
	}
	return best
}

func largestPowerOfTwo(n int) int {
	p := 1
	for p*2 <= n {
		p *= 2
	}
	if n < 1 {
		return 0
	}
	return p
}

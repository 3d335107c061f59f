package sim

import "math"

// Reference is the trajectory the controller tracks, sampled by the loop at
// the start of every step.
type Reference func(t float64) float64

// StepReference holds amplitude for all t >= 0.
func StepReference(amplitude float64) Reference {
	return func(t float64) float64 { return amplitude }
}

// RampReference rises linearly to amplitude over riseTime, then holds.
func RampReference(amplitude, riseTime float64) Reference {
	return func(t float64) float64 {
		if riseTime <= 0 || t >= riseTime {
			return amplitude
		}
		return amplitude * t / riseTime
	}
}

// SineReference oscillates around zero at the given frequency in Hz.
func SineReference(amplitude, frequency float64) Reference {
	return func(t float64) float64 {
		return amplitude * math.Sin(2*math.Pi*frequency*t)
	}
}

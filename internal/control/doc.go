// Package control provides the reference-tracking controllers compared by
// the simulation loop.
//
// Both controllers implement the [sim.Controller] interface:
//
//   - [PID]: fixed-gain proportional-integral-derivative control
//   - [FuzzyPID]: the same PID core with gains adapted every step by a
//     Mamdani fuzzy inference engine driven by error and error rate
//
// # Usage
//
//	pid, _ := control.NewPID(control.Gains{Kp: 60, Ki: 120}, limits)
//	loop := sim.NewLoop(motor, integ, pid, sim.StepReference(1.0))
//
// Controllers implementing [sim.Configurable] support live tuning.
package control

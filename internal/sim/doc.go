// Package sim provides the core primitives for closed-loop motor simulation.
//
// The package defines the vocabulary shared by every other package:
//
//   - [State]: vector representing plant state
//   - [System]: interface for ODE plants (dX/dt = f(X, u, t)) with a scalar output
//   - [Integrator]: fixed-step numerical integrator interface
//   - [Controller]: reference-tracking controller interface
//   - [Loop]: drives plant and controller over a fixed horizon
//   - [Comparison]: runs several controllers against independent plants
//
// # Example
//
//	motor, _ := plant.NewMotor(plant.DefaultParams())
//	loop := sim.NewLoop(motor, integrators.NewRK4(), pid, sim.StepReference(1))
//	rec, err := loop.Run(ctx, sim.State{0, 0}, cfg)
//
// # Thread Safety
//
// Loop instances are NOT thread-safe. For concurrent controller comparisons
// use [Comparison], which builds a fresh plant and loop per run.
package sim

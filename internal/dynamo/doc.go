// Package dynamo provides core simulation primitives for controlled
// dynamical systems.
//
// The package defines the fundamental interfaces and types for numerical
// simulation of ordinary differential equations (ODEs) under feedback
// control:
//
//   - [State]: vector representing system state
//   - [System]: interface for ODE systems (dX/dt = f(X, u, t))
//   - [Integrator]: numerical integrator interface
//   - [SubStepper]: fixed-step integration with sub-step refinement
//   - [Controller]: feedback controller interface
//   - [Simulator]: orchestrates closed-loop simulation runs
//
// # Example
//
//	dyn := models.NewTwoLink()
//	integ := integrators.NewRK4()
//	sim := dynamo.New(dyn, integ, ctrl)
//	result, _ := sim.Run(ctx, x0, cfg)
//
// # Thread Safety
//
// Simulator instances are NOT thread-safe. For parallel simulations,
// use the [Ensemble] type which safely manages multiple simulation runs.
package dynamo

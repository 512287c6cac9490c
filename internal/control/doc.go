// Package control provides feedback controllers for dynamical systems.
//
// Controllers implement the [dynamo.Controller] interface to compute
// control inputs based on system state:
//
//   - [JointPID]: per-joint Proportional-Integral-Derivative controller
//   - [LQR]: Linear Quadratic Regulator (requires linearized system)
//   - [None]: passthrough controller (zero control)
//
// Receding-horizon control lives in the nmpc package; the controllers
// here are its classical baselines. Reference trajectories shared by
// all tracking controllers are defined by the [Reference] interface.
//
// Controllers implementing [dynamo.Configurable] support live tuning.
package control

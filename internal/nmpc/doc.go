// Package nmpc implements receding-horizon (nonlinear model-predictive)
// control on top of the dynamo simulation primitives.
//
// The optimal control problem is transcribed by single shooting: the
// decision variables are the control moves over the horizon, and the
// predicted states are obtained by chaining fixed-step RK4 updates
// through the system dynamics. The resulting nonlinear program is
// handed to a [Solver]; the controller only sees the problem-in,
// solution-out call and does not care what runs behind it.
//
//	prob := nmpc.NewProblem(dyn, integ, ref, 20, 0.05)
//	ctrl := nmpc.NewController(prob, nmpc.NewGonumSolver())
//	sim := dynamo.New(dyn, integ, ctrl)
package nmpc

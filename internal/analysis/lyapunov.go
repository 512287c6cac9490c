package analysis

import (
	"math"

	"github.com/nmpc-lab/armsim/internal/dynamo"
)

// LyapunovExponent estimates the largest Lyapunov exponent by tracking
// the separation of two nearby trajectories under the given controller.
// A positive value indicates sensitive dependence on the initial state;
// for a well-tuned closed loop it should come out negative.
func LyapunovExponent(
	dyn dynamo.System,
	integ dynamo.Integrator,
	ctrl dynamo.Controller,
	x0 dynamo.State,
	dt, duration float64,
	perturbation float64,
) float64 {
	if len(x0) == 0 || dt <= 0 || perturbation <= 0 {
		return 0
	}

	x := x0.Clone()
	xp := x0.Clone()
	xp[0] += perturbation
	d0 := perturbation

	var u dynamo.Control
	zero := make(dynamo.Control, dyn.ControlDim())

	sumLog := 0.0
	count := 0

	for t := 0.0; t < duration; t += dt {
		if ctrl != nil {
			u = ctrl.Compute(x, t)
		} else {
			u = zero
		}
		x = integ.Step(dyn, x, u, t, dt)
		xp = integ.Step(dyn, xp, u, t, dt)

		sep := xp.Sub(x).Norm()
		if sep > 0 {
			sumLog += math.Log(sep / d0)
			count++

			// Rescale the pair back to d0 so every term measures one
			// step of growth and the trajectories stay in the linear
			// regime.
			scale := d0 / sep
			for i := range xp {
				xp[i] = x[i] + (xp[i]-x[i])*scale
			}
		}
	}

	if count == 0 {
		return 0
	}
	return sumLog / (float64(count) * dt)
}

// SettlingTime returns the first time after which the selected state
// entries stay within tol of the target for the rest of the run, or -1
// if they never settle.
func SettlingTime(states []dynamo.State, times []float64, target dynamo.State, indices []int, tol float64) float64 {
	if len(states) == 0 || len(states) != len(times) {
		return -1
	}

	settledFrom := -1.0
	for i, x := range states {
		within := true
		for _, j := range indices {
			if j >= len(x) {
				within = false
				break
			}
			ref := 0.0
			if j < len(target) {
				ref = target[j]
			}
			if math.Abs(x[j]-ref) > tol {
				within = false
				break
			}
		}
		if within {
			if settledFrom < 0 {
				settledFrom = times[i]
			}
		} else {
			settledFrom = -1
		}
	}
	return settledFrom
}

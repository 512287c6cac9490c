package nmpc

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/nmpc-lab/armsim/internal/control"
	"github.com/nmpc-lab/armsim/internal/dynamo"
)

// Problem is the optimal control problem solved at every control step.
//
// Over a horizon of N intervals of length StepSize, minimize
//
//	sum_k (x_k - r_k)' Q (x_k - r_k) + u_k' R u_k
//	    + (x_N - r_N)' P (x_N - r_N)
//
// subject to the RK4-discretized dynamics and soft box bounds on u.
// Q, R and P are diagonal.
type Problem struct {
	Dyn   dynamo.System
	Integ dynamo.SubStepper
	Ref   control.Reference

	Horizon  int
	StepSize float64
	SubSteps int

	Q *mat.DiagDense
	R *mat.DiagDense
	P *mat.DiagDense

	UMin, UMax  []float64
	BoundWeight float64
}

// NewProblem builds a problem with identity state weights, small input
// weights and no input bounds. Callers adjust the fields afterwards.
func NewProblem(dyn dynamo.System, integ dynamo.SubStepper, ref control.Reference, horizon int, stepSize float64) *Problem {
	n, m := dyn.StateDim(), dyn.ControlDim()

	ones := make([]float64, n)
	for i := range ones {
		ones[i] = 1
	}
	small := make([]float64, m)
	for i := range small {
		small[i] = 1e-3
	}

	return &Problem{
		Dyn:         dyn,
		Integ:       integ,
		Ref:         ref,
		Horizon:     horizon,
		StepSize:    stepSize,
		SubSteps:    1,
		Q:           mat.NewDiagDense(n, ones),
		R:           mat.NewDiagDense(m, small),
		P:           mat.NewDiagDense(n, ones),
		BoundWeight: 1e3,
	}
}

// SetWeights replaces the diagonal weights. Terminal weights default to
// the stage weights when p is nil.
func (p *Problem) SetWeights(q, r, pTerm []float64) error {
	n, m := p.Dyn.StateDim(), p.Dyn.ControlDim()
	if len(q) != n {
		return fmt.Errorf("nmpc: Q needs %d entries, got %d", n, len(q))
	}
	if len(r) != m {
		return fmt.Errorf("nmpc: R needs %d entries, got %d", m, len(r))
	}
	p.Q = mat.NewDiagDense(n, q)
	p.R = mat.NewDiagDense(m, r)
	if pTerm == nil {
		pTerm = q
	}
	if len(pTerm) != n {
		return fmt.Errorf("nmpc: P needs %d entries, got %d", n, len(pTerm))
	}
	p.P = mat.NewDiagDense(n, pTerm)
	return nil
}

func (p *Problem) validate() error {
	if p.Horizon < 1 {
		return fmt.Errorf("%w: horizon %d, must be at least 1", dynamo.ErrInvalidArgument, p.Horizon)
	}
	if p.StepSize <= 0 {
		return fmt.Errorf("%w: step size %g, must be positive", dynamo.ErrInvalidArgument, p.StepSize)
	}
	if p.SubSteps < 1 {
		return fmt.Errorf("%w: sub-steps %d, must be at least 1", dynamo.ErrInvalidArgument, p.SubSteps)
	}
	if p.Integ == nil {
		return fmt.Errorf("%w: nil integrator", dynamo.ErrInvalidArgument)
	}
	return nil
}

// decisionLen is the flattened length of a control plan.
func (p *Problem) decisionLen() int {
	return p.Horizon * p.Dyn.ControlDim()
}

// controlAt views interval k of the flattened decision vector.
func (p *Problem) controlAt(z []float64, k int) dynamo.Control {
	m := p.Dyn.ControlDim()
	return dynamo.Control(z[k*m : (k+1)*m])
}

// Rollout predicts the state trajectory for a flattened control plan,
// starting from x0 at time t0. The returned slice holds Horizon+1
// states including x0.
func (p *Problem) Rollout(z []float64, x0 dynamo.State, t0 float64) ([]dynamo.State, error) {
	traj := make([]dynamo.State, 0, p.Horizon+1)
	traj = append(traj, x0.Clone())

	x := x0
	for k := 0; k < p.Horizon; k++ {
		next, err := p.Integ.Advance(p.Dyn, x, p.controlAt(z, k), t0+float64(k)*p.StepSize, p.StepSize, p.SubSteps)
		if err != nil {
			return nil, err
		}
		traj = append(traj, next)
		x = next
	}
	return traj, nil
}

// Cost evaluates the objective for a flattened control plan. Rollout
// failures surface as +Inf so that line searches back away from them.
func (p *Problem) Cost(z []float64, x0 dynamo.State, t0 float64) float64 {
	traj, err := p.Rollout(z, x0, t0)
	if err != nil {
		return math.Inf(1)
	}

	total := 0.0
	for k := 1; k <= p.Horizon; k++ {
		x := traj[k]
		if !x.IsValid() {
			return math.Inf(1)
		}
		r := p.Ref.At(t0 + float64(k)*p.StepSize)
		dx := x.Sub(r)

		w := p.Q
		if k == p.Horizon {
			w = p.P
		}
		xv := mat.NewVecDense(len(dx), dx)
		total += mat.Inner(xv, w, xv)
	}

	for k := 0; k < p.Horizon; k++ {
		u := p.controlAt(z, k)
		uv := mat.NewVecDense(len(u), u)
		total += mat.Inner(uv, p.R, uv)
		total += p.boundPenalty(u)
	}

	return total
}

// boundPenalty softly enforces UMin <= u <= UMax with a quadratic hinge.
func (p *Problem) boundPenalty(u dynamo.Control) float64 {
	if p.UMin == nil && p.UMax == nil {
		return 0
	}
	pen := 0.0
	for i, v := range u {
		if p.UMax != nil && i < len(p.UMax) && v > p.UMax[i] {
			d := v - p.UMax[i]
			pen += d * d
		}
		if p.UMin != nil && i < len(p.UMin) && v < p.UMin[i] {
			d := p.UMin[i] - v
			pen += d * d
		}
	}
	return p.BoundWeight * pen
}

// Clamp projects a control onto the box bounds. The solver enforces the
// bounds only through the soft penalty, so applied controls are clamped
// before they reach the plant.
func (p *Problem) Clamp(u dynamo.Control) dynamo.Control {
	out := u.Clone()
	for i := range out {
		if p.UMax != nil && i < len(p.UMax) && out[i] > p.UMax[i] {
			out[i] = p.UMax[i]
		}
		if p.UMin != nil && i < len(p.UMin) && out[i] < p.UMin[i] {
			out[i] = p.UMin[i]
		}
	}
	return out
}

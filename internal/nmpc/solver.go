package nmpc

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/diff/fd"
	"gonum.org/v1/gonum/optimize"

	"github.com/nmpc-lab/armsim/internal/dynamo"
)

// Solution is what comes back from one NLP solve.
type Solution struct {
	Controls   []dynamo.Control
	Cost       float64
	Iterations int
	Converged  bool
}

// Solver turns a Problem plus current state into a control plan. The
// controller treats it as opaque: problem in, solution out.
type Solver interface {
	Solve(p *Problem, x0 dynamo.State, t0 float64, warm []dynamo.Control) (*Solution, error)
}

// GonumSolver solves the shooting NLP with gonum's L-BFGS and a central
// finite-difference gradient.
type GonumSolver struct {
	MaxIterations int
	GradThreshold float64
}

func NewGonumSolver() *GonumSolver {
	return &GonumSolver{
		MaxIterations: 200,
		GradThreshold: 1e-6,
	}
}

func (s *GonumSolver) Solve(p *Problem, x0 dynamo.State, t0 float64, warm []dynamo.Control) (*Solution, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}

	m := p.Dyn.ControlDim()
	z0 := make([]float64, p.decisionLen())
	for k, u := range warm {
		if k >= p.Horizon {
			break
		}
		copy(z0[k*m:(k+1)*m], u)
	}

	obj := func(z []float64) float64 {
		return p.Cost(z, x0, t0)
	}

	prob := optimize.Problem{
		Func: obj,
		Grad: func(grad, z []float64) {
			fd.Gradient(grad, obj, z, &fd.Settings{Formula: fd.Central})
		},
	}

	settings := &optimize.Settings{
		GradientThreshold: s.GradThreshold,
		MajorIterations:   s.MaxIterations,
	}

	result, err := optimize.Minimize(prob, z0, settings, &optimize.LBFGS{})
	if err != nil && result == nil {
		return nil, fmt.Errorf("nmpc: solve failed: %w", err)
	}

	converged := err == nil
	if err != nil {
		// Iteration-limited solves still carry a usable plan.
		if !errors.Is(err, optimize.ErrLinesearcherFailure) && result.Status != optimize.IterationLimit {
			return nil, fmt.Errorf("nmpc: solve failed: %w", err)
		}
	}

	sol := &Solution{
		Controls:   make([]dynamo.Control, p.Horizon),
		Cost:       result.F,
		Iterations: result.Stats.MajorIterations,
		Converged:  converged,
	}
	for k := 0; k < p.Horizon; k++ {
		sol.Controls[k] = dynamo.Control(result.X[k*m : (k+1)*m]).Clone()
	}
	return sol, nil
}

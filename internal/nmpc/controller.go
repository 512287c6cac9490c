package nmpc

import "github.com/nmpc-lab/armsim/internal/dynamo"

// SolveStats accumulates per-run solver diagnostics.
type SolveStats struct {
	Solves     int
	Failures   int
	TotalIters int
	LastCost   float64
}

// Controller is a receding-horizon controller: every control period it
// solves the Problem from the measured state, applies the first move of
// the plan and holds it until the next solve. The previous plan is
// shifted one interval to warm-start the next solve.
type Controller struct {
	prob   *Problem
	solver Solver

	plan      []dynamo.Control
	planIdx   int
	nextSolve float64
	lastU     dynamo.Control
	haveSolve bool

	stats SolveStats
}

func NewController(prob *Problem, solver Solver) *Controller {
	return &Controller{
		prob:   prob,
		solver: solver,
		lastU:  make(dynamo.Control, prob.Dyn.ControlDim()),
	}
}

func (c *Controller) Compute(x dynamo.State, t float64) dynamo.Control {
	if c.haveSolve && t+1e-12 < c.nextSolve {
		// Between solves: hold the applied move (zero-order hold).
		return c.lastU.Clone()
	}

	sol, err := c.solver.Solve(c.prob, x, t, c.warmStart())
	c.stats.Solves++

	if err != nil {
		c.stats.Failures++
		// Fall through on the stale plan if one exists, advancing past
		// the move already applied.
		if len(c.plan) > 1 {
			c.plan = c.plan[1:]
			c.lastU = c.prob.Clamp(c.plan[0])
		}
		c.haveSolve = true
		c.nextSolve = t + c.prob.StepSize
		return c.lastU.Clone()
	}

	c.stats.TotalIters += sol.Iterations
	c.stats.LastCost = sol.Cost

	c.plan = sol.Controls
	c.lastU = c.prob.Clamp(c.plan[0])
	c.haveSolve = true
	c.nextSolve = t + c.prob.StepSize
	return c.lastU.Clone()
}

// warmStart shifts the previous plan one interval and repeats the final
// move to fill the tail.
func (c *Controller) warmStart() []dynamo.Control {
	if len(c.plan) == 0 {
		return nil
	}
	warm := make([]dynamo.Control, 0, c.prob.Horizon)
	warm = append(warm, c.plan[1:]...)
	for len(warm) < c.prob.Horizon {
		warm = append(warm, c.plan[len(c.plan)-1])
	}
	return warm
}

// Stats returns accumulated solver diagnostics.
func (c *Controller) Stats() SolveStats { return c.stats }

// Reset discards the current plan and statistics.
func (c *Controller) Reset() {
	c.plan = nil
	c.haveSolve = false
	c.nextSolve = 0
	c.stats = SolveStats{}
	for i := range c.lastU {
		c.lastU[i] = 0
	}
}

// GetParams exposes horizon settings for live tuning.
func (c *Controller) GetParams() map[string]float64 {
	return map[string]float64{
		"Horizon":     float64(c.prob.Horizon),
		"StepSize":    c.prob.StepSize,
		"BoundWeight": c.prob.BoundWeight,
	}
}

func (c *Controller) SetParam(name string, value float64) error {
	switch name {
	case "Horizon":
		if value < 1 {
			return dynamo.ErrParameterBounds
		}
		c.prob.Horizon = int(value)
		c.plan = nil
	case "StepSize":
		if value <= 0 {
			return dynamo.ErrParameterBounds
		}
		c.prob.StepSize = value
	case "BoundWeight":
		c.prob.BoundWeight = value
	}
	return nil
}

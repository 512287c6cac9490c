package nmpc

import (
	"math"
	"testing"

	"github.com/onsi/gomega"

	"github.com/nmpc-lab/armsim/internal/control"
	"github.com/nmpc-lab/armsim/internal/dynamo"
	"github.com/nmpc-lab/armsim/internal/integrators"
)

// doubleIntegrator is x = [p v], u = [a].
type doubleIntegrator struct{}

func (d *doubleIntegrator) StateDim() int   { return 2 }
func (d *doubleIntegrator) ControlDim() int { return 1 }

func (d *doubleIntegrator) Derive(x dynamo.State, u dynamo.Control, t float64) dynamo.State {
	a := 0.0
	if len(u) > 0 {
		a = u[0]
	}
	return dynamo.State{x[1], a}
}

// frozen has zero dynamics everywhere.
type frozen struct{}

func (f *frozen) StateDim() int   { return 2 }
func (f *frozen) ControlDim() int { return 1 }

func (f *frozen) Derive(x dynamo.State, u dynamo.Control, t float64) dynamo.State {
	return dynamo.State{0, 0}
}

func testProblem(dyn dynamo.System, target dynamo.State) *Problem {
	return NewProblem(dyn, integrators.NewRK4(), control.NewConstantReference(target), 5, 0.1)
}

func TestProblemRollout(t *testing.T) {
	g := gomega.NewWithT(t)
	p := testProblem(&doubleIntegrator{}, dynamo.State{1, 0})

	z := make([]float64, p.decisionLen())
	for i := range z {
		z[i] = 1.0 // constant unit acceleration
	}

	traj, err := p.Rollout(z, dynamo.State{0, 0}, 0)
	g.Expect(err).NotTo(gomega.HaveOccurred())
	g.Expect(traj).To(gomega.HaveLen(p.Horizon + 1))

	// Under constant acceleration: p(t) = t²/2, v(t) = t.
	tEnd := float64(p.Horizon) * p.StepSize
	final := traj[p.Horizon]
	g.Expect(final[0]).To(gomega.BeNumerically("~", tEnd*tEnd/2, 1e-9))
	g.Expect(final[1]).To(gomega.BeNumerically("~", tEnd, 1e-9))
}

func TestProblemCost_ZeroOnTarget(t *testing.T) {
	// Frozen dynamics sitting on the reference with a zero plan costs
	// nothing.
	p := testProblem(&frozen{}, dynamo.State{0.5, -0.5})
	z := make([]float64, p.decisionLen())

	cost := p.Cost(z, dynamo.State{0.5, -0.5}, 0)
	if cost != 0 {
		t.Errorf("expected zero cost on target, got %g", cost)
	}
}

func TestProblemCost_PenalizesDistance(t *testing.T) {
	p := testProblem(&frozen{}, dynamo.State{0, 0})
	z := make([]float64, p.decisionLen())

	near := p.Cost(z, dynamo.State{0.1, 0}, 0)
	far := p.Cost(z, dynamo.State{2.0, 0}, 0)

	if near <= 0 {
		t.Errorf("off-target cost should be positive, got %g", near)
	}
	if far <= near {
		t.Errorf("cost should grow with distance: near=%g far=%g", near, far)
	}
}

func TestProblemCost_InputWeight(t *testing.T) {
	p := testProblem(&frozen{}, dynamo.State{0, 0})
	if err := p.SetWeights([]float64{0, 0}, []float64{1}, []float64{0, 0}); err != nil {
		t.Fatalf("SetWeights failed: %v", err)
	}

	z := make([]float64, p.decisionLen())
	for i := range z {
		z[i] = 2.0
	}

	// Pure input cost: Horizon * u'Ru = 5 * 4.
	cost := p.Cost(z, dynamo.State{0, 0}, 0)
	if math.Abs(cost-20.0) > 1e-12 {
		t.Errorf("expected input cost 20, got %g", cost)
	}
}

func TestProblemBoundPenalty(t *testing.T) {
	p := testProblem(&frozen{}, dynamo.State{0, 0})
	p.UMin = []float64{-1}
	p.UMax = []float64{1}
	p.BoundWeight = 10

	if pen := p.boundPenalty(dynamo.Control{0.5}); pen != 0 {
		t.Errorf("in-bounds control penalized: %g", pen)
	}
	if pen := p.boundPenalty(dynamo.Control{2.0}); math.Abs(pen-10.0) > 1e-12 {
		t.Errorf("expected penalty 10 for unit violation, got %g", pen)
	}
	if pen := p.boundPenalty(dynamo.Control{-3.0}); math.Abs(pen-40.0) > 1e-12 {
		t.Errorf("expected penalty 40, got %g", pen)
	}
}

func TestProblemClamp(t *testing.T) {
	p := testProblem(&frozen{}, dynamo.State{0, 0})
	p.UMin = []float64{-1}
	p.UMax = []float64{1}

	u := p.Clamp(dynamo.Control{2.5})
	if u[0] != 1 {
		t.Errorf("expected clamp to 1, got %g", u[0])
	}
	u = p.Clamp(dynamo.Control{-2.5})
	if u[0] != -1 {
		t.Errorf("expected clamp to -1, got %g", u[0])
	}
}

func TestProblemValidate(t *testing.T) {
	p := testProblem(&doubleIntegrator{}, dynamo.State{0, 0})

	p.Horizon = 0
	if err := p.validate(); err == nil {
		t.Error("expected error for zero horizon")
	}
	p.Horizon = 5

	p.StepSize = 0
	if err := p.validate(); err == nil {
		t.Error("expected error for zero step size")
	}
	p.StepSize = 0.1

	p.SubSteps = 0
	if err := p.validate(); err == nil {
		t.Error("expected error for zero sub-steps")
	}
}

func TestSetWeights_BadShapes(t *testing.T) {
	p := testProblem(&doubleIntegrator{}, dynamo.State{0, 0})

	if err := p.SetWeights([]float64{1}, []float64{1}, nil); err == nil {
		t.Error("expected error for short Q")
	}
	if err := p.SetWeights([]float64{1, 1}, []float64{1, 1}, nil); err == nil {
		t.Error("expected error for long R")
	}
}

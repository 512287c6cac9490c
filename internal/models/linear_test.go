package models

import (
	"math"
	"testing"

	"github.com/nmpc-lab/armsim/internal/dynamo"
	"github.com/nmpc-lab/armsim/internal/integrators"
)

func TestLinearOscillator(t *testing.T) {
	// A = [[0,1],[-1,0]] rotates the state; x(t) = [cos t, -sin t].
	sys, err := NewLinear([]float64{0, 1, -1, 0}, 2, nil, 0)
	if err != nil {
		t.Fatalf("NewLinear failed: %v", err)
	}

	integ := integrators.NewRK4()
	x, err := integ.Advance(sys, dynamo.State{1, 0}, nil, 0, 1.0, 100)
	if err != nil {
		t.Fatalf("Advance failed: %v", err)
	}

	if math.Abs(x[0]-math.Cos(1.0)) > 1e-8 {
		t.Errorf("x[0] = %g, want %g", x[0], math.Cos(1.0))
	}
	if math.Abs(x[1]+math.Sin(1.0)) > 1e-8 {
		t.Errorf("x[1] = %g, want %g", x[1], -math.Sin(1.0))
	}
}

func TestLinearControlledIntegrator(t *testing.T) {
	// A = 0, B = I: x integrates u directly.
	sys, err := NewLinear([]float64{0, 0, 0, 0}, 2, []float64{1, 0, 0, 1}, 2)
	if err != nil {
		t.Fatalf("NewLinear failed: %v", err)
	}

	integ := integrators.NewRK4()
	x, err := integ.Advance(sys, dynamo.State{0, 0}, dynamo.Control{2.0, -1.0}, 0, 0.5, 1)
	if err != nil {
		t.Fatalf("Advance failed: %v", err)
	}

	if math.Abs(x[0]-1.0) > 1e-12 || math.Abs(x[1]+0.5) > 1e-12 {
		t.Errorf("expected [1.0, -0.5], got %v", x)
	}
}

func TestLinearBadShapes(t *testing.T) {
	if _, err := NewLinear([]float64{1, 2, 3}, 2, nil, 0); err == nil {
		t.Error("expected error for short A")
	}
	if _, err := NewLinear([]float64{0, 0, 0, 0}, 2, []float64{1}, 2); err == nil {
		t.Error("expected error for short B")
	}
}

func TestLinearDimensions(t *testing.T) {
	sys, err := NewLinear([]float64{0, 1, -1, 0}, 2, []float64{0, 1}, 1)
	if err != nil {
		t.Fatalf("NewLinear failed: %v", err)
	}
	if sys.StateDim() != 2 {
		t.Errorf("StateDim = %d, want 2", sys.StateDim())
	}
	if sys.ControlDim() != 1 {
		t.Errorf("ControlDim = %d, want 1", sys.ControlDim())
	}
}

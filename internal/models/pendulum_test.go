package models

import (
	"math"
	"testing"

	"github.com/nmpc-lab/armsim/internal/dynamo"
)

func TestPendulumEquilibrium(t *testing.T) {
	p := NewPendulum()

	dx := p.Derive(dynamo.State{0, 0}, dynamo.Control{0}, 0)

	if math.Abs(dx[0]) > 1e-12 || math.Abs(dx[1]) > 1e-12 {
		t.Errorf("expected zero derivative at rest, got %v", dx)
	}
}

func TestPendulumRestoring(t *testing.T) {
	p := NewPendulum()

	// Displaced right, the pendulum accelerates back left.
	dx := p.Derive(dynamo.State{0.5, 0}, dynamo.Control{0}, 0)
	if dx[1] >= 0 {
		t.Errorf("expected negative angular acceleration, got %g", dx[1])
	}
}

func TestPendulumEnergy(t *testing.T) {
	p := NewPendulum()

	if e := p.Energy(dynamo.State{0, 0}); e != 0 {
		t.Errorf("energy at rest = %g, want 0", e)
	}

	e := p.Energy(dynamo.State{math.Pi / 2, 0})
	expected := p.Mass * p.Gravity * p.Length
	if math.Abs(e-expected) > 1e-12 {
		t.Errorf("energy = %g, want %g", e, expected)
	}
}

package models

import (
	"math"
	"testing"

	"github.com/nmpc-lab/armsim/internal/dynamo"
)

func TestTwoLinkDimensions(t *testing.T) {
	arm := NewTwoLink()

	if arm.StateDim() != 6 {
		t.Errorf("expected state dim 6, got %d", arm.StateDim())
	}
	if arm.ControlDim() != 2 {
		t.Errorf("expected control dim 2, got %d", arm.ControlDim())
	}
}

func TestTwoLinkHangingEquilibrium(t *testing.T) {
	arm := NewTwoLink()

	// Both links straight down: gravity torques vanish.
	x := dynamo.State{-math.Pi / 2, 0, 0, 0, 0, 0}
	u := dynamo.Control{0, 0}

	dx := arm.Derive(x, u, 0)

	for i, v := range dx {
		if math.Abs(v) > 1e-10 {
			t.Errorf("expected zero derivative at equilibrium, dx[%d] = %g", i, v)
		}
	}
}

func TestTwoLinkGravityCompensation(t *testing.T) {
	arm := NewTwoLink()

	// Any static configuration held by its gravity torques must not
	// accelerate.
	configs := [][2]float64{
		{0, 0},
		{0.7, -0.3},
		{-1.2, 2.1},
		{math.Pi / 4, math.Pi / 3},
	}

	for _, q := range configs {
		tau1, tau2 := arm.GravityTorques(q[0], q[1])
		x := dynamo.State{q[0], q[1], 0, 0, tau1, tau2}
		dx := arm.Derive(x, dynamo.Control{0, 0}, 0)

		if math.Abs(dx[2]) > 1e-9 || math.Abs(dx[3]) > 1e-9 {
			t.Errorf("q=(%.2f, %.2f): expected zero acceleration, got (%g, %g)",
				q[0], q[1], dx[2], dx[3])
		}
	}
}

func TestTwoLinkTorqueRateChannel(t *testing.T) {
	arm := NewTwoLink()

	x := dynamo.State{0.3, -0.2, 0.1, 0.4, 1.0, -0.5}
	u := dynamo.Control{2.5, -1.5}

	dx := arm.Derive(x, u, 0)

	if dx[4] != 2.5 || dx[5] != -1.5 {
		t.Errorf("torque rates should pass through: got (%g, %g)", dx[4], dx[5])
	}
}

func TestTwoLinkInertiaPositiveDefinite(t *testing.T) {
	arm := NewTwoLink()

	for q2 := -math.Pi; q2 <= math.Pi; q2 += 0.1 {
		m11, m12, m22 := arm.inertia(q2)
		det := m11*m22 - m12*m12
		if m11 <= 0 || det <= 0 {
			t.Errorf("mass matrix not positive definite at q2=%.2f: m11=%g det=%g", q2, m11, det)
		}
	}
}

func TestTwoLinkEnergyAtRest(t *testing.T) {
	arm := NewTwoLink()

	// Hanging straight down: pure potential energy of the rod centers.
	x := dynamo.State{-math.Pi / 2, 0, 0, 0, 0, 0}
	expected := arm.M1*arm.Gravity*(-arm.L1/2) + arm.M2*arm.Gravity*(-arm.L1-arm.L2/2)

	if got := arm.Energy(x); math.Abs(got-expected) > 1e-9 {
		t.Errorf("energy = %g, want %g", got, expected)
	}
}

func TestTwoLinkTipPosition(t *testing.T) {
	arm := NewTwoLink()

	// Fully extended along +x.
	x := dynamo.State{0, 0, 0, 0, 0, 0}
	px, py := arm.TipPosition(x)
	if math.Abs(px-(arm.L1+arm.L2)) > 1e-12 || math.Abs(py) > 1e-12 {
		t.Errorf("tip at (%g, %g), want (%g, 0)", px, py, arm.L1+arm.L2)
	}

	// Elbow bent 90 degrees.
	x = dynamo.State{0, math.Pi / 2, 0, 0, 0, 0}
	px, py = arm.TipPosition(x)
	if math.Abs(px-arm.L1) > 1e-12 || math.Abs(py-arm.L2) > 1e-12 {
		t.Errorf("tip at (%g, %g), want (%g, %g)", px, py, arm.L1, arm.L2)
	}
}

func TestTwoLinkSetParam(t *testing.T) {
	arm := NewTwoLink()

	if err := arm.SetParam("M1", 2.0); err != nil {
		t.Errorf("SetParam(M1) failed: %v", err)
	}
	if arm.M1 != 2.0 {
		t.Errorf("M1 = %g, want 2.0", arm.M1)
	}

	if err := arm.SetParam("L2", -1.0); err == nil {
		t.Error("expected error for non-positive length")
	}

	if err := arm.SetParam("bogus", 1.0); err == nil {
		t.Error("expected error for unknown parameter")
	}
}

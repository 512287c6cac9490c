package models

import (
	"fmt"
	"math"

	"github.com/nmpc-lab/armsim/internal/dynamo"
)

const (
	DefaultLinkMass   = 1.0
	DefaultLinkLength = 1.0
	DefaultDamping    = 0.1
	DefaultGravity    = 9.81
)

// TwoLink is a planar two-joint manipulator with torque-rate inputs.
//
// State (6): [q1 q2 dq1 dq2 tau1 tau2]: joint angles, joint velocities
// and joint torques. Control (2): [dtau1 dtau2], the torque rates. The
// torques are part of the state so that torque slew shows up in the
// dynamics rather than as an input constraint alone.
//
// Rigid-body equations M(q)q̈ + C(q,q̇)q̇ + g(q) + Bq̇ = τ with uniform
// rods (COM at l/2, inertia m l²/12 about the COM). Angles are measured
// from the horizontal, q2 relative to link 1.
type TwoLink struct {
	M1, M2  float64
	L1, L2  float64
	B1, B2  float64
	Gravity float64
}

func NewTwoLink() *TwoLink {
	return &TwoLink{
		M1: DefaultLinkMass, M2: DefaultLinkMass,
		L1: DefaultLinkLength, L2: DefaultLinkLength,
		B1: DefaultDamping, B2: DefaultDamping,
		Gravity: DefaultGravity,
	}
}

func (a *TwoLink) StateDim() int   { return 6 }
func (a *TwoLink) ControlDim() int { return 2 }

// inertia returns the entries of the symmetric mass matrix
// [[m11 m12] [m12 m22]] at joint configuration q2.
func (a *TwoLink) inertia(q2 float64) (m11, m12, m22 float64) {
	r1, r2 := a.L1/2, a.L2/2
	i1 := a.M1 * a.L1 * a.L1 / 12
	i2 := a.M2 * a.L2 * a.L2 / 12

	alpha := i1 + i2 + a.M1*r1*r1 + a.M2*(a.L1*a.L1+r2*r2)
	beta := a.M2 * a.L1 * r2
	delta := i2 + a.M2*r2*r2

	c2 := math.Cos(q2)
	m11 = alpha + 2*beta*c2
	m12 = delta + beta*c2
	m22 = delta
	return
}

func (a *TwoLink) Derive(x dynamo.State, u dynamo.Control, t float64) dynamo.State {
	q1, q2 := x[0], x[1]
	dq1, dq2 := x[2], x[3]
	tau1, tau2 := x[4], x[5]

	dtau1, dtau2 := 0.0, 0.0
	if len(u) > 0 {
		dtau1 = u[0]
	}
	if len(u) > 1 {
		dtau2 = u[1]
	}

	m11, m12, m22 := a.inertia(q2)

	r2 := a.L2 / 2
	beta := a.M2 * a.L1 * r2
	s2 := math.Sin(q2)

	// Coriolis/centrifugal and gravity torques.
	h1 := -beta * s2 * dq2 * (2*dq1 + dq2)
	h2 := beta * s2 * dq1 * dq1

	g := a.Gravity
	g1 := (a.M1*a.L1/2+a.M2*a.L1)*g*math.Cos(q1) + a.M2*r2*g*math.Cos(q1+q2)
	g2 := a.M2 * r2 * g * math.Cos(q1+q2)

	rhs1 := tau1 - h1 - g1 - a.B1*dq1
	rhs2 := tau2 - h2 - g2 - a.B2*dq2

	// M is 2x2 symmetric positive definite; invert in closed form.
	det := m11*m22 - m12*m12
	ddq1 := (m22*rhs1 - m12*rhs2) / det
	ddq2 := (m11*rhs2 - m12*rhs1) / det

	return dynamo.State{dq1, dq2, ddq1, ddq2, dtau1, dtau2}
}

// Energy returns kinetic plus gravitational potential energy of the
// links. Torque states carry no energy term.
func (a *TwoLink) Energy(x dynamo.State) float64 {
	q1, q2 := x[0], x[1]
	dq1, dq2 := x[2], x[3]

	m11, m12, m22 := a.inertia(q2)
	ke := 0.5 * (m11*dq1*dq1 + 2*m12*dq1*dq2 + m22*dq2*dq2)

	g := a.Gravity
	y1 := (a.L1 / 2) * math.Sin(q1)
	y2 := a.L1*math.Sin(q1) + (a.L2/2)*math.Sin(q1+q2)
	pe := a.M1*g*y1 + a.M2*g*y2

	return ke + pe
}

// TipPosition returns the cartesian end-effector position.
func (a *TwoLink) TipPosition(x dynamo.State) (float64, float64) {
	q1, q2 := x[0], x[1]
	px := a.L1*math.Cos(q1) + a.L2*math.Cos(q1+q2)
	py := a.L1*math.Sin(q1) + a.L2*math.Sin(q1+q2)
	return px, py
}

// ElbowPosition returns the cartesian position of the second joint.
func (a *TwoLink) ElbowPosition(x dynamo.State) (float64, float64) {
	q1 := x[0]
	return a.L1 * math.Cos(q1), a.L1 * math.Sin(q1)
}

// GravityTorques returns the joint torques that hold configuration q
// static, used to seed torque states at equilibrium.
func (a *TwoLink) GravityTorques(q1, q2 float64) (float64, float64) {
	g := a.Gravity
	r2 := a.L2 / 2
	g1 := (a.M1*a.L1/2+a.M2*a.L1)*g*math.Cos(q1) + a.M2*r2*g*math.Cos(q1+q2)
	g2 := a.M2 * r2 * g * math.Cos(q1+q2)
	return g1, g2
}

func (a *TwoLink) GetParams() map[string]float64 {
	return map[string]float64{
		"M1": a.M1, "M2": a.M2,
		"L1": a.L1, "L2": a.L2,
		"B1": a.B1, "B2": a.B2,
		"Gravity": a.Gravity,
	}
}

func (a *TwoLink) SetParam(name string, value float64) error {
	switch name {
	case "M1", "M2", "L1", "L2":
		if value <= 0 {
			return dynamo.ErrParameterBounds
		}
	case "B1", "B2", "Gravity":
	default:
		return fmt.Errorf("twolink: unknown parameter %q", name)
	}

	switch name {
	case "M1":
		a.M1 = value
	case "M2":
		a.M2 = value
	case "L1":
		a.L1 = value
	case "L2":
		a.L2 = value
	case "B1":
		a.B1 = value
	case "B2":
		a.B2 = value
	case "Gravity":
		a.Gravity = value
	}
	return nil
}

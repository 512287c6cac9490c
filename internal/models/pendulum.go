package models

import (
	"math"

	"github.com/nmpc-lab/armsim/internal/dynamo"
)

// Pendulum is a damped torque-actuated pendulum. State: [theta omega],
// control: [torque]. Theta is measured from the stable downward
// equilibrium.
type Pendulum struct {
	Mass    float64
	Length  float64
	Damping float64
	Gravity float64
}

func NewPendulum() *Pendulum {
	return &Pendulum{
		Mass:    1.0,
		Length:  1.0,
		Damping: 0.1,
		Gravity: 9.81,
	}
}

func (p *Pendulum) StateDim() int   { return 2 }
func (p *Pendulum) ControlDim() int { return 1 }

func (p *Pendulum) Derive(x dynamo.State, u dynamo.Control, t float64) dynamo.State {
	theta := x[0]
	omega := x[1]

	torque := 0.0
	if len(u) > 0 {
		torque = u[0]
	}
	alpha := (-p.Damping*omega - p.Mass*p.Gravity*p.Length*math.Sin(theta) + torque) / (p.Mass * p.Length * p.Length)

	return dynamo.State{omega, alpha}
}

func (p *Pendulum) Energy(x dynamo.State) float64 {
	theta, omega := x[0], x[1]
	ke := 0.5 * p.Mass * p.Length * p.Length * omega * omega
	pe := p.Mass * p.Gravity * p.Length * (1 - math.Cos(theta))
	return ke + pe
}

func (p *Pendulum) GetParams() map[string]float64 {
	return map[string]float64{
		"Mass":    p.Mass,
		"Length":  p.Length,
		"Damping": p.Damping,
		"Gravity": p.Gravity,
	}
}

func (p *Pendulum) SetParam(name string, value float64) error {
	switch name {
	case "Mass":
		if value <= 0 {
			return dynamo.ErrParameterBounds
		}
		p.Mass = value
	case "Length":
		if value <= 0 {
			return dynamo.ErrParameterBounds
		}
		p.Length = value
	case "Damping":
		p.Damping = value
	case "Gravity":
		p.Gravity = value
	}
	return nil
}

package control

import "github.com/nmpc-lab/armsim/internal/dynamo"

// LQR applies a fixed gain matrix: u = -K·(x - target). Gains are
// synthesized offline against a linearization of the plant.
type LQR struct {
	K      [][]float64
	Target dynamo.State
}

func NewLQR(k [][]float64, target dynamo.State) *LQR {
	return &LQR{K: k, Target: target}
}

func (l *LQR) Compute(x dynamo.State, t float64) dynamo.Control {
	u := make(dynamo.Control, len(l.K))
	for i := range u {
		for j := range x {
			target := 0.0
			if j < len(l.Target) {
				target = l.Target[j]
			}
			if j < len(l.K[i]) {
				u[i] -= l.K[i][j] * (x[j] - target)
			}
		}
	}
	return u
}

var (
	pendulumGains = [][]float64{{31.62, 10.0}}

	// Torque-rate gains for the 6-state arm linearized about the
	// horizontal reach configuration; columns follow the state layout
	// [q1 q2 dq1 dq2 tau1 tau2].
	twoLinkGains = [][]float64{
		{120.0, 30.0, 45.0, 12.0, 8.0, 1.5},
		{30.0, 60.0, 12.0, 20.0, 1.5, 6.0},
	}
)

func NewPendulumLQR() *LQR {
	return NewLQR(pendulumGains, dynamo.State{0, 0})
}

// NewTwoLinkLQR regulates the arm to the joint configuration (q1, q2)
// with zero velocity, letting the torque states settle to the gravity
// torques through the rate feedback.
func NewTwoLinkLQR(q1, q2, tau1, tau2 float64) *LQR {
	return NewLQR(twoLinkGains, dynamo.State{q1, q2, 0, 0, tau1, tau2})
}

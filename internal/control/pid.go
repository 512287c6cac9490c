package control

import "github.com/nmpc-lab/armsim/internal/dynamo"

// JointPID runs one PID loop per joint over a state laid out as
// [q_1..q_n dq_1..dq_n ...]. The derivative term uses the measured
// joint velocity directly instead of differencing the error, which
// avoids the derivative kick on setpoint steps.
type JointPID struct {
	Kp, Ki, Kd float64
	Ref        Reference

	nJoints  int
	integral []float64
	prevT    float64
	first    bool
}

func NewJointPID(nJoints int, kp, ki, kd float64, ref Reference) *JointPID {
	return &JointPID{
		Kp: kp, Ki: ki, Kd: kd,
		Ref:      ref,
		nJoints:  nJoints,
		integral: make([]float64, nJoints),
		first:    true,
	}
}

func (c *JointPID) Compute(x dynamo.State, t float64) dynamo.Control {
	u := make(dynamo.Control, c.nJoints)
	if len(x) < 2*c.nJoints {
		return u
	}

	target := c.Ref.At(t)

	dt := 0.0
	if !c.first {
		dt = t - c.prevT
	}
	c.first = false
	c.prevT = t

	for i := 0; i < c.nJoints; i++ {
		ref := 0.0
		if i < len(target) {
			ref = target[i]
		}
		err := ref - x[i]
		vel := x[c.nJoints+i]

		if dt > 0 {
			c.integral[i] += err * dt
		}

		u[i] = c.Kp*err + c.Ki*c.integral[i] - c.Kd*vel
	}

	return u
}

// Reset clears integral state.
func (c *JointPID) Reset() {
	for i := range c.integral {
		c.integral[i] = 0
	}
	c.first = true
}

// GetParams returns tunable parameters for live adjustment
func (c *JointPID) GetParams() map[string]float64 {
	return map[string]float64{
		"Kp": c.Kp,
		"Ki": c.Ki,
		"Kd": c.Kd,
	}
}

// SetParam adjusts a PID parameter
func (c *JointPID) SetParam(name string, value float64) error {
	switch name {
	case "Kp":
		c.Kp = value
	case "Ki":
		c.Ki = value
	case "Kd":
		c.Kd = value
	}
	return nil
}

package metrics

import (
	"math"

	"github.com/nmpc-lab/armsim/internal/dynamo"
)

// Stability reports the fraction of samples in which every state entry
// stayed inside its limit. A run that never leaves the envelope scores
// 1.0; a run saturated from the first sample scores 0.
type Stability struct {
	name       string
	limits     []float64
	violations int
	samples    int
}

// NewStability bounds every state entry by the same limit.
func NewStability(limit float64) *Stability {
	return &Stability{
		name:   "stability",
		limits: []float64{limit},
	}
}

// NewStabilityLimits bounds each state entry by its own limit, so joint
// angles, velocities, and torques can carry envelopes matching their
// scale. Entries past the slice reuse the last limit.
func NewStabilityLimits(limits ...float64) *Stability {
	return &Stability{
		name:   "stability",
		limits: limits,
	}
}

func (s *Stability) Name() string {
	return s.name
}

func (s *Stability) limitFor(i int) float64 {
	if i < len(s.limits) {
		return s.limits[i]
	}
	return s.limits[len(s.limits)-1]
}

func (s *Stability) Observe(x dynamo.State, u dynamo.Control, t float64) {
	s.samples++
	if len(s.limits) == 0 {
		return
	}
	for i, val := range x {
		if math.Abs(val) > s.limitFor(i) {
			s.violations++
			break
		}
	}
}

func (s *Stability) Value() float64 {
	if s.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(s.violations)/float64(s.samples)
}

func (s *Stability) Reset() {
	s.violations = 0
	s.samples = 0
}

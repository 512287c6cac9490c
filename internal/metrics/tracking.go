package metrics

import (
	"math"

	"github.com/nmpc-lab/armsim/internal/control"
	"github.com/nmpc-lab/armsim/internal/dynamo"
)

// TrackingError accumulates the RMS distance between selected state
// entries and the reference. With no indices given it compares the
// whole state vector.
type TrackingError struct {
	name    string
	ref     control.Reference
	indices []int
	sumSq   float64
	samples int
}

func NewTrackingError(ref control.Reference, indices ...int) *TrackingError {
	return &TrackingError{
		name:    "tracking_error",
		ref:     ref,
		indices: indices,
	}
}

func (m *TrackingError) Name() string { return m.name }

func (m *TrackingError) Observe(x dynamo.State, u dynamo.Control, t float64) {
	target := m.ref.At(t)

	idx := m.indices
	if len(idx) == 0 {
		idx = make([]int, len(x))
		for i := range idx {
			idx[i] = i
		}
	}

	for _, i := range idx {
		if i >= len(x) {
			continue
		}
		ref := 0.0
		if i < len(target) {
			ref = target[i]
		}
		d := x[i] - ref
		m.sumSq += d * d
	}
	m.samples++
}

func (m *TrackingError) Value() float64 {
	if m.samples == 0 {
		return 0
	}
	return math.Sqrt(m.sumSq / float64(m.samples))
}

func (m *TrackingError) Reset() {
	m.sumSq = 0
	m.samples = 0
}

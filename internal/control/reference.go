package control

import (
	"math"

	"github.com/nmpc-lab/armsim/internal/dynamo"
)

// Reference supplies a time-varying target state for tracking
// controllers. Implementations must be safe to call from a single
// simulation goroutine.
type Reference interface {
	At(t float64) dynamo.State
}

// ConstantReference is a fixed target state.
type ConstantReference struct {
	Target dynamo.State
}

func NewConstantReference(target dynamo.State) *ConstantReference {
	return &ConstantReference{Target: target.Clone()}
}

func (r *ConstantReference) At(t float64) dynamo.State { return r.Target }

// StepReference switches from Before to After at time T0. Used for
// point-to-point arm moves.
type StepReference struct {
	Before, After dynamo.State
	T0            float64
}

func NewStepReference(before, after dynamo.State, t0 float64) *StepReference {
	return &StepReference{Before: before.Clone(), After: after.Clone(), T0: t0}
}

func (r *StepReference) At(t float64) dynamo.State {
	if t < r.T0 {
		return r.Before
	}
	return r.After
}

// SineReference oscillates selected entries of a base state:
// target[i] = base[i] + amp[i]*sin(2π·freq·t). Entries with zero
// amplitude stay at the base value.
type SineReference struct {
	Base dynamo.State
	Amp  dynamo.State
	Freq float64

	scratch dynamo.State
}

func NewSineReference(base, amp dynamo.State, freq float64) *SineReference {
	return &SineReference{
		Base:    base.Clone(),
		Amp:     amp.Clone(),
		Freq:    freq,
		scratch: make(dynamo.State, len(base)),
	}
}

func (r *SineReference) At(t float64) dynamo.State {
	s := math.Sin(2 * math.Pi * r.Freq * t)
	for i := range r.Base {
		a := 0.0
		if i < len(r.Amp) {
			a = r.Amp[i]
		}
		r.scratch[i] = r.Base[i] + a*s
	}
	return r.scratch
}

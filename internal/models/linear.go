package models

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/nmpc-lab/armsim/internal/dynamo"
)

// Linear is a generic LTI system dx/dt = A·x + B·u. It serves as an
// exact-solution companion for integrator accuracy checks and as the
// linearized plant for LQR gain sanity tests.
type Linear struct {
	A *mat.Dense
	B *mat.Dense

	dx *mat.VecDense
	bu *mat.VecDense
}

// NewLinear builds an LTI system from row-major A (n×n) and B (n×m).
func NewLinear(a []float64, n int, b []float64, m int) (*Linear, error) {
	if len(a) != n*n {
		return nil, fmt.Errorf("linear: A needs %d entries, got %d", n*n, len(a))
	}
	if m > 0 && len(b) != n*m {
		return nil, fmt.Errorf("linear: B needs %d entries, got %d", n*m, len(b))
	}
	l := &Linear{
		A:  mat.NewDense(n, n, a),
		dx: mat.NewVecDense(n, nil),
	}
	if m > 0 {
		l.B = mat.NewDense(n, m, b)
		l.bu = mat.NewVecDense(n, nil)
	}
	return l, nil
}

func (l *Linear) StateDim() int {
	r, _ := l.A.Dims()
	return r
}

func (l *Linear) ControlDim() int {
	if l.B == nil {
		return 0
	}
	_, c := l.B.Dims()
	return c
}

func (l *Linear) Derive(x dynamo.State, u dynamo.Control, t float64) dynamo.State {
	n := l.StateDim()
	xv := mat.NewVecDense(n, x)
	l.dx.MulVec(l.A, xv)

	if l.B != nil && len(u) == l.ControlDim() {
		uv := mat.NewVecDense(len(u), u)
		l.bu.MulVec(l.B, uv)
		l.dx.AddVec(l.dx, l.bu)
	}

	out := make(dynamo.State, n)
	copy(out, l.dx.RawVector().Data)
	return out
}

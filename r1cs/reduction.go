package r1cs

import (
	"fmt"

	"github.com/sp301415/ringo-labrador/num"
	"github.com/sp301415/ringo-labrador/polyring"
	"github.com/sp301415/ringo-labrador/principal"
	"github.com/sp301415/ringo-labrador/relation"
	"github.com/sp301415/ringo-labrador/transcript"
)

// Reduction reduces a constraint system to the principal relation.
// Wire u becomes the witness vector s_u of length one, and every constraint
// <a, w> * <b, w> = <c, w> becomes
//
//	sum_{u, v} (a_u b_v + a_v b_u) / 2 * <s_u, s_v> - sum_u <c_u, s_u> = 0.
//
// A last linear constraint fixes the constant wire to one.
// The reduction is non-interactive, so its transcript is empty.
type Reduction struct{}

var _ relation.Reduction[*polyring.Ring, Size, *Instance, *Witness, principal.Size, *principal.Instance, *principal.Witness] = Reduction{}

// OutputSize returns the size of the principal relation reduced from size.
func OutputSize(size Size) principal.Size {
	return principal.Size{
		R:              size.NumWires,
		N:              1,
		NormBoundSq:    size.NormBoundSq,
		NumConstraints: size.NumConstraints + 1,
	}
}

// IOPattern implements [relation.Reduction].
func (Reduction) IOPattern(ring *polyring.Ring, index Size, x *Instance) (*transcript.IOPattern, error) {
	if err := index.Validate(); err != nil {
		return nil, err
	}
	domain := fmt.Sprintf("r1cs/d=%d/q=%d/wires=%d/constraints=%d", ring.Degree(), ring.Modulus(), index.NumWires, index.NumConstraints)
	return transcript.NewIOPattern(domain), nil
}

// Prove implements [relation.Reduction].
func (red Reduction) Prove(ring *polyring.Ring, index Size, x *Instance, w *Witness, ts *transcript.Prover) (principal.Size, *principal.Instance, *principal.Witness, error) {
	if w == nil || len(w.W) != index.NumWires {
		return principal.Size{}, nil, nil, fmt.Errorf("%w: witness does not fit %v", ErrMalformed, index)
	}

	xOut, err := ReduceInstance(ring, index, x)
	if err != nil {
		return principal.Size{}, nil, nil, err
	}

	s := make([][]polyring.Poly, len(w.W))
	for u := range w.W {
		s[u] = []polyring.Poly{w.W[u].Copy()}
	}
	return OutputSize(index), xOut, &principal.Witness{S: s}, nil
}

// Verify implements [relation.Reduction].
func (Reduction) Verify(ring *polyring.Ring, index Size, x *Instance, ts *transcript.Verifier) (principal.Size, *principal.Instance, error) {
	xOut, err := ReduceInstance(ring, index, x)
	if err != nil {
		return principal.Size{}, nil, err
	}
	return OutputSize(index), xOut, nil
}

// ReduceInstance returns the principal instance equivalent to x.
func ReduceInstance(ring *polyring.Ring, index Size, x *Instance) (*principal.Instance, error) {
	if err := index.Validate(); err != nil {
		return nil, err
	}
	if x == nil || !x.Fits(index) {
		return nil, fmt.Errorf("%w: instance does not fit %v", ErrMalformed, index)
	}

	m := x.numWires
	inv2 := num.ModInverse(2, ring.Modulus())

	constraints := make([]*principal.QuadDotProdFunction, 0, x.NumConstraints()+1)
	for k := range x.a {
		a := polyring.NewSymmetricMatrix[polyring.Poly](m)
		for u := 0; u < m; u++ {
			for v := 0; v <= u; v++ {
				auv := ring.Mul(x.a[k][u], x.b[k][v])
				ring.MulAddAssign(x.a[k][v], x.b[k][u], auv)
				ring.ScalarMulAssign(auv, inv2, auv)
				a.Set(u, v, auv)
			}
		}

		phi := make([][]polyring.Poly, m)
		for u := range phi {
			phi[u] = []polyring.Poly{ring.Neg(x.c[k][u])}
		}

		c, err := principal.NewQuadDotProdFunctionSymmetric(a, phi, ring.NewPoly())
		if err != nil {
			return nil, err
		}
		constraints = append(constraints, c)
	}

	phi := make([][]polyring.Poly, m)
	for u := range phi {
		phi[u] = []polyring.Poly{ring.NewPoly()}
	}
	phi[One][0] = ring.NewConstant(1)
	one, err := principal.NewLinearQuadDotProdFunction(phi, ring.NewConstant(1))
	if err != nil {
		return nil, err
	}
	constraints = append(constraints, one)

	return principal.NewInstance(m, 1, constraints, nil)
}

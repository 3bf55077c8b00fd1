// Package principal implements the principal relation:
// a batch of quadratic dot product constraints over short witness vectors.
package principal

import (
	"errors"
	"fmt"

	"github.com/bits-and-blooms/bitset"
	"github.com/sp301415/ringo-labrador/polyring"
)

var (
	// ErrMalformed is returned when a constraint, instance or witness has an inconsistent shape.
	ErrMalformed = errors.New("malformed principal relation")
	// ErrNotSatisfied is returned when a witness does not satisfy a constraint.
	ErrNotSatisfied = errors.New("constraint not satisfied")
	// ErrNormBound is returned when a witness exceeds the norm bound.
	ErrNormBound = errors.New("witness exceeds norm bound")
)

// form is the left hand side
//
//	sum_{i, j} A[i][j] * <s_i, s_j> + sum_i <phi_i, s_i>
//
// shared by both kinds of constraints.
// The sum over (i, j) runs over all ordered pairs.
type form struct {
	r, n, degree int

	quadratic bool
	a         polyring.SymmetricMatrix[polyring.Poly]
	phi       [][]polyring.Poly

	// Packed indices of nonzero entries of a.
	aSupport *bitset.BitSet
	// Indices i of nonzero phi_i.
	phiSupport *bitset.BitSet
}

func newForm(a *polyring.SymmetricMatrix[polyring.Poly], phi [][]polyring.Poly) (form, error) {
	r := len(phi)
	if r == 0 {
		return form{}, fmt.Errorf("%w: no phi vectors", ErrMalformed)
	}
	n := len(phi[0])
	if n == 0 {
		return form{}, fmt.Errorf("%w: empty phi vector", ErrMalformed)
	}
	degree := phi[0][0].Degree()

	f := form{
		r:          r,
		n:          n,
		degree:     degree,
		phi:        phi,
		aSupport:   bitset.New(0),
		phiSupport: bitset.New(uint(r)),
	}

	for i := range phi {
		if len(phi[i]) != n {
			return form{}, fmt.Errorf("%w: phi_%d has length %d, expected %d", ErrMalformed, i, len(phi[i]), n)
		}
		for k := range phi[i] {
			if phi[i][k].Degree() != degree {
				return form{}, fmt.Errorf("%w: phi_%d[%d] has degree %d, expected %d", ErrMalformed, i, k, phi[i][k].Degree(), degree)
			}
			if !phi[i][k].IsZero() {
				f.phiSupport.Set(uint(i))
			}
		}
	}

	if a != nil {
		if a.Size() != r {
			return form{}, fmt.Errorf("%w: A has size %d, expected %d", ErrMalformed, a.Size(), r)
		}
		f.quadratic = true
		f.a = *a
		f.aSupport = bitset.New(uint(polyring.PackedSize(r)))
		for idx, aij := range a.Packed() {
			if aij.Degree() != degree {
				return form{}, fmt.Errorf("%w: A has degree %d, expected %d", ErrMalformed, aij.Degree(), degree)
			}
			if !aij.IsZero() {
				f.aSupport.Set(uint(idx))
			}
		}
	}

	return f, nil
}

// packSymmetric checks that a is square and symmetric, and packs it.
func packSymmetric(a [][]polyring.Poly) (polyring.SymmetricMatrix[polyring.Poly], error) {
	for i := range a {
		if len(a[i]) != len(a) {
			return polyring.SymmetricMatrix[polyring.Poly]{}, fmt.Errorf("%w: A is not square", ErrMalformed)
		}
	}
	for i := range a {
		for j := 0; j < i; j++ {
			if !a[i][j].Equal(a[j][i]) {
				return polyring.SymmetricMatrix[polyring.Poly]{}, fmt.Errorf("%w: A is not symmetric at (%d, %d)", ErrMalformed, i, j)
			}
		}
	}
	return polyring.PackLower(a)
}

// R returns the number of witness vectors.
func (f form) R() int {
	return f.r
}

// N returns the length of witness vectors.
func (f form) N() int {
	return f.n
}

// Degree returns the ring degree of the coefficients.
func (f form) Degree() int {
	return f.degree
}

// IsLinear reports whether the constraint has no quadratic part.
func (f form) IsLinear() bool {
	return !f.quadratic
}

// A returns the quadratic coefficient matrix, and false if the constraint is linear.
func (f form) A() (polyring.SymmetricMatrix[polyring.Poly], bool) {
	return f.a, f.quadratic
}

// Phi returns the linear coefficient vectors.
func (f form) Phi() [][]polyring.Poly {
	return f.phi
}

// RangeA calls fn on every nonzero cell (i, j), i >= j, of A.
func (f form) RangeA(fn func(i, j int, aij polyring.Poly)) {
	if !f.quadratic {
		return
	}
	packed := f.a.Packed()
	for i := 0; i < f.r; i++ {
		for j := 0; j <= i; j++ {
			idx := i*(i+1)/2 + j
			if f.aSupport.Test(uint(idx)) {
				fn(i, j, packed[idx])
			}
		}
	}
}

// RangePhi calls fn on every nonzero phi_i.
func (f form) RangePhi(fn func(i int, phi []polyring.Poly)) {
	for i, ok := f.phiSupport.NextSet(0); ok; i, ok = f.phiSupport.NextSet(i + 1) {
		fn(int(i), f.phi[i])
	}
}

// evaluate returns the left hand side on s, given ips = InnerProducts(s).
func (f form) evaluate(ring *polyring.Ring, s [][]polyring.Poly, ips polyring.SymmetricMatrix[polyring.Poly]) polyring.Poly {
	res := ring.NewPoly()

	f.RangeA(func(i, j int, aij polyring.Poly) {
		if i == j {
			ring.MulAddAssign(aij, ips.At(i, j), res)
		} else {
			ring.MulAddAssign(ring.ScalarMul(aij, 2), ips.At(i, j), res)
		}
	})

	f.RangePhi(func(i int, phi []polyring.Poly) {
		ring.InnerProductAddAssign(phi, s[i], res)
	})

	return res
}

// QuadDotProdFunction is the constraint
//
//	sum_{i, j} A[i][j] * <s_i, s_j> + sum_i <phi_i, s_i> = b
//
// over the ring.
type QuadDotProdFunction struct {
	form
	b polyring.Poly
}

// NewQuadDotProdFunction creates a new quadratic constraint.
// a must be square and symmetric, of size len(phi),
// and every phi_i must have the same length.
func NewQuadDotProdFunction(a [][]polyring.Poly, phi [][]polyring.Poly, b polyring.Poly) (*QuadDotProdFunction, error) {
	packed, err := packSymmetric(a)
	if err != nil {
		return nil, err
	}
	return NewQuadDotProdFunctionSymmetric(packed, phi, b)
}

// NewQuadDotProdFunctionSymmetric creates a new quadratic constraint from a packed A.
func NewQuadDotProdFunctionSymmetric(a polyring.SymmetricMatrix[polyring.Poly], phi [][]polyring.Poly, b polyring.Poly) (*QuadDotProdFunction, error) {
	return newQuadDotProdFunction(&a, phi, b)
}

// NewLinearQuadDotProdFunction creates a new constraint without quadratic part.
func NewLinearQuadDotProdFunction(phi [][]polyring.Poly, b polyring.Poly) (*QuadDotProdFunction, error) {
	return newQuadDotProdFunction(nil, phi, b)
}

func newQuadDotProdFunction(a *polyring.SymmetricMatrix[polyring.Poly], phi [][]polyring.Poly, b polyring.Poly) (*QuadDotProdFunction, error) {
	f, err := newForm(a, phi)
	if err != nil {
		return nil, err
	}
	if b.Degree() != f.degree {
		return nil, fmt.Errorf("%w: b has degree %d, expected %d", ErrMalformed, b.Degree(), f.degree)
	}
	return &QuadDotProdFunction{form: f, b: b}, nil
}

// B returns the right hand side.
func (f *QuadDotProdFunction) B() polyring.Poly {
	return f.b
}

// Evaluate returns the left hand side on s, given ips = InnerProducts(s).
func (f *QuadDotProdFunction) Evaluate(ring *polyring.Ring, s [][]polyring.Poly, ips polyring.SymmetricMatrix[polyring.Poly]) polyring.Poly {
	return f.evaluate(ring, s, ips)
}

// IsSatisfied reports whether s satisfies the constraint.
func (f *QuadDotProdFunction) IsSatisfied(ring *polyring.Ring, s [][]polyring.Poly, ips polyring.SymmetricMatrix[polyring.Poly]) bool {
	return f.evaluate(ring, s, ips).Equal(f.b)
}

// ConstantQuadDotProdFunction is the constraint
//
//	ct(sum_{i, j} A[i][j] * <s_i, s_j> + sum_i <phi_i, s_i>) = b
//
// where ct is the constant coefficient and b is a scalar.
type ConstantQuadDotProdFunction struct {
	form
	b uint64
}

// NewConstantQuadDotProdFunction creates a new constant quadratic constraint.
func NewConstantQuadDotProdFunction(a [][]polyring.Poly, phi [][]polyring.Poly, b uint64) (*ConstantQuadDotProdFunction, error) {
	packed, err := packSymmetric(a)
	if err != nil {
		return nil, err
	}
	return NewConstantQuadDotProdFunctionSymmetric(packed, phi, b)
}

// NewConstantQuadDotProdFunctionSymmetric creates a new constant quadratic constraint from a packed A.
func NewConstantQuadDotProdFunctionSymmetric(a polyring.SymmetricMatrix[polyring.Poly], phi [][]polyring.Poly, b uint64) (*ConstantQuadDotProdFunction, error) {
	f, err := newForm(&a, phi)
	if err != nil {
		return nil, err
	}
	return &ConstantQuadDotProdFunction{form: f, b: b}, nil
}

// NewLinearConstantQuadDotProdFunction creates a new constant constraint without quadratic part.
func NewLinearConstantQuadDotProdFunction(phi [][]polyring.Poly, b uint64) (*ConstantQuadDotProdFunction, error) {
	f, err := newForm(nil, phi)
	if err != nil {
		return nil, err
	}
	return &ConstantQuadDotProdFunction{form: f, b: b}, nil
}

// B returns the right hand side.
func (f *ConstantQuadDotProdFunction) B() uint64 {
	return f.b
}

// Evaluate returns the constant coefficient of the left hand side on s,
// given ips = InnerProducts(s).
func (f *ConstantQuadDotProdFunction) Evaluate(ring *polyring.Ring, s [][]polyring.Poly, ips polyring.SymmetricMatrix[polyring.Poly]) uint64 {
	return f.evaluate(ring, s, ips).ConstantCoeff()
}

// IsSatisfied reports whether s satisfies the constraint.
func (f *ConstantQuadDotProdFunction) IsSatisfied(ring *polyring.Ring, s [][]polyring.Poly, ips polyring.SymmetricMatrix[polyring.Poly]) bool {
	return f.Evaluate(ring, s, ips) == f.b%ring.Modulus()
}

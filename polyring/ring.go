package polyring

import (
	"math/bits"

	"github.com/sp301415/ringo-labrador/num"
)

// Ring is the negacyclic ring Z_q[X]/(X^d+1).
//
// Ring is not safe for concurrent use.
// Use [Ring.ShallowCopy] to obtain a copy for each goroutine.
type Ring struct {
	degree     int
	modulus    uint64
	logModulus float64

	multiplier Multiplier

	buf Poly
}

// ShallowCopy returns a copy of the Ring that is thread-safe.
func (r *Ring) ShallowCopy() *Ring {
	return &Ring{
		degree:     r.degree,
		modulus:    r.modulus,
		logModulus: r.logModulus,
		multiplier: r.multiplier.ShallowCopy(),
		buf:        NewPoly(r.degree),
	}
}

// Degree returns the structural dimension d.
func (r *Ring) Degree() int {
	return r.degree
}

// Modulus returns the modulus q.
func (r *Ring) Modulus() uint64 {
	return r.modulus
}

// LogModulus returns log2(q).
func (r *Ring) LogModulus() float64 {
	return r.logModulus
}

// IsNTT reports whether multiplication uses the number theoretic transform.
func (r *Ring) IsNTT() bool {
	_, ok := r.multiplier.(*nttMultiplier)
	return ok
}

// NewPoly creates a new zero polynomial.
func (r *Ring) NewPoly() Poly {
	return NewPoly(r.degree)
}

// NewConstant creates a constant polynomial c.
func (r *Ring) NewConstant(c uint64) Poly {
	p := r.NewPoly()
	p.Coeffs[0] = c % r.modulus
	return p
}

// NewPolyFromInt64 creates a polynomial from signed coefficients.
func (r *Ring) NewPolyFromInt64(coeffs []int64) Poly {
	p := r.NewPoly()
	for i := 0; i < len(coeffs) && i < r.degree; i++ {
		p.Coeffs[i] = num.Reduce(coeffs[i], r.modulus)
	}
	return p
}

// Add returns pOut = p0 + p1.
func (r *Ring) Add(p0, p1 Poly) Poly {
	pOut := r.NewPoly()
	r.AddAssign(p0, p1, pOut)
	return pOut
}

// AddAssign assigns pOut = p0 + p1.
func (r *Ring) AddAssign(p0, p1, pOut Poly) {
	for i := 0; i < r.degree; i++ {
		pOut.Coeffs[i] = num.AddMod(p0.Coeffs[i], p1.Coeffs[i], r.modulus)
	}
}

// Sub returns pOut = p0 - p1.
func (r *Ring) Sub(p0, p1 Poly) Poly {
	pOut := r.NewPoly()
	r.SubAssign(p0, p1, pOut)
	return pOut
}

// SubAssign assigns pOut = p0 - p1.
func (r *Ring) SubAssign(p0, p1, pOut Poly) {
	for i := 0; i < r.degree; i++ {
		pOut.Coeffs[i] = num.SubMod(p0.Coeffs[i], p1.Coeffs[i], r.modulus)
	}
}

// Neg returns pOut = -p.
func (r *Ring) Neg(p Poly) Poly {
	pOut := r.NewPoly()
	r.NegAssign(p, pOut)
	return pOut
}

// NegAssign assigns pOut = -p.
func (r *Ring) NegAssign(p, pOut Poly) {
	for i := 0; i < r.degree; i++ {
		pOut.Coeffs[i] = num.NegMod(p.Coeffs[i], r.modulus)
	}
}

// Mul returns pOut = p0 * p1.
func (r *Ring) Mul(p0, p1 Poly) Poly {
	pOut := r.NewPoly()
	r.MulAssign(p0, p1, pOut)
	return pOut
}

// MulAssign assigns pOut = p0 * p1.
func (r *Ring) MulAssign(p0, p1, pOut Poly) {
	r.multiplier.MulAssign(p0, p1, pOut)
}

// MulAddAssign assigns pOut += p0 * p1.
func (r *Ring) MulAddAssign(p0, p1, pOut Poly) {
	r.multiplier.MulAssign(p0, p1, r.buf)
	r.AddAssign(pOut, r.buf, pOut)
}

// MulSubAssign assigns pOut -= p0 * p1.
func (r *Ring) MulSubAssign(p0, p1, pOut Poly) {
	r.multiplier.MulAssign(p0, p1, r.buf)
	r.SubAssign(pOut, r.buf, pOut)
}

// ScalarMul returns pOut = c * p.
func (r *Ring) ScalarMul(p Poly, c uint64) Poly {
	pOut := r.NewPoly()
	r.ScalarMulAssign(p, c, pOut)
	return pOut
}

// ScalarMulAssign assigns pOut = c * p.
func (r *Ring) ScalarMulAssign(p Poly, c uint64, pOut Poly) {
	for i := 0; i < r.degree; i++ {
		pOut.Coeffs[i] = num.MulMod(p.Coeffs[i], c, r.modulus)
	}
}

// ScalarMulAddAssign assigns pOut += c * p.
func (r *Ring) ScalarMulAddAssign(p Poly, c uint64, pOut Poly) {
	for i := 0; i < r.degree; i++ {
		pOut.Coeffs[i] = num.AddMod(pOut.Coeffs[i], num.MulMod(p.Coeffs[i], c, r.modulus), r.modulus)
	}
}

// Conjugate returns the image of p under the automorphism X -> X^-1.
func (r *Ring) Conjugate(p Poly) Poly {
	pOut := r.NewPoly()
	r.ConjugateAssign(p, pOut)
	return pOut
}

// ConjugateAssign assigns pOut = p(X^-1).
// The constant coefficient of Conjugate(a) * b equals the
// coefficient-wise inner product of a and b.
func (r *Ring) ConjugateAssign(p, pOut Poly) {
	c0 := p.Coeffs[0]
	for i := 1; i <= r.degree/2; i++ {
		j := r.degree - i
		ci, cj := p.Coeffs[i], p.Coeffs[j]
		pOut.Coeffs[i] = num.NegMod(cj, r.modulus)
		pOut.Coeffs[j] = num.NegMod(ci, r.modulus)
	}
	pOut.Coeffs[0] = c0
}

// CoeffInnerProduct returns sum_i p0_i * p1_i mod q.
func (r *Ring) CoeffInnerProduct(p0, p1 Poly) uint64 {
	var res uint64
	for i := 0; i < r.degree; i++ {
		res = num.AddMod(res, num.MulMod(p0.Coeffs[i], p1.Coeffs[i], r.modulus), r.modulus)
	}
	return res
}

// NormSq returns the squared l2 norm of p over balanced representatives.
// The result saturates at 2^64 - 1.
func (r *Ring) NormSq(p Poly) uint64 {
	var res uint64
	for i := 0; i < r.degree; i++ {
		res = addSat(res, sqSat(num.Balanced(p.Coeffs[i], r.modulus)))
	}
	return res
}

// Linf returns the infinity norm of p over balanced representatives.
func (r *Ring) Linf(p Poly) uint64 {
	var res uint64
	for i := 0; i < r.degree; i++ {
		if c := uint64(num.Abs(num.Balanced(p.Coeffs[i], r.modulus))); c > res {
			res = c
		}
	}
	return res
}

func addSat(x, y uint64) uint64 {
	z, carry := bits.Add64(x, y, 0)
	if carry != 0 {
		return ^uint64(0)
	}
	return z
}

func sqSat(x int64) uint64 {
	a := uint64(num.Abs(x))
	hi, lo := bits.Mul64(a, a)
	if hi != 0 {
		return ^uint64(0)
	}
	return lo
}

package polyring

import "github.com/sp301415/ringo-labrador/num"

// Decompose returns the balanced base-b decomposition of p into the given number of digits.
func (r *Ring) Decompose(p Poly, base uint64, digits int) []Poly {
	pOut := r.NewVector(digits)
	r.DecomposeAssign(p, base, pOut)
	return pOut
}

// DecomposeAssign writes the balanced base-b decomposition of p into pOut.
// Every digit but the last lies in [-(b-1)/2, (b-1)/2] for odd b;
// the last digit absorbs the remainder, so that
// sum_l b^l * pOut[l] equals p on balanced representatives.
func (r *Ring) DecomposeAssign(p Poly, base uint64, pOut []Poly) {
	b := int64(base)
	half := b / 2
	last := len(pOut) - 1

	for i := 0; i < r.degree; i++ {
		v := num.Balanced(p.Coeffs[i], r.modulus)
		for l := 0; l < last; l++ {
			d := v % b
			if d > half {
				d -= b
			} else if d < -half {
				d += b
			}
			pOut[l].Coeffs[i] = num.Reduce(d, r.modulus)
			v = (v - d) / b
		}
		pOut[last].Coeffs[i] = num.Reduce(v, r.modulus)
	}
}

// DecomposeVectorAssign decomposes every entry of v.
// vOut[l][i] is the l-th digit of v[i].
func (r *Ring) DecomposeVectorAssign(v []Poly, base uint64, vOut [][]Poly) {
	digits := make([]Poly, len(vOut))
	for i := range v {
		for l := range vOut {
			digits[l] = vOut[l][i]
		}
		r.DecomposeAssign(v[i], base, digits)
	}
}

// Recompose returns sum_l b^l * digits[l].
func (r *Ring) Recompose(digits []Poly, base uint64) Poly {
	pOut := r.NewPoly()
	pow := uint64(1)
	for l := range digits {
		r.ScalarMulAddAssign(digits[l], pow, pOut)
		pow = num.MulMod(pow, base, r.modulus)
	}
	return pOut
}

// GadgetPowers returns [1, b, b^2, ..., b^(digits-1)] mod q.
func (r *Ring) GadgetPowers(base uint64, digits int) []uint64 {
	pows := make([]uint64, digits)
	for l := range pows {
		pows[l] = num.ModExp(base, uint64(l), r.modulus)
	}
	return pows
}

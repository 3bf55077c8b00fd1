package labrador

import (
	"github.com/sp301415/ringo-labrador/num"
	"github.com/sp301415/ringo-labrador/polyring"
	"github.com/sp301415/ringo-labrador/principal"
)

// layout places the folded witness into vectors of length n.
//
// Vectors 0 and 1 hold the digits z0 and z1 of z = z0 + b * z1.
// The remaining vectors hold, in order and zero padded,
// the digits of t_i, g_ij and h_ij.
type layout struct {
	r, n, k int
	t1, t2  int
	pairs   int
}

func (crs *CRS) layout() layout {
	return layout{
		r:     crs.size.R,
		n:     crs.size.N,
		k:     crs.ranks.K,
		t1:    crs.decomposition.T1,
		t2:    crs.decomposition.T2,
		pairs: polyring.PackedSize(crs.size.R),
	}
}

// numVectors returns the number of output vectors.
func (lt layout) numVectors() int {
	width := lt.r*lt.t1*lt.k + lt.pairs*(lt.t2+lt.t1)
	return 2 + num.DivCeil(width, lt.n)
}

// position is a coordinate of the output witness.
type position struct {
	vec, idx int
}

// in returns the entry of v at pos.
func (pos position) in(v [][]polyring.Poly) polyring.Poly {
	return v[pos.vec][pos.idx]
}

// slot returns the position of the e-th flat element.
func (lt layout) slot(e int) position {
	return position{vec: 2 + e/lt.n, idx: e % lt.n}
}

// t returns the position of the l-th digit of t_i[kappa].
func (lt layout) t(i, l, kappa int) position {
	return lt.slot((i*lt.t1+l)*lt.k + kappa)
}

// g returns the position of the l-th digit of g_ij, where ij is packed.
func (lt layout) g(ij, l int) position {
	return lt.slot(lt.r*lt.t1*lt.k + ij*lt.t2 + l)
}

// h returns the position of the l-th digit of h_ij, where ij is packed.
func (lt layout) h(ij, l int) position {
	return lt.slot(lt.r*lt.t1*lt.k + lt.pairs*lt.t2 + ij*lt.t1 + l)
}

// pairIndex returns the packed index of (i, j) with i >= j.
func pairIndex(i, j int) int {
	return i*(i+1)/2 + j
}

// foldWeights returns w_ij = c_i^2 if i == j and 2 c_i c_j otherwise,
// indexed by packed ij, so that sum_ij w_ij x_ij = sum_{i, j} c_i c_j x_ij
// for symmetric x.
func foldWeights(ring *polyring.Ring, c []polyring.Poly) []polyring.Poly {
	w := make([]polyring.Poly, polyring.PackedSize(len(c)))
	for i := range c {
		for j := 0; j <= i; j++ {
			w[pairIndex(i, j)] = ring.Mul(c[i], c[j])
			if i != j {
				ring.ScalarMulAssign(w[pairIndex(i, j)], 2, w[pairIndex(i, j)])
			}
		}
	}
	return w
}

// foldedStatement is everything both parties know at the end of a round.
type foldedStatement struct {
	agg aggregated
	u1  []polyring.Poly
	u2  []polyring.Poly
	c   []polyring.Poly
}

// foldInstance builds the output instance. Its constraints are, in order:
//
//   - K rows of A * z = sum_i c_i t_i
//   - <z, z> = sum_ij c_i c_j g_ij
//   - sum_i <c_i phi_i, z> = sum_ij c_i c_j h_ij
//   - sum_ij A_ij g_ij + sum_i h_ii = b
//   - K1 rows of u1 = sum_il B_il t_i^(l) + sum_ijl C_ij^(l) g_ij^(l)
//   - K2 rows of u2 = sum_ijl D_ij^(l) h_ij^(l)
//
// where every t_i, g_ij and h_ij is recomposed from its digits,
// and z = z0 + b * z1.
func (crs *CRS) foldInstance(ring *polyring.Ring, st foldedStatement) (*principal.Instance, error) {
	lt := crs.layout()
	rOut := lt.numVectors()
	dc := crs.decomposition
	base := dc.Base

	pow1 := ring.GadgetPowers(dc.B1, dc.T1)
	pow2 := ring.GadgetPowers(dc.B2, dc.T2)
	w := foldWeights(ring, st.c)

	newPhi := func() [][]polyring.Poly {
		return ring.NewMatrix(rOut, lt.n)
	}

	constraints := make([]*principal.QuadDotProdFunction, 0, crs.OutputSize().NumConstraints)
	push := func(a *polyring.SymmetricMatrix[polyring.Poly], phi [][]polyring.Poly, b polyring.Poly) error {
		var f *principal.QuadDotProdFunction
		var err error
		if a == nil {
			f, err = principal.NewLinearQuadDotProdFunction(phi, b)
		} else {
			f, err = principal.NewQuadDotProdFunctionSymmetric(*a, phi, b)
		}
		if err != nil {
			return err
		}
		constraints = append(constraints, f)
		return nil
	}

	// A * z - sum_i c_i t_i = 0
	for kappa := 0; kappa < lt.k; kappa++ {
		phi := newPhi()
		for a := 0; a < lt.n; a++ {
			phi[0][a].CopyFrom(crs.a[kappa][a])
			ring.ScalarMulAssign(crs.a[kappa][a], base, phi[1][a])
		}
		for i := 0; i < lt.r; i++ {
			negC := ring.Neg(st.c[i])
			for l := 0; l < lt.t1; l++ {
				ring.ScalarMulAssign(negC, pow1[l], lt.t(i, l, kappa).in(phi))
			}
		}
		if err := push(nil, phi, ring.NewPoly()); err != nil {
			return nil, err
		}
	}

	// <z, z> - sum_ij w_ij g_ij = 0
	{
		a := newZeroSymmetric(ring, rOut)
		a.At(0, 0).Coeffs[0] = 1
		a.At(1, 0).Coeffs[0] = base % ring.Modulus()
		a.At(1, 1).Coeffs[0] = num.MulMod(base, base, ring.Modulus())

		phi := newPhi()
		for ij := range w {
			negW := ring.Neg(w[ij])
			for l := 0; l < lt.t2; l++ {
				ring.ScalarMulAssign(negW, pow2[l], lt.g(ij, l).in(phi))
			}
		}
		if err := push(&a, phi, ring.NewPoly()); err != nil {
			return nil, err
		}
	}

	// <sum_i c_i phi_i, z> - sum_ij w_ij h_ij = 0
	{
		phi := newPhi()
		for i := 0; i < lt.r; i++ {
			ring.MulAddVectorAssign(st.c[i], st.agg.phi[i], phi[0])
		}
		for a := 0; a < lt.n; a++ {
			ring.ScalarMulAssign(phi[0][a], base, phi[1][a])
		}
		for ij := range w {
			negW := ring.Neg(w[ij])
			for l := 0; l < lt.t1; l++ {
				ring.ScalarMulAssign(negW, pow1[l], lt.h(ij, l).in(phi))
			}
		}
		if err := push(nil, phi, ring.NewPoly()); err != nil {
			return nil, err
		}
	}

	// sum_ij A_ij g_ij + sum_i h_ii = b
	{
		phi := newPhi()
		st.agg.a.Range(func(i, j int, aij polyring.Poly) {
			ij := pairIndex(i, j)
			coeff := aij
			if i != j {
				coeff = ring.ScalarMul(aij, 2)
			}
			for l := 0; l < lt.t2; l++ {
				ring.ScalarMulAssign(coeff, pow2[l], lt.g(ij, l).in(phi))
			}
		})
		for i := 0; i < lt.r; i++ {
			for l := 0; l < lt.t1; l++ {
				lt.h(pairIndex(i, i), l).in(phi).Coeffs[0] = pow1[l]
			}
		}
		if err := push(nil, phi, st.agg.b.Copy()); err != nil {
			return nil, err
		}
	}

	// u1 = sum_il B_il t_i^(l) + sum_ijl C_ij^(l) g_ij^(l)
	for kappa1 := 0; kappa1 < crs.ranks.K1; kappa1++ {
		phi := newPhi()
		for i := 0; i < lt.r; i++ {
			for l := 0; l < lt.t1; l++ {
				for kappa := 0; kappa < lt.k; kappa++ {
					lt.t(i, l, kappa).in(phi).CopyFrom(crs.b[i][l][kappa1][kappa])
				}
			}
		}
		for ij := 0; ij < lt.pairs; ij++ {
			for l := 0; l < lt.t2; l++ {
				lt.g(ij, l).in(phi).CopyFrom(crs.c[ij][l][kappa1])
			}
		}
		if err := push(nil, phi, st.u1[kappa1].Copy()); err != nil {
			return nil, err
		}
	}

	// u2 = sum_ijl D_ij^(l) h_ij^(l)
	for kappa2 := 0; kappa2 < crs.ranks.K2; kappa2++ {
		phi := newPhi()
		for ij := 0; ij < lt.pairs; ij++ {
			for l := 0; l < lt.t1; l++ {
				lt.h(ij, l).in(phi).CopyFrom(crs.d[ij][l][kappa2])
			}
		}
		if err := push(nil, phi, st.u2[kappa2].Copy()); err != nil {
			return nil, err
		}
	}

	return principal.NewInstance(rOut, lt.n, constraints, nil)
}

// foldWitness places z0, z1 and the digits of t, g and h into the output witness.
// tDigits[i][l][kappa], gDigits[ij][l] and hDigits[ij][l] are as in [Commiter].
func (crs *CRS) foldWitness(z [2][]polyring.Poly, tDigits [][][]polyring.Poly, gDigits, hDigits [][]polyring.Poly) *principal.Witness {
	lt := crs.layout()
	s := crs.ring.NewMatrix(lt.numVectors(), lt.n)

	for a := 0; a < lt.n; a++ {
		s[0][a].CopyFrom(z[0][a])
		s[1][a].CopyFrom(z[1][a])
	}

	for i := range tDigits {
		for l := range tDigits[i] {
			for kappa := range tDigits[i][l] {
				lt.t(i, l, kappa).in(s).CopyFrom(tDigits[i][l][kappa])
			}
		}
	}
	for ij := range gDigits {
		for l := range gDigits[ij] {
			lt.g(ij, l).in(s).CopyFrom(gDigits[ij][l])
		}
	}
	for ij := range hDigits {
		for l := range hDigits[ij] {
			lt.h(ij, l).in(s).CopyFrom(hDigits[ij][l])
		}
	}

	return &principal.Witness{S: s}
}

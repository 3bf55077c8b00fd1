package labrador

import (
	"github.com/sp301415/ringo-labrador/num"
	"github.com/sp301415/ringo-labrador/polyring"
	"github.com/sp301415/ringo-labrador/principal"
)

// projection is the Johnson-Lindenstrauss projection of a witness.
type projection struct {
	// pi[j][a][i] is the (a, i) entry of the j-th projection matrix.
	pi [][][]polyring.Poly
	// p[j] = sum_{i, a} <pi[j][a][i], s_i[a]> over the coefficients.
	p []uint64
}

// project computes the projection of s under pi.
func project(ring *polyring.Ring, pi [][][]polyring.Poly, s [][]polyring.Poly) projection {
	p := make([]uint64, len(pi))
	q := ring.Modulus()
	for j := range pi {
		var acc uint64
		for a := range pi[j] {
			for i := range pi[j][a] {
				acc = num.AddMod(acc, ring.CoeffInnerProduct(pi[j][a][i], s[i][a]), q)
			}
		}
		p[j] = acc
	}
	return projection{pi: pi, p: p}
}

// normSq returns the squared norm of p over balanced representatives.
func (proj projection) normSq(ring *polyring.Ring) uint64 {
	v := ring.NewVector(len(proj.p))
	for j := range proj.p {
		v[j].Coeffs[0] = proj.p[j]
	}
	return ring.VectorNormSq(v)
}

// constants returns p as constant polynomials.
func (proj projection) constants(ring *polyring.Ring) []polyring.Poly {
	v := make([]polyring.Poly, len(proj.p))
	for j := range proj.p {
		v[j] = ring.NewConstant(proj.p[j])
	}
	return v
}

// aggregateConstant returns the K aggregated constant constraints
//
//	A''^(k) = sum_l psi[l][k] * A'^(l)
//	phi''^(k)_i = sum_l psi[l][k] * phi'^(l)_i + sum_j omega[j][k] * sigma(pi_j)_i
//
// where sigma is the conjugation, so that ct(<sigma(pi_j)_i, s_i>) = p_j.
// The right hand sides are left as zero.
func aggregateConstant(ring *polyring.Ring, x *principal.Instance, proj projection, psi, omega [][]uint64, numAggregs int) ([]*principal.QuadDotProdFunction, error) {
	r, n := x.R(), x.N()
	constants := x.ConstantConstraints()

	conjPi := make([][][]polyring.Poly, len(proj.pi))
	for j := range proj.pi {
		conjPi[j] = ring.NewMatrix(n, r)
		for a := range proj.pi[j] {
			for i := range proj.pi[j][a] {
				ring.ConjugateAssign(proj.pi[j][a][i], conjPi[j][a][i])
			}
		}
	}

	quadratic := false
	for _, c := range constants {
		quadratic = quadratic || !c.IsLinear()
	}

	aggs := make([]*principal.QuadDotProdFunction, numAggregs)
	for k := range aggs {
		phi := ring.NewMatrix(r, n)
		a := newZeroSymmetric(ring, r)

		for l, c := range constants {
			c.RangeA(func(i, j int, aij polyring.Poly) {
				ring.ScalarMulAddAssign(aij, psi[l][k], a.At(i, j))
			})
			c.RangePhi(func(i int, phil []polyring.Poly) {
				ring.ScalarMulAddVectorAssign(phil, psi[l][k], phi[i])
			})
		}

		for j := range conjPi {
			for a := range conjPi[j] {
				for i := range conjPi[j][a] {
					ring.ScalarMulAddAssign(conjPi[j][a][i], omega[j][k], phi[i][a])
				}
			}
		}

		var err error
		if quadratic {
			aggs[k], err = principal.NewQuadDotProdFunctionSymmetric(a, phi, ring.NewPoly())
		} else {
			aggs[k], err = principal.NewLinearQuadDotProdFunction(phi, ring.NewPoly())
		}
		if err != nil {
			return nil, err
		}
	}
	return aggs, nil
}

// expectedConstant returns sum_l psi[l][k] * b'_l + sum_j omega[j][k] * p_j,
// the constant coefficient of the k-th aggregated right hand side.
func expectedConstant(ring *polyring.Ring, x *principal.Instance, p []uint64, psi, omega [][]uint64, k int) uint64 {
	q := ring.Modulus()
	var acc uint64
	for l, c := range x.ConstantConstraints() {
		acc = num.AddMod(acc, num.MulMod(psi[l][k], c.B()%q, q), q)
	}
	for j := range p {
		acc = num.AddMod(acc, num.MulMod(omega[j][k], p[j], q), q)
	}
	return acc
}

// aggregated is the single constraint obtained by linear combination
// of all ring constraints and all aggregated constant constraints.
type aggregated struct {
	a   polyring.SymmetricMatrix[polyring.Poly]
	phi [][]polyring.Poly
	b   polyring.Poly
}

// aggregateAll returns
//
//	A = sum_m alpha_m * A^(m) + sum_k beta_k * A''^(k)
//
// and likewise for phi and b, where bpp[k] is the right hand side of aggs[k].
func aggregateAll(ring *polyring.Ring, x *principal.Instance, aggs []*principal.QuadDotProdFunction, bpp, alpha, beta []polyring.Poly) aggregated {
	r, n := x.R(), x.N()
	out := aggregated{
		a:   newZeroSymmetric(ring, r),
		phi: ring.NewMatrix(r, n),
		b:   ring.NewPoly(),
	}

	add := func(c *principal.QuadDotProdFunction, b, weight polyring.Poly) {
		c.RangeA(func(i, j int, aij polyring.Poly) {
			ring.MulAddAssign(aij, weight, out.a.At(i, j))
		})
		c.RangePhi(func(i int, phi []polyring.Poly) {
			ring.MulAddVectorAssign(weight, phi, out.phi[i])
		})
		ring.MulAddAssign(b, weight, out.b)
	}

	for m, c := range x.Constraints() {
		add(c, c.B(), alpha[m])
	}
	for k, c := range aggs {
		add(c, bpp[k], beta[k])
	}
	return out
}

func newZeroSymmetric(ring *polyring.Ring, r int) polyring.SymmetricMatrix[polyring.Poly] {
	a := polyring.NewSymmetricMatrix[polyring.Poly](r)
	for idx := range a.Packed() {
		a.Packed()[idx] = ring.NewPoly()
	}
	return a
}

package polyring

import (
	"runtime"

	"golang.org/x/sync/errgroup"
)

// NewVector creates a new zero vector of length n.
func (r *Ring) NewVector(n int) []Poly {
	v := make([]Poly, n)
	for i := range v {
		v[i] = r.NewPoly()
	}
	return v
}

// NewMatrix creates a new zero matrix of size rows x cols.
func (r *Ring) NewMatrix(rows, cols int) [][]Poly {
	m := make([][]Poly, rows)
	for i := range m {
		m[i] = r.NewVector(cols)
	}
	return m
}

// AddVectorAssign assigns vOut = v0 + v1.
func (r *Ring) AddVectorAssign(v0, v1, vOut []Poly) {
	for i := range vOut {
		r.AddAssign(v0[i], v1[i], vOut[i])
	}
}

// ScalarMulAddVectorAssign assigns vOut += c * v.
func (r *Ring) ScalarMulAddVectorAssign(v []Poly, c uint64, vOut []Poly) {
	for i := range vOut {
		r.ScalarMulAddAssign(v[i], c, vOut[i])
	}
}

// MulAddVectorAssign assigns vOut += p * v.
func (r *Ring) MulAddVectorAssign(p Poly, v, vOut []Poly) {
	for i := range vOut {
		r.MulAddAssign(p, v[i], vOut[i])
	}
}

// InnerProduct returns sum_i v0[i] * v1[i].
// No conjugation is applied.
func (r *Ring) InnerProduct(v0, v1 []Poly) Poly {
	pOut := r.NewPoly()
	r.InnerProductAddAssign(v0, v1, pOut)
	return pOut
}

// InnerProductAddAssign assigns pOut += sum_i v0[i] * v1[i].
func (r *Ring) InnerProductAddAssign(v0, v1 []Poly, pOut Poly) {
	for i := range v0 {
		r.MulAddAssign(v0[i], v1[i], pOut)
	}
}

// MulMatVecAssign assigns vOut = m * v.
func (r *Ring) MulMatVecAssign(m [][]Poly, v, vOut []Poly) {
	for i := range m {
		vOut[i].Clear()
		r.InnerProductAddAssign(m[i], v, vOut[i])
	}
}

// MulMatVecAddAssign assigns vOut += m * v.
func (r *Ring) MulMatVecAddAssign(m [][]Poly, v, vOut []Poly) {
	for i := range m {
		r.InnerProductAddAssign(m[i], v, vOut[i])
	}
}

// VectorNormSq returns the squared l2 norm of v, saturating at 2^64 - 1.
func (r *Ring) VectorNormSq(v []Poly) uint64 {
	var res uint64
	for i := range v {
		res = addSat(res, r.NormSq(v[i]))
	}
	return res
}

// InnerProducts returns the symmetric matrix of pairwise inner products <s_i, s_j>.
// Each unordered pair is computed once, concurrently.
func (r *Ring) InnerProducts(s [][]Poly) SymmetricMatrix[Poly] {
	ips := NewSymmetricMatrix[Poly](len(s))

	var g errgroup.Group
	g.SetLimit(runtime.NumCPU())
	for i := range s {
		for j := 0; j <= i; j++ {
			g.Go(func() error {
				ips.Set(i, j, r.ShallowCopy().InnerProduct(s[i], s[j]))
				return nil
			})
		}
	}
	g.Wait()

	return ips
}

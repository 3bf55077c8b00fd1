package polyring

import (
	"encoding/binary"
	"math/bits"

	"github.com/sp301415/ringo-labrador/csprng"
	"github.com/sp301415/ringo-labrador/num"
)

// ScalarByteSize is the number of random bytes mapped to one uniform scalar.
// The statistical distance from uniform is at most q / 2^128.
const ScalarByteSize = 16

// ScalarFromBytes maps ScalarByteSize random bytes to a scalar in [0, q).
func (r *Ring) ScalarFromBytes(buf []byte) uint64 {
	lo := binary.LittleEndian.Uint64(buf[0:8])
	hi := binary.LittleEndian.Uint64(buf[8:16])
	return bits.Rem64(hi, lo, r.modulus)
}

// UniformByteSize returns the number of random bytes mapped to one uniform polynomial.
func (r *Ring) UniformByteSize() int {
	return ScalarByteSize * r.degree
}

// UniformFromBytesAssign maps UniformByteSize random bytes to a uniform polynomial.
func (r *Ring) UniformFromBytesAssign(buf []byte, pOut Poly) {
	for i := 0; i < r.degree; i++ {
		pOut.Coeffs[i] = r.ScalarFromBytes(buf[ScalarByteSize*i:])
	}
}

// SampleUniform samples a uniformly random polynomial.
func (r *Ring) SampleUniform(us *csprng.UniformSampler) Poly {
	pOut := r.NewPoly()
	r.SampleUniformAssign(us, pOut)
	return pOut
}

// SampleUniformAssign samples a uniformly random polynomial and writes it to pOut.
func (r *Ring) SampleUniformAssign(us *csprng.UniformSampler, pOut Poly) {
	for i := 0; i < r.degree; i++ {
		pOut.Coeffs[i] = us.SampleN(r.modulus)
	}
}

// SampleUniformMatrix samples a uniformly random matrix of size rows x cols.
func (r *Ring) SampleUniformMatrix(us *csprng.UniformSampler, rows, cols int) [][]Poly {
	m := r.NewMatrix(rows, cols)
	for i := range m {
		for j := range m[i] {
			r.SampleUniformAssign(us, m[i][j])
		}
	}
	return m
}

// SampleTernaryAssign samples uniform coefficients in {-1, 0, 1}.
func (r *Ring) SampleTernaryAssign(us *csprng.UniformSampler, pOut Poly) {
	for i := 0; i < r.degree; i++ {
		pOut.Coeffs[i] = num.Reduce(us.SampleTernary(), r.modulus)
	}
}

// SampleGaussianAssign samples coefficients from a discrete Gaussian centered at zero.
func (r *Ring) SampleGaussianAssign(gs *csprng.GaussianSampler, pOut Poly) {
	for i := 0; i < r.degree; i++ {
		pOut.Coeffs[i] = num.Reduce(gs.Sample(), r.modulus)
	}
}

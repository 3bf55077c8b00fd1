package labrador

import (
	"encoding/hex"
	"fmt"

	"github.com/sp301415/ringo-labrador/polyring"
	"github.com/sp301415/ringo-labrador/principal"
	"github.com/sp301415/ringo-labrador/transcript"
)

const (
	labelProver1      = "prover message 1"
	labelVerifier1    = "verifier message 1"
	labelProver2      = "prover message 2"
	labelVerifierPsi  = "verifier message 2 (psi)"
	labelVerifierOmg  = "verifier message 2 (omega)"
	labelProver3      = "prover message 3"
	labelVerifierAlph = "verifier message 3 (alpha)"
	labelVerifierBeta = "verifier message 3 (beta)"
	labelProver4      = "prover message 4"
	labelVerifier4    = "verifier message 4"
)

// domain returns the domain separator, binding the ring, the relation shape and the seed.
func (crs *CRS) domain() string {
	return fmt.Sprintf("labrador/d=%d/q=%d/r=%d/n=%d/beta2=%g/m=%d/l=%d/seed=%s",
		crs.ring.Degree(), crs.ring.Modulus(),
		crs.size.R, crs.size.N, crs.size.NormBoundSq,
		crs.size.NumConstraints, crs.size.NumConstantConstraints,
		hex.EncodeToString(crs.seed))
}

// IOPattern returns the transcript pattern of one round for instances of this CRS:
//
//  1. absorb u1 (k1 ring elements)
//  2. squeeze 256 projection matrices of size n x r
//  3. absorb the projection p (256 constant ring elements)
//  4. squeeze psi (L x K scalars)
//  5. squeeze omega (256 x K scalars)
//  6. absorb b'' (K ring elements)
//  7. squeeze alpha (M ring elements)
//  8. squeeze beta (K ring elements)
//  9. absorb u2 (k2 ring elements)
//  10. squeeze the folding challenges c (r ring elements)
func (crs *CRS) IOPattern(x *principal.Instance) (*transcript.IOPattern, error) {
	if err := crs.CheckInstance(x); err != nil {
		return nil, err
	}

	d := crs.ring.Degree()
	r, n := crs.size.R, crs.size.N
	numConstraints := len(x.Constraints())
	numConstantConstraints := len(x.ConstantConstraints())
	elemSize := crs.ring.EncodedSize()
	uniformSize := crs.ring.UniformByteSize()

	return transcript.NewIOPattern(crs.domain()).
		WithSponge(crs.sponge).
		Absorb(crs.ranks.K1*elemSize, labelProver1).
		Squeeze(projectionCount*n*r*polyring.WeightedTernary{}.ByteSize(d), labelVerifier1).
		Absorb(projectionCount*elemSize, labelProver2).
		Squeeze(numConstantConstraints*crs.numAggregs*polyring.ScalarByteSize, labelVerifierPsi).
		Squeeze(projectionCount*crs.numAggregs*polyring.ScalarByteSize, labelVerifierOmg).
		Absorb(crs.numAggregs*elemSize, labelProver3).
		Squeeze(numConstraints*uniformSize, labelVerifierAlph).
		Squeeze(crs.numAggregs*uniformSize, labelVerifierBeta).
		Absorb(crs.ranks.K2*elemSize, labelProver4).
		Squeeze(r*polyring.FoldingChallenges{}.ByteSize(d), labelVerifier4), nil
}

// squeezeProjections returns pi[j][a][i], the 256 projection matrices of size n x r.
func (crs *CRS) squeezeProjections(ring *polyring.Ring, ch transcript.Challenger) ([][][]polyring.Poly, error) {
	var cs polyring.WeightedTernary
	r, n := crs.size.R, crs.size.N
	size := cs.ByteSize(ring.Degree())

	buf := make([]byte, projectionCount*n*r*size)
	if err := ch.Squeeze(labelVerifier1, buf); err != nil {
		return nil, err
	}

	pi := make([][][]polyring.Poly, projectionCount)
	for j := range pi {
		pi[j] = ring.NewMatrix(n, r)
		for a := range pi[j] {
			for i := range pi[j][a] {
				cs.FromRandomBytesAssign(ring, buf[:size], pi[j][a][i])
				buf = buf[size:]
			}
		}
	}
	return pi, nil
}

// squeezeScalars returns a rows x cols matrix of uniform scalars.
func (crs *CRS) squeezeScalars(ring *polyring.Ring, ch transcript.Challenger, label string, rows, cols int) ([][]uint64, error) {
	buf := make([]byte, rows*cols*polyring.ScalarByteSize)
	if err := ch.Squeeze(label, buf); err != nil {
		return nil, err
	}

	out := make([][]uint64, rows)
	for i := range out {
		out[i] = make([]uint64, cols)
		for j := range out[i] {
			out[i][j] = ring.ScalarFromBytes(buf)
			buf = buf[polyring.ScalarByteSize:]
		}
	}
	return out, nil
}

// squeezeUniform returns count uniform ring elements.
func (crs *CRS) squeezeUniform(ring *polyring.Ring, ch transcript.Challenger, label string, count int) ([]polyring.Poly, error) {
	size := ring.UniformByteSize()
	buf := make([]byte, count*size)
	if err := ch.Squeeze(label, buf); err != nil {
		return nil, err
	}

	out := ring.NewVector(count)
	for i := range out {
		ring.UniformFromBytesAssign(buf[i*size:], out[i])
	}
	return out, nil
}

// squeezeFolding returns r folding challenges.
func (crs *CRS) squeezeFolding(ring *polyring.Ring, ch transcript.Challenger) ([]polyring.Poly, error) {
	var cs polyring.FoldingChallenges
	size := cs.ByteSize(ring.Degree())

	buf := make([]byte, crs.size.R*size)
	if err := ch.Squeeze(labelVerifier4, buf); err != nil {
		return nil, err
	}

	out := ring.NewVector(crs.size.R)
	for i := range out {
		cs.FromRandomBytesAssign(ring, buf[i*size:], out[i])
	}
	return out, nil
}

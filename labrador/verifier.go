package labrador

import (
	"errors"

	"github.com/sp301415/ringo-labrador/polyring"
	"github.com/sp301415/ringo-labrador/principal"
	"github.com/sp301415/ringo-labrador/transcript"
)

// Verifier verifies one round of the reduction.
//
// Verifier is not safe for concurrent use.
// Use [Verifier.ShallowCopy] to obtain a copy for each goroutine.
type Verifier struct {
	CRS  *CRS
	Ring *polyring.Ring
}

// NewVerifier creates a new Verifier.
func NewVerifier(crs *CRS) *Verifier {
	return &Verifier{
		CRS:  crs,
		Ring: crs.ring.ShallowCopy(),
	}
}

// ShallowCopy returns a copy of the Verifier that is thread-safe.
func (v *Verifier) ShallowCopy() *Verifier {
	return &Verifier{
		CRS:  v.CRS,
		Ring: v.Ring.ShallowCopy(),
	}
}

// Verify verifies the proof for x, and returns the folded instance.
func (v *Verifier) Verify(x *principal.Instance, pf Proof) (*principal.Instance, error) {
	io, err := v.CRS.IOPattern(x)
	if err != nil {
		return nil, err
	}

	ts, err := io.NewVerifier(pf.Transcript)
	if err != nil {
		return nil, err
	}

	xOut, err := v.VerifyTranscript(x, ts)
	if err != nil {
		return nil, err
	}

	if err := ts.Finish(); err != nil {
		return nil, err
	}
	return xOut, nil
}

// VerifyTranscript runs the verifier on ts,
// which must follow the pattern returned by [CRS.IOPattern].
// ts is not finished.
func (v *Verifier) VerifyTranscript(x *principal.Instance, ts *transcript.Verifier) (*principal.Instance, error) {
	crs := v.CRS
	ring := v.Ring

	if err := crs.CheckInstance(x); err != nil {
		return nil, err
	}

	u1, err := v.readVector(ts, labelProver1, crs.ranks.K1)
	if err != nil {
		return nil, err
	}

	pi, err := crs.squeezeProjections(ring, ts)
	if err != nil {
		return nil, err
	}

	pPoly, err := v.readVector(ts, labelProver2, projectionCount)
	if err != nil {
		return nil, err
	}
	p := make([]uint64, len(pPoly))
	for j := range pPoly {
		if !pPoly[j].IsConstant() {
			return nil, ErrVerificationFailed
		}
		p[j] = pPoly[j].ConstantCoeff()
	}
	proj := projection{pi: pi, p: p}
	if norm := proj.normSq(ring); float64(norm) > projectionSlack*crs.size.NormBoundSq {
		return nil, ErrVerificationFailed
	}

	psi, err := crs.squeezeScalars(ring, ts, labelVerifierPsi, len(x.ConstantConstraints()), crs.numAggregs)
	if err != nil {
		return nil, err
	}
	omega, err := crs.squeezeScalars(ring, ts, labelVerifierOmg, projectionCount, crs.numAggregs)
	if err != nil {
		return nil, err
	}

	bpp, err := v.readVector(ts, labelProver3, crs.numAggregs)
	if err != nil {
		return nil, err
	}
	for k := range bpp {
		if bpp[k].ConstantCoeff() != expectedConstant(ring, x, p, psi, omega, k) {
			return nil, ErrVerificationFailed
		}
	}

	aggs, err := aggregateConstant(ring, x, proj, psi, omega, crs.numAggregs)
	if err != nil {
		return nil, err
	}

	alpha, err := crs.squeezeUniform(ring, ts, labelVerifierAlph, len(x.Constraints()))
	if err != nil {
		return nil, err
	}
	beta, err := crs.squeezeUniform(ring, ts, labelVerifierBeta, crs.numAggregs)
	if err != nil {
		return nil, err
	}
	agg := aggregateAll(ring, x, aggs, bpp, alpha, beta)

	u2, err := v.readVector(ts, labelProver4, crs.ranks.K2)
	if err != nil {
		return nil, err
	}

	c, err := crs.squeezeFolding(ring, ts)
	if err != nil {
		return nil, err
	}

	return crs.foldInstance(ring, foldedStatement{agg: agg, u1: u1, u2: u2, c: c})
}

// readVector reads and decodes count ring elements from ts.
// Non-canonical encodings are rejected as verification failures.
// Rejections carry no detail about which check failed.
func (v *Verifier) readVector(ts *transcript.Verifier, label string, count int) ([]polyring.Poly, error) {
	buf, err := ts.Next(label, count*v.Ring.EncodedSize())
	if err != nil {
		return nil, err
	}

	vec, err := v.Ring.DecodeVector(buf, count)
	if err != nil {
		if errors.Is(err, polyring.ErrNonCanonical) {
			return nil, ErrVerificationFailed
		}
		return nil, err
	}
	return vec, nil
}

package labrador

import (
	"fmt"

	"github.com/sp301415/ringo-labrador/num"
	"github.com/sp301415/ringo-labrador/polyring"
	"github.com/sp301415/ringo-labrador/principal"
	"github.com/sp301415/ringo-labrador/transcript"
)

// Proof is a non-interactive proof of one round.
type Proof struct {
	// Transcript holds the prover messages.
	Transcript []byte
}

// Prover proves one round of the reduction.
//
// Prover is not safe for concurrent use.
// Use [Prover.ShallowCopy] to obtain a copy for each goroutine.
type Prover struct {
	CRS *CRS

	Ring     *polyring.Ring
	Commiter *Commiter

	// SkipSatisfactionCheck disables checking the input witness.
	// The norm of the projection is always checked.
	SkipSatisfactionCheck bool
}

// NewProver creates a new Prover.
func NewProver(crs *CRS) *Prover {
	return &Prover{
		CRS:      crs,
		Ring:     crs.ring.ShallowCopy(),
		Commiter: NewCommiter(crs),
	}
}

// ShallowCopy returns a copy of the Prover that is thread-safe.
func (p *Prover) ShallowCopy() *Prover {
	return &Prover{
		CRS:                   p.CRS,
		Ring:                  p.Ring.ShallowCopy(),
		Commiter:              p.Commiter.ShallowCopy(),
		SkipSatisfactionCheck: p.SkipSatisfactionCheck,
	}
}

// Prove proves that w satisfies x.
// It returns the proof, and the folded instance and witness.
func (p *Prover) Prove(x *principal.Instance, w *principal.Witness) (Proof, *principal.Instance, *principal.Witness, error) {
	io, err := p.CRS.IOPattern(x)
	if err != nil {
		return Proof{}, nil, nil, err
	}

	ts, err := io.NewProver()
	if err != nil {
		return Proof{}, nil, nil, err
	}

	xOut, wOut, err := p.ProveTranscript(x, w, ts)
	if err != nil {
		return Proof{}, nil, nil, err
	}

	if err := ts.Finish(); err != nil {
		return Proof{}, nil, nil, err
	}

	return Proof{Transcript: ts.Proof()}, xOut, wOut, nil
}

// ProveTranscript runs the prover on ts,
// which must follow the pattern returned by [CRS.IOPattern].
// ts is not finished.
func (p *Prover) ProveTranscript(x *principal.Instance, w *principal.Witness, ts *transcript.Prover) (*principal.Instance, *principal.Witness, error) {
	crs := p.CRS
	ring := p.Ring
	dc := crs.decomposition

	if err := crs.CheckInstance(x); err != nil {
		return nil, nil, err
	}
	if err := crs.CheckWitness(w); err != nil {
		return nil, nil, err
	}

	s := w.S
	ips := ring.InnerProducts(s)

	if !p.SkipSatisfactionCheck {
		for i, c := range x.Constraints() {
			if !c.IsSatisfied(ring, s, ips) {
				return nil, nil, fmt.Errorf("%w: constraint %d", principal.ErrNotSatisfied, i)
			}
		}
		for i, c := range x.ConstantConstraints() {
			if !c.IsSatisfied(ring, s, ips) {
				return nil, nil, fmt.Errorf("%w: constant constraint %d", principal.ErrNotSatisfied, i)
			}
		}
	}

	// Round 1: commit to t and g.
	t := p.Commiter.InnerCommitParallel(s)
	tDigits := make([][][]polyring.Poly, len(t))
	for i := range t {
		tDigits[i] = ring.NewMatrix(dc.T1, crs.ranks.K)
		ring.DecomposeVectorAssign(t[i], dc.B1, tDigits[i])
	}

	gDigits := make([][]polyring.Poly, 0, polyring.PackedSize(len(s)))
	ips.Range(func(i, j int, gij polyring.Poly) {
		gDigits = append(gDigits, ring.Decompose(gij, dc.B2, dc.T2))
	})

	u1 := p.Commiter.OuterCommit1(tDigits, gDigits)
	if err := ts.Absorb(labelProver1, ring.AppendVector(nil, u1)); err != nil {
		return nil, nil, err
	}

	// Round 2: project.
	pi, err := crs.squeezeProjections(ring, ts)
	if err != nil {
		return nil, nil, err
	}
	proj := project(ring, pi, s)
	if norm := proj.normSq(ring); float64(norm) > projectionSlack*crs.size.NormBoundSq {
		return nil, nil, fmt.Errorf("%w: %d > %v", ErrProjectionNorm, norm, projectionSlack*crs.size.NormBoundSq)
	}
	if err := ts.Absorb(labelProver2, ring.AppendVector(nil, proj.constants(ring))); err != nil {
		return nil, nil, err
	}

	// Round 3: aggregate constant constraints.
	psi, err := crs.squeezeScalars(ring, ts, labelVerifierPsi, len(x.ConstantConstraints()), crs.numAggregs)
	if err != nil {
		return nil, nil, err
	}
	omega, err := crs.squeezeScalars(ring, ts, labelVerifierOmg, projectionCount, crs.numAggregs)
	if err != nil {
		return nil, nil, err
	}

	aggs, err := aggregateConstant(ring, x, proj, psi, omega, crs.numAggregs)
	if err != nil {
		return nil, nil, err
	}
	bpp := make([]polyring.Poly, len(aggs))
	for k, c := range aggs {
		bpp[k] = c.Evaluate(ring, s, ips)
	}
	if err := ts.Absorb(labelProver3, ring.AppendVector(nil, bpp)); err != nil {
		return nil, nil, err
	}

	// Round 4: aggregate everything and commit to h.
	alpha, err := crs.squeezeUniform(ring, ts, labelVerifierAlph, len(x.Constraints()))
	if err != nil {
		return nil, nil, err
	}
	beta, err := crs.squeezeUniform(ring, ts, labelVerifierBeta, crs.numAggregs)
	if err != nil {
		return nil, nil, err
	}
	agg := aggregateAll(ring, x, aggs, bpp, alpha, beta)

	inv2 := num.ModInverse(2, ring.Modulus())
	hDigits := make([][]polyring.Poly, 0, polyring.PackedSize(len(s)))
	for i := range s {
		for j := 0; j <= i; j++ {
			hij := ring.InnerProduct(agg.phi[i], s[j])
			ring.InnerProductAddAssign(agg.phi[j], s[i], hij)
			ring.ScalarMulAssign(hij, inv2, hij)
			hDigits = append(hDigits, ring.Decompose(hij, dc.B1, dc.T1))
		}
	}

	u2 := p.Commiter.OuterCommit2(hDigits)
	if err := ts.Absorb(labelProver4, ring.AppendVector(nil, u2)); err != nil {
		return nil, nil, err
	}

	// Round 5: fold.
	c, err := crs.squeezeFolding(ring, ts)
	if err != nil {
		return nil, nil, err
	}

	z := ring.NewVector(crs.size.N)
	for i := range s {
		ring.MulAddVectorAssign(c[i], s[i], z)
	}
	zDigits := [2][]polyring.Poly{ring.NewVector(crs.size.N), ring.NewVector(crs.size.N)}
	ring.DecomposeVectorAssign(z, dc.Base, zDigits[:])

	xOut, err := crs.foldInstance(ring, foldedStatement{agg: agg, u1: u1, u2: u2, c: c})
	if err != nil {
		return nil, nil, err
	}
	wOut := crs.foldWitness(zDigits, tDigits, gDigits, hDigits)

	return xOut, wOut, nil
}

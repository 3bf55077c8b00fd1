// Package labrador implements one round of a lattice-based succinct argument
// for the principal relation, reducing it to a smaller principal relation.
package labrador

import (
	"context"
	"fmt"
	"math"
	"slices"

	"github.com/sp301415/ringo-labrador/csprng"
	"github.com/sp301415/ringo-labrador/estimator"
	"github.com/sp301415/ringo-labrador/num"
	"github.com/sp301415/ringo-labrador/polyring"
	"github.com/sp301415/ringo-labrador/principal"
	"github.com/sp301415/ringo-labrador/transcript"
)

// CRS is the common reference string for a fixed relation shape.
// It is read-only after Setup, and can be shared by any number of
// provers and verifiers.
type CRS struct {
	ring *polyring.Ring
	size principal.Size

	decomposition Decomposition
	ranks         Ranks

	// numAggregs is the number of aggregated constant constraints.
	numAggregs int
	// nextNormBoundSq is the squared norm bound of the folded relation.
	// Denoted as beta'^2 in the paper.
	nextNormBoundSq float64

	seed   []byte
	sponge transcript.SpongeFactory

	// a is the inner commitment matrix of size k x n.
	a [][]polyring.Poly
	// b[i][l] is a matrix of size k1 x k, committing to the l-th digit of t_i.
	b [][][][]polyring.Poly
	// c[ij][l] is a vector of length k2, committing to the l-th digit of g_ij.
	// ij is a packed symmetric index.
	c [][][]polyring.Poly
	// d[ij][l] is a vector of length k2, committing to the l-th digit of h_ij.
	d [][][]polyring.Poly

	report ParameterReport
}

// Setup derives the parameters for relations of the given size over ring,
// and expands the commitment matrices from the public seed.
func Setup(ctx context.Context, ring *polyring.Ring, size principal.Size, cfg Config) (*CRS, error) {
	if err := size.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidParameters, err)
	}

	r, n, d, q := size.R, size.N, ring.Degree(), ring.Modulus()
	beta := math.Sqrt(size.NormBoundSq)
	if ceiling := SoundnessCeiling(q); beta >= ceiling {
		return nil, fmt.Errorf("%w: beta = %.2f >= %.2f", ErrSoundnessCeiling, beta, ceiling)
	}

	seed := slices.Clone(cfg.Seed)
	if seed == nil {
		var err error
		if seed, err = csprng.RandomSeed(); err != nil {
			return nil, err
		}
	}
	if len(seed) != csprng.SeedSize {
		return nil, fmt.Errorf("%w: seed has length %d, expected %d", ErrInvalidParameters, len(seed), csprng.SeedSize)
	}

	dc := DeriveDecomposition(r, n, d, q, size.NormBoundSq)
	nextNormBoundSq := func(k int) float64 {
		return dc.NextNormBoundSq(r, n, d, k, size.NormBoundSq)
	}

	query := RankQuery{
		Inner: estimator.MSIS{D: d, Q: q, M: n, Norm: estimator.L2},
		InnerBound: func(k int) float64 {
			return dc.NormBound1(nextNormBoundSq(k), size.NormBoundSq)
		},
		Outer: func(k int) estimator.MSIS {
			return estimator.MSIS{
				D:           d,
				Q:           q,
				LengthBound: 2 * math.Sqrt(nextNormBoundSq(k)),
				M:           outerWidth(r, k, dc),
				Norm:        estimator.L2,
			}
		},
		SecurityTarget: cfg.securityTarget(),
		Estimator:      cfg.Estimator,
	}

	ranks, err := cfg.ranks().SelectRanks(ctx, query)
	if err != nil {
		return nil, err
	}
	if err := ranks.validate(); err != nil {
		return nil, err
	}

	crs := &CRS{
		ring: ring,
		size: size,

		decomposition: dc,
		ranks:         ranks,

		numAggregs:      NumAggregs(q),
		nextNormBoundSq: nextNormBoundSq(ranks.K),

		seed:   seed,
		sponge: cfg.sponge(),
	}

	if crs.report, err = newParameterReport(ctx, crs, query); err != nil {
		return nil, err
	}

	crs.expand()
	return crs, nil
}

// outerWidth returns the number of ring elements committed by u1 and u2.
func outerWidth(r, k int, dc Decomposition) int {
	return r*dc.T1*k + polyring.PackedSize(r)*(dc.T2+dc.T1)
}

// expand samples the commitment matrices from the seed.
// Each family is drawn from its own labelled stream.
func (crs *CRS) expand() {
	r, k, k1, k2 := crs.size.R, crs.ranks.K, crs.ranks.K1, crs.ranks.K2
	t1, t2 := crs.decomposition.T1, crs.decomposition.T2
	pairs := polyring.PackedSize(r)

	crs.a = crs.ring.SampleUniformMatrix(csprng.NewExpander(crs.seed, "A"), k, crs.size.N)

	sb := csprng.NewExpander(crs.seed, "B")
	crs.b = make([][][][]polyring.Poly, r)
	for i := range crs.b {
		crs.b[i] = make([][][]polyring.Poly, t1)
		for l := range crs.b[i] {
			crs.b[i][l] = crs.ring.SampleUniformMatrix(sb, k1, k)
		}
	}

	sc := csprng.NewExpander(crs.seed, "C")
	crs.c = make([][][]polyring.Poly, pairs)
	for ij := range crs.c {
		crs.c[ij] = crs.ring.SampleUniformMatrix(sc, t2, k2)
	}

	sd := csprng.NewExpander(crs.seed, "D")
	crs.d = make([][][]polyring.Poly, pairs)
	for ij := range crs.d {
		crs.d[ij] = crs.ring.SampleUniformMatrix(sd, t1, k2)
	}
}

// Ring returns the ring of the CRS.
// The returned Ring is shared; use [polyring.Ring.ShallowCopy] before concurrent use.
func (crs *CRS) Ring() *polyring.Ring {
	return crs.ring
}

// Size returns the relation shape of the CRS.
func (crs *CRS) Size() principal.Size {
	return crs.size
}

// Decomposition returns the decomposition parameters.
func (crs *CRS) Decomposition() Decomposition {
	return crs.decomposition
}

// Ranks returns the commitment ranks.
func (crs *CRS) Ranks() Ranks {
	return crs.ranks
}

// NumAggregs returns the number of aggregated constant constraints.
func (crs *CRS) NumAggregs() int {
	return crs.numAggregs
}

// NextNormBoundSq returns the squared norm bound of the folded relation.
func (crs *CRS) NextNormBoundSq() float64 {
	return crs.nextNormBoundSq
}

// Seed returns a copy of the public seed of the commitment matrices.
func (crs *CRS) Seed() []byte {
	return slices.Clone(crs.seed)
}

// Report returns the parameter report.
func (crs *CRS) Report() ParameterReport {
	return crs.report
}

// NumOutputVectors returns the number of vectors of the folded witness.
func (crs *CRS) NumOutputVectors() int {
	return 2 + num.DivCeil(outerWidth(crs.size.R, crs.ranks.K, crs.decomposition), crs.size.N)
}

// OutputSize returns the shape of the folded relation.
func (crs *CRS) OutputSize() principal.Size {
	return principal.Size{
		R:              crs.NumOutputVectors(),
		N:              crs.size.N,
		NormBoundSq:    crs.nextNormBoundSq,
		NumConstraints: crs.ranks.K + crs.ranks.K1 + crs.ranks.K2 + 3,
	}
}

// CheckInstance checks that x has the shape of the CRS.
func (crs *CRS) CheckInstance(x *principal.Instance) error {
	if x == nil || !x.Fits(crs.size) {
		return fmt.Errorf("%w: instance does not fit %v", principal.ErrMalformed, crs.size)
	}
	for i, c := range x.Constraints() {
		if c.Degree() != crs.ring.Degree() {
			return fmt.Errorf("%w: constraint %d has degree %d", principal.ErrMalformed, i, c.Degree())
		}
	}
	for i, c := range x.ConstantConstraints() {
		if c.Degree() != crs.ring.Degree() {
			return fmt.Errorf("%w: constant constraint %d has degree %d", principal.ErrMalformed, i, c.Degree())
		}
	}
	return nil
}

// CheckWitness checks that w has the shape of the CRS and respects its norm bound.
func (crs *CRS) CheckWitness(w *principal.Witness) error {
	if w == nil || !w.Fits(crs.size.R, crs.size.N) {
		return fmt.Errorf("%w: witness does not fit %v", principal.ErrMalformed, crs.size)
	}
	for i := range w.S {
		for k := range w.S[i] {
			if w.S[i][k].Degree() != crs.ring.Degree() {
				return fmt.Errorf("%w: s_%d[%d] has wrong degree", principal.ErrMalformed, i, k)
			}
		}
	}
	if norm := w.NormSq(crs.ring); float64(norm) > crs.size.NormBoundSq {
		return fmt.Errorf("%w: %d > %v", principal.ErrNormBound, norm, crs.size.NormBoundSq)
	}
	return nil
}

// IsWellformedInstance reports whether CheckInstance returns nil.
func (crs *CRS) IsWellformedInstance(x *principal.Instance) bool {
	return crs.CheckInstance(x) == nil
}

// IsWellformedWitness reports whether CheckWitness returns nil.
func (crs *CRS) IsWellformedWitness(w *principal.Witness) bool {
	return crs.CheckWitness(w) == nil
}

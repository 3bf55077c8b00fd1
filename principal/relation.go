package principal

import (
	"fmt"
	"math"

	"github.com/sp301415/ringo-labrador/csprng"
	"github.com/sp301415/ringo-labrador/polyring"
)

// maxWitnessTries bounds the rejection sampling of witnesses.
const maxWitnessTries = 1 << 10

// Relation is the principal relation over a fixed ring.
// Its index is the [Size] of the relation.
//
// Relation is not safe for concurrent use.
type Relation struct {
	ring    *polyring.Ring
	sampler *csprng.UniformSampler
}

// NewRelation creates a new Relation over ring,
// sampling test triples from a fresh random seed.
func NewRelation(ring *polyring.Ring) *Relation {
	return &Relation{
		ring:    ring,
		sampler: csprng.NewUniformSampler(),
	}
}

// NewRelationWithSeed creates a new Relation over ring,
// sampling test triples from seed.
func NewRelationWithSeed(ring *polyring.Ring, seed []byte) *Relation {
	return &Relation{
		ring:    ring,
		sampler: csprng.NewUniformSamplerWithSeed(seed),
	}
}

// Ring returns the ring of the relation.
func (rel *Relation) Ring() *polyring.Ring {
	return rel.ring
}

// CheckShape checks that x and w fit size, and that w is within the norm bound.
func (rel *Relation) CheckShape(size Size, x *Instance, w *Witness) error {
	if err := size.Validate(); err != nil {
		return err
	}
	if x == nil || !x.Fits(size) {
		return fmt.Errorf("%w: instance does not fit %v", ErrMalformed, size)
	}
	if w == nil || !w.Fits(size.R, size.N) {
		return fmt.Errorf("%w: witness does not fit %v", ErrMalformed, size)
	}
	for i := range w.S {
		for k := range w.S[i] {
			if w.S[i][k].Degree() != rel.ring.Degree() {
				return fmt.Errorf("%w: s_%d[%d] has wrong degree", ErrMalformed, i, k)
			}
		}
	}
	if norm := w.NormSq(rel.ring); float64(norm) > size.NormBoundSq {
		return fmt.Errorf("%w: %d > %v", ErrNormBound, norm, size.NormBoundSq)
	}
	return nil
}

// Check returns nil if w satisfies every constraint of x
// and respects the norm bound of size.
func (rel *Relation) Check(size Size, x *Instance, w *Witness) error {
	if err := rel.CheckShape(size, x, w); err != nil {
		return err
	}

	ips := rel.ring.InnerProducts(w.S)
	for i, c := range x.constraints {
		if !c.IsSatisfied(rel.ring, w.S, ips) {
			return fmt.Errorf("%w: constraint %d", ErrNotSatisfied, i)
		}
	}
	for i, c := range x.constantConstraints {
		if !c.IsSatisfied(rel.ring, w.S, ips) {
			return fmt.Errorf("%w: constant constraint %d", ErrNotSatisfied, i)
		}
	}
	return nil
}

// IsSatisfied reports whether Check returns nil.
func (rel *Relation) IsSatisfied(size Size, x *Instance, w *Witness) bool {
	return rel.Check(size, x, w) == nil
}

// SampleWitness samples r vectors of length n with discrete Gaussian coefficients
// of variance normBoundSq / (2rnd), rejecting until the norm bound holds.
func (rel *Relation) SampleWitness(size Size) (*Witness, error) {
	if err := size.Validate(); err != nil {
		return nil, err
	}

	d := rel.ring.Degree()
	stdDev := math.Sqrt(size.NormBoundSq / float64(2*size.R*size.N*d))
	gs := csprng.NewGaussianSampler(rel.sampler, stdDev)

	w := &Witness{S: rel.ring.NewMatrix(size.R, size.N)}
	for try := 0; try < maxWitnessTries; try++ {
		for i := range w.S {
			for k := range w.S[i] {
				rel.ring.SampleGaussianAssign(gs, w.S[i][k])
			}
		}
		if float64(w.NormSq(rel.ring)) <= size.NormBoundSq {
			return w, nil
		}
	}
	return nil, fmt.Errorf("%w: rejection sampling did not terminate", ErrNormBound)
}

func (rel *Relation) sampleSymmetric(r int) polyring.SymmetricMatrix[polyring.Poly] {
	a := polyring.NewSymmetricMatrix[polyring.Poly](r)
	for idx := range a.Packed() {
		a.Packed()[idx] = rel.ring.SampleUniform(rel.sampler)
	}
	return a
}

// SampleSatisfied samples a random instance of the given size
// together with a witness satisfying it.
// Constraints have uniform coefficients, and right hand sides are
// computed from the witness.
func (rel *Relation) SampleSatisfied(size Size) (Size, *Instance, *Witness, error) {
	w, err := rel.SampleWitness(size)
	if err != nil {
		return Size{}, nil, nil, err
	}
	ips := rel.ring.InnerProducts(w.S)

	constraints := make([]*QuadDotProdFunction, size.NumConstraints)
	for i := range constraints {
		phi := rel.ring.SampleUniformMatrix(rel.sampler, size.R, size.N)
		c, err := NewQuadDotProdFunctionSymmetric(rel.sampleSymmetric(size.R), phi, rel.ring.NewPoly())
		if err != nil {
			return Size{}, nil, nil, err
		}
		c.b = c.Evaluate(rel.ring, w.S, ips)
		constraints[i] = c
	}

	constantConstraints := make([]*ConstantQuadDotProdFunction, size.NumConstantConstraints)
	for i := range constantConstraints {
		phi := rel.ring.SampleUniformMatrix(rel.sampler, size.R, size.N)
		c, err := NewConstantQuadDotProdFunctionSymmetric(rel.sampleSymmetric(size.R), phi, 0)
		if err != nil {
			return Size{}, nil, nil, err
		}
		c.b = c.Evaluate(rel.ring, w.S, ips)
		constantConstraints[i] = c
	}

	x, err := NewInstance(size.R, size.N, constraints, constantConstraints)
	if err != nil {
		return Size{}, nil, nil, err
	}
	return size, x, w, nil
}

// SampleUnsatisfied samples a satisfied triple as [Relation.SampleSatisfied],
// then shifts the right hand side of exactly one constraint by one.
// The first ring constraint is chosen if there is one.
func (rel *Relation) SampleUnsatisfied(size Size) (Size, *Instance, *Witness, error) {
	if size.NumConstraints == 0 && size.NumConstantConstraints == 0 {
		return Size{}, nil, nil, fmt.Errorf("%w: no constraint to violate", ErrMalformed)
	}

	size, x, w, err := rel.SampleSatisfied(size)
	if err != nil {
		return Size{}, nil, nil, err
	}

	one := rel.ring.NewConstant(1)
	if len(x.constraints) > 0 {
		c := *x.constraints[0]
		c.b = rel.ring.Add(c.b, one)
		x.constraints[0] = &c
	} else {
		c := *x.constantConstraints[0]
		c.b = (c.b + 1) % rel.ring.Modulus()
		x.constantConstraints[0] = &c
	}
	return size, x, w, nil
}

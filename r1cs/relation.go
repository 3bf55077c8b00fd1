package r1cs

import (
	"fmt"

	"github.com/sp301415/ringo-labrador/csprng"
	"github.com/sp301415/ringo-labrador/polyring"
	"github.com/sp301415/ringo-labrador/principal"
)

// Relation is the rank-1 constraint system relation over a fixed ring.
// Its index is the [Size] of the system.
//
// Relation is not safe for concurrent use.
type Relation struct {
	ring    *polyring.Ring
	sampler *csprng.UniformSampler
	wires   *principal.Relation
}

// NewRelation creates a new Relation over ring,
// sampling test triples from a fresh random seed.
func NewRelation(ring *polyring.Ring) *Relation {
	return &Relation{
		ring:    ring,
		sampler: csprng.NewUniformSampler(),
		wires:   principal.NewRelation(ring),
	}
}

// NewRelationWithSeed creates a new Relation over ring,
// sampling test triples from seed.
func NewRelationWithSeed(ring *polyring.Ring, seed []byte) *Relation {
	return &Relation{
		ring:    ring,
		sampler: csprng.NewUniformSamplerWithSeed(seed),
		wires:   principal.NewRelationWithSeed(ring, seed),
	}
}

// Check returns nil if w satisfies every constraint of x
// and respects the norm bound of size.
func (rel *Relation) Check(size Size, x *Instance, w *Witness) error {
	if err := size.Validate(); err != nil {
		return err
	}
	if x == nil || !x.Fits(size) {
		return fmt.Errorf("%w: instance does not fit %v", ErrMalformed, size)
	}
	if w == nil || len(w.W) != size.NumWires {
		return fmt.Errorf("%w: witness does not fit %v", ErrMalformed, size)
	}
	for i := range w.W {
		if w.W[i].Degree() != rel.ring.Degree() {
			return fmt.Errorf("%w: wire %d has wrong degree", ErrMalformed, i)
		}
	}
	if !w.W[One].Equal(rel.ring.NewConstant(1)) {
		return fmt.Errorf("%w: constant wire is not one", ErrNotSatisfied)
	}
	if norm := w.NormSq(rel.ring); float64(norm) > size.NormBoundSq {
		return fmt.Errorf("%w: %d > %v", ErrNormBound, norm, size.NormBoundSq)
	}

	for k := range x.a {
		lhs := rel.ring.Mul(rel.ring.InnerProduct(x.a[k], w.W), rel.ring.InnerProduct(x.b[k], w.W))
		if !lhs.Equal(rel.ring.InnerProduct(x.c[k], w.W)) {
			return fmt.Errorf("%w: constraint %d", ErrNotSatisfied, k)
		}
	}
	return nil
}

// IsSatisfied reports whether Check returns nil.
func (rel *Relation) IsSatisfied(size Size, x *Instance, w *Witness) bool {
	return rel.Check(size, x, w) == nil
}

// SampleWitness samples a short assignment with the constant wire set to one.
func (rel *Relation) SampleWitness(size Size) (*Witness, error) {
	if err := size.Validate(); err != nil {
		return nil, err
	}

	w := &Witness{W: rel.ring.NewVector(size.NumWires)}
	w.W[One] = rel.ring.NewConstant(1)
	if size.NumWires == 1 || size.NormBoundSq < 2 {
		return w, nil
	}

	// Leave room for the constant wire.
	s, err := rel.wires.SampleWitness(principal.Size{R: size.NumWires - 1, N: 1, NormBoundSq: size.NormBoundSq - 1})
	if err != nil {
		return nil, err
	}
	for i := range s.S {
		w.W[i+1] = s.S[i][0]
	}
	return w, nil
}

// SampleSatisfied samples a random system of the given size
// together with an assignment satisfying it.
// Rows a and b are uniform. Row c is uniform except on the constant wire,
// which is chosen to satisfy the constraint.
func (rel *Relation) SampleSatisfied(size Size) (Size, *Instance, *Witness, error) {
	w, err := rel.SampleWitness(size)
	if err != nil {
		return Size{}, nil, nil, err
	}

	m, k := size.NumWires, size.NumConstraints
	a := rel.ring.SampleUniformMatrix(rel.sampler, k, m)
	b := rel.ring.SampleUniformMatrix(rel.sampler, k, m)
	c := rel.ring.SampleUniformMatrix(rel.sampler, k, m)

	for i := 0; i < k; i++ {
		target := rel.ring.Mul(rel.ring.InnerProduct(a[i], w.W), rel.ring.InnerProduct(b[i], w.W))
		c[i][One].Clear()
		rel.ring.SubAssign(target, rel.ring.InnerProduct(c[i], w.W), c[i][One])
	}

	x, err := NewInstance(m, a, b, c)
	if err != nil {
		return Size{}, nil, nil, err
	}
	return size, x, w, nil
}

// SampleUnsatisfied samples a satisfied triple as [Relation.SampleSatisfied],
// and replaces its last constraint by 0 * 1 = 1.
func (rel *Relation) SampleUnsatisfied(size Size) (Size, *Instance, *Witness, error) {
	if size.NumConstraints == 0 {
		return Size{}, nil, nil, fmt.Errorf("%w: no constraint to violate", ErrMalformed)
	}

	size, x, w, err := rel.SampleSatisfied(size)
	if err != nil {
		return Size{}, nil, nil, err
	}

	last := size.NumConstraints - 1
	x.a[last] = rel.ring.NewVector(size.NumWires)
	x.b[last] = rel.ring.NewVector(size.NumWires)
	x.c[last] = rel.ring.NewVector(size.NumWires)
	x.b[last][One] = rel.ring.NewConstant(1)
	x.c[last][One] = rel.ring.NewConstant(1)

	return size, x, w, nil
}

// Package r1cs implements rank-1 constraint systems over a polynomial ring,
// and their reduction to the principal relation.
package r1cs

import (
	"errors"
	"fmt"

	"github.com/sp301415/ringo-labrador/polyring"
)

var (
	// ErrMalformed is returned when an instance or witness has an inconsistent shape.
	ErrMalformed = errors.New("malformed constraint system")
	// ErrNotSatisfied is returned when a witness does not satisfy a constraint.
	ErrNotSatisfied = errors.New("constraint not satisfied")
	// ErrNormBound is returned when a witness exceeds the norm bound.
	ErrNormBound = errors.New("witness exceeds norm bound")
)

// Size is the shape of a constraint system.
// It is also the index of the relation.
type Size struct {
	// NumWires is the number of wires, including the constant wire.
	NumWires int
	// NumConstraints is the number of constraints.
	NumConstraints int
	// NormBoundSq bounds the squared l2 norm of the assignment.
	NormBoundSq float64
}

// Validate checks that s describes a nonempty system.
func (s Size) Validate() error {
	switch {
	case s.NumWires < 1:
		return fmt.Errorf("%w: %d wires", ErrMalformed, s.NumWires)
	case s.NumConstraints < 0:
		return fmt.Errorf("%w: %d constraints", ErrMalformed, s.NumConstraints)
	case !(s.NormBoundSq >= 1):
		// The constant wire alone has norm 1.
		return fmt.Errorf("%w: norm bound %v", ErrMalformed, s.NormBoundSq)
	}
	return nil
}

// String implements [fmt.Stringer].
func (s Size) String() string {
	return fmt.Sprintf("Size{wires=%d, constraints=%d, beta^2=%.1f}", s.NumWires, s.NumConstraints, s.NormBoundSq)
}

// Instance is a constraint system
//
//	<a_k, w> * <b_k, w> = <c_k, w>
//
// with dense rows a_k, b_k, c_k over the ring.
type Instance struct {
	numWires int

	a, b, c [][]polyring.Poly
}

// NewInstance creates a new Instance from dense rows.
// Every row must have length numWires.
func NewInstance(numWires int, a, b, c [][]polyring.Poly) (*Instance, error) {
	if numWires < 1 {
		return nil, fmt.Errorf("%w: %d wires", ErrMalformed, numWires)
	}
	if len(a) != len(b) || len(a) != len(c) {
		return nil, fmt.Errorf("%w: %d, %d, %d rows", ErrMalformed, len(a), len(b), len(c))
	}
	for k := range a {
		if len(a[k]) != numWires || len(b[k]) != numWires || len(c[k]) != numWires {
			return nil, fmt.Errorf("%w: row %d has wrong length", ErrMalformed, k)
		}
	}
	return &Instance{numWires: numWires, a: a, b: b, c: c}, nil
}

// NumWires returns the number of wires.
func (x *Instance) NumWires() int {
	return x.numWires
}

// NumConstraints returns the number of constraints.
func (x *Instance) NumConstraints() int {
	return len(x.a)
}

// Row returns the k-th constraint.
func (x *Instance) Row(k int) (a, b, c []polyring.Poly) {
	return x.a[k], x.b[k], x.c[k]
}

// Fits reports whether x has the shape described by size.
func (x *Instance) Fits(size Size) bool {
	return x.numWires == size.NumWires && len(x.a) == size.NumConstraints
}

// Witness is an assignment of every wire.
// W[0] is the constant wire, and must be one.
type Witness struct {
	W []polyring.Poly
}

// NormSq returns the squared l2 norm of the assignment.
func (w *Witness) NormSq(ring *polyring.Ring) uint64 {
	return ring.VectorNormSq(w.W)
}

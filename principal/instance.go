package principal

import (
	"fmt"

	"github.com/sp301415/ringo-labrador/polyring"
)

// Size is the shape of a principal relation.
// It is also the index of the relation.
type Size struct {
	// R is the number of witness vectors.
	R int
	// N is the length of each witness vector.
	N int
	// NormBoundSq is the bound on the squared l2 norm of the whole witness.
	NormBoundSq float64

	NumConstraints         int
	NumConstantConstraints int
}

// Validate checks that s describes a nonempty relation.
func (s Size) Validate() error {
	switch {
	case s.R < 1:
		return fmt.Errorf("%w: r = %d", ErrMalformed, s.R)
	case s.N < 1:
		return fmt.Errorf("%w: n = %d", ErrMalformed, s.N)
	case !(s.NormBoundSq > 0):
		return fmt.Errorf("%w: norm bound %v", ErrMalformed, s.NormBoundSq)
	case s.NumConstraints < 0 || s.NumConstantConstraints < 0:
		return fmt.Errorf("%w: negative constraint count", ErrMalformed)
	}
	return nil
}

// String implements [fmt.Stringer].
func (s Size) String() string {
	return fmt.Sprintf("Size{r=%d, n=%d, beta^2=%.1f, constraints=%d, constant=%d}",
		s.R, s.N, s.NormBoundSq, s.NumConstraints, s.NumConstantConstraints)
}

// Instance is an instance of the principal relation.
type Instance struct {
	r, n int

	constraints         []*QuadDotProdFunction
	constantConstraints []*ConstantQuadDotProdFunction
}

// NewInstance creates a new Instance over r witness vectors of length n.
// Every constraint must have the same shape.
func NewInstance(r, n int, constraints []*QuadDotProdFunction, constantConstraints []*ConstantQuadDotProdFunction) (*Instance, error) {
	if r < 1 || n < 1 {
		return nil, fmt.Errorf("%w: r = %d, n = %d", ErrMalformed, r, n)
	}

	for i, c := range constraints {
		if c == nil || c.r != r || c.n != n {
			return nil, fmt.Errorf("%w: constraint %d has wrong shape", ErrMalformed, i)
		}
	}
	for i, c := range constantConstraints {
		if c == nil || c.r != r || c.n != n {
			return nil, fmt.Errorf("%w: constant constraint %d has wrong shape", ErrMalformed, i)
		}
	}

	return &Instance{
		r:                   r,
		n:                   n,
		constraints:         constraints,
		constantConstraints: constantConstraints,
	}, nil
}

// R returns the number of witness vectors.
func (x *Instance) R() int {
	return x.r
}

// N returns the length of witness vectors.
func (x *Instance) N() int {
	return x.n
}

// Constraints returns the ring constraints.
func (x *Instance) Constraints() []*QuadDotProdFunction {
	return x.constraints
}

// ConstantConstraints returns the constant constraints.
func (x *Instance) ConstantConstraints() []*ConstantQuadDotProdFunction {
	return x.constantConstraints
}

// Fits reports whether x has the shape described by size.
func (x *Instance) Fits(size Size) bool {
	return x.r == size.R && x.n == size.N &&
		len(x.constraints) == size.NumConstraints &&
		len(x.constantConstraints) == size.NumConstantConstraints
}

// Witness is a witness of the principal relation:
// r vectors of length n.
type Witness struct {
	S [][]polyring.Poly
}

// NewWitness creates a new Witness, checking that all vectors have the same length.
func NewWitness(s [][]polyring.Poly) (*Witness, error) {
	if len(s) == 0 || len(s[0]) == 0 {
		return nil, fmt.Errorf("%w: empty witness", ErrMalformed)
	}
	for i := range s {
		if len(s[i]) != len(s[0]) {
			return nil, fmt.Errorf("%w: s_%d has length %d, expected %d", ErrMalformed, i, len(s[i]), len(s[0]))
		}
	}
	return &Witness{S: s}, nil
}

// R returns the number of vectors.
func (w *Witness) R() int {
	return len(w.S)
}

// N returns the length of vectors.
func (w *Witness) N() int {
	if len(w.S) == 0 {
		return 0
	}
	return len(w.S[0])
}

// Fits reports whether w has r vectors of length n.
func (w *Witness) Fits(r, n int) bool {
	if len(w.S) != r {
		return false
	}
	for i := range w.S {
		if len(w.S[i]) != n {
			return false
		}
	}
	return true
}

// NormSq returns the squared l2 norm of the witness over all coordinates.
func (w *Witness) NormSq(ring *polyring.Ring) uint64 {
	var norm uint64
	for i := range w.S {
		v := ring.VectorNormSq(w.S[i])
		if norm+v < norm {
			return ^uint64(0)
		}
		norm += v
	}
	return norm
}

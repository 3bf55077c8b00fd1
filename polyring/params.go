package polyring

import (
	"errors"
	"fmt"
	"math"
	"math/big"
)

// ErrInvalidParameters is returned when ring parameters are invalid.
var ErrInvalidParameters = errors.New("invalid ring parameters")

// maxModulus bounds the modulus so that the sum of two residues fits in a uint64.
const maxModulus = 1 << 62

// ParametersLiteral is a structure for ring parameters.
type ParametersLiteral struct {
	// Degree is the degree of the cyclotomic polynomial X^d+1.
	// Denoted as d in the paper.
	Degree int
	// Modulus is the prime modulus of the ring.
	// Denoted as q in the paper.
	Modulus uint64
}

// Compile transforms ParametersLiteral to a read-only Ring.
// If there is any invalid parameter in the literal, it panics.
// Default parameters are guaranteed to be compiled without panics.
func (p ParametersLiteral) Compile() *Ring {
	r, err := NewRing(p.Degree, p.Modulus)
	if err != nil {
		panic(err)
	}
	return r
}

// NewRing creates a new Ring Z_q[X]/(X^d+1).
// d must be a power of two and q must be an odd prime below 2^62.
//
// Multiplication uses the number theoretic transform when d >= 16 and q = 1 mod 2d,
// and schoolbook negacyclic convolution otherwise.
func NewRing(degree int, modulus uint64) (*Ring, error) {
	switch {
	case degree < 1 || degree&(degree-1) != 0:
		return nil, fmt.Errorf("%w: degree %d is not a power of two", ErrInvalidParameters, degree)
	case modulus < 3 || modulus >= maxModulus:
		return nil, fmt.Errorf("%w: modulus %d out of range", ErrInvalidParameters, modulus)
	case !big.NewInt(0).SetUint64(modulus).ProbablyPrime(20):
		return nil, fmt.Errorf("%w: modulus %d is not a prime", ErrInvalidParameters, modulus)
	}

	var mul Multiplier = newSchoolbookMultiplier(degree, modulus)
	if isNTTFriendly(degree, modulus) {
		if nttMul, err := newNTTMultiplier(degree, modulus); err == nil {
			mul = nttMul
		}
	}

	return &Ring{
		degree:     degree,
		modulus:    modulus,
		logModulus: math.Log2(float64(modulus)),
		multiplier: mul,
		buf:        NewPoly(degree),
	}, nil
}

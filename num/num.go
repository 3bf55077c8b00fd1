// Package num implements various utility functions regarding numeric types.
package num

import (
	"math"
	"math/bits"

	"golang.org/x/exp/constraints"
)

// ModInverse returns the modular inverse of x modulo m.
// Output is always in [0, m).
// Panics if x and m are not coprime, or if m >= 2^63.
func ModInverse(x, m uint64) uint64 {
	if m > math.MaxInt64 {
		panic("modulus too large")
	}

	a, b := int64(x%m), int64(m)
	u, v := int64(1), int64(0)
	for b != 0 {
		q := a / b
		a, b = b, a-q*b
		u, v = v, u-q*v
	}

	if a != 1 {
		panic("modular inverse does not exist")
	}

	return Reduce(u, m)
}

// ModExp returns x^y mod q.
func ModExp(x, y, q uint64) uint64 {
	r := uint64(1) % q
	x %= q
	for y > 0 {
		if y&1 == 1 {
			r = MulMod(r, x, q)
		}
		x = MulMod(x, x, q)
		y >>= 1
	}
	return r
}

// MulMod returns x * y mod q.
func MulMod(x, y, q uint64) uint64 {
	hi, lo := bits.Mul64(x, y)
	return bits.Rem64(hi, lo, q)
}

// AddMod returns x + y mod q.
// Assumes x, y < q < 2^63.
func AddMod(x, y, q uint64) uint64 {
	z := x + y
	if z >= q {
		z -= q
	}
	return z
}

// SubMod returns x - y mod q.
// Assumes x, y < q.
func SubMod(x, y, q uint64) uint64 {
	if x >= y {
		return x - y
	}
	return x + q - y
}

// NegMod returns -x mod q.
// Assumes x < q.
func NegMod(x, q uint64) uint64 {
	if x == 0 {
		return 0
	}
	return q - x
}

// Reduce maps a signed integer to its representative in [0, q).
func Reduce(x int64, q uint64) uint64 {
	if x >= 0 {
		return uint64(x) % q
	}
	r := uint64(-(x + 1)) % q
	return q - 1 - r
}

// Balanced returns the representative of x mod q in (-q/2, q/2].
func Balanced(x, q uint64) int64 {
	if x > q>>1 {
		return int64(x) - int64(q)
	}
	return int64(x)
}

// RoundToOdd rounds x to an odd integer:
// floor(x) if it is odd, ceil(x) otherwise.
// An even integral x is rounded up to x+1.
func RoundToOdd(x float64) int {
	f := int(math.Floor(x))
	if f%2 != 0 {
		return f
	}
	c := int(math.Ceil(x))
	if c == f {
		return f + 1
	}
	return c
}

// DivCeil returns ceil(a / b) for non-negative a and positive b.
func DivCeil[T constraints.Integer](a, b T) T {
	return (a + b - 1) / b
}

// Abs returns the absolute value of x.
func Abs[T constraints.Signed | constraints.Float](x T) T {
	if x < 0 {
		return -x
	}
	return x
}

package polyring

import "github.com/sp301415/ringo-labrador/num"

// ChallengeSet is a distribution of short polynomials
// sampled deterministically from random bytes.
type ChallengeSet interface {
	// ByteSize returns the number of random bytes consumed per polynomial of degree d.
	ByteSize(d int) int
	// FromRandomBytesAssign maps ByteSize(d) random bytes to a challenge.
	FromRandomBytesAssign(r *Ring, buf []byte, pOut Poly)
	// VarianceSum returns the sum of the coefficient variances of a challenge of degree d.
	VarianceSum(d int) float64
}

// WeightedTernary is the challenge set with coefficients in {-1, 0, 1},
// where Pr[0] = 1/2 and Pr[1] = Pr[-1] = 1/4.
// It is used for the Johnson-Lindenstrauss projection.
type WeightedTernary struct{}

// ByteSize implements [ChallengeSet].
func (WeightedTernary) ByteSize(d int) int {
	return d
}

// FromRandomBytesAssign implements [ChallengeSet].
func (WeightedTernary) FromRandomBytesAssign(r *Ring, buf []byte, pOut Poly) {
	for i := 0; i < r.degree; i++ {
		switch buf[i] & 0b11 {
		case 1:
			pOut.Coeffs[i] = 1
		case 2:
			pOut.Coeffs[i] = r.modulus - 1
		default:
			pOut.Coeffs[i] = 0
		}
	}
}

// VarianceSum implements [ChallengeSet].
func (WeightedTernary) VarianceSum(d int) float64 {
	return float64(d) / 2
}

const (
	foldingZeros = 23
	foldingOnes  = 31
	foldingTwos  = 10

	// FoldingOperatorNormThreshold is the operator norm bound T of folding challenges.
	FoldingOperatorNormThreshold = 15
)

// FoldingChallenges is the challenge set used to fold witness vectors.
// Each coefficient is 0 with probability 23/64, ±1 with probability 31/64
// and ±2 with probability 10/64, so that a degree 64 challenge has
// on average 23 zeros, 31 ±1 and 10 ±2.
type FoldingChallenges struct{}

// ByteSize implements [ChallengeSet].
func (FoldingChallenges) ByteSize(d int) int {
	return d
}

// FromRandomBytesAssign implements [ChallengeSet].
func (FoldingChallenges) FromRandomBytesAssign(r *Ring, buf []byte, pOut Poly) {
	for i := 0; i < r.degree; i++ {
		x := buf[i] & 0b111111
		var v int64
		switch {
		case x < foldingZeros:
			v = 0
		case x < foldingZeros+foldingOnes:
			v = 1
		default:
			v = 2
		}
		if buf[i]&0b1000000 != 0 {
			v = -v
		}
		pOut.Coeffs[i] = num.Reduce(v, r.modulus)
	}
}

// VarianceSum implements [ChallengeSet].
func (FoldingChallenges) VarianceSum(d int) float64 {
	return float64(d) * (foldingOnes + 4*foldingTwos) / 64
}

// OperatorNormThreshold returns the operator norm bound T.
// No rejection sampling is performed against it.
func (FoldingChallenges) OperatorNormThreshold() float64 {
	return FoldingOperatorNormThreshold
}

package labrador

import (
	"math"

	"github.com/sp301415/ringo-labrador/num"
	"github.com/sp301415/ringo-labrador/polyring"
)

const (
	// projectionCount is the number of Johnson-Lindenstrauss projections.
	projectionCount = 256
	// projectionSlack bounds the squared norm of the projection by projectionSlack * beta^2.
	projectionSlack = 128
	// soundnessParameter is the bit security of the aggregation.
	soundnessParameter = 128

	minBase   = 3
	minDigits = 1
)

// SoundnessCeiling returns the largest admissible norm bound sqrt(30/128) * q / 125.
func SoundnessCeiling(q uint64) float64 {
	return math.Sqrt(30.0/128.0) * float64(q) / 125
}

// NumAggregs returns ceil(128 / log2(q)).
func NumAggregs(q uint64) int {
	return int(math.Ceil(soundnessParameter / math.Log2(float64(q))))
}

// Decomposition holds the decomposition bases and lengths.
type Decomposition struct {
	// StdDev is the expected standard deviation of witness coefficients.
	// Denoted as s in the paper.
	StdDev float64

	// Base is the base of the decomposition of the folded witness.
	// Denoted as b in the paper.
	Base uint64

	// T1 is the number of digits of inner commitments and of h.
	// Denoted as t_1 in the paper.
	T1 int
	// B1 is the base of inner commitments and of h.
	// Denoted as b_1 in the paper.
	B1 uint64

	// T2 is the number of digits of g.
	// Denoted as t_2 in the paper.
	T2 int
	// B2 is the base of g.
	// Denoted as b_2 in the paper.
	B2 uint64

	// Clamped lists the names of parameters raised to their minimum.
	Clamped []string
}

func clampBase(x float64, name string, clamped *[]string) uint64 {
	b := num.RoundToOdd(x)
	if b < minBase {
		*clamped = append(*clamped, name)
		return minBase
	}
	return uint64(b)
}

func clampDigits(x float64, name string, clamped *[]string) int {
	t := int(math.Round(x))
	if t < minDigits {
		*clamped = append(*clamped, name)
		return minDigits
	}
	return t
}

// DeriveDecomposition derives the decomposition parameters
// of a relation of r vectors of length n over a ring of degree d and modulus q.
func DeriveDecomposition(r, n, d int, q uint64, normBoundSq float64) Decomposition {
	var dc Decomposition

	rnd := float64(r * n * d)
	beta := math.Sqrt(normBoundSq)
	tau := polyring.FoldingChallenges{}.VarianceSum(d)

	dc.StdDev = math.Sqrt(beta / rnd)
	dc.Base = clampBase(math.Sqrt(dc.StdDev*math.Sqrt(12*float64(r)*tau)), "b", &dc.Clamped)
	logBase := math.Log2(float64(dc.Base))

	logQ := math.Log2(float64(q))
	dc.T1 = clampDigits(logQ/logBase, "t1", &dc.Clamped)
	dc.B1 = clampBase(math.Pow(float64(q), 1/float64(dc.T1)), "b1", &dc.Clamped)

	garbage := math.Sqrt(24 * float64(n*d))
	dc.T2 = clampDigits(math.Log2(garbage*normBoundSq/rnd)/logBase, "t2", &dc.Clamped)
	dc.B2 = clampBase(math.Pow(garbage*beta/rnd, 1/float64(dc.T2)), "b2", &dc.Clamped)

	return dc
}

// NextNormBoundSq returns the squared norm bound of the folded relation
// for inner commitment rank k:
//
//	(2/b^2) * beta^2 * tau + gamma_1^2 * gamma_2^2
//
// where gamma_1 and gamma_2 bound the decomposed commitment openings.
// It is not monotonic in general.
func (dc Decomposition) NextNormBoundSq(r, n, d, k int, normBoundSq float64) float64 {
	tau := polyring.FoldingChallenges{}.VarianceSum(d)
	pairs := float64(num.DivCeil(r*(r+1), 2) * d)

	b1Var := float64(dc.B1*dc.B1) * float64(dc.T1) / 12
	b2Var := float64(dc.B2*dc.B2) * float64(dc.T2) / 12

	gamma1Sq := b1Var*float64(r*k*d) + b2Var*pairs
	gamma2Sq := b1Var * pairs

	return 2/float64(dc.Base*dc.Base)*normBoundSq*tau + gamma1Sq*gamma2Sq
}

// NormBound1 returns the length bound of the inner commitment problem
//
//	max(8T(b+1)beta', 2(b+1)beta' + 4T sqrt(128/30) beta)
//
// where T is the operator norm threshold of folding challenges
// and beta' = sqrt(nextNormBoundSq).
func (dc Decomposition) NormBound1(nextNormBoundSq, normBoundSq float64) float64 {
	opNorm := polyring.FoldingChallenges{}.OperatorNormThreshold()
	betaNext := math.Sqrt(nextNormBoundSq)
	bPlus1 := float64(dc.Base + 1)

	return math.Max(
		8*opNorm*bPlus1*betaNext,
		2*bPlus1*betaNext+4*opNorm*math.Sqrt(128.0/30.0)*math.Sqrt(normBoundSq),
	)
}

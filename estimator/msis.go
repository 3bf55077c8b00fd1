package estimator

import (
	"context"
	"fmt"
)

// MSIS is the module variant of SIS over R_q = Z_q[X]/(X^D+1):
// find a short nonzero s in R_q^M with A*s = 0 for uniform A in R_q^{N x M}.
type MSIS struct {
	N           int
	D           int
	Q           uint64
	LengthBound float64
	M           int
	Norm        Norm
}

// String implements [fmt.Stringer].
func (m MSIS) String() string {
	return fmt.Sprintf("MSIS_{n=%d, d=%d, q=%d, length_bound=%g, m=%d, norm=%v}", m.N, m.D, m.Q, m.LengthBound, m.M, m.Norm)
}

// WithN returns a copy of m with N replaced.
func (m MSIS) WithN(n int) MSIS {
	m.N = n
	return m
}

// WithLengthBound returns a copy of m with LengthBound replaced.
func (m MSIS) WithLengthBound(bound float64) MSIS {
	m.LengthBound = bound
	return m
}

// ToSIS flattens m to SIS_{N*D, Q, LengthBound, M*D}.
func (m MSIS) ToSIS() SIS {
	return SIS{
		N:           m.N * m.D,
		Q:           m.Q,
		LengthBound: m.LengthBound,
		M:           m.M * m.D,
		Norm:        m.Norm,
	}
}

// SecurityLevel returns the estimated bit security of m, through its SIS flattening.
func (m MSIS) SecurityLevel(ctx context.Context, est Estimator) (float64, error) {
	return m.ToSIS().SecurityLevel(ctx, est)
}

// FindOptimalN returns the smallest N in [1, M] such that m.WithN(N) is 2^lambda-hard.
func (m MSIS) FindOptimalN(ctx context.Context, est Estimator, lambda float64) (int, error) {
	return binarySearchRank(ctx, m.M, lambda, func(n int) (float64, error) {
		return m.WithN(n).SecurityLevel(ctx, est)
	})
}

// FindOptimalNDynamic returns the smallest N among 1 and the powers of two below M
// such that m.WithN(N).WithLengthBound(bound(N)) is 2^lambda-hard.
// bound need not be monotonic, so candidates are tried in increasing order.
func (m MSIS) FindOptimalNDynamic(ctx context.Context, est Estimator, bound func(int) float64, lambda float64) (int, error) {
	for n := 1; n < m.M || n == 1; n *= 2 {
		if err := ctx.Err(); err != nil {
			return 0, err
		}

		lambdaN, err := m.WithN(n).WithLengthBound(bound(n)).SecurityLevel(ctx, est)
		if err != nil {
			return 0, err
		}
		if lambdaN >= lambda {
			return n, nil
		}
	}
	return 0, fmt.Errorf("%w: %v", ErrNoSecureRank, m)
}

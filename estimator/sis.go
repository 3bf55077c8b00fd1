package estimator

import (
	"context"
	"errors"
	"fmt"
)

// ErrNoSecureRank is returned when no candidate rank meets the security target.
var ErrNoSecureRank = errors.New("no rank meets the security target")

// Estimator estimates the hardness of SIS instances.
type Estimator interface {
	// SecurityLevel returns lambda such that s is 2^lambda-hard.
	SecurityLevel(ctx context.Context, s SIS) (float64, error)
}

// SIS is the problem of finding a nonzero x in Z^M with A*x = 0 mod Q
// and ||x|| <= LengthBound, for uniform A in Z_Q^{N x M}.
type SIS struct {
	N           int
	Q           uint64
	LengthBound float64
	M           int
	Norm        Norm
}

// String implements [fmt.Stringer].
func (s SIS) String() string {
	return fmt.Sprintf("SIS_{n=%d, q=%d, length_bound=%g, m=%d, norm=%v}", s.N, s.Q, s.LengthBound, s.M, s.Norm)
}

// WithN returns a copy of s with N replaced.
func (s SIS) WithN(n int) SIS {
	s.N = n
	return s
}

// SecurityLevel returns the estimated bit security of s.
func (s SIS) SecurityLevel(ctx context.Context, est Estimator) (float64, error) {
	lambda, err := est.SecurityLevel(ctx, s)
	if err != nil {
		return 0, fmt.Errorf("estimating %v: %w", s, err)
	}
	return lambda, nil
}

// FindOptimalN returns the smallest N in [1, M] such that s.WithN(N) is 2^lambda-hard.
// It assumes security is monotonic in N.
func (s SIS) FindOptimalN(ctx context.Context, est Estimator, lambda float64) (int, error) {
	return binarySearchRank(ctx, s.M, lambda, func(n int) (float64, error) {
		return s.WithN(n).SecurityLevel(ctx, est)
	})
}

func binarySearchRank(ctx context.Context, hi int, lambda float64, securityLevel func(int) (float64, error)) (int, error) {
	lambdaHi, err := securityLevel(hi)
	if err != nil {
		return 0, err
	}
	if lambdaHi < lambda {
		return 0, fmt.Errorf("%w: %.1f bits at rank %d, target %.1f", ErrNoSecureRank, lambdaHi, hi, lambda)
	}

	lo := 1
	for hi > lo {
		if err := ctx.Err(); err != nil {
			return 0, err
		}

		mid := lo + (hi-lo)/2
		lambdaMid, err := securityLevel(mid)
		if err != nil {
			return 0, err
		}
		if lambdaMid >= lambda {
			hi = mid
		} else {
			lo = mid + 1
		}
	}

	return hi, nil
}

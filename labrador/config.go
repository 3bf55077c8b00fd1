package labrador

import (
	"context"
	"fmt"

	"github.com/sp301415/ringo-labrador/estimator"
	"github.com/sp301415/ringo-labrador/transcript"
)

// DefaultSecurityTarget is the default bit security of the commitments.
const DefaultSecurityTarget = 128

// Config configures [Setup].
// The zero value is valid.
type Config struct {
	// Seed is the public seed of the commitment matrices.
	// If nil, a fresh random seed is used.
	Seed []byte
	// Ranks selects the commitment ranks.
	// If nil, DefaultRanks is used.
	Ranks RankPolicy
	// Estimator estimates the hardness of the commitments.
	// If nil, security is not estimated.
	Estimator estimator.Estimator
	// SecurityTarget is the target bit security.
	// If zero, DefaultSecurityTarget is used.
	SecurityTarget float64
	// Sponge is the hash used by transcripts.
	// If nil, transcript.NewBlake2bSponge is used.
	Sponge transcript.SpongeFactory
}

func (cfg Config) securityTarget() float64 {
	if cfg.SecurityTarget == 0 {
		return DefaultSecurityTarget
	}
	return cfg.SecurityTarget
}

func (cfg Config) ranks() RankPolicy {
	if cfg.Ranks == nil {
		return DefaultRanks
	}
	return cfg.Ranks
}

func (cfg Config) sponge() transcript.SpongeFactory {
	if cfg.Sponge == nil {
		return transcript.NewBlake2bSponge
	}
	return cfg.Sponge
}

// Ranks are the ranks of the commitments.
type Ranks struct {
	// K is the rank of the inner commitment.
	// Denoted as kappa in the paper.
	K int
	// K1 is the rank of the outer commitment to t and g.
	// Denoted as kappa_1 in the paper.
	K1 int
	// K2 is the rank of the outer commitment to h.
	// Denoted as kappa_2 in the paper.
	K2 int
}

func (rk Ranks) validate() error {
	if rk.K < 1 || rk.K1 < 1 || rk.K2 < 1 {
		return fmt.Errorf("%w: ranks %+v", ErrInvalidParameters, rk)
	}
	// u1 has K1 rows and is fed by the C matrices, which have K2 rows.
	if rk.K1 != rk.K2 {
		return fmt.Errorf("%w: K1 = %d != K2 = %d", ErrInvalidParameters, rk.K1, rk.K2)
	}
	return nil
}

// RankQuery describes the MSIS problems the commitment ranks must make hard.
type RankQuery struct {
	// Inner is the inner commitment problem, without N and LengthBound.
	Inner estimator.MSIS
	// InnerBound returns the length bound of the inner problem for rank K.
	InnerBound func(k int) float64
	// Outer returns the outer commitment problem for inner rank K, without N.
	Outer func(k int) estimator.MSIS

	SecurityTarget float64
	Estimator      estimator.Estimator
}

// RankPolicy selects the commitment ranks.
type RankPolicy interface {
	SelectRanks(ctx context.Context, q RankQuery) (Ranks, error)
}

// FixedRanks always selects the same ranks.
type FixedRanks Ranks

// DefaultRanks is the fixed policy K = 1, K1 = K2 = 2.
var DefaultRanks = FixedRanks{K: 1, K1: 2, K2: 2}

// SelectRanks implements [RankPolicy].
func (f FixedRanks) SelectRanks(ctx context.Context, q RankQuery) (Ranks, error) {
	rk := Ranks(f)
	if err := rk.validate(); err != nil {
		return Ranks{}, err
	}
	return rk, nil
}

// SearchRanks selects the smallest ranks meeting the security target.
// K is searched over 1 and powers of two, since the inner bound is not monotonic in K.
// K1 is binary searched, and K2 = K1.
type SearchRanks struct{}

// SelectRanks implements [RankPolicy].
func (SearchRanks) SelectRanks(ctx context.Context, q RankQuery) (Ranks, error) {
	if q.Estimator == nil {
		return Ranks{}, fmt.Errorf("%w: rank search needs an estimator", ErrInvalidParameters)
	}

	k, err := q.Inner.FindOptimalNDynamic(ctx, q.Estimator, q.InnerBound, q.SecurityTarget)
	if err != nil {
		return Ranks{}, fmt.Errorf("%w: inner commitment: %w", ErrInsecureRanks, err)
	}

	k1, err := q.Outer(k).FindOptimalN(ctx, q.Estimator, q.SecurityTarget)
	if err != nil {
		return Ranks{}, fmt.Errorf("%w: outer commitment: %w", ErrInsecureRanks, err)
	}

	return Ranks{K: k, K1: k1, K2: k1}, nil
}

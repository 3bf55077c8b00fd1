package labrador

import "errors"

var (
	// ErrInvalidParameters is returned when the relation shape or the configuration is invalid.
	ErrInvalidParameters = errors.New("invalid parameters")
	// ErrSoundnessCeiling is returned when the norm bound is too large for the modulus.
	ErrSoundnessCeiling = errors.New("norm bound exceeds soundness ceiling")
	// ErrInsecureRanks is returned when no commitment rank meets the security target.
	ErrInsecureRanks = errors.New("no secure commitment ranks")
	// ErrProjectionNorm is returned by the prover when the projected witness is too long.
	ErrProjectionNorm = errors.New("projection exceeds norm bound")
	// ErrVerificationFailed is returned when a proof is rejected.
	// It is never wrapped, so a rejection does not tell which check failed.
	ErrVerificationFailed = errors.New("verification failed")
)

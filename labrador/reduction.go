package labrador

import (
	"fmt"

	"github.com/sp301415/ringo-labrador/principal"
	"github.com/sp301415/ringo-labrador/relation"
	"github.com/sp301415/ringo-labrador/transcript"
)

// Reduction is one round of the argument as a reduction
// from the principal relation to itself.
type Reduction struct {
	// SkipSatisfactionCheck is passed to the prover.
	SkipSatisfactionCheck bool
}

var _ relation.Reduction[*CRS, principal.Size, *principal.Instance, *principal.Witness, principal.Size, *principal.Instance, *principal.Witness] = Reduction{}

func checkIndex(crs *CRS, index principal.Size) error {
	if index != crs.size {
		return fmt.Errorf("%w: index %v does not match %v", ErrInvalidParameters, index, crs.size)
	}
	return nil
}

// IOPattern implements [relation.Reduction].
func (Reduction) IOPattern(crs *CRS, index principal.Size, x *principal.Instance) (*transcript.IOPattern, error) {
	if err := checkIndex(crs, index); err != nil {
		return nil, err
	}
	return crs.IOPattern(x)
}

// Prove implements [relation.Reduction].
func (red Reduction) Prove(crs *CRS, index principal.Size, x *principal.Instance, w *principal.Witness, ts *transcript.Prover) (principal.Size, *principal.Instance, *principal.Witness, error) {
	if err := checkIndex(crs, index); err != nil {
		return principal.Size{}, nil, nil, err
	}

	prover := NewProver(crs)
	prover.SkipSatisfactionCheck = red.SkipSatisfactionCheck

	xOut, wOut, err := prover.ProveTranscript(x, w, ts)
	if err != nil {
		return principal.Size{}, nil, nil, err
	}
	return crs.OutputSize(), xOut, wOut, nil
}

// Verify implements [relation.Reduction].
func (Reduction) Verify(crs *CRS, index principal.Size, x *principal.Instance, ts *transcript.Verifier) (principal.Size, *principal.Instance, error) {
	if err := checkIndex(crs, index); err != nil {
		return principal.Size{}, nil, err
	}

	xOut, err := NewVerifier(crs).VerifyTranscript(x, ts)
	if err != nil {
		return principal.Size{}, nil, err
	}
	return crs.OutputSize(), xOut, nil
}

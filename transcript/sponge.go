package transcript

import (
	"io"

	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/sha3"
)

// Sponge is the hash primitive underlying a transcript.
// Squeezed bytes are a deterministic function of everything absorbed so far.
type Sponge interface {
	// Absorb absorbs p into the state.
	Absorb(p []byte) error
	// Squeeze fills out with pseudorandom bytes bound to the current state.
	// It does not modify the state.
	Squeeze(out []byte) error
}

// SpongeFactory creates a fresh Sponge.
type SpongeFactory func() (Sponge, error)

// Blake2bSponge is a Sponge backed by the blake2b XOF.
type Blake2bSponge struct {
	state blake2b.XOF
}

// NewBlake2bSponge creates a new Blake2bSponge.
func NewBlake2bSponge() (Sponge, error) {
	xof, err := blake2b.NewXOF(blake2b.OutputLengthUnknown, nil)
	if err != nil {
		return nil, err
	}
	return &Blake2bSponge{state: xof}, nil
}

// Absorb implements [Sponge].
func (s *Blake2bSponge) Absorb(p []byte) error {
	_, err := s.state.Write(p)
	return err
}

// Squeeze implements [Sponge].
func (s *Blake2bSponge) Squeeze(out []byte) error {
	_, err := io.ReadFull(s.state.Clone(), out)
	return err
}

// ShakeSponge is a Sponge backed by SHAKE256.
type ShakeSponge struct {
	state sha3.ShakeHash
}

// NewShakeSponge creates a new ShakeSponge.
func NewShakeSponge() (Sponge, error) {
	return &ShakeSponge{state: sha3.NewShake256()}, nil
}

// Absorb implements [Sponge].
func (s *ShakeSponge) Absorb(p []byte) error {
	_, err := s.state.Write(p)
	return err
}

// Squeeze implements [Sponge].
func (s *ShakeSponge) Squeeze(out []byte) error {
	_, err := io.ReadFull(s.state.Clone(), out)
	return err
}

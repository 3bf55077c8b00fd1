package transcript

import (
	"encoding/binary"
	"errors"
	"fmt"
)

var (
	// ErrPatternMismatch is returned when an operation differs from the next one in the pattern.
	ErrPatternMismatch = errors.New("operation does not match io pattern")
	// ErrPatternExhausted is returned when an operation is issued after the pattern ended.
	ErrPatternExhausted = errors.New("io pattern exhausted")
	// ErrPatternIncomplete is returned when a transcript finishes before the pattern ended.
	ErrPatternIncomplete = errors.New("io pattern not completed")
	// ErrShortProof is returned when the proof ends before all messages are read.
	ErrShortProof = errors.New("proof too short")
	// ErrTrailingBytes is returned when the proof has unread bytes after the pattern ended.
	ErrTrailingBytes = errors.New("trailing bytes in proof")
	// ErrSponge wraps failures of the underlying sponge.
	ErrSponge = errors.New("sponge failure")
)

// Challenger derives verifier challenges.
// Both [Prover] and [Verifier] implement it.
type Challenger interface {
	Squeeze(label string, out []byte) error
}

// duplex tracks the position in the pattern and frames every operation.
type duplex struct {
	pattern *IOPattern
	sponge  Sponge
	next    int
}

func newDuplex(pattern *IOPattern) (duplex, error) {
	sponge, err := pattern.newSponge()
	if err != nil {
		return duplex{}, fmt.Errorf("%w: %w", ErrSponge, err)
	}
	if err := sponge.Absorb([]byte(pattern.String())); err != nil {
		return duplex{}, fmt.Errorf("%w: %w", ErrSponge, err)
	}
	return duplex{pattern: pattern, sponge: sponge}, nil
}

func (d *duplex) step(kind OpKind, label string, size int) error {
	ops := d.pattern.ops
	if d.next >= len(ops) {
		return fmt.Errorf("%w: got %v", ErrPatternExhausted, Op{Kind: kind, Label: label, Size: size})
	}

	want, got := ops[d.next], Op{Kind: kind, Label: label, Size: size}
	if want != got {
		return fmt.Errorf("%w: step %d: expected %v, got %v", ErrPatternMismatch, d.next, want, got)
	}
	d.next++

	frame := make([]byte, 0, 16+len(label))
	frame = append(frame, byte(kind))
	frame = binary.LittleEndian.AppendUint32(frame, uint32(len(label)))
	frame = append(frame, label...)
	frame = binary.LittleEndian.AppendUint64(frame, uint64(size))
	if err := d.sponge.Absorb(frame); err != nil {
		return fmt.Errorf("%w: %w", ErrSponge, err)
	}
	return nil
}

func (d *duplex) absorb(label string, data []byte) error {
	if err := d.step(OpAbsorb, label, len(data)); err != nil {
		return err
	}
	if err := d.sponge.Absorb(data); err != nil {
		return fmt.Errorf("%w: %w", ErrSponge, err)
	}
	return nil
}

// Squeeze fills out with the challenge labelled label.
func (d *duplex) Squeeze(label string, out []byte) error {
	if err := d.step(OpSqueeze, label, len(out)); err != nil {
		return err
	}
	if err := d.sponge.Squeeze(out); err != nil {
		return fmt.Errorf("%w: %w", ErrSponge, err)
	}
	return nil
}

// SqueezeBytes returns the challenge labelled label of size bytes.
func (d *duplex) SqueezeBytes(label string, size int) ([]byte, error) {
	out := make([]byte, size)
	if err := d.Squeeze(label, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (d *duplex) finish() error {
	if d.next != len(d.pattern.ops) {
		return fmt.Errorf("%w: %d of %d operations done", ErrPatternIncomplete, d.next, len(d.pattern.ops))
	}
	return nil
}

// Prover is the prover side of a transcript.
// It records absorbed messages as the proof.
type Prover struct {
	duplex
	proof []byte
}

// Absorb absorbs a prover message and appends it to the proof.
func (p *Prover) Absorb(label string, data []byte) error {
	if err := p.absorb(label, data); err != nil {
		return err
	}
	p.proof = append(p.proof, data...)
	return nil
}

// Proof returns the proof bytes recorded so far.
func (p *Prover) Proof() []byte {
	return p.proof
}

// Finish checks that the whole pattern was executed.
func (p *Prover) Finish() error {
	return p.finish()
}

// Verifier is the verifier side of a transcript.
// It reads prover messages from a proof.
type Verifier struct {
	duplex
	proof  []byte
	offset int
}

// Next reads and absorbs the next prover message of size bytes.
func (v *Verifier) Next(label string, size int) ([]byte, error) {
	if v.offset+size > len(v.proof) {
		return nil, fmt.Errorf("%w: need %d bytes at offset %d, have %d", ErrShortProof, size, v.offset, len(v.proof))
	}

	data := v.proof[v.offset : v.offset+size]
	if err := v.absorb(label, data); err != nil {
		return nil, err
	}
	v.offset += size
	return data, nil
}

// Finish checks that the whole pattern was replayed and the proof fully read.
func (v *Verifier) Finish() error {
	if err := v.finish(); err != nil {
		return err
	}
	if v.offset != len(v.proof) {
		return fmt.Errorf("%w: %d unread", ErrTrailingBytes, len(v.proof)-v.offset)
	}
	return nil
}

// Package transcript implements Fiat-Shamir transcripts driven by a fixed IO pattern.
package transcript

import (
	"fmt"
	"strings"
)

// OpKind is the kind of a transcript operation.
type OpKind uint8

const (
	// OpAbsorb is a prover message absorbed into the transcript.
	OpAbsorb OpKind = iota + 1
	// OpSqueeze is a verifier challenge squeezed from the transcript.
	OpSqueeze
)

// String implements [fmt.Stringer].
func (k OpKind) String() string {
	switch k {
	case OpAbsorb:
		return "A"
	case OpSqueeze:
		return "S"
	}
	return "?"
}

// Op is a single labelled transcript operation of a fixed byte size.
type Op struct {
	Kind  OpKind
	Label string
	Size  int
}

// String implements [fmt.Stringer].
func (op Op) String() string {
	return fmt.Sprintf("%v%d%q", op.Kind, op.Size, op.Label)
}

// IOPattern is the ordered sequence of operations that the prover and
// the verifier must both execute.
type IOPattern struct {
	domain    string
	ops       []Op
	newSponge SpongeFactory
}

// NewIOPattern creates an empty IOPattern with the given domain separator.
// It uses [NewBlake2bSponge] by default.
func NewIOPattern(domain string) *IOPattern {
	return &IOPattern{
		domain:    domain,
		newSponge: NewBlake2bSponge,
	}
}

// WithSponge sets the sponge used by transcripts of this pattern.
func (io *IOPattern) WithSponge(newSponge SpongeFactory) *IOPattern {
	io.newSponge = newSponge
	return io
}

// Absorb appends an absorb operation of size bytes.
func (io *IOPattern) Absorb(size int, label string) *IOPattern {
	io.ops = append(io.ops, Op{Kind: OpAbsorb, Label: label, Size: size})
	return io
}

// Squeeze appends a squeeze operation of size bytes.
func (io *IOPattern) Squeeze(size int, label string) *IOPattern {
	io.ops = append(io.ops, Op{Kind: OpSqueeze, Label: label, Size: size})
	return io
}

// Domain returns the domain separator.
func (io *IOPattern) Domain() string {
	return io.domain
}

// Ops returns the operations of the pattern.
func (io *IOPattern) Ops() []Op {
	return io.ops
}

// ProofSize returns the total size of absorbed messages,
// which is the size of a proof following this pattern.
func (io *IOPattern) ProofSize() int {
	size := 0
	for _, op := range io.ops {
		if op.Kind == OpAbsorb {
			size += op.Size
		}
	}
	return size
}

// String renders the pattern. The rendering initializes the sponge,
// so two patterns produce related transcripts only if they render identically.
func (io *IOPattern) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%q", io.domain)
	for _, op := range io.ops {
		b.WriteByte('|')
		b.WriteString(op.String())
	}
	return b.String()
}

// NewProver creates a prover transcript for this pattern.
func (io *IOPattern) NewProver() (*Prover, error) {
	d, err := newDuplex(io)
	if err != nil {
		return nil, err
	}
	return &Prover{duplex: d, proof: make([]byte, 0, io.ProofSize())}, nil
}

// NewVerifier creates a verifier transcript replaying proof.
func (io *IOPattern) NewVerifier(proof []byte) (*Verifier, error) {
	d, err := newDuplex(io)
	if err != nil {
		return nil, err
	}
	return &Verifier{duplex: d, proof: proof}, nil
}

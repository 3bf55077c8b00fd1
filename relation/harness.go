package relation

import (
	"bytes"
	"encoding"
	"errors"
	"fmt"
	"reflect"

	"github.com/google/go-cmp/cmp"
)

var (
	// ErrNotComplete is returned when an honest run of a reduction fails.
	ErrNotComplete = errors.New("reduction is not complete")
	// ErrNotSound is returned when an unsatisfied input yields a satisfied output.
	ErrNotSound = errors.New("reduction is not sound")
	// ErrBadSample is returned when a sampler returns a triple of the wrong kind.
	ErrBadSample = errors.New("sampler returned a wrong triple")
)

// Harness runs self-tests of a Reduction.
type Harness[S, P, XIn, IIn, WIn, XOut, IOut, WOut any] struct {
	Params    P
	Input     SampledRelation[S, XIn, IIn, WIn]
	Output    Relation[XOut, IOut, WOut]
	Reduction Reduction[P, XIn, IIn, WIn, XOut, IOut, WOut]
}

type proverRun[XOut, IOut, WOut any] struct {
	index    XOut
	instance IOut
	witness  WOut
	proof    []byte
}

func (h Harness[S, P, XIn, IIn, WIn, XOut, IOut, WOut]) prove(index XIn, instance IIn, witness WIn) (proverRun[XOut, IOut, WOut], error) {
	io, err := h.Reduction.IOPattern(h.Params, index, instance)
	if err != nil {
		return proverRun[XOut, IOut, WOut]{}, fmt.Errorf("io pattern: %w", err)
	}

	prover, err := io.NewProver()
	if err != nil {
		return proverRun[XOut, IOut, WOut]{}, err
	}

	indexOut, instanceOut, witnessOut, err := h.Reduction.Prove(h.Params, index, instance, witness, prover)
	if err != nil {
		return proverRun[XOut, IOut, WOut]{}, fmt.Errorf("prover failed: %w", err)
	}
	if err := prover.Finish(); err != nil {
		return proverRun[XOut, IOut, WOut]{}, fmt.Errorf("prover failed: %w", err)
	}

	return proverRun[XOut, IOut, WOut]{
		index:    indexOut,
		instance: instanceOut,
		witness:  witnessOut,
		proof:    prover.Proof(),
	}, nil
}

func (h Harness[S, P, XIn, IIn, WIn, XOut, IOut, WOut]) verify(index XIn, instance IIn, proof []byte) (XOut, IOut, error) {
	var indexOut XOut
	var instanceOut IOut

	io, err := h.Reduction.IOPattern(h.Params, index, instance)
	if err != nil {
		return indexOut, instanceOut, fmt.Errorf("io pattern: %w", err)
	}

	verifier, err := io.NewVerifier(proof)
	if err != nil {
		return indexOut, instanceOut, err
	}

	indexOut, instanceOut, err = h.Reduction.Verify(h.Params, index, instance, verifier)
	if err != nil {
		return indexOut, instanceOut, err
	}
	if err := verifier.Finish(); err != nil {
		return indexOut, instanceOut, err
	}
	return indexOut, instanceOut, nil
}

// CheckCompleteness samples a satisfied triple, runs the prover and the verifier,
// and checks that the output witness satisfies the output instance
// and that both parties derive the same output index and instance.
func (h Harness[S, P, XIn, IIn, WIn, XOut, IOut, WOut]) CheckCompleteness(size S) error {
	index, instance, witness, err := h.Input.SampleSatisfied(size)
	if err != nil {
		return fmt.Errorf("sampling: %w", err)
	}
	if err := h.Input.Check(index, instance, witness); err != nil {
		return fmt.Errorf("%w: sampled triple is not satisfied: %w", ErrBadSample, err)
	}

	run, err := h.prove(index, instance, witness)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrNotComplete, err)
	}

	if err := h.Output.Check(run.index, run.instance, run.witness); err != nil {
		return fmt.Errorf("%w: output witness does not satisfy output instance: %w", ErrNotComplete, err)
	}

	indexOut, instanceOut, err := h.verify(index, instance, run.proof)
	if err != nil {
		return fmt.Errorf("%w: verifier failed: %w", ErrNotComplete, err)
	}

	if !equal(run.index, indexOut) {
		return fmt.Errorf("%w: prover and verifier output different indices", ErrNotComplete)
	}
	if !equal(run.instance, instanceOut) {
		return fmt.Errorf("%w: prover and verifier output different instances", ErrNotComplete)
	}
	return nil
}

// CheckSoundness samples an unsatisfied triple, runs the honest prover on it,
// and checks that the output witness does not satisfy the output instance.
// A run in which the verifier rejects the proof also counts as sound.
//
// This does not simulate a cheating prover.
func (h Harness[S, P, XIn, IIn, WIn, XOut, IOut, WOut]) CheckSoundness(size S) error {
	index, instance, witness, err := h.Input.SampleUnsatisfied(size)
	if err != nil {
		return fmt.Errorf("sampling: %w", err)
	}
	if h.Input.Check(index, instance, witness) == nil {
		return fmt.Errorf("%w: sampled triple is satisfied", ErrBadSample)
	}

	run, err := h.prove(index, instance, witness)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrNotComplete, err)
	}

	if h.Output.Check(run.index, run.instance, run.witness) != nil {
		return nil
	}

	if _, _, err := h.verify(index, instance, run.proof); err != nil {
		return nil
	}
	return fmt.Errorf("%w: output witness satisfies output instance", ErrNotSound)
}

// exportAll lets cmp descend into unexported fields of instances.
var exportAll = cmp.Exporter(func(reflect.Type) bool { return true })

// equal compares values by their binary encoding if they have one,
// and structurally otherwise.
func equal(a, b any) bool {
	ma, okA := a.(encoding.BinaryMarshaler)
	mb, okB := b.(encoding.BinaryMarshaler)
	if okA && okB {
		da, errA := ma.MarshalBinary()
		db, errB := mb.MarshalBinary()
		return errA == nil && errB == nil && bytes.Equal(da, db)
	}
	return cmp.Equal(a, b, exportAll)
}

// Package relation defines relations, reductions between them,
// and generic completeness and soundness checks for reductions.
package relation

import "github.com/sp301415/ringo-labrador/transcript"

// Relation is an NP relation over (index, instance, witness) triples.
type Relation[X, I, W any] interface {
	// Check returns nil if witness satisfies instance under index.
	Check(index X, instance I, witness W) error
}

// Sampler generates test triples of a given size.
type Sampler[S, X, I, W any] interface {
	// SampleSatisfied returns a triple that satisfies the relation.
	SampleSatisfied(size S) (X, I, W, error)
	// SampleUnsatisfied returns a triple that does not satisfy the relation.
	SampleUnsatisfied(size S) (X, I, W, error)
}

// SampledRelation is a Relation that can generate its own test triples.
type SampledRelation[S, X, I, W any] interface {
	Relation[X, I, W]
	Sampler[S, X, I, W]
}

// Reduction reduces the satisfiability of an input relation
// to that of an output relation, using a Fiat-Shamir transcript.
type Reduction[P, XIn, IIn, WIn, XOut, IOut, WOut any] interface {
	// IOPattern returns the transcript pattern of the reduction.
	IOPattern(params P, index XIn, instance IIn) (*transcript.IOPattern, error)
	// Prove runs the prover, writing its messages to prover.
	Prove(params P, index XIn, instance IIn, witness WIn, prover *transcript.Prover) (XOut, IOut, WOut, error)
	// Verify replays the proof held by verifier and returns the output index and instance.
	Verify(params P, index XIn, instance IIn, verifier *transcript.Verifier) (XOut, IOut, error)
}

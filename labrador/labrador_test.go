package labrador_test

import (
	"context"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/sp301415/ringo-labrador/estimator"
	"github.com/sp301415/ringo-labrador/labrador"
	"github.com/sp301415/ringo-labrador/polyring"
	"github.com/sp301415/ringo-labrador/principal"
	"github.com/sp301415/ringo-labrador/relation"
	"github.com/sp301415/ringo-labrador/transcript"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	testSeed    = []byte("labrador common reference string")
	samplerSeed = []byte("labrador test triples")
)

type harness = relation.Harness[principal.Size, *labrador.CRS, principal.Size, *principal.Instance, *principal.Witness, principal.Size, *principal.Instance, *principal.Witness]

func newHarness(ring *polyring.Ring, crs *labrador.CRS, red labrador.Reduction) harness {
	return harness{
		Params:    crs,
		Input:     principal.NewRelationWithSeed(ring, samplerSeed),
		Output:    principal.NewRelation(ring),
		Reduction: red,
	}
}

func setup(t *testing.T, ring *polyring.Ring, size principal.Size, cfg labrador.Config) *labrador.CRS {
	t.Helper()
	if cfg.Seed == nil {
		cfg.Seed = testSeed
	}
	crs, err := labrador.Setup(context.Background(), ring, size, cfg)
	require.NoError(t, err)
	return crs
}

func toyTriple(t *testing.T, ring *polyring.Ring, b uint64) (principal.Size, *principal.Instance, *principal.Witness) {
	t.Helper()
	size := principal.Size{R: 1, N: 1, NormBoundSq: 2, NumConstraints: 1}

	c, err := principal.NewLinearQuadDotProdFunction([][]polyring.Poly{{ring.NewConstant(1)}}, ring.NewConstant(b))
	require.NoError(t, err)
	x, err := principal.NewInstance(1, 1, []*principal.QuadDotProdFunction{c}, nil)
	require.NoError(t, err)
	w, err := principal.NewWitness([][]polyring.Poly{{ring.NewConstant(1)}})
	require.NoError(t, err)

	return size, x, w
}

func TestParameters(t *testing.T) {
	ring := polyring.ParamsToy.Compile()

	t.Run("Toy", func(t *testing.T) {
		dc := labrador.DeriveDecomposition(1, 1, 1, 12289, 2)
		assert.Equal(t, uint64(3), dc.Base)
		assert.Equal(t, 9, dc.T1)
		assert.Equal(t, uint64(3), dc.B1)
		assert.Equal(t, 2, dc.T2)
		assert.Equal(t, uint64(3), dc.B2)
		assert.Empty(t, dc.Clamped)

		assert.Equal(t, 10, labrador.NumAggregs(12289))
		assert.InDelta(t, 47.595, labrador.SoundnessCeiling(12289), 1e-3)
		assert.InDelta(t, 56.18, dc.NextNormBoundSq(1, 1, 1, 1, 2), 1e-2)
	})

	t.Run("OutputSize", func(t *testing.T) {
		size, _, _ := toyTriple(t, ring, 1)
		crs := setup(t, ring, size, labrador.Config{})

		want := principal.Size{R: 22, N: 1, NormBoundSq: crs.NextNormBoundSq(), NumConstraints: 8}
		if diff := cmp.Diff(want, crs.OutputSize()); diff != "" {
			t.Errorf("OutputSize mismatch (-want +got):\n%s", diff)
		}
		assert.Equal(t, 22, crs.NumOutputVectors())

		ring64 := polyring.ParamsD64Q12289.Compile()
		crs = setup(t, ring64, principal.Size{R: 2, N: 4, NormBoundSq: 512, NumConstraints: 1}, labrador.Config{})
		assert.Equal(t, 17, crs.NumOutputVectors())
	})

	t.Run("SoundnessCeiling", func(t *testing.T) {
		size := principal.Size{R: 1, N: 1, NormBoundSq: 2300, NumConstraints: 1}
		_, err := labrador.Setup(context.Background(), ring, size, labrador.Config{Seed: testSeed})
		assert.ErrorIs(t, err, labrador.ErrSoundnessCeiling)
	})

	t.Run("InvalidParameters", func(t *testing.T) {
		ctx := context.Background()
		size, _, _ := toyTriple(t, ring, 1)

		_, err := labrador.Setup(ctx, ring, principal.Size{R: 0, N: 1, NormBoundSq: 2}, labrador.Config{Seed: testSeed})
		assert.ErrorIs(t, err, labrador.ErrInvalidParameters)

		_, err = labrador.Setup(ctx, ring, size, labrador.Config{Seed: []byte("short")})
		assert.ErrorIs(t, err, labrador.ErrInvalidParameters)

		_, err = labrador.Setup(ctx, ring, size, labrador.Config{Seed: testSeed, Ranks: labrador.FixedRanks{K: 1, K1: 2, K2: 3}})
		assert.ErrorIs(t, err, labrador.ErrInvalidParameters)

		_, err = labrador.Setup(ctx, ring, size, labrador.Config{Seed: testSeed, Ranks: labrador.FixedRanks{K: 0, K1: 1, K2: 1}})
		assert.ErrorIs(t, err, labrador.ErrInvalidParameters)

		_, err = labrador.Setup(ctx, ring, size, labrador.Config{Seed: testSeed, Ranks: labrador.SearchRanks{}})
		assert.ErrorIs(t, err, labrador.ErrInvalidParameters)
	})

	t.Run("Decomposition", func(t *testing.T) {
		properties := gopter.NewProperties(nil)
		properties.Property("bases are odd and digits are positive", prop.ForAll(
			func(r, n, logD int, normBoundSq float64) bool {
				dc := labrador.DeriveDecomposition(r, n, 1<<logD, 12289, normBoundSq)
				for _, b := range []uint64{dc.Base, dc.B1, dc.B2} {
					if b < 3 || b%2 == 0 {
						return false
					}
				}
				return dc.T1 >= 1 && dc.T2 >= 1
			},
			gen.IntRange(1, 16),
			gen.IntRange(1, 64),
			gen.IntRange(0, 7),
			gen.Float64Range(1, 2000),
		))
		properties.TestingRun(t)
	})
}

func TestRanks(t *testing.T) {
	ring := polyring.ParamsToy.Compile()
	size := principal.Size{R: 1, N: 4, NormBoundSq: 2, NumConstraints: 1}

	// Security grows by 70 bits per row of the flattened SIS matrix.
	est := estimatorFunc(func(s estimator.SIS) (float64, error) {
		return 70 * float64(s.N), nil
	})

	t.Run("Search", func(t *testing.T) {
		crs := setup(t, ring, size, labrador.Config{Ranks: labrador.SearchRanks{}, Estimator: est})
		if diff := cmp.Diff(labrador.Ranks{K: 2, K1: 2, K2: 2}, crs.Ranks()); diff != "" {
			t.Errorf("Ranks mismatch (-want +got):\n%s", diff)
		}

		rp := crs.Report()
		assert.True(t, rp.Estimated())
		assert.Equal(t, 140.0, rp.InnerSecurity)
		assert.Equal(t, 140.0, rp.OuterSecurity)
		assert.Equal(t, 2, rp.Inner.N)
		assert.Equal(t, 2, rp.Outer.N)
	})

	t.Run("Insecure", func(t *testing.T) {
		weak := estimatorFunc(func(s estimator.SIS) (float64, error) { return 1, nil })
		_, err := labrador.Setup(context.Background(), ring, size, labrador.Config{Seed: testSeed, Ranks: labrador.SearchRanks{}, Estimator: weak})
		assert.ErrorIs(t, err, labrador.ErrInsecureRanks)
	})

	t.Run("Fixed", func(t *testing.T) {
		crs := setup(t, ring, size, labrador.Config{})
		assert.Equal(t, labrador.Ranks(labrador.DefaultRanks), crs.Ranks())

		rp := crs.Report()
		assert.False(t, rp.Estimated())
		assert.True(t, math.IsNaN(rp.InnerSecurity))
		assert.Contains(t, rp.String(), "not estimated")
		assert.Contains(t, rp.Lines()[0], "q=12289")
	})
}

type estimatorFunc func(s estimator.SIS) (float64, error)

func (f estimatorFunc) SecurityLevel(ctx context.Context, s estimator.SIS) (float64, error) {
	return f(s)
}

func TestIOPattern(t *testing.T) {
	ring := polyring.ParamsD64Q12289.Compile()
	size := principal.Size{R: 2, N: 4, NormBoundSq: 512, NumConstraints: 2, NumConstantConstraints: 1}
	crs := setup(t, ring, size, labrador.Config{})

	_, x, _, err := principal.NewRelationWithSeed(ring, samplerSeed).SampleSatisfied(size)
	require.NoError(t, err)

	io, err := crs.IOPattern(x)
	require.NoError(t, err)

	ops := io.Ops()
	require.Len(t, ops, 10)

	kinds := ""
	for _, op := range ops {
		kinds += op.Kind.String()
	}
	assert.Equal(t, "ASASSASSAS", kinds)

	d, k := 64, crs.NumAggregs()
	rk := crs.Ranks()
	assert.Equal(t, "prover message 1", ops[0].Label)
	assert.Equal(t, 256*4*2*d, ops[1].Size)
	assert.Equal(t, 1*k*16, ops[3].Size)
	assert.Equal(t, 256*k*16, ops[4].Size)
	assert.Equal(t, 2*16*d, ops[6].Size)
	assert.Equal(t, 2*d, ops[9].Size)
	assert.Equal(t, (rk.K1+256+k+rk.K2)*8*d, io.ProofSize())

	other := setup(t, ring, size, labrador.Config{Seed: []byte("another common reference string!")})
	otherIO, err := other.IOPattern(x)
	require.NoError(t, err)
	assert.NotEqual(t, io.Domain(), otherIO.Domain())

	_, err = crs.IOPattern(nil)
	assert.ErrorIs(t, err, principal.ErrMalformed)
}

func TestWellformed(t *testing.T) {
	ring := polyring.ParamsD64Q12289.Compile()
	ringToy := polyring.ParamsToy.Compile()
	size := principal.Size{R: 2, N: 4, NormBoundSq: 512, NumConstraints: 2, NumConstantConstraints: 1}
	crs := setup(t, ring, size, labrador.Config{})

	_, x, w, err := principal.NewRelationWithSeed(ring, samplerSeed).SampleSatisfied(size)
	require.NoError(t, err)

	t.Run("Valid", func(t *testing.T) {
		assert.True(t, crs.IsWellformedInstance(x))
		assert.True(t, crs.IsWellformedWitness(w))
	})

	t.Run("ConstraintCount", func(t *testing.T) {
		xBad, err := principal.NewInstance(2, 4, x.Constraints()[:1], x.ConstantConstraints())
		require.NoError(t, err)
		assert.False(t, crs.IsWellformedInstance(xBad))
		assert.ErrorIs(t, crs.CheckInstance(xBad), principal.ErrMalformed)
	})

	t.Run("ConstantConstraintCount", func(t *testing.T) {
		xBad, err := principal.NewInstance(2, 4, x.Constraints(), nil)
		require.NoError(t, err)
		assert.False(t, crs.IsWellformedInstance(xBad))
		assert.ErrorIs(t, crs.CheckInstance(xBad), principal.ErrMalformed)
	})

	t.Run("ConstraintDegree", func(t *testing.T) {
		c, err := principal.NewLinearQuadDotProdFunction(ringToy.NewMatrix(2, 4), ringToy.NewPoly())
		require.NoError(t, err)
		cc, err := principal.NewLinearConstantQuadDotProdFunction(ringToy.NewMatrix(2, 4), 0)
		require.NoError(t, err)
		xBad, err := principal.NewInstance(2, 4, []*principal.QuadDotProdFunction{c, c}, []*principal.ConstantQuadDotProdFunction{cc})
		require.NoError(t, err)

		assert.False(t, crs.IsWellformedInstance(xBad))
		assert.ErrorIs(t, crs.CheckInstance(xBad), principal.ErrMalformed)
	})

	t.Run("WitnessShape", func(t *testing.T) {
		wBad, err := principal.NewWitness(ring.NewMatrix(1, 4))
		require.NoError(t, err)
		assert.False(t, crs.IsWellformedWitness(wBad))
		assert.ErrorIs(t, crs.CheckWitness(wBad), principal.ErrMalformed)

		wBad, err = principal.NewWitness(ringToy.NewMatrix(2, 4))
		require.NoError(t, err)
		assert.False(t, crs.IsWellformedWitness(wBad))
		assert.ErrorIs(t, crs.CheckWitness(wBad), principal.ErrMalformed)
	})

	t.Run("WitnessNorm", func(t *testing.T) {
		s := ring.NewMatrix(2, 4)
		s[0][0] = ring.NewConstant(100)
		wBad, err := principal.NewWitness(s)
		require.NoError(t, err)
		assert.False(t, crs.IsWellformedWitness(wBad))
		assert.ErrorIs(t, crs.CheckWitness(wBad), principal.ErrNormBound)
	})
}

func TestToy(t *testing.T) {
	ring := polyring.ParamsToy.Compile()
	size, x, w := toyTriple(t, ring, 1)
	crs := setup(t, ring, size, labrador.Config{})

	t.Run("Accept", func(t *testing.T) {
		pf, xOut, wOut, err := labrador.NewProver(crs).Prove(x, w)
		require.NoError(t, err)
		assert.NoError(t, principal.NewRelation(ring).Check(crs.OutputSize(), xOut, wOut))

		xVerified, err := labrador.NewVerifier(crs).Verify(x, pf)
		require.NoError(t, err)

		want, err := xOut.MarshalBinary()
		require.NoError(t, err)
		got, err := xVerified.MarshalBinary()
		require.NoError(t, err)
		assert.Equal(t, want, got)
	})

	t.Run("Reject", func(t *testing.T) {
		_, xBad, _ := toyTriple(t, ring, 2)

		_, _, _, err := labrador.NewProver(crs).Prove(xBad, w)
		assert.ErrorIs(t, err, principal.ErrNotSatisfied)

		prover := labrador.NewProver(crs)
		prover.SkipSatisfactionCheck = true
		_, xOut, wOut, err := prover.Prove(xBad, w)
		require.NoError(t, err)
		assert.ErrorIs(t, principal.NewRelation(ring).Check(crs.OutputSize(), xOut, wOut), principal.ErrNotSatisfied)
	})

	t.Run("SeedBuffer", func(t *testing.T) {
		seed := append([]byte(nil), testSeed...)
		crs := setup(t, ring, size, labrador.Config{Seed: seed})

		pf, _, _, err := labrador.NewProver(crs).Prove(x, w)
		require.NoError(t, err)

		seed[0] ^= 1
		crs.Seed()[0] ^= 1
		assert.Equal(t, testSeed, crs.Seed())

		_, err = labrador.NewVerifier(crs).Verify(x, pf)
		assert.NoError(t, err)
	})

	t.Run("NormBound", func(t *testing.T) {
		wLong, err := principal.NewWitness([][]polyring.Poly{{ring.NewConstant(2)}})
		require.NoError(t, err)
		_, _, _, err = labrador.NewProver(crs).Prove(x, wLong)
		assert.ErrorIs(t, err, principal.ErrNormBound)
	})

	t.Run("Harness", func(t *testing.T) {
		h := newHarness(ring, crs, labrador.Reduction{})
		assert.NoError(t, h.CheckCompleteness(size))

		h.Reduction = labrador.Reduction{SkipSatisfactionCheck: true}
		assert.NoError(t, h.CheckSoundness(size))
	})
}

func TestReduction(t *testing.T) {
	ring := polyring.ParamsD64Q12289.Compile()

	for _, size := range []principal.Size{
		{R: 2, N: 4, NormBoundSq: 512, NumConstraints: 2},
		{R: 2, N: 4, NormBoundSq: 512, NumConstraints: 2, NumConstantConstraints: 2},
		{R: 3, N: 2, NormBoundSq: 256, NumConstantConstraints: 1},
	} {
		crs := setup(t, ring, size, labrador.Config{})

		t.Run("Completeness/"+size.String(), func(t *testing.T) {
			h := newHarness(ring, crs, labrador.Reduction{})
			assert.NoError(t, h.CheckCompleteness(size))
		})

		t.Run("Soundness/"+size.String(), func(t *testing.T) {
			h := newHarness(ring, crs, labrador.Reduction{SkipSatisfactionCheck: true})
			assert.NoError(t, h.CheckSoundness(size))
		})
	}

	t.Run("WrongIndex", func(t *testing.T) {
		size := principal.Size{R: 2, N: 4, NormBoundSq: 512, NumConstraints: 1}
		crs := setup(t, ring, size, labrador.Config{})

		other := size
		other.NumConstraints = 2
		_, err := labrador.Reduction{}.IOPattern(crs, other, nil)
		assert.ErrorIs(t, err, labrador.ErrInvalidParameters)
	})
}

func TestProof(t *testing.T) {
	ring := polyring.ParamsD64Q12289.Compile()
	size := principal.Size{R: 2, N: 4, NormBoundSq: 512, NumConstraints: 1, NumConstantConstraints: 1}
	crs := setup(t, ring, size, labrador.Config{})

	_, x, w, err := principal.NewRelationWithSeed(ring, samplerSeed).SampleSatisfied(size)
	require.NoError(t, err)

	pf, _, _, err := labrador.NewProver(crs).Prove(x, w)
	require.NoError(t, err)

	io, err := crs.IOPattern(x)
	require.NoError(t, err)
	assert.Len(t, pf.Transcript, io.ProofSize())

	t.Run("Deterministic", func(t *testing.T) {
		pf1, _, _, err := labrador.NewProver(setup(t, ring, size, labrador.Config{})).Prove(x, w)
		require.NoError(t, err)
		assert.Equal(t, pf.Transcript, pf1.Transcript)

		pf2, _, _, err := labrador.NewProver(setup(t, ring, size, labrador.Config{Seed: []byte("another common reference string!")})).Prove(x, w)
		require.NoError(t, err)
		assert.NotEqual(t, pf.Transcript, pf2.Transcript)
	})

	t.Run("Shake", func(t *testing.T) {
		crs := setup(t, ring, size, labrador.Config{Sponge: transcript.NewShakeSponge})
		pfShake, _, _, err := labrador.NewProver(crs).Prove(x, w)
		require.NoError(t, err)
		assert.NotEqual(t, pf.Transcript, pfShake.Transcript)

		_, err = labrador.NewVerifier(crs).Verify(x, pfShake)
		assert.NoError(t, err)
	})

	t.Run("NonConstantProjection", func(t *testing.T) {
		tampered := labrador.Proof{Transcript: append([]byte(nil), pf.Transcript...)}
		// The second coefficient of p_0 must be zero.
		tampered.Transcript[crs.Ranks().K1*ring.EncodedSize()+8] ^= 1
		_, err := labrador.NewVerifier(crs).Verify(x, tampered)
		assert.Equal(t, labrador.ErrVerificationFailed, err)
	})

	t.Run("NonCanonical", func(t *testing.T) {
		tampered := labrador.Proof{Transcript: append([]byte(nil), pf.Transcript...)}
		for i := 0; i < 8; i++ {
			tampered.Transcript[i] = 0xff
		}
		_, err := labrador.NewVerifier(crs).Verify(x, tampered)
		assert.Equal(t, labrador.ErrVerificationFailed, err)
	})

	t.Run("TamperedAggregate", func(t *testing.T) {
		tampered := labrador.Proof{Transcript: append([]byte(nil), pf.Transcript...)}
		offset := (crs.Ranks().K1 + 256) * ring.EncodedSize()
		tampered.Transcript[offset] ^= 1
		_, err := labrador.NewVerifier(crs).Verify(x, tampered)
		assert.Equal(t, labrador.ErrVerificationFailed, err)
	})

	t.Run("Truncated", func(t *testing.T) {
		_, err := labrador.NewVerifier(crs).Verify(x, labrador.Proof{Transcript: pf.Transcript[:len(pf.Transcript)-1]})
		assert.ErrorIs(t, err, transcript.ErrShortProof)
	})

	t.Run("Trailing", func(t *testing.T) {
		long := append(append([]byte(nil), pf.Transcript...), 0)
		_, err := labrador.NewVerifier(crs).Verify(x, labrador.Proof{Transcript: long})
		assert.ErrorIs(t, err, transcript.ErrTrailingBytes)
	})

	t.Run("ShallowCopy", func(t *testing.T) {
		pfCopy, _, _, err := labrador.NewProver(crs).ShallowCopy().Prove(x, w)
		require.NoError(t, err)
		assert.Equal(t, pf.Transcript, pfCopy.Transcript)

		_, err = labrador.NewVerifier(crs).ShallowCopy().Verify(x, pfCopy)
		assert.NoError(t, err)
	})
}

func TestChaining(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping chained rounds in short mode")
	}

	ring := polyring.ParametersLiteral{Degree: 1, Modulus: polyring.ParamsD64KoalaBear.Modulus}.Compile()
	size := principal.Size{R: 1, N: 8, NormBoundSq: 8, NumConstraints: 1, NumConstantConstraints: 1}

	_, x, w, err := principal.NewRelationWithSeed(ring, samplerSeed).SampleSatisfied(size)
	require.NoError(t, err)

	for round := 0; round < 2; round++ {
		crs := setup(t, ring, size, labrador.Config{})

		pf, xOut, wOut, err := labrador.NewProver(crs).Prove(x, w)
		require.NoError(t, err, "round %d", round)
		_, err = labrador.NewVerifier(crs).Verify(x, pf)
		require.NoError(t, err, "round %d", round)
		require.NoError(t, principal.NewRelation(ring).Check(crs.OutputSize(), xOut, wOut), "round %d", round)

		size, x, w = crs.OutputSize(), xOut, wOut
	}
}

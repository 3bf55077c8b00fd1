package csprng_test

import (
	"testing"

	"github.com/montanaflynn/stats"
	"github.com/sp301415/ringo-labrador/csprng"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUniformSampler(t *testing.T) {
	seed := []byte("uniform sampler test seed")

	t.Run("Deterministic", func(t *testing.T) {
		s0 := csprng.NewUniformSamplerWithSeed(seed)
		s1 := csprng.NewUniformSamplerWithSeed(seed)
		for i := 0; i < 2048; i++ {
			assert.Equal(t, s0.Sample(), s1.Sample())
		}
	})

	t.Run("ReadMatchesSample", func(t *testing.T) {
		s0 := csprng.NewUniformSamplerWithSeed(seed)
		s1 := csprng.NewUniformSamplerWithSeed(seed)
		buf := make([]byte, 8)
		_, err := s0.Read(buf)
		require.NoError(t, err)
		x := s1.Sample()
		for i := 0; i < 8; i++ {
			assert.Equal(t, byte(x>>(8*i)), buf[i])
		}
	})

	t.Run("SampleN", func(t *testing.T) {
		s := csprng.NewUniformSamplerWithSeed(seed)
		for i := 0; i < 4096; i++ {
			assert.Less(t, s.SampleN(12289), uint64(12289))
			v := s.SampleTernary()
			assert.True(t, v >= -1 && v <= 1)
		}
	})

	t.Run("Expander", func(t *testing.T) {
		e0 := csprng.NewExpander(seed, "A")
		e1 := csprng.NewExpander(seed, "A")
		e2 := csprng.NewExpander(seed, "B")
		x0, x1, x2 := e0.Sample(), e1.Sample(), e2.Sample()
		assert.Equal(t, x0, x1)
		assert.NotEqual(t, x0, x2)
	})

	t.Run("RandomSeed", func(t *testing.T) {
		s0, err := csprng.RandomSeed()
		require.NoError(t, err)
		s1, err := csprng.RandomSeed()
		require.NoError(t, err)
		assert.Len(t, s0, csprng.SeedSize)
		assert.NotEqual(t, s0, s1)
	})
}

func TestGaussianSampler(t *testing.T) {
	for _, stdDev := range []float64{1, 3.2, 10} {
		gs := csprng.NewGaussianSampler(csprng.NewUniformSamplerWithSeed([]byte("gaussian")), stdDev)
		assert.Equal(t, stdDev, gs.StdDev())

		samples := make([]float64, 1<<15)
		for i := range samples {
			samples[i] = float64(gs.Sample())
		}

		mean, err := stats.Mean(samples)
		require.NoError(t, err)
		sd, err := stats.StandardDeviation(samples)
		require.NoError(t, err)

		assert.InDelta(t, 0, mean, 0.1*stdDev)
		assert.InDelta(t, stdDev, sd, 0.05*stdDev)
	}
}

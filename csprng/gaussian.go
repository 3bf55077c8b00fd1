package csprng

import (
	"math"
	"sort"
)

// tailCut is the number of standard deviations kept on each side.
const tailCut = 9

// GaussianSampler samples from the discrete Gaussian distribution
// centered at zero, using a cumulative distribution table.
type GaussianSampler struct {
	baseSampler *UniformSampler

	stdDev float64
	table  []uint64
	tailLo int64
}

// NewGaussianSampler creates a new GaussianSampler drawing
// randomness from baseSampler.
func NewGaussianSampler(baseSampler *UniformSampler, stdDev float64) *GaussianSampler {
	tailHi := int64(math.Ceil(tailCut * stdDev))
	return &GaussianSampler{
		baseSampler: baseSampler,

		stdDev: stdDev,
		table:  computeCDT(stdDev, tailHi),
		tailLo: -tailHi,
	}
}

// computeCDT computes the cumulative distribution table of
// the discrete Gaussian over [-tailHi, tailHi].
func computeCDT(sigma float64, tailHi int64) []uint64 {
	rho := make([]float64, 2*tailHi+1)
	total := 0.0
	for i, x := 0, -tailHi; x <= tailHi; i, x = i+1, x+1 {
		xf := float64(x)
		rho[i] = math.Exp(-xf * xf / (2 * sigma * sigma))
		total += rho[i]
	}

	table := make([]uint64, len(rho))
	cdf := 0.0
	for i := range rho {
		cdf += rho[i] / total
		if cdf >= 1 {
			table[i] = math.MaxUint64
		} else {
			table[i] = uint64(math.Round(cdf * math.Exp2(64)))
		}
	}
	table[len(table)-1] = math.MaxUint64

	return table
}

// StdDev returns the standard deviation of the sampler.
func (s *GaussianSampler) StdDev() float64 {
	return s.stdDev
}

// Sample samples from the discrete Gaussian distribution.
func (s *GaussianSampler) Sample() int64 {
	u := s.baseSampler.Sample()
	i := sort.Search(len(s.table), func(i int) bool { return s.table[i] > u })
	if i == len(s.table) {
		i--
	}
	return int64(i) + s.tailLo
}

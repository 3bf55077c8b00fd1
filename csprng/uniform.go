package csprng

import (
	"crypto/rand"
	"io"
	"math"

	"github.com/zeebo/blake3"
	"golang.org/x/crypto/blake2b"
)

const (
	// bufSize is the default buffer size of UniformSampler.
	bufSize = 8192
	// SeedSize is the size of seeds generated by this package.
	SeedSize = 32
)

// UniformSampler samples values from uniform distribution.
// The underlying prng is an extendable output function,
// either blake2b (private randomness) or blake3 (public seed expansion).
type UniformSampler struct {
	prng io.Reader

	buf [bufSize]byte
	ptr int
}

// RandomSeed returns a fresh seed read from crypto/rand.
func RandomSeed() ([]byte, error) {
	seed := make([]byte, SeedSize)
	if _, err := rand.Read(seed); err != nil {
		return nil, err
	}
	return seed, nil
}

// NewUniformSampler creates a new UniformSampler seeded from crypto/rand.
//
// Panics when read from crypto/rand or blake2b initialization fails.
func NewUniformSampler() *UniformSampler {
	seed, err := RandomSeed()
	if err != nil {
		panic(err)
	}
	return NewUniformSamplerWithSeed(seed)
}

// NewUniformSamplerWithSeed creates a new UniformSampler, with user supplied seed.
// Two samplers with the same seed output the same stream.
//
// Panics when blake2b initialization fails.
func NewUniformSamplerWithSeed(seed []byte) *UniformSampler {
	prng, err := blake2b.NewXOF(blake2b.OutputLengthUnknown, nil)
	if err != nil {
		panic(err)
	}

	if _, err = prng.Write(seed); err != nil {
		panic(err)
	}

	return &UniformSampler{
		prng: prng,
		ptr:  bufSize,
	}
}

// NewExpander creates a UniformSampler expanding a public seed
// into the stream identified by label.
// Distinct labels give independent streams.
func NewExpander(seed []byte, label string) *UniformSampler {
	hasher := blake3.New()
	hasher.Write([]byte(label))
	hasher.Write([]byte{0})
	hasher.Write(seed)

	return &UniformSampler{
		prng: hasher.Digest(),
		ptr:  bufSize,
	}
}

func (s *UniformSampler) refill() {
	if _, err := io.ReadFull(s.prng, s.buf[:]); err != nil {
		panic(err)
	}
	s.ptr = 0
}

// Read implements the [io.Reader] interface.
// It never returns an error.
func (s *UniformSampler) Read(p []byte) (n int, err error) {
	for n < len(p) {
		if s.ptr == bufSize {
			s.refill()
		}
		c := copy(p[n:], s.buf[s.ptr:])
		s.ptr += c
		n += c
	}
	return n, nil
}

// Sample uniformly samples a random 64-bit integer.
func (s *UniformSampler) Sample() uint64 {
	if s.ptr+8 > bufSize {
		s.refill()
	}

	var res uint64
	res |= uint64(s.buf[s.ptr+0])
	res |= uint64(s.buf[s.ptr+1]) << 8
	res |= uint64(s.buf[s.ptr+2]) << 16
	res |= uint64(s.buf[s.ptr+3]) << 24
	res |= uint64(s.buf[s.ptr+4]) << 32
	res |= uint64(s.buf[s.ptr+5]) << 40
	res |= uint64(s.buf[s.ptr+6]) << 48
	res |= uint64(s.buf[s.ptr+7]) << 56
	s.ptr += 8

	return res
}

// SampleN uniformly samples a random integer in [0, N).
func (s *UniformSampler) SampleN(N uint64) uint64 {
	bound := math.MaxUint64 - (math.MaxUint64 % N)
	for {
		res := s.Sample()
		if res < bound {
			return res % N
		}
	}
}

// SampleTernary samples uniformly from {-1, 0, 1}.
func (s *UniformSampler) SampleTernary() int64 {
	return int64(s.SampleN(3)) - 1
}

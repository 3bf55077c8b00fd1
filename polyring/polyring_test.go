package polyring_test

import (
	"math/rand"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/montanaflynn/stats"
	"github.com/sp301415/ringo-labrador/csprng"
	"github.com/sp301415/ringo-labrador/num"
	"github.com/sp301415/ringo-labrador/polyring"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// naiveMul computes the negacyclic product term by term.
func naiveMul(p0, p1 polyring.Poly, q uint64) polyring.Poly {
	d := p0.Degree()
	pOut := polyring.NewPoly(d)
	for i := 0; i < d; i++ {
		for j := 0; j < d; j++ {
			c := num.MulMod(p0.Coeffs[i], p1.Coeffs[j], q)
			if i+j < d {
				pOut.Coeffs[i+j] = num.AddMod(pOut.Coeffs[i+j], c, q)
			} else {
				pOut.Coeffs[i+j-d] = num.SubMod(pOut.Coeffs[i+j-d], c, q)
			}
		}
	}
	return pOut
}

func TestNewRing(t *testing.T) {
	t.Run("Presets", func(t *testing.T) {
		assert.False(t, polyring.ParamsToy.Compile().IsNTT())
		assert.True(t, polyring.ParamsD64Q12289.Compile().IsNTT())
		assert.True(t, polyring.ParamsD64KoalaBear.Compile().IsNTT())
		assert.Equal(t, uint64(2130706433), polyring.ParamsD64KoalaBear.Modulus)
	})

	t.Run("Invalid", func(t *testing.T) {
		for _, lit := range []polyring.ParametersLiteral{
			{Degree: 0, Modulus: 12289},
			{Degree: 3, Modulus: 12289},
			{Degree: 4, Modulus: 12288},
			{Degree: 4, Modulus: 2},
			{Degree: 4, Modulus: 1 << 62},
		} {
			_, err := polyring.NewRing(lit.Degree, lit.Modulus)
			assert.ErrorIs(t, err, polyring.ErrInvalidParameters)
			assert.Panics(t, func() { lit.Compile() })
		}
	})

	t.Run("SchoolbookFallback", func(t *testing.T) {
		r, err := polyring.NewRing(8, 12289)
		require.NoError(t, err)
		assert.False(t, r.IsNTT())
	})
}

func TestArithmetic(t *testing.T) {
	us := csprng.NewUniformSamplerWithSeed([]byte("polyring arithmetic"))

	for _, lit := range []polyring.ParametersLiteral{
		polyring.ParamsToy,
		{Degree: 8, Modulus: 12289},
		polyring.ParamsD64Q12289,
		polyring.ParamsD64KoalaBear,
	} {
		r := lit.Compile()
		q := r.Modulus()

		p0 := r.SampleUniform(us)
		p1 := r.SampleUniform(us)

		t.Run("Mul", func(t *testing.T) {
			assert.Equal(t, naiveMul(p0, p1, q), r.Mul(p0, p1))

			pOut := p0.Copy()
			r.MulAssign(pOut, p1, pOut)
			assert.Equal(t, naiveMul(p0, p1, q), pOut)
		})

		t.Run("ShallowCopy", func(t *testing.T) {
			assert.Equal(t, r.Mul(p0, p1), r.ShallowCopy().Mul(p0, p1))
		})

		t.Run("AddSubNeg", func(t *testing.T) {
			sum := r.Add(p0, p1)
			assert.Equal(t, p0, r.Sub(sum, p1))
			assert.True(t, r.Add(p0, r.Neg(p0)).IsZero())
		})

		t.Run("MulAddSub", func(t *testing.T) {
			acc := p0.Copy()
			r.MulAddAssign(p0, p1, acc)
			r.MulSubAssign(p0, p1, acc)
			assert.Equal(t, p0, acc)
		})

		t.Run("ScalarMul", func(t *testing.T) {
			c := us.SampleN(q)
			assert.Equal(t, r.Mul(p0, r.NewConstant(c)), r.ScalarMul(p0, c))

			acc := r.NewPoly()
			r.ScalarMulAddAssign(p0, c, acc)
			assert.Equal(t, r.ScalarMul(p0, c), acc)
		})

		t.Run("Conjugate", func(t *testing.T) {
			prod := r.Mul(r.Conjugate(p0), p1)
			assert.Equal(t, r.CoeffInnerProduct(p0, p1), prod.ConstantCoeff())
			assert.Equal(t, p0, r.Conjugate(r.Conjugate(p0)))

			inPlace := p0.Copy()
			r.ConjugateAssign(inPlace, inPlace)
			assert.Equal(t, r.Conjugate(p0), inPlace)
		})
	}
}

func TestNorms(t *testing.T) {
	r := polyring.ParametersLiteral{Degree: 4, Modulus: 12289}.Compile()
	p := r.NewPolyFromInt64([]int64{1, -2, 3, 0})

	assert.Equal(t, uint64(14), r.NormSq(p))
	assert.Equal(t, uint64(3), r.Linf(p))
	assert.Equal(t, uint64(28), r.VectorNormSq([]polyring.Poly{p, p}))

	big := polyring.ParamsD64KoalaBear.Compile()
	huge := big.NewPoly()
	for i := range huge.Coeffs {
		huge.Coeffs[i] = big.Modulus() / 2
	}
	assert.Equal(t, ^uint64(0), big.VectorNormSq([]polyring.Poly{huge, huge, huge, huge}))
}

func TestDecompose(t *testing.T) {
	r := polyring.ParamsD64Q12289.Compile()
	q := r.Modulus()

	properties := gopter.NewProperties(nil)
	properties.Property("Recompose inverts Decompose", prop.ForAll(
		func(seed int64, base uint64, digits int) bool {
			rng := rand.New(rand.NewSource(seed))
			p := r.NewPoly()
			for i := range p.Coeffs {
				p.Coeffs[i] = uint64(rng.Int63n(int64(q)))
			}

			dcmp := r.Decompose(p, base, digits)
			if !r.Recompose(dcmp, base).Equal(p) {
				return false
			}
			for l := 0; l < digits-1; l++ {
				if r.Linf(dcmp[l]) > base/2 {
					return false
				}
			}
			return true
		},
		gen.Int64(),
		gen.UInt64Range(3, 15).SuchThat(func(b uint64) bool { return b%2 == 1 }),
		gen.IntRange(1, 12),
	))
	properties.TestingRun(t)

	t.Run("Digits", func(t *testing.T) {
		p := r.NewPolyFromInt64([]int64{13, -13, 4})
		dcmp := r.Decompose(p, 3, 3)
		assert.Equal(t, r.NewPolyFromInt64([]int64{1, -1, 1}), dcmp[0])
		assert.Equal(t, r.NewPolyFromInt64([]int64{1, -1, 1}), dcmp[1])
		assert.Equal(t, r.NewPolyFromInt64([]int64{1, -1, 0}), dcmp[2])
	})

	t.Run("GadgetPowers", func(t *testing.T) {
		assert.Equal(t, []uint64{1, 3, 9, 27}, r.GadgetPowers(3, 4))
	})
}

func TestEncode(t *testing.T) {
	r := polyring.ParamsD64Q12289.Compile()
	us := csprng.NewUniformSamplerWithSeed([]byte("polyring encode"))
	v := []polyring.Poly{r.SampleUniform(us), r.SampleUniform(us), r.SampleUniform(us)}

	t.Run("RoundTrip", func(t *testing.T) {
		buf := r.AppendVector(nil, v)
		assert.Len(t, buf, 3*r.EncodedSize())

		vOut, err := r.DecodeVector(buf, 3)
		require.NoError(t, err)
		assert.True(t, polyring.EqualVector(v, vOut))
	})

	t.Run("NonCanonical", func(t *testing.T) {
		buf := r.AppendVector(nil, v)
		buf[0], buf[1] = 0xff, 0xff
		_, err := r.DecodeVector(buf, 3)
		assert.ErrorIs(t, err, polyring.ErrNonCanonical)
	})

	t.Run("Length", func(t *testing.T) {
		buf := r.AppendVector(nil, v)
		_, err := r.DecodeVector(buf[1:], 3)
		assert.ErrorIs(t, err, polyring.ErrNonCanonical)
	})
}

func TestSymmetricMatrix(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("Unpack then PackLower is identity", prop.ForAll(
		func(n int, seed int64) bool {
			rng := rand.New(rand.NewSource(seed))
			data := make([]int64, polyring.PackedSize(n))
			for i := range data {
				data[i] = rng.Int63()
			}

			m, err := polyring.NewSymmetricMatrixFromPacked(n, data)
			if err != nil {
				return false
			}
			m2, err := polyring.PackLower(m.Unpack())
			if err != nil || m2.Size() != n {
				return false
			}
			for i := range data {
				if m2.Packed()[i] != data[i] {
					return false
				}
			}
			return true
		},
		gen.IntRange(0, 16),
		gen.Int64(),
	))

	properties.Property("At is symmetric", prop.ForAll(
		func(n int, seed int64) bool {
			rng := rand.New(rand.NewSource(seed))
			m := polyring.NewSymmetricMatrix[int64](n)
			for i := 0; i < n; i++ {
				for j := 0; j <= i; j++ {
					m.Set(i, j, rng.Int63())
				}
			}
			for i := 0; i < n; i++ {
				for j := 0; j < n; j++ {
					if m.At(i, j) != m.At(j, i) {
						return false
					}
				}
			}
			return len(m.Packed()) == n*(n+1)/2
		},
		gen.IntRange(0, 16),
		gen.Int64(),
	))

	properties.TestingRun(t)

	t.Run("InvalidPacked", func(t *testing.T) {
		_, err := polyring.NewSymmetricMatrixFromPacked(3, make([]int, 5))
		assert.Error(t, err)
		_, err = polyring.PackLower([][]int{{1, 2}, {3}})
		assert.Error(t, err)
	})

	t.Run("Range", func(t *testing.T) {
		m := polyring.NewSymmetricMatrix[int](3)
		var order [][2]int
		m.Range(func(i, j int, _ int) { order = append(order, [2]int{i, j}) })
		assert.Equal(t, [][2]int{{0, 0}, {1, 0}, {1, 1}, {2, 0}, {2, 1}, {2, 2}}, order)
	})
}

func TestInnerProducts(t *testing.T) {
	r := polyring.ParamsD64Q12289.Compile()
	us := csprng.NewUniformSamplerWithSeed([]byte("polyring inner products"))

	s := make([][]polyring.Poly, 5)
	for i := range s {
		s[i] = r.NewVector(3)
		for j := range s[i] {
			r.SampleTernaryAssign(us, s[i][j])
		}
	}

	ips := r.InnerProducts(s)
	assert.Equal(t, len(s), ips.Size())
	for i := range s {
		for j := range s {
			assert.Equal(t, r.InnerProduct(s[i], s[j]), ips.At(i, j))
		}
	}
}

func TestChallengeSets(t *testing.T) {
	r := polyring.ParamsD64Q12289.Compile()
	us := csprng.NewUniformSamplerWithSeed([]byte("polyring challenges"))
	q := r.Modulus()

	tests := []struct {
		name    string
		set     polyring.ChallengeSet
		maxAbs  uint64
		varSum  float64
		samples int
	}{
		{"WeightedTernary", polyring.WeightedTernary{}, 1, 32, 2000},
		{"FoldingChallenges", polyring.FoldingChallenges{}, 2, 71, 2000},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.varSum, tc.set.VarianceSum(r.Degree()))
			assert.Equal(t, r.Degree(), tc.set.ByteSize(r.Degree()))

			coeffs := make([]float64, 0, tc.samples*r.Degree())
			buf := make([]byte, tc.set.ByteSize(r.Degree()))
			c := r.NewPoly()
			for i := 0; i < tc.samples; i++ {
				_, _ = us.Read(buf)
				tc.set.FromRandomBytesAssign(r, buf, c)
				assert.LessOrEqual(t, r.Linf(c), tc.maxAbs)
				for _, x := range c.Coeffs {
					coeffs = append(coeffs, float64(num.Balanced(x, q)))
				}
			}

			variance, err := stats.PopulationVariance(coeffs)
			require.NoError(t, err)
			assert.InDelta(t, tc.varSum/float64(r.Degree()), variance, 0.05)
		})
	}

	t.Run("WeightedTernaryBytes", func(t *testing.T) {
		toy := polyring.ParametersLiteral{Degree: 4, Modulus: 12289}.Compile()
		c := toy.NewPoly()
		polyring.WeightedTernary{}.FromRandomBytesAssign(toy, []byte{0, 1, 2, 3}, c)
		assert.Equal(t, toy.NewPolyFromInt64([]int64{0, 1, -1, 0}), c)
	})

	t.Run("FoldingBytes", func(t *testing.T) {
		toy := polyring.ParametersLiteral{Degree: 4, Modulus: 12289}.Compile()
		c := toy.NewPoly()
		polyring.FoldingChallenges{}.FromRandomBytesAssign(toy, []byte{22, 23, 54 | 0x40, 63}, c)
		assert.Equal(t, toy.NewPolyFromInt64([]int64{0, 1, -2, 2}), c)
	})
}

func TestScalarFromBytes(t *testing.T) {
	r := polyring.ParamsToy.Compile()
	buf := make([]byte, polyring.ScalarByteSize)
	buf[0] = 1
	assert.Equal(t, uint64(1), r.ScalarFromBytes(buf))

	buf[8] = 1
	assert.Equal(t, (num.ModExp(2, 64, r.Modulus())+1)%r.Modulus(), r.ScalarFromBytes(buf))
	assert.Equal(t, polyring.ScalarByteSize, r.UniformByteSize())
}

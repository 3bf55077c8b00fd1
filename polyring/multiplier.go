package polyring

import (
	"github.com/sp301415/ringo-labrador/num"
	"github.com/tuneinsight/lattigo/v6/ring"
)

// Multiplier multiplies two polynomials in Z_q[X]/(X^d+1).
type Multiplier interface {
	// MulAssign assigns pOut = p0 * p1.
	// pOut may alias p0 or p1.
	MulAssign(p0, p1, pOut Poly)
	// ShallowCopy returns a copy of the Multiplier that is safe
	// to use concurrently with the original.
	ShallowCopy() Multiplier
}

// isNTTFriendly checks if X^d+1 splits completely modulo q.
func isNTTFriendly(degree int, modulus uint64) bool {
	return degree >= 16 && (modulus-1)%uint64(2*degree) == 0 && modulus < 1<<61
}

type schoolbookMultiplier struct {
	degree  int
	modulus uint64

	buf []uint64
}

func newSchoolbookMultiplier(degree int, modulus uint64) *schoolbookMultiplier {
	return &schoolbookMultiplier{
		degree:  degree,
		modulus: modulus,
		buf:     make([]uint64, degree),
	}
}

func (m *schoolbookMultiplier) MulAssign(p0, p1, pOut Poly) {
	for i := range m.buf {
		m.buf[i] = 0
	}

	for i := 0; i < m.degree; i++ {
		if p0.Coeffs[i] == 0 {
			continue
		}
		for j := 0; j < m.degree; j++ {
			c := num.MulMod(p0.Coeffs[i], p1.Coeffs[j], m.modulus)
			if k := i + j; k < m.degree {
				m.buf[k] = num.AddMod(m.buf[k], c, m.modulus)
			} else {
				m.buf[k-m.degree] = num.SubMod(m.buf[k-m.degree], c, m.modulus)
			}
		}
	}

	copy(pOut.Coeffs, m.buf)
}

func (m *schoolbookMultiplier) ShallowCopy() Multiplier {
	return newSchoolbookMultiplier(m.degree, m.modulus)
}

// nttMultiplier multiplies through lattigo's negacyclic NTT.
type nttMultiplier struct {
	ringQ *ring.Ring

	buf0 ring.Poly
	buf1 ring.Poly
}

func newNTTMultiplier(degree int, modulus uint64) (*nttMultiplier, error) {
	ringQ, err := ring.NewRing(degree, []uint64{modulus})
	if err != nil {
		return nil, err
	}

	return &nttMultiplier{
		ringQ: ringQ,
		buf0:  ringQ.NewPoly(),
		buf1:  ringQ.NewPoly(),
	}, nil
}

func (m *nttMultiplier) MulAssign(p0, p1, pOut Poly) {
	copy(m.buf0.Coeffs[0], p0.Coeffs)
	copy(m.buf1.Coeffs[0], p1.Coeffs)

	m.ringQ.NTT(m.buf0, m.buf0)
	m.ringQ.NTT(m.buf1, m.buf1)
	m.ringQ.MForm(m.buf0, m.buf0)
	m.ringQ.MulCoeffsMontgomery(m.buf0, m.buf1, m.buf0)
	m.ringQ.INTT(m.buf0, m.buf0)

	copy(pOut.Coeffs, m.buf0.Coeffs[0])
}

func (m *nttMultiplier) ShallowCopy() Multiplier {
	return &nttMultiplier{
		ringQ: m.ringQ,
		buf0:  m.ringQ.NewPoly(),
		buf1:  m.ringQ.NewPoly(),
	}
}

package labrador

import (
	"runtime"

	"github.com/sp301415/ringo-labrador/polyring"
	"golang.org/x/sync/errgroup"
)

// Commiter computes the inner and outer commitments of a CRS.
//
// Commiter is not safe for concurrent use.
type Commiter struct {
	crs  *CRS
	ring *polyring.Ring
}

// NewCommiter creates a new Commiter.
func NewCommiter(crs *CRS) *Commiter {
	return &Commiter{
		crs:  crs,
		ring: crs.ring.ShallowCopy(),
	}
}

// ShallowCopy returns a copy of the Commiter that is thread-safe.
func (c *Commiter) ShallowCopy() *Commiter {
	return &Commiter{
		crs:  c.crs,
		ring: c.ring.ShallowCopy(),
	}
}

// InnerCommitAssign assigns tOut = A * s.
func (c *Commiter) InnerCommitAssign(s, tOut []polyring.Poly) {
	c.ring.MulMatVecAssign(c.crs.a, s, tOut)
}

// InnerCommitParallel returns t_i = A * s_i for every i, in parallel.
func (c *Commiter) InnerCommitParallel(s [][]polyring.Poly) [][]polyring.Poly {
	t := c.ring.NewMatrix(len(s), c.crs.ranks.K)

	var g errgroup.Group
	g.SetLimit(runtime.NumCPU())
	for i := range s {
		g.Go(func() error {
			c.ShallowCopy().InnerCommitAssign(s[i], t[i])
			return nil
		})
	}
	g.Wait()

	return t
}

// OuterCommit1 returns u1 = sum_{i, l} B_il * t_i^(l) + sum_{ij, l} C_ij^(l) * g_ij^(l),
// where tDigits[i][l] is the l-th digit of t_i and gDigits[ij][l] is the l-th digit of g_ij.
func (c *Commiter) OuterCommit1(tDigits [][][]polyring.Poly, gDigits [][]polyring.Poly) []polyring.Poly {
	u1 := c.ring.NewVector(c.crs.ranks.K1)
	for i := range tDigits {
		for l := range tDigits[i] {
			c.ring.MulMatVecAddAssign(c.crs.b[i][l], tDigits[i][l], u1)
		}
	}
	for ij := range gDigits {
		for l := range gDigits[ij] {
			c.ring.MulAddVectorAssign(gDigits[ij][l], c.crs.c[ij][l], u1)
		}
	}
	return u1
}

// OuterCommit2 returns u2 = sum_{ij, l} D_ij^(l) * h_ij^(l),
// where hDigits[ij][l] is the l-th digit of h_ij.
func (c *Commiter) OuterCommit2(hDigits [][]polyring.Poly) []polyring.Poly {
	u2 := c.ring.NewVector(c.crs.ranks.K2)
	for ij := range hDigits {
		for l := range hDigits[ij] {
			c.ring.MulAddVectorAssign(hDigits[ij][l], c.crs.d[ij][l], u2)
		}
	}
	return u2
}

package labrador

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/sp301415/ringo-labrador/estimator"
	"github.com/sp301415/ringo-labrador/principal"
)

// ParameterReport lists every quantity derived by [Setup].
type ParameterReport struct {
	Size       principal.Size
	Degree     int
	Modulus    uint64
	LogModulus float64

	Decomposition Decomposition
	NumAggregs    int
	Ranks         Ranks

	SoundnessCeiling float64
	NextNormBoundSq  float64

	// Inner is the MSIS problem binding the inner commitment.
	Inner estimator.MSIS
	// Outer is the MSIS problem binding the outer commitments.
	Outer estimator.MSIS
	// InnerSecurity and OuterSecurity are the estimated bit security of Inner and Outer.
	// They are NaN if no estimator was configured.
	InnerSecurity float64
	OuterSecurity float64
	// SecurityTarget is the target bit security.
	SecurityTarget float64
}

func newParameterReport(ctx context.Context, crs *CRS, query RankQuery) (ParameterReport, error) {
	k := crs.ranks.K

	rp := ParameterReport{
		Size:       crs.size,
		Degree:     crs.ring.Degree(),
		Modulus:    crs.ring.Modulus(),
		LogModulus: crs.ring.LogModulus(),

		Decomposition: crs.decomposition,
		NumAggregs:    crs.numAggregs,
		Ranks:         crs.ranks,

		SoundnessCeiling: SoundnessCeiling(crs.ring.Modulus()),
		NextNormBoundSq:  crs.nextNormBoundSq,

		Inner: query.Inner.WithN(k).WithLengthBound(query.InnerBound(k)),
		Outer: query.Outer(k).WithN(crs.ranks.K1),

		InnerSecurity:  math.NaN(),
		OuterSecurity:  math.NaN(),
		SecurityTarget: query.SecurityTarget,
	}

	if query.Estimator == nil {
		return rp, nil
	}

	var err error
	if rp.InnerSecurity, err = rp.Inner.SecurityLevel(ctx, query.Estimator); err != nil {
		return ParameterReport{}, err
	}
	if rp.OuterSecurity, err = rp.Outer.SecurityLevel(ctx, query.Estimator); err != nil {
		return ParameterReport{}, err
	}
	return rp, nil
}

// Estimated reports whether the security levels were estimated.
func (rp ParameterReport) Estimated() bool {
	return !math.IsNaN(rp.InnerSecurity)
}

func formatSecurity(lambda float64) string {
	if math.IsNaN(lambda) {
		return "not estimated"
	}
	return fmt.Sprintf("%.1f bits", lambda)
}

// Lines renders the report, one parameter per line.
func (rp ParameterReport) Lines() []string {
	dc := rp.Decomposition
	lines := []string{
		fmt.Sprintf("ring: Z_q[X]/(X^d+1) with q=%d (%.1f bits), d=%d", rp.Modulus, rp.LogModulus, rp.Degree),
		fmt.Sprintf("relation: r=%d, n=%d, beta=%.2f, constraints=%d, constant constraints=%d",
			rp.Size.R, rp.Size.N, math.Sqrt(rp.Size.NormBoundSq), rp.Size.NumConstraints, rp.Size.NumConstantConstraints),
		fmt.Sprintf("b=%d (main decomposition base, s=%.3f)", dc.Base, dc.StdDev),
		fmt.Sprintf("b1=%d, t1=%d (commitment decomposition)", dc.B1, dc.T1),
		fmt.Sprintf("b2=%d, t2=%d (garbage decomposition)", dc.B2, dc.T2),
		fmt.Sprintf("num_aggregs=%d (ceil(128/log q))", rp.NumAggregs),
		fmt.Sprintf("k=%d for %v: %s", rp.Ranks.K, rp.Inner, formatSecurity(rp.InnerSecurity)),
		fmt.Sprintf("k1=k2=%d for %v: %s", rp.Ranks.K1, rp.Outer, formatSecurity(rp.OuterSecurity)),
		fmt.Sprintf("next beta=%.2f, soundness ceiling=%.2f", math.Sqrt(rp.NextNormBoundSq), rp.SoundnessCeiling),
	}
	if len(dc.Clamped) > 0 {
		lines = append(lines, fmt.Sprintf("clamped to minimum: %s", strings.Join(dc.Clamped, ", ")))
	}
	return lines
}

// String implements [fmt.Stringer].
func (rp ParameterReport) String() string {
	return strings.Join(rp.Lines(), "\n")
}

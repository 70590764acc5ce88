// Package calc is the dual-path Level 1 calculator. Every safety formula is
// evaluated by two independent implementations whose results must reconcile
// before a number leaves this package.
package calc

import (
	"mechintegrity/domain/core"
	"mechintegrity/domain/dec"
)

// Params are the calculator policy constants.
type Params struct {
	// RelTol is the dual-path reconciliation relative tolerance (0.001).
	RelTol dec.Dec
	// BisectTol is the absolute bisection tolerance (1e-6 in, or psi for
	// the pressure solve).
	BisectTol dec.Dec
	// MaxIterations caps each bisection (200).
	MaxIterations int
	// ThickWallRatio is the t/R bound beyond which Level 1 thin-wall
	// formulas do not apply (0.1).
	ThickWallRatio dec.Dec
}

// Input is one calculation request. All values already validated and in
// consistent units (psi, inches).
type Input struct {
	// Pressure is the design pressure.
	Pressure dec.Dec
	// InternalRadius is ID/2.
	InternalRadius dec.Dec
	// WallThickness is the as-designed (OD − ID)/2, used only for the
	// thick-wall regime check.
	WallThickness dec.Dec
	// AllowableStress at design temperature.
	AllowableStress dec.Dec
	// JointEfficiency E.
	JointEfficiency dec.Dec
	// NominalThickness bounds the t_min bisection bracket.
	NominalThickness dec.Dec
	// MeasuredMin is the governing current reading.
	MeasuredMin dec.Dec
	// FCA is the future corrosion allowance (rate × horizon).
	FCA dec.Dec
}

// PathPair records both path values for one formula, kept for diagnostics
// and for the divergence report.
type PathPair struct {
	Primary   dec.Dec `json:"primary"`
	Secondary dec.Dec `json:"secondary"`
	// Accepted is min(primary, secondary): the conservative pick.
	Accepted dec.Dec `json:"accepted"`
}

// Output is the reconciled calculator result. TMin, MAWP and RSF are
// rounded at their presentation boundaries; the pairs retain working
// precision.
type Output struct {
	TMin dec.Dec `json:"t_min_in"`
	MAWP dec.Dec `json:"mawp_psi"`
	RSF  dec.Dec `json:"rsf"`
	// TEff is measuredMin − FCA as used by the MAWP and RSF paths.
	TEff dec.Dec `json:"t_eff_in"`

	TMinPaths PathPair `json:"t_min_paths"`
	MAWPPaths PathPair `json:"mawp_paths"`
	RSFPaths  PathPair `json:"rsf_paths"`

	// Notes carry non-fatal calculation findings (consumed FCA, clamped
	// ratios) for the orchestrator to turn into warnings.
	Notes []string `json:"notes,omitempty"`
}

// Level1Cylinder runs the full dual-path Level 1 assessment for a
// cylindrical shell with circumferential stress governing. Stateless; one
// call per job.
func Level1Cylinder(in Input, p Params) (*Output, error) {
	ratio, err := in.WallThickness.Div(in.InternalRadius)
	if err != nil {
		return nil, err
	}
	if ratio.GreaterThan(p.ThickWallRatio) {
		return nil, core.NewErrorf(core.KindThickWallOutOfScope,
			"t/R = %s exceeds %s: thin-wall Level 1 formulas do not apply",
			ratio.String(), p.ThickWallRatio.String()).
			WithField("t_over_r", ratio.String())
	}

	out := &Output{}

	tMinP, err := tMinClosedForm(in)
	if err != nil {
		return nil, err
	}
	tMinS, err := tMinBisection(in, p)
	if err != nil {
		return nil, err
	}
	tMin, err := reconcile("t_min", tMinP, tMinS, p.RelTol)
	if err != nil {
		return nil, err
	}
	out.TMinPaths = PathPair{Primary: tMinP, Secondary: tMinS, Accepted: tMin}
	out.TMin = tMin.RoundThickness()

	out.TEff = in.MeasuredMin.Sub(in.FCA)
	if !out.TEff.IsPositive() {
		// The projected corrosion consumes the full measured wall. No
		// strength remains to reconcile; both downstream figures are zero.
		out.MAWP = dec.Zero()
		out.RSF = dec.Zero()
		out.MAWPPaths = PathPair{}
		out.RSFPaths = PathPair{}
		out.Notes = append(out.Notes,
			"future corrosion allowance consumes the measured wall; MAWP and RSF are zero")
		return out, nil
	}

	mawpP, err := mawpClosedForm(in, out.TEff)
	if err != nil {
		return nil, err
	}
	mawpS, err := mawpBisection(in, out.TEff, p)
	if err != nil {
		return nil, err
	}
	mawp, err := reconcile("mawp", mawpP, mawpS, p.RelTol)
	if err != nil {
		return nil, err
	}
	out.MAWPPaths = PathPair{Primary: mawpP, Secondary: mawpS, Accepted: mawp}
	out.MAWP = mawp.RoundPressure()

	rsfP, err := rsfDirect(in)
	if err != nil {
		return nil, err
	}
	rsfS, err := rsfBisection(in, p)
	if err != nil {
		return nil, err
	}
	rsf, err := reconcile("rsf", rsfP, rsfS, p.RelTol)
	if err != nil {
		return nil, err
	}
	out.RSFPaths = PathPair{Primary: rsfP, Secondary: rsfS, Accepted: rsf}
	out.RSF = rsf.RoundRatio()

	return out, nil
}

// reconcile applies the dual-path protocol: within the relative tolerance
// the conservative (lower) value is accepted, otherwise the calculation
// fails with both values in the diagnostic payload.
func reconcile(name string, primary, secondary, relTol dec.Dec) (dec.Dec, error) {
	ok, err := dec.WithinRel(primary, secondary, relTol)
	if err != nil {
		return dec.Dec{}, err
	}
	if !ok {
		rd, rdErr := dec.RelDiff(primary, secondary)
		rdStr := "unavailable"
		if rdErr == nil {
			rdStr = rd.String()
		}
		return dec.Dec{}, core.NewErrorf(core.KindDualPathDivergence,
			"%s paths diverged beyond %s relative tolerance", name, relTol.String()).
			WithField("formula", name).
			WithField("primary", primary.String()).
			WithField("secondary", secondary.String()).
			WithField("relative_difference", rdStr)
	}
	return dec.Min(primary, secondary), nil
}

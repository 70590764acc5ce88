package calc

import (
	"mechintegrity/domain/core"
	"mechintegrity/domain/dec"
)

// ASME VIII Div.1 UG-27(c)(1), circumferential stress, thin wall.

var (
	pointSix = dec.MustParse("0.6")
	two      = dec.FromInt(2)
)

// tMinClosedForm computes t_min = P·R / (S·E − 0.6·P).
func tMinClosedForm(in Input) (dec.Dec, error) {
	num := in.Pressure.Mul(in.InternalRadius)
	den := in.AllowableStress.Mul(in.JointEfficiency).Sub(pointSix.Mul(in.Pressure))
	if !den.IsPositive() {
		return dec.Dec{}, core.NewErrorf(core.KindArithmeticFailure,
			"S·E − 0.6·P is not positive (S·E=%s, P=%s): pressure beyond material capability",
			in.AllowableStress.Mul(in.JointEfficiency).String(), in.Pressure.String())
	}
	return num.Div(den)
}

// tMinBisection solves P = S·E·t / (R + 0.6·t) for t. The residual is
// strictly increasing in t, so a sign change over the bracket pins the
// root. Independent of the closed form: no algebraic rearrangement shared.
func tMinBisection(in Input, p Params) (dec.Dec, error) {
	se := in.AllowableStress.Mul(in.JointEfficiency)
	f := func(t dec.Dec) (dec.Dec, error) {
		den := in.InternalRadius.Add(pointSix.Mul(t))
		pt, err := se.Mul(t).Div(den)
		if err != nil {
			return dec.Dec{}, err
		}
		return pt.Sub(in.Pressure), nil
	}
	lo := dec.MustParse("0.001")
	hi := in.NominalThickness.Mul(two)
	return bisect("t_min", f, lo, hi, p.BisectTol, p.MaxIterations)
}

// mawpClosedForm computes MAWP = S·E·t_eff / (R + 0.6·t_eff).
func mawpClosedForm(in Input, tEff dec.Dec) (dec.Dec, error) {
	se := in.AllowableStress.Mul(in.JointEfficiency)
	den := in.InternalRadius.Add(pointSix.Mul(tEff))
	return se.Mul(tEff).Div(den)
}

// mawpBisection solves t_min(P) = t_eff for P, reusing the closed-form
// t_min expression as the residual. The upper bracket sits just below the
// pressure at which S·E − 0.6·P vanishes, where required thickness grows
// without bound.
func mawpBisection(in Input, tEff dec.Dec, p Params) (dec.Dec, error) {
	se := in.AllowableStress.Mul(in.JointEfficiency)
	f := func(press dec.Dec) (dec.Dec, error) {
		den := se.Sub(pointSix.Mul(press))
		tm, err := press.Mul(in.InternalRadius).Div(den)
		if err != nil {
			return dec.Dec{}, err
		}
		return tm.Sub(tEff), nil
	}
	lo := dec.MustParse("0.001")
	limit, err := se.Div(pointSix)
	if err != nil {
		return dec.Dec{}, err
	}
	hi := limit.Mul(dec.MustParse("0.999999"))
	return bisect("mawp", f, lo, hi, p.BisectTol, p.MaxIterations)
}

// RSF, API 579 Part 5 Level 1 thickness basis:
//
//	RSF = (t_mm − FCA) / (t_nom − FCA)
//
// One formula, two methods. FCA enters numerator and denominator
// identically in both paths; any asymmetry between them is a defect.

// rsfDirect evaluates the RSF expression directly.
func rsfDirect(in Input) (dec.Dec, error) {
	num := in.MeasuredMin.Sub(in.FCA)
	den := in.NominalThickness.Sub(in.FCA)
	if !den.IsPositive() {
		return dec.Dec{}, core.NewErrorf(core.KindArithmeticFailure,
			"RSF denominator t_nom − FCA is not positive (t_nom=%s, FCA=%s)",
			in.NominalThickness.String(), in.FCA.String())
	}
	return num.Div(den)
}

// rsfBisection finds the same RSF as the root of
// x·(t_nom − FCA) − (t_mm − FCA) = 0, bisecting on x. A deliberately
// different evaluation route: multiplication against the candidate instead
// of division, so a defect in either route cannot cancel out.
func rsfBisection(in Input, p Params) (dec.Dec, error) {
	num := in.MeasuredMin.Sub(in.FCA)
	den := in.NominalThickness.Sub(in.FCA)
	if !den.IsPositive() {
		return dec.Dec{}, core.NewErrorf(core.KindArithmeticFailure,
			"RSF denominator t_nom − FCA is not positive (t_nom=%s, FCA=%s)",
			in.NominalThickness.String(), in.FCA.String())
	}
	f := func(x dec.Dec) (dec.Dec, error) {
		return x.Mul(den).Sub(num), nil
	}
	// RSF of a standing shell lives well inside (0, 10).
	return bisect("rsf", f, dec.Zero(), dec.FromInt(10), p.BisectTol, p.MaxIterations)
}

// bisect finds the root of a strictly increasing residual over [lo, hi] to
// the absolute tolerance, capped at maxIter iterations.
func bisect(name string, f func(dec.Dec) (dec.Dec, error), lo, hi, tol dec.Dec, maxIter int) (dec.Dec, error) {
	flo, err := f(lo)
	if err != nil {
		return dec.Dec{}, err
	}
	fhi, err := f(hi)
	if err != nil {
		return dec.Dec{}, err
	}
	if flo.Sign() > 0 || fhi.Sign() < 0 {
		return dec.Dec{}, core.NewErrorf(core.KindArithmeticFailure,
			"%s bisection bracket [%s, %s] does not contain a root", name, lo.String(), hi.String()).
			WithField("f_lo", flo.String()).
			WithField("f_hi", fhi.String())
	}
	for i := 0; i < maxIter; i++ {
		mid, err := lo.Add(hi).Div(two)
		if err != nil {
			return dec.Dec{}, err
		}
		fm, err := f(mid)
		if err != nil {
			return dec.Dec{}, err
		}
		if fm.Sign() <= 0 {
			lo = mid
		} else {
			hi = mid
		}
		if hi.Sub(lo).Cmp(tol) <= 0 {
			return lo.Add(hi).Div(two)
		}
	}
	return dec.Dec{}, core.NewErrorf(core.KindArithmeticFailure,
		"%s bisection did not converge within %d iterations", name, maxIter)
}

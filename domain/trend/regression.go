package trend

import (
	"mechintegrity/domain/dec"
	"mechintegrity/domain/inspection"
)

// regression fits thickness = intercept + slope·years by exact-decimal
// least squares and derives the rate band from slope ± t·SE. The corrosion
// rate is −slope.
func regression(points []inspection.MinimumPoint, p Params) (*Analysis, error) {
	n := len(points)
	nDec := dec.FromInt(int64(n))
	t0 := points[0].Date

	xs := make([]dec.Dec, n)
	ys := make([]dec.Dec, n)
	for i, pt := range points {
		x, err := yearsBetween(t0, pt.Date)
		if err != nil {
			return nil, err
		}
		xs[i] = x
		ys[i] = pt.Measured
	}

	sumX, sumY := dec.Zero(), dec.Zero()
	for i := 0; i < n; i++ {
		sumX = sumX.Add(xs[i])
		sumY = sumY.Add(ys[i])
	}
	meanX, err := sumX.Div(nDec)
	if err != nil {
		return nil, err
	}
	meanY, err := sumY.Div(nDec)
	if err != nil {
		return nil, err
	}

	sxx, sxy, syy := dec.Zero(), dec.Zero(), dec.Zero()
	for i := 0; i < n; i++ {
		dx := xs[i].Sub(meanX)
		dy := ys[i].Sub(meanY)
		sxx = sxx.Add(dx.Mul(dx))
		sxy = sxy.Add(dx.Mul(dy))
		syy = syy.Add(dy.Mul(dy))
	}

	slope, err := sxy.Div(sxx)
	if err != nil {
		return nil, err
	}
	intercept := meanY.Sub(slope.Mul(meanX))

	// Residual sum of squares and R².
	ssRes := dec.Zero()
	for i := 0; i < n; i++ {
		fit := intercept.Add(slope.Mul(xs[i]))
		e := ys[i].Sub(fit)
		ssRes = ssRes.Add(e.Mul(e))
	}
	r2 := dec.One()
	if !syy.IsZero() {
		frac, err := ssRes.Div(syy)
		if err != nil {
			return nil, err
		}
		r2 = dec.One().Sub(frac)
	}

	// SE(slope) = sqrt( (SSres/(n−2)) / Sxx ).
	variance, err := ssRes.Div(dec.FromInt(int64(n - 2)))
	if err != nil {
		return nil, err
	}
	seSq, err := variance.Div(sxx)
	if err != nil {
		return nil, err
	}
	se, err := seSq.Sqrt()
	if err != nil {
		return nil, err
	}

	k := tFactor(n, p.BandConfidence)
	rate := slope.Neg()
	band := k.Mul(se)

	reg := &Regression{
		Slope:     slope,
		Intercept: intercept,
		RSquared:  r2,
		StdError:  se,
		TFactor:   k,
		Points:    n,
	}
	a := &Analysis{
		Rates: Rates{
			// Conservative assumes the fastest metal loss the band allows.
			Conservative: rate.Add(band),
			Average:      rate,
			Optimistic:   rate.Sub(band),
			Method:       "regression",
		},
		Regression: reg,
	}

	// A poor fit means the single-rate model is questionable.
	if r2.LessThan(dec.MustParse("0.5")) {
		a.Findings = append(a.Findings, Finding{
			Code:   "REGRESSION_FIT_POOR",
			Detail: "thickness trend R-squared below 0.5: rate band may understate uncertainty",
		})
	}
	return a, nil
}

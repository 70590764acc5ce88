package trend

import (
	"mechintegrity/domain/core"
	"mechintegrity/domain/dec"
)

// Life is a remaining-life projection. Years is rounded toward zero to one
// fractional digit; Indefinite marks a non-positive corrosion rate, for
// which no finite projection exists (deliberately not an infinity).
type Life struct {
	Years      dec.Dec `json:"years"`
	Indefinite bool    `json:"indefinite"`
	// UnfitHint is set when no corrodible margin remains above t_min.
	UnfitHint bool `json:"unfit_hint"`
}

// RemainingLife projects (measuredMin − tMin) / rate.
//
//	margin ≤ 0      → 0.0 years with the Unfit hint
//	rate ≤ 0        → indefinite, with a finding
//	rate implausible → fatal; never a numeric answer
//	result > cap    → capped, with a finding
func RemainingLife(measuredMin, tMin, rate dec.Dec, p Params) (Life, []Finding, error) {
	var findings []Finding

	if rate.GreaterThan(p.ImplausibleRateFatal) {
		return Life{}, nil, core.NewErrorf(core.KindInputInvalid,
			"corrosion rate %s in/yr is physically implausible (limit %s)",
			rate.String(), p.ImplausibleRateFatal.String()).
			WithField("rate_in_per_year", rate.String())
	}
	if rate.GreaterThan(p.ImplausibleRateWarn) {
		findings = append(findings, Finding{
			Code:   "RATE_SUSPICIOUS",
			Detail: "corrosion rate " + rate.String() + " in/yr exceeds " + p.ImplausibleRateWarn.String() + " in/yr",
		})
	}

	margin := measuredMin.Sub(tMin)
	if !margin.IsPositive() {
		return Life{Years: dec.Zero().RoundLife(), UnfitHint: true}, findings, nil
	}

	if !rate.IsPositive() {
		findings = append(findings, Finding{
			Code:   "RATE_NON_POSITIVE",
			Detail: "corrosion rate is zero or negative: remaining life reported as indefinite",
		})
		return Life{Indefinite: true}, findings, nil
	}

	years, err := margin.Div(rate)
	if err != nil {
		return Life{}, nil, err
	}
	years = years.RoundLife()
	if years.GreaterThan(p.LifeCapYears) {
		findings = append(findings, Finding{
			Code:   "LIFE_CAPPED",
			Detail: "projected life exceeds " + p.LifeCapYears.String() + " years and is reported at the cap",
		})
		years = p.LifeCapYears.RoundLife()
	}
	return Life{Years: years}, findings, nil
}

// Package trend estimates corrosion rates from inspection history and
// projects remaining life. All safety arithmetic stays in the decimal
// kernel; the only float-born quantity is the dimensionless Student-t
// factor of the confidence band.
package trend

import (
	"time"

	"gonum.org/v1/gonum/stat/distuv"

	"mechintegrity/domain/core"
	"mechintegrity/domain/dec"
	"mechintegrity/domain/inspection"
)

// Params are the analyzer policy constants.
type Params struct {
	// ImplausibleRateFatal: a computed rate above this (in/yr) is
	// physically impossible and fails the job (0.5).
	ImplausibleRateFatal dec.Dec
	// ImplausibleRateWarn: a rate above this is suspicious and warned
	// (0.05).
	ImplausibleRateWarn dec.Dec
	// LifeCapYears caps the reported remaining life (100).
	LifeCapYears dec.Dec
	// BandConfidence is the one-sided confidence of the rate band (0.95).
	BandConfidence float64
}

// Finding is a non-fatal analyzer observation, promoted to a result warning
// by the orchestrator.
type Finding struct {
	Code   string
	Detail string
}

// Regression reports the least-squares fit over the thickness series.
// Slope is in inches per year (negative for metal loss).
type Regression struct {
	Slope      dec.Dec `json:"slope_in_per_year"`
	Intercept  dec.Dec `json:"intercept_in"`
	RSquared   dec.Dec `json:"r_squared"`
	StdError   dec.Dec `json:"std_error_in_per_year"`
	TFactor    dec.Dec `json:"t_factor"`
	Points     int     `json:"points"`
}

// Rates carries the corrosion-rate band, in inches per year. The
// conservative figure is always the largest metal-loss rate, so the
// conservative life projection is never longer than the optimistic one.
type Rates struct {
	Conservative dec.Dec `json:"conservative"`
	Average      dec.Dec `json:"average"`
	Optimistic   dec.Dec `json:"optimistic"`
	// Method is "point-to-point" or "regression".
	Method string `json:"method"`
}

// Analysis is the full analyzer output for one series.
type Analysis struct {
	Rates      Rates       `json:"rates"`
	Regression *Regression `json:"regression,omitempty"`
	Findings   []Finding   `json:"-"`
}

var nsPerYear = dec.MustParse("31557600000000000") // 365.25 d of nanoseconds

// yearsBetween returns the exact decimal year span between two instants.
func yearsBetween(from, to time.Time) (dec.Dec, error) {
	ns := dec.FromInt(to.Sub(from).Nanoseconds())
	return ns.Div(nsPerYear)
}

// Analyze estimates the corrosion-rate band from a chronologically ordered
// series of governing thickness points. Two points give a point-to-point
// rate with a degenerate band; three or more give the regression band.
func Analyze(points []inspection.MinimumPoint, p Params) (*Analysis, error) {
	if len(points) < 2 {
		return nil, core.NewError(core.KindInputInvalid,
			"corrosion trend needs at least two inspections")
	}
	for i := 1; i < len(points); i++ {
		if !points[i].Date.After(points[i-1].Date) {
			return nil, core.NewErrorf(core.KindInputInvalid,
				"inspection dates must be strictly increasing (index %d)", i)
		}
	}

	if len(points) == 2 {
		return pointToPoint(points[0], points[1])
	}
	return regression(points, p)
}

// pointToPoint computes rate = (prev − curr) / Δyears with a degenerate
// band: no dispersion information exists, so all three labels coincide.
func pointToPoint(prev, curr inspection.MinimumPoint) (*Analysis, error) {
	dy, err := yearsBetween(prev.Date, curr.Date)
	if err != nil {
		return nil, err
	}
	rate, err := prev.Measured.Sub(curr.Measured).Div(dy)
	if err != nil {
		return nil, err
	}
	a := &Analysis{
		Rates: Rates{
			Conservative: rate,
			Average:      rate,
			Optimistic:   rate,
			Method:       "point-to-point",
		},
	}
	a.Findings = append(a.Findings, Finding{
		Code:   "RATE_BAND_DEGENERATE",
		Detail: "only two inspections: confidence band collapsed to the point-to-point rate",
	})
	return a, nil
}

// Select returns the rate for the requested label.
func (r Rates) Select(label string) dec.Dec {
	switch label {
	case "optimistic":
		return r.Optimistic
	case "average":
		return r.Average
	default:
		return r.Conservative
	}
}

// tFactor returns the one-sided Student-t quantile for the band. The
// quantile originates in float64 (gonum distuv) and is a dimensionless
// factor; it enters the decimal domain once, at 6 declared digits.
func tFactor(n int, confidence float64) dec.Dec {
	t := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: float64(n - 2)}
	return dec.FromFloat(t.Quantile(confidence), 6)
}

package validation

import (
	"fmt"

	"github.com/montanaflynn/stats"

	"mechintegrity/domain/core"
	"mechintegrity/domain/dec"
	"mechintegrity/domain/equipment"
	"mechintegrity/domain/inspection"
)

var nsPerYear = dec.MustParse("31557600000000000") // 365.25 d of nanoseconds

func yearsDec(ns int64) (dec.Dec, error) {
	return dec.FromInt(ns).Div(nsPerYear)
}

// checkRecord validates one inspection record: certification, CML
// uniqueness, and per-reading physical bounds.
func (v *Validator) checkRecord(r *Result, idx int, rec inspection.Record, eq equipment.Equipment) {
	field := fmt.Sprintf("inspections[%d]", idx)

	if !identPattern.MatchString(rec.InspectorCertification) {
		r.fatal("INSPECTOR_CERT_MALFORMED", field+".inspector_certification",
			"inspector certification must match [A-Z0-9-_/ .]{1,64}")
	}
	if len(rec.Readings) == 0 {
		r.fatal("READINGS_EMPTY", field+".readings", "inspection record has no readings")
		return
	}

	seen := map[core.CMLID]bool{}
	var measured []float64
	for i, rd := range rec.Readings {
		rf := fmt.Sprintf("%s.readings[%d]", field, i)
		if !identPattern.MatchString(rd.CMLID.String()) {
			r.fatal("CML_ID_MALFORMED", rf+".cml_id", "CML id must match [A-Z0-9-_/ .]{1,64}")
		}
		if seen[rd.CMLID] {
			r.fatal("CML_ID_DUPLICATE", rf+".cml_id",
				fmt.Sprintf("CML id %q appears more than once in the record", rd.CMLID))
		}
		seen[rd.CMLID] = true

		if !rd.Measured.IsPositive() {
			r.fatal("MEASURED_NOT_POSITIVE", rf+".measured_in", "measured thickness must be positive")
			continue
		}
		if rd.Measured.Cmp(eq.Geometry.InternalDiameter) >= 0 {
			r.fatal("MEASURED_EXCEEDS_BORE", rf+".measured_in",
				fmt.Sprintf("measured %s in is not less than the internal diameter %s in",
					rd.Measured.String(), eq.Geometry.InternalDiameter.String()))
		}
		if rd.PreviousMeasured != nil && rd.PreviousMeasured.LessThan(rd.Measured) {
			r.warn("THICKNESS_INCREASED", rf,
				fmt.Sprintf("previous reading %s in is below the current %s in: probe relocation or scale",
					rd.PreviousMeasured.String(), rd.Measured.String()))
		}
		// Advisory only: the spread heuristic never feeds a safety number.
		measured = append(measured, rd.Measured.InexactFloat64())
	}

	if len(measured) >= 3 {
		mean, _ := stats.Mean(measured)
		sd, _ := stats.StandardDeviation(measured)
		if mean > 0 && sd/mean > spreadLimit {
			r.warn("THICKNESS_SPREAD_HIGH", field+".readings",
				fmt.Sprintf("reading spread (CV %.2f) exceeds %.2f: localized thinning likely, review CML coverage",
					sd/mean, spreadLimit))
		}
	}
}

// checkRateScreen rejects physically impossible apparent corrosion rates
// between consecutive inspections before the analyzer ever runs.
func (v *Validator) checkRateScreen(r *Result, sorted inspection.Series) {
	points, err := sorted.MinimumSeries()
	if err != nil || len(points) < 2 {
		return
	}
	for i := 1; i < len(points); i++ {
		dyNs := points[i].Date.Sub(points[i-1].Date).Nanoseconds()
		if dyNs <= 0 {
			continue // already fataled by the date-order check
		}
		loss := points[i-1].Measured.Sub(points[i].Measured)
		years, yErr := yearsDec(dyNs)
		if yErr != nil {
			continue
		}
		rate, dErr := loss.Div(years)
		if dErr != nil {
			continue
		}
		if rate.GreaterThan(v.trendParams.ImplausibleRateFatal) {
			r.fatal("RATE_IMPLAUSIBLE", "inspections",
				fmt.Sprintf("apparent rate %s in/yr between records %d and %d exceeds %s in/yr",
					rate.String(), i-1, i, v.trendParams.ImplausibleRateFatal.String()))
		} else if rate.GreaterThan(v.trendParams.ImplausibleRateWarn) {
			r.warn("RATE_SUSPICIOUS", "inspections",
				fmt.Sprintf("apparent rate %s in/yr between records %d and %d exceeds %s in/yr",
					rate.String(), i-1, i, v.trendParams.ImplausibleRateWarn.String()))
		}
	}
}

// Package validation performs every input check that must pass before
// arithmetic: range and physical-bounds checks, cross-field consistency,
// string sanitization, and the implausible-corrosion screen.
package validation

import (
	"fmt"
	"regexp"

	"mechintegrity/domain/assessment"
	"mechintegrity/domain/dec"
	"mechintegrity/domain/equipment"
	"mechintegrity/domain/rbi"
	"mechintegrity/domain/trend"
)

// Severity classifies an issue. Fatals abort the job before any safety
// arithmetic; warnings propagate into the result and audit entry.
type Severity string

const (
	SeverityFatal   Severity = "Fatal"
	SeverityWarning Severity = "Warning"
)

// Issue is one structured validation finding.
type Issue struct {
	Code     string   `json:"code"`
	Severity Severity `json:"severity"`
	Field    string   `json:"field"`
	Detail   string   `json:"detail"`
}

// Result is the full validation outcome.
type Result struct {
	Issues []Issue
}

// Fatal reports whether any issue aborts the job.
func (r Result) Fatal() bool {
	for _, is := range r.Issues {
		if is.Severity == SeverityFatal {
			return true
		}
	}
	return false
}

// Warnings returns only the warning-severity issues.
func (r Result) Warnings() []Issue {
	var out []Issue
	for _, is := range r.Issues {
		if is.Severity == SeverityWarning {
			out = append(out, is)
		}
	}
	return out
}

func (r *Result) fatal(code, field, detail string) {
	r.Issues = append(r.Issues, Issue{Code: code, Severity: SeverityFatal, Field: field, Detail: detail})
}

func (r *Result) warn(code, field, detail string) {
	r.Issues = append(r.Issues, Issue{Code: code, Severity: SeverityWarning, Field: field, Detail: detail})
}

// identPattern is the conservative whitelist for tags, CML ids and
// inspector certifications.
var identPattern = regexp.MustCompile(`^[A-Z0-9\-_/ .]{1,64}$`)

// Physical bounds.
var (
	pressureMin  = dec.MustParse("-14.7")
	pressureMax  = dec.FromInt(10000)
	tempMin      = dec.FromInt(-320)
	tempMax      = dec.FromInt(1500)
	minWall      = dec.MustParse("0.0625") // 1/16"
	minIDRatio   = dec.MustParse("0.5")
	spreadLimit  = 0.25
)

// Validator checks jobs against the physical invariants and the trend
// policy's plausibility limits.
type Validator struct {
	trendParams trend.Params
}

// New creates a validator.
func New(trendParams trend.Params) *Validator {
	return &Validator{trendParams: trendParams}
}

// ValidateJob runs every check. materialMin and materialMax bound the
// tabulated temperature coverage of the resolved material, used for the
// cross-field temperature check.
func (v *Validator) ValidateJob(job assessment.Job, materialMin, materialMax dec.Dec) Result {
	var r Result

	v.checkEquipment(&r, job.Equipment)
	v.checkOptions(&r, job.Options)

	if job.Equipment.DesignTemperature.LessThan(materialMin) || job.Equipment.DesignTemperature.GreaterThan(materialMax) {
		r.fatal("TEMPERATURE_OUTSIDE_MATERIAL", "equipment.design_temperature_f",
			fmt.Sprintf("design temperature %s °F outside tabulated coverage [%s, %s]",
				job.Equipment.DesignTemperature.String(), materialMin.String(), materialMax.String()))
	}

	if len(job.Inspections) == 0 {
		r.fatal("INSPECTIONS_EMPTY", "inspections", "at least one inspection record is required")
		return r
	}
	sorted := job.Inspections.Sorted()
	for i := 1; i < len(sorted); i++ {
		if !sorted[i].Date.After(sorted[i-1].Date) {
			r.fatal("INSPECTION_DATES_NOT_INCREASING", "inspections",
				fmt.Sprintf("records %d and %d share or invert dates", i-1, i))
		}
	}
	for i, rec := range sorted {
		v.checkRecord(&r, i, rec, job.Equipment)
	}
	v.checkRateScreen(&r, sorted)

	return r
}

func (v *Validator) checkEquipment(r *Result, eq equipment.Equipment) {
	if !identPattern.MatchString(eq.Tag) {
		r.fatal("TAG_MALFORMED", "equipment.tag",
			"tag must match [A-Z0-9-_/ .]{1,64}")
	}
	if _, err := equipment.ParseKind(string(eq.Kind)); err != nil {
		r.fatal("KIND_UNKNOWN", "equipment.kind", err.Error())
	}
	if eq.DesignPressure.LessThan(pressureMin) || eq.DesignPressure.GreaterThan(pressureMax) {
		r.fatal("PRESSURE_OUT_OF_RANGE", "equipment.design_pressure_psi",
			fmt.Sprintf("design pressure %s psi outside [%s, %s]",
				eq.DesignPressure.String(), pressureMin.String(), pressureMax.String()))
	}
	if eq.DesignTemperature.LessThan(tempMin) || eq.DesignTemperature.GreaterThan(tempMax) {
		r.fatal("TEMPERATURE_OUT_OF_RANGE", "equipment.design_temperature_f",
			fmt.Sprintf("design temperature %s °F outside [%s, %s]",
				eq.DesignTemperature.String(), tempMin.String(), tempMax.String()))
	}
	if !eq.NominalThickness.IsPositive() {
		r.fatal("NOMINAL_THICKNESS_NOT_POSITIVE", "equipment.nominal_thickness_in",
			"nominal thickness must be positive")
	}
	if eq.CorrosionAllowance.IsNegative() {
		r.fatal("CORROSION_ALLOWANCE_NEGATIVE", "equipment.corrosion_allowance_in",
			"corrosion allowance cannot be negative")
	}
	if !eq.JointEfficiency.IsPositive() || eq.JointEfficiency.GreaterThan(dec.One()) {
		r.fatal("JOINT_EFFICIENCY_OUT_OF_RANGE", "equipment.joint_efficiency",
			"joint efficiency must be in (0, 1]")
	}

	g := eq.Geometry
	if !g.InternalDiameter.IsPositive() || !g.ExternalDiameter.IsPositive() {
		r.fatal("GEOMETRY_MISSING", "equipment.geometry", "internal and external diameters are required")
		return
	}
	if g.InternalDiameter.Cmp(g.ExternalDiameter) >= 0 {
		r.fatal("DIAMETERS_INVERTED", "equipment.geometry",
			"internal diameter must be less than external diameter")
		return
	}
	wall, err := g.WallThickness()
	if err == nil && wall.LessThan(minWall) {
		r.fatal("WALL_BELOW_MINIMUM", "equipment.geometry",
			fmt.Sprintf("wall thickness %s below 1/16 inch", wall.String()))
	}
	ratio, err := g.InternalDiameter.Div(g.ExternalDiameter)
	if err == nil && ratio.LessThan(minIDRatio) {
		r.fatal("DIAMETER_RATIO_LOW", "equipment.geometry",
			fmt.Sprintf("ID/OD ratio %s below 0.5", ratio.String()))
	}
}

func (v *Validator) checkOptions(r *Result, opts assessment.Options) {
	if opts.Confidence == "nominal" {
		// Upstream advertised "nominal" on one boundary; this engine does
		// not alias it. The remediation is explicit so the mismatch gets
		// routed to the product owner, not papered over.
		r.fatal("CONFIDENCE_LABEL_UNSUPPORTED", "options.confidence",
			`label "nominal" is not accepted; use "average"`)
	} else if _, err := assessment.ParseConfidenceLabel(string(opts.Confidence)); err != nil {
		r.fatal("CONFIDENCE_LABEL_UNKNOWN", "options.confidence", err.Error())
	}
	if opts.FutureCorrosionYears < 0 {
		r.fatal("FUTURE_YEARS_NEGATIVE", "options.future_corrosion_years",
			"future corrosion horizon cannot be negative")
	}
	if opts.AssessmentLevel != assessment.Level1 {
		r.fatal("ASSESSMENT_LEVEL_UNSUPPORTED", "options.assessment_level",
			fmt.Sprintf("level %q is not supported; only Level1", opts.AssessmentLevel))
	}
	if _, err := rbi.ParseConsequence(string(opts.Consequence)); err != nil {
		r.fatal("CONSEQUENCE_UNKNOWN", "options.consequence", err.Error())
	}
}

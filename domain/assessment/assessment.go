// Package assessment defines the job envelope entering the engine and the
// immutable calculation result leaving it.
package assessment

import (
	"fmt"

	"mechintegrity/domain/core"
	"mechintegrity/domain/dec"
	"mechintegrity/domain/equipment"
	"mechintegrity/domain/inspection"
	"mechintegrity/domain/rbi"
)

// Level is the assessment level. Level 1 is the only in-scope value;
// thick-wall and flaw-specific work escalates outside this engine.
type Level string

const Level1 Level = "Level1"

// ConfidenceLabel selects which corrosion-rate band drives the projection.
// "nominal" is deliberately not a member: the upstream system advertised it
// on one boundary while requiring "average" on another, and this engine
// surfaces that mismatch as a validation rejection instead of aliasing.
type ConfidenceLabel string

const (
	ConfidenceConservative ConfidenceLabel = "conservative"
	ConfidenceAverage      ConfidenceLabel = "average"
	ConfidenceOptimistic   ConfidenceLabel = "optimistic"
)

// ParseConfidenceLabel parses a confidence label.
func ParseConfidenceLabel(s string) (ConfidenceLabel, error) {
	switch ConfidenceLabel(s) {
	case ConfidenceConservative, ConfidenceAverage, ConfidenceOptimistic:
		return ConfidenceLabel(s), nil
	}
	return "", fmt.Errorf("unknown confidence label %q", s)
}

// Options tune one assessment run.
type Options struct {
	Confidence           ConfidenceLabel `json:"confidence"`
	FutureCorrosionYears int             `json:"future_corrosion_years"`
	AssessmentLevel      Level           `json:"assessment_level"`
	Consequence          rbi.Consequence `json:"consequence"`
}

// DefaultOptions returns the conservative defaults.
func DefaultOptions() Options {
	return Options{
		Confidence:           ConfidenceConservative,
		FutureCorrosionYears: 10,
		AssessmentLevel:      Level1,
		Consequence:          rbi.ConsequenceMedium,
	}
}

// Job is one assessment request as received over the narrow interface.
type Job struct {
	Equipment   equipment.Equipment `json:"equipment"`
	Inspections inspection.Series   `json:"inspections"`
	Options     Options             `json:"options"`
	// Performer identifies who requested the calculation, for the audit
	// trail.
	Performer string `json:"performer"`
}

// Fitness is the overall fitness-for-service verdict.
type Fitness string

const (
	FitnessFit         Fitness = "Fit"
	FitnessConditional Fitness = "Conditional"
	FitnessUnfit       Fitness = "Unfit"
)

// Warning is a non-fatal finding that propagates into the result and the
// audit entry.
type Warning struct {
	Code   string `json:"code"`
	Detail string `json:"detail"`
}

// CalculationResult is the engine output for one job. Never mutated after
// assembly.
type CalculationResult struct {
	CalculationID core.CalculationID `json:"calculation_id"`
	Job           Job                `json:"job"`

	TMin dec.Dec `json:"t_min_in"`
	MAWP dec.Dec `json:"mawp_psi"`
	RSF  dec.Dec `json:"rsf"`

	CorrosionRateInPerYear dec.Dec `json:"corrosion_rate_in_per_year"`
	RemainingLifeYears     dec.Dec `json:"remaining_life_years"`
	// IndefiniteLife marks a rate at or below zero; RemainingLifeYears is
	// not meaningful when set.
	IndefiniteLife bool `json:"indefinite_life"`

	NextInspectionYears     dec.Dec   `json:"next_inspection_years"`
	Risk                    rbi.Risk  `json:"risk"`
	RequiresImmediateReview bool      `json:"requires_immediate_review"`
	Rationale               []string  `json:"rationale"`
	Fitness                 Fitness   `json:"fitness"`
	Confidence              dec.Dec   `json:"confidence"`
	Warnings                []Warning `json:"warnings"`

	InputHash  core.InputHash  `json:"input_hash"`
	OutputHash core.OutputHash `json:"output_hash"`
}

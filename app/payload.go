package app

import (
	"fmt"
	"strconv"
	"time"

	"mechintegrity/domain/assessment"
	"mechintegrity/domain/audit"
	"mechintegrity/domain/material"
)

// Payload flattening for the audit canonical encoding. Every decimal is
// its exact string form; dates are RFC3339; nested structures use dotted
// keys. No timestamp other than inspection dates enters the input payload,
// and none enters the output payload at all.

func inputPayload(job assessment.Job, props material.ResolvedProperties) audit.Payload {
	eq := job.Equipment
	p := audit.Payload{
		"equipment.tag":                    eq.Tag,
		"equipment.kind":                   string(eq.Kind),
		"equipment.design_pressure_psi":    eq.DesignPressure.String(),
		"equipment.design_temperature_f":   eq.DesignTemperature.String(),
		"equipment.nominal_thickness_in":   eq.NominalThickness.String(),
		"equipment.corrosion_allowance_in": eq.CorrosionAllowance.String(),
		"equipment.joint_efficiency":       eq.JointEfficiency.String(),
		"equipment.material.spec":          eq.Material.Spec,
		"equipment.material.grade":         eq.Material.Grade,
		"equipment.geometry.id_in":         eq.Geometry.InternalDiameter.String(),
		"equipment.geometry.od_in":         eq.Geometry.ExternalDiameter.String(),

		"options.confidence":             string(job.Options.Confidence),
		"options.future_corrosion_years": strconv.Itoa(job.Options.FutureCorrosionYears),
		"options.assessment_level":       string(job.Options.AssessmentLevel),
		"options.consequence":            string(job.Options.Consequence),

		"properties.allowable_stress_psi": props.AllowableStress.String(),
		"properties.yield_strength_psi":   props.YieldStrength.String(),
		"properties.tensile_strength_psi": props.TensileStrength.String(),
		"properties.elastic_modulus_psi":  props.ElasticModulus.String(),
		"properties.source.document":      props.Provenance.Document,
		"properties.source.table":         props.Provenance.Table,
		"properties.source.edition":       props.Provenance.Edition,
	}
	if eq.Geometry.Length != nil {
		p["equipment.geometry.length_in"] = eq.Geometry.Length.String()
	}
	for i, rec := range job.Inspections.Sorted() {
		prefix := fmt.Sprintf("inspections.%03d.", i)
		p[prefix+"date"] = rec.Date.UTC().Format(time.RFC3339)
		p[prefix+"inspector"] = rec.InspectorCertification
		for j, rd := range rec.Readings {
			rp := fmt.Sprintf("%sreadings.%03d.", prefix, j)
			p[rp+"cml_id"] = rd.CMLID.String()
			p[rp+"location"] = rd.Location
			p[rp+"measured_in"] = rd.Measured.String()
			if rd.PreviousMeasured != nil {
				p[rp+"previous_measured_in"] = rd.PreviousMeasured.String()
			}
		}
	}
	return p
}

func outputPayload(res *assessment.CalculationResult) audit.Payload {
	p := audit.Payload{
		"t_min_in":                  res.TMin.String(),
		"mawp_psi":                  res.MAWP.String(),
		"rsf":                       res.RSF.String(),
		"corrosion_rate_in_per_yr":  res.CorrosionRateInPerYear.String(),
		"remaining_life_years":      res.RemainingLifeYears.String(),
		"remaining_life_indefinite": strconv.FormatBool(res.IndefiniteLife),
		"next_inspection_years":     res.NextInspectionYears.String(),
		"risk":                      string(res.Risk),
		"requires_immediate_review": strconv.FormatBool(res.RequiresImmediateReview),
		"fitness":                   string(res.Fitness),
		"confidence":                res.Confidence.String(),
	}
	for i, w := range res.Warnings {
		p[fmt.Sprintf("warnings.%03d", i)] = w.Code + ": " + w.Detail
	}
	return p
}

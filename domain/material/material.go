// Package material carries the typed material model: references into the
// allowable-stress tables and the resolved property set handed to the
// calculator.
package material

import (
	"fmt"
	"strings"

	"mechintegrity/domain/dec"
)

// Ref identifies a material by specification and grade, e.g. SA-516 / 70.
type Ref struct {
	Spec  string `json:"spec"`
	Grade string `json:"grade"`
}

// Key returns the canonical lookup key.
func (r Ref) Key() string {
	return strings.ToUpper(strings.TrimSpace(r.Spec)) + "/" + strings.ToUpper(strings.TrimSpace(r.Grade))
}

func (r Ref) String() string {
	return fmt.Sprintf("%s Gr.%s", r.Spec, r.Grade)
}

// Point is one tabulated row: properties of a material at a single
// temperature.
type Point struct {
	Temperature     dec.Dec `json:"temperature_f"`
	AllowableStress dec.Dec `json:"allowable_stress_psi"`
	YieldStrength   dec.Dec `json:"yield_strength_psi"`
	TensileStrength dec.Dec `json:"tensile_strength_psi"`
	ElasticModulus  dec.Dec `json:"elastic_modulus_psi"`
}

// Validate checks the row invariants.
func (p Point) Validate() error {
	if !p.AllowableStress.IsPositive() || !p.YieldStrength.IsPositive() || !p.TensileStrength.IsPositive() {
		return fmt.Errorf("material strengths must be positive")
	}
	if p.YieldStrength.GreaterThan(p.TensileStrength) {
		return fmt.Errorf("yield strength %s exceeds tensile strength %s",
			p.YieldStrength.String(), p.TensileStrength.String())
	}
	return nil
}

// Provenance records where a resolved property came from, so the audit
// trail can cite the source table.
type Provenance struct {
	Document string `json:"document"`
	Table    string `json:"table"`
	Edition  string `json:"edition"`
}

// ResolvedProperties is the typed output of the property resolver:
// interpolated values at the design temperature plus their provenance.
type ResolvedProperties struct {
	Material        Ref        `json:"material"`
	Temperature     dec.Dec    `json:"temperature_f"`
	AllowableStress dec.Dec    `json:"allowable_stress_psi"`
	YieldStrength   dec.Dec    `json:"yield_strength_psi"`
	TensileStrength dec.Dec    `json:"tensile_strength_psi"`
	ElasticModulus  dec.Dec    `json:"elastic_modulus_psi"`
	Interpolated    bool       `json:"interpolated"`
	Provenance      Provenance `json:"provenance"`
}

// Coverage describes the tabulated temperature range for one material,
// exposed so callers can see the interpolation window before submitting.
type Coverage struct {
	Material   Ref        `json:"material"`
	MinTemp    dec.Dec    `json:"min_temperature_f"`
	MaxTemp    dec.Dec    `json:"max_temperature_f"`
	Points     int        `json:"points"`
	Provenance Provenance `json:"provenance"`
}

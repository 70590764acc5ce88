package app

import (
	"context"

	"mechintegrity/domain/core"
	"mechintegrity/domain/dec"
	"mechintegrity/domain/equipment"
	"mechintegrity/domain/material"
	"mechintegrity/ports"
)

// PropertyResolver resolves (material, temperature) to Section II-D
// properties and checks the geometry the calculator depends on. Assumed or
// defaulted dimensions are forbidden: a missing internal diameter is a hard
// failure, never a fallback.
type PropertyResolver struct {
	table ports.MaterialTable
}

// NewPropertyResolver creates a resolver over the given table capability.
func NewPropertyResolver(table ports.MaterialTable) *PropertyResolver {
	return &PropertyResolver{table: table}
}

// Resolve interpolates material properties at the design temperature.
// Interpolation is linear between the bracketing tabulated rows;
// extrapolation beyond the table fails with OutOfMaterialRange.
func (r *PropertyResolver) Resolve(ctx context.Context, eq equipment.Equipment) (material.ResolvedProperties, error) {
	if !eq.HasGeometry() {
		return material.ResolvedProperties{}, core.NewErrorf(core.KindPropertyMissing,
			"equipment %s has no internal diameter; geometry is required for kind %s", eq.Tag, eq.Kind).
			WithField("tag", eq.Tag)
	}

	points, prov, err := r.table.Points(ctx, eq.Material)
	if err != nil {
		return material.ResolvedProperties{}, err
	}
	if len(points) == 0 {
		return material.ResolvedProperties{}, core.NewErrorf(core.KindPropertyMissing,
			"material %s has an empty table", eq.Material.String())
	}
	for _, p := range points {
		if vErr := p.Validate(); vErr != nil {
			return material.ResolvedProperties{}, core.NewErrorf(core.KindPropertyMissing,
				"material %s table row at %s °F is invalid", eq.Material.String(), p.Temperature.String()).
				WithCause(vErr)
		}
	}

	temp := eq.DesignTemperature
	lo, hi := points[0], points[len(points)-1]
	if temp.LessThan(lo.Temperature) || temp.GreaterThan(hi.Temperature) {
		return material.ResolvedProperties{}, core.NewErrorf(core.KindOutOfMaterialRange,
			"design temperature %s °F outside tabulated range [%s, %s] for %s",
			temp.String(), lo.Temperature.String(), hi.Temperature.String(), eq.Material.String()).
			WithField("temperature_f", temp.String()).
			WithField("coverage_min_f", lo.Temperature.String()).
			WithField("coverage_max_f", hi.Temperature.String())
	}

	// Find the bracketing rows.
	lower, upper := points[0], points[0]
	exact := false
	for _, p := range points {
		if p.Temperature.Equal(temp) {
			lower, upper, exact = p, p, true
			break
		}
		if p.Temperature.LessThan(temp) {
			lower = p
		}
		if p.Temperature.GreaterThan(temp) {
			upper = p
			break
		}
	}

	res := material.ResolvedProperties{
		Material:    eq.Material,
		Temperature: temp,
		Provenance:  prov,
	}
	if exact {
		res.AllowableStress = lower.AllowableStress
		res.YieldStrength = lower.YieldStrength
		res.TensileStrength = lower.TensileStrength
		res.ElasticModulus = lower.ElasticModulus
		return res, nil
	}

	frac, err := temp.Sub(lower.Temperature).Div(upper.Temperature.Sub(lower.Temperature))
	if err != nil {
		return material.ResolvedProperties{}, err
	}
	res.Interpolated = true
	res.AllowableStress = lerp(lower.AllowableStress, upper.AllowableStress, frac)
	res.YieldStrength = lerp(lower.YieldStrength, upper.YieldStrength, frac)
	res.TensileStrength = lerp(lower.TensileStrength, upper.TensileStrength, frac)
	res.ElasticModulus = lerp(lower.ElasticModulus, upper.ElasticModulus, frac)
	return res, nil
}

// CoverageWindow returns the tabulated temperature window for a material,
// for the validator's cross-field temperature check.
func (r *PropertyResolver) CoverageWindow(ctx context.Context, ref material.Ref) (minT, maxT dec.Dec, err error) {
	points, _, err := r.table.Points(ctx, ref)
	if err != nil {
		return dec.Dec{}, dec.Dec{}, err
	}
	if len(points) == 0 {
		return dec.Dec{}, dec.Dec{}, core.NewErrorf(core.KindPropertyMissing,
			"material %s has an empty table", ref.String())
	}
	return points[0].Temperature, points[len(points)-1].Temperature, nil
}

// lerp interpolates a + (b−a)·frac exactly.
func lerp(a, b, frac dec.Dec) dec.Dec {
	return a.Add(b.Sub(a).Mul(frac))
}

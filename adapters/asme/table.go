// Package asme is the built-in ASME Section II-D allowable-stress table
// adapter. Read-only after construction; safe for unbounded concurrent
// readers.
package asme

import (
	"context"
	"sort"

	"mechintegrity/domain/core"
	"mechintegrity/domain/dec"
	"mechintegrity/domain/material"
)

// Table serves tabulated material properties from process memory.
type Table struct {
	rows map[string]entry
}

type entry struct {
	ref        material.Ref
	points     []material.Point
	provenance material.Provenance
}

// NewBuiltin returns the table preloaded with the supported carbon and
// stainless grades. Values from ASME BPVC Section II Part D, Table 1A
// (customary units).
func NewBuiltin() *Table {
	t := &Table{rows: map[string]entry{}}
	t.add(material.Ref{Spec: "SA-516", Grade: "70"}, sa51670())
	t.add(material.Ref{Spec: "SA-106", Grade: "B"}, sa106b())
	t.add(material.Ref{Spec: "SA-240", Grade: "304"}, sa240304())
	return t
}

func (t *Table) add(ref material.Ref, points []material.Point) {
	sort.Slice(points, func(i, j int) bool {
		return points[i].Temperature.LessThan(points[j].Temperature)
	})
	t.rows[ref.Key()] = entry{
		ref:    ref,
		points: points,
		provenance: material.Provenance{
			Document: "ASME BPVC Section II Part D",
			Table:    "1A",
			Edition:  "2021",
		},
	}
}

// Points implements ports.MaterialTable.
func (t *Table) Points(_ context.Context, ref material.Ref) ([]material.Point, material.Provenance, error) {
	e, ok := t.rows[ref.Key()]
	if !ok {
		return nil, material.Provenance{}, core.NewErrorf(core.KindPropertyMissing,
			"no allowable-stress table for material %s", ref.String()).
			WithField("material", ref.Key())
	}
	// Copy so callers cannot mutate the shared table.
	points := make([]material.Point, len(e.points))
	copy(points, e.points)
	return points, e.provenance, nil
}

// Coverage implements ports.MaterialTable.
func (t *Table) Coverage(_ context.Context) ([]material.Coverage, error) {
	keys := make([]string, 0, len(t.rows))
	for k := range t.rows {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]material.Coverage, 0, len(keys))
	for _, k := range keys {
		e := t.rows[k]
		out = append(out, material.Coverage{
			Material:   e.ref,
			MinTemp:    e.points[0].Temperature,
			MaxTemp:    e.points[len(e.points)-1].Temperature,
			Points:     len(e.points),
			Provenance: e.provenance,
		})
	}
	return out, nil
}

func pt(tempF int64, allowable, yield, tensile int64, modulus string) material.Point {
	return material.Point{
		Temperature:     dec.FromInt(tempF),
		AllowableStress: dec.FromInt(allowable),
		YieldStrength:   dec.FromInt(yield),
		TensileStrength: dec.FromInt(tensile),
		ElasticModulus:  dec.MustParse(modulus),
	}
}

// sa51670 covers -20..800 °F. Allowable stress flat at 20.0 ksi through
// 650 °F, then falling per the time-independent line.
func sa51670() []material.Point {
	return []material.Point{
		pt(-20, 20000, 38000, 70000, "29500000"),
		pt(100, 20000, 38000, 70000, "29300000"),
		pt(200, 20000, 34800, 70000, "28800000"),
		pt(300, 20000, 33600, 70000, "28300000"),
		pt(400, 20000, 32500, 70000, "27700000"),
		pt(500, 20000, 31000, 70000, "27300000"),
		pt(600, 20000, 29100, 70000, "26700000"),
		pt(650, 20000, 28200, 70000, "26100000"),
		pt(700, 19400, 27200, 70000, "25500000"),
		pt(750, 18100, 26300, 70000, "24800000"),
		pt(800, 14800, 25500, 70000, "24100000"),
	}
}

// sa106b covers -20..800 °F.
func sa106b() []material.Point {
	return []material.Point{
		pt(-20, 17100, 35000, 60000, "29500000"),
		pt(100, 17100, 35000, 60000, "29300000"),
		pt(200, 17100, 32000, 60000, "28800000"),
		pt(300, 17100, 31000, 60000, "28300000"),
		pt(400, 17100, 30000, 60000, "27700000"),
		pt(500, 17100, 28300, 60000, "27300000"),
		pt(600, 17100, 25900, 60000, "26700000"),
		pt(650, 17100, 25000, 60000, "26100000"),
		pt(700, 16600, 24200, 60000, "25500000"),
		pt(750, 15600, 23400, 60000, "24800000"),
		pt(800, 12800, 22600, 60000, "24100000"),
	}
}

// sa240304 covers -20..1000 °F.
func sa240304() []material.Point {
	return []material.Point{
		pt(-20, 20000, 30000, 75000, "28300000"),
		pt(100, 20000, 30000, 75000, "28100000"),
		pt(200, 20000, 25000, 75000, "27500000"),
		pt(300, 18900, 22400, 73500, "27000000"),
		pt(400, 18300, 20700, 71800, "26400000"),
		pt(500, 17500, 19400, 70400, "25900000"),
		pt(600, 16600, 18400, 69600, "25300000"),
		pt(700, 16100, 17600, 69100, "24800000"),
		pt(800, 15600, 16900, 68500, "24100000"),
		pt(900, 15200, 16500, 67100, "23500000"),
		pt(1000, 14900, 16200, 64400, "22800000"),
	}
}

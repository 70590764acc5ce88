package app

import (
	"context"
	"testing"

	"mechintegrity/adapters/asme"
	"mechintegrity/domain/core"
	"mechintegrity/domain/dec"
	"mechintegrity/domain/equipment"
	"mechintegrity/domain/material"
)

func testEquipment(tempF string) equipment.Equipment {
	return equipment.Equipment{
		Tag:               "V-101",
		Kind:              equipment.KindVessel,
		DesignTemperature: dec.MustParse(tempF),
		Material:          material.Ref{Spec: "SA-516", Grade: "70"},
		Geometry: equipment.Geometry{
			InternalDiameter: dec.MustParse("48.00"),
			ExternalDiameter: dec.MustParse("49.00"),
		},
	}
}

func TestResolveExactTabulatedPoint(t *testing.T) {
	r := NewPropertyResolver(asme.NewBuiltin())
	props, err := r.Resolve(context.Background(), testEquipment("300"))
	if err != nil {
		t.Fatal(err)
	}
	if !props.AllowableStress.Equal(dec.FromInt(20000)) {
		t.Fatalf("S = %s, want 20000", props.AllowableStress.String())
	}
	if props.Interpolated {
		t.Fatal("an exact table hit must not be marked interpolated")
	}
	if props.Provenance.Document == "" || props.Provenance.Table == "" {
		t.Fatal("provenance must be populated for the audit trail")
	}
}

func TestResolveInterpolatesLinearly(t *testing.T) {
	r := NewPropertyResolver(asme.NewBuiltin())
	// 725 °F sits midway between 700 (19400) and 750 (18100).
	props, err := r.Resolve(context.Background(), testEquipment("725"))
	if err != nil {
		t.Fatal(err)
	}
	if !props.Interpolated {
		t.Fatal("midpoint lookup must be marked interpolated")
	}
	if !props.AllowableStress.Equal(dec.MustParse("18750")) {
		t.Fatalf("S = %s, want 18750", props.AllowableStress.String())
	}
}

func TestResolveRefusesExtrapolation(t *testing.T) {
	r := NewPropertyResolver(asme.NewBuiltin())
	_, err := r.Resolve(context.Background(), testEquipment("900"))
	if !core.IsKind(err, core.KindOutOfMaterialRange) {
		t.Fatalf("expected OutOfMaterialRange, got %v", err)
	}
}

func TestResolveUnknownMaterial(t *testing.T) {
	r := NewPropertyResolver(asme.NewBuiltin())
	eq := testEquipment("300")
	eq.Material = material.Ref{Spec: "SA-999", Grade: "X"}
	_, err := r.Resolve(context.Background(), eq)
	if !core.IsKind(err, core.KindPropertyMissing) {
		t.Fatalf("expected PropertyMissing, got %v", err)
	}
}

func TestResolveRefusesMissingGeometry(t *testing.T) {
	r := NewPropertyResolver(asme.NewBuiltin())
	eq := testEquipment("300")
	eq.Geometry = equipment.Geometry{}
	_, err := r.Resolve(context.Background(), eq)
	if !core.IsKind(err, core.KindPropertyMissing) {
		t.Fatalf("expected PropertyMissing for absent geometry, got %v", err)
	}
}

func TestCoverageWindow(t *testing.T) {
	r := NewPropertyResolver(asme.NewBuiltin())
	minT, maxT, err := r.CoverageWindow(context.Background(), material.Ref{Spec: "SA-516", Grade: "70"})
	if err != nil {
		t.Fatal(err)
	}
	if !minT.Equal(dec.FromInt(-20)) || !maxT.Equal(dec.FromInt(800)) {
		t.Fatalf("window = [%s, %s], want [-20, 800]", minT.String(), maxT.String())
	}
}

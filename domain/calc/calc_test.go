package calc

import (
	"testing"

	"mechintegrity/domain/core"
	"mechintegrity/domain/dec"
)

func testParams() Params {
	return Params{
		RelTol:         dec.MustParse("0.001"),
		BisectTol:      dec.MustParse("0.000001"),
		MaxIterations:  200,
		ThickWallRatio: dec.MustParse("0.1"),
	}
}

// healthyVessel mirrors the V-101 reference case: 150 psi at 300 °F,
// SA-516-70 (S = 20000 psi), E = 0.85, ID 48", OD 49", nominal 0.500",
// measured minimum 0.478", rate 0.007 in/yr over a 10-year horizon.
func healthyVessel() Input {
	return Input{
		Pressure:         dec.MustParse("150"),
		InternalRadius:   dec.MustParse("24"),
		WallThickness:    dec.MustParse("0.5"),
		AllowableStress:  dec.MustParse("20000"),
		JointEfficiency:  dec.MustParse("0.85"),
		NominalThickness: dec.MustParse("0.500"),
		MeasuredMin:      dec.MustParse("0.478"),
		FCA:              dec.MustParse("0.070"),
	}
}

func TestLevel1CylinderHealthyVessel(t *testing.T) {
	out, err := Level1Cylinder(healthyVessel(), testParams())
	if err != nil {
		t.Fatal(err)
	}

	// t_min = 150·24 / (20000·0.85 − 0.6·150) = 3600/16910 = 0.212892...
	if out.TMin.String() != "0.2129" {
		t.Errorf("t_min = %s, want 0.2129", out.TMin.String())
	}

	// MAWP = 17000·0.408 / (24 + 0.6·0.408) = 286.08...
	if out.MAWP.String() != "286.08" {
		t.Errorf("MAWP = %s, want 286.08", out.MAWP.String())
	}

	// RSF = (0.478 − 0.070)/(0.500 − 0.070) = 0.408/0.430 = 0.9488...
	if out.RSF.String() != "0.9488" {
		t.Errorf("RSF = %s, want 0.9488", out.RSF.String())
	}

	// Both paths of every formula agree to the reconciliation tolerance.
	for _, pair := range []struct {
		name string
		p    PathPair
	}{
		{"t_min", out.TMinPaths},
		{"mawp", out.MAWPPaths},
		{"rsf", out.RSFPaths},
	} {
		ok, err := dec.WithinRel(pair.p.Primary, pair.p.Secondary, dec.MustParse("0.001"))
		if err != nil {
			t.Fatal(err)
		}
		if !ok {
			t.Errorf("%s paths did not reconcile: primary=%s secondary=%s",
				pair.name, pair.p.Primary.String(), pair.p.Secondary.String())
		}
		if !pair.p.Accepted.Equal(dec.Min(pair.p.Primary, pair.p.Secondary)) {
			t.Errorf("%s accepted value is not the conservative minimum", pair.name)
		}
	}
}

func TestThickWallRejected(t *testing.T) {
	in := healthyVessel()
	// ID 2", OD 3": wall 0.5", R 1.0" — t/R = 0.5.
	in.InternalRadius = dec.MustParse("1.0")
	in.WallThickness = dec.MustParse("0.5")

	_, err := Level1Cylinder(in, testParams())
	if err == nil {
		t.Fatal("expected thick-wall rejection")
	}
	if !core.IsKind(err, core.KindThickWallOutOfScope) {
		t.Fatalf("expected ThickWallOutOfScope, got %v", err)
	}
}

func TestFCAConsumesWall(t *testing.T) {
	in := healthyVessel()
	// 0.05 in/yr over 10 years swallows the whole 0.220" reading.
	in.MeasuredMin = dec.MustParse("0.220")
	in.FCA = dec.MustParse("0.500")

	out, err := Level1Cylinder(in, testParams())
	if err != nil {
		t.Fatal(err)
	}
	if !out.MAWP.IsZero() || !out.RSF.IsZero() {
		t.Fatalf("consumed wall must zero MAWP and RSF, got MAWP=%s RSF=%s",
			out.MAWP.String(), out.RSF.String())
	}
	if len(out.Notes) == 0 {
		t.Fatal("consumed wall must be noted")
	}
}

func TestReconcileDivergence(t *testing.T) {
	// A secondary path converging to a wrong value must not yield a safety
	// number; both values surface in the diagnostic payload.
	p := dec.MustParse("0.2129")
	s := dec.MustParse("0.2325")
	_, err := reconcile("t_min", p, s, dec.MustParse("0.001"))
	if err == nil {
		t.Fatal("expected divergence")
	}
	if !core.IsKind(err, core.KindDualPathDivergence) {
		t.Fatalf("expected DualPathDivergence, got %v", err)
	}
	var de *core.Error
	if !asDomainError(err, &de) {
		t.Fatal("expected a coded domain error")
	}
	if de.Fields["primary"] != "0.2129" || de.Fields["secondary"] != "0.2325" {
		t.Fatalf("diagnostic payload missing path values: %v", de.Fields)
	}
}

func TestBisectionBadBracket(t *testing.T) {
	// Injected wrong bracket: the root is outside [5, 6].
	f := func(x dec.Dec) (dec.Dec, error) {
		return x.Sub(dec.MustParse("1")), nil
	}
	_, err := bisect("inject", f, dec.MustParse("5"), dec.MustParse("6"), dec.MustParse("0.000001"), 200)
	if err == nil {
		t.Fatal("expected bracket failure")
	}
	if !core.IsKind(err, core.KindArithmeticFailure) {
		t.Fatalf("expected ArithmeticFailure, got %v", err)
	}
}

func TestTMinPathsIndependence(t *testing.T) {
	// The secondary path must find the closed-form root on its own.
	in := healthyVessel()
	p := testParams()

	primary, err := tMinClosedForm(in)
	if err != nil {
		t.Fatal(err)
	}
	secondary, err := tMinBisection(in, p)
	if err != nil {
		t.Fatal(err)
	}
	if !dec.WithinAbs(primary, secondary, dec.MustParse("0.00001")) {
		t.Fatalf("paths disagree: closed=%s bisect=%s", primary.String(), secondary.String())
	}
}

func TestMAWPRoundTrip(t *testing.T) {
	// Assessing at exactly MAWP must require exactly t_eff.
	in := healthyVessel()
	p := testParams()
	tEff := in.MeasuredMin.Sub(in.FCA)

	mawp, err := mawpClosedForm(in, tEff)
	if err != nil {
		t.Fatal(err)
	}
	check := in
	check.Pressure = mawp
	back, err := tMinClosedForm(check)
	if err != nil {
		t.Fatal(err)
	}
	if !dec.WithinAbs(back, tEff, dec.MustParse("0.0000001")) {
		t.Fatalf("t_min(MAWP) = %s, want %s", back.String(), tEff.String())
	}

	viaBisection, err := mawpBisection(in, tEff, p)
	if err != nil {
		t.Fatal(err)
	}
	if !dec.WithinAbs(mawp, viaBisection, dec.MustParse("0.00001")) {
		t.Fatalf("MAWP paths disagree: closed=%s bisect=%s", mawp.String(), viaBisection.String())
	}
}

func asDomainError(err error, target **core.Error) bool {
	de, ok := err.(*core.Error)
	if ok {
		*target = de
	}
	return ok
}

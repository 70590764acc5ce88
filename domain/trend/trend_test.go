package trend

import (
	"testing"
	"time"

	"mechintegrity/domain/core"
	"mechintegrity/domain/dec"
	"mechintegrity/domain/inspection"
)

func testParams() Params {
	return Params{
		ImplausibleRateFatal: dec.MustParse("0.5"),
		ImplausibleRateWarn:  dec.MustParse("0.05"),
		LifeCapYears:         dec.FromInt(100),
		BandConfidence:       0.95,
	}
}

// oneYear matches the analyzer's 365.25-day year so rates come out exact.
const oneYear = 365*24*time.Hour + 6*time.Hour

func pointAt(years int64, measured string) inspection.MinimumPoint {
	epoch := time.Date(2015, 1, 1, 0, 0, 0, 0, time.UTC)
	return inspection.MinimumPoint{
		Date:     epoch.Add(time.Duration(years) * oneYear),
		Measured: dec.MustParse(measured),
	}
}

func TestPointToPointRate(t *testing.T) {
	points := []inspection.MinimumPoint{
		pointAt(0, "0.492"),
		pointAt(2, "0.478"),
	}
	a, err := Analyze(points, testParams())
	if err != nil {
		t.Fatal(err)
	}
	if a.Rates.Method != "point-to-point" {
		t.Fatalf("method = %s", a.Rates.Method)
	}
	// (0.492 − 0.478) / 2 = 0.007 in/yr exactly.
	if !a.Rates.Average.Equal(dec.MustParse("0.007")) {
		t.Fatalf("rate = %s, want 0.007", a.Rates.Average.String())
	}
	// Degenerate band: all three labels coincide.
	if !a.Rates.Conservative.Equal(a.Rates.Average) || !a.Rates.Optimistic.Equal(a.Rates.Average) {
		t.Fatal("two-point band must collapse to the point-to-point rate")
	}
}

func TestRegressionRecoverySlope(t *testing.T) {
	// Perfectly linear loss at 0.01 in/yr from 0.500".
	points := []inspection.MinimumPoint{
		pointAt(0, "0.500"),
		pointAt(1, "0.490"),
		pointAt(2, "0.480"),
		pointAt(3, "0.470"),
		pointAt(4, "0.460"),
	}
	a, err := Analyze(points, testParams())
	if err != nil {
		t.Fatal(err)
	}
	if a.Regression == nil {
		t.Fatal("expected regression output for 5 points")
	}
	if !dec.WithinAbs(a.Rates.Average, dec.MustParse("0.01"), dec.MustParse("0.0000001")) {
		t.Fatalf("rate = %s, want 0.01", a.Rates.Average.String())
	}
	// A perfect fit has zero residual: the band collapses and R² = 1.
	if !dec.WithinAbs(a.Regression.RSquared, dec.One(), dec.MustParse("0.0000001")) {
		t.Fatalf("R² = %s, want 1", a.Regression.RSquared.String())
	}
	if !dec.WithinAbs(a.Rates.Conservative, a.Rates.Optimistic, dec.MustParse("0.0000001")) {
		t.Fatal("zero-residual fit must collapse the band")
	}
}

func TestBandOrdering(t *testing.T) {
	// Noisy data: the conservative rate assumes the fastest loss, so the
	// conservative life projection is never longer than the optimistic.
	points := []inspection.MinimumPoint{
		pointAt(0, "0.500"),
		pointAt(1, "0.493"),
		pointAt(2, "0.481"),
		pointAt(3, "0.476"),
		pointAt(4, "0.462"),
	}
	a, err := Analyze(points, testParams())
	if err != nil {
		t.Fatal(err)
	}
	if !a.Rates.Conservative.GreaterThan(a.Rates.Average) {
		t.Fatalf("conservative rate %s must exceed average %s",
			a.Rates.Conservative.String(), a.Rates.Average.String())
	}
	if !a.Rates.Average.GreaterThan(a.Rates.Optimistic) {
		t.Fatalf("average rate %s must exceed optimistic %s",
			a.Rates.Average.String(), a.Rates.Optimistic.String())
	}
}

func TestAnalyzeRejectsDisorderedDates(t *testing.T) {
	points := []inspection.MinimumPoint{
		pointAt(2, "0.480"),
		pointAt(1, "0.490"),
	}
	if _, err := Analyze(points, testParams()); err == nil {
		t.Fatal("expected rejection of non-increasing dates")
	}
}

func TestRemainingLifeHealthy(t *testing.T) {
	life, findings, err := RemainingLife(
		dec.MustParse("0.478"), dec.MustParse("0.2129"), dec.MustParse("0.007"), testParams())
	if err != nil {
		t.Fatal(err)
	}
	// (0.478 − 0.2129)/0.007 = 37.87… → 37.8 (never rounded up).
	if life.Years.String() != "37.8" {
		t.Fatalf("life = %s, want 37.8", life.Years.String())
	}
	if life.Indefinite || life.UnfitHint {
		t.Fatal("healthy projection must be finite and fit")
	}
	if len(findings) != 0 {
		t.Fatalf("unexpected findings: %v", findings)
	}
}

func TestRemainingLifeNoMargin(t *testing.T) {
	life, _, err := RemainingLife(
		dec.MustParse("0.210"), dec.MustParse("0.2129"), dec.MustParse("0.007"), testParams())
	if err != nil {
		t.Fatal(err)
	}
	if !life.Years.IsZero() || !life.UnfitHint {
		t.Fatalf("consumed margin must report 0.0 years with the Unfit hint, got %+v", life)
	}
}

func TestRemainingLifeNonPositiveRate(t *testing.T) {
	life, findings, err := RemainingLife(
		dec.MustParse("0.478"), dec.MustParse("0.2129"), dec.Zero(), testParams())
	if err != nil {
		t.Fatal(err)
	}
	if !life.Indefinite {
		t.Fatal("zero rate must report indefinite, not infinity")
	}
	if len(findings) == 0 {
		t.Fatal("indefinite life must carry a finding")
	}
}

func TestRemainingLifeImplausibleRate(t *testing.T) {
	_, _, err := RemainingLife(
		dec.MustParse("0.478"), dec.MustParse("0.2129"), dec.MustParse("0.6"), testParams())
	if err == nil {
		t.Fatal("expected fatal for implausible rate")
	}
	if !core.IsKind(err, core.KindInputInvalid) {
		t.Fatalf("expected InputInvalid, got %v", err)
	}
}

func TestRemainingLifeCapped(t *testing.T) {
	life, findings, err := RemainingLife(
		dec.MustParse("0.478"), dec.MustParse("0.2129"), dec.MustParse("0.0001"), testParams())
	if err != nil {
		t.Fatal(err)
	}
	if !life.Years.Equal(dec.MustParse("100.0")) {
		t.Fatalf("life = %s, want the 100-year cap", life.Years.String())
	}
	found := false
	for _, f := range findings {
		if f.Code == "LIFE_CAPPED" {
			found = true
		}
	}
	if !found {
		t.Fatal("cap must carry the LIFE_CAPPED finding")
	}
}

func TestRemainingLifeSuspiciousRateWarned(t *testing.T) {
	_, findings, err := RemainingLife(
		dec.MustParse("0.478"), dec.MustParse("0.2129"), dec.MustParse("0.06"), testParams())
	if err != nil {
		t.Fatal(err)
	}
	found := false
	for _, f := range findings {
		if f.Code == "RATE_SUSPICIOUS" {
			found = true
		}
	}
	if !found {
		t.Fatal("rate above the warn threshold must carry RATE_SUSPICIOUS")
	}
}

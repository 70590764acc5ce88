// Package policy holds the immutable safety-policy value injected into the
// orchestrator. Nothing here is a mutable singleton: a process builds one
// Policy at startup and passes it down.
package policy

import (
	"time"

	"mechintegrity/domain/calc"
	"mechintegrity/domain/dec"
	"mechintegrity/domain/equipment"
	"mechintegrity/domain/rbi"
	"mechintegrity/domain/trend"
)

// Version strings recorded on every audit entry.
const (
	SoftwareVersion          = "1.2.0"
	CalculationMethodVersion = "API579-L1/2021-r3"
)

// Policy is the full constant set for one deployment.
type Policy struct {
	Calc  calc.Params
	Trend trend.Params
	RBI   rbi.Params

	// Confidence scoring penalties (§ orchestrator).
	PenaltyNoPrevious      dec.Dec
	PenaltyUnderThree      dec.Dec
	PenaltyUnderFive       dec.Dec
	PenaltyPerWarning      dec.Dec
	ConfidenceFloor        dec.Dec
	ConfidenceNoTrendCap   dec.Dec

	// Fitness thresholds.
	FitnessRSFThreshold   dec.Dec // below → at most Conditional
	FitnessLifeFitYears   dec.Dec // below → at most Conditional
	FitnessLifeUnfitYears dec.Dec // below → Unfit

	// Component soft budgets.
	CalcBudget  time.Duration
	TrendBudget time.Duration
}

// Default returns the API 579 Level 1 policy.
func Default() Policy {
	return Policy{
		Calc: calc.Params{
			RelTol:         dec.MustParse("0.001"),
			BisectTol:      dec.MustParse("0.000001"),
			MaxIterations:  200,
			ThickWallRatio: dec.MustParse("0.1"),
		},
		Trend: trend.Params{
			ImplausibleRateFatal: dec.MustParse("0.5"),
			ImplausibleRateWarn:  dec.MustParse("0.05"),
			LifeCapYears:         dec.FromInt(100),
			BandConfidence:       0.95,
		},
		RBI: rbi.Params{
			StatutoryCaps: map[equipment.Kind]dec.Dec{
				equipment.KindVessel:    dec.FromInt(10),
				equipment.KindPiping:    dec.FromInt(5),
				equipment.KindTank:      dec.FromInt(10),
				equipment.KindExchanger: dec.FromInt(10),
			},
			ConsequenceWeights: map[rbi.Consequence]dec.Dec{
				rbi.ConsequenceLow:      dec.MustParse("1.0"),
				rbi.ConsequenceMedium:   dec.MustParse("0.75"),
				rbi.ConsequenceHigh:     dec.MustParse("0.5"),
				rbi.ConsequenceCritical: dec.MustParse("0.25"),
			},
			RSFHighRiskThreshold: dec.MustParse("0.90"),
			RSFCapYears:          dec.FromInt(2),
			CriticalLifeYears:    dec.FromInt(2),
			MinIntervalYears:     dec.MustParse("0.25"),
			IntervalStepYears:    dec.MustParse("0.5"),
		},
		PenaltyNoPrevious:    dec.MustParse("0.1"),
		PenaltyUnderThree:    dec.MustParse("0.15"),
		PenaltyUnderFive:     dec.MustParse("0.05"),
		PenaltyPerWarning:    dec.MustParse("0.05"),
		ConfidenceFloor:      dec.MustParse("0.50"),
		ConfidenceNoTrendCap: dec.MustParse("0.75"),

		FitnessRSFThreshold:   dec.MustParse("0.90"),
		FitnessLifeFitYears:   dec.FromInt(5),
		FitnessLifeUnfitYears: dec.FromInt(1),

		CalcBudget:  50 * time.Millisecond,
		TrendBudget: 100 * time.Millisecond,
	}
}

package app

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"mechintegrity/domain/assessment"
	"mechintegrity/domain/audit"
	"mechintegrity/domain/calc"
	"mechintegrity/domain/core"
	"mechintegrity/domain/dec"
	"mechintegrity/domain/rbi"
	"mechintegrity/domain/trend"
	"mechintegrity/internal/policy"
	"mechintegrity/internal/validation"
	"mechintegrity/ports"
)

// AssessmentService is the orchestrator: it wires the resolver, validator,
// dual-path calculator, trend analyzer, RBI engine and audit log for one
// job at a time. Pure coordination; every number comes from the domain
// packages.
type AssessmentService struct {
	resolver *PropertyResolver
	auditLog ports.AuditLog
	clock    ports.Clock
	pol      policy.Policy
	log      *slog.Logger
}

// NewAssessmentService wires the orchestrator.
func NewAssessmentService(resolver *PropertyResolver, auditLog ports.AuditLog, clock ports.Clock, pol policy.Policy, log *slog.Logger) *AssessmentService {
	return &AssessmentService{
		resolver: resolver,
		auditLog: auditLog,
		clock:    clock,
		pol:      pol,
		log:      log,
	}
}

// Assess runs one fitness-for-service job end-to-end and appends exactly
// one audit entry on success. Cancellation is honored at component
// boundaries only; once the audit append has happened the result is final.
func (s *AssessmentService) Assess(ctx context.Context, job assessment.Job) (*assessment.CalculationResult, error) {
	job.Options = normalizeOptions(job.Options)
	calcID := core.NewCalculationID()
	log := s.log.With("calculation_id", calcID.String(), "tag", job.Equipment.Tag)

	// C2: resolve properties. Failure is fatal and unaudited.
	if err := boundary(ctx); err != nil {
		return nil, err
	}
	props, err := s.resolver.Resolve(ctx, job.Equipment)
	if err != nil {
		log.Warn("property resolution failed", "err", err)
		return nil, err
	}

	// C3: validate. Fatal issues abort before any arithmetic.
	if err := boundary(ctx); err != nil {
		return nil, err
	}
	minT, maxT, err := s.resolver.CoverageWindow(ctx, job.Equipment.Material)
	if err != nil {
		return nil, err
	}
	vres := validation.New(s.pol.Trend).ValidateJob(job, minT, maxT)
	if vres.Fatal() {
		issues := make([]string, 0, len(vres.Issues))
		vErr := core.NewError(core.KindInputInvalid, "job rejected by validation")
		for i, is := range vres.Issues {
			issues = append(issues, is.Code)
			vErr = vErr.WithField(fmt.Sprintf("issue_%02d_%s", i, is.Code), is.Field+": "+is.Detail)
		}
		log.Warn("validation rejected job", "issues", strings.Join(issues, ","))
		return nil, vErr
	}

	warnings := make([]assessment.Warning, 0, len(vres.Issues))
	for _, is := range vres.Warnings() {
		warnings = append(warnings, assessment.Warning{Code: is.Code, Detail: is.Detail})
	}

	// C5 part 1: corrosion-rate band. Skipped with a confidence cap when
	// fewer than two inspections exist.
	if err := boundary(ctx); err != nil {
		return nil, err
	}
	trendStart := time.Now()
	minima, err := job.Inspections.MinimumSeries()
	if err != nil {
		return nil, core.Wrap(core.KindInputInvalid, err, "inspection series")
	}
	var analysis *trend.Analysis
	trended := len(minima) >= 2
	if trended {
		analysis, err = trend.Analyze(minima, s.pol.Trend)
		if err != nil {
			return nil, err
		}
		for _, f := range analysis.Findings {
			warnings = append(warnings, assessment.Warning{Code: f.Code, Detail: f.Detail})
		}
	} else {
		warnings = append(warnings, assessment.Warning{
			Code:   "TREND_SKIPPED",
			Detail: "fewer than two inspections: corrosion trend not established",
		})
	}

	rate := dec.Zero()
	if trended {
		rate = analysis.Rates.Select(string(job.Options.Confidence))
	}

	// C4: dual-path calculation under its soft budget.
	if err := boundary(ctx); err != nil {
		return nil, err
	}
	calcStart := time.Now()
	fca := dec.Zero()
	if rate.IsPositive() {
		fca = rate.Mul(dec.FromInt(int64(job.Options.FutureCorrosionYears)))
	}
	latest, err := job.Inspections.Latest()
	if err != nil {
		return nil, core.Wrap(core.KindInputInvalid, err, "inspection series")
	}
	minReading, err := latest.MinimumReading()
	if err != nil {
		return nil, core.Wrap(core.KindInputInvalid, err, "latest inspection")
	}
	radius, err := job.Equipment.Geometry.InternalRadius()
	if err != nil {
		return nil, err
	}
	wall, err := job.Equipment.Geometry.WallThickness()
	if err != nil {
		return nil, err
	}
	calcOut, err := calc.Level1Cylinder(calc.Input{
		Pressure:         job.Equipment.DesignPressure,
		InternalRadius:   radius,
		WallThickness:    wall,
		AllowableStress:  props.AllowableStress,
		JointEfficiency:  job.Equipment.JointEfficiency,
		NominalThickness: job.Equipment.NominalThickness,
		MeasuredMin:      minReading.Measured,
		FCA:              fca,
	}, s.pol.Calc)
	if err != nil {
		log.Warn("dual-path calculation failed", "err", err)
		return nil, err
	}
	if elapsed := time.Since(calcStart); elapsed > s.pol.CalcBudget {
		return nil, core.NewErrorf(core.KindBudgetExceeded,
			"dual-path calculation took %s, budget %s", elapsed, s.pol.CalcBudget)
	}
	for _, n := range calcOut.Notes {
		warnings = append(warnings, assessment.Warning{Code: "CALC_NOTE", Detail: n})
	}

	// C5 part 2: remaining life from the accepted t_min.
	if err := boundary(ctx); err != nil {
		return nil, err
	}
	life := trend.Life{Indefinite: true}
	if trended {
		var findings []trend.Finding
		life, findings, err = trend.RemainingLife(minReading.Measured, calcOut.TMinPaths.Accepted, rate, s.pol.Trend)
		if err != nil {
			return nil, err
		}
		for _, f := range findings {
			warnings = append(warnings, assessment.Warning{Code: f.Code, Detail: f.Detail})
		}
	}
	if elapsed := time.Since(trendStart); elapsed > s.pol.TrendBudget+s.pol.CalcBudget {
		return nil, core.NewErrorf(core.KindBudgetExceeded,
			"trend analysis and dual-path calculation took %s, combined budget %s",
			elapsed, s.pol.TrendBudget+s.pol.CalcBudget)
	}

	// C6: inspection interval.
	if err := boundary(ctx); err != nil {
		return nil, err
	}
	rec, err := rbi.Derive(rbi.Input{
		Kind:               job.Equipment.Kind,
		RSF:                calcOut.RSF,
		RemainingLifeYears: life.Years,
		IndefiniteLife:     life.Indefinite,
		Consequence:        job.Options.Consequence,
	}, s.pol.RBI)
	if err != nil {
		return nil, core.Wrap(core.KindInternal, err, "rbi derivation")
	}

	// Assemble the result.
	res := &assessment.CalculationResult{
		CalculationID:           calcID,
		Job:                     job,
		TMin:                    calcOut.TMin,
		MAWP:                    calcOut.MAWP,
		RSF:                     calcOut.RSF,
		CorrosionRateInPerYear:  rate.RoundRatio(),
		RemainingLifeYears:      life.Years,
		IndefiniteLife:          life.Indefinite,
		NextInspectionYears:     rec.IntervalYears,
		Risk:                    rec.Risk,
		RequiresImmediateReview: rec.RequiresImmediateReview,
		Rationale:               rec.Rationale,
		Fitness:                 s.fitness(calcOut, life),
		Warnings:                warnings,
	}
	res.Confidence = s.confidence(job, trended, len(minima), len(warnings))

	inputs := inputPayload(job, props)
	outputs := outputPayload(res)
	res.InputHash = core.NewInputHash(audit.Canonicalize(inputs))
	res.OutputHash = core.NewOutputHash(audit.Canonicalize(outputs))

	// C7: exactly one append. After this point the result is final and
	// cancellation is ignored.
	entry, err := s.auditLog.Append(ctx, audit.Draft{
		CalculationID:            calcID,
		PerformedAt:              s.clock.Now(),
		Performer:                job.Performer,
		Inputs:                   inputs,
		Outputs:                  outputs,
		SoftwareVersion:          policy.SoftwareVersion,
		CalculationMethodVersion: policy.CalculationMethodVersion,
	})
	if err != nil {
		log.Error("audit append failed", "err", err)
		return nil, err
	}

	log.Info("assessment complete",
		"fitness", string(res.Fitness),
		"risk", string(res.Risk),
		"interval_years", res.NextInspectionYears.String(),
		"chain_hash", entry.ChainHash.String())
	return res, nil
}

// GetAudit returns the audit entry for a calculation.
func (s *AssessmentService) GetAudit(ctx context.Context, id core.CalculationID) (audit.Entry, error) {
	return s.auditLog.GetByCalculation(ctx, id)
}

// VerifyAudit recomputes hashes and chaining over [fromSeq, toSeq].
func (s *AssessmentService) VerifyAudit(ctx context.Context, fromSeq, toSeq int64) (audit.VerifyResult, error) {
	entries, err := s.auditLog.Range(ctx, fromSeq, toSeq)
	if err != nil {
		return audit.VerifyResult{}, err
	}
	var prev core.ChainHash
	if fromSeq > 1 && len(entries) > 0 {
		prior, err := s.auditLog.Range(ctx, fromSeq-1, fromSeq-1)
		if err != nil {
			return audit.VerifyResult{}, err
		}
		if len(prior) == 1 {
			prev = prior[0].ChainHash
		}
	}
	return audit.VerifyChain(entries, prev), nil
}

// fitness derives the verdict from the reconciled figures.
func (s *AssessmentService) fitness(out *calc.Output, life trend.Life) assessment.Fitness {
	if life.UnfitHint || !out.TEff.GreaterThan(out.TMinPaths.Accepted) {
		return assessment.FitnessUnfit
	}
	if !life.Indefinite && life.Years.LessThan(s.pol.FitnessLifeUnfitYears) {
		return assessment.FitnessUnfit
	}
	if out.RSF.LessThan(s.pol.FitnessRSFThreshold) {
		return assessment.FitnessConditional
	}
	if !life.Indefinite && life.Years.LessThan(s.pol.FitnessLifeFitYears) {
		return assessment.FitnessConditional
	}
	return assessment.FitnessFit
}

// confidence applies the scoring penalties: missing previous readings,
// shallow history, and accumulated warnings, floored and capped per
// policy, reported at 2 digits.
func (s *AssessmentService) confidence(job assessment.Job, trended bool, historyDepth, warningCount int) dec.Dec {
	score := dec.One()

	latest, err := job.Inspections.Latest()
	if err == nil {
		for _, rd := range latest.Readings {
			if rd.PreviousMeasured == nil {
				score = score.Sub(s.pol.PenaltyNoPrevious)
				break
			}
		}
	}
	if historyDepth < 3 {
		score = score.Sub(s.pol.PenaltyUnderThree)
	} else if historyDepth < 5 {
		score = score.Sub(s.pol.PenaltyUnderFive)
	}
	for i := 0; i < warningCount; i++ {
		score = score.Sub(s.pol.PenaltyPerWarning)
	}
	if !trended {
		score = dec.Min(score, s.pol.ConfidenceNoTrendCap)
	}
	score = dec.Max(score, s.pol.ConfidenceFloor)
	return score.RoundConfidence()
}

func normalizeOptions(o assessment.Options) assessment.Options {
	def := assessment.DefaultOptions()
	if o.Confidence == "" {
		o.Confidence = def.Confidence
	}
	if o.AssessmentLevel == "" {
		o.AssessmentLevel = def.AssessmentLevel
	}
	if o.Consequence == "" {
		o.Consequence = def.Consequence
	}
	if o.FutureCorrosionYears == 0 {
		o.FutureCorrosionYears = def.FutureCorrosionYears
	}
	return o
}

// boundary is the cancellation check between components.
func boundary(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return core.Wrap(core.KindInternal, err, "job cancelled at component boundary")
	}
	return nil
}


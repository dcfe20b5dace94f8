package pipeline

import (
	"context"
	"fmt"
	"sort"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"coachlens/internal/app/analysis"
	"coachlens/internal/app/jobs"
	"coachlens/internal/app/metrics"
	"coachlens/internal/app/model"
)

// RunComparison drives one comparison queued -> analyzing -> completed.
// Comparisons have no transcription stage; the gate is the transition into
// analyzing.
func (r *Runner) RunComparison(ctx context.Context, id string) error {
	if err := r.store.TransitionComparison(ctx, id, jobs.StartableFrom(model.StatusAnalyzing), model.StatusAnalyzing); err != nil {
		return err
	}

	comp, err := r.store.GetComparison(ctx, id)
	if err != nil {
		return r.failComparison(ctx, id, fmt.Errorf("load comparison: %w", err))
	}

	links := append([]model.ComparisonLink(nil), comp.Links...)
	sort.SliceStable(links, func(i, j int) bool { return links[i].DisplayOrder < links[j].DisplayOrder })

	ids := lo.Map(links, func(l model.ComparisonLink, _ int) string { return l.EvaluationID })
	evals, err := r.store.GetEvaluations(ctx, ids)
	if err != nil {
		return r.failComparison(ctx, id, fmt.Errorf("load evaluations: %w", err))
	}
	byID := lo.KeyBy(evals, func(e model.Evaluation) string { return e.ID })

	// Evaluations can fail or disappear between submission and pickup, so the
	// submission-time checks are repeated here.
	ordered := make([]model.Evaluation, 0, len(links))
	for _, link := range links {
		e, ok := byID[link.EvaluationID]
		if !ok {
			return r.failComparison(ctx, id, fmt.Errorf("evaluation %s no longer exists", link.EvaluationID))
		}
		if e.Status != model.StatusCompleted || e.ReportText == "" {
			return r.failComparison(ctx, id, fmt.Errorf("evaluation %s is not a completed evaluation with a report", link.EvaluationID))
		}
		ordered = append(ordered, e)
	}

	// Aggregation order is chronological regardless of how the caller
	// arranged the sessions for display.
	chrono := append([]model.Evaluation(nil), ordered...)
	sort.SliceStable(chrono, func(i, j int) bool { return chrono[i].CreatedAt.Before(chrono[j].CreatedAt) })
	aggregated := metrics.Aggregate(lo.Map(chrono, func(e model.Evaluation, _ int) map[string]float64 { return e.Metrics }))

	variant, ok := analysis.VariantFor(comp.Type)
	if !ok {
		return r.failComparison(ctx, id, fmt.Errorf("unknown comparison type %q", comp.Type))
	}

	raw, err := r.analyzer.Analyze(ctx, analysis.ComparisonSystemPrompt,
		variant.Build(r.sessionInputs(links, ordered, comp.AnonymizeInstructors), comp.ClassTag))
	if err != nil {
		return r.failComparison(ctx, id, fmt.Errorf("analysis request: %w", err))
	}

	findings, err := analysis.ParseComparison(raw, variant)
	if err != nil {
		return r.failComparison(ctx, id, err)
	}

	// The aggregator's numbers are authoritative; nothing the model computed
	// is persisted as a metric.
	comp.AggregatedMetrics = aggregated
	comp.SessionCount = len(ordered)
	comp.Strengths = findings.Strengths
	comp.GrowthAreas = findings.GrowthAreas
	comp.ReportText = findings.ReportText
	comp.AnalysisModel = r.analyzer.Model()
	if err := r.store.UpdateComparison(ctx, comp); err != nil {
		return r.failComparison(ctx, id, fmt.Errorf("persist findings: %w", err))
	}

	if err := r.store.TransitionComparison(ctx, id, []model.JobStatus{model.StatusAnalyzing}, model.StatusCompleted); err != nil {
		return err
	}
	jobsCompleted.WithLabelValues(string(model.KindComparison)).Inc()
	return nil
}

// sessionInputs flattens evaluations into prompt inputs in display order.
// With anonymization on, instructors become "Instructor N" numbered by first
// appearance.
func (r *Runner) sessionInputs(links []model.ComparisonLink, ordered []model.Evaluation, anonymize bool) []analysis.SessionInput {
	aliases := make(map[string]string)
	sessions := make([]analysis.SessionInput, 0, len(ordered))
	for i, e := range ordered {
		instructor := e.InstructorID
		if anonymize {
			alias, ok := aliases[e.InstructorID]
			if !ok {
				alias = fmt.Sprintf("Instructor %d", len(aliases)+1)
				aliases[e.InstructorID] = alias
			}
			instructor = alias
		}
		sessions = append(sessions, analysis.SessionInput{
			Label:      links[i].Label,
			Date:       e.CreatedAt.Format("2006-01-02"),
			Instructor: instructor,
			Report:     e.ReportText,
			Metrics:    e.Metrics,
		})
	}
	return sessions
}

func (r *Runner) failComparison(ctx context.Context, id string, cause error) error {
	jobsFailed.WithLabelValues(string(model.KindComparison), "analyzing").Inc()
	if err := r.store.FailComparison(ctx, id, cause.Error()); err != nil {
		r.log.Error("could not mark comparison failed", zap.String("job_id", id), zap.Error(err))
	}
	return cause
}

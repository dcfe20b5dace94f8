package pipeline

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"coachlens/internal/app/jobs"
	"coachlens/internal/app/metrics"
	"coachlens/internal/app/model"
	"coachlens/internal/app/repository"
)

// Comparison session count bounds. Below two there is nothing to compare;
// above ten the combined prompt stops fitting a model context productively.
const (
	minComparisonSessions = 2
	maxComparisonSessions = 10
)

// MediaRemover deletes a stored recording from the object store.
type MediaRemover interface {
	Delete(ctx context.Context, key string) error
}

// Service is the submission and read API over the job store and queue. All
// submission validation is synchronous; a job record only exists once its
// inputs passed.
type Service struct {
	store repository.JobStore
	queue *Queue
	media MediaRemover
	log   *zap.Logger
}

func NewService(store repository.JobStore, queue *Queue, media MediaRemover, log *zap.Logger) *Service {
	return &Service{store: store, queue: queue, media: media, log: log}
}

// SubmitEvaluation validates the video and creates a queued evaluation.
func (s *Service) SubmitEvaluation(ctx context.Context, videoID string) (*model.Evaluation, error) {
	video, err := s.store.GetVideo(ctx, videoID)
	if err != nil {
		return nil, fmt.Errorf("load video: %w", err)
	}
	if video == nil {
		return nil, &ValidationError{Field: "video_id", Reason: fmt.Sprintf("unknown video %q", videoID)}
	}
	if video.DurationSeconds <= 0 {
		return nil, &ValidationError{Field: "video_id", Reason: "recording has no duration"}
	}

	now := time.Now().UTC()
	eval := &model.Evaluation{
		ID:           uuid.New().String(),
		VideoID:      video.ID,
		InstructorID: video.InstructorID,
		Status:       model.StatusQueued,
		Metrics:      map[string]float64{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.store.CreateEvaluation(ctx, eval); err != nil {
		return nil, fmt.Errorf("create evaluation: %w", err)
	}
	if err := s.enqueue(ctx, model.KindEvaluation, eval.ID); err != nil {
		return nil, err
	}
	s.log.Info("evaluation queued",
		zap.String("job_id", eval.ID), zap.String("video_id", video.ID))
	return eval, nil
}

func (s *Service) GetEvaluation(ctx context.Context, id string) (*model.Evaluation, error) {
	eval, err := s.store.GetEvaluation(ctx, id)
	if err != nil {
		return nil, err
	}
	if eval == nil {
		return nil, &jobs.NotFoundError{Kind: model.KindEvaluation, ID: id}
	}
	return eval, nil
}

// GetEvaluationTranscript returns the transcript behind an evaluation. Not
// available until the transcription stage has linked one.
func (s *Service) GetEvaluationTranscript(ctx context.Context, id string) (*model.Transcript, error) {
	eval, err := s.GetEvaluation(ctx, id)
	if err != nil {
		return nil, err
	}
	if eval.TranscriptID == "" {
		return nil, &NotReadyError{Kind: model.KindEvaluation, ID: id, Status: eval.Status, What: "transcript"}
	}
	transcript, err := s.store.GetTranscript(ctx, eval.TranscriptID)
	if err != nil {
		return nil, fmt.Errorf("load transcript: %w", err)
	}
	if transcript == nil {
		return nil, &jobs.NotFoundError{Kind: "transcript", ID: eval.TranscriptID}
	}
	return transcript, nil
}

// ComparisonRequest is a validated cross-session submission. Labels, when
// present, run parallel to EvaluationIDs and override the default
// "Session N" naming.
type ComparisonRequest struct {
	RequestedBy          string
	Title                string
	Type                 model.ComparisonType
	ClassTag             string
	AnonymizeInstructors bool
	EvaluationIDs        []string
	Labels               []string
	StartImmediately     bool
}

// SubmitComparison validates the referenced evaluations and creates the
// comparison, queued or as a draft depending on StartImmediately.
func (s *Service) SubmitComparison(ctx context.Context, req ComparisonRequest) (*model.Comparison, error) {
	if req.RequestedBy == "" {
		return nil, &ValidationError{Field: "requested_by", Reason: "required"}
	}
	if !req.Type.Valid() {
		return nil, &ValidationError{Field: "comparison_type", Reason: fmt.Sprintf("unknown type %q", req.Type)}
	}
	if n := len(req.EvaluationIDs); n < minComparisonSessions || n > maxComparisonSessions {
		return nil, &ValidationError{
			Field:  "evaluation_ids",
			Reason: fmt.Sprintf("needs between %d and %d evaluations, got %d", minComparisonSessions, maxComparisonSessions, n),
		}
	}
	if dups := lo.FindDuplicates(req.EvaluationIDs); len(dups) > 0 {
		return nil, &ValidationError{Field: "evaluation_ids", Reason: fmt.Sprintf("duplicate evaluation %q", dups[0])}
	}
	if len(req.Labels) > 0 && len(req.Labels) != len(req.EvaluationIDs) {
		return nil, &ValidationError{Field: "labels", Reason: "must match evaluation_ids in length when provided"}
	}

	evals, err := s.store.GetEvaluations(ctx, req.EvaluationIDs)
	if err != nil {
		return nil, fmt.Errorf("load evaluations: %w", err)
	}
	byID := lo.KeyBy(evals, func(e model.Evaluation) string { return e.ID })
	for _, id := range req.EvaluationIDs {
		e, ok := byID[id]
		if !ok {
			return nil, &ValidationError{Field: "evaluation_ids", Reason: fmt.Sprintf("unknown evaluation %q", id)}
		}
		if e.Status != model.StatusCompleted || e.ReportText == "" {
			return nil, &ValidationError{Field: "evaluation_ids", Reason: fmt.Sprintf("evaluation %q is not completed with a report", id)}
		}
	}

	links := make([]model.ComparisonLink, len(req.EvaluationIDs))
	for i, id := range req.EvaluationIDs {
		label := ""
		if len(req.Labels) > 0 {
			label = req.Labels[i]
		}
		links[i] = model.ComparisonLink{EvaluationID: id, DisplayOrder: i, Label: label}
	}

	status := model.StatusDraft
	if req.StartImmediately {
		status = model.StatusQueued
	}
	now := time.Now().UTC()
	comp := &model.Comparison{
		ID:                   uuid.New().String(),
		RequestedBy:          req.RequestedBy,
		Title:                req.Title,
		Type:                 req.Type,
		Status:               status,
		ClassTag:             req.ClassTag,
		AnonymizeInstructors: req.AnonymizeInstructors,
		Links:                links,
		SessionCount:         len(links),
		CreatedAt:            now,
		UpdatedAt:            now,
	}
	if err := s.store.CreateComparison(ctx, comp); err != nil {
		return nil, fmt.Errorf("create comparison: %w", err)
	}
	if req.StartImmediately {
		if err := s.enqueue(ctx, model.KindComparison, comp.ID); err != nil {
			return nil, err
		}
	}
	s.log.Info("comparison created",
		zap.String("job_id", comp.ID),
		zap.String("type", string(comp.Type)),
		zap.String("status", string(comp.Status)),
		zap.Int("sessions", comp.SessionCount))
	return comp, nil
}

// StartComparison moves a draft comparison into the queue. Starting anything
// but a draft is a conflict.
func (s *Service) StartComparison(ctx context.Context, id string) (*model.Comparison, error) {
	if err := s.store.TransitionComparison(ctx, id, jobs.StartableFrom(model.StatusQueued), model.StatusQueued); err != nil {
		return nil, err
	}
	if err := s.enqueue(ctx, model.KindComparison, id); err != nil {
		return nil, err
	}
	return s.GetComparison(ctx, id)
}

func (s *Service) GetComparison(ctx context.Context, id string) (*model.Comparison, error) {
	comp, err := s.store.GetComparison(ctx, id)
	if err != nil {
		return nil, err
	}
	if comp == nil {
		return nil, &jobs.NotFoundError{Kind: model.KindComparison, ID: id}
	}
	return comp, nil
}

// ComparisonList is one page of comparisons plus the total match count.
type ComparisonList struct {
	Items    []model.Comparison `json:"items"`
	Total    int                `json:"total"`
	Page     int                `json:"page"`
	PageSize int                `json:"page_size"`
}

// ListComparisons returns comparisons newest first, optionally filtered by
// type and status.
func (s *Service) ListComparisons(ctx context.Context, filter repository.ComparisonFilter) (*ComparisonList, error) {
	if filter.Type != "" && !filter.Type.Valid() {
		return nil, &ValidationError{Field: "comparison_type", Reason: fmt.Sprintf("unknown type %q", filter.Type)}
	}
	items, total, err := s.store.ListComparisons(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list comparisons: %w", err)
	}
	page, size := repository.NormalizePage(filter.Page, filter.PageSize)
	return &ComparisonList{Items: items, Total: total, Page: page, PageSize: size}, nil
}

// DeleteComparison removes a comparison record. The linked evaluations stay
// untouched.
func (s *Service) DeleteComparison(ctx context.Context, id string) error {
	if err := s.store.DeleteComparison(ctx, id); err != nil {
		return err
	}
	s.log.Info("comparison deleted", zap.String("job_id", id))
	return nil
}

// DeleteVideo removes a video, its stored recording, and everything derived
// from it (transcripts and evaluations).
func (s *Service) DeleteVideo(ctx context.Context, id string) error {
	video, err := s.GetVideo(ctx, id)
	if err != nil {
		return err
	}
	if err := s.media.Delete(ctx, video.SourceKey); err != nil {
		return fmt.Errorf("delete stored recording: %w", err)
	}
	if err := s.store.DeleteVideo(ctx, id); err != nil {
		return err
	}
	s.log.Info("video deleted",
		zap.String("video_id", id), zap.String("source_key", video.SourceKey))
	return nil
}

// MetricTrend is one tracked metric summarized across an instructor's
// completed evaluations. Best is the value closest to ideal for the metric's
// better-direction, nil for range-targeted metrics.
type MetricTrend struct {
	Key         string              `json:"key"`
	DisplayName string              `json:"display_name"`
	Unit        string              `json:"unit"`
	TargetMin   *float64            `json:"target_min,omitempty"`
	TargetMax   *float64            `json:"target_max,omitempty"`
	Best        *float64            `json:"best,omitempty"`
	Summary     model.MetricSummary `json:"summary"`
	Improvement string              `json:"improvement"`
}

// ThemeCount is one recurring strength or growth-area title and how many
// completed evaluations it appeared in.
type ThemeCount struct {
	Title            string `json:"title"`
	Count            int    `json:"count"`
	TotalEvaluations int    `json:"total_evaluations"`
}

// Dashboard is the read-time view of one instructor's history. Nothing here
// is persisted; it is recomputed from completed evaluations on every call.
// Evaluations are listed newest first for display; trends and themes are
// always computed chronologically.
type Dashboard struct {
	InstructorID         string             `json:"instructor_id"`
	Total                int                `json:"total_evaluations"`
	Completed            int                `json:"completed_evaluations"`
	Evaluations          []model.Evaluation `json:"evaluations"`
	Trends               []MetricTrend      `json:"trends"`
	TopStrengths         []ThemeCount       `json:"top_strengths"`
	RecurringGrowthAreas []ThemeCount       `json:"recurring_growth_areas"`
}

// InstructorDashboard aggregates an instructor's completed evaluations into
// per-metric trends.
func (s *Service) InstructorDashboard(ctx context.Context, instructorID string) (*Dashboard, error) {
	evals, err := s.store.ListEvaluationsByInstructor(ctx, instructorID)
	if err != nil {
		return nil, fmt.Errorf("list evaluations: %w", err)
	}

	completed := lo.Filter(evals, func(e model.Evaluation, _ int) bool {
		return e.Status == model.StatusCompleted
	})
	sort.SliceStable(completed, func(i, j int) bool { return completed[i].CreatedAt.Before(completed[j].CreatedAt) })

	aggregated := metrics.Aggregate(lo.Map(completed, func(e model.Evaluation, _ int) map[string]float64 { return e.Metrics }))
	trends := make([]MetricTrend, 0, len(aggregated))
	for _, def := range metrics.Definitions() {
		summary, ok := aggregated[def.Key]
		if !ok {
			continue
		}
		var best *float64
		if def.HigherIsBetter != nil {
			if *def.HigherIsBetter {
				best = &summary.Max
			} else {
				best = &summary.Min
			}
		}
		trends = append(trends, MetricTrend{
			Key:         def.Key,
			DisplayName: def.DisplayName,
			Unit:        def.Unit,
			TargetMin:   def.TargetMin,
			TargetMax:   def.TargetMax,
			Best:        best,
			Summary:     summary,
			Improvement: metrics.Improvement(summary.Trend, def.HigherIsBetter),
		})
	}

	return &Dashboard{
		InstructorID: instructorID,
		Total:        len(evals),
		Completed:    len(completed),
		Evaluations:  lo.Reverse(evals),
		Trends:       trends,
		TopStrengths: aggregateThemes(completed, func(e model.Evaluation) []model.FindingItem {
			return e.Strengths
		}),
		RecurringGrowthAreas: aggregateThemes(completed, func(e model.Evaluation) []model.FindingItem {
			return e.GrowthAreas
		}),
	}, nil
}

// Most common themes shown on a dashboard.
const maxThemes = 5

// aggregateThemes counts how often each titled finding recurs across the
// completed evaluations, most frequent first; ties keep chronological
// first-appearance order.
func aggregateThemes(completed []model.Evaluation, pick func(model.Evaluation) []model.FindingItem) []ThemeCount {
	counts := make(map[string]int)
	var order []string
	for _, e := range completed {
		for _, item := range pick(e) {
			title := strings.TrimSpace(item.Title)
			if title == "" {
				continue
			}
			if counts[title] == 0 {
				order = append(order, title)
			}
			counts[title]++
		}
	}

	sort.SliceStable(order, func(i, j int) bool { return counts[order[i]] > counts[order[j]] })
	if len(order) > maxThemes {
		order = order[:maxThemes]
	}
	themes := make([]ThemeCount, 0, len(order))
	for _, title := range order {
		themes = append(themes, ThemeCount{Title: title, Count: counts[title], TotalEvaluations: len(completed)})
	}
	return themes
}

// MetricPoint is one evaluation's value for a tracked metric.
type MetricPoint struct {
	EvaluationID string    `json:"evaluation_id"`
	Date         time.Time `json:"date"`
	Value        float64   `json:"value"`
}

// MetricSeries is one metric's chronological history for an instructor.
type MetricSeries struct {
	InstructorID string        `json:"instructor_id"`
	Key          string        `json:"key"`
	DisplayName  string        `json:"display_name"`
	Unit         string        `json:"unit"`
	Points       []MetricPoint `json:"points"`
	Trend        string        `json:"trend,omitempty"`
	Improvement  string        `json:"improvement"`
}

// InstructorMetricSeries returns one metric's chronological data points
// across an instructor's completed evaluations.
func (s *Service) InstructorMetricSeries(ctx context.Context, instructorID, key string) (*MetricSeries, error) {
	def, ok := metrics.DefinitionFor(key)
	if !ok {
		return nil, &ValidationError{Field: "metric", Reason: fmt.Sprintf("unknown metric %q", key)}
	}

	evals, err := s.store.ListEvaluationsByInstructor(ctx, instructorID)
	if err != nil {
		return nil, fmt.Errorf("list evaluations: %w", err)
	}
	completed := lo.Filter(evals, func(e model.Evaluation, _ int) bool {
		return e.Status == model.StatusCompleted
	})
	sort.SliceStable(completed, func(i, j int) bool { return completed[i].CreatedAt.Before(completed[j].CreatedAt) })

	series := &MetricSeries{
		InstructorID: instructorID,
		Key:          def.Key,
		DisplayName:  def.DisplayName,
		Unit:         def.Unit,
	}
	values := make([]float64, 0, len(completed))
	for _, e := range completed {
		v, ok := e.Metrics[key]
		if !ok {
			continue
		}
		series.Points = append(series.Points, MetricPoint{EvaluationID: e.ID, Date: e.CreatedAt, Value: v})
		values = append(values, v)
	}
	if dir, ok := metrics.Trend(values); ok {
		series.Trend = dir
	}
	series.Improvement = metrics.Improvement(series.Trend, def.HigherIsBetter)
	return series, nil
}

// RegisterVideo records an already-stored recording so evaluations can
// reference it.
func (s *Service) RegisterVideo(ctx context.Context, v *model.Video) (*model.Video, error) {
	if v.InstructorID == "" {
		return nil, &ValidationError{Field: "instructor_id", Reason: "required"}
	}
	if v.SourceKey == "" {
		return nil, &ValidationError{Field: "source_key", Reason: "required"}
	}
	if v.DurationSeconds <= 0 {
		return nil, &ValidationError{Field: "duration_seconds", Reason: "must be positive"}
	}
	if v.ID == "" {
		v.ID = uuid.New().String()
	}
	if v.UploadedAt.IsZero() {
		v.UploadedAt = time.Now().UTC()
	}
	if err := s.store.SaveVideo(ctx, v); err != nil {
		return nil, fmt.Errorf("save video: %w", err)
	}
	return v, nil
}

func (s *Service) GetVideo(ctx context.Context, id string) (*model.Video, error) {
	video, err := s.store.GetVideo(ctx, id)
	if err != nil {
		return nil, err
	}
	if video == nil {
		return nil, &jobs.NotFoundError{Kind: "video", ID: id}
	}
	return video, nil
}

func (s *Service) enqueue(ctx context.Context, kind model.JobKind, id string) error {
	if err := s.queue.Enqueue(Task{Kind: kind, ID: id}); err != nil {
		// The record would otherwise sit queued forever with no worker
		// coming for it.
		reason := fmt.Sprintf("could not queue job: %v", err)
		var failErr error
		switch kind {
		case model.KindEvaluation:
			failErr = s.store.FailEvaluation(ctx, id, reason)
		case model.KindComparison:
			failErr = s.store.FailComparison(ctx, id, reason)
		}
		if failErr != nil {
			s.log.Error("could not fail unqueueable job", zap.String("job_id", id), zap.Error(failErr))
		}
		return fmt.Errorf("enqueue %s %s: %w", kind, id, err)
	}
	return nil
}

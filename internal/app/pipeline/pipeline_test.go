package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"coachlens/internal/app/jobs"
	"coachlens/internal/app/model"
	"coachlens/internal/app/repository"
)

// memStore is an in-memory JobStore with the same compare-and-set transition
// semantics as the SQL implementations.
type memStore struct {
	mu          sync.Mutex
	videos      map[string]*model.Video
	transcripts map[string]*model.Transcript
	evaluations map[string]*model.Evaluation
	comparisons map[string]*model.Comparison
}

func newMemStore() *memStore {
	return &memStore{
		videos:      make(map[string]*model.Video),
		transcripts: make(map[string]*model.Transcript),
		evaluations: make(map[string]*model.Evaluation),
		comparisons: make(map[string]*model.Comparison),
	}
}

func (s *memStore) Close() error { return nil }

func (s *memStore) SaveVideo(_ context.Context, v *model.Video) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *v
	s.videos[v.ID] = &cp
	return nil
}

func (s *memStore) GetVideo(_ context.Context, id string) (*model.Video, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.videos[id]
	if !ok {
		return nil, nil
	}
	cp := *v
	return &cp, nil
}

func (s *memStore) DeleteVideo(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.videos[id]; !ok {
		return &jobs.NotFoundError{Kind: "video", ID: id}
	}
	delete(s.videos, id)
	for tid, t := range s.transcripts {
		if t.VideoID == id {
			delete(s.transcripts, tid)
		}
	}
	for eid, e := range s.evaluations {
		if e.VideoID == id {
			delete(s.evaluations, eid)
		}
	}
	return nil
}

func (s *memStore) SaveTranscript(_ context.Context, t *model.Transcript) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *t
	s.transcripts[t.ID] = &cp
	return nil
}

func (s *memStore) GetTranscript(_ context.Context, id string) (*model.Transcript, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.transcripts[id]
	if !ok {
		return nil, nil
	}
	cp := *t
	return &cp, nil
}

func (s *memStore) CreateEvaluation(_ context.Context, e *model.Evaluation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *e
	s.evaluations[e.ID] = &cp
	return nil
}

func (s *memStore) GetEvaluation(_ context.Context, id string) (*model.Evaluation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.evaluations[id]
	if !ok {
		return nil, nil
	}
	cp := *e
	return &cp, nil
}

func (s *memStore) GetEvaluations(_ context.Context, ids []string) ([]model.Evaluation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Evaluation, 0, len(ids))
	for _, id := range ids {
		if e, ok := s.evaluations[id]; ok {
			out = append(out, *e)
		}
	}
	return out, nil
}

func (s *memStore) ListEvaluationsByInstructor(_ context.Context, instructorID string) ([]model.Evaluation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Evaluation
	for _, e := range s.evaluations {
		if e.InstructorID == instructorID {
			out = append(out, *e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *memStore) UpdateEvaluation(_ context.Context, e *model.Evaluation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.evaluations[e.ID]
	if !ok {
		return &jobs.NotFoundError{Kind: model.KindEvaluation, ID: e.ID}
	}
	status := stored.Status
	cp := *e
	cp.Status = status
	s.evaluations[e.ID] = &cp
	return nil
}

func (s *memStore) TransitionEvaluation(_ context.Context, id string, from []model.JobStatus, to model.JobStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.evaluations[id]
	if !ok {
		return &jobs.NotFoundError{Kind: model.KindEvaluation, ID: id}
	}
	return transitionStatus(&e.Status, id, from, to)
}

func (s *memStore) FailEvaluation(_ context.Context, id string, reason string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.evaluations[id]
	if !ok {
		return &jobs.NotFoundError{Kind: model.KindEvaluation, ID: id}
	}
	return failStatus(&e.Status, &e.ErrorDetail, id, reason)
}

func (s *memStore) CreateComparison(_ context.Context, c *model.Comparison) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *c
	s.comparisons[c.ID] = &cp
	return nil
}

func (s *memStore) GetComparison(_ context.Context, id string) (*model.Comparison, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.comparisons[id]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (s *memStore) ListComparisons(_ context.Context, filter repository.ComparisonFilter) ([]model.Comparison, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var all []model.Comparison
	for _, c := range s.comparisons {
		if filter.Type != "" && c.Type != filter.Type {
			continue
		}
		if filter.Status != "" && c.Status != filter.Status {
			continue
		}
		all = append(all, *c)
	}
	sort.SliceStable(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	total := len(all)
	page, size := repository.NormalizePage(filter.Page, filter.PageSize)
	start := (page - 1) * size
	if start >= total {
		return nil, total, nil
	}
	end := start + size
	if end > total {
		end = total
	}
	return all[start:end], total, nil
}

func (s *memStore) DeleteComparison(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.comparisons[id]; !ok {
		return &jobs.NotFoundError{Kind: model.KindComparison, ID: id}
	}
	delete(s.comparisons, id)
	return nil
}

func (s *memStore) UpdateComparison(_ context.Context, c *model.Comparison) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.comparisons[c.ID]
	if !ok {
		return &jobs.NotFoundError{Kind: model.KindComparison, ID: c.ID}
	}
	status := stored.Status
	cp := *c
	cp.Status = status
	s.comparisons[c.ID] = &cp
	return nil
}

func (s *memStore) TransitionComparison(_ context.Context, id string, from []model.JobStatus, to model.JobStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.comparisons[id]
	if !ok {
		return &jobs.NotFoundError{Kind: model.KindComparison, ID: id}
	}
	return transitionStatus(&c.Status, id, from, to)
}

func (s *memStore) FailComparison(_ context.Context, id string, reason string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.comparisons[id]
	if !ok {
		return &jobs.NotFoundError{Kind: model.KindComparison, ID: id}
	}
	return failStatus(&c.Status, &c.ErrorDetail, id, reason)
}

func transitionStatus(status *model.JobStatus, id string, from []model.JobStatus, to model.JobStatus) error {
	for _, f := range from {
		if *status == f {
			*status = to
			return nil
		}
	}
	return &jobs.ConflictError{JobID: id, Current: *status, Target: to}
}

func failStatus(status *model.JobStatus, detail *string, id, reason string) error {
	switch *status {
	case model.StatusFailed:
		return nil
	case model.StatusCompleted:
		return &jobs.ConflictError{JobID: id, Current: *status, Target: model.StatusFailed}
	}
	*status = model.StatusFailed
	*detail = reason
	return nil
}

type fakeResolver struct{}

func (fakeResolver) ResolveURL(_ context.Context, key string) (string, error) {
	return "https://media.test/" + key, nil
}

// fakeMedia records the keys removed from the object store.
type fakeMedia struct {
	mu      sync.Mutex
	deleted []string
	err     error
}

func (f *fakeMedia) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.deleted = append(f.deleted, key)
	return nil
}

type fakeTranscriber struct {
	transcript *model.Transcript
	err        error
	calls      int
}

func (f *fakeTranscriber) Transcribe(_ context.Context, _ string) (*model.Transcript, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	cp := *f.transcript
	return &cp, nil
}

type fakeAnalyzer struct {
	responses []string
	err       error
	calls     int
	prompts   []string
}

func (f *fakeAnalyzer) Analyze(_ context.Context, _, userPrompt string) (string, error) {
	f.prompts = append(f.prompts, userPrompt)
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	resp := f.responses[0]
	if len(f.responses) > 1 {
		f.responses = f.responses[1:]
	}
	return resp, nil
}

func (f *fakeAnalyzer) Model() string { return "fake-model-1" }

func sampleTranscript() *model.Transcript {
	return &model.Transcript{
		ID:              "tr-1",
		Text:            "welcome everyone today we talk about pacing",
		DurationSeconds: 1800,
		Utterances: []model.Utterance{
			{Speaker: "Speaker A", StartMS: 0, EndMS: 4000, Text: "welcome everyone"},
			{Speaker: "Speaker A", StartMS: 4000, EndMS: 9000, Text: "today we talk about pacing"},
		},
		CreatedAt: time.Now().UTC(),
	}
}

func evaluationReport(wpm float64) string {
	return fmt.Sprintf(`# Coaching Report

## Strengths to Build On
**Warm opening**
Observed at [00:00:02], it set the tone well.

## Growth Opportunities
**Closing recap**
The recap was rushed.

## Metrics Snapshot

| Metric | Value | Target |
|--------|-------|--------|
| Speaking Pace (WPM) | %.0f | 120-160 |
`, wpm)
}

const comparisonReport = `# Performance Comparison

## Cross-Session Strengths
**Consistent pacing**
All sessions stayed near target.

## Cross-Session Growth Opportunities
**Question variety**
Probing questions remain rare.
`

func testHarness(t *testing.T) (*memStore, *Service, *Queue) {
	t.Helper()
	store := newMemStore()
	queue := NewQueue(16)
	service := NewService(store, queue, &fakeMedia{}, zap.NewNop())
	return store, service, queue
}

func seedVideo(t *testing.T, store *memStore, id, instructor string) {
	t.Helper()
	require.NoError(t, store.SaveVideo(context.Background(), &model.Video{
		ID:              id,
		InstructorID:    instructor,
		Filename:        id + ".mp4",
		SourceKey:       "sessions/" + instructor + "/" + id + ".mp4",
		DurationSeconds: 1800,
		UploadedAt:      time.Now().UTC(),
	}))
}

func TestEvaluationPipelineHappyPath(t *testing.T) {
	ctx := context.Background()
	store, service, _ := testHarness(t)
	seedVideo(t, store, "vid-1", "inst-1")

	eval, err := service.SubmitEvaluation(ctx, "vid-1")
	require.NoError(t, err)
	assert.Equal(t, model.StatusQueued, eval.Status)

	transcriber := &fakeTranscriber{transcript: sampleTranscript()}
	analyzer := &fakeAnalyzer{responses: []string{evaluationReport(132)}}
	runner := NewRunner(store, fakeResolver{}, transcriber, analyzer, zap.NewNop())

	require.NoError(t, runner.RunEvaluation(ctx, eval.ID))

	got, err := service.GetEvaluation(ctx, eval.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusCompleted, got.Status)
	assert.Equal(t, "tr-1", got.TranscriptID)
	assert.Equal(t, "fake-model-1", got.AnalysisModel)
	assert.NotEmpty(t, got.ReportText)
	require.Len(t, got.Strengths, 1)
	require.Len(t, got.GrowthAreas, 1)

	// Parsed analysis metrics merged over transcript base metrics.
	assert.InDelta(t, 132, got.Metrics["wpm"], 1e-9)
	assert.InDelta(t, 7, got.Metrics["word_count"], 1e-9)
	assert.InDelta(t, 1800, got.Metrics["duration_seconds"], 1e-9)
	assert.Contains(t, got.Metrics, "analysis_processing_seconds")

	// Transcript persisted with derived counts.
	tr, err := store.GetTranscript(ctx, "tr-1")
	require.NoError(t, err)
	require.NotNil(t, tr)
	assert.Equal(t, "vid-1", tr.VideoID)
	assert.Equal(t, 7, tr.WordCount)
	assert.Equal(t, 1, tr.SpeakerCount)

	// Prompt carried the timestamped transcript lines.
	require.Len(t, analyzer.prompts, 1)
	assert.Contains(t, analyzer.prompts[0], "[00:00:00] Speaker A: welcome everyone")
}

func TestEvaluationTranscriptionFailureSkipsAnalysis(t *testing.T) {
	ctx := context.Background()
	store, service, _ := testHarness(t)
	seedVideo(t, store, "vid-1", "inst-1")

	eval, err := service.SubmitEvaluation(ctx, "vid-1")
	require.NoError(t, err)

	transcriber := &fakeTranscriber{err: errors.New("audio stream unreadable")}
	analyzer := &fakeAnalyzer{responses: []string{evaluationReport(132)}}
	runner := NewRunner(store, fakeResolver{}, transcriber, analyzer, zap.NewNop())

	err = runner.RunEvaluation(ctx, eval.ID)
	var trErr *TranscriptionError
	require.ErrorAs(t, err, &trErr)

	got, _ := service.GetEvaluation(ctx, eval.ID)
	assert.Equal(t, model.StatusFailed, got.Status)
	assert.Contains(t, got.ErrorDetail, "audio stream unreadable")
	assert.Zero(t, analyzer.calls, "analysis must not run after transcription failure")
}

func TestEvaluationEmptyTranscriptFails(t *testing.T) {
	ctx := context.Background()
	store, service, _ := testHarness(t)
	seedVideo(t, store, "vid-1", "inst-1")
	eval, _ := service.SubmitEvaluation(ctx, "vid-1")

	empty := &model.Transcript{ID: "tr-empty", Text: "   "}
	runner := NewRunner(store, fakeResolver{}, &fakeTranscriber{transcript: empty},
		&fakeAnalyzer{responses: []string{evaluationReport(132)}}, zap.NewNop())

	err := runner.RunEvaluation(ctx, eval.ID)
	var trErr *TranscriptionError
	require.ErrorAs(t, err, &trErr)

	got, _ := service.GetEvaluation(ctx, eval.ID)
	assert.Equal(t, model.StatusFailed, got.Status)
}

func TestEvaluationUnparseableAnalysisFailsAndKeepsRaw(t *testing.T) {
	ctx := context.Background()
	store, service, _ := testHarness(t)
	seedVideo(t, store, "vid-1", "inst-1")
	eval, _ := service.SubmitEvaluation(ctx, "vid-1")

	raw := "free-form prose with no recognizable sections"
	runner := NewRunner(store, fakeResolver{}, &fakeTranscriber{transcript: sampleTranscript()},
		&fakeAnalyzer{responses: []string{raw}}, zap.NewNop())

	require.Error(t, runner.RunEvaluation(ctx, eval.ID))

	got, _ := store.GetEvaluation(ctx, eval.ID)
	assert.Equal(t, model.StatusFailed, got.Status)
	assert.Equal(t, raw, got.RawAnalysis)
	assert.Empty(t, got.ReportText)
}

func TestEvaluationStartGateIsExclusive(t *testing.T) {
	ctx := context.Background()
	store, service, _ := testHarness(t)
	seedVideo(t, store, "vid-1", "inst-1")
	eval, _ := service.SubmitEvaluation(ctx, "vid-1")

	runner := NewRunner(store, fakeResolver{}, &fakeTranscriber{transcript: sampleTranscript()},
		&fakeAnalyzer{responses: []string{evaluationReport(132)}}, zap.NewNop())

	require.NoError(t, runner.RunEvaluation(ctx, eval.ID))

	// A second pickup of the same job loses the gate with a conflict and
	// leaves the completed record untouched.
	err := runner.RunEvaluation(ctx, eval.ID)
	var conflict *jobs.ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, model.StatusCompleted, conflict.Current)

	got, _ := service.GetEvaluation(ctx, eval.ID)
	assert.Equal(t, model.StatusCompleted, got.Status)
}

func TestGetEvaluationTranscript(t *testing.T) {
	ctx := context.Background()
	store, service, _ := testHarness(t)
	seedVideo(t, store, "vid-1", "inst-1")

	eval, err := service.SubmitEvaluation(ctx, "vid-1")
	require.NoError(t, err)

	// Before transcription there is nothing to return.
	_, err = service.GetEvaluationTranscript(ctx, eval.ID)
	var notReady *NotReadyError
	require.ErrorAs(t, err, &notReady)
	assert.Equal(t, model.StatusQueued, notReady.Status)

	runner := NewRunner(store, fakeResolver{}, &fakeTranscriber{transcript: sampleTranscript()},
		&fakeAnalyzer{responses: []string{evaluationReport(132)}}, zap.NewNop())
	require.NoError(t, runner.RunEvaluation(ctx, eval.ID))

	tr, err := service.GetEvaluationTranscript(ctx, eval.ID)
	require.NoError(t, err)
	assert.Equal(t, "tr-1", tr.ID)
	assert.Equal(t, "vid-1", tr.VideoID)
	assert.Equal(t, 7, tr.WordCount)

	_, err = service.GetEvaluationTranscript(ctx, "ghost")
	var notFound *jobs.NotFoundError
	require.ErrorAs(t, err, &notFound)
}

func TestSubmitEvaluationValidation(t *testing.T) {
	ctx := context.Background()
	store, service, _ := testHarness(t)

	_, err := service.SubmitEvaluation(ctx, "missing")
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)

	require.NoError(t, store.SaveVideo(ctx, &model.Video{ID: "vid-0", InstructorID: "inst-1"}))
	_, err = service.SubmitEvaluation(ctx, "vid-0")
	require.ErrorAs(t, err, &vErr)
	assert.Contains(t, vErr.Reason, "duration")
}

// completeEvaluation runs a full evaluation through the pipeline so
// comparison tests operate on realistic completed records.
func completeEvaluation(t *testing.T, store *memStore, service *Service, videoID, instructor string, wpm float64, createdAt time.Time) string {
	t.Helper()
	ctx := context.Background()
	seedVideo(t, store, videoID, instructor)
	eval, err := service.SubmitEvaluation(ctx, videoID)
	require.NoError(t, err)

	transcript := sampleTranscript()
	transcript.ID = "tr-" + videoID
	runner := NewRunner(store, fakeResolver{}, &fakeTranscriber{transcript: transcript},
		&fakeAnalyzer{responses: []string{evaluationReport(wpm)}}, zap.NewNop())
	require.NoError(t, runner.RunEvaluation(ctx, eval.ID))

	// Pin creation time so chronological aggregation order is known.
	store.mu.Lock()
	store.evaluations[eval.ID].CreatedAt = createdAt
	store.mu.Unlock()
	return eval.ID
}

func TestComparisonPipelineEndToEnd(t *testing.T) {
	ctx := context.Background()
	store, service, _ := testHarness(t)

	base := time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)
	id1 := completeEvaluation(t, store, service, "vid-1", "inst-1", 110, base)
	id2 := completeEvaluation(t, store, service, "vid-2", "inst-1", 130, base.AddDate(0, 0, 7))
	id3 := completeEvaluation(t, store, service, "vid-3", "inst-1", 150, base.AddDate(0, 0, 14))

	comp, err := service.SubmitComparison(ctx, ComparisonRequest{
		RequestedBy:      "coach-1",
		Type:             model.ComparePersonalPerformance,
		EvaluationIDs:    []string{id1, id2, id3},
		Labels:           []string{"Week 1", "Week 2", "Week 3"},
		StartImmediately: true,
	})
	require.NoError(t, err)
	assert.Equal(t, model.StatusQueued, comp.Status)

	analyzer := &fakeAnalyzer{responses: []string{comparisonReport}}
	runner := NewRunner(store, fakeResolver{}, &fakeTranscriber{}, analyzer, zap.NewNop())
	require.NoError(t, runner.RunComparison(ctx, comp.ID))

	got, err := service.GetComparison(ctx, comp.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusCompleted, got.Status)
	assert.Equal(t, 3, got.SessionCount)
	assert.Equal(t, "fake-model-1", got.AnalysisModel)
	require.Len(t, got.Strengths, 1)
	require.Len(t, got.GrowthAreas, 1)

	wpm, ok := got.AggregatedMetrics["wpm"]
	require.True(t, ok)
	assert.InDelta(t, 130, wpm.Average, 1e-9)
	assert.Equal(t, 110.0, wpm.Min)
	assert.Equal(t, 150.0, wpm.Max)
	assert.Equal(t, 3, wpm.Count)
	assert.Equal(t, "increasing", wpm.Trend)

	// Session labels threaded into the prompt.
	require.Len(t, analyzer.prompts, 1)
	assert.Contains(t, analyzer.prompts[0], "Week 1")
	assert.Contains(t, analyzer.prompts[0], "Week 3")
}

func TestComparisonAnonymizesInstructors(t *testing.T) {
	ctx := context.Background()
	store, service, _ := testHarness(t)

	base := time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)
	id1 := completeEvaluation(t, store, service, "vid-1", "alice", 120, base)
	id2 := completeEvaluation(t, store, service, "vid-2", "bob", 140, base.AddDate(0, 0, 1))

	comp, err := service.SubmitComparison(ctx, ComparisonRequest{
		RequestedBy:          "director-1",
		Type:                 model.CompareClassDelivery,
		ClassTag:             "Go 101",
		AnonymizeInstructors: true,
		EvaluationIDs:        []string{id1, id2},
		StartImmediately:     true,
	})
	require.NoError(t, err)

	analyzer := &fakeAnalyzer{responses: []string{`## Best Practices to Share
**Pacing**
Both deliveries paced well.

## Common Delivery Gaps
**Recap**
Both rushed the recap.
`}}
	runner := NewRunner(store, fakeResolver{}, &fakeTranscriber{}, analyzer, zap.NewNop())
	require.NoError(t, runner.RunComparison(ctx, comp.ID))

	require.Len(t, analyzer.prompts, 1)
	assert.Contains(t, analyzer.prompts[0], "Instructor 1")
	assert.Contains(t, analyzer.prompts[0], "Instructor 2")
	assert.NotContains(t, analyzer.prompts[0], "alice")
	assert.NotContains(t, analyzer.prompts[0], "bob")
}

func TestSubmitComparisonValidation(t *testing.T) {
	ctx := context.Background()
	store, service, _ := testHarness(t)

	base := time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)
	id1 := completeEvaluation(t, store, service, "vid-1", "inst-1", 120, base)
	id2 := completeEvaluation(t, store, service, "vid-2", "inst-1", 140, base.AddDate(0, 0, 1))

	// A queued-but-never-run evaluation has no report.
	seedVideo(t, store, "vid-pending", "inst-1")
	pending, err := service.SubmitEvaluation(ctx, "vid-pending")
	require.NoError(t, err)

	manyIDs := make([]string, 11)
	for i := range manyIDs {
		manyIDs[i] = fmt.Sprintf("e-%d", i)
	}

	testCases := []struct {
		name   string
		req    ComparisonRequest
		reason string
	}{
		{
			name:   "missing requester",
			req:    ComparisonRequest{Type: model.ComparePersonalPerformance, EvaluationIDs: []string{id1, id2}},
			reason: "required",
		},
		{
			name:   "unknown type",
			req:    ComparisonRequest{RequestedBy: "c", Type: "sideways", EvaluationIDs: []string{id1, id2}},
			reason: "unknown type",
		},
		{
			name:   "too few sessions",
			req:    ComparisonRequest{RequestedBy: "c", Type: model.ComparePersonalPerformance, EvaluationIDs: []string{id1}},
			reason: "between 2 and 10",
		},
		{
			name:   "too many sessions",
			req:    ComparisonRequest{RequestedBy: "c", Type: model.ComparePersonalPerformance, EvaluationIDs: manyIDs},
			reason: "between 2 and 10",
		},
		{
			name:   "duplicate ids",
			req:    ComparisonRequest{RequestedBy: "c", Type: model.ComparePersonalPerformance, EvaluationIDs: []string{id1, id1}},
			reason: "duplicate",
		},
		{
			name:   "label length mismatch",
			req:    ComparisonRequest{RequestedBy: "c", Type: model.ComparePersonalPerformance, EvaluationIDs: []string{id1, id2}, Labels: []string{"only one"}},
			reason: "must match",
		},
		{
			name:   "unknown evaluation",
			req:    ComparisonRequest{RequestedBy: "c", Type: model.ComparePersonalPerformance, EvaluationIDs: []string{id1, "ghost"}},
			reason: "unknown evaluation",
		},
		{
			name:   "non-completed evaluation",
			req:    ComparisonRequest{RequestedBy: "c", Type: model.ComparePersonalPerformance, EvaluationIDs: []string{id1, pending.ID}},
			reason: "not completed",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := service.SubmitComparison(ctx, tc.req)
			var vErr *ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Contains(t, vErr.Error(), tc.reason)
		})
	}
}

func TestDraftComparisonStartFlow(t *testing.T) {
	ctx := context.Background()
	store, service, queue := testHarness(t)

	base := time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)
	id1 := completeEvaluation(t, store, service, "vid-1", "inst-1", 120, base)
	id2 := completeEvaluation(t, store, service, "vid-2", "inst-1", 140, base.AddDate(0, 0, 1))

	comp, err := service.SubmitComparison(ctx, ComparisonRequest{
		RequestedBy:   "coach-1",
		Type:          model.ComparePersonalPerformance,
		EvaluationIDs: []string{id1, id2},
	})
	require.NoError(t, err)
	assert.Equal(t, model.StatusDraft, comp.Status)

	// Drain the two evaluation tasks so only the comparison start lands.
	for len(queue.Tasks()) > 0 {
		<-queue.Tasks()
	}

	started, err := service.StartComparison(ctx, comp.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusQueued, started.Status)

	task := <-queue.Tasks()
	assert.Equal(t, Task{Kind: model.KindComparison, ID: comp.ID}, task)

	// Starting twice is a conflict.
	_, err = service.StartComparison(ctx, comp.ID)
	var conflict *jobs.ConflictError
	require.ErrorAs(t, err, &conflict)
}

// submitComparisonAt creates a comparison and pins its creation time so
// listing order is known.
func submitComparisonAt(t *testing.T, store *memStore, service *Service, req ComparisonRequest, createdAt time.Time) string {
	t.Helper()
	comp, err := service.SubmitComparison(context.Background(), req)
	require.NoError(t, err)
	store.mu.Lock()
	store.comparisons[comp.ID].CreatedAt = createdAt
	store.mu.Unlock()
	return comp.ID
}

func TestListComparisons(t *testing.T) {
	ctx := context.Background()
	store, service, _ := testHarness(t)

	base := time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)
	id1 := completeEvaluation(t, store, service, "vid-1", "inst-1", 120, base)
	id2 := completeEvaluation(t, store, service, "vid-2", "inst-1", 140, base.AddDate(0, 0, 1))

	personal := ComparisonRequest{
		RequestedBy:   "coach-1",
		Type:          model.ComparePersonalPerformance,
		EvaluationIDs: []string{id1, id2},
	}
	class := personal
	class.Type = model.CompareClassDelivery
	class.ClassTag = "Go 101"

	oldest := submitComparisonAt(t, store, service, personal, base)
	middle := submitComparisonAt(t, store, service, class, base.AddDate(0, 0, 1))
	newest := submitComparisonAt(t, store, service, personal, base.AddDate(0, 0, 2))

	list, err := service.ListComparisons(ctx, repository.ComparisonFilter{})
	require.NoError(t, err)
	assert.Equal(t, 3, list.Total)
	assert.Equal(t, 1, list.Page)
	assert.Equal(t, 20, list.PageSize)
	require.Len(t, list.Items, 3)
	assert.Equal(t, newest, list.Items[0].ID)
	assert.Equal(t, oldest, list.Items[2].ID)

	list, err = service.ListComparisons(ctx, repository.ComparisonFilter{Type: model.CompareClassDelivery})
	require.NoError(t, err)
	assert.Equal(t, 1, list.Total)
	require.Len(t, list.Items, 1)
	assert.Equal(t, middle, list.Items[0].ID)

	list, err = service.ListComparisons(ctx, repository.ComparisonFilter{Page: 2, PageSize: 2})
	require.NoError(t, err)
	assert.Equal(t, 3, list.Total)
	require.Len(t, list.Items, 1)
	assert.Equal(t, oldest, list.Items[0].ID)

	_, err = service.ListComparisons(ctx, repository.ComparisonFilter{Type: "sideways"})
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
}

func TestDeleteComparisonKeepsEvaluations(t *testing.T) {
	ctx := context.Background()
	store, service, _ := testHarness(t)

	base := time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)
	id1 := completeEvaluation(t, store, service, "vid-1", "inst-1", 120, base)
	id2 := completeEvaluation(t, store, service, "vid-2", "inst-1", 140, base.AddDate(0, 0, 1))

	comp, err := service.SubmitComparison(ctx, ComparisonRequest{
		RequestedBy:   "coach-1",
		Type:          model.ComparePersonalPerformance,
		EvaluationIDs: []string{id1, id2},
	})
	require.NoError(t, err)

	require.NoError(t, service.DeleteComparison(ctx, comp.ID))

	_, err = service.GetComparison(ctx, comp.ID)
	var notFound *jobs.NotFoundError
	require.ErrorAs(t, err, &notFound)

	// The linked evaluations survive the comparison.
	for _, id := range []string{id1, id2} {
		eval, err := service.GetEvaluation(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, model.StatusCompleted, eval.Status)
	}

	err = service.DeleteComparison(ctx, comp.ID)
	require.ErrorAs(t, err, &notFound)
}

func TestDeleteVideoRemovesRecordingAndDerivedRecords(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	queue := NewQueue(16)
	media := &fakeMedia{}
	service := NewService(store, queue, media, zap.NewNop())

	base := time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)
	evalID := completeEvaluation(t, store, service, "vid-1", "inst-1", 120, base)

	require.NoError(t, service.DeleteVideo(ctx, "vid-1"))
	assert.Equal(t, []string{"sessions/inst-1/vid-1.mp4"}, media.deleted)

	_, err := service.GetVideo(ctx, "vid-1")
	var notFound *jobs.NotFoundError
	require.ErrorAs(t, err, &notFound)

	_, err = service.GetEvaluation(ctx, evalID)
	require.ErrorAs(t, err, &notFound)

	tr, err := store.GetTranscript(ctx, "tr-vid-1")
	require.NoError(t, err)
	assert.Nil(t, tr)

	// An unknown video never reaches the object store.
	err = service.DeleteVideo(ctx, "ghost")
	require.ErrorAs(t, err, &notFound)
	assert.Len(t, media.deleted, 1)
}

func TestComparisonRevalidatesAtPickup(t *testing.T) {
	ctx := context.Background()
	store, service, _ := testHarness(t)

	base := time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)
	id1 := completeEvaluation(t, store, service, "vid-1", "inst-1", 120, base)
	id2 := completeEvaluation(t, store, service, "vid-2", "inst-1", 140, base.AddDate(0, 0, 1))

	comp, err := service.SubmitComparison(ctx, ComparisonRequest{
		RequestedBy:      "coach-1",
		Type:             model.ComparePersonalPerformance,
		EvaluationIDs:    []string{id1, id2},
		StartImmediately: true,
	})
	require.NoError(t, err)

	// The evaluation disappears between submission and pickup.
	store.mu.Lock()
	delete(store.evaluations, id2)
	store.mu.Unlock()

	analyzer := &fakeAnalyzer{responses: []string{comparisonReport}}
	runner := NewRunner(store, fakeResolver{}, &fakeTranscriber{}, analyzer, zap.NewNop())
	require.Error(t, runner.RunComparison(ctx, comp.ID))

	got, _ := service.GetComparison(ctx, comp.ID)
	assert.Equal(t, model.StatusFailed, got.Status)
	assert.Zero(t, analyzer.calls)
}

func TestInstructorDashboard(t *testing.T) {
	ctx := context.Background()
	store, service, _ := testHarness(t)

	base := time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)
	completeEvaluation(t, store, service, "vid-1", "inst-1", 110, base)
	completeEvaluation(t, store, service, "vid-2", "inst-1", 130, base.AddDate(0, 0, 7))
	completeEvaluation(t, store, service, "vid-3", "inst-1", 150, base.AddDate(0, 0, 14))

	// A failed evaluation is listed but excluded from trends.
	seedVideo(t, store, "vid-4", "inst-1")
	failed, err := service.SubmitEvaluation(ctx, "vid-4")
	require.NoError(t, err)
	require.NoError(t, store.FailEvaluation(ctx, failed.ID, "boom"))

	dashboard, err := service.InstructorDashboard(ctx, "inst-1")
	require.NoError(t, err)
	assert.Equal(t, 4, dashboard.Total)
	assert.Equal(t, 3, dashboard.Completed)

	// Listed newest first for display.
	require.Len(t, dashboard.Evaluations, 4)
	assert.Equal(t, failed.ID, dashboard.Evaluations[0].ID)
	assert.Equal(t, "vid-3", dashboard.Evaluations[1].VideoID)
	assert.Equal(t, "vid-1", dashboard.Evaluations[3].VideoID)

	// Every completed evaluation repeats the same finding titles, so each
	// shows up as a single theme counted across all three.
	require.Len(t, dashboard.TopStrengths, 1)
	assert.Equal(t, ThemeCount{Title: "Warm opening", Count: 3, TotalEvaluations: 3}, dashboard.TopStrengths[0])
	require.Len(t, dashboard.RecurringGrowthAreas, 1)
	assert.Equal(t, ThemeCount{Title: "Closing recap", Count: 3, TotalEvaluations: 3}, dashboard.RecurringGrowthAreas[0])

	var wpmTrend *MetricTrend
	for i := range dashboard.Trends {
		if dashboard.Trends[i].Key == "wpm" {
			wpmTrend = &dashboard.Trends[i]
		}
	}
	require.NotNil(t, wpmTrend)
	assert.InDelta(t, 130, wpmTrend.Summary.Average, 1e-9)
	assert.Equal(t, "increasing", wpmTrend.Summary.Trend)
	// wpm is range-targeted, so direction does not imply improvement and no
	// single value is the best one.
	assert.Equal(t, "stable", wpmTrend.Improvement)
	assert.Nil(t, wpmTrend.Best)
	require.NotNil(t, wpmTrend.TargetMin)
	assert.Equal(t, 120.0, *wpmTrend.TargetMin)
}

func TestInstructorMetricSeries(t *testing.T) {
	ctx := context.Background()
	store, service, _ := testHarness(t)

	base := time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)
	completeEvaluation(t, store, service, "vid-1", "inst-1", 100, base)
	completeEvaluation(t, store, service, "vid-2", "inst-1", 94, base.AddDate(0, 0, 7))

	series, err := service.InstructorMetricSeries(ctx, "inst-1", "wpm")
	require.NoError(t, err)
	require.Len(t, series.Points, 2)
	assert.Equal(t, 100.0, series.Points[0].Value)
	assert.Equal(t, 94.0, series.Points[1].Value)
	assert.Equal(t, "decreasing", series.Trend)

	_, err = service.InstructorMetricSeries(ctx, "inst-1", "bogus")
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
}

func TestPoolDrainsQueue(t *testing.T) {
	ctx := context.Background()
	store, service, queue := testHarness(t)
	seedVideo(t, store, "vid-1", "inst-1")
	eval, err := service.SubmitEvaluation(ctx, "vid-1")
	require.NoError(t, err)

	runner := NewRunner(store, fakeResolver{}, &fakeTranscriber{transcript: sampleTranscript()},
		&fakeAnalyzer{responses: []string{evaluationReport(132)}}, zap.NewNop())
	pool := NewPool(runner, queue, 2, zap.NewNop())
	pool.Start(ctx)
	pool.Stop()

	got, err := service.GetEvaluation(ctx, eval.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusCompleted, got.Status)
}

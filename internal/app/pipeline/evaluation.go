// Package pipeline drives evaluation and comparison jobs through their
// stages. All status writes go through the store's compare-and-set
// transitions, so a job can only ever be executed by the worker that won the
// initial transition out of queued.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"coachlens/internal/app/analysis"
	"coachlens/internal/app/api"
	"coachlens/internal/app/jobs"
	"coachlens/internal/app/metrics"
	"coachlens/internal/app/model"
	"coachlens/internal/app/repository"
)

// URLResolver turns a stored object key into a fetchable URL.
type URLResolver interface {
	ResolveURL(ctx context.Context, key string) (string, error)
}

// Runner executes one job at a time from pickup to terminal state.
type Runner struct {
	store       repository.JobStore
	media       URLResolver
	transcriber api.Transcriber
	analyzer    api.Analyzer
	log         *zap.Logger
}

func NewRunner(store repository.JobStore, media URLResolver, transcriber api.Transcriber, analyzer api.Analyzer, log *zap.Logger) *Runner {
	return &Runner{store: store, media: media, transcriber: transcriber, analyzer: analyzer, log: log}
}

// RunEvaluation drives one evaluation queued -> transcribing -> analyzing ->
// completed. The first transition is the exclusivity gate: a conflict means
// another worker owns the job and is returned as-is, without failing it.
func (r *Runner) RunEvaluation(ctx context.Context, id string) error {
	if err := r.store.TransitionEvaluation(ctx, id, jobs.StartableFrom(model.StatusTranscribing), model.StatusTranscribing); err != nil {
		return err
	}

	eval, err := r.store.GetEvaluation(ctx, id)
	if err != nil {
		return r.failEvaluation(ctx, id, "transcribing", fmt.Errorf("load evaluation: %w", err))
	}
	video, err := r.store.GetVideo(ctx, eval.VideoID)
	if err != nil {
		return r.failEvaluation(ctx, id, "transcribing", fmt.Errorf("load video: %w", err))
	}

	transcript, err := r.transcribe(ctx, video)
	if err != nil {
		return r.failEvaluation(ctx, id, "transcribing", err)
	}

	base := metrics.TranscriptBase(transcript)
	transcript.WordCount = int(base[metrics.KeyWordCount])
	transcript.SpeakerCount = int(base[metrics.KeySpeakerCount])
	if err := r.store.SaveTranscript(ctx, transcript); err != nil {
		return r.failEvaluation(ctx, id, "transcribing", fmt.Errorf("save transcript: %w", err))
	}

	eval.TranscriptID = transcript.ID
	eval.Metrics = base
	if err := r.store.UpdateEvaluation(ctx, eval); err != nil {
		return r.failEvaluation(ctx, id, "transcribing", fmt.Errorf("persist transcript link: %w", err))
	}

	if err := r.store.TransitionEvaluation(ctx, id, []model.JobStatus{model.StatusTranscribing}, model.StatusAnalyzing); err != nil {
		return err
	}

	analysisStart := time.Now()
	raw, err := r.analyzer.Analyze(ctx,
		analysis.EvaluationSystemPrompt,
		analysis.BuildEvaluationPrompt(transcriptText(transcript), video.InstructorID))
	if err != nil {
		return r.failEvaluation(ctx, id, "analyzing", fmt.Errorf("analysis request: %w", err))
	}

	findings, err := analysis.ParseEvaluation(raw)
	if err != nil {
		// Keep the raw response around for diagnosis before failing.
		eval.RawAnalysis = raw
		if uerr := r.store.UpdateEvaluation(ctx, eval); uerr != nil {
			r.log.Warn("could not persist raw analysis", zap.String("job_id", id), zap.Error(uerr))
		}
		return r.failEvaluation(ctx, id, "analyzing", err)
	}

	for k, v := range findings.Metrics {
		eval.Metrics[k] = v
	}
	eval.Metrics["analysis_processing_seconds"] = time.Since(analysisStart).Seconds()
	eval.ReportText = findings.ReportText
	eval.Strengths = findings.Strengths
	eval.GrowthAreas = findings.GrowthAreas
	eval.AnalysisModel = r.analyzer.Model()
	eval.RawAnalysis = raw
	if err := r.store.UpdateEvaluation(ctx, eval); err != nil {
		return r.failEvaluation(ctx, id, "analyzing", fmt.Errorf("persist findings: %w", err))
	}

	if err := r.store.TransitionEvaluation(ctx, id, []model.JobStatus{model.StatusAnalyzing}, model.StatusCompleted); err != nil {
		return err
	}
	jobsCompleted.WithLabelValues(string(model.KindEvaluation)).Inc()
	return nil
}

func (r *Runner) transcribe(ctx context.Context, video *model.Video) (*model.Transcript, error) {
	sourceURL, err := r.media.ResolveURL(ctx, video.SourceKey)
	if err != nil {
		return nil, &TranscriptionError{VideoID: video.ID, Err: fmt.Errorf("resolve source: %w", err)}
	}
	transcript, err := r.transcriber.Transcribe(ctx, sourceURL)
	if err != nil {
		return nil, &TranscriptionError{VideoID: video.ID, Err: err}
	}
	if strings.TrimSpace(transcript.Text) == "" && len(transcript.Utterances) == 0 {
		return nil, &TranscriptionError{VideoID: video.ID, Err: errors.New("provider returned an empty transcript")}
	}
	transcript.VideoID = video.ID
	if transcript.DurationSeconds == 0 {
		transcript.DurationSeconds = video.DurationSeconds
	}
	return transcript, nil
}

// failEvaluation records the terminal failure and returns the original cause.
func (r *Runner) failEvaluation(ctx context.Context, id, stage string, cause error) error {
	jobsFailed.WithLabelValues(string(model.KindEvaluation), stage).Inc()
	if err := r.store.FailEvaluation(ctx, id, cause.Error()); err != nil {
		r.log.Error("could not mark evaluation failed", zap.String("job_id", id), zap.Error(err))
	}
	return cause
}

func transcriptText(t *model.Transcript) string {
	if len(t.Utterances) > 0 {
		return t.FormatLines()
	}
	return t.Text
}

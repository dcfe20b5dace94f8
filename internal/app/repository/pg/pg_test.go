package pg

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coachlens/internal/app/jobs"
	"coachlens/internal/app/model"
	"coachlens/internal/app/repository"
)

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewStoreWithDB(db), mock
}

func TestTransitionEvaluationWinsGate(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec(`UPDATE evaluations SET status = \$1`).
		WithArgs(model.StatusTranscribing, sqlmock.AnyArg(), "eval-1", model.StatusQueued).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := store.TransitionEvaluation(context.Background(), "eval-1",
		[]model.JobStatus{model.StatusQueued}, model.StatusTranscribing)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTransitionEvaluationConflictWhenAlreadyClaimed(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec(`UPDATE evaluations SET status = \$1`).
		WithArgs(model.StatusTranscribing, sqlmock.AnyArg(), "eval-1", model.StatusQueued).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT status FROM evaluations WHERE id = $1`)).
		WithArgs("eval-1").
		WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow("transcribing"))

	err := store.TransitionEvaluation(context.Background(), "eval-1",
		[]model.JobStatus{model.StatusQueued}, model.StatusTranscribing)

	var conflict *jobs.ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, model.StatusTranscribing, conflict.Current)
	assert.Equal(t, model.StatusTranscribing, conflict.Target)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTransitionEvaluationNotFound(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec(`UPDATE evaluations SET status = \$1`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT status FROM evaluations WHERE id = $1`)).
		WithArgs("ghost").
		WillReturnError(sql.ErrNoRows)

	err := store.TransitionEvaluation(context.Background(), "ghost",
		[]model.JobStatus{model.StatusQueued}, model.StatusTranscribing)

	var notFound *jobs.NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, model.KindEvaluation, notFound.Kind)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTransitionRejectsIllegalEdgeBeforeTouchingDB(t *testing.T) {
	store, mock := newMockStore(t)

	// completed is terminal; no UPDATE may be issued for an edge the state
	// machine forbids.
	err := store.TransitionEvaluation(context.Background(), "eval-1",
		[]model.JobStatus{model.StatusCompleted}, model.StatusTranscribing)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "illegal edge")

	err = store.TransitionComparison(context.Background(), "comp-1",
		[]model.JobStatus{model.StatusQueued}, model.StatusCompleted)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "illegal edge")

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFailEvaluationIdempotentWhenAlreadyFailed(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec(`UPDATE evaluations SET status = 'failed'`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT status FROM evaluations WHERE id = $1`)).
		WithArgs("eval-1").
		WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow("failed"))

	require.NoError(t, store.FailEvaluation(context.Background(), "eval-1", "boom"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFailEvaluationConflictWhenCompleted(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec(`UPDATE evaluations SET status = 'failed'`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT status FROM evaluations WHERE id = $1`)).
		WithArgs("eval-1").
		WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow("completed"))

	err := store.FailEvaluation(context.Background(), "eval-1", "boom")

	var conflict *jobs.ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, model.StatusCompleted, conflict.Current)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetVideoNotFoundReturnsNil(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(`SELECT id, instructor_id, filename, source_key`).
		WithArgs("ghost").
		WillReturnError(sql.ErrNoRows)

	video, err := store.GetVideo(context.Background(), "ghost")
	require.NoError(t, err)
	assert.Nil(t, video)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetEvaluationScansJSONColumns(t *testing.T) {
	store, mock := newMockStore(t)

	now := time.Now().UTC()
	completed := now.Add(time.Hour)
	rows := sqlmock.NewRows([]string{
		"id", "video_id", "instructor_id", "status", "transcript_id", "report_text",
		"strengths", "growth_areas", "metrics", "analysis_model", "raw_analysis", "error_detail",
		"created_at", "updated_at", "started_at", "completed_at",
	}).AddRow(
		"eval-1", "vid-1", "inst-1", "completed", "tr-1", "# Report",
		`[{"title":"Pacing","description":"steady"}]`, `[]`, `{"wpm":132}`, "gpt-4o", "", "",
		now, now, now, completed,
	)
	mock.ExpectQuery(`SELECT id, video_id, instructor_id, status`).
		WithArgs("eval-1").
		WillReturnRows(rows)

	e, err := store.GetEvaluation(context.Background(), "eval-1")
	require.NoError(t, err)
	require.NotNil(t, e)
	assert.Equal(t, model.StatusCompleted, e.Status)
	require.Len(t, e.Strengths, 1)
	assert.Equal(t, "Pacing", e.Strengths[0].Title)
	assert.Empty(t, e.GrowthAreas)
	assert.InDelta(t, 132, e.Metrics["wpm"], 1e-9)
	require.NotNil(t, e.CompletedAt)
	assert.True(t, e.CompletedAt.Equal(completed))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListComparisonsFiltersAndPages(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM comparisons WHERE comparison_type = $1`)).
		WithArgs(model.CompareClassDelivery).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(12))
	mock.ExpectQuery(`ORDER BY created_at DESC LIMIT \$2 OFFSET \$3`).
		WithArgs(model.CompareClassDelivery, 5, 5).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	items, total, err := store.ListComparisons(context.Background(),
		repository.ComparisonFilter{Type: model.CompareClassDelivery, Page: 2, PageSize: 5})
	require.NoError(t, err)
	assert.Equal(t, 12, total)
	assert.Empty(t, items)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteVideoCascadesInOneTransaction(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM evaluations WHERE video_id = $1`)).
		WithArgs("vid-1").WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM transcripts WHERE video_id = $1`)).
		WithArgs("vid-1").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM videos WHERE id = $1`)).
		WithArgs("vid-1").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, store.DeleteVideo(context.Background(), "vid-1"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteVideoUnknownRollsBack(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM evaluations WHERE video_id = $1`)).
		WithArgs("ghost").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM transcripts WHERE video_id = $1`)).
		WithArgs("ghost").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM videos WHERE id = $1`)).
		WithArgs("ghost").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := store.DeleteVideo(context.Background(), "ghost")
	var notFound *jobs.NotFoundError
	require.ErrorAs(t, err, &notFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteComparisonNotFound(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM comparisons WHERE id = $1`)).
		WithArgs("ghost").WillReturnResult(sqlmock.NewResult(0, 0))

	err := store.DeleteComparison(context.Background(), "ghost")
	var notFound *jobs.NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, model.KindComparison, notFound.Kind)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateEvaluationNeverTouchesStatus(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec(`UPDATE evaluations SET transcript_id = \$1`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := store.UpdateEvaluation(context.Background(), &model.Evaluation{
		ID:           "eval-1",
		TranscriptID: "tr-1",
		ReportText:   "# Report",
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

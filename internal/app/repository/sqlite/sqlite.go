package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"coachlens/internal/app/jobs"
	"coachlens/internal/app/model"
	"coachlens/internal/app/repository"
)

const schema = `
CREATE TABLE IF NOT EXISTS videos (
	id TEXT PRIMARY KEY,
	instructor_id TEXT NOT NULL,
	filename TEXT NOT NULL,
	source_key TEXT NOT NULL,
	duration_seconds INTEGER NOT NULL DEFAULT 0,
	uploaded_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS transcripts (
	id TEXT PRIMARY KEY,
	video_id TEXT NOT NULL,
	text TEXT NOT NULL,
	utterances TEXT NOT NULL DEFAULT '[]',
	word_count INTEGER NOT NULL DEFAULT 0,
	speaker_count INTEGER NOT NULL DEFAULT 0,
	duration_seconds INTEGER NOT NULL DEFAULT 0,
	created_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS evaluations (
	id TEXT PRIMARY KEY,
	video_id TEXT NOT NULL,
	instructor_id TEXT NOT NULL,
	status TEXT NOT NULL,
	transcript_id TEXT NOT NULL DEFAULT '',
	report_text TEXT NOT NULL DEFAULT '',
	strengths TEXT NOT NULL DEFAULT '[]',
	growth_areas TEXT NOT NULL DEFAULT '[]',
	metrics TEXT NOT NULL DEFAULT '{}',
	analysis_model TEXT NOT NULL DEFAULT '',
	raw_analysis TEXT NOT NULL DEFAULT '',
	error_detail TEXT NOT NULL DEFAULT '',
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL,
	started_at DATETIME,
	completed_at DATETIME
);
CREATE INDEX IF NOT EXISTS idx_evaluations_instructor ON evaluations(instructor_id, created_at);

CREATE TABLE IF NOT EXISTS comparisons (
	id TEXT PRIMARY KEY,
	requested_by TEXT NOT NULL,
	title TEXT NOT NULL DEFAULT '',
	comparison_type TEXT NOT NULL,
	status TEXT NOT NULL,
	class_tag TEXT NOT NULL DEFAULT '',
	anonymize_instructors INTEGER NOT NULL DEFAULT 0,
	links TEXT NOT NULL DEFAULT '[]',
	aggregated_metrics TEXT NOT NULL DEFAULT '{}',
	session_count INTEGER NOT NULL DEFAULT 0,
	strengths TEXT NOT NULL DEFAULT '[]',
	growth_areas TEXT NOT NULL DEFAULT '[]',
	report_text TEXT NOT NULL DEFAULT '',
	analysis_model TEXT NOT NULL DEFAULT '',
	error_detail TEXT NOT NULL DEFAULT '',
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL,
	started_at DATETIME,
	completed_at DATETIME
);
`

// Store is the sqlite-backed JobStore, the default for local development.
type Store struct {
	db *sql.DB
}

var _ repository.JobStore = (*Store)(nil)

func NewStore(dbFilePath string) (*Store, error) {
	db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?cache=shared&mode=rwc&_busy_timeout=5000", dbFilePath))
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// sqlite serializes writers; a single connection avoids SQLITE_BUSY
	// races between concurrent pipeline workers.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) SaveVideo(ctx context.Context, v *model.Video) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO videos (id, instructor_id, filename, source_key, duration_seconds, uploaded_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET duration_seconds = excluded.duration_seconds`,
		v.ID, v.InstructorID, v.Filename, v.SourceKey, v.DurationSeconds, v.UploadedAt)
	if err != nil {
		return fmt.Errorf("save video: %w", err)
	}
	return nil
}

func (s *Store) GetVideo(ctx context.Context, id string) (*model.Video, error) {
	var v model.Video
	err := s.db.QueryRowContext(ctx, `
		SELECT id, instructor_id, filename, source_key, duration_seconds, uploaded_at
		FROM videos WHERE id = ?`, id).
		Scan(&v.ID, &v.InstructorID, &v.Filename, &v.SourceKey, &v.DurationSeconds, &v.UploadedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get video: %w", err)
	}
	return &v, nil
}

func (s *Store) DeleteVideo(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("delete video: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM evaluations WHERE video_id = ?`, id); err != nil {
		return fmt.Errorf("delete evaluations for video: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM transcripts WHERE video_id = ?`, id); err != nil {
		return fmt.Errorf("delete transcripts for video: %w", err)
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM videos WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete video: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return fmt.Errorf("delete video: %w", err)
	} else if n == 0 {
		return &jobs.NotFoundError{Kind: "video", ID: id}
	}
	return tx.Commit()
}

func (s *Store) SaveTranscript(ctx context.Context, t *model.Transcript) error {
	utterances, err := repository.ToJSON(t.Utterances)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO transcripts (id, video_id, text, utterances, word_count, speaker_count, duration_seconds, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.VideoID, t.Text, utterances, t.WordCount, t.SpeakerCount, t.DurationSeconds, t.CreatedAt)
	if err != nil {
		return fmt.Errorf("save transcript: %w", err)
	}
	return nil
}

func (s *Store) GetTranscript(ctx context.Context, id string) (*model.Transcript, error) {
	var t model.Transcript
	var utterances []byte
	err := s.db.QueryRowContext(ctx, `
		SELECT id, video_id, text, utterances, word_count, speaker_count, duration_seconds, created_at
		FROM transcripts WHERE id = ?`, id).
		Scan(&t.ID, &t.VideoID, &t.Text, &utterances, &t.WordCount, &t.SpeakerCount, &t.DurationSeconds, &t.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get transcript: %w", err)
	}
	if err := repository.FromJSON(utterances, &t.Utterances); err != nil {
		return nil, err
	}
	return &t, nil
}

const evaluationColumns = `id, video_id, instructor_id, status, transcript_id, report_text,
	strengths, growth_areas, metrics, analysis_model, raw_analysis, error_detail,
	created_at, updated_at, started_at, completed_at`

func (s *Store) CreateEvaluation(ctx context.Context, e *model.Evaluation) error {
	strengths, growth, metrics, err := marshalFindings(e.Strengths, e.GrowthAreas, e.Metrics)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO evaluations (`+evaluationColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.VideoID, e.InstructorID, e.Status, e.TranscriptID, e.ReportText,
		strengths, growth, metrics, e.AnalysisModel, e.RawAnalysis, e.ErrorDetail,
		e.CreatedAt, e.UpdatedAt, e.StartedAt, e.CompletedAt)
	if err != nil {
		return fmt.Errorf("create evaluation: %w", err)
	}
	return nil
}

func (s *Store) GetEvaluation(ctx context.Context, id string) (*model.Evaluation, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+evaluationColumns+` FROM evaluations WHERE id = ?`, id)
	e, err := scanEvaluation(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return e, err
}

func (s *Store) GetEvaluations(ctx context.Context, ids []string) ([]model.Evaluation, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+evaluationColumns+` FROM evaluations WHERE id IN (`+placeholders+`)`, args...)
	if err != nil {
		return nil, fmt.Errorf("get evaluations: %w", err)
	}
	defer rows.Close()
	return collectEvaluations(rows)
}

func (s *Store) ListEvaluationsByInstructor(ctx context.Context, instructorID string) ([]model.Evaluation, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+evaluationColumns+` FROM evaluations
		WHERE instructor_id = ? ORDER BY created_at ASC`, instructorID)
	if err != nil {
		return nil, fmt.Errorf("list evaluations: %w", err)
	}
	defer rows.Close()
	return collectEvaluations(rows)
}

func (s *Store) UpdateEvaluation(ctx context.Context, e *model.Evaluation) error {
	strengths, growth, metrics, err := marshalFindings(e.Strengths, e.GrowthAreas, e.Metrics)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		UPDATE evaluations SET transcript_id = ?, report_text = ?, strengths = ?, growth_areas = ?,
			metrics = ?, analysis_model = ?, raw_analysis = ?, updated_at = ?
		WHERE id = ?`,
		e.TranscriptID, e.ReportText, strengths, growth, metrics,
		e.AnalysisModel, e.RawAnalysis, time.Now().UTC(), e.ID)
	if err != nil {
		return fmt.Errorf("update evaluation: %w", err)
	}
	return nil
}

func (s *Store) TransitionEvaluation(ctx context.Context, id string, from []model.JobStatus, to model.JobStatus) error {
	return s.transition(ctx, "evaluations", model.KindEvaluation, id, from, to)
}

func (s *Store) FailEvaluation(ctx context.Context, id string, reason string) error {
	return s.fail(ctx, "evaluations", model.KindEvaluation, id, reason)
}

const comparisonColumns = `id, requested_by, title, comparison_type, status, class_tag,
	anonymize_instructors, links, aggregated_metrics, session_count, strengths, growth_areas,
	report_text, analysis_model, error_detail, created_at, updated_at, started_at, completed_at`

func (s *Store) CreateComparison(ctx context.Context, c *model.Comparison) error {
	links, aggregated, strengths, growth, err := marshalComparison(c)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO comparisons (`+comparisonColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.RequestedBy, c.Title, c.Type, c.Status, c.ClassTag,
		c.AnonymizeInstructors, links, aggregated, c.SessionCount, strengths, growth,
		c.ReportText, c.AnalysisModel, c.ErrorDetail, c.CreatedAt, c.UpdatedAt, c.StartedAt, c.CompletedAt)
	if err != nil {
		return fmt.Errorf("create comparison: %w", err)
	}
	return nil
}

func (s *Store) GetComparison(ctx context.Context, id string) (*model.Comparison, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+comparisonColumns+` FROM comparisons WHERE id = ?`, id)
	c, err := scanComparison(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return c, err
}

func (s *Store) ListComparisons(ctx context.Context, filter repository.ComparisonFilter) ([]model.Comparison, int, error) {
	where, args := comparisonFilterClause(filter)

	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM comparisons`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count comparisons: %w", err)
	}

	page, size := repository.NormalizePage(filter.Page, filter.PageSize)
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+comparisonColumns+` FROM comparisons`+where+
			` ORDER BY created_at DESC LIMIT ? OFFSET ?`,
		append(args, size, (page-1)*size)...)
	if err != nil {
		return nil, 0, fmt.Errorf("list comparisons: %w", err)
	}
	defer rows.Close()

	comparisons := make([]model.Comparison, 0)
	for rows.Next() {
		c, err := scanComparison(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan comparison: %w", err)
		}
		comparisons = append(comparisons, *c)
	}
	return comparisons, total, rows.Err()
}

func (s *Store) UpdateComparison(ctx context.Context, c *model.Comparison) error {
	links, aggregated, strengths, growth, err := marshalComparison(c)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		UPDATE comparisons SET links = ?, aggregated_metrics = ?, session_count = ?, strengths = ?,
			growth_areas = ?, report_text = ?, analysis_model = ?, updated_at = ?
		WHERE id = ?`,
		links, aggregated, c.SessionCount, strengths, growth,
		c.ReportText, c.AnalysisModel, time.Now().UTC(), c.ID)
	if err != nil {
		return fmt.Errorf("update comparison: %w", err)
	}
	return nil
}

func (s *Store) DeleteComparison(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM comparisons WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete comparison: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return fmt.Errorf("delete comparison: %w", err)
	} else if n == 0 {
		return &jobs.NotFoundError{Kind: model.KindComparison, ID: id}
	}
	return nil
}

func (s *Store) TransitionComparison(ctx context.Context, id string, from []model.JobStatus, to model.JobStatus) error {
	return s.transition(ctx, "comparisons", model.KindComparison, id, from, to)
}

func (s *Store) FailComparison(ctx context.Context, id string, reason string) error {
	return s.fail(ctx, "comparisons", model.KindComparison, id, reason)
}

// transition compare-and-sets the status column. The WHERE clause on the old
// status makes this the concurrency gate for the whole pipeline.
func (s *Store) transition(ctx context.Context, table string, kind model.JobKind, id string, from []model.JobStatus, to model.JobStatus) error {
	for _, f := range from {
		if !jobs.CanTransition(f, to) {
			return fmt.Errorf("transition %s: illegal edge %s -> %s", kind, f, to)
		}
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(from)), ",")
	now := time.Now().UTC()
	args := []interface{}{to, now, now, to, now, id}
	for _, f := range from {
		args = append(args, f)
	}
	res, err := s.db.ExecContext(ctx, `
		UPDATE `+table+` SET status = ?, updated_at = ?,
			started_at = CASE WHEN started_at IS NULL AND status = 'queued' THEN ? ELSE started_at END,
			completed_at = CASE WHEN ? IN ('completed', 'failed') THEN ? ELSE completed_at END
		WHERE id = ? AND status IN (`+placeholders+`)`,
		args...)
	if err != nil {
		return fmt.Errorf("transition %s: %w", kind, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("transition %s: %w", kind, err)
	}
	if n == 0 {
		current, err := s.currentStatus(ctx, table, id)
		if err != nil {
			return err
		}
		if current == "" {
			return &jobs.NotFoundError{Kind: kind, ID: id}
		}
		return &jobs.ConflictError{JobID: id, Current: current, Target: to}
	}
	return nil
}

func (s *Store) fail(ctx context.Context, table string, kind model.JobKind, id string, reason string) error {
	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx, `
		UPDATE `+table+` SET status = 'failed', error_detail = ?, updated_at = ?, completed_at = ?
		WHERE id = ? AND status NOT IN ('completed', 'failed')`,
		reason, now, now, id)
	if err != nil {
		return fmt.Errorf("fail %s: %w", kind, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("fail %s: %w", kind, err)
	}
	if n == 0 {
		current, err := s.currentStatus(ctx, table, id)
		if err != nil {
			return err
		}
		switch current {
		case "":
			return &jobs.NotFoundError{Kind: kind, ID: id}
		case model.StatusFailed:
			return nil // already failed, idempotent
		default:
			return &jobs.ConflictError{JobID: id, Current: current, Target: model.StatusFailed}
		}
	}
	return nil
}

func comparisonFilterClause(filter repository.ComparisonFilter) (string, []interface{}) {
	var conds []string
	var args []interface{}
	if filter.Type != "" {
		conds = append(conds, "comparison_type = ?")
		args = append(args, filter.Type)
	}
	if filter.Status != "" {
		conds = append(conds, "status = ?")
		args = append(args, filter.Status)
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func (s *Store) currentStatus(ctx context.Context, table, id string) (model.JobStatus, error) {
	var status model.JobStatus
	err := s.db.QueryRowContext(ctx, `SELECT status FROM `+table+` WHERE id = ?`, id).Scan(&status)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read status: %w", err)
	}
	return status, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanEvaluation(row rowScanner) (*model.Evaluation, error) {
	var e model.Evaluation
	var strengths, growth, metrics []byte
	var startedAt, completedAt sql.NullTime
	err := row.Scan(&e.ID, &e.VideoID, &e.InstructorID, &e.Status, &e.TranscriptID, &e.ReportText,
		&strengths, &growth, &metrics, &e.AnalysisModel, &e.RawAnalysis, &e.ErrorDetail,
		&e.CreatedAt, &e.UpdatedAt, &startedAt, &completedAt)
	if err != nil {
		return nil, err
	}
	if err := repository.FromJSON(strengths, &e.Strengths); err != nil {
		return nil, err
	}
	if err := repository.FromJSON(growth, &e.GrowthAreas); err != nil {
		return nil, err
	}
	if err := repository.FromJSON(metrics, &e.Metrics); err != nil {
		return nil, err
	}
	if startedAt.Valid {
		e.StartedAt = &startedAt.Time
	}
	if completedAt.Valid {
		e.CompletedAt = &completedAt.Time
	}
	return &e, nil
}

func collectEvaluations(rows *sql.Rows) ([]model.Evaluation, error) {
	evaluations := make([]model.Evaluation, 0)
	for rows.Next() {
		e, err := scanEvaluation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan evaluation: %w", err)
		}
		evaluations = append(evaluations, *e)
	}
	return evaluations, rows.Err()
}

func scanComparison(row rowScanner) (*model.Comparison, error) {
	var c model.Comparison
	var links, aggregated, strengths, growth []byte
	var startedAt, completedAt sql.NullTime
	err := row.Scan(&c.ID, &c.RequestedBy, &c.Title, &c.Type, &c.Status, &c.ClassTag,
		&c.AnonymizeInstructors, &links, &aggregated, &c.SessionCount, &strengths, &growth,
		&c.ReportText, &c.AnalysisModel, &c.ErrorDetail, &c.CreatedAt, &c.UpdatedAt, &startedAt, &completedAt)
	if err != nil {
		return nil, err
	}
	if err := repository.FromJSON(links, &c.Links); err != nil {
		return nil, err
	}
	if err := repository.FromJSON(aggregated, &c.AggregatedMetrics); err != nil {
		return nil, err
	}
	if err := repository.FromJSON(strengths, &c.Strengths); err != nil {
		return nil, err
	}
	if err := repository.FromJSON(growth, &c.GrowthAreas); err != nil {
		return nil, err
	}
	if startedAt.Valid {
		c.StartedAt = &startedAt.Time
	}
	if completedAt.Valid {
		c.CompletedAt = &completedAt.Time
	}
	return &c, nil
}

func marshalFindings(strengths, growth []model.FindingItem, metrics map[string]float64) (string, string, string, error) {
	s, err := repository.ToJSON(orEmptyItems(strengths))
	if err != nil {
		return "", "", "", err
	}
	g, err := repository.ToJSON(orEmptyItems(growth))
	if err != nil {
		return "", "", "", err
	}
	m, err := repository.ToJSON(orEmptyMetrics(metrics))
	if err != nil {
		return "", "", "", err
	}
	return s, g, m, nil
}

func marshalComparison(c *model.Comparison) (string, string, string, string, error) {
	linksVal := c.Links
	if linksVal == nil {
		linksVal = []model.ComparisonLink{}
	}
	aggregatedVal := c.AggregatedMetrics
	if aggregatedVal == nil {
		aggregatedVal = map[string]model.MetricSummary{}
	}
	links, err := repository.ToJSON(linksVal)
	if err != nil {
		return "", "", "", "", err
	}
	aggregated, err := repository.ToJSON(aggregatedVal)
	if err != nil {
		return "", "", "", "", err
	}
	strengths, growth, _, err := marshalFindings(c.Strengths, c.GrowthAreas, nil)
	if err != nil {
		return "", "", "", "", err
	}
	return links, aggregated, strengths, growth, nil
}

func orEmptyItems(items []model.FindingItem) []model.FindingItem {
	if items == nil {
		return []model.FindingItem{}
	}
	return items
}

func orEmptyMetrics(m map[string]float64) map[string]float64 {
	if m == nil {
		return map[string]float64{}
	}
	return m
}

package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Status is a job's lifecycle state.
type Status string

const (
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// timeLayout is fixed width so stored timestamps sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// InterruptedMessage is recorded for jobs a previous process left running.
const InterruptedMessage = "interrupted before completion"

// Job is one recorded transcription run.
type Job struct {
	ID             string
	Source         string
	Model          string
	Language       string
	TargetLanguage string
	Status         Status
	FailedStage    string
	ErrorMessage   string
	OutputDir      string
	Outputs        []string
	BundlePath     string
	Published      []string
	Segments       int
	DurationSec    float64
	CreatedAt      time.Time
	UpdatedAt      time.Time
	FinishedAt     time.Time
}

// Outcome carries what a successful run produced.
type Outcome struct {
	Language    string
	Outputs     []string
	BundlePath  string
	Published   []string
	Segments    int
	DurationSec float64
}

// Begin records a new running job. ID and Source are required.
func (s *Store) Begin(ctx context.Context, job Job) error {
	if strings.TrimSpace(job.ID) == "" || strings.TrimSpace(job.Source) == "" {
		return errors.New("history begin: id and source required")
	}
	now := time.Now().UTC().Format(timeLayout)
	_, err := s.exec(ctx,
		`INSERT INTO jobs (
            id, source, model, language, target_language, status,
            output_dir, created_at, updated_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		job.ID,
		job.Source,
		nullableString(job.Model),
		nullableString(job.Language),
		nullableString(job.TargetLanguage),
		StatusRunning,
		nullableString(job.OutputDir),
		now,
		now,
	)
	if err != nil {
		return fmt.Errorf("history begin %s: %w", job.ID, err)
	}
	return nil
}

// Complete marks a running job as completed with its outputs.
func (s *Store) Complete(ctx context.Context, id string, outcome Outcome) error {
	outputs, err := encodeList(outcome.Outputs)
	if err != nil {
		return err
	}
	published, err := encodeList(outcome.Published)
	if err != nil {
		return err
	}
	now := time.Now().UTC().Format(timeLayout)
	return s.finish(ctx, id,
		`UPDATE jobs SET status = ?, language = COALESCE(?, language), outputs_json = ?, bundle_path = ?,
            published_json = ?, segments = ?, duration_seconds = ?, updated_at = ?, finished_at = ?
        WHERE id = ?`,
		StatusCompleted,
		nullableString(outcome.Language),
		outputs,
		nullableString(outcome.BundlePath),
		published,
		outcome.Segments,
		outcome.DurationSec,
		now,
		now,
		id,
	)
}

// Fail marks a job as failed at stage with the error text.
func (s *Store) Fail(ctx context.Context, id, stage string, cause error) error {
	message := "unknown error"
	if cause != nil {
		message = cause.Error()
	}
	now := time.Now().UTC().Format(timeLayout)
	return s.finish(ctx, id,
		`UPDATE jobs SET status = ?, failed_stage = ?, error_message = ?, updated_at = ?, finished_at = ?
        WHERE id = ?`,
		StatusFailed,
		nullableString(stage),
		message,
		now,
		now,
		id,
	)
}

func (s *Store) finish(ctx context.Context, id, query string, args ...any) error {
	res, err := s.exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("history update %s: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("history update %s: %w", id, ErrNotFound)
	}
	return nil
}

// MarkInterrupted fails every job still marked running and returns how many
// rows changed. Call it before starting new work.
func (s *Store) MarkInterrupted(ctx context.Context) (int64, error) {
	now := time.Now().UTC().Format(timeLayout)
	res, err := s.exec(ctx,
		`UPDATE jobs SET status = ?, error_message = ?, updated_at = ?, finished_at = ? WHERE status = ?`,
		StatusFailed, InterruptedMessage, now, now, StatusRunning,
	)
	if err != nil {
		return 0, fmt.Errorf("history mark interrupted: %w", err)
	}
	return res.RowsAffected()
}

const jobColumns = `id, source, model, language, target_language, status, failed_stage,
    error_message, output_dir, outputs_json, bundle_path, published_json, segments,
    duration_seconds, created_at, updated_at, finished_at`

// Get returns the job with id or ErrNotFound.
func (s *Store) Get(ctx context.Context, id string) (*Job, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+jobColumns+" FROM jobs WHERE id = ?", id)
	job, err := scanJob(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("history get %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("history get %s: %w", id, err)
	}
	return job, nil
}

// List returns up to limit jobs, newest first. A limit <= 0 returns all.
func (s *Store) List(ctx context.Context, limit int) ([]*Job, error) {
	query := "SELECT " + jobColumns + " FROM jobs ORDER BY created_at DESC, id"
	var args []any
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("history list: %w", err)
	}
	defer rows.Close()

	var jobs []*Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("history list: %w", err)
		}
		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}

// Prune deletes finished jobs created before now-olderThan and returns the
// number removed. Running jobs are kept.
func (s *Store) Prune(ctx context.Context, olderThan time.Duration) (int64, error) {
	cutoff := time.Now().UTC().Add(-olderThan).Format(timeLayout)
	res, err := s.exec(ctx,
		`DELETE FROM jobs WHERE created_at < ? AND status != ?`,
		cutoff, StatusRunning,
	)
	if err != nil {
		return 0, fmt.Errorf("history prune: %w", err)
	}
	return res.RowsAffected()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanJob(row scanner) (*Job, error) {
	var (
		job                                                Job
		model, language, target, stage, message, outputDir sql.NullString
		outputs, bundle, published, finished               sql.NullString
		status, created, updated                           string
	)
	if err := row.Scan(
		&job.ID, &job.Source, &model, &language, &target, &status, &stage,
		&message, &outputDir, &outputs, &bundle, &published, &job.Segments,
		&job.DurationSec, &created, &updated, &finished,
	); err != nil {
		return nil, err
	}
	job.Model = model.String
	job.Language = language.String
	job.TargetLanguage = target.String
	job.Status = Status(status)
	job.FailedStage = stage.String
	job.ErrorMessage = message.String
	job.OutputDir = outputDir.String
	job.BundlePath = bundle.String
	job.CreatedAt = parseTime(created)
	job.UpdatedAt = parseTime(updated)
	job.FinishedAt = parseTime(finished.String)
	var err error
	if job.Outputs, err = decodeList(outputs); err != nil {
		return nil, fmt.Errorf("decode outputs: %w", err)
	}
	if job.Published, err = decodeList(published); err != nil {
		return nil, fmt.Errorf("decode published: %w", err)
	}
	return &job, nil
}

func nullableString(value string) any {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return value
}

func encodeList(values []string) (any, error) {
	if len(values) == 0 {
		return nil, nil
	}
	data, err := json.Marshal(values)
	if err != nil {
		return nil, fmt.Errorf("encode list: %w", err)
	}
	return string(data), nil
}

func decodeList(value sql.NullString) ([]string, error) {
	if !value.Valid || value.String == "" {
		return nil, nil
	}
	var out []string
	if err := json.Unmarshal([]byte(value.String), &out); err != nil {
		return nil, err
	}
	return out, nil
}

func parseTime(value string) time.Time {
	if value == "" {
		return time.Time{}
	}
	t, err := time.Parse(timeLayout, value)
	if err != nil {
		return time.Time{}
	}
	return t
}

// File path: internal/history/outcomes.go
package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// StartRun inserts the run header before entity processing begins.
func (s *Store) StartRun(ctx context.Context, runID, provider string, total, valid int) error {
	if s == nil || s.db == nil {
		return errors.New("history store not initialised")
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, provider, started_at, students_total, students_valid) VALUES (?, ?, ?, ?, ?)`,
		runID, provider, timestamp(), total, valid)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// FinishRun closes out the run header once all outcomes are recorded.
func (s *Store) FinishRun(ctx context.Context, runID, status string, fallbackCount int) error {
	if s == nil || s.db == nil {
		return errors.New("history store not initialised")
	}
	_, err := s.db.ExecContext(ctx,
		`UPDATE runs SET finished_at = ?, status = ?, fallback_count = ? WHERE id = ?`,
		timestamp(), status, fallbackCount, runID)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	return nil
}

// RecordStudentOutcome appends one student's audit record.
func (s *Store) RecordStudentOutcome(ctx context.Context, outcome StudentOutcome) error {
	if s == nil || s.db == nil {
		return errors.New("history store not initialised")
	}
	outcome.CreatedAt = timestamp()
	_, err := s.db.NamedExecContext(ctx,
		`INSERT INTO student_outcomes
                (run_id, student_id, student_name, status, used_fallback, risk_level, average_score, analysis_json, insight_json, rendered_ref, error, created_at)
                VALUES (:run_id, :student_id, :student_name, :status, :used_fallback, :risk_level, :average_score, :analysis_json, :insight_json, :rendered_ref, :error, :created_at)`,
		outcome)
	if err != nil {
		return fmt.Errorf("insert student outcome: %w", err)
	}
	return nil
}

// RecordClassOutcome appends the aggregate audit record.
func (s *Store) RecordClassOutcome(ctx context.Context, outcome ClassOutcome) error {
	if s == nil || s.db == nil {
		return errors.New("history store not initialised")
	}
	outcome.CreatedAt = timestamp()
	_, err := s.db.NamedExecContext(ctx,
		`INSERT INTO class_outcomes
                (run_id, status, used_fallback, class_average, insight_json, rendered_ref, error, created_at)
                VALUES (:run_id, :status, :used_fallback, :class_average, :insight_json, :rendered_ref, :error, :created_at)`,
		outcome)
	if err != nil {
		return fmt.Errorf("insert class outcome: %w", err)
	}
	return nil
}

// RecentRuns returns up to limit run headers, newest first.
func (s *Store) RecentRuns(ctx context.Context, limit int) ([]RunRow, error) {
	if s == nil || s.db == nil {
		return nil, errors.New("history store not initialised")
	}
	if limit <= 0 {
		limit = 20
	}
	var rows []RunRow
	err := s.db.SelectContext(ctx, &rows,
		`SELECT id, provider, started_at, finished_at, students_total, students_valid, fallback_count, status
                FROM runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("select runs: %w", err)
	}
	return rows, nil
}

// RunDetail loads a run header with its student and class outcomes.
func (s *Store) RunDetail(ctx context.Context, runID string) (*RunDetail, error) {
	if s == nil || s.db == nil {
		return nil, errors.New("history store not initialised")
	}
	var run RunRow
	err := s.db.GetContext(ctx, &run,
		`SELECT id, provider, started_at, finished_at, students_total, students_valid, fallback_count, status
                FROM runs WHERE id = ?`, runID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("select run: %w", err)
	}
	detail := &RunDetail{Run: run}
	err = s.db.SelectContext(ctx, &detail.Students,
		`SELECT run_id, student_id, student_name, status, used_fallback, risk_level, average_score, analysis_json, insight_json, rendered_ref, error, created_at
                FROM student_outcomes WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, fmt.Errorf("select student outcomes: %w", err)
	}
	var class []ClassOutcome
	err = s.db.SelectContext(ctx, &class,
		`SELECT run_id, status, used_fallback, class_average, insight_json, rendered_ref, error, created_at
                FROM class_outcomes WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, fmt.Errorf("select class outcome: %w", err)
	}
	if len(class) > 0 {
		detail.Class = &class[len(class)-1]
	}
	return detail, nil
}

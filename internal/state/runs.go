package state

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/leapstack-labs/needscheck/pkg/core"
)

// ErrRunNotFound is returned by GetRun for unknown ids.
var ErrRunNotFound = errors.New("run not found")

// RecordRun stores a run and its findings in one transaction.
func (s *Store) RecordRun(ctx context.Context, run *Run) error {
	if s.db == nil {
		return fmt.Errorf("database not opened")
	}
	if run.ID == "" {
		run.ID = NewRunID()
	}

	s.logger.Debug("recording run",
		slog.String("id", run.ID),
		slog.String("source", run.Source),
		slog.String("verdict", string(run.Verdict)))

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, source, schema_name, verdict, strict, error_count, warning_count, started_at, finished_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Source, run.Schema, string(run.Verdict), run.Strict,
		run.Errors, run.Warnings, run.StartedAt.UTC(), run.FinishedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	if len(run.Findings) > 0 {
		stmt, err := tx.PrepareContext(ctx,
			`INSERT INTO findings (run_id, seq, rule_id, severity, message, version, need, path)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("failed to prepare finding insert: %w", err)
		}
		defer func() { _ = stmt.Close() }()

		for i, f := range run.Findings {
			if _, err := stmt.ExecContext(ctx, run.ID, i, f.RuleID, f.Severity.String(), f.Message, f.Version, f.Need, f.Path); err != nil {
				return fmt.Errorf("failed to insert finding %d: %w", i, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit run: %w", err)
	}
	return nil
}

// ListRuns returns the most recent runs, newest first, without findings.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]*Run, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, source, schema_name, verdict, strict, error_count, warning_count, started_at, finished_at
		 FROM runs ORDER BY started_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var runs []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	return runs, nil
}

// GetRun returns one run with its findings in report order.
func (s *Store) GetRun(ctx context.Context, id string) (*Run, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	row := s.db.QueryRowContext(ctx,
		`SELECT id, source, schema_name, verdict, strict, error_count, warning_count, started_at, finished_at
		 FROM runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT seq, rule_id, severity, message, version, need, path
		 FROM findings WHERE run_id = ? ORDER BY seq`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get findings: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var f Finding
		var severity string
		if err := rows.Scan(&f.Seq, &f.RuleID, &severity, &f.Message, &f.Version, &f.Need, &f.Path); err != nil {
			return nil, fmt.Errorf("failed to scan finding: %w", err)
		}
		f.Severity, _ = core.ParseSeverity(severity)
		run.Findings = append(run.Findings, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to get findings: %w", err)
	}
	return run, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (*Run, error) {
	var run Run
	var verdict string
	err := row.Scan(&run.ID, &run.Source, &run.Schema, &verdict, &run.Strict,
		&run.Errors, &run.Warnings, &run.StartedAt, &run.FinishedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan run: %w", err)
	}
	run.Verdict = core.Verdict(verdict)
	return &run, nil
}

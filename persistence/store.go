// Package persistence implements the write-through persistence layer:
// append/appendBatch/find/count over audit reports, with idempotency on
// (sqlId, timestamp) and a retention sweeper.
package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"

	"github.com/sqlguard/sqlguard"
)

var log = logrus.WithField("component", "persistence")

// Store is a row-store write-through persistence backend, backed by
// Postgres through pgx. A column-store backend implementing the same
// operations could stand in for it.
type Store struct {
	pool *pgxpool.Pool
}

// New wraps an already-open pgx pool. The caller owns the pool's
// lifecycle (including Close).
func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Connect opens a pool against dsn and wraps it.
func Connect(ctx context.Context, dsn string) (*Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: connecting: %w", sqlguard.ErrPersistenceTransient, err)
	}
	return New(pool), nil
}

// Append writes one report. The write is idempotent on (sqlId, createdAt):
// a conflicting row is left untouched rather than duplicated.
func (s *Store) Append(ctx context.Context, report sqlguard.AuditReport) error {
	const q = `
		INSERT INTO audit_reports
			(report_id, sql_id, sql_text, level, numeric_score, message, recommendation, created_at, execution_time_ms, rows_affected)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (sql_id, created_at) DO NOTHING`

	_, err := s.pool.Exec(ctx, q,
		report.ReportID, report.SqlID, report.Sql,
		report.AggregatedScore.Level.String(), report.AggregatedScore.Numeric,
		report.AggregatedScore.Message, report.AggregatedScore.Recommendation,
		report.CreatedAt, report.ExecutionTimeMs, report.RowsAffected,
	)
	if err != nil {
		return classifyWriteError(err)
	}
	return nil
}

// AppendBatch writes every report atomically: all rows land or none do.
func (s *Store) AppendBatch(ctx context.Context, reports []sqlguard.AuditReport) error {
	if len(reports) == 0 {
		return nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("%w: %w", sqlguard.ErrBatchNotAtomic, err)
	}
	defer tx.Rollback(ctx)

	const q = `
		INSERT INTO audit_reports
			(report_id, sql_id, sql_text, level, numeric_score, message, recommendation, created_at, execution_time_ms, rows_affected)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (sql_id, created_at) DO NOTHING`

	batch := &pgx.Batch{}
	for _, r := range reports {
		batch.Queue(q,
			r.ReportID, r.SqlID, r.Sql,
			r.AggregatedScore.Level.String(), r.AggregatedScore.Numeric,
			r.AggregatedScore.Message, r.AggregatedScore.Recommendation,
			r.CreatedAt, r.ExecutionTimeMs, r.RowsAffected,
		)
	}

	br := tx.SendBatch(ctx, batch)
	for range reports {
		if _, err := br.Exec(); err != nil {
			br.Close()
			return fmt.Errorf("%w: %w", sqlguard.ErrBatchNotAtomic, err)
		}
	}
	if err := br.Close(); err != nil {
		return fmt.Errorf("%w: %w", sqlguard.ErrBatchNotAtomic, err)
	}

	return tx.Commit(ctx)
}

// FindByID returns the report with the given reportId, or
// ErrReportNotFound if absent.
func (s *Store) FindByID(ctx context.Context, reportID string) (sqlguard.AuditReport, error) {
	const q = `
		SELECT report_id, sql_id, sql_text, level, numeric_score, message, recommendation, created_at, execution_time_ms, rows_affected
		FROM audit_reports WHERE report_id = $1`

	row := s.pool.QueryRow(ctx, q, reportID)
	report, _, err := scanReport(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return sqlguard.AuditReport{}, sqlguard.ErrReportNotFound
		}
		return sqlguard.AuditReport{}, fmt.Errorf("%w: %w", sqlguard.ErrPersistenceTransient, err)
	}
	return report, nil
}

// FindByTimeRange returns reports created in [from, to).
func (s *Store) FindByTimeRange(ctx context.Context, from, to time.Time) ([]sqlguard.AuditReport, error) {
	const q = `
		SELECT report_id, sql_id, sql_text, level, numeric_score, message, recommendation, created_at, execution_time_ms, rows_affected
		FROM audit_reports WHERE created_at >= $1 AND created_at < $2 ORDER BY created_at`

	rows, err := s.pool.Query(ctx, q, from, to)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", sqlguard.ErrPersistenceTransient, err)
	}
	defer rows.Close()

	var out []sqlguard.AuditReport
	for rows.Next() {
		report, _, err := scanReport(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", sqlguard.ErrPersistenceTransient, err)
		}
		out = append(out, report)
	}
	return out, rows.Err()
}

// CountByTimeRange counts reports created in [from, to).
func (s *Store) CountByTimeRange(ctx context.Context, from, to time.Time) (int64, error) {
	const q = `SELECT count(*) FROM audit_reports WHERE created_at >= $1 AND created_at < $2`

	var n int64
	if err := s.pool.QueryRow(ctx, q, from, to).Scan(&n); err != nil {
		return 0, fmt.Errorf("%w: %w", sqlguard.ErrPersistenceTransient, err)
	}
	return n, nil
}

// DeleteOlderThan removes every report created before the cutoff,
// returning the number of rows removed.
func (s *Store) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	const q = `DELETE FROM audit_reports WHERE created_at < $1`

	tag, err := s.pool.Exec(ctx, q, cutoff)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", sqlguard.ErrPersistenceTransient, err)
	}
	return tag.RowsAffected(), nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReport(row rowScanner) (sqlguard.AuditReport, string, error) {
	var report sqlguard.AuditReport
	var level string

	err := row.Scan(
		&report.ReportID, &report.SqlID, &report.Sql,
		&level, &report.AggregatedScore.Numeric,
		&report.AggregatedScore.Message, &report.AggregatedScore.Recommendation,
		&report.CreatedAt, &report.ExecutionTimeMs, &report.RowsAffected,
	)
	if err != nil {
		return sqlguard.AuditReport{}, "", err
	}

	if lvl, ok := sqlguard.ParseRiskLevel(level); ok {
		report.AggregatedScore.Level = lvl
	}
	return report, level, nil
}

// classifyWriteError wraps a write failure as transient. The idempotency
// conflict itself is handled via ON CONFLICT DO NOTHING and never reaches
// here as an error; anything that does is a connection or constraint
// failure worth a retry upstream.
func classifyWriteError(err error) error {
	log.WithError(err).Warn("persistence write failed")
	return fmt.Errorf("%w: %w", sqlguard.ErrPersistenceTransient, err)
}

package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/PratikDhanave/badge-clock-relay/internal/models"
)

// SQLiteStore keeps the delivery audit trail in a local SQLite file, for
// sites without a Postgres server.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) the database at path and applies the schema.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	dsn := path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	db.SetMaxOpenConns(2)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(30 * time.Minute)

	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	_, err := s.db.Exec(`
	CREATE TABLE IF NOT EXISTS deliveries (
		id           INTEGER PRIMARY KEY AUTOINCREMENT,
		batch_id     TEXT    NOT NULL,
		kind         TEXT    NOT NULL,
		subject_id   TEXT    NOT NULL,
		event_time   TEXT    NOT NULL,
		status_code  INTEGER NOT NULL DEFAULT 0,
		dry_run      INTEGER NOT NULL DEFAULT 0,
		error        TEXT    NOT NULL DEFAULT '',
		attempted_at TEXT    NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_deliveries_attempted_at ON deliveries(attempted_at);
	`)
	return err
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error { return s.db.Close() }

// Ping checks the database is still usable.
func (s *SQLiteStore) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }

// RecordDelivery appends one delivery attempt.
func (s *SQLiteStore) RecordDelivery(ctx context.Context, rec models.DeliveryRecord) error {
	return retryOp(defaultRetryConfig, func() error {
		_, err := s.db.ExecContext(ctx, `
			INSERT INTO deliveries(batch_id, kind, subject_id, event_time, status_code, dry_run, error, attempted_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			rec.BatchID, string(rec.Kind), rec.SubjectID, rec.EventTime, rec.StatusCode,
			rec.DryRun, rec.Error, rec.AttemptedAt.UTC().Format(time.RFC3339Nano))
		if err != nil {
			return fmt.Errorf("insert delivery: %w", err)
		}
		return nil
	})
}

// RecentDeliveries returns the newest attempts first.
func (s *SQLiteStore) RecentDeliveries(ctx context.Context, limit int) ([]models.DeliveryRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT batch_id, kind, subject_id, event_time, status_code, dry_run, error, attempted_at
		FROM deliveries
		ORDER BY id DESC
		LIMIT ?`, clampLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("query deliveries: %w", err)
	}
	defer rows.Close()

	var out []models.DeliveryRecord
	for rows.Next() {
		var rec models.DeliveryRecord
		var kind, attemptedAt string
		if err := rows.Scan(&rec.BatchID, &kind, &rec.SubjectID, &rec.EventTime,
			&rec.StatusCode, &rec.DryRun, &rec.Error, &attemptedAt); err != nil {
			return nil, err
		}
		rec.Kind = models.Kind(kind)
		rec.AttemptedAt, _ = time.Parse(time.RFC3339Nano, attemptedAt)
		out = append(out, rec)
	}
	return out, rows.Err()
}

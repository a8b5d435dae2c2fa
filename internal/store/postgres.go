package store

import (
	"context"
	_ "embed"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/PratikDhanave/badge-clock-relay/internal/models"
)

// schemaSQL is embedded so the service can self-bootstrap its audit table.
//
//go:embed schema.sql
var schemaSQL string

// PostgresStore keeps the delivery audit trail in Postgres.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a connection pool and fails fast if DB is unreachable.
func NewPostgresStore(dbURL string) (*PostgresStore, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		return nil, err
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return &PostgresStore{pool: pool}, nil
}

// EnsureSchema applies schema.sql. Safe to run multiple times.
func (p *PostgresStore) EnsureSchema() error {
	_, err := p.pool.Exec(context.Background(), schemaSQL)
	return err
}

// Ping is used by readiness endpoint to validate DB connectivity.
func (p *PostgresStore) Ping(ctx context.Context) error {
	return p.pool.Ping(ctx)
}

// Close shuts down the connection pool.
func (p *PostgresStore) Close() error {
	p.pool.Close()
	return nil
}

// RecordDelivery appends one delivery attempt.
func (p *PostgresStore) RecordDelivery(ctx context.Context, rec models.DeliveryRecord) error {
	_, err := p.pool.Exec(ctx, `
		INSERT INTO deliveries(batch_id, kind, subject_id, event_time, status_code, dry_run, error, attempted_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
	`, rec.BatchID, string(rec.Kind), rec.SubjectID, rec.EventTime, rec.StatusCode, rec.DryRun, rec.Error, rec.AttemptedAt)
	if err != nil {
		return fmt.Errorf("insert delivery: %w", err)
	}
	return nil
}

// RecentDeliveries returns the newest attempts first.
func (p *PostgresStore) RecentDeliveries(ctx context.Context, limit int) ([]models.DeliveryRecord, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT batch_id, kind, subject_id, event_time, status_code, dry_run, error, attempted_at
		FROM deliveries
		ORDER BY attempted_at DESC, id DESC
		LIMIT $1
	`, clampLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("query deliveries: %w", err)
	}

	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.DeliveryRecord, error) {
		var rec models.DeliveryRecord
		var kind string
		err := row.Scan(&rec.BatchID, &kind, &rec.SubjectID, &rec.EventTime,
			&rec.StatusCode, &rec.DryRun, &rec.Error, &rec.AttemptedAt)
		rec.Kind = models.Kind(kind)
		return rec, err
	})
}

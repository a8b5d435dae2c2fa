package store

import (
	"context"

	"github.com/PratikDhanave/badge-clock-relay/internal/models"
)

// AuditStore is an append-only trail of delivery attempts.
type AuditStore interface {
	RecordDelivery(ctx context.Context, rec models.DeliveryRecord) error
	RecentDeliveries(ctx context.Context, limit int) ([]models.DeliveryRecord, error)
	Ping(ctx context.Context) error
	Close() error
}

const (
	defaultListLimit = 50
	maxListLimit     = 500
)

func clampLimit(limit int) int {
	switch {
	case limit <= 0:
		return defaultListLimit
	case limit > maxListLimit:
		return maxListLimit
	default:
		return limit
	}
}

// Compile-time checks.
var (
	_ AuditStore = (*PostgresStore)(nil)
	_ AuditStore = (*SQLiteStore)(nil)
)

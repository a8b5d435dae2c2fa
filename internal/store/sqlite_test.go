package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/PratikDhanave/badge-clock-relay/internal/models"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "audit.db")
	s, err := NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("NewSQLiteStore(%q): %v", dbPath, err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSQLiteStore_RecordAndList(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	at := time.Date(2024, 1, 1, 8, 1, 0, 0, time.UTC)

	recs := []models.DeliveryRecord{
		{BatchID: "b1", Kind: models.ClockIn, SubjectID: "1", EventTime: "2024-01-01T08:00:00", StatusCode: 201, AttemptedAt: at},
		{BatchID: "b1", Kind: models.ClockOut, SubjectID: "2", EventTime: "2024-01-01T08:00:05", StatusCode: 500, Error: "boom", AttemptedAt: at.Add(time.Second)},
		{BatchID: "b2", Kind: models.ClockIn, SubjectID: "3", EventTime: "2024-01-01T08:01:00", DryRun: true, AttemptedAt: at.Add(time.Minute)},
	}
	for _, r := range recs {
		if err := s.RecordDelivery(ctx, r); err != nil {
			t.Fatalf("RecordDelivery: %v", err)
		}
	}

	got, err := s.RecentDeliveries(ctx, 2)
	if err != nil {
		t.Fatalf("RecentDeliveries: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d records, want 2", len(got))
	}
	if got[0].SubjectID != "3" || !got[0].DryRun || got[0].Kind != models.ClockIn {
		t.Errorf("newest = %+v", got[0])
	}
	if got[1].SubjectID != "2" || got[1].Succeeded() || got[1].StatusCode != 500 {
		t.Errorf("second = %+v", got[1])
	}
	if !got[1].AttemptedAt.Equal(at.Add(time.Second)) {
		t.Errorf("AttemptedAt = %v", got[1].AttemptedAt)
	}
}

func TestSQLiteStore_Ping(t *testing.T) {
	s := newTestStore(t)
	if err := s.Ping(context.Background()); err != nil {
		t.Fatalf("Ping: %v", err)
	}
}

func TestClampLimit(t *testing.T) {
	for in, want := range map[int]int{0: defaultListLimit, -3: defaultListLimit, 10: 10, 10000: maxListLimit} {
		if got := clampLimit(in); got != want {
			t.Errorf("clampLimit(%d) = %d, want %d", in, got, want)
		}
	}
}

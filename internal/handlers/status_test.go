package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/PratikDhanave/badge-clock-relay/internal/models"
	"github.com/PratikDhanave/badge-clock-relay/internal/store"
)

// MockAuditStore implements store.AuditStore for handler tests.
type MockAuditStore struct {
	RecentFunc func(ctx context.Context, limit int) ([]models.DeliveryRecord, error)
	lastLimit  int
}

func (m *MockAuditStore) RecordDelivery(context.Context, models.DeliveryRecord) error { return nil }
func (m *MockAuditStore) Ping(context.Context) error { return nil }
func (m *MockAuditStore) Close() error { return nil }

func (m *MockAuditStore) RecentDeliveries(ctx context.Context, limit int) ([]models.DeliveryRecord, error) {
	m.lastLimit = limit
	if m.RecentFunc != nil {
		return m.RecentFunc(ctx, limit)
	}
	return nil, nil
}

var _ store.AuditStore = (*MockAuditStore)(nil)

func newStatusRouter(audit store.AuditStore) (*gin.Engine, func(string)) {
	gin.SetMode(gin.TestMode)
	ing, _ := newTestIngestor()
	r := gin.New()
	RegisterWebhookRoutes(r, ing)
	RegisterStatusRoutes(r, ing, true, audit)
	return r, func(id string) {
		ing.IngestOne(models.RawEvent{EventID: id, DeviceName: "Facial Entrada", SubjectID: "1", Timestamp: "t"})
	}
}

func TestHealth_ReportsCounts(t *testing.T) {
	r, ingest := newStatusRouter(nil)
	ingest("E1")
	ingest("E2")
	ingest("E2")

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/webhook/health", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}

	var got models.HealthResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &got); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	want := models.HealthResponse{Status: "running", DryRun: true, PendingEvents: 2, ProcessedEvents: 2}
	if got != want {
		t.Fatalf("health = %+v, want %+v", got, want)
	}
}

func TestDeliveries(t *testing.T) {
	tests := []struct {
		name       string
		audit      *MockAuditStore
		query      string
		wantStatus int
		wantLimit  int
	}{
		{
			name:       "not configured",
			audit:      nil,
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "default limit",
			audit:      &MockAuditStore{},
			wantStatus: http.StatusOK,
			wantLimit:  0,
		},
		{
			name:       "explicit limit",
			audit:      &MockAuditStore{},
			query:      "?limit=5",
			wantStatus: http.StatusOK,
			wantLimit:  5,
		},
		{
			name:       "bad limit",
			audit:      &MockAuditStore{},
			query:      "?limit=-1",
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "store error",
			audit: &MockAuditStore{RecentFunc: func(context.Context, int) ([]models.DeliveryRecord, error) {
				return nil, errors.New("db down")
			}},
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var audit store.AuditStore
			if tt.audit != nil {
				audit = tt.audit
			}
			r, _ := newStatusRouter(audit)

			rr := httptest.NewRecorder()
			r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/webhook/deliveries"+tt.query, nil))
			if rr.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (%s)", rr.Code, tt.wantStatus, rr.Body.String())
			}
			if tt.wantStatus == http.StatusOK && tt.audit.lastLimit != tt.wantLimit {
				t.Errorf("limit = %d, want %d", tt.audit.lastLimit, tt.wantLimit)
			}
		})
	}
}

package models

import "time"

// DeliveryResult is what the time-tracking API returned for one event.
type DeliveryResult struct {
	StatusCode int
	DryRun     bool
}

// DeliveryRecord is one row of the delivery audit trail.
type DeliveryRecord struct {
	BatchID     string    `json:"batch_id"`
	Kind        Kind      `json:"kind"`
	SubjectID   string    `json:"subject_id"`
	EventTime   string    `json:"event_time"`
	StatusCode  int       `json:"status_code"`
	DryRun      bool      `json:"dry_run"`
	Error       string    `json:"error,omitempty"`
	AttemptedAt time.Time `json:"attempted_at"`
}

// Succeeded reports whether the attempt was accepted downstream.
func (r DeliveryRecord) Succeeded() bool {
	return r.Error == ""
}

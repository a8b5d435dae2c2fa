package models

import (
	"encoding/json"
	"strings"
)

// Kind is the direction of a badge event for time tracking.
type Kind string

const (
	ClockIn  Kind = "clockIn"
	ClockOut Kind = "clockOut"
)

// RawEvent is one access-control event as pushed by the facility controller.
// Timestamp is kept exactly as the source sent it.
type RawEvent struct {
	EventID    string
	DeviceName string
	SubjectID  string
	Timestamp  string
}

// MissingFields lists the required fields that are empty.
func (e RawEvent) MissingFields() []string {
	var missing []string
	if strings.TrimSpace(e.EventID) == "" {
		missing = append(missing, "eventId")
	}
	if strings.TrimSpace(e.SubjectID) == "" {
		missing = append(missing, "cardNo")
	}
	if strings.TrimSpace(e.Timestamp) == "" {
		missing = append(missing, "happenTime")
	}
	return missing
}

// DirectionalEvent is a classified clock-in or clock-out waiting for delivery.
type DirectionalEvent struct {
	Kind      Kind   `json:"kind"`
	SubjectID string `json:"subject_id"`
	Timestamp string `json:"timestamp"`
}

// WebhookRequest is the envelope HikCentral posts to the event destination.
// Events are kept raw so a single malformed element does not fail the batch.
type WebhookRequest struct {
	Method string `json:"method,omitempty"`
	Params *struct {
		Ability   string            `json:"ability,omitempty"`
		SendTime  string            `json:"sendTime,omitempty"`
		EventList []json.RawMessage `json:"events"`
	} `json:"params"`
}

// WebhookEvent is the schema of one element of params.events.
type WebhookEvent struct {
	EventID    string `json:"eventId"`
	SrcName    string `json:"srcName"`
	HappenTime string `json:"happenTime"`
	EventType  int    `json:"eventType,omitempty"`
	Data       *struct {
		CardNo string `json:"cardNo"`
	} `json:"data"`
}

// Raw converts the wire shape into a RawEvent.
func (w WebhookEvent) Raw() RawEvent {
	raw := RawEvent{
		EventID:    w.EventID,
		DeviceName: w.SrcName,
		Timestamp:  w.HappenTime,
	}
	if w.Data != nil {
		raw.SubjectID = w.Data.CardNo
	}
	return raw
}

// WebhookResponse is the acknowledgement HikCentral expects back.
type WebhookResponse struct {
	Code string `json:"code"`
	Msg  string `json:"msg"`
	Data any    `json:"data,omitempty"`
}

// HealthResponse is returned by GET /webhook/health.
type HealthResponse struct {
	Status          string `json:"status"`
	DryRun          bool   `json:"dry_run"`
	PendingEvents   int    `json:"pending_events"`
	ProcessedEvents int    `json:"processed_events"`
}

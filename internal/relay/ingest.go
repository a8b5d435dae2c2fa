package relay

import (
	"log"
	"strings"

	"github.com/PratikDhanave/badge-clock-relay/internal/models"
)

// Outcome is what happened to one raw event during ingestion.
type Outcome string

const (
	OutcomeQueued        Outcome = "queued"
	OutcomeDuplicate     Outcome = "duplicate"
	OutcomeIgnoredDevice Outcome = "ignored_device"
	OutcomeInvalid       Outcome = "invalid"
)

// Result describes the outcome for a single raw event.
type Result struct {
	EventID   string      `json:"event_id,omitempty"`
	SubjectID string      `json:"subject_id,omitempty"`
	Device    string      `json:"device,omitempty"`
	Outcome   Outcome     `json:"outcome"`
	Kind      models.Kind `json:"kind,omitempty"`
	Reason    string      `json:"reason,omitempty"`
}

// Report collects per-event results in input order.
type Report struct {
	Results []Result `json:"results"`
}

func (r *Report) add(res Result) {
	r.Results = append(r.Results, res)
}

// Counts tallies results by outcome.
func (r Report) Counts() map[Outcome]int {
	counts := map[Outcome]int{
		OutcomeQueued:        0,
		OutcomeDuplicate:     0,
		OutcomeIgnoredDevice: 0,
		OutcomeInvalid:       0,
	}
	for _, res := range r.Results {
		counts[res.Outcome]++
	}
	return counts
}

// Stats is a point-in-time view of the shared pipeline state.
type Stats struct {
	Pending   int
	Processed int
}

// Ingestor validates, dedups and classifies raw events and queues the
// accepted ones. It is safe for concurrent use by multiple requests.
type Ingestor struct {
	classifier Classifier
	dedup      *DedupStore
	queue      *Queue
}

func NewIngestor(classifier Classifier, dedup *DedupStore, queue *Queue) *Ingestor {
	return &Ingestor{
		classifier: classifier,
		dedup:      dedup,
		queue:      queue,
	}
}

// Ingest processes events in order. A bad event never stops the batch.
func (i *Ingestor) Ingest(events []models.RawEvent) Report {
	var report Report
	for _, raw := range events {
		report.add(i.IngestOne(raw))
	}
	return report
}

// IngestOne runs a single event through validate, dedup, classify, enqueue.
//
// The id is recorded before the device check, so an event from an unrelated
// reader still counts as processed and its redelivery reports as duplicate.
func (i *Ingestor) IngestOne(raw models.RawEvent) Result {
	res := Result{
		EventID:   raw.EventID,
		SubjectID: raw.SubjectID,
		Device:    raw.DeviceName,
	}

	if missing := raw.MissingFields(); len(missing) > 0 {
		return i.RecordInvalid(raw, "missing "+strings.Join(missing, ", "))
	}

	if !i.dedup.TryAccept(raw.EventID) {
		res.Outcome = OutcomeDuplicate
		log.Printf("[DUPLICATE] event %s | subject %s | %s", raw.EventID, raw.SubjectID, raw.DeviceName)
		return res
	}

	ev, verdict := i.classifier.Classify(raw)
	if verdict == Ignored {
		res.Outcome = OutcomeIgnoredDevice
		log.Printf("[IGNORED] event %s | device %q", raw.EventID, raw.DeviceName)
		return res
	}
	if verdict != Accepted {
		return i.RecordInvalid(raw, "rejected by classifier")
	}

	i.queue.Append(ev)
	res.Outcome = OutcomeQueued
	res.Kind = ev.Kind
	log.Printf("[QUEUED] %s | subject %s | %s | %s", ev.Kind, ev.SubjectID, raw.DeviceName, ev.Timestamp)
	return res
}

// RecordInvalid logs and returns an invalid result for an event that could
// not be accepted, including elements that failed schema decoding.
func (i *Ingestor) RecordInvalid(raw models.RawEvent, reason string) Result {
	log.Printf("[INVALID] event %q | subject %q | device %q: %s", raw.EventID, raw.SubjectID, raw.DeviceName, reason)
	return Result{
		EventID:   raw.EventID,
		SubjectID: raw.SubjectID,
		Device:    raw.DeviceName,
		Outcome:   OutcomeInvalid,
		Reason:    reason,
	}
}

// Stats reports how many events are pending and how many ids are remembered.
func (i *Ingestor) Stats() Stats {
	return Stats{
		Pending:   i.queue.Len(),
		Processed: i.dedup.Len(),
	}
}

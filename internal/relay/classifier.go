// Package relay holds the ingestion and deferred-delivery pipeline: the
// classifier, the dedup store, the pending queue, the ingestor that feeds
// them and the flush worker that drains them to the time-tracking API.
package relay

import "github.com/PratikDhanave/badge-clock-relay/internal/models"

// Verdict is the classifier's decision for one raw event.
type Verdict int

const (
	Accepted Verdict = iota
	Ignored
	Invalid
)

func (v Verdict) String() string {
	switch v {
	case Accepted:
		return "accepted"
	case Ignored:
		return "ignored"
	case Invalid:
		return "invalid"
	default:
		return "unknown"
	}
}

// Classifier maps a raw badge event to a clock-in or clock-out based on the
// device that produced it. Matching is exact.
type Classifier struct {
	EntranceDevice string
	ExitDevice     string
}

// Classify is pure and safe for concurrent use. Missing fields are checked
// before the device name.
func (c Classifier) Classify(raw models.RawEvent) (models.DirectionalEvent, Verdict) {
	if len(raw.MissingFields()) > 0 {
		return models.DirectionalEvent{}, Invalid
	}

	var kind models.Kind
	switch {
	case c.EntranceDevice != "" && raw.DeviceName == c.EntranceDevice:
		kind = models.ClockIn
	case c.ExitDevice != "" && raw.DeviceName == c.ExitDevice:
		kind = models.ClockOut
	default:
		return models.DirectionalEvent{}, Ignored
	}

	return models.DirectionalEvent{
		Kind:      kind,
		SubjectID: raw.SubjectID,
		Timestamp: raw.Timestamp,
	}, Accepted
}

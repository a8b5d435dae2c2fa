package relay

import (
	"fmt"
	"sync"
	"testing"

	"github.com/PratikDhanave/badge-clock-relay/internal/models"
)

func newTestIngestor() (*Ingestor, *DedupStore, *Queue) {
	d := NewDedupStore(0)
	q := NewQueue()
	c := Classifier{EntranceDevice: "Facial Entrada", ExitDevice: "Facial Salida"}
	return NewIngestor(c, d, q), d, q
}

func TestIngest_Outcomes(t *testing.T) {
	ing, _, q := newTestIngestor()

	report := ing.Ingest([]models.RawEvent{
		{EventID: "E1", DeviceName: "Facial Entrada", SubjectID: "1", Timestamp: "t1"},
		{EventID: "", DeviceName: "Facial Entrada", SubjectID: "2", Timestamp: "t2"},
		{EventID: "E1", DeviceName: "Facial Entrada", SubjectID: "1", Timestamp: "t1"},
		{EventID: "E3", DeviceName: "Other Reader", SubjectID: "3", Timestamp: "t3"},
		{EventID: "E4", DeviceName: "Facial Salida", SubjectID: "4", Timestamp: "t4"},
	})

	want := []Outcome{OutcomeQueued, OutcomeInvalid, OutcomeDuplicate, OutcomeIgnoredDevice, OutcomeQueued}
	if len(report.Results) != len(want) {
		t.Fatalf("got %d results, want %d", len(report.Results), len(want))
	}
	for i, w := range want {
		if report.Results[i].Outcome != w {
			t.Errorf("result[%d] = %s, want %s", i, report.Results[i].Outcome, w)
		}
	}

	counts := report.Counts()
	if counts[OutcomeQueued] != 2 || counts[OutcomeInvalid] != 1 || counts[OutcomeDuplicate] != 1 || counts[OutcomeIgnoredDevice] != 1 {
		t.Errorf("unexpected counts %v", counts)
	}

	batch := q.DrainAll()
	if len(batch) != 2 || batch[0].Kind != models.ClockIn || batch[1].Kind != models.ClockOut {
		t.Fatalf("unexpected queue contents %+v", batch)
	}
}

func TestIngest_InvalidDoesNotConsumeID(t *testing.T) {
	ing, d, _ := newTestIngestor()

	res := ing.IngestOne(models.RawEvent{EventID: "E1", DeviceName: "Facial Entrada", Timestamp: "t"})
	if res.Outcome != OutcomeInvalid || res.Reason == "" {
		t.Fatalf("got %+v, want invalid with reason", res)
	}
	if d.Len() != 0 {
		t.Fatal("invalid event must not be recorded as processed")
	}

	res = ing.IngestOne(models.RawEvent{EventID: "E1", DeviceName: "Facial Entrada", SubjectID: "1", Timestamp: "t"})
	if res.Outcome != OutcomeQueued {
		t.Fatalf("corrected redelivery = %s, want queued", res.Outcome)
	}
}

func TestIngest_IgnoredDeviceStillRecordsID(t *testing.T) {
	ing, _, q := newTestIngestor()

	raw := models.RawEvent{EventID: "E9", DeviceName: "Other Reader", SubjectID: "1", Timestamp: "t"}
	if res := ing.IngestOne(raw); res.Outcome != OutcomeIgnoredDevice {
		t.Fatalf("first = %s, want ignored_device", res.Outcome)
	}
	if res := ing.IngestOne(raw); res.Outcome != OutcomeDuplicate {
		t.Fatalf("second = %s, want duplicate", res.Outcome)
	}
	if q.Len() != 0 {
		t.Fatalf("queue size = %d, want 0", q.Len())
	}
}

func TestIngest_ConcurrentRetriesQueueOnce(t *testing.T) {
	ing, _, q := newTestIngestor()

	var wg sync.WaitGroup
	for r := 0; r < 16; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			events := make([]models.RawEvent, 0, 20)
			for i := 0; i < 20; i++ {
				events = append(events, models.RawEvent{
					EventID:    fmt.Sprintf("E%d", i),
					DeviceName: "Facial Entrada",
					SubjectID:  fmt.Sprint(i),
					Timestamp:  "t",
				})
			}
			ing.Ingest(events)
		}()
	}
	wg.Wait()

	if got := len(q.DrainAll()); got != 20 {
		t.Fatalf("queued %d events, want 20", got)
	}
	if st := ing.Stats(); st.Processed != 20 || st.Pending != 0 {
		t.Errorf("Stats() = %+v", st)
	}
}

package relay

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/PratikDhanave/badge-clock-relay/internal/models"
)

// Gateway delivers one directional event to the time-tracking API.
type Gateway interface {
	Deliver(ctx context.Context, ev models.DirectionalEvent) (models.DeliveryResult, error)
}

// AuditSink stores the outcome of every delivery attempt.
type AuditSink interface {
	RecordDelivery(ctx context.Context, rec models.DeliveryRecord) error
}

// Notifier alerts an operator about failed deliveries.
type Notifier interface {
	Notify(ctx context.Context, message string) error
}

// statusError is satisfied by gateway errors that carry an HTTP response.
type statusError interface {
	error
	HTTPStatus() int
}

const (
	DefaultInterval        = 60 * time.Second
	DefaultDeliveryTimeout = 10 * time.Second
)

// TickSummary describes one flush.
type TickSummary struct {
	BatchID   string
	Attempted int
	Failed    int
}

// FlushWorker periodically drains the queue and delivers each event once.
// Failed deliveries are logged and dropped; they are never re-queued.
type FlushWorker struct {
	queue    *Queue
	gateway  Gateway
	interval time.Duration
	timeout  time.Duration

	dedup    *DedupStore
	audit    AuditSink
	notifier Notifier

	now  func() time.Time
	done chan struct{}
}

// WorkerOption configures optional collaborators of a FlushWorker.
type WorkerOption func(*FlushWorker)

// WithDedupSweep makes every tick sweep expired ids from d.
func WithDedupSweep(d *DedupStore) WorkerOption {
	return func(w *FlushWorker) { w.dedup = d }
}

// WithAudit records each delivery attempt in a.
func WithAudit(a AuditSink) WorkerOption {
	return func(w *FlushWorker) { w.audit = a }
}

// WithNotifier sends a summary to n after a tick with failures.
func WithNotifier(n Notifier) WorkerOption {
	return func(w *FlushWorker) { w.notifier = n }
}

func NewFlushWorker(queue *Queue, gateway Gateway, interval, timeout time.Duration, opts ...WorkerOption) *FlushWorker {
	w := &FlushWorker{
		queue:    queue,
		gateway:  gateway,
		interval: interval,
		timeout:  timeout,
		now:      time.Now,
		done:     make(chan struct{}),
	}
	if w.interval <= 0 {
		w.interval = DefaultInterval
	}
	if w.timeout <= 0 {
		w.timeout = DefaultDeliveryTimeout
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Start runs the worker in its own goroutine until ctx is cancelled.
func (w *FlushWorker) Start(ctx context.Context) {
	go w.Run(ctx)
}

// Done is closed once Run has returned.
func (w *FlushWorker) Done() <-chan struct{} {
	return w.done
}

// Run ticks every interval until ctx is cancelled, then performs one last
// flush so events accepted before shutdown are not silently dropped.
func (w *FlushWorker) Run(ctx context.Context) {
	defer close(w.done)

	log.Printf("[WORKER] started, interval %s", w.interval)
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.safeTick(context.WithoutCancel(ctx))
			log.Println("[WORKER] stopped")
			return
		case <-ticker.C:
			w.safeTick(ctx)
		}
	}
}

func (w *FlushWorker) safeTick(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[WORKER] recovered from panic: %v", r)
		}
	}()
	w.Tick(ctx)
}

// Tick performs one drain-and-deliver cycle. An empty queue is a no-op.
func (w *FlushWorker) Tick(ctx context.Context) TickSummary {
	if w.dedup != nil {
		if n := w.dedup.Sweep(); n > 0 {
			log.Printf("[WORKER] forgot %d expired event ids", n)
		}
	}

	batch := w.queue.DrainAll()
	if len(batch) == 0 {
		return TickSummary{}
	}

	summary := TickSummary{BatchID: uuid.New().String()}
	log.Printf("[WORKER] processing %d events (batch %s)", len(batch), summary.BatchID)

	var firstErr error
	for _, ev := range batch {
		summary.Attempted++
		if err := w.deliver(ctx, summary.BatchID, ev); err != nil {
			summary.Failed++
			if firstErr == nil {
				firstErr = err
			}
		}
	}

	if summary.Failed > 0 {
		w.alert(ctx, summary, firstErr)
	}
	return summary
}

// deliver sends ev and logs the result. Panics inside the gateway are turned
// into errors so the loop keeps running.
func (w *FlushWorker) deliver(ctx context.Context, batchID string, ev models.DirectionalEvent) (err error) {
	rec := models.DeliveryRecord{
		BatchID:     batchID,
		Kind:        ev.Kind,
		SubjectID:   ev.SubjectID,
		EventTime:   ev.Timestamp,
		AttemptedAt: w.now().UTC(),
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("gateway panic: %v", r)
		}
		if err != nil {
			rec.Error = err.Error()
			var se statusError
			if errors.As(err, &se) {
				rec.StatusCode = se.HTTPStatus()
				log.Printf("[HUMAND] %s subject %s -> %d", ev.Kind, ev.SubjectID, rec.StatusCode)
				log.Printf("[WARN HUMAND] %v", err)
			} else {
				log.Printf("[ERROR HUMAND] %s subject %s: %v", ev.Kind, ev.SubjectID, err)
			}
		}
		w.record(ctx, rec)
	}()

	callCtx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()

	res, err := w.gateway.Deliver(callCtx, ev)
	if err != nil {
		return err
	}

	rec.StatusCode = res.StatusCode
	rec.DryRun = res.DryRun
	if !res.DryRun {
		log.Printf("[HUMAND] %s subject %s -> %d", ev.Kind, ev.SubjectID, res.StatusCode)
	}
	return nil
}

func (w *FlushWorker) record(ctx context.Context, rec models.DeliveryRecord) {
	if w.audit == nil {
		return
	}
	if err := w.audit.RecordDelivery(ctx, rec); err != nil {
		log.Printf("[AUDIT] failed to record delivery for subject %s: %v", rec.SubjectID, err)
	}
}

func (w *FlushWorker) alert(ctx context.Context, s TickSummary, firstErr error) {
	if w.notifier == nil {
		return
	}
	msg := fmt.Sprintf("Time-tracking relay: %d of %d deliveries failed in batch %s.\nFirst error: %v",
		s.Failed, s.Attempted, s.BatchID, firstErr)
	if err := w.notifier.Notify(ctx, msg); err != nil {
		log.Printf("[NOTIFY] failed to send alert: %v", err)
	}
}

package relay

import (
	"sync"

	"github.com/PratikDhanave/badge-clock-relay/internal/models"
)

// Queue buffers accepted events until the flush worker drains them.
type Queue struct {
	mu    sync.Mutex
	items []models.DirectionalEvent
}

func NewQueue() *Queue {
	return &Queue{}
}

// Append adds ev at the tail.
func (q *Queue) Append(ev models.DirectionalEvent) {
	q.mu.Lock()
	q.items = append(q.items, ev)
	q.mu.Unlock()
}

// DrainAll removes and returns everything queued, oldest first. An empty
// queue yields an empty slice.
func (q *Queue) DrainAll() []models.DirectionalEvent {
	q.mu.Lock()
	defer q.mu.Unlock()

	batch := q.items
	q.items = nil
	if batch == nil {
		return []models.DirectionalEvent{}
	}
	return batch
}

// Len returns the number of events waiting for delivery.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

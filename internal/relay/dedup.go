package relay

import (
	"sync"
	"time"
)

// DedupStore remembers event ids that were already accepted.
//
// HikCentral redelivers an event when it does not get a timely ack, so the
// same id can arrive more than once. Entries older than the retention window
// are dropped by Sweep; a zero retention keeps every id for the process
// lifetime.
type DedupStore struct {
	mu        sync.Mutex
	seen      map[string]time.Time
	retention time.Duration
	now       func() time.Time
}

func NewDedupStore(retention time.Duration) *DedupStore {
	return &DedupStore{
		seen:      make(map[string]time.Time),
		retention: retention,
		now:       time.Now,
	}
}

// TryAccept records id and reports whether this call was the first to see it.
func (d *DedupStore) TryAccept(id string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.seen[id]; ok {
		return false
	}
	d.seen[id] = d.now()
	return true
}

// Len returns the number of ids currently remembered.
func (d *DedupStore) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.seen)
}

// Sweep forgets ids first seen more than the retention window ago and
// returns how many were removed.
func (d *DedupStore) Sweep() int {
	if d.retention <= 0 {
		return 0
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	cutoff := d.now().Add(-d.retention)
	removed := 0
	for id, firstSeen := range d.seen {
		if firstSeen.Before(cutoff) {
			delete(d.seen, id)
			removed++
		}
	}
	return removed
}

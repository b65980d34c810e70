// Package ledger tracks in-progress orders per conversation session.
package ledger

import (
	"sync"
	"time"
)

// Ledger maps session ids to in-progress orders. All operations on a single
// session are linearizable with respect to each other; a single RWMutex
// guards the whole map. Completing a session removes its entry before the
// database commit is attempted, so the commit never races an Add for the
// same session.
type Ledger struct {
	mu      sync.RWMutex
	entries map[string]*entry
	now     func() time.Time // overridable in tests
}

// entry pairs an order with its last-touched timestamp for TTL pruning.
type entry struct {
	order   *Order
	touched time.Time
}

// New creates an empty Ledger.
func New() *Ledger {
	return &Ledger{
		entries: make(map[string]*entry),
		now:     time.Now,
	}
}

// Add merges item/quantity pairs into the session's order, creating the
// session if absent. A pair whose name already exists overwrites that item's
// quantity; other items are untouched. Returns a snapshot of the whole
// order after the merge.
func (l *Ledger) Add(sessionID string, items []Line) *Order {
	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.entries[sessionID]
	if !ok {
		e = &entry{order: NewOrder()}
		l.entries[sessionID] = e
	}
	for _, it := range items {
		e.order.Set(it.Name, it.Quantity)
	}
	e.touched = l.now()
	return e.order.clone()
}

// Remove deletes the named items from the session's order. Names not present
// in the order are reported back as missing. ok is false when the session
// has no in-progress order, in which case nothing is mutated. The session
// key is kept even when the order ends up empty; only Take clears sessions.
func (l *Ledger) Remove(sessionID string, names []string) (removed, missing []string, remaining *Order, ok bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	e, found := l.entries[sessionID]
	if !found {
		return nil, nil, nil, false
	}
	for _, name := range names {
		if e.order.Delete(name) {
			removed = append(removed, name)
		} else {
			missing = append(missing, name)
		}
	}
	e.touched = l.now()
	return removed, missing, e.order.clone(), true
}

// Take removes the session's order from the ledger and returns it. Reports
// false when the session has no in-progress order. The caller owns the
// returned order; a failed commit downstream does not restore the session.
func (l *Ledger) Take(sessionID string) (*Order, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.entries[sessionID]
	if !ok {
		return nil, false
	}
	delete(l.entries, sessionID)
	return e.order, true
}

// Get returns a snapshot of the session's order without mutating anything.
func (l *Ledger) Get(sessionID string) (*Order, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	e, ok := l.entries[sessionID]
	if !ok {
		return nil, false
	}
	return e.order.clone(), true
}

// Len returns the number of sessions with an in-progress order.
func (l *Ledger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}

// Prune drops sessions that have not been touched within maxIdle and
// returns their ids. Abandoned conversations would otherwise hold their
// orders forever.
func (l *Ledger) Prune(maxIdle time.Duration) []string {
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := l.now().Add(-maxIdle)
	var dropped []string
	for id, e := range l.entries {
		if e.touched.Before(cutoff) {
			delete(l.entries, id)
			dropped = append(dropped, id)
		}
	}
	return dropped
}

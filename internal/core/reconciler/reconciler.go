// Package reconciler merges position records from any number of upstream
// feeds into one position per entity.
//
// Records are merged purely by (entity id, source timestamp): a record replaces
// the held position only when it is strictly newer. Which feed delivered it is
// irrelevant, so a slow fallback feed can never overwrite a fresher live one.
//
// A Reconciler is not safe for concurrent use. Callers serialize Merge and
// Remove, for example behind a single mutex or a single dispatch goroutine.
package reconciler

import (
	"fmt"
	"iter"
	"sort"
	"time"

	"github.com/bandobast/zone-monitor/internal/core/domain"
)

// Listener receives a notification after every applied mutation.
type Listener func(domain.Notification)

// Stats are cumulative counters since construction.
type Stats struct {
	Added   int
	Updated int
	Removed int
	// Stale counts records discarded because they were not newer than the
	// held position. Discarding is policy, not failure.
	Stale   int
	Invalid int
}

// Reconciler owns the entity id → position mapping.
type Reconciler struct {
	positions map[string]domain.ReconciledPosition
	listeners []Listener
	stats     Stats
	now       func() time.Time
}

// Option configures a Reconciler.
type Option func(*Reconciler)

// WithClock overrides the time source used for FirstSeen.
func WithClock(now func() time.Time) Option {
	return func(r *Reconciler) { r.now = now }
}

// New returns an empty Reconciler.
func New(opts ...Option) *Reconciler {
	r := &Reconciler{
		positions: make(map[string]domain.ReconciledPosition),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Subscribe registers l. Listeners run synchronously, in registration order,
// after the state change they describe is visible.
func (r *Reconciler) Subscribe(l Listener) {
	r.listeners = append(r.listeners, l)
}

// Merge applies rec. It returns the emitted notification and true when the
// record was applied, or false when it was discarded as stale. Records with
// invalid coordinates fail with domain.ErrInvalidPosition and change nothing.
func (r *Reconciler) Merge(rec domain.PositionRecord) (domain.Notification, bool, error) {
	if err := rec.Validate(); err != nil {
		r.stats.Invalid++
		return domain.Notification{}, false, fmt.Errorf("merge %q: %w", rec.EntityID, err)
	}

	held, seen := r.positions[rec.EntityID]
	if seen && !rec.SourceTimestamp.After(held.SourceTimestamp) {
		r.stats.Stale++
		return domain.Notification{}, false, nil
	}

	var n domain.Notification
	if !seen {
		pos := domain.ReconciledPosition{PositionRecord: rec, FirstSeen: r.now().UTC(), Revision: 1}
		r.positions[rec.EntityID] = pos
		r.stats.Added++
		n = domain.Notification{Kind: domain.PositionAdded, Position: pos}
	} else {
		held.PositionRecord = rec
		held.Revision++
		r.positions[rec.EntityID] = held
		r.stats.Updated++
		n = domain.Notification{Kind: domain.PositionUpdated, Position: held}
	}

	r.notify(n)
	return n, true, nil
}

// Remove deletes the position held for entityID.
func (r *Reconciler) Remove(entityID string) (domain.Notification, error) {
	held, ok := r.positions[entityID]
	if !ok {
		return domain.Notification{}, fmt.Errorf("remove %q: %w", entityID, domain.ErrUnknownEntity)
	}

	delete(r.positions, entityID)
	r.stats.Removed++

	n := domain.Notification{Kind: domain.PositionRemoved, Position: held}
	r.notify(n)
	return n, nil
}

// Get returns the position held for entityID.
func (r *Reconciler) Get(entityID string) (domain.ReconciledPosition, bool) {
	pos, ok := r.positions[entityID]
	return pos, ok
}

// Snapshot returns a point-in-time copy of every position, ordered by entity id.
func (r *Reconciler) Snapshot() []domain.ReconciledPosition {
	out := make([]domain.ReconciledPosition, 0, len(r.positions))
	for _, pos := range r.positions {
		out = append(out, pos)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EntityID < out[j].EntityID })
	return out
}

// All yields the same ordered copy as Snapshot. The copy is taken when All is
// called; later merges are not observed by the returned sequence.
func (r *Reconciler) All() iter.Seq[domain.ReconciledPosition] {
	snap := r.Snapshot()
	return func(yield func(domain.ReconciledPosition) bool) {
		for _, pos := range snap {
			if !yield(pos) {
				return
			}
		}
	}
}

// Len returns the number of tracked entities.
func (r *Reconciler) Len() int {
	return len(r.positions)
}

// Stats returns the cumulative counters.
func (r *Reconciler) Stats() Stats {
	return r.stats
}

func (r *Reconciler) notify(n domain.Notification) {
	for _, l := range r.listeners {
		l(n)
	}
}

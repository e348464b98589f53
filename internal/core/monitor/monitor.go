// Package monitor tracks whether each entity is inside the authorized zones
// and reports transitions between the two states.
package monitor

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/bandobast/zone-monitor/internal/core/domain"
)

// BoundsChecker answers whether a point is authorized. *zone.Registry
// satisfies it.
type BoundsChecker interface {
	IsInBounds(p domain.Point) bool
}

// FirstSightingPolicy decides what happens on an entity's first evaluation.
type FirstSightingPolicy string

const (
	// FirstSightingSuppress records the entity's actual state on first
	// sighting without emitting, so a restart with many officials already
	// outside the zone does not produce an alert storm.
	FirstSightingSuppress FirstSightingPolicy = "suppress"
	// FirstSightingEvaluate treats an unseen entity as in zone, so a first
	// sighting outside emits a violation immediately.
	FirstSightingEvaluate FirstSightingPolicy = "evaluate"
)

// ParseFirstSightingPolicy converts a configuration string. Empty input
// yields FirstSightingSuppress.
func ParseFirstSightingPolicy(s string) (FirstSightingPolicy, error) {
	switch FirstSightingPolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "", FirstSightingSuppress:
		return FirstSightingSuppress, nil
	case FirstSightingEvaluate:
		return FirstSightingEvaluate, nil
	default:
		return "", fmt.Errorf("unknown first sighting policy %q", s)
	}
}

// Monitor is a two-state machine per entity: InZone ⇄ OutOfZone. It emits
// only on transitions, so repeated identical inputs are idempotent.
//
// Like the reconciler, a Monitor is not safe for concurrent use.
type Monitor struct {
	bounds BoundsChecker
	policy FirstSightingPolicy
	states map[string]domain.ViolationState
	now    func() time.Time
	newID  func() string
}

// Option configures a Monitor.
type Option func(*Monitor)

// WithClock overrides the time source used for DetectedAt.
func WithClock(now func() time.Time) Option {
	return func(m *Monitor) { m.now = now }
}

// WithIDGenerator overrides event id generation.
func WithIDGenerator(newID func() string) Option {
	return func(m *Monitor) { m.newID = newID }
}

// New returns a Monitor evaluating against bounds.
func New(bounds BoundsChecker, policy FirstSightingPolicy, opts ...Option) *Monitor {
	if policy == "" {
		policy = FirstSightingSuppress
	}
	m := &Monitor{
		bounds: bounds,
		policy: policy,
		states: make(map[string]domain.ViolationState),
		now:    time.Now,
		newID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Policy returns the configured first sighting policy.
func (m *Monitor) Policy() FirstSightingPolicy {
	return m.policy
}

// Evaluate updates the entity's state from pos and returns the transition
// event, or nil when the state did not change.
func (m *Monitor) Evaluate(pos domain.ReconciledPosition) (*domain.ViolationEvent, error) {
	if err := pos.Validate(); err != nil {
		return nil, fmt.Errorf("evaluate: %w", err)
	}

	next := domain.OutOfZone
	if m.bounds.IsInBounds(pos.Point) {
		next = domain.InZone
	}

	prev, seen := m.states[pos.EntityID]
	m.states[pos.EntityID] = next

	if !seen {
		if m.policy == FirstSightingSuppress {
			return nil, nil
		}
		prev = domain.InZone
	}

	var kind domain.ViolationEventKind
	switch {
	case prev == domain.InZone && next == domain.OutOfZone:
		kind = domain.ZoneViolation
	case prev == domain.OutOfZone && next == domain.InZone:
		kind = domain.ZoneRecovered
	default:
		return nil, nil
	}

	return &domain.ViolationEvent{
		ID:              m.newID(),
		Kind:            kind,
		EntityID:        pos.EntityID,
		Point:           pos.Point,
		Status:          pos.Status,
		Source:          pos.Source,
		SourceTimestamp: pos.SourceTimestamp,
		DetectedAt:      m.now().UTC(),
		FirstSighting:   !seen,
	}, nil
}

// Forget drops the state held for entityID. The entity's next evaluation is
// a first sighting again.
func (m *Monitor) Forget(entityID string) {
	delete(m.states, entityID)
}

// State returns the current state of entityID.
func (m *Monitor) State(entityID string) (domain.ViolationState, bool) {
	s, ok := m.states[entityID]
	return s, ok
}

// Len returns the number of entities with a known state.
func (m *Monitor) Len() int {
	return len(m.states)
}

// OutOfZone returns the number of entities currently outside.
func (m *Monitor) OutOfZone() int {
	n := 0
	for _, s := range m.states {
		if s == domain.OutOfZone {
			n++
		}
	}
	return n
}

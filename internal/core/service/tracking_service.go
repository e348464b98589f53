package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/bandobast/zone-monitor/internal/api/metrics"
	"github.com/bandobast/zone-monitor/internal/core/domain"
	"github.com/bandobast/zone-monitor/internal/core/monitor"
	"github.com/bandobast/zone-monitor/internal/core/ports"
	"github.com/bandobast/zone-monitor/internal/core/reconciler"
)

const (
	defaultViolationLimit = 50
	maxViolationLimit     = 500
)

type trackingService struct {
	// mu makes the service the single writer of rec and mon.
	mu  sync.Mutex
	rec *reconciler.Reconciler
	mon *monitor.Monitor

	zones      ports.ZoneCatalog
	alerts     ports.AlertPublisher
	dedup      ports.AlertDedup
	violations ports.ViolationRepository
	log        zerolog.Logger

	// pending collects events raised by the monitor while mu is held.
	pending []*domain.ViolationEvent
}

// NewTrackingService wires the monitor to the reconciler's notifications and
// returns a TrackingService in front of both. alerts, dedup and violations
// may be nil, in which case events are only logged.
func NewTrackingService(
	rec *reconciler.Reconciler,
	mon *monitor.Monitor,
	zones ports.ZoneCatalog,
	alerts ports.AlertPublisher,
	dedup ports.AlertDedup,
	violations ports.ViolationRepository,
	log zerolog.Logger,
) ports.TrackingService {
	s := &trackingService{
		rec:        rec,
		mon:        mon,
		zones:      zones,
		alerts:     alerts,
		dedup:      dedup,
		violations: violations,
		log:        log,
	}
	rec.Subscribe(s.onPositionChange)
	return s
}

func (s *trackingService) onPositionChange(n domain.Notification) {
	switch n.Kind {
	case domain.PositionAdded, domain.PositionUpdated:
		ev, err := s.mon.Evaluate(n.Position)
		if err != nil {
			s.log.Error().Err(err).Str("entity_id", n.Position.EntityID).Msg("evaluate position")
			return
		}
		if ev != nil {
			s.pending = append(s.pending, ev)
		}
	case domain.PositionRemoved:
		s.mon.Forget(n.Position.EntityID)
	}
}

// takePending must be called with mu held.
func (s *trackingService) takePending() []*domain.ViolationEvent {
	events := s.pending
	s.pending = nil
	return events
}

// updateGauges must be called with mu held.
func (s *trackingService) updateGauges() {
	metrics.TrackedEntities.Set(float64(s.rec.Len()))
	metrics.EntitiesOutOfZone.Set(float64(s.mon.OutOfZone()))
}

// Submit merges one position and delivers the transition it caused, if any.
// Stale records are not an error: the result reports Applied=false.
func (s *trackingService) Submit(ctx context.Context, in ports.PositionInput) (ports.SubmitResult, error) {
	start := time.Now()

	s.mu.Lock()
	n, applied, err := s.rec.Merge(in.Record())
	events := s.takePending()
	s.updateGauges()
	s.mu.Unlock()

	if err != nil {
		metrics.PositionsMergedTotal.WithLabelValues("invalid", in.Source).Inc()
		metrics.PositionProcessingDuration.WithLabelValues("error").Observe(time.Since(start).Seconds())
		return ports.SubmitResult{}, fmt.Errorf("submit position: %w", err)
	}
	if !applied {
		metrics.PositionsMergedTotal.WithLabelValues("stale", in.Source).Inc()
		metrics.PositionProcessingDuration.WithLabelValues("stale").Observe(time.Since(start).Seconds())
		s.log.Debug().
			Str("entity_id", in.EntityID).
			Str("source", in.Source).
			Time("source_timestamp", in.Timestamp).
			Msg("stale position discarded")
		return ports.SubmitResult{}, nil
	}

	result := "updated"
	if n.Kind == domain.PositionAdded {
		result = "added"
	}
	metrics.PositionsMergedTotal.WithLabelValues(result, in.Source).Inc()

	s.deliver(ctx, events)
	metrics.PositionProcessingDuration.WithLabelValues("applied").Observe(time.Since(start).Seconds())

	out := ports.SubmitResult{Applied: true}
	if len(events) > 0 {
		out.Event = events[0]
	}
	return out, nil
}

// Remove stops tracking entityID.
func (s *trackingService) Remove(_ context.Context, entityID string) error {
	s.mu.Lock()
	_, err := s.rec.Remove(entityID)
	s.updateGauges()
	s.mu.Unlock()

	if err != nil {
		return err
	}
	metrics.PositionsRemovedTotal.Inc()
	s.log.Info().Str("entity_id", entityID).Msg("entity removed")
	return nil
}

// Reevaluate runs every held position through the monitor against the
// current zone set.
func (s *trackingService) Reevaluate(ctx context.Context) ([]*domain.ViolationEvent, error) {
	s.mu.Lock()
	var events []*domain.ViolationEvent
	for pos := range s.rec.All() {
		ev, err := s.mon.Evaluate(pos)
		if err != nil {
			s.mu.Unlock()
			return nil, fmt.Errorf("reevaluate %q: %w", pos.EntityID, err)
		}
		if ev != nil {
			events = append(events, ev)
		}
	}
	s.updateGauges()
	s.mu.Unlock()

	s.deliver(ctx, events)
	s.log.Info().Int("events", len(events)).Msg("positions reevaluated")
	return events, nil
}

func (s *trackingService) Positions() []ports.EntityView {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]ports.EntityView, 0, s.rec.Len())
	for pos := range s.rec.All() {
		out = append(out, s.view(pos))
	}
	return out
}

func (s *trackingService) Position(entityID string) (ports.EntityView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	pos, ok := s.rec.Get(entityID)
	if !ok {
		return ports.EntityView{}, fmt.Errorf("position %q: %w", entityID, domain.ErrUnknownEntity)
	}
	return s.view(pos), nil
}

// view must be called with mu held.
func (s *trackingService) view(pos domain.ReconciledPosition) ports.EntityView {
	state, _ := s.mon.State(pos.EntityID)
	return ports.EntityView{
		Position: pos,
		State:    state,
		Zones:    s.zones.ZonesContaining(pos.Point),
	}
}

// Violations reads the audit trail. The limit defaults to 50 and is capped at 500.
func (s *trackingService) Violations(ctx context.Context, filter ports.ViolationFilter) ([]*domain.ViolationEvent, error) {
	if s.violations == nil {
		return []*domain.ViolationEvent{}, nil
	}
	if filter.Limit <= 0 {
		filter.Limit = defaultViolationLimit
	}
	if filter.Limit > maxViolationLimit {
		filter.Limit = maxViolationLimit
	}

	events, err := s.violations.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list violations: %w", err)
	}
	return events, nil
}

func (s *trackingService) Stats() ports.TrackingStats {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.rec.Stats()
	return ports.TrackingStats{
		Tracked:   s.rec.Len(),
		OutOfZone: s.mon.OutOfZone(),
		Added:     st.Added,
		Updated:   st.Updated,
		Removed:   st.Removed,
		Stale:     st.Stale,
		Invalid:   st.Invalid,
	}
}

// deliver publishes and records events. Every event is audited, including
// replays whose alert is skipped. Delivery failures are logged and never undo
// the state change that produced the event.
func (s *trackingService) deliver(ctx context.Context, events []*domain.ViolationEvent) {
	for _, ev := range events {
		metrics.ViolationEventsTotal.WithLabelValues(string(ev.Kind)).Inc()

		logEv := s.log.Info()
		if ev.Kind == domain.ZoneViolation {
			logEv = s.log.Warn()
		}
		logEv.
			Str("event_id", ev.ID).
			Str("entity_id", ev.EntityID).
			Str("kind", string(ev.Kind)).
			Float64("lat", ev.Point.Lat).
			Float64("lng", ev.Point.Lng).
			Msg("zone state changed")

		if s.alerts != nil && !s.isReplay(ctx, ev) {
			if err := s.alerts.Publish(ctx, ev); err != nil {
				metrics.AlertsTotal.WithLabelValues("error").Inc()
				s.log.Error().Err(err).Str("event_id", ev.ID).Msg("failed to publish alert")
			} else {
				metrics.AlertsTotal.WithLabelValues("published").Inc()
				if s.dedup != nil {
					if err := s.dedup.Mark(ctx, ev); err != nil {
						s.log.Warn().Err(err).Str("event_id", ev.ID).Msg("failed to set alert dedup key")
					}
				}
			}
		}

		if s.violations != nil {
			if err := s.violations.Insert(ctx, ev); err != nil {
				s.log.Warn().Err(err).Str("event_id", ev.ID).Msg("failed to insert violation audit event")
			}
		}
	}
}

// isReplay reports whether ev repeats an alert already delivered for the same
// source record. Only first sightings can be replays: once the monitor holds
// state for an entity, every transition it reports is new.
func (s *trackingService) isReplay(ctx context.Context, ev *domain.ViolationEvent) bool {
	if s.dedup == nil || !ev.FirstSighting {
		return false
	}
	isDup, err := s.dedup.IsDuplicate(ctx, ev)
	if err != nil {
		s.log.Warn().Err(err).Str("entity_id", ev.EntityID).Msg("alert dedup check failed, publishing anyway")
		return false
	}
	if isDup {
		metrics.AlertsTotal.WithLabelValues("duplicate").Inc()
		s.log.Debug().Str("entity_id", ev.EntityID).Str("kind", string(ev.Kind)).Msg("replayed alert skipped")
	}
	return isDup
}

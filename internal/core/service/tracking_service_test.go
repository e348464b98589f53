package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/bandobast/zone-monitor/internal/core/domain"
	"github.com/bandobast/zone-monitor/internal/core/monitor"
	"github.com/bandobast/zone-monitor/internal/core/ports"
	"github.com/bandobast/zone-monitor/internal/core/reconciler"
	"github.com/bandobast/zone-monitor/internal/core/zone"
)

// ---------------------------------------------------------------------------
// Stubs
// ---------------------------------------------------------------------------

type stubPublisher struct {
	mu        sync.Mutex
	err       error
	published []*domain.ViolationEvent
}

func (p *stubPublisher) Publish(_ context.Context, ev *domain.ViolationEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.published = append(p.published, ev)
	return nil
}

// stubDedup keys alerts the way the Redis implementation does: entity, kind
// and source timestamp.
type stubDedup struct {
	dupResult bool
	dupErr    error
	checked   int
	marked    []string
	keys      map[string]bool
}

func dedupKey(ev *domain.ViolationEvent) string {
	return fmt.Sprintf("%s:%s:%d", ev.EntityID, ev.Kind, ev.SourceTimestamp.UnixMilli())
}

func (d *stubDedup) IsDuplicate(_ context.Context, ev *domain.ViolationEvent) (bool, error) {
	d.checked++
	if d.dupErr != nil || d.dupResult {
		return d.dupResult, d.dupErr
	}
	return d.keys[dedupKey(ev)], nil
}

func (d *stubDedup) Mark(_ context.Context, ev *domain.ViolationEvent) error {
	d.marked = append(d.marked, ev.EntityID+":"+string(ev.Kind))
	if d.keys == nil {
		d.keys = make(map[string]bool)
	}
	d.keys[dedupKey(ev)] = true
	return nil
}

func kinds(events []*domain.ViolationEvent) []domain.ViolationEventKind {
	out := make([]domain.ViolationEventKind, 0, len(events))
	for _, ev := range events {
		out = append(out, ev.Kind)
	}
	return out
}

type stubViolationRepo struct {
	insertErr  error
	inserted   []*domain.ViolationEvent
	lastFilter ports.ViolationFilter
}

func (r *stubViolationRepo) Insert(_ context.Context, ev *domain.ViolationEvent) error {
	if r.insertErr != nil {
		return r.insertErr
	}
	r.inserted = append(r.inserted, ev)
	return nil
}

func (r *stubViolationRepo) List(_ context.Context, f ports.ViolationFilter) ([]*domain.ViolationEvent, error) {
	r.lastFilter = f
	return r.inserted, nil
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

var base = time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

type fixture struct {
	svc   ports.TrackingService
	zones *zone.Registry
	pub   *stubPublisher
	dedup *stubDedup
	repo  *stubViolationRepo
}

func newFixture(t *testing.T, policy monitor.FirstSightingPolicy) *fixture {
	t.Helper()
	zones := zone.NewRegistry(zone.MatchAny)
	if err := zones.AddZone("square", domain.Polygon{{Lat: 0, Lng: 0}, {Lat: 0, Lng: 1}, {Lat: 1, Lng: 1}, {Lat: 1, Lng: 0}}); err != nil {
		t.Fatalf("add zone: %v", err)
	}
	f := &fixture{
		zones: zones,
		pub:   &stubPublisher{},
		dedup: &stubDedup{},
		repo:  &stubViolationRepo{},
	}
	f.svc = NewTrackingService(
		reconciler.New(),
		monitor.New(zones, policy),
		zones, f.pub, f.dedup, f.repo, zerolog.Nop(),
	)
	return f
}

func input(id string, lat, lng float64, sec int) ports.PositionInput {
	return ports.PositionInput{
		EntityID:  id,
		Lat:       lat,
		Lng:       lng,
		Status:    domain.StatusOnDuty,
		Timestamp: base.Add(time.Duration(sec) * time.Second),
		Source:    "test",
	}
}

func mustSubmit(t *testing.T, svc ports.TrackingService, in ports.PositionInput) ports.SubmitResult {
	t.Helper()
	res, err := svc.Submit(context.Background(), in)
	if err != nil {
		t.Fatalf("submit %+v: %v", in, err)
	}
	return res
}

// ---------------------------------------------------------------------------
// Submit
// ---------------------------------------------------------------------------

func TestTrackingService_Submit_ViolationDelivered(t *testing.T) {
	f := newFixture(t, monitor.FirstSightingSuppress)

	if res := mustSubmit(t, f.svc, input("o1", 0.5, 0.5, 1)); !res.Applied || res.Event != nil {
		t.Fatalf("first sighting: expected applied without event, got %+v", res)
	}

	res := mustSubmit(t, f.svc, input("o1", 2, 2, 2))
	if res.Event == nil || res.Event.Kind != domain.ZoneViolation {
		t.Fatalf("expected violation, got %+v", res)
	}
	if len(f.pub.published) != 1 {
		t.Errorf("expected 1 published alert, got %d", len(f.pub.published))
	}
	if len(f.repo.inserted) != 1 {
		t.Errorf("expected 1 audit event, got %d", len(f.repo.inserted))
	}
	if len(f.dedup.marked) != 1 || f.dedup.marked[0] != "o1:zone_violation" {
		t.Errorf("expected dedup key marked, got %v", f.dedup.marked)
	}

	if res := mustSubmit(t, f.svc, input("o1", 3, 3, 3)); res.Event != nil {
		t.Fatalf("still outside: expected no event, got %s", res.Event.Kind)
	}

	res = mustSubmit(t, f.svc, input("o1", 0.5, 0.5, 4))
	if res.Event == nil || res.Event.Kind != domain.ZoneRecovered {
		t.Fatalf("expected recovery, got %+v", res)
	}
	if len(f.pub.published) != 2 {
		t.Errorf("expected 2 published alerts, got %d", len(f.pub.published))
	}
}

func TestTrackingService_Submit_StaleIgnored(t *testing.T) {
	f := newFixture(t, monitor.FirstSightingSuppress)
	mustSubmit(t, f.svc, input("o1", 0.5, 0.5, 10))

	res := mustSubmit(t, f.svc, input("o1", 5, 5, 9))
	if res.Applied {
		t.Fatal("older record must not be applied")
	}
	if len(f.pub.published) != 0 {
		t.Fatalf("stale record must not alert, got %d alerts", len(f.pub.published))
	}

	view, err := f.svc.Position("o1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if view.Position.Point != (domain.Point{Lat: 0.5, Lng: 0.5}) {
		t.Errorf("held position changed by stale record: %+v", view.Position.Point)
	}
	if st := f.svc.Stats(); st.Stale != 1 {
		t.Errorf("expected stale count 1, got %d", st.Stale)
	}
}

func TestTrackingService_Submit_InvalidPosition(t *testing.T) {
	f := newFixture(t, monitor.FirstSightingSuppress)

	_, err := f.svc.Submit(context.Background(), input("o1", 95, 0, 1))
	if !errors.Is(err, domain.ErrInvalidPosition) {
		t.Fatalf("expected ErrInvalidPosition, got %v", err)
	}
	if st := f.svc.Stats(); st.Tracked != 0 || st.Invalid != 1 {
		t.Errorf("unexpected stats: %+v", st)
	}
}

func TestTrackingService_Submit_DuplicateAlertSkipped(t *testing.T) {
	f := newFixture(t, monitor.FirstSightingEvaluate)
	f.dedup.dupResult = true

	res := mustSubmit(t, f.svc, input("o1", 2, 2, 1))
	if res.Event == nil {
		t.Fatal("monitor should still report the transition")
	}
	if !res.Event.FirstSighting {
		t.Fatal("expected first sighting flag on the event")
	}
	if len(f.pub.published) != 0 {
		t.Errorf("replayed alert should not be published, got %d", len(f.pub.published))
	}
	if len(f.repo.inserted) != 1 {
		t.Errorf("replayed alert should still be audited, got %d", len(f.repo.inserted))
	}
}

func TestTrackingService_Submit_ReplayAfterRestartSkipped(t *testing.T) {
	f := newFixture(t, monitor.FirstSightingEvaluate)
	mustSubmit(t, f.svc, input("o1", 0.5, 0.5, 1))
	mustSubmit(t, f.svc, input("o1", 2, 2, 2))
	if len(f.pub.published) != 1 {
		t.Fatalf("expected one violation published, got %d", len(f.pub.published))
	}

	// A fresh service sharing the same dedup store sees the feed replay the
	// last record.
	restarted := NewTrackingService(
		reconciler.New(),
		monitor.New(f.zones, monitor.FirstSightingEvaluate),
		f.zones, f.pub, f.dedup, f.repo, zerolog.Nop(),
	)
	res := mustSubmit(t, restarted, input("o1", 2, 2, 2))
	if res.Event == nil || res.Event.Kind != domain.ZoneViolation {
		t.Fatalf("expected replayed violation from the monitor, got %+v", res.Event)
	}
	if len(f.pub.published) != 1 {
		t.Errorf("replay must not alert again, published %d", len(f.pub.published))
	}
	if len(f.repo.inserted) != 2 {
		t.Errorf("expected replay audited, got %d audit rows", len(f.repo.inserted))
	}
}

func TestTrackingService_Submit_KnownEntityTransitionNotDeduped(t *testing.T) {
	f := newFixture(t, monitor.FirstSightingSuppress)
	f.dedup.dupResult = true

	mustSubmit(t, f.svc, input("o1", 0.5, 0.5, 1))
	res := mustSubmit(t, f.svc, input("o1", 2, 2, 2))
	if res.Event == nil || res.Event.FirstSighting {
		t.Fatalf("expected a violation of a known entity, got %+v", res.Event)
	}
	if f.dedup.checked != 0 {
		t.Errorf("dedup consulted %d times for a known entity", f.dedup.checked)
	}
	if len(f.pub.published) != 1 {
		t.Errorf("expected violation published, got %d", len(f.pub.published))
	}
}

func TestTrackingService_Submit_DedupErrorPublishesAnyway(t *testing.T) {
	f := newFixture(t, monitor.FirstSightingEvaluate)
	f.dedup.dupErr = errors.New("redis timeout")

	mustSubmit(t, f.svc, input("o1", 2, 2, 1))
	if len(f.pub.published) != 1 {
		t.Errorf("expected alert published when dedup check errors, got %d", len(f.pub.published))
	}
}

func TestTrackingService_Submit_DeliveryFailuresAreNonFatal(t *testing.T) {
	f := newFixture(t, monitor.FirstSightingEvaluate)
	f.pub.err = errors.New("redis down")
	f.repo.insertErr = errors.New("mongo unavailable")

	res, err := f.svc.Submit(context.Background(), input("o1", 2, 2, 1))
	if err != nil {
		t.Fatalf("delivery failures must not fail submit, got: %v", err)
	}
	if !res.Applied {
		t.Fatal("expected record applied")
	}
	if len(f.dedup.marked) != 0 {
		t.Errorf("failed publish must not be marked as delivered")
	}
	if st := f.svc.Stats(); st.OutOfZone != 1 {
		t.Errorf("expected state recorded despite delivery failure, got %+v", st)
	}
}

func TestTrackingService_Submit_NoCollaborators(t *testing.T) {
	zones := zone.NewRegistry(zone.MatchAny)
	svc := NewTrackingService(reconciler.New(), monitor.New(zones, monitor.FirstSightingEvaluate), zones, nil, nil, nil, zerolog.Nop())

	res, err := svc.Submit(context.Background(), input("o1", 1, 1, 1))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Event == nil {
		t.Fatal("empty registry should put entity out of zone")
	}

	events, err := svc.Violations(context.Background(), ports.ViolationFilter{})
	if err != nil || len(events) != 0 {
		t.Fatalf("expected empty audit without repository, got %v, %v", events, err)
	}
}

// ---------------------------------------------------------------------------
// Remove / Reevaluate
// ---------------------------------------------------------------------------

func TestTrackingService_Remove_ForgetsState(t *testing.T) {
	f := newFixture(t, monitor.FirstSightingSuppress)
	mustSubmit(t, f.svc, input("o1", 0.5, 0.5, 1))

	if err := f.svc.Remove(context.Background(), "o1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := f.svc.Position("o1"); !errors.Is(err, domain.ErrUnknownEntity) {
		t.Fatalf("expected ErrUnknownEntity after removal, got %v", err)
	}

	// Re-appearing outside is a first sighting again.
	if res := mustSubmit(t, f.svc, input("o1", 2, 2, 2)); res.Event != nil {
		t.Fatalf("expected suppressed first sighting, got %s", res.Event.Kind)
	}
}

func TestTrackingService_Remove_Unknown(t *testing.T) {
	f := newFixture(t, monitor.FirstSightingSuppress)
	if err := f.svc.Remove(context.Background(), "ghost"); !errors.Is(err, domain.ErrUnknownEntity) {
		t.Fatalf("expected ErrUnknownEntity, got %v", err)
	}
}

func TestTrackingService_Reevaluate_AfterZoneRemoval(t *testing.T) {
	f := newFixture(t, monitor.FirstSightingSuppress)
	mustSubmit(t, f.svc, input("o1", 0.5, 0.5, 1))
	mustSubmit(t, f.svc, input("o2", 5, 5, 1))

	if err := f.zones.RemoveZone("square"); err != nil {
		t.Fatalf("remove zone: %v", err)
	}
	events, err := f.svc.Reevaluate(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(events) != 1 || events[0].EntityID != "o1" || events[0].Kind != domain.ZoneViolation {
		t.Fatalf("expected one violation for o1, got %+v", events)
	}
	if len(f.pub.published) != 1 {
		t.Errorf("expected reevaluation alert published, got %d", len(f.pub.published))
	}

	// Nothing changed since the last pass.
	if events, _ := f.svc.Reevaluate(context.Background()); len(events) != 0 {
		t.Fatalf("expected idempotent reevaluation, got %d events", len(events))
	}
}

func TestTrackingService_Reevaluate_RepeatedTransitionsAtSamePosition(t *testing.T) {
	f := newFixture(t, monitor.FirstSightingSuppress)
	mustSubmit(t, f.svc, input("o1", 0.5, 0.5, 1))
	if res := mustSubmit(t, f.svc, input("o1", 2, 2, 2)); res.Event == nil {
		t.Fatal("expected violation when leaving the square")
	}

	cover := domain.Polygon{{Lat: 1.5, Lng: 1.5}, {Lat: 1.5, Lng: 2.5}, {Lat: 2.5, Lng: 2.5}, {Lat: 2.5, Lng: 1.5}}
	if err := f.zones.AddZone("annex", cover); err != nil {
		t.Fatalf("add zone: %v", err)
	}
	events, err := f.svc.Reevaluate(context.Background())
	if err != nil || len(events) != 1 || events[0].Kind != domain.ZoneRecovered {
		t.Fatalf("expected recovery after zone added, got %v, %v", kinds(events), err)
	}

	if err := f.zones.RemoveZone("annex"); err != nil {
		t.Fatalf("remove zone: %v", err)
	}
	events, err = f.svc.Reevaluate(context.Background())
	if err != nil || len(events) != 1 || events[0].Kind != domain.ZoneViolation {
		t.Fatalf("expected violation after zone removed, got %v, %v", kinds(events), err)
	}

	want := []domain.ViolationEventKind{domain.ZoneViolation, domain.ZoneRecovered, domain.ZoneViolation}
	if got := kinds(f.pub.published); fmt.Sprint(got) != fmt.Sprint(want) {
		t.Errorf("published %v, want %v", got, want)
	}
	if got := kinds(f.repo.inserted); fmt.Sprint(got) != fmt.Sprint(want) {
		t.Errorf("audited %v, want %v", got, want)
	}
}

// ---------------------------------------------------------------------------
// Views
// ---------------------------------------------------------------------------

func TestTrackingService_Positions_OrderedWithState(t *testing.T) {
	f := newFixture(t, monitor.FirstSightingSuppress)
	mustSubmit(t, f.svc, input("c", 0.5, 0.5, 1))
	mustSubmit(t, f.svc, input("a", 7, 7, 1))
	mustSubmit(t, f.svc, input("b", 0.2, 0.2, 1))

	views := f.svc.Positions()
	if len(views) != 3 {
		t.Fatalf("expected 3 views, got %d", len(views))
	}
	for i, want := range []string{"a", "b", "c"} {
		if views[i].Position.EntityID != want {
			t.Fatalf("position %d: expected %s, got %s", i, want, views[i].Position.EntityID)
		}
	}
	if views[0].State != domain.OutOfZone || len(views[0].Zones) != 0 {
		t.Errorf("a: expected OutOfZone with no zones, got %+v", views[0])
	}
	if views[1].State != domain.InZone || len(views[1].Zones) != 1 || views[1].Zones[0] != "square" {
		t.Errorf("b: expected InZone in square, got %+v", views[1])
	}
}

func TestTrackingService_Violations_LimitClamped(t *testing.T) {
	f := newFixture(t, monitor.FirstSightingSuppress)

	cases := []struct {
		in, want int
	}{
		{0, defaultViolationLimit},
		{-3, defaultViolationLimit},
		{10, 10},
		{10000, maxViolationLimit},
	}
	for _, tc := range cases {
		if _, err := f.svc.Violations(context.Background(), ports.ViolationFilter{EntityID: "o1", Limit: tc.in}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if f.repo.lastFilter.Limit != tc.want || f.repo.lastFilter.EntityID != "o1" {
			t.Errorf("limit %d: expected filter limit %d, got %+v", tc.in, tc.want, f.repo.lastFilter)
		}
	}
}

func TestTrackingService_ConcurrentSubmit(t *testing.T) {
	f := newFixture(t, monitor.FirstSightingSuppress)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := fmt.Sprintf("o%02d", i)
			for sec := 1; sec <= 10; sec++ {
				_, _ = f.svc.Submit(context.Background(), input(id, 0.5, 0.5, sec))
			}
		}(i)
	}
	wg.Wait()

	st := f.svc.Stats()
	if st.Tracked != 20 || st.Added != 20 || st.Updated != 180 {
		t.Fatalf("unexpected stats after concurrent submits: %+v", st)
	}
}

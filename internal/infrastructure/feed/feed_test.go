package feed

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/bandobast/zone-monitor/internal/core/domain"
	"github.com/bandobast/zone-monitor/internal/core/ports"
)

// ---------------------------------------------------------------------------
// Stubs
// ---------------------------------------------------------------------------

type stubSink struct {
	mu       sync.Mutex
	inputs   []ports.PositionInput
	removals []string
}

func (s *stubSink) Enqueue(in ports.PositionInput) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inputs = append(s.inputs, in)
}

func (s *stubSink) EnqueueRemoval(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removals = append(s.removals, id)
}

type stubLister struct {
	officials []domain.Official
	err       error
}

func (l *stubLister) List(context.Context) ([]domain.Official, error) {
	return l.officials, l.err
}

type stubWatcher struct {
	calls   int
	changes []ports.OfficialChange
	errs    []error
	cancel  context.CancelFunc
}

func (w *stubWatcher) Watch(_ context.Context, fn func(ports.OfficialChange)) error {
	w.calls++
	if w.calls == 1 {
		for _, ch := range w.changes {
			fn(ch)
		}
	}
	if w.calls > len(w.errs) {
		w.cancel()
		return nil
	}
	return w.errs[w.calls-1]
}

var t0 = time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

func official(id string, lng, lat float64) domain.Official {
	return domain.Official{ID: id, Status: domain.StatusOnDuty, Location: [2]float64{lng, lat}, LastUpdated: t0}
}

// ---------------------------------------------------------------------------
// Poll
// ---------------------------------------------------------------------------

func TestPollFeed_ForwardsOfficials(t *testing.T) {
	sink := &stubSink{}
	lister := &stubLister{officials: []domain.Official{
		official("a", 80.27, 13.08),
		{ID: "b", Removed: true},
		{ID: "c"}, // no location yet
		official("", 80, 13),
	}}
	f := NewPollFeed(lister, nil, sink, 0, zerolog.Nop())

	if n := f.Poll(context.Background()); n != 2 {
		t.Fatalf("expected 2 forwarded, got %d", n)
	}
	if len(sink.inputs) != 1 {
		t.Fatalf("expected 1 position, got %d", len(sink.inputs))
	}
	in := sink.inputs[0]
	if in.EntityID != "a" || in.Lat != 13.08 || in.Lng != 80.27 || in.Source != SourcePoll || !in.Timestamp.Equal(t0) {
		t.Errorf("unexpected input %+v", in)
	}
	if len(sink.removals) != 1 || sink.removals[0] != "b" {
		t.Errorf("expected removal of b, got %v", sink.removals)
	}
}

func TestPollFeed_FallbackOnError(t *testing.T) {
	sink := &stubSink{}
	lister := &stubLister{err: errors.New("mongo down")}
	fallback := []domain.Official{official("x", 80.2, 13.0)}
	f := NewPollFeed(lister, fallback, sink, time.Second, zerolog.Nop())

	if n := f.Poll(context.Background()); n != 1 {
		t.Fatalf("expected fallback forwarded, got %d", n)
	}
	if sink.inputs[0].Source != SourceFallback {
		t.Errorf("expected fallback source, got %s", sink.inputs[0].Source)
	}
}

func TestPollFeed_NoListerUsesFallback(t *testing.T) {
	sink := &stubSink{}
	f := NewPollFeed(nil, []domain.Official{official("x", 80.2, 13.0)}, sink, time.Second, zerolog.Nop())
	if n := f.Poll(context.Background()); n != 1 {
		t.Fatalf("expected 1, got %d", n)
	}
}

func TestPollFeed_DefaultInterval(t *testing.T) {
	f := NewPollFeed(nil, nil, &stubSink{}, 0, zerolog.Nop())
	if f.interval != DefaultPollInterval {
		t.Fatalf("expected %v, got %v", DefaultPollInterval, f.interval)
	}
}

func TestPollFeed_RunStopsOnCancel(t *testing.T) {
	sink := &stubSink{}
	f := NewPollFeed(&stubLister{officials: []domain.Official{official("a", 80, 13)}}, nil, sink, time.Hour, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error)
	go func() { done <- f.Run(ctx) }()

	// The first poll runs before the first tick.
	deadline := time.After(2 * time.Second)
	for {
		sink.mu.Lock()
		n := len(sink.inputs)
		sink.mu.Unlock()
		if n > 0 {
			break
		}
		select {
		case <-deadline:
			t.Fatal("initial poll did not run")
		case <-time.After(5 * time.Millisecond):
		}
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("expected nil on cancel, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

// ---------------------------------------------------------------------------
// Live
// ---------------------------------------------------------------------------

func TestLiveFeed_ForwardsChangesAndRetries(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sink := &stubSink{}
	w := &stubWatcher{
		changes: []ports.OfficialChange{
			{Official: official("a", 80.27, 13.08)},
			{Official: domain.Official{ID: "b"}, Deleted: true},
			{Official: domain.Official{ID: "c", Removed: true}},
		},
		errs:   []error{errors.New("stream reset"), errors.New("stream reset")},
		cancel: cancel,
	}
	f := NewLiveFeed(w, sink, zerolog.Nop())
	var slept []time.Duration
	f.sleep = func(_ context.Context, d time.Duration) bool {
		slept = append(slept, d)
		return true
	}

	if err := f.Run(ctx); err != nil {
		t.Fatalf("expected nil, got %v", err)
	}
	if w.calls != 3 {
		t.Fatalf("expected 3 watch attempts, got %d", w.calls)
	}
	if len(slept) != 2 || slept[0] != time.Second || slept[1] != 2*time.Second {
		t.Errorf("expected backoff 1s, 2s; got %v", slept)
	}
	if len(sink.inputs) != 1 || sink.inputs[0].Source != SourceLive {
		t.Errorf("expected one live input, got %+v", sink.inputs)
	}
	if strings.Join(sink.removals, ",") != "b,c" {
		t.Errorf("expected removals b,c; got %v", sink.removals)
	}
}

// ---------------------------------------------------------------------------
// Roster
// ---------------------------------------------------------------------------

func TestDecodeRoster(t *testing.T) {
	src := `
officials:
  - id: off-1
    name: R. Kumar
    status: on-duty
    current_location: [80.2707, 13.0827]
    last_updated: 2024-05-01T09:00:00Z
  - id: off-2
    status: off-duty
    current_location: [80.25, 13.05]
`
	got, err := DecodeRoster(strings.NewReader(src))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 officials, got %d", len(got))
	}
	if got[0].Location != [2]float64{80.2707, 13.0827} || !got[0].LastUpdated.Equal(t0) {
		t.Errorf("unexpected first official %+v", got[0])
	}
	if got[1].Status != domain.StatusOffDuty {
		t.Errorf("expected off-duty, got %s", got[1].Status)
	}
}

func TestDecodeRoster_Rejects(t *testing.T) {
	cases := map[string]string{
		"missing id":    "officials:\n  - name: x\n",
		"duplicate id":  "officials:\n  - id: a\n  - id: a\n",
		"unknown field": "officials:\n  - id: a\n    colour: red\n",
	}
	for name, src := range cases {
		if _, err := DecodeRoster(strings.NewReader(src)); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}

func TestDecodeRoster_Empty(t *testing.T) {
	got, err := DecodeRoster(strings.NewReader(""))
	if err != nil || len(got) != 0 {
		t.Fatalf("expected empty roster, got %v, %v", got, err)
	}
}

package feed

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/bandobast/zone-monitor/internal/api/metrics"
	"github.com/bandobast/zone-monitor/internal/core/ports"
)

const (
	minRetry = time.Second
	maxRetry = 30 * time.Second
)

// Watcher streams official changes. *mongo.OfficialRepository satisfies it.
type Watcher interface {
	Watch(ctx context.Context, fn func(ports.OfficialChange)) error
}

// LiveFeed forwards every change of the live subscription. A broken stream
// is reopened with exponential backoff; the poll feed keeps positions flowing
// meanwhile.
type LiveFeed struct {
	watcher Watcher
	sink    Sink
	log     zerolog.Logger
	// sleep is replaced in tests.
	sleep func(ctx context.Context, d time.Duration) bool
}

func NewLiveFeed(watcher Watcher, sink Sink, log zerolog.Logger) *LiveFeed {
	return &LiveFeed{
		watcher: watcher,
		sink:    sink,
		log:     log.With().Str("feed", SourceLive).Logger(),
		sleep:   sleepCtx,
	}
}

// Run blocks until ctx is cancelled.
func (f *LiveFeed) Run(ctx context.Context) error {
	retry := minRetry
	for {
		err := f.watcher.Watch(ctx, f.handle)
		if ctx.Err() != nil {
			return nil
		}
		if err != nil {
			metrics.FeedFetchesTotal.WithLabelValues(SourceLive, "error").Inc()
			f.log.Warn().Err(err).Dur("retry_in", retry).Msg("live subscription dropped")
		} else {
			retry = minRetry
		}
		if !f.sleep(ctx, retry) {
			return nil
		}
		retry = min(retry*2, maxRetry)
	}
}

func (f *LiveFeed) handle(ch ports.OfficialChange) {
	metrics.FeedFetchesTotal.WithLabelValues(SourceLive, "ok").Inc()
	if ch.Deleted {
		if ch.Official.ID != "" {
			f.sink.EnqueueRemoval(ch.Official.ID)
		}
		return
	}
	forward(f.sink, ch.Official, SourceLive, f.log)
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

package feed

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/bandobast/zone-monitor/internal/api/metrics"
	"github.com/bandobast/zone-monitor/internal/core/domain"
)

const DefaultPollInterval = 5 * time.Second

// Lister returns the current officials. *mongo.OfficialRepository satisfies it.
type Lister interface {
	List(ctx context.Context) ([]domain.Official, error)
}

// PollFeed re-reads the officials collection on a fixed interval. When a read
// fails it submits the fallback roster instead; since the roster carries its
// own timestamps, it can only fill gaps and never overwrites fresher data.
type PollFeed struct {
	lister   Lister
	fallback []domain.Official
	sink     Sink
	interval time.Duration
	log      zerolog.Logger
}

// NewPollFeed creates a PollFeed. lister may be nil, in which case every tick
// submits the fallback roster.
func NewPollFeed(lister Lister, fallback []domain.Official, sink Sink, interval time.Duration, log zerolog.Logger) *PollFeed {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &PollFeed{
		lister:   lister,
		fallback: fallback,
		sink:     sink,
		interval: interval,
		log:      log.With().Str("feed", SourcePoll).Logger(),
	}
}

// Run polls immediately and then every interval until ctx is cancelled.
func (f *PollFeed) Run(ctx context.Context) error {
	ticker := time.NewTicker(f.interval)
	defer ticker.Stop()

	f.Poll(ctx)
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			f.Poll(ctx)
		}
	}
}

// Poll runs one fetch and returns how many documents produced work.
func (f *PollFeed) Poll(ctx context.Context) int {
	if f.lister == nil {
		return f.submitFallback()
	}

	officials, err := f.lister.List(ctx)
	if err != nil {
		metrics.FeedFetchesTotal.WithLabelValues(SourcePoll, "error").Inc()
		f.log.Warn().Err(err).Int("fallback", len(f.fallback)).Msg("poll failed, using fallback roster")
		return f.submitFallback()
	}
	metrics.FeedFetchesTotal.WithLabelValues(SourcePoll, "ok").Inc()

	n := 0
	for _, o := range officials {
		if forward(f.sink, o, SourcePoll, f.log) {
			n++
		}
	}
	f.log.Debug().Int("officials", len(officials)).Int("forwarded", n).Msg("poll complete")
	return n
}

func (f *PollFeed) submitFallback() int {
	if len(f.fallback) == 0 {
		return 0
	}
	metrics.FeedFetchesTotal.WithLabelValues(SourceFallback, "ok").Inc()
	n := 0
	for _, o := range f.fallback {
		if forward(f.sink, o, SourceFallback, f.log) {
			n++
		}
	}
	return n
}

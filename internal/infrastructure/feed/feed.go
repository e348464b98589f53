// Package feed pulls official positions from upstream sources and hands them
// to the dispatcher. Feeds never decide which record wins: every record goes
// through the reconciler, which keeps the newest by source timestamp.
package feed

import (
	"github.com/rs/zerolog"

	"github.com/bandobast/zone-monitor/internal/core/domain"
	"github.com/bandobast/zone-monitor/internal/core/ports"
)

// Feed names, used as PositionInput.Source and as metric labels.
const (
	SourceLive     = "live"
	SourcePoll     = "poll"
	SourceFallback = "fallback"
)

// Sink accepts work for the tracking service. *queue.Dispatcher satisfies it.
type Sink interface {
	Enqueue(in ports.PositionInput)
	EnqueueRemoval(entityID string)
}

func toInput(o domain.Official, source string) ports.PositionInput {
	return ports.PositionInput{
		EntityID:  o.ID,
		Lat:       o.Location[1],
		Lng:       o.Location[0],
		Status:    o.Status,
		Timestamp: o.LastUpdated,
		Source:    source,
	}
}

// forward routes one official document to sink and reports whether it
// produced any work.
func forward(sink Sink, o domain.Official, source string, log zerolog.Logger) bool {
	if o.ID == "" {
		log.Warn().Str("source", source).Msg("official without id skipped")
		return false
	}
	if o.Removed {
		sink.EnqueueRemoval(o.ID)
		return true
	}
	if !o.HasLocation() {
		log.Debug().Str("entity_id", o.ID).Str("source", source).Msg("official without location skipped")
		return false
	}
	sink.Enqueue(toInput(o, source))
	return true
}

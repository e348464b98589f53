package ports

import (
	"context"

	"github.com/bandobast/zone-monitor/internal/core/domain"
)

// AlertPublisher fans violation events out to alert consumers.
type AlertPublisher interface {
	Publish(ctx context.Context, event *domain.ViolationEvent) error
}

// AlertDedup remembers which source records already raised an alert, so a
// replay after a restart does not alert twice. Only first-sighting events are
// checked; a transition of an entity with known state is always new.
type AlertDedup interface {
	IsDuplicate(ctx context.Context, event *domain.ViolationEvent) (bool, error)
	Mark(ctx context.Context, event *domain.ViolationEvent) error
}

package ports

import (
	"context"
	"time"

	"github.com/bandobast/zone-monitor/internal/core/domain"
)

// PositionInput is the DTO passed from transports and feeds to the TrackingService.
type PositionInput struct {
	EntityID  string
	Lat       float64
	Lng       float64
	Status    string
	Timestamp time.Time
	Source    string
}

// Record converts the input to a domain record.
func (in PositionInput) Record() domain.PositionRecord {
	return domain.PositionRecord{
		EntityID:        in.EntityID,
		Point:           domain.Point{Lat: in.Lat, Lng: in.Lng},
		SourceTimestamp: in.Timestamp,
		Status:          in.Status,
		Source:          in.Source,
	}
}

// EntityView is the reconciled position of an entity plus its geofence state.
type EntityView struct {
	Position domain.ReconciledPosition
	State    domain.ViolationState
	// Zones lists the zones currently containing the position.
	Zones []string
}

// SubmitResult reports what a Submit did.
type SubmitResult struct {
	Applied bool
	Event   *domain.ViolationEvent
}

// TrackingStats summarises the service state.
type TrackingStats struct {
	Tracked   int
	OutOfZone int
	Added     int
	Updated   int
	Removed   int
	Stale     int
	Invalid   int
}

// TrackingService is the single writer in front of the reconciler and monitor.
type TrackingService interface {
	Submit(ctx context.Context, in PositionInput) (SubmitResult, error)
	Remove(ctx context.Context, entityID string) error
	// Reevaluate runs every tracked position through the monitor again, for
	// use after the zone set changed.
	Reevaluate(ctx context.Context) ([]*domain.ViolationEvent, error)
	Positions() []EntityView
	Position(entityID string) (EntityView, error)
	Violations(ctx context.Context, filter ViolationFilter) ([]*domain.ViolationEvent, error)
	Stats() TrackingStats
}

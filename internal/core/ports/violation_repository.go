package ports

import (
	"context"

	"github.com/bandobast/zone-monitor/internal/core/domain"
)

// ViolationFilter narrows a violation audit query. Zero values mean no filter.
type ViolationFilter struct {
	EntityID string
	Limit    int
}

// ViolationRepository persists violation events to an audit trail.
type ViolationRepository interface {
	Insert(ctx context.Context, event *domain.ViolationEvent) error
	// List returns events newest first.
	List(ctx context.Context, filter ViolationFilter) ([]*domain.ViolationEvent, error)
}

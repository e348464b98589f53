package domain

import (
	"errors"
	"fmt"
	"time"
)

var ErrUnknownEntity = errors.New("entity not found")

// Duty status values reported by the official apps.
const (
	StatusOnDuty  = "on-duty"
	StatusOffDuty = "off-duty"
)

// PositionRecord is a single position report for an official, as delivered by
// any upstream feed.
type PositionRecord struct {
	EntityID        string    `json:"entity_id" bson:"entity_id"`
	Point           Point     `json:"point" bson:"point"`
	SourceTimestamp time.Time `json:"source_timestamp" bson:"source_timestamp"`
	Status          string    `json:"status" bson:"status"`
	// Source names the feed that delivered the record. Diagnostic only: it
	// never influences which record wins a merge.
	Source string `json:"source,omitempty" bson:"source,omitempty"`
}

// Validate checks the fields the reconciler relies on.
func (r PositionRecord) Validate() error {
	if r.EntityID == "" {
		return fmt.Errorf("%w: entity id is empty", ErrInvalidPosition)
	}
	if !r.Point.Valid() {
		return fmt.Errorf("%w: (%v, %v) out of range", ErrInvalidPosition, r.Point.Lat, r.Point.Lng)
	}
	return nil
}

// ReconciledPosition is the latest accepted record for an entity.
type ReconciledPosition struct {
	PositionRecord
	// FirstSeen is when the reconciler first accepted a record for the entity.
	FirstSeen time.Time `json:"first_seen" bson:"first_seen"`
	// Revision counts accepted records for the entity, starting at 1.
	Revision int `json:"revision" bson:"revision"`
}

// NotificationKind identifies what happened to a reconciled position.
type NotificationKind string

const (
	PositionAdded   NotificationKind = "position_added"
	PositionUpdated NotificationKind = "position_updated"
	PositionRemoved NotificationKind = "position_removed"
)

// Notification is emitted by the reconciler after every applied mutation.
// For PositionRemoved, Position holds the last value before removal.
type Notification struct {
	Kind     NotificationKind
	Position ReconciledPosition
}

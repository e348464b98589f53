package domain

import "time"

// ViolationState is the per-entity geofence state.
type ViolationState string

const (
	InZone    ViolationState = "in_zone"
	OutOfZone ViolationState = "out_of_zone"
)

// ViolationEventKind identifies a geofence state transition.
type ViolationEventKind string

const (
	ZoneViolation ViolationEventKind = "zone_violation"
	ZoneRecovered ViolationEventKind = "zone_recovered"
)

// ViolationEvent is emitted once per state transition of an entity.
type ViolationEvent struct {
	ID              string             `json:"id" bson:"event_id"`
	Kind            ViolationEventKind `json:"kind" bson:"kind"`
	EntityID        string             `json:"entity_id" bson:"entity_id"`
	Point           Point              `json:"point" bson:"point"`
	Status          string             `json:"status,omitempty" bson:"status,omitempty"`
	Source          string             `json:"source,omitempty" bson:"source,omitempty"`
	SourceTimestamp time.Time          `json:"source_timestamp" bson:"source_timestamp"`
	DetectedAt      time.Time          `json:"detected_at" bson:"detected_at"`
	// FirstSighting is set when the monitor held no state for the entity,
	// as after a restart or a removal.
	FirstSighting bool `json:"first_sighting,omitempty" bson:"first_sighting,omitempty"`
}

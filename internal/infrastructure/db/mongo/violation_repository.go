package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/bandobast/zone-monitor/internal/core/domain"
	"github.com/bandobast/zone-monitor/internal/core/ports"
)

const collectionViolations = "violation_events"

// ViolationRepository implements ports.ViolationRepository using MongoDB.
type ViolationRepository struct {
	col *mongo.Collection
}

// NewViolationRepository creates a new ViolationRepository.
func NewViolationRepository(db *mongo.Database) *ViolationRepository {
	return &ViolationRepository{col: db.Collection(collectionViolations)}
}

// Insert appends ev to the violation audit trail.
func (r *ViolationRepository) Insert(ctx context.Context, ev *domain.ViolationEvent) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := r.col.InsertOne(ctx, ev); err != nil {
		return fmt.Errorf("insert violation %s: %w", ev.ID, err)
	}
	return nil
}

// List returns the newest events first.
func (r *ViolationRepository) List(ctx context.Context, filter ports.ViolationFilter) ([]*domain.ViolationEvent, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	query := violationQuery(filter)
	opts := options.Find().SetSort(bson.D{{Key: "detected_at", Value: -1}})
	if filter.Limit > 0 {
		opts.SetLimit(int64(filter.Limit))
	}

	cur, err := r.col.Find(ctx, query, opts)
	if err != nil {
		return nil, fmt.Errorf("find violations: %w", err)
	}
	defer cur.Close(ctx)

	events := make([]*domain.ViolationEvent, 0)
	if err := cur.All(ctx, &events); err != nil {
		return nil, fmt.Errorf("decode violations: %w", err)
	}
	return events, nil
}

func violationQuery(filter ports.ViolationFilter) bson.M {
	query := bson.M{}
	if filter.EntityID != "" {
		query["entity_id"] = filter.EntityID
	}
	return query
}

// EnsureIndexes creates the indexes the audit queries rely on.
func (r *ViolationRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "event_id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "entity_id", Value: 1}, {Key: "detected_at", Value: -1}}},
		{Keys: bson.D{{Key: "detected_at", Value: -1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}

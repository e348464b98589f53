package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/bandobast/zone-monitor/internal/core/domain"
	"github.com/bandobast/zone-monitor/internal/core/ports"
)

const collectionOfficials = "officials"

// OfficialRepository reads official documents written by the field apps.
type OfficialRepository struct {
	col *mongo.Collection
}

// NewOfficialRepository creates a new OfficialRepository.
func NewOfficialRepository(db *mongo.Database) *OfficialRepository {
	return &OfficialRepository{col: db.Collection(collectionOfficials)}
}

// List returns every official document.
func (r *OfficialRepository) List(ctx context.Context) ([]domain.Official, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("find officials: %w", err)
	}
	defer cur.Close(ctx)

	var out []domain.Official
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode officials: %w", err)
	}
	return out, nil
}

// changeEvent is the subset of a change stream document we read.
type changeEvent struct {
	OperationType string          `bson:"operationType"`
	FullDocument  domain.Official `bson:"fullDocument"`
	DocumentKey   struct {
		ID string `bson:"_id"`
	} `bson:"documentKey"`
}

// Watch tails the officials change stream. It returns nil when ctx is
// cancelled and an error when the stream cannot be opened or breaks.
// Change streams need a replica set.
func (r *OfficialRepository) Watch(ctx context.Context, fn func(ports.OfficialChange)) error {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"operationType": bson.M{"$in": bson.A{"insert", "update", "replace", "delete"}}}}},
	}
	opts := options.ChangeStream().SetFullDocument(options.UpdateLookup)

	cs, err := r.col.Watch(ctx, pipeline, opts)
	if err != nil {
		return fmt.Errorf("watch officials: %w", err)
	}
	defer cs.Close(context.Background())

	for cs.Next(ctx) {
		var ev changeEvent
		if err := cs.Decode(&ev); err != nil {
			return fmt.Errorf("decode official change: %w", err)
		}
		fn(toChange(ev))
	}

	if err := cs.Err(); err != nil && !errors.Is(err, context.Canceled) && ctx.Err() == nil {
		return fmt.Errorf("officials change stream: %w", err)
	}
	return nil
}

func toChange(ev changeEvent) ports.OfficialChange {
	if ev.OperationType == "delete" {
		return ports.OfficialChange{Official: domain.Official{ID: ev.DocumentKey.ID}, Deleted: true}
	}
	return ports.OfficialChange{Official: ev.FullDocument}
}

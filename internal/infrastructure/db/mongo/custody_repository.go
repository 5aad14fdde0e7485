package mongo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/returnloop/pickup-system/internal/core/domain"
	"github.com/returnloop/pickup-system/internal/core/ports"
)

const collectionCustody = "custody_events"

// CustodyRepository implements ports.CustodyRepository using MongoDB.
// The collection is append-only: no update or delete path exists.
type CustodyRepository struct {
	col *mongo.Collection
}

// NewCustodyRepository creates a new CustodyRepository.
func NewCustodyRepository(db *mongo.Database) ports.CustodyRepository {
	return &CustodyRepository{col: db.Collection(collectionCustody)}
}

// Append persists a custody event. A missing id is filled in here so
// callers can hand over bare events.
func (r *CustodyRepository) Append(ctx context.Context, event *domain.CustodyEvent) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now().UTC()
	}

	_, err := r.col.InsertOne(ctx, event)
	return err
}

// ListByPickup returns a pickup's custody events oldest first.
func (r *CustodyRepository) ListByPickup(ctx context.Context, pickupID string) ([]*domain.CustodyEvent, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cursor, err := r.col.Find(ctx, bson.M{"pickup_id": pickupID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	events := make([]*domain.CustodyEvent, 0)
	for cursor.Next(ctx) {
		var e domain.CustodyEvent
		if err := cursor.Decode(&e); err != nil {
			return nil, err
		}
		events = append(events, &e)
	}
	return events, cursor.Err()
}

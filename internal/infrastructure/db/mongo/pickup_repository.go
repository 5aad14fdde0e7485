package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/returnloop/pickup-system/internal/core/domain"
)

const collectionPickups = "pickups"

type PickupRepository struct {
	col *mongo.Collection
}

func NewPickupRepository(db *mongo.Database) *PickupRepository {
	return &PickupRepository{col: db.Collection(collectionPickups)}
}

// Create inserts a new pickup document.
func (r *PickupRepository) Create(ctx context.Context, p *domain.Pickup) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := r.col.InsertOne(ctx, p)
	return err
}

// FindByID retrieves a pickup by its id.
func (r *PickupRepository) FindByID(ctx context.Context, id string) (*domain.Pickup, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var p domain.Pickup
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&p)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrPickupNotFound
		}
		return nil, err
	}
	return &p, nil
}

// FindByIdempotencyKey retrieves an existing pickup created with the given key.
func (r *PickupRepository) FindByIdempotencyKey(ctx context.Context, key string) (*domain.Pickup, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var p domain.Pickup
	err := r.col.FindOne(ctx, bson.M{"idempotency_key": key}).Decode(&p)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrPickupNotFound
		}
		return nil, err
	}
	return &p, nil
}

// Claim performs the conditional assignment. The filter requires the pickup
// to still be scheduled with no driver, so concurrent claimers race on a
// single document update and exactly one wins.
func (r *PickupRepository) Claim(ctx context.Context, id, driverID string, at time.Time) (*domain.Pickup, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{
		"_id":    id,
		"status": string(domain.StatusScheduled),
		"driver_id": bson.M{
			"$in": bson.A{nil, ""},
		},
	}
	update := bson.M{
		"$set": bson.M{
			"driver_id":  driverID,
			"status":     string(domain.StatusAssigned),
			"updated_at": at.UTC(),
		},
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var p domain.Pickup
	err := r.col.FindOneAndUpdate(ctx, filter, update, opts).Decode(&p)
	if err == nil {
		return &p, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, err
	}

	// No match: distinguish a lost race from a missing pickup.
	if _, findErr := r.FindByID(ctx, id); findErr != nil {
		return nil, findErr
	}
	return nil, domain.ErrAlreadyClaimed
}

// UpdateStatus performs a conditional status transition, optionally setting
// the final fee in the same write.
func (r *PickupRepository) UpdateStatus(ctx context.Context, id string, from, next domain.PickupStatus, finalFeeCents *int64, at time.Time) (*domain.Pickup, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	set := bson.M{
		"status":     string(next),
		"updated_at": at.UTC(),
	}
	if finalFeeCents != nil {
		set["final_fee_cents"] = *finalFeeCents
	}

	filter := bson.M{"_id": id, "status": string(from)}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var p domain.Pickup
	err := r.col.FindOneAndUpdate(ctx, filter, bson.M{"$set": set}, opts).Decode(&p)
	if err == nil {
		return &p, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, err
	}

	// The pickup moved out of the expected status between read and write,
	// or never existed.
	if _, findErr := r.FindByID(ctx, id); findErr != nil {
		return nil, findErr
	}
	return nil, domain.ErrInvalidTransition
}

// ListByCustomer returns all pickups for a customer, newest first.
func (r *PickupRepository) ListByCustomer(ctx context.Context, customerID string) ([]*domain.Pickup, error) {
	filter := bson.M{"customer_id": customerID}
	sort := bson.D{{Key: "created_at", Value: -1}}
	return r.list(ctx, filter, sort)
}

// ListByDriver returns the driver's actionable pickups, soonest window first.
func (r *PickupRepository) ListByDriver(ctx context.Context, driverID string) ([]*domain.Pickup, error) {
	filter := bson.M{
		"driver_id": driverID,
		"status": bson.M{"$in": bson.A{
			string(domain.StatusScheduled),
			string(domain.StatusAssigned),
			string(domain.StatusPickedUp),
		}},
	}
	sort := bson.D{{Key: "window_start", Value: 1}}
	return r.list(ctx, filter, sort)
}

// ListAvailable returns the unclaimed scheduled pool, soonest window first.
func (r *PickupRepository) ListAvailable(ctx context.Context) ([]*domain.Pickup, error) {
	filter := bson.M{
		"status":    string(domain.StatusScheduled),
		"driver_id": bson.M{"$in": bson.A{nil, ""}},
	}
	sort := bson.D{{Key: "window_start", Value: 1}}
	return r.list(ctx, filter, sort)
}

// ListAll returns every pickup, newest first, optionally filtered by status.
func (r *PickupRepository) ListAll(ctx context.Context, status domain.PickupStatus) ([]*domain.Pickup, error) {
	filter := bson.M{}
	if status != "" {
		filter["status"] = string(status)
	}
	sort := bson.D{{Key: "created_at", Value: -1}}
	return r.list(ctx, filter, sort)
}

func (r *PickupRepository) list(ctx context.Context, filter bson.M, sort bson.D) ([]*domain.Pickup, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cursor, err := r.col.Find(ctx, filter, options.Find().SetSort(sort))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	pickups := make([]*domain.Pickup, 0)
	for cursor.Next(ctx) {
		var p domain.Pickup
		if err := cursor.Decode(&p); err != nil {
			return nil, err
		}
		pickups = append(pickups, &p)
	}
	return pickups, cursor.Err()
}

// EnsureIndexes creates necessary indexes on the pickups collection.
func (r *PickupRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "customer_id", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "driver_id", Value: 1}, {Key: "window_start", Value: 1}}},
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "window_start", Value: 1}}},
		{Keys: bson.D{{Key: "idempotency_key", Value: 1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}

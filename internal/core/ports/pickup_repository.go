package ports

import (
	"context"
	"time"

	"github.com/returnloop/pickup-system/internal/core/domain"
)

// PickupRepository defines persistence operations for pickups.
//
// Every status-changing write is a single conditional update against the
// store: it either fully applies or fully fails, leaving the record
// untouched. There are no multi-step transactions.
type PickupRepository interface {
	Create(ctx context.Context, p *domain.Pickup) error
	FindByID(ctx context.Context, id string) (*domain.Pickup, error)
	FindByIdempotencyKey(ctx context.Context, key string) (*domain.Pickup, error)

	// Claim atomically assigns driverID to an unclaimed scheduled pickup and
	// moves it to assigned. The write is conditioned on
	// status == scheduled AND driver_id unset, so at most one concurrent
	// claimer succeeds. Losers get domain.ErrAlreadyClaimed; a missing id
	// gets domain.ErrPickupNotFound.
	Claim(ctx context.Context, id, driverID string, at time.Time) (*domain.Pickup, error)

	// UpdateStatus atomically moves a pickup from the expected current status
	// to next. When finalFeeCents is non-nil it is set in the same write.
	// A pickup no longer in the expected status yields
	// domain.ErrInvalidTransition; a missing id yields domain.ErrPickupNotFound.
	UpdateStatus(ctx context.Context, id string, from, next domain.PickupStatus, finalFeeCents *int64, at time.Time) (*domain.Pickup, error)

	// ListByCustomer returns all of a customer's pickups, newest first.
	ListByCustomer(ctx context.Context, customerID string) ([]*domain.Pickup, error)

	// ListByDriver returns the driver's still-actionable pickups
	// (scheduled, assigned, picked_up) ordered by window start, soonest first.
	ListByDriver(ctx context.Context, driverID string) ([]*domain.Pickup, error)

	// ListAvailable returns the unclaimed scheduled pool ordered by window
	// start, soonest first. Drivers race to claim from this pool.
	ListAvailable(ctx context.Context) ([]*domain.Pickup, error)

	// ListAll returns every pickup, newest first, optionally filtered to a
	// single status. An empty status means no filter.
	ListAll(ctx context.Context, status domain.PickupStatus) ([]*domain.Pickup, error)
}

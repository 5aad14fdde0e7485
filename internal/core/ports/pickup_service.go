package ports

import (
	"context"
	"time"

	"github.com/returnloop/pickup-system/internal/core/domain"
)

// Actor identifies the authenticated caller of a pickup operation.
type Actor struct {
	ID   string
	Role string
}

// CreatePickupInput carries all data needed to schedule a new pickup.
type CreatePickupInput struct {
	PickupAddress     string
	DropCarrier       string
	DropLocationLabel string
	ArtifactType      string
	ArtifactURL       string
	ArtifactText      string
	NeedsBox          bool
	NeedsLabelPrint   bool
	WindowStart       time.Time
	WindowEnd         time.Time
	ReturnDeadline    time.Time
	NotesForDriver    string
	// IdempotencyKey, when set and already seen, replays the original
	// pickup without side effects.
	IdempotencyKey string
}

// AdvanceInput carries the target status for a driver progression plus the
// optional custody evidence captured alongside it.
type AdvanceInput struct {
	TargetStatus string
	PhotoURL     string
	ScanCode     string
	ReceiptID    string
}

// PickupDetail is the full read view of a single pickup: the record, its
// presentation label, and the custody trail.
type PickupDetail struct {
	Pickup      *domain.Pickup
	StatusLabel string
	Custody     []*domain.CustodyEvent
}

// CustomerView splits a customer's pickups into active and past. The two
// slices partition the full set: every pickup lands in exactly one.
type CustomerView struct {
	Active []*domain.Pickup
	Past   []*domain.Pickup
}

// DriverView holds the driver's own actionable pickups and the unclaimed pool.
type DriverView struct {
	Mine      []*domain.Pickup
	Available []*domain.Pickup
}

// PickupService defines the lifecycle engine operations. Every
// status-changing call re-checks actor permissions and the transition table;
// query views are read-only and grant no write authority.
type PickupService interface {
	CreatePickup(ctx context.Context, actor Actor, input CreatePickupInput) (*domain.Pickup, error)
	GetPickup(ctx context.Context, actor Actor, id string) (*PickupDetail, error)
	ClaimPickup(ctx context.Context, actor Actor, id string) (*domain.Pickup, error)
	AdvanceStatus(ctx context.Context, actor Actor, id string, input AdvanceInput) (*domain.Pickup, error)
	CancelPickup(ctx context.Context, actor Actor, id string) (*domain.Pickup, error)
	CustodyTrail(ctx context.Context, actor Actor, pickupID string) ([]*domain.CustodyEvent, error)

	GetCustomerView(ctx context.Context, actor Actor) (*CustomerView, error)
	GetDriverView(ctx context.Context, actor Actor) (*DriverView, error)
	GetAdminView(ctx context.Context, actor Actor, statusFilter string) ([]*domain.Pickup, error)
}

package ports

import (
	"context"

	"github.com/returnloop/pickup-system/internal/core/domain"
)

// CustodyRepository persists the append-only custody trail. There are
// deliberately no update or delete operations: events accumulate a
// tamper-evident record of custody transfer.
type CustodyRepository interface {
	Append(ctx context.Context, event *domain.CustodyEvent) error
	// ListByPickup returns a pickup's custody events in insertion order.
	ListByPickup(ctx context.Context, pickupID string) ([]*domain.CustodyEvent, error)
}

package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const dedupTTL = time.Hour

// DedupStore absorbs duplicate status-advance submissions backed by Redis.
// Key format: advance:<pickup_id>:<status>
type DedupStore struct {
	client *redis.Client
}

// NewDedupStore creates a DedupStore wrapping the given Redis client.
func NewDedupStore(client *redis.Client) *DedupStore {
	return &DedupStore{client: client}
}

// IsDuplicate reports whether this transition has already been applied.
func (d *DedupStore) IsDuplicate(ctx context.Context, pickupID, status string) (bool, error) {
	n, err := d.client.Exists(ctx, d.key(pickupID, status)).Result()
	if err != nil {
		return false, fmt.Errorf("dedup check: %w", err)
	}
	return n > 0, nil
}

// Mark records that this transition has been applied (expires after dedupTTL).
func (d *DedupStore) Mark(ctx context.Context, pickupID, status string) error {
	return d.client.Set(ctx, d.key(pickupID, status), "1", dedupTTL).Err()
}

func (d *DedupStore) key(pickupID, status string) string {
	return fmt.Sprintf("advance:%s:%s", pickupID, status)
}

package queue

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/returnloop/pickup-system/internal/core/domain"
)

type captureRepo struct {
	mu     sync.Mutex
	events []*domain.CustodyEvent
}

func (r *captureRepo) Append(_ context.Context, e *domain.CustodyEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *captureRepo) ListByPickup(_ context.Context, pickupID string) ([]*domain.CustodyEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.CustodyEvent
	for _, e := range r.events {
		if e.PickupID == pickupID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *captureRepo) snapshot() []*domain.CustodyEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*domain.CustodyEvent(nil), r.events...)
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("condition not met within %s", timeout)
}

func TestRecorder_AppendsEvents(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	repo := &captureRepo{}
	rec := NewRecorder(2, repo, zerolog.Nop())
	rec.Start(ctx)

	rec.Record(&domain.CustodyEvent{PickupID: "RTN-1", EventType: domain.CustodyPickupPhoto})
	rec.Record(&domain.CustodyEvent{PickupID: "RTN-2", EventType: domain.CustodyDropReceipt})

	waitFor(t, 2*time.Second, func() bool { return len(repo.snapshot()) == 2 })
}

// TestRecorder_PerPickupOrdering verifies that sharding keeps one pickup's
// events on a single worker, preserving their submission order.
func TestRecorder_PerPickupOrdering(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	repo := &captureRepo{}
	rec := NewRecorder(4, repo, zerolog.Nop())
	rec.Start(ctx)

	const n = 20
	for i := 0; i < n; i++ {
		rec.Record(&domain.CustodyEvent{
			PickupID:  "RTN-ORDERED",
			EventType: domain.CustodyPickupScan,
			Metadata:  map[string]string{"seq": fmt.Sprintf("%02d", i)},
		})
	}

	waitFor(t, 2*time.Second, func() bool { return len(repo.snapshot()) == n })

	events := repo.snapshot()
	for i, e := range events {
		want := fmt.Sprintf("%02d", i)
		if e.Metadata["seq"] != want {
			t.Fatalf("event %d out of order: got seq %s, want %s", i, e.Metadata["seq"], want)
		}
	}
}

func TestRecorder_ShardIsStable(t *testing.T) {
	rec := NewRecorder(4, &captureRepo{}, zerolog.Nop())
	first := rec.shardIndex("RTN-ABCD1234")
	for i := 0; i < 10; i++ {
		if got := rec.shardIndex("RTN-ABCD1234"); got != first {
			t.Fatalf("shard index not stable: got %d, want %d", got, first)
		}
	}
}

func TestRecorder_DefaultWorkerCount(t *testing.T) {
	rec := NewRecorder(0, &captureRepo{}, zerolog.Nop())
	if len(rec.workers) != defaultWorkers {
		t.Fatalf("expected %d workers, got %d", defaultWorkers, len(rec.workers))
	}
}

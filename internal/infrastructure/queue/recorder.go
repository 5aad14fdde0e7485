package queue

import (
	"context"
	"hash/fnv"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/returnloop/pickup-system/internal/api/metrics"
	"github.com/returnloop/pickup-system/internal/core/domain"
	"github.com/returnloop/pickup-system/internal/core/ports"
)

const (
	defaultWorkers = 4
	channelBuffer  = 128
)

// Recorder persists custody events off the request path. Events are routed
// to a fixed set of workers by consistent hashing on the pickup id, so the
// trail of a single pickup is always written in order.
//
// The status transition that produced an event is the authoritative write;
// a failed append here is logged and dropped, never propagated back.
type Recorder struct {
	workers []chan *domain.CustodyEvent
	repo    ports.CustodyRepository
	log     zerolog.Logger
}

// NewRecorder creates a Recorder with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewRecorder(numWorkers int, repo ports.CustodyRepository, log zerolog.Logger) *Recorder {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	r := &Recorder{
		workers: make([]chan *domain.CustodyEvent, numWorkers),
		repo:    repo,
		log:     log,
	}
	for i := range r.workers {
		r.workers[i] = make(chan *domain.CustodyEvent, channelBuffer)
	}
	return r
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (r *Recorder) Start(ctx context.Context) {
	for i, ch := range r.workers {
		go r.runWorker(ctx, i, ch)
	}
}

// Record hands an event to the worker responsible for its pickup. When the
// worker's buffer is full the event is dropped with a warning: event loss
// is acceptable, a blocked transition is not.
func (r *Recorder) Record(event *domain.CustodyEvent) {
	idx := r.shardIndex(event.PickupID)
	select {
	case r.workers[idx] <- event:
		metrics.CustodyQueueDepth.WithLabelValues(strconv.Itoa(idx)).Set(float64(len(r.workers[idx])))
	default:
		metrics.CustodyEventsDroppedTotal.Inc()
		r.log.Warn().
			Str("pickup_id", event.PickupID).
			Str("event_type", string(event.EventType)).
			Msg("custody recorder full, event dropped")
	}
}

// shardIndex maps a pickup id deterministically to a worker index.
func (r *Recorder) shardIndex(pickupID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(pickupID))
	return int(h.Sum32()) % len(r.workers)
}

func (r *Recorder) runWorker(ctx context.Context, id int, ch <-chan *domain.CustodyEvent) {
	label := strconv.Itoa(id)
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-ch:
			if !ok {
				return
			}
			metrics.CustodyQueueDepth.WithLabelValues(label).Set(float64(len(ch)))
			if err := r.repo.Append(ctx, event); err != nil {
				r.log.Warn().Err(err).
					Str("pickup_id", event.PickupID).
					Str("event_type", string(event.EventType)).
					Int("worker_id", id).
					Msg("failed to append custody event")
				continue
			}
			metrics.CustodyEventsTotal.WithLabelValues(string(event.EventType)).Inc()
		}
	}
}

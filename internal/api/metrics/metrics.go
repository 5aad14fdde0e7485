// Package metrics defines all custom Prometheus metrics for the
// returns-pickup API. It is the single source of truth for metric names,
// labels, and help strings. Everything registers with the default registry
// at init via promauto; the router exposes it on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "pickup"

// ── Lifecycle metrics ─────────────────────────────────────────────────────────

// PickupsCreatedTotal counts newly scheduled pickups.
// Label:
//   - drop_carrier: "ups", "fedex", "usps", or "best_option"
var PickupsCreatedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "pickups_created_total",
		Help:      "Total number of pickups scheduled, by drop carrier.",
	},
	[]string{"drop_carrier"},
)

// TransitionsTotal counts applied status transitions.
// Label:
//   - to_status: the status the pickup moved into (e.g. "picked_up")
var TransitionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "transitions_total",
		Help:      "Total number of successful status transitions, by target status.",
	},
	[]string{"to_status"},
)

// ClaimConflictsTotal counts claim attempts that lost the race.
var ClaimConflictsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "claim_conflicts_total",
		Help:      "Total number of claim attempts rejected because the pickup was already claimed.",
	},
)

// CancellationsTotal counts cancellation attempts.
// Label:
//   - result: "cancelled" or "window_closed"
var CancellationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cancellations_total",
		Help:      "Total number of cancellation attempts, by result.",
	},
	[]string{"result"},
)

// ── Custody trail metrics ─────────────────────────────────────────────────────

// CustodyEventsTotal counts custody events successfully appended.
// Label:
//   - event_type: "pickup_photo", "pickup_scan", "drop_photo", "drop_receipt"
var CustodyEventsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "custody_events_total",
		Help:      "Total number of custody events appended, by event type.",
	},
	[]string{"event_type"},
)

// CustodyEventsDroppedTotal counts events lost because the recorder was full.
var CustodyEventsDroppedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "custody_events_dropped_total",
		Help:      "Total number of custody events dropped due to a full recorder buffer.",
	},
)

// CustodyQueueDepth tracks the events waiting in each recorder worker channel.
// Label:
//   - worker_id: numeric worker index (e.g. "0", "1", …)
var CustodyQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "custody_queue_depth",
		Help:      "Current number of custody events pending in each recorder worker channel.",
	},
	[]string{"worker_id"},
)

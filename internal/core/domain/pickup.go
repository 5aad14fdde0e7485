package domain

import (
	"errors"
	"time"
)

// PickupStatus represents the lifecycle state of a pickup.
type PickupStatus string

const (
	StatusScheduled PickupStatus = "scheduled"
	StatusAssigned  PickupStatus = "assigned"
	StatusPickedUp  PickupStatus = "picked_up"
	StatusDropped   PickupStatus = "dropped"
	StatusCompleted PickupStatus = "completed"
	StatusCancelled PickupStatus = "cancelled"
)

// validTransitions defines the allowed state machine transitions.
// scheduled -> assigned happens only through the conditional claim;
// cancelled is reachable only from scheduled.
var validTransitions = map[PickupStatus][]PickupStatus{
	StatusScheduled: {StatusAssigned, StatusCancelled},
	StatusAssigned:  {StatusPickedUp},
	StatusPickedUp:  {StatusDropped},
	StatusDropped:   {StatusCompleted},
}

// statusLabels maps storage values to presentation text. Display concerns
// never leak into the stored enum.
var statusLabels = map[PickupStatus]string{
	StatusScheduled: "Scheduled",
	StatusAssigned:  "Driver on the way",
	StatusPickedUp:  "Picked up",
	StatusDropped:   "Dropped at carrier",
	StatusCompleted: "Completed",
	StatusCancelled: "Cancelled",
}

var ErrPickupNotFound = errors.New("pickup not found")
var ErrInvalidTransition = errors.New("invalid status transition")
var ErrAlreadyClaimed = errors.New("pickup already claimed")
var ErrCancellationWindowClosed = errors.New("cancellation window closed")
var ErrForbidden = errors.New("access forbidden")
var ErrValidation = errors.New("invalid pickup input")

// CancellationCutoff is how long before windowStart a customer may still cancel.
const CancellationCutoff = 2 * time.Hour

// CanTransitionTo reports whether a transition from current status to next is valid.
func (s PickupStatus) CanTransitionTo(next PickupStatus) bool {
	for _, allowed := range validTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// IsValid reports whether s is one of the six enumerated statuses.
func (s PickupStatus) IsValid() bool {
	_, ok := statusLabels[s]
	return ok
}

// IsTerminal reports whether no further transitions are possible.
func (s PickupStatus) IsTerminal() bool {
	return len(validTransitions[s]) == 0
}

// IsActive reports whether the pickup still needs customer attention.
// Active and past partition the enum exactly.
func (s PickupStatus) IsActive() bool {
	switch s {
	case StatusScheduled, StatusAssigned, StatusPickedUp, StatusDropped:
		return true
	}
	return false
}

// Label returns the human-readable presentation text for s.
func (s PickupStatus) Label() string {
	if l, ok := statusLabels[s]; ok {
		return l
	}
	return string(s)
}

// DropCarrier is the shipping provider the package is handed to.
type DropCarrier string

const (
	CarrierUPS        DropCarrier = "ups"
	CarrierFedEx      DropCarrier = "fedex"
	CarrierUSPS       DropCarrier = "usps"
	CarrierBestOption DropCarrier = "best_option"
)

// IsValid reports whether c is a known carrier.
func (c DropCarrier) IsValid() bool {
	switch c {
	case CarrierUPS, CarrierFedEx, CarrierUSPS, CarrierBestOption:
		return true
	}
	return false
}

// ReturnArtifactType discriminates the shipping label the customer supplied.
type ReturnArtifactType string

const (
	ArtifactFile   ReturnArtifactType = "file"
	ArtifactQRCode ReturnArtifactType = "qr_code"
)

// ReturnArtifact is the label or QR/return code required to generate the
// outbound shipment. Exactly one of URL or Text is set.
type ReturnArtifact struct {
	Type ReturnArtifactType `json:"type" bson:"type"`
	URL  string             `json:"url,omitempty" bson:"url,omitempty"`
	Text string             `json:"text,omitempty" bson:"text,omitempty"`
}

// Pickup is the core aggregate root.
type Pickup struct {
	ID                string         `json:"id" bson:"_id"`
	CustomerID        string         `json:"customer_id" bson:"customer_id"`
	DriverID          string         `json:"driver_id,omitempty" bson:"driver_id,omitempty"`
	Status            PickupStatus   `json:"status" bson:"status"`
	PickupAddress     string         `json:"pickup_address" bson:"pickup_address"`
	DropCarrier       DropCarrier    `json:"drop_carrier" bson:"drop_carrier"`
	DropLocationLabel string         `json:"drop_location_label,omitempty" bson:"drop_location_label,omitempty"`
	ReturnArtifact    ReturnArtifact `json:"return_artifact" bson:"return_artifact"`
	NeedsBox          bool           `json:"needs_box" bson:"needs_box"`
	NeedsLabelPrint   bool           `json:"needs_label_print" bson:"needs_label_print"`
	WindowStart       time.Time      `json:"window_start" bson:"window_start"`
	WindowEnd         time.Time      `json:"window_end" bson:"window_end"`
	ReturnDeadline    time.Time      `json:"return_deadline" bson:"return_deadline"`
	EstimatedFeeCents int64          `json:"estimated_fee_cents" bson:"estimated_fee_cents"`
	FinalFeeCents     *int64         `json:"final_fee_cents,omitempty" bson:"final_fee_cents,omitempty"`
	NotesForDriver    string         `json:"notes_for_driver,omitempty" bson:"notes_for_driver,omitempty"`
	IdempotencyKey    string         `json:"idempotency_key,omitempty" bson:"idempotency_key,omitempty"`
	CreatedAt         time.Time      `json:"created_at" bson:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at" bson:"updated_at"`
}

// CancellableAt reports whether the owning customer may still cancel at now.
// The guard is strict: at exactly windowStart - 2h the window has closed.
func (p *Pickup) CancellableAt(now time.Time) bool {
	return now.Before(p.WindowStart.Add(-CancellationCutoff))
}

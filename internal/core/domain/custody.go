package domain

import "time"

// CustodyEventType classifies a custody handoff checkpoint.
type CustodyEventType string

const (
	CustodyPickupPhoto CustodyEventType = "pickup_photo"
	CustodyPickupScan  CustodyEventType = "pickup_scan"
	CustodyDropPhoto   CustodyEventType = "drop_photo"
	CustodyDropReceipt CustodyEventType = "drop_receipt"
)

// IsValid reports whether t is a known custody event type.
func (t CustodyEventType) IsValid() bool {
	switch t {
	case CustodyPickupPhoto, CustodyPickupScan, CustodyDropPhoto, CustodyDropReceipt:
		return true
	}
	return false
}

// CustodyEvent is an append-only audit record of a physical handoff.
// Events are never mutated or deleted once written.
type CustodyEvent struct {
	ID        string            `json:"id" bson:"_id"`
	PickupID  string            `json:"pickup_id" bson:"pickup_id"`
	EventType CustodyEventType  `json:"event_type" bson:"event_type"`
	ImageURL  string            `json:"image_url,omitempty" bson:"image_url,omitempty"`
	Metadata  map[string]string `json:"metadata,omitempty" bson:"metadata,omitempty"`
	CreatedAt time.Time         `json:"created_at" bson:"created_at"`
}

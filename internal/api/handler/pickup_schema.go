package handler

import "time"

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

// --- Request types ---

type createPickupRequest struct {
	PickupAddress     string    `json:"pickup_address"      validate:"required,max=255"`
	DropCarrier       string    `json:"drop_carrier"        validate:"required,oneof=ups fedex usps best_option"`
	DropLocationLabel string    `json:"drop_location_label" validate:"max=120"`
	ArtifactType      string    `json:"return_artifact_type" validate:"required,oneof=file qr_code"`
	ArtifactURL       string    `json:"return_artifact_url"`
	ArtifactText      string    `json:"return_artifact_text" validate:"max=500"`
	NeedsBox          bool      `json:"needs_box"`
	NeedsLabelPrint   bool      `json:"needs_label_print"`
	WindowStart       time.Time `json:"window_start"        validate:"required"`
	WindowEnd         time.Time `json:"window_end"          validate:"required"`
	ReturnDeadline    time.Time `json:"return_deadline"     validate:"required"`
	NotesForDriver    string    `json:"notes_for_driver"    validate:"max=500"`
}

type advanceRequest struct {
	TargetStatus string `json:"target_status" validate:"required,oneof=picked_up dropped completed"`
	PhotoURL     string `json:"photo_url"`
	ScanCode     string `json:"scan_code"  validate:"max=500"`
	ReceiptID    string `json:"receipt_id" validate:"max=120"`
}

type estimateRequest struct {
	NeedsBox        bool `json:"needs_box"`
	NeedsLabelPrint bool `json:"needs_label_print"`
}

// --- Response types ---
// Owned by the transport layer, intentionally separate from ports/domain
// types so the JSON contract is not coupled to internal service changes.

type returnArtifactResponse struct {
	Type string `json:"type"`
	URL  string `json:"url,omitempty"`
	Text string `json:"text,omitempty"`
}

type pickupResponse struct {
	ID                string                 `json:"id"`
	CustomerID        string                 `json:"customer_id"`
	DriverID          string                 `json:"driver_id,omitempty"`
	Status            string                 `json:"status"`
	StatusLabel       string                 `json:"status_label"`
	PickupAddress     string                 `json:"pickup_address"`
	DropCarrier       string                 `json:"drop_carrier"`
	DropLocationLabel string                 `json:"drop_location_label,omitempty"`
	ReturnArtifact    returnArtifactResponse `json:"return_artifact"`
	NeedsBox          bool                   `json:"needs_box"`
	NeedsLabelPrint   bool                   `json:"needs_label_print"`
	WindowStart       time.Time              `json:"window_start"`
	WindowEnd         time.Time              `json:"window_end"`
	ReturnDeadline    time.Time              `json:"return_deadline"`
	EstimatedFeeCents int64                  `json:"estimated_fee_cents"`
	FinalFeeCents     *int64                 `json:"final_fee_cents,omitempty"`
	NotesForDriver    string                 `json:"notes_for_driver,omitempty"`
	CreatedAt         time.Time              `json:"created_at"`
	UpdatedAt         time.Time              `json:"updated_at"`
}

type custodyEventResponse struct {
	ID        string            `json:"id"`
	PickupID  string            `json:"pickup_id"`
	EventType string            `json:"event_type"`
	ImageURL  string            `json:"image_url,omitempty"`
	Metadata  map[string]string `json:"metadata,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
}

type pickupDetailResponse struct {
	pickupResponse
	Custody []custodyEventResponse `json:"custody_events"`
}

type customerViewResponse struct {
	Active []pickupResponse `json:"active"`
	Past   []pickupResponse `json:"past"`
}

type driverViewResponse struct {
	Mine      []pickupResponse `json:"mine"`
	Available []pickupResponse `json:"available"`
}

type adminViewResponse struct {
	Data  []pickupResponse `json:"data"`
	Total int              `json:"total"`
}

type estimateResponse struct {
	TotalCents int64 `json:"total_cents"`
	Breakdown  struct {
		BaseCents       int64 `json:"base_cents"`
		BoxCents        int64 `json:"box_cents"`
		LabelPrintCents int64 `json:"label_print_cents"`
	} `json:"breakdown"`
}

package handler

import (
	"github.com/returnloop/pickup-system/internal/core/domain"
	"github.com/returnloop/pickup-system/internal/core/ports"
)

// --- Request → Service input ---

func toCreateInput(req createPickupRequest, idempotencyKey string) ports.CreatePickupInput {
	return ports.CreatePickupInput{
		PickupAddress:     req.PickupAddress,
		DropCarrier:       req.DropCarrier,
		DropLocationLabel: req.DropLocationLabel,
		ArtifactType:      req.ArtifactType,
		ArtifactURL:       req.ArtifactURL,
		ArtifactText:      req.ArtifactText,
		NeedsBox:          req.NeedsBox,
		NeedsLabelPrint:   req.NeedsLabelPrint,
		WindowStart:       req.WindowStart,
		WindowEnd:         req.WindowEnd,
		ReturnDeadline:    req.ReturnDeadline,
		NotesForDriver:    req.NotesForDriver,
		IdempotencyKey:    idempotencyKey,
	}
}

func toAdvanceInput(req advanceRequest) ports.AdvanceInput {
	return ports.AdvanceInput{
		TargetStatus: req.TargetStatus,
		PhotoURL:     req.PhotoURL,
		ScanCode:     req.ScanCode,
		ReceiptID:    req.ReceiptID,
	}
}

// --- Service result → HTTP response ---

func toPickupResponse(p *domain.Pickup) pickupResponse {
	return pickupResponse{
		ID:                p.ID,
		CustomerID:        p.CustomerID,
		DriverID:          p.DriverID,
		Status:            string(p.Status),
		StatusLabel:       p.Status.Label(),
		PickupAddress:     p.PickupAddress,
		DropCarrier:       string(p.DropCarrier),
		DropLocationLabel: p.DropLocationLabel,
		ReturnArtifact: returnArtifactResponse{
			Type: string(p.ReturnArtifact.Type),
			URL:  p.ReturnArtifact.URL,
			Text: p.ReturnArtifact.Text,
		},
		NeedsBox:          p.NeedsBox,
		NeedsLabelPrint:   p.NeedsLabelPrint,
		WindowStart:       p.WindowStart.UTC(),
		WindowEnd:         p.WindowEnd.UTC(),
		ReturnDeadline:    p.ReturnDeadline.UTC(),
		EstimatedFeeCents: p.EstimatedFeeCents,
		FinalFeeCents:     p.FinalFeeCents,
		NotesForDriver:    p.NotesForDriver,
		CreatedAt:         p.CreatedAt.UTC(),
		UpdatedAt:         p.UpdatedAt.UTC(),
	}
}

func toPickupResponses(pickups []*domain.Pickup) []pickupResponse {
	out := make([]pickupResponse, len(pickups))
	for i, p := range pickups {
		out[i] = toPickupResponse(p)
	}
	return out
}

func toCustodyResponse(e *domain.CustodyEvent) custodyEventResponse {
	return custodyEventResponse{
		ID:        e.ID,
		PickupID:  e.PickupID,
		EventType: string(e.EventType),
		ImageURL:  e.ImageURL,
		Metadata:  e.Metadata,
		CreatedAt: e.CreatedAt.UTC(),
	}
}

func toCustodyResponses(events []*domain.CustodyEvent) []custodyEventResponse {
	out := make([]custodyEventResponse, len(events))
	for i, e := range events {
		out[i] = toCustodyResponse(e)
	}
	return out
}

func toDetailResponse(d *ports.PickupDetail) pickupDetailResponse {
	return pickupDetailResponse{
		pickupResponse: toPickupResponse(d.Pickup),
		Custody:        toCustodyResponses(d.Custody),
	}
}

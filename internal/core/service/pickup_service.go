package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/returnloop/pickup-system/internal/core/domain"
	"github.com/returnloop/pickup-system/internal/core/ports"
)

const (
	maxAddressLen  = 255
	maxNotesLen    = 500
	maxArtifactLen = 500
)

// markupPattern matches HTML-like tag sequences. Free-text fields are
// stripped server-side regardless of any client validation.
var markupPattern = regexp.MustCompile(`<[^>]*>`)

// CustodyRecorder accepts custody events for asynchronous persistence.
// The status write stays authoritative: a lost event is logged, never
// rolled back into the transition.
type CustodyRecorder interface {
	Record(event *domain.CustodyEvent)
}

// TransitionDedup absorbs duplicate advance submissions, e.g. retries from
// a driver app on a flaky connection.
type TransitionDedup interface {
	IsDuplicate(ctx context.Context, pickupID, status string) (bool, error)
	Mark(ctx context.Context, pickupID, status string) error
}

// PickupService is the lifecycle engine. It gates every status-changing
// write behind the transition table and the actor rules, and produces the
// role-scoped query views.
type PickupService struct {
	repo     ports.PickupRepository
	custody  ports.CustodyRepository
	recorder CustodyRecorder
	dedup    TransitionDedup
	logger   zerolog.Logger
}

func NewPickupService(
	repo ports.PickupRepository,
	custody ports.CustodyRepository,
	recorder CustodyRecorder,
	dedup TransitionDedup,
	logger zerolog.Logger,
) *PickupService {
	return &PickupService{
		repo:     repo,
		custody:  custody,
		recorder: recorder,
		dedup:    dedup,
		logger:   logger,
	}
}

// CreatePickup validates input, computes the fee estimate, and persists a
// new pickup in scheduled status. A repeated Idempotency-Key replays the
// original pickup without side effects.
func (s *PickupService) CreatePickup(ctx context.Context, actor ports.Actor, input ports.CreatePickupInput) (*domain.Pickup, error) {
	if !domain.CanPerform(actor.Role, actor.ID, domain.OpCreate, nil) {
		return nil, domain.ErrForbidden
	}

	if input.IdempotencyKey != "" {
		existing, err := s.repo.FindByIdempotencyKey(ctx, input.IdempotencyKey)
		if err == nil && existing != nil && existing.CustomerID == actor.ID {
			s.logger.Info().Str("idempotency_key", input.IdempotencyKey).Str("pickup_id", existing.ID).Msg("idempotent replay")
			return existing, nil
		}
	}

	now := time.Now().UTC()
	pickup, err := buildPickup(actor.ID, input, now)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, pickup); err != nil {
		s.logger.Error().Err(err).Msg("failed to create pickup")
		return nil, err
	}

	s.logger.Info().
		Str("pickup_id", pickup.ID).
		Str("customer_id", actor.ID).
		Int64("estimated_fee_cents", pickup.EstimatedFeeCents).
		Msg("pickup scheduled")

	return pickup, nil
}

// buildPickup validates creation input and assembles the record. All
// validation failures wrap domain.ErrValidation and nothing is persisted.
func buildPickup(customerID string, input ports.CreatePickupInput, now time.Time) (*domain.Pickup, error) {
	address := strings.TrimSpace(input.PickupAddress)
	if address == "" {
		return nil, fmt.Errorf("%w: pickup address is required", domain.ErrValidation)
	}
	if len(address) > maxAddressLen {
		return nil, fmt.Errorf("%w: pickup address exceeds %d characters", domain.ErrValidation, maxAddressLen)
	}

	carrier := domain.DropCarrier(input.DropCarrier)
	if !carrier.IsValid() {
		return nil, fmt.Errorf("%w: unknown drop carrier %q", domain.ErrValidation, input.DropCarrier)
	}

	artifact, err := buildArtifact(input)
	if err != nil {
		return nil, err
	}

	if input.WindowStart.IsZero() || input.WindowEnd.IsZero() {
		return nil, fmt.Errorf("%w: pickup window is required", domain.ErrValidation)
	}
	if !input.WindowStart.Before(input.WindowEnd) {
		return nil, fmt.Errorf("%w: window start must precede window end", domain.ErrValidation)
	}
	if !input.ReturnDeadline.After(now) {
		return nil, fmt.Errorf("%w: return deadline must be in the future", domain.ErrValidation)
	}

	notes := sanitizeText(input.NotesForDriver)
	if len(notes) > maxNotesLen {
		return nil, fmt.Errorf("%w: notes exceed %d characters", domain.ErrValidation, maxNotesLen)
	}

	fee, _ := domain.EstimateFee(input.NeedsBox, input.NeedsLabelPrint)

	return &domain.Pickup{
		ID:                generatePickupID(),
		CustomerID:        customerID,
		Status:            domain.StatusScheduled,
		PickupAddress:     address,
		DropCarrier:       carrier,
		DropLocationLabel: strings.TrimSpace(input.DropLocationLabel),
		ReturnArtifact:    artifact,
		NeedsBox:          input.NeedsBox,
		NeedsLabelPrint:   input.NeedsLabelPrint,
		WindowStart:       input.WindowStart.UTC(),
		WindowEnd:         input.WindowEnd.UTC(),
		ReturnDeadline:    input.ReturnDeadline.UTC(),
		EstimatedFeeCents: fee,
		NotesForDriver:    notes,
		IdempotencyKey:    input.IdempotencyKey,
		CreatedAt:         now,
		UpdatedAt:         now,
	}, nil
}

// buildArtifact enforces the exactly-one-of rule for the return artifact.
func buildArtifact(input ports.CreatePickupInput) (domain.ReturnArtifact, error) {
	artifactType := domain.ReturnArtifactType(input.ArtifactType)
	url := strings.TrimSpace(input.ArtifactURL)
	text := sanitizeText(input.ArtifactText)

	switch artifactType {
	case domain.ArtifactFile:
		if url == "" || text != "" {
			return domain.ReturnArtifact{}, fmt.Errorf("%w: file artifact requires a url and no code", domain.ErrValidation)
		}
		return domain.ReturnArtifact{Type: artifactType, URL: url}, nil
	case domain.ArtifactQRCode:
		if text == "" || url != "" {
			return domain.ReturnArtifact{}, fmt.Errorf("%w: qr artifact requires a code and no url", domain.ErrValidation)
		}
		if len(text) > maxArtifactLen {
			return domain.ReturnArtifact{}, fmt.Errorf("%w: artifact code exceeds %d characters", domain.ErrValidation, maxArtifactLen)
		}
		return domain.ReturnArtifact{Type: artifactType, Text: text}, nil
	default:
		return domain.ReturnArtifact{}, fmt.Errorf("%w: unknown artifact type %q", domain.ErrValidation, input.ArtifactType)
	}
}

// ClaimPickup assigns the pickup to the calling driver. The repository write
// is conditional, so under concurrent claims exactly one driver wins and the
// rest receive domain.ErrAlreadyClaimed.
func (s *PickupService) ClaimPickup(ctx context.Context, actor ports.Actor, id string) (*domain.Pickup, error) {
	if !domain.CanPerform(actor.Role, actor.ID, domain.OpClaim, nil) {
		return nil, domain.ErrForbidden
	}

	pickup, err := s.repo.Claim(ctx, id, actor.ID, time.Now().UTC())
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("pickup_id", id).Str("driver_id", actor.ID).Msg("pickup claimed")
	return pickup, nil
}

// AdvanceStatus moves a pickup along assigned -> picked_up -> dropped ->
// completed. Only the assigned driver may progress it; completion finalises
// the fee; custody evidence is recorded asynchronously.
func (s *PickupService) AdvanceStatus(ctx context.Context, actor ports.Actor, id string, input ports.AdvanceInput) (*domain.Pickup, error) {
	target := domain.PickupStatus(input.TargetStatus)
	if !target.IsValid() {
		return nil, fmt.Errorf("%w: unknown status %q", domain.ErrValidation, input.TargetStatus)
	}

	pickup, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !domain.CanPerform(actor.Role, actor.ID, domain.OpAdvance, pickup) {
		return nil, domain.ErrForbidden
	}

	// A retried submission that already landed is answered with the current
	// record instead of an invalid-transition error.
	if pickup.Status == target {
		if dup, dedupErr := s.dedup.IsDuplicate(ctx, id, string(target)); dedupErr != nil {
			s.logger.Warn().Err(dedupErr).Str("pickup_id", id).Msg("dedup check failed")
		} else if dup {
			s.logger.Debug().Str("pickup_id", id).Str("status", string(target)).Msg("duplicate advance absorbed")
			return pickup, nil
		}
	}

	if !pickup.Status.CanTransitionTo(target) {
		return nil, fmt.Errorf("%w (from %s to %s)", domain.ErrInvalidTransition, pickup.Status, target)
	}

	var finalFee *int64
	if target == domain.StatusCompleted {
		fee := pickup.EstimatedFeeCents
		finalFee = &fee
	}

	updated, err := s.repo.UpdateStatus(ctx, id, pickup.Status, target, finalFee, time.Now().UTC())
	if err != nil {
		return nil, err
	}

	if markErr := s.dedup.Mark(ctx, id, string(target)); markErr != nil {
		s.logger.Warn().Err(markErr).Str("pickup_id", id).Msg("failed to set dedup key")
	}

	if event := custodyEventFor(updated, target, input); event != nil {
		s.recorder.Record(event)
	}

	s.logger.Info().
		Str("pickup_id", id).
		Str("driver_id", actor.ID).
		Str("status", string(target)).
		Msg("pickup advanced")

	return updated, nil
}

// custodyEventFor maps the evidence attached to an advance call onto a
// custody event, or nil when none was supplied for this transition.
func custodyEventFor(pickup *domain.Pickup, target domain.PickupStatus, input ports.AdvanceInput) *domain.CustodyEvent {
	event := &domain.CustodyEvent{
		PickupID:  pickup.ID,
		CreatedAt: time.Now().UTC(),
	}

	switch target {
	case domain.StatusPickedUp:
		if input.PhotoURL != "" {
			event.EventType = domain.CustodyPickupPhoto
			event.ImageURL = input.PhotoURL
			return event
		}
		if input.ScanCode != "" {
			event.EventType = domain.CustodyPickupScan
			event.Metadata = map[string]string{"code": sanitizeText(input.ScanCode)}
			return event
		}
	case domain.StatusDropped:
		if input.PhotoURL != "" {
			event.EventType = domain.CustodyDropPhoto
			event.ImageURL = input.PhotoURL
			return event
		}
		if input.ReceiptID != "" {
			event.EventType = domain.CustodyDropReceipt
			event.Metadata = map[string]string{"receipt_id": sanitizeText(input.ReceiptID)}
			return event
		}
	}
	return nil
}

// CancelPickup cancels a scheduled pickup for its owning customer, provided
// the pickup window is still more than two hours away.
func (s *PickupService) CancelPickup(ctx context.Context, actor ports.Actor, id string) (*domain.Pickup, error) {
	pickup, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !domain.CanPerform(actor.Role, actor.ID, domain.OpCancel, pickup) {
		return nil, domain.ErrForbidden
	}
	if pickup.Status != domain.StatusScheduled {
		return nil, fmt.Errorf("%w (from %s to %s)", domain.ErrInvalidTransition, pickup.Status, domain.StatusCancelled)
	}
	if !pickup.CancellableAt(time.Now().UTC()) {
		return nil, domain.ErrCancellationWindowClosed
	}

	updated, err := s.repo.UpdateStatus(ctx, id, domain.StatusScheduled, domain.StatusCancelled, nil, time.Now().UTC())
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("pickup_id", id).Str("customer_id", actor.ID).Msg("pickup cancelled")
	return updated, nil
}

// GetPickup returns the full detail view of a single pickup, custody trail
// included, for any actor allowed to see it.
func (s *PickupService) GetPickup(ctx context.Context, actor ports.Actor, id string) (*ports.PickupDetail, error) {
	pickup, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !domain.CanPerform(actor.Role, actor.ID, domain.OpView, pickup) {
		return nil, domain.ErrForbidden
	}

	events, err := s.custody.ListByPickup(ctx, id)
	if err != nil {
		s.logger.Warn().Err(err).Str("pickup_id", id).Msg("failed to load custody trail")
		events = nil
	}

	return &ports.PickupDetail{
		Pickup:      pickup,
		StatusLabel: pickup.Status.Label(),
		Custody:     events,
	}, nil
}

// CustodyTrail returns a pickup's custody events for an authorized actor.
func (s *PickupService) CustodyTrail(ctx context.Context, actor ports.Actor, pickupID string) ([]*domain.CustodyEvent, error) {
	pickup, err := s.repo.FindByID(ctx, pickupID)
	if err != nil {
		return nil, err
	}
	if !domain.CanPerform(actor.Role, actor.ID, domain.OpView, pickup) {
		return nil, domain.ErrForbidden
	}
	return s.custody.ListByPickup(ctx, pickupID)
}

func sanitizeText(text string) string {
	return strings.TrimSpace(markupPattern.ReplaceAllString(text, ""))
}

// generatePickupID returns a carrier-style code in the format RTN-XXXXXXXX.
func generatePickupID() string {
	b := make([]byte, 4)
	if _, err := rand.Read(b); err != nil {
		// fallback: use current nanoseconds
		return fmt.Sprintf("RTN-%08X", time.Now().UnixNano()&0xFFFFFFFF)
	}
	return fmt.Sprintf("RTN-%08X", b)
}

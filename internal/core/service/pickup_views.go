package service

import (
	"context"
	"fmt"

	"github.com/returnloop/pickup-system/internal/core/domain"
	"github.com/returnloop/pickup-system/internal/core/ports"
)

// GetCustomerView returns the caller's pickups split into active and past.
// The split is exhaustive and exclusive over the status enum.
func (s *PickupService) GetCustomerView(ctx context.Context, actor ports.Actor) (*ports.CustomerView, error) {
	if actor.Role != domain.RoleCustomer && actor.Role != domain.RoleAdmin {
		return nil, domain.ErrForbidden
	}

	pickups, err := s.repo.ListByCustomer(ctx, actor.ID)
	if err != nil {
		return nil, err
	}

	view := &ports.CustomerView{
		Active: make([]*domain.Pickup, 0, len(pickups)),
		Past:   make([]*domain.Pickup, 0),
	}
	for _, p := range pickups {
		if p.Status.IsActive() {
			view.Active = append(view.Active, p)
		} else {
			view.Past = append(view.Past, p)
		}
	}
	return view, nil
}

// GetDriverView returns the caller's still-actionable pickups plus the
// unclaimed pool, both ordered soonest window first.
func (s *PickupService) GetDriverView(ctx context.Context, actor ports.Actor) (*ports.DriverView, error) {
	if actor.Role != domain.RoleDriver && actor.Role != domain.RoleAdmin {
		return nil, domain.ErrForbidden
	}

	mine, err := s.repo.ListByDriver(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	available, err := s.repo.ListAvailable(ctx)
	if err != nil {
		return nil, err
	}

	return &ports.DriverView{Mine: mine, Available: available}, nil
}

// GetAdminView returns every pickup in the system, newest first, optionally
// filtered to a single status.
func (s *PickupService) GetAdminView(ctx context.Context, actor ports.Actor, statusFilter string) ([]*domain.Pickup, error) {
	if actor.Role != domain.RoleAdmin {
		return nil, domain.ErrForbidden
	}

	status := domain.PickupStatus(statusFilter)
	if statusFilter != "" && !status.IsValid() {
		return nil, fmt.Errorf("%w: unknown status %q", domain.ErrValidation, statusFilter)
	}

	return s.repo.ListAll(ctx, status)
}

package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/returnloop/pickup-system/internal/api/metrics"
	"github.com/returnloop/pickup-system/internal/core/domain"
	"github.com/returnloop/pickup-system/internal/core/ports"
)

// PickupHandler handles HTTP requests for pickup lifecycle operations.
type PickupHandler struct {
	service ports.PickupService
}

func NewPickupHandler(service ports.PickupService) *PickupHandler {
	return &PickupHandler{service: service}
}

// Create handles POST /v1/pickups.
//
// @Summary      Schedule a new pickup
// @Tags         pickups
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        Idempotency-Key  header    string               false  "Idempotency key to prevent duplicate submissions"
// @Param        body             body      createPickupRequest  true   "Pickup details"
// @Success      201              {object}  pickupResponse
// @Failure      400              {object}  errorResponse
// @Failure      401              {object}  errorResponse
// @Failure      403              {object}  errorResponse
// @Router       /v1/pickups [post]
func (h *PickupHandler) Create(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}

	var req createPickupRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	idempotencyKey := c.Request().Header.Get("Idempotency-Key")
	pickup, err := h.service.CreatePickup(c.Request().Context(), actor, toCreateInput(req, idempotencyKey))
	if err != nil {
		return err
	}

	metrics.PickupsCreatedTotal.WithLabelValues(string(pickup.DropCarrier)).Inc()
	return c.JSON(http.StatusCreated, toPickupResponse(pickup))
}

// Get handles GET /v1/pickups/:id.
//
// @Summary      Get a pickup with its custody trail
// @Tags         pickups
// @Produce      json
// @Security     BearerAuth
// @Param        id  path      string  true  "Pickup id (e.g. RTN-7A8B9C2D)"
// @Success      200  {object}  pickupDetailResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /v1/pickups/{id} [get]
func (h *PickupHandler) Get(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}

	detail, err := h.service.GetPickup(c.Request().Context(), actor, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toDetailResponse(detail))
}

// Claim handles POST /v1/pickups/:id/claim.
//
// @Summary      Claim an unassigned pickup
// @Tags         pickups
// @Produce      json
// @Security     BearerAuth
// @Param        id  path      string  true  "Pickup id"
// @Success      200  {object}  pickupResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Failure      409  {object}  errorResponse
// @Router       /v1/pickups/{id}/claim [post]
func (h *PickupHandler) Claim(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}

	pickup, err := h.service.ClaimPickup(c.Request().Context(), actor, c.Param("id"))
	if err != nil {
		if errors.Is(err, domain.ErrAlreadyClaimed) {
			metrics.ClaimConflictsTotal.Inc()
		}
		return err
	}

	metrics.TransitionsTotal.WithLabelValues(string(domain.StatusAssigned)).Inc()
	return c.JSON(http.StatusOK, toPickupResponse(pickup))
}

// Advance handles POST /v1/pickups/:id/advance.
//
// @Summary      Advance a pickup to the next status
// @Tags         pickups
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string          true  "Pickup id"
// @Param        body  body      advanceRequest  true  "Target status and optional custody evidence"
// @Success      200   {object}  pickupResponse
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /v1/pickups/{id}/advance [post]
func (h *PickupHandler) Advance(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}

	var req advanceRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	pickup, err := h.service.AdvanceStatus(c.Request().Context(), actor, c.Param("id"), toAdvanceInput(req))
	if err != nil {
		return err
	}

	metrics.TransitionsTotal.WithLabelValues(string(pickup.Status)).Inc()
	return c.JSON(http.StatusOK, toPickupResponse(pickup))
}

// Cancel handles POST /v1/pickups/:id/cancel.
//
// @Summary      Cancel a scheduled pickup
// @Tags         pickups
// @Produce      json
// @Security     BearerAuth
// @Param        id  path      string  true  "Pickup id"
// @Success      200  {object}  pickupResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Failure      409  {object}  errorResponse
// @Failure      422  {object}  errorResponse
// @Router       /v1/pickups/{id}/cancel [post]
func (h *PickupHandler) Cancel(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}

	pickup, err := h.service.CancelPickup(c.Request().Context(), actor, c.Param("id"))
	if err != nil {
		if errors.Is(err, domain.ErrCancellationWindowClosed) {
			metrics.CancellationsTotal.WithLabelValues("window_closed").Inc()
		}
		return err
	}

	metrics.CancellationsTotal.WithLabelValues("cancelled").Inc()
	return c.JSON(http.StatusOK, toPickupResponse(pickup))
}

// Custody handles GET /v1/pickups/:id/custody.
//
// @Summary      List a pickup's custody events
// @Tags         pickups
// @Produce      json
// @Security     BearerAuth
// @Param        id  path      string  true  "Pickup id"
// @Success      200  {array}   custodyEventResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /v1/pickups/{id}/custody [get]
func (h *PickupHandler) Custody(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}

	events, err := h.service.CustodyTrail(c.Request().Context(), actor, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toCustodyResponses(events))
}

// CustomerView handles GET /v1/pickups.
//
// @Summary      List the caller's pickups split into active and past
// @Tags         views
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  customerViewResponse
// @Failure      403  {object}  errorResponse
// @Router       /v1/pickups [get]
func (h *PickupHandler) CustomerView(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}

	view, err := h.service.GetCustomerView(c.Request().Context(), actor)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, customerViewResponse{
		Active: toPickupResponses(view.Active),
		Past:   toPickupResponses(view.Past),
	})
}

// DriverView handles GET /v1/driver/pickups.
//
// @Summary      List the caller's assigned pickups and the available pool
// @Tags         views
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  driverViewResponse
// @Failure      403  {object}  errorResponse
// @Router       /v1/driver/pickups [get]
func (h *PickupHandler) DriverView(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}

	view, err := h.service.GetDriverView(c.Request().Context(), actor)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, driverViewResponse{
		Mine:      toPickupResponses(view.Mine),
		Available: toPickupResponses(view.Available),
	})
}

// AdminView handles GET /v1/admin/pickups.
//
// @Summary      List all pickups, optionally filtered by status
// @Tags         views
// @Produce      json
// @Security     BearerAuth
// @Param        status  query     string  false  "Status filter (scheduled, assigned, picked_up, dropped, completed, cancelled)"
// @Success      200     {object}  adminViewResponse
// @Failure      400     {object}  errorResponse
// @Failure      403     {object}  errorResponse
// @Router       /v1/admin/pickups [get]
func (h *PickupHandler) AdminView(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}

	pickups, err := h.service.GetAdminView(c.Request().Context(), actor, c.QueryParam("status"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, adminViewResponse{
		Data:  toPickupResponses(pickups),
		Total: len(pickups),
	})
}

// Estimate handles POST /v1/estimate. The quote uses the same pure function
// as creation, so preview and stored estimate always agree to the cent.
//
// @Summary      Quote the fee for a pickup before scheduling it
// @Tags         pickups
// @Accept       json
// @Produce      json
// @Param        body  body      estimateRequest  true  "Service flags"
// @Success      200   {object}  estimateResponse
// @Failure      400   {object}  errorResponse
// @Router       /v1/estimate [post]
func (h *PickupHandler) Estimate(c echo.Context) error {
	var req estimateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	total, breakdown := domain.EstimateFee(req.NeedsBox, req.NeedsLabelPrint)
	resp := estimateResponse{TotalCents: total}
	resp.Breakdown.BaseCents = breakdown.BaseCents
	resp.Breakdown.BoxCents = breakdown.BoxCents
	resp.Breakdown.LabelPrintCents = breakdown.LabelPrintCents
	return c.JSON(http.StatusOK, resp)
}

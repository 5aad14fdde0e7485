package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/returnloop/pickup-system/internal/core/domain"
	"github.com/returnloop/pickup-system/internal/core/ports"
)

// stubPickupService lets each test pin the service outcome per operation.
type stubPickupService struct {
	createFn  func(ctx context.Context, actor ports.Actor, input ports.CreatePickupInput) (*domain.Pickup, error)
	getFn     func(ctx context.Context, actor ports.Actor, id string) (*ports.PickupDetail, error)
	claimFn   func(ctx context.Context, actor ports.Actor, id string) (*domain.Pickup, error)
	advanceFn func(ctx context.Context, actor ports.Actor, id string, input ports.AdvanceInput) (*domain.Pickup, error)
	cancelFn  func(ctx context.Context, actor ports.Actor, id string) (*domain.Pickup, error)
}

func (s *stubPickupService) CreatePickup(ctx context.Context, actor ports.Actor, input ports.CreatePickupInput) (*domain.Pickup, error) {
	return s.createFn(ctx, actor, input)
}

func (s *stubPickupService) GetPickup(ctx context.Context, actor ports.Actor, id string) (*ports.PickupDetail, error) {
	return s.getFn(ctx, actor, id)
}

func (s *stubPickupService) ClaimPickup(ctx context.Context, actor ports.Actor, id string) (*domain.Pickup, error) {
	return s.claimFn(ctx, actor, id)
}

func (s *stubPickupService) AdvanceStatus(ctx context.Context, actor ports.Actor, id string, input ports.AdvanceInput) (*domain.Pickup, error) {
	return s.advanceFn(ctx, actor, id, input)
}

func (s *stubPickupService) CancelPickup(ctx context.Context, actor ports.Actor, id string) (*domain.Pickup, error) {
	return s.cancelFn(ctx, actor, id)
}

func (s *stubPickupService) CustodyTrail(context.Context, ports.Actor, string) ([]*domain.CustodyEvent, error) {
	return nil, nil
}

func (s *stubPickupService) GetCustomerView(context.Context, ports.Actor) (*ports.CustomerView, error) {
	return &ports.CustomerView{}, nil
}

func (s *stubPickupService) GetDriverView(context.Context, ports.Actor) (*ports.DriverView, error) {
	return &ports.DriverView{}, nil
}

func (s *stubPickupService) GetAdminView(context.Context, ports.Actor, string) ([]*domain.Pickup, error) {
	return nil, nil
}

func newHandlerContext(t *testing.T, method, path, body string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	e.Validator = NewValidator()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("user_id", "usr_1")
	c.Set("role", domain.RoleCustomer)
	return c, rec
}

func samplePickup() *domain.Pickup {
	now := time.Now().UTC()
	return &domain.Pickup{
		ID:                "RTN-7A8B9C2D",
		CustomerID:        "usr_1",
		Status:            domain.StatusScheduled,
		PickupAddress:     "12 Elm Street",
		DropCarrier:       domain.CarrierUPS,
		ReturnArtifact:    domain.ReturnArtifact{Type: domain.ArtifactQRCode, Text: "CODE"},
		WindowStart:       now.Add(24 * time.Hour),
		WindowEnd:         now.Add(26 * time.Hour),
		ReturnDeadline:    now.Add(72 * time.Hour),
		EstimatedFeeCents: 299,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
}

const validCreateBody = `{
	"pickup_address": "12 Elm Street",
	"drop_carrier": "ups",
	"return_artifact_type": "qr_code",
	"return_artifact_text": "CODE",
	"window_start": "2026-09-10T10:00:00Z",
	"window_end": "2026-09-10T12:00:00Z",
	"return_deadline": "2026-09-15T00:00:00Z"
}`

func TestPickupHandler_Create(t *testing.T) {
	var gotKey string
	h := NewPickupHandler(&stubPickupService{
		createFn: func(_ context.Context, actor ports.Actor, input ports.CreatePickupInput) (*domain.Pickup, error) {
			if actor.ID != "usr_1" || actor.Role != domain.RoleCustomer {
				t.Errorf("actor not propagated: %+v", actor)
			}
			gotKey = input.IdempotencyKey
			return samplePickup(), nil
		},
	})

	c, rec := newHandlerContext(t, http.MethodPost, "/v1/pickups", validCreateBody)
	c.Request().Header.Set("Idempotency-Key", "key-1")

	if err := h.Create(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	if gotKey != "key-1" {
		t.Errorf("idempotency key not forwarded, got %q", gotKey)
	}

	var resp pickupResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if resp.ID != "RTN-7A8B9C2D" || resp.Status != "scheduled" || resp.StatusLabel != "Scheduled" {
		t.Errorf("unexpected response: %+v", resp)
	}
}

func TestPickupHandler_Create_SchemaRejects(t *testing.T) {
	h := NewPickupHandler(&stubPickupService{
		createFn: func(context.Context, ports.Actor, ports.CreatePickupInput) (*domain.Pickup, error) {
			t.Fatal("service must not be called on schema failure")
			return nil, nil
		},
	})

	bodies := map[string]string{
		"missing address": `{"drop_carrier":"ups","return_artifact_type":"qr_code","window_start":"2026-09-10T10:00:00Z","window_end":"2026-09-10T12:00:00Z","return_deadline":"2026-09-15T00:00:00Z"}`,
		"bad carrier":     strings.Replace(validCreateBody, `"ups"`, `"dhl"`, 1),
		"bad artifact":    strings.Replace(validCreateBody, `"qr_code"`, `"fax"`, 1),
	}

	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			c, _ := newHandlerContext(t, http.MethodPost, "/v1/pickups", body)
			err := h.Create(c)
			var he *echo.HTTPError
			if !errors.As(err, &he) || he.Code != http.StatusBadRequest {
				t.Fatalf("expected 400 HTTPError, got %v", err)
			}
		})
	}
}

func TestPickupHandler_Create_MissingClaims(t *testing.T) {
	h := NewPickupHandler(&stubPickupService{})

	e := echo.New()
	e.Validator = NewValidator()
	req := httptest.NewRequest(http.MethodPost, "/v1/pickups", strings.NewReader(validCreateBody))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	c := e.NewContext(req, httptest.NewRecorder())

	err := h.Create(c)
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 HTTPError, got %v", err)
	}
}

func TestPickupHandler_Claim_Conflict(t *testing.T) {
	h := NewPickupHandler(&stubPickupService{
		claimFn: func(context.Context, ports.Actor, string) (*domain.Pickup, error) {
			return nil, domain.ErrAlreadyClaimed
		},
	})

	c, _ := newHandlerContext(t, http.MethodPost, "/v1/pickups/RTN-1/claim", "")
	c.SetParamNames("id")
	c.SetParamValues("RTN-1")
	c.Set("role", domain.RoleDriver)

	if err := h.Claim(c); !errors.Is(err, domain.ErrAlreadyClaimed) {
		t.Fatalf("expected ErrAlreadyClaimed passthrough, got %v", err)
	}
}

func TestPickupHandler_Advance(t *testing.T) {
	pickedUp := samplePickup()
	pickedUp.Status = domain.StatusPickedUp
	pickedUp.DriverID = "usr_1"

	h := NewPickupHandler(&stubPickupService{
		advanceFn: func(_ context.Context, _ ports.Actor, id string, input ports.AdvanceInput) (*domain.Pickup, error) {
			if id != "RTN-1" {
				t.Errorf("wrong id %q", id)
			}
			if input.TargetStatus != "picked_up" || input.PhotoURL != "https://img/1.jpg" {
				t.Errorf("input not mapped: %+v", input)
			}
			return pickedUp, nil
		},
	})

	body := `{"target_status":"picked_up","photo_url":"https://img/1.jpg"}`
	c, rec := newHandlerContext(t, http.MethodPost, "/v1/pickups/RTN-1/advance", body)
	c.SetParamNames("id")
	c.SetParamValues("RTN-1")
	c.Set("role", domain.RoleDriver)

	if err := h.Advance(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestPickupHandler_Advance_BadTarget(t *testing.T) {
	h := NewPickupHandler(&stubPickupService{
		advanceFn: func(context.Context, ports.Actor, string, ports.AdvanceInput) (*domain.Pickup, error) {
			t.Fatal("service must not be called")
			return nil, nil
		},
	})

	c, _ := newHandlerContext(t, http.MethodPost, "/v1/pickups/RTN-1/advance", `{"target_status":"cancelled"}`)
	c.SetParamNames("id")
	c.SetParamValues("RTN-1")
	c.Set("role", domain.RoleDriver)

	err := h.Advance(c)
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 HTTPError, got %v", err)
	}
}

func TestPickupHandler_Cancel_WindowClosed(t *testing.T) {
	h := NewPickupHandler(&stubPickupService{
		cancelFn: func(context.Context, ports.Actor, string) (*domain.Pickup, error) {
			return nil, domain.ErrCancellationWindowClosed
		},
	})

	c, _ := newHandlerContext(t, http.MethodPost, "/v1/pickups/RTN-1/cancel", "")
	c.SetParamNames("id")
	c.SetParamValues("RTN-1")

	if err := h.Cancel(c); !errors.Is(err, domain.ErrCancellationWindowClosed) {
		t.Fatalf("expected ErrCancellationWindowClosed passthrough, got %v", err)
	}
}

func TestPickupHandler_Get_Detail(t *testing.T) {
	p := samplePickup()
	h := NewPickupHandler(&stubPickupService{
		getFn: func(_ context.Context, _ ports.Actor, id string) (*ports.PickupDetail, error) {
			return &ports.PickupDetail{
				Pickup:      p,
				StatusLabel: p.Status.Label(),
				Custody: []*domain.CustodyEvent{
					{ID: "evt_1", PickupID: p.ID, EventType: domain.CustodyPickupPhoto, ImageURL: "https://img/1.jpg", CreatedAt: time.Now().UTC()},
				},
			}, nil
		},
	})

	c, rec := newHandlerContext(t, http.MethodGet, "/v1/pickups/RTN-7A8B9C2D", "")
	c.SetParamNames("id")
	c.SetParamValues("RTN-7A8B9C2D")

	if err := h.Get(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var resp pickupDetailResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if len(resp.Custody) != 1 || resp.Custody[0].EventType != "pickup_photo" {
		t.Errorf("custody trail not rendered: %+v", resp.Custody)
	}
}

func TestPickupHandler_Estimate(t *testing.T) {
	h := NewPickupHandler(&stubPickupService{})

	c, rec := newHandlerContext(t, http.MethodPost, "/v1/estimate", `{"needs_box":true,"needs_label_print":true}`)
	if err := h.Estimate(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var resp estimateResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if resp.TotalCents != 499 {
		t.Errorf("expected 499, got %d", resp.TotalCents)
	}
	if resp.Breakdown.BaseCents != 299 || resp.Breakdown.BoxCents != 150 || resp.Breakdown.LabelPrintCents != 50 {
		t.Errorf("breakdown wrong: %+v", resp.Breakdown)
	}
}

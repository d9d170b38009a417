package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/shopora-app/shopora-backend/api/middleware"
	checkoutsvc "github.com/shopora-app/shopora-backend/internal/checkout"
	"github.com/shopora-app/shopora-backend/pkg/types"
)

type testCheckoutService struct {
	startFn func(ctx context.Context, userID uuid.UUID, contact *types.Contact) (checkoutsvc.SessionDTO, error)
}

func (s *testCheckoutService) Start(ctx context.Context, userID uuid.UUID, contact *types.Contact) (checkoutsvc.SessionDTO, error) {
	if s.startFn != nil {
		return s.startFn(ctx, userID, contact)
	}
	return checkoutsvc.SessionDTO{}, nil
}

func (s *testCheckoutService) Complete(ctx context.Context, userID, sessionID uuid.UUID, paymentID string) (checkoutsvc.SessionDTO, error) {
	return checkoutsvc.SessionDTO{}, nil
}

func (s *testCheckoutService) Cancel(ctx context.Context, userID, sessionID uuid.UUID) (checkoutsvc.SessionDTO, error) {
	return checkoutsvc.SessionDTO{}, nil
}

func (s *testCheckoutService) Get(ctx context.Context, userID, sessionID uuid.UUID) (checkoutsvc.SessionDTO, error) {
	return checkoutsvc.SessionDTO{}, nil
}

func (s *testCheckoutService) List(ctx context.Context, userID uuid.UUID, limit int) ([]checkoutsvc.SessionDTO, error) {
	return nil, nil
}

func TestCheckoutStartPassesContactThrough(t *testing.T) {
	userID := uuid.New()

	var captured *types.Contact
	svc := &testCheckoutService{
		startFn: func(ctx context.Context, uid uuid.UUID, contact *types.Contact) (checkoutsvc.SessionDTO, error) {
			if uid != userID {
				t.Fatalf("unexpected user %s", uid)
			}
			captured = contact
			return checkoutsvc.SessionDTO{}, nil
		},
	}

	body := `{"contact":{"email":"jo@example.com","phone":"+442071838750","givenName":"Jo"}}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout", strings.NewReader(body))
	req = req.WithContext(middleware.WithUserID(req.Context(), userID.String()))
	resp := httptest.NewRecorder()

	CheckoutStart(svc, testLogger())(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d body %s", resp.Code, resp.Body.String())
	}
	if captured == nil {
		t.Fatal("contact not forwarded to the service")
	}
	if captured.Phone != "+442071838750" {
		t.Fatalf("phone mangled: %q", captured.Phone)
	}
}

func TestCheckoutStartRejectsNonE164Phone(t *testing.T) {
	svc := &testCheckoutService{
		startFn: func(ctx context.Context, uid uuid.UUID, contact *types.Contact) (checkoutsvc.SessionDTO, error) {
			t.Fatal("service should not be reached")
			return checkoutsvc.SessionDTO{}, nil
		},
	}

	body := `{"contact":{"phone":"415-555-0100"}}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout", strings.NewReader(body))
	req = req.WithContext(middleware.WithUserID(req.Context(), uuid.NewString()))
	resp := httptest.NewRecorder()

	CheckoutStart(svc, testLogger())(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d body %s", resp.Code, resp.Body.String())
	}
}

package routes

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/shopora-app/shopora-backend/internal/authgate"
	"github.com/shopora-app/shopora-backend/pkg/config"
	"github.com/shopora-app/shopora-backend/pkg/enums"
	"github.com/shopora-app/shopora-backend/pkg/logger"
)

type stubSessions struct{}

func (stubSessions) HasSession(ctx context.Context, accessID string) (bool, error) {
	return false, nil
}

type stubNotifier struct{}

func (stubNotifier) Publish(ctx context.Context, userID uuid.UUID, kind enums.NotificationKind, message string) {
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	cfg := &config.Config{
		App: config.AppConfig{Env: "test", Port: "8080"},
		JWT: config.JWTConfig{Secret: "secret", Issuer: "issuer", ExpirationMinutes: 10},
	}
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})

	gate, err := authgate.NewGate(authgate.GateParams{
		Sessions: stubSessions{},
		Notifier: stubNotifier{},
		Logger:   logg,
		JWT:      cfg.JWT,
	})
	if err != nil {
		t.Fatalf("new gate: %v", err)
	}

	return NewRouter(Deps{
		Config:   cfg,
		Logger:   logg,
		Sessions: stubSessions{},
		Gate:     gate,
	})
}

func TestRouterHealthLive(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if env := resp.Header().Get("X-Shopora-Env"); env != "test" {
		t.Fatalf("unexpected env header %q", env)
	}
}

func TestRouterProtectedRoutesRejectAnonymousCalls(t *testing.T) {
	router := newTestRouter(t)

	for _, target := range []string{
		"/api/v1/cart",
		"/api/v1/wishlist",
		"/api/v1/notifications",
		"/api/v1/checkout",
	} {
		req := httptest.NewRequest(http.MethodGet, target, nil)
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, req)

		if resp.Code != http.StatusUnauthorized {
			t.Fatalf("%s: expected 401 got %d", target, resp.Code)
		}
	}
}

func TestRouterAdminRoutesRedirectAnonymousCalls(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/admin/v1/products", strings.NewReader(`{}`))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusSeeOther {
		t.Fatalf("expected 303 got %d", resp.Code)
	}
	if loc := resp.Header().Get("Location"); !strings.HasPrefix(loc, "/login?next=") {
		t.Fatalf("unexpected redirect %q", loc)
	}
}

func TestRouterPublicCatalogRouteIsMounted(t *testing.T) {
	router := newTestRouter(t)

	// A nil catalog service answers 500, not 404: the route exists, the
	// dependency does not.
	req := httptest.NewRequest(http.MethodGet, "/api/v1/products", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 got %d", resp.Code)
	}
}

func TestRouterUnknownRouteIs404(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/nope", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", resp.Code)
	}
}

package authgate

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shopora-app/shopora-backend/pkg/auth"
	"github.com/shopora-app/shopora-backend/pkg/config"
	"github.com/shopora-app/shopora-backend/pkg/enums"
	"github.com/shopora-app/shopora-backend/pkg/logger"
)

type fakeSessionChecker struct {
	mu   sync.Mutex
	live map[string]bool
	fail bool
}

func (f *fakeSessionChecker) HasSession(_ context.Context, accessID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return false, fmt.Errorf("registry down")
	}
	return f.live[accessID], nil
}

type fakeNotifier struct {
	mu    sync.Mutex
	kinds []enums.NotificationKind
	users []uuid.UUID
}

func (f *fakeNotifier) Publish(_ context.Context, userID uuid.UUID, kind enums.NotificationKind, _ string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.kinds = append(f.kinds, kind)
	f.users = append(f.users, userID)
}

func gateJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:            "test-secret-test-secret-test-secret",
		Issuer:            "shopora-test",
		ExpirationMinutes: 15,
	}
}

func newGate(t *testing.T) (*Gate, *fakeSessionChecker, *fakeNotifier) {
	t.Helper()

	sessions := &fakeSessionChecker{live: map[string]bool{}}
	notifier := &fakeNotifier{}
	gate, err := NewGate(GateParams{
		Sessions: sessions,
		Notifier: notifier,
		Logger:   logger.New(logger.Options{ServiceName: "gate-test"}),
		JWT:      gateJWTConfig(),
		Config:   config.GateConfig{LoginPath: "/login", LandingPath: "/"},
	})
	require.NoError(t, err)
	return gate, sessions, notifier
}

func mintToken(t *testing.T, userID uuid.UUID, role enums.UserRole, accessID string) string {
	t.Helper()

	token, err := auth.MintAccessToken(gateJWTConfig(), time.Now(), auth.AccessTokenPayload{
		UserID: userID,
		Role:   role,
		JTI:    accessID,
	})
	require.NoError(t, err)
	return token
}

func TestNoSessionRedirectsToLoginWithReturnPath(t *testing.T) {
	gate, _, _ := newGate(t)

	decision := gate.Evaluate(context.Background(), "", "/admin/products", enums.RoleShopAdmin)
	assert.Equal(t, StateUnauthenticated, decision.State)
	assert.Equal(t, "/login?next=%2Fadmin%2Fproducts", decision.RedirectURL)
}

func TestGarbageTokenIsUnauthenticated(t *testing.T) {
	gate, _, _ := newGate(t)

	decision := gate.Evaluate(context.Background(), "not-a-token", "/wishlist", "")
	assert.Equal(t, StateUnauthenticated, decision.State)
}

func TestRevokedSessionIsUnauthenticated(t *testing.T) {
	gate, sessions, _ := newGate(t)
	userID := uuid.New()
	token := mintToken(t, userID, enums.RoleCustomer, "session-1")

	// Session was never registered (or was revoked by logout).
	decision := gate.Evaluate(context.Background(), token, "/cart", "")
	assert.Equal(t, StateUnauthenticated, decision.State)

	sessions.live["session-1"] = true
	decision = gate.Evaluate(context.Background(), token, "/cart", "")
	assert.Equal(t, StateAuthorized, decision.State)
	assert.Equal(t, userID, decision.UserID)
}

func TestCustomerOnAdminRouteIsDeniedWithNotice(t *testing.T) {
	gate, sessions, notifier := newGate(t)
	userID := uuid.New()
	token := mintToken(t, userID, enums.RoleCustomer, "session-1")
	sessions.live["session-1"] = true

	decision := gate.Evaluate(context.Background(), token, "/admin/products", enums.RoleShopAdmin)
	assert.Equal(t, StateUnauthorized, decision.State)
	assert.Equal(t, "/", decision.RedirectURL)
	require.Len(t, notifier.kinds, 1)
	assert.Equal(t, enums.NotificationAccessDenied, notifier.kinds[0])
	assert.Equal(t, userID, notifier.users[0])
}

func TestAdminSatisfiesShopAdminRoutes(t *testing.T) {
	gate, sessions, _ := newGate(t)
	token := mintToken(t, uuid.New(), enums.RoleAdmin, "session-1")
	sessions.live["session-1"] = true

	decision := gate.Evaluate(context.Background(), token, "/admin/products", enums.RoleShopAdmin)
	assert.Equal(t, StateAuthorized, decision.State)
	assert.Equal(t, enums.RoleAdmin, decision.Role)
}

func TestShopAdminDoesNotSatisfyAdminRoutes(t *testing.T) {
	gate, sessions, _ := newGate(t)
	token := mintToken(t, uuid.New(), enums.RoleShopAdmin, "session-1")
	sessions.live["session-1"] = true

	decision := gate.Evaluate(context.Background(), token, "/admin/settings", enums.RoleAdmin)
	assert.Equal(t, StateUnauthorized, decision.State)
}

func TestRegistryOutageFailsClosed(t *testing.T) {
	gate, sessions, _ := newGate(t)
	token := mintToken(t, uuid.New(), enums.RoleAdmin, "session-1")
	sessions.live["session-1"] = true
	sessions.fail = true

	decision := gate.Evaluate(context.Background(), token, "/admin/products", enums.RoleAdmin)
	assert.Equal(t, StateUnauthenticated, decision.State)
}

func TestDecisionIsRecomputedEachCall(t *testing.T) {
	gate, sessions, _ := newGate(t)
	token := mintToken(t, uuid.New(), enums.RoleCustomer, "session-1")
	sessions.live["session-1"] = true

	first := gate.Evaluate(context.Background(), token, "/cart", "")
	assert.Equal(t, StateAuthorized, first.State)

	// Logout between requests. The next evaluation must notice.
	sessions.live["session-1"] = false
	second := gate.Evaluate(context.Background(), token, "/cart", "")
	assert.Equal(t, StateUnauthenticated, second.State)
}

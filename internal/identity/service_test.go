package identity

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/shopora-app/shopora-backend/pkg/auth"
	"github.com/shopora-app/shopora-backend/pkg/auth/session"
	"github.com/shopora-app/shopora-backend/pkg/config"
	"github.com/shopora-app/shopora-backend/pkg/enums"
	pkgerrors "github.com/shopora-app/shopora-backend/pkg/errors"
	"github.com/shopora-app/shopora-backend/pkg/logger"
)

type fakeSessions struct {
	mu      sync.Mutex
	tokens  map[string]string
	counter int
}

func newFakeSessions() *fakeSessions {
	return &fakeSessions{tokens: map[string]string{}}
}

func (f *fakeSessions) Generate(_ context.Context, accessID string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.counter++
	token := fmt.Sprintf("refresh-%d", f.counter)
	f.tokens[accessID] = token
	return token, nil
}

func (f *fakeSessions) Rotate(_ context.Context, oldAccessID, provided string) (string, string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.tokens[oldAccessID]
	if !ok || stored != provided {
		return "", "", session.ErrInvalidRefreshToken
	}
	delete(f.tokens, oldAccessID)
	f.counter++
	newAccessID := fmt.Sprintf("access-%d", f.counter)
	newToken := fmt.Sprintf("refresh-%d", f.counter)
	f.tokens[newAccessID] = newToken
	return newAccessID, newToken, nil
}

func (f *fakeSessions) Revoke(_ context.Context, accessID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.tokens, accessID)
	return nil
}

func (f *fakeSessions) HasSession(_ context.Context, accessID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.tokens[accessID]
	return ok, nil
}

type fakeCartClearer struct {
	mu      sync.Mutex
	cleared []uuid.UUID
}

func (f *fakeCartClearer) ClearCart(_ context.Context, userID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cleared = append(f.cleared, userID)
	return nil
}

func setupIdentityTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	schema := `
CREATE TABLE IF NOT EXISTS users (
  id TEXT PRIMARY KEY,
  email TEXT NOT NULL UNIQUE,
  password_hash TEXT NOT NULL,
  name TEXT NOT NULL,
  role TEXT NOT NULL DEFAULT 'customer',
  metadata TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(schema).Error)
	return db
}

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:                 "test-secret-test-secret-test-secret",
		Issuer:                 "shopora-test",
		ExpirationMinutes:      15,
		RefreshTokenTTLMinutes: 60 * 24,
	}
}

type identityFixture struct {
	svc      Service
	sessions *fakeSessions
	carts    *fakeCartClearer
	db       *gorm.DB
}

func newIdentityService(t *testing.T) identityFixture {
	t.Helper()

	db := setupIdentityTestDB(t)
	sessions := newFakeSessions()
	carts := &fakeCartClearer{}
	svc, err := NewService(ServiceParams{
		Repo:     NewRepository(db),
		Sessions: sessions,
		Carts:    carts,
		Logger:   logger.New(logger.Options{ServiceName: "identity-test"}),
		JWT:      testJWTConfig(),
		Password: config.PasswordConfig{},
	})
	require.NoError(t, err)
	return identityFixture{svc: svc, sessions: sessions, carts: carts, db: db}
}

func TestRegisterThenLogin(t *testing.T) {
	f := newIdentityService(t)
	ctx := context.Background()

	registered, err := f.svc.Register(ctx, RegisterInput{
		Email:    "Jo@Example.com",
		Password: "correct horse",
		Name:     "Jo",
	})
	require.NoError(t, err)
	assert.Equal(t, "jo@example.com", registered.User.Email)
	assert.Equal(t, enums.RoleCustomer, registered.User.Role)
	assert.NotEmpty(t, registered.AccessToken)
	assert.NotEmpty(t, registered.RefreshToken)

	claims, err := auth.ParseAccessToken(testJWTConfig(), registered.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, registered.User.ID, claims.UserID)
	assert.Equal(t, enums.RoleCustomer, claims.EffectiveRole())

	loggedIn, err := f.svc.Login(ctx, "jo@example.com", "correct horse")
	require.NoError(t, err)
	assert.Equal(t, registered.User.ID, loggedIn.User.ID)

	_, err = f.svc.Login(ctx, "jo@example.com", "wrong password")
	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, pkgerrors.CodeUnauthorized, appErr.Code())
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	f := newIdentityService(t)
	ctx := context.Background()
	input := RegisterInput{Email: "jo@example.com", Password: "correct horse", Name: "Jo"}

	_, err := f.svc.Register(ctx, input)
	require.NoError(t, err)

	_, err = f.svc.Register(ctx, input)
	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, pkgerrors.CodeConflict, appErr.Code())
}

func TestRegisterValidatesInput(t *testing.T) {
	f := newIdentityService(t)
	ctx := context.Background()

	cases := []RegisterInput{
		{Email: "not-an-email", Password: "correct horse", Name: "Jo"},
		{Email: "jo@example.com", Password: "short", Name: "Jo"},
		{Email: "jo@example.com", Password: "correct horse", Name: "  "},
	}
	for _, input := range cases {
		_, err := f.svc.Register(ctx, input)
		appErr := pkgerrors.As(err)
		require.NotNil(t, appErr)
		assert.Equal(t, pkgerrors.CodeValidation, appErr.Code())
	}
}

func TestLoginCarriesMetadataRoleOverride(t *testing.T) {
	f := newIdentityService(t)
	ctx := context.Background()

	registered, err := f.svc.Register(ctx, RegisterInput{
		Email:    "vendor@example.com",
		Password: "correct horse",
		Name:     "Vendor",
	})
	require.NoError(t, err)

	// Promote the account the legacy way, through metadata.
	require.NoError(t, f.db.Exec(
		`UPDATE users SET metadata = '{"app_role":"shop_admin"}' WHERE id = ?`,
		registered.User.ID.String(),
	).Error)

	loggedIn, err := f.svc.Login(ctx, "vendor@example.com", "correct horse")
	require.NoError(t, err)
	assert.Equal(t, enums.RoleShopAdmin, loggedIn.User.Role)

	claims, err := auth.ParseAccessToken(testJWTConfig(), loggedIn.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, enums.RoleShopAdmin, claims.EffectiveRole())
}

func TestLogoutRevokesSessionAndClearsCart(t *testing.T) {
	f := newIdentityService(t)
	ctx := context.Background()

	registered, err := f.svc.Register(ctx, RegisterInput{
		Email:    "jo@example.com",
		Password: "correct horse",
		Name:     "Jo",
	})
	require.NoError(t, err)

	claims, err := auth.ParseAccessToken(testJWTConfig(), registered.AccessToken)
	require.NoError(t, err)

	live, err := f.sessions.HasSession(ctx, claims.ID)
	require.NoError(t, err)
	assert.True(t, live)

	require.NoError(t, f.svc.Logout(ctx, registered.User.ID, claims.ID))

	live, err = f.sessions.HasSession(ctx, claims.ID)
	require.NoError(t, err)
	assert.False(t, live)
	assert.Contains(t, f.carts.cleared, registered.User.ID)
}

func TestRefreshRotatesTheSession(t *testing.T) {
	f := newIdentityService(t)
	ctx := context.Background()

	registered, err := f.svc.Register(ctx, RegisterInput{
		Email:    "jo@example.com",
		Password: "correct horse",
		Name:     "Jo",
	})
	require.NoError(t, err)

	refreshed, err := f.svc.Refresh(ctx, registered.AccessToken, registered.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, registered.AccessToken, refreshed.AccessToken)
	assert.NotEqual(t, registered.RefreshToken, refreshed.RefreshToken)

	// The old pair is burned.
	_, err = f.svc.Refresh(ctx, registered.AccessToken, registered.RefreshToken)
	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, pkgerrors.CodeUnauthorized, appErr.Code())
}

func TestMeReturnsTheAccount(t *testing.T) {
	f := newIdentityService(t)
	ctx := context.Background()

	registered, err := f.svc.Register(ctx, RegisterInput{
		Email:    "jo@example.com",
		Password: "correct horse",
		Name:     "Jo",
	})
	require.NoError(t, err)

	me, err := f.svc.Me(ctx, registered.User.ID)
	require.NoError(t, err)
	assert.Equal(t, "jo@example.com", me.Email)

	_, err = f.svc.Me(ctx, uuid.New())
	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, pkgerrors.CodeNotFound, appErr.Code())
}

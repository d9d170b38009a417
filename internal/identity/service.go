package identity

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/shopora-app/shopora-backend/pkg/auth"
	"github.com/shopora-app/shopora-backend/pkg/auth/session"
	"github.com/shopora-app/shopora-backend/pkg/config"
	"github.com/shopora-app/shopora-backend/pkg/db/models"
	"github.com/shopora-app/shopora-backend/pkg/enums"
	pkgerrors "github.com/shopora-app/shopora-backend/pkg/errors"
	"github.com/shopora-app/shopora-backend/pkg/logger"
	"github.com/shopora-app/shopora-backend/pkg/security"
)

const minPasswordLength = 8

// SessionStore is the slice of the Redis session registry the service uses.
type SessionStore interface {
	Generate(ctx context.Context, accessID string) (string, error)
	Rotate(ctx context.Context, oldAccessID, provided string) (string, string, error)
	Revoke(ctx context.Context, accessID string) error
	HasSession(ctx context.Context, accessID string) (bool, error)
}

// CartClearer empties the cart on logout.
type CartClearer interface {
	ClearCart(ctx context.Context, userID uuid.UUID) error
}

// RegisterInput carries the signup fields.
type RegisterInput struct {
	Email    string
	Password string
	Name     string
}

// ServiceParams groups dependencies for the identity service.
type ServiceParams struct {
	Repo     *Repository
	Sessions SessionStore
	Carts    CartClearer
	Logger   *logger.Logger
	JWT      config.JWTConfig
	Password config.PasswordConfig
}

// Service issues and retires sessions.
type Service interface {
	Register(ctx context.Context, input RegisterInput) (SessionDTO, error)
	Login(ctx context.Context, email, password string) (SessionDTO, error)
	Logout(ctx context.Context, userID uuid.UUID, accessID string) error
	Refresh(ctx context.Context, accessToken, refreshToken string) (SessionDTO, error)
	Me(ctx context.Context, userID uuid.UUID) (UserDTO, error)
}

type service struct {
	repo     *Repository
	sessions SessionStore
	carts    CartClearer
	logg     *logger.Logger
	jwt      config.JWTConfig
	password config.PasswordConfig
}

// NewService builds an identity service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "identity repo is required")
	}
	if params.Sessions == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "session store is required")
	}
	if params.Carts == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart clearer is required")
	}
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "logger is required")
	}
	return &service{
		repo:     params.Repo,
		sessions: params.Sessions,
		carts:    params.Carts,
		logg:     params.Logger,
		jwt:      params.JWT,
		password: params.Password,
	}, nil
}

// Register creates a customer account and signs it in.
func (s *service) Register(ctx context.Context, input RegisterInput) (SessionDTO, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	name := strings.TrimSpace(input.Name)
	if email == "" || !strings.Contains(email, "@") {
		return SessionDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "a valid email is required")
	}
	if len(input.Password) < minPasswordLength {
		return SessionDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "password must be at least 8 characters")
	}
	if name == "" {
		return SessionDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}

	taken, err := s.repo.EmailTaken(ctx, email)
	if err != nil {
		return SessionDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check email")
	}
	if taken {
		return SessionDTO{}, pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
	}

	hash, err := security.HashPassword(input.Password, s.password)
	if err != nil {
		return SessionDTO{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	user := &models.User{
		Email:        email,
		PasswordHash: hash,
		Name:         name,
		Role:         enums.RoleCustomer,
	}
	if err := s.repo.Insert(ctx, user); err != nil {
		return SessionDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create account")
	}
	return s.issueSession(ctx, user)
}

// Login verifies credentials and issues a token pair. Unknown addresses and
// wrong passwords report the same error.
func (s *service) Login(ctx context.Context, email, password string) (SessionDTO, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return SessionDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "email and password are required")
	}

	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return SessionDTO{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")
		}
		return SessionDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load account")
	}

	ok, err := security.VerifyPassword(password, user.PasswordHash)
	if err != nil {
		return SessionDTO{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify password")
	}
	if !ok {
		return SessionDTO{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")
	}
	return s.issueSession(ctx, user)
}

// Logout revokes the session and empties the cart.
func (s *service) Logout(ctx context.Context, userID uuid.UUID, accessID string) error {
	if strings.TrimSpace(accessID) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "access id is required")
	}
	if err := s.sessions.Revoke(ctx, accessID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "revoke session")
	}
	if userID != uuid.Nil {
		if err := s.carts.ClearCart(ctx, userID); err != nil {
			s.logg.Warn(s.logg.WithUserID(ctx, userID.String()), "cart clear on logout failed")
		}
	}
	return nil
}

// Refresh rotates the refresh token and mints a fresh access token. The old
// access token may be expired, only its identity matters here.
func (s *service) Refresh(ctx context.Context, accessToken, refreshToken string) (SessionDTO, error) {
	claims, err := auth.ParseAccessTokenAllowExpired(s.jwt, accessToken)
	if err != nil {
		return SessionDTO{}, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid access token")
	}

	newAccessID, newRefresh, err := s.sessions.Rotate(ctx, claims.ID, refreshToken)
	if err != nil {
		if errors.Is(err, session.ErrInvalidRefreshToken) {
			return SessionDTO{}, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid refresh token")
		}
		return SessionDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "rotate session")
	}

	// Reload so role changes land on the next token, not the next login.
	user, err := s.repo.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return SessionDTO{}, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "account no longer exists")
		}
		return SessionDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load account")
	}
	return s.mintFor(user, newAccessID, newRefresh)
}

func (s *service) Me(ctx context.Context, userID uuid.UUID) (UserDTO, error) {
	if userID == uuid.Nil {
		return UserDTO{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return UserDTO{}, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "account not found")
		}
		return UserDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load account")
	}
	return toUserDTO(*user, resolveRole(user)), nil
}

func (s *service) issueSession(ctx context.Context, user *models.User) (SessionDTO, error) {
	accessID := session.NewAccessID()
	refresh, err := s.sessions.Generate(ctx, accessID)
	if err != nil {
		return SessionDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "register session")
	}
	return s.mintFor(user, accessID, refresh)
}

func (s *service) mintFor(user *models.User, accessID, refresh string) (SessionDTO, error) {
	now := time.Now()
	token, err := auth.MintAccessToken(s.jwt, now, auth.AccessTokenPayload{
		UserID:  user.ID,
		Role:    user.Role,
		AppRole: metadataRole(user),
		JTI:     accessID,
	})
	if err != nil {
		return SessionDTO{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint access token")
	}
	return SessionDTO{
		AccessToken:  token,
		RefreshToken: refresh,
		ExpiresAt:    now.Add(time.Duration(s.jwt.ExpirationMinutes) * time.Minute),
		User:         toUserDTO(*user, resolveRole(user)),
	}, nil
}

// resolveRole prefers the metadata override, then the column, then customer.
func resolveRole(user *models.User) enums.UserRole {
	if override := metadataRole(user); override != nil {
		return *override
	}
	if user.Role.IsValid() {
		return user.Role
	}
	return enums.RoleCustomer
}

// metadataRole reads the legacy app_role field carried by accounts promoted
// after signup.
func metadataRole(user *models.User) *enums.UserRole {
	if user.Metadata == nil {
		return nil
	}
	raw, ok := user.Metadata["app_role"].(string)
	if !ok {
		return nil
	}
	role, err := enums.ParseUserRole(raw)
	if err != nil {
		return nil
	}
	return &role
}

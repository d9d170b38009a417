package authgate

import (
	"context"
	"net/url"
	"strings"

	"github.com/google/uuid"

	"github.com/shopora-app/shopora-backend/internal/notifications"
	"github.com/shopora-app/shopora-backend/pkg/auth"
	"github.com/shopora-app/shopora-backend/pkg/config"
	"github.com/shopora-app/shopora-backend/pkg/enums"
	pkgerrors "github.com/shopora-app/shopora-backend/pkg/errors"
	"github.com/shopora-app/shopora-backend/pkg/logger"
)

// State is one step of the gate's state machine.
type State string

const (
	StateChecking        State = "checking"
	StateUnauthenticated State = "unauthenticated"
	StateUnauthorized    State = "unauthorized"
	StateAuthorized      State = "authorized"
)

// Decision is the outcome of one gate evaluation. RedirectURL is set for the
// two redirect states.
type Decision struct {
	State       State
	RedirectURL string
	UserID      uuid.UUID
	Role        enums.UserRole
	AccessID    string
}

// SessionChecker reports whether a token's session is still registered, so a
// logout kills the token before it expires.
type SessionChecker interface {
	HasSession(ctx context.Context, accessID string) (bool, error)
}

// GateParams groups dependencies for the gate.
type GateParams struct {
	Sessions SessionChecker
	Notifier notifications.Publisher
	Logger   *logger.Logger
	JWT      config.JWTConfig
	Config   config.GateConfig
}

// Gate guards protected routes. Every request runs the whole check again,
// a prior decision is never reused.
type Gate struct {
	sessions SessionChecker
	notifier notifications.Publisher
	logg     *logger.Logger
	jwt      config.JWTConfig
	cfg      config.GateConfig
}

// NewGate builds a gate with the required dependencies.
func NewGate(params GateParams) (*Gate, error) {
	if params.Sessions == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "session checker is required")
	}
	if params.Notifier == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "notifier is required")
	}
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "logger is required")
	}
	cfg := params.Config
	if strings.TrimSpace(cfg.LoginPath) == "" {
		cfg.LoginPath = "/login"
	}
	if strings.TrimSpace(cfg.LandingPath) == "" {
		cfg.LandingPath = "/"
	}
	return &Gate{
		sessions: params.Sessions,
		notifier: params.Notifier,
		logg:     params.Logger,
		jwt:      params.JWT,
		cfg:      cfg,
	}, nil
}

// Evaluate runs the machine for one request: Checking, then exactly one of
// Unauthenticated, Unauthorized or Authorized.
//
// No token, a bad token or a revoked session land in Unauthenticated and
// redirect to the login path with the original path attached for the
// post-login return. A live session missing the required role lands in
// Unauthorized, redirects to the landing path and leaves the user a denial
// notification. Everything else is Authorized.
func (g *Gate) Evaluate(ctx context.Context, token, originalPath string, required enums.UserRole) Decision {
	decision := Decision{State: StateChecking}

	token = strings.TrimSpace(token)
	if token == "" {
		return g.unauthenticated(originalPath)
	}

	claims, err := auth.ParseAccessToken(g.jwt, token)
	if err != nil {
		return g.unauthenticated(originalPath)
	}

	live, err := g.sessions.HasSession(ctx, claims.ID)
	if err != nil {
		// Fail closed. A registry outage must not open protected routes.
		g.logg.Error(ctx, "session registry check failed", err)
		return g.unauthenticated(originalPath)
	}
	if !live {
		return g.unauthenticated(originalPath)
	}

	decision.UserID = claims.UserID
	decision.Role = claims.EffectiveRole()
	decision.AccessID = claims.ID

	if required != "" && required.IsValid() && !decision.Role.Satisfies(required) {
		decision.State = StateUnauthorized
		decision.RedirectURL = g.cfg.LandingPath
		g.notifier.Publish(ctx, claims.UserID, enums.NotificationAccessDenied,
			"you do not have access to that page")
		return decision
	}

	decision.State = StateAuthorized
	return decision
}

func (g *Gate) unauthenticated(originalPath string) Decision {
	redirect := g.cfg.LoginPath
	if path := strings.TrimSpace(originalPath); path != "" {
		redirect += "?next=" + url.QueryEscape(path)
	}
	return Decision{State: StateUnauthenticated, RedirectURL: redirect}
}

// LoginPath exposes the configured login path for the middleware layer.
func (g *Gate) LoginPath() string { return g.cfg.LoginPath }

// LandingPath exposes the configured landing path.
func (g *Gate) LandingPath() string { return g.cfg.LandingPath }

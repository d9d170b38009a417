package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/shopora-app/shopora-backend/pkg/enums"
)

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	UserID  uuid.UUID
	Role    enums.UserRole
	AppRole *enums.UserRole
	JTI     string
}

// AccessTokenClaims represents the typed JWT issued to clients. AppRole mirrors
// the metadata-backed role override used by accounts promoted after signup.
type AccessTokenClaims struct {
	UserID  uuid.UUID       `json:"user_id"`
	Role    enums.UserRole  `json:"role"`
	AppRole *enums.UserRole `json:"app_role,omitempty"`
	jwt.RegisteredClaims
}

// EffectiveRole resolves the role used for authorization checks. A valid
// app_role override wins over the column-backed role.
func (c *AccessTokenClaims) EffectiveRole() enums.UserRole {
	if c.AppRole != nil && c.AppRole.IsValid() {
		return *c.AppRole
	}
	if c.Role.IsValid() {
		return c.Role
	}
	return enums.RoleGuest
}

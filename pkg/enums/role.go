package enums

import "fmt"

// UserRole represents the canonical user_role enum in Postgres.
type UserRole string

const (
	RoleGuest     UserRole = "guest"
	RoleCustomer  UserRole = "customer"
	RoleShopAdmin UserRole = "shop_admin"
	RoleAdmin     UserRole = "admin"
)

var validUserRoles = []UserRole{
	RoleGuest,
	RoleCustomer,
	RoleShopAdmin,
	RoleAdmin,
}

// String implements fmt.Stringer.
func (r UserRole) String() string {
	return string(r)
}

// IsValid reports whether the value is a known UserRole.
func (r UserRole) IsValid() bool {
	for _, candidate := range validUserRoles {
		if candidate == r {
			return true
		}
	}
	return false
}

// Satisfies reports whether the role meets the given requirement. Admin is a
// strict superset of shop_admin: it passes both admin-only and
// shop-admin-only checks.
func (r UserRole) Satisfies(required UserRole) bool {
	if r == required {
		return true
	}
	if r == RoleAdmin && required == RoleShopAdmin {
		return true
	}
	return false
}

// ParseUserRole converts raw input into a UserRole.
func ParseUserRole(value string) (UserRole, error) {
	for _, candidate := range validUserRoles {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid user role %q", value)
}

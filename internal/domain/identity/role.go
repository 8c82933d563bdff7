package identity

import (
	"github.com/englishbooster/affiliate/internal/domain/shared"
	"github.com/google/uuid"
)

// Role is the coarse grained authorization role of a user
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleAffiliate Role = "affiliate"
	RoleUser      Role = "user"
)

// IsValid reports whether r is a known role
func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleAffiliate, RoleUser:
		return true
	}
	return false
}

// ParseRole converts a stored or claimed role string into a Role
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.IsValid() {
		return "", shared.NewDomainError("INVALID_ROLE", "Role tidak dikenal: "+s)
	}
	return r, nil
}

// Principal is the authenticated caller of an operation.
// It is built once per request from verified credentials and passed
// explicitly to every registry, ledger and report call.
type Principal struct {
	UserID uuid.UUID
	Role   Role
}

// NewPrincipal creates a principal
func NewPrincipal(userID uuid.UUID, role Role) Principal {
	return Principal{UserID: userID, Role: role}
}

func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}

func (p Principal) IsAffiliate() bool {
	return p.Role == RoleAffiliate
}

// Owns reports whether the principal is the given user
func (p Principal) Owns(userID uuid.UUID) bool {
	return p.UserID != uuid.Nil && p.UserID == userID
}

// RequireAdmin returns ErrForbidden unless the principal is an admin
func (p Principal) RequireAdmin() error {
	if !p.IsAdmin() {
		return shared.ErrForbidden
	}
	return nil
}

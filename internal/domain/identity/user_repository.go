package identity

import (
	"context"

	"github.com/englishbooster/affiliate/internal/domain/shared"
	"github.com/google/uuid"
)

var (
	ErrUserNotFound       = shared.NewNotFoundError("Pengguna")
	ErrEmailTaken         = shared.NewDomainError(shared.CodeAlreadyExists, "Email sudah terdaftar.")
	ErrInvalidCredentials = shared.NewDomainError(shared.CodeUnauthorized, "Email atau password salah.")
)

// UserRepository defines the interface for user persistence
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	Update(ctx context.Context, user *User) error
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	// UpdateRole changes only the role column
	UpdateRole(ctx context.Context, id uuid.UUID, role Role) error
}

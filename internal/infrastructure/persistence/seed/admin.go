package seed

import (
	"context"
	"errors"
	"fmt"

	"github.com/englishbooster/affiliate/internal/domain/identity"
	"go.uber.org/zap"
)

// SeedAdmin creates an administrator, or promotes an existing account with
// the same email to admin. The password of an existing account is left alone.
func SeedAdmin(ctx context.Context, users identity.UserRepository, name, email, password string, log *zap.Logger) (*identity.User, error) {
	existing, err := users.FindByEmail(ctx, email)
	switch {
	case err == nil:
		if existing.Role != identity.RoleAdmin {
			if err := users.UpdateRole(ctx, existing.ID, identity.RoleAdmin); err != nil {
				return nil, fmt.Errorf("promote admin: %w", err)
			}
			existing.Role = identity.RoleAdmin
		}
		log.Info("Admin already present", zap.String("user_id", existing.ID.String()))
		return existing, nil
	case !errors.Is(err, identity.ErrUserNotFound):
		return nil, err
	}

	admin, err := identity.NewAdmin(name, email, password)
	if err != nil {
		return nil, err
	}
	if err := users.Create(ctx, admin); err != nil {
		return nil, fmt.Errorf("create admin: %w", err)
	}
	log.Info("Admin created", zap.String("user_id", admin.ID.String()), zap.String("email", admin.Email))
	return admin, nil
}

package persistence

import (
	"context"
	"strings"
	"time"

	"github.com/englishbooster/affiliate/internal/domain/identity"
	"github.com/englishbooster/affiliate/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormUserRepository stores users. Email lookups ignore case.
type GormUserRepository struct {
	db *gorm.DB
}

func NewGormUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

func (r *GormUserRepository) Create(ctx context.Context, user *identity.User) error {
	err := conn(ctx, r.db).Create(models.UserModelFromDomain(user)).Error
	if isUniqueViolation(err) {
		return identity.ErrEmailTaken
	}
	return err
}

// Update saves all user columns
func (r *GormUserRepository) Update(ctx context.Context, user *identity.User) error {
	model := models.UserModelFromDomain(user)
	res := conn(ctx, r.db).Model(model).Select("*").Omit("id", "created_at").Updates(model)
	return changed(res, identity.ErrUserNotFound)
}

// UpdateRole changes only the role column and bumps the version
func (r *GormUserRepository) UpdateRole(ctx context.Context, id uuid.UUID, role identity.Role) error {
	res := conn(ctx, r.db).Model(&models.UserModel{}).Where("id = ?", id).Updates(map[string]any{
		"role":       role,
		"version":    gorm.Expr("version + 1"),
		"updated_at": time.Now(),
	})
	return changed(res, identity.ErrUserNotFound)
}

func (r *GormUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.User, error) {
	return first[models.UserModel, identity.User](conn(ctx, r.db).Where("id = ?", id), identity.ErrUserNotFound)
}

// FindByEmail finds a user by email, case-insensitively
func (r *GormUserRepository) FindByEmail(ctx context.Context, email string) (*identity.User, error) {
	if email == "" {
		return nil, identity.ErrUserNotFound
	}
	return first[models.UserModel, identity.User](r.byEmail(ctx, email), identity.ErrUserNotFound)
}

func (r *GormUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var count int64
	if err := r.byEmail(ctx, email).Model(&models.UserModel{}).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *GormUserRepository) byEmail(ctx context.Context, email string) *gorm.DB {
	return conn(ctx, r.db).Where("LOWER(email) = ?", strings.ToLower(email))
}

var _ identity.UserRepository = (*GormUserRepository)(nil)


package persistence

import (
	"context"

	"github.com/englishbooster/affiliate/internal/domain/catalog"
	"github.com/englishbooster/affiliate/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormProgramRepository implements catalog.ProgramRepository using GORM
type GormProgramRepository struct {
	db *gorm.DB
}

// NewGormProgramRepository creates a new GormProgramRepository
func NewGormProgramRepository(db *gorm.DB) *GormProgramRepository {
	return &GormProgramRepository{db: db}
}

// FindByID finds a program by ID, active or not
func (r *GormProgramRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Program, error) {
	return first[models.ProgramModel, catalog.Program](conn(ctx, r.db).Where("id = ?", id), catalog.ErrNotFound)
}

// FindByName finds a program by its unique name
func (r *GormProgramRepository) FindByName(ctx context.Context, name string) (*catalog.Program, error) {
	return first[models.ProgramModel, catalog.Program](conn(ctx, r.db).Where("name = ?", name), catalog.ErrNotFound)
}

// FindActive returns active programs ordered by category then name
func (r *GormProgramRepository) FindActive(ctx context.Context) ([]*catalog.Program, error) {
	var rows []models.ProgramModel
	if err := conn(ctx, r.db).
		Where("is_active = ?", true).
		Order("category ASC").
		Order("name ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]*catalog.Program, len(rows))
	for i := range rows {
		out[i] = rows[i].ToDomain()
	}
	return out, nil
}

// CountActive counts active programs
func (r *GormProgramRepository) CountActive(ctx context.Context) (int64, error) {
	var count int64
	err := conn(ctx, r.db).Model(&models.ProgramModel{}).Where("is_active = ?", true).Count(&count).Error
	return count, err
}

// Save upserts a program keyed by its name, so seeding is idempotent
func (r *GormProgramRepository) Save(ctx context.Context, p *catalog.Program) error {
	model := models.ProgramModelFromDomain(p)
	return conn(ctx, r.db).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"category", "description", "price", "duration_weeks", "location", "is_active", "updated_at"}),
	}).Create(model).Error
}

var _ catalog.ProgramRepository = (*GormProgramRepository)(nil)

package models

import (
	"time"

	"github.com/englishbooster/affiliate/internal/domain/shared"
	"github.com/google/uuid"
)

// BaseModel holds the columns every table carries
type BaseModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

func baseColumns(e shared.BaseEntity) BaseModel {
	return BaseModel{ID: e.ID, CreatedAt: e.CreatedAt, UpdatedAt: e.UpdatedAt}
}

func (m BaseModel) entity() shared.BaseEntity {
	return shared.BaseEntity{ID: m.ID, CreatedAt: m.CreatedAt, UpdatedAt: m.UpdatedAt}
}

// AggregateModel adds the version column repositories compare on update
type AggregateModel struct {
	BaseModel
	Version int `gorm:"not null;default:1"`
}

func aggregateColumns(a shared.BaseAggregateRoot) AggregateModel {
	return AggregateModel{BaseModel: baseColumns(a.BaseEntity), Version: a.Version}
}

// root rebuilds the aggregate header; pending events are not stored
func (m AggregateModel) root() shared.BaseAggregateRoot {
	return shared.BaseAggregateRoot{BaseEntity: m.entity(), Version: m.Version}
}

package models

import (
	"github.com/englishbooster/affiliate/internal/domain/catalog"
	"github.com/shopspring/decimal"
)

// ProgramModel is the persistence model for a catalog Program.
type ProgramModel struct {
	BaseModel
	Name          string           `gorm:"type:varchar(255);not null;uniqueIndex"`
	Category      catalog.Category `gorm:"type:varchar(20);not null;index:idx_programs_category_active"`
	Description   string           `gorm:"type:text"`
	Price         decimal.Decimal  `gorm:"type:decimal(10,2);not null"`
	DurationWeeks int              `gorm:"not null"`
	Location      string           `gorm:"type:varchar(255)"`
	IsActive      bool             `gorm:"not null;default:true;index:idx_programs_category_active"`
}

// TableName returns the table name for GORM
func (ProgramModel) TableName() string {
	return "programs"
}

// ToDomain converts the persistence model to a domain Program.
func (m *ProgramModel) ToDomain() *catalog.Program {
	return &catalog.Program{
		BaseEntity:    m.BaseModel.entity(),
		Name:          m.Name,
		Category:      m.Category,
		Description:   m.Description,
		Price:         m.Price,
		DurationWeeks: m.DurationWeeks,
		Location:      m.Location,
		IsActive:      m.IsActive,
	}
}

// FromDomain populates the persistence model from a domain Program.
func (m *ProgramModel) FromDomain(p *catalog.Program) {
	m.BaseModel = baseColumns(p.BaseEntity)
	m.Name = p.Name
	m.Category = p.Category
	m.Description = p.Description
	m.Price = p.Price
	m.DurationWeeks = p.DurationWeeks
	m.Location = p.Location
	m.IsActive = p.IsActive
}

// ProgramModelFromDomain creates a new persistence model from a domain Program.
func ProgramModelFromDomain(p *catalog.Program) *ProgramModel {
	m := &ProgramModel{}
	m.FromDomain(p)
	return m
}

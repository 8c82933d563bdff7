package catalog

import (
	"strings"
	"time"

	"github.com/englishbooster/affiliate/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Category groups programs by delivery mode
type Category string

const (
	CategoryOnline  Category = "online"
	CategoryOffline Category = "offline"
	CategoryGroup   Category = "group"
	CategoryBranch  Category = "branch"
)

// Categories lists every category in display order
var Categories = []Category{CategoryOnline, CategoryOffline, CategoryGroup, CategoryBranch}

func (c Category) IsValid() bool {
	switch c {
	case CategoryOnline, CategoryOffline, CategoryGroup, CategoryBranch:
		return true
	}
	return false
}

// ErrNotFound is returned when a program does not exist
var ErrNotFound = shared.NewNotFoundError("Program")

// Program is a paid course that referrals are registered against
type Program struct {
	shared.BaseEntity
	Name          string
	Category      Category
	Description   string
	Price         decimal.Decimal
	DurationWeeks int
	Location      string
	IsActive      bool
}

// NewProgram creates an active program
func NewProgram(name string, category Category, description string, price decimal.Decimal, durationWeeks int, location string) (*Program, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewValidationError("Nama program wajib diisi.")
	}
	if len(name) > 255 {
		return nil, shared.NewValidationError("Nama program maksimal 255 karakter.")
	}
	if !category.IsValid() {
		return nil, shared.NewValidationError("Kategori program tidak valid.")
	}
	if price.IsNegative() {
		return nil, shared.NewValidationError("Harga program tidak boleh negatif.")
	}
	if durationWeeks <= 0 {
		return nil, shared.NewValidationError("Durasi program harus lebih dari 0 minggu.")
	}

	return &Program{
		BaseEntity:    shared.NewBaseEntity(),
		Name:          name,
		Category:      category,
		Description:   description,
		Price:         price.Round(2),
		DurationWeeks: durationWeeks,
		Location:      strings.TrimSpace(location),
		IsActive:      true,
	}, nil
}

// Deactivate hides the program from listings. Existing and new referrals are unaffected.
func (p *Program) Deactivate() {
	p.IsActive = false
	p.UpdatedAt = time.Now()
}

func (p *Program) Activate() {
	p.IsActive = true
	p.UpdatedAt = time.Now()
}

package catalog

import (
	"github.com/englishbooster/affiliate/internal/domain/catalog"
	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// ProgramResponse is the public view of a program
type ProgramResponse struct {
	ID            uuid.UUID       `json:"id"`
	Name          string          `json:"name"`
	Category      string          `json:"category"`
	Description   string          `json:"description"`
	Price         decimal.Decimal `json:"price"`
	DurationWeeks int             `json:"duration_weeks"`
	Location      string          `json:"location"`
	IsActive      bool            `json:"is_active"`
}

// CategoryGroup lists the programs of one category
type CategoryGroup struct {
	Category string            `json:"category"`
	Label    string            `json:"label"`
	Programs []ProgramResponse `json:"programs"`
}

var categoryLabels = map[catalog.Category]string{
	catalog.CategoryOnline:  "Program Online",
	catalog.CategoryOffline: "Program Offline",
	catalog.CategoryGroup:   "Program Rombongan",
	catalog.CategoryBranch:  "Program Cabang",
}

func ToProgramResponse(p *catalog.Program) ProgramResponse {
	return ProgramResponse{
		ID:            p.ID,
		Name:          p.Name,
		Category:      string(p.Category),
		Description:   p.Description,
		Price:         p.Price,
		DurationWeeks: p.DurationWeeks,
		Location:      p.Location,
		IsActive:      p.IsActive,
	}
}

func ToProgramResponses(items []*catalog.Program) []ProgramResponse {
	return lo.Map(items, func(p *catalog.Program, _ int) ProgramResponse {
		return ToProgramResponse(p)
	})
}

// GroupByCategory groups programs in the fixed category order. Categories
// without programs are omitted and input order is kept inside each group.
func GroupByCategory(items []*catalog.Program) []CategoryGroup {
	grouped := lo.GroupBy(items, func(p *catalog.Program) catalog.Category {
		return p.Category
	})
	return lo.FilterMap(catalog.Categories, func(c catalog.Category, _ int) (CategoryGroup, bool) {
		programs, ok := grouped[c]
		if !ok {
			return CategoryGroup{}, false
		}
		return CategoryGroup{
			Category: string(c),
			Label:    categoryLabels[c],
			Programs: ToProgramResponses(programs),
		}, true
	})
}

package persistence

import (
	"slices"
	"strings"

	"gorm.io/gorm/clause"
)

// sortable whitelists the columns a list endpoint may order by
type sortable []string

var (
	affiliateSort = sortable{"created_at", "updated_at", "name", "email", "status", "approved_at"}
	referralSort  = sortable{"created_at", "updated_at", "student_name", "status", "commission_amount", "confirmed_at", "paid_at"}
)

// by orders on field when it is whitelisted and on created_at otherwise.
// Only "asc" (any case) sorts ascending.
func (s sortable) by(field, dir string) clause.OrderByColumn {
	col := strings.TrimSpace(field)
	if !slices.Contains(s, col) {
		col = "created_at"
	}
	return clause.OrderByColumn{
		Column: clause.Column{Name: col},
		Desc:   !strings.EqualFold(strings.TrimSpace(dir), "asc"),
	}
}

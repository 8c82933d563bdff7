package persistence

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// isUniqueViolation reports whether err is a unique constraint failure.
// Both PostgreSQL (SQLSTATE 23505) and SQLite messages are recognised.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "23505") ||
		strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "UNIQUE constraint failed")
}

// violatesColumn reports whether a unique violation message names column.
// PostgreSQL messages carry the constraint name (which embeds the column),
// SQLite messages carry "table.column".
func violatesColumn(err error, column string) bool {
	return err != nil && strings.Contains(err.Error(), column)
}

type domainRow[D any] interface {
	ToDomain() *D
}

// first loads the one row q matches and converts it, reporting a missing
// row as notFound.
func first[M, D any, PM interface {
	*M
	domainRow[D]
}](q *gorm.DB, notFound error) (*D, error) {
	row := PM(new(M))
	if err := q.First(row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound
		}
		return nil, err
	}
	return row.ToDomain(), nil
}

// changed reports an update that matched no row as none
func changed(res *gorm.DB, none error) error {
	switch {
	case res.Error != nil:
		return res.Error
	case res.RowsAffected == 0:
		return none
	}
	return nil
}

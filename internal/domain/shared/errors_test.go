package shared

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDomainError_IsMatchesByCode(t *testing.T) {
	custom := NewDomainError(CodeNotFound, "Program tidak ditemukan")

	assert.True(t, errors.Is(custom, ErrNotFound))
	assert.True(t, errors.Is(fmt.Errorf("load program: %w", custom), ErrNotFound))
	assert.False(t, errors.Is(custom, ErrForbidden))
	assert.False(t, errors.Is(errors.New("plain"), ErrNotFound))
}

func TestNewValidationError(t *testing.T) {
	err := NewValidationError("Alasan penolakan wajib diisi.")
	assert.Equal(t, CodeValidation, err.Code)
	assert.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, "Alasan penolakan wajib diisi.", err.Error())
}

func TestNewPaginated(t *testing.T) {
	p := NewPaginated([]int{1, 2, 3}, 23, 1, 10)
	assert.Equal(t, 3, p.TotalPages)
	assert.Equal(t, int64(23), p.Total)

	empty := NewPaginated[int](nil, 0, 1, 0)
	assert.NotNil(t, empty.Items)
	assert.Equal(t, DefaultPageSize, empty.PageSize)
	assert.Equal(t, 0, empty.TotalPages)
}

func TestFilter_Offset(t *testing.T) {
	f := DefaultFilter()
	assert.Equal(t, 0, f.Offset())
	f.Page = 3
	assert.Equal(t, 20, f.Offset())
	f.Page = 0
	assert.Equal(t, 0, f.Offset())

	f = Filter{Page: 2}
	assert.Equal(t, DefaultPageSize, f.Limit())
	assert.Equal(t, 10, f.Offset())
}

type sampleProfile struct {
	Name  string `validate:"required,max=5" label:"Nama"`
	Email string `validate:"required,email" label:"Email"`
}

func TestValidateStruct(t *testing.T) {
	assert.NoError(t, ValidateStruct(sampleProfile{Name: "Ani", Email: "ani@example.com"}))

	err := ValidateStruct(sampleProfile{Email: "ani@example.com"})
	assert.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, "Nama wajib diisi.", err.Error())

	err = ValidateStruct(sampleProfile{Name: "Anindita", Email: "ani@example.com"})
	assert.Equal(t, "Nama maksimal 5 karakter.", err.Error())

	err = ValidateStruct(sampleProfile{Name: "Ani", Email: "bukan-email"})
	assert.Equal(t, "Email harus berupa alamat email yang valid.", err.Error())
}

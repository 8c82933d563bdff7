package shared

import "errors"

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// Is matches domain errors by code so wrapped copies with a custom
// message still satisfy errors.Is against the sentinel.
func (e *DomainError) Is(target error) bool {
	var t *DomainError
	if !errors.As(target, &t) {
		return false
	}
	return e.Code == t.Code
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Error codes shared by every bounded context
const (
	CodeNotFound             = "NOT_FOUND"
	CodeAlreadyExists        = "ALREADY_EXISTS"
	CodeInvalidInput         = "INVALID_INPUT"
	CodeValidation           = "VALIDATION_ERROR"
	CodeConcurrencyConflict  = "CONCURRENCY_CONFLICT"
	CodeUnauthorized         = "UNAUTHORIZED"
	CodeForbidden            = "FORBIDDEN"
	CodeInvalidState         = "INVALID_STATE"
	CodeInvalidAction        = "INVALID_ACTION"
	CodeDuplicateApplication = "DUPLICATE_APPLICATION"
	CodeNotEligible          = "NOT_ELIGIBLE"
)

// Common domain errors
var (
	ErrNotFound            = NewDomainError(CodeNotFound, "Data tidak ditemukan")
	ErrAlreadyExists       = NewDomainError(CodeAlreadyExists, "Data sudah ada")
	ErrInvalidInput        = NewDomainError(CodeInvalidInput, "Input tidak valid")
	ErrValidation          = NewDomainError(CodeValidation, "Validasi gagal")
	ErrConcurrencyConflict = NewDomainError(CodeConcurrencyConflict, "Data telah diubah oleh proses lain")
	ErrUnauthorized        = NewDomainError(CodeUnauthorized, "Autentikasi diperlukan")
	ErrForbidden           = NewDomainError(CodeForbidden, "Anda tidak memiliki akses untuk tindakan ini")
	ErrInvalidState        = NewDomainError(CodeInvalidState, "Operasi tidak diizinkan pada status saat ini")
	ErrInvalidAction       = NewDomainError(CodeInvalidAction, "Invalid action")
)

// NewValidationError creates a validation error carrying a field specific message
func NewValidationError(message string) *DomainError {
	return NewDomainError(CodeValidation, message)
}

// NewNotFoundError creates a not found error for the named resource
func NewNotFoundError(resource string) *DomainError {
	return NewDomainError(CodeNotFound, resource+" tidak ditemukan")
}

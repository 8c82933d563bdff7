package middleware

import (
	"errors"
	"net/http"
	"reflect"
	"strings"

	"github.com/englishbooster/affiliate/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// SetupValidator makes binding errors report JSON (or form) field names
func SetupValidator() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name == "" {
				name = strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
			}
			return name
		})
	}
}

// FormatValidationErrors turns a binding error into the validation envelope.
// Malformed JSON produces a single detail-free error.
func FormatValidationErrors(err error, requestID string) dto.Response {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return dto.NewErrorResponseWithRequestID(dto.ErrCodeInvalidJSON, "Format request tidak valid", requestID)
	}

	details := make([]dto.ValidationDetail, 0, len(validationErrors))
	for _, e := range validationErrors {
		details = append(details, dto.ValidationDetail{
			Field:   e.Field(),
			Message: getValidationMessage(e),
			Code:    validationCode(e),
		})
	}
	return dto.NewValidationErrorResponse("Validasi gagal", requestID, details)
}

// HandleValidationError writes a 400 validation response
func HandleValidationError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, FormatValidationErrors(err, c.GetString("request_id")))
}

func validationCode(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return dto.ErrCodeValidationRequired
	case "min", "max", "len":
		if e.Kind() == reflect.String {
			return dto.ErrCodeValidationLength
		}
	}
	return dto.ErrCodeValidationFormat
}

func getValidationMessage(e validator.FieldError) string {
	field := e.Field()
	switch e.Tag() {
	case "required":
		return field + " wajib diisi."
	case "email":
		return field + " harus berupa alamat email yang valid."
	case "min":
		if e.Kind() == reflect.String {
			return field + " minimal " + e.Param() + " karakter."
		}
		return field + " minimal " + e.Param() + "."
	case "max":
		if e.Kind() == reflect.String {
			return field + " maksimal " + e.Param() + " karakter."
		}
		return field + " maksimal " + e.Param() + "."
	case "uuid":
		return field + " harus berupa UUID."
	case "oneof":
		return field + " harus salah satu dari: " + strings.ReplaceAll(e.Param(), " ", ", ") + "."
	default:
		return field + " tidak valid."
	}
}

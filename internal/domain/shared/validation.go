package shared

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	structValidator     *validator.Validate
	structValidatorOnce sync.Once
)

func getValidator() *validator.Validate {
	structValidatorOnce.Do(func() {
		structValidator = validator.New(validator.WithRequiredStructEnabled())
		structValidator.RegisterTagNameFunc(func(fld reflect.StructField) string {
			if label := fld.Tag.Get("label"); label != "" {
				return label
			}
			return fld.Name
		})
	})
	return structValidator
}

// ValidateStruct checks `validate` tags on s and returns the first violation
// as a ValidationError with an Indonesian message built from the `label` tag.
func ValidateStruct(s any) error {
	err := getValidator().Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return NewValidationError(err.Error())
	}
	return NewValidationError(validationMessage(verrs[0]))
}

func validationMessage(fe validator.FieldError) string {
	label := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s wajib diisi.", label)
	case "email":
		return fmt.Sprintf("%s harus berupa alamat email yang valid.", label)
	case "max":
		return fmt.Sprintf("%s maksimal %s karakter.", label, fe.Param())
	case "min":
		return fmt.Sprintf("%s minimal %s karakter.", label, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s harus salah satu dari: %s.", label, strings.ReplaceAll(fe.Param(), " ", ", "))
	default:
		return fmt.Sprintf("%s tidak valid.", label)
	}
}

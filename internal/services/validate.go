package services

import (
	"errors"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/AnshRaj112/portfolio-backend/internal/apperr"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func structValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
		// Report JSON names so messages match what the client sent.
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name == "" {
				return fld.Name
			}
			return name
		})
	})
	return validate
}

// ValidateStruct checks `validate` tags and returns the first failure as an
// apperr.FieldError.
func ValidateStruct(v any) error {
	err := structValidator().Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return apperr.Invalid("", err.Error())
	}

	fe := verrs[0]
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return apperr.Invalid(field, field+" is required")
	case "min":
		return apperr.Invalid(field, field+" must have at least "+fe.Param()+" item(s)")
	case "max":
		return apperr.Invalid(field, field+" must be at most "+fe.Param()+" characters")
	case "oneof":
		return apperr.Invalid(field, field+" must be one of: "+fe.Param())
	default:
		return apperr.Invalid(field, field+" is invalid")
	}
}

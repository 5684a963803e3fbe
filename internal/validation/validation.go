// Package validation wraps go-playground/validator with the request rules
// used by the handlers and maps failures to per-field messages.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"pitwall/internal/types"

	"github.com/go-playground/validator/v10"
)

var (
	instance *validator.Validate
	once     sync.Once
)

func get() *validator.Validate {
	once.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())

		// Report JSON names so messages line up with request bodies
		v.RegisterTagNameFunc(func(field reflect.StructField) string {
			name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
			if name == "-" {
				return ""
			}
			if name == "" {
				return field.Name
			}
			return name
		})

		instance = v
	})
	return instance
}

// Struct validates s and returns a *types.FieldErrors wrapping
// types.ErrValidation when any rule fails.
func Struct(s any) error {
	err := get().Struct(s)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return fmt.Errorf("%w: %s", types.ErrValidation, err.Error())
	}

	fields := make(map[string]string, len(validationErrors))
	for _, fieldErr := range validationErrors {
		fields[fieldErr.Field()] = message(fieldErr)
	}
	return types.NewFieldErrors(fields)
}

// Var validates a single value against tag, reporting failures under field.
func Var(field string, value any, tag string) error {
	err := get().Var(value, tag)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) && len(validationErrors) > 0 {
		return types.NewFieldErrors(map[string]string{field: message(validationErrors[0])})
	}
	return fmt.Errorf("%w: %s", types.ErrValidation, err.Error())
}

func message(fieldErr validator.FieldError) string {
	switch fieldErr.Tag() {
	case "required":
		return "is required"
	case "min":
		if fieldErr.Kind() == reflect.String {
			return fmt.Sprintf("must be at least %s characters", fieldErr.Param())
		}
		return fmt.Sprintf("must be at least %s", fieldErr.Param())
	case "max":
		if fieldErr.Kind() == reflect.String {
			return fmt.Sprintf("must be at most %s characters", fieldErr.Param())
		}
		return fmt.Sprintf("must be at most %s", fieldErr.Param())
	case "gt":
		return fmt.Sprintf("must be greater than %s", fieldErr.Param())
	case "alphanum":
		return "must contain only letters and numbers"
	case "url":
		return "must be a valid URL"
	default:
		return fmt.Sprintf("failed %s validation", fieldErr.Tag())
	}
}

/*
Package validate wraps go-playground/validator with JSON field names and readable
messages. Struct returns nil when the value is valid, or a map from JSON field name
to message that is passed to errs.Validation unchanged.
*/
package validate

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"alumnilink/internal/pkg/logx"
)

var (
	instance *validator.Validate
	once     sync.Once
)

func get() *validator.Validate {
	once.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())

		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})

		if err := v.RegisterValidation("notblank", notBlank); err != nil {
			logx.Fatal(err, "Failed to register notblank validation")
		}

		instance = v
	})
	return instance
}

func notBlank(fl validator.FieldLevel) bool {
	field := fl.Field()
	if field.Kind() != reflect.String {
		return true
	}
	return strings.TrimSpace(field.String()) != ""
}

// Struct validates s and returns per-field messages, or nil when s is valid.
func Struct(s any) map[string]string {
	err := get().Struct(s)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		logx.Error(err, "Validator rejected value", "type", fmt.Sprintf("%T", s))
		return map[string]string{"_": "invalid value"}
	}

	fields := make(map[string]string, len(validationErrors))
	for _, fe := range validationErrors {
		name := fe.Field()
		if _, seen := fields[name]; seen {
			continue
		}
		fields[name] = Message(fe)
	}

	return fields
}

// Var validates a single value against tag and returns the message, or "" when valid.
func Var(value any, tag, name string) string {
	err := get().Var(value, tag)
	if err == nil {
		return ""
	}

	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) && len(validationErrors) > 0 {
		// Var errors carry no field name, so the message starts with a space.
		return name + Message(validationErrors[0])
	}
	return name + " is invalid"
}

// Message renders one field error as "<field> <reason>".
func Message(fe validator.FieldError) string {
	field := fe.Field()

	switch fe.Tag() {
	case "required", "notblank":
		return field + " is required"
	case "email":
		return field + " must be a valid email address"
	case "url", "http_url":
		return field + " must be a valid URL"
	case "min":
		if isLengthKind(fe.Kind()) {
			return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max":
		if fe.Kind() == reflect.Slice || fe.Kind() == reflect.Map {
			return fmt.Sprintf("%s must have at most %s items", field, fe.Param())
		}
		if isLengthKind(fe.Kind()) {
			return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be %s or greater", field, fe.Param())
	case "lte":
		return fmt.Sprintf("%s must be %s or less", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(fe.Param(), " ", ", "))
	default:
		return fmt.Sprintf("%s is invalid (%s)", field, fe.Tag())
	}
}

func isLengthKind(k reflect.Kind) bool {
	return k == reflect.String || k == reflect.Slice || k == reflect.Map
}

package validation

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	dErrors "courthouse/pkg/domain-errors"
	s "courthouse/pkg/string"
)

// courtDateLayouts are tried in order; the first match wins.
var courtDateLayouts = []string{time.RFC3339, time.DateOnly}

var defaultValidator = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	_ = v.RegisterValidation("courtdate", func(fl validator.FieldLevel) bool {
		_, err := ParseCourtDate(fl.Field().String())
		return err == nil
	})
	return v
}

// ParseCourtDate accepts a calendar date (2024-03-01) or an RFC 3339
// timestamp and returns it in UTC. Bare dates are midnight UTC.
func ParseCourtDate(raw string) (time.Time, error) {
	for _, layout := range courtDateLayouts {
		if t, err := time.Parse(layout, strings.TrimSpace(raw)); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, dErrors.New(dErrors.CodeValidation,
		fmt.Sprintf("%q is not a date (YYYY-MM-DD) or RFC 3339 timestamp", raw))
}

// Validate runs struct tags and returns the first failure as a validation error.
func Validate(req any) error {
	if err := defaultValidator.Struct(req); err != nil {
		return dErrors.New(dErrors.CodeValidation, ErrorMessage(err))
	}
	return nil
}

// ErrorMessage renders the first field error using the JSON field name.
func ErrorMessage(err error) string {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return "invalid request body"
	}

	fe := fieldErrs[0]
	name := fe.Field()
	if name == "" {
		name = fe.StructField()
	}
	if name == "" {
		return "invalid request body"
	}
	field := s.ToSnakeCase(name)

	switch fe.ActualTag() {
	case "required":
		return field + " is required"
	case "notblank":
		return field + " must not be blank"
	case "email":
		return field + " must be a valid email"
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", field, fe.Param())
	case "nefield":
		return fmt.Sprintf("%s must differ from %s", field, s.ToSnakeCase(fe.Param()))
	case "courtdate":
		return field + " must be a date (YYYY-MM-DD) or RFC 3339 timestamp"
	default:
		return field + " is invalid"
	}
}

package usecase

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
)

// totalTolerance is half a minor currency unit.
var totalTolerance = decimal.New(5, -3)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := f.Tag.Get("field")
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})
	return v
}

// validateInput runs struct tag validation and collects every failure into
// one ValidationError so callers can append their own checks.
func validateInput(input any) *domainErrors.ValidationError {
	verr := &domainErrors.ValidationError{}
	err := validate.Struct(input)
	if err == nil {
		return verr
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		verr.Add("request", err.Error())
		return verr
	}
	for _, fe := range fieldErrs {
		verr.Add(fieldPath(fe.Namespace()), fieldMessage(fe))
	}
	return verr
}

// fieldPath drops the root struct name from a validator namespace.
func fieldPath(namespace string) string {
	if i := strings.IndexByte(namespace, '.'); i >= 0 {
		return namespace[i+1:]
	}
	return namespace
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "gt":
		return "must be greater than " + fe.Param()
	case "min":
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("must contain at least %s item(s)", fe.Param())
		}
		return "must be at least " + fe.Param() + " characters"
	case "max":
		if fe.Kind() == reflect.String {
			return "must be at most " + fe.Param() + " characters"
		}
		return "must be at most " + fe.Param()
	}
	return "is invalid"
}

func checkNonNegative(verr *domainErrors.ValidationError, field string, value *decimal.Decimal) {
	if value != nil && value.IsNegative() {
		verr.Add(field, "must not be negative")
	}
}

// checkCents rejects money finer than the minor unit stored by NUMERIC(12, 2).
func checkCents(verr *domainErrors.ValidationError, field string, value *decimal.Decimal) {
	if value != nil && !value.Equal(value.Round(2)) {
		verr.Add(field, "must have at most 2 decimal places")
	}
}

func failed(verr *domainErrors.ValidationError) error {
	if verr == nil || verr.Empty() {
		return nil
	}
	return verr
}

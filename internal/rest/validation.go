package rest

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

// maxPrice is the exclusive upper bound of a NUMERIC(10, 2) column.
var maxPrice = decimal.New(1, 8)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func validatorInstance() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(field reflect.StructField) string {
			name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
		if err := validate.RegisterValidation("price", validatePrice); err != nil {
			log.Fatalf("failed to register price validation: %v", err)
		}
	})
	return validate
}

// validatePrice accepts non-negative decimals with at most two fractional digits.
func validatePrice(fl validator.FieldLevel) bool {
	price, err := decimal.NewFromString(fl.Field().String())
	if err != nil {
		return false
	}
	if price.IsNegative() || price.GreaterThanOrEqual(maxPrice) {
		return false
	}
	return price.Equal(price.Round(2))
}

// Validate checks v against its `validate` struct tags and returns one FieldError per
// failing field. A nil result means v is valid.
func Validate(v any) []FieldError {
	err := validatorInstance().Struct(v)
	if err == nil {
		return nil
	}
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		log.Errorf("unexpected validation failure: %v", err)
		return []FieldError{{Message: err.Error()}}
	}
	details := make([]FieldError, 0, len(validationErrors))
	for _, fe := range validationErrors {
		details = append(details, FieldError{
			Field:   fe.Field(),
			Message: fieldMessage(fe),
		})
	}
	return details
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at most %s characters", fe.Param())
		}
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", strings.ReplaceAll(fe.Param(), " ", ", "))
	case "email":
		return "must be a valid email address"
	case "url":
		return "must be a valid URL"
	case "price":
		return "must be a non-negative amount with at most two decimal places"
	}
	return fmt.Sprintf("failed on %q validation", fe.Tag())
}

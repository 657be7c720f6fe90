package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"

	"github.com/vaughan-dsouza/storerate/internal/apperr"
	"github.com/vaughan-dsouza/storerate/internal/models"
)

const (
	PasswordMinLen = 8
	PasswordMaxLen = 16
	// PasswordSpecials are the characters that satisfy the special-character rule.
	PasswordSpecials = `!@#$%^&*(),.?":{}|<>`
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	_ = v.RegisterValidation("password", func(fl validator.FieldLevel) bool {
		return PasswordOK(fl.Field().String())
	})
	return v
}

// PasswordOK reports whether pw is 8-16 characters long and contains at
// least one uppercase letter and one special character.
func PasswordOK(pw string) bool {
	n := len([]rune(pw))
	if n < PasswordMinLen || n > PasswordMaxLen {
		return false
	}
	var upper, special bool
	for _, r := range pw {
		switch {
		case unicode.IsUpper(r) && r <= unicode.MaxASCII:
			upper = true
		case strings.ContainsRune(PasswordSpecials, r):
			special = true
		}
	}
	return upper && special
}

// Struct validates v against its `validate` tags and returns an InvalidInput
// error listing every failing field.
func Struct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		msgs := make([]string, 0, len(ve))
		for _, fe := range ve {
			msgs = append(msgs, fieldError(fe))
		}
		return apperr.Invalid("invalid data", msgs...)
	}
	return apperr.Invalid("invalid data", err.Error())
}

// Password validates a lone password value.
func Password(pw string) error {
	if !PasswordOK(pw) {
		return apperr.Invalid("invalid data", passwordRule)
	}
	return nil
}

// Rating validates a lone rating value.
func Rating(v int) error {
	if v < models.MinRating || v > models.MaxRating {
		return apperr.Invalid("invalid data", ratingRule)
	}
	return nil
}

var ratingRule = fmt.Sprintf("rating must be %d-%d", models.MinRating, models.MaxRating)

const passwordRule = "password must be 8-16 chars with uppercase and special char"

func fieldError(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return field + " must be a valid email"
	case "password":
		return passwordRule
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, fe.Param())
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s failed validation (%s)", field, fe.Tag())
	}
}

// Package validation holds the single order validation rule set. Both the
// client pre-flight checkpoint and the authoritative server checkpoint run
// the same rules, so the two cannot drift; only the server copy is a trust
// boundary.
package validation

import (
	"errors"
	"reflect"
	"strconv"
	"strings"
	"unicode/utf8"

	"ordering-service/internal/apperr"
	"ordering-service/internal/models"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()

	// Report violations under their json field names
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// mintrim=N: minimum rune count after whitespace trimming
	_ = v.RegisterValidation("mintrim", func(fl validator.FieldLevel) bool {
		n, err := strconv.Atoi(fl.Param())
		if err != nil {
			return false
		}
		return utf8.RuneCountInString(strings.TrimSpace(fl.Field().String())) >= n
	})

	return v
}

// ValidateOrder checks an order submission against the shared rule set and
// returns every violation found, in field order. A nil result means the
// payload is valid. The function is pure: it never mutates the submission
// and never panics on well-formed input.
func ValidateOrder(sub *models.OrderSubmission) []apperr.Violation {
	err := validate.Struct(sub)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []apperr.Violation{{Field: "", Message: "invalid payload"}}
	}

	out := make([]apperr.Violation, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, apperr.Violation{
			Field:   fieldPath(fe),
			Message: messageFor(fe),
		})
	}
	return out
}

// NormalizeSubmission trims the contact names and lowercases the email,
// matching what is persisted. Called by the server before validation.
func NormalizeSubmission(sub *models.OrderSubmission) {
	sub.UserDetails.FirstName = strings.TrimSpace(sub.UserDetails.FirstName)
	sub.UserDetails.LastName = strings.TrimSpace(sub.UserDetails.LastName)
	sub.UserDetails.Email = strings.ToLower(strings.TrimSpace(sub.UserDetails.Email))
}

// fieldPath strips the root struct name from the validator namespace, leaving
// paths like "userDetails.firstName" or "selectedProducts[0].price".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func messageFor(fe validator.FieldError) string {
	switch fe.Field() {
	case "firstName":
		return "firstName too short"
	case "lastName":
		return "lastName too short"
	case "email":
		return "invalid email"
	case "selectedProducts":
		return "no products selected"
	case "price":
		return "negative price"
	case "quantity":
		return "invalid quantity"
	case "name":
		return "name required"
	case "category":
		return "category required"
	case "id":
		return "id required"
	}
	return fe.Field() + " is invalid"
}

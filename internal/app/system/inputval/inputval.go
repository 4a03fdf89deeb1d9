// internal/app/system/inputval/inputval.go
package inputval

import (
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/purplesmurf1998/crm-api/internal/app/system/apperr"
)

// emailPattern is the address format accepted for user and contact emails.
var emailPattern = regexp.MustCompile(`^(([^<>()\[\]\\.,;:\s@"]+(\.[^<>()\[\]\\.,;:\s@"]+)*)|(".+"))@((\[[0-9]{1,3}\.[0-9]{1,3}\.[0-9]{1,3}\.[0-9]{1,3}\])|(([a-zA-Z\-0-9]+\.)+[a-zA-Z]{2,}))$`)

// IsValidEmail reports whether s is a well-formed email address.
func IsValidEmail(s string) bool {
	return emailPattern.MatchString(s)
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report JSON field names so messages match what clients send.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})

	_ = v.RegisterValidation("email_address", func(fl validator.FieldLevel) bool {
		return IsValidEmail(fl.Field().String())
	})
	return v
}

// Struct validates s against its `validate` tags. Constraint violations are
// returned as a single apperr ValidationError listing every failed field.
func Struct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return apperr.Wrap(apperr.KindValidation, err, "Invalid input")
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, message(fe))
	}
	return apperr.Validation("%s", strings.Join(msgs, ", "))
}

func message(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return "Please provide " + field
	case "max":
		return field + " cannot be more than " + fe.Param() + " characters"
	case "min":
		return field + " must be at least " + fe.Param() + " characters"
	case "oneof":
		return field + " must be one of: " + strings.ReplaceAll(fe.Param(), "'", "")
	case "email_address":
		return "Please use a valid email for " + field
	default:
		return field + " is invalid"
	}
}

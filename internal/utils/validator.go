package utils

import (
	"regexp"

	"github.com/go-playground/validator/v10"
)

var (
	Validate *validator.Validate

	phonePattern = regexp.MustCompile(`^\+?1?\d{9,15}$`)
)

func InitValidator() {
	Validate = validator.New()
	_ = Validate.RegisterValidation("phone", validatePhone)
}

// validatePhone accepts an empty value; combine with required when the
// field is mandatory.
func validatePhone(fl validator.FieldLevel) bool {
	phone := fl.Field().String()
	if phone == "" {
		return true
	}
	return phonePattern.MatchString(phone)
}

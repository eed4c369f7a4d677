// Package validation holds the request schema rules shared by the services.
package validation

import (
	"errors"
	"reflect"
	"regexp"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
)

const (
	PasswordMinLength = 8
	// bcrypt ignores everything past 72 bytes.
	PasswordMaxBytes = 72
)

var (
	ErrPasswordTooShort = errors.New("password must be at least 8 characters long")
	ErrPasswordTooLong  = errors.New("password must be at most 72 bytes long")
	ErrPasswordWeak     = errors.New("password must contain an uppercase letter, a lowercase letter, a digit and a special character")
)

var phonePattern = regexp.MustCompile(`^\+?[0-9]{10,15}$`)

var validate = New()

// New returns a validator that reports fields by their JSON names and knows
// the "phone" tag. Passwords go through CheckPassword, which says which rule
// failed.
func New() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(jsonFieldName)
	mustRegister(v, "phone", func(fl validator.FieldLevel) bool {
		return ValidPhone(fl.Field().String())
	})
	return v
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(err)
	}
}

func jsonFieldName(f reflect.StructField) string {
	name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	if name == "" {
		return f.Name
	}
	return name
}

// Struct validates s and returns the JSON names of the failing fields, or nil
// when s is valid.
func Struct(s interface{}) ([]string, error) {
	err := validate.Struct(s)
	if err == nil {
		return nil, nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil, err
	}

	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fe.Field())
	}
	return fields, nil
}

func ValidEmail(email string) bool {
	return validate.Var(email, "required,email") == nil
}

// ValidPhone accepts an optional leading + followed by 10 to 15 digits.
func ValidPhone(phone string) bool {
	return phonePattern.MatchString(phone)
}

// CheckPassword enforces the password policy.
func CheckPassword(pw string) error {
	if len([]rune(pw)) < PasswordMinLength {
		return ErrPasswordTooShort
	}
	if len(pw) > PasswordMaxBytes {
		return ErrPasswordTooLong
	}

	var upper, lower, digit, special bool
	for _, r := range pw {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			special = true
		}
	}
	if !upper || !lower || !digit || !special {
		return ErrPasswordWeak
	}
	return nil
}

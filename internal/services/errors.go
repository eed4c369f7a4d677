package services

import (
	"errors"
	"strings"
)

// Kind classifies a service failure for the transport layer.
type Kind int

const (
	KindValidation Kind = iota + 1
	KindConflict
	KindNotFound
	KindAuth
	KindForbidden
	KindIntegrity
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindConflict:
		return "conflict"
	case KindNotFound:
		return "not_found"
	case KindAuth:
		return "auth"
	case KindForbidden:
		return "forbidden"
	case KindIntegrity:
		return "integrity"
	}
	return "unknown"
}

// Error is a failure the caller can act on. Fields names the offending
// request fields when there are any.
type Error struct {
	Kind    Kind
	Message string
	Fields  []string
}

func (e *Error) Error() string {
	if len(e.Fields) == 0 {
		return e.Message
	}
	return e.Message + " (" + strings.Join(e.Fields, ", ") + ")"
}

func newError(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

func invalidFields(msg string, fields []string) *Error {
	return &Error{Kind: KindValidation, Message: msg, Fields: fields}
}

func invalid(err error) *Error {
	return newError(KindValidation, err.Error())
}

var (
	ErrInvalidBody = newError(KindValidation, "invalid request body")

	// Registration and activation
	ErrUsernameTaken      = newError(KindConflict, "username taken")
	ErrEmailTaken         = newError(KindConflict, "email already exists")
	ErrAccountTaken       = newError(KindConflict, "username or email already exists")
	ErrInvalidRole        = newError(KindValidation, "invalid user role")
	ErrInvalidActivation  = newError(KindValidation, "invalid user and activation id")
	ErrOTPRequired        = newError(KindValidation, "username and otp are required")
	ErrOTPNotFound        = newError(KindNotFound, "activation code not found or expired")
	ErrOTPMismatch        = newError(KindValidation, "incorrect OTP")
	ErrLoginFieldsMissing = newError(KindValidation, "username and password are required")

	// Credentials and tokens
	ErrInvalidCredentials = newError(KindAuth, "invalid username or password")
	ErrNotActivated       = newError(KindForbidden, "account not activated; check your email for the verification link")
	ErrInvalidToken       = newError(KindAuth, "invalid or expired token")
	ErrWrongLastPassword  = newError(KindValidation, "your last password is incorrect")

	// Password reset
	ErrEmailRequired    = newError(KindValidation, "a valid email is required")
	ErrDuplicateEmail   = newError(KindIntegrity, "more than one active account uses this email")
	ErrInvalidLink      = newError(KindValidation, "invalid link")
	ErrPasswordRequired = newError(KindValidation, "password is required")
	ErrEmailMismatch    = newError(KindValidation, "email doesn't match")

	ErrAlreadyDeleted = newError(KindConflict, "user already deleted")

	// Profile
	ErrInvalidPhone      = newError(KindValidation, "enter a valid phone number")
	ErrInvalidEmail      = newError(KindValidation, "invalid email format")
	ErrPhoneTaken        = newError(KindConflict, "phone number already in use")
	ErrProfileIncomplete = newError(KindForbidden, "complete your profile first")
	ErrEmptyUpdate       = newError(KindValidation, "nothing to update")
)

// ErrProfileAlreadyCompleted is not a failure: the one-time profile step has
// already run and nothing was written.
var ErrProfileAlreadyCompleted = errors.New("profile already completed")

// KindOf returns the Kind of err, or 0 when err is not a service Error.
func KindOf(err error) Kind {
	var svcErr *Error
	if errors.As(err, &svcErr) {
		return svcErr.Kind
	}
	return 0
}

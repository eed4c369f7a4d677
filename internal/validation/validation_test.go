package validation

import (
	"errors"
	"reflect"
	"strings"
	"testing"
)

func TestCheckPassword(t *testing.T) {
	tests := []struct {
		name string
		pw   string
		want error
	}{
		{"valid", "Str0ngP@ss", nil},
		{"too short", "S0@a", ErrPasswordTooShort},
		{"too long", "Aa1@" + strings.Repeat("x", 70), ErrPasswordTooLong},
		{"no upper", "str0ngp@ss", ErrPasswordWeak},
		{"no lower", "STR0NGP@SS", ErrPasswordWeak},
		{"no digit", "StrongP@ss", ErrPasswordWeak},
		{"no special", "Str0ngPass", ErrPasswordWeak},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := CheckPassword(tt.pw); !errors.Is(err, tt.want) {
				t.Fatalf("CheckPassword(%q) = %v, want %v", tt.pw, err, tt.want)
			}
		})
	}
}

func TestValidPhone(t *testing.T) {
	tests := map[string]bool{
		"+919876543210":     true,
		"9876543210":        true,
		"+1234567890123":    true,
		"12345":             false,
		"+91 98765 43210":   false,
		"phone-number":      false,
		"+1234567890123456": false,
	}
	for phone, want := range tests {
		if got := ValidPhone(phone); got != want {
			t.Fatalf("ValidPhone(%q) = %v, want %v", phone, got, want)
		}
	}
}

func TestValidEmail(t *testing.T) {
	if !ValidEmail("a@x.com") {
		t.Fatalf("expected a@x.com to be valid")
	}
	if ValidEmail("not-an-email") {
		t.Fatalf("expected not-an-email to be invalid")
	}
	if ValidEmail("") {
		t.Fatalf("expected empty email to be invalid")
	}
}

type signup struct {
	Username string  `json:"username" validate:"required"`
	Email    string  `json:"email" validate:"required,email"`
	Phone    *string `json:"phone" validate:"omitempty,phone"`
}

func TestStructReportsJSONNames(t *testing.T) {
	bad := "123"
	fields, err := Struct(&signup{Email: "nope", Phone: &bad})
	if err != nil {
		t.Fatalf("Struct: %v", err)
	}
	want := []string{"username", "email", "phone"}
	if !reflect.DeepEqual(fields, want) {
		t.Fatalf("fields = %v, want %v", fields, want)
	}

	fields, err = Struct(&signup{Username: "alice", Email: "a@x.com"})
	if err != nil || fields != nil {
		t.Fatalf("expected valid struct, got fields=%v err=%v", fields, err)
	}
}

package dto

import (
	"strings"
	"time"

	"github.com/ahmetcoskunkizilkaya/account-service/internal/models"
)

// AddressInput carries address fields from a request body. Nil means the
// field was not sent.
type AddressInput struct {
	Line1   *string `json:"line1"`
	City    *string `json:"city"`
	State   *string `json:"state"`
	Country *string `json:"country"`
	Pincode *string `json:"pincode"`
}

func (a *AddressInput) values() []*string {
	return []*string{a.Line1, a.City, a.State, a.Country, a.Pincode}
}

// Empty reports whether no address field was sent.
func (a *AddressInput) Empty() bool {
	if a == nil {
		return true
	}
	for _, v := range a.values() {
		if v != nil {
			return false
		}
	}
	return true
}

// Missing returns the required fields that are absent or blank, in
// models.AddressRequiredFields order.
func (a *AddressInput) Missing() []string {
	var missing []string
	for i, v := range a.values() {
		if blank(v) {
			missing = append(missing, models.AddressRequiredFields[i])
		}
	}
	return missing
}

// Blank returns the fields that were sent with an empty value.
func (a *AddressInput) Blank() []string {
	var fields []string
	for i, v := range a.values() {
		if v != nil && blank(v) {
			fields = append(fields, models.AddressRequiredFields[i])
		}
	}
	return fields
}

// Apply copies the sent fields onto addr.
func (a *AddressInput) Apply(addr *models.Address) {
	targets := []*string{&addr.Line1, &addr.City, &addr.State, &addr.Country, &addr.Pincode}
	for i, v := range a.values() {
		if v != nil {
			*targets[i] = strings.TrimSpace(*v)
		}
	}
}

type CompleteProfileRequest struct {
	FirstName *string       `json:"first_name"`
	LastName  *string       `json:"last_name"`
	Phone     *string       `json:"phone" validate:"omitempty,phone"`
	Address   *AddressInput `json:"address"`
}

// Trim strips surrounding whitespace from the sent user fields.
func (r *CompleteProfileRequest) Trim() {
	trim(r.FirstName, r.LastName, r.Phone)
}

type UpdateProfileRequest struct {
	FirstName *string       `json:"first_name"`
	LastName  *string       `json:"last_name"`
	Email     *string       `json:"email" validate:"omitempty,email"`
	Phone     *string       `json:"phone" validate:"omitempty,phone"`
	Address   *AddressInput `json:"address"`
}

// Trim strips surrounding whitespace from the sent user fields.
func (r *UpdateProfileRequest) Trim() {
	trim(r.FirstName, r.LastName, r.Email, r.Phone)
}

func trim(values ...*string) {
	for _, v := range values {
		if v != nil {
			*v = strings.TrimSpace(*v)
		}
	}
}

// UserFieldsEmpty reports whether no user field was sent.
func (r *UpdateProfileRequest) UserFieldsEmpty() bool {
	return r.FirstName == nil && r.LastName == nil && r.Email == nil && r.Phone == nil
}

type AddressResponse struct {
	Line1   string `json:"line1"`
	City    string `json:"city"`
	State   string `json:"state"`
	Country string `json:"country"`
	Pincode string `json:"pincode"`
}

type UserResponse struct {
	ID                uint             `json:"id"`
	Username          string           `json:"username"`
	Email             string           `json:"email"`
	Role              models.Role      `json:"role"`
	Active            bool             `json:"active"`
	AccountActivation bool             `json:"account_activation"`
	FirstName         *string          `json:"first_name"`
	LastName          *string          `json:"last_name"`
	Phone             *string          `json:"phone"`
	CreatedAt         time.Time        `json:"created_at"`
	Address           *AddressResponse `json:"address,omitempty"`
}

type ProfileResponse struct {
	Details UserResponse `json:"details"`
}

func NewProfileResponse(user *models.User, addr *models.Address) *ProfileResponse {
	details := UserResponse{
		ID:                user.ID,
		Username:          user.Username,
		Email:             user.Email,
		Role:              user.Role,
		Active:            user.Active,
		AccountActivation: user.AccountActivation,
		FirstName:         user.FirstName,
		LastName:          user.LastName,
		Phone:             user.Phone,
		CreatedAt:         user.CreatedAt,
	}
	if addr != nil {
		details.Address = &AddressResponse{
			Line1:   addr.Line1,
			City:    addr.City,
			State:   addr.State,
			Country: addr.Country,
			Pincode: addr.Pincode,
		}
	}
	return &ProfileResponse{Details: details}
}

func blank(s *string) bool {
	return s == nil || strings.TrimSpace(*s) == ""
}

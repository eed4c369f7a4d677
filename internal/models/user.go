package models

import (
	"time"
)

// User is the account record. Active is the soft-delete flag; AccountActivation
// flips once the registrant proves control of the email address.
type User struct {
	ID                  uint      `gorm:"primaryKey" json:"id"`
	Username            string    `gorm:"size:80;not null;uniqueIndex" json:"username"`
	Email               string    `gorm:"size:255;not null;uniqueIndex" json:"email"`
	Password            string    `gorm:"not null" json:"-"`
	Role                Role      `gorm:"size:20;not null" json:"role"`
	Active              bool      `gorm:"not null;default:true" json:"active"`
	AccountActivation   bool      `gorm:"not null;default:false" json:"account_activation"`
	AccountActivationID *string   `gorm:"size:36;index" json:"-"`
	FirstName           *string   `gorm:"size:100" json:"first_name"`
	LastName            *string   `gorm:"size:100" json:"last_name"`
	Phone               *string   `gorm:"size:20;uniqueIndex" json:"phone"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

// ProfileCompleted reports whether the one-time profile step has filled the
// personal fields.
func (u *User) ProfileCompleted() bool {
	return u.Phone != nil && u.FirstName != nil && u.LastName != nil
}

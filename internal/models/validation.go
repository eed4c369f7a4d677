package models

import "time"

// Validation is a single-use password reset ticket.
type Validation struct {
	ID        string    `gorm:"size:36;primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	Active    bool      `gorm:"not null;default:true" json:"active"`
	CreatedAt time.Time `json:"created_at"`
	User      User      `gorm:"foreignKey:UserID" json:"-"`
}

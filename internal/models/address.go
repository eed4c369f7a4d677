package models

// Address is the one-to-one postal address of a user.
type Address struct {
	ID      uint   `gorm:"primaryKey" json:"id"`
	UserID  uint   `gorm:"not null;uniqueIndex" json:"-"`
	Line1   string `gorm:"column:line1;size:255;not null" json:"line1"`
	City    string `gorm:"size:100;not null" json:"city"`
	State   string `gorm:"size:100;not null" json:"state"`
	Country string `gorm:"size:100;not null" json:"country"`
	Pincode string `gorm:"size:20;not null" json:"pincode"`
	User    User   `gorm:"foreignKey:UserID" json:"-"`
}

// AddressRequiredFields lists the JSON names that must all be present to
// create an Address.
var AddressRequiredFields = []string{"line1", "city", "state", "country", "pincode"}

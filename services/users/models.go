package users

import "time"

// User is a storefront account. Email is unique at the store level so
// concurrent registrations for the same address cannot both be inserted.
type User struct {
	ID                 uint      `json:"id" gorm:"primaryKey"`
	Email              string    `json:"email" gorm:"uniqueIndex;size:255;not null"`
	PasswordHash       string    `json:"-" gorm:"column:password_hash;size:255;not null"`
	FirstName          string    `json:"first_name" gorm:"size:100;not null"`
	LastName           string    `json:"last_name" gorm:"size:100;not null"`
	BirthDay           int       `json:"birth_day"`
	BirthMonth         int       `json:"birth_month"`
	BirthYear          int       `json:"birth_year"`
	BillingCustomerRef *string   `json:"billing_customer_ref,omitempty" gorm:"size:255"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

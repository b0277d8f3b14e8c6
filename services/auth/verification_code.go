package auth

import "time"

// VerificationCode proves control of an email address before an account is
// created. The unique index on email keeps at most one code per address.
type VerificationCode struct {
	ID        uint      `gorm:"primaryKey"`
	Email     string    `gorm:"uniqueIndex;size:255;not null"`
	Code      string    `gorm:"size:6;not null"`
	IssuedAt  time.Time `gorm:"not null"`
	ExpiresAt time.Time `gorm:"index;not null"`
}

func (VerificationCode) TableName() string {
	return "verification_codes"
}

func (c *VerificationCode) Expired(now time.Time) bool {
	return !c.ExpiresAt.After(now)
}

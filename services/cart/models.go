package cart

import "time"

// Item is one cart line. A (user, ref, color) triple appears at most once;
// adding the same product again increases the quantity.
type Item struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    uint      `json:"user_id" gorm:"not null;uniqueIndex:idx_cart_line"`
	Ref       string    `json:"ref" gorm:"size:100;not null;uniqueIndex:idx_cart_line"`
	Color     string    `json:"color" gorm:"size:50;not null;default:'';uniqueIndex:idx_cart_line"`
	Price     int64     `json:"price"`
	Quantity  int       `json:"quantity" gorm:"not null"`
	Image     string    `json:"image" gorm:"size:500"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Item) TableName() string {
	return "cart_items"
}

package catalog

import "time"

type Product struct {
	ID          uint      `json:"id" yaml:"-" gorm:"primaryKey"`
	Ref         string    `json:"ref" yaml:"ref" gorm:"uniqueIndex;size:100;not null"`
	Name        string    `json:"name" yaml:"name" gorm:"size:255;not null"`
	Description string    `json:"description" yaml:"description" gorm:"type:text"`
	Price       int64     `json:"price" yaml:"price" gorm:"not null"`
	Color       string    `json:"color" yaml:"color" gorm:"size:50"`
	Image       string    `json:"image" yaml:"image" gorm:"size:500"`
	CreatedAt   time.Time `json:"created_at" yaml:"-"`
	UpdatedAt   time.Time `json:"updated_at" yaml:"-"`
}

func (Product) TableName() string {
	return "products"
}

package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Restaurant struct {
	ID            uint            `json:"id" gorm:"primaryKey"`
	OwnerID       uint            `json:"owner_id" gorm:"not null;index"`
	Owner         User            `json:"-" gorm:"foreignKey:OwnerID"`
	Name          string          `json:"name" gorm:"not null"`
	Address       string          `json:"address"`
	Description   string          `json:"description"`
	ShippingCosts decimal.Decimal `json:"shipping_costs" gorm:"type:decimal(10,2);not null;default:0"`
	Products      []Product       `json:"products,omitempty" gorm:"foreignKey:RestaurantID"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// Product belongs to exactly one restaurant; RestaurantID never changes after creation.
type Product struct {
	ID           uint            `json:"id" gorm:"primaryKey"`
	RestaurantID uint            `json:"restaurant_id" gorm:"not null;index"`
	Name         string          `json:"name" gorm:"not null"`
	Description  string          `json:"description"`
	Price        decimal.Decimal `json:"price" gorm:"type:decimal(10,2);not null"`
	Availability bool            `json:"availability" gorm:"not null"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

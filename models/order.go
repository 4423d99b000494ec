package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus represents the lifecycle stage of an order
type OrderStatus string

const (
	StatusPending   OrderStatus = "pending"
	StatusConfirmed OrderStatus = "confirmed"
	StatusSent      OrderStatus = "sent"
	StatusDelivered OrderStatus = "delivered"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusSent, StatusDelivered:
		return true
	}
	return false
}

type Order struct {
	ID            uint                 `json:"id" gorm:"primaryKey"`
	UserID        uint                 `json:"user_id" gorm:"not null;index"`
	User          User                 `json:"-" gorm:"foreignKey:UserID"`
	RestaurantID  uint                 `json:"restaurant_id" gorm:"not null;index"`
	Restaurant    Restaurant           `json:"restaurant,omitempty" gorm:"foreignKey:RestaurantID"`
	Address       string               `json:"address" gorm:"not null"`
	Status        OrderStatus          `json:"status" gorm:"not null;default:'pending'"`
	Price         decimal.Decimal      `json:"price" gorm:"type:decimal(10,2);not null"`
	ShippingCosts decimal.Decimal      `json:"shipping_costs" gorm:"type:decimal(10,2);not null;default:0"`
	Products      []OrderProduct       `json:"products,omitempty" gorm:"foreignKey:OrderID"`
	StatusHistory []OrderStatusHistory `json:"status_history,omitempty" gorm:"foreignKey:OrderID"`
	CreatedAt     time.Time            `json:"created_at"`
	StartedAt     *time.Time           `json:"started_at"`
	SentAt        *time.Time           `json:"sent_at"`
	DeliveredAt   *time.Time           `json:"delivered_at"`
	UpdatedAt     time.Time            `json:"updated_at"`
}

// OrderProduct is one line item of an order, priced at order time.
type OrderProduct struct {
	ID        uint            `json:"id" gorm:"primaryKey"`
	OrderID   uint            `json:"order_id" gorm:"not null;index"`
	ProductID uint            `json:"product_id" gorm:"not null"`
	Product   Product         `json:"-" gorm:"foreignKey:ProductID"`
	Quantity  int             `json:"quantity" gorm:"not null"`
	UnitPrice decimal.Decimal `json:"unit_price" gorm:"type:decimal(10,2);not null"` // snapshot price at time of order
	Name      string          `json:"name"`                                          // snapshot name
}

// OrderStatusHistory tracks every status change of an order
type OrderStatusHistory struct {
	ID         uint        `json:"id" gorm:"primaryKey"`
	OrderID    uint        `json:"order_id" gorm:"not null;index"`
	FromStatus OrderStatus `json:"from_status"`
	ToStatus   OrderStatus `json:"to_status" gorm:"not null"`
	ChangedBy  uint        `json:"changed_by"` // user ID who triggered the transition
	Note       string      `json:"note"`
	CreatedAt  time.Time   `json:"created_at"`
}

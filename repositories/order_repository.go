package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"deliverus-api/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const pendingGuard = "started_at IS NULL AND sent_at IS NULL AND delivered_at IS NULL"

// OrderRepository is the GORM access to orders, their line items and history.
type OrderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

func (r *OrderRepository) preloaded(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Restaurant").
		Preload("Products", func(db *gorm.DB) *gorm.DB { return db.Order("id asc") })
}

// Create inserts the order together with its Products line items.
func (r *OrderRepository) Create(ctx context.Context, order *models.Order) error {
	if err := r.db.WithContext(ctx).Omit("Restaurant", "User").Create(order).Error; err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}
	return nil
}

// GetByID returns the order with its restaurant and line items.
func (r *OrderRepository) GetByID(ctx context.Context, id uint) (*models.Order, error) {
	var order models.Order
	if err := r.preloaded(ctx).First(&order, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get order %d: %w", id, err)
	}
	return &order, nil
}

// GetWithHistory is GetByID plus the status history, oldest first.
func (r *OrderRepository) GetWithHistory(ctx context.Context, id uint) (*models.Order, error) {
	var order models.Order
	err := r.preloaded(ctx).
		Preload("StatusHistory", func(db *gorm.DB) *gorm.DB { return db.Order("id asc") }).
		First(&order, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get order %d: %w", id, err)
	}
	return &order, nil
}

func (r *OrderRepository) ListByCustomer(ctx context.Context, userID uint) ([]models.Order, error) {
	var orders []models.Order
	if err := r.preloaded(ctx).Where("user_id = ?", userID).Order("created_at desc, id desc").Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("failed to list orders of user %d: %w", userID, err)
	}
	return orders, nil
}

// ListByRestaurant returns the restaurant's orders, optionally filtered by status.
func (r *OrderRepository) ListByRestaurant(ctx context.Context, restaurantID uint, status models.OrderStatus) ([]models.Order, error) {
	var orders []models.Order
	query := r.preloaded(ctx).Where("restaurant_id = ?", restaurantID)
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if err := query.Order("created_at desc, id desc").Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("failed to list orders of restaurant %d: %w", restaurantID, err)
	}
	return orders, nil
}

// ReplacePending rewrites the address, price and line items of a still-pending order.
func (r *OrderRepository) ReplacePending(ctx context.Context, orderID uint, address string, price, shipping decimal.Decimal, items []models.OrderProduct) error {
	db := r.db.WithContext(ctx)
	res := db.Model(&models.Order{}).
		Where("id = ? AND "+pendingGuard, orderID).
		Updates(map[string]any{
			"address":        address,
			"price":          price,
			"shipping_costs": shipping,
			"updated_at":     time.Now(),
		})
	if res.Error != nil {
		return fmt.Errorf("failed to update order %d: %w", orderID, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrStateChanged
	}
	if err := db.Where("order_id = ?", orderID).Delete(&models.OrderProduct{}).Error; err != nil {
		return fmt.Errorf("failed to clear items of order %d: %w", orderID, err)
	}
	if len(items) == 0 {
		return nil
	}
	if err := db.Create(&items).Error; err != nil {
		return fmt.Errorf("failed to insert items of order %d: %w", orderID, err)
	}
	return nil
}

// Advance moves the order from one status to the next and stamps column with at.
// The write only applies if the order is still in from with column unset.
func (r *OrderRepository) Advance(ctx context.Context, orderID uint, from, to models.OrderStatus, column string, at time.Time) error {
	res := r.db.WithContext(ctx).Model(&models.Order{}).
		Where("id = ? AND status = ? AND "+column+" IS NULL", orderID, from).
		Updates(map[string]any{
			"status":     to,
			column:       at,
			"updated_at": at,
		})
	if res.Error != nil {
		return fmt.Errorf("failed to advance order %d to %s: %w", orderID, to, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrStateChanged
	}
	return nil
}

// DeletePending removes a pending order with its line items and history.
// Children go first; if the order turns out not to be pending the caller's
// transaction must be rolled back on ErrStateChanged.
func (r *OrderRepository) DeletePending(ctx context.Context, orderID uint) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("order_id = ?", orderID).Delete(&models.OrderProduct{}).Error; err != nil {
		return fmt.Errorf("failed to delete items of order %d: %w", orderID, err)
	}
	if err := db.Where("order_id = ?", orderID).Delete(&models.OrderStatusHistory{}).Error; err != nil {
		return fmt.Errorf("failed to delete history of order %d: %w", orderID, err)
	}
	res := db.Where("id = ? AND "+pendingGuard, orderID).Delete(&models.Order{})
	if res.Error != nil {
		return fmt.Errorf("failed to delete order %d: %w", orderID, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrStateChanged
	}
	return nil
}

func (r *OrderRepository) AddHistory(ctx context.Context, h *models.OrderStatusHistory) error {
	if err := r.db.WithContext(ctx).Create(h).Error; err != nil {
		return fmt.Errorf("failed to record history of order %d: %w", h.OrderID, err)
	}
	return nil
}

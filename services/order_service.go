package services

import (
	"context"
	"errors"
	"time"

	"deliverus-api/apperrors"
	"deliverus-api/models"
	"deliverus-api/repositories"
	"deliverus-api/statemachine"
	"deliverus-api/validation"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// OrderService runs every order mutation as one transaction: the validation
// reads and the write see the same snapshot.
type OrderService struct {
	db  *gorm.DB
	log *logrus.Logger
	now func() time.Time
}

func NewOrderService(db *gorm.DB, logger *logrus.Logger) *OrderService {
	return &OrderService{db: db, log: logger, now: time.Now}
}

// Create validates the payload and stores a pending order priced from it.
func (s *OrderService) Create(ctx context.Context, req models.Requester, in validation.CreateInput) (*models.Order, error) {
	if !req.IsCustomer() {
		return nil, apperrors.New(apperrors.CodeForbidden, "only customers can place orders")
	}

	var orderID uint
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		quote, err := validation.ValidateCreate(ctx, repositories.NewRestaurantRepository(tx).ForShare(), in)
		if err != nil {
			return err
		}
		order := &models.Order{
			UserID:        req.ID,
			RestaurantID:  quote.RestaurantID,
			Address:       quote.Address,
			Status:        models.StatusPending,
			Price:         quote.Total,
			ShippingCosts: quote.Shipping,
			Products:      quote.OrderProducts(0),
		}
		orders := repositories.NewOrderRepository(tx)
		if err := orders.Create(ctx, order); err != nil {
			return err
		}
		orderID = order.ID
		return orders.AddHistory(ctx, &models.OrderStatusHistory{
			OrderID:   order.ID,
			ToStatus:  models.StatusPending,
			ChangedBy: req.ID,
			Note:      "Order placed by customer",
		})
	})
	if err != nil {
		return nil, s.fail("create_order", req, 0, err)
	}

	s.log.WithFields(logrus.Fields{"order_id": orderID, "user_id": req.ID}).Info("Order created")
	return s.load(ctx, orderID)
}

// Edit replaces the address and line items of the requester's pending order.
func (s *OrderService) Edit(ctx context.Context, req models.Requester, orderID uint, in validation.EditInput) (*models.Order, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		orders := repositories.NewOrderRepository(tx)
		order, err := s.find(ctx, orders, orderID)
		if err != nil {
			return err
		}
		if err := statemachine.CheckCustomerOwner(order, req); err != nil {
			return err
		}
		quote, err := validation.ValidateEdit(ctx, repositories.NewRestaurantRepository(tx).ForShare(), order, in)
		if err != nil {
			return err
		}
		err = orders.ReplacePending(ctx, order.ID, quote.Address, quote.Total, quote.Shipping, quote.OrderProducts(order.ID))
		if errors.Is(err, repositories.ErrStateChanged) {
			return apperrors.New(apperrors.CodeOrderAlreadyStarted, "order %d has already been started", order.ID)
		}
		return err
	})
	if err != nil {
		return nil, s.fail("edit_order", req, orderID, err)
	}

	s.log.WithFields(logrus.Fields{"order_id": orderID, "user_id": req.ID}).Info("Order edited")
	return s.load(ctx, orderID)
}

func (s *OrderService) Confirm(ctx context.Context, req models.Requester, orderID uint) (*models.Order, error) {
	return s.advance(ctx, req, orderID, statemachine.ActionConfirm)
}

func (s *OrderService) Send(ctx context.Context, req models.Requester, orderID uint) (*models.Order, error) {
	return s.advance(ctx, req, orderID, statemachine.ActionSend)
}

func (s *OrderService) Deliver(ctx context.Context, req models.Requester, orderID uint) (*models.Order, error) {
	return s.advance(ctx, req, orderID, statemachine.ActionDeliver)
}

// Delete removes the requester's order while it is still pending.
func (s *OrderService) Delete(ctx context.Context, req models.Requester, orderID uint) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		orders := repositories.NewOrderRepository(tx)
		order, err := s.find(ctx, orders, orderID)
		if err != nil {
			return err
		}
		if _, err := statemachine.GateDelete(order, req); err != nil {
			return err
		}
		return orders.DeletePending(ctx, order.ID)
	})
	if err != nil {
		return s.fail("delete_order", req, orderID, err)
	}
	s.log.WithFields(logrus.Fields{"order_id": orderID, "user_id": req.ID}).Info("Order deleted")
	return nil
}

// Get returns the order with its history if the requester may see it.
func (s *OrderService) Get(ctx context.Context, req models.Requester, orderID uint) (*models.Order, error) {
	order, err := repositories.NewOrderRepository(s.db).GetWithHistory(ctx, orderID)
	if errors.Is(err, repositories.ErrNotFound) {
		err = apperrors.New(apperrors.CodeOrderNotFound, "order %d not found", orderID)
	}
	if err == nil {
		err = statemachine.CheckVisible(order, req)
	}
	if err != nil {
		return nil, s.fail("get_order", req, orderID, err)
	}
	return order, nil
}

func (s *OrderService) ListForCustomer(ctx context.Context, req models.Requester) ([]models.Order, error) {
	if !req.IsCustomer() {
		return nil, apperrors.New(apperrors.CodeForbidden, "only customers have orders")
	}
	orders, err := repositories.NewOrderRepository(s.db).ListByCustomer(ctx, req.ID)
	if err != nil {
		return nil, s.fail("list_customer_orders", req, 0, err)
	}
	return orders, nil
}

// ListForRestaurant returns the orders of a restaurant owned by the requester.
func (s *OrderService) ListForRestaurant(ctx context.Context, req models.Requester, restaurantID uint, status models.OrderStatus) ([]models.Order, error) {
	restaurant, err := repositories.NewRestaurantRepository(s.db).RestaurantByID(ctx, restaurantID)
	switch {
	case err != nil:
		return nil, s.fail("list_restaurant_orders", req, 0, err)
	case restaurant == nil:
		return nil, apperrors.New(apperrors.CodeRestaurantNotFound, "restaurant %d not found", restaurantID)
	case !req.IsOwner() || restaurant.OwnerID != req.ID:
		return nil, apperrors.New(apperrors.CodeForbidden, "restaurant %d does not belong to you", restaurantID)
	}
	orders, err := repositories.NewOrderRepository(s.db).ListByRestaurant(ctx, restaurantID, status)
	if err != nil {
		return nil, s.fail("list_restaurant_orders", req, 0, err)
	}
	return orders, nil
}

func (s *OrderService) advance(ctx context.Context, req models.Requester, orderID uint, action statemachine.Action) (*models.Order, error) {
	var (
		order *models.Order
		from  models.OrderStatus
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		orders := repositories.NewOrderRepository(tx)
		var err error
		order, err = s.find(ctx, orders, orderID)
		if err != nil {
			return err
		}
		t, err := statemachine.Gate(order, req, action)
		if err != nil {
			return err
		}
		now := s.now()
		if err := orders.Advance(ctx, order.ID, t.From, t.To, statemachine.TimestampColumn(action), now); err != nil {
			return err
		}
		from = t.From
		statemachine.Stamp(order, t, now)
		return orders.AddHistory(ctx, &models.OrderStatusHistory{
			OrderID:    order.ID,
			FromStatus: t.From,
			ToStatus:   t.To,
			ChangedBy:  req.ID,
			Note:       "Order " + string(t.To) + " by owner",
		})
	})
	if err != nil {
		return nil, s.fail(string(action)+"_order", req, orderID, err)
	}

	s.log.WithFields(logrus.Fields{
		"order_id": orderID,
		"user_id":  req.ID,
		"from":     from,
		"to":       order.Status,
	}).Info("Order status advanced")
	return order, nil
}

func (s *OrderService) find(ctx context.Context, orders *repositories.OrderRepository, orderID uint) (*models.Order, error) {
	order, err := orders.GetByID(ctx, orderID)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, apperrors.New(apperrors.CodeOrderNotFound, "order %d not found", orderID)
	}
	return order, err
}

func (s *OrderService) load(ctx context.Context, orderID uint) (*models.Order, error) {
	order, err := repositories.NewOrderRepository(s.db).GetByID(ctx, orderID)
	if err != nil {
		return nil, apperrors.Internal("failed to reload order", err)
	}
	return order, nil
}

// fail logs err and turns it into a typed rejection. Rule rejections pass
// through; a lost state race becomes InvalidTransition; anything else is internal.
func (s *OrderService) fail(action string, req models.Requester, orderID uint, err error) error {
	entry := s.log.WithFields(logrus.Fields{
		"action":   action,
		"user_id":  req.ID,
		"order_id": orderID,
	})
	if rej, ok := apperrors.As(err); ok && rej.Kind() != apperrors.KindInternal {
		entry.WithField("code", rej.Code).Info("Order request rejected")
		return rej
	}
	if errors.Is(err, repositories.ErrStateChanged) {
		entry.Warn("Order changed state during the request")
		return apperrors.New(apperrors.CodeInvalidTransition, "order %d changed state, retry with fresh data", orderID)
	}
	entry.WithError(err).Error("Order request failed")
	if rej, ok := apperrors.As(err); ok {
		return rej
	}
	return apperrors.Internal("internal error", err)
}

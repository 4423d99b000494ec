package statemachine

import (
	"deliverus-api/apperrors"
	"deliverus-api/models"
)

// CheckCustomerOwner allows only the customer who placed the order.
func CheckCustomerOwner(o *models.Order, r models.Requester) error {
	if o == nil {
		return apperrors.New(apperrors.CodeOrderNotFound, "order not found")
	}
	if !r.IsCustomer() || o.UserID != r.ID {
		return apperrors.New(apperrors.CodeForbidden, "order %d does not belong to you", o.ID)
	}
	return nil
}

// CheckRestaurantOwner allows only the owner of the order's restaurant.
// The order must be loaded with its Restaurant.
func CheckRestaurantOwner(o *models.Order, r models.Requester) error {
	if o == nil {
		return apperrors.New(apperrors.CodeOrderNotFound, "order not found")
	}
	if !r.IsOwner() || o.Restaurant.ID != o.RestaurantID || o.Restaurant.OwnerID != r.ID {
		return apperrors.New(apperrors.CodeForbidden, "order %d does not belong to your restaurant", o.ID)
	}
	return nil
}

// CheckVisible dispatches on role: customers see their own orders, owners the
// orders of their restaurants.
func CheckVisible(o *models.Order, r models.Requester) error {
	switch r.Role {
	case models.RoleCustomer:
		return CheckCustomerOwner(o, r)
	case models.RoleOwner:
		return CheckRestaurantOwner(o, r)
	}
	if o == nil {
		return apperrors.New(apperrors.CodeOrderNotFound, "order not found")
	}
	return apperrors.New(apperrors.CodeForbidden, "role %q cannot view orders", r.Role)
}

func GateConfirm(o *models.Order, r models.Requester) (Transition, error) {
	return gateOwner(o, r, ActionConfirm)
}

func GateSend(o *models.Order, r models.Requester) (Transition, error) {
	return gateOwner(o, r, ActionSend)
}

func GateDeliver(o *models.Order, r models.Requester) (Transition, error) {
	return gateOwner(o, r, ActionDeliver)
}

// GateDelete allows the placing customer to remove a pending order.
func GateDelete(o *models.Order, r models.Requester) (Transition, error) {
	if err := CheckCustomerOwner(o, r); err != nil {
		return Transition{}, err
	}
	return CanTransition(StatusOf(o), ActionDelete)
}

// Gate dispatches to the gate of action.
func Gate(o *models.Order, r models.Requester, action Action) (Transition, error) {
	if action == ActionDelete {
		return GateDelete(o, r)
	}
	return gateOwner(o, r, action)
}

func gateOwner(o *models.Order, r models.Requester, action Action) (Transition, error) {
	if err := CheckRestaurantOwner(o, r); err != nil {
		return Transition{}, err
	}
	return CanTransition(StatusOf(o), action)
}

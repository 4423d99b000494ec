package statemachine

import (
	"strings"
	"time"

	"deliverus-api/apperrors"
	"deliverus-api/models"
)

// Action is a lifecycle operation requested on an order
type Action string

const (
	ActionConfirm Action = "confirm"
	ActionSend    Action = "send"
	ActionDeliver Action = "deliver"
	ActionDelete  Action = "delete"
)

// Transition defines a valid state change and who can perform it.
// To is empty for actions that remove the order.
type Transition struct {
	Action Action             `json:"action"`
	From   models.OrderStatus `json:"from"`
	To     models.OrderStatus `json:"to,omitempty"`
	Actor  models.UserRole    `json:"actor"`
}

// validTransitions is the authoritative state machine definition
var validTransitions = []Transition{
	// Owner starts preparing the order
	{Action: ActionConfirm, From: models.StatusPending, To: models.StatusConfirmed, Actor: models.RoleOwner},
	// Owner hands the order to delivery
	{Action: ActionSend, From: models.StatusConfirmed, To: models.StatusSent, Actor: models.RoleOwner},
	{Action: ActionDeliver, From: models.StatusSent, To: models.StatusDelivered, Actor: models.RoleOwner},
	// Customer removes an order nobody has started
	{Action: ActionDelete, From: models.StatusPending, Actor: models.RoleCustomer},
}

// transitionKey is used to look up valid transitions quickly
type transitionKey struct {
	Action Action
	From   models.OrderStatus
}

var transitionMap = func() map[transitionKey]Transition {
	m := make(map[transitionKey]Transition)
	for _, t := range validTransitions {
		m[transitionKey{t.Action, t.From}] = t
	}
	return m
}()

// StatusOf derives the lifecycle stage from the order's timestamps. The stored
// Status column is only a denormalised copy of this value.
func StatusOf(o *models.Order) models.OrderStatus {
	switch {
	case o.DeliveredAt != nil:
		return models.StatusDelivered
	case o.SentAt != nil:
		return models.StatusSent
	case o.StartedAt != nil:
		return models.StatusConfirmed
	default:
		return models.StatusPending
	}
}

// ValidActionsFrom returns the actions allowed from a given state
func ValidActionsFrom(status models.OrderStatus) []Action {
	var actions []Action
	for _, t := range validTransitions {
		if t.From == status {
			actions = append(actions, t.Action)
		}
	}
	return actions
}

// CanTransition checks whether action may run on an order in state from.
func CanTransition(from models.OrderStatus, action Action) (Transition, error) {
	if t, ok := transitionMap[transitionKey{action, from}]; ok {
		return t, nil
	}
	return Transition{}, apperrors.New(apperrors.CodeInvalidTransition,
		"cannot %s an order that is %s; allowed: %s", action, from, describeValidFrom(from))
}

func describeValidFrom(status models.OrderStatus) string {
	actions := ValidActionsFrom(status)
	if len(actions) == 0 {
		return "none (terminal state)"
	}
	names := make([]string, len(actions))
	for i, a := range actions {
		names[i] = string(a)
	}
	return strings.Join(names, ", ")
}

// GetAllTransitions returns the full state machine for documentation
func GetAllTransitions() []Transition {
	return validTransitions
}

// Stamp records the transition on o: the matching timestamp is set to now and
// Status advances. Delete leaves o untouched.
func Stamp(o *models.Order, t Transition, now time.Time) {
	switch t.Action {
	case ActionConfirm:
		o.StartedAt = &now
	case ActionSend:
		o.SentAt = &now
	case ActionDeliver:
		o.DeliveredAt = &now
	default:
		return
	}
	o.Status = t.To
}

// TimestampColumn is the orders column set by action, empty for delete.
func TimestampColumn(a Action) string {
	switch a {
	case ActionConfirm:
		return "started_at"
	case ActionSend:
		return "sent_at"
	case ActionDeliver:
		return "delivered_at"
	}
	return ""
}

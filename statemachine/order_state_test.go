package statemachine

import (
	"testing"
	"time"

	"deliverus-api/apperrors"
	"deliverus-api/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	customer      = models.Requester{ID: 20, Role: models.RoleCustomer}
	otherCustomer = models.Requester{ID: 21, Role: models.RoleCustomer}
	owner         = models.Requester{ID: 10, Role: models.RoleOwner}
	otherOwner    = models.Requester{ID: 11, Role: models.RoleOwner}
)

func newOrder() *models.Order {
	return &models.Order{
		ID:           1,
		UserID:       customer.ID,
		RestaurantID: 3,
		Restaurant:   models.Restaurant{ID: 3, OwnerID: owner.ID},
		Status:       models.StatusPending,
	}
}

func TestStatusOf(t *testing.T) {
	now := time.Now()
	o := newOrder()
	assert.Equal(t, models.StatusPending, StatusOf(o))

	o.StartedAt = &now
	assert.Equal(t, models.StatusConfirmed, StatusOf(o))

	o.SentAt = &now
	assert.Equal(t, models.StatusSent, StatusOf(o))

	o.DeliveredAt = &now
	assert.Equal(t, models.StatusDelivered, StatusOf(o))
}

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from   models.OrderStatus
		action Action
		to     models.OrderStatus
		ok     bool
	}{
		{models.StatusPending, ActionConfirm, models.StatusConfirmed, true},
		{models.StatusConfirmed, ActionSend, models.StatusSent, true},
		{models.StatusSent, ActionDeliver, models.StatusDelivered, true},
		{models.StatusPending, ActionDelete, "", true},
		{models.StatusPending, ActionSend, "", false},
		{models.StatusPending, ActionDeliver, "", false},
		{models.StatusConfirmed, ActionConfirm, "", false},
		{models.StatusConfirmed, ActionDelete, "", false},
		{models.StatusSent, ActionConfirm, "", false},
		{models.StatusDelivered, ActionDeliver, "", false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"_"+string(tt.action), func(t *testing.T) {
			tr, err := CanTransition(tt.from, tt.action)
			if !tt.ok {
				assert.True(t, apperrors.Is(err, apperrors.CodeInvalidTransition))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.to, tr.To)
		})
	}
}

func TestValidActionsFrom(t *testing.T) {
	assert.ElementsMatch(t, []Action{ActionConfirm, ActionDelete}, ValidActionsFrom(models.StatusPending))
	assert.Equal(t, []Action{ActionSend}, ValidActionsFrom(models.StatusConfirmed))
	assert.Empty(t, ValidActionsFrom(models.StatusDelivered))
}

func TestLifecycleIsMonotonic(t *testing.T) {
	o := newOrder()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	for _, action := range []Action{ActionConfirm, ActionSend, ActionDeliver} {
		tr, err := Gate(o, owner, action)
		require.NoError(t, err, "action %s", action)
		Stamp(o, tr, now)
		assert.Equal(t, StatusOf(o), o.Status)
		now = now.Add(time.Minute)
	}

	require.NotNil(t, o.StartedAt)
	require.NotNil(t, o.SentAt)
	require.NotNil(t, o.DeliveredAt)
	assert.True(t, o.StartedAt.Before(*o.SentAt))
	assert.True(t, o.SentAt.Before(*o.DeliveredAt))

	for _, action := range []Action{ActionConfirm, ActionSend, ActionDeliver, ActionDelete} {
		_, err := Gate(o, owner, action)
		assert.Error(t, err, "action %s after delivery", action)
	}
}

func TestGateSendBeforeConfirm(t *testing.T) {
	_, err := GateSend(newOrder(), owner)
	assert.True(t, apperrors.Is(err, apperrors.CodeInvalidTransition))
}

func TestGateDeliverBeforeSend(t *testing.T) {
	o := newOrder()
	now := time.Now()
	o.StartedAt = &now

	_, err := GateDeliver(o, owner)
	assert.True(t, apperrors.Is(err, apperrors.CodeInvalidTransition))
}

func TestOwnerGatesRejectOtherUsers(t *testing.T) {
	for _, r := range []models.Requester{otherOwner, customer} {
		_, err := GateConfirm(newOrder(), r)
		assert.True(t, apperrors.Is(err, apperrors.CodeForbidden), "requester %+v", r)
	}
}

func TestOwnershipCheckedBeforeState(t *testing.T) {
	o := newOrder()
	now := time.Now()
	o.DeliveredAt = &now

	_, err := GateConfirm(o, otherOwner)
	assert.True(t, apperrors.Is(err, apperrors.CodeForbidden))
}

func TestGateDelete(t *testing.T) {
	_, err := GateDelete(newOrder(), customer)
	assert.NoError(t, err)

	_, err = GateDelete(newOrder(), otherCustomer)
	assert.True(t, apperrors.Is(err, apperrors.CodeForbidden))

	_, err = GateDelete(newOrder(), owner)
	assert.True(t, apperrors.Is(err, apperrors.CodeForbidden))

	started := newOrder()
	now := time.Now()
	started.StartedAt = &now
	_, err = GateDelete(started, customer)
	assert.True(t, apperrors.Is(err, apperrors.CodeInvalidTransition))

	_, err = GateDelete(nil, customer)
	assert.True(t, apperrors.Is(err, apperrors.CodeOrderNotFound))
}

func TestCheckVisible(t *testing.T) {
	assert.NoError(t, CheckVisible(newOrder(), customer))
	assert.NoError(t, CheckVisible(newOrder(), owner))
	assert.True(t, apperrors.Is(CheckVisible(newOrder(), otherCustomer), apperrors.CodeForbidden))
	assert.True(t, apperrors.Is(CheckVisible(newOrder(), otherOwner), apperrors.CodeForbidden))
	assert.True(t, apperrors.Is(CheckVisible(nil, owner), apperrors.CodeOrderNotFound))
}

func TestCheckRestaurantOwnerNeedsLoadedRestaurant(t *testing.T) {
	o := newOrder()
	o.Restaurant = models.Restaurant{}

	err := CheckRestaurantOwner(o, owner)
	assert.True(t, apperrors.Is(err, apperrors.CodeForbidden))
}

func TestTimestampColumn(t *testing.T) {
	assert.Equal(t, "started_at", TimestampColumn(ActionConfirm))
	assert.Equal(t, "sent_at", TimestampColumn(ActionSend))
	assert.Equal(t, "delivered_at", TimestampColumn(ActionDeliver))
	assert.Empty(t, TimestampColumn(ActionDelete))
}

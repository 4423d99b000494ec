package handlers

import (
	"context"
	"fmt"
	"net/http"

	"deliverus-api/middleware"
	"deliverus-api/models"
	"deliverus-api/statemachine"

	"github.com/gin-gonic/gin"
)

// GetRestaurantOrders returns the orders of one of the owner's restaurants
func (h *Handler) GetRestaurantOrders(c *gin.Context) {
	restaurantID, ok := pathID(c, "id")
	if !ok {
		return
	}
	status := models.OrderStatus(c.Query("status"))
	if status != "" && !status.Valid() {
		badRequest(c, fmt.Errorf("unknown status %q", status))
		return
	}

	orders, err := h.orders.ListForRestaurant(c.Request.Context(), middleware.MustRequester(c), restaurantID, status)
	if err != nil {
		h.respondError(c, err)
		return
	}

	summary := map[models.OrderStatus]int{}
	for _, o := range orders {
		summary[o.Status]++
	}

	c.JSON(http.StatusOK, gin.H{
		"order_summary": summary,
		"count":         len(orders),
		"orders":        orders,
	})
}

type advanceFunc func(ctx context.Context, r models.Requester, orderID uint) (*models.Order, error)

// ConfirmOrder marks a pending order as started by the restaurant
func (h *Handler) ConfirmOrder(c *gin.Context) {
	h.advanceOrder(c, h.orders.Confirm, "Order confirmed")
}

// SendOrder hands a confirmed order over for delivery
func (h *Handler) SendOrder(c *gin.Context) {
	h.advanceOrder(c, h.orders.Send, "Order sent")
}

// DeliverOrder closes the lifecycle of a sent order
func (h *Handler) DeliverOrder(c *gin.Context) {
	h.advanceOrder(c, h.orders.Deliver, "Order delivered")
}

func (h *Handler) advanceOrder(c *gin.Context, advance advanceFunc, message string) {
	orderID, ok := pathID(c, "id")
	if !ok {
		return
	}
	order, err := advance(c.Request.Context(), middleware.MustRequester(c), orderID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":       message,
		"order":         order,
		"valid_actions": statemachine.ValidActionsFrom(order.Status),
	})
}

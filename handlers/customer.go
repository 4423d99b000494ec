package handlers

import (
	"net/http"

	"deliverus-api/middleware"
	"deliverus-api/statemachine"
	"deliverus-api/validation"

	"github.com/gin-gonic/gin"
)

// PlaceOrder creates a new order (customer only)
func (h *Handler) PlaceOrder(c *gin.Context) {
	var req validation.CreateInput
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondBindError(c, err)
		return
	}

	order, err := h.orders.Create(c.Request.Context(), middleware.MustRequester(c), req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message": "Order placed successfully",
		"order":   order,
	})
}

// GetMyOrders returns the caller's order history
func (h *Handler) GetMyOrders(c *gin.Context) {
	orders, err := h.orders.ListForCustomer(c.Request.Context(), middleware.MustRequester(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(orders), "orders": orders})
}

// GetOrderDetail returns one order with its status history. Visible to the
// customer who placed it and the owner of its restaurant.
func (h *Handler) GetOrderDetail(c *gin.Context) {
	orderID, ok := pathID(c, "id")
	if !ok {
		return
	}
	order, err := h.orders.Get(c.Request.Context(), middleware.MustRequester(c), orderID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"order":         order,
		"valid_actions": statemachine.ValidActionsFrom(order.Status),
	})
}

// EditOrder replaces the address and lines of a pending order
func (h *Handler) EditOrder(c *gin.Context) {
	orderID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req validation.EditInput
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondBindError(c, err)
		return
	}

	order, err := h.orders.Edit(c.Request.Context(), middleware.MustRequester(c), orderID, req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Order updated", "order": order})
}

// DeleteOrder removes a pending order placed by the caller
func (h *Handler) DeleteOrder(c *gin.Context) {
	orderID, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.orders.Delete(c.Request.Context(), middleware.MustRequester(c), orderID); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Order deleted", "order_id": orderID})
}

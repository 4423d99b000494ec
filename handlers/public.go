package handlers

import (
	"net/http"

	"deliverus-api/models"
	"deliverus-api/statemachine"

	"github.com/gin-gonic/gin"
)

// ListRestaurants returns all restaurants, optionally filtered by name (public)
func (h *Handler) ListRestaurants(c *gin.Context) {
	restaurants, err := h.restaurants.List(c.Request.Context(), c.Query("search"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"count":       len(restaurants),
		"restaurants": restaurants,
	})
}

// GetRestaurant returns a single restaurant with its products
func (h *Handler) GetRestaurant(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	restaurant, err := h.restaurants.Get(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"restaurant": restaurant})
}

// GetStateMachineInfo returns the order lifecycle for informational purposes
func GetStateMachineInfo(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"state_machine":   statemachine.GetAllTransitions(),
		"terminal_states": []models.OrderStatus{models.StatusDelivered},
		"description":     "Order lifecycle: pending, confirmed, sent, delivered",
	})
}

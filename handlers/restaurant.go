package handlers

import (
	"net/http"

	"deliverus-api/middleware"
	"deliverus-api/services"

	"github.com/gin-gonic/gin"
)

// ── Restaurant Management ────────────────────────────────────────────────────

// CreateRestaurant lets an owner register a restaurant
func (h *Handler) CreateRestaurant(c *gin.Context) {
	var req services.CreateRestaurantInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	restaurant, err := h.restaurants.Create(c.Request.Context(), middleware.MustRequester(c), req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Restaurant created", "restaurant": restaurant})
}

// ── Product Management ───────────────────────────────────────────────────────

// AddProduct adds a product to one of the owner's restaurants
func (h *Handler) AddProduct(c *gin.Context) {
	restaurantID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req services.CreateProductInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	product, err := h.restaurants.AddProduct(c.Request.Context(), middleware.MustRequester(c), restaurantID, req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Product added", "product": product})
}

// UpdateProduct changes price, availability or description of a product
func (h *Handler) UpdateProduct(c *gin.Context) {
	productID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req services.UpdateProductInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	product, err := h.restaurants.UpdateProduct(c.Request.Context(), middleware.MustRequester(c), productID, req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Product updated", "product": product})
}

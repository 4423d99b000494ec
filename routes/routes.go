package routes

import (
	"net/http"

	"deliverus-api/handlers"
	"deliverus-api/middleware"
	"deliverus-api/models"
	"deliverus-api/services"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// NewRouter builds the engine with the shared middleware and every route.
func NewRouter(h *handlers.Handler, auth *services.AuthService, logger *logrus.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(logger), middleware.CORS())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "DeliverUS Order API",
			"version": "1.0.0",
		})
	})
	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "Welcome to the DeliverUS Order API",
			"docs":    "/api/state-machine",
			"health":  "/health",
			"roles":   []models.UserRole{models.RoleCustomer, models.RoleOwner},
		})
	})

	SetupRoutes(r, h, auth)
	return r
}

func SetupRoutes(r *gin.Engine, h *handlers.Handler, auth *services.AuthService) {
	// ── Public routes ──────────────────────────────────────────────
	public := r.Group("/api")
	{
		public.POST("/auth/register", h.Register)
		public.POST("/auth/login", h.Login)

		public.GET("/restaurants", h.ListRestaurants)
		public.GET("/restaurants/:id", h.GetRestaurant)

		public.GET("/state-machine", handlers.GetStateMachineInfo)
	}

	// ── Authenticated routes ───────────────────────────────────────
	authed := r.Group("/api")
	authed.Use(middleware.AuthRequired(auth))
	{
		authed.GET("/profile", h.GetProfile)
		// customer or restaurant owner, checked per order
		authed.GET("/orders/:id", h.GetOrderDetail)
	}

	// ── Customer routes ────────────────────────────────────────────
	customer := r.Group("/api")
	customer.Use(middleware.AuthRequired(auth), middleware.RoleRequired(models.RoleCustomer))
	{
		customer.GET("/orders", h.GetMyOrders)
		customer.POST("/orders", h.PlaceOrder)
		customer.PUT("/orders/:id", h.EditOrder)
		customer.DELETE("/orders/:id", h.DeleteOrder)
	}

	// ── Restaurant owner routes ────────────────────────────────────
	owner := r.Group("/api")
	owner.Use(middleware.AuthRequired(auth), middleware.RoleRequired(models.RoleOwner))
	{
		owner.POST("/restaurants", h.CreateRestaurant)
		owner.GET("/restaurants/:id/orders", h.GetRestaurantOrders)

		owner.POST("/restaurants/:id/products", h.AddProduct)
		owner.PATCH("/products/:id", h.UpdateProduct)

		owner.PATCH("/orders/:id/confirm", h.ConfirmOrder)
		owner.PATCH("/orders/:id/send", h.SendOrder)
		owner.PATCH("/orders/:id/deliver", h.DeliverOrder)
	}
}

package main

import (
	"log"

	"deliverus-api/config"
	"deliverus-api/handlers"
	"deliverus-api/routes"
	"deliverus-api/services"

	"github.com/gin-gonic/gin"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := config.NewLogger(cfg)
	gin.SetMode(cfg.GinMode)

	db, err := config.OpenDB(cfg)
	if err != nil {
		logger.WithError(err).Fatal("Failed to open database")
	}
	logger.WithField("driver", cfg.DBDriver).Info("Database connected and migrated")

	auth := services.NewAuthService(db, logger, cfg.JWTSecret, cfg.JWTTTL)
	h := handlers.New(
		auth,
		services.NewRestaurantService(db, logger),
		services.NewOrderService(db, logger),
		logger,
	)

	r := routes.NewRouter(h, auth, logger)

	logger.WithField("port", cfg.Port).Info("Server starting")
	if err := r.Run(":" + cfg.Port); err != nil {
		logger.WithError(err).Fatal("Failed to start server")
	}
}

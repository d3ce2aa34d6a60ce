package main

import (
	"context"
	"log"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"slipgen/config"
	"slipgen/controllers"
	"slipgen/database"
	"slipgen/middleware"
	"slipgen/models"
	"slipgen/services"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found, using environment variables")
	}

	cfg := config.GetAppConfig()

	db, err := database.Connect(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := database.EnsureSchema(db); err != nil {
		log.Fatalf("Failed to ensure schema: %v", err)
	}

	var rdb *redis.Client
	if cfg.Redis.Addr != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := rdb.Ping(context.Background()).Err(); err != nil {
			log.Printf("Warning: Redis not reachable, falling back to in-process run locks: %v", err)
			rdb = nil
		}
	}

	slips := models.NewSlipModel(db)
	lease := services.NewRunLease(rdb, 3*time.Minute)
	sessions := &services.PlaywrightSessionFactory{Headless: cfg.Headless}
	screenshots := services.NewScreenshotService()
	automation := services.NewSlipAutomationService(slips, sessions, lease, screenshots, cfg.FormURL, cfg.RunTimeout)

	jwtService := services.NewJWTService(cfg.JWTSecret)
	authController := controllers.NewAuthController(jwtService, cfg.AdminEmail, cfg.AdminPassword)
	slipController := controllers.NewSlipController(slips, automation)

	r := gin.Default()
	r.Use(cors.Default())

	r.Static("/static", "./static")

	r.POST("/api/auth/login", authController.Login)

	optionsCache := middleware.NewResponseCache(10 * time.Minute)
	r.GET("/api/form-options", optionsCache.Cache(), slipController.FormOptions)

	api := r.Group("/api", middleware.RequireAuth(jwtService))
	api.GET("/slips", slipController.ListSlips)
	api.POST("/slips", slipController.CreateSlip)
	api.GET("/slips/:id", slipController.GetSlip)
	api.PUT("/slips/:id", slipController.UpdateSlip)
	api.DELETE("/slips/:id", slipController.DeleteSlip)

	generateLimiter := middleware.NewRateLimiter(5, time.Minute)
	api.POST("/slips/:id/generate-link", generateLimiter.Limit(), slipController.GenerateLink)

	r.Run(":" + cfg.Port)
}

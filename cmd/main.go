package main

import (
	"os"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/the-y0gi/Go-Apply-sub000/config"
	"github.com/the-y0gi/Go-Apply-sub000/logger"
	"github.com/the-y0gi/Go-Apply-sub000/routes"
	"github.com/the-y0gi/Go-Apply-sub000/ws"
)

func main() {
	if os.Getenv("DOCKER_ENV") != "true" {
		_ = godotenv.Load()
	}

	config.ConnectDB()

	go ws.HandleNotificationMessages()
	go ws.HandleBadgeMessages()

	r := gin.Default()

	// CORS
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:5173"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-User-ID", "X-User-Role"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	routes.SetupRoutes(r, config.DB)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	logger.Log.Info().Str("port", port).Msg("server starting")
	if err := r.Run(":" + port); err != nil {
		logger.Log.Fatal().Err(err).Msg("server stopped")
	}
}

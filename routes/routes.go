package routes

import (
	"time"

	"aeromed/handlers"
	"aeromed/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RegisterChatRoutes registers the conversational dispatch endpoint.
func RegisterChatRoutes(r *gin.Engine) {
	api := r.Group("/api")
	{
		api.POST("/chat", middleware.RateLimitMiddleware(), handlers.ChatHandler)
	}
}

// RegisterDeliveryRoutes registers the scheduled-delivery endpoints used by
// the dashboard.
func RegisterDeliveryRoutes(r *gin.Engine) {
	api := r.Group("/api/deliveries")
	{
		api.GET("", handlers.ListDeliveriesHandler)
		api.GET("/:id", handlers.GetDeliveryHandler)
		api.PATCH("/:id/status", handlers.UpdateDeliveryStatusHandler)
		api.DELETE("/:id", handlers.DeleteDeliveryHandler)
	}
}

// RegisterDroneRoutes registers fleet lookups proxied to the routing backend.
func RegisterDroneRoutes(r *gin.Engine) {
	api := r.Group("/api/drones")
	{
		api.GET("/:id", handlers.GetDroneHandler)
		api.GET("/cooling/:hasCooling", handlers.ListDronesByCoolingHandler)
	}
}

// RegisterHealthRoute registers a health-check endpoint.
func RegisterHealthRoute(r *gin.Engine) {
	r.GET("/health", handlers.HealthHandler)
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine) {
	// Setup global middleware (e.g., CORS) here.
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	RegisterChatRoutes(r)
	RegisterDeliveryRoutes(r)
	RegisterDroneRoutes(r)
	RegisterHealthRoute(r)
}

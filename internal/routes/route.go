package routes

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joshua-takyi/events-api/internal/config"
	"github.com/joshua-takyi/events-api/internal/container"
	"github.com/joshua-takyi/events-api/internal/handlers"
	"github.com/joshua-takyi/events-api/internal/middleware"
)

// SetupRoutes configures all routes with the dependency container
func SetupRoutes(container *container.Container) *gin.Engine {
	// Set Gin mode for production
	if container.Config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(cors.New(corsConfig(container.Config)))

	r.Use(middleware.RequestID())
	r.Use(middleware.StructuredLogger(container.Logger))
	r.Use(middleware.ErrorHandler(container.Logger))
	r.Use(middleware.Recovery(container.Logger))

	svc := container.EventService

	r.GET("/", handlers.Root())
	r.GET("/health", handlers.Health(svc))

	eventRoutes := r.Group("/events")
	{
		eventRoutes.POST("", handlers.CreateEvent(svc))
		eventRoutes.GET("", handlers.ListEvents(svc))
		eventRoutes.GET("/:eventId", handlers.GetEvent(svc))
		eventRoutes.PUT("/:eventId", handlers.UpdateEvent(svc))
		eventRoutes.DELETE("/:eventId", handlers.DeleteEvent(svc))
	}

	return r
}

func corsConfig(cfg *config.Config) cors.Config {
	c := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:  []string{"*"},
		ExposeHeaders: []string{"Content-Length", middleware.RequestIDHeader},
		MaxAge:        time.Hour,
	}
	// Browsers refuse credentials with a wildcard origin.
	if cfg.AllowAllOrigins() {
		c.AllowAllOrigins = true
	} else {
		c.AllowOrigins = cfg.AllowedOrigins
		c.AllowCredentials = true
	}
	return c
}

package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/joshua-takyi/events-api/internal/models"
)

func Root() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, models.RootResponse{
			Message: models.APIName,
			Version: models.APIVersion,
			Endpoints: map[string]string{
				"health": "/health",
				"events": "/events",
			},
		})
	}
}

// Health always answers 200; a degraded store shows up in the body.
func Health(svc EventService) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, svc.Health(c.Request.Context()))
	}
}

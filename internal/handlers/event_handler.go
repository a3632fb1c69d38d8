package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/joshua-takyi/events-api/internal/models"
)

// EventService is the part of *services.EventService the handlers call.
type EventService interface {
	Create(ctx context.Context, payload *models.CreationPayload) (*models.Event, error)
	Get(ctx context.Context, id string) (*models.Event, error)
	List(ctx context.Context, status *models.EventStatus, limit int) ([]models.Event, error)
	Update(ctx context.Context, id string, payload *models.UpdatePayload) (*models.Event, error)
	Delete(ctx context.Context, id string) error
	Health(ctx context.Context) *models.HealthResponse
}

// Failures are attached with c.Error and rendered by middleware.ErrorHandler.

func CreateEvent(svc EventService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var payload models.CreationPayload
		if err := bindJSON(c, &payload); err != nil {
			c.Error(bindError(err, func() error { return models.ValidateCreation(&payload) }))
			return
		}

		event, err := svc.Create(c.Request.Context(), &payload)
		if err != nil {
			c.Error(err)
			return
		}
		c.JSON(http.StatusCreated, event)
	}
}

func ListEvents(svc EventService) gin.HandlerFunc {
	return func(c *gin.Context) {
		query, err := models.ParseListQuery(c.Query("status"), c.Query("limit"))
		if err != nil {
			c.Error(err)
			return
		}

		events, err := svc.List(c.Request.Context(), query.Status, query.Limit)
		if err != nil {
			c.Error(err)
			return
		}
		if events == nil {
			events = []models.Event{}
		}
		c.JSON(http.StatusOK, events)
	}
}

func GetEvent(svc EventService) gin.HandlerFunc {
	return func(c *gin.Context) {
		event, err := svc.Get(c.Request.Context(), c.Param("eventId"))
		if err != nil {
			c.Error(err)
			return
		}
		c.JSON(http.StatusOK, event)
	}
}

func UpdateEvent(svc EventService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var payload models.UpdatePayload
		if err := bindJSON(c, &payload); err != nil {
			c.Error(bindError(err, func() error { return models.ValidateUpdate(&payload) }))
			return
		}

		event, err := svc.Update(c.Request.Context(), c.Param("eventId"), &payload)
		if err != nil {
			c.Error(err)
			return
		}
		c.JSON(http.StatusOK, event)
	}
}

func DeleteEvent(svc EventService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := svc.Delete(c.Request.Context(), c.Param("eventId")); err != nil {
			c.Error(err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// bindJSON reads the request body and decodes it with exact key matching.
func bindJSON(c *gin.Context, payload any) error {
	body, err := c.GetRawData()
	if err != nil {
		return err
	}
	return models.DecodeBody(body, payload)
}

// bindError turns a body decode failure into field errors. When only some
// fields had the wrong JSON type the rest of the body is still validated, so
// the client sees every problem at once.
func bindError(err error, validate func() error) error {
	verrs, usable := models.DecodeErrors(err)
	if !usable {
		return verrs
	}
	var more models.ValidationErrors
	if errors.As(validate(), &more) {
		verrs = verrs.Merge(more)
	}
	return verrs
}

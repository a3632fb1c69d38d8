package container

import (
	"log/slog"

	"github.com/joshua-takyi/events-api/internal/config"
	"github.com/joshua-takyi/events-api/internal/models"
	"github.com/joshua-takyi/events-api/internal/services"
)

// Container holds all application dependencies
type Container struct {
	Config       *config.Config
	Logger       *slog.Logger
	Store        models.EventStore
	EventService *services.EventService
}

// NewContainer creates a new dependency injection container. store and
// publisher may be nil; the service then reports itself unavailable or skips
// notifications.
func NewContainer(
	cfg *config.Config,
	logger *slog.Logger,
	store models.EventStore,
	publisher services.Publisher,
) *Container {
	eventService := services.NewEventService(store, publisher, logger, cfg.RequestTimeout)

	return &Container{
		Config:       cfg,
		Logger:       logger,
		Store:        store,
		EventService: eventService,
	}
}

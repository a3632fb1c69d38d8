package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/joshua-takyi/events-api/internal/helpers"
	"github.com/joshua-takyi/events-api/internal/models"
)

// Routing keys for lifecycle notifications.
const (
	TopicCreated = "event.created"
	TopicUpdated = "event.updated"
	TopicDeleted = "event.deleted"
)

const (
	DatabaseDisconnected = "disconnected"
	DatabaseHealthy      = "healthy"
	DatabaseUnhealthy    = "unhealthy"

	StatusHealthy  = "healthy"
	StatusDegraded = "degraded"
)

type Publisher interface {
	Publish(ctx context.Context, routingKey string, payload any) error
}

type EventService struct {
	store     models.EventStore
	publisher Publisher
	logger    *slog.Logger
	timeout   time.Duration

	now   func() time.Time
	newID func() string
}

// NewEventService wires the service. store and publisher may be nil: a nil
// store makes every operation fail with ErrServiceUnavailable, a nil
// publisher disables notifications.
func NewEventService(store models.EventStore, publisher Publisher, logger *slog.Logger, timeout time.Duration) *EventService {
	if logger == nil {
		logger = slog.Default()
	}
	return &EventService{
		store:     store,
		publisher: publisher,
		logger:    logger,
		timeout:   timeout,
		now:       time.Now,
		newID:     uuid.NewString,
	}
}

func (s *EventService) opContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.timeout)
}

func (s *EventService) Create(ctx context.Context, payload *models.CreationPayload) (*models.Event, error) {
	if s.store == nil {
		return nil, unavailable()
	}
	if err := models.ValidateCreation(payload); err != nil {
		return nil, err
	}

	if models.DateInPast(*payload.Date, s.now()) {
		s.logger.Warn("event date is in the past", "date", *payload.Date)
	}

	id := ""
	if payload.EventID != nil {
		id = *payload.EventID
	}
	if id == "" {
		id = s.newID()
	}
	ts := helpers.Timestamp(s.now())

	event := &models.Event{
		EventID:     id,
		Title:       *payload.Title,
		Description: *payload.Description,
		Date:        *payload.Date,
		Location:    *payload.Location,
		Capacity:    *payload.Capacity,
		Organizer:   *payload.Organizer,
		Status:      payload.ResolvedStatus(),
		CreatedAt:   ts,
		UpdatedAt:   ts,
	}

	opCtx, cancel := s.opContext(ctx)
	defer cancel()
	if err := s.store.PutItem(opCtx, models.NewEventItem(event)); err != nil {
		s.logger.Error("failed to create event", "event_id", id, "error", err)
		return nil, classify(id, err)
	}

	s.logger.Info("event created", "event_id", id)
	s.notify(ctx, TopicCreated, event)
	return event, nil
}

func (s *EventService) Get(ctx context.Context, id string) (*models.Event, error) {
	if s.store == nil {
		return nil, unavailable()
	}
	opCtx, cancel := s.opContext(ctx)
	defer cancel()

	item, err := s.store.GetItem(opCtx, id)
	if err != nil {
		s.logger.Error("failed to get event", "event_id", id, "error", err)
		return nil, classify(id, err)
	}
	if item == nil {
		return nil, notFound(id)
	}
	return toEvent(item)
}

// List returns at most limit events, optionally only those with status.
// Order is whatever the store yields.
func (s *EventService) List(ctx context.Context, status *models.EventStatus, limit int) ([]models.Event, error) {
	if s.store == nil {
		return nil, unavailable()
	}
	if limit < 1 || limit > models.MaxListLimit {
		return nil, invalidArgument(fmt.Sprintf("Limit must be between 1 and %d", models.MaxListLimit))
	}

	var filter *models.ScanFilter
	if status != nil {
		filter = &models.ScanFilter{Field: models.FieldStatus, Value: status.String()}
	}

	opCtx, cancel := s.opContext(ctx)
	defer cancel()
	items, err := s.store.Scan(opCtx, filter, limit)
	if err != nil {
		s.logger.Error("failed to list events", "error", err)
		return nil, classify("", err)
	}

	events := make([]models.Event, 0, len(items))
	for i := range items {
		if len(events) == limit {
			break
		}
		ev, err := toEvent(&items[i])
		if err != nil {
			return nil, err
		}
		events = append(events, *ev)
	}
	return events, nil
}

// Update applies the fields present in payload. eventId and createdAt are
// never written.
func (s *EventService) Update(ctx context.Context, id string, payload *models.UpdatePayload) (*models.Event, error) {
	if s.store == nil {
		return nil, unavailable()
	}
	if err := models.ValidateUpdate(payload); err != nil {
		return nil, err
	}
	if payload.Empty() {
		return nil, invalidArgument("No fields to update. Provide at least one field to update")
	}

	opCtx, cancel := s.opContext(ctx)
	defer cancel()

	existing, err := s.store.GetItem(opCtx, id)
	if err != nil {
		s.logger.Error("failed to check event", "event_id", id, "error", err)
		return nil, classify(id, err)
	}
	if existing == nil {
		return nil, notFound(id)
	}

	if payload.Date != nil && models.DateInPast(*payload.Date, s.now()) {
		s.logger.Warn("event date is in the past", "event_id", id, "date", *payload.Date)
	}

	fields := payload.SetFields()
	fields[models.FieldUpdatedAt] = helpers.Timestamp(s.now())
	expr, err := models.NewUpdateBuilder().SetAll(fields).Build()
	if err != nil {
		return nil, fmt.Errorf("build update for event %s: %w", id, err)
	}

	item, err := s.store.UpdateItem(opCtx, id, expr)
	if err != nil {
		s.logger.Error("failed to update event", "event_id", id, "fields", expr.Fields(), "error", err)
		return nil, classify(id, err)
	}

	event, err := toEvent(item)
	if err != nil {
		return nil, err
	}
	s.logger.Info("event updated", "event_id", id, "fields", expr.Fields())
	s.notify(ctx, TopicUpdated, event)
	return event, nil
}

func (s *EventService) Delete(ctx context.Context, id string) error {
	if s.store == nil {
		return unavailable()
	}
	opCtx, cancel := s.opContext(ctx)
	defer cancel()

	existing, err := s.store.GetItem(opCtx, id)
	if err != nil {
		s.logger.Error("failed to check event", "event_id", id, "error", err)
		return classify(id, err)
	}
	if existing == nil {
		return notFound(id)
	}

	if err := s.store.DeleteItem(opCtx, id); err != nil {
		s.logger.Error("failed to delete event", "event_id", id, "error", err)
		return classify(id, err)
	}

	s.logger.Info("event deleted", "event_id", id)
	s.notify(ctx, TopicDeleted, map[string]string{models.FieldEventID: id})
	return nil
}

func (s *EventService) Health(ctx context.Context) *models.HealthResponse {
	report := &models.HealthResponse{
		Status:    StatusDegraded,
		Database:  DatabaseDisconnected,
		Timestamp: helpers.Timestamp(s.now()),
	}
	if s.store == nil {
		return report
	}

	opCtx, cancel := s.opContext(ctx)
	defer cancel()
	if err := s.store.Ping(opCtx); err != nil {
		s.logger.Warn("database health check failed", "backend", s.store.Name(), "error", err)
		report.Database = DatabaseUnhealthy
		return report
	}
	report.Status = StatusHealthy
	report.Database = DatabaseHealthy
	return report
}

// notify publishes best-effort; a failure never reaches the caller.
func (s *EventService) notify(ctx context.Context, topic string, payload any) {
	if s.publisher == nil {
		return
	}
	pubCtx, cancel := s.opContext(context.WithoutCancel(ctx))
	defer cancel()
	if err := s.publisher.Publish(pubCtx, topic, payload); err != nil {
		s.logger.Warn("failed to publish event notification", "topic", topic, "error", err)
	}
}

func toEvent(item *models.EventItem) (*models.Event, error) {
	ev, err := item.ToEvent()
	if err != nil {
		return nil, fmt.Errorf("decode stored event: %w", err)
	}
	return ev, nil
}

// IsValidation reports whether err carries field validation failures.
func IsValidation(err error) bool {
	var verrs models.ValidationErrors
	return errors.As(err, &verrs)
}

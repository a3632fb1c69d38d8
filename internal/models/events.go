package models

import (
	"fmt"

	"github.com/joshua-takyi/events-api/internal/helpers"
)

type EventStatus int

const (
	StatusDraft EventStatus = iota
	StatusPublished
	StatusCancelled
	StatusCompleted
	StatusActive
)

// eventStatusNames is the wire representation of every status. Both
// directions of the mapping go through this table.
var eventStatusNames = map[EventStatus]string{
	StatusDraft:     "draft",
	StatusPublished: "published",
	StatusCancelled: "cancelled",
	StatusCompleted: "completed",
	StatusActive:    "active",
}

var eventStatusValues = func() map[string]EventStatus {
	m := make(map[string]EventStatus, len(eventStatusNames))
	for k, v := range eventStatusNames {
		m[v] = k
	}
	return m
}()

// ParseEventStatus maps a wire literal to its status. Matching is exact.
func ParseEventStatus(s string) (EventStatus, error) {
	st, ok := eventStatusValues[s]
	if !ok {
		return 0, fmt.Errorf("unknown event status %q", s)
	}
	return st, nil
}

func (s EventStatus) String() string {
	if name, ok := eventStatusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("EventStatus(%d)", int(s))
}

func (s EventStatus) Valid() bool {
	_, ok := eventStatusNames[s]
	return ok
}

func (s EventStatus) MarshalText() ([]byte, error) {
	name, ok := eventStatusNames[s]
	if !ok {
		return nil, fmt.Errorf("invalid event status %d", int(s))
	}
	return []byte(name), nil
}

func (s *EventStatus) UnmarshalText(b []byte) error {
	st, err := ParseEventStatus(string(b))
	if err != nil {
		return err
	}
	*s = st
	return nil
}

type Event struct {
	EventID     string      `json:"eventId"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Date        string      `json:"date"`
	Location    string      `json:"location"`
	Capacity    int         `json:"capacity"`
	Organizer   string      `json:"organizer"`
	Status      EventStatus `json:"status"`
	CreatedAt   string      `json:"createdAt"`
	UpdatedAt   string      `json:"updatedAt"`
}

// EventItem is the record as the stores persist it, with status as a plain
// string. The Mongo document id doubles as the event id.
type EventItem struct {
	EventID     string `json:"eventId" dynamodbav:"eventId" bson:"_id"`
	Title       string `json:"title" dynamodbav:"title" bson:"title"`
	Description string `json:"description" dynamodbav:"description" bson:"description"`
	Date        string `json:"date" dynamodbav:"date" bson:"date"`
	Location    string `json:"location" dynamodbav:"location" bson:"location"`
	Capacity    int    `json:"capacity" dynamodbav:"capacity" bson:"capacity"`
	Organizer   string `json:"organizer" dynamodbav:"organizer" bson:"organizer"`
	Status      string `json:"status" dynamodbav:"status" bson:"status"`
	CreatedAt   string `json:"createdAt" dynamodbav:"createdAt" bson:"createdAt"`
	UpdatedAt   string `json:"updatedAt" dynamodbav:"updatedAt" bson:"updatedAt"`
}

// Storage attribute names.
const (
	FieldEventID     = "eventId"
	FieldTitle       = "title"
	FieldDescription = "description"
	FieldDate        = "date"
	FieldLocation    = "location"
	FieldCapacity    = "capacity"
	FieldOrganizer   = "organizer"
	FieldStatus      = "status"
	FieldCreatedAt   = "createdAt"
	FieldUpdatedAt   = "updatedAt"
)

func NewEventItem(e *Event) *EventItem {
	return &EventItem{
		EventID:     e.EventID,
		Title:       e.Title,
		Description: e.Description,
		Date:        e.Date,
		Location:    e.Location,
		Capacity:    e.Capacity,
		Organizer:   e.Organizer,
		Status:      e.Status.String(),
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
}

// ToEvent converts a stored record, rejecting a status outside the table.
func (it *EventItem) ToEvent() (*Event, error) {
	st, err := ParseEventStatus(it.Status)
	if err != nil {
		return nil, fmt.Errorf("event %s: %w", it.EventID, err)
	}
	return &Event{
		EventID:     it.EventID,
		Title:       it.Title,
		Description: it.Description,
		Date:        it.Date,
		Location:    it.Location,
		Capacity:    it.Capacity,
		Organizer:   it.Organizer,
		Status:      st,
		CreatedAt:   it.CreatedAt,
		UpdatedAt:   it.UpdatedAt,
	}, nil
}

// CreationPayload is the body of POST /events. Pointers distinguish a
// missing field from an empty one.
type CreationPayload struct {
	EventID     *string `json:"eventId"`
	Title       *string `json:"title" validate:"required,min=1,max=200"`
	Description *string `json:"description" validate:"required,min=1,max=2000"`
	Date        *string `json:"date" validate:"required,isodate"`
	Location    *string `json:"location" validate:"required,min=1,max=500"`
	Capacity    *int    `json:"capacity" validate:"required,gt=0,lte=100000"`
	Organizer   *string `json:"organizer" validate:"required,min=1,max=200"`
	Status      *string `json:"status" validate:"omitnil,oneof=draft published cancelled completed active"`
}

func (p *CreationPayload) Normalize() {
	helpers.TrimPtr(p.Title)
	helpers.TrimPtr(p.Description)
	helpers.TrimPtr(p.Location)
	helpers.TrimPtr(p.Organizer)
}

// ResolvedStatus returns the requested status, or draft when none was sent.
// Call after validation.
func (p *CreationPayload) ResolvedStatus() EventStatus {
	if p.Status == nil {
		return StatusDraft
	}
	st, err := ParseEventStatus(*p.Status)
	if err != nil {
		return StatusDraft
	}
	return st
}

// UpdatePayload is the body of PUT /events/:id. Only non-nil fields are
// applied. eventId and createdAt are not part of it and are dropped on decode.
type UpdatePayload struct {
	Title       *string `json:"title" validate:"omitnil,min=1,max=200"`
	Description *string `json:"description" validate:"omitnil,min=1,max=2000"`
	Date        *string `json:"date" validate:"omitnil,isodate"`
	Location    *string `json:"location" validate:"omitnil,min=1,max=500"`
	Capacity    *int    `json:"capacity" validate:"omitnil,gt=0,lte=100000"`
	Organizer   *string `json:"organizer" validate:"omitnil,min=1,max=200"`
	Status      *string `json:"status" validate:"omitnil,oneof=draft published cancelled completed active"`
}

func (p *UpdatePayload) Normalize() {
	helpers.TrimPtr(p.Title)
	helpers.TrimPtr(p.Description)
	helpers.TrimPtr(p.Location)
	helpers.TrimPtr(p.Organizer)
}

// SetFields returns the explicitly present fields keyed by storage
// attribute name. Status is converted to EventStatus.
func (p *UpdatePayload) SetFields() map[string]any {
	out := make(map[string]any)
	if p.Title != nil {
		out[FieldTitle] = *p.Title
	}
	if p.Description != nil {
		out[FieldDescription] = *p.Description
	}
	if p.Date != nil {
		out[FieldDate] = *p.Date
	}
	if p.Location != nil {
		out[FieldLocation] = *p.Location
	}
	if p.Capacity != nil {
		out[FieldCapacity] = *p.Capacity
	}
	if p.Organizer != nil {
		out[FieldOrganizer] = *p.Organizer
	}
	if p.Status != nil {
		if st, err := ParseEventStatus(*p.Status); err == nil {
			out[FieldStatus] = st
		}
	}
	return out
}

func (p *UpdatePayload) Empty() bool {
	return p.Title == nil && p.Description == nil && p.Date == nil && p.Location == nil &&
		p.Capacity == nil && p.Organizer == nil && p.Status == nil
}

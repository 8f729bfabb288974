package dto

import "github.com/noah-isme/teamhub-go-api/internal/models"

// EventDraft is the payload for creating an event. Attendees are seeded by the
// data store and embedded in the create request.
type EventDraft struct {
	Title              string                 `json:"title" validate:"required,max=255"`
	Date               string                 `json:"event_date" validate:"required,datetime=2006-01-02"`
	Time               string                 `json:"event_time" validate:"max=32"`
	Location           string                 `json:"location" validate:"max=255"`
	Description        string                 `json:"description" validate:"max=2000"`
	GatherAvailability bool                   `json:"gather_availability"`
	Attendees          []models.EventAttendee `json:"attendees"`
}

// EventUpdateRequest is the full replacement payload for an event.
type EventUpdateRequest struct {
	ID                 int64                  `json:"id" validate:"required,gt=0"`
	Title              string                 `json:"title" validate:"required,max=255"`
	Date               string                 `json:"event_date" validate:"required,datetime=2006-01-02"`
	Time               string                 `json:"event_time" validate:"max=32"`
	Location           string                 `json:"location" validate:"max=255"`
	Description        string                 `json:"description" validate:"max=2000"`
	GatherAvailability bool                   `json:"gather_availability"`
	Attendees          []models.EventAttendee `json:"attendees" validate:"dive"`
}

// NewEventUpdateRequest converts an event into its update payload.
func NewEventUpdateRequest(event models.Event) EventUpdateRequest {
	return EventUpdateRequest{
		ID:                 event.ID,
		Title:              event.Title,
		Date:               event.Date,
		Time:               event.Time,
		Location:           event.Location,
		Description:        event.Description,
		GatherAvailability: event.GatherAvailability,
		Attendees:          event.Attendees,
	}
}

// Event converts the payload back into the model.
func (r EventUpdateRequest) Event() models.Event {
	return models.Event{
		ID:                 r.ID,
		Title:              r.Title,
		Date:               r.Date,
		Time:               r.Time,
		Location:           r.Location,
		Description:        r.Description,
		GatherAvailability: r.GatherAvailability,
		Attendees:          r.Attendees,
	}.Clone()
}

// VoteRequest casts the current member's attendance vote on an event.
type VoteRequest struct {
	Status string `json:"status" validate:"required,oneof=available not-available pending"`
}

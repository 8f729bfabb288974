package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/noah-isme/teamhub-go-api/internal/models"
)

// VotingEngine manages per (event, member) attendance votes. Any state may
// move to any other; there is no terminal state.
type VotingEngine interface {
	CastVote(ctx context.Context, eventID, memberID int64, memberName, status string) (models.Event, error)
	AttendeesByStatus(event models.Event, status string) []models.EventAttendee
	CurrentVote(event models.Event, memberID int64) (string, bool)
}

type votingEngine struct {
	store  DataStore
	logger zerolog.Logger
}

// NewVotingEngine builds the voting engine on top of the data store.
func NewVotingEngine(store DataStore, logger zerolog.Logger) VotingEngine {
	return &votingEngine{
		store:  store,
		logger: logger.With().Str("component", "voting_engine").Logger(),
	}
}

// CastVote sets memberID's status on the event, appending an attendee when
// the member has none. Casting the current status again writes nothing.
func (v *votingEngine) CastVote(ctx context.Context, eventID, memberID int64, memberName, status string) (models.Event, error) {
	if !models.IsValidAttendeeStatus(status) {
		return models.Event{}, fmt.Errorf("%w: unknown attendance status %q", ErrValidation, status)
	}

	event, ok := v.store.Event(eventID)
	if !ok {
		return models.Event{}, ErrEventNotFound
	}

	index := -1
	for i, attendee := range event.Attendees {
		if attendee.MemberID == memberID {
			index = i
			break
		}
	}

	switch {
	case index >= 0 && event.Attendees[index].Status == status:
		return event, nil
	case index >= 0:
		event.Attendees[index].Status = status
	default:
		event.Attendees = append(event.Attendees, models.EventAttendee{
			MemberID: memberID,
			Name:     memberName,
			Status:   status,
		})
	}

	updated, err := v.store.UpdateEvent(ctx, event)
	if err != nil {
		v.logger.Error().Err(err).Int64("event_id", eventID).Int64("member_id", memberID).Msg("failed to cast vote")
		return models.Event{}, err
	}

	v.logger.Debug().Int64("event_id", eventID).Int64("member_id", memberID).Str("status", status).Msg("vote cast")
	return updated, nil
}

func (v *votingEngine) AttendeesByStatus(event models.Event, status string) []models.EventAttendee {
	matched := make([]models.EventAttendee, 0)
	for _, attendee := range event.Attendees {
		if attendee.Status == status {
			matched = append(matched, attendee)
		}
	}
	return matched
}

// CurrentVote reports the member's recorded status. Members without an
// attendee record have no vote, not a synthetic pending one.
func (v *votingEngine) CurrentVote(event models.Event, memberID int64) (string, bool) {
	for _, attendee := range event.Attendees {
		if attendee.MemberID == memberID {
			return attendee.Status, true
		}
	}
	return "", false
}

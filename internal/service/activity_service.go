package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/noah-isme/teamhub-go-api/internal/dto"
	"github.com/noah-isme/teamhub-go-api/internal/models"
	"github.com/noah-isme/teamhub-go-api/internal/repository"
)

// Audited actions. No other mutation produces an activity entry.
const (
	ActionItemAdded    = "added new item"
	ActionItemBroken   = "marked item as broken"
	ActionEventCreated = "created event"
)

const (
	fallbackActorName   = "Current User"
	fallbackActorAvatar = "CU"
)

// Actor is the member a logged activity is attributed to.
type Actor struct {
	ID     int64
	Name   string
	Avatar string
}

// ActorSource reports the currently signed in actor.
type ActorSource interface {
	Actor() Actor
}

// ActivitySink receives confirmed activity entries.
type ActivitySink interface {
	AddActivity(entry models.Activity)
}

// ActivityLog turns audited mutations into persisted activity entries.
type ActivityLog interface {
	Record(ctx context.Context, action, item string) (models.Activity, error)
}

type activityLog struct {
	repo   repository.Collection[models.Activity]
	sink   ActivitySink
	actors ActorSource
	logger zerolog.Logger
}

// NewActivityLog constructs the activity log.
func NewActivityLog(repo repository.Collection[models.Activity], sink ActivitySink, actors ActorSource, logger zerolog.Logger) ActivityLog {
	return &activityLog{
		repo:   repo,
		sink:   sink,
		actors: actors,
		logger: logger.With().Str("component", "activity_log").Logger(),
	}
}

// Record persists the entry remotely and, once confirmed, prepends the
// server's copy to the local activities. A failed create adds nothing.
func (l *activityLog) Record(ctx context.Context, action, item string) (models.Activity, error) {
	if strings.TrimSpace(action) == "" {
		return models.Activity{}, fmt.Errorf("action is required")
	}

	actor := Actor{}
	if l.actors != nil {
		actor = l.actors.Actor()
	}
	if strings.TrimSpace(actor.Name) == "" {
		actor.Name = fallbackActorName
	}
	if strings.TrimSpace(actor.Avatar) == "" {
		actor.Avatar = fallbackActorAvatar
	}

	draft := dto.ActivityDraft{
		User:   actor.Name,
		Action: action,
		Item:   item,
		Avatar: actor.Avatar,
	}

	entry, err := l.repo.Create(ctx, draft)
	if err != nil {
		l.logger.Error().Err(err).Str("action", action).Msg("failed to persist activity")
		return models.Activity{}, err
	}
	if entry.ID == 0 {
		return models.Activity{}, fmt.Errorf("%w: activity create returned no id", repository.ErrNetworkFailure)
	}

	l.sink.AddActivity(entry)
	return entry, nil
}

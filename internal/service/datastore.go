package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/noah-isme/teamhub-go-api/internal/dto"
	"github.com/noah-isme/teamhub-go-api/internal/models"
	"github.com/noah-isme/teamhub-go-api/internal/repository"
)

var (
	// ErrValidation marks caller supplied payloads rejected before any network call.
	ErrValidation = errors.New("validation failed")
	// ErrEventNotFound indicates the event is not in the local snapshot.
	ErrEventNotFound = errors.New("event not found")
)

// DataStore is the single in-memory snapshot of the session's collections.
// Local state only changes after the remote side confirms a mutation.
type DataStore interface {
	Load(ctx context.Context) error
	Refresh(ctx context.Context) error

	AddInventoryItem(ctx context.Context, draft dto.InventoryDraft) (models.InventoryItem, error)
	UpdateInventoryItem(ctx context.Context, item models.InventoryItem) (models.InventoryItem, error)
	DeleteInventoryItem(ctx context.Context, id int64) error

	AddEvent(ctx context.Context, draft dto.EventDraft) (models.Event, error)
	UpdateEvent(ctx context.Context, event models.Event) (models.Event, error)
	DeleteEvent(ctx context.Context, id int64) error

	ActivitySink
	TrackMember(member models.TeamMember)

	Snapshot() Snapshot
	Inventory() []models.InventoryItem
	Events() []models.Event
	Event(id int64) (models.Event, bool)
	Activities() []models.Activity
	TeamMembers() []models.TeamMember
	Subscribe() (<-chan Snapshot, func())
}

// DataStoreOptions tunes data store behaviour.
type DataStoreOptions struct {
	// LocalOnlyEvents skips the remote round trip for event updates and
	// deletes, for remotes that only accept list and create on events.
	// Without it the store still falls back to local commits once the
	// remote answers 405 for an event write.
	LocalOnlyEvents bool
}

type dataStore struct {
	repos     repository.Collections
	validator *validator.Validate
	activity  ActivityLog
	broker    *snapshotBroker
	opts      DataStoreOptions
	logger    zerolog.Logger

	eventWritesRejected atomic.Bool

	mu          sync.RWMutex
	inventory   []models.InventoryItem
	events      []models.Event
	activities  []models.Activity
	teamMembers []models.TeamMember
}

// NewDataStore builds an empty data store. Activity entries are attributed to
// whoever actors reports as signed in.
func NewDataStore(repos repository.Collections, actors ActorSource, validate *validator.Validate, opts DataStoreOptions, logger zerolog.Logger) DataStore {
	s := &dataStore{
		repos:       repos,
		validator:   validate,
		broker:      newSnapshotBroker(),
		opts:        opts,
		logger:      logger.With().Str("component", "data_store").Logger(),
		inventory:   []models.InventoryItem{},
		events:      []models.Event{},
		activities:  []models.Activity{},
		teamMembers: []models.TeamMember{},
	}
	s.activity = NewActivityLog(repos.Activities, s, actors, logger)
	return s
}

func (s *dataStore) Load(ctx context.Context) error {
	var (
		group errgroup.Group
		errs  [4]error
	)

	group.Go(func() error {
		items, err := s.repos.Inventory.List(ctx)
		if err != nil {
			errs[0] = fmt.Errorf("load %s: %w", repository.TableInventory, err)
			return nil
		}
		s.commit(func() { s.inventory = items })
		return nil
	})
	group.Go(func() error {
		events, err := s.repos.Events.List(ctx)
		if err != nil {
			errs[1] = fmt.Errorf("load %s: %w", repository.TableEvents, err)
			return nil
		}
		s.commit(func() { s.events = events })
		return nil
	})
	group.Go(func() error {
		activities, err := s.repos.Activities.List(ctx)
		if err != nil {
			errs[2] = fmt.Errorf("load %s: %w", repository.TableActivities, err)
			return nil
		}
		s.commit(func() { s.activities = activities })
		return nil
	})
	group.Go(func() error {
		members, err := s.repos.TeamMembers.List(ctx)
		if err != nil {
			errs[3] = fmt.Errorf("load %s: %w", repository.TableTeamMembers, err)
			return nil
		}
		s.commit(func() { s.teamMembers = members })
		return nil
	})
	_ = group.Wait()

	err := errors.Join(errs[:]...)
	if err != nil {
		s.logger.Warn().Err(err).Msg("partial load, keeping previous snapshots for failed collections")
	}
	return err
}

func (s *dataStore) Refresh(ctx context.Context) error {
	return s.Load(ctx)
}

func (s *dataStore) AddInventoryItem(ctx context.Context, draft dto.InventoryDraft) (models.InventoryItem, error) {
	if err := s.validator.Struct(draft); err != nil {
		return models.InventoryItem{}, fmt.Errorf("%w: %w", ErrValidation, err)
	}

	created, err := s.repos.Inventory.Create(ctx, draft)
	if err != nil {
		s.logger.Error().Err(err).Str("name", draft.Name).Msg("failed to create inventory item")
		return models.InventoryItem{}, err
	}

	s.commit(func() { s.inventory = append(s.inventory, created) })

	s.recordActivity(ctx, ActionItemAdded, created.Name)
	return created, nil
}

func (s *dataStore) UpdateInventoryItem(ctx context.Context, item models.InventoryItem) (models.InventoryItem, error) {
	if err := s.validator.Struct(dto.NewInventoryUpdateRequest(item)); err != nil {
		return models.InventoryItem{}, fmt.Errorf("%w: %w", ErrValidation, err)
	}

	updated, err := s.repos.Inventory.Update(ctx, item.ID, dto.NewInventoryUpdateRequest(item))
	if err != nil {
		s.logger.Error().Err(err).Int64("item_id", item.ID).Msg("failed to update inventory item")
		return models.InventoryItem{}, err
	}
	if updated.ID == 0 {
		updated = item
	}

	var (
		prior models.InventoryItem
		found bool
	)
	s.commit(func() {
		for i := range s.inventory {
			if s.inventory[i].ID == updated.ID {
				prior, found = s.inventory[i], true
				s.inventory[i] = updated
				break
			}
		}
	})

	if found && !prior.IsBroken() && updated.IsBroken() {
		s.recordActivity(ctx, ActionItemBroken, updated.Name)
	}
	return updated, nil
}

func (s *dataStore) DeleteInventoryItem(ctx context.Context, id int64) error {
	if err := s.repos.Inventory.Remove(ctx, id); err != nil {
		s.logger.Error().Err(err).Int64("item_id", id).Msg("failed to delete inventory item")
		return err
	}

	s.commit(func() {
		kept := make([]models.InventoryItem, 0, len(s.inventory))
		for _, item := range s.inventory {
			if item.ID != id {
				kept = append(kept, item)
			}
		}
		s.inventory = kept
	})
	return nil
}

func (s *dataStore) AddEvent(ctx context.Context, draft dto.EventDraft) (models.Event, error) {
	if err := s.validator.Struct(draft); err != nil {
		return models.Event{}, fmt.Errorf("%w: %w", ErrValidation, err)
	}

	draft.Attendees = []models.EventAttendee{}
	if draft.GatherAvailability {
		for _, member := range s.TeamMembers() {
			draft.Attendees = append(draft.Attendees, models.EventAttendee{
				MemberID: member.ID,
				Name:     member.Name,
				Status:   models.AttendeeStatusPending,
			})
		}
	}

	created, err := s.repos.Events.Create(ctx, draft)
	if err != nil {
		s.logger.Error().Err(err).Str("title", draft.Title).Msg("failed to create event")
		return models.Event{}, err
	}
	// The remote persists attendees separately and only joins them on list.
	if len(created.Attendees) == 0 {
		created.Attendees = draft.Attendees
	}

	s.commit(func() { s.events = append(s.events, created.Clone()) })

	s.recordActivity(ctx, ActionEventCreated, created.Title)
	return created, nil
}

func (s *dataStore) UpdateEvent(ctx context.Context, event models.Event) (models.Event, error) {
	if _, ok := s.Event(event.ID); !ok {
		return models.Event{}, ErrEventNotFound
	}
	if err := uniqueAttendees(event.Attendees); err != nil {
		return models.Event{}, err
	}

	updated := event.Clone()
	if s.remoteEventWrites() {
		remote, err := s.repos.Events.Update(ctx, event.ID, dto.NewEventUpdateRequest(event))
		switch {
		case s.eventWriteRejected(err):
		case err != nil:
			s.logger.Error().Err(err).Int64("event_id", event.ID).Msg("failed to update event")
			return models.Event{}, err
		case remote.ID != 0:
			if remote.Attendees == nil {
				remote.Attendees = updated.Attendees
			}
			updated = remote.Clone()
		}
	}

	s.commit(func() {
		for i := range s.events {
			if s.events[i].ID == updated.ID {
				s.events[i] = updated.Clone()
				break
			}
		}
	})
	return updated, nil
}

func (s *dataStore) DeleteEvent(ctx context.Context, id int64) error {
	if _, ok := s.Event(id); !ok {
		return ErrEventNotFound
	}

	if s.remoteEventWrites() {
		if err := s.repos.Events.Remove(ctx, id); err != nil && !s.eventWriteRejected(err) {
			s.logger.Error().Err(err).Int64("event_id", id).Msg("failed to delete event")
			return err
		}
	}

	s.commit(func() {
		kept := make([]models.Event, 0, len(s.events))
		for _, event := range s.events {
			if event.ID != id {
				kept = append(kept, event)
			}
		}
		s.events = kept
	})
	return nil
}

// AddActivity prepends a confirmed entry. Only the activity log calls it.
func (s *dataStore) AddActivity(entry models.Activity) {
	s.commit(func() {
		s.activities = append([]models.Activity{entry}, s.activities...)
	})
}

// TrackMember records a member that the remote already persisted, such as a
// fresh registration.
func (s *dataStore) TrackMember(member models.TeamMember) {
	s.commit(func() {
		for i := range s.teamMembers {
			if s.teamMembers[i].ID == member.ID {
				s.teamMembers[i] = member
				return
			}
		}
		s.teamMembers = append(s.teamMembers, member)
	})
}

func (s *dataStore) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

func (s *dataStore) Inventory() []models.InventoryItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.InventoryItem{}, s.inventory...)
}

func (s *dataStore) Events() []models.Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneEvents(s.events)
}

func (s *dataStore) Event(id int64) (models.Event, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, event := range s.events {
		if event.ID == id {
			return event.Clone(), true
		}
	}
	return models.Event{}, false
}

func (s *dataStore) Activities() []models.Activity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Activity{}, s.activities...)
}

func (s *dataStore) TeamMembers() []models.TeamMember {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.TeamMember{}, s.teamMembers...)
}

// Subscribe delivers the current snapshot immediately and then the newest
// snapshot after each commit. Call the returned func to unsubscribe.
func (s *dataStore) Subscribe() (<-chan Snapshot, func()) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.broker.subscribe(s.snapshotLocked())
}

// commit applies mutate under the write lock and publishes the result. The
// last commit to land wins.
func (s *dataStore) commit(mutate func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	mutate()
	s.broker.publish(s.snapshotLocked())
}

func (s *dataStore) snapshotLocked() Snapshot {
	return Snapshot{
		Inventory:   append([]models.InventoryItem{}, s.inventory...),
		Events:      cloneEvents(s.events),
		Activities:  append([]models.Activity{}, s.activities...),
		TeamMembers: append([]models.TeamMember{}, s.teamMembers...),
	}
}

func (s *dataStore) remoteEventWrites() bool {
	return !s.opts.LocalOnlyEvents && !s.eventWritesRejected.Load()
}

// eventWriteRejected reports whether err is the remote refusing event writes
// altogether. Once seen, later event writes stay local.
func (s *dataStore) eventWriteRejected(err error) bool {
	var remoteErr *repository.RemoteError
	if !errors.As(err, &remoteErr) || remoteErr.Status != http.StatusMethodNotAllowed {
		return false
	}
	if s.eventWritesRejected.CompareAndSwap(false, true) {
		s.logger.Warn().Err(err).Msg("remote does not accept event writes, committing event changes locally")
	}
	return true
}

func (s *dataStore) recordActivity(ctx context.Context, action, item string) {
	if _, err := s.activity.Record(ctx, action, item); err != nil {
		s.logger.Warn().Err(err).Str("action", action).Str("item", item).Msg("activity entry not recorded")
	}
}

func cloneEvents(events []models.Event) []models.Event {
	cloned := make([]models.Event, 0, len(events))
	for _, event := range events {
		cloned = append(cloned, event.Clone())
	}
	return cloned
}

func uniqueAttendees(attendees []models.EventAttendee) error {
	seen := make(map[int64]struct{}, len(attendees))
	for _, attendee := range attendees {
		if _, dup := seen[attendee.MemberID]; dup {
			return fmt.Errorf("%w: duplicate attendee for member %d", ErrValidation, attendee.MemberID)
		}
		seen[attendee.MemberID] = struct{}{}
	}
	return nil
}

package repository

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/teamhub-go-api/internal/dto"
	"github.com/noah-isme/teamhub-go-api/internal/models"
	"github.com/noah-isme/teamhub-go-api/internal/observability"
	"github.com/noah-isme/teamhub-go-api/internal/testutil"
)

func newClient(t *testing.T, baseURL string) *Client {
	t.Helper()
	client, err := NewClient(ClientConfig{BaseURL: baseURL, Logger: zerolog.Nop()})
	require.NoError(t, err)
	return client
}

func TestNewClientRequiresBaseURL(t *testing.T) {
	_, err := NewClient(ClientConfig{BaseURL: "  "})
	require.Error(t, err)
}

func TestCollectionRoundTrip(t *testing.T) {
	remote := testutil.NewRemote(t)
	remote.SetNextID(10)
	inventory := NewCollections(newClient(t, remote.URL()+"/")).Inventory
	ctx := context.Background()

	items, err := inventory.List(ctx)
	require.NoError(t, err)
	require.NotNil(t, items)
	require.Empty(t, items)

	created, err := inventory.Create(ctx, dto.InventoryDraft{
		Name:      "Ultrasonic Sensor",
		ControlID: "SNS-2",
		Quantity:  2,
		Status:    models.InventoryStatusAvailable,
		Type:      models.InventoryTypeSensors,
	})
	require.NoError(t, err)
	require.Equal(t, int64(10), created.ID)
	require.Equal(t, "SNS-2", created.ControlID)

	created.Quantity = 1
	updated, err := inventory.Update(ctx, created.ID, dto.NewInventoryUpdateRequest(created))
	require.NoError(t, err)
	require.Equal(t, 1, updated.Quantity)
	require.Equal(t, created.ID, updated.ID)

	items, err = inventory.List(ctx)
	require.NoError(t, err)
	require.Equal(t, []models.InventoryItem{updated}, items)

	require.NoError(t, inventory.Remove(ctx, created.ID))
	require.Empty(t, remote.Rows(TableInventory))
	require.Equal(t, 1, remote.Calls(TableInventory, http.MethodDelete))
}

func TestEventCollectionJoinsAttendeesOnList(t *testing.T) {
	remote := testutil.NewRemote(t)
	events := NewCollections(newClient(t, remote.URL())).Events
	ctx := context.Background()

	draft := dto.EventDraft{
		Title:              "Qualifier",
		Date:               "2026-12-05",
		GatherAvailability: true,
		Attendees:          []models.EventAttendee{{MemberID: 1, Name: "Sarah Chen", Status: models.AttendeeStatusPending}},
	}
	created, err := events.Create(ctx, draft)
	require.NoError(t, err)
	require.Empty(t, created.Attendees)

	listed, err := events.List(ctx)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	require.Equal(t, "2026-12-05", listed[0].Date)
	require.True(t, listed[0].GatherAvailability)
	require.Equal(t, draft.Attendees, listed[0].Attendees)
}

func TestInventoryDeleteKeepsEventAttendees(t *testing.T) {
	remote := testutil.NewRemote(t)
	remote.Seed(t, TableEvents, models.Event{
		ID:        5,
		Title:     "Qualifier",
		Date:      "2026-12-05",
		Attendees: []models.EventAttendee{{MemberID: 1, Name: "Sarah Chen", Status: models.AttendeeStatusAvailable}},
	})
	remote.Seed(t, TableInventory, models.InventoryItem{ID: 5, Name: "Axle", Status: models.InventoryStatusAvailable, Type: models.InventoryTypeMetal})
	collections := NewCollections(newClient(t, remote.URL()))
	ctx := context.Background()

	require.NoError(t, collections.Inventory.Remove(ctx, 5))

	events, err := collections.Events.List(ctx)
	require.NoError(t, err)
	require.Len(t, events, 1)
	require.Len(t, events[0].Attendees, 1)
}

func TestEventWritesRejectedUnlessAllowed(t *testing.T) {
	remote := testutil.NewRemote(t)
	events := NewCollections(newClient(t, remote.URL())).Events
	ctx := context.Background()

	created, err := events.Create(ctx, dto.EventDraft{Title: "Qualifier", Date: "2026-12-05"})
	require.NoError(t, err)

	created.Location = "Arena"
	_, err = events.Update(ctx, created.ID, dto.NewEventUpdateRequest(created))
	var remoteErr *RemoteError
	require.True(t, errors.As(err, &remoteErr))
	require.Equal(t, http.StatusMethodNotAllowed, remoteErr.Status)

	err = events.Remove(ctx, created.ID)
	require.True(t, errors.As(err, &remoteErr))
	require.Equal(t, http.StatusMethodNotAllowed, remoteErr.Status)

	remote.AllowEventWrites()
	updated, err := events.Update(ctx, created.ID, dto.NewEventUpdateRequest(created))
	require.NoError(t, err)
	require.Equal(t, "Arena", updated.Location)
	require.NoError(t, events.Remove(ctx, created.ID))
}

func TestRemoteErrorCarriesStatusAndMessage(t *testing.T) {
	remote := testutil.NewRemote(t)
	remote.Fail(TableInventory, http.MethodPost, http.StatusInternalServerError)
	inventory := NewCollections(newClient(t, remote.URL())).Inventory

	_, err := inventory.Create(context.Background(), dto.InventoryDraft{Name: "Axle"})
	require.ErrorIs(t, err, ErrNetworkFailure)

	var remoteErr *RemoteError
	require.True(t, errors.As(err, &remoteErr))
	require.Equal(t, TableInventory, remoteErr.Table)
	require.Equal(t, "create", remoteErr.Op)
	require.Equal(t, http.StatusInternalServerError, remoteErr.Status)
	require.Equal(t, "simulated failure", remoteErr.Message)
}

func TestTransportErrorHasZeroStatus(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	_, err := NewCollections(newClient(t, url)).TeamMembers.List(context.Background())
	require.ErrorIs(t, err, ErrNetworkFailure)

	var remoteErr *RemoteError
	require.True(t, errors.As(err, &remoteErr))
	require.Zero(t, remoteErr.Status)
	require.Error(t, remoteErr.Unwrap())
}

func TestCorrelationIDForwarded(t *testing.T) {
	var seen string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = r.Header.Get("X-Correlation-ID")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[]`))
	}))
	t.Cleanup(server.Close)

	ctx := observability.ContextWithCorrelation(context.Background(), "corr-42")
	_, err := NewCollections(newClient(t, server.URL)).Activities.List(ctx)
	require.NoError(t, err)
	require.Equal(t, "corr-42", seen)
}

func TestPlainTextErrorBodyBecomesMessage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad gateway upstream", http.StatusBadGateway)
	}))
	t.Cleanup(server.Close)

	_, err := NewCollections(newClient(t, server.URL)).Events.List(context.Background())

	var remoteErr *RemoteError
	require.True(t, errors.As(err, &remoteErr))
	require.Equal(t, "bad gateway upstream", remoteErr.Message)
}

func TestWithIDMergesIntoObject(t *testing.T) {
	body, err := withID(7, map[string]any{"name": "Chassis", "id": 1})
	require.NoError(t, err)
	require.Equal(t, int64(7), body["id"])
	require.Equal(t, "Chassis", body["name"])

	_, err = withID(7, []int{1, 2})
	require.Error(t, err)
}

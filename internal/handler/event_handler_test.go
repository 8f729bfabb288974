package handler_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/teamhub-go-api/internal/dto"
	"github.com/noah-isme/teamhub-go-api/internal/models"
	"github.com/noah-isme/teamhub-go-api/internal/repository"
	"github.com/noah-isme/teamhub-go-api/internal/service"
)

func practiceDraft(gather bool) dto.EventDraft {
	return dto.EventDraft{
		Title:              "Practice <i>Session</i>",
		Date:               "2026-11-02",
		Time:               "15:00",
		Location:           "Room 204",
		Description:        "Drive practice",
		GatherAvailability: gather,
	}
}

func createEvent(t *testing.T, h *harness, token string, gather bool) models.Event {
	t.Helper()
	resp, env := h.do(t, http.MethodPost, "/api/v1/events", token, practiceDraft(gather))
	require.Equal(t, fiber.StatusCreated, resp.StatusCode, env.Message)

	var event models.Event
	decodeData(t, env, &event)
	return event
}

func TestEventHandler_CreateSeedsPendingAttendees(t *testing.T) {
	h := newHarness(t, service.DataStoreOptions{})
	token := h.login(t, coachEmail)

	event := createEvent(t, h, token, true)
	require.Equal(t, "Practice Session", event.Title)
	require.Len(t, event.Attendees, rosterMembers)
	for _, attendee := range event.Attendees {
		require.Equal(t, models.AttendeeStatusPending, attendee.Status)
	}

	activities := h.store.Activities()
	require.Len(t, activities, 1)
	require.Equal(t, service.ActionEventCreated, activities[0].Action)
	require.Equal(t, "Practice Session", activities[0].Item)
}

func TestEventHandler_CreateForbiddenForBuilder(t *testing.T) {
	h := newHarness(t, service.DataStoreOptions{})
	token := h.login(t, builderEmail)

	resp, _ := h.do(t, http.MethodPost, "/api/v1/events", token, practiceDraft(false))
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	require.Zero(t, h.remote.Calls(repository.TableEvents, http.MethodPost))
}

func TestEventHandler_VoteAndFilterAttendees(t *testing.T) {
	h := newHarness(t, service.DataStoreOptions{})
	event := createEvent(t, h, h.login(t, coachEmail), true)

	token := h.login(t, driverEmail)
	path := fmt.Sprintf("/api/v1/events/%d", event.ID)

	resp, env := h.do(t, http.MethodPost, path+"/votes", token, dto.VoteRequest{Status: models.AttendeeStatusAvailable})
	require.Equal(t, fiber.StatusOK, resp.StatusCode, env.Message)

	resp, env = h.do(t, http.MethodGet, path+"/attendees?status=available", token, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var available []models.EventAttendee
	decodeData(t, env, &available)
	require.Len(t, available, 1)
	require.Equal(t, h.members[driverEmail], available[0].MemberID)
	require.Equal(t, driverName, available[0].Name)

	resp, env = h.do(t, http.MethodGet, path+"/votes/me", token, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var vote map[string]string
	decodeData(t, env, &vote)
	require.Equal(t, models.AttendeeStatusAvailable, vote["status"])

	// The vote reached the remote attendee rows.
	rows := h.remote.Rows(repository.TableEvents)
	require.Len(t, rows, 1)
	require.Len(t, rows[0]["attendees"], rosterMembers)
}

func TestEventHandler_VoteRejectsUnknownStatus(t *testing.T) {
	h := newHarness(t, service.DataStoreOptions{})
	event := createEvent(t, h, h.login(t, coachEmail), false)
	token := h.login(t, driverEmail)

	resp, _ := h.do(t, http.MethodPost, fmt.Sprintf("/api/v1/events/%d/votes", event.ID), token, map[string]string{"status": "maybe"})
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp, _ = h.do(t, http.MethodGet, fmt.Sprintf("/api/v1/events/%d/attendees?status=maybe", event.ID), token, nil)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp, _ = h.do(t, http.MethodPost, "/api/v1/events/999/votes", token, dto.VoteRequest{Status: models.AttendeeStatusPending})
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestEventHandler_UpdateKeepsVotesWhenAttendeesOmitted(t *testing.T) {
	h := newHarness(t, service.DataStoreOptions{})
	h.remote.AllowEventWrites()
	token := h.login(t, coachEmail)
	event := createEvent(t, h, token, true)

	path := fmt.Sprintf("/api/v1/events/%d", event.ID)
	resp, _ := h.do(t, http.MethodPost, path+"/votes", token, dto.VoteRequest{Status: models.AttendeeStatusNotAvailable})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	update := map[string]interface{}{
		"title":      "Scrimmage",
		"event_date": "2026-11-03",
		"location":   "Gym",
	}
	resp, env := h.do(t, http.MethodPut, path, token, update)
	require.Equal(t, fiber.StatusOK, resp.StatusCode, env.Message)

	stored, ok := h.store.Event(event.ID)
	require.True(t, ok)
	require.Equal(t, "Scrimmage", stored.Title)
	require.Len(t, stored.Attendees, rosterMembers)
	for _, attendee := range stored.Attendees {
		if attendee.MemberID == h.members[coachEmail] {
			require.Equal(t, models.AttendeeStatusNotAvailable, attendee.Status)
		}
	}
	require.Equal(t, 2, h.remote.Calls(repository.TableEvents, http.MethodPut))
}

func TestEventHandler_DeleteRoundTrips(t *testing.T) {
	h := newHarness(t, service.DataStoreOptions{})
	h.remote.AllowEventWrites()
	token := h.login(t, coachEmail)
	event := createEvent(t, h, token, false)

	resp, _ := h.do(t, http.MethodDelete, fmt.Sprintf("/api/v1/events/%d", event.ID), token, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Empty(t, h.store.Events())
	require.Equal(t, 1, h.remote.Calls(repository.TableEvents, http.MethodDelete))

	resp, _ = h.do(t, http.MethodGet, fmt.Sprintf("/api/v1/events/%d", event.ID), token, nil)
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestEventHandler_LocalOnlyDeleteSkipsRemote(t *testing.T) {
	h := newHarness(t, service.DataStoreOptions{LocalOnlyEvents: true})
	token := h.login(t, coachEmail)
	event := createEvent(t, h, token, false)

	resp, _ := h.do(t, http.MethodDelete, fmt.Sprintf("/api/v1/events/%d", event.ID), token, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Empty(t, h.store.Events())
	require.Zero(t, h.remote.Calls(repository.TableEvents, http.MethodDelete))
	require.Len(t, h.remote.Rows(repository.TableEvents), 1)
}

func TestEventHandler_UpdateValidatesPayload(t *testing.T) {
	h := newHarness(t, service.DataStoreOptions{})
	token := h.login(t, coachEmail)
	event := createEvent(t, h, token, false)

	resp, env := h.do(t, http.MethodPut, fmt.Sprintf("/api/v1/events/%d", event.ID), token, map[string]string{"event_date": "11/03/2026"})
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	require.Equal(t, "required", env.Details["Title"])
	require.Equal(t, "datetime", env.Details["Date"])
	require.Zero(t, h.remote.Calls(repository.TableEvents, http.MethodPut))
}

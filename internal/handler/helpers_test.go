package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/teamhub-go-api/internal/config"
	"github.com/noah-isme/teamhub-go-api/internal/dto"
	"github.com/noah-isme/teamhub-go-api/internal/handler"
	"github.com/noah-isme/teamhub-go-api/internal/middleware"
	"github.com/noah-isme/teamhub-go-api/internal/models"
	"github.com/noah-isme/teamhub-go-api/internal/repository"
	"github.com/noah-isme/teamhub-go-api/internal/router"
	"github.com/noah-isme/teamhub-go-api/internal/service"
	"github.com/noah-isme/teamhub-go-api/internal/testutil"
)

const testSecret = "handler-secret"

// Roster seeded for every harness, with the password shared by all accounts.
const (
	coachEmail    = "jordan@vex.test"
	driverEmail   = "sarah@vex.test"
	builderEmail  = "mike@vex.test"
	testPassword  = "secret123"
	coachName     = "Jordan Lee"
	driverName    = "Sarah Chen"
	builderName   = "Mike Johnson"
	rosterMembers = 3
)

type harness struct {
	app     *fiber.App
	remote  *testutil.Remote
	store   service.DataStore
	session service.AuthSession
	members map[string]int64
}

type envelope struct {
	Success bool              `json:"success"`
	Message string            `json:"message"`
	Data    json.RawMessage   `json:"data"`
	Details map[string]string `json:"details"`
}

func newHarness(t *testing.T, opts service.DataStoreOptions) *harness {
	t.Helper()

	remote := testutil.NewRemote(t)
	ids := remote.Seed(t, repository.TableTeamMembers,
		models.TeamMember{Name: coachName, Email: coachEmail, Role: models.RoleCoach, Status: models.MemberStatusOnline, Avatar: "JL"},
		models.TeamMember{Name: driverName, Email: driverEmail, Role: "Driver", Status: models.MemberStatusOnline, Avatar: "SC"},
		models.TeamMember{Name: builderName, Email: builderEmail, Role: models.RoleBuilder, Status: models.MemberStatusOffline},
	)
	members := map[string]int64{coachEmail: ids[0], driverEmail: ids[1], builderEmail: ids[2]}
	for email, id := range members {
		remote.SeedAccount(email, testPassword, id)
	}

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	logger := zerolog.Nop()
	client, err := repository.NewClient(repository.ClientConfig{BaseURL: remote.URL(), Logger: logger})
	require.NoError(t, err)

	validate := validator.New(validator.WithRequiredStructEnabled())
	session := service.NewAuthSession(repository.NewRemoteAuthenticator(client), repository.NewRedisSessionStore(rdb, ""), validate, logger)
	store := service.NewDataStore(repository.NewCollections(client), session, validate, opts, logger)
	require.NoError(t, store.Load(context.Background()))
	voting := service.NewVotingEngine(store, logger)

	app := fiber.New()
	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, config.Config{AppName: "TeamHub API", AppEnv: "test"}, router.Dependencies{
		SessionHandler:   handler.NewSessionHandler(session, store, handler.SessionConfig{Secret: testSecret, TokenTTL: time.Hour}, logger),
		SnapshotHandler:  handler.NewSnapshotHandler(store, logger),
		InventoryHandler: handler.NewInventoryHandler(store, logger),
		EventHandler:     handler.NewEventHandler(store, voting, validate, logger),
		ActivityHandler:  handler.NewActivityHandler(store, logger),
		TeamHandler:      handler.NewTeamHandler(store),
		Session:          session,
		JWTMiddleware:    middleware.JWTProtected(testSecret),
	})

	return &harness{app: app, remote: remote, store: store, session: session, members: members}
}

func (h *harness) do(t *testing.T, method, path, token string, body interface{}) (*http.Response, envelope) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := h.app.Test(req, -1)
	require.NoError(t, err)

	var env envelope
	if resp.StatusCode != fiber.StatusNoContent {
		decodeEnvelope(t, resp, &env)
	}
	return resp, env
}

func (h *harness) login(t *testing.T, email string) string {
	t.Helper()
	resp, env := h.do(t, http.MethodPost, "/api/v1/auth/login", "", dto.LoginRequest{Email: email, Password: testPassword})
	require.Equal(t, fiber.StatusOK, resp.StatusCode, env.Message)

	var payload dto.LoginResponse
	require.NoError(t, json.Unmarshal(env.Data, &payload))
	require.NotEmpty(t, payload.Token)
	return payload.Token
}

func decodeEnvelope(t *testing.T, resp *http.Response, target *envelope) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(target))
}

func decodeData(t *testing.T, env envelope, target interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(env.Data, target))
}

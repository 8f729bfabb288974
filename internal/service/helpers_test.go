package service

import (
	"context"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/teamhub-go-api/internal/models"
	"github.com/noah-isme/teamhub-go-api/internal/repository"
	"github.com/noah-isme/teamhub-go-api/internal/testutil"
)

type staticActor struct {
	actor Actor
}

func (s staticActor) Actor() Actor {
	return s.actor
}

func testLogger() zerolog.Logger {
	return zerolog.Nop()
}

func newTestClient(t *testing.T, remote *testutil.Remote) *repository.Client {
	t.Helper()
	client, err := repository.NewClient(repository.ClientConfig{BaseURL: remote.URL(), Logger: testLogger()})
	require.NoError(t, err)
	return client
}

func newTestStore(t *testing.T, remote *testutil.Remote, opts DataStoreOptions) DataStore {
	t.Helper()
	actor := staticActor{actor: Actor{ID: 1, Name: "Jordan Lee", Avatar: "JL"}}
	validate := validator.New(validator.WithRequiredStructEnabled())
	return NewDataStore(repository.NewCollections(newTestClient(t, remote)), actor, validate, opts, testLogger())
}

func seedRoster(t *testing.T, remote *testutil.Remote) []int64 {
	t.Helper()
	return remote.Seed(t, repository.TableTeamMembers,
		models.TeamMember{Name: "Sarah Chen", Role: "Driver", Status: models.MemberStatusOnline, Avatar: "SC"},
		models.TeamMember{Name: "Mike Johnson", Role: "Programmer", Status: models.MemberStatusOnline, Avatar: "MJ"},
		models.TeamMember{Name: "Jordan Lee", Role: "Coach", Status: models.MemberStatusOffline, Avatar: "JL"},
	)
}

func loadedStore(t *testing.T, remote *testutil.Remote, opts DataStoreOptions) DataStore {
	t.Helper()
	store := newTestStore(t, remote, opts)
	require.NoError(t, store.Load(context.Background()))
	return store
}

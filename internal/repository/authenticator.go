package repository

import (
	"context"
	"net/http"
	"net/url"

	"github.com/noah-isme/teamhub-go-api/internal/dto"
	"github.com/noah-isme/teamhub-go-api/internal/models"
)

// Authenticator verifies credentials and registers members. Credential
// checking lives entirely on the remote side.
type Authenticator interface {
	Authenticate(ctx context.Context, email, password string) (models.TeamMember, error)
	Register(ctx context.Context, draft dto.MemberDraft) (models.TeamMember, error)
}

type remoteAuthenticator struct {
	client *Client
}

// NewRemoteAuthenticator builds an authenticator backed by the remote auth
// endpoint and the team_members table.
func NewRemoteAuthenticator(client *Client) Authenticator {
	return &remoteAuthenticator{client: client}
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (a *remoteAuthenticator) Authenticate(ctx context.Context, email, password string) (models.TeamMember, error) {
	var member models.TeamMember
	err := a.client.call(ctx, "auth", "authenticate", http.MethodPost, "/api/auth", credentials{Email: email, Password: password}, &member)
	if err != nil {
		return models.TeamMember{}, err
	}
	return member, nil
}

func (a *remoteAuthenticator) Register(ctx context.Context, draft dto.MemberDraft) (models.TeamMember, error) {
	path := "/api/db?" + url.Values{"table": {TableTeamMembers}}.Encode()

	var member models.TeamMember
	if err := a.client.call(ctx, TableTeamMembers, "register", http.MethodPost, path, draft, &member); err != nil {
		return models.TeamMember{}, err
	}
	return member, nil
}

package dto

import "github.com/noah-isme/teamhub-go-api/internal/models"

// LoginRequest carries credentials forwarded to the remote authenticator.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RegisterRequest carries the signup profile forwarded to the remote roster.
type RegisterRequest struct {
	Name     string `json:"name" validate:"required,max=255"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Role     string `json:"role" validate:"required,max=64"`
}

// MemberDraft is the roster payload posted on registration.
type MemberDraft struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
	Status   string `json:"status"`
	Avatar   string `json:"avatar"`
}

// SessionProfile is the public profile of the signed in member. It is the
// only session state persisted client side.
type SessionProfile struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	Avatar string `json:"avatar"`
}

// NewSessionProfile builds a profile from a roster entry, deriving initials
// when the member has no avatar.
func NewSessionProfile(member models.TeamMember, email string) SessionProfile {
	avatar := member.Avatar
	if avatar == "" {
		avatar = models.Initials(member.Name)
	}
	if email == "" {
		email = member.Email
	}
	return SessionProfile{
		ID:     member.ID,
		Name:   member.Name,
		Email:  email,
		Role:   member.Role,
		Avatar: avatar,
	}
}

// LoginResponse is returned by the facade after a successful login or signup.
type LoginResponse struct {
	Token   string         `json:"token"`
	Profile SessionProfile `json:"profile"`
}

package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/noah-isme/teamhub-go-api/internal/dto"
	"github.com/noah-isme/teamhub-go-api/internal/models"
	"github.com/noah-isme/teamhub-go-api/internal/repository"
)

// ErrNotAuthenticated indicates no member is signed in.
var ErrNotAuthenticated = errors.New("not authenticated")

// AuthSession holds the identity of the signed in member.
type AuthSession interface {
	ActorSource
	Restore(ctx context.Context) (dto.SessionProfile, error)
	Login(ctx context.Context, req dto.LoginRequest) (dto.SessionProfile, error)
	Register(ctx context.Context, req dto.RegisterRequest) (dto.SessionProfile, models.TeamMember, error)
	Logout(ctx context.Context) error
	Current() (dto.SessionProfile, bool)
}

type authSession struct {
	auth      repository.Authenticator
	store     repository.SessionStore
	validator *validator.Validate
	logger    zerolog.Logger

	mu      sync.RWMutex
	current *dto.SessionProfile
}

// NewAuthSession constructs the session holder.
func NewAuthSession(auth repository.Authenticator, store repository.SessionStore, validate *validator.Validate, logger zerolog.Logger) AuthSession {
	return &authSession{
		auth:      auth,
		store:     store,
		validator: validate,
		logger:    logger.With().Str("component", "auth_session").Logger(),
	}
}

// Restore rehydrates the cached profile. It returns ErrNotAuthenticated when
// nothing is cached.
func (s *authSession) Restore(ctx context.Context) (dto.SessionProfile, error) {
	profile, err := s.store.Load(ctx)
	if err != nil {
		if errors.Is(err, repository.ErrNoSession) {
			return dto.SessionProfile{}, ErrNotAuthenticated
		}
		return dto.SessionProfile{}, err
	}

	s.setCurrent(&profile)
	s.logger.Info().Int64("member_id", profile.ID).Msg("session restored")
	return profile, nil
}

func (s *authSession) Login(ctx context.Context, req dto.LoginRequest) (dto.SessionProfile, error) {
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := s.validator.Struct(req); err != nil {
		return dto.SessionProfile{}, fmt.Errorf("%w: %w", ErrValidation, err)
	}

	member, err := s.auth.Authenticate(ctx, req.Email, req.Password)
	if err != nil {
		s.logger.Warn().Err(err).Msg("authentication failed")
		return dto.SessionProfile{}, err
	}

	profile := dto.NewSessionProfile(member, req.Email)
	s.persist(ctx, profile)
	return profile, nil
}

func (s *authSession) Register(ctx context.Context, req dto.RegisterRequest) (dto.SessionProfile, models.TeamMember, error) {
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Name = strings.TrimSpace(req.Name)
	if err := s.validator.Struct(req); err != nil {
		return dto.SessionProfile{}, models.TeamMember{}, fmt.Errorf("%w: %w", ErrValidation, err)
	}

	draft := dto.MemberDraft{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
		Status:   models.MemberStatusOnline,
		Avatar:   models.Initials(req.Name),
	}

	member, err := s.auth.Register(ctx, draft)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to register member")
		return dto.SessionProfile{}, models.TeamMember{}, err
	}

	profile := dto.NewSessionProfile(member, req.Email)
	s.persist(ctx, profile)
	return profile, member, nil
}

func (s *authSession) Logout(ctx context.Context) error {
	s.setCurrent(nil)
	if err := s.store.Clear(ctx); err != nil {
		s.logger.Warn().Err(err).Msg("failed to clear cached session")
		return err
	}
	return nil
}

func (s *authSession) Current() (dto.SessionProfile, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return dto.SessionProfile{}, false
	}
	return *s.current, true
}

func (s *authSession) Actor() Actor {
	profile, ok := s.Current()
	if !ok {
		return Actor{}
	}
	return Actor{ID: profile.ID, Name: profile.Name, Avatar: profile.Avatar}
}

// persist makes the profile current and caches it. A cache failure only
// costs rehydration on the next start.
func (s *authSession) persist(ctx context.Context, profile dto.SessionProfile) {
	s.setCurrent(&profile)
	if err := s.store.Save(ctx, profile); err != nil {
		s.logger.Warn().Err(err).Int64("member_id", profile.ID).Msg("failed to cache session")
	}
}

func (s *authSession) setCurrent(profile *dto.SessionProfile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = profile
}

package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/noah-isme/teamhub-go-api/internal/dto"
)

// ErrNoSession is returned when no profile is cached.
var ErrNoSession = errors.New("no cached session")

// SessionStore persists the signed in member's public profile between runs.
type SessionStore interface {
	Load(ctx context.Context) (dto.SessionProfile, error)
	Save(ctx context.Context, profile dto.SessionProfile) error
	Clear(ctx context.Context) error
}

type redisSessionStore struct {
	client *redis.Client
	key    string
}

// NewRedisSessionStore stores the profile under teamhub:session:<name>.
func NewRedisSessionStore(client *redis.Client, name string) SessionStore {
	if name == "" {
		name = "vex_user"
	}
	return &redisSessionStore{client: client, key: "teamhub:session:" + name}
}

func (s *redisSessionStore) Load(ctx context.Context) (dto.SessionProfile, error) {
	raw, err := s.client.Get(ctx, s.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return dto.SessionProfile{}, ErrNoSession
		}
		return dto.SessionProfile{}, fmt.Errorf("read session: %w", err)
	}

	var profile dto.SessionProfile
	if err := json.Unmarshal(raw, &profile); err != nil {
		return dto.SessionProfile{}, fmt.Errorf("decode session: %w", err)
	}
	return profile, nil
}

func (s *redisSessionStore) Save(ctx context.Context, profile dto.SessionProfile) error {
	payload, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := s.client.Set(ctx, s.key, payload, 0).Err(); err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	return nil
}

func (s *redisSessionStore) Clear(ctx context.Context) error {
	if err := s.client.Del(ctx, s.key).Err(); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

package cachesessionrepo

import (
	"context"
	"docshare/internal/entities"
	"docshare/internal/models"
	cacherepo "docshare/internal/repositories/cache"
	"encoding/json"
	"fmt"
	"time"
)

const pkg = "cacheSessionRepo/"

const keyPrefix = "session:"

type repository struct {
	cache      cacherepo.Cache
	sessionTTL time.Duration
}

func New(cache cacherepo.Cache, sessionTTL time.Duration) *repository {
	return &repository{
		cache:      cache,
		sessionTTL: sessionTTL,
	}
}

func Key(token string) string {
	return keyPrefix + token
}

// SaveSession binds token to user for the session TTL.
func (r *repository) SaveSession(ctx context.Context, token string, user *models.User) error {
	op := pkg + "SaveSession"

	payload, err := json.Marshal(entities.NewSession(user))
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := r.cache.Set(ctx, Key(token), string(payload), r.sessionTTL).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (r *repository) DeleteSession(ctx context.Context, token string) error {
	op := pkg + "DeleteSession"

	deleted, err := r.cache.Del(ctx, Key(token)).Result()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if deleted == 0 {
		return models.ErrSessionNotFound
	}

	return nil
}

// UserByToken returns models.ErrSessionNotFound for unknown or expired tokens.
func (r *repository) UserByToken(ctx context.Context, token string) (*models.User, error) {
	op := pkg + "UserByToken"

	raw, err := r.cache.Get(ctx, Key(token)).Result()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if raw == "" {
		return nil, models.ErrSessionNotFound
	}

	var session entities.Session
	if err := json.Unmarshal([]byte(raw), &session); err != nil {
		return nil, fmt.Errorf("%s: corrupt session: %w", op, err)
	}

	return session.ToModel(), nil
}

// Package session binds opaque tokens to authenticated user identities.
// A token that does not resolve to a live user always degrades to anonymous,
// never to an error: stale cookies must not break the site.
package session

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"studyrooms/internal/storage"
)

// TokenStore persists token-to-user bindings.
type TokenStore interface {
	CreateSession(ctx context.Context, token string, userID int64) error
	SessionUserID(ctx context.Context, token string) (int64, error)
	DeleteSession(ctx context.Context, token string) error
}

// UserLoader resolves a persisted user id back to a user.
type UserLoader interface {
	ByID(ctx context.Context, id int64) (storage.User, error)
}

// Manager establishes and tears down the authenticated identity of a request.
type Manager struct {
	store TokenStore
	users UserLoader
}

func NewManager(store TokenStore, users UserLoader) *Manager {
	return &Manager{store: store, users: users}
}

// Start issues a new opaque token bound to user.ID. Call only after the
// caller's credentials have been verified.
func (m *Manager) Start(ctx context.Context, user storage.User) (string, error) {
	token := uuid.New().String()
	if err := m.store.CreateSession(ctx, token, user.ID); err != nil {
		return "", err
	}
	return token, nil
}

// Resolve maps a token back to its user. An empty or unknown token, or a bound
// user that no longer exists, yields (nil, nil) — the anonymous identity.
func (m *Manager) Resolve(ctx context.Context, token string) (*storage.User, error) {
	if token == "" {
		return nil, nil
	}

	userID, err := m.store.SessionUserID(ctx, token)
	if err != nil {
		if errors.Is(err, storage.ErrSessionNotExist) {
			return nil, nil
		}
		return nil, err
	}

	user, err := m.users.ByID(ctx, userID)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotExist) {
			return nil, nil
		}
		return nil, err
	}

	return &user, nil
}

// End clears the binding. Ending an absent or already-ended session is a no-op.
func (m *Manager) End(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return m.store.DeleteSession(ctx, token)
}

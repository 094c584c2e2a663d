package storage

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v4"
)

// CreateSession persists the binding of an opaque token to a user id.
func (s *Store) CreateSession(ctx context.Context, token string, userID int64) error {
	s.logger.Debugf("Creating session for user (id: %d)", userID)

	sql := "insert into sessions (token, user_id, created_at) values ($1, $2, $3)"
	_, err := s.db.Exec(ctx, sql, token, userID, time.Now().UTC())
	return err
}

// SessionUserID resolves a token back to the bound user id, or ErrSessionNotExist.
func (s *Store) SessionUserID(ctx context.Context, token string) (int64, error) {
	var id int64
	err := s.db.QueryRow(ctx, "select user_id from sessions where token = $1", token).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrSessionNotExist
		}
		return 0, err
	}
	return id, nil
}

// DeleteSession removes the binding. Deleting an absent session is a no-op.
func (s *Store) DeleteSession(ctx context.Context, token string) error {
	_, err := s.db.Exec(ctx, "delete from sessions where token = $1", token)
	return err
}

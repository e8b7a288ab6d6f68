package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/roomledger/roomledger/internal/storage"
)

// CreateAuthToken stores a single-use verification or reset token.
func (s *SQLiteStore) CreateAuthToken(ctx context.Context, token, userID, purpose string, expiresAt int64) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO auth_tokens (token, user_id, purpose, expires_at) VALUES (?, ?, ?, ?)",
		token, userID, purpose, expiresAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert auth token: %w", err)
	}
	return nil
}

// ConsumeAuthToken looks up a token for the given purpose, deletes it, and
// returns its user. Unknown, mismatched, and expired tokens all surface as
// ErrTokenInvalid; expired tokens are deleted on the way out too.
func (s *SQLiteStore) ConsumeAuthToken(ctx context.Context, token, purpose string) (string, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var userID string
	var expiresAt int64
	err = tx.QueryRowContext(ctx,
		"SELECT user_id, expires_at FROM auth_tokens WHERE token = ? AND purpose = ?",
		token, purpose,
	).Scan(&userID, &expiresAt)
	if err == sql.ErrNoRows {
		return "", storage.ErrTokenInvalid
	}
	if err != nil {
		return "", fmt.Errorf("failed to get auth token: %w", err)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM auth_tokens WHERE token = ?", token); err != nil {
		return "", fmt.Errorf("failed to delete auth token: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit token consumption: %w", err)
	}

	if time.Now().Unix() > expiresAt {
		return "", storage.ErrTokenInvalid
	}
	return userID, nil
}

package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/roomledger/roomledger/internal/models"
	"github.com/roomledger/roomledger/internal/storage"
)

// CreateUser inserts a new user into the database.
func (s *SQLiteStore) CreateUser(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (id, email, display_name, password_hash, verified, room_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		user.ID,
		user.Email,
		user.DisplayName,
		user.PasswordHash,
		boolToInt(user.Verified),
		nullString(user.RoomID),
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE") {
			return storage.ErrEmailExists
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

// GetUserByEmail retrieves a user by their email address.
func (s *SQLiteStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getUser(ctx, "email = ?", email)
}

// GetUserByID retrieves a user by their ID.
func (s *SQLiteStore) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	return s.getUser(ctx, "id = ?", id)
}

func (s *SQLiteStore) getUser(ctx context.Context, where string, arg any) (*models.User, error) {
	query := `
		SELECT id, email, display_name, password_hash, verified, room_id, created_at, updated_at
		FROM users
		WHERE ` + where

	user := &models.User{}
	var verified int
	var roomID sql.NullString
	err := s.db.QueryRowContext(ctx, query, arg).Scan(
		&user.ID,
		&user.Email,
		&user.DisplayName,
		&user.PasswordHash,
		&verified,
		&roomID,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, storage.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	user.Verified = verified != 0
	if roomID.Valid {
		user.RoomID = roomID.String
	}
	return user, nil
}

// MarkUserVerified flips the user's email-verified flag.
func (s *SQLiteStore) MarkUserVerified(ctx context.Context, userID string) error {
	return s.updateUser(ctx, userID, "verified = 1")
}

// UpdateUserPassword replaces the user's password hash.
func (s *SQLiteStore) UpdateUserPassword(ctx context.Context, userID, passwordHash string) error {
	return s.updateUser(ctx, userID, "password_hash = ?", passwordHash)
}

// SetUserRoom points the user at the given room.
func (s *SQLiteStore) SetUserRoom(ctx context.Context, userID, roomID string) error {
	return s.updateUser(ctx, userID, "room_id = ?", roomID)
}

func (s *SQLiteStore) updateUser(ctx context.Context, userID, set string, args ...any) error {
	query := fmt.Sprintf("UPDATE users SET %s, updated_at = ? WHERE id = ?", set)
	args = append(args, time.Now().Unix(), userID)

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if n == 0 {
		return storage.ErrUserNotFound
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

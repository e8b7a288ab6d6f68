package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/roomledger/roomledger/internal/models"
	"github.com/roomledger/roomledger/internal/storage"
)

// CreateRoom persists a new room. The creator is not added to the roster
// here; callers add members explicitly via AddRoomMember.
func (s *SQLiteStore) CreateRoom(ctx context.Context, room *models.Room) error {
	if room.ID == "" {
		room.ID = uuid.New().String()
	}
	if room.CreatedAt == 0 {
		room.CreatedAt = time.Now().Unix()
	}

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO rooms (id, name, code, created_by, created_at) VALUES (?, ?, ?, ?, ?)",
		room.ID, room.Name, room.Code, room.CreatedBy, room.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert room: %w", err)
	}
	return nil
}

// GetRoom retrieves a room by ID, including its member roster.
func (s *SQLiteStore) GetRoom(ctx context.Context, roomID string) (*models.Room, error) {
	return s.getRoom(ctx, "id = ?", roomID)
}

// GetRoomByCode retrieves a room by its join code.
func (s *SQLiteStore) GetRoomByCode(ctx context.Context, code string) (*models.Room, error) {
	return s.getRoom(ctx, "code = ?", code)
}

func (s *SQLiteStore) getRoom(ctx context.Context, where string, arg any) (*models.Room, error) {
	room := &models.Room{}
	err := s.db.QueryRowContext(ctx,
		"SELECT id, name, code, created_by, created_at FROM rooms WHERE "+where,
		arg,
	).Scan(&room.ID, &room.Name, &room.Code, &room.CreatedBy, &room.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, storage.ErrRoomNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get room: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT u.id, u.display_name, u.email
		FROM room_members rm
		JOIN users u ON u.id = rm.user_id
		WHERE rm.room_id = ?
		ORDER BY u.display_name, u.id`,
		room.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get room members: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var m models.RoomMember
		if err := rows.Scan(&m.UserID, &m.Name, &m.Email); err != nil {
			return nil, fmt.Errorf("failed to scan room member: %w", err)
		}
		room.Members = append(room.Members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate room members: %w", err)
	}

	return room, nil
}

// AddRoomMember puts a user on a room's roster. Adding an existing member is
// a no-op.
func (s *SQLiteStore) AddRoomMember(ctx context.Context, roomID, userID string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO room_members (room_id, user_id) VALUES (?, ?)
		ON CONFLICT (room_id, user_id) DO NOTHING`,
		roomID, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to add room member: %w", err)
	}
	return nil
}

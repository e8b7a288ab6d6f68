package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/roomledger/roomledger/internal/auth"
	"github.com/roomledger/roomledger/internal/models"
	"github.com/roomledger/roomledger/internal/storage"
)

var (
	ErrAlreadyInRoom = errors.New("user already belongs to a room")
	ErrRoomNameEmpty = errors.New("room name must not be empty")
)

// RoomService handles room creation, joining, and roster lookups. Creating
// or joining a room re-issues the session token so it carries the room ID.
type RoomService struct {
	store storage.Store
	jwt   *auth.JWTManager
}

// NewRoomService creates a new RoomService.
func NewRoomService(store storage.Store, jwt *auth.JWTManager) *RoomService {
	return &RoomService{store: store, jwt: jwt}
}

// CreateRoom creates a room with the caller as its first member and returns
// the room plus a fresh session token carrying the room ID.
func (s *RoomService) CreateRoom(ctx context.Context, userID, name string) (*models.Room, string, error) {
	if strings.TrimSpace(name) == "" {
		return nil, "", ErrRoomNameEmpty
	}

	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		return nil, "", err
	}
	if user.RoomID != "" {
		return nil, "", ErrAlreadyInRoom
	}

	room := &models.Room{
		Name:      strings.TrimSpace(name),
		Code:      newJoinCode(),
		CreatedBy: userID,
	}
	if err := s.store.CreateRoom(ctx, room); err != nil {
		return nil, "", fmt.Errorf("failed to create room: %w", err)
	}

	token, err := s.enroll(ctx, user, room)
	if err != nil {
		return nil, "", err
	}
	slog.Info("room created", "room_id", room.ID, "user_id", userID)

	created, err := s.store.GetRoom(ctx, room.ID)
	if err != nil {
		return nil, "", err
	}
	return created, token, nil
}

// JoinRoom adds the caller to the room with the given join code.
func (s *RoomService) JoinRoom(ctx context.Context, userID, code string) (*models.Room, string, error) {
	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		return nil, "", err
	}
	if user.RoomID != "" {
		return nil, "", ErrAlreadyInRoom
	}

	room, err := s.store.GetRoomByCode(ctx, strings.ToUpper(strings.TrimSpace(code)))
	if err != nil {
		return nil, "", err
	}

	token, err := s.enroll(ctx, user, room)
	if err != nil {
		return nil, "", err
	}
	slog.Info("user joined room", "room_id", room.ID, "user_id", userID)

	joined, err := s.store.GetRoom(ctx, room.ID)
	if err != nil {
		return nil, "", err
	}
	return joined, token, nil
}

// GetRoom returns a room with its roster.
func (s *RoomService) GetRoom(ctx context.Context, roomID string) (*models.Room, error) {
	return s.store.GetRoom(ctx, roomID)
}

func (s *RoomService) enroll(ctx context.Context, user *models.User, room *models.Room) (string, error) {
	if err := s.store.AddRoomMember(ctx, room.ID, user.ID); err != nil {
		return "", err
	}
	if err := s.store.SetUserRoom(ctx, user.ID, room.ID); err != nil {
		return "", err
	}

	user.RoomID = room.ID
	token, err := s.jwt.Generate(user)
	if err != nil {
		return "", fmt.Errorf("failed to refresh session token: %w", err)
	}
	return token, nil
}

// newJoinCode returns a short, uppercase code roommates can type.
func newJoinCode() string {
	return strings.ToUpper(uuid.New().String()[:8])
}

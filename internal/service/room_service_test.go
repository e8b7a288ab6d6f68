package service

import (
	"context"
	"errors"
	"testing"

	"github.com/roomledger/roomledger/internal/models"
	"github.com/roomledger/roomledger/internal/storage"
)

func (e *testEnv) seedUser(t *testing.T, id string) {
	t.Helper()
	u := models.NewUser(id+"@example.com", id, "hash")
	u.ID = id
	u.Verified = true
	if err := e.store.CreateUser(context.Background(), u); err != nil {
		t.Fatalf("CreateUser(%s) failed: %v", id, err)
	}
}

func TestCreateRoom(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.seedUser(t, "alice")

	room, token, err := env.rooms.CreateRoom(ctx, "alice", "  Elm St Apartment ")
	if err != nil {
		t.Fatalf("CreateRoom failed: %v", err)
	}

	if room.Name != "Elm St Apartment" {
		t.Errorf("name = %q, want trimmed", room.Name)
	}
	if len(room.Code) != 8 {
		t.Errorf("join code = %q, want 8 characters", room.Code)
	}
	if len(room.Members) != 1 || room.Members[0].UserID != "alice" {
		t.Errorf("roster = %+v, want just alice", room.Members)
	}

	claims, err := env.jwt.Validate(token)
	if err != nil {
		t.Fatalf("refreshed token does not validate: %v", err)
	}
	if claims.RoomID != room.ID {
		t.Errorf("token room id = %s, want %s", claims.RoomID, room.ID)
	}

	t.Run("cannot create a second room", func(t *testing.T) {
		_, _, err := env.rooms.CreateRoom(ctx, "alice", "Another")
		if !errors.Is(err, ErrAlreadyInRoom) {
			t.Errorf("error = %v, want %v", err, ErrAlreadyInRoom)
		}
	})

	t.Run("empty name rejected", func(t *testing.T) {
		env.seedUser(t, "dave")
		if _, _, err := env.rooms.CreateRoom(ctx, "dave", "   "); !errors.Is(err, ErrRoomNameEmpty) {
			t.Errorf("error = %v, want %v", err, ErrRoomNameEmpty)
		}
	})
}

func TestJoinRoom(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.seedUser(t, "alice")
	env.seedUser(t, "bob")

	room, _, err := env.rooms.CreateRoom(ctx, "alice", "Flat")
	if err != nil {
		t.Fatalf("CreateRoom failed: %v", err)
	}

	t.Run("join by code, case-insensitive", func(t *testing.T) {
		joined, token, err := env.rooms.JoinRoom(ctx, "bob", " "+room.Code+" ")
		if err != nil {
			t.Fatalf("JoinRoom failed: %v", err)
		}
		if joined.ID != room.ID {
			t.Errorf("joined room = %s, want %s", joined.ID, room.ID)
		}
		if len(joined.Members) != 2 {
			t.Errorf("roster size = %d, want 2", len(joined.Members))
		}

		claims, err := env.jwt.Validate(token)
		if err != nil {
			t.Fatalf("token does not validate: %v", err)
		}
		if claims.RoomID != room.ID {
			t.Errorf("token room id = %s, want %s", claims.RoomID, room.ID)
		}
	})

	t.Run("unknown code", func(t *testing.T) {
		env.seedUser(t, "carol")
		if _, _, err := env.rooms.JoinRoom(ctx, "carol", "NOSUCHRM"); !errors.Is(err, storage.ErrRoomNotFound) {
			t.Errorf("error = %v, want %v", err, storage.ErrRoomNotFound)
		}
	})

	t.Run("cannot join twice", func(t *testing.T) {
		if _, _, err := env.rooms.JoinRoom(ctx, "bob", room.Code); !errors.Is(err, ErrAlreadyInRoom) {
			t.Errorf("error = %v, want %v", err, ErrAlreadyInRoom)
		}
	})
}

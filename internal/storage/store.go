// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/roomledger/roomledger/internal/ledger"
	"github.com/roomledger/roomledger/internal/models"
)

var (
	ErrUserNotFound  = errors.New("user not found")
	ErrRoomNotFound  = errors.New("room not found")
	ErrEntryNotFound = errors.New("entry not found")
	ErrEmailExists   = errors.New("email already registered")

	// ErrBalanceRowMissing signals a data-integrity fault: a settlement
	// touched a pair whose balance record was never initialized by entry
	// creation. Settlements must not create rows.
	ErrBalanceRowMissing = errors.New("no balance record exists for this pair")

	// ErrAlreadySettled is returned when a member's share is already paid.
	ErrAlreadySettled = errors.New("member has already settled this entry")

	// ErrTokenInvalid covers unknown, expired, and already-consumed
	// verification/reset tokens.
	ErrTokenInvalid = errors.New("token is invalid or expired")
)

// Store defines the persistence operations the services need. The entry
// mutations take precomputed balance deltas and apply them together with the
// entry write in a single transaction, so the entries table and the pair
// balances can never disagree after a partial failure.
type Store interface {
	// Users.
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	MarkUserVerified(ctx context.Context, userID string) error
	UpdateUserPassword(ctx context.Context, userID, passwordHash string) error
	SetUserRoom(ctx context.Context, userID, roomID string) error

	// Rooms.
	CreateRoom(ctx context.Context, room *models.Room) error
	GetRoom(ctx context.Context, roomID string) (*models.Room, error)
	GetRoomByCode(ctx context.Context, code string) (*models.Room, error)
	AddRoomMember(ctx context.Context, roomID, userID string) error

	// Entries. CreateEntry persists the entry, ensures a balance record
	// exists for every pair of participants, and applies the deltas, all
	// in one transaction. DeleteEntry applies the reversal deltas and
	// removes the entry atomically.
	CreateEntry(ctx context.Context, entry *models.Entry, deltas []ledger.Delta) error
	GetEntry(ctx context.Context, entryID string) (*models.Entry, error)
	ListEntries(ctx context.Context, roomID string, limit, offset int) ([]*models.Entry, int, error)
	SettleEntryMember(ctx context.Context, entryID, memberID string, delta ledger.Delta) error
	DeleteEntry(ctx context.Context, entryID string, deltas []ledger.Delta) error

	// Balances.
	GetLedger(ctx context.Context, roomID, userID string) (*models.Ledger, error)
	GetPairBalance(ctx context.Context, roomID, userA, userB string) (int64, error)

	// Single-use auth tokens for email verification and password reset.
	CreateAuthToken(ctx context.Context, token, userID, purpose string, expiresAt int64) error
	ConsumeAuthToken(ctx context.Context, token, purpose string) (userID string, err error)

	// Close releases any resources held by the store.
	Close() error
}

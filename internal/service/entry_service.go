package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/roomledger/roomledger/internal/ledger"
	"github.com/roomledger/roomledger/internal/metrics"
	"github.com/roomledger/roomledger/internal/models"
	"github.com/roomledger/roomledger/internal/storage"
)

var (
	ErrNotRoomMember = errors.New("user is not a member of this room")
	ErrNotEntryPayer = errors.New("only the payer may delete an entry")
	ErrWrongRoom     = errors.New("entry belongs to a different room")
	ErrValidation    = errors.New("invalid entry")
)

// CreateEntryInput is the payload for recording a new expense entry.
type CreateEntryInput struct {
	Description string
	Amount      int64
	Date        int64
	// MemberIDs selects which roommates split this entry. The payer is
	// included automatically if omitted.
	MemberIDs []string
}

// EntryService implements the entry lifecycle: create, settle, delete, list.
// Every mutation derives its balance deltas up front and hands them to the
// store, which applies them with the entry write in one transaction.
type EntryService struct {
	store storage.Store
}

// NewEntryService creates a new EntryService.
func NewEntryService(store storage.Store) *EntryService {
	return &EntryService{store: store}
}

// CreateEntry validates and records an expense paid by payerID, splitting it
// among the selected room members.
func (s *EntryService) CreateEntry(ctx context.Context, roomID, payerID string, in CreateEntryInput) (*models.Entry, error) {
	if strings.TrimSpace(in.Description) == "" {
		return nil, fmt.Errorf("%w: description must not be empty", ErrValidation)
	}

	room, err := s.store.GetRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if !room.HasMember(payerID) {
		return nil, ErrNotRoomMember
	}

	members, err := resolveMembers(room, payerID, in.MemberIDs)
	if err != nil {
		return nil, err
	}

	entry := &models.Entry{
		RoomID:      roomID,
		Date:        in.Date,
		Description: strings.TrimSpace(in.Description),
		Amount:      in.Amount,
		PaidBy:      payerID,
		Members:     members,
	}

	deltas, err := ledger.EntryDeltas(entry)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	if err := s.store.CreateEntry(ctx, entry, deltas); err != nil {
		metrics.BalanceUpdateFailures.Inc()
		slog.Error("CreateEntry failed", "room_id", roomID, "payer_id", payerID, "error", err)
		return nil, err
	}
	metrics.BalanceUpdateDuration.Observe(time.Since(start).Seconds())
	metrics.EntriesCreated.Inc()

	slog.Info("entry created",
		"entry_id", entry.ID,
		"room_id", roomID,
		"payer_id", payerID,
		"amount", entry.Amount,
		"members", len(entry.Members),
	)
	return entry, nil
}

// ListEntries returns one page of a room's entries, newest first, plus the
// total count.
func (s *EntryService) ListEntries(ctx context.Context, roomID string, page, limit int) ([]*models.Entry, int, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if page < 1 {
		page = 1
	}
	return s.store.ListEntries(ctx, roomID, limit, (page-1)*limit)
}

// SettleMember marks the caller's share of an entry as paid and decrements
// the pair balance with the payer. Members settle only their own share.
func (s *EntryService) SettleMember(ctx context.Context, roomID, entryID, callerID string) (*models.Entry, error) {
	entry, err := s.store.GetEntry(ctx, entryID)
	if err != nil {
		return nil, err
	}
	if entry.RoomID != roomID {
		return nil, ErrWrongRoom
	}

	delta, err := ledger.SettlementDelta(entry, callerID)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	if err := s.store.SettleEntryMember(ctx, entryID, callerID, delta); err != nil {
		if errors.Is(err, storage.ErrBalanceRowMissing) {
			metrics.BalanceUpdateFailures.Inc()
			slog.Error("settlement hit uninitialized balance record",
				"entry_id", entryID, "member_id", callerID, "error", err)
		}
		return nil, err
	}
	metrics.BalanceUpdateDuration.Observe(time.Since(start).Seconds())
	metrics.EntriesSettled.Inc()

	slog.Info("member settled share", "entry_id", entryID, "member_id", callerID)
	return s.store.GetEntry(ctx, entryID)
}

// DeleteEntry removes an entry and reverses its balance effect. Only the
// payer may delete, and the reversal uses the stored snapshot so it is an
// exact inverse of the creation regardless of later roster changes.
func (s *EntryService) DeleteEntry(ctx context.Context, roomID, entryID, callerID string) error {
	entry, err := s.store.GetEntry(ctx, entryID)
	if err != nil {
		return err
	}
	if entry.RoomID != roomID {
		return ErrWrongRoom
	}
	if entry.PaidBy != callerID {
		return ErrNotEntryPayer
	}

	deltas, err := ledger.ReversalDeltas(entry)
	if err != nil {
		return err
	}

	start := time.Now()
	if err := s.store.DeleteEntry(ctx, entryID, deltas); err != nil {
		metrics.BalanceUpdateFailures.Inc()
		slog.Error("DeleteEntry failed", "entry_id", entryID, "error", err)
		return err
	}
	metrics.BalanceUpdateDuration.Observe(time.Since(start).Seconds())
	metrics.EntriesDeleted.Inc()

	slog.Info("entry deleted", "entry_id", entryID, "room_id", roomID)
	return nil
}

// resolveMembers turns the selected member IDs into an ordered EntryMember
// list with names from the roster. The payer is always included, first if
// not otherwise positioned, with PaidStatus true.
func resolveMembers(room *models.Room, payerID string, memberIDs []string) ([]models.EntryMember, error) {
	ids := memberIDs
	hasPayer := false
	for _, id := range ids {
		if id == payerID {
			hasPayer = true
			break
		}
	}
	if !hasPayer {
		ids = append([]string{payerID}, ids...)
	}

	members := make([]models.EntryMember, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			return nil, fmt.Errorf("%w: duplicate member %s", ErrValidation, id)
		}
		seen[id] = true

		var name string
		found := false
		for _, rm := range room.Members {
			if rm.UserID == id {
				name = rm.Name
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("%w: %s", ErrNotRoomMember, id)
		}

		members = append(members, models.EntryMember{
			UserID:     id,
			UserName:   name,
			PaidStatus: id == payerID,
		})
	}
	return members, nil
}

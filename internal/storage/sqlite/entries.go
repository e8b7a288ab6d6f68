package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/roomledger/roomledger/internal/ledger"
	"github.com/roomledger/roomledger/internal/models"
	"github.com/roomledger/roomledger/internal/storage"
)

// CreateEntry persists an entry with its member list and applies the balance
// deltas for it, all inside a single transaction. A failure on any pair
// aborts the whole operation, so the entries table and pair_balances never
// drift apart.
func (s *SQLiteStore) CreateEntry(ctx context.Context, entry *models.Entry, deltas []ledger.Delta) error {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.CreatedAt == 0 {
		entry.CreatedAt = time.Now().Unix()
	}
	if entry.Date == 0 {
		entry.Date = entry.CreatedAt
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		"INSERT INTO entries (id, room_id, date, description, amount, paid_by, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)",
		entry.ID, entry.RoomID, entry.Date, entry.Description, entry.Amount, entry.PaidBy, entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert entry: %w", err)
	}

	for i, m := range entry.Members {
		_, err = tx.ExecContext(ctx,
			"INSERT INTO entry_members (entry_id, user_id, user_name, paid_status, position) VALUES (?, ?, ?, ?, ?)",
			entry.ID, m.UserID, m.UserName, boolToInt(m.PaidStatus), i,
		)
		if err != nil {
			return fmt.Errorf("failed to insert entry member: %w", err)
		}
	}

	// Pre-pass: every pair of participants gets a balance record before any
	// increment, so settlements and reversals always find their row.
	if err := ensurePairRecords(ctx, tx, entry.RoomID, entry.Members); err != nil {
		return err
	}
	if err := applyDeltas(ctx, tx, entry.RoomID, deltas); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit entry: %w", err)
	}
	return nil
}

// GetEntry retrieves an entry by ID, including its ordered member list.
func (s *SQLiteStore) GetEntry(ctx context.Context, entryID string) (*models.Entry, error) {
	entry := &models.Entry{}
	err := s.db.QueryRowContext(ctx,
		"SELECT id, room_id, date, description, amount, paid_by, created_at FROM entries WHERE id = ?",
		entryID,
	).Scan(&entry.ID, &entry.RoomID, &entry.Date, &entry.Description, &entry.Amount, &entry.PaidBy, &entry.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, storage.ErrEntryNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get entry: %w", err)
	}

	if err := s.loadEntryMembers(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// ListEntries retrieves a room's entries, newest first, with limit/offset
// pagination. The second return value is the total entry count for the room.
func (s *SQLiteStore) ListEntries(ctx context.Context, roomID string, limit, offset int) ([]*models.Entry, int, error) {
	var total int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM entries WHERE room_id = ?", roomID,
	).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count entries: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, room_id, date, description, amount, paid_by, created_at
		FROM entries
		WHERE room_id = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ? OFFSET ?`,
		roomID, limit, offset,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list entries: %w", err)
	}
	defer rows.Close()

	var entries []*models.Entry
	for rows.Next() {
		entry := &models.Entry{}
		if err := rows.Scan(&entry.ID, &entry.RoomID, &entry.Date, &entry.Description,
			&entry.Amount, &entry.PaidBy, &entry.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("failed to scan entry: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate entries: %w", err)
	}

	for _, entry := range entries {
		if err := s.loadEntryMembers(ctx, entry); err != nil {
			return nil, 0, err
		}
	}
	return entries, total, nil
}

func (s *SQLiteStore) loadEntryMembers(ctx context.Context, entry *models.Entry) error {
	rows, err := s.db.QueryContext(ctx,
		"SELECT user_id, user_name, paid_status FROM entry_members WHERE entry_id = ? ORDER BY position",
		entry.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to get entry members: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var m models.EntryMember
		var paid int
		if err := rows.Scan(&m.UserID, &m.UserName, &paid); err != nil {
			return fmt.Errorf("failed to scan entry member: %w", err)
		}
		m.PaidStatus = paid != 0
		entry.Members = append(entry.Members, m)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate entry members: %w", err)
	}
	return nil
}

// SettleEntryMember flips one member's paid status and applies the
// settlement delta in the same transaction. The pair's balance record must
// already exist; a missing row is a data-integrity fault, not something to
// create on the fly.
func (s *SQLiteStore) SettleEntryMember(ctx context.Context, entryID, memberID string, delta ledger.Delta) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var roomID string
	err = tx.QueryRowContext(ctx, "SELECT room_id FROM entries WHERE id = ?", entryID).Scan(&roomID)
	if err == sql.ErrNoRows {
		return storage.ErrEntryNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to get entry: %w", err)
	}

	var paid int
	err = tx.QueryRowContext(ctx,
		"SELECT paid_status FROM entry_members WHERE entry_id = ? AND user_id = ?",
		entryID, memberID,
	).Scan(&paid)
	if err == sql.ErrNoRows {
		return storage.ErrEntryNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to get entry member: %w", err)
	}
	if paid != 0 {
		return storage.ErrAlreadySettled
	}

	_, err = tx.ExecContext(ctx,
		"UPDATE entry_members SET paid_status = 1 WHERE entry_id = ? AND user_id = ?",
		entryID, memberID,
	)
	if err != nil {
		return fmt.Errorf("failed to update entry member: %w", err)
	}

	if err := applyDeltas(ctx, tx, roomID, []ledger.Delta{delta}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit settlement: %w", err)
	}
	return nil
}

// DeleteEntry applies the reversal deltas and removes the entry (members
// cascade) in one transaction.
func (s *SQLiteStore) DeleteEntry(ctx context.Context, entryID string, deltas []ledger.Delta) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var roomID string
	err = tx.QueryRowContext(ctx, "SELECT room_id FROM entries WHERE id = ?", entryID).Scan(&roomID)
	if err == sql.ErrNoRows {
		return storage.ErrEntryNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to get entry: %w", err)
	}

	if err := applyDeltas(ctx, tx, roomID, deltas); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM entries WHERE id = ?", entryID); err != nil {
		return fmt.Errorf("failed to delete entry: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit entry deletion: %w", err)
	}
	return nil
}

// ensurePairRecords upserts a zero balance record for every unordered pair
// of participants. Idempotent; existing rows are untouched.
func ensurePairRecords(ctx context.Context, tx *sql.Tx, roomID string, members []models.EntryMember) error {
	for i := 0; i < len(members); i++ {
		for j := i + 1; j < len(members); j++ {
			lo, hi := ledger.PairKey(members[i].UserID, members[j].UserID)
			_, err := tx.ExecContext(ctx, `
				INSERT INTO pair_balances (room_id, user_lo, user_hi, net) VALUES (?, ?, ?, 0)
				ON CONFLICT (room_id, user_lo, user_hi) DO NOTHING`,
				roomID, lo, hi,
			)
			if err != nil {
				return fmt.Errorf("failed to ensure balance record %s/%s: %w", lo, hi, err)
			}
		}
	}
	return nil
}

// applyDeltas folds signed pair deltas into pair_balances. Rows must already
// exist; an untouched row means the pair was never initialized by entry
// creation and surfaces as ErrBalanceRowMissing.
func applyDeltas(ctx context.Context, tx *sql.Tx, roomID string, deltas []ledger.Delta) error {
	for _, d := range deltas {
		lo, hi := ledger.PairKey(d.Debtor, d.Creditor)
		amount := d.Amount
		if d.Debtor != lo {
			amount = -amount
		}

		res, err := tx.ExecContext(ctx,
			"UPDATE pair_balances SET net = net + ? WHERE room_id = ? AND user_lo = ? AND user_hi = ?",
			amount, roomID, lo, hi,
		)
		if err != nil {
			return fmt.Errorf("failed to apply delta %s->%s: %w", d.Debtor, d.Creditor, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to check delta result: %w", err)
		}
		if n == 0 {
			return fmt.Errorf("%s/%s: %w", lo, hi, storage.ErrBalanceRowMissing)
		}
	}
	return nil
}

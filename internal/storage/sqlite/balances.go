package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sort"

	"github.com/roomledger/roomledger/internal/ledger"
	"github.com/roomledger/roomledger/internal/models"
)

// GetLedger derives one user's balance view from the pair records they
// appear in. For each counterpart, exactly one of payable/receivable is
// non-zero; zeroed rows are kept so a fully settled debt still shows up.
func (s *SQLiteStore) GetLedger(ctx context.Context, roomID, userID string) (*models.Ledger, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT pb.user_lo, pb.user_hi, pb.net,
		       COALESCE(ul.display_name, pb.user_lo),
		       COALESCE(uh.display_name, pb.user_hi)
		FROM pair_balances pb
		LEFT JOIN users ul ON ul.id = pb.user_lo
		LEFT JOIN users uh ON uh.id = pb.user_hi
		WHERE pb.room_id = ? AND (pb.user_lo = ? OR pb.user_hi = ?)`,
		roomID, userID, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get balances: %w", err)
	}
	defer rows.Close()

	led := &models.Ledger{RoomID: roomID, UserID: userID}
	for rows.Next() {
		var lo, hi string
		var net int64
		var loName, hiName string
		if err := rows.Scan(&lo, &hi, &net, &loName, &hiName); err != nil {
			return nil, fmt.Errorf("failed to scan balance: %w", err)
		}

		// owes is the signed amount the viewing user owes the counterpart.
		owes := net
		other, otherName := hi, hiName
		if userID == hi {
			owes = -net
			other, otherName = lo, loName
		}

		row := models.BalanceRow{UserID: other, UserName: otherName}
		if owes > 0 {
			row.Payable = owes
		} else {
			row.Receivable = -owes
		}
		led.Rows = append(led.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate balances: %w", err)
	}

	sort.Slice(led.Rows, func(i, j int) bool {
		if led.Rows[i].UserName != led.Rows[j].UserName {
			return led.Rows[i].UserName < led.Rows[j].UserName
		}
		return led.Rows[i].UserID < led.Rows[j].UserID
	})
	return led, nil
}

// GetPairBalance returns the signed amount userA owes userB (negative means
// userB owes userA). A pair with no record yet reads as zero.
func (s *SQLiteStore) GetPairBalance(ctx context.Context, roomID, userA, userB string) (int64, error) {
	lo, hi := ledger.PairKey(userA, userB)

	var net int64
	err := s.db.QueryRowContext(ctx,
		"SELECT net FROM pair_balances WHERE room_id = ? AND user_lo = ? AND user_hi = ?",
		roomID, lo, hi,
	).Scan(&net)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get pair balance: %w", err)
	}

	if userA != lo {
		net = -net
	}
	return net, nil
}

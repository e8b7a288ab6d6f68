package models

// BalanceRow is one counterpart line in a user's ledger view: how much the
// viewing user owes that counterpart (Payable) and is owed by them
// (Receivable). Exactly one of the two is non-zero for any live debt.
type BalanceRow struct {
	UserID     string
	UserName   string
	Payable    int64
	Receivable int64
}

// Ledger is one user's view, within a room, of their balances against every
// other member they share at least one entry with. Rows are derived from the
// per-pair balance records, so a counterpart's mirrored view always agrees.
type Ledger struct {
	RoomID string
	UserID string
	Rows   []BalanceRow
}

// Row returns the balance row for the given counterpart, or nil.
func (l *Ledger) Row(userID string) *BalanceRow {
	for i := range l.Rows {
		if l.Rows[i].UserID == userID {
			return &l.Rows[i]
		}
	}
	return nil
}

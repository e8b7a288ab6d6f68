package ledger

import (
	"errors"
	"fmt"

	"github.com/roomledger/roomledger/internal/models"
)

var (
	ErrNoMembers         = errors.New("entry must have at least one member")
	ErrNonPositiveAmount = errors.New("entry amount must be positive")
	ErrPayerNotMember    = errors.New("payer must be one of the entry members")
	ErrNotEntryMember    = errors.New("user is not a member of this entry")
	ErrPayerCannotSettle = errors.New("the payer has no share to settle")
	ErrAlreadySettled    = errors.New("member has already settled their share")
)

// Delta is one signed adjustment to the balance between two users: Amount > 0
// means the debtor's debt to the creditor grows, Amount < 0 means it shrinks.
type Delta struct {
	Debtor   string
	Creditor string
	Amount   int64
}

// PairKey normalizes two user IDs into the unordered pair (lo, hi) under
// which their balance record is stored.
func PairKey(a, b string) (lo, hi string) {
	if a < b {
		return a, b
	}
	return b, a
}

// Validate checks the entry invariants every delta computation relies on.
func Validate(entry *models.Entry) error {
	if len(entry.Members) == 0 {
		return ErrNoMembers
	}
	if entry.Amount <= 0 {
		return ErrNonPositiveAmount
	}
	if entry.Member(entry.PaidBy) == nil {
		return ErrPayerNotMember
	}
	return nil
}

// EntryDeltas computes the balance adjustments for a newly created entry:
// every non-payer member owes the payer one share.
func EntryDeltas(entry *models.Entry) ([]Delta, error) {
	if err := Validate(entry); err != nil {
		return nil, err
	}

	share := Share(entry.Amount, len(entry.Members))
	deltas := make([]Delta, 0, len(entry.Members)-1)
	for _, m := range entry.Members {
		if m.UserID == entry.PaidBy {
			continue
		}
		deltas = append(deltas, Delta{
			Debtor:   m.UserID,
			Creditor: entry.PaidBy,
			Amount:   share,
		})
	}
	return deltas, nil
}

// ReversalDeltas computes the exact inverse of EntryDeltas for the delete
// path. It must be fed the stored entry snapshot (original amount and member
// list), never a recomputation from current room membership, to be a true
// inverse.
func ReversalDeltas(entry *models.Entry) ([]Delta, error) {
	deltas, err := EntryDeltas(entry)
	if err != nil {
		return nil, err
	}
	for i := range deltas {
		deltas[i].Amount = -deltas[i].Amount
	}
	return deltas, nil
}

// SettlementDelta computes the single adjustment for a non-payer member
// marking their share paid: their debt to the payer shrinks by one share.
func SettlementDelta(entry *models.Entry, memberID string) (Delta, error) {
	if err := Validate(entry); err != nil {
		return Delta{}, err
	}

	member := entry.Member(memberID)
	if member == nil {
		return Delta{}, fmt.Errorf("%w: %s", ErrNotEntryMember, memberID)
	}
	if memberID == entry.PaidBy {
		return Delta{}, ErrPayerCannotSettle
	}
	if member.PaidStatus {
		return Delta{}, ErrAlreadySettled
	}

	return Delta{
		Debtor:   memberID,
		Creditor: entry.PaidBy,
		Amount:   -Share(entry.Amount, len(entry.Members)),
	}, nil
}

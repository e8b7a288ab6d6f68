package service

import (
	"context"
	"errors"
	"testing"

	"github.com/roomledger/roomledger/internal/ledger"
	"github.com/roomledger/roomledger/internal/models"
	"github.com/roomledger/roomledger/internal/storage"
)

func TestCreateEntry_ThreeWaySplit(t *testing.T) {
	env := newTestEnv(t)
	room := env.seedRoomWithUsers(t, "alice", "bob", "carol")
	ctx := context.Background()

	entry, err := env.entries.CreateEntry(ctx, room.ID, "alice", CreateEntryInput{
		Description: "Rent deposit",
		Amount:      300,
		MemberIDs:   []string{"alice", "bob", "carol"},
	})
	if err != nil {
		t.Fatalf("CreateEntry failed: %v", err)
	}

	if len(entry.Members) != 3 {
		t.Fatalf("got %d members, want 3", len(entry.Members))
	}
	if !entry.Member("alice").PaidStatus {
		t.Error("payer should start settled")
	}

	if got := env.row(t, room.ID, "alice", "bob").Receivable; got != 100 {
		t.Errorf("alice receivable from bob = %d, want 100", got)
	}
	if got := env.row(t, room.ID, "alice", "carol").Receivable; got != 100 {
		t.Errorf("alice receivable from carol = %d, want 100", got)
	}
	if got := env.row(t, room.ID, "bob", "alice").Payable; got != 100 {
		t.Errorf("bob payable to alice = %d, want 100", got)
	}

	env.assertSymmetry(t, room.ID, "alice", "bob")
	env.assertSymmetry(t, room.ID, "alice", "carol")
	env.assertSymmetry(t, room.ID, "bob", "carol")
}

func TestCreateEntry_PayerAutoIncluded(t *testing.T) {
	env := newTestEnv(t)
	room := env.seedRoomWithUsers(t, "alice", "bob")
	ctx := context.Background()

	entry, err := env.entries.CreateEntry(ctx, room.ID, "alice", CreateEntryInput{
		Description: "Internet",
		Amount:      40,
		MemberIDs:   []string{"bob"},
	})
	if err != nil {
		t.Fatalf("CreateEntry failed: %v", err)
	}

	if len(entry.Members) != 2 {
		t.Fatalf("got %d members, want 2 (payer auto-included)", len(entry.Members))
	}
	if entry.Members[0].UserID != "alice" || !entry.Members[0].PaidStatus {
		t.Errorf("payer should lead the member list as settled: %+v", entry.Members)
	}
	if got := env.row(t, room.ID, "bob", "alice").Payable; got != 20 {
		t.Errorf("bob payable = %d, want 20", got)
	}
}

func TestCreateEntry_Validation(t *testing.T) {
	env := newTestEnv(t)
	room := env.seedRoomWithUsers(t, "alice", "bob")
	ctx := context.Background()

	tests := []struct {
		name    string
		payer   string
		input   CreateEntryInput
		wantErr error
	}{
		{
			name:    "zero amount",
			payer:   "alice",
			input:   CreateEntryInput{Description: "x", Amount: 0, MemberIDs: []string{"alice", "bob"}},
			wantErr: ledger.ErrNonPositiveAmount,
		},
		{
			name:    "empty description",
			payer:   "alice",
			input:   CreateEntryInput{Description: "  ", Amount: 10, MemberIDs: []string{"alice"}},
			wantErr: ErrValidation,
		},
		{
			name:    "stranger in member list",
			payer:   "alice",
			input:   CreateEntryInput{Description: "x", Amount: 10, MemberIDs: []string{"alice", "mallory"}},
			wantErr: ErrNotRoomMember,
		},
		{
			name:    "payer not in room",
			payer:   "mallory",
			input:   CreateEntryInput{Description: "x", Amount: 10, MemberIDs: []string{"alice"}},
			wantErr: ErrNotRoomMember,
		},
		{
			name:    "duplicate member",
			payer:   "alice",
			input:   CreateEntryInput{Description: "x", Amount: 10, MemberIDs: []string{"alice", "bob", "bob"}},
			wantErr: ErrValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.entries.CreateEntry(ctx, room.ID, tt.payer, tt.input)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("CreateEntry error = %v, want %v", err, tt.wantErr)
			}
		})
	}

	// Nothing should have touched the balances.
	if got := env.row(t, room.ID, "bob", "alice").Payable; got != 0 {
		t.Errorf("balances moved on rejected creates: %d", got)
	}
}

func TestCreateThenDelete_RestoresAllRows(t *testing.T) {
	env := newTestEnv(t)
	room := env.seedRoomWithUsers(t, "alice", "bob", "carol")
	ctx := context.Background()

	entry, err := env.entries.CreateEntry(ctx, room.ID, "alice", CreateEntryInput{
		Description: "Couch",
		Amount:      300,
		MemberIDs:   []string{"alice", "bob", "carol"},
	})
	if err != nil {
		t.Fatalf("CreateEntry failed: %v", err)
	}

	if err := env.entries.DeleteEntry(ctx, room.ID, entry.ID, "alice"); err != nil {
		t.Fatalf("DeleteEntry failed: %v", err)
	}

	for _, pair := range [][2]string{{"alice", "bob"}, {"alice", "carol"}, {"bob", "carol"}} {
		a, b := pair[0], pair[1]
		ra := env.row(t, room.ID, a, b)
		if ra.Payable != 0 || ra.Receivable != 0 {
			t.Errorf("%s/%s row not restored: %+v", a, b, ra)
		}
		env.assertSymmetry(t, room.ID, a, b)
	}

	if _, _, err := env.entries.ListEntries(ctx, room.ID, 1, 10); err != nil {
		t.Fatalf("ListEntries failed: %v", err)
	}
	if _, err := env.store.GetEntry(ctx, entry.ID); !errors.Is(err, storage.ErrEntryNotFound) {
		t.Errorf("entry still present after delete: %v", err)
	}
}

func TestPartialSettlement(t *testing.T) {
	env := newTestEnv(t)
	room := env.seedRoomWithUsers(t, "alice", "bob", "carol")
	ctx := context.Background()

	entry, err := env.entries.CreateEntry(ctx, room.ID, "alice", CreateEntryInput{
		Description: "Utilities",
		Amount:      90,
		MemberIDs:   []string{"alice", "bob", "carol"},
	})
	if err != nil {
		t.Fatalf("CreateEntry failed: %v", err)
	}

	updated, err := env.entries.SettleMember(ctx, room.ID, entry.ID, "bob")
	if err != nil {
		t.Fatalf("SettleMember failed: %v", err)
	}
	if !updated.Member("bob").PaidStatus {
		t.Error("bob's paid status should be true after settling")
	}

	if got := env.row(t, room.ID, "alice", "bob").Receivable; got != 0 {
		t.Errorf("alice receivable from bob = %d, want 0", got)
	}
	if got := env.row(t, room.ID, "bob", "alice").Payable; got != 0 {
		t.Errorf("bob payable to alice = %d, want 0", got)
	}
	if got := env.row(t, room.ID, "alice", "carol").Receivable; got != 30 {
		t.Errorf("alice receivable from carol = %d, want 30", got)
	}
	env.assertSymmetry(t, room.ID, "alice", "bob")
	env.assertSymmetry(t, room.ID, "alice", "carol")
}

func TestTwoMemberSettlementReachesZero(t *testing.T) {
	env := newTestEnv(t)
	room := env.seedRoomWithUsers(t, "alice", "bob")
	ctx := context.Background()

	entry, err := env.entries.CreateEntry(ctx, room.ID, "alice", CreateEntryInput{
		Description: "Takeout",
		Amount:      40,
		MemberIDs:   []string{"alice", "bob"},
	})
	if err != nil {
		t.Fatalf("CreateEntry failed: %v", err)
	}

	if _, err := env.entries.SettleMember(ctx, room.ID, entry.ID, "bob"); err != nil {
		t.Fatalf("SettleMember failed: %v", err)
	}

	ra := env.row(t, room.ID, "alice", "bob")
	rb := env.row(t, room.ID, "bob", "alice")
	if ra.Payable != 0 || ra.Receivable != 0 || rb.Payable != 0 || rb.Receivable != 0 {
		t.Errorf("pair not fully settled: alice=%+v bob=%+v", ra, rb)
	}
}

func TestRoundingDriftIsPreserved(t *testing.T) {
	env := newTestEnv(t)
	room := env.seedRoomWithUsers(t, "alice", "bob", "carol")
	ctx := context.Background()

	// 100 / 3 = 33 per member; the two non-payer shares sum to 66, not the
	// 67 alice is actually out. The drift is documented product behavior.
	if _, err := env.entries.CreateEntry(ctx, room.ID, "alice", CreateEntryInput{
		Description: "Cleaning supplies",
		Amount:      100,
		MemberIDs:   []string{"alice", "bob", "carol"},
	}); err != nil {
		t.Fatalf("CreateEntry failed: %v", err)
	}

	if got := env.row(t, room.ID, "bob", "alice").Payable; got != 33 {
		t.Errorf("bob payable = %d, want 33", got)
	}
	if got := env.row(t, room.ID, "carol", "alice").Payable; got != 33 {
		t.Errorf("carol payable = %d, want 33", got)
	}

	led, err := env.ledger.GetLedger(ctx, room.ID, "alice")
	if err != nil {
		t.Fatalf("GetLedger failed: %v", err)
	}
	var totalReceivable int64
	for _, row := range led.Rows {
		totalReceivable += row.Receivable
	}
	if totalReceivable != 66 {
		t.Errorf("alice total receivable = %d, want 66 (drift preserved)", totalReceivable)
	}
}

func TestSettlePermissions(t *testing.T) {
	env := newTestEnv(t)
	room := env.seedRoomWithUsers(t, "alice", "bob")
	ctx := context.Background()

	entry, err := env.entries.CreateEntry(ctx, room.ID, "alice", CreateEntryInput{
		Description: "Groceries",
		Amount:      40,
		MemberIDs:   []string{"alice", "bob"},
	})
	if err != nil {
		t.Fatalf("CreateEntry failed: %v", err)
	}

	t.Run("payer cannot settle their own share", func(t *testing.T) {
		if _, err := env.entries.SettleMember(ctx, room.ID, entry.ID, "alice"); !errors.Is(err, ledger.ErrPayerCannotSettle) {
			t.Errorf("error = %v, want %v", err, ledger.ErrPayerCannotSettle)
		}
	})

	t.Run("non-member cannot settle", func(t *testing.T) {
		if _, err := env.entries.SettleMember(ctx, room.ID, entry.ID, "mallory"); !errors.Is(err, ledger.ErrNotEntryMember) {
			t.Errorf("error = %v, want %v", err, ledger.ErrNotEntryMember)
		}
	})

	t.Run("double settle rejected", func(t *testing.T) {
		if _, err := env.entries.SettleMember(ctx, room.ID, entry.ID, "bob"); err != nil {
			t.Fatalf("first settle failed: %v", err)
		}
		if _, err := env.entries.SettleMember(ctx, room.ID, entry.ID, "bob"); !errors.Is(err, ledger.ErrAlreadySettled) {
			t.Errorf("error = %v, want %v", err, ledger.ErrAlreadySettled)
		}
		// Balance must not have moved twice.
		if got := env.row(t, room.ID, "bob", "alice").Receivable; got != 0 {
			t.Errorf("bob receivable = %d, want 0", got)
		}
	})
}

func TestDeletePermissions(t *testing.T) {
	env := newTestEnv(t)
	room := env.seedRoomWithUsers(t, "alice", "bob")
	ctx := context.Background()

	entry, err := env.entries.CreateEntry(ctx, room.ID, "alice", CreateEntryInput{
		Description: "Rent",
		Amount:      100,
		MemberIDs:   []string{"alice", "bob"},
	})
	if err != nil {
		t.Fatalf("CreateEntry failed: %v", err)
	}

	if err := env.entries.DeleteEntry(ctx, room.ID, entry.ID, "bob"); !errors.Is(err, ErrNotEntryPayer) {
		t.Errorf("error = %v, want %v", err, ErrNotEntryPayer)
	}
	if err := env.entries.DeleteEntry(ctx, "other-room", entry.ID, "alice"); !errors.Is(err, ErrWrongRoom) {
		t.Errorf("error = %v, want %v", err, ErrWrongRoom)
	}
	if err := env.entries.DeleteEntry(ctx, room.ID, "missing", "alice"); !errors.Is(err, storage.ErrEntryNotFound) {
		t.Errorf("error = %v, want %v", err, storage.ErrEntryNotFound)
	}
}

func TestSymmetryAcrossMixedSequence(t *testing.T) {
	env := newTestEnv(t)
	room := env.seedRoomWithUsers(t, "alice", "bob", "carol")
	ctx := context.Background()

	create := func(payer string, amount int64, members ...string) *models.Entry {
		t.Helper()
		entry, err := env.entries.CreateEntry(ctx, room.ID, payer, CreateEntryInput{
			Description: "Entry",
			Amount:      amount,
			MemberIDs:   members,
		})
		if err != nil {
			t.Fatalf("CreateEntry failed: %v", err)
		}
		return entry
	}

	e1 := create("alice", 300, "alice", "bob", "carol")
	e2 := create("bob", 90, "bob", "carol")
	create("carol", 40, "carol", "alice")

	if _, err := env.entries.SettleMember(ctx, room.ID, e1.ID, "bob"); err != nil {
		t.Fatalf("SettleMember failed: %v", err)
	}
	if err := env.entries.DeleteEntry(ctx, room.ID, e2.ID, "bob"); err != nil {
		t.Fatalf("DeleteEntry failed: %v", err)
	}

	for _, pair := range [][2]string{{"alice", "bob"}, {"alice", "carol"}, {"bob", "carol"}} {
		env.assertSymmetry(t, room.ID, pair[0], pair[1])
	}

	// Spot-check the surviving balances: e1 left carol owing alice 100,
	// e3 left alice owing carol 20, netting to carol owing alice 80.
	if got := env.row(t, room.ID, "carol", "alice").Payable; got != 80 {
		t.Errorf("carol payable to alice = %d, want 80", got)
	}
	if got := env.row(t, room.ID, "bob", "alice").Payable; got != 0 {
		t.Errorf("bob payable to alice = %d, want 0 (settled)", got)
	}
}

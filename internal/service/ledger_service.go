package service

import (
	"context"

	"github.com/roomledger/roomledger/internal/models"
	"github.com/roomledger/roomledger/internal/storage"
)

// LedgerService serves per-user balance views.
type LedgerService struct {
	store storage.Store
}

// NewLedgerService creates a new LedgerService.
func NewLedgerService(store storage.Store) *LedgerService {
	return &LedgerService{store: store}
}

// GetLedger returns the caller's balance view within their room: one row per
// counterpart they share at least one entry with.
func (s *LedgerService) GetLedger(ctx context.Context, roomID, userID string) (*models.Ledger, error) {
	return s.store.GetLedger(ctx, roomID, userID)
}

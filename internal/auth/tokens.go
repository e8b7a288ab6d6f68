package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Token purposes. A token issued for one purpose cannot be consumed for
// another.
const (
	PurposeVerifyEmail   = "verify_email"
	PurposeResetPassword = "reset_password"
)

// TokenStorage persists single-use auth tokens.
type TokenStorage interface {
	CreateAuthToken(ctx context.Context, token, userID, purpose string, expiresAt int64) error
	ConsumeAuthToken(ctx context.Context, token, purpose string) (userID string, err error)
}

// TokenIssuer issues and redeems the single-use tokens behind the email
// verification and password-reset flows.
type TokenIssuer struct {
	storage TokenStorage
	ttl     time.Duration
}

// NewTokenIssuer creates a token issuer with the given time-to-live.
func NewTokenIssuer(storage TokenStorage, ttl time.Duration) *TokenIssuer {
	return &TokenIssuer{storage: storage, ttl: ttl}
}

// Issue creates a fresh token for the user and purpose.
func (i *TokenIssuer) Issue(ctx context.Context, userID, purpose string) (string, error) {
	token := uuid.New().String()
	expiresAt := time.Now().Add(i.ttl).Unix()
	if err := i.storage.CreateAuthToken(ctx, token, userID, purpose, expiresAt); err != nil {
		return "", err
	}
	return token, nil
}

// Consume redeems a token, returning the user it was issued for. Tokens are
// single-use; the storage layer rejects expired or already-used tokens.
func (i *TokenIssuer) Consume(ctx context.Context, token, purpose string) (string, error) {
	return i.storage.ConsumeAuthToken(ctx, token, purpose)
}

// Package service implements the application operations behind the HTTP
// API: account management, room membership, and the entry lifecycle that
// drives the balance ledger.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/roomledger/roomledger/internal/auth"
	"github.com/roomledger/roomledger/internal/mail"
	"github.com/roomledger/roomledger/internal/models"
	"github.com/roomledger/roomledger/internal/storage"
)

// AuthService handles registration, login, and the email verification and
// password-reset flows.
type AuthService struct {
	authenticator *auth.PasswordAuthenticator
	jwt           *auth.JWTManager
	tokens        *auth.TokenIssuer
	store         storage.Store
	mailer        mail.Mailer
	baseURL       string
}

// NewAuthService wires the auth service.
func NewAuthService(
	authenticator *auth.PasswordAuthenticator,
	jwt *auth.JWTManager,
	tokens *auth.TokenIssuer,
	store storage.Store,
	mailer mail.Mailer,
	baseURL string,
) *AuthService {
	return &AuthService{
		authenticator: authenticator,
		jwt:           jwt,
		tokens:        tokens,
		store:         store,
		mailer:        mailer,
		baseURL:       baseURL,
	}
}

// Register creates an unverified account and emails a verification link.
func (s *AuthService) Register(ctx context.Context, email, displayName, password string) error {
	user, err := s.authenticator.Register(ctx, email, displayName, password)
	if err != nil {
		return err
	}
	slog.Info("user registered", "user_id", user.ID, "email", user.Email)

	token, err := s.tokens.Issue(ctx, user.ID, auth.PurposeVerifyEmail)
	if err != nil {
		return fmt.Errorf("failed to issue verification token: %w", err)
	}

	link := fmt.Sprintf("%s/verify?token=%s", s.baseURL, token)
	body := fmt.Sprintf("Hi %s,\n\nConfirm your Roommate Ledger account by opening:\n%s\n", displayName, link)
	if err := s.mailer.Send(ctx, email, "Verify your Roommate Ledger account", body); err != nil {
		// The account exists; the user can request a fresh link later.
		slog.Error("failed to send verification mail", "user_id", user.ID, "error", err)
	}
	return nil
}

// Login authenticates a verified user and returns a session token.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, *models.User, error) {
	user, err := s.authenticator.Authenticate(ctx, email, password)
	if err != nil {
		return "", nil, err
	}
	if !user.Verified {
		return "", nil, auth.ErrEmailNotVerified
	}

	token, err := s.jwt.Generate(user)
	if err != nil {
		return "", nil, fmt.Errorf("failed to generate session token: %w", err)
	}
	slog.Info("user logged in", "user_id", user.ID)
	return token, user, nil
}

// VerifyEmail redeems a verification token and marks the account verified.
func (s *AuthService) VerifyEmail(ctx context.Context, token string) error {
	userID, err := s.tokens.Consume(ctx, token, auth.PurposeVerifyEmail)
	if err != nil {
		return err
	}
	if err := s.store.MarkUserVerified(ctx, userID); err != nil {
		return fmt.Errorf("failed to mark user verified: %w", err)
	}
	slog.Info("email verified", "user_id", userID)
	return nil
}

// RequestPasswordReset emails a reset link. Unknown emails succeed silently
// so the endpoint cannot be used to probe for accounts.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) error {
	user, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			slog.Info("password reset requested for unknown email", "email", email)
			return nil
		}
		return err
	}

	token, err := s.tokens.Issue(ctx, user.ID, auth.PurposeResetPassword)
	if err != nil {
		return fmt.Errorf("failed to issue reset token: %w", err)
	}

	link := fmt.Sprintf("%s/reset-password?token=%s", s.baseURL, token)
	body := fmt.Sprintf("Hi %s,\n\nReset your Roommate Ledger password by opening:\n%s\n\nIf you did not ask for this, ignore this mail.\n", user.DisplayName, link)
	if err := s.mailer.Send(ctx, email, "Reset your Roommate Ledger password", body); err != nil {
		return fmt.Errorf("failed to send reset mail: %w", err)
	}
	slog.Info("password reset requested", "user_id", user.ID)
	return nil
}

// ResetPassword redeems a reset token and stores the new password.
func (s *AuthService) ResetPassword(ctx context.Context, token, newPassword string) error {
	userID, err := s.tokens.Consume(ctx, token, auth.PurposeResetPassword)
	if err != nil {
		return err
	}
	if err := s.authenticator.SetPassword(ctx, userID, newPassword); err != nil {
		return err
	}
	slog.Info("password reset", "user_id", userID)
	return nil
}

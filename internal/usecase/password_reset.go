package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/crmdash/backoffice-api/internal/repository"
	"github.com/crmdash/backoffice-api/internal/security"
)

// PasswordResetUsecase defines the business logic for password recovery.
type PasswordResetUsecase interface {
	// RequestPasswordReset opens a recovery window for the account with
	// the given email and returns the reset link carrying the raw token.
	// Calling it again while a window is open replaces the outstanding
	// token, invalidating the earlier link.
	RequestPasswordReset(ctx context.Context, email string) (string, error)

	// ResetPassword consumes a previously issued token and sets a new
	// password. The token is single-use: a successful reset closes the
	// recovery window.
	ResetPassword(ctx context.Context, rawToken, newPassword, confirmPassword string) error
}

var (
	ErrAccountNotFound = errors.New("account not found")
	ErrTokenInvalid    = errors.New("reset token is invalid")
	ErrTokenExpired    = errors.New("reset token has expired")
)

type passwordResetUsecase struct {
	accountRepo repository.AccountRepository
	mailer      Mailer
	logger      *zerolog.Logger
	resetURL    string
	resetTTL    time.Duration
}

// NewPasswordResetUsecase creates a new instance of PasswordResetUsecase.
// The mailer may be nil, in which case the reset link is only returned to
// the caller, not emailed.
func NewPasswordResetUsecase(
	accountRepo repository.AccountRepository,
	mailer Mailer,
	logger *zerolog.Logger,
	resetURL string,
	resetTTL time.Duration,
) PasswordResetUsecase {
	return &passwordResetUsecase{
		accountRepo: accountRepo,
		mailer:      mailer,
		logger:      logger,
		resetURL:    resetURL,
		resetTTL:    resetTTL,
	}
}

func (u *passwordResetUsecase) RequestPasswordReset(ctx context.Context, email string) (string, error) {
	account, err := u.accountRepo.GetAccountByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return "", ErrAccountNotFound
		}
		return "", err
	}

	rawToken, digest, err := security.GenerateResetToken()
	if err != nil {
		return "", err
	}

	expiresAt := time.Now().Add(u.resetTTL)
	if err := u.accountRepo.SetResetToken(ctx, account.ID, digest, expiresAt); err != nil {
		return "", err
	}

	resetLink := fmt.Sprintf("%s/%s", u.resetURL, rawToken)

	if u.mailer != nil {
		go u.sendResetEmail(account.Email, resetLink)
	}

	return resetLink, nil
}

func (u *passwordResetUsecase) ResetPassword(
	ctx context.Context,
	rawToken, newPassword, confirmPassword string,
) error {
	if newPassword != confirmPassword {
		return ErrPasswordMismatch
	}

	digest := security.HashResetToken(rawToken)

	account, err := u.accountRepo.GetAccountByResetToken(ctx, digest)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrTokenInvalid
		}
		return err
	}

	if account.ResetTokenExpiresAt == nil || !time.Now().Before(*account.ResetTokenExpiresAt) {
		// Expired tokens are cleared here rather than left to rot until
		// the next request overwrites them. The clear is keyed on the
		// stale digest so it cannot wipe a token a concurrent request
		// issued after the lookup above.
		if err := u.accountRepo.ClearResetToken(ctx, account.ID, digest); err != nil {
			u.logger.Error().Err(err).Msg("failed to clear expired reset token")
		}
		return ErrTokenExpired
	}

	passwordHash, err := security.HashPassword(newPassword)
	if err != nil {
		return err
	}

	// The consume is conditional on the digest still matching an open
	// window, so a token replaced or spent by a concurrent request
	// cannot be redeemed twice.
	if _, err := u.accountRepo.ConsumeResetToken(ctx, digest, passwordHash, time.Now()); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrTokenInvalid
		}
		return err
	}

	return nil
}

func (u *passwordResetUsecase) sendResetEmail(email, resetLink string) {
	htmlBody := fmt.Sprintf(`
		<p>Hi,</p>
		<p>We received a request to reset the password for your account.</p>
		<p>If you made this request, please click the link below to create a new password:</p>

		<p><a href="%s">%s</a></p>

		<p>This link will expire in %s for your security.</p>
		<p>If you did not request a password reset, you can safely ignore this email.</p>
	`, resetLink, resetLink, u.resetTTL)

	if err := u.mailer.SendHTML([]string{email}, "Password Reset Request", htmlBody); err != nil {
		u.logger.Error().Err(err).Str("email", email).Msg("failed to send password reset email")
	}
}

package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/crmdash/backoffice-api/internal/model"
	"github.com/crmdash/backoffice-api/internal/repository"
	"github.com/crmdash/backoffice-api/internal/security"
)

// AuthUsecase defines the interface for registration and login use cases.
type AuthUsecase interface {
	Register(ctx context.Context, params RegisterParams) (*model.Account, error)
	Login(ctx context.Context, params LoginParams) error
}

// RegisterParams defines the parameters for account registration.
type RegisterParams struct {
	Username        string
	Email           string
	Password        string
	ConfirmPassword string
}

// LoginParams defines the parameters for account login.
type LoginParams struct {
	UsernameOrEmail string
	Password        string
}

// Mailer sends outbound email. Implemented by mailer.Mailer; faked in tests.
type Mailer interface {
	SendHTML(to []string, subject, htmlBody string) error
}

var (
	ErrPasswordMismatch = errors.New("passwords do not match")
	ErrAccountExists    = errors.New("account already exists")

	// ErrInvalidCredentials covers both an unknown account and a wrong
	// password. Callers must not be able to tell the two apart.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

type authUsecase struct {
	accountRepo repository.AccountRepository
	mailer      Mailer
	logger      *zerolog.Logger
}

// NewAuthUsecase creates a new instance of AuthUsecase. The mailer may be
// nil, in which case no welcome email is sent.
func NewAuthUsecase(
	accountRepo repository.AccountRepository,
	mailer Mailer,
	logger *zerolog.Logger,
) AuthUsecase {
	return &authUsecase{
		accountRepo: accountRepo,
		mailer:      mailer,
		logger:      logger,
	}
}

func (u *authUsecase) Register(ctx context.Context, params RegisterParams) (*model.Account, error) {
	if params.Password != params.ConfirmPassword {
		return nil, ErrPasswordMismatch
	}

	passwordHash, err := security.HashPassword(params.Password)
	if err != nil {
		return nil, err
	}

	account, err := u.accountRepo.CreateAccount(ctx, &model.Account{
		Username:     params.Username,
		Email:        params.Email,
		PasswordHash: passwordHash,
	})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrAccountExists
		}

		return nil, err
	}

	// The welcome email is best-effort: it must never block or fail the
	// registration response.
	if u.mailer != nil {
		go u.sendWelcomeEmail(account.Username, account.Email)
	}

	return account, nil
}

func (u *authUsecase) Login(ctx context.Context, params LoginParams) error {
	account, err := u.accountRepo.GetAccountByLogin(ctx, params.UsernameOrEmail)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			// Burn a hash anyway so an unknown account costs the same
			// as a wrong password.
			_, _ = security.HashPassword(params.Password)
			return ErrInvalidCredentials
		}

		return err
	}

	if ok, err := security.VerifyPassword(params.Password, account.PasswordHash); err != nil {
		return err
	} else if !ok {
		return ErrInvalidCredentials
	}

	return u.accountRepo.RecordLogin(ctx, account.ID)
}

func (u *authUsecase) sendWelcomeEmail(username, email string) {
	htmlBody := fmt.Sprintf(`
		<p>Hello %s,</p>
		<p>Welcome aboard! Your back-office account has been created.</p>
		<p>You can sign in with this email address at any time.</p>
	`, username)

	if err := u.mailer.SendHTML([]string{email}, "Welcome", htmlBody); err != nil {
		u.logger.Error().Err(err).Str("email", email).Msg("failed to send welcome email")
	}
}

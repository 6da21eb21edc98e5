package usecase

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crmdash/backoffice-api/internal/model"
	"github.com/crmdash/backoffice-api/internal/security"
)

const testResetURL = "http://localhost:3000/reset-password"

func newTestResetUsecase(repo *fakeAccountRepository) PasswordResetUsecase {
	logger := zerolog.Nop()
	return NewPasswordResetUsecase(repo, nil, &logger, testResetURL, time.Hour)
}

func registerAccount(t *testing.T, repo *fakeAccountRepository, email, password string) {
	t.Helper()

	uc := newTestAuthUsecase(repo)
	_, err := uc.Register(context.Background(), RegisterParams{
		Username:        strings.SplitN(email, "@", 2)[0],
		Email:           email,
		Password:        password,
		ConfirmPassword: password,
	})
	require.NoError(t, err)
}

// tokenFromLink pulls the raw token back out of the recovery reference.
func tokenFromLink(t *testing.T, link string) string {
	t.Helper()

	require.True(t, strings.HasPrefix(link, testResetURL+"/"))
	return strings.TrimPrefix(link, testResetURL+"/")
}

func TestRequestPasswordReset(t *testing.T) {
	repo := newFakeAccountRepository()
	registerAccount(t, repo, "alice@x.com", "password1")
	uc := newTestResetUsecase(repo)

	link, err := uc.RequestPasswordReset(context.Background(), "alice@x.com")
	require.NoError(t, err)

	raw := tokenFromLink(t, link)
	assert.NotEmpty(t, raw)

	stored := repo.get("alice@x.com")
	require.NotNil(t, stored.ResetTokenExpiresAt)
	assert.NotEmpty(t, stored.ResetToken)

	// Only the digest is persisted, never the raw token.
	assert.NotEqual(t, raw, stored.ResetToken)
	assert.Equal(t, security.HashResetToken(raw), stored.ResetToken)

	assert.WithinDuration(t, time.Now().Add(time.Hour), *stored.ResetTokenExpiresAt, 5*time.Second)
}

func TestRequestPasswordReset_UnknownEmail(t *testing.T) {
	uc := newTestResetUsecase(newFakeAccountRepository())

	_, err := uc.RequestPasswordReset(context.Background(), "ghost@x.com")
	assert.ErrorIs(t, err, ErrAccountNotFound)
}

func TestRequestPasswordReset_ReissueInvalidatesPrevious(t *testing.T) {
	repo := newFakeAccountRepository()
	registerAccount(t, repo, "alice@x.com", "password1")
	uc := newTestResetUsecase(repo)

	firstLink, err := uc.RequestPasswordReset(context.Background(), "alice@x.com")
	require.NoError(t, err)

	secondLink, err := uc.RequestPasswordReset(context.Background(), "alice@x.com")
	require.NoError(t, err)

	firstToken := tokenFromLink(t, firstLink)
	secondToken := tokenFromLink(t, secondLink)
	require.NotEqual(t, firstToken, secondToken)

	// The earlier token was overwritten and no longer redeems.
	err = uc.ResetPassword(context.Background(), firstToken, "password2", "password2")
	assert.ErrorIs(t, err, ErrTokenInvalid)

	err = uc.ResetPassword(context.Background(), secondToken, "password2", "password2")
	assert.NoError(t, err)
}

func TestResetPassword(t *testing.T) {
	repo := newFakeAccountRepository()
	registerAccount(t, repo, "alice@x.com", "password1")
	uc := newTestResetUsecase(repo)

	link, err := uc.RequestPasswordReset(context.Background(), "alice@x.com")
	require.NoError(t, err)

	err = uc.ResetPassword(context.Background(), tokenFromLink(t, link), "password2", "password2")
	require.NoError(t, err)

	stored := repo.get("alice@x.com")

	// Recovery window closed.
	assert.Empty(t, stored.ResetToken)
	assert.Nil(t, stored.ResetTokenExpiresAt)

	// Old password out, new password in.
	ok, err := security.VerifyPassword("password1", stored.PasswordHash)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = security.VerifyPassword("password2", stored.PasswordHash)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestResetPassword_Mismatch(t *testing.T) {
	uc := newTestResetUsecase(newFakeAccountRepository())

	err := uc.ResetPassword(context.Background(), "whatever", "password2", "password3")
	assert.ErrorIs(t, err, ErrPasswordMismatch)
}

func TestResetPassword_UnknownToken(t *testing.T) {
	repo := newFakeAccountRepository()
	registerAccount(t, repo, "alice@x.com", "password1")
	uc := newTestResetUsecase(repo)

	err := uc.ResetPassword(context.Background(), "not-a-real-token", "password2", "password2")
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestResetPassword_Expired(t *testing.T) {
	repo := newFakeAccountRepository()
	registerAccount(t, repo, "alice@x.com", "password1")
	uc := newTestResetUsecase(repo)

	link, err := uc.RequestPasswordReset(context.Background(), "alice@x.com")
	require.NoError(t, err)

	repo.expireToken("alice@x.com")

	err = uc.ResetPassword(context.Background(), tokenFromLink(t, link), "password2", "password2")
	assert.ErrorIs(t, err, ErrTokenExpired)

	// Expired token is cleared rather than left behind.
	stored := repo.get("alice@x.com")
	assert.Empty(t, stored.ResetToken)
	assert.Nil(t, stored.ResetTokenExpiresAt)

	// Password unchanged.
	ok, err := security.VerifyPassword("password1", stored.PasswordHash)
	require.NoError(t, err)
	assert.True(t, ok)
}

// reissueOnLookupRepository re-opens a fresh recovery window right after the
// first token lookup, mimicking a new reset request racing with a redeem.
type reissueOnLookupRepository struct {
	*fakeAccountRepository

	once     sync.Once
	freshRaw string
}

func (r *reissueOnLookupRepository) GetAccountByResetToken(
	ctx context.Context,
	digest string,
) (*model.Account, error) {
	account, err := r.fakeAccountRepository.GetAccountByResetToken(ctx, digest)
	if err != nil {
		return nil, err
	}

	r.once.Do(func() {
		raw, freshDigest, genErr := security.GenerateResetToken()
		if genErr != nil {
			panic(genErr)
		}
		if setErr := r.SetResetToken(ctx, account.ID, freshDigest, time.Now().Add(time.Hour)); setErr != nil {
			panic(setErr)
		}
		r.freshRaw = raw
	})

	return account, nil
}

func TestResetPassword_ExpiredClearKeepsReissuedToken(t *testing.T) {
	base := newFakeAccountRepository()
	registerAccount(t, base, "alice@x.com", "password1")
	repo := &reissueOnLookupRepository{fakeAccountRepository: base}

	logger := zerolog.Nop()
	uc := NewPasswordResetUsecase(repo, nil, &logger, testResetURL, time.Hour)

	link, err := uc.RequestPasswordReset(context.Background(), "alice@x.com")
	require.NoError(t, err)

	base.expireToken("alice@x.com")

	// Redeeming the expired token triggers the clear, but a fresh window was
	// opened between lookup and clear.
	err = uc.ResetPassword(context.Background(), tokenFromLink(t, link), "password2", "password2")
	assert.ErrorIs(t, err, ErrTokenExpired)
	require.NotEmpty(t, repo.freshRaw)

	// The clear must not have wiped the token issued mid-flight.
	require.NoError(t, uc.ResetPassword(context.Background(), repo.freshRaw, "password2", "password2"))

	stored := base.get("alice@x.com")
	ok, err := security.VerifyPassword("password2", stored.PasswordHash)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestResetPassword_SingleUse(t *testing.T) {
	repo := newFakeAccountRepository()
	registerAccount(t, repo, "alice@x.com", "password1")
	uc := newTestResetUsecase(repo)

	link, err := uc.RequestPasswordReset(context.Background(), "alice@x.com")
	require.NoError(t, err)
	raw := tokenFromLink(t, link)

	require.NoError(t, uc.ResetPassword(context.Background(), raw, "password2", "password2"))

	err = uc.ResetPassword(context.Background(), raw, "password3", "password3")
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestRequestPasswordReset_ConcurrentRequests(t *testing.T) {
	repo := newFakeAccountRepository()
	registerAccount(t, repo, "alice@x.com", "password1")
	uc := newTestResetUsecase(repo)

	links := make([]string, 2)

	var wg sync.WaitGroup
	for i := range links {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()

			link, err := uc.RequestPasswordReset(context.Background(), "alice@x.com")
			assert.NoError(t, err)
			links[i] = link
		}(i)
	}
	wg.Wait()

	// Exactly one of the two issued tokens is redeemable afterward.
	stored := repo.get("alice@x.com")
	valid := 0
	for _, link := range links {
		digest := security.HashResetToken(tokenFromLink(t, link))
		if digest == stored.ResetToken {
			valid++
		}
	}
	assert.Equal(t, 1, valid)
}

func TestRequestPasswordReset_SendsEmail(t *testing.T) {
	repo := newFakeAccountRepository()
	registerAccount(t, repo, "alice@x.com", "password1")

	logger := zerolog.Nop()
	mail := &fakeMailer{}
	uc := NewPasswordResetUsecase(repo, mail, &logger, testResetURL, time.Hour)

	_, err := uc.RequestPasswordReset(context.Background(), "alice@x.com")
	require.NoError(t, err)

	// Delivery runs off the request path; allow it to land.
	assert.Eventually(t, func() bool {
		mail.mu.Lock()
		defer mail.mu.Unlock()
		return len(mail.sent) == 1 && mail.sent[0] == "alice@x.com"
	}, time.Second, 10*time.Millisecond)
}

// TestRecoveryFlow walks the full credential lifecycle end to end.
func TestRecoveryFlow(t *testing.T) {
	repo := newFakeAccountRepository()
	authUC := newTestAuthUsecase(repo)
	resetUC := newTestResetUsecase(repo)
	ctx := context.Background()

	_, err := authUC.Register(ctx, RegisterParams{
		Username: "alice", Email: "alice@x.com",
		Password: "pw1", ConfirmPassword: "pw1",
	})
	require.NoError(t, err)

	_, err = authUC.Register(ctx, RegisterParams{
		Username: "someone-else", Email: "alice@x.com",
		Password: "pw1", ConfirmPassword: "pw1",
	})
	require.ErrorIs(t, err, ErrAccountExists)

	require.NoError(t, authUC.Login(ctx, LoginParams{UsernameOrEmail: "alice@x.com", Password: "pw1"}))
	assert.Equal(t, int64(1), repo.get("alice@x.com").LoginCount)

	require.ErrorIs(t,
		authUC.Login(ctx, LoginParams{UsernameOrEmail: "alice@x.com", Password: "wrong"}),
		ErrInvalidCredentials)

	link, err := resetUC.RequestPasswordReset(ctx, "alice@x.com")
	require.NoError(t, err)

	require.NoError(t, resetUC.ResetPassword(ctx, tokenFromLink(t, link), "pw2", "pw2"))

	require.ErrorIs(t,
		authUC.Login(ctx, LoginParams{UsernameOrEmail: "alice@x.com", Password: "pw1"}),
		ErrInvalidCredentials)

	require.NoError(t, authUC.Login(ctx, LoginParams{UsernameOrEmail: "alice@x.com", Password: "pw2"}))
	assert.Equal(t, int64(2), repo.get("alice@x.com").LoginCount)
}

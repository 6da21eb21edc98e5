package usecase

import (
	"context"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/crmdash/backoffice-api/internal/model"
)

// fakeAccountRepository is an in-memory stand-in for the Mongo-backed
// account repository. It mirrors the store's error contract
// (mongo.ErrNoDocuments, duplicate-key write errors) and guards its map
// with a mutex so concurrent-use tests are meaningful.
type fakeAccountRepository struct {
	mu       sync.Mutex
	accounts map[string]*model.Account
}

func newFakeAccountRepository() *fakeAccountRepository {
	return &fakeAccountRepository{
		accounts: make(map[string]*model.Account),
	}
}

func duplicateKeyError() error {
	return mongo.WriteException{
		WriteErrors: mongo.WriteErrors{{Code: 11000, Message: "duplicate key error"}},
	}
}

func (f *fakeAccountRepository) CreateAccount(
	_ context.Context,
	account *model.Account,
) (*model.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, existing := range f.accounts {
		if existing.Email == account.Email || existing.Username == account.Username {
			return nil, duplicateKeyError()
		}
	}

	now := time.Now()
	account.ID = bson.NewObjectID()
	account.CreatedAt = now
	account.UpdatedAt = now

	stored := *account
	f.accounts[account.ID.Hex()] = &stored

	return account, nil
}

func (f *fakeAccountRepository) GetAccountByEmail(_ context.Context, email string) (*model.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, account := range f.accounts {
		if account.Email == email {
			copied := *account
			return &copied, nil
		}
	}

	return nil, mongo.ErrNoDocuments
}

func (f *fakeAccountRepository) GetAccountByLogin(
	_ context.Context,
	usernameOrEmail string,
) (*model.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, account := range f.accounts {
		if account.Email == usernameOrEmail || account.Username == usernameOrEmail {
			copied := *account
			return &copied, nil
		}
	}

	return nil, mongo.ErrNoDocuments
}

func (f *fakeAccountRepository) RecordLogin(_ context.Context, id bson.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	account, ok := f.accounts[id.Hex()]
	if !ok {
		return mongo.ErrNoDocuments
	}

	now := time.Now()
	account.LastLoginAt = &now
	account.LoginCount++
	account.UpdatedAt = now

	return nil
}

func (f *fakeAccountRepository) SetResetToken(
	_ context.Context,
	id bson.ObjectID,
	digest string,
	expiresAt time.Time,
) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	account, ok := f.accounts[id.Hex()]
	if !ok {
		return mongo.ErrNoDocuments
	}

	account.ResetToken = digest
	account.ResetTokenExpiresAt = &expiresAt
	account.UpdatedAt = time.Now()

	return nil
}

func (f *fakeAccountRepository) ClearResetToken(_ context.Context, id bson.ObjectID, digest string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	account, ok := f.accounts[id.Hex()]
	if !ok || account.ResetToken != digest {
		return nil
	}

	account.ResetToken = ""
	account.ResetTokenExpiresAt = nil
	account.UpdatedAt = time.Now()

	return nil
}

func (f *fakeAccountRepository) GetAccountByResetToken(
	_ context.Context,
	digest string,
) (*model.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, account := range f.accounts {
		if account.ResetToken != "" && account.ResetToken == digest {
			copied := *account
			return &copied, nil
		}
	}

	return nil, mongo.ErrNoDocuments
}

func (f *fakeAccountRepository) ConsumeResetToken(
	_ context.Context,
	digest string,
	passwordHash string,
	now time.Time,
) (*model.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, account := range f.accounts {
		if account.ResetToken != digest || account.ResetTokenExpiresAt == nil {
			continue
		}
		if !account.ResetTokenExpiresAt.After(now) {
			continue
		}

		account.PasswordHash = passwordHash
		account.ResetToken = ""
		account.ResetTokenExpiresAt = nil
		account.UpdatedAt = now

		copied := *account
		return &copied, nil
	}

	return nil, mongo.ErrNoDocuments
}

// get returns the stored account by email for assertions.
func (f *fakeAccountRepository) get(email string) *model.Account {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, account := range f.accounts {
		if account.Email == email {
			copied := *account
			return &copied
		}
	}

	return nil
}

// expireToken artificially ages the open recovery window for assertions.
func (f *fakeAccountRepository) expireToken(email string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, account := range f.accounts {
		if account.Email == email && account.ResetTokenExpiresAt != nil {
			expired := time.Now().Add(-time.Minute)
			account.ResetTokenExpiresAt = &expired
		}
	}
}

// fakeMailer records sent mail behind a mutex.
type fakeMailer struct {
	mu   sync.Mutex
	sent []string
}

func (m *fakeMailer) SendHTML(to []string, _, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.sent = append(m.sent, to...)
	return nil
}

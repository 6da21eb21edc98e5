package repository

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/crmdash/backoffice-api/internal/model"
)

// AccountRepository defines the interface for account-related database operations.
type AccountRepository interface {
	// CreateAccount inserts a new account. The unique indexes on email and
	// username make a concurrent duplicate registration fail at the store
	// rather than slipping past a read-then-write check.
	CreateAccount(ctx context.Context, account *model.Account) (*model.Account, error)

	// GetAccountByEmail retrieves an account by exact email match.
	GetAccountByEmail(ctx context.Context, email string) (*model.Account, error)

	// GetAccountByLogin retrieves an account matching the given value
	// against either email or username.
	GetAccountByLogin(ctx context.Context, usernameOrEmail string) (*model.Account, error)

	// RecordLogin stamps last_login_at and increments login_count in a
	// single atomic update.
	RecordLogin(ctx context.Context, id bson.ObjectID) error

	// SetResetToken opens (or re-opens) a recovery window, replacing any
	// token already outstanding.
	SetResetToken(ctx context.Context, id bson.ObjectID, digest string, expiresAt time.Time) error

	// ClearResetToken removes the recovery state without touching the
	// password, but only while the stored digest still matches, so a
	// token re-issued by a concurrent request is never lost.
	ClearResetToken(ctx context.Context, id bson.ObjectID, digest string) error

	// GetAccountByResetToken retrieves the account holding the given token digest.
	GetAccountByResetToken(ctx context.Context, digest string) (*model.Account, error)

	// ConsumeResetToken atomically swaps the password hash and clears the
	// recovery state, but only while the digest still matches and the
	// window is open. Returns mongo.ErrNoDocuments when the token was
	// already consumed, replaced, or expired.
	ConsumeResetToken(ctx context.Context, digest, passwordHash string, now time.Time) (*model.Account, error)
}

const accountCollection = "accounts"

type accountMongoRepository struct {
	db *mongo.Database
}

// NewAccountMongoRepository creates a new MongoDB repository for accounts.
func NewAccountMongoRepository(ctx context.Context, logger *zerolog.Logger, db *mongo.Database) AccountRepository {
	collection := db.Collection(accountCollection)

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "username", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "reset_token", Value: 1}},
		},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create account indexes")
	}

	return &accountMongoRepository{db: db}
}

func (r *accountMongoRepository) CreateAccount(
	ctx context.Context,
	account *model.Account,
) (*model.Account, error) {
	now := time.Now()
	account.CreatedAt = now
	account.UpdatedAt = now

	result, err := r.db.Collection(accountCollection).InsertOne(ctx, account)
	if err != nil {
		return nil, err
	}

	if objectID, ok := result.InsertedID.(bson.ObjectID); ok {
		account.ID = objectID
	} else {
		return nil, errors.New("failed to convert inserted ID to ObjectID")
	}

	return account, nil
}

func (r *accountMongoRepository) GetAccountByEmail(ctx context.Context, email string) (*model.Account, error) {
	result := r.db.Collection(accountCollection).FindOne(ctx, bson.M{"email": email})
	if result.Err() != nil {
		return nil, result.Err()
	}

	var account model.Account
	if err := result.Decode(&account); err != nil {
		return nil, err
	}

	return &account, nil
}

func (r *accountMongoRepository) GetAccountByLogin(
	ctx context.Context,
	usernameOrEmail string,
) (*model.Account, error) {
	filter := bson.M{
		"$or": bson.A{
			bson.M{"email": usernameOrEmail},
			bson.M{"username": usernameOrEmail},
		},
	}

	result := r.db.Collection(accountCollection).FindOne(ctx, filter)
	if result.Err() != nil {
		return nil, result.Err()
	}

	var account model.Account
	if err := result.Decode(&account); err != nil {
		return nil, err
	}

	return &account, nil
}

func (r *accountMongoRepository) RecordLogin(ctx context.Context, id bson.ObjectID) error {
	now := time.Now()
	update := bson.M{
		"$set": bson.M{
			"last_login_at": now,
			"updated_at":    now,
		},
		"$inc": bson.M{"login_count": 1},
	}

	result, err := r.db.Collection(accountCollection).UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}

	return nil
}

func (r *accountMongoRepository) SetResetToken(
	ctx context.Context,
	id bson.ObjectID,
	digest string,
	expiresAt time.Time,
) error {
	update := bson.M{
		"$set": bson.M{
			"reset_token":            digest,
			"reset_token_expires_at": expiresAt,
			"updated_at":             time.Now(),
		},
	}

	result, err := r.db.Collection(accountCollection).UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}

	return nil
}

func (r *accountMongoRepository) ClearResetToken(ctx context.Context, id bson.ObjectID, digest string) error {
	filter := bson.M{
		"_id":         id,
		"reset_token": digest,
	}
	update := bson.M{
		"$unset": bson.M{
			"reset_token":            "",
			"reset_token_expires_at": "",
		},
		"$set": bson.M{"updated_at": time.Now()},
	}

	_, err := r.db.Collection(accountCollection).UpdateOne(ctx, filter, update)
	return err
}

func (r *accountMongoRepository) GetAccountByResetToken(
	ctx context.Context,
	digest string,
) (*model.Account, error) {
	result := r.db.Collection(accountCollection).FindOne(ctx, bson.M{"reset_token": digest})
	if result.Err() != nil {
		return nil, result.Err()
	}

	var account model.Account
	if err := result.Decode(&account); err != nil {
		return nil, err
	}

	return &account, nil
}

func (r *accountMongoRepository) ConsumeResetToken(
	ctx context.Context,
	digest string,
	passwordHash string,
	now time.Time,
) (*model.Account, error) {
	filter := bson.M{
		"reset_token":            digest,
		"reset_token_expires_at": bson.M{"$gt": now},
	}
	update := bson.M{
		"$set": bson.M{
			"password_hash": passwordHash,
			"updated_at":    now,
		},
		"$unset": bson.M{
			"reset_token":            "",
			"reset_token_expires_at": "",
		},
	}

	result := r.db.Collection(accountCollection).FindOneAndUpdate(
		ctx,
		filter,
		update,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)
	if result.Err() != nil {
		return nil, result.Err()
	}

	var account model.Account
	if err := result.Decode(&account); err != nil {
		return nil, err
	}

	return &account, nil
}

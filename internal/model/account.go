package model

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Account represents a back-office user account with local credentials.
// PasswordHash and the reset-token fields never leave the service; the
// handlers expose accounts through a redacted view only.
type Account struct {
	ID           bson.ObjectID `bson:"_id,omitempty"`
	Username     string        `bson:"username"`
	Email        string        `bson:"email"`
	PasswordHash string        `bson:"password_hash"`

	// Login telemetry. Both fields are absent until the first successful login.
	LastLoginAt *time.Time `bson:"last_login_at,omitempty"`
	LoginCount  int64      `bson:"login_count,omitempty"`

	// Password-recovery state. ResetToken holds the SHA-256 digest of the
	// issued token, never the raw value. Both fields are set and cleared
	// together.
	ResetToken          string     `bson:"reset_token,omitempty"`
	ResetTokenExpiresAt *time.Time `bson:"reset_token_expires_at,omitempty"`

	CreatedAt time.Time `bson:"created_at"`
	UpdatedAt time.Time `bson:"updated_at"`
}

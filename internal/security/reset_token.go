package security

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
)

// resetTokenBytes gives 256 bits of entropy per issued token.
const resetTokenBytes = 32

// GenerateResetToken issues an opaque password-recovery token. The raw
// token is handed to the user exactly once (embedded in the reset link);
// only its SHA-256 digest is ever persisted, so a leaked database does
// not yield usable tokens.
func GenerateResetToken() (raw string, digest string, err error) {
	buf := make([]byte, resetTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", "", err
	}

	raw = hex.EncodeToString(buf)

	return raw, HashResetToken(raw), nil
}

// HashResetToken derives the storage digest for a raw reset token. The
// digest is deterministic so a presented token can be matched against
// the stored value with a single indexed lookup. An unsalted hash is
// fine here: the input already carries full-strength entropy.
func HashResetToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

package storage

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/iudanet/medportal/internal/models"
)

// RevocationStorage defines interface for revoked access token persistence.
// Tokens are stored by hash only.
type RevocationStorage interface {
	// Revoke marks a token as revoked until its expiry.
	// Revoking an already revoked token is not an error.
	Revoke(ctx context.Context, token *models.RevokedToken) error

	// IsRevoked reports whether a token with this hash was revoked
	IsRevoked(ctx context.Context, tokenHash string) (bool, error)

	// DeleteExpired removes records whose tokens expired before now.
	// Returns number of deleted records
	DeleteExpired(ctx context.Context, now time.Time) (int, error)
}

// HashToken возвращает sha256 хеш токена в hex.
// В хранилище и логах используется только хеш.
func HashToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/iudanet/medportal/internal/models"
	"github.com/iudanet/medportal/internal/server/storage"
)

var _ storage.RevocationStorage = (*Storage)(nil)

// Revoke marks a token hash as revoked. Repeated revocation keeps the first record.
func (s *Storage) Revoke(ctx context.Context, token *models.RevokedToken) error {
	if token == nil || token.TokenHash == "" {
		return storage.ErrInvalidToken
	}

	revokedAt := token.RevokedAt
	if revokedAt.IsZero() {
		revokedAt = time.Now()
	}

	query := `
		INSERT OR IGNORE INTO revoked_tokens (token_hash, user_id, expires_at, revoked_at)
		VALUES (?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		token.TokenHash,
		token.UserID,
		token.ExpiresAt.Unix(),
		revokedAt.Unix(),
	)

	if err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}

	return nil
}

// IsRevoked reports whether the token hash is in the revocation list
func (s *Storage) IsRevoked(ctx context.Context, tokenHash string) (bool, error) {
	if tokenHash == "" {
		return false, storage.ErrInvalidToken
	}

	query := `SELECT EXISTS(SELECT 1 FROM revoked_tokens WHERE token_hash = ?)`

	var exists bool
	if err := s.db.QueryRowContext(ctx, query, tokenHash).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check revoked token: %w", err)
	}

	return exists, nil
}

// DeleteExpired removes revocations of tokens that expired before now
func (s *Storage) DeleteExpired(ctx context.Context, now time.Time) (int, error) {
	query := `DELETE FROM revoked_tokens WHERE expires_at < ?`

	result, err := s.db.ExecContext(ctx, query, now.Unix())
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired revocations: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return int(rows), nil
}

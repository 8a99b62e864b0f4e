package guard

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/iudanet/medportal/internal/client/token"
	"github.com/iudanet/medportal/internal/server/storage"
)

var (
	// ErrRevoked — токен отозван при выходе из портала
	ErrRevoked = errors.New("token revoked")

	// ErrNoUserData — подпись верна, но в токене нет user_data
	ErrNoUserData = errors.New("token has no user_data claim")

	// ErrRevocationCheck — хранилище отзывов не ответило
	ErrRevocationCheck = errors.New("failed to check revocation")
)

// RevocationChecker сообщает, отозван ли токен с данным хешем
type RevocationChecker interface {
	IsRevoked(ctx context.Context, tokenHash string) (bool, error)
}

// Verifier проверяет access token: HMAC подпись, срок действия и отзыв.
type Verifier struct {
	revocations RevocationChecker
	now         func() time.Time
	secret      []byte
}

// NewVerifier создает Verifier. revocations может быть nil: тогда отзыв не проверяется.
func NewVerifier(secret []byte, revocations RevocationChecker, now func() time.Time) *Verifier {
	if now == nil {
		now = time.Now
	}
	return &Verifier{secret: secret, revocations: revocations, now: now}
}

// Verify возвращает claims проверенного токена.
// Ошибка хранилища отзывов возвращается как ошибка проверки.
func (v *Verifier) Verify(ctx context.Context, raw string) (*token.Claims, error) {
	claims, err := token.Verify(raw, v.secret, v.now())
	if err != nil {
		return nil, err
	}
	if claims.UserData == nil {
		return nil, ErrNoUserData
	}

	if v.revocations != nil {
		revoked, err := v.revocations.IsRevoked(ctx, storage.HashToken(raw))
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrRevocationCheck, err)
		}
		if revoked {
			return nil, ErrRevoked
		}
	}

	return claims, nil
}

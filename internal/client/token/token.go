// Package token decodes portal access tokens.
//
// Client-side decoding never verifies the signature: the payload is read for
// display and routing only, the issuing server remains the trust boundary.
// Verify is the server-side counterpart used by the route guard.
package token

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/iudanet/medportal/internal/models"
)

// ErrDecode matches every *DecodeError via errors.Is
var ErrDecode = errors.New("token decode failed")

// DecodeError описывает причину, по которой токен не удалось разобрать
type DecodeError struct {
	Err    error
	Reason string
}

func (e *DecodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("decode token: %s: %v", e.Reason, e.Err)
	}
	return "decode token: " + e.Reason
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Is reports whether target is ErrDecode
func (e *DecodeError) Is(target error) bool { return target == ErrDecode }

// Claims — полезная нагрузка access token.
// exp и iat — Unix timestamp в секундах.
type Claims struct {
	UserData *models.Profile `json:"user_data"`
	jwt.RegisteredClaims
}

// Expired сообщает, истек ли токен: exp <= now (с точностью до секунды)
func (c *Claims) Expired(now time.Time) bool {
	if c.ExpiresAt == nil {
		return true
	}
	return c.ExpiresAt.Unix() <= now.Unix()
}

// Expiry возвращает время истечения или нулевое время
func (c *Claims) Expiry() time.Time {
	if c.ExpiresAt == nil {
		return time.Time{}
	}
	return c.ExpiresAt.Time
}

var unverifiedParser = jwt.NewParser()

// Decode parses raw without verifying its signature and validates the payload
// shape. Malformed tokens yield a *DecodeError.
func Decode(raw string) (*Claims, error) {
	if raw == "" {
		return nil, &DecodeError{Reason: "empty token"}
	}
	if n := strings.Count(raw, ".") + 1; n != 3 {
		return nil, &DecodeError{Reason: fmt.Sprintf("expected 3 segments, got %d", n)}
	}

	claims := &Claims{}
	if _, _, err := unverifiedParser.ParseUnverified(raw, claims); err != nil {
		return nil, &DecodeError{Reason: "malformed token", Err: err}
	}

	if err := validateShape(claims); err != nil {
		return nil, err
	}

	return claims, nil
}

// validateShape отклоняет payload без обязательных полей
func validateShape(c *Claims) error {
	if c.ExpiresAt == nil {
		return &DecodeError{Reason: "missing exp claim"}
	}
	if c.UserData == nil {
		return &DecodeError{Reason: "missing user_data claim"}
	}
	return nil
}

// hmacMethods — допустимые алгоритмы подписи для Verify
var hmacMethods = []string{
	jwt.SigningMethodHS256.Alg(),
	jwt.SigningMethodHS384.Alg(),
	jwt.SigningMethodHS512.Alg(),
}

// Verify проверяет подпись (HMAC) и срок действия токена.
// Используется на стороне сервера портала.
func Verify(raw string, secret []byte, now time.Time) (*Claims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods(hmacMethods),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(func() time.Time { return now }),
	)

	claims := &Claims{}
	tok, err := parser.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		return secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to verify token: %w", err)
	}
	if !tok.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	// exp == now считается истекшим, как и в Decode
	if claims.Expired(now) {
		return nil, fmt.Errorf("failed to verify token: %w", jwt.ErrTokenExpired)
	}

	return claims, nil
}

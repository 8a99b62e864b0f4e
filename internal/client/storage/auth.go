package storage

import (
	"context"

	"github.com/iudanet/medportal/internal/models"
)

//go:generate moq -out auth_mock.go . TokenStore

// TokenName — имя токена в хранилище
type TokenName string

const (
	TokenAccess  TokenName = "access"
	TokenRefresh TokenName = "refresh"
)

// TokenStore defines the persisted holder of the access/refresh token pair.
// It is pure storage: tokens are neither validated nor decoded here.
type TokenStore interface {
	// Set сохраняет оба токена одной операцией
	Set(ctx context.Context, pair models.TokenPair) error

	// Get возвращает токен по имени.
	// Returns ErrTokenNotFound if the token is absent.
	Get(ctx context.Context, name TokenName) (string, error)

	// Clear удаляет оба токена. Очистка пустого хранилища не является ошибкой.
	Clear(ctx context.Context) error
}

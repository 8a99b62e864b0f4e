package auth

import (
	"context"

	"github.com/iudanet/medportal/internal/client/token"
	"github.com/iudanet/medportal/pkg/api"
)

//go:generate moq -out service_mock.go . Authenticator

// Authenticator defines the authentication flows of the portal client.
// Tokens obtained here are written to the Token Store used by the HTTP client.
type Authenticator interface {
	// Login отправляет email и пароль.
	// При require_otp сохраняет email до подтверждения и возвращает NextPath=/auth/verify,
	// токены при этом не сохраняются.
	Login(ctx context.Context, email, password string) (*LoginResult, error)

	// VerifyOTP подтверждает код для email, сохраненного Login.
	// Returns ErrNoPendingLogin if there is no login waiting for a code.
	VerifyOTP(ctx context.Context, otp string) (*LoginResult, error)

	// Register проверяет форму и регистрирует пользователя
	Register(ctx context.Context, input RegisterInput) (*api.RegisterResponse, error)

	// Logout удаляет токены, ожидающий email и профиль сессии
	Logout(ctx context.Context) error

	// IsAuthenticated сообщает, есть ли сохраненный действующий access token
	IsAuthenticated(ctx context.Context) (bool, error)

	// CurrentClaims декодирует сохраненный access token
	CurrentClaims(ctx context.Context) (*token.Claims, error)
}

var _ Authenticator = (*Service)(nil)

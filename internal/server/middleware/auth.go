package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/iudanet/medportal/internal/client/token"
)

// TokenVerifier проверяет подпись, срок и отзыв access token
type TokenVerifier interface {
	Verify(ctx context.Context, raw string) (*token.Claims, error)
}

type claimsKey struct{}

// ErrNoClaims — в контексте нет проверенного токена
var ErrNoClaims = errors.New("no verified claims in context")

// BearerAuth создает middleware для проверки access token из заголовка
// Authorization: Bearer. Используется для /api/* маршрутов самого портала.
func BearerAuth(verifier TokenVerifier, logger *slog.Logger) func(http.Handler) http.Handler {
	return SessionAuth(verifier, "", logger)
}

// SessionAuth как BearerAuth, но при отсутствии заголовка берет токен
// из cookie cookieName. Пустой cookieName отключает cookie.
func SessionAuth(verifier TokenVerifier, cookieName string, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, err := accessToken(r, cookieName)
			if err != nil {
				// Заголовок не логируем: в нем может быть токен
				logger.Warn("Invalid Authorization header", "path", r.URL.Path, "error", err)
				writeError(w, err.Error(), http.StatusUnauthorized)
				return
			}

			claims, err := verifier.Verify(r.Context(), raw)
			if err != nil {
				logger.Warn("Invalid access token",
					"error", err,
					"request_id", GetRequestID(r.Context()),
				)
				writeError(w, "invalid token", http.StatusUnauthorized)
				return
			}

			logger.Debug("User authenticated", "user_id", claims.UserData.BasicInfo.ID)

			ctx := WithClaims(r.Context(), claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

var (
	errMissingToken = errors.New("missing token")
	errTokenFormat  = errors.New("invalid token format")
)

func accessToken(r *http.Request, cookieName string) (string, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		if cookieName != "" {
			if c, err := r.Cookie(cookieName); err == nil && c.Value != "" {
				return c.Value, nil
			}
		}
		return "", errMissingToken
	}

	// Ожидаем формат: "Bearer <token>"
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", errTokenFormat
	}
	return parts[1], nil
}

// WithClaims кладет проверенные claims в контекст
func WithClaims(ctx context.Context, claims *token.Claims) context.Context {
	return context.WithValue(ctx, claimsKey{}, claims)
}

// GetClaims возвращает claims, положенные BearerAuth
func GetClaims(ctx context.Context) (*token.Claims, error) {
	claims, ok := ctx.Value(claimsKey{}).(*token.Claims)
	if !ok || claims == nil {
		return nil, ErrNoClaims
	}
	return claims, nil
}

// Package guard решает, может ли запрос к странице портала пройти без
// перехода на логин.
package guard

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"path"
	"strings"

	"github.com/iudanet/medportal/internal/client/navigation"
	"github.com/iudanet/medportal/internal/client/token"
)

const (
	// AccessTokenCookie — http-only cookie с access token, которую ставит сервер портала
	AccessTokenCookie = "accessToken"
	// RefreshTokenCookie — http-only cookie с refresh token
	RefreshTokenCookie = "refreshToken"
)

// Исходы решения, они же значения метки метрики
const (
	OutcomePublic       = "public"
	OutcomeAsset        = "asset"
	OutcomeAuthorized   = "authorized"
	OutcomeMissingToken = "missing_token"
	OutcomeInvalidToken = "invalid_token"
	OutcomeRevoked      = "revoked"
	OutcomeError        = "error"
)

// DefaultPublicPrefixes — пути, доступные без токена
var DefaultPublicPrefixes = []string{"/auth", "/_next"}

// assetExtensions — картинки и шрифты, доступные вне /_next без токена.
// .txt/.json/.js рядом со страницами несут данные страницы и под guard.
var assetExtensions = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true, ".svg": true, ".webp": true, ".avif": true, ".ico": true,
	".woff": true, ".woff2": true, ".ttf": true, ".otf": true, ".eot": true,
}

// TokenVerifier проверяет access token
type TokenVerifier interface {
	Verify(ctx context.Context, raw string) (*token.Claims, error)
}

// Recorder учитывает решения guard
type Recorder interface {
	RecordGuardDecision(outcome string)
}

// Config — настройки guard
type Config struct {
	PublicPrefixes []string // по умолчанию DefaultPublicPrefixes
	CookieName     string   // по умолчанию AccessTokenCookie
}

// Decision — результат проверки запроса.
// При Allowed=false запрос перенаправляется на To, From — исходный путь.
type Decision struct {
	Claims  *token.Claims
	To      string
	From    string
	Outcome string
	Allowed bool
}

// Guard защищает страницы портала
type Guard struct {
	verifier       TokenVerifier
	recorder       Recorder
	logger         *slog.Logger
	cookieName     string
	publicPrefixes []string
}

// New создает Guard. recorder может быть nil.
func New(verifier TokenVerifier, cfg Config, recorder Recorder, logger *slog.Logger) *Guard {
	g := &Guard{
		verifier:       verifier,
		recorder:       recorder,
		logger:         logger,
		cookieName:     cfg.CookieName,
		publicPrefixes: cfg.PublicPrefixes,
	}
	if g.logger == nil {
		g.logger = slog.Default()
	}
	if g.cookieName == "" {
		g.cookieName = AccessTokenCookie
	}
	if len(g.publicPrefixes) == 0 {
		g.publicPrefixes = DefaultPublicPrefixes
	}
	return g
}

// Decide проверяет запрос. Не пишет ответ.
// Решение принимается по очищенному пути: file server отдает path.Clean.
func (g *Guard) Decide(r *http.Request) Decision {
	p := cleanPath(r.URL.Path)

	if g.isPublic(p) {
		return g.allow(OutcomePublic, nil)
	}
	if isAsset(p) {
		return g.allow(OutcomeAsset, nil)
	}

	cookie, err := r.Cookie(g.cookieName)
	if err != nil || cookie.Value == "" {
		return g.redirect(p, OutcomeMissingToken)
	}

	claims, err := g.verifier.Verify(r.Context(), cookie.Value)
	if err != nil {
		return g.redirect(p, g.classify(r.Context(), p, err))
	}

	return g.allow(OutcomeAuthorized, claims)
}

// Middleware пропускает разрешенные запросы и отправляет остальные на логин (302)
func (g *Guard) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			d := g.Decide(r)
			if !d.Allowed {
				http.Redirect(w, r, d.To, http.StatusFound)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// cleanPath убирает "." и ".." сегменты, сохраняя завершающий слэш
func cleanPath(p string) string {
	if p == "" {
		return "/"
	}
	if p[0] != '/' {
		p = "/" + p
	}
	np := path.Clean(p)
	if p[len(p)-1] == '/' && np != "/" {
		np += "/"
	}
	return np
}

// isPublic — путь начинается с одного из публичных префиксов
func (g *Guard) isPublic(p string) bool {
	for _, prefix := range g.publicPrefixes {
		if strings.HasPrefix(p, prefix) {
			return true
		}
	}
	return false
}

// isAsset — последний сегмент пути имеет расширение статического файла
func isAsset(p string) bool {
	if p == "/favicon.ico" {
		return true
	}
	return assetExtensions[strings.ToLower(path.Ext(p))]
}

func (g *Guard) classify(ctx context.Context, p string, err error) string {
	switch {
	case errors.Is(err, ErrRevoked):
		return OutcomeRevoked
	case errors.Is(err, ErrRevocationCheck):
		// Хранилище недоступно: не пускаем
		g.logger.ErrorContext(ctx, "guard revocation check failed", slog.String("path", p), slog.Any("error", err))
		return OutcomeError
	}

	g.logger.DebugContext(ctx, "guard rejected token", slog.String("path", p), slog.Any("error", err))
	return OutcomeInvalidToken
}

func (g *Guard) allow(outcome string, claims *token.Claims) Decision {
	g.record(outcome)
	return Decision{Allowed: true, Outcome: outcome, Claims: claims}
}

func (g *Guard) redirect(from, outcome string) Decision {
	g.record(outcome)
	return Decision{
		To:      navigation.LoginRedirect(from),
		From:    from,
		Outcome: outcome,
	}
}

func (g *Guard) record(outcome string) {
	if g.recorder != nil {
		g.recorder.RecordGuardDecision(outcome)
	}
}

package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	clientapi "github.com/iudanet/medportal/internal/client/api"
	"github.com/iudanet/medportal/internal/client/navigation"
	"github.com/iudanet/medportal/internal/client/token"
	"github.com/iudanet/medportal/internal/models"
	"github.com/iudanet/medportal/internal/server/guard"
	"github.com/iudanet/medportal/internal/server/middleware"
	"github.com/iudanet/medportal/internal/server/storage"
	"github.com/iudanet/medportal/internal/validation"
	"github.com/iudanet/medportal/pkg/api"
)

// Исходы входа для метрик
const (
	LoginSuccess     = "success"
	LoginOTPRequired = "otp_required"
	LoginRejected    = "rejected"
	LoginInvalid     = "invalid"
	LoginError       = "error"
)

// AuthAPI — вызовы бэкенда портала, которые проксирует BFF
type AuthAPI interface {
	Login(ctx context.Context, req api.LoginRequest) (*api.LoginResponse, error)
	VerifyLoginOTP(ctx context.Context, req api.VerifyOTPRequest) (*api.VerifyOTPResponse, error)
	RefreshToken(ctx context.Context, refreshToken string) (*api.RefreshResponse, error)
}

// TokenVerifier проверяет access token, выданный бэкендом
type TokenVerifier interface {
	Verify(ctx context.Context, raw string) (*token.Claims, error)
}

// SessionMetrics учитывает входы и отзывы токенов
type SessionMetrics interface {
	RecordLogin(outcome string)
	RecordRevocation()
	RecordProxyError()
}

// SessionConfig — параметры cookie сессии
type SessionConfig struct {
	Now              func() time.Time
	RefreshCookieTTL time.Duration
	CookieSecure     bool
}

// SessionHandler обрабатывает BFF эндпоинты /auth/session*.
// Токены попадают в браузер только как http-only cookie.
type SessionHandler struct {
	responder
	api         AuthAPI
	verifier    TokenVerifier
	revocations storage.RevocationStorage
	audit       storage.AuditStorage
	metrics     SessionMetrics
	cfg         SessionConfig
}

// NewSessionHandler создает handler BFF сессии
func NewSessionHandler(
	logger *slog.Logger,
	authAPI AuthAPI,
	verifier TokenVerifier,
	revocations storage.RevocationStorage,
	audit storage.AuditStorage,
	metrics SessionMetrics,
	cfg SessionConfig,
) *SessionHandler {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.RefreshCookieTTL <= 0 {
		cfg.RefreshCookieTTL = 7 * 24 * time.Hour
	}
	return &SessionHandler{
		responder:   responder{logger: logger},
		api:         authAPI,
		verifier:    verifier,
		revocations: revocations,
		audit:       audit,
		metrics:     metrics,
		cfg:         cfg,
	}
}

// Login обрабатывает POST /auth/session
func (h *SessionHandler) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req api.LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		h.sendError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if err := validation.ValidateLogin(req.Email, req.Password); err != nil {
		h.metrics.RecordLogin(LoginInvalid)
		h.sendError(w, err.Error(), http.StatusBadRequest)
		return
	}

	resp, err := h.api.Login(ctx, req)
	if err != nil {
		h.record(r, &models.AuthEvent{Email: req.Email, Kind: models.EventLoginFailed})
		h.backendError(w, r, "login", err, true)
		return
	}

	switch {
	case resp.RequireOTP:
		h.metrics.RecordLogin(LoginOTPRequired)
		h.record(r, &models.AuthEvent{Email: req.Email, Kind: models.EventOTPRequired})
		h.logger.InfoContext(ctx, "login requires otp")
		h.sendJSON(w, api.SessionResponse{RequireOTP: true, Next: navigation.VerifyPath}, http.StatusOK)
	case resp.Tokens != nil:
		h.establish(w, r, *resp.Tokens, models.EventLogin)
	default:
		h.metrics.RecordLogin(LoginError)
		h.logger.ErrorContext(ctx, "backend login response has neither tokens nor otp requirement")
		h.sendError(w, "unexpected login response", http.StatusBadGateway)
	}
}

// VerifyOTP обрабатывает POST /auth/session/verify
func (h *SessionHandler) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	var req api.VerifyOTPRequest
	if err := decodeJSON(r, &req); err != nil {
		h.sendError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	verrs := validation.Errors{}
	if err := validation.ValidateEmail(req.Email); err != nil {
		verrs["email"] = err.Error()
	}
	if err := validation.ValidateOTP(req.OTP); err != nil {
		verrs["otp"] = err.Error()
	}
	if len(verrs) > 0 {
		h.metrics.RecordLogin(LoginInvalid)
		h.sendError(w, verrs.Error(), http.StatusBadRequest)
		return
	}

	resp, err := h.api.VerifyLoginOTP(r.Context(), req)
	if err != nil {
		h.record(r, &models.AuthEvent{Email: req.Email, Kind: models.EventOTPFailed})
		h.backendError(w, r, "verify otp", err, true)
		return
	}

	h.establish(w, r, resp.Tokens, models.EventOTPVerified)
}

// Refresh обрабатывает POST /auth/session/refresh.
// Refresh token берется из cookie; отказ бэкенда завершает сессию.
func (h *SessionHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	cookie, err := r.Cookie(guard.RefreshTokenCookie)
	if err != nil || cookie.Value == "" {
		h.sendError(w, "no session", http.StatusUnauthorized)
		return
	}

	resp, err := h.api.RefreshToken(ctx, cookie.Value)
	if err != nil {
		var statusErr *clientapi.StatusError
		if errors.As(err, &statusErr) && statusErr.StatusCode < http.StatusInternalServerError {
			h.logger.InfoContext(ctx, "refresh rejected, ending session", slog.Int("status", statusErr.StatusCode))
			h.record(r, &models.AuthEvent{Kind: models.EventRefreshFailed})
			h.clearCookies(w)
			h.sendError(w, "session expired", http.StatusUnauthorized)
			return
		}
		h.backendError(w, r, "refresh", err, false)
		return
	}

	// Бэкенд может не ротировать refresh token
	refresh := resp.Refresh
	if refresh == "" {
		refresh = cookie.Value
	}

	claims, err := h.verifier.Verify(ctx, resp.Access)
	if err != nil {
		h.logger.ErrorContext(ctx, "backend issued unverifiable access token", slog.Any("error", err))
		h.sendError(w, "unusable access token", http.StatusBadGateway)
		return
	}

	h.setCookies(w, models.TokenPair{Access: resp.Access, Refresh: refresh}, claims)
	h.record(r, &models.AuthEvent{UserID: claims.UserData.BasicInfo.ID, Kind: models.EventRefresh})
	h.sendJSON(w, api.SessionResponse{Next: navigation.HomePath(claims.UserData.BasicInfo)}, http.StatusOK)
}

// Logout обрабатывает DELETE /auth/session.
// Отзывает действующий access token и удаляет cookie. Идемпотентен.
func (h *SessionHandler) Logout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if cookie, err := r.Cookie(guard.AccessTokenCookie); err == nil && cookie.Value != "" {
		// Истекший или чужой токен отзывать не нужно
		if claims, err := h.verifier.Verify(ctx, cookie.Value); err == nil {
			revoked := &models.RevokedToken{
				TokenHash: storage.HashToken(cookie.Value),
				UserID:    claims.UserData.BasicInfo.ID,
				ExpiresAt: claims.Expiry(),
				RevokedAt: h.cfg.Now(),
			}
			if err := h.revocations.Revoke(ctx, revoked); err != nil {
				h.logger.ErrorContext(ctx, "failed to revoke access token", slog.Any("error", err))
				h.sendError(w, "internal server error", http.StatusInternalServerError)
				return
			}
			h.metrics.RecordRevocation()
			h.record(r, &models.AuthEvent{UserID: revoked.UserID, Kind: models.EventLogout})
			h.logger.InfoContext(ctx, "session ended", slog.String("user_id", revoked.UserID))
		}
	}

	h.clearCookies(w)
	w.WriteHeader(http.StatusNoContent)
}

// establish проверяет выданный токен, ставит cookie и сообщает, куда перейти
func (h *SessionHandler) establish(w http.ResponseWriter, r *http.Request, tokens models.TokenPair, kind models.AuthEventKind) {
	ctx := r.Context()

	claims, err := h.verifier.Verify(ctx, tokens.Access)
	if err != nil {
		h.metrics.RecordLogin(LoginError)
		h.logger.ErrorContext(ctx, "backend issued unverifiable access token", slog.Any("error", err))
		h.sendError(w, "unusable access token", http.StatusBadGateway)
		return
	}

	h.setCookies(w, tokens, claims)
	h.metrics.RecordLogin(LoginSuccess)

	info := claims.UserData.BasicInfo
	h.record(r, &models.AuthEvent{UserID: info.ID, Email: info.Email, Kind: kind})
	h.logger.InfoContext(ctx, "session established",
		slog.String("user_id", info.ID),
		slog.String("role", string(info.Role)))

	h.sendJSON(w, api.SessionResponse{Next: navigation.HomePath(info)}, http.StatusOK)
}

// backendError переводит ошибку бэкенда в ответ портала.
// Ответ бэкенда с кодом 4xx передается как есть, остальное — 502.
// login=true учитывает исход как попытку входа.
func (h *SessionHandler) backendError(w http.ResponseWriter, r *http.Request, op string, err error, login bool) {
	var statusErr *clientapi.StatusError
	if errors.As(err, &statusErr) && statusErr.StatusCode < http.StatusInternalServerError {
		if login {
			h.metrics.RecordLogin(LoginRejected)
		}
		h.logger.InfoContext(r.Context(), op+" rejected by backend", slog.Int("status", statusErr.StatusCode))
		msg := statusErr.Message
		if msg == "" {
			msg = http.StatusText(statusErr.StatusCode)
		}
		h.sendError(w, msg, statusErr.StatusCode)
		return
	}

	if login {
		h.metrics.RecordLogin(LoginError)
	}
	h.metrics.RecordProxyError()
	h.logger.ErrorContext(r.Context(), op+" failed", slog.Any("error", err))
	h.sendError(w, "portal backend unavailable", http.StatusBadGateway)
}

func (h *SessionHandler) setCookies(w http.ResponseWriter, tokens models.TokenPair, claims *token.Claims) {
	http.SetCookie(w, h.cookie(guard.AccessTokenCookie, tokens.Access, claims.Expiry()))
	if tokens.Refresh != "" {
		http.SetCookie(w, h.cookie(guard.RefreshTokenCookie, tokens.Refresh, h.cfg.Now().Add(h.cfg.RefreshCookieTTL)))
	}
}

func (h *SessionHandler) clearCookies(w http.ResponseWriter) {
	for _, name := range []string{guard.AccessTokenCookie, guard.RefreshTokenCookie} {
		c := h.cookie(name, "", time.Unix(0, 0))
		c.MaxAge = -1
		http.SetCookie(w, c)
	}
}

func (h *SessionHandler) cookie(name, value string, expires time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   h.cfg.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	}
}

// record пишет событие в журнал. Ошибка журнала не прерывает запрос.
func (h *SessionHandler) record(r *http.Request, event *models.AuthEvent) {
	event.RemoteAddr = r.RemoteAddr
	event.RequestID = middleware.GetRequestID(r.Context())
	if err := h.audit.RecordEvent(r.Context(), event); err != nil {
		h.logger.WarnContext(r.Context(), "failed to record auth event",
			slog.String("kind", string(event.Kind)),
			slog.Any("error", err))
	}
}

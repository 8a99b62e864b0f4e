package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/iudanet/medportal/internal/client/navigation"
	"github.com/iudanet/medportal/internal/client/session"
	"github.com/iudanet/medportal/internal/client/storage"
	"github.com/iudanet/medportal/internal/client/token"
	"github.com/iudanet/medportal/internal/models"
	"github.com/iudanet/medportal/internal/validation"
	"github.com/iudanet/medportal/pkg/api"
)

// ErrNoPendingLogin возвращается VerifyOTP, если Login не запрашивал код
var ErrNoPendingLogin = errors.New("no login is waiting for a verification code")

// API — эндпоинты, используемые сервисом авторизации
type API interface {
	Login(ctx context.Context, req api.LoginRequest) (*api.LoginResponse, error)
	VerifyLoginOTP(ctx context.Context, req api.VerifyOTPRequest) (*api.VerifyOTPResponse, error)
	Register(ctx context.Context, req api.RegisterRequest) (*api.RegisterResponse, error)
}

// Service предоставляет функции авторизации
type Service struct {
	api     API
	tokens  storage.TokenStore
	pending storage.SessionStore
	session *session.Session
	now     func() time.Time
	logger  *slog.Logger
}

// NewService создает новый сервис авторизации. sess может быть nil.
func NewService(client API, tokens storage.TokenStore, pending storage.SessionStore, sess *session.Session, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		api:     client,
		tokens:  tokens,
		pending: pending,
		session: sess,
		now:     time.Now,
		logger:  logger,
	}
}

// LoginResult содержит результат шага авторизации
type LoginResult struct {
	Profile    *models.Profile // nil, пока требуется OTP
	Email      string
	NextPath   string // куда перейти после шага
	RequireOTP bool
}

// RegisterInput — форма регистрации
type RegisterInput struct {
	api.RegisterRequest
	ConfirmPassword string
}

// Login выполняет первый шаг авторизации
func (s *Service) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	if err := validation.ValidateLogin(email, password); err != nil {
		return nil, err
	}

	resp, err := s.api.Login(ctx, api.LoginRequest{Email: email, Password: password})
	if err != nil {
		return nil, fmt.Errorf("login failed: %w", err)
	}

	if resp.RequireOTP {
		// Email нужен для подтверждения кода, токенов еще нет
		if err := s.pending.SavePendingEmail(ctx, email); err != nil {
			return nil, fmt.Errorf("failed to save pending login: %w", err)
		}
		s.logger.DebugContext(ctx, "login requires otp verification")
		return &LoginResult{Email: email, RequireOTP: true, NextPath: navigation.VerifyPath}, nil
	}

	if resp.Tokens == nil {
		return nil, fmt.Errorf("login failed: response carries neither tokens nor an otp requirement")
	}

	return s.establish(ctx, email, *resp.Tokens)
}

// VerifyOTP выполняет второй шаг авторизации
func (s *Service) VerifyOTP(ctx context.Context, otp string) (*LoginResult, error) {
	if err := validation.ValidateOTP(otp); err != nil {
		return nil, validation.Errors{"otp": err.Error()}
	}

	email, err := s.pending.GetPendingEmail(ctx)
	if errors.Is(err, storage.ErrPendingEmailNotFound) {
		return nil, ErrNoPendingLogin
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read pending login: %w", err)
	}

	resp, err := s.api.VerifyLoginOTP(ctx, api.VerifyOTPRequest{Email: email, OTP: otp})
	if err != nil {
		return nil, fmt.Errorf("otp verification failed: %w", err)
	}

	result, err := s.establish(ctx, email, resp.Tokens)
	if err != nil {
		return nil, err
	}

	if err := s.pending.DeletePendingEmail(ctx); err != nil {
		s.logger.WarnContext(ctx, "failed to delete pending login email", "error", err)
	}

	return result, nil
}

// establish сохраняет токены и заполняет сессию из claims
func (s *Service) establish(ctx context.Context, email string, pair models.TokenPair) (*LoginResult, error) {
	claims, err := token.Decode(pair.Access)
	if err != nil {
		return nil, fmt.Errorf("server returned an unusable access token: %w", err)
	}

	if err := s.tokens.Set(ctx, pair); err != nil {
		return nil, fmt.Errorf("failed to save tokens: %w", err)
	}

	if s.session != nil {
		if err := s.session.Seed(claims); err != nil {
			return nil, fmt.Errorf("failed to start session: %w", err)
		}
	}

	info := claims.UserData.BasicInfo
	s.logger.InfoContext(ctx, "logged in", "user_id", info.ID, "role", info.Role)

	return &LoginResult{
		Email:    email,
		Profile:  claims.UserData.Clone(),
		NextPath: navigation.HomePath(info),
	}, nil
}

// Register проверяет форму и регистрирует пользователя
func (s *Service) Register(ctx context.Context, input RegisterInput) (*api.RegisterResponse, error) {
	if err := validation.ValidateRegistration(input.RegisterRequest, input.ConfirmPassword); err != nil {
		return nil, err
	}

	resp, err := s.api.Register(ctx, input.RegisterRequest)
	if err != nil {
		return nil, fmt.Errorf("registration failed: %w", err)
	}
	return resp, nil
}

// Logout выполняет выход из системы.
// Локальные данные удаляются всегда, ошибки объединяются.
func (s *Service) Logout(ctx context.Context) error {
	var errs []error

	if err := s.tokens.Clear(ctx); err != nil {
		errs = append(errs, fmt.Errorf("failed to clear tokens: %w", err))
	}
	if err := s.pending.DeletePendingEmail(ctx); err != nil {
		errs = append(errs, fmt.Errorf("failed to delete pending login: %w", err))
	}
	if s.session != nil {
		s.session.Reset()
	}

	return errors.Join(errs...)
}

// IsAuthenticated сообщает, есть ли сохраненный действующий access token.
// Недекодируемый токен считается отсутствующим.
func (s *Service) IsAuthenticated(ctx context.Context) (bool, error) {
	claims, err := s.CurrentClaims(ctx)
	if errors.Is(err, storage.ErrTokenNotFound) || errors.Is(err, token.ErrDecode) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return !claims.Expired(s.now()), nil
}

// CurrentClaims декодирует сохраненный access token
func (s *Service) CurrentClaims(ctx context.Context) (*token.Claims, error) {
	access, err := s.tokens.Get(ctx, storage.TokenAccess)
	if err != nil {
		if errors.Is(err, storage.ErrTokenNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to read access token: %w", err)
	}
	return token.Decode(access)
}

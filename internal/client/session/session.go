// Package session хранит профиль текущего пользователя в памяти клиента.
//
// Профиль создается из claims access token после логина (Seed), обновляется
// запросом GET /api/profile/ (Refresh) и сбрасывается при выходе (Reset).
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/iudanet/medportal/internal/client/token"
	"github.com/iudanet/medportal/internal/models"
)

// ErrNoProfile возвращается, когда профиль еще не загружен
var ErrNoProfile = errors.New("session profile is not loaded")

// ProfileFetcher загружает актуальный профиль с сервера
type ProfileFetcher interface {
	GetProfile(ctx context.Context) (*models.Profile, error)
}

// Session is the in-memory read model of the signed-in user.
//
// Refresh calls are not deduplicated: every call fetches the profile. Each call
// takes a ticket when it starts, and a response is applied only if no
// later-issued ticket has been applied yet, so the most recently started
// refresh wins regardless of the order responses arrive in.
type Session struct {
	fetcher ProfileFetcher
	logger  *slog.Logger
	profile *models.Profile

	issued  atomic.Uint64
	applied uint64

	mounted atomic.Bool
	mu      sync.RWMutex
}

// New создает пустую сессию
func New(fetcher ProfileFetcher, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{fetcher: fetcher, logger: logger}
}

// Mount выполняет первоначальную загрузку профиля. Повторные вызовы ничего не делают.
func (s *Session) Mount(ctx context.Context) error {
	if !s.mounted.CompareAndSwap(false, true) {
		return nil
	}
	return s.Refresh(ctx)
}

// Refresh загружает профиль и атомарно заменяет локальное состояние.
// Если ctx отменен до получения ответа, состояние не меняется.
func (s *Session) Refresh(ctx context.Context) error {
	ticket := s.issued.Add(1)

	profile, err := s.fetcher.GetProfile(ctx)
	if err != nil {
		return fmt.Errorf("failed to refresh profile: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if profile == nil {
		return fmt.Errorf("failed to refresh profile: empty response")
	}

	if !s.apply(ticket, profile.Clone()) {
		s.logger.DebugContext(ctx, "discarding stale profile response", "ticket", ticket)
	}
	return nil
}

// Seed заполняет профиль из claims access token (первое декодирование после логина)
func (s *Session) Seed(claims *token.Claims) error {
	if claims == nil || claims.UserData == nil {
		return fmt.Errorf("%w: claims carry no user data", ErrNoProfile)
	}
	s.apply(s.issued.Add(1), claims.UserData.Clone())
	return nil
}

// Reset удаляет профиль. Ответы refresh, запущенных до Reset, будут отброшены.
func (s *Session) Reset() {
	s.apply(s.issued.Add(1), nil)
}

func (s *Session) apply(ticket uint64, profile *models.Profile) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if ticket <= s.applied {
		return false
	}
	s.applied = ticket
	s.profile = profile
	return true
}

// Profile возвращает копию профиля
func (s *Session) Profile() (*models.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.profile == nil {
		return nil, ErrNoProfile
	}
	return s.profile.Clone(), nil
}

// BasicInfo возвращает основную информацию; ok=false, если профиль не загружен
func (s *Session) BasicInfo() (info models.BasicInfo, ok bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.profile == nil {
		return models.BasicInfo{}, false
	}
	return s.profile.BasicInfo, true
}

// MedicalInfo возвращает медицинскую информацию или nil
func (s *Session) MedicalInfo() *models.MedicalInfo {
	p, err := s.Profile()
	if err != nil {
		return nil
	}
	return p.MedicalInfo
}

// HospitalInfo возвращает данные больницы или nil
func (s *Session) HospitalInfo() *models.HospitalInfo {
	p, err := s.Profile()
	if err != nil {
		return nil
	}
	return p.HospitalInfo
}

// Role возвращает роль пользователя или пустую строку
func (s *Session) Role() models.Role {
	info, _ := s.BasicInfo()
	return info.Role
}

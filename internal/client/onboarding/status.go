// Package onboarding отслеживает, прошел ли пользователь онбординг.
package onboarding

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/iudanet/medportal/internal/client/storage"
)

// Status is the in-memory view of the persisted onboarding flag.
//
// Until the stored value has been read it reports loading=true and
// completed=true, so an already onboarded user is never shown the wizard while
// the flag loads. Consumers that route on the flag should Wait first.
type Status struct {
	store  storage.OnboardingStore
	logger *slog.Logger
	loaded chan struct{}

	loadErr  error
	loadOnce sync.Once

	mu        sync.RWMutex
	completed bool
	loading   bool
}

// NewStatus создает статус со значениями по умолчанию
func NewStatus(store storage.OnboardingStore, logger *slog.Logger) *Status {
	if logger == nil {
		logger = slog.Default()
	}
	return &Status{
		store:     store,
		logger:    logger,
		loaded:    make(chan struct{}),
		completed: true,
		loading:   true,
	}
}

// HasCompletedOnboarding возвращает текущее значение флага
func (s *Status) HasCompletedOnboarding() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.completed
}

// IsLoading сообщает, что сохраненное значение еще не прочитано
func (s *Status) IsLoading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// Load читает сохраненный флаг. Чтение выполняется один раз, повторные
// вызовы возвращают результат первого.
func (s *Status) Load(ctx context.Context) error {
	s.loadOnce.Do(func() {
		s.loadErr = s.load(ctx)
		close(s.loaded)
	})
	return s.loadErr
}

func (s *Status) load(ctx context.Context) error {
	completed, err := s.store.GetOnboardingCompleted(ctx)
	switch {
	case errors.Is(err, storage.ErrFlagNotFound):
		completed = false
	case err != nil:
		// Значение по умолчанию остается, чтобы не показывать мастер по ошибке
		s.logger.WarnContext(ctx, "failed to read onboarding flag", "error", err)
		s.mu.Lock()
		s.loading = false
		s.mu.Unlock()
		return fmt.Errorf("failed to read onboarding flag: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	// CompleteOnboarding мог отработать, пока шло чтение
	if !s.loading && s.completed {
		return nil
	}
	s.completed = completed
	s.loading = false
	return nil
}

// Start запускает Load в фоне
func (s *Status) Start(ctx context.Context) {
	go func() {
		_ = s.Load(ctx)
	}()
}

// Wait блокируется до завершения Load или отмены ctx
func (s *Status) Wait(ctx context.Context) error {
	select {
	case <-s.loaded:
		return s.loadErr
	case <-ctx.Done():
		return ctx.Err()
	}
}

// CompleteOnboarding сохраняет completed=true и обновляет состояние в памяти.
// Сервер не уведомляется. Повторные вызовы безопасны.
func (s *Status) CompleteOnboarding(ctx context.Context) error {
	if err := s.store.SetOnboardingCompleted(ctx, true); err != nil {
		return fmt.Errorf("failed to save onboarding flag: %w", err)
	}

	s.mu.Lock()
	s.completed = true
	s.loading = false
	s.mu.Unlock()
	return nil
}

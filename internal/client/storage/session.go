package storage

import "context"

//go:generate moq -out session_mock.go . SessionStore OnboardingStore

// SessionStore хранит короткоживущие данные между шагами логина
// (аналог sessionStorage браузера)
type SessionStore interface {
	// SavePendingEmail сохраняет email логина, ожидающего подтверждения OTP
	SavePendingEmail(ctx context.Context, email string) error

	// GetPendingEmail возвращает email или ErrPendingEmailNotFound
	GetPendingEmail(ctx context.Context) (string, error)

	// DeletePendingEmail удаляет email. Отсутствие записи не является ошибкой.
	DeletePendingEmail(ctx context.Context) error
}

// OnboardingStore хранит флаг прохождения онбординга
type OnboardingStore interface {
	// SetOnboardingCompleted сохраняет значение флага
	SetOnboardingCompleted(ctx context.Context, completed bool) error

	// GetOnboardingCompleted возвращает сохраненное значение.
	// Returns ErrFlagNotFound if the flag has never been written.
	GetOnboardingCompleted(ctx context.Context) (bool, error)
}

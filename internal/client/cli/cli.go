package cli

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/iudanet/medportal/internal/client/api"
	"github.com/iudanet/medportal/internal/client/auth"
	"github.com/iudanet/medportal/internal/client/iocli"
	"github.com/iudanet/medportal/internal/client/navigation"
	"github.com/iudanet/medportal/internal/client/onboarding"
	"github.com/iudanet/medportal/internal/client/session"
	"github.com/iudanet/medportal/internal/validation"
)

// Cli выполняет команды клиента портала
type Cli struct {
	io         iocli.IO
	auth       auth.Authenticator
	apiClient  api.ClientAPI
	session    *session.Session
	onboarding *onboarding.Status
}

// New создает Cli
func New(io iocli.IO, authService auth.Authenticator, apiClient api.ClientAPI, sess *session.Session, status *onboarding.Status) *Cli {
	return &Cli{
		io:         io,
		auth:       authService,
		apiClient:  apiClient,
		session:    sess,
		onboarding: status,
	}
}

// Navigator возвращает обработчик принудительных переходов для HTTP клиента.
// В консоли переход на логин превращается в сообщение пользователю.
func Navigator(io iocli.IO) navigation.Navigator {
	return navigation.NavigatorFunc(func(path string) {
		if strings.HasPrefix(path, navigation.LoginPath) {
			io.Println("⚠️  Your session has ended. Please run 'medportal login' again.")
			return
		}
		io.Printf("→ %s\n", path)
	})
}

// describeNext печатает следующий шаг после авторизации
func (c *Cli) describeNext(path string) {
	switch {
	case path == navigation.VerifyPath:
		c.io.Println("A verification code has been sent to your email.")
		c.io.Println("Run 'medportal verify' to finish signing in.")
	case path == navigation.OnboardingPath:
		c.io.Println("Your profile setup is not finished yet.")
		c.io.Println("Run 'medportal onboarding complete' once you are done.")
	case strings.HasPrefix(path, navigation.DashboardPath):
		c.io.Printf("Dashboard: %s\n", path)
	}
}

// printValidation печатает ошибки формы по полям
func (c *Cli) printValidation(err error) bool {
	var verrs validation.Errors
	if !errors.As(err, &verrs) {
		return false
	}
	c.io.Println("Please fix the following fields:")
	for _, field := range slices.Sorted(maps.Keys(verrs)) {
		c.io.Printf("  - %s: %s\n", field, verrs[field])
	}
	return true
}

// wrapSessionErr уточняет ошибки завершенной сессии
func wrapSessionErr(err error) error {
	if errors.Is(err, api.ErrSessionExpired) || errors.Is(err, api.ErrUnauthorized) {
		return fmt.Errorf("not authenticated: %w", err)
	}
	return err
}

// readRequired читает непустое значение
func (c *Cli) readRequired(prompt, name string) (string, error) {
	value, err := c.io.ReadInput(prompt)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", name, err)
	}
	return value, nil
}

// requireAuth проверяет, что пользователь вошел
func (c *Cli) requireAuth(ctx context.Context) error {
	ok, err := c.auth.IsAuthenticated(ctx)
	if err != nil {
		return fmt.Errorf("failed to check authentication: %w", err)
	}
	if !ok {
		// refresh token мог остаться: HTTP клиент обновит access token сам
		if _, err := c.auth.CurrentClaims(ctx); err != nil {
			return fmt.Errorf("not authenticated. Please run 'medportal login' first")
		}
	}
	return nil
}

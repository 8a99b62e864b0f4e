package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/iudanet/medportal/internal/client/navigation"
	"github.com/iudanet/medportal/internal/client/storage"
	"github.com/iudanet/medportal/internal/client/token"
	"github.com/iudanet/medportal/internal/models"
)

type publicKey struct{}

// withPublic помечает запрос как не требующий авторизации
func withPublic(ctx context.Context) context.Context {
	return context.WithValue(ctx, publicKey{}, true)
}

func isPublic(ctx context.Context) bool {
	v, _ := ctx.Value(publicKey{}).(bool)
	return v
}

// authTransport attaches the access token to outgoing requests, refreshing it
// first when it has expired, and ends the session on any 401 response.
type authTransport struct {
	client *Client
}

// RoundTrip implements http.RoundTripper
func (t *authTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	c := t.client

	if c.tokens != nil && !isPublic(req.Context()) {
		access, err := c.accessToken(req.Context())
		if err != nil {
			return nil, err
		}
		if access != "" {
			// RoundTripper не должен изменять исходный запрос
			req = req.Clone(req.Context())
			req.Header.Set("Authorization", "Bearer "+access)
		}
	}

	resp, err := c.base.RoundTrip(req)
	if err != nil {
		return nil, err
	}

	// Любой 401 завершает сессию, независимо от того, какой запрос его получил
	if resp.StatusCode == http.StatusUnauthorized && c.tokens != nil {
		c.endSession(req.Context(), "unauthorized response", req.URL.Path)
	}

	return resp, nil
}

// accessToken возвращает действующий access token.
// Пустая строка без ошибки означает "отправить запрос без авторизации".
func (c *Client) accessToken(ctx context.Context) (string, error) {
	access, err := c.tokens.Get(ctx, storage.TokenAccess)
	if errors.Is(err, storage.ErrTokenNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read access token: %w", err)
	}

	claims, err := token.Decode(access)
	if err != nil {
		c.logger.DebugContext(ctx, "stored access token is not decodable, sending unauthenticated", "error", err)
		return "", nil
	}

	if !claims.Expired(c.now()) {
		return access, nil
	}

	c.logger.DebugContext(ctx, "access token expired, refreshing", "exp", claims.Expiry())
	return c.refresh(ctx)
}

// refresh обновляет токены. Конкурентные вызовы объединяются в один запрос
// к серверу, все ожидающие получают его результат.
func (c *Client) refresh(ctx context.Context) (string, error) {
	ch := c.refreshes.DoChan("refresh", func() (interface{}, error) {
		// Отмена контекста одного из ожидающих не должна прерывать общий refresh
		return c.doRefresh(context.WithoutCancel(ctx))
	})

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	}
}

func (c *Client) doRefresh(ctx context.Context) (string, error) {
	// Токен мог быть обновлен предыдущим refresh, пока вызывающий ждал
	if access, err := c.tokens.Get(ctx, storage.TokenAccess); err == nil {
		if claims, err := token.Decode(access); err == nil && !claims.Expired(c.now()) {
			return access, nil
		}
	}

	refreshToken, err := c.tokens.Get(ctx, storage.TokenRefresh)
	if err != nil {
		c.endSession(ctx, "refresh token unavailable", "")
		return "", fmt.Errorf("%w: %w", ErrSessionExpired, err)
	}

	resp, err := c.RefreshToken(ctx, refreshToken)
	if err != nil {
		// при 401 транспорт уже завершил сессию
		if !errors.Is(err, ErrUnauthorized) {
			c.endSession(ctx, "token refresh failed", "")
		}
		return "", fmt.Errorf("%w: %w", ErrSessionExpired, err)
	}
	if resp.Access == "" {
		c.endSession(ctx, "token refresh returned no access token", "")
		return "", fmt.Errorf("%w: empty access token in refresh response", ErrSessionExpired)
	}

	pair := models.TokenPair{Access: resp.Access, Refresh: resp.Refresh}
	// Сервер без ротации refresh token возвращает только access
	if pair.Refresh == "" {
		pair.Refresh = refreshToken
	}

	if err := c.tokens.Set(ctx, pair); err != nil {
		return "", fmt.Errorf("failed to save refreshed tokens: %w", err)
	}

	c.logger.DebugContext(ctx, "tokens refreshed")
	return pair.Access, nil
}

// endSession очищает хранилище токенов и отправляет пользователя на логин
func (c *Client) endSession(ctx context.Context, reason, path string) {
	c.logger.WarnContext(ctx, "ending session", "reason", reason, "path", path)

	if err := c.tokens.Clear(ctx); err != nil {
		c.logger.ErrorContext(ctx, "failed to clear token store", "error", err)
	}

	c.navigator.Navigate(navigation.LoginPath)
}

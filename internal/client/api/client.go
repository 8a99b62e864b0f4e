package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/iudanet/medportal/internal/client/navigation"
	"github.com/iudanet/medportal/internal/client/storage"
	"github.com/iudanet/medportal/pkg/api"
)

const defaultTimeout = 30 * time.Second

var (
	// ErrUnauthorized is returned when the server answered 401.
	// The local session has already been cleared at that point.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrSessionExpired is returned when the access token expired and could not
	// be refreshed. The original request is not sent.
	ErrSessionExpired = errors.New("session expired")
)

// StatusError — ответ сервера с кодом вне диапазона 2xx
type StatusError struct {
	Message    string
	StatusCode int
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("request failed with status %d", e.StatusCode)
	}
	return fmt.Sprintf("server error (%d): %s", e.StatusCode, e.Message)
}

// Client представляет HTTP клиент для взаимодействия с API портала.
// Все запросы проходят через authTransport: он подставляет access token,
// обновляет его по истечении и завершает сессию при 401.
type Client struct {
	httpClient *http.Client
	base       http.RoundTripper
	tokens     storage.TokenStore
	navigator  navigation.Navigator
	now        func() time.Time
	logger     *slog.Logger
	refreshes  singleflight.Group
	baseURL    string
	timeout    time.Duration
}

// Option настраивает Client
type Option func(*Client)

// WithTokenStore включает авторизацию запросов токенами из store
func WithTokenStore(store storage.TokenStore) Option {
	return func(c *Client) { c.tokens = store }
}

// WithNavigator задает обработчик принудительного перехода на логин
func WithNavigator(n navigation.Navigator) Option {
	return func(c *Client) { c.navigator = n }
}

// WithClock подменяет источник текущего времени (для тестов)
func WithClock(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

// WithTransport задает нижележащий транспорт
func WithTransport(rt http.RoundTripper) Option {
	return func(c *Client) { c.base = rt }
}

// WithTimeout задает таймаут одного запроса
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// WithLogger задает логгер
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// NewClient создает новый API клиент
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:   baseURL,
		base:      http.DefaultTransport,
		navigator: navigation.Noop,
		now:       time.Now,
		logger:    slog.Default(),
		timeout:   defaultTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}

	c.httpClient = &http.Client{
		Timeout:   c.timeout,
		Transport: &authTransport{client: c},
		// Настройка обработки редиректов
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= 10 {
				return fmt.Errorf("stopped after 10 redirects")
			}
			// Копируем заголовок Authorization при редиректе
			if len(via) > 0 && via[0].Header.Get("Authorization") != "" {
				req.Header.Set("Authorization", via[0].Header.Get("Authorization"))
			}
			return nil
		},
	}

	return c
}

// BaseURL возвращает базовый URL API
func (c *Client) BaseURL() string { return c.baseURL }

// doRequest выполняет HTTP запрос. public=true отключает авторизацию запроса.
func (c *Client) doRequest(ctx context.Context, method, path string, public bool, body, result interface{}) error {
	url := c.baseURL + path

	var bodyReader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(jsonData)
	}

	if public {
		ctx = withPublic(ctx)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, ErrSessionExpired) {
			return ErrSessionExpired
		}
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	// Читаем тело ответа
	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	// Проверяем статус код
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		statusErr := &StatusError{StatusCode: resp.StatusCode, Message: errorMessage(respBody)}
		if resp.StatusCode == http.StatusUnauthorized {
			return fmt.Errorf("%w: %w", ErrUnauthorized, statusErr)
		}
		return statusErr
	}

	// Декодируем успешный ответ
	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

// errorMessage извлекает текст ошибки из тела ответа
func errorMessage(body []byte) string {
	var errResp api.ErrorResponse
	if err := json.Unmarshal(body, &errResp); err == nil {
		switch {
		case errResp.Message != "":
			return errResp.Message
		case errResp.Detail != "":
			return errResp.Detail
		case errResp.Error != "":
			return errResp.Error
		}
	}
	return string(bytes.TrimSpace(body))
}

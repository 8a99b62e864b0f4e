// Package media запрашивает у видеоплатформы URL для прямой загрузки.
// Сам файл клиент загружает напрямую на платформу, минуя портал.
package media

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	uploadsPath    = "/video/v1/uploads"
	defaultTimeout = 15 * time.Second
	// maxErrorBody ограничивает чтение тела ошибки платформы
	maxErrorBody = 4 << 10
)

// ErrNotConfigured — учетные данные платформы не заданы
var ErrNotConfigured = errors.New("media platform is not configured")

// Config — доступ к API платформы
type Config struct {
	APIURL      string
	TokenID     string
	TokenSecret string
	CORSOrigin  string
	Timeout     time.Duration
}

// Upload — созданная прямая загрузка
type Upload struct {
	ID  string
	URL string
}

// Client — клиент API прямых загрузок
type Client struct {
	httpClient *http.Client
	cfg        Config
}

// NewClient создает клиент. transport может быть nil.
func NewClient(cfg Config, transport http.RoundTripper) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.CORSOrigin == "" {
		cfg.CORSOrigin = "*"
	}
	cfg.APIURL = strings.TrimRight(cfg.APIURL, "/")

	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout, Transport: transport},
	}
}

type createUploadRequest struct {
	NewAssetSettings assetSettings `json:"new_asset_settings"`
	CORSOrigin       string        `json:"cors_origin"`
}

type assetSettings struct {
	PlaybackPolicy []string `json:"playback_policy"`
}

type createUploadResponse struct {
	Data struct {
		ID  string `json:"id"`
		URL string `json:"url"`
	} `json:"data"`
}

// CreateDirectUpload создает прямую загрузку и возвращает ее id и URL
func (c *Client) CreateDirectUpload(ctx context.Context) (*Upload, error) {
	if c.cfg.TokenID == "" || c.cfg.TokenSecret == "" {
		return nil, ErrNotConfigured
	}

	body, err := json.Marshal(createUploadRequest{
		NewAssetSettings: assetSettings{PlaybackPolicy: []string{"public"}},
		CORSOrigin:       c.cfg.CORSOrigin,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal upload request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.APIURL+uploadsPath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.SetBasicAuth(c.cfg.TokenID, c.cfg.TokenSecret)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("media request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, fmt.Errorf("media platform returned %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var out createUploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode upload response: %w", err)
	}
	if out.Data.ID == "" || out.Data.URL == "" {
		return nil, errors.New("media platform returned an incomplete upload")
	}

	return &Upload{ID: out.Data.ID, URL: out.Data.URL}, nil
}

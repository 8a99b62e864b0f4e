package api

import (
	"context"
	"fmt"

	"github.com/iudanet/medportal/internal/models"
	"github.com/iudanet/medportal/pkg/api"
)

//go:generate moq -out client_mock.go . ClientAPI

// ClientAPI — операции API портала, которыми пользуются сервисы клиента
type ClientAPI interface {
	Login(ctx context.Context, req api.LoginRequest) (*api.LoginResponse, error)
	VerifyLoginOTP(ctx context.Context, req api.VerifyOTPRequest) (*api.VerifyOTPResponse, error)
	Register(ctx context.Context, req api.RegisterRequest) (*api.RegisterResponse, error)
	GetProfile(ctx context.Context) (*models.Profile, error)
	UpdateProfile(ctx context.Context, req api.ProfileUpdateRequest) (*models.Profile, error)
	UpdateOnboarding(ctx context.Context, completed bool) error
	CreateVideoUpload(ctx context.Context) (*api.VideoUploadResponse, error)
}

var _ ClientAPI = (*Client)(nil)

// GetProfile получает текущий профиль пользователя
func (c *Client) GetProfile(ctx context.Context) (*models.Profile, error) {
	var profile models.Profile
	if err := c.doRequest(ctx, "GET", "/api/profile/", false, nil, &profile); err != nil {
		return nil, fmt.Errorf("get profile request failed: %w", err)
	}
	return &profile, nil
}

// UpdateProfile частично обновляет профиль и возвращает результат
func (c *Client) UpdateProfile(ctx context.Context, req api.ProfileUpdateRequest) (*models.Profile, error) {
	var profile models.Profile
	if err := c.doRequest(ctx, "PATCH", "/api/profile/", false, req, &profile); err != nil {
		return nil, fmt.Errorf("update profile request failed: %w", err)
	}
	return &profile, nil
}

// UpdateOnboarding сообщает серверу о прохождении онбординга
func (c *Client) UpdateOnboarding(ctx context.Context, completed bool) error {
	req := api.OnboardingUpdateRequest{HasCompletedOnboarding: completed}
	if err := c.doRequest(ctx, "POST", "/api/onboarding/update/", false, req, nil); err != nil {
		return fmt.Errorf("onboarding update request failed: %w", err)
	}
	return nil
}

// CreateVideoUpload запрашивает URL для прямой загрузки видео
func (c *Client) CreateVideoUpload(ctx context.Context) (*api.VideoUploadResponse, error) {
	var resp api.VideoUploadResponse
	if err := c.doRequest(ctx, "POST", "/api/video/upload-url/", false, nil, &resp); err != nil {
		return nil, fmt.Errorf("video upload url request failed: %w", err)
	}
	return &resp, nil
}

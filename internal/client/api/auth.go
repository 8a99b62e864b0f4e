package api

import (
	"context"
	"fmt"

	"github.com/iudanet/medportal/pkg/api"
)

// Login выполняет POST /api/login/
func (c *Client) Login(ctx context.Context, req api.LoginRequest) (*api.LoginResponse, error) {
	var resp api.LoginResponse
	if err := c.doRequest(ctx, "POST", "/api/login/", true, req, &resp); err != nil {
		return nil, fmt.Errorf("login request failed: %w", err)
	}
	return &resp, nil
}

// VerifyLoginOTP выполняет POST /api/verify-login-otp/
func (c *Client) VerifyLoginOTP(ctx context.Context, req api.VerifyOTPRequest) (*api.VerifyOTPResponse, error) {
	var resp api.VerifyOTPResponse
	if err := c.doRequest(ctx, "POST", "/api/verify-login-otp/", true, req, &resp); err != nil {
		return nil, fmt.Errorf("verify otp request failed: %w", err)
	}
	return &resp, nil
}

// RefreshToken обменивает refresh token на новую пару токенов
func (c *Client) RefreshToken(ctx context.Context, refreshToken string) (*api.RefreshResponse, error) {
	var resp api.RefreshResponse
	req := api.RefreshRequest{Refresh: refreshToken}
	if err := c.doRequest(ctx, "POST", "/api/token/refresh/", true, req, &resp); err != nil {
		return nil, fmt.Errorf("refresh request failed: %w", err)
	}
	return &resp, nil
}

// Register регистрирует нового пользователя
func (c *Client) Register(ctx context.Context, req api.RegisterRequest) (*api.RegisterResponse, error) {
	var resp api.RegisterResponse
	if err := c.doRequest(ctx, "POST", "/api/registration/", true, req, &resp); err != nil {
		return nil, fmt.Errorf("register request failed: %w", err)
	}
	return &resp, nil
}

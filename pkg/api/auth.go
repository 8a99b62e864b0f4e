package api

import "github.com/iudanet/medportal/internal/models"

// LoginRequest представляет запрос POST /api/login/
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse представляет ответ на логин.
// Если RequireOTP=true, токены не выдаются до подтверждения кода.
type LoginResponse struct {
	Tokens     *models.TokenPair `json:"tokens,omitempty"`
	RequireOTP bool              `json:"require_otp,omitempty"`
}

// VerifyOTPRequest представляет запрос POST /api/verify-login-otp/
type VerifyOTPRequest struct {
	Email string `json:"email"`
	OTP   string `json:"otp"`
}

// VerifyOTPResponse представляет ответ на подтверждение OTP
type VerifyOTPResponse struct {
	Tokens models.TokenPair `json:"tokens"`
}

// RefreshRequest представляет запрос POST /api/token/refresh/
type RefreshRequest struct {
	Refresh string `json:"refresh"`
}

// RefreshResponse представляет ответ с новой парой токенов
type RefreshResponse struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// Consents — согласия, собираемые при регистрации
type Consents struct {
	Terms       bool `json:"terms"`
	Privacy     bool `json:"privacy"`
	DataSharing bool `json:"data_sharing"`
	Marketing   bool `json:"marketing"`
}

// RegisterRequest представляет запрос POST /api/registration/
type RegisterRequest struct {
	FirstName string      `json:"first_name"`
	LastName  string      `json:"last_name"`
	Email     string      `json:"email"`
	Password  string      `json:"password"`
	Location  string      `json:"location"`
	Role      models.Role `json:"role"`
	Consents  Consents    `json:"consents"`
}

// RegisterResponse представляет ответ на успешную регистрацию
type RegisterResponse struct {
	UserID  string `json:"user_id"`
	Message string `json:"message"`
}

// ErrorResponse представляет ответ с ошибкой
type ErrorResponse struct {
	Error   string `json:"error"`             // описание ошибки
	Message string `json:"message,omitempty"` // дополнительное сообщение
	Detail  string `json:"detail,omitempty"`  // поле detail, которое отдает бэкенд
}

package models

import "time"

// AuthEventKind — тип события аутентификации на портале
type AuthEventKind string

const (
	EventLogin         AuthEventKind = "login"
	EventLoginFailed   AuthEventKind = "login_failed"
	EventOTPRequired   AuthEventKind = "otp_required"
	EventOTPVerified   AuthEventKind = "otp_verified"
	EventOTPFailed     AuthEventKind = "otp_failed"
	EventRefresh       AuthEventKind = "refresh"
	EventRefreshFailed AuthEventKind = "refresh_failed"
	EventLogout        AuthEventKind = "logout"
)

// AuthEvent — запись журнала входов. Токены и пароли в журнал не попадают.
type AuthEvent struct {
	CreatedAt  time.Time     `json:"created_at"`
	ID         string        `json:"id"`
	UserID     string        `json:"user_id,omitempty"` // пусто, если вход не удался
	Email      string        `json:"email,omitempty"`
	Kind       AuthEventKind `json:"kind"`
	RemoteAddr string        `json:"remote_addr,omitempty"`
	RequestID  string        `json:"request_id,omitempty"`
}

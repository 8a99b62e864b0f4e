package api

import "github.com/iudanet/medportal/internal/models"

// BasicInfoUpdate — частичное обновление basic_info.
// nil-поля не отправляются.
type BasicInfoUpdate struct {
	FirstName *string `json:"first_name,omitempty"`
	LastName  *string `json:"last_name,omitempty"`
	Phone     *string `json:"phone,omitempty"`
	Location  *string `json:"location,omitempty"`
}

// ProfileUpdateRequest представляет тело PATCH /api/profile/
type ProfileUpdateRequest struct {
	BasicInfo *BasicInfoUpdate `json:"basic_info,omitempty"`
}

// OnboardingUpdateRequest представляет тело POST /api/onboarding/update/
type OnboardingUpdateRequest struct {
	HasCompletedOnboarding bool `json:"has_completed_onboarding"`
}

// VideoUploadResponse содержит URL для прямой загрузки видео на медиа-платформу
type VideoUploadResponse struct {
	UploadURL string `json:"upload_url"`
	UploadID  string `json:"upload_id"`
}

// SessionResponse — ответ BFF-эндпоинтов портала /auth/session*
type SessionResponse struct {
	RequireOTP bool   `json:"require_otp,omitempty"`
	Next       string `json:"next,omitempty"`
}

// AuthEventsResponse — журнал входов пользователя, GET /api/session/events/
type AuthEventsResponse struct {
	Events []*models.AuthEvent `json:"events"`
}

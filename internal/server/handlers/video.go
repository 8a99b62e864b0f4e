package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/iudanet/medportal/internal/server/media"
	"github.com/iudanet/medportal/internal/server/middleware"
	"github.com/iudanet/medportal/pkg/api"
)

// UploadCreator создает прямую загрузку на видеоплатформе
type UploadCreator interface {
	CreateDirectUpload(ctx context.Context) (*media.Upload, error)
}

// VideoHandler выдает URL для прямой загрузки видео
type VideoHandler struct {
	responder
	uploads UploadCreator
}

// NewVideoHandler создает handler видео
func NewVideoHandler(logger *slog.Logger, uploads UploadCreator) *VideoHandler {
	return &VideoHandler{responder: responder{logger: logger}, uploads: uploads}
}

// CreateUpload обрабатывает POST /api/video/upload-url/.
// Требует BearerAuth.
func (h *VideoHandler) CreateUpload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	claims, err := middleware.GetClaims(ctx)
	if err != nil {
		h.sendError(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	userID := claims.UserData.BasicInfo.ID

	upload, err := h.uploads.CreateDirectUpload(ctx)
	if err != nil {
		if errors.Is(err, media.ErrNotConfigured) {
			h.logger.WarnContext(ctx, "video upload requested but media platform is not configured")
			h.sendError(w, "video uploads are disabled", http.StatusServiceUnavailable)
			return
		}
		h.logger.ErrorContext(ctx, "failed to create video upload", slog.String("user_id", userID), slog.Any("error", err))
		h.sendError(w, "failed to create upload", http.StatusBadGateway)
		return
	}

	h.logger.InfoContext(ctx, "video upload created", slog.String("user_id", userID), slog.String("upload_id", upload.ID))

	h.sendJSON(w, api.VideoUploadResponse{UploadURL: upload.URL, UploadID: upload.ID}, http.StatusOK)
}

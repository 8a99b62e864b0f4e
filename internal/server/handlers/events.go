package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/iudanet/medportal/internal/server/middleware"
	"github.com/iudanet/medportal/internal/server/storage"
	"github.com/iudanet/medportal/pkg/api"
)

const defaultEventsLimit = 20

// EventsHandler отдает пользователю его журнал входов
type EventsHandler struct {
	responder
	audit storage.AuditStorage
}

// NewEventsHandler создает handler журнала
func NewEventsHandler(logger *slog.Logger, audit storage.AuditStorage) *EventsHandler {
	return &EventsHandler{responder: responder{logger: logger}, audit: audit}
}

// List обрабатывает GET /api/session/events/?limit=N. Требует BearerAuth.
func (h *EventsHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	claims, err := middleware.GetClaims(ctx)
	if err != nil {
		h.sendError(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	limit := defaultEventsLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			h.sendError(w, "limit must be a positive integer", http.StatusBadRequest)
			return
		}
		limit = n
	}

	events, err := h.audit.ListUserEvents(ctx, claims.UserData.BasicInfo.ID, limit)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list auth events", slog.Any("error", err))
		h.sendError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	h.sendJSON(w, api.AuthEventsResponse{Events: events}, http.StatusOK)
}

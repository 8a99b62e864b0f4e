package storage

import (
	"context"

	"github.com/iudanet/medportal/internal/models"
)

// AuditStorage defines interface for the authentication journal
type AuditStorage interface {
	// RecordEvent appends an event. ID and CreatedAt are filled when empty.
	RecordEvent(ctx context.Context, event *models.AuthEvent) error

	// ListUserEvents returns up to limit latest events of a user, newest first
	ListUserEvents(ctx context.Context, userID string, limit int) ([]*models.AuthEvent, error)
}

package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/iudanet/medportal/internal/models"
	"github.com/iudanet/medportal/internal/server/storage"
)

var _ storage.AuditStorage = (*Storage)(nil)

// maxEventsPage — верхняя граница limit для ListUserEvents
const maxEventsPage = 100

// RecordEvent appends an authentication event
func (s *Storage) RecordEvent(ctx context.Context, event *models.AuthEvent) error {
	if event == nil || event.Kind == "" {
		return storage.ErrInvalidEvent
	}

	if event.ID == "" {
		event.ID = uuid.New().String()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}

	query := `
		INSERT INTO auth_events (id, user_id, email, kind, remote_addr, request_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		event.ID,
		event.UserID,
		event.Email,
		string(event.Kind),
		event.RemoteAddr,
		event.RequestID,
		event.CreatedAt.UnixMilli(),
	)

	if err != nil {
		return fmt.Errorf("failed to record auth event: %w", err)
	}

	return nil
}

// ListUserEvents returns the latest events of a user, newest first
func (s *Storage) ListUserEvents(ctx context.Context, userID string, limit int) ([]*models.AuthEvent, error) {
	if limit <= 0 || limit > maxEventsPage {
		limit = maxEventsPage
	}

	query := `
		SELECT id, user_id, email, kind, remote_addr, request_id, created_at
		FROM auth_events
		WHERE user_id = ?
		ORDER BY created_at DESC, rowid DESC
		LIMIT ?
	`

	rows, err := s.db.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query auth events: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	events := make([]*models.AuthEvent, 0)

	for rows.Next() {
		var (
			event     models.AuthEvent
			kind      string
			createdAt int64
		)
		if err := rows.Scan(
			&event.ID,
			&event.UserID,
			&event.Email,
			&kind,
			&event.RemoteAddr,
			&event.RequestID,
			&createdAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan auth event: %w", err)
		}
		event.Kind = models.AuthEventKind(kind)
		event.CreatedAt = time.UnixMilli(createdAt)
		events = append(events, &event)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return events, nil
}

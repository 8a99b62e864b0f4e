package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/medportal/internal/models"
	"github.com/iudanet/medportal/internal/server/storage"
)

func TestAuditStorage_RecordEvent(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	event := &models.AuthEvent{
		UserID:     "user-1",
		Email:      "jane@example.com",
		Kind:       models.EventLogin,
		RemoteAddr: "10.0.0.1",
		RequestID:  "req-1",
	}
	require.NoError(t, s.RecordEvent(ctx, event))
	assert.NotEmpty(t, event.ID)
	assert.False(t, event.CreatedAt.IsZero())

	events, err := s.ListUserEvents(ctx, "user-1", 10)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, event.ID, events[0].ID)
	assert.Equal(t, models.EventLogin, events[0].Kind)
	assert.Equal(t, "10.0.0.1", events[0].RemoteAddr)
	assert.Equal(t, "req-1", events[0].RequestID)
	assert.Equal(t, event.CreatedAt.UnixMilli(), events[0].CreatedAt.UnixMilli())
}

func TestAuditStorage_RecordEventInvalid(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	require.ErrorIs(t, s.RecordEvent(ctx, nil), storage.ErrInvalidEvent)
	require.ErrorIs(t, s.RecordEvent(ctx, &models.AuthEvent{UserID: "user-1"}), storage.ErrInvalidEvent)
}

func TestAuditStorage_ListUserEvents(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	kinds := []models.AuthEventKind{models.EventOTPRequired, models.EventOTPVerified, models.EventRefresh, models.EventLogout}
	for i, kind := range kinds {
		require.NoError(t, s.RecordEvent(ctx, &models.AuthEvent{
			UserID:    "user-1",
			Kind:      kind,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}))
	}
	require.NoError(t, s.RecordEvent(ctx, &models.AuthEvent{UserID: "user-2", Kind: models.EventLogin}))
	require.NoError(t, s.RecordEvent(ctx, &models.AuthEvent{Email: "unknown@example.com", Kind: models.EventLoginFailed}))

	tests := []struct {
		name      string
		userID    string
		limit     int
		wantKinds []models.AuthEventKind
	}{
		{
			name:      "newest first",
			userID:    "user-1",
			limit:     10,
			wantKinds: []models.AuthEventKind{models.EventLogout, models.EventRefresh, models.EventOTPVerified, models.EventOTPRequired},
		},
		{
			name:      "limit applied",
			userID:    "user-1",
			limit:     2,
			wantKinds: []models.AuthEventKind{models.EventLogout, models.EventRefresh},
		},
		{
			name:      "zero limit means max page",
			userID:    "user-2",
			limit:     0,
			wantKinds: []models.AuthEventKind{models.EventLogin},
		},
		{
			name:      "unknown user",
			userID:    "nobody",
			limit:     10,
			wantKinds: []models.AuthEventKind{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			events, err := s.ListUserEvents(ctx, tt.userID, tt.limit)
			require.NoError(t, err)

			got := make([]models.AuthEventKind, 0, len(events))
			for _, e := range events {
				got = append(got, e.Kind)
			}
			assert.Equal(t, tt.wantKinds, got)
		})
	}
}

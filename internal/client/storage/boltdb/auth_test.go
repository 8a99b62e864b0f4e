package boltdb

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/medportal/internal/client/storage"
	"github.com/iudanet/medportal/internal/models"
)

func TestStorage_SetGetClear(t *testing.T) {
	ctx := context.Background()
	store := newTestStorage(t)

	// До сохранения токенов нет
	_, err := store.Get(ctx, storage.TokenAccess)
	assert.ErrorIs(t, err, storage.ErrTokenNotFound)
	_, err = store.Get(ctx, storage.TokenRefresh)
	assert.ErrorIs(t, err, storage.ErrTokenNotFound)

	pair := models.TokenPair{Access: "access-token", Refresh: "refresh-token"}
	require.NoError(t, store.Set(ctx, pair))

	access, err := store.Get(ctx, storage.TokenAccess)
	require.NoError(t, err)
	assert.Equal(t, pair.Access, access)

	refresh, err := store.Get(ctx, storage.TokenRefresh)
	require.NoError(t, err)
	assert.Equal(t, pair.Refresh, refresh)

	// Перезапись заменяет оба токена
	rotated := models.TokenPair{Access: "access-2", Refresh: "refresh-2"}
	require.NoError(t, store.Set(ctx, rotated))

	access, err = store.Get(ctx, storage.TokenAccess)
	require.NoError(t, err)
	assert.Equal(t, rotated.Access, access)

	// Clear удаляет оба
	require.NoError(t, store.Clear(ctx))

	_, err = store.Get(ctx, storage.TokenAccess)
	assert.ErrorIs(t, err, storage.ErrTokenNotFound)
	_, err = store.Get(ctx, storage.TokenRefresh)
	assert.ErrorIs(t, err, storage.ErrTokenNotFound)
}

func TestStorage_ClearEmpty(t *testing.T) {
	store := newTestStorage(t)
	assert.NoError(t, store.Clear(context.Background()))
	assert.NoError(t, store.Clear(context.Background()))
}

func TestStorage_EmptyTokenTreatedAsMissing(t *testing.T) {
	ctx := context.Background()
	store := newTestStorage(t)

	require.NoError(t, store.Set(ctx, models.TokenPair{Access: "", Refresh: "refresh"}))

	_, err := store.Get(ctx, storage.TokenAccess)
	assert.ErrorIs(t, err, storage.ErrTokenNotFound)

	refresh, err := store.Get(ctx, storage.TokenRefresh)
	require.NoError(t, err)
	assert.Equal(t, "refresh", refresh)
}

func TestStorage_UnknownTokenName(t *testing.T) {
	store := newTestStorage(t)
	_, err := store.Get(context.Background(), storage.TokenName("id"))
	assert.ErrorIs(t, err, storage.ErrTokenNotFound)
}

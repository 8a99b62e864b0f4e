package boltdb

import (
	"context"
	"fmt"

	"go.etcd.io/bbolt"

	"github.com/iudanet/medportal/internal/client/storage"
	"github.com/iudanet/medportal/internal/models"
)

// Set stores both tokens in one transaction
func (s *Storage) Set(ctx context.Context, pair models.TokenPair) error {
	return s.update(func(tx *bbolt.Tx) error {
		b, err := bucket(tx, bucketTokens)
		if err != nil {
			return err
		}

		if err := b.Put([]byte(storage.TokenAccess), []byte(pair.Access)); err != nil {
			return fmt.Errorf("failed to save access token: %w", err)
		}
		if err := b.Put([]byte(storage.TokenRefresh), []byte(pair.Refresh)); err != nil {
			return fmt.Errorf("failed to save refresh token: %w", err)
		}

		return nil
	})
}

// Get retrieves a stored token by name
func (s *Storage) Get(ctx context.Context, name storage.TokenName) (string, error) {
	var value string

	err := s.view(func(tx *bbolt.Tx) error {
		b, err := bucket(tx, bucketTokens)
		if err != nil {
			return err
		}

		data := b.Get([]byte(name))
		// пустое значение считаем отсутствующим токеном
		if len(data) == 0 {
			return storage.ErrTokenNotFound
		}

		// bbolt возвращает срез, валидный только внутри транзакции
		value = string(data)
		return nil
	})
	if err != nil {
		return "", err
	}

	return value, nil
}

// Clear removes both tokens (logout / irrecoverable auth failure)
func (s *Storage) Clear(ctx context.Context) error {
	return s.update(func(tx *bbolt.Tx) error {
		b, err := bucket(tx, bucketTokens)
		if err != nil {
			return err
		}

		for _, name := range []storage.TokenName{storage.TokenAccess, storage.TokenRefresh} {
			if err := b.Delete([]byte(name)); err != nil {
				return fmt.Errorf("failed to delete %s token: %w", name, err)
			}
		}

		return nil
	})
}

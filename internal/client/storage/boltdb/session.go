package boltdb

import (
	"context"
	"fmt"

	"go.etcd.io/bbolt"

	"github.com/iudanet/medportal/internal/client/storage"
)

const (
	keyPendingEmail        = "pending_email"
	keyOnboardingCompleted = "has_completed_onboarding"
)

// SavePendingEmail saves the email of a login waiting for OTP verification
func (s *Storage) SavePendingEmail(ctx context.Context, email string) error {
	return s.update(func(tx *bbolt.Tx) error {
		b, err := bucket(tx, bucketSession)
		if err != nil {
			return err
		}
		if err := b.Put([]byte(keyPendingEmail), []byte(email)); err != nil {
			return fmt.Errorf("failed to save pending email: %w", err)
		}
		return nil
	})
}

// GetPendingEmail returns the pending email or storage.ErrPendingEmailNotFound
func (s *Storage) GetPendingEmail(ctx context.Context) (string, error) {
	var email string

	err := s.view(func(tx *bbolt.Tx) error {
		b, err := bucket(tx, bucketSession)
		if err != nil {
			return err
		}
		data := b.Get([]byte(keyPendingEmail))
		if len(data) == 0 {
			return storage.ErrPendingEmailNotFound
		}
		email = string(data)
		return nil
	})
	if err != nil {
		return "", err
	}

	return email, nil
}

// DeletePendingEmail removes the pending email
func (s *Storage) DeletePendingEmail(ctx context.Context) error {
	return s.update(func(tx *bbolt.Tx) error {
		b, err := bucket(tx, bucketSession)
		if err != nil {
			return err
		}
		if err := b.Delete([]byte(keyPendingEmail)); err != nil {
			return fmt.Errorf("failed to delete pending email: %w", err)
		}
		return nil
	})
}

// SetOnboardingCompleted persists the onboarding flag
func (s *Storage) SetOnboardingCompleted(ctx context.Context, completed bool) error {
	return s.update(func(tx *bbolt.Tx) error {
		b, err := bucket(tx, bucketSettings)
		if err != nil {
			return err
		}

		value := []byte{0}
		if completed {
			value = []byte{1}
		}

		if err := b.Put([]byte(keyOnboardingCompleted), value); err != nil {
			return fmt.Errorf("failed to save onboarding flag: %w", err)
		}
		return nil
	})
}

// GetOnboardingCompleted returns the persisted flag or storage.ErrFlagNotFound
func (s *Storage) GetOnboardingCompleted(ctx context.Context) (bool, error) {
	var completed bool

	err := s.view(func(tx *bbolt.Tx) error {
		b, err := bucket(tx, bucketSettings)
		if err != nil {
			return err
		}
		data := b.Get([]byte(keyOnboardingCompleted))
		if len(data) == 0 {
			return storage.ErrFlagNotFound
		}
		completed = data[0] == 1
		return nil
	})
	if err != nil {
		return false, err
	}

	return completed, nil
}

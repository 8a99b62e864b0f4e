// Package tokentest mints signed access tokens for tests.
package tokentest

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/medportal/internal/client/token"
	"github.com/iudanet/medportal/internal/models"
)

// Secret — секрет подписи по умолчанию для тестов
var Secret = []byte("test-signing-secret")

// Mint подписывает токен с user_data=profile, сроком exp и секретом Secret
func Mint(t testing.TB, profile models.Profile, exp time.Time) string {
	t.Helper()
	return MintWithSecret(t, profile, exp, Secret)
}

// MintWithSecret — как Mint, но с произвольным секретом
func MintWithSecret(t testing.TB, profile models.Profile, exp time.Time, secret []byte) string {
	t.Helper()

	claims := token.Claims{
		UserData: &profile,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(exp.Add(-5 * time.Minute)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	require.NoError(t, err)
	return signed
}

// Profile возвращает типовой профиль пациента
func Profile(onboarded bool) models.Profile {
	return models.Profile{
		BasicInfo: models.BasicInfo{
			ID:                     "user-1",
			Email:                  "jane@example.com",
			FirstName:              "Jane",
			LastName:               "Doe",
			Role:                   models.RolePatient,
			HasCompletedOnboarding: onboarded,
		},
		MedicalInfo: &models.MedicalInfo{BloodType: "A+"},
	}
}

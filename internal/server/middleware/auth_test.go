package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/medportal/internal/client/token"
	"github.com/iudanet/medportal/internal/client/token/tokentest"
)

// setupTestLogger creates a logger for testing
func setupTestLogger() *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: slog.LevelError,
	}
	handler := slog.NewTextHandler(os.Stdout, opts)
	return slog.New(handler)
}

// verifierFunc adapts a function to TokenVerifier
type verifierFunc func(ctx context.Context, raw string) (*token.Claims, error)

func (f verifierFunc) Verify(ctx context.Context, raw string) (*token.Claims, error) { return f(ctx, raw) }

// secretVerifier проверяет токен секретом tokentest.Secret
func secretVerifier(now time.Time) TokenVerifier {
	return verifierFunc(func(_ context.Context, raw string) (*token.Claims, error) {
		return token.Verify(raw, tokentest.Secret, now)
	})
}

func TestBearerAuth(t *testing.T) {
	now := time.Now()
	profile := tokentest.Profile(true)
	valid := tokentest.Mint(t, profile, now.Add(15*time.Minute))
	expired := tokentest.Mint(t, profile, now.Add(-time.Minute))
	foreign := tokentest.MintWithSecret(t, profile, now.Add(15*time.Minute), []byte("another-secret-key"))

	tests := []struct {
		name           string
		header         string
		expectedStatus int
		expectedUserID string
	}{
		{
			name:           "valid token",
			header:         "Bearer " + valid,
			expectedStatus: http.StatusOK,
			expectedUserID: profile.BasicInfo.ID,
		},
		{
			name:           "scheme is case insensitive",
			header:         "bearer " + valid,
			expectedStatus: http.StatusOK,
			expectedUserID: profile.BasicInfo.ID,
		},
		{
			name:           "missing header",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "basic scheme",
			header:         "Basic dXNlcjpwYXNz",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "bearer without token",
			header:         "Bearer ",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "malformed token",
			header:         "Bearer not-a-jwt",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "expired token",
			header:         "Bearer " + expired,
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "token with wrong secret",
			header:         "Bearer " + foreign,
			expectedStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotUserID string
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				claims, err := GetClaims(r.Context())
				require.NoError(t, err)
				gotUserID = claims.UserData.BasicInfo.ID
				w.WriteHeader(http.StatusOK)
			})

			handler := BearerAuth(secretVerifier(now), setupTestLogger())(next)

			req := httptest.NewRequest(http.MethodPost, "/api/video/upload-url/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Equal(t, tt.expectedUserID, gotUserID)
			if tt.expectedStatus == http.StatusUnauthorized {
				assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
				assert.Contains(t, w.Body.String(), `"error":"Unauthorized"`)
			}
		})
	}
}

func TestBearerAuth_VerifierErrorIsUnauthorized(t *testing.T) {
	verifier := verifierFunc(func(context.Context, string) (*token.Claims, error) {
		return nil, errors.New("token revoked")
	})

	called := false
	handler := BearerAuth(verifier, setupTestLogger())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		called = true
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/session/events/", nil)
	req.Header.Set("Authorization", "Bearer a.b.c")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.False(t, called)
}

func TestGetClaims_Empty(t *testing.T) {
	_, err := GetClaims(context.Background())
	require.ErrorIs(t, err, ErrNoClaims)

	claims := &token.Claims{}
	got, err := GetClaims(WithClaims(context.Background(), claims))
	require.NoError(t, err)
	assert.Same(t, claims, got)
}

func TestSessionAuth_Cookie(t *testing.T) {
	now := time.Now()
	profile := tokentest.Profile(true)
	valid := tokentest.Mint(t, profile, now.Add(15*time.Minute))

	tests := []struct {
		name           string
		header         string
		cookie         string
		expectedStatus int
	}{
		{name: "cookie only", cookie: valid, expectedStatus: http.StatusOK},
		{name: "header wins over cookie", header: "Bearer not-a-jwt", cookie: valid, expectedStatus: http.StatusUnauthorized},
		{name: "empty cookie", cookie: "", expectedStatus: http.StatusUnauthorized},
		{name: "bad cookie", cookie: "garbage", expectedStatus: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := SessionAuth(secretVerifier(now), "accessToken", setupTestLogger())(
				http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					_, err := GetClaims(r.Context())
					assert.NoError(t, err)
				}))

			req := httptest.NewRequest(http.MethodGet, "/api/session/events/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: "accessToken", Value: tt.cookie})
			}
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
		})
	}
}

func TestBearerAuth_IgnoresCookie(t *testing.T) {
	valid := tokentest.Mint(t, tokentest.Profile(true), time.Now().Add(15*time.Minute))
	handler := BearerAuth(secretVerifier(time.Now()), setupTestLogger())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))

	req := httptest.NewRequest(http.MethodGet, "/api/session/events/", nil)
	req.AddCookie(&http.Cookie{Name: "accessToken", Value: valid})
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

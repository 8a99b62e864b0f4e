package guard

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/medportal/internal/client/token/tokentest"
	"github.com/iudanet/medportal/internal/server/storage"
)

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

// fakeRevocations — отозванные хеши в памяти
type fakeRevocations struct {
	err     error
	revoked map[string]bool
}

func (f *fakeRevocations) IsRevoked(_ context.Context, hash string) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	return f.revoked[hash], nil
}

type countingRecorder struct {
	mu       sync.Mutex
	outcomes map[string]int
}

func (c *countingRecorder) RecordGuardDecision(outcome string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.outcomes == nil {
		c.outcomes = map[string]int{}
	}
	c.outcomes[outcome]++
}

func newTestGuard(revocations RevocationChecker, rec Recorder) *Guard {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	verifier := NewVerifier(tokentest.Secret, revocations, func() time.Time { return testNow })
	return New(verifier, Config{}, rec, logger)
}

func TestGuard_Decide(t *testing.T) {
	profile := tokentest.Profile(true)
	valid := tokentest.Mint(t, profile, testNow.Add(15*time.Minute))
	expired := tokentest.Mint(t, profile, testNow.Add(-time.Second))
	expiringNow := tokentest.Mint(t, profile, testNow)
	foreign := tokentest.MintWithSecret(t, profile, testNow.Add(15*time.Minute), []byte("some-other-secret"))
	revoked := tokentest.Mint(t, profile, testNow.Add(10*time.Minute))

	revocations := &fakeRevocations{revoked: map[string]bool{storage.HashToken(revoked): true}}

	tests := []struct {
		name        string
		path        string
		cookie      string
		wantAllowed bool
		wantOutcome string
		wantTo      string
		wantFrom    string // по умолчанию path
	}{
		{name: "login page", path: "/auth/login", wantAllowed: true, wantOutcome: OutcomePublic},
		{name: "auth prefix without slash", path: "/authorize", wantAllowed: true, wantOutcome: OutcomePublic},
		{name: "next assets", path: "/_next/static/chunks/main.js", wantAllowed: true, wantOutcome: OutcomePublic},
		{name: "favicon", path: "/favicon.ico", wantAllowed: true, wantOutcome: OutcomeAsset},
		{name: "image asset", path: "/images/logo.PNG", wantAllowed: true, wantOutcome: OutcomeAsset},
		{
			name:        "page data payload is not an asset",
			path:        "/dashboard/patient.txt",
			wantOutcome: OutcomeMissingToken,
			wantTo:      "/auth/login?redirectedFrom=%2Fdashboard%2Fpatient.txt",
		},
		{
			name:        "json next to a page is not an asset",
			path:        "/dashboard/patient/index.json",
			wantOutcome: OutcomeMissingToken,
			wantTo:      "/auth/login?redirectedFrom=%2Fdashboard%2Fpatient%2Findex.json",
		},
		{
			name:        "script outside next is not an asset",
			path:        "/dashboard/app.js",
			wantOutcome: OutcomeMissingToken,
			wantTo:      "/auth/login?redirectedFrom=%2Fdashboard%2Fapp.js",
		},
		{
			name:        "dot segments out of next prefix",
			path:        "/_next/../dashboard/",
			wantOutcome: OutcomeMissingToken,
			wantTo:      "/auth/login?redirectedFrom=%2Fdashboard%2F",
			wantFrom:    "/dashboard/",
		},
		{
			name:        "dot segments out of auth prefix",
			path:        "/auth/./../dashboard/patient",
			wantOutcome: OutcomeMissingToken,
			wantTo:      "/auth/login?redirectedFrom=%2Fdashboard%2Fpatient",
			wantFrom:    "/dashboard/patient",
		},
		{
			name:        "dot segments hiding an asset extension",
			path:        "/dashboard/patient/logo.png/..",
			wantOutcome: OutcomeMissingToken,
			wantTo:      "/auth/login?redirectedFrom=%2Fdashboard%2Fpatient",
			wantFrom:    "/dashboard/patient",
		},
		{name: "dot segments into auth", path: "/dashboard/../auth/login", wantAllowed: true, wantOutcome: OutcomePublic},
		{name: "font asset", path: "/fonts/inter.woff2", wantAllowed: true, wantOutcome: OutcomeAsset},
		{
			name:        "dashboard without cookie",
			path:        "/dashboard/patient",
			wantOutcome: OutcomeMissingToken,
			wantTo:      "/auth/login?redirectedFrom=%2Fdashboard%2Fpatient",
		},
		{
			name:        "root without cookie",
			path:        "/",
			wantOutcome: OutcomeMissingToken,
			wantTo:      "/auth/login?redirectedFrom=%2F",
		},
		{name: "valid cookie", path: "/dashboard/patient", cookie: valid, wantAllowed: true, wantOutcome: OutcomeAuthorized},
		{
			name:        "expired cookie",
			path:        "/onboarding",
			cookie:      expired,
			wantOutcome: OutcomeInvalidToken,
			wantTo:      "/auth/login?redirectedFrom=%2Fonboarding",
		},
		{
			name:        "cookie expiring exactly now",
			path:        "/onboarding",
			cookie:      expiringNow,
			wantOutcome: OutcomeInvalidToken,
			wantTo:      "/auth/login?redirectedFrom=%2Fonboarding",
		},
		{
			name:        "cookie signed with another secret",
			path:        "/profile",
			cookie:      foreign,
			wantOutcome: OutcomeInvalidToken,
			wantTo:      "/auth/login?redirectedFrom=%2Fprofile",
		},
		{
			name:        "garbage cookie",
			path:        "/profile",
			cookie:      "not-a-token",
			wantOutcome: OutcomeInvalidToken,
			wantTo:      "/auth/login?redirectedFrom=%2Fprofile",
		},
		{
			name:        "revoked cookie",
			path:        "/dashboard/patient",
			cookie:      revoked,
			wantOutcome: OutcomeRevoked,
			wantTo:      "/auth/login?redirectedFrom=%2Fdashboard%2Fpatient",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &countingRecorder{}
			g := newTestGuard(revocations, rec)

			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: AccessTokenCookie, Value: tt.cookie})
			}

			d := g.Decide(req)
			assert.Equal(t, tt.wantAllowed, d.Allowed)
			assert.Equal(t, tt.wantOutcome, d.Outcome)
			assert.Equal(t, tt.wantTo, d.To)
			if !tt.wantAllowed {
				wantFrom := tt.wantFrom
				if wantFrom == "" {
					wantFrom = tt.path
				}
				assert.Equal(t, wantFrom, d.From)
			}
			if tt.wantOutcome == OutcomeAuthorized {
				require.NotNil(t, d.Claims)
				assert.Equal(t, profile.BasicInfo.ID, d.Claims.UserData.BasicInfo.ID)
			}
			assert.Equal(t, map[string]int{tt.wantOutcome: 1}, rec.outcomes)
		})
	}
}

func TestGuard_RevocationStoreErrorFailsClosed(t *testing.T) {
	g := newTestGuard(&fakeRevocations{err: errors.New("database is locked")}, nil)
	valid := tokentest.Mint(t, tokentest.Profile(true), testNow.Add(time.Minute))

	req := httptest.NewRequest(http.MethodGet, "/dashboard/patient", nil)
	req.AddCookie(&http.Cookie{Name: AccessTokenCookie, Value: valid})

	d := g.Decide(req)
	assert.False(t, d.Allowed)
	assert.Equal(t, OutcomeError, d.Outcome)
}

func TestGuard_CustomConfig(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	verifier := NewVerifier(tokentest.Secret, nil, func() time.Time { return testNow })
	g := New(verifier, Config{PublicPrefixes: []string{"/public"}, CookieName: "session"}, nil, logger)

	assert.True(t, g.Decide(httptest.NewRequest(http.MethodGet, "/public/terms", nil)).Allowed)
	assert.False(t, g.Decide(httptest.NewRequest(http.MethodGet, "/auth/login", nil)).Allowed)

	req := httptest.NewRequest(http.MethodGet, "/dashboard/patient", nil)
	req.AddCookie(&http.Cookie{Name: "session", Value: tokentest.Mint(t, tokentest.Profile(true), testNow.Add(time.Minute))})
	assert.True(t, g.Decide(req).Allowed)
}

func TestGuard_NilLogger(t *testing.T) {
	g := New(NewVerifier(tokentest.Secret, &fakeRevocations{err: errors.New("database is locked")}, func() time.Time { return testNow }), Config{}, nil, nil)
	valid := tokentest.Mint(t, tokentest.Profile(true), testNow.Add(time.Minute))

	for _, raw := range []string{valid, "not-a-token"} {
		req := httptest.NewRequest(http.MethodGet, "/dashboard/patient", nil)
		req.AddCookie(&http.Cookie{Name: AccessTokenCookie, Value: raw})

		var d Decision
		require.NotPanics(t, func() { d = g.Decide(req) })
		assert.False(t, d.Allowed)
	}
}

func TestCleanPath(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", "/"},
		{"/", "/"},
		{"dashboard", "/dashboard"},
		{"/dashboard/", "/dashboard/"},
		{"/_next/../dashboard/", "/dashboard/"},
		{"/a/./b//c", "/a/b/c"},
		{"/../..", "/"},
		{"/auth/..", "/"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, cleanPath(tt.in), tt.in)
	}
}

func TestGuard_Middleware(t *testing.T) {
	g := newTestGuard(nil, nil)
	valid := tokentest.Mint(t, tokentest.Profile(true), testNow.Add(time.Minute))

	handler := g.Middleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("page"))
	}))

	t.Run("redirects to login", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/dashboard/patient", nil)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		assert.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, "/auth/login?redirectedFrom=%2Fdashboard%2Fpatient", w.Header().Get("Location"))
	})

	t.Run("serves authorized page", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/dashboard/patient", nil)
		req.AddCookie(&http.Cookie{Name: AccessTokenCookie, Value: valid})
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "page", w.Body.String())
	})
}

func TestVerifier(t *testing.T) {
	profile := tokentest.Profile(false)
	valid := tokentest.Mint(t, profile, testNow.Add(time.Minute))

	t.Run("without revocation store", func(t *testing.T) {
		v := NewVerifier(tokentest.Secret, nil, func() time.Time { return testNow })
		claims, err := v.Verify(context.Background(), valid)
		require.NoError(t, err)
		assert.Equal(t, profile.BasicInfo.Email, claims.UserData.BasicInfo.Email)
	})

	t.Run("revoked", func(t *testing.T) {
		v := NewVerifier(tokentest.Secret, &fakeRevocations{revoked: map[string]bool{storage.HashToken(valid): true}}, func() time.Time { return testNow })
		_, err := v.Verify(context.Background(), valid)
		require.ErrorIs(t, err, ErrRevoked)
	})

	t.Run("store error", func(t *testing.T) {
		v := NewVerifier(tokentest.Secret, &fakeRevocations{err: errors.New("boom")}, func() time.Time { return testNow })
		_, err := v.Verify(context.Background(), valid)
		require.ErrorIs(t, err, ErrRevocationCheck)
	})

	t.Run("default clock", func(t *testing.T) {
		v := NewVerifier(tokentest.Secret, nil, nil)
		_, err := v.Verify(context.Background(), tokentest.Mint(t, profile, time.Now().Add(time.Minute)))
		require.NoError(t, err)
	})
}

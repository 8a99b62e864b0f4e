package handlers

import (
	"context"
	"log/slog"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/iudanet/medportal/internal/server/storage/sqlite"
)

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func setupTestLogger() *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: slog.LevelError, // Only show errors in tests
	}
	handler := slog.NewTextHandler(os.Stdout, opts)
	return slog.New(handler)
}

func setupTestStorage(t *testing.T) *sqlite.Storage {
	t.Helper()
	s, err := sqlite.New(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

// fakeMetrics считает вызовы
type fakeMetrics struct {
	mu          sync.Mutex
	logins      map[string]int
	revocations int
	proxyErrors int
}

func (m *fakeMetrics) RecordLogin(outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.logins == nil {
		m.logins = map[string]int{}
	}
	m.logins[outcome]++
}

func (m *fakeMetrics) RecordRevocation() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.revocations++
}

func (m *fakeMetrics) RecordProxyError() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.proxyErrors++
}

package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeFile — утилита записи временного файла конфигурации.
func writeFile(t *testing.T, dir, name, data string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(data), 0o600))
	return p
}

// chdir — смена текущего рабочего каталога с авто-возвратом.
func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

// Полный корректный YAML под текущую структуру config.go.
const sampleYAML = `
env: "prod"
http:
  host: "127.0.0.1"
  port: "8080"
  static_dir: "/srv/portal"
  shutdown_timeout: "5s"
auth:
  jwt_secret: "0123456789abcdef0123"
  refresh_cookie_ttl: "24h"
api:
  base_url: "https://api.example.com"
  timeout: "3s"
media:
  token_id: "id"
  token_secret: "secret"
  cors_origin: "https://portal.example.com"
storage:
  path: "/var/lib/medportal/revoked.db"
guard:
  public_prefixes: ["/auth", "/_next", "/public"]
rate_limit:
  login_rps: 2
  login_burst: 10
log:
  level: "debug"
`

const brokenYAML = `
env: [unclosed
`

// isolate очищает переменные, влияющие на загрузку, и переходит в пустой каталог
func isolate(t *testing.T) string {
	t.Helper()
	for _, k := range []string{"CONFIG_PATH", "JWT_SECRET", "API_BASE_URL", "HTTP_PORT", "MEDIA_TOKEN_ID", "MEDIA_TOKEN_SECRET", "GUARD_PUBLIC_PREFIXES", "RATE_LIMIT_TRUST_PROXY"} {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}
	dir := t.TempDir()
	chdir(t, dir)
	return dir
}

func TestHTTPConfig_Addr(t *testing.T) {
	cfg := HTTPConfig{Host: "0.0.0.0", Port: "8080"}
	require.Equal(t, "0.0.0.0:8080", cfg.Addr())
}

func TestLoad_WithExplicitPath_OK(t *testing.T) {
	dir := isolate(t)
	cfgPath := writeFile(t, dir, "config.yaml", sampleYAML)

	cfg, err := Load(cfgPath)
	require.NoError(t, err)

	assert.Equal(t, "prod", cfg.Env)
	assert.Equal(t, "127.0.0.1:8080", cfg.HTTP.Addr())
	assert.Equal(t, "/srv/portal", cfg.HTTP.StaticDir)
	assert.Equal(t, 5*time.Second, cfg.HTTP.ShutdownTimeout)
	assert.Equal(t, 24*time.Hour, cfg.Auth.RefreshCookieTTL)
	assert.Equal(t, "https://api.example.com", cfg.API.BaseURL)
	assert.Equal(t, 3*time.Second, cfg.API.Timeout)
	assert.True(t, cfg.Media.Enabled())
	assert.Equal(t, "https://api.mux.com", cfg.Media.APIURL)
	assert.Equal(t, []string{"/auth", "/_next", "/public"}, cfg.Guard.PublicPrefixes)
	assert.Equal(t, 2.0, cfg.RateLimit.LoginRPS)
	assert.Equal(t, 10, cfg.RateLimit.LoginBurst)
	assert.Equal(t, slog.LevelDebug, cfg.Log.SlogLevel())
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	dir := isolate(t)
	cfgPath := writeFile(t, dir, "config.yaml", sampleYAML)
	t.Setenv("HTTP_PORT", "9999")

	cfg, err := Load(cfgPath)
	require.NoError(t, err)
	assert.Equal(t, "9999", cfg.HTTP.Port)
}

func TestLoad_ConfigPathEnv(t *testing.T) {
	dir := isolate(t)
	cfgPath := writeFile(t, dir, "other.yaml", sampleYAML)
	t.Setenv("CONFIG_PATH", cfgPath)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "prod", cfg.Env)
}

func TestLoad_LocalYAML(t *testing.T) {
	dir := isolate(t)
	writeFile(t, dir, "local.yaml", sampleYAML)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "/srv/portal", cfg.HTTP.StaticDir)
}

func TestLoad_EnvOnlyWithDefaults(t *testing.T) {
	isolate(t)
	t.Setenv("JWT_SECRET", "0123456789abcdef0123")
	t.Setenv("API_BASE_URL", "http://backend:8000")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "local", cfg.Env)
	assert.Equal(t, "0.0.0.0:3000", cfg.HTTP.Addr())
	assert.Equal(t, []string{"/auth", "/_next"}, cfg.Guard.PublicPrefixes)
	assert.Equal(t, 10*time.Minute, cfg.Storage.PurgeInterval)
	assert.True(t, cfg.Auth.CookieSecure)
	assert.False(t, cfg.Media.Enabled())
	assert.False(t, cfg.RateLimit.TrustProxyHeaders, "proxy headers are untrusted unless enabled")
	assert.Equal(t, slog.LevelInfo, cfg.Log.SlogLevel())
}

func TestLoad_TrustProxyHeadersFromEnv(t *testing.T) {
	isolate(t)
	t.Setenv("JWT_SECRET", "0123456789abcdef0123")
	t.Setenv("API_BASE_URL", "http://backend:8000")
	t.Setenv("RATE_LIMIT_TRUST_PROXY", "true")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.True(t, cfg.RateLimit.TrustProxyHeaders)
}

func TestLoad_DotEnv(t *testing.T) {
	dir := isolate(t)
	writeFile(t, dir, ".env", "JWT_SECRET=0123456789abcdef0123\nAPI_BASE_URL=http://backend:8000\n")
	t.Cleanup(func() {
		_ = os.Unsetenv("JWT_SECRET")
		_ = os.Unsetenv("API_BASE_URL")
	})

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "http://backend:8000", cfg.API.BaseURL)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		env     map[string]string
		wantErr string
	}{
		{
			name:    "missing required env",
			wantErr: "config not found",
		},
		{
			name:    "broken yaml",
			yaml:    brokenYAML,
			wantErr: "failed to read config",
		},
		{
			name:    "short secret",
			env:     map[string]string{"JWT_SECRET": "short", "API_BASE_URL": "http://backend"},
			wantErr: "jwt secret must be at least",
		},
		{
			name:    "bad base url",
			env:     map[string]string{"JWT_SECRET": "0123456789abcdef0123", "API_BASE_URL": "backend"},
			wantErr: "invalid api base url",
		},
		{
			name: "media id without secret",
			env: map[string]string{
				"JWT_SECRET":     "0123456789abcdef0123",
				"API_BASE_URL":   "http://backend",
				"MEDIA_TOKEN_ID": "id",
			},
			wantErr: "media token id and secret must be set together",
		},
		{
			name: "relative public prefix",
			env: map[string]string{
				"JWT_SECRET":            "0123456789abcdef0123",
				"API_BASE_URL":          "http://backend",
				"GUARD_PUBLIC_PREFIXES": "/auth,public",
			},
			wantErr: `public prefix "public" must start with /`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := isolate(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			path := ""
			if tt.yaml != "" {
				path = writeFile(t, dir, "config.yaml", tt.yaml)
			}

			_, err := Load(path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	dir := isolate(t)

	_, err := Load(filepath.Join(dir, "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "stat failed")
}

func TestMustLoad_Panics(t *testing.T) {
	isolate(t)
	require.Panics(t, func() { MustLoad("") })
}

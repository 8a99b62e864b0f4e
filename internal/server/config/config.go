// Package config загружает конфигурацию сервера портала.
//
// Источники (по убыванию приоритета):
//  1. явный путь --config;
//  2. CONFIG_PATH;
//  3. ./local.yaml;
//  4. только ENV (cleanenv).
//
// Перед чтением подгружается .env из текущего каталога, если он есть.
// Переменные окружения всегда перекрывают значения из файла.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// minSecretLen — минимальная длина секрета подписи access token
const minSecretLen = 16

type Config struct {
	Env       string          `yaml:"env" env:"ENV" env-default:"local"`
	HTTP      HTTPConfig      `yaml:"http"`
	Auth      AuthConfig      `yaml:"auth"`
	API       APIConfig       `yaml:"api"`
	Media     MediaConfig     `yaml:"media"`
	Storage   StorageConfig   `yaml:"storage"`
	Guard     GuardConfig     `yaml:"guard"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Log       LogConfig       `yaml:"log"`
}

// HTTPConfig — публичный HTTP-сервер портала.
type HTTPConfig struct {
	Host            string        `yaml:"host"             env:"HTTP_HOST"             env-default:"0.0.0.0"`
	Port            string        `yaml:"port"             env:"HTTP_PORT"             env-default:"3000"`
	StaticDir       string        `yaml:"static_dir"       env:"STATIC_DIR"            env-default:"./web"`
	ReadTimeout     time.Duration `yaml:"read_timeout"     env:"HTTP_READ_TIMEOUT"     env-default:"10s"`
	WriteTimeout    time.Duration `yaml:"write_timeout"    env:"HTTP_WRITE_TIMEOUT"    env-default:"30s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"     env:"HTTP_IDLE_TIMEOUT"     env-default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"HTTP_SHUTDOWN_TIMEOUT" env-default:"15s"`
}

func (h HTTPConfig) Addr() string { return net.JoinHostPort(h.Host, h.Port) }

// AuthConfig — проверка access token и параметры cookie.
type AuthConfig struct {
	JWTSecret        string        `yaml:"jwt_secret"         env:"JWT_SECRET"         env-required:"true"`
	CookieSecure     bool          `yaml:"cookie_secure"      env:"COOKIE_SECURE"      env-default:"true"`
	RefreshCookieTTL time.Duration `yaml:"refresh_cookie_ttl" env:"REFRESH_COOKIE_TTL" env-default:"168h"`
}

// APIConfig — бэкенд портала, которому проксируются /api/*.
type APIConfig struct {
	BaseURL string        `yaml:"base_url" env:"API_BASE_URL" env-required:"true"`
	Timeout time.Duration `yaml:"timeout"  env:"API_TIMEOUT"  env-default:"15s"`
}

// MediaConfig — доступ к API видеоплатформы.
type MediaConfig struct {
	APIURL      string `yaml:"api_url"      env:"MEDIA_API_URL"      env-default:"https://api.mux.com"`
	TokenID     string `yaml:"token_id"     env:"MEDIA_TOKEN_ID"`
	TokenSecret string `yaml:"token_secret" env:"MEDIA_TOKEN_SECRET"`
	CORSOrigin  string `yaml:"cors_origin"  env:"MEDIA_CORS_ORIGIN"  env-default:"*"`
}

// Enabled сообщает, заданы ли учетные данные видеоплатформы
func (m MediaConfig) Enabled() bool { return m.TokenID != "" && m.TokenSecret != "" }

// StorageConfig — sqlite с отозванными токенами.
type StorageConfig struct {
	Path          string        `yaml:"path"           env:"DB_PATH"              env-default:"./medportal.db"`
	PurgeInterval time.Duration `yaml:"purge_interval" env:"REVOCATION_PURGE_INTERVAL" env-default:"10m"`
}

// GuardConfig — публичные префиксы, доступные без токена.
type GuardConfig struct {
	PublicPrefixes []string `yaml:"public_prefixes" env:"GUARD_PUBLIC_PREFIXES" env-separator:"," env-default:"/auth,/_next"`
}

// RateLimitConfig — ограничение частоты BFF-логинов на клиентский IP.
type RateLimitConfig struct {
	LoginRPS        float64       `yaml:"login_rps"        env:"RATE_LIMIT_LOGIN_RPS"   env-default:"1"`
	LoginBurst      int           `yaml:"login_burst"      env:"RATE_LIMIT_LOGIN_BURST" env-default:"5"`
	CleanupInterval time.Duration `yaml:"cleanup_interval" env:"RATE_LIMIT_CLEANUP"     env-default:"5m"`
	// TrustProxyHeaders — брать IP из X-Forwarded-For/X-Real-IP. Только за своим proxy.
	TrustProxyHeaders bool `yaml:"trust_proxy_headers" env:"RATE_LIMIT_TRUST_PROXY" env-default:"false"`
}

type LogConfig struct {
	Level string `yaml:"level" env:"LOG_LEVEL" env-default:"info"`
}

// SlogLevel переводит строковый уровень в slog.Level. Неизвестный уровень — info.
func (l LogConfig) SlogLevel() slog.Level {
	switch strings.ToLower(l.Level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

// MustLoad — паника при ошибке загрузки.
func MustLoad(path string) *Config {
	cfg, err := Load(path)

	if err != nil {
		panic(err)
	}

	return cfg
}

func Load(path string) (*Config, error) {
	if err := loadDotEnv(".env"); err != nil {
		return nil, err
	}

	cfg, err := read(path)
	if err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func read(path string) (*Config, error) {
	var cfg Config

	tryRead := func(p string) (*Config, error) {
		if _, err := os.Stat(p); err != nil {
			return nil, fmt.Errorf("config file %q stat failed: %w", p, err)
		}

		// ReadConfig сам накладывает ENV поверх файла
		if err := cleanenv.ReadConfig(p, &cfg); err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}

		return &cfg, nil
	}

	// 1) --config
	if path != "" {
		return tryRead(path)
	}

	// 2) CONFIG_PATH
	if envPath := os.Getenv("CONFIG_PATH"); envPath != "" {
		return tryRead(envPath)
	}

	// 3) ./local.yaml
	if _, err := os.Stat("local.yaml"); err == nil {
		return tryRead("local.yaml")
	}

	// 4) только ENV
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("config not found: provide --config, CONFIG_PATH, local.yaml or env vars: %w", err)
	}
	return &cfg, nil
}

// loadDotEnv подгружает переменные из файла, не перезаписывая уже заданные.
// Отсутствие файла ошибкой не считается.
func loadDotEnv(path string) error {
	err := godotenv.Load(path)
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("failed to load %s: %w", path, err)
}

// Validate проверяет значения, которые cleanenv проверить не может
func (c *Config) Validate() error {
	var errs []error

	if len(c.Auth.JWTSecret) < minSecretLen {
		errs = append(errs, fmt.Errorf("jwt secret must be at least %d bytes", minSecretLen))
	}

	u, err := url.Parse(c.API.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, fmt.Errorf("invalid api base url %q", c.API.BaseURL))
	}

	if (c.Media.TokenID == "") != (c.Media.TokenSecret == "") {
		errs = append(errs, errors.New("media token id and secret must be set together"))
	}

	if c.RateLimit.LoginRPS <= 0 || c.RateLimit.LoginBurst <= 0 {
		errs = append(errs, errors.New("rate limit rps and burst must be positive"))
	}

	for _, p := range c.Guard.PublicPrefixes {
		if !strings.HasPrefix(p, "/") {
			errs = append(errs, fmt.Errorf("public prefix %q must start with /", p))
		}
	}

	return errors.Join(errs...)
}

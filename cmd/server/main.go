package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/time/rate"

	clientapi "github.com/iudanet/medportal/internal/client/api"
	"github.com/iudanet/medportal/internal/server/config"
	"github.com/iudanet/medportal/internal/server/guard"
	"github.com/iudanet/medportal/internal/server/handlers"
	"github.com/iudanet/medportal/internal/server/media"
	"github.com/iudanet/medportal/internal/server/metrics"
	"github.com/iudanet/medportal/internal/server/middleware"
	"github.com/iudanet/medportal/internal/server/router"
	"github.com/iudanet/medportal/internal/server/storage"
	"github.com/iudanet/medportal/internal/server/storage/sqlite"
)

var (
	// Version information set via ldflags during build
	Version   = "dev"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

func main() {
	// Parse flags
	showVersion := flag.Bool("version", false, "Show version information")
	configPath := flag.String("config", "", "Path to config file")
	flag.Parse()

	// Show version and exit if requested
	if *showVersion {
		printVersion()
		os.Exit(0)
	}

	cfg := config.MustLoad(*configPath)

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.Log.SlogLevel()}))
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("server stopped with error", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("MedPortal server starting",
		slog.String("version", Version),
		slog.String("env", cfg.Env),
		slog.String("addr", cfg.HTTP.Addr()))

	store, err := sqlite.New(ctx, cfg.Storage.Path)
	if err != nil {
		return fmt.Errorf("failed to open storage: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error("failed to close storage", slog.Any("error", err))
		}
	}()

	backendURL, err := url.Parse(cfg.API.BaseURL)
	if err != nil {
		return fmt.Errorf("invalid API base URL: %w", err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	collector := metrics.NewCollector(reg)

	verifier := guard.NewVerifier([]byte(cfg.Auth.JWTSecret), store, nil)

	limiter := middleware.NewRateLimiter(middleware.RateLimiterConfig{
		Rate:              rate.Limit(cfg.RateLimit.LoginRPS),
		Burst:             cfg.RateLimit.LoginBurst,
		CleanupInterval:   cfg.RateLimit.CleanupInterval,
		TrustProxyHeaders: cfg.RateLimit.TrustProxyHeaders,
	}, logger)
	defer limiter.Stop()

	// Бэкенд портала вызывается без хранилища токенов: токены живут в cookie браузера
	authAPI := clientapi.NewClient(cfg.API.BaseURL,
		clientapi.WithTimeout(cfg.API.Timeout),
		clientapi.WithLogger(logger))

	if !cfg.Media.Enabled() {
		logger.Warn("media platform credentials are not set, video uploads are disabled")
	}
	mediaClient := media.NewClient(media.Config{
		APIURL:      cfg.Media.APIURL,
		TokenID:     cfg.Media.TokenID,
		TokenSecret: cfg.Media.TokenSecret,
		CORSOrigin:  cfg.Media.CORSOrigin,
		Timeout:     cfg.API.Timeout,
	}, nil)

	handler := router.New(router.Deps{
		Logger: logger,
		Session: handlers.NewSessionHandler(logger, authAPI, verifier, store, store, collector, handlers.SessionConfig{
			RefreshCookieTTL: cfg.Auth.RefreshCookieTTL,
			CookieSecure:     cfg.Auth.CookieSecure,
		}),
		Video:        handlers.NewVideoHandler(logger, mediaClient),
		Events:       handlers.NewEventsHandler(logger, store),
		Health:       handlers.NewHealthHandler(logger, store, Version),
		APIProxy:     handlers.NewAPIProxy(backendURL, collector, logger),
		Verifier:     verifier,
		Guard:        guard.New(verifier, guard.Config{PublicPrefixes: cfg.Guard.PublicPrefixes}, collector, logger),
		LoginLimiter: limiter,
		Metrics:      collector,
		Gatherer:     reg,
		Static:       http.FileServer(http.Dir(cfg.HTTP.StaticDir)),
	})

	srv := &http.Server{
		Addr:         cfg.HTTP.Addr(),
		Handler:      handler,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		storage.RunPurge(ctx, store, cfg.Storage.PurgeInterval, logger)
	}()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("HTTP server listening", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		stop()
		wg.Wait()
		return fmt.Errorf("http server failed: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	err = srv.Shutdown(shutdownCtx)
	wg.Wait()
	if err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	logger.Info("server stopped")
	return nil
}

func printVersion() {
	fmt.Printf("MedPortal Server\n")
	fmt.Printf("Version:    %s\n", Version)
	fmt.Printf("Build Date: %s\n", BuildDate)
	fmt.Printf("Git Commit: %s\n", GitCommit)
}

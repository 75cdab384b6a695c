package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/turbobet/platform/internal/app"
	"github.com/turbobet/platform/internal/auth"
	"github.com/turbobet/platform/internal/infra"
	"github.com/turbobet/platform/internal/provider"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	if err := run(logger); err != nil {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := infra.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	pool, err := infra.NewPostgresPool(ctx, cfg)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer pool.Close()
	logger.Info("connected to postgres")

	if err := infra.RunMigrations(cfg.DSN(), logger); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	userExpiry, err := time.ParseDuration(cfg.JWTUserExpiry)
	if err != nil {
		return fmt.Errorf("parse user JWT expiry: %w", err)
	}
	adminExpiry, err := time.ParseDuration(cfg.JWTAdminExpiry)
	if err != nil {
		return fmt.Errorf("parse admin JWT expiry: %w", err)
	}
	jwtMgr := auth.NewJWTManager(cfg.JWTSecret, userExpiry, adminExpiry)

	r := app.NewRouter(app.RouterDeps{
		Pool:   pool,
		JWTMgr: jwtMgr,
		Logger: logger,
		PlayFivers: provider.PlayFiversConfig{
			BaseURL:     cfg.PlayfiversBaseURL,
			AgentID:     cfg.PlayfiversAgentID,
			AgentSecret: cfg.PlayfiversAgentSecret,
			AgentToken:  cfg.PlayfiversAgentToken,
			AuthMethod:  cfg.PlayfiversAuthMethod,
		},
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
	})

	addr := fmt.Sprintf(":%d", cfg.APIPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("api server starting", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	logger.Info("server stopped gracefully")
	return nil
}

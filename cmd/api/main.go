package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/zhouzirui/neuroaid/backend/internal/app"
	"github.com/zhouzirui/neuroaid/backend/internal/config"
	"github.com/zhouzirui/neuroaid/backend/internal/handler"
	"github.com/zhouzirui/neuroaid/backend/internal/telemetry"
)

var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load .env file
	if err := godotenv.Load(); err != nil {
		slog.Warn("failed to load .env file, continuing with system environment variables only", "error", err)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	_, logCloser, err := telemetry.InitLogger(cfg.Telemetry)
	if err != nil {
		slog.Error("failed to initialize logger", "error", err)
		os.Exit(1)
	}
	defer logCloser.Close()

	shutdownTelemetry, err := telemetry.InitTelemetry(ctx, cfg.Telemetry, version)
	if err != nil {
		slog.Warn("telemetry disabled", "error", err)
		shutdownTelemetry = func() {}
	}
	defer shutdownTelemetry()

	application, err := app.New(ctx, cfg)
	if err != nil {
		slog.Error("failed to initialize services", "error", err)
		os.Exit(1)
	}
	defer application.Close()

	router := handler.NewRouter(handler.Dependencies{
		Companion:   application.Companion,
		Catalog:     application.Catalog,
		Model:       application.Classifier,
		PreviewRows: cfg.Data.PreviewRows,
	})

	if err := startServer(ctx, cfg.Server, router); err != nil {
		slog.Error("server error", "error", err)
	}
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler) error {
	addr := serverCfg.Addr
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	slog.Info("NeuroAid listening", "addr", addr)
	return runServer(ctx, srv)
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

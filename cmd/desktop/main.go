package main

import (
	"context"
	"log/slog"
	"os"

	fyneapp "fyne.io/fyne/v2/app"
	"github.com/joho/godotenv"

	"github.com/zhouzirui/neuroaid/backend/internal/app"
	"github.com/zhouzirui/neuroaid/backend/internal/config"
	"github.com/zhouzirui/neuroaid/backend/internal/telemetry"
)

func main() {
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

	ctx := context.Background()
	application, err := app.New(ctx, cfg)
	if err != nil {
		slog.Error("failed to initialize services", "error", err)
		os.Exit(1)
	}
	defer application.Close()

	session, err := application.Sessions.CreateSession(ctx)
	if err != nil {
		slog.Error("failed to create session", "error", err)
		os.Exit(1)
	}

	a := fyneapp.NewWithID("io.neuroaid.desktop")
	ui := buildUI(a, application, session.ID)
	ui.w.ShowAndRun()
}

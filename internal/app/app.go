// Package app assembles the services shared by every NeuroAid entry point.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	analysis "github.com/zhouzirui/neuroaid/backend/internal/analysis/emotion"
	"github.com/zhouzirui/neuroaid/backend/internal/config"
	"github.com/zhouzirui/neuroaid/backend/internal/dataset"
	"github.com/zhouzirui/neuroaid/backend/internal/service/chat"
	"github.com/zhouzirui/neuroaid/backend/internal/service/companion"
	"github.com/zhouzirui/neuroaid/backend/internal/service/emotion"
)

// App holds the wired services.
type App struct {
	Config     *config.Config
	Catalog    *dataset.Catalog
	Classifier *emotion.Service
	Sessions   *chat.Service
	Companion  *companion.Service
}

// New loads datasets and builds the classifier selected by cfg. A missing
// dataset directory or an empty one is not fatal here; surfaces decide how to
// present it. An explicitly requested backend that fails to start is fatal,
// an auto-selected one falls back to the keyword heuristic.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	result, err := dataset.Load(cfg.Data.Dir, dataset.Options{Recursive: cfg.Data.Recursive})
	switch {
	case errors.Is(err, dataset.ErrNoDatasets):
		slog.Warn("no datasets loaded", "component", "app", "dir", cfg.Data.Dir, "failed", len(result.Errors))
	case err != nil:
		slog.Warn("dataset directory unavailable", "component", "app", "dir", cfg.Data.Dir, "error", err)
		result.Errors = append(result.Errors, &dataset.LoadError{File: cfg.Data.Dir, Err: err})
	}

	backend, err := emotion.NewBackend(ctx, cfg.Emotion)
	if err != nil {
		if cfg.Emotion.Backend != "" {
			return nil, fmt.Errorf("failed to initialize %s backend: %w", cfg.Emotion.Backend, err)
		}
		slog.Warn("emotion backend unavailable, using keyword heuristic", "component", "app",
			"backend", cfg.Emotion.ResolveBackend(), "error", err)
		labels := analysis.ParseLabels(cfg.Emotion.Labels)
		if len(labels) == 0 {
			labels = analysis.DefaultModelLabels()
		}
		backend = emotion.NewKeywordBackend(labels)
	}

	classifier, err := emotion.NewService(backend, emotion.Config{Timeout: cfg.Emotion.Timeout})
	if err != nil {
		_ = backend.Close()
		return nil, err
	}
	slog.Info("emotion classifier ready", "component", "app", "backend", classifier.Backend(), "model", classifier.Model())

	sessions := chat.NewService()
	return &App{
		Config:     cfg,
		Catalog:    dataset.NewCatalog(result),
		Classifier: classifier,
		Sessions:   sessions,
		Companion:  companion.NewService(classifier, sessions),
	}, nil
}

// Close releases the classifier.
func (a *App) Close() error {
	if a == nil {
		return nil
	}
	return a.Classifier.Close()
}

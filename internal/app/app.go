// Package app wires the pieces together: it owns the application logger,
// loads the scene manifest, and binds the resource registry to a scene graph
// for the lifetime of one run.
package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/vk/geoscenego/internal/ctxlog"
	"github.com/vk/geoscenego/internal/manifest"
	"github.com/vk/geoscenego/internal/registry"
	"github.com/vk/geoscenego/internal/scene"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW      io.Writer
	logger    *slog.Logger
	config    *Config
	manifest  *manifest.Manifest
	adapter   *scene.Adapter
	resources *registry.Manager
}

// NewApp is the constructor for the main application. It returns a fully
// initialized App instance with its own isolated logger, the loaded manifest,
// and an empty registry bound to a not-yet-attached scene adapter.
func NewApp(outW io.Writer, cfg *Config, loader *manifest.Loader) *App {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, outW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	m, err := loader.Load(ctx, cfg.ScenePath)
	if err != nil {
		// A failure to load the manifest is a fatal startup error.
		panic(fmt.Errorf("failed to load scene manifest: %w", err))
	}
	logger.Debug("Scene manifest loaded.", "resources", m.ResourceCount())

	adapter := scene.NewAdapter()

	return &App{
		outW:      outW,
		logger:    logger,
		config:    cfg,
		manifest:  m,
		adapter:   adapter,
		resources: registry.New(adapter),
	}
}

// Resources returns the application's resource registry. This is the public
// operation surface for callers adding Custom resources at runtime, and for
// tests.
func (a *App) Resources() *registry.Manager {
	return a.resources
}

// Manifest returns the loaded scene manifest.
func (a *App) Manifest() *manifest.Manifest {
	return a.manifest
}

// viewerSettings resolves viewer connection settings: CLI configuration wins
// over the manifest's scene block.
func (a *App) viewerSettings() manifest.SceneSettings {
	settings := a.manifest.Scene
	if a.config.ViewerURL != "" {
		settings.ViewerURL = a.config.ViewerURL
	}
	if a.config.Namespace != "" {
		settings.Namespace = a.config.Namespace
	}
	if a.config.AckTimeout > 0 {
		settings.AckTimeout = a.config.AckTimeout
	}
	return settings
}
